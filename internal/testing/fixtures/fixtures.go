package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/aisle/api/internal/database"
	"github.com/forgo/aisle/api/internal/model"
	"github.com/forgo/aisle/api/internal/repository"
)

// DefaultPassword is the plaintext password of every fixture user
const DefaultPassword = "testpass123"

// Factory creates test entities through the repositories
type Factory struct {
	Users    *repository.UserRepository
	Venues   *repository.VenueRepository
	Seating  *repository.SeatingRepository
	Guests   *repository.GuestRepository
	Timeline *repository.TimelineRepository
}

// New creates a new fixture factory
func New(db database.Database) *Factory {
	return &Factory{
		Users:    repository.NewUserRepository(db),
		Venues:   repository.NewVenueRepository(db),
		Seating:  repository.NewSeatingRepository(db),
		Guests:   repository.NewGuestRepository(db),
		Timeline: repository.NewTimelineRepository(db),
	}
}

func randomID() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}

// ===== Users =====

// CreateUser creates a user with the given role and DefaultPassword
func (f *Factory) CreateUser(t *testing.T, role model.UserRole) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("fixtures: failed to hash password: %v", err)
	}
	h := string(hash)

	user := &model.User{
		Email: fmt.Sprintf("user_%s@test.local", randomID()),
		Hash:  &h,
		Role:  role,
	}
	if err := f.Users.Create(ctx(t), user); err != nil {
		t.Fatalf("fixtures: failed to create user: %v", err)
	}
	user.Hash = nil
	return user
}

// CreateCouple creates a couple account
func (f *Factory) CreateCouple(t *testing.T) *model.User {
	return f.CreateUser(t, model.UserRoleCouple)
}

// CreateVendorUser creates a vendor account
func (f *Factory) CreateVendorUser(t *testing.T) *model.User {
	return f.CreateUser(t, model.UserRoleVendor)
}

// ===== Venues =====

// CreateVenueWithRoom creates a venue owned by owner with one 60x40ft room
func (f *Factory) CreateVenueWithRoom(t *testing.T, owner *model.User) (*model.Venue, *model.VenueRoom) {
	t.Helper()

	venue := &model.Venue{
		OwnerID:  owner.ID,
		Name:     "Venue " + randomID(),
		Capacity: 150,
	}
	if err := f.Venues.Create(ctx(t), venue); err != nil {
		t.Fatalf("fixtures: failed to create venue: %v", err)
	}

	room := &model.VenueRoom{
		VenueID:  venue.ID,
		Name:     "Ballroom",
		WidthFt:  60,
		LengthFt: 40,
		Capacity: 150,
	}
	if err := f.Venues.CreateRoom(ctx(t), room); err != nil {
		t.Fatalf("fixtures: failed to create room: %v", err)
	}
	return venue, room
}

// ===== Seating =====

// CreateTable places a built-in 60" round table in room on behalf of owner.
// Built-in templates are seeded first.
func (f *Factory) CreateTable(t *testing.T, owner *model.User, room *model.VenueRoom, label string) *model.TableInstance {
	t.Helper()

	if err := f.Seating.SeedBuiltIns(ctx(t)); err != nil {
		t.Fatalf("fixtures: failed to seed templates: %v", err)
	}

	tmpl := model.BuiltInTemplates[0]
	table := &model.TableInstance{
		OwnerID:    owner.ID,
		RoomID:     room.ID,
		TemplateID: tmpl.ID,
		Label:      label,
		XPx:        100,
		YPx:        100,
		Seats:      tmpl.Seats,
	}
	if err := f.Seating.CreateTable(ctx(t), table); err != nil {
		t.Fatalf("fixtures: failed to create table: %v", err)
	}
	return table
}

// ===== Guests =====

// CreateGuest adds a pending guest to owner's list
func (f *Factory) CreateGuest(t *testing.T, owner *model.User, firstName string) *model.Guest {
	t.Helper()

	guest := &model.Guest{
		OwnerID:    owner.ID,
		FirstName:  firstName,
		Side:       model.GuestSideBoth,
		RSVPStatus: model.RSVPPending,
	}
	if err := f.Guests.Create(ctx(t), guest); err != nil {
		t.Fatalf("fixtures: failed to create guest: %v", err)
	}
	return guest
}

// ===== Timeline =====

// CreateTask adds a task due at due for owner
func (f *Factory) CreateTask(t *testing.T, owner *model.User, title string, due time.Time) *model.TimelineTask {
	t.Helper()

	task := &model.TimelineTask{
		OwnerID:  owner.ID,
		Title:    title,
		Category: "planning",
		DueDate:  &due,
	}
	if err := f.Timeline.Create(ctx(t), task); err != nil {
		t.Fatalf("fixtures: failed to create task: %v", err)
	}
	return task
}

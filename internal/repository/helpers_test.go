package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/forgo/aisle/api/internal/database"
	"github.com/forgo/aisle/api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

func TestConvertSurrealID_Variants(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", convertSurrealID(nil))
	assert.Equal(t, "guest:abc", convertSurrealID("guest:abc"))
	assert.Equal(t, "guest:abc", convertSurrealID(models.RecordID{Table: "guest", ID: "abc"}))
	assert.Equal(t, "guest:abc", convertSurrealID(map[string]interface{}{"tb": "guest", "id": "abc"}))
	assert.Equal(t, "guest:abc", convertSurrealID(map[string]interface{}{
		"tb": "guest",
		"id": map[string]interface{}{"String": "abc"},
	}))
}

func TestInTable(t *testing.T) {
	t.Parallel()

	assert.True(t, inTable("guest:abc", "guest"))
	assert.False(t, inTable("guest:", "guest"))
	assert.False(t, inTable("vendor:abc", "guest"))
	assert.False(t, inTable("abc", "guest"))
}

func TestIsUniqueConstraintError(t *testing.T) {
	t.Parallel()

	assert.False(t, isUniqueConstraintError(nil))
	assert.True(t, isUniqueConstraintError(database.ErrDuplicate))
	assert.True(t, isUniqueConstraintError(fmt.Errorf("wrapped: %w", database.ErrDuplicate)))
	assert.True(t, isUniqueConstraintError(errors.New("Database index `email` already contains 'a@b.c'")))
	assert.False(t, isUniqueConstraintError(errors.New("parse error")))
}

func TestDecodeRecord_RenamesLinksAndNormalizesTimes(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	row := map[string]interface{}{
		"id":          models.RecordID{Table: "guest", ID: "g1"},
		"owner":       models.RecordID{Table: "user", ID: "u1"},
		"table":       models.RecordID{Table: "table_instance", ID: "t1"},
		"seat_number": float64(3),
		"first_name":  "Ada",
		"rsvp_status": "attending",
		"created_on":  models.CustomDateTime{Time: created},
	}
	envelope := map[string]interface{}{
		"status": "OK",
		"result": []interface{}{row},
	}

	guest, data, err := decodeRecord[model.Guest](envelope, guestRenames)
	require.NoError(t, err)

	assert.Equal(t, "guest:g1", guest.ID)
	assert.Equal(t, "user:u1", guest.OwnerID)
	require.NotNil(t, guest.TableID)
	assert.Equal(t, "table_instance:t1", *guest.TableID)
	require.NotNil(t, guest.SeatNumber)
	assert.Equal(t, 3, *guest.SeatNumber)
	assert.Equal(t, model.RSVPAttending, guest.RSVPStatus)
	assert.True(t, guest.CreatedOn.Equal(created))
	assert.NotContains(t, data, "owner")
}

func TestDecodeRecord_EmptyResult_NotFound(t *testing.T) {
	t.Parallel()

	_, _, err := decodeRecord[model.Guest](map[string]interface{}{
		"status": "OK",
		"result": []interface{}{},
	}, nil)
	assert.ErrorIs(t, err, database.ErrNotFound)

	_, _, err = decodeRecord[model.Guest](nil, nil)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestDecodeRecords_SkipsBadRows(t *testing.T) {
	t.Parallel()

	results := []interface{}{
		map[string]interface{}{
			"status": "OK",
			"result": []interface{}{
				map[string]interface{}{"id": "venue:a", "name": "Barn"},
				"not a record",
				map[string]interface{}{"id": "venue:b", "name": "Loft"},
			},
		},
	}

	venues := decodeRecords[model.Venue](results, ownerRenames)
	require.Len(t, venues, 2)
	assert.Equal(t, "Barn", venues[0].Name)
	assert.Equal(t, "venue:b", venues[1].ID)
}

func TestParseUserResult_KeepsHash(t *testing.T) {
	t.Parallel()

	user, err := parseUserResult(map[string]interface{}{
		"id":    "user:1",
		"email": "a@example.com",
		"hash":  "$2a$12$xyz",
		"role":  "couple",
	})
	require.NoError(t, err)
	require.NotNil(t, user.Hash)
	assert.Equal(t, "$2a$12$xyz", *user.Hash)
	assert.Equal(t, model.UserRoleCouple, user.Role)
}

func TestParseTask_ReadsOverdueFlag(t *testing.T) {
	t.Parallel()

	task, err := parseTask(map[string]interface{}{
		"id":           "timeline_task:1",
		"owner":        "user:1",
		"title":        "Book the florist",
		"overdue_sent": true,
	})
	require.NoError(t, err)
	assert.True(t, task.OverdueSent)
	assert.Equal(t, "user:1", task.OwnerID)
}

func TestExtractCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, extractCount(nil))
	assert.Equal(t, 0, extractCount([]interface{}{map[string]interface{}{"result": []interface{}{}}}))
	assert.Equal(t, 7, extractCount([]interface{}{
		map[string]interface{}{"result": []interface{}{map[string]interface{}{"count": float64(7)}}},
	}))
}

func TestOptional(t *testing.T) {
	t.Parallel()

	var s *string
	assert.Nil(t, optional(s))
	v := "x"
	assert.Equal(t, "x", optional(&v))
	assert.Nil(t, optTime(nil))
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "2026-01-02T03:04:05Z", optTime(&ts))
}

func TestImageRows_FormatsAddedOn(t *testing.T) {
	t.Parallel()

	caption := "peonies"
	rows := imageRows([]model.MoodboardImage{{
		URL:     "https://cdn.example.com/a.png",
		Source:  model.ImageSourceLink,
		Caption: &caption,
		AddedOn: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}})
	require.Len(t, rows, 1)
	assert.Equal(t, "2026-02-01T00:00:00Z", rows[0]["added_on"])
	assert.Equal(t, "peonies", rows[0]["caption"])
	assert.NotContains(t, rows[0], "prompt")
}

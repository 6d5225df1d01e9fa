package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/forgo/aisle/api/internal/model"
	"github.com/forgo/aisle/api/internal/storage"
)

// pngBytes sniffs as image/png
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type memVendorRepo struct {
	vendors map[string]*model.Vendor
	listed  model.VendorStatus
	filters model.VendorFilters
}

func newMemVendorRepo() *memVendorRepo {
	return &memVendorRepo{vendors: make(map[string]*model.Vendor)}
}

func (m *memVendorRepo) Create(ctx context.Context, v *model.Vendor) error {
	v.ID = "vendor:" + strings.TrimPrefix(v.OwnerID, "user:")
	cp := *v
	m.vendors[v.ID] = &cp
	return nil
}

func (m *memVendorRepo) GetByID(ctx context.Context, id string) (*model.Vendor, error) {
	v, ok := m.vendors[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (m *memVendorRepo) GetByOwner(ctx context.Context, ownerID string) (*model.Vendor, error) {
	for _, v := range m.vendors {
		if v.OwnerID == ownerID {
			cp := *v
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memVendorRepo) Update(ctx context.Context, v *model.Vendor) error {
	cp := *v
	m.vendors[v.ID] = &cp
	return nil
}

func (m *memVendorRepo) List(ctx context.Context, status model.VendorStatus, filters model.VendorFilters) ([]*model.Vendor, error) {
	m.listed = status
	m.filters = filters
	var out []*model.Vendor
	for _, v := range m.vendors {
		if v.Status == status {
			out = append(out, v)
		}
	}
	return out, nil
}

func newTestVendorService() (*VendorService, *memVendorRepo, *storage.MemoryStore) {
	repo := newMemVendorRepo()
	store := storage.NewMemoryStore("http://media.test")
	svc := NewVendorService(VendorServiceConfig{
		VendorRepo: repo,
		Buckets:    store,
		Clock:      fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	})
	return svc, repo, store
}

// walkWizard fills every page in order
func walkWizard(t *testing.T, svc *VendorService, owner string) *model.Vendor {
	t.Helper()
	ctx := context.Background()

	if _, err := svc.Start(ctx, owner, model.VendorBusinessStep{BusinessName: "Petal & Stem", Category: "florist"}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	steps := []model.UpdateVendorStepRequest{
		{Step: model.VendorStepServices, Services: &model.VendorServicesStep{City: strPtr("Portland")}},
		{Step: model.VendorStepContact, Contact: &model.VendorContactStep{Email: strPtr("hello@petal.test")}},
		{Step: model.VendorStepPortfolio, Portfolio: &model.VendorPortfolioStep{}},
	}
	var v *model.Vendor
	for _, req := range steps {
		var err error
		if v, err = svc.UpdateStep(ctx, owner, req); err != nil {
			t.Fatalf("UpdateStep %s failed: %v", req.Step, err)
		}
	}
	return v
}

func TestVendorService_Start_AdvancesToServices(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestVendorService()
	ctx := context.Background()

	v, err := svc.Start(ctx, "user:1", model.VendorBusinessStep{BusinessName: " Petal ", Category: "florist"})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if v.BusinessName != "Petal" || v.Status != model.VendorStatusDraft || v.Step != model.VendorStepServices {
		t.Errorf("unexpected vendor %+v", v)
	}

	if _, err := svc.Start(ctx, "user:1", model.VendorBusinessStep{BusinessName: "Again", Category: "florist"}); !errors.Is(err, ErrVendorExists) {
		t.Errorf("expected ErrVendorExists, got %v", err)
	}
}

func TestVendorService_UpdateStep_RejectsSkippingAhead(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestVendorService()
	ctx := context.Background()

	_, _ = svc.Start(ctx, "user:1", model.VendorBusinessStep{BusinessName: "Petal", Category: "florist"})

	_, err := svc.UpdateStep(ctx, "user:1", model.UpdateVendorStepRequest{
		Step:    model.VendorStepContact,
		Contact: &model.VendorContactStep{Phone: strPtr("555")},
	})
	if !errors.Is(err, ErrStepOutOfOrder) {
		t.Errorf("expected ErrStepOutOfOrder, got %v", err)
	}

	// An earlier page can be revisited without moving the wizard back
	v, err := svc.UpdateStep(ctx, "user:1", model.UpdateVendorStepRequest{
		Step:     model.VendorStepBusiness,
		Business: &model.VendorBusinessStep{BusinessName: "Petal Co", Category: "florist"},
	})
	if err != nil {
		t.Fatalf("UpdateStep failed: %v", err)
	}
	if v.Step != model.VendorStepServices || v.BusinessName != "Petal Co" {
		t.Errorf("unexpected vendor %+v", v)
	}
}

func TestVendorService_SubmitAndApprove(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestVendorService()
	ctx := context.Background()

	v := walkWizard(t, svc, "user:1")
	if v.Step != model.VendorStepSubmit {
		t.Fatalf("expected submit step, got %s", v.Step)
	}

	if _, err := svc.Approve(ctx, v.ID); !errors.Is(err, ErrVendorNotSubmitted) {
		t.Errorf("expected ErrVendorNotSubmitted, got %v", err)
	}

	v, err := svc.Submit(ctx, "user:1")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if v.Status != model.VendorStatusSubmitted || v.SubmittedOn == nil {
		t.Errorf("unexpected vendor %+v", v)
	}

	v, err = svc.Approve(ctx, v.ID)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if v.Status != model.VendorStatusApproved || v.ApprovedOn == nil {
		t.Errorf("unexpected vendor %+v", v)
	}

	// Editing an approved listing sends it back for review
	v, err = svc.UpdateStep(ctx, "user:1", model.UpdateVendorStepRequest{
		Step:     model.VendorStepServices,
		Services: &model.VendorServicesStep{City: strPtr("Salem")},
	})
	if err != nil {
		t.Fatalf("UpdateStep failed: %v", err)
	}
	if v.Status != model.VendorStatusDraft || v.ApprovedOn != nil {
		t.Errorf("expected draft after edit, got %s", v.Status)
	}
}

func TestVendorService_Submit_ReportsMissingFields(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestVendorService()
	ctx := context.Background()

	_, _ = svc.Start(ctx, "user:1", model.VendorBusinessStep{BusinessName: "Petal", Category: "florist"})
	for _, req := range []model.UpdateVendorStepRequest{
		{Step: model.VendorStepServices, Services: &model.VendorServicesStep{}},
		{Step: model.VendorStepContact, Contact: &model.VendorContactStep{}},
		{Step: model.VendorStepPortfolio, Portfolio: &model.VendorPortfolioStep{}},
	} {
		if _, err := svc.UpdateStep(ctx, "user:1", req); err != nil {
			t.Fatalf("UpdateStep failed: %v", err)
		}
	}

	_, err := svc.Submit(ctx, "user:1")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 2 {
		t.Errorf("expected city and contact missing, got %+v", verr.Fields)
	}
}

func TestVendorService_Get_HidesUnapproved(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestVendorService()
	ctx := context.Background()

	v := walkWizard(t, svc, "user:1")

	if _, err := svc.Get(ctx, "user:2", model.UserRoleCouple, v.ID); !errors.Is(err, ErrVendorNotFound) {
		t.Errorf("expected draft hidden from others, got %v", err)
	}
	if _, err := svc.Get(ctx, "user:1", model.UserRoleVendor, v.ID); err != nil {
		t.Errorf("owner should see draft: %v", err)
	}
	if _, err := svc.Get(ctx, "user:9", model.UserRoleAdmin, v.ID); err != nil {
		t.Errorf("admin should see draft: %v", err)
	}
}

func TestVendorService_List_ClampsPaging(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newTestVendorService()

	if _, err := svc.List(context.Background(), model.VendorFilters{Limit: 1000, Offset: -3}); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if repo.listed != model.VendorStatusApproved {
		t.Errorf("public list should only show approved, got %s", repo.listed)
	}
	if repo.filters.Limit != model.MaxVendorListLimit || repo.filters.Offset != 0 {
		t.Errorf("unexpected paging %+v", repo.filters)
	}

	if _, err := svc.List(context.Background(), model.VendorFilters{Category: "yachts"}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestVendorService_UploadMedia(t *testing.T) {
	t.Parallel()
	svc, _, store := newTestVendorService()
	ctx := context.Background()

	_, _ = svc.Start(ctx, "user:1", model.VendorBusinessStep{BusinessName: "Petal", Category: "florist"})

	v, err := svc.UploadMedia(ctx, "user:1", VendorMediaPortfolio, pngBytes)
	if err != nil {
		t.Fatalf("UploadMedia failed: %v", err)
	}
	if len(v.PortfolioURLs) != 1 || !strings.HasPrefix(v.PortfolioURLs[0], "http://media.test/vendor-media/") {
		t.Errorf("unexpected portfolio %v", v.PortfolioURLs)
	}

	if _, err := svc.UploadMedia(ctx, "user:1", VendorMediaLogo, []byte("plain text")); !errors.Is(err, ErrUnsupportedMedia) {
		t.Errorf("expected ErrUnsupportedMedia, got %v", err)
	}

	v, err = svc.RemovePortfolioItem(ctx, "user:1", 0)
	if err != nil {
		t.Fatalf("RemovePortfolioItem failed: %v", err)
	}
	if len(v.PortfolioURLs) != 0 {
		t.Error("expected portfolio emptied")
	}
	bucket, _ := store.Bucket(storage.BucketVendorMedia)
	if bucket.(*storage.MemoryBucket).Len() != 0 {
		t.Error("removed image should be deleted from storage")
	}

	if _, err := svc.RemovePortfolioItem(ctx, "user:1", 3); !errors.Is(err, ErrImageIndexOutOfRange) {
		t.Errorf("expected ErrImageIndexOutOfRange, got %v", err)
	}
}

package model

import (
	"math"
	"strings"
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

func hasField(errs []FieldError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

// ============================================================================
// RegisterRequest Tests
// ============================================================================

func TestRegisterRequest_Validate_Valid(t *testing.T) {
	t.Parallel()

	req := &RegisterRequest{Email: "sam@example.com", Password: "longenough", AccountType: UserRoleVendor}
	if errs := req.Validate(); len(errs) > 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestRegisterRequest_Validate_RejectsAdminAndShortPassword(t *testing.T) {
	t.Parallel()

	req := &RegisterRequest{Email: "not-an-email", Password: "short", AccountType: UserRoleAdmin}
	errs := req.Validate()
	for _, f := range []string{"email", "password", "account_type"} {
		if !hasField(errs, f) {
			t.Errorf("expected %s error, got %v", f, errs)
		}
	}
}

// ============================================================================
// Venue / Room Tests
// ============================================================================

func TestCreateRoomRequest_Validate_DimensionsMustBePositive(t *testing.T) {
	t.Parallel()

	req := &CreateRoomRequest{Name: "Ballroom", WidthFt: 0, LengthFt: -3}
	errs := req.Validate()
	if !hasField(errs, "width_ft") || !hasField(errs, "length_ft") {
		t.Errorf("expected dimension errors, got %v", errs)
	}
	for _, e := range errs {
		if e.Field == "width_ft" && !strings.Contains(e.Message, "greater than zero") {
			t.Errorf("unexpected message %q", e.Message)
		}
	}
}

func TestUpdateRoomRequest_Validate_PixelsPerFoot(t *testing.T) {
	t.Parallel()

	req := &UpdateRoomRequest{PixelsPerFoot: ptr(0.0)}
	if !hasField(req.Validate(), "pixels_per_foot") {
		t.Error("expected pixels_per_foot error")
	}

	req = &UpdateRoomRequest{WidthFt: ptr(40.0), PixelsPerFoot: ptr(12.5)}
	if errs := req.Validate(); len(errs) > 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

// ============================================================================
// Seating Tests
// ============================================================================

func TestCreateTemplateRequest_Validate_SeatBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		seats int
		ok    bool
	}{
		{0, false}, {1, true}, {24, true}, {25, false},
	}
	for _, tt := range tests {
		req := &CreateTemplateRequest{Name: "Custom", Shape: TableShapeRound, WidthFt: 5, Seats: tt.seats}
		errs := req.Validate()
		if tt.ok && len(errs) > 0 {
			t.Errorf("seats=%d: expected valid, got %v", tt.seats, errs)
		}
		if !tt.ok && !hasField(errs, "seats") {
			t.Errorf("seats=%d: expected seats error", tt.seats)
		}
	}
}

func TestCreateTemplateRequest_Validate_RectangleNeedsLength(t *testing.T) {
	t.Parallel()

	req := &CreateTemplateRequest{Name: "Banquet", Shape: TableShapeRectangle, WidthFt: 2.5, Seats: 8}
	if !hasField(req.Validate(), "length_ft") {
		t.Error("expected length_ft error for rectangle without length")
	}
}

func TestCreateTemplateRequest_Validate_UnknownShape(t *testing.T) {
	t.Parallel()

	req := &CreateTemplateRequest{Name: "Oval", Shape: "oval", WidthFt: 5, Seats: 8}
	if !hasField(req.Validate(), "shape") {
		t.Error("expected shape error")
	}
}

// ============================================================================
// Guest Tests
// ============================================================================

func TestCreateGuestRequest_Validate(t *testing.T) {
	t.Parallel()

	req := &CreateGuestRequest{FirstName: "", Email: ptr("bad"), Side: "groom", RSVPStatus: "yes"}
	errs := req.Validate()
	for _, f := range []string{"first_name", "email", "side", "rsvp_status"} {
		if !hasField(errs, f) {
			t.Errorf("expected %s error, got %v", f, errs)
		}
	}

	ok := &CreateGuestRequest{FirstName: "Ada", Email: ptr(""), Side: GuestSideBoth}
	if errs := ok.Validate(); len(errs) > 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestGuest_FullNameAndHeadcount(t *testing.T) {
	t.Parallel()

	g := &Guest{FirstName: "Ada", LastName: ptr("Lovelace"), PlusOne: true}
	if g.FullName() != "Ada Lovelace" {
		t.Errorf("unexpected name %q", g.FullName())
	}
	if g.Headcount() != 2 {
		t.Errorf("expected headcount 2, got %d", g.Headcount())
	}
	if g.IsSeated() {
		t.Error("guest without table should not be seated")
	}
}

// ============================================================================
// Budget Tests
// ============================================================================

func TestBudgetCategories_DefaultsSumTo100(t *testing.T) {
	t.Parallel()

	var sum float64
	for _, c := range BudgetCategories {
		sum += c.DefaultPercent
	}
	if sum != 100 {
		t.Errorf("expected defaults to sum to 100, got %v", sum)
	}
}

func TestDefaultAllocations_AmountsFromTotal(t *testing.T) {
	t.Parallel()

	allocs := DefaultAllocations(3_000_000) // $30,000
	if allocs[0].Category != "venue" || allocs[0].Amount != 900_000 {
		t.Errorf("unexpected venue allocation %+v", allocs[0])
	}

	var total int64
	for _, a := range allocs {
		total += a.Amount
	}
	if total != 3_000_000 {
		t.Errorf("expected allocations to cover total, got %d", total)
	}
}

func TestAmountForPercent_Rounds(t *testing.T) {
	t.Parallel()

	if got := AmountForPercent(999, 33.3); got != 333 {
		t.Errorf("expected 333, got %d", got)
	}
}

func TestUpdateAllocationsRequest_Validate(t *testing.T) {
	t.Parallel()

	req := &UpdateAllocationsRequest{Allocations: []AllocationInput{
		{Category: "venue", Percent: 101},
		{Category: "venue", Percent: 10},
		{Category: "yacht", Percent: 5},
		{Category: "music", Percent: math.NaN()},
	}}
	errs := req.Validate()
	if len(errs) != 4 {
		t.Errorf("expected 4 errors, got %v", errs)
	}

	empty := &UpdateAllocationsRequest{}
	if !hasField(empty.Validate(), "allocations") {
		t.Error("expected error for empty allocations")
	}
}

// ============================================================================
// Timeline Tests
// ============================================================================

func TestDueDateFor_SubtractsMonths(t *testing.T) {
	t.Parallel()

	wedding := time.Date(2027, 6, 12, 0, 0, 0, 0, time.UTC)
	due := DueDateFor(wedding, 12)
	if !due.Equal(time.Date(2026, 6, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected due date %v", due)
	}
	if !DueDateFor(wedding, 0).Equal(wedding) {
		t.Error("zero months should be the wedding date")
	}
}

func TestDueDateFor_ClampsToMonthEnd(t *testing.T) {
	t.Parallel()

	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	tests := []struct {
		wedding time.Time
		months  int
		want    time.Time
	}{
		{day(2027, 3, 31), 1, day(2027, 2, 28)},
		{day(2028, 3, 31), 1, day(2028, 2, 29)},
		{day(2027, 12, 31), 1, day(2027, 11, 30)},
		{day(2027, 12, 31), 10, day(2027, 2, 28)},
		{day(2027, 12, 31), 12, day(2026, 12, 31)},
		{day(2027, 5, 31), 3, day(2027, 2, 28)},
		{day(2027, 1, 15), 2, day(2026, 11, 15)},
	}
	for _, tt := range tests {
		if got := DueDateFor(tt.wedding, tt.months); !got.Equal(tt.want) {
			t.Errorf("DueDateFor(%s, %d) = %s, want %s",
				tt.wedding.Format(DateLayout), tt.months, got.Format(DateLayout), tt.want.Format(DateLayout))
		}
	}
}

func TestTimelineTask_IsOverdue(t *testing.T) {
	t.Parallel()

	now := time.Now()
	past := now.Add(-time.Hour)
	task := &TimelineTask{DueDate: &past}
	if !task.IsOverdue(now) {
		t.Error("expected overdue")
	}
	task.Completed = true
	if task.IsOverdue(now) {
		t.Error("completed tasks are never overdue")
	}
}

// ============================================================================
// Vendor Tests
// ============================================================================

func TestVendorStep_Order(t *testing.T) {
	t.Parallel()

	if VendorStepBusiness.Next() != VendorStepServices {
		t.Error("business should lead to services")
	}
	if VendorStepPortfolio.Next() != VendorStepSubmit {
		t.Error("portfolio should lead to submit")
	}
	if VendorStepSubmit.Next() != VendorStepSubmit {
		t.Error("submit is terminal")
	}
	if VendorStep("bogus").Index() != -1 {
		t.Error("unknown step should have index -1")
	}
}

func TestUpdateVendorStepRequest_Validate_PriceRange(t *testing.T) {
	t.Parallel()

	req := &UpdateVendorStepRequest{
		Step:     VendorStepServices,
		Services: &VendorServicesStep{PriceMin: ptr(int64(5000)), PriceMax: ptr(int64(100))},
	}
	if !hasField(req.Validate(), "services.price_max") {
		t.Error("expected price_max error")
	}
}

func TestUpdateVendorStepRequest_Validate_MissingPayload(t *testing.T) {
	t.Parallel()

	req := &UpdateVendorStepRequest{Step: VendorStepContact}
	if !hasField(req.Validate(), "contact") {
		t.Error("expected contact payload error")
	}
}

func TestVendor_MissingForSubmit(t *testing.T) {
	t.Parallel()

	v := &Vendor{BusinessName: "Petal & Stem", Category: VendorCategoryFlorist}
	errs := v.MissingForSubmit()
	if !hasField(errs, "city") || !hasField(errs, "email") {
		t.Errorf("expected city and contact errors, got %v", errs)
	}

	v.City = ptr("Austin")
	v.Phone = ptr("555-0100")
	if errs := v.MissingForSubmit(); len(errs) > 0 {
		t.Errorf("expected complete vendor, got %v", errs)
	}
}

// ============================================================================
// Moodboard Tests
// ============================================================================

func TestGenerateImagesRequest_Validate(t *testing.T) {
	t.Parallel()

	req := &GenerateImagesRequest{Prompt: strings.Repeat("a", MaxPromptLength+1), Count: 5}
	errs := req.Validate()
	if !hasField(errs, "prompt") || !hasField(errs, "count") {
		t.Errorf("expected prompt and count errors, got %v", errs)
	}

	ok := &GenerateImagesRequest{Prompt: "rustic barn, eucalyptus, candlelight"}
	if errs := ok.Validate(); len(errs) > 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestAddImageRequest_Validate_RequiresHTTPURL(t *testing.T) {
	t.Parallel()

	req := &AddImageRequest{URL: "ftp://example.com/a.png"}
	if !hasField(req.Validate(), "url") {
		t.Error("expected url error")
	}
}

// ============================================================================
// Text Tests
// ============================================================================

func TestValidate_WhitespaceOnlyRequiredFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		errs  []FieldError
		field string
	}{
		{"guest first name", (&CreateGuestRequest{FirstName: "   ", Side: GuestSideBoth}).Validate(), "first_name"},
		{"guest update first name", (&UpdateGuestRequest{FirstName: ptr("\t")}).Validate(), "first_name"},
		{"moodboard prompt", (&GenerateImagesRequest{Prompt: "   "}).Validate(), "prompt"},
		{"task title", (&CreateTaskRequest{Title: " \n "}).Validate(), "title"},
		{"vendor business name", (&UpdateVendorStepRequest{
			Step:     VendorStepBusiness,
			Business: &VendorBusinessStep{BusinessName: "   ", Category: string(VendorCategoryFlorist)},
		}).Validate(), "business.business_name"},
	}
	for _, tt := range tests {
		if !hasField(tt.errs, tt.field) {
			t.Errorf("%s: expected %s error for blank input, got %v", tt.name, tt.field, tt.errs)
		}
	}
}

func TestValidate_LengthCountsCharacters(t *testing.T) {
	t.Parallel()

	// 400 three-byte characters is 1200 bytes but well under the limit
	req := &GenerateImagesRequest{Prompt: strings.Repeat("花", 400)}
	if errs := req.Validate(); len(errs) > 0 {
		t.Errorf("expected multibyte prompt to pass, got %v", errs)
	}

	req = &GenerateImagesRequest{Prompt: strings.Repeat("花", MaxPromptLength+1)}
	if !hasField(req.Validate(), "prompt") {
		t.Error("expected prompt error past the character limit")
	}

	title := &CreateTaskRequest{Title: strings.Repeat("é", MaxTaskTitleLength)}
	if errs := title.Validate(); len(errs) > 0 {
		t.Errorf("expected %d-character title to pass, got %v", MaxTaskTitleLength, errs)
	}
}

func TestRegisterRequest_Validate_PasswordLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		ok       bool
	}{
		{"eight ascii", "abcdefgh", true},
		{"eight multibyte", strings.Repeat("ß", 8), true},
		{"seven multibyte", strings.Repeat("ß", 7), false},
		{"72 bytes", strings.Repeat("a", 72), true},
		{"73 bytes", strings.Repeat("a", 73), false},
		{"30 characters past 72 bytes", strings.Repeat("花", 30), false},
	}
	for _, tt := range tests {
		req := &RegisterRequest{Email: "sam@example.com", Password: tt.password}
		got := !hasField(req.Validate(), "password")
		if got != tt.ok {
			t.Errorf("%s: password valid = %v, want %v", tt.name, got, tt.ok)
		}
	}
}

func TestIsValidCurrency(t *testing.T) {
	t.Parallel()

	for _, c := range []string{"USD", "usd", "Eur"} {
		if !IsValidCurrency(c) {
			t.Errorf("expected %q to be valid", c)
		}
	}
	for _, c := range []string{"", "US", "USDX", "US1", "€€€", "a b"} {
		if IsValidCurrency(c) {
			t.Errorf("expected %q to be rejected", c)
		}
	}

	req := &SetBudgetTotalRequest{TotalBudget: 100, Currency: ptr("€€€")}
	if !hasField(req.Validate(), "currency") {
		t.Error("expected currency error")
	}
}

package types

import (
	"errors"
	"testing"
	"time"
)

var now = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T {
	return &v
}

func validDonationRequest() *CreateDonationRequest {
	return &CreateDonationRequest{
		NgoID:            ptr(int64(7)),
		DonationType:     DonationTypeFood,
		QuantityOrAmount: ptr(50.0),
		Location:         " Boston ",
		PickupDateTime:   "2030-01-03T12:00:00Z",
	}
}

func TestCreateDonationRequest_Validate(t *testing.T) {
	d, err := validDonationRequest().Validate(now)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if d.Status != DonationStatusPending || d.Priority != PriorityMedium || d.Location != "Boston" {
		t.Errorf("Validate() = %+v", d)
	}
	if want := time.Date(2030, 1, 3, 12, 0, 0, 0, time.UTC); !d.PickupDateTime.Equal(want) {
		t.Errorf("pickup = %v, want %v", d.PickupDateTime, want)
	}
}

func TestCreateDonationRequest_ValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *CreateDonationRequest)
		want   string
	}{
		{name: "missing ngo", mutate: func(r *CreateDonationRequest) { r.NgoID = nil }, want: "Missing required fields: ngo_id"},
		{name: "missing location and pickup", mutate: func(r *CreateDonationRequest) { r.Location = " "; r.PickupDateTime = "" }, want: "Missing required fields: location, pickup_date_time"},
		{name: "bad type", mutate: func(r *CreateDonationRequest) { r.DonationType = "cash" }, want: errInvalidDonationType.Message},
		{name: "zero quantity", mutate: func(r *CreateDonationRequest) { r.QuantityOrAmount = ptr(0.0) }, want: "Quantity or amount must be greater than 0"},
		{name: "sub-cent quantity", mutate: func(r *CreateDonationRequest) { r.QuantityOrAmount = ptr(0.001) }, want: "Quantity or amount must have at most 2 decimal places"},
		{name: "quantity too large", mutate: func(r *CreateDonationRequest) { r.QuantityOrAmount = ptr(1e13) }, want: "Quantity or amount must be less than 10000000000"},
		{name: "largest quantity", mutate: func(r *CreateDonationRequest) { r.QuantityOrAmount = ptr(9999999999.99) }, want: ""},
		{name: "cents", mutate: func(r *CreateDonationRequest) { r.QuantityOrAmount = ptr(0.29) }, want: ""},
		{name: "pickup now", mutate: func(r *CreateDonationRequest) { r.PickupDateTime = "2030-01-01T12:00:00Z" }, want: "Pickup date must be in the future"},
		{name: "pickup one second later", mutate: func(r *CreateDonationRequest) { r.PickupDateTime = "2030-01-01T12:00:01Z" }, want: ""},
		{name: "bad priority", mutate: func(r *CreateDonationRequest) { r.Priority = "asap" }, want: errInvalidPriority.Message},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validDonationRequest()
			tt.mutate(r)

			_, err := r.Validate(now)
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			if err == nil || err.Error() != tt.want {
				t.Fatalf("Validate() error = %v, want %q", err, tt.want)
			}
			if KindOf(err) != KindValidation {
				t.Errorf("KindOf() = %s, want validation", KindOf(err))
			}
		})
	}
}

func TestDonationStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to DonationStatus
		want     bool
	}{
		{DonationStatusPending, DonationStatusConfirmed, true},
		{DonationStatusPending, DonationStatusCompleted, true},
		{DonationStatusPending, DonationStatusCancelled, true},
		{DonationStatusConfirmed, DonationStatusCompleted, true},
		{DonationStatusConfirmed, DonationStatusCancelled, true},
		{DonationStatusConfirmed, DonationStatusPending, false},
		{DonationStatusCompleted, DonationStatusCancelled, false},
		{DonationStatusCancelled, DonationStatusPending, false},
		{DonationStatusCancelled, DonationStatusCancelled, true},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s.CanTransitionTo(%s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestDonationUpdate_Fields(t *testing.T) {
	u := &DonationUpdate{
		Location:    ptr(" Cambridge "),
		Description: ptr("   "),
		Status:      ptr(DonationStatusConfirmed),
	}

	fields, err := u.Fields(now)
	if err != nil {
		t.Fatalf("Fields() error = %v", err)
	}

	if fields["location"] != "Cambridge" {
		t.Errorf("location = %v", fields["location"])
	}
	if v, ok := fields["description"].(*string); !ok || v != nil {
		t.Errorf("blank description should clear the column, got %v", fields["description"])
	}
	if fields["status"] != DonationStatusConfirmed {
		t.Errorf("status = %v", fields["status"])
	}
	if len(fields) != 3 {
		t.Errorf("fields = %v, want exactly the supplied keys", fields)
	}

	if _, err := (&DonationUpdate{}).Fields(now); !errors.Is(err, ErrNoUpdateFields) {
		t.Errorf("empty update error = %v, want ErrNoUpdateFields", err)
	}

	if _, err := (&DonationUpdate{QuantityOrAmount: ptr(1e10)}).Fields(now); KindOf(err) != KindValidation {
		t.Errorf("oversized quantity error = %v, want validation", err)
	}

	if _, err := (&DonationUpdate{Status: ptr(DonationStatus("Lost"))}).Fields(now); KindOf(err) != KindValidation {
		t.Errorf("unknown status error = %v, want validation", err)
	}
}

func TestDonationFilters_Query(t *testing.T) {
	q, err := (&DonationFilters{
		DonationType: "food",
		Location:     " bos ",
		DateFrom:     "2030-01-02",
		DateTo:       "2030-01-02",
		NgoID:        ptr(int64(3)),
	}).Query()
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if *q.Location != "bos" || *q.DonationType != DonationTypeFood || *q.NgoID != 3 || q.Status != nil {
		t.Errorf("Query() = %+v", q)
	}

	inDay := &Donation{DonationType: DonationTypeFood, Location: "Boston", NgoID: 3, PickupDateTime: time.Date(2030, 1, 2, 23, 59, 0, 0, time.UTC)}
	if !q.Matches(inDay) {
		t.Error("expected a pickup late on date_to to match")
	}

	nextDay := *inDay
	nextDay.PickupDateTime = time.Date(2030, 1, 3, 0, 0, 0, 0, time.UTC)
	if q.Matches(&nextDay) {
		t.Error("expected a pickup on the following day not to match")
	}
}

func TestInvalidTransitionError(t *testing.T) {
	err := InvalidTransitionError(DonationStatusCancelled, DonationStatusPending)
	if err.Kind != KindInvalidState || err.Message != "Cannot change donation status from Cancelled to Pending" {
		t.Errorf("InvalidTransitionError() = %+v", err)
	}
}

func TestDonationStatus_Terminal(t *testing.T) {
	for _, s := range []DonationStatus{DonationStatusCompleted, DonationStatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%s.Terminal() = false, want true", s)
		}
	}
	for _, s := range []DonationStatus{DonationStatusPending, DonationStatusConfirmed} {
		if s.Terminal() {
			t.Errorf("%s.Terminal() = true, want false", s)
		}
	}

	if err := ClosedDonationError(DonationStatusCancelled); err.Kind != KindInvalidState || err.Message != "Cannot modify a cancelled donation" {
		t.Errorf("ClosedDonationError() = %+v", err)
	}
}

package types

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type DonationType string

const (
	DonationTypeFood        DonationType = "food"
	DonationTypeFunds       DonationType = "funds"
	DonationTypeClothes     DonationType = "clothes"
	DonationTypeEducation   DonationType = "education"
	DonationTypeMedical     DonationType = "medical"
	DonationTypeShelter     DonationType = "shelter"
	DonationTypeToys        DonationType = "toys"
	DonationTypeBooks       DonationType = "books"
	DonationTypeElectronics DonationType = "electronics"
	DonationTypeOther       DonationType = "other"
)

var DonationTypes = []DonationType{
	DonationTypeFood,
	DonationTypeFunds,
	DonationTypeClothes,
	DonationTypeEducation,
	DonationTypeMedical,
	DonationTypeShelter,
	DonationTypeToys,
	DonationTypeBooks,
	DonationTypeElectronics,
	DonationTypeOther,
}

func (t DonationType) Valid() bool {
	for _, v := range DonationTypes {
		if t == v {
			return true
		}
	}
	return false
}

type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "Pending"
	DonationStatusConfirmed DonationStatus = "Confirmed"
	DonationStatusCompleted DonationStatus = "Completed"
	DonationStatusCancelled DonationStatus = "Cancelled"
)

func (s DonationStatus) Valid() bool {
	switch s {
	case DonationStatusPending, DonationStatusConfirmed, DonationStatusCompleted, DonationStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a donation in status s may move to next.
// Re-applying the current status is always allowed.
func (s DonationStatus) CanTransitionTo(next DonationStatus) bool {
	if s == next {
		return true
	}

	switch s {
	case DonationStatusPending:
		return next == DonationStatusConfirmed || next == DonationStatusCompleted || next == DonationStatusCancelled
	case DonationStatusConfirmed:
		return next == DonationStatusCompleted || next == DonationStatusCancelled
	}

	return false
}

// Terminal reports whether a donation in status s is closed to edits.
func (s DonationStatus) Terminal() bool {
	return s == DonationStatusCompleted || s == DonationStatusCancelled
}

// ClosedDonationError is returned when fields other than status are changed
// on a terminal donation.
func ClosedDonationError(status DonationStatus) *Error {
	return NewError(KindInvalidState, fmt.Sprintf("Cannot modify a %s donation", strings.ToLower(string(status))))
}

// InvalidTransitionError is returned when a status change breaks the lifecycle.
func InvalidTransitionError(from, to DonationStatus) *Error {
	if from == DonationStatusCompleted && to == DonationStatusCancelled {
		return NewError(KindInvalidState, "Cannot cancel a completed donation")
	}
	return NewError(KindInvalidState, fmt.Sprintf("Cannot change donation status from %s to %s", from, to))
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Donation struct {
	ID               int64          `db:"id" json:"id"`
	NgoID            int64          `db:"ngo_id" json:"ngo_id"`
	DonationType     DonationType   `db:"donation_type" json:"donation_type"`
	QuantityOrAmount float64        `db:"quantity_or_amount" json:"quantity_or_amount"`
	Location         string         `db:"location" json:"location"`
	PickupDateTime   time.Time      `db:"pickup_date_time" json:"pickup_date_time"`
	Status           DonationStatus `db:"status" json:"status"`
	Priority         Priority       `db:"priority" json:"priority"`
	Description      *string        `db:"description" json:"description"`
	Images           *string        `db:"images" json:"images"`
	NgoName          *string        `db:"ngo_name" json:"ngo_name"`
	NgoEmail         *string        `db:"ngo_email" json:"ngo_email"`
	ContactInfo      *string        `db:"contact_info" json:"contact_info"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// Summary is a short human description used in notifications.
func (d *Donation) Summary() string {
	if d.Description != nil && strings.TrimSpace(*d.Description) != "" {
		return strings.TrimSpace(*d.Description)
	}
	return string(d.DonationType) + " in " + d.Location
}

type CreateDonationRequest struct {
	NgoID            *int64       `json:"ngo_id"`
	DonationType     DonationType `json:"donation_type"`
	QuantityOrAmount *float64     `json:"quantity_or_amount"`
	Location         string       `json:"location"`
	PickupDateTime   string       `json:"pickup_date_time"`
	Priority         Priority     `json:"priority"`
	Description      *string      `json:"description"`
	Images           *string      `json:"images"`
}

// Validate checks the request against the creation rules and returns the
// donation to persist. now is the server clock used for the pickup check.
func (r *CreateDonationRequest) Validate(now time.Time) (*Donation, error) {
	location := strings.TrimSpace(r.Location)

	missing := make([]string, 0, 5)
	if r.NgoID == nil || *r.NgoID <= 0 {
		missing = append(missing, "ngo_id")
	}
	if r.DonationType == "" {
		missing = append(missing, "donation_type")
	}
	if r.QuantityOrAmount == nil {
		missing = append(missing, "quantity_or_amount")
	}
	if location == "" {
		missing = append(missing, "location")
	}
	if strings.TrimSpace(r.PickupDateTime) == "" {
		missing = append(missing, "pickup_date_time")
	}
	if len(missing) > 0 {
		return nil, Validationf("Missing required fields: %s", strings.Join(missing, ", "))
	}

	if !r.DonationType.Valid() {
		return nil, errInvalidDonationType
	}

	if err := checkAmount("Quantity or amount", *r.QuantityOrAmount); err != nil {
		return nil, err
	}

	pickup, err := parsePickup(r.PickupDateTime, now)
	if err != nil {
		return nil, err
	}

	priority := r.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		return nil, errInvalidPriority
	}

	return &Donation{
		NgoID:            *r.NgoID,
		DonationType:     r.DonationType,
		QuantityOrAmount: *r.QuantityOrAmount,
		Location:         location,
		PickupDateTime:   pickup,
		Status:           DonationStatusPending,
		Priority:         priority,
		Description:      trimmedOrNil(r.Description),
		Images:           trimmedOrNil(r.Images),
	}, nil
}

// DonationUpdate is the allow-list of fields an NGO may change on its donation.
// Anything else in the payload, including id and created_at, is dropped by the decoder.
type DonationUpdate struct {
	DonationType     *DonationType   `json:"donation_type"`
	QuantityOrAmount *float64        `json:"quantity_or_amount"`
	Location         *string         `json:"location"`
	PickupDateTime   *string         `json:"pickup_date_time"`
	Priority         *Priority       `json:"priority"`
	Description      *string         `json:"description"`
	Images           *string         `json:"images"`
	Status           *DonationStatus `json:"status"`
}

// Fields validates every supplied field and returns them keyed by column.
func (u *DonationUpdate) Fields(now time.Time) (map[string]any, error) {
	fields := make(map[string]any)

	if u.DonationType != nil {
		if !u.DonationType.Valid() {
			return nil, errInvalidDonationType
		}
		fields["donation_type"] = *u.DonationType
	}

	if u.QuantityOrAmount != nil {
		if err := checkAmount("Quantity or amount", *u.QuantityOrAmount); err != nil {
			return nil, err
		}
		fields["quantity_or_amount"] = *u.QuantityOrAmount
	}

	if u.Location != nil {
		location := strings.TrimSpace(*u.Location)
		if location == "" {
			return nil, Validationf("Location cannot be empty")
		}
		fields["location"] = location
	}

	if u.PickupDateTime != nil {
		pickup, err := parsePickup(*u.PickupDateTime, now)
		if err != nil {
			return nil, err
		}
		fields["pickup_date_time"] = pickup
	}

	if u.Priority != nil {
		if !u.Priority.Valid() {
			return nil, errInvalidPriority
		}
		fields["priority"] = *u.Priority
	}

	if u.Description != nil {
		fields["description"] = trimmedOrNil(u.Description)
	}

	if u.Images != nil {
		fields["images"] = trimmedOrNil(u.Images)
	}

	if u.Status != nil {
		if !u.Status.Valid() {
			return nil, Validationf("Invalid status. Must be one of: Pending, Confirmed, Completed, Cancelled")
		}
		fields["status"] = *u.Status
	}

	if len(fields) == 0 {
		return nil, ErrNoUpdateFields
	}

	return fields, nil
}

// DonationFilters are the optional list filters, decoded from the query string.
type DonationFilters struct {
	DonationType string `form:"donation_type"`
	Location     string `form:"location"`
	DateFrom     string `form:"date_from"`
	DateTo       string `form:"date_to"`
	Status       string `form:"status"`
	NgoID        *int64 `form:"ngo_id"`
}

type DonationQuery struct {
	DonationType *DonationType
	Location     *string
	From         *time.Time
	To           *time.Time
	Status       *DonationStatus
	NgoID        *int64
}

// Query normalizes the filters. Unknown enum values are kept so they match
// nothing; only unparseable dates are rejected.
func (f *DonationFilters) Query() (*DonationQuery, error) {
	q := new(DonationQuery)

	if v := strings.TrimSpace(f.DonationType); v != "" {
		t := DonationType(v)
		q.DonationType = &t
	}

	if v := strings.TrimSpace(f.Location); v != "" {
		q.Location = &v
	}

	if v := strings.TrimSpace(f.Status); v != "" {
		s := DonationStatus(v)
		q.Status = &s
	}

	if f.NgoID != nil {
		id := *f.NgoID
		q.NgoID = &id
	}

	if strings.TrimSpace(f.DateFrom) != "" {
		from, _, err := ParseTimestamp(f.DateFrom)
		if err != nil {
			return nil, Validationf("Invalid date_from: expected an ISO 8601 date or timestamp")
		}
		q.From = &from
	}

	if strings.TrimSpace(f.DateTo) != "" {
		to, dateOnly, err := ParseTimestamp(f.DateTo)
		if err != nil {
			return nil, Validationf("Invalid date_to: expected an ISO 8601 date or timestamp")
		}
		if dateOnly {
			// a bare date covers the whole day
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		q.To = &to
	}

	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return nil, Validationf("date_from must not be after date_to")
	}

	return q, nil
}

// Matches reports whether d satisfies every filter in q.
func (q *DonationQuery) Matches(d *Donation) bool {
	if q.DonationType != nil && d.DonationType != *q.DonationType {
		return false
	}
	if q.Location != nil && !strings.Contains(strings.ToLower(d.Location), strings.ToLower(*q.Location)) {
		return false
	}
	if q.From != nil && d.PickupDateTime.Before(*q.From) {
		return false
	}
	if q.To != nil && d.PickupDateTime.After(*q.To) {
		return false
	}
	if q.Status != nil && d.Status != *q.Status {
		return false
	}
	if q.NgoID != nil && d.NgoID != *q.NgoID {
		return false
	}
	return true
}

var (
	errInvalidDonationType = Validationf("Invalid donation type. Must be one of: food, funds, clothes, education, medical, shelter, toys, books, electronics, other")
	errInvalidPriority     = Validationf("Invalid priority. Must be one of: low, medium, high, urgent")
	errPickupInPast        = Validationf("Pickup date must be in the future")
	errInvalidPickupDate   = Validationf("Invalid pickup_date_time: expected an ISO 8601 timestamp")
)

// MaxAmount is the first value too large for the NUMERIC(12, 2) amount columns.
const MaxAmount = 1e10

// checkAmount rejects amounts the database cannot store exactly: non-positive
// values, values of MaxAmount or more, and fractions finer than a cent.
func checkAmount(label string, v float64) error {
	switch {
	case math.IsNaN(v) || v <= 0:
		return Validationf("%s must be greater than 0", label)
	case v >= MaxAmount:
		return Validationf("%s must be less than 10000000000", label)
	case math.Round(v*100)/100 != v:
		return Validationf("%s must have at most 2 decimal places", label)
	}
	return nil
}

func parsePickup(value string, now time.Time) (time.Time, error) {
	pickup, _, err := ParseTimestamp(value)
	if err != nil {
		return time.Time{}, errInvalidPickupDate
	}

	if !pickup.After(now) {
		return time.Time{}, errPickupInPast
	}

	return pickup, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

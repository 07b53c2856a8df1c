package types

import (
	"strings"
	"time"
)

type ContributionStatus string

const (
	ContributionStatusPending   ContributionStatus = "Pending"
	ContributionStatusConfirmed ContributionStatus = "Confirmed"
	ContributionStatusCompleted ContributionStatus = "Completed"
)

func (s ContributionStatus) Valid() bool {
	switch s {
	case ContributionStatusPending, ContributionStatusConfirmed, ContributionStatusCompleted:
		return true
	}
	return false
}

// Advances reports whether a contribution in this status moves a pending donation forward.
func (s ContributionStatus) Advances() bool {
	return s == ContributionStatusConfirmed || s == ContributionStatusCompleted
}

type Contribution struct {
	ID                      int64              `db:"id" json:"id"`
	DonationID              int64              `db:"donation_id" json:"donation_id"`
	DonorID                 int64              `db:"donor_id" json:"donor_id"`
	ContributionAmount      float64            `db:"contribution_amount" json:"contribution_amount"`
	Notes                   *string            `db:"notes" json:"notes"`
	Status                  ContributionStatus `db:"status" json:"status"`
	ScheduledPickupDateTime *time.Time         `db:"scheduled_pickup_date_time" json:"scheduled_pickup_date_time,omitempty"`
	PickupAddress           *string            `db:"pickup_address" json:"pickup_address,omitempty"`
	CreatedAt               time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time          `db:"updated_at" json:"updated_at"`
}

// ContributionView is a contribution joined with display fields of either its
// donation or its donor, depending on the read.
type ContributionView struct {
	Contribution

	NgoID        *int64        `db:"ngo_id" json:"ngo_id,omitempty"`
	DonationType *DonationType `db:"donation_type" json:"donation_type,omitempty"`
	Location     *string       `db:"location" json:"location,omitempty"`
	NgoName      *string       `db:"ngo_name" json:"ngo_name,omitempty"`

	DonorName  *string `db:"donor_name" json:"donor_name,omitempty"`
	DonorEmail *string `db:"donor_email" json:"donor_email,omitempty"`

	Pickup *Pickup `db:"-" json:"pickup,omitempty"`
}

type PickupStatus string

const PickupStatusScheduled PickupStatus = "Scheduled"

type Pickup struct {
	ID                int64        `db:"id" json:"id"`
	ContributionID    int64        `db:"contribution_id" json:"contribution_id"`
	ScheduledDateTime time.Time    `db:"scheduled_date_time" json:"scheduled_date_time"`
	PickupAddress     string       `db:"pickup_address" json:"pickup_address"`
	Status            PickupStatus `db:"status" json:"status"`
	CreatedAt         time.Time    `db:"created_at" json:"created_at"`
}

type CreateContributionRequest struct {
	DonationID              *int64   `json:"donation_id"`
	DonorID                 *int64   `json:"donor_id"`
	ContributionAmount      *float64 `json:"contribution_amount"`
	Notes                   *string  `json:"notes"`
	ScheduledPickupDateTime *string  `json:"scheduled_pickup_date_time"`
	PickupAddress           *string  `json:"pickup_address"`
}

// Validate returns the contribution to persist and, when both pickup fields
// are present, the pickup to schedule alongside it.
func (r *CreateContributionRequest) Validate(now time.Time) (*Contribution, *Pickup, error) {
	missing := make([]string, 0, 3)
	if r.DonationID == nil || *r.DonationID <= 0 {
		missing = append(missing, "donation_id")
	}
	if r.DonorID == nil || *r.DonorID <= 0 {
		missing = append(missing, "donor_id")
	}
	if r.ContributionAmount == nil {
		missing = append(missing, "contribution_amount")
	}
	if len(missing) > 0 {
		return nil, nil, Validationf("Missing required fields: %s", strings.Join(missing, ", "))
	}

	if err := checkAmount("Contribution amount", *r.ContributionAmount); err != nil {
		return nil, nil, err
	}

	contribution := &Contribution{
		DonationID:         *r.DonationID,
		DonorID:            *r.DonorID,
		ContributionAmount: *r.ContributionAmount,
		Notes:              trimmedOrNil(r.Notes),
		Status:             ContributionStatusPending,
		PickupAddress:      trimmedOrNil(r.PickupAddress),
	}

	if r.ScheduledPickupDateTime != nil && strings.TrimSpace(*r.ScheduledPickupDateTime) != "" {
		scheduled, err := parsePickup(*r.ScheduledPickupDateTime, now)
		if err != nil {
			return nil, nil, err
		}
		contribution.ScheduledPickupDateTime = &scheduled
	}

	var pickup *Pickup
	if contribution.ScheduledPickupDateTime != nil && contribution.PickupAddress != nil {
		pickup = &Pickup{
			ScheduledDateTime: *contribution.ScheduledPickupDateTime,
			PickupAddress:     *contribution.PickupAddress,
			Status:            PickupStatusScheduled,
		}
	}

	return contribution, pickup, nil
}

type UpdateContributionStatusRequest struct {
	Status ContributionStatus `json:"status"`
}

func (r *UpdateContributionStatusRequest) Validate() error {
	if !r.Status.Valid() {
		return Validationf("Invalid status. Must be one of: Pending, Confirmed, Completed")
	}
	return nil
}

package types

import (
	"fmt"
	"time"
)

type NotificationType string

const (
	NotificationDonationCreated           NotificationType = "donation_created"
	NotificationContributionReceived      NotificationType = "contribution_received"
	NotificationContributionStatusChanged NotificationType = "contribution_status_changed"
)

type Notification struct {
	ID             string           `db:"id" json:"id"`
	UserID         int64            `db:"user_id" json:"user_id"`
	Type           NotificationType `db:"type" json:"type"`
	Title          string           `db:"title" json:"title"`
	Message        string           `db:"message" json:"message"`
	FromUser       *string          `db:"from_user" json:"from_user,omitempty"`
	FromUserRole   *Role            `db:"from_user_role" json:"from_user_role,omitempty"`
	DonationID     *int64           `db:"donation_id" json:"donation_id,omitempty"`
	ContributionID *int64           `db:"contribution_id" json:"contribution_id,omitempty"`
	Read           bool             `db:"read" json:"read"`
	CreatedAt      time.Time        `db:"created_at" json:"timestamp"`
}

type NotificationFilter struct {
	UnreadOnly bool `form:"unread"`
}

// DonationCreatedNotification is the template fanned out to every donor.
func DonationCreatedNotification(ngoName string, donation *Donation) *Notification {
	role := RoleNGO
	return &Notification{
		Type:         NotificationDonationCreated,
		Title:        "New Donation Available",
		Message:      fmt.Sprintf("%s created a new donation: %s", ngoName, donation.Summary()),
		FromUser:     &ngoName,
		FromUserRole: &role,
		DonationID:   &donation.ID,
	}
}

func ContributionReceivedNotification(ngoID int64, donorName string, donation *Donation, contributionID int64) *Notification {
	role := RoleDonor
	return &Notification{
		UserID:         ngoID,
		Type:           NotificationContributionReceived,
		Title:          "New Contribution Received",
		Message:        fmt.Sprintf("%s contributed to your donation: %s", donorName, donation.Summary()),
		FromUser:       &donorName,
		FromUserRole:   &role,
		DonationID:     &donation.ID,
		ContributionID: &contributionID,
	}
}

func ContributionStatusNotification(contribution *Contribution, ngoName string) *Notification {
	role := RoleNGO
	return &Notification{
		UserID:         contribution.DonorID,
		Type:           NotificationContributionStatusChanged,
		Title:          "Contribution Updated",
		Message:        fmt.Sprintf("%s marked your contribution as %s", ngoName, contribution.Status),
		FromUser:       &ngoName,
		FromUserRole:   &role,
		DonationID:     &contribution.DonationID,
		ContributionID: &contribution.ID,
	}
}

package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"charityportal/pkg/types"

	"github.com/sirupsen/logrus"
)

var seedDonationTypes = []types.DonationType{
	types.DonationTypeFood,
	types.DonationTypeClothes,
	types.DonationTypeBooks,
	types.DonationTypeMedical,
	types.DonationTypeFunds,
	types.DonationTypeShelter,
	types.DonationTypeEducation,
}

var seedDescriptions = map[types.DonationType]string{
	types.DonationTypeFood:      "[seed] Weekly produce and canned goods drive",
	types.DonationTypeClothes:   "[seed] Winter coats and blankets",
	types.DonationTypeBooks:     "[seed] Children's books for the reading room",
	types.DonationTypeMedical:   "[seed] First aid kits and basic supplies",
	types.DonationTypeFunds:     "[seed] Emergency rent assistance fund",
	types.DonationTypeShelter:   "[seed] Cots and sleeping bags for overflow nights",
	types.DonationTypeEducation: "[seed] School supplies for the fall term",
}

var seedLocations = []string{"Boston", "Cambridge", "Somerville", "Quincy"}

var seedPriorities = []types.Priority{types.PriorityLow, types.PriorityMedium, types.PriorityHigh, types.PriorityUrgent}

type DonationStore interface {
	Donations(ctx context.Context, q *types.DonationQuery) ([]*types.Donation, error)
	Create(ctx context.Context, donation *types.Donation) error
}

type ContributionStore interface {
	Create(ctx context.Context, contribution *types.Contribution, pickup *types.Pickup) (*types.ContributionView, error)
}

// SeedDonations gives each seed NGO count open donations unless it already
// has some, then has every seed donor contribute to the first of them.
func SeedDonations(
	ctx context.Context,
	logger logrus.FieldLogger,
	donations DonationStore,
	contributions ContributionStore,
	seeded map[string]*types.User,
	count int,
	now time.Time,
) error {
	if count <= 0 {
		logger.Info("skipping donation seed because count <= 0")
		return nil
	}

	rng := rand.New(rand.NewSource(now.UnixNano()))
	donors := UsersByRole(seeded, types.RoleDonor)

	for _, ngo := range UsersByRole(seeded, types.RoleNGO) {
		ngoID := ngo.ID
		existing, err := donations.Donations(ctx, &types.DonationQuery{NgoID: &ngoID})
		if err != nil {
			return fmt.Errorf("failed to list donations for ngo %d: %w", ngo.ID, err)
		}
		if len(existing) > 0 {
			logger.WithField("ngo_id", ngo.ID).Info("ngo already has donations, skipping")
			continue
		}

		created := make([]*types.Donation, 0, count)
		for i := range count {
			donation := fakeDonation(rng, ngo.ID, i, now)
			if err := donations.Create(ctx, donation); err != nil {
				return fmt.Errorf("failed to create seed donation for ngo %d: %w", ngo.ID, err)
			}
			created = append(created, donation)
		}

		for _, donor := range donors {
			contribution := &types.Contribution{
				DonationID:         created[0].ID,
				DonorID:            donor.ID,
				ContributionAmount: float64(5 + rng.Intn(20)),
				Status:             types.ContributionStatusPending,
			}
			if _, err := contributions.Create(ctx, contribution, nil); err != nil {
				return fmt.Errorf("failed to create seed contribution for donor %d: %w", donor.ID, err)
			}
		}

		logger.WithFields(logrus.Fields{
			"ngo_id":        ngo.ID,
			"donations":     len(created),
			"contributions": len(donors),
		}).Info("seeded ngo donations")
	}

	return nil
}

func fakeDonation(rng *rand.Rand, ngoID int64, i int, now time.Time) *types.Donation {
	donationType := seedDonationTypes[i%len(seedDonationTypes)]
	description := seedDescriptions[donationType]

	return &types.Donation{
		NgoID:            ngoID,
		DonationType:     donationType,
		QuantityOrAmount: float64(10 + rng.Intn(490)),
		Location:         seedLocations[rng.Intn(len(seedLocations))],
		PickupDateTime:   now.Add(time.Duration(1+rng.Intn(14)) * 24 * time.Hour).Truncate(time.Hour),
		Status:           types.DonationStatusPending,
		Priority:         seedPriorities[rng.Intn(len(seedPriorities))],
		Description:      &description,
	}
}

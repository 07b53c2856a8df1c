package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"charityportal/internal/utils"
	"charityportal/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const contributionTableName = "contributions"

var contributionColumns = utils.StructTagValues(types.Contribution{})

type ContributionRepository struct {
	pool *pgxpool.Pool
}

func NewContributionRepository(pool *pgxpool.Pool) *ContributionRepository {
	return &ContributionRepository{pool: pool}
}

func contributionsByDonorQuery(donorID int64) (string, []any, error) {
	columns := append(utils.PrefixColumns("c", contributionColumns), "d.ngo_id", "d.donation_type", "d.location", "d.ngo_name")

	return psql().
		Select(columns...).
		From(contributionTableName + " c").
		Join(donationTableName + " d ON d.id = c.donation_id").
		Where(sq.Eq{"c.donor_id": donorID}).
		OrderBy("c.created_at DESC", "c.id DESC").
		ToSql()
}

func contributionsByDonationQuery(donationID int64) (string, []any, error) {
	columns := append(utils.PrefixColumns("c", contributionColumns), "u.name AS donor_name", "u.email AS donor_email")

	return psql().
		Select(columns...).
		From(contributionTableName + " c").
		Join(userTableName + " u ON u.id = c.donor_id").
		Where(sq.Eq{"c.donation_id": donationID}).
		OrderBy("c.created_at DESC", "c.id DESC").
		ToSql()
}

// ContributionsByDonor lists a donor's contributions with the display fields
// of the donations they went to.
func (r *ContributionRepository) ContributionsByDonor(ctx context.Context, donorID int64) ([]*types.ContributionView, error) {
	query, args, err := contributionsByDonorQuery(donorID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate contributions by donor query: %w", err)
	}

	return r.selectViews(ctx, query, args)
}

// ContributionsByDonation lists a donation's contributions with donor names and emails.
func (r *ContributionRepository) ContributionsByDonation(ctx context.Context, donationID int64) ([]*types.ContributionView, error) {
	query, args, err := contributionsByDonationQuery(donationID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate contributions by donation query: %w", err)
	}

	return r.selectViews(ctx, query, args)
}

func (r *ContributionRepository) selectViews(ctx context.Context, query string, args []any) ([]*types.ContributionView, error) {
	views := make([]*types.ContributionView, 0)
	err := pgxscan.Select(ctx, r.pool, &views, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contributions: %w", err)
	}

	if err := attachPickups(ctx, r.pool, views); err != nil {
		return nil, err
	}

	return views, nil
}

// Contribution returns a single contribution with its donation's display fields.
func (r *ContributionRepository) Contribution(ctx context.Context, contributionID int64) (*types.ContributionView, error) {
	contribution, err := contributionByID(ctx, r.pool, contributionID, false)
	if err != nil {
		return nil, err
	}

	donation, err := donationByID(ctx, r.pool, contribution.DonationID, false)
	if err != nil {
		return nil, err
	}

	view := contributionView(contribution, donation)
	if err := attachPickups(ctx, r.pool, []*types.ContributionView{view}); err != nil {
		return nil, err
	}

	return view, nil
}

func contributionByID(ctx context.Context, db dbtx, contributionID int64, lock bool) (*types.Contribution, error) {
	builder := psql().
		Select(contributionColumns...).
		From(contributionTableName).
		Where(sq.Eq{"id": contributionID}).
		Limit(1)
	if lock {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate contribution query: %w", err)
	}

	var contribution types.Contribution
	err = pgxscan.Get(ctx, db, &contribution, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrContributionNotFound
		}
		return nil, fmt.Errorf("failed to fetch contribution: %w", err)
	}

	return &contribution, nil
}

// Create records a contribution by a Donor account against a live donation. The donation row is
// locked so a concurrent cancel cannot slip in between the check and the
// insert. The optional pickup and the NGO's notification are written in the
// same transaction.
func (r *ContributionRepository) Create(ctx context.Context, contribution *types.Contribution, pickup *types.Pickup) (*types.ContributionView, error) {
	var view *types.ContributionView

	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		donation, err := donationByID(ctx, tx, contribution.DonationID, true)
		if err != nil {
			return err
		}

		if donation.Status == types.DonationStatusCancelled {
			return types.ErrDonationCancelled
		}

		donor, err := userByID(ctx, tx, contribution.DonorID)
		if err != nil {
			if errors.Is(err, types.ErrUserNotFound) {
				return types.ErrDonorNotFound
			}
			return err
		}

		if donor.Role != types.RoleDonor {
			return types.ErrDonorNotFound
		}

		now := time.Now()
		contribution.CreatedAt = now
		contribution.UpdatedAt = now
		if contribution.Status == "" {
			contribution.Status = types.ContributionStatusPending
		}

		query, args, err := psql().
			Insert(contributionTableName).
			SetMap(utils.StructToMap(contribution, "id")).
			Suffix("RETURNING " + columnList(contributionColumns)).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate create contribution query: %w", err)
		}

		err = pgxscan.Get(ctx, tx, contribution, query, args...)
		if err != nil {
			if pgErrorCode(err) == pgForeignKeyViolation {
				return types.ErrDonorNotFound
			}
			if rerr := rangeError(err); rerr != nil {
				return rerr
			}
			return fmt.Errorf("failed to create contribution: %w", err)
		}

		view = contributionView(contribution, donation)

		if pickup != nil {
			pickup.ContributionID = contribution.ID
			if err := insertPickup(ctx, tx, pickup); err != nil {
				return err
			}
			view.Pickup = pickup
		}

		notification := types.ContributionReceivedNotification(donation.NgoID, donor.Name, donation, contribution.ID)
		return insertNotifications(ctx, tx, []*types.Notification{notification})
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// UpdateStatus moves a contribution to status. Confirming or completing a
// contribution also confirms a still-pending donation, and the donor is told
// about the change.
func (r *ContributionRepository) UpdateStatus(ctx context.Context, contributionID int64, status types.ContributionStatus) (*types.ContributionView, error) {
	var view *types.ContributionView

	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		contribution, err := contributionByID(ctx, tx, contributionID, true)
		if err != nil {
			return err
		}

		donation, err := donationByID(ctx, tx, contribution.DonationID, true)
		if err != nil {
			return err
		}

		previous := contribution.Status

		query, args, err := psql().
			Update(contributionTableName).
			Set("status", status).
			Set("updated_at", time.Now()).
			Where(sq.Eq{"id": contributionID}).
			Suffix("RETURNING " + columnList(contributionColumns)).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate update contribution status query: %w", err)
		}

		if err := pgxscan.Get(ctx, tx, contribution, query, args...); err != nil {
			return fmt.Errorf("failed to update contribution status: %w", err)
		}

		if status.Advances() && donation.Status == types.DonationStatusPending {
			donation, err = updateDonation(ctx, tx, donation.ID, map[string]any{"status": types.DonationStatusConfirmed})
			if err != nil {
				return err
			}
		}

		view = contributionView(contribution, donation)
		if err := attachPickups(ctx, tx, []*types.ContributionView{view}); err != nil {
			return err
		}

		if previous == status {
			return nil
		}

		notification := types.ContributionStatusNotification(contribution, utils.PtrString(donation.NgoName))
		return insertNotifications(ctx, tx, []*types.Notification{notification})
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

func contributionView(contribution *types.Contribution, donation *types.Donation) *types.ContributionView {
	return &types.ContributionView{
		Contribution: *contribution,
		NgoID:        &donation.NgoID,
		DonationType: &donation.DonationType,
		Location:     &donation.Location,
		NgoName:      donation.NgoName,
	}
}

package store

import (
	"context"
	"fmt"
	"time"

	"charityportal/internal/utils"
	"charityportal/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const donationTableName = "donations"

var donationColumns = utils.StructTagValues(types.Donation{})

type DonationRepository struct {
	pool *pgxpool.Pool
}

func NewDonationRepository(pool *pgxpool.Pool) *DonationRepository {
	return &DonationRepository{pool: pool}
}

func donationListQuery(q *types.DonationQuery) (string, []any, error) {
	builder := psql().
		Select(donationColumns...).
		From(donationTableName)

	if q != nil {
		if q.DonationType != nil {
			builder = builder.Where(sq.Eq{"donation_type": *q.DonationType})
		}
		if q.Location != nil {
			builder = builder.Where(sq.ILike{"location": containsPattern(*q.Location)})
		}
		if q.From != nil {
			builder = builder.Where(sq.GtOrEq{"pickup_date_time": *q.From})
		}
		if q.To != nil {
			builder = builder.Where(sq.LtOrEq{"pickup_date_time": *q.To})
		}
		if q.Status != nil {
			builder = builder.Where(sq.Eq{"status": *q.Status})
		}
		if q.NgoID != nil {
			builder = builder.Where(sq.Eq{"ngo_id": *q.NgoID})
		}
	}

	return builder.
		OrderBy("created_at DESC", "id DESC").
		ToSql()
}

// Donations returns every donation matching all filters, newest first.
func (r *DonationRepository) Donations(ctx context.Context, q *types.DonationQuery) ([]*types.Donation, error) {
	query, args, err := donationListQuery(q)
	if err != nil {
		return nil, fmt.Errorf("failed to generate donations query: %w", err)
	}

	donations := make([]*types.Donation, 0)
	err = pgxscan.Select(ctx, r.pool, &donations, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch donations: %w", err)
	}

	return donations, nil
}

func (r *DonationRepository) Donation(ctx context.Context, donationID int64) (*types.Donation, error) {
	return donationByID(ctx, r.pool, donationID, false)
}

func donationByID(ctx context.Context, db dbtx, donationID int64, lock bool) (*types.Donation, error) {
	builder := psql().
		Select(donationColumns...).
		From(donationTableName).
		Where(sq.Eq{"id": donationID}).
		Limit(1)
	if lock {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donation query: %w", err)
	}

	var donation types.Donation
	err = pgxscan.Get(ctx, db, &donation, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrDonationNotFound
		}
		return nil, fmt.Errorf("failed to fetch donation: %w", err)
	}

	return &donation, nil
}

// Create stores the donation with the NGO's contact details copied onto it
// and notifies every donor, all in one transaction.
func (r *DonationRepository) Create(ctx context.Context, donation *types.Donation) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		ngo, err := userByID(ctx, tx, donation.NgoID)
		if err != nil {
			return err
		}

		now := time.Now()
		donation.NgoName = &ngo.Name
		donation.NgoEmail = &ngo.Email
		donation.ContactInfo = ngo.ContactInfo
		donation.CreatedAt = now
		donation.UpdatedAt = now

		query, args, err := psql().
			Insert(donationTableName).
			SetMap(utils.StructToMap(donation, "id")).
			Suffix("RETURNING " + columnList(donationColumns)).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate create donation query: %w", err)
		}

		if err := pgxscan.Get(ctx, tx, donation, query, args...); err != nil {
			if rerr := rangeError(err); rerr != nil {
				return rerr
			}
			return fmt.Errorf("failed to create donation: %w", err)
		}

		donors, err := userIDsByRole(ctx, tx, types.RoleDonor)
		if err != nil {
			return err
		}

		template := types.DonationCreatedNotification(ngo.Name, donation)
		return insertNotifications(ctx, tx, fanOut(template, donors))
	})
}

// Update applies already-validated column values. A status change must follow
// the donation lifecycle, checked against the locked row, and a completed or
// cancelled donation only accepts a status.
func (r *DonationRepository) Update(ctx context.Context, donationID int64, fields map[string]any) (*types.Donation, error) {
	var updated *types.Donation

	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := donationByID(ctx, tx, donationID, true)
		if err != nil {
			return err
		}

		if current.Status.Terminal() {
			for column := range fields {
				if column != "status" {
					return types.ClosedDonationError(current.Status)
				}
			}
		}

		if next, ok := fields["status"].(types.DonationStatus); ok && !current.Status.CanTransitionTo(next) {
			return types.InvalidTransitionError(current.Status, next)
		}

		updated, err = updateDonation(ctx, tx, donationID, fields)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Cancel soft-deletes the donation. Cancelling twice is not an error.
func (r *DonationRepository) Cancel(ctx context.Context, donationID int64) (*types.Donation, error) {
	var cancelled *types.Donation

	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := donationByID(ctx, tx, donationID, true)
		if err != nil {
			return err
		}

		if current.Status == types.DonationStatusCancelled {
			cancelled = current
			return nil
		}

		if !current.Status.CanTransitionTo(types.DonationStatusCancelled) {
			return types.InvalidTransitionError(current.Status, types.DonationStatusCancelled)
		}

		cancelled, err = updateDonation(ctx, tx, donationID, map[string]any{"status": types.DonationStatusCancelled})
		return err
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}

func updateDonation(ctx context.Context, db dbtx, donationID int64, fields map[string]any) (*types.Donation, error) {
	set := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		set[k] = v
	}
	set["updated_at"] = time.Now()

	query, args, err := psql().
		Update(donationTableName).
		SetMap(set).
		Where(sq.Eq{"id": donationID}).
		Suffix("RETURNING " + columnList(donationColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate update donation query for donation %d: %w", donationID, err)
	}

	var donation types.Donation
	err = pgxscan.Get(ctx, db, &donation, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrDonationNotFound
		}
		if rerr := rangeError(err); rerr != nil {
			return nil, rerr
		}
		return nil, fmt.Errorf("failed to update donation: %w", err)
	}

	return &donation, nil
}

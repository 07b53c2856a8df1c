package store

import (
	"context"
	"fmt"
	"time"

	"charityportal/internal/utils"
	"charityportal/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const pickupTableName = "pickups"

var pickupColumns = utils.StructTagValues(types.Pickup{})

func insertPickup(ctx context.Context, db dbtx, pickup *types.Pickup) error {
	pickup.CreatedAt = time.Now()
	if pickup.Status == "" {
		pickup.Status = types.PickupStatusScheduled
	}

	query, args, err := psql().
		Insert(pickupTableName).
		SetMap(utils.StructToMap(pickup, "id")).
		Suffix("RETURNING " + columnList(pickupColumns)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create pickup query: %w", err)
	}

	return utils.ErrorWrapOrNil(pgxscan.Get(ctx, db, pickup, query, args...), "failed to create pickup")
}

// attachPickups sets the latest scheduled pickup on each view that has one.
func attachPickups(ctx context.Context, db dbtx, views []*types.ContributionView) error {
	if len(views) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}

	query, args, err := psql().
		Select(pickupColumns...).
		From(pickupTableName).
		Where(sq.Eq{"contribution_id": ids}).
		OrderBy("contribution_id", "created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate pickups query: %w", err)
	}

	var pickups []*types.Pickup
	err = pgxscan.Select(ctx, db, &pickups, query, args...)
	if err != nil {
		return fmt.Errorf("failed to fetch pickups: %w", err)
	}

	latest := make(map[int64]*types.Pickup, len(pickups))
	for _, p := range pickups {
		if _, ok := latest[p.ContributionID]; !ok {
			latest[p.ContributionID] = p
		}
	}

	for _, v := range views {
		v.Pickup = latest[v.ID]
	}

	return nil
}

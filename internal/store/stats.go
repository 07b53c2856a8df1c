package store

import (
	"context"
	"fmt"

	"charityportal/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	LeaderboardDefaultLimit = 10
	LeaderboardMaxLimit     = 100
)

type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

func countWhere(status types.DonationStatus, alias string) string {
	return fmt.Sprintf("count(*) FILTER (WHERE status = '%s') AS %s", status, alias)
}

func (r *StatsRepository) NGODashboard(ctx context.Context, ngoID int64) (*types.NGODashboard, error) {
	query, args, err := psql().
		Select(
			"count(*) AS total_donations",
			countWhere(types.DonationStatusPending, "pending_donations"),
			countWhere(types.DonationStatusConfirmed, "confirmed_donations"),
			countWhere(types.DonationStatusCompleted, "completed_donations"),
			countWhere(types.DonationStatusCancelled, "cancelled_donations"),
		).
		Column(sq.Expr(
			"(SELECT count(*) FROM "+contributionTableName+" c JOIN "+donationTableName+" d ON d.id = c.donation_id WHERE d.ngo_id = ?) AS contributions_received", ngoID,
		)).
		Column(sq.Expr(
			"(SELECT COALESCE(sum(c.contribution_amount), 0) FROM "+contributionTableName+" c JOIN "+donationTableName+" d ON d.id = c.donation_id WHERE d.ngo_id = ?) AS amount_received", ngoID,
		)).
		From(donationTableName).
		Where(sq.Eq{"ngo_id": ngoID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ngo dashboard query: %w", err)
	}

	var dashboard types.NGODashboard
	err = pgxscan.Get(ctx, r.pool, &dashboard, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ngo dashboard: %w", err)
	}

	return &dashboard, nil
}

func (r *StatsRepository) DonorDashboard(ctx context.Context, donorID int64) (*types.DonorDashboard, error) {
	query, args, err := psql().
		Select(
			"count(*) AS total_contributions",
			"COALESCE(sum(contribution_amount), 0) AS total_amount",
			fmt.Sprintf("count(*) FILTER (WHERE status = '%s') AS pending_contributions", types.ContributionStatusPending),
			fmt.Sprintf("count(*) FILTER (WHERE status = '%s') AS confirmed_contributions", types.ContributionStatusConfirmed),
			fmt.Sprintf("count(*) FILTER (WHERE status = '%s') AS completed_contributions", types.ContributionStatusCompleted),
		).
		From(contributionTableName).
		Where(sq.Eq{"donor_id": donorID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donor dashboard query: %w", err)
	}

	var dashboard types.DonorDashboard
	err = pgxscan.Get(ctx, r.pool, &dashboard, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch donor dashboard: %w", err)
	}

	return &dashboard, nil
}

func (r *StatsRepository) AdminDashboard(ctx context.Context) (*types.AdminDashboard, error) {
	query, args, err := psql().
		Select(
			"(SELECT count(*) FROM "+userTableName+") AS total_users",
			"(SELECT count(*) FROM "+donationTableName+") AS total_donations",
			"(SELECT count(*) FROM "+contributionTableName+") AS total_contributions",
			fmt.Sprintf("(SELECT count(*) FROM %s WHERE status = '%s') AS pending_donations", donationTableName, types.DonationStatusPending),
			fmt.Sprintf("(SELECT count(*) FROM %s WHERE status = '%s') AS completed_donations", donationTableName, types.DonationStatusCompleted),
			"(SELECT COALESCE(sum(contribution_amount), 0) FROM "+contributionTableName+") AS total_amount",
		).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate admin dashboard query: %w", err)
	}

	var dashboard types.AdminDashboard
	err = pgxscan.Get(ctx, r.pool, &dashboard, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch admin dashboard: %w", err)
	}

	return &dashboard, nil
}

// ClampLeaderboardLimit maps a requested size onto [1, LeaderboardMaxLimit],
// using the default for anything non-positive.
func ClampLeaderboardLimit(limit int) int {
	if limit <= 0 {
		return LeaderboardDefaultLimit
	}
	return min(limit, LeaderboardMaxLimit)
}

func leaderboardQuery(limit int) (string, []any, error) {
	return psql().
		Select(
			"u.id AS donor_id",
			"u.name",
			"count(c.id) AS total_contributions",
			"COALESCE(sum(c.contribution_amount), 0) AS total_amount",
		).
		From(userTableName + " u").
		Join(contributionTableName + " c ON c.donor_id = u.id").
		Join(donationTableName + " d ON d.id = c.donation_id").
		Where(sq.Eq{"u.role": types.RoleDonor}).
		Where(sq.NotEq{"d.status": types.DonationStatusCancelled}).
		GroupBy("u.id", "u.name").
		OrderBy("total_amount DESC", "total_contributions DESC", "u.id").
		Limit(uint64(ClampLeaderboardLimit(limit))).
		ToSql()
}

// Leaderboard ranks donors by the amount they contributed to donations that
// were not cancelled.
func (r *StatsRepository) Leaderboard(ctx context.Context, limit int) ([]*types.LeaderboardEntry, error) {
	query, args, err := leaderboardQuery(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to generate leaderboard query: %w", err)
	}

	entries := make([]*types.LeaderboardEntry, 0)
	err = pgxscan.Select(ctx, r.pool, &entries, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}

	for i, entry := range entries {
		entry.Rank = i + 1
	}

	return entries, nil
}

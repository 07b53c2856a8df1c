package store

import (
	"context"
	"fmt"
	"time"

	"charityportal/internal/utils"
	"charityportal/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	notificationTableName = "notifications"
	notificationListLimit = 100

	// keeps a batch well under the 65535 bind parameter limit
	notificationInsertBatch = 1000
)

var notificationColumns = utils.StructTagValues(types.Notification{})

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func notificationListQuery(userID int64, filter *types.NotificationFilter) (string, []any, error) {
	builder := psql().
		Select(notificationColumns...).
		From(notificationTableName).
		Where(sq.Eq{"user_id": userID})

	if filter != nil && filter.UnreadOnly {
		builder = builder.Where(sq.Eq{"read": false})
	}

	return builder.
		OrderBy("created_at DESC", "id DESC").
		Limit(notificationListLimit).
		ToSql()
}

func (r *NotificationRepository) Notifications(ctx context.Context, userID int64, filter *types.NotificationFilter) ([]*types.Notification, error) {
	query, args, err := notificationListQuery(userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to generate notifications query: %w", err)
	}

	notifications := make([]*types.Notification, 0)
	err = pgxscan.Select(ctx, r.pool, &notifications, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	return notifications, nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	query, args, err := psql().
		Select("count(*)").
		From(notificationTableName).
		Where(sq.Eq{"user_id": userID, "read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate unread count query: %w", err)
	}

	var count int
	err = r.pool.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

// MarkRead only touches notifications owned by userID.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID int64, notificationID string) error {
	query, args, err := psql().
		Update(notificationTableName).
		Set("read", true).
		Where(sq.Eq{"id": notificationID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate mark read query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrNotificationNotFound
	}

	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	query, args, err := psql().
		Update(notificationTableName).
		Set("read", true).
		Where(sq.Eq{"user_id": userID, "read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate mark all read query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *NotificationRepository) Clear(ctx context.Context, userID int64) (int64, error) {
	query, args, err := psql().
		Delete(notificationTableName).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate clear notifications query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to clear notifications: %w", err)
	}

	return tag.RowsAffected(), nil
}

// notificationInsertQuery writes every notification in one statement,
// assigning ids and timestamps to rows that lack them.
func notificationInsertQuery(notifications []*types.Notification, now time.Time) (string, []any, error) {
	builder := psql().
		Insert(notificationTableName).
		Columns(notificationColumns...)

	for _, n := range notifications {
		if n.ID == "" {
			n.ID = utils.NanoID()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}

		row := utils.StructToMap(n)
		values := make([]any, 0, len(notificationColumns))
		for _, column := range notificationColumns {
			values = append(values, row[column])
		}
		builder = builder.Values(values...)
	}

	return builder.ToSql()
}

func insertNotifications(ctx context.Context, db dbtx, notifications []*types.Notification) error {
	now := time.Now()

	for start := 0; start < len(notifications); start += notificationInsertBatch {
		end := min(start+notificationInsertBatch, len(notifications))

		query, args, err := notificationInsertQuery(notifications[start:end], now)
		if err != nil {
			return fmt.Errorf("failed to generate insert notifications query: %w", err)
		}

		if _, err := db.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert notifications: %w", err)
		}
	}

	return nil
}

// fanOut copies a notification template once per recipient.
func fanOut(template *types.Notification, recipients []int64) []*types.Notification {
	out := make([]*types.Notification, 0, len(recipients))
	for _, userID := range recipients {
		n := *template
		n.ID = ""
		n.UserID = userID
		out = append(out, &n)
	}
	return out
}

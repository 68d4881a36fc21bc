package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hims91/audio-nature-nexus-backend/pkg/db/models"
	"github.com/hims91/audio-nature-nexus-backend/pkg/pagination"
)

// Repository persists the operator notification feed. Rows are written
// by the consumer and read by the admin API.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error)
	MarkRead(ctx context.Context, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error)
	MarkAllRead(ctx context.Context, now time.Time) (int64, error)
}

type listNotificationsParams struct {
	Limit      int
	Cursor     *pagination.Cursor
	UnreadOnly bool
	Kind       string
}

// notificationMarkResult distinguishes "marked now" from "was already
// read" from "no such row".
type notificationMarkResult struct {
	Updated bool
	Found   bool
}

type notificationRepo struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &notificationRepo{db: tx}
}

func (r *notificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepo) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Notification{})
	if params.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if params.Kind != "" {
		query = query.Where("kind = ?", params.Kind)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Notification
	err := query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	if len(rows) <= pageSize {
		return rows, nil, nil
	}
	next := &pagination.Cursor{CreatedAt: rows[pageSize].CreatedAt, ID: rows[pageSize].ID}
	return rows[:pageSize], next, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND read_at IS NULL", notificationID).
		UpdateColumn("read_at", now)
	if res.Error != nil {
		return notificationMarkResult{}, res.Error
	}
	if res.RowsAffected > 0 {
		return notificationMarkResult{Updated: true, Found: true}, nil
	}

	// Zero rows: either already read or missing entirely.
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", notificationID).
		Count(&count).Error
	if err != nil {
		return notificationMarkResult{}, err
	}
	return notificationMarkResult{Found: count > 0}, nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("read_at IS NULL").
		UpdateColumn("read_at", now)
	return res.RowsAffected, res.Error
}

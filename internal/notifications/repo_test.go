package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hims91/audio-nature-nexus-backend/pkg/db/models"
	pkgerrors "github.com/hims91/audio-nature-nexus-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:notifications_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	ddl := `CREATE TABLE notifications (
		id TEXT PRIMARY KEY,
		order_id TEXT,
		kind TEXT NOT NULL,
		message TEXT NOT NULL,
		read_at DATETIME,
		created_at DATETIME
	)`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedNotification(t *testing.T, db *gorm.DB, kind string, createdAt time.Time) models.Notification {
	t.Helper()
	row := models.Notification{
		ID:        uuid.New(),
		Kind:      kind,
		Message:   "order needs attention",
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func TestListPaginatesNewestFirst(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	base := time.Now().UTC().Truncate(time.Second)
	oldest := seedNotification(t, db, KindOrderFlagged, base.Add(-2*time.Hour))
	middle := seedNotification(t, db, KindOrderFlagged, base.Add(-time.Hour))
	newest := seedNotification(t, db, KindOrderFlagged, base)

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	first, err := svc.List(context.Background(), ListParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, newest.ID, first.Items[0].ID)
	assert.Equal(t, middle.ID, first.Items[1].ID)
	require.NotEmpty(t, first.Cursor)

	second, err := svc.List(context.Background(), ListParams{Limit: 2, Cursor: first.Cursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, oldest.ID, second.Items[0].ID)
	assert.Empty(t, second.Cursor)
}

func TestListUnreadOnly(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	read := seedNotification(t, db, KindOrderFlagged, time.Now().UTC().Add(-time.Hour))
	unread := seedNotification(t, db, KindOrderFlagged, time.Now().UTC())
	now := time.Now().UTC()
	require.NoError(t, db.Model(&models.Notification{}).Where("id = ?", read.ID).Update("read_at", now).Error)

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	result, err := svc.List(context.Background(), ListParams{UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, unread.ID, result.Items[0].ID)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	row := seedNotification(t, db, KindOrderFlagged, time.Now().UTC())

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(context.Background(), row.ID))
	// Second call finds the row already read and still succeeds.
	require.NoError(t, svc.MarkRead(context.Background(), row.ID))

	var stored models.Notification
	require.NoError(t, db.First(&stored, "id = ?", row.ID).Error)
	assert.NotNil(t, stored.ReadAt)
}

func TestMarkReadUnknownNotification(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	err = svc.MarkRead(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "expected not found, got %v", err)
}

func TestMarkAllRead(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	seedNotification(t, db, KindOrderFlagged, time.Now().UTC().Add(-time.Minute))
	seedNotification(t, db, KindOrderFlagged, time.Now().UTC())

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	count, err := svc.MarkAllRead(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	again, err := svc.MarkAllRead(context.Background())
	require.NoError(t, err)
	assert.Zero(t, again)
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/RigelNana/gazotheque/pkg/events"
	"github.com/RigelNana/gazotheque/services/notification-service/models"
	"github.com/RigelNana/gazotheque/services/notification-service/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) NotificationService {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Notification{}))

	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewNotificationService(repository.NewNotificationRepository(db), l)
}

func consignedEvent() events.MaterialConsigned {
	return events.MaterialConsigned{
		EventID:        uuid.NewString(),
		Type:           events.TypeMaterialConsigned,
		MaterialID:     10,
		MaterialTitle:  "Argon",
		LabDestination: "IGE",
		OwnerUserID:    3,
		ConsignedBy:    1,
		DateDepart:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestHandleMaterialConsignedStoresOnce(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ev := consignedEvent()

	require.NoError(t, svc.HandleMaterialConsigned(ctx, ev))
	require.NoError(t, svc.HandleMaterialConsigned(ctx, ev), "redelivery is a no-op")

	items, total, err := svc.List(ctx, 3, false, 1, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)

	n := items[0]
	assert.Equal(t, "Material Ready for Departure", n.Title)
	assert.Equal(t, "The material 'Argon' is marked ready for departure.", n.Description)
	assert.Equal(t, models.TypeEvent, n.Type)
	assert.Equal(t, models.PriorityMedium, n.Priority)
	assert.Equal(t, int64(10), n.MaterialID)
	assert.False(t, n.Read)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(n.Metadata, &meta))
	assert.Equal(t, "IGE", meta["lab_destination"])
}

func TestHandleMaterialConsignedWithoutOwner(t *testing.T) {
	svc := newTestService(t)
	ev := consignedEvent()
	ev.OwnerUserID = 0

	require.NoError(t, svc.HandleMaterialConsigned(context.Background(), ev))
	unread, err := svc.CountUnread(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestMarkReadFlow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.HandleMaterialConsigned(ctx, consignedEvent()))
	require.NoError(t, svc.HandleMaterialConsigned(ctx, consignedEvent()))

	items, _, err := svc.List(ctx, 3, true, 1, 500)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NoError(t, svc.MarkRead(ctx, items[0].ID, 3))
	unread, err := svc.CountUnread(ctx, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	n, err := svc.MarkAllRead(ctx, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

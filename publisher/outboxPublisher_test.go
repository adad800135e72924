package publisher

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/njeri/storefront-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeBroadcast struct {
	keys     []string
	payloads [][]byte
	err      error
}

func (f *fakeBroadcast) Publish(_ context.Context, key string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	f.payloads = append(f.payloads, payload)
	return nil
}

type fakeMailer struct {
	orderIDs []uint
	emails   []string
	err      error
}

func (f *fakeMailer) OrderReceived(orderID uint, email, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.orderIDs = append(f.orderIDs, orderID)
	f.emails = append(f.emails, email)
	return nil
}

type fakeWebhook struct {
	payloads [][]byte
}

func (f *fakeWebhook) Send(payload []byte) error {
	f.payloads = append(f.payloads, payload)
	return nil
}

func setupOutboxDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.OutboxEvent{}))
	return db
}

func seedEvent(t *testing.T, db *gorm.DB, eventType, payload string) *models.OutboxEvent {
	t.Helper()

	event := models.OutboxEvent{
		AggregateId: 1,
		EventType:   eventType,
		Payload:     datatypes.JSON([]byte(payload)),
	}
	require.NoError(t, db.Create(&event).Error)
	return &event
}

func TestProcessOnceDeliversBroadcast(t *testing.T) {
	db := setupOutboxDB(t)
	broadcast := &fakeBroadcast{}
	mailer := &fakeMailer{}
	event := seedEvent(t, db, models.EventProductsUpdated, `{"html":"<ul><li>Widget</li></ul>"}`)

	poller := NewOutboxPoller(db, broadcast, mailer, nil)
	poller.ProcessOnce(context.Background())

	require.Len(t, broadcast.payloads, 1)
	assert.Equal(t, "products", broadcast.keys[0])
	assert.Contains(t, string(broadcast.payloads[0]), "Widget")

	var reloaded models.OutboxEvent
	require.NoError(t, db.First(&reloaded, event.ID).Error)
	assert.True(t, reloaded.Processed)
	assert.NotNil(t, reloaded.ProcessedAt)
}

func TestProcessOnceSendsConfirmationMailAndWebhook(t *testing.T) {
	db := setupOutboxDB(t)
	broadcast := &fakeBroadcast{}
	mailer := &fakeMailer{}
	webhook := &fakeWebhook{}
	seedEvent(t, db, models.EventOrderReceived, `{"orderId":7,"email":"a@x.com","name":"Ann"}`)

	poller := NewOutboxPoller(db, broadcast, mailer, webhook)
	poller.ProcessOnce(context.Background())

	require.Len(t, mailer.emails, 1)
	assert.Equal(t, "a@x.com", mailer.emails[0])
	assert.Equal(t, uint(7), mailer.orderIDs[0])
	require.Len(t, webhook.payloads, 1)
	assert.Contains(t, string(webhook.payloads[0]), "a@x.com")
}

func TestProcessOnceRetriesFailedDeliveries(t *testing.T) {
	db := setupOutboxDB(t)
	broadcast := &fakeBroadcast{}
	mailer := &fakeMailer{err: errors.New("smtp down")}
	event := seedEvent(t, db, models.EventOrderReceived, `{"orderId":7,"email":"a@x.com","name":"Ann"}`)

	poller := NewOutboxPoller(db, broadcast, mailer, nil)
	poller.ProcessOnce(context.Background())

	var reloaded models.OutboxEvent
	require.NoError(t, db.First(&reloaded, event.ID).Error)
	assert.False(t, reloaded.Processed, "failed event must stay pending")

	// Next cycle succeeds once the mailer recovers
	mailer.err = nil
	poller.ProcessOnce(context.Background())

	require.NoError(t, db.First(&reloaded, event.ID).Error)
	assert.True(t, reloaded.Processed)
	assert.Equal(t, []string{"a@x.com"}, mailer.emails)
}

func TestProcessOnceSkipsUnknownEventTypes(t *testing.T) {
	db := setupOutboxDB(t)
	broadcast := &fakeBroadcast{}
	mailer := &fakeMailer{}
	event := seedEvent(t, db, "orders.exploded", `{}`)

	poller := NewOutboxPoller(db, broadcast, mailer, nil)
	poller.ProcessOnce(context.Background())

	var reloaded models.OutboxEvent
	require.NoError(t, db.First(&reloaded, event.ID).Error)
	assert.True(t, reloaded.Processed)
	assert.Empty(t, broadcast.payloads)
	assert.Empty(t, mailer.emails)
}

func TestProcessOnceHonorsCancelledContext(t *testing.T) {
	db := setupOutboxDB(t)
	broadcast := &fakeBroadcast{}
	mailer := &fakeMailer{}
	event := seedEvent(t, db, models.EventProductsUpdated, `{"html":"x"}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	poller := NewOutboxPoller(db, broadcast, mailer, nil)
	poller.ProcessOnce(ctx)

	var reloaded models.OutboxEvent
	require.NoError(t, db.First(&reloaded, event.ID).Error)
	assert.False(t, reloaded.Processed)
	assert.Empty(t, broadcast.payloads)
}

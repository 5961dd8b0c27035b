package alert

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"quality-control-backend/internal/model"
	"quality-control-backend/internal/store"
)

// mockSender is a mock implementation of the Sender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestWorkerPool_Dispatch(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, db, &webpush.Options{})

	wp.Dispatch(store.MoldAlert{MoldID: 123, Health: store.HealthOverdue})

	select {
	case job := <-wp.jobs:
		assert.Equal(t, int64(123), job.MoldID)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for alert to be dispatched")
	}
}

func TestSendAlertsForMold(t *testing.T) {
	db, mock := newTestDB(t)
	wp := NewWorkerPool(1, db, &webpush.Options{})

	var payloads [][]byte
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			payloads = append(payloads, payload)
			return &http.Response{StatusCode: 201, Body: io.NopCloser(bytes.NewReader(nil))}, nil
		},
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "push_subscriptions".`)).
		WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth"}).
			AddRow("https://push.example/abc", "key", "auth"))

	wp.sendAlertsForMold(context.Background(), store.MoldAlert{
		MoldID:      7,
		MoldNumber:  "M0007",
		Health:      store.HealthOverdue,
		TotalCycles: 51000,
		Threshold:   50000,
	})

	require.Len(t, payloads, 1)
	assert.Contains(t, string(payloads[0]), "M0007")
	assert.Contains(t, string(payloads[0]), "overdue")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendAlertDeletesExpiredSubscription(t *testing.T) {
	db, mock := newTestDB(t)
	wp := NewWorkerPool(1, db, &webpush.Options{})
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			return &http.Response{StatusCode: 410, Body: io.NopCloser(bytes.NewReader(nil))}, nil
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "push_subscriptions"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	wp.sendAlert(context.Background(), model.PushSubscription{
		Endpoint: "https://push.example/expired",
		P256DH:   "key",
		Auth:     "auth",
	}, []byte("test"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

package alert

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"quality-control-backend/internal/model"
	"quality-control-backend/internal/store"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender backed by the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans maintenance alerts out to the push subscriptions
// registered for the affected mold.
type WorkerPool struct {
	size    int
	jobs    chan store.MoldAlert
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new alert worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan store.MoldAlert, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Alert worker %d started", id)
	for {
		select {
		case a := <-wp.jobs:
			log.Printf("Alert worker %d processing mold %d (%s)", id, a.MoldID, a.Health)
			wp.sendAlertsForMold(ctx, a)
		case <-ctx.Done():
			log.Printf("Alert worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues an alert for delivery.
func (wp *WorkerPool) Dispatch(a store.MoldAlert) {
	wp.jobs <- a
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan store.MoldAlert {
	return wp.jobs
}

// sendAlertsForMold fetches subscriptions for the mold and pushes the alert.
func (wp *WorkerPool) sendAlertsForMold(ctx context.Context, a store.MoldAlert) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_mold_mapping smm ON smm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("smm.mold_id = ?", a.MoldID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for mold %d: %v", a.MoldID, err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	log.Printf("Sending %d alerts for mold %d", len(subscriptions), a.MoldID)

	label := a.MoldNumber
	if label == "" {
		label = fmt.Sprintf("%d", a.MoldID)
	}

	var message string
	if a.Health == store.HealthOverdue {
		message = fmt.Sprintf("Mold %s is overdue for maintenance: %d of %d cycles", label, a.TotalCycles, a.Threshold)
	} else {
		message = fmt.Sprintf("Mold %s is due for maintenance soon: %d of %d cycles", label, a.TotalCycles, a.Threshold)
	}

	for _, sub := range subscriptions {
		wp.sendAlert(ctx, sub, []byte(message))
	}
}

func (wp *WorkerPool) sendAlert(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending alert to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == 410 {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}

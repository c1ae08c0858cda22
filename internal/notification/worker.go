package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"property-management-backend/internal/model"
	"property-management-backend/internal/store"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Message is the JSON payload delivered to subscribed browsers.
type Message struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	ComplaintID int64  `json:"complaint_id"`
	Status      string `json:"status"`
}

// WorkerPool sends complaint notifications to users who may view complaints.
type WorkerPool struct {
	size       int
	jobs       chan int64
	complaints store.ComplaintStore
	subs       store.SubscriptionStore
	webpush    *webpush.Options
	sender     NotificationSender
	logger     *zap.Logger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options, logger *zap.Logger) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkerPool{
		size:       size,
		jobs:       make(chan int64, size*8),
		complaints: s.Complaints(),
		subs:       s.Subscriptions(),
		webpush:    webpushOptions,
		sender:     &WebPushSender{},
		logger:     logger.Named("notification"),
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.logger.Debug("worker started", zap.Int("worker", id))
	for {
		select {
		case complaintID := <-wp.jobs:
			wp.notifyComplaint(ctx, complaintID)
		case <-ctx.Done():
			wp.logger.Debug("worker shutting down", zap.Int("worker", id))
			return
		}
	}
}

// Dispatch queues a complaint for notification. When the queue is full the
// notification is dropped so callers never block.
func (wp *WorkerPool) Dispatch(complaintID int64) {
	select {
	case wp.jobs <- complaintID:
	default:
		wp.logger.Warn("notification queue full, dropping", zap.Int64("complaint_id", complaintID))
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan int64 {
	return wp.jobs
}

func (wp *WorkerPool) notifyComplaint(ctx context.Context, complaintID int64) {
	complaint, err := wp.complaints.Get(ctx, complaintID)
	if err != nil {
		wp.logger.Error("fetch complaint", zap.Int64("complaint_id", complaintID), zap.Error(err))
		return
	}

	subscriptions, err := wp.subs.ListForModule(ctx, model.ModuleComplaints)
	if err != nil {
		wp.logger.Error("fetch subscriptions", zap.Int64("complaint_id", complaintID), zap.Error(err))
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(messageFor(complaint))
	if err != nil {
		wp.logger.Error("encode notification", zap.Error(err))
		return
	}

	wp.logger.Info("sending notifications",
		zap.Int64("complaint_id", complaintID),
		zap.Int("subscriptions", len(subscriptions)))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

func messageFor(c *model.Complaint) Message {
	where := fmt.Sprintf("address %d", c.AddressID)
	if c.Address != nil {
		where = fmt.Sprintf("%s/%s", c.Address.Number, c.Address.Block)
	}
	return Message{
		Title:       fmt.Sprintf("Complaint %s", c.Status.Label()),
		Body:        fmt.Sprintf("%s (%s)", c.Title, where),
		ComplaintID: c.ID,
		Status:      string(c.Status),
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.logger.Warn("send notification", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		wp.logger.Info("subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		if err := wp.subs.Delete(ctx, sub.Endpoint); err != nil {
			wp.logger.Error("delete expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	}
}

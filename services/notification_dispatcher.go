package services

import (
	"context"
	"log"
	"sync"
	"time"

	"tutorLinkAPI/internal/notification"
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

// NotificationDispatcher pushes stored notifications out through FCM on a
// small worker pool so membership decisions never block on the push round-trip.
type NotificationDispatcher struct {
	service      *NotificationService
	pushProvider PushNotificationProvider
	workers      int
	jobQueue     chan *notification.Notification
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

func NewNotificationDispatcher(service *NotificationService) *NotificationDispatcher {
	d := &NotificationDispatcher{
		service:  service,
		workers:  3,
		jobQueue: make(chan *notification.Notification, 100),
		stopChan: make(chan struct{}),
	}

	d.startWorkers()

	return d
}

func (d *NotificationDispatcher) SetPushProvider(provider PushNotificationProvider) {
	d.pushProvider = provider
}

// Enqueue hands the notification to the worker pool. A full queue drops the
// push rather than blocking the caller; the row is already stored.
func (d *NotificationDispatcher) Enqueue(notif *notification.Notification) {
	select {
	case d.jobQueue <- notif:
	default:
		log.Printf("Notification queue full, dropping push for %s", notif.ID)
	}
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

func (d *NotificationDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case notif := <-d.jobQueue:
			d.processJob(notif)
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) processJob(notif *notification.Notification) {
	if d.pushProvider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tokens, err := d.service.deviceTokens(ctx, notif.UserID)
	if err != nil {
		log.Printf("Failed to load device tokens for user %s: %v", notif.UserID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	if err := d.pushProvider.SendPush(ctx, tokens, notif.Title, notif.Message, notif.Data); err != nil {
		log.Printf("Push failed for user %s: %v", notif.UserID, err)
	}
}

func (d *NotificationDispatcher) Stop() {
	close(d.stopChan)
	d.wg.Wait()
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tutorLinkAPI/internal/apperr"
	"tutorLinkAPI/internal/notification"
)

type NotificationService struct {
	db         *pgxpool.Pool
	dispatcher *NotificationDispatcher
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	s := &NotificationService{db: db}
	s.dispatcher = NewNotificationDispatcher(s)
	return s
}

// SetPushProvider injects the real FCM provider from main.go.
func (s *NotificationService) SetPushProvider(provider PushNotificationProvider) {
	s.dispatcher.SetPushProvider(provider)
}

// Stop drains the dispatcher workers. Called during graceful shutdown.
func (s *NotificationService) Stop() {
	s.dispatcher.Stop()
}

func (s *NotificationService) CreateNotification(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error) {
	notif := &notification.Notification{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Type:      req.Type,
		Title:     req.Title,
		Message:   req.Message,
		Data:      req.Data,
		CreatedAt: time.Now(),
	}

	query := `
		INSERT INTO notifications (id, user_id, type, title, message, is_read, data, created_at)
		VALUES ($1, $2, $3, $4, $5, false, $6, $7)
	`
	_, err := s.db.Exec(ctx, query, notif.ID, notif.UserID, notif.Type, notif.Title, notif.Message, notif.Data, notif.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	s.dispatcher.Enqueue(notif)

	return notif, nil
}

func (s *NotificationService) GetNotifications(ctx context.Context, clerkID string) (*notification.NotificationListResponse, error) {
	query := `
		SELECT n.id, n.user_id, n.type, n.title, n.message, n.is_read, n.data, n.created_at
		FROM notifications n
		JOIN users u ON u.id = n.user_id
		WHERE u.clerk_id = $1
		ORDER BY n.created_at DESC
		LIMIT 50
	`

	rows, err := s.db.Query(ctx, query, clerkID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	defer rows.Close()

	resp := &notification.NotificationListResponse{}
	for rows.Next() {
		var n notification.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.Data, &n.CreatedAt)
		if err != nil {
			return nil, err
		}
		if !n.IsRead {
			resp.UnreadCount++
		}
		resp.Notifications = append(resp.Notifications, &n)
	}

	return resp, rows.Err()
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, clerkID string) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM notifications n
		JOIN users u ON u.id = n.user_id
		WHERE u.clerk_id = $1 AND n.is_read = false
	`
	if err := s.db.QueryRow(ctx, query, clerkID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID uuid.UUID, clerkID string) error {
	query := `
		UPDATE notifications
		SET is_read = true
		WHERE id = $1 AND user_id = (SELECT id FROM users WHERE clerk_id = $2)
	`
	tag, err := s.db.Exec(ctx, query, notificationID, clerkID)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("notification not found")
	}
	return nil
}

func (s *NotificationService) RegisterDevice(ctx context.Context, clerkID string, req *notification.RegisterDeviceRequest) error {
	query := `
		INSERT INTO device_tokens (user_id, token, platform, created_at)
		VALUES ((SELECT id FROM users WHERE clerk_id = $1), $2, $3, $4)
		ON CONFLICT (token) DO UPDATE SET platform = $3
	`
	if _, err := s.db.Exec(ctx, query, clerkID, req.Token, req.Platform, time.Now()); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (s *NotificationService) deviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `SELECT token, platform FROM device_tokens WHERE user_id = $1`, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}

	return tokens, rows.Err()
}

package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tutorLinkAPI/internal/apperr"
	"tutorLinkAPI/internal/membership"
	"tutorLinkAPI/internal/notification"
)

const lockUserQuery = `SELECT id FROM users WHERE clerk_id = $1 FOR UPDATE`

type MembershipService struct {
	db                  *pgxpool.Pool
	notificationService *NotificationService
}

func NewMembershipService(db *pgxpool.Pool, notificationService *NotificationService) *MembershipService {
	return &MembershipService{db: db, notificationService: notificationService}
}

// CreateMembership persists a pending membership for the user behind clerkID.
// The record stays PENDING until an admin reviews the attached proof.
func (s *MembershipService) CreateMembership(ctx context.Context, clerkID string, planType membership.PlanType, paymentProofURL string) (*membership.Membership, error) {
	if !planType.IsValid() {
		return nil, apperr.Validation(fmt.Sprintf("unknown plan type: %s", planType))
	}
	if paymentProofURL == "" {
		return nil, apperr.Validation("payment proof URL is required")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// FOR UPDATE serializes concurrent submits for the same user, so the
	// pending/active check below cannot race a second insert.
	var userID uuid.UUID
	err = tx.QueryRow(ctx, lockUserQuery, clerkID).Scan(&userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// A user with a pending or active membership cannot open another one.
	var existing int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM memberships
		WHERE user_id = $1 AND status IN ('PENDING', 'ACTIVE')
	`, userID).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing memberships: %w", err)
	}
	if existing > 0 {
		return nil, apperr.Validation("ya existe una membresía pendiente o activa")
	}

	m := &membership.Membership{
		ID:              uuid.New(),
		UserID:          userID,
		PlanType:        planType,
		PaymentProofURL: paymentProofURL,
		Status:          membership.StatusPending,
		CreatedAt:       time.Now(),
	}

	insertQuery := `
		INSERT INTO memberships (id, user_id, plan_type, payment_proof_url, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.Exec(ctx, insertQuery, m.ID, m.UserID, m.PlanType, m.PaymentProofURL, m.Status, m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return m, nil
}

// GetCurrentMembership returns the caller's latest membership record. The
// waiting view polls this to learn whether an admin has decided yet.
func (s *MembershipService) GetCurrentMembership(ctx context.Context, clerkID string) (*membership.Membership, error) {
	query := `
		SELECT m.id, m.user_id, m.plan_type, m.payment_proof_url, m.status,
		       m.created_at, m.processed_at, m.processed_by, m.admin_note
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		WHERE u.clerk_id = $1
		ORDER BY m.created_at DESC
		LIMIT 1
	`

	var m membership.Membership
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&m.ID,
		&m.UserID,
		&m.PlanType,
		&m.PaymentProofURL,
		&m.Status,
		&m.CreatedAt,
		&m.ProcessedAt,
		&m.ProcessedBy,
		&m.AdminNote,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("no membership found")
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return &m, nil
}

func (s *MembershipService) ListPendingMemberships(ctx context.Context) ([]*membership.Membership, error) {
	query := `
		SELECT id, user_id, plan_type, payment_proof_url, status,
		       created_at, processed_at, processed_by, admin_note
		FROM memberships
		WHERE status = 'PENDING'
		ORDER BY created_at ASC
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending memberships: %w", err)
	}
	defer rows.Close()

	var pending []*membership.Membership
	for rows.Next() {
		var m membership.Membership
		err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.PlanType,
			&m.PaymentProofURL,
			&m.Status,
			&m.CreatedAt,
			&m.ProcessedAt,
			&m.ProcessedBy,
			&m.AdminNote,
		)
		if err != nil {
			return nil, err
		}
		pending = append(pending, &m)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return pending, nil
}

// ApproveMembership activates a pending membership and notifies its owner.
func (s *MembershipService) ApproveMembership(ctx context.Context, adminClerkID, membershipID, note string) (*membership.Membership, error) {
	return s.decide(ctx, adminClerkID, membershipID, note, membership.StatusActive)
}

// RejectMembership declines a pending membership and notifies its owner.
func (s *MembershipService) RejectMembership(ctx context.Context, adminClerkID, membershipID, note string) (*membership.Membership, error) {
	return s.decide(ctx, adminClerkID, membershipID, note, membership.StatusRejected)
}

func (s *MembershipService) decide(ctx context.Context, adminClerkID, membershipID, note string, decision membership.Status) (*membership.Membership, error) {
	id, err := uuid.Parse(membershipID)
	if err != nil {
		return nil, apperr.Validation("invalid membership ID")
	}

	var notePtr *string
	if note != "" {
		notePtr = &note
	}

	query := `
		UPDATE memberships
		SET status = $1, processed_at = $2, processed_by = $3, admin_note = $4
		WHERE id = $5 AND status = 'PENDING'
		RETURNING id, user_id, plan_type, payment_proof_url, status,
		          created_at, processed_at, processed_by, admin_note
	`

	var m membership.Membership
	err = s.db.QueryRow(ctx, query, decision, time.Now(), adminClerkID, notePtr, id).Scan(
		&m.ID,
		&m.UserID,
		&m.PlanType,
		&m.PaymentProofURL,
		&m.Status,
		&m.CreatedAt,
		&m.ProcessedAt,
		&m.ProcessedBy,
		&m.AdminNote,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("pending membership not found")
		}
		return nil, fmt.Errorf("failed to update membership: %w", err)
	}

	s.notifyDecision(ctx, &m)

	return &m, nil
}

func (s *MembershipService) notifyDecision(ctx context.Context, m *membership.Membership) {
	if s.notificationService == nil {
		return
	}

	req := &notification.CreateNotificationRequest{
		UserID:  m.UserID,
		Type:    notification.NotificationMembershipApproved,
		Title:   "¡Membresía activada!",
		Message: fmt.Sprintf("Tu membresía %s fue activada. Ya puedes ofrecer tutorías.", m.PlanType),
		Data:    map[string]any{"membership_id": m.ID.String(), "plan_type": string(m.PlanType)},
	}
	if m.Status == membership.StatusRejected {
		req.Type = notification.NotificationMembershipRejected
		req.Message = "Tu comprobante de pago fue rechazado. Revisa los detalles e inténtalo de nuevo."
		req.Title = "Membresía rechazada"
	}

	if _, err := s.notificationService.CreateNotification(ctx, req); err != nil {
		log.Printf("Failed to notify user %s about membership decision: %v", m.UserID, err)
	}
}

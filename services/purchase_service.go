package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"sync"

	"github.com/skip2/go-qrcode"

	"tutorLinkAPI/internal/apperr"
	"tutorLinkAPI/internal/membership"
	"tutorLinkAPI/internal/purchase"
)

// MembershipCreator is the remote collaborator that records the pending
// membership once a proof has been stored.
type MembershipCreator interface {
	CreateMembership(ctx context.Context, clerkID string, planType membership.PlanType, paymentProofURL string) (*membership.Membership, error)
}

const (
	submitSuccessMessage = "¡Comprobante enviado y membresía registrada! Un administrador revisará tu pago."
	submitDefaultError   = "Error al enviar el comprobante."
)

// PurchaseService holds one purchase session per user and runs the two-step
// submission: store the proof, then record the membership. Sessions live in
// memory only; dismissing the modal or restarting the process drops them.
type PurchaseService struct {
	mu          sync.Mutex
	sessions    map[string]*purchase.Session
	storage     ProofStorage
	memberships MembershipCreator
}

func NewPurchaseService(storage ProofStorage, memberships MembershipCreator) *PurchaseService {
	return &PurchaseService{
		sessions:    make(map[string]*purchase.Session),
		storage:     storage,
		memberships: memberships,
	}
}

// SelectPlan opens a fresh session for the given plan. Any previous session
// for the user is discarded, so proof, error and status always start clean.
func (s *PurchaseService) SelectPlan(clerkID string, planType membership.PlanType) (*purchase.Session, error) {
	if _, ok := membership.PlanByType(planType); !ok {
		return nil, apperr.Validation(fmt.Sprintf("unknown plan type: %s", planType))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := purchase.NewSession(clerkID, planType)
	s.sessions[clerkID] = session
	return session.Snapshot(), nil
}

func (s *PurchaseService) GetSession(clerkID string) (*purchase.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[clerkID]
	if !ok {
		return nil, apperr.NotFound("no open purchase session")
	}
	return session.Snapshot(), nil
}

// SelectChannel switches the wallet tab. Purely presentational, it only
// decides which QR the client shows.
func (s *PurchaseService) SelectChannel(clerkID string, channel purchase.Channel) (*purchase.Session, error) {
	if !channel.IsValid() {
		return nil, apperr.Validation(fmt.Sprintf("unknown payment channel: %s", channel))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[clerkID]
	if !ok {
		return nil, apperr.NotFound("no open purchase session")
	}
	session.Channel = channel
	return session.Snapshot(), nil
}

// AttachProof sets (or clears) the proof file for the open session.
func (s *PurchaseService) AttachProof(clerkID string, proof *purchase.ProofFile) (*purchase.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[clerkID]
	if !ok {
		return nil, apperr.NotFound("no open purchase session")
	}
	session.Proof = proof
	return session.Snapshot(), nil
}

// Dismiss closes the session from any status. An in-flight submission is not
// cancelled; its result lands on the detached session and is never seen again.
func (s *PurchaseService) Dismiss(clerkID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, clerkID)
}

// Submit runs the two-step transaction for the open session.
//
// Step A uploads the proof; step B records the membership with the returned
// URL. Step B never starts unless step A succeeded, so no membership can exist
// without a stored proof. A failure in step B leaves the uploaded proof
// orphaned; that is accepted and not retried here.
func (s *PurchaseService) Submit(ctx context.Context, clerkID string) (*purchase.Session, error) {
	s.mu.Lock()
	session, ok := s.sessions[clerkID]
	if !ok {
		s.mu.Unlock()
		return nil, apperr.NotFound("no open purchase session")
	}

	// Entry guard: not ready or already in flight means no-op. A succeeded
	// session is terminal, a new purchase needs a fresh SelectPlan.
	if !session.CanSubmit() || session.Status == purchase.StatusSucceeded {
		snapshot := session.Snapshot()
		s.mu.Unlock()
		return snapshot, nil
	}

	session.Status = purchase.StatusSubmitting
	session.ErrorMessage = ""
	session.SuccessMessage = ""
	planType := session.PlanType
	proof := session.Proof
	s.mu.Unlock()

	proofURL, err := s.storage.UploadPaymentProof(ctx, clerkID, proof)
	if err != nil {
		log.Printf("Proof upload failed for %s: %v", clerkID, err)
		return s.fail(session, err), nil
	}

	if _, err := s.memberships.CreateMembership(ctx, clerkID, planType, proofURL); err != nil {
		log.Printf("Membership creation failed for %s: %v", clerkID, err)
		return s.fail(session, err), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	session.Status = purchase.StatusSucceeded
	session.SuccessMessage = submitSuccessMessage
	session.Proof = nil
	return session.Snapshot(), nil
}

func (s *PurchaseService) fail(session *purchase.Session, cause error) *purchase.Session {
	message := submitDefaultError
	if appErr, ok := apperr.As(cause); ok && appErr.Message != "" {
		message = appErr.Message
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	session.Status = purchase.StatusFailed
	session.ErrorMessage = message
	return session.Snapshot()
}

// Acknowledge moves a succeeded session from the confirmation modal to the
// waiting view. It is invalid before the submission has succeeded.
func (s *PurchaseService) Acknowledge(clerkID string) (*purchase.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[clerkID]
	if !ok {
		return nil, apperr.NotFound("no open purchase session")
	}
	if session.Status != purchase.StatusSucceeded {
		return nil, apperr.Validation("submission has not succeeded yet")
	}
	session.Acknowledged = true
	return session.Snapshot(), nil
}

// ChannelQR renders the payment code for the session's selected wallet,
// together with the static image the client also displays.
func (s *PurchaseService) ChannelQR(clerkID string) (*purchase.ChannelQRResponse, error) {
	s.mu.Lock()
	session, ok := s.sessions[clerkID]
	if !ok {
		s.mu.Unlock()
		return nil, apperr.NotFound("no open purchase session")
	}
	channel := session.Channel
	planType := session.PlanType
	s.mu.Unlock()

	plan, ok := membership.PlanByType(planType)
	if !ok {
		return nil, apperr.Validation(fmt.Sprintf("unknown plan type: %s", planType))
	}

	qrContent := fmt.Sprintf("tutorlink://pay/%s?plan=%s&amount=%s", channel, plan.Type, plan.Price)
	pngBytes, err := qrcode.Encode(qrContent, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR png: %w", err)
	}

	return &purchase.ChannelQRResponse{
		Channel:      channel,
		ImageURL:     purchase.ChannelQRImages[channel],
		QRCodeBase64: base64.StdEncoding.EncodeToString(pngBytes),
		Amount:       plan.Price,
	}, nil
}

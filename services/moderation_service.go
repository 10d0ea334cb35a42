package services

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"tutorLinkAPI/internal/review"
)

// ReviewMutator is the remote collaborator behind the edit and delete flows.
// *ReviewService satisfies it.
type ReviewMutator interface {
	UpdateReview(ctx context.Context, reviewID uuid.UUID, clerkID string, req *review.UpdateReviewRequest) error
	DeleteReview(ctx context.Context, reviewID uuid.UUID, clerkID string) error
}

// ModerationResult mirrors the toast the client renders after a flow ends.
type ModerationResult struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// ModerationService runs the confirm-then-commit edit and delete flows. Each
// flow resolves its own outcome: the in-flight guard is cleared and a result
// message produced whether the collaborator succeeded or not. Parents register
// callbacks to re-fetch or prune their collection after a successful mutation.
type ModerationService struct {
	reviews ReviewMutator

	mu       sync.Mutex
	deleting map[string]bool

	onReviewUpdated func()
	onReviewDeleted func()
}

func NewModerationService(reviews ReviewMutator) *ModerationService {
	return &ModerationService{
		reviews:  reviews,
		deleting: make(map[string]bool),
	}
}

func (s *ModerationService) OnReviewUpdated(fn func()) {
	s.onReviewUpdated = fn
}

func (s *ModerationService) OnReviewDeleted(fn func()) {
	s.onReviewDeleted = fn
}

// ConfirmEdit commits the edit surface. On failure the caller keeps its state
// and may retry; on success the parent callback fires.
func (s *ModerationService) ConfirmEdit(ctx context.Context, reviewID uuid.UUID, clerkID string, req *review.UpdateReviewRequest) (*ModerationResult, error) {
	if err := s.reviews.UpdateReview(ctx, reviewID, clerkID, req); err != nil {
		log.Printf("Error al actualizar reseña %s: %v", reviewID, err)
		return &ModerationResult{Severity: "error", Message: "No se pudo actualizar la reseña"}, err
	}

	if s.onReviewUpdated != nil {
		s.onReviewUpdated()
	}

	return &ModerationResult{Severity: "success", Message: "Reseña actualizada correctamente"}, nil
}

// ConfirmDelete commits the delete confirmation. The deleting flag blocks a
// duplicate submission of the same review and is cleared in all cases before
// control returns.
func (s *ModerationService) ConfirmDelete(ctx context.Context, reviewID uuid.UUID, clerkID string) (*ModerationResult, error) {
	key := reviewID.String()

	s.mu.Lock()
	if s.deleting[key] {
		s.mu.Unlock()
		return &ModerationResult{Severity: "warn", Message: "La reseña ya se está eliminando"}, nil
	}
	s.deleting[key] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.deleting, key)
		s.mu.Unlock()
	}()

	if err := s.reviews.DeleteReview(ctx, reviewID, clerkID); err != nil {
		log.Printf("Error al eliminar reseña %s: %v", reviewID, err)
		return &ModerationResult{Severity: "error", Message: "No se pudo eliminar la reseña"}, err
	}

	if s.onReviewDeleted != nil {
		s.onReviewDeleted()
	}

	return &ModerationResult{Severity: "success", Message: "Reseña eliminada correctamente"}, nil
}

// IsDeleting reports whether a delete is in flight for the review.
func (s *ModerationService) IsDeleting(reviewID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleting[reviewID.String()]
}

package services

import (
	"sync"

	"tutorLinkAPI/internal/review"
)

// LikeOverlayService keeps the per-user like state for reviews. The overlay is
// session-scoped UI sugar: it starts from the server-seeded baseline, moves
// with every toggle and is never written back, so a refresh returns to the
// stored count. This divergence from server truth is deliberate.
type LikeOverlayService struct {
	mu    sync.Mutex
	state map[string]map[string]*review.LikeState
}

func NewLikeOverlayService() *LikeOverlayService {
	return &LikeOverlayService{
		state: make(map[string]map[string]*review.LikeState),
	}
}

// Toggle flips the caller's like for the review. The first toggle seeds the
// overlay from baseline; two toggles always land back on baseline.
func (s *LikeOverlayService) Toggle(clerkID, reviewID string, baseline int) *review.LikeState {
	s.mu.Lock()
	defer s.mu.Unlock()

	byReview, ok := s.state[clerkID]
	if !ok {
		byReview = make(map[string]*review.LikeState)
		s.state[clerkID] = byReview
	}

	likeState, ok := byReview[reviewID]
	if !ok {
		likeState = &review.LikeState{Liked: false, DisplayedLikes: baseline}
		byReview[reviewID] = likeState
	}

	likeState.Toggle()
	copied := *likeState
	return &copied
}

// Get returns the caller's current overlay for the review, or a fresh state
// seeded from baseline when nothing has been toggled yet.
func (s *LikeOverlayService) Get(clerkID, reviewID string, baseline int) *review.LikeState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if likeState, ok := s.state[clerkID][reviewID]; ok {
		copied := *likeState
		return &copied
	}
	return &review.LikeState{Liked: false, DisplayedLikes: baseline}
}

// Forget drops all overlay state for the user, the equivalent of a view
// unmount or refresh.
func (s *LikeOverlayService) Forget(clerkID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state, clerkID)
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"tutorLinkAPI/internal/apperr"
	"tutorLinkAPI/internal/review"
	"tutorLinkAPI/middleware"
	"tutorLinkAPI/services"
)

type ReviewHandler struct {
	reviewService     *services.ReviewService
	moderationService *services.ModerationService
	likeOverlay       *services.LikeOverlayService
}

func NewReviewHandler(reviewService *services.ReviewService, moderationService *services.ModerationService, likeOverlay *services.LikeOverlayService) *ReviewHandler {
	return &ReviewHandler{
		reviewService:     reviewService,
		moderationService: moderationService,
		likeOverlay:       likeOverlay,
	}
}

// ListTutorReviews returns review cards for a tutor. Ownership and the like
// overlay are computed per caller on every request, never cached, so a
// login/logout between requests changes the affordances immediately.
func (h *ReviewHandler) ListTutorReviews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	tutorID, err := uuid.Parse(mux.Vars(r)["tutorID"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid tutor ID")
		return
	}

	reviews, err := h.reviewService.ListTutorReviews(ctx, tutorID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	// Anonymous callers still see the list, just without edit/delete.
	var currentUserID, clerkID string
	if id, ok := middleware.GetClerkID(ctx); ok {
		clerkID = id
		if resolved, err := h.reviewService.CurrentUserID(ctx, id); err == nil {
			currentUserID = resolved
		}
	}

	cards := make([]*review.ReviewCard, 0, len(reviews))
	for _, rv := range reviews {
		card := &review.ReviewCard{
			Review:        rv,
			IsOwner:       review.IsOwner(rv, currentUserID),
			FormattedDate: review.FormatDate(rv.CreatedAt),
			Initials:      review.Initials(rv.Student),
		}
		if clerkID != "" {
			card.LikeState = h.likeOverlay.Get(clerkID, rv.ID.String(), rv.Likes)
		} else {
			card.LikeState = &review.LikeState{DisplayedLikes: rv.Likes}
		}
		cards = append(cards, card)
	}

	respondWithJSON(w, http.StatusOK, cards)
}

func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	tutorID, err := uuid.Parse(mux.Vars(r)["tutorID"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid tutor ID")
		return
	}

	var req review.CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	created, err := h.reviewService.CreateReview(ctx, clerkID, tutorID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// UpdateReview is the commit half of the edit flow. On failure the edit
// surface stays open with its state preserved for retry.
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	reviewID, err := uuid.Parse(mux.Vars(r)["reviewID"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var req review.UpdateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	result, err := h.moderationService.ConfirmEdit(ctx, reviewID, clerkID, &req)
	if err != nil {
		middleware.ReviewMutations.WithLabelValues("edit", "error").Inc()
		respondModerationFailure(w, err, result)
		return
	}

	middleware.ReviewMutations.WithLabelValues("edit", "success").Inc()
	respondWithJSON(w, http.StatusOK, result)
}

// DeleteReview is the commit half of the delete confirmation.
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	reviewID, err := uuid.Parse(mux.Vars(r)["reviewID"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	result, err := h.moderationService.ConfirmDelete(ctx, reviewID, clerkID)
	if err != nil {
		middleware.ReviewMutations.WithLabelValues("delete", "error").Inc()
		respondModerationFailure(w, err, result)
		return
	}

	middleware.ReviewMutations.WithLabelValues("delete", "success").Inc()
	respondWithJSON(w, http.StatusOK, result)
}

// ToggleLike flips the caller's session-local like. Nothing is persisted.
func (h *ReviewHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	reviewID, err := uuid.Parse(mux.Vars(r)["reviewID"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	baseline, err := h.reviewService.ReviewLikes(ctx, reviewID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	state := h.likeOverlay.Toggle(clerkID, reviewID.String(), baseline)

	respondWithJSON(w, http.StatusOK, &review.ToggleLikeResponse{
		ReviewID:  reviewID.String(),
		LikeState: state,
	})
}

// respondModerationFailure keeps the toast payload alongside the error status
// so the client can show the notification without closing the surface.
func respondModerationFailure(w http.ResponseWriter, err error, result *services.ModerationResult) {
	code := http.StatusInternalServerError
	if appErr, ok := apperr.As(err); ok {
		code = appErr.StatusCode()
	}
	if result == nil {
		respondWithError(w, code, "Internal server error")
		return
	}
	respondWithJSON(w, code, result)
}

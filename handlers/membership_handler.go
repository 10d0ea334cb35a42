package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"tutorLinkAPI/internal/apperr"
	"tutorLinkAPI/internal/membership"
	"tutorLinkAPI/middleware"
	"tutorLinkAPI/services"
)

type MembershipHandler struct {
	membershipService *services.MembershipService
}

func NewMembershipHandler(membershipService *services.MembershipService) *MembershipHandler {
	return &MembershipHandler{
		membershipService: membershipService,
	}
}

// GetPlans serves the static tier catalog. Public, no auth.
func (h *MembershipHandler) GetPlans(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, membership.Catalog())
}

// GetCurrentMembership drives the waiting view: the client shows the pending
// screen until the status here flips to ACTIVE or REJECTED.
func (h *MembershipHandler) GetCurrentMembership(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	m, err := h.membershipService.GetCurrentMembership(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, m)
}

// Helper functions

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps structured service errors to their status code
// and everything else to a generic 500.
func respondWithServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := apperr.As(err); ok {
		respondWithError(w, appErr.StatusCode(), appErr.Message)
		return
	}
	respondWithError(w, http.StatusInternalServerError, "Internal server error")
}

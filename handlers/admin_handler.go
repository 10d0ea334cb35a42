package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"tutorLinkAPI/internal/membership"
	"tutorLinkAPI/middleware"
	"tutorLinkAPI/services"
)

// AdminHandler exposes the manual payment review queue. Routes using it sit
// behind the admin allowlist middleware; the service re-checks nothing about
// the admin beyond recording who decided.
type AdminHandler struct {
	membershipService *services.MembershipService
}

func NewAdminHandler(membershipService *services.MembershipService) *AdminHandler {
	return &AdminHandler{
		membershipService: membershipService,
	}
}

func (h *AdminHandler) ListPendingMemberships(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pending, err := h.membershipService.ListPendingMemberships(ctx)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	if pending == nil {
		pending = []*membership.Membership{}
	}

	respondWithJSON(w, http.StatusOK, pending)
}

func (h *AdminHandler) ApproveMembership(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.membershipService.ApproveMembership)
}

func (h *AdminHandler) RejectMembership(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.membershipService.RejectMembership)
}

func (h *AdminHandler) decide(w http.ResponseWriter, r *http.Request, decide func(ctx context.Context, adminClerkID, membershipID, note string) (*membership.Membership, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	adminClerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req membership.ReviewDecisionRequest
	if r.Body != nil {
		// The note is optional; an empty body is fine.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	m, err := decide(ctx, adminClerkID, mux.Vars(r)["membershipID"], req.Note)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, m)
}

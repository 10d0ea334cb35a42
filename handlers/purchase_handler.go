package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"tutorLinkAPI/internal/purchase"
	"tutorLinkAPI/middleware"
	"tutorLinkAPI/services"
)

// Proofs are small images or PDFs; anything bigger than 10MB is rejected at
// the parse step.
const maxProofSize = 10 << 20

var validate = validator.New()

type PurchaseHandler struct {
	purchaseService *services.PurchaseService
}

func NewPurchaseHandler(purchaseService *services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
	}
}

// OpenSession starts a purchase attempt for the selected plan, replacing any
// previous session the user had open.
func (h *PurchaseHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req purchase.OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "planType is required")
		return
	}

	session, err := h.purchaseService.SelectPlan(clerkID, req.PlanType)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, session)
}

func (h *PurchaseHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	session, err := h.purchaseService.GetSession(clerkID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, session)
}

func (h *PurchaseHandler) SelectChannel(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req purchase.SelectChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.purchaseService.SelectChannel(clerkID, req.Channel)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, session)
}

// GetChannelQR returns the payment code for the session's selected wallet.
func (h *PurchaseHandler) GetChannelQR(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	qr, err := h.purchaseService.ChannelQR(clerkID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, qr)
}

// AttachProof receives the proof file as multipart form data. The accept
// filter (image/* or PDF) is advisory and enforced by the picker; the session
// stores whatever arrives.
func (h *PurchaseHandler) AttachProof(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := r.ParseMultipartForm(maxProofSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("proof")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "proof file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to read proof file")
		return
	}

	proof := &purchase.ProofFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}

	session, err := h.purchaseService.AttachProof(clerkID, proof)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, session)
}

// Submit runs the proof-upload + membership-creation transaction and reports
// where the session landed.
func (h *PurchaseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	session, err := h.purchaseService.Submit(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	switch session.Status {
	case purchase.StatusSucceeded:
		middleware.ProofSubmissions.WithLabelValues("succeeded").Inc()
	case purchase.StatusFailed:
		middleware.ProofSubmissions.WithLabelValues("failed").Inc()
	}

	respondWithJSON(w, http.StatusOK, session)
}

// Acknowledge closes the confirmation modal and moves to the waiting view.
func (h *PurchaseHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	session, err := h.purchaseService.Acknowledge(clerkID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, session)
}

// Dismiss drops the session. Safe to call from any status.
func (h *PurchaseHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	h.purchaseService.Dismiss(clerkID)

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

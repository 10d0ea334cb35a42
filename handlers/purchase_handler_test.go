package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutorLinkAPI/internal/membership"
	"tutorLinkAPI/internal/purchase"
	"tutorLinkAPI/middleware"
	"tutorLinkAPI/services"
)

type fakeProofStorage struct {
	url string
	err error
}

func (f *fakeProofStorage) UploadPaymentProof(ctx context.Context, clerkID string, proof *purchase.ProofFile) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fakeMembershipCreator struct {
	created int
}

func (f *fakeMembershipCreator) CreateMembership(ctx context.Context, clerkID string, planType membership.PlanType, paymentProofURL string) (*membership.Membership, error) {
	f.created++
	return &membership.Membership{PlanType: planType, PaymentProofURL: paymentProofURL, Status: membership.StatusPending}, nil
}

func authedRequest(method, target string, body *bytes.Buffer, clerkID string) *http.Request {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	ctx := context.WithValue(req.Context(), middleware.ClerkIDKey, clerkID)
	return req.WithContext(ctx)
}

func multipartProof(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="proof"; filename="yape.png"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake png bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return buf, writer.FormDataContentType()
}

func TestPurchaseFlowEndToEnd(t *testing.T) {
	storage := &fakeProofStorage{url: "https://storage.example/proofs/p.png"}
	creator := &fakeMembershipCreator{}
	handler := NewPurchaseHandler(services.NewPurchaseService(storage, creator))

	// Open a session for the premium plan.
	body := bytes.NewBufferString(`{"planType":"PREMIUM"}`)
	rec := httptest.NewRecorder()
	handler.OpenSession(rec, authedRequest(http.MethodPost, "/api/v1/membership/purchase", body, "user_1"))
	require.Equal(t, http.StatusCreated, rec.Code)

	// Attach the proof file.
	proofBody, contentType := multipartProof(t)
	req := authedRequest(http.MethodPost, "/api/v1/membership/purchase/proof", proofBody, "user_1")
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	handler.AttachProof(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Submit and verify the session landed on success.
	rec = httptest.NewRecorder()
	handler.Submit(rec, authedRequest(http.MethodPost, "/api/v1/membership/purchase/submit", nil, "user_1"))
	require.Equal(t, http.StatusOK, rec.Code)

	var session purchase.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, purchase.StatusSucceeded, session.Status)
	assert.Contains(t, session.SuccessMessage, "Comprobante enviado")
	assert.Equal(t, 1, creator.created)

	// Acknowledge closes the modal.
	rec = httptest.NewRecorder()
	handler.Acknowledge(rec, authedRequest(http.MethodPost, "/api/v1/membership/purchase/acknowledge", nil, "user_1"))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestOpenSessionRejectsUnknownPlan(t *testing.T) {
	handler := NewPurchaseHandler(services.NewPurchaseService(&fakeProofStorage{}, &fakeMembershipCreator{}))

	body := bytes.NewBufferString(`{"planType":"GOLD"}`)
	rec := httptest.NewRecorder()
	handler.OpenSession(rec, authedRequest(http.MethodPost, "/api/v1/membership/purchase", body, "user_1"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestOpenSessionRequiresAuth(t *testing.T) {
	handler := NewPurchaseHandler(services.NewPurchaseService(&fakeProofStorage{}, &fakeMembershipCreator{}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/membership/purchase", strings.NewReader(`{"planType":"BASIC"}`))
	rec := httptest.NewRecorder()
	handler.OpenSession(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitFailureReportsSpanishError(t *testing.T) {
	storage := &fakeProofStorage{err: assert.AnError}
	creator := &fakeMembershipCreator{}
	handler := NewPurchaseHandler(services.NewPurchaseService(storage, creator))

	body := bytes.NewBufferString(`{"planType":"BASIC"}`)
	rec := httptest.NewRecorder()
	handler.OpenSession(rec, authedRequest(http.MethodPost, "/api/v1/membership/purchase", body, "user_1"))
	require.Equal(t, http.StatusCreated, rec.Code)

	proofBody, contentType := multipartProof(t)
	req := authedRequest(http.MethodPost, "/api/v1/membership/purchase/proof", proofBody, "user_1")
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	handler.AttachProof(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.Submit(rec, authedRequest(http.MethodPost, "/api/v1/membership/purchase/submit", nil, "user_1"))
	require.Equal(t, http.StatusOK, rec.Code)

	var session purchase.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, purchase.StatusFailed, session.Status)
	assert.Equal(t, "Error al enviar el comprobante.", session.ErrorMessage)
	assert.Equal(t, 0, creator.created)
}

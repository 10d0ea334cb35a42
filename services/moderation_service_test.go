package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutorLinkAPI/internal/review"
)

// stubReviews blocks or fails on demand so the flows can be observed mid-flight.
type stubReviews struct {
	updateErr   error
	deleteErr   error
	updateCalls int
	deleteCalls int
	gate        chan struct{}
}

func (s *stubReviews) UpdateReview(ctx context.Context, reviewID uuid.UUID, clerkID string, req *review.UpdateReviewRequest) error {
	s.updateCalls++
	return s.updateErr
}

func (s *stubReviews) DeleteReview(ctx context.Context, reviewID uuid.UUID, clerkID string) error {
	s.deleteCalls++
	if s.gate != nil {
		<-s.gate
	}
	return s.deleteErr
}

func TestConfirmEditSuccessFiresCallback(t *testing.T) {
	reviews := &stubReviews{}
	svc := NewModerationService(reviews)

	fired := false
	svc.OnReviewUpdated(func() { fired = true })

	rating := 4
	result, err := svc.ConfirmEdit(context.Background(), uuid.New(), "user_1", &review.UpdateReviewRequest{Rating: &rating})
	require.NoError(t, err)

	assert.Equal(t, "success", result.Severity)
	assert.Equal(t, "Reseña actualizada correctamente", result.Message)
	assert.True(t, fired)
}

func TestConfirmEditFailureKeepsCallbackSilent(t *testing.T) {
	reviews := &stubReviews{updateErr: errors.New("boom")}
	svc := NewModerationService(reviews)

	fired := false
	svc.OnReviewUpdated(func() { fired = true })

	result, err := svc.ConfirmEdit(context.Background(), uuid.New(), "user_1", &review.UpdateReviewRequest{})
	require.Error(t, err)

	assert.Equal(t, "error", result.Severity)
	assert.Equal(t, "No se pudo actualizar la reseña", result.Message)
	assert.False(t, fired)

	// The flow is retryable: the same edit can be confirmed again.
	reviews.updateErr = nil
	result, err = svc.ConfirmEdit(context.Background(), uuid.New(), "user_1", &review.UpdateReviewRequest{})
	require.NoError(t, err)
	assert.Equal(t, "success", result.Severity)
}

func TestConfirmDeleteSuccess(t *testing.T) {
	reviews := &stubReviews{}
	svc := NewModerationService(reviews)

	fired := false
	svc.OnReviewDeleted(func() { fired = true })

	id := uuid.New()
	result, err := svc.ConfirmDelete(context.Background(), id, "user_1")
	require.NoError(t, err)

	assert.Equal(t, "success", result.Severity)
	assert.Equal(t, "Reseña eliminada correctamente", result.Message)
	assert.True(t, fired)
	assert.False(t, svc.IsDeleting(id))
}

func TestConfirmDeleteFailureClearsGuard(t *testing.T) {
	reviews := &stubReviews{deleteErr: errors.New("boom")}
	svc := NewModerationService(reviews)

	fired := false
	svc.OnReviewDeleted(func() { fired = true })

	id := uuid.New()
	result, err := svc.ConfirmDelete(context.Background(), id, "user_1")
	require.Error(t, err)

	assert.Equal(t, "error", result.Severity)
	assert.Equal(t, "No se pudo eliminar la reseña", result.Message)
	assert.False(t, fired)
	assert.False(t, svc.IsDeleting(id), "guard must clear even on failure")

	// Cleared guard means a retry goes through.
	reviews.deleteErr = nil
	result, err = svc.ConfirmDelete(context.Background(), id, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "success", result.Severity)
	assert.Equal(t, 2, reviews.deleteCalls)
}

func TestConfirmDeleteBlocksDuplicateSubmission(t *testing.T) {
	gate := make(chan struct{})
	reviews := &stubReviews{gate: gate}
	svc := NewModerationService(reviews)

	id := uuid.New()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.ConfirmDelete(context.Background(), id, "user_1")
		assert.NoError(t, err)
	}()

	// Wait for the first delete to hold the guard.
	require.Eventually(t, func() bool { return svc.IsDeleting(id) }, time.Second, 5*time.Millisecond)

	result, err := svc.ConfirmDelete(context.Background(), id, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "warn", result.Severity)

	close(gate)
	wg.Wait()

	assert.Equal(t, 1, reviews.deleteCalls)
	assert.False(t, svc.IsDeleting(id))
}

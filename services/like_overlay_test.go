package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLikeOverlayToggleIsInvolution(t *testing.T) {
	svc := NewLikeOverlayService()

	state := svc.Toggle("user_1", "review_1", 12)
	assert.True(t, state.Liked)
	assert.Equal(t, 13, state.DisplayedLikes)

	state = svc.Toggle("user_1", "review_1", 12)
	assert.False(t, state.Liked)
	assert.Equal(t, 12, state.DisplayedLikes)
}

func TestLikeOverlayGetSeedsFromBaseline(t *testing.T) {
	svc := NewLikeOverlayService()

	state := svc.Get("user_1", "review_1", 7)
	assert.False(t, state.Liked)
	assert.Equal(t, 7, state.DisplayedLikes)

	// After a toggle the overlay wins over whatever baseline the reader
	// passes in.
	svc.Toggle("user_1", "review_1", 7)
	state = svc.Get("user_1", "review_1", 99)
	assert.True(t, state.Liked)
	assert.Equal(t, 8, state.DisplayedLikes)
}

func TestLikeOverlayIsScopedPerUser(t *testing.T) {
	svc := NewLikeOverlayService()

	svc.Toggle("user_1", "review_1", 3)

	state := svc.Get("user_2", "review_1", 3)
	assert.False(t, state.Liked)
	assert.Equal(t, 3, state.DisplayedLikes)
}

func TestLikeOverlayReturnsCopies(t *testing.T) {
	svc := NewLikeOverlayService()

	state := svc.Toggle("user_1", "review_1", 3)
	state.DisplayedLikes = 99
	state.Liked = false

	fresh := svc.Get("user_1", "review_1", 3)
	assert.True(t, fresh.Liked)
	assert.Equal(t, 4, fresh.DisplayedLikes)
}

func TestLikeOverlayForgetDropsUserState(t *testing.T) {
	svc := NewLikeOverlayService()

	svc.Toggle("user_1", "review_1", 3)
	svc.Forget("user_1")

	state := svc.Get("user_1", "review_1", 3)
	assert.False(t, state.Liked)
	assert.Equal(t, 3, state.DisplayedLikes)
}

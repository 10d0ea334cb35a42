package purchase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tutorLinkAPI/internal/membership"
)

func TestNewSessionStartsClean(t *testing.T) {
	s := NewSession("user_123", membership.PlanBasic)

	assert.Equal(t, membership.PlanBasic, s.PlanType)
	assert.Equal(t, ChannelYape, s.Channel)
	assert.Equal(t, StatusIdle, s.Status)
	assert.Nil(t, s.Proof)
	assert.Empty(t, s.ErrorMessage)
	assert.False(t, s.Acknowledged)
}

func TestCanSubmit(t *testing.T) {
	proof := &ProofFile{Filename: "proof.jpg", ContentType: "image/jpeg"}

	tests := []struct {
		name   string
		proof  *ProofFile
		status SubmissionStatus
		want   bool
	}{
		{"no proof, idle", nil, StatusIdle, false},
		{"proof attached, idle", proof, StatusIdle, true},
		{"proof attached, submitting", proof, StatusSubmitting, false},
		{"proof attached, failed (retry)", proof, StatusFailed, true},
		{"no proof, failed", nil, StatusFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession("user_123", membership.PlanStandard)
			s.Proof = tt.proof
			s.Status = tt.status
			assert.Equal(t, tt.want, s.CanSubmit())
		})
	}
}

func TestResetFromAnyStatus(t *testing.T) {
	for _, status := range []SubmissionStatus{StatusIdle, StatusSubmitting, StatusSucceeded, StatusFailed} {
		s := NewSession("user_123", membership.PlanPremium)
		s.Channel = ChannelPlin
		s.Proof = &ProofFile{Filename: "proof.pdf", ContentType: "application/pdf"}
		s.Status = status
		s.ErrorMessage = "boom"
		s.Acknowledged = true

		s.Reset()

		assert.Equal(t, ChannelYape, s.Channel)
		assert.Nil(t, s.Proof)
		assert.Equal(t, StatusIdle, s.Status)
		assert.Empty(t, s.ErrorMessage)
		assert.False(t, s.Acknowledged)
		// The selected plan survives a reset; only the attempt state clears.
		assert.Equal(t, membership.PlanPremium, s.PlanType)
	}
}

func TestIsAllowedProofType(t *testing.T) {
	assert.True(t, IsAllowedProofType("image/png"))
	assert.True(t, IsAllowedProofType("image/jpeg"))
	assert.True(t, IsAllowedProofType("application/pdf"))
	assert.False(t, IsAllowedProofType("text/html"))
	assert.False(t, IsAllowedProofType("application/zip"))
	assert.False(t, IsAllowedProofType(""))
}

func TestChannelValidation(t *testing.T) {
	assert.True(t, ChannelYape.IsValid())
	assert.True(t, ChannelPlin.IsValid())
	assert.False(t, Channel("PAYPAL").IsValid())
}

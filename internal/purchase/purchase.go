package purchase

import (
	"strings"
	"time"

	"tutorLinkAPI/internal/membership"
)

type Channel string

const (
	ChannelYape Channel = "YAPE"
	ChannelPlin Channel = "PLIN"
)

func (c Channel) IsValid() bool {
	return c == ChannelYape || c == ChannelPlin
}

// Static QR images shown next to the generated code, one per wallet.
var ChannelQRImages = map[Channel]string{
	ChannelYape: "https://xdqnuesrahrusfnxcwvm.supabase.co/storage/v1/object/public/qr//qr.png",
	ChannelPlin: "https://xdqnuesrahrusfnxcwvm.supabase.co/storage/v1/object/public/qr//plin.jpg",
}

type SubmissionStatus string

const (
	StatusIdle       SubmissionStatus = "IDLE"
	StatusSubmitting SubmissionStatus = "SUBMITTING"
	StatusSucceeded  SubmissionStatus = "SUCCEEDED"
	StatusFailed     SubmissionStatus = "FAILED"
)

// ProofFile is the payment proof the tutor attaches before submitting.
type ProofFile struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"-"`
}

// IsAllowedProofType reports whether the content type is one the purchase flow
// asks for (any image, or a PDF). The filter is advisory: the submission surface
// constrains choices but the session does not reject other types on its own.
func IsAllowedProofType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || contentType == "application/pdf"
}

// Session is one purchase attempt: the plan the tutor picked, the wallet tab
// they are looking at, the attached proof and where the submission stands.
// One session exists per user at a time; opening a new one resets the old.
type Session struct {
	UserClerkID    string              `json:"-"`
	PlanType       membership.PlanType `json:"planType"`
	Channel        Channel             `json:"channel"`
	Proof          *ProofFile          `json:"proof,omitempty"`
	Status         SubmissionStatus    `json:"status"`
	ErrorMessage   string              `json:"errorMessage,omitempty"`
	SuccessMessage string              `json:"successMessage,omitempty"`
	Acknowledged   bool                `json:"acknowledged"`
	OpenedAt       time.Time           `json:"openedAt"`
}

func NewSession(clerkID string, planType membership.PlanType) *Session {
	return &Session{
		UserClerkID: clerkID,
		PlanType:    planType,
		Channel:     ChannelYape,
		Status:      StatusIdle,
		OpenedAt:    time.Now(),
	}
}

// CanSubmit reports whether the session is ready to be sent: a proof must be
// attached and no submission may already be in flight.
func (s *Session) CanSubmit() bool {
	return s.Proof != nil && s.Status != StatusSubmitting
}

// Snapshot returns a copy of the session for readers outside the service
// lock. The proof file pointer is shared; its contents are never mutated in
// place, only replaced.
func (s *Session) Snapshot() *Session {
	copied := *s
	return &copied
}

// Reset returns the session to its initial values. Safe from any status.
func (s *Session) Reset() {
	s.Channel = ChannelYape
	s.Proof = nil
	s.Status = StatusIdle
	s.ErrorMessage = ""
	s.SuccessMessage = ""
	s.Acknowledged = false
}

type OpenSessionRequest struct {
	PlanType membership.PlanType `json:"planType" validate:"required"`
}

type SelectChannelRequest struct {
	Channel Channel `json:"channel" validate:"required"`
}

type ChannelQRResponse struct {
	Channel      Channel `json:"channel"`
	ImageURL     string  `json:"imageUrl"`
	QRCodeBase64 string  `json:"qrCodeBase64"`
	Amount       string  `json:"amount"`
}

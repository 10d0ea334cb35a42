package membership

import (
	"time"

	"github.com/google/uuid"
)

type PlanType string

const (
	PlanBasic    PlanType = "BASIC"
	PlanStandard PlanType = "STANDARD"
	PlanPremium  PlanType = "PREMIUM"
)

// IsValid reports whether t names a plan that exists in the catalog.
func (t PlanType) IsValid() bool {
	switch t {
	case PlanBasic, PlanStandard, PlanPremium:
		return true
	}
	return false
}

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusActive   Status = "ACTIVE"
	StatusRejected Status = "REJECTED"
)

type Plan struct {
	Type     PlanType `json:"type"`
	Name     string   `json:"name"`
	Features []string `json:"features"`
	Price    string   `json:"price"`
}

type Membership struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	UserID          uuid.UUID  `json:"userId" db:"user_id"`
	PlanType        PlanType   `json:"planType" db:"plan_type"`
	PaymentProofURL string     `json:"paymentProofUrl" db:"payment_proof_url"`
	Status          Status     `json:"status" db:"status"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	ProcessedAt     *time.Time `json:"processedAt,omitempty" db:"processed_at"`
	ProcessedBy     *string    `json:"processedBy,omitempty" db:"processed_by"`
	AdminNote       *string    `json:"adminNote,omitempty" db:"admin_note"`
}

type ReviewDecisionRequest struct {
	Note string `json:"note,omitempty" validate:"max=500"`
}

var catalog = []Plan{
	{
		Type: PlanBasic,
		Name: "BASIC Plan",
		Features: []string{
			"Basic profile on the platform.",
			"Access to interested students.",
			"History of tutoring.",
			"Support with response within 48 hours.",
		},
		Price: "S/ 5.00",
	},
	{
		Type: PlanStandard,
		Name: "STANDARD Plan",
		Features: []string{
			"Everything in the basic plan.",
			"Access to tutoring management tools (advanced calendars, automatic reminders).",
			"Personalized recommendations for students.",
			"Improved visibility in searches.",
			"Support with a response within 24 hours.",
		},
		Price: "S/ 10.00",
	},
	{
		Type: PlanPremium,
		Name: "PREMIUM Plan",
		Features: []string{
			"Everything in the standard plan.",
			"Featured profile with greater exposure on the platform.",
			"Access to advanced statistics on tutoring performance.",
			"Promotions and discounts on ads within the platform.",
			"Priority support with a response within 12 hours.",
			"Access to exclusive events and professional development opportunities.",
		},
		Price: "S/ 15.00",
	},
}

// Catalog returns the plan tiers offered to tutors. The slice is a copy,
// the catalog itself is fixed at process start.
func Catalog() []Plan {
	out := make([]Plan, len(catalog))
	copy(out, catalog)
	return out
}

// PlanByType looks a plan up by identity rather than catalog position,
// so reordering the catalog can never silently change what a user buys.
func PlanByType(t PlanType) (Plan, bool) {
	for _, p := range catalog {
		if p.Type == t {
			return p, true
		}
	}
	return Plan{}, false
}

package review

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

type StudentSnapshot struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Avatar    *string `json:"avatar,omitempty"`
}

type TutoringReview struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	TutorID   uuid.UUID        `json:"tutorId" db:"tutor_id"`
	StudentID string           `json:"studentId" db:"student_id"`
	Student   *StudentSnapshot `json:"student,omitempty"`
	Rating    int              `json:"rating" db:"rating"`
	Comment   *string          `json:"comment,omitempty" db:"comment"`
	Likes     int              `json:"likes" db:"likes"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
}

type CreateReviewRequest struct {
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

// LikeState is the per-session overlay for one review. It is never written
// back to the server baseline; a refresh starts from the stored likes again.
type LikeState struct {
	Liked          bool `json:"liked"`
	DisplayedLikes int  `json:"displayedLikes"`
}

// Toggle flips liked and moves the displayed count with it. Toggling twice
// lands back on the starting count.
func (s *LikeState) Toggle() {
	if s.Liked {
		s.Liked = false
		s.DisplayedLikes--
	} else {
		s.Liked = true
		s.DisplayedLikes++
	}
}

// IsOwner reports whether the given user wrote the review. An empty user ID
// (nobody logged in) never owns anything.
func IsOwner(r *TutoringReview, currentUserID string) bool {
	return currentUserID != "" && currentUserID == r.StudentID
}

// Initials builds the avatar fallback from the first letters of the student's
// names, uppercased. Missing names contribute nothing, so a review without a
// snapshot renders an empty badge instead of failing.
func Initials(s *StudentSnapshot) string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	writeInitial(&b, s.FirstName)
	writeInitial(&b, s.LastName)
	return b.String()
}

// writeInitial appends the uppercased first rune of name. Names like Ángel
// start with a multi-byte rune, so byte slicing would corrupt them.
func writeInitial(b *strings.Builder, name string) {
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 || r == utf8.RuneError {
		return
	}
	b.WriteRune(unicode.ToUpper(r))
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

const datePlaceholder = "Fecha no disponible"

// FormatDate renders the long-form Spanish date the review cards show,
// e.g. "5 de marzo de 2024". A zero time yields a fixed placeholder.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return datePlaceholder
	}
	return fmt.Sprintf("%d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}

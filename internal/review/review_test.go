package review

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestIsOwner(t *testing.T) {
	r := &TutoringReview{StudentID: "student-1"}

	assert.True(t, IsOwner(r, "student-1"))
	assert.False(t, IsOwner(r, "student-2"))
	assert.False(t, IsOwner(r, ""))
}

func TestInitials(t *testing.T) {
	tests := []struct {
		name     string
		snapshot *StudentSnapshot
		want     string
	}{
		{"both names", &StudentSnapshot{FirstName: "maria", LastName: "gonzales"}, "MG"},
		{"first name only", &StudentSnapshot{FirstName: "Luis"}, "L"},
		{"last name only", &StudentSnapshot{LastName: "paredes"}, "P"},
		{"accented names", &StudentSnapshot{FirstName: "Ángel", LastName: "Óscar"}, "ÁÓ"},
		{"accented lowercase", &StudentSnapshot{FirstName: "ángela", LastName: "ñañez"}, "ÁÑ"},
		{"empty names", &StudentSnapshot{}, ""},
		{"nil snapshot", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Initials(tt.snapshot)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Fecha no disponible", FormatDate(time.Time{}))

	d := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "5 de marzo de 2024", FormatDate(d))

	d = time.Date(2025, time.December, 31, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "31 de diciembre de 2025", FormatDate(d))
}

func TestLikeToggleIsInvolution(t *testing.T) {
	s := &LikeState{Liked: false, DisplayedLikes: 7}

	s.Toggle()
	assert.True(t, s.Liked)
	assert.Equal(t, 8, s.DisplayedLikes)

	s.Toggle()
	assert.False(t, s.Liked)
	assert.Equal(t, 7, s.DisplayedLikes)
}

func TestLikeToggleFromZeroBaseline(t *testing.T) {
	s := &LikeState{}

	s.Toggle()
	s.Toggle()

	assert.Equal(t, 0, s.DisplayedLikes)
	assert.False(t, s.Liked)
}

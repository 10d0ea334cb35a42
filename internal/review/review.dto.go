package review

// ReviewCard is the list item the client renders: the review itself plus the
// presentation fields derived per caller (ownership, like overlay, date text).
type ReviewCard struct {
	Review        *TutoringReview `json:"review"`
	IsOwner       bool            `json:"isOwner"`
	LikeState     *LikeState      `json:"likeState"`
	FormattedDate string          `json:"formattedDate"`
	Initials      string          `json:"initials"`
}

type ToggleLikeResponse struct {
	ReviewID  string     `json:"reviewId"`
	LikeState *LikeState `json:"likeState"`
}

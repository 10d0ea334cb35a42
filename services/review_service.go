package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tutorLinkAPI/internal/apperr"
	"tutorLinkAPI/internal/review"
)

type ReviewService struct {
	db *pgxpool.Pool
}

func NewReviewService(db *pgxpool.Pool) *ReviewService {
	return &ReviewService{db: db}
}

// CurrentUserID resolves the caller's internal ID. Ownership of a review is
// decided against this value, freshly resolved on every request.
func (s *ReviewService) CurrentUserID(ctx context.Context, clerkID string) (string, error) {
	var userID string
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", apperr.NotFound("user not found")
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	return userID, nil
}

func (s *ReviewService) ListTutorReviews(ctx context.Context, tutorID uuid.UUID) ([]*review.TutoringReview, error) {
	query := `
		SELECT r.id, r.tutor_id, r.student_id, r.rating, r.comment, r.likes, r.created_at,
		       u.first_name, u.last_name, u.image_url
		FROM tutoring_reviews r
		LEFT JOIN users u ON u.id = r.student_id
		WHERE r.tutor_id = $1
		ORDER BY r.created_at DESC
	`

	rows, err := s.db.Query(ctx, query, tutorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*review.TutoringReview
	for rows.Next() {
		var r review.TutoringReview
		var firstName, lastName, imageURL *string
		err := rows.Scan(
			&r.ID,
			&r.TutorID,
			&r.StudentID,
			&r.Rating,
			&r.Comment,
			&r.Likes,
			&r.CreatedAt,
			&firstName,
			&lastName,
			&imageURL,
		)
		if err != nil {
			return nil, err
		}

		if firstName != nil || lastName != nil {
			snapshot := &review.StudentSnapshot{Avatar: imageURL}
			if firstName != nil {
				snapshot.FirstName = *firstName
			}
			if lastName != nil {
				snapshot.LastName = *lastName
			}
			r.Student = snapshot
		}

		reviews = append(reviews, &r)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return reviews, nil
}

func (s *ReviewService) CreateReview(ctx context.Context, clerkID string, tutorID uuid.UUID, req *review.CreateReviewRequest) (*review.TutoringReview, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperr.Validation("rating must be between 1 and 5")
	}

	studentID, err := s.CurrentUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	r := &review.TutoringReview{
		ID:        uuid.New(),
		TutorID:   tutorID,
		StudentID: studentID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		Likes:     0,
		CreatedAt: time.Now(),
	}

	insertQuery := `
		INSERT INTO tutoring_reviews (id, tutor_id, student_id, rating, comment, likes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.db.Exec(ctx, insertQuery, r.ID, r.TutorID, r.StudentID, r.Rating, r.Comment, r.Likes, r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	return r, nil
}

// UpdateReview applies a partial update of rating/comment. Only the student
// who wrote the review may touch it; the check runs here regardless of what
// the client already hid.
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID uuid.UUID, clerkID string, req *review.UpdateReviewRequest) error {
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return apperr.Validation("rating must be between 1 and 5")
	}

	studentID, ownerID, err := s.reviewOwner(ctx, reviewID, clerkID)
	if err != nil {
		return err
	}
	if studentID != ownerID {
		return apperr.Authorization("only the author can edit this review")
	}

	query := `
		UPDATE tutoring_reviews
		SET rating = COALESCE($1, rating), comment = COALESCE($2, comment)
		WHERE id = $3 AND student_id = $4
	`
	tag, err := s.db.Exec(ctx, query, req.Rating, req.Comment, reviewID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("review not found")
	}

	return nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, reviewID uuid.UUID, clerkID string) error {
	studentID, ownerID, err := s.reviewOwner(ctx, reviewID, clerkID)
	if err != nil {
		return err
	}
	if studentID != ownerID {
		return apperr.Authorization("only the author can delete this review")
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM tutoring_reviews WHERE id = $1 AND student_id = $2`, reviewID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("review not found")
	}

	return nil
}

// ReviewLikes returns the server-seeded like baseline for one review. The
// session overlay starts counting from this value.
func (s *ReviewService) ReviewLikes(ctx context.Context, reviewID uuid.UUID) (int, error) {
	var likes int
	err := s.db.QueryRow(ctx, `SELECT likes FROM tutoring_reviews WHERE id = $1`, reviewID).Scan(&likes)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, apperr.NotFound("review not found")
		}
		return 0, fmt.Errorf("failed to get review: %w", err)
	}
	return likes, nil
}

// reviewOwner returns the review's author and the caller's resolved ID.
func (s *ReviewService) reviewOwner(ctx context.Context, reviewID uuid.UUID, clerkID string) (string, string, error) {
	var studentID string
	err := s.db.QueryRow(ctx, `SELECT student_id FROM tutoring_reviews WHERE id = $1`, reviewID).Scan(&studentID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", "", apperr.NotFound("review not found")
		}
		return "", "", fmt.Errorf("failed to get review: %w", err)
	}

	callerID, err := s.CurrentUserID(ctx, clerkID)
	if err != nil {
		return "", "", err
	}

	return studentID, callerID, nil
}

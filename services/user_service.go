package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tutorLinkAPI/internal/apperr"
	"tutorLinkAPI/internal/user"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `
		SELECT id, clerk_id, email, username, first_name, last_name, image_url, role, created_at, updated_at
		FROM users
		WHERE clerk_id = $1
	`

	var u user.User
	var imageURL *string
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&imageURL,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if imageURL != nil {
		u.ImageURL = *imageURL
	}

	return &u, nil
}

// UpdateProfileByClerkID applies a partial profile update and returns the
// fresh record.
func (s *UserService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	query := `
		UPDATE users
		SET first_name = COALESCE($1, first_name),
		    last_name = COALESCE($2, last_name),
		    image_url = COALESCE($3, image_url),
		    updated_at = NOW()
		WHERE clerk_id = $4
	`
	tag, err := s.db.Exec(ctx, query, req.FirstName, req.LastName, req.ImageURL, clerkID)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.NotFound("user not found")
	}

	return s.GetUserByClerkID(ctx, clerkID)
}

package postgres

import (
	"context"
	"database/sql"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// RatingRepository is a PostgreSQL implementation of repository.RatingRepository.
type RatingRepository struct {
	db *sql.DB
}

// NewRatingRepository creates a new PostgreSQL rating repository.
func NewRatingRepository(db *sql.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Create inserts the rating and folds its score into the rated user's
// aggregate. The unique index on (ride_id, rater_id, rated_id) rejects repeats.
func (r *RatingRepository) Create(ctx context.Context, rating *domain.Rating) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ratings (id, ride_id, rater_id, rated_id, score, comment, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			rating.ID,
			rating.RideID,
			rating.RaterID,
			rating.RatedID,
			rating.Score,
			sql.NullString{String: rating.Comment, Valid: rating.Comment != ""},
			rating.CreatedAt,
		)
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE users
			SET rating_sum = rating_sum + $1,
			    rating_count = rating_count + 1,
			    rating = (rating_sum + $1)::double precision / (rating_count + 1)
			WHERE id = $2
		`, rating.Score, rating.RatedID)
		if err != nil {
			return err
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

// ListByRated returns all ratings a user has received, oldest first.
func (r *RatingRepository) ListByRated(ctx context.Context, userID string) ([]*domain.Rating, error) {
	query := `
		SELECT id, ride_id, rater_id, rated_id, score, comment, created_at
		FROM ratings WHERE rated_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var ratings []*domain.Rating
	for rows.Next() {
		var rating domain.Rating
		var comment sql.NullString
		if err := rows.Scan(
			&rating.ID,
			&rating.RideID,
			&rating.RaterID,
			&rating.RatedID,
			&rating.Score,
			&comment,
			&rating.CreatedAt,
		); err != nil {
			return nil, err
		}
		rating.Comment = comment.String
		ratings = append(ratings, &rating)
	}
	return ratings, rows.Err()
}

// Ensure RatingRepository implements repository.RatingRepository.
var _ repository.RatingRepository = (*RatingRepository)(nil)

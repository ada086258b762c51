package repository

import (
	"database/sql"

	"github.com/user/hypertube/internal/model"
)

type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create 写入一条影评（没有更新和删除路径）
func (r *ReviewRepository) Create(rev *model.Review) error {
	_, err := r.db.Exec(`
		INSERT INTO reviews (id, movie_id, name, date, stars, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rev.ID, rev.MovieID, rev.Name, rev.Date, rev.Stars, rev.Body, rev.CreatedAt)
	return err
}

// ListByMovieID 按写入顺序返回影片的全部本站影评
func (r *ReviewRepository) ListByMovieID(movieID string) ([]model.Review, error) {
	rows, err := r.db.Query(`
		SELECT id, movie_id, name, date, stars, body, created_at
		FROM reviews
		WHERE movie_id = $1
		ORDER BY created_at ASC
	`, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		var rev model.Review
		err := rows.Scan(&rev.ID, &rev.MovieID, &rev.Name, &rev.Date, &rev.Stars, &rev.Body, &rev.CreatedAt)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}

	return reviews, rows.Err()
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/senyabanana/freelance-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReviewRepository - интерфейс для работы с отзывами.
type ReviewRepository interface {
	CreateReview(ctx context.Context, clientID string, req models.ReviewRequest) (*models.Review, error)
	GetReview(ctx context.Context, reviewID string) (*models.Review, error)
	ListFreelancerReviews(ctx context.Context, freelancerID string, rating int) ([]models.Review, error)
	UpdateReviewResponse(ctx context.Context, reviewID, response string) (*models.Review, error)
	GetAverageRating(ctx context.Context, freelancerID string) (float64, int, error)
}

// PostgresReviewRepository - реализация ReviewRepository для базы данных.
type PostgresReviewRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresReviewRepository создает новый экземпляр PostgresReviewRepository.
func NewPostgresReviewRepository(db *pgxpool.Pool) *PostgresReviewRepository {
	return &PostgresReviewRepository{DB: db}
}

const reviewColumns = `id, project_id, client_id, freelancer_id, rating, comment, response, created_at`

func scanReview(row projectRow) (*models.Review, error) {
	var review models.Review
	err := row.Scan(
		&review.ID,
		&review.ProjectID,
		&review.ClientID,
		&review.FreelancerID,
		&review.Rating,
		&review.Comment,
		&review.Response,
		&review.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// CreateReview создает новый отзыв.
func (r *PostgresReviewRepository) CreateReview(ctx context.Context, clientID string, req models.ReviewRequest) (*models.Review, error) {
	newReview := models.Review{
		ID:           uuid.New().String(),
		ProjectID:    req.ProjectID,
		ClientID:     clientID,
		FreelancerID: req.FreelancerID,
		Rating:       req.Rating,
		Comment:      req.Comment,
		CreatedAt:    time.Now().UTC(),
	}
	insertQuery := `INSERT INTO review (id, project_id, client_id, freelancer_id, rating, comment, response, created_at)
	               VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.Exec(
		ctx,
		insertQuery,
		newReview.ID,
		newReview.ProjectID,
		newReview.ClientID,
		newReview.FreelancerID,
		newReview.Rating,
		newReview.Comment,
		newReview.Response,
		newReview.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &newReview, nil
}

// GetReview возвращает отзыв по ID.
func (r *PostgresReviewRepository) GetReview(ctx context.Context, reviewID string) (*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM review WHERE id = $1`
	review, err := scanReview(r.DB.QueryRow(ctx, query, reviewID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return review, nil
}

// ListFreelancerReviews возвращает отзывы об исполнителе, новые первыми.
// rating = 0 означает отсутствие фильтра.
func (r *PostgresReviewRepository) ListFreelancerReviews(ctx context.Context, freelancerID string, rating int) ([]models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM review WHERE freelancer_id = $1`
	args := []interface{}{freelancerID}
	if rating > 0 {
		query += ` AND rating = $2`
		args = append(args, rating)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *review)
	}
	return reviews, nil
}

// UpdateReviewResponse записывает ответ исполнителя на отзыв.
func (r *PostgresReviewRepository) UpdateReviewResponse(ctx context.Context, reviewID, response string) (*models.Review, error) {
	updateQuery := `UPDATE review SET response = $2 WHERE id = $1 RETURNING ` + reviewColumns
	review, err := scanReview(r.DB.QueryRow(ctx, updateQuery, reviewID, response))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return review, nil
}

// GetAverageRating возвращает средний рейтинг исполнителя и число отзывов.
func (r *PostgresReviewRepository) GetAverageRating(ctx context.Context, freelancerID string) (float64, int, error) {
	var average float64
	var count int
	query := `SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM review WHERE freelancer_id = $1`
	if err := r.DB.QueryRow(ctx, query, freelancerID).Scan(&average, &count); err != nil {
		return 0, 0, err
	}
	return average, count, nil
}

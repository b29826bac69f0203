package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/senyabanana/freelance-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BidRepository - интерфейс для работы с предложениями. Мутации выполняются в
// транзакции с инкрементом версии проекта, чтобы запись в реестр предложений
// сериализовалась с переходами контракта на том же агрегате.
type BidRepository interface {
	CreateBid(ctx context.Context, projectID string, projectVersion int32, freelancerID string, amount float64, message string) (*models.Bid, error)
	GetBid(ctx context.Context, projectID, bidID string) (*models.Bid, error)
	UpdateBid(ctx context.Context, projectID string, projectVersion int32, bidID string, updateFields map[string]interface{}) (*models.Bid, error)
	ListBids(ctx context.Context, projectID string) ([]models.Bid, error)
	GetBidAnalytics(ctx context.Context, projectID string) (*models.BidAnalytics, error)
}

// PostgresBidRepository - реализация BidRepository для базы данных.
type PostgresBidRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresBidRepository создает новый экземпляр PostgresBidRepository.
func NewPostgresBidRepository(db *pgxpool.Pool) *PostgresBidRepository {
	return &PostgresBidRepository{DB: db}
}

const bidColumns = `id, project_id, freelancer_id, amount, message, status, seq, created_at`

func scanBid(row projectRow) (*models.Bid, error) {
	var bid models.Bid
	err := row.Scan(
		&bid.ID,
		&bid.ProjectID,
		&bid.FreelancerID,
		&bid.Amount,
		&bid.Message,
		&bid.Status,
		&bid.Seq,
		&bid.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

// bumpProjectVersion инкрементирует версию проекта при её совпадении с
// прочитанной. Нулевое число строк означает либо пропавший проект, либо
// проигранную гонку.
func bumpProjectVersion(ctx context.Context, tx pgx.Tx, projectID string, version int32) error {
	tag, err := tx.Exec(ctx, `UPDATE project SET version = version + 1 WHERE id = $1 AND version = $2`, projectID, version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM project WHERE id = $1)`, projectID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

// CreateBid создает новое предложение в статусе pending.
func (r *PostgresBidRepository) CreateBid(ctx context.Context, projectID string, projectVersion int32, freelancerID string, amount float64, message string) (*models.Bid, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := bumpProjectVersion(ctx, tx, projectID, projectVersion); err != nil {
		return nil, err
	}

	newBid := models.Bid{
		ID:           uuid.New().String(),
		ProjectID:    projectID,
		FreelancerID: freelancerID,
		Amount:       amount,
		Message:      message,
		Status:       models.PendingBid,
		CreatedAt:    time.Now().UTC(),
	}
	insertQuery := `INSERT INTO bid (id, project_id, freelancer_id, amount, message, status, created_at)
	               VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING seq`
	err = tx.QueryRow(
		ctx,
		insertQuery,
		newBid.ID,
		newBid.ProjectID,
		newBid.FreelancerID,
		newBid.Amount,
		newBid.Message,
		newBid.Status,
		newBid.CreatedAt).Scan(&newBid.Seq)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &newBid, nil
}

// GetBid возвращает предложение по ID в рамках проекта.
func (r *PostgresBidRepository) GetBid(ctx context.Context, projectID, bidID string) (*models.Bid, error) {
	query := fmt.Sprintf(`SELECT %s FROM bid WHERE id = $1 AND project_id = $2`, bidColumns)
	bid, err := scanBid(r.DB.QueryRow(ctx, query, bidID, projectID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return bid, nil
}

// UpdateBid меняет сумму и сообщение предложения при совпадении версии проекта.
func (r *PostgresBidRepository) UpdateBid(ctx context.Context, projectID string, projectVersion int32, bidID string, updateFields map[string]interface{}) (*models.Bid, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := bumpProjectVersion(ctx, tx, projectID, projectVersion); err != nil {
		return nil, err
	}

	var updates []string
	args := []interface{}{bidID, projectID}
	argIndex := 3

	if amount, ok := updateFields["amount"].(float64); ok {
		updates = append(updates, fmt.Sprintf("amount = $%d", argIndex))
		args = append(args, amount)
		argIndex++
	}
	if message, ok := updateFields["message"].(string); ok {
		updates = append(updates, fmt.Sprintf("message = $%d", argIndex))
		args = append(args, message)
		argIndex++
	}
	if len(updates) == 0 {
		return nil, models.NewValidationError("no valid fields to update")
	}

	updateQuery := fmt.Sprintf(`UPDATE bid SET %s WHERE id = $1 AND project_id = $2 RETURNING %s`,
		strings.Join(updates, ", "), bidColumns)
	bid, err := scanBid(tx.QueryRow(ctx, updateQuery, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return bid, nil
}

// ListBids возвращает все предложения проекта в порядке вставки.
func (r *PostgresBidRepository) ListBids(ctx context.Context, projectID string) ([]models.Bid, error) {
	query := fmt.Sprintf(`SELECT %s FROM bid WHERE project_id = $1 ORDER BY seq`, bidColumns)
	rows, err := r.DB.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []models.Bid
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, *bid)
	}
	return bids, nil
}

// GetBidAnalytics возвращает сводку по всем предложениям проекта независимо от статуса.
func (r *PostgresBidRepository) GetBidAnalytics(ctx context.Context, projectID string) (*models.BidAnalytics, error) {
	var analytics models.BidAnalytics
	query := `SELECT COUNT(*), COALESCE(AVG(amount), 0) FROM bid WHERE project_id = $1`
	err := r.DB.QueryRow(ctx, query, projectID).Scan(&analytics.Count, &analytics.AverageAmount)
	if err != nil {
		return nil, err
	}
	return &analytics, nil
}

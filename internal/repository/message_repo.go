package repository

import (
	"context"
	"sort"
	"time"

	"github.com/senyabanana/freelance-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository - интерфейс для работы с сообщениями. Сообщения никогда не
// удаляются; единственная мутация после создания - пометка о прочтении.
type MessageRepository interface {
	CreateMessage(ctx context.Context, senderID, receiverID, content string) (*models.Message, error)
	ListConversation(ctx context.Context, userA, userB string) ([]models.Message, error)
	MarkRead(ctx context.Context, readerID, senderID string) (int64, error)
	ListThreads(ctx context.Context, userID string) ([]models.Thread, error)
}

// PostgresMessageRepository - реализация MessageRepository для базы данных.
type PostgresMessageRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresMessageRepository создает новый экземпляр PostgresMessageRepository.
func NewPostgresMessageRepository(db *pgxpool.Pool) *PostgresMessageRepository {
	return &PostgresMessageRepository{DB: db}
}

// CreateMessage создает сообщение с read=false. Возвращённый seq задаёт
// стабильный порядок при равных временных метках.
func (r *PostgresMessageRepository) CreateMessage(ctx context.Context, senderID, receiverID, content string) (*models.Message, error) {
	newMessage := models.Message{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Read:       false,
		CreatedAt:  time.Now().UTC(),
	}
	insertQuery := `INSERT INTO message (id, sender_id, receiver_id, content, read, created_at)
	               VALUES ($1, $2, $3, $4, $5, $6) RETURNING seq`
	err := r.DB.QueryRow(
		ctx,
		insertQuery,
		newMessage.ID,
		newMessage.SenderID,
		newMessage.ReceiverID,
		newMessage.Content,
		newMessage.Read,
		newMessage.CreatedAt).Scan(&newMessage.Seq)
	if err != nil {
		return nil, err
	}
	return &newMessage, nil
}

// ListConversation возвращает полную историю между парой пользователей по
// возрастанию времени создания, с разрешением равенства по seq.
func (r *PostgresMessageRepository) ListConversation(ctx context.Context, userA, userB string) ([]models.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, content, read, seq, created_at
		FROM message
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at, seq`
	rows, err := r.DB.Query(ctx, query, userA, userB)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var message models.Message
		if err := rows.Scan(
			&message.ID,
			&message.SenderID,
			&message.ReceiverID,
			&message.Content,
			&message.Read,
			&message.Seq,
			&message.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// MarkRead помечает прочитанными все непрочитанные сообщения от senderID к
// readerID. Повторный вызов не затрагивает ни одной строки.
func (r *PostgresMessageRepository) MarkRead(ctx context.Context, readerID, senderID string) (int64, error) {
	updateQuery := `UPDATE message SET read = TRUE WHERE receiver_id = $1 AND sender_id = $2 AND read = FALSE`
	tag, err := r.DB.Exec(ctx, updateQuery, readerID, senderID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListThreads возвращает собеседников пользователя, отсортированных по
// времени последней активности, с последним сообщением и числом непрочитанных.
func (r *PostgresMessageRepository) ListThreads(ctx context.Context, userID string) ([]models.Thread, error) {
	query := `
		SELECT DISTINCT ON (CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END)
			CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS counterpart,
			id, sender_id, receiver_id, content, read, seq, created_at
		FROM message
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END, created_at DESC, seq DESC`
	rows, err := r.DB.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var threads []models.Thread
	for rows.Next() {
		var thread models.Thread
		if err := rows.Scan(
			&thread.CounterpartID,
			&thread.LastMessage.ID,
			&thread.LastMessage.SenderID,
			&thread.LastMessage.ReceiverID,
			&thread.LastMessage.Content,
			&thread.LastMessage.Read,
			&thread.LastMessage.Seq,
			&thread.LastMessage.CreatedAt); err != nil {
			return nil, err
		}
		thread.LastActivity = thread.LastMessage.CreatedAt
		threads = append(threads, thread)
	}
	rows.Close()

	unreadQuery := `SELECT sender_id, COUNT(*) FROM message WHERE receiver_id = $1 AND read = FALSE GROUP BY sender_id`
	unreadRows, err := r.DB.Query(ctx, unreadQuery, userID)
	if err != nil {
		return nil, err
	}
	defer unreadRows.Close()

	unread := make(map[string]int64)
	for unreadRows.Next() {
		var senderID string
		var count int64
		if err := unreadRows.Scan(&senderID, &count); err != nil {
			return nil, err
		}
		unread[senderID] = count
	}
	for i := range threads {
		threads[i].UnreadCount = unread[threads[i].CounterpartID]
	}

	sort.Slice(threads, func(i, j int) bool {
		return threads[i].LastActivity.After(threads[j].LastActivity)
	})
	return threads, nil
}

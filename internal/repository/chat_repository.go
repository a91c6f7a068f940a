package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
)

var ErrChatNotFound = errors.New("chat not found")

type ChatRepository struct {
	pool *pgxpool.Pool
}

func NewChatRepository(pool *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{pool: pool}
}

// AppendMessage stores msg with a server timestamp, refreshes the chat
// summary and records the optional notification, all in one transaction.
func (r *ChatRepository) AppendMessage(ctx context.Context, msg models.Message, participants []string, n *models.Notification) (models.Message, error) {
	stored := msg
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const upsertChat = `
			INSERT INTO chats (id, participants, last_message, updated_at)
			VALUES ($1, $2, '', NOW())
			ON CONFLICT (id) DO NOTHING
		`
		if _, err := tx.Exec(ctx, upsertChat, msg.ChatID, participants); err != nil {
			return fmt.Errorf("upsert chat: %w", err)
		}

		const insertMessage = `
			INSERT INTO messages (id, chat_id, sender_id, text)
			VALUES ($1, $2, $3, $4)
			RETURNING seq, created_at
		`
		if err := tx.QueryRow(ctx, insertMessage, msg.ID, msg.ChatID, msg.SenderID, msg.Text).
			Scan(&stored.Seq, &stored.CreatedAt); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}

		const summary = `
			UPDATE chats SET last_message = $2, last_message_at = $3, updated_at = NOW()
			WHERE id = $1
		`
		if _, err := tx.Exec(ctx, summary, msg.ChatID, msg.Text, stored.CreatedAt); err != nil {
			return fmt.Errorf("update chat summary: %w", err)
		}

		if n == nil {
			return nil
		}
		return insertNotification(ctx, tx, *n)
	})
	return stored, err
}

func (r *ChatRepository) GetChat(ctx context.Context, id string) (models.Chat, error) {
	const query = `SELECT id, participants, last_message, last_message_at, updated_at FROM chats WHERE id = $1`
	var c models.Chat
	if err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Participants, &c.LastMessage, &c.LastMessageAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Chat{}, ErrChatNotFound
		}
		return models.Chat{}, err
	}
	return c, nil
}

func (r *ChatRepository) ListByUser(ctx context.Context, userID string) ([]models.Chat, error) {
	const query = `
		SELECT id, participants, last_message, last_message_at, updated_at
		FROM chats
		WHERE $1 = ANY(participants)
		ORDER BY last_message_at DESC NULLS LAST
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chats := make([]models.Chat, 0)
	for rows.Next() {
		var c models.Chat
		if err := rows.Scan(&c.ID, &c.Participants, &c.LastMessage, &c.LastMessageAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// ListMessages returns the whole chat in ascending (timestamp, seq) order.
func (r *ChatRepository) ListMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	const query = `
		SELECT id, chat_id, sender_id, text, seq, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at ASC, seq ASC
	`

	rows, err := r.pool.Query(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Text, &m.Seq, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

package repository

import (
	"context"
	"database/sql"

	"github.com/sabirama/tutorial-hub-sub000/internal/models"
)

type ConversationRepository struct {
	db DBTX
}

func NewConversationRepository(db DBTX) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// CreateOrGet returns the single conversation for a parent/tutor pair,
// creating it on first contact. The unique constraint makes this safe under
// concurrent identical requests.
func (r *ConversationRepository) CreateOrGet(ctx context.Context, parentID, tutorID int64) (*models.Conversation, error) {
	sql := `
		INSERT INTO conversations (parent_id, tutor_id)
		VALUES ($1, $2)
		ON CONFLICT (parent_id, tutor_id)
		DO UPDATE SET updated_at = conversations.updated_at
		RETURNING id, parent_id, tutor_id, created_at, updated_at
	`
	return r.scanConversation(r.db.QueryRow(ctx, sql, parentID, tutorID))
}

func (r *ConversationRepository) GetByIDForParticipant(ctx context.Context, conversationID, participantID int64) (*models.Conversation, error) {
	sql := `
		SELECT id, parent_id, tutor_id, created_at, updated_at
		FROM conversations
		WHERE id = $1 AND (parent_id = $2 OR tutor_id = $2)
	`
	return r.scanConversation(r.db.QueryRow(ctx, sql, conversationID, participantID))
}

func (r *ConversationRepository) ListForParticipant(ctx context.Context, participantID int64) ([]models.ConversationSummary, error) {
	query := `
		SELECT
			c.id,
			c.parent_id,
			c.tutor_id,
			c.created_at,
			c.updated_at,
			lm.id,
			lm.conversation_id,
			lm.sender_id,
			lm.content,
			lm.is_read,
			lm.created_at,
			COALESCE(uc.unread_count, 0)
		FROM conversations c
		LEFT JOIN LATERAL (
			SELECT id, conversation_id, sender_id, content, is_read, created_at
			FROM messages
			WHERE conversation_id = c.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) lm ON TRUE
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS unread_count
			FROM messages
			WHERE conversation_id = c.id
			  AND sender_id <> $1
			  AND is_read = FALSE
		) uc ON TRUE
		WHERE c.parent_id = $1 OR c.tutor_id = $1
		ORDER BY COALESCE(lm.created_at, c.updated_at, c.created_at) DESC, c.id DESC
	`

	rows, err := r.db.Query(ctx, query, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]models.ConversationSummary, 0)
	for rows.Next() {
		var summary models.ConversationSummary
		var messageID sql.NullInt64
		var messageConversationID sql.NullInt64
		var messageSenderID sql.NullInt64
		var messageContent sql.NullString
		var messageIsRead sql.NullBool
		var messageCreatedAt sql.NullTime

		if err := rows.Scan(
			&summary.ID,
			&summary.ParentID,
			&summary.TutorID,
			&summary.CreatedAt,
			&summary.UpdatedAt,
			&messageID,
			&messageConversationID,
			&messageSenderID,
			&messageContent,
			&messageIsRead,
			&messageCreatedAt,
			&summary.UnreadCount,
		); err != nil {
			return nil, err
		}

		if messageID.Valid {
			summary.LastMessage = &models.ChatMessage{
				ID:             messageID.Int64,
				ConversationID: messageConversationID.Int64,
				SenderID:       messageSenderID.Int64,
				Content:        messageContent.String,
				IsRead:         messageIsRead.Bool,
				CreatedAt:      messageCreatedAt.Time,
			}
		}

		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}

func (r *ConversationRepository) Touch(ctx context.Context, conversationID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET updated_at = NOW()
		WHERE id = $1
	`, conversationID)
	return err
}

func (r *ConversationRepository) scanConversation(row interface{ Scan(dest ...any) error }) (*models.Conversation, error) {
	var conversation models.Conversation
	err := row.Scan(
		&conversation.ID,
		&conversation.ParentID,
		&conversation.TutorID,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/repository"
)

const maxMessageLength = 4000

type conversationStore interface {
	ListForParticipant(ctx context.Context, participantID int64) ([]models.ConversationSummary, error)
	GetByIDForParticipant(ctx context.Context, conversationID, participantID int64) (*models.Conversation, error)
	CreateOrGet(ctx context.Context, parentID, tutorID int64) (*models.Conversation, error)
}

type messageStore interface {
	ListByConversation(ctx context.Context, conversationID int64, limit, offset int) ([]models.ChatMessage, int, error)
	MarkMessagesRead(ctx context.Context, conversationID, readerID int64, messageIDs []int64) error
}

type ChatService struct {
	db               *pgxpool.Pool
	conversationRepo conversationStore
	messageRepo      messageStore
	accountRepo      accountReader
}

type ChatDelivery struct {
	Conversation *models.Conversation
	Message      *models.ChatMessage
	RecipientID  int64
}

func NewChatService(
	db *pgxpool.Pool,
	conversationRepo conversationStore,
	messageRepo messageStore,
	accountRepo accountReader,
) *ChatService {
	return &ChatService{
		db:               db,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		accountRepo:      accountRepo,
	}
}

func (s *ChatService) ListConversations(ctx context.Context, actorID int64, role string) ([]models.ConversationSummary, error) {
	if role != models.RoleParent && role != models.RoleTutor {
		return nil, ErrForbidden
	}
	return s.conversationRepo.ListForParticipant(ctx, actorID)
}

// CreateConversation opens (or returns) the conversation between the actor
// and the account on the other side of the marketplace.
func (s *ChatService) CreateConversation(ctx context.Context, actorID int64, role string, otherID int64) (*models.Conversation, error) {
	if role != models.RoleParent && role != models.RoleTutor {
		return nil, ErrForbidden
	}
	if otherID <= 0 || otherID == actorID {
		return nil, ErrInvalidInput
	}

	other, err := s.accountRepo.GetByID(ctx, otherID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, counterpartNotFound(role)
		}
		return nil, err
	}

	var parentID, tutorID int64
	switch role {
	case models.RoleParent:
		if other.Role != models.RoleTutor {
			return nil, ErrInvalidInput
		}
		parentID, tutorID = actorID, otherID
	case models.RoleTutor:
		if other.Role != models.RoleParent {
			return nil, ErrInvalidInput
		}
		parentID, tutorID = otherID, actorID
	}

	return s.conversationRepo.CreateOrGet(ctx, parentID, tutorID)
}

// ListMessages returns a page of messages and marks exactly that page as
// read. Unread messages on pages the actor never fetched stay unread.
func (s *ChatService) ListMessages(ctx context.Context, actorID int64, role string, conversationID int64, page, limit int) ([]models.ChatMessage, int, error) {
	if role != models.RoleParent && role != models.RoleTutor {
		return nil, 0, ErrForbidden
	}

	if _, err := s.conversationRepo.GetByIDForParticipant(ctx, conversationID, actorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, ErrForbidden
		}
		return nil, 0, err
	}

	messages, total, err := s.messageRepo.ListByConversation(ctx, conversationID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}

	seen := make([]int64, 0, len(messages))
	for _, message := range messages {
		if message.SenderID != actorID && !message.IsRead {
			seen = append(seen, message.ID)
		}
	}
	if len(seen) > 0 {
		if err := s.messageRepo.MarkMessagesRead(ctx, conversationID, actorID, seen); err != nil {
			return nil, 0, err
		}
	}

	return messages, total, nil
}

func (s *ChatService) SendMessage(ctx context.Context, actorID int64, role string, conversationID int64, content string) (*ChatDelivery, error) {
	if role != models.RoleParent && role != models.RoleTutor {
		return nil, ErrForbidden
	}

	content = strings.TrimSpace(content)
	if content == "" || len(content) > maxMessageLength {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txConversationRepo := repository.NewConversationRepository(tx)
	txMessageRepo := repository.NewMessageRepository(tx)

	conversation, err := txConversationRepo.GetByIDForParticipant(ctx, conversationID, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	message, err := txMessageRepo.Create(ctx, conversationID, actorID, content)
	if err != nil {
		return nil, err
	}

	if err := txConversationRepo.Touch(ctx, conversationID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	recipientID := conversation.ParentID
	if actorID == conversation.ParentID {
		recipientID = conversation.TutorID
	}

	return &ChatDelivery{
		Conversation: conversation,
		Message:      message,
		RecipientID:  recipientID,
	}, nil
}

func counterpartNotFound(role string) error {
	if role == models.RoleParent {
		return ErrTutorNotFound
	}
	return ErrParentNotFound
}

func FormatChatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

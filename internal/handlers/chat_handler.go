package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/sabirama/tutorial-hub-sub000/internal/middleware"
	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/services"
	chatws "github.com/sabirama/tutorial-hub-sub000/internal/websocket"
	"github.com/sabirama/tutorial-hub-sub000/pkg/utils"
)

type chatApplicationService interface {
	ListConversations(ctx context.Context, actorID int64, role string) ([]models.ConversationSummary, error)
	CreateConversation(ctx context.Context, actorID int64, role string, otherID int64) (*models.Conversation, error)
	ListMessages(ctx context.Context, actorID int64, role string, conversationID int64, page, limit int) ([]models.ChatMessage, int, error)
	SendMessage(ctx context.Context, actorID int64, role string, conversationID int64, content string) (*services.ChatDelivery, error)
}

type ChatHandler struct {
	service   chatApplicationService
	hub       *chatws.Hub
	tokens    middleware.TokenStore
	jwtSecret string
}

func NewChatHandler(service chatApplicationService, hub *chatws.Hub, tokens middleware.TokenStore, jwtSecret string) *ChatHandler {
	return &ChatHandler{service: service, hub: hub, tokens: tokens, jwtSecret: jwtSecret}
}

func (h *ChatHandler) ListConversations(c *fiber.Ctx) error {
	accountID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	conversations, err := h.service.ListConversations(c.Context(), accountID, authRole(c))
	if err != nil {
		return mapChatError(c, err)
	}

	return respondData(c, fiber.StatusOK, fiber.Map{"conversations": conversations}, "OK")
}

type createConversationRequest struct {
	AccountID int64 `json:"account_id"`
}

func (h *ChatHandler) CreateConversation(c *fiber.Ctx) error {
	accountID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	var req createConversationRequest
	if err := c.BodyParser(&req); err != nil || req.AccountID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "account_id is required")
	}

	conversation, err := h.service.CreateConversation(c.Context(), accountID, authRole(c), req.AccountID)
	if err != nil {
		return mapChatError(c, err)
	}

	return respondData(c, fiber.StatusCreated, fiber.Map{"conversation": conversation}, "Conversation ready")
}

func (h *ChatHandler) ListMessages(c *fiber.Ctx) error {
	accountID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	conversationID, err := c.ParamsInt("id")
	if err != nil || conversationID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid conversation id")
	}

	page, limit := parsePageAndLimit(c.Query("page"), c.Query("limit"))

	messages, total, err := h.service.ListMessages(c.Context(), accountID, authRole(c), int64(conversationID), page, limit)
	if err != nil {
		return mapChatError(c, err)
	}

	return respondData(c, fiber.StatusOK, fiber.Map{
		"messages":   messages,
		"pagination": buildPaginationMeta(page, limit, total),
	}, "OK")
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	accountID, err := authAccountID(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid token")
	}

	conversationID, err := c.ParamsInt("id")
	if err != nil || conversationID <= 0 {
		return respondError(c, fiber.StatusBadRequest, "Invalid conversation id")
	}

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	delivery, err := h.service.SendMessage(c.Context(), accountID, authRole(c), int64(conversationID), req.Content)
	if err != nil {
		return mapChatError(c, err)
	}

	if h.hub != nil {
		h.hub.DeliverMessage(delivery.RecipientID, delivery.Conversation.ID, delivery.Message)
	}

	return respondData(c, fiber.StatusCreated, fiber.Map{"message": delivery.Message}, "Message sent")
}

// WebSocketAuth guards the upgrade route. Browsers cannot set headers on a
// WebSocket handshake, so the token is accepted from the query string as well.
// The session row is checked here just like on the REST paths.
func (h *ChatHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return respondError(c, fiber.StatusUpgradeRequired, "WebSocket upgrade required")
	}

	claims, err := h.parseWSClaims(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid or expired token")
	}

	session, err := h.tokens.GetByTokenID(c.Context(), claims.ID)
	if err != nil || session.RevokedAt != nil || time.Now().After(session.ExpiresAt) {
		return respondError(c, fiber.StatusUnauthorized, "Invalid or expired token")
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("role", claims.Role)
	return c.Next()
}

func (h *ChatHandler) HandleWebSocket(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(string)
	role, _ := conn.Locals("role").(string)

	accountID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		_ = conn.Close()
		return
	}

	client := chatws.NewClient(h.hub, conn, accountID, role)
	h.hub.Register(client)
	go client.WritePump()
	client.ReadPump(h.service)
}

func (h *ChatHandler) parseWSClaims(c *fiber.Ctx) (*utils.Claims, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		authHeader := strings.TrimSpace(c.Get("Authorization"))
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}
	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	return utils.ValidateToken(tokenString, h.jwtSecret)
}

func mapChatError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return respondError(c, fiber.StatusNotFound, "Conversation not found")
	case errors.Is(err, services.ErrParentNotFound):
		return respondError(c, fiber.StatusNotFound, "Parent not found")
	case errors.Is(err, services.ErrTutorNotFound):
		return respondError(c, fiber.StatusNotFound, "Tutor not found")
	case errors.Is(err, services.ErrForbidden):
		return respondError(c, fiber.StatusForbidden, "You are not part of this conversation")
	case errors.Is(err, services.ErrInvalidInput):
		return respondError(c, fiber.StatusBadRequest, "Invalid message")
	default:
		return respondError(c, fiber.StatusInternalServerError, "Failed to process conversation")
	}
}

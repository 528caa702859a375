package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/Velmor/DuoChat/chat-service/internal/adapters/transport/http/dto"
	"github.com/Velmor/DuoChat/chat-service/internal/adapters/transport/http/middleware"
	"github.com/Velmor/DuoChat/chat-service/internal/app/account"
	"github.com/Velmor/DuoChat/chat-service/internal/app/chat"
	customErrors "github.com/Velmor/DuoChat/chat-service/internal/domain/errors"
	"github.com/Velmor/DuoChat/chat-service/internal/domain/jwt"
	"github.com/Velmor/DuoChat/chat-service/internal/domain/repo"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	accounts  account.Service
	chats     chat.Service
	tokenUtil jwt.TokenUtil
	log       *zap.Logger
}

func NewHandler(accounts account.Service, chats chat.Service, tokenUtil jwt.TokenUtil, log *zap.Logger) *Handler {
	return &Handler{
		accounts:  accounts,
		chats:     chats,
		tokenUtil: tokenUtil,
		log:       log,
	}
}

func (h *Handler) Register(r *gin.Engine) {
	r.POST("/register", h.register)
	r.POST("/verify-code", h.verifyCode)
	r.POST("/resend-verification-code", h.resendCode)
	r.POST("/login", h.login)
	r.POST("/refresh", h.refresh)
	r.GET("/health", h.health)

	authed := r.Group("/", middleware.RequireAuth(h.tokenUtil))
	authed.GET("/chats", h.listChats)
	authed.POST("/chats", h.createChat)
	authed.GET("/chats/:id/messages", h.listMessages)
	authed.POST("/chats/:id/messages", h.postMessage)
	authed.POST("/chats/:id/send-email", h.sendChatEmail)
	authed.GET("/messages", h.myMessages)
	authed.GET("/messages/:id", h.getMessage)
	authed.PUT("/messages/:id", h.updateMessage)
	authed.DELETE("/messages/:id", h.deleteMessage)
}

func (h *Handler) register(c *gin.Context) {
	var body dto.RegisterDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"detail": "registered, verification code sent to " + user.Email,
	})
}

func (h *Handler) verifyCode(c *gin.Context) {
	var body dto.VerifyCodeDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if err := h.accounts.Verify(c.Request.Context(), body); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "account verified"})
}

func (h *Handler) resendCode(c *gin.Context) {
	var body dto.ResendCodeDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if err := h.accounts.ResendCode(c.Request.Context(), body); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "verification code sent"})
}

func (h *Handler) login(c *gin.Context) {
	var body dto.LoginDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	pair, err := h.accounts.Login(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenPairView{Access: pair.AccessToken, Refresh: pair.RefreshToken})
}

func (h *Handler) refresh(c *gin.Context) {
	var body dto.RefreshDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	pair, err := h.accounts.Refresh(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenPairView{Access: pair.AccessToken, Refresh: pair.RefreshToken})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
}

func (h *Handler) listChats(c *gin.Context) {
	opts := parseOrdering(c, repo.SortByCreatedAt)
	chats, err := h.chats.ListChats(c.Request.Context(), middleware.Caller(c), opts)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, chatViews(chats))
}

func (h *Handler) createChat(c *gin.Context) {
	var body dto.CreateChatDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	created, err := h.chats.CreateChat(c.Request.Context(), middleware.Caller(c), body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, chatView(created))
}

func (h *Handler) listMessages(c *gin.Context) {
	chatID, ok := pathID(c)
	if !ok {
		return
	}
	msgs, err := h.chats.ListMessages(c.Request.Context(), middleware.Caller(c), chatID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageViews(msgs))
}

func (h *Handler) postMessage(c *gin.Context) {
	chatID, ok := pathID(c)
	if !ok {
		return
	}
	var body dto.PostMessageDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	msg, err := h.chats.PostMessage(c.Request.Context(), middleware.Caller(c), chatID, body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, messageView(msg))
}

func (h *Handler) sendChatEmail(c *gin.Context) {
	chatID, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.chats.EmailTranscript(c.Request.Context(), middleware.Caller(c), chatID); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Email sent successfully."})
}

func (h *Handler) myMessages(c *gin.Context) {
	opts := parseOrdering(c, repo.SortByTimestamp)
	msgs, err := h.chats.MyMessages(c.Request.Context(), middleware.Caller(c), opts)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageViews(msgs))
}

func (h *Handler) getMessage(c *gin.Context) {
	msgID, ok := pathID(c)
	if !ok {
		return
	}
	msg, err := h.chats.GetMessage(c.Request.Context(), middleware.Caller(c), msgID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageView(msg))
}

func (h *Handler) updateMessage(c *gin.Context) {
	msgID, ok := pathID(c)
	if !ok {
		return
	}
	var body dto.UpdateMessageDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	msg, err := h.chats.UpdateMessage(c.Request.Context(), middleware.Caller(c), msgID, body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageView(msg))
}

func (h *Handler) deleteMessage(c *gin.Context) {
	msgID, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.chats.DeleteMessage(c.Request.Context(), middleware.Caller(c), msgID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case customErrors.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case customErrors.IsSelfChat(err):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "cannot open a chat with yourself"})
	case customErrors.IsInvalidCode(err):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid or expired code"})
	case customErrors.IsNotVerified(err):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "account is not verified"})
	case customErrors.IsInvalidCredentials(err):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid credentials"})
	case customErrors.IsExpiredToken(err), customErrors.IsWrongTokenType(err), customErrors.IsInvalidToken(err):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid token"})
	case customErrors.IsAlreadyExists(err):
		c.JSON(http.StatusConflict, gin.H{"detail": "email already registered"})
	case customErrors.IsForbidden(err):
		c.JSON(http.StatusForbidden, gin.H{"detail": "You do not have permission to perform this action."})
	case customErrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
	case customErrors.IsStoreUnavailable(err):
		h.log.Error("store unavailable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "service temporarily unavailable"})
	default:
		h.log.Error("internal error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return uuid.Nil, false
	}
	return id, true
}

// parseOrdering understands the ?ordering=created_at / ?ordering=-id query
// convention; a leading dash flips the direction.
func parseOrdering(c *gin.Context, def repo.SortKey) chat.ListOptions {
	raw := c.Query("ordering")
	opts := chat.ListOptions{Sort: def}
	if raw == "" {
		return opts
	}
	if strings.HasPrefix(raw, "-") {
		opts.Desc = true
		raw = strings.TrimPrefix(raw, "-")
	}
	switch repo.SortKey(raw) {
	case repo.SortByCreatedAt, repo.SortByTimestamp, repo.SortByID:
		opts.Sort = repo.SortKey(raw)
	}
	return opts
}

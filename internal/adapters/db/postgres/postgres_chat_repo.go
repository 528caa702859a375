package postgres

import (
	"context"
	"errors"

	customErrors "github.com/Velmor/DuoChat/chat-service/internal/domain/errors"
	"github.com/Velmor/DuoChat/chat-service/internal/domain/model"
	"github.com/Velmor/DuoChat/chat-service/internal/domain/repo"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresChatRepo struct {
	db *gorm.DB
}

func NewPostgresChatRepo(db *gorm.DB) *PostgresChatRepo {
	return &PostgresChatRepo{db: db}
}

func (p *PostgresChatRepo) CreateChat(ctx context.Context, chat model.Chat) (uuid.UUID, error) {
	res := p.db.WithContext(ctx).Create(&chat)
	if err := res.Error; err != nil {
		return uuid.Nil, customErrors.WrapInternal(err, "CreateChat")
	}
	return chat.ID, nil
}

func (p *PostgresChatRepo) GetChatByID(ctx context.Context, id uuid.UUID) (model.Chat, error) {
	var c model.Chat
	res := p.db.WithContext(ctx).Where("id = ?", id).First(&c)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Chat{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Chat{}, customErrors.WrapInternal(err, "GetChatByID")
	}

	return c, nil
}

func (p *PostgresChatRepo) FindChatsForParticipant(ctx context.Context, q repo.ChatQuery) ([]model.Chat, error) {
	var chats []model.Chat
	res := p.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", q.ParticipantID, q.ParticipantID).
		Order(chatOrder(q)).
		Find(&chats)
	if err := res.Error; err != nil {
		return nil, customErrors.WrapInternal(err, "FindChatsForParticipant")
	}

	return chats, nil
}

// chatOrder whitelists the sort column; anything unexpected falls back to
// created_at so the caller can never inject SQL through a query parameter.
func chatOrder(q repo.ChatQuery) string {
	col := "created_at"
	if q.Sort == repo.SortByID {
		col = "id"
	}
	if q.Desc {
		return col + " DESC"
	}
	return col + " ASC"
}

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

type PostgresMessageRepo struct {
	db *gorm.DB
}

func NewPostgresMessageRepo(db *gorm.DB) *PostgresMessageRepo {
	return &PostgresMessageRepo{db: db}
}

func (p *PostgresMessageRepo) CreateMessage(ctx context.Context, msg model.Message) (uuid.UUID, error) {
	res := p.db.WithContext(ctx).Create(&msg)
	if err := res.Error; err != nil {
		return uuid.Nil, customErrors.WrapInternal(err, "CreateMessage")
	}
	return msg.ID, nil
}

func (p *PostgresMessageRepo) GetMessageByID(ctx context.Context, id uuid.UUID) (model.Message, error) {
	var m model.Message
	res := p.db.WithContext(ctx).Where("id = ?", id).First(&m)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Message{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Message{}, customErrors.WrapInternal(err, "GetMessageByID")
	}

	return m, nil
}

func (p *PostgresMessageRepo) FindMessagesByChat(ctx context.Context, chatID uuid.UUID) ([]model.Message, error) {
	var msgs []model.Message
	res := p.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("timestamp ASC, id ASC").
		Find(&msgs)
	if err := res.Error; err != nil {
		return nil, customErrors.WrapInternal(err, "FindMessagesByChat")
	}

	return msgs, nil
}

func (p *PostgresMessageRepo) FindMessagesByAuthor(ctx context.Context, q repo.MessageQuery) ([]model.Message, error) {
	var msgs []model.Message
	res := p.db.WithContext(ctx).
		Where("author_id = ?", q.AuthorID).
		Order(messageOrder(q)).
		Find(&msgs)
	if err := res.Error; err != nil {
		return nil, customErrors.WrapInternal(err, "FindMessagesByAuthor")
	}

	return msgs, nil
}

func (p *PostgresMessageRepo) LastMessageByChat(ctx context.Context, chatID uuid.UUID) (model.Message, error) {
	var m model.Message
	res := p.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("timestamp DESC, id DESC").
		First(&m)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Message{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Message{}, customErrors.WrapInternal(err, "LastMessageByChat")
	}

	return m, nil
}

func (p *PostgresMessageRepo) UpdateMessage(ctx context.Context, msg model.Message) error {
	res := p.db.WithContext(ctx).Save(&msg)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "UpdateMessage")
	}

	return nil
}

func (p *PostgresMessageRepo) DeleteMessage(ctx context.Context, id uuid.UUID) error {
	res := p.db.WithContext(ctx).Delete(&model.Message{}, id)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "DeleteMessage")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}

	return nil
}

func messageOrder(q repo.MessageQuery) string {
	col := "timestamp"
	if q.Sort == repo.SortByID {
		col = "id"
	}
	if q.Desc {
		return col + " DESC"
	}
	return col + " ASC"
}

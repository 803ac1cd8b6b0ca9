package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/lynx-api/internal/models"
)

// ChatRepository persists AI chat sessions and their messages.
type ChatRepository interface {
	ListRooms(ctx context.Context, userID string, limit int) ([]models.ChatRoom, error)
	GetRoom(ctx context.Context, id string) (models.ChatRoom, error)
	UpsertRoom(ctx context.Context, room *models.ChatRoom) error
	SaveMessage(ctx context.Context, message *models.ChatMessage) error
	ListMessages(ctx context.Context, roomID string) ([]models.ChatMessage, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository constructs a chat repository backed by GORM.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) ListRooms(ctx context.Context, userID string, limit int) ([]models.ChatRoom, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var rooms []models.ChatRoom
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_updated DESC").
		Limit(limit).
		Find(&rooms).Error; err != nil {
		return nil, err
	}

	return rooms, nil
}

func (r *chatRepository) GetRoom(ctx context.Context, id string) (models.ChatRoom, error) {
	var room models.ChatRoom
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&room).Error; err != nil {
		return models.ChatRoom{}, err
	}
	return room, nil
}

// UpsertRoom creates the session or only bumps last_updated when it exists, so the
// title chosen on the first message is kept.
func (r *chatRepository) UpsertRoom(ctx context.Context, room *models.ChatRoom) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_updated"}),
	}).Create(room).Error
}

func (r *chatRepository) SaveMessage(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *chatRepository) ListMessages(ctx context.Context, roomID string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	if err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

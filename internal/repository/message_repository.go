package repository

import (
	"sellerlift/backend/internal/models"

	"gorm.io/gorm"
)

// MessageRepository is the storage contract for the append-only message log
type MessageRepository interface {
	Create(message *models.Message) error
	ListByConversation(conversationID string) ([]models.Message, error)
	ListRecent(limit int) ([]models.Message, error)
	CountByConversation(conversationID string) (int64, error)
	Purge(conversationID string) error
}

type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

// ListByConversation returns the full log ascending by created_at,
// ties broken by insertion id so ordering stays deterministic
func (r *GormMessageRepository) ListByConversation(conversationID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

// ListRecent returns the newest messages across all conversations,
// used to derive the operator directory
func (r *GormMessageRepository) ListRecent(limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *GormMessageRepository) CountByConversation(conversationID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error
	return count, err
}

func (r *GormMessageRepository) Purge(conversationID string) error {
	return r.db.Where("conversation_id = ?", conversationID).
		Delete(&models.Message{}).Error
}

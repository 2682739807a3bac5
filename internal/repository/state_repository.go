package repository

import (
	"errors"

	"sellerlift/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StateRepository is the storage contract for conversation archive/delete flags
type StateRepository interface {
	Get(conversationID string) (*models.ConversationState, error)
	Upsert(state *models.ConversationState) error
	List() ([]models.ConversationState, error)
}

type GormStateRepository struct {
	db *gorm.DB
}

func NewGormStateRepository(db *gorm.DB) *GormStateRepository {
	return &GormStateRepository{db: db}
}

// Get returns nil (no error) when no override record exists; callers
// treat a missing record as the default active state
func (r *GormStateRepository) Get(conversationID string) (*models.ConversationState, error) {
	var state models.ConversationState
	err := r.db.First(&state, "conversation_id = ?", conversationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

func (r *GormStateRepository) Upsert(state *models.ConversationState) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "conversation_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"archived", "deleted", "updated_at"}),
	}).Create(state).Error
}

func (r *GormStateRepository) List() ([]models.ConversationState, error) {
	var states []models.ConversationState
	err := r.db.Find(&states).Error
	return states, err
}

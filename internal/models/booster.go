package models

import (
	"time"
)

// ConversionSettings configures the social-proof notification toast
// shown to visitors ("{{name}} bought {{package}} {{time}}")
type ConversionSettings struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	IsEnabled   bool       `json:"is_enabled"`
	Templates   StringList `json:"templates" gorm:"type:text"`
	MinInterval int        `json:"min_interval"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ConversionSettingsRequest is the admin update payload
type ConversionSettingsRequest struct {
	IsEnabled   bool     `json:"is_enabled"`
	Templates   []string `json:"templates"`
	MinInterval int      `json:"min_interval" binding:"omitempty,min=1"`
}

// BoosterNotification is one rendered social-proof message
type BoosterNotification struct {
	Text        string    `json:"text"`
	RenderedAt  time.Time `json:"rendered_at"`
	MinInterval int       `json:"min_interval"`
}

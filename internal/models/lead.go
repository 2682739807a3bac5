package models

import (
	"time"
)

// Lead is a captured prospect from the public pricing funnel
type Lead struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Name            string    `json:"name"`
	Email           string    `json:"email" gorm:"index"`
	StoreURL        string    `json:"store_url"`
	SelectedPackage string    `json:"selected_package"`
	CreatedAt       time.Time `json:"created_at"`
}

// LeadRequest is the lead-capture payload (public endpoint)
type LeadRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	StoreURL        string `json:"store_url"`
	SelectedPackage string `json:"selected_package"`
}

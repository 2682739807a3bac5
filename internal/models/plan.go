package models

import (
	"time"
)

// Package is a pricing tier shown on the public landing page and
// edited from the back office
type Package struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name"`
	Price       float64    `json:"price"`
	Features    StringList `json:"features" gorm:"type:text"`
	IsPopular   bool       `json:"is_popular"`
	Subscribers int        `json:"subscribers"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PackageRequest is the create/update payload
type PackageRequest struct {
	Name        string   `json:"name" binding:"required"`
	Price       float64  `json:"price"`
	Features    []string `json:"features"`
	IsPopular   bool     `json:"is_popular"`
	Subscribers int      `json:"subscribers"`
}

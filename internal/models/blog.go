package models

import (
	"time"
)

// BlogPost is an article on the public marketing site
type BlogPost struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug" gorm:"uniqueIndex"`
	Content   string    `json:"content"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BlogPostRequest is the create/update payload
type BlogPostRequest struct {
	Title     string `json:"title" binding:"required"`
	Slug      string `json:"slug" binding:"required"`
	Content   string `json:"content"`
	Published bool   `json:"published"`
}

// GeneratePostRequest asks the external generator service for a draft
type GeneratePostRequest struct {
	Topic string `json:"topic" binding:"required"`
}

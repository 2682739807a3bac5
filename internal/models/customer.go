package models

import (
	"time"
)

// Customer plan tiers
const (
	PlanBasic   = "Basic"
	PlanPro     = "Pro"
	PlanPremium = "Premium"
)

// Customer statuses
const (
	CustomerActive  = "Active"
	CustomerChurned = "Churned"
	CustomerTrial   = "Trial"
)

// Customer is a paying subscriber row in the back office
type Customer struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	Email     string    `json:"email" gorm:"index"`
	Avatar    string    `json:"avatar"`
	Plan      string    `json:"plan"`
	Status    string    `json:"status"`
	Spent     float64   `json:"spent"`
	JoinDate  time.Time `json:"join_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CustomerRequest is the create/update payload
type CustomerRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Avatar   string  `json:"avatar"`
	Plan     string  `json:"plan" binding:"required,oneof=Basic Pro Premium"`
	Status   string  `json:"status" binding:"required,oneof=Active Churned Trial"`
	Spent    float64 `json:"spent"`
	JoinDate string  `json:"join_date"`
}

// Stats is the aggregate card data on the admin landing view
type Stats struct {
	TotalCustomers int64   `json:"total_customers"`
	ActiveCount    int64   `json:"active_count"`
	TrialCount     int64   `json:"trial_count"`
	ChurnedCount   int64   `json:"churned_count"`
	TotalRevenue   float64 `json:"total_revenue"`
	LeadCount      int64   `json:"lead_count"`
	UserCount      int64   `json:"user_count"`
}

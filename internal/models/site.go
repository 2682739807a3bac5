package models

import (
	"encoding/json"
	"time"
)

// SiteContent is the single-document editable landing page copy
// (hero, feature cards, pricing and proof sections as one JSON blob)
type SiteContent struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	Content   json.RawMessage `json:"content" gorm:"type:jsonb"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SiteSettings holds branding plus the Stripe checkout configuration.
// Only the checkout URL and publishable key are ever returned publicly;
// the secret key stays server-side.
type SiteSettings struct {
	ID                   uint      `json:"id" gorm:"primaryKey"`
	SiteName             string    `json:"site_name"`
	LogoURL              string    `json:"logo_url"`
	PageTitle            string    `json:"page_title"`
	StripePublishableKey string    `json:"stripe_publishable_key"`
	StripeSecretKey      string    `json:"-"`
	StripeCheckoutURL    string    `json:"stripe_checkout_url"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// SiteSettingsRequest is the admin update payload
type SiteSettingsRequest struct {
	SiteName             string `json:"site_name"`
	LogoURL              string `json:"logo_url"`
	PageTitle            string `json:"page_title"`
	StripePublishableKey string `json:"stripe_publishable_key"`
	StripeSecretKey      string `json:"stripe_secret_key"`
	StripeCheckoutURL    string `json:"stripe_checkout_url"`
}

// PublicSettings is the unauthenticated view of site settings
type PublicSettings struct {
	SiteName          string `json:"site_name"`
	LogoURL           string `json:"logo_url"`
	PageTitle         string `json:"page_title"`
	StripeCheckoutURL string `json:"stripe_checkout_url"`
}

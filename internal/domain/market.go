// Package domain defines the core entities of the markets service, the
// error taxonomy shared by every layer, and the store interfaces that the
// persistence layer implements.
package domain

import "time"

// MarketStatus represents the lifecycle state of a market or outcome.
// Status values are plain strings on the wire; these constants cover the
// states the service itself assigns.
type MarketStatus string

const (
	MarketStatusOpen   MarketStatus = "open"
	MarketStatusClosed MarketStatus = "closed"
)

// Market is a single predictable proposition with a title and a set of
// possible outcomes.
type Market struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	ImageURL    *string    `json:"image_url"`
	Category    *string    `json:"category"`
	Status      string     `json:"status"`
	CloseAt     *time.Time `json:"close_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Outcomes    []Outcome  `json:"outcomes"`
}

// Outcome is one possible resolution of a market. PriceCents is an opaque
// caller-set integer; the documented 0-100 range is not enforced here.
type Outcome struct {
	ID         string    `json:"id"`
	MarketID   string    `json:"market_id"`
	Label      string    `json:"label"`
	PriceCents *int      `json:"price_cents"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateMarketInput is the JSON body accepted by market creation. Only
// Title is required; absent and null optional strings both store NULL.
type CreateMarketInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	Category    *string `json:"category"`
	CloseAt     string  `json:"close_at"`
	Status      string  `json:"status"`
}

// MarketPatch is the JSON body accepted by market update. Every field is
// tri-state: keys absent from the body leave the stored value untouched.
type MarketPatch struct {
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
	ImageURL    Optional[string] `json:"image_url"`
	Category    Optional[string] `json:"category"`
	CloseAt     Optional[string] `json:"close_at"`
	Status      Optional[string] `json:"status"`
}

// CreateOutcomeInput is the JSON body accepted by outcome creation.
type CreateOutcomeInput struct {
	Label      string `json:"label"`
	PriceCents *int   `json:"price_cents"`
	Status     string `json:"status"`
}

// OutcomePatch is the JSON body accepted by outcome update.
type OutcomePatch struct {
	Label      Optional[string] `json:"label"`
	PriceCents Optional[int]    `json:"price_cents"`
	Status     Optional[string] `json:"status"`
}

// MarketUpdate lists the columns a market update writes. Fields that are
// not set are left untouched; null fields are written as NULL. Values are
// already validated and normalized by the service layer.
type MarketUpdate struct {
	Title       Optional[string]
	Description Optional[string]
	ImageURL    Optional[string]
	Category    Optional[string]
	CloseAt     Optional[time.Time]
	Status      Optional[string]
}

// OutcomeUpdate lists the columns an outcome update writes.
type OutcomeUpdate struct {
	Label      Optional[string]
	PriceCents Optional[int]
	Status     Optional[string]
}

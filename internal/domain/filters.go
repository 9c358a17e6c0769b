package domain

import (
	"time"

	"github.com/engezna/settlement-engine/internal/money"
)

// DateRange bounds a settlement period query, inclusive on both ends.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Filters narrows financial queries. A service always ANDs these with its own
// configured scope, so callers can narrow what they see but never widen it.
type Filters struct {
	ProviderID    string             `json:"provider_id,omitempty"`
	GovernorateID string             `json:"governorate_id,omitempty"`
	CityID        string             `json:"city_id,omitempty"`
	Status        []SettlementStatus `json:"status,omitempty"`
	Direction     []money.Direction  `json:"direction,omitempty"`
	DateRange     *DateRange         `json:"date_range,omitempty"`
}

package domain

// Provider is the engine's slim view of a provider: identity and the
// geographic assignment used for regional scoping.
type Provider struct {
	ID            string        `json:"id"`
	Name          BilingualName `json:"name"`
	GovernorateID string        `json:"governorate_id"`
	CityID        string        `json:"city_id,omitempty"`
}

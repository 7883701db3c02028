package videogen

// ProviderType distinguishes the two input shapes a rendering backend accepts.
type ProviderType string

const (
	// ProviderTypeAvatar lip-syncs a still image to an audio track.
	ProviderTypeAvatar ProviderType = "avatar"
	// ProviderTypeGenerative synthesizes video purely from a text prompt.
	ProviderTypeGenerative ProviderType = "generative"
)

// String returns the type's string form.
func (t ProviderType) String() string {
	return string(t)
}

// Provider describes one rendering backend in the catalog. Immutable after
// load; ID is the only value the render gateway accepts.
type Provider struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Type               ProviderType `json:"type"`
	CostPerTenSeconds  float64      `json:"cost_per_ten_seconds"`
	QualityScore       int          `json:"quality_score"` // 1-10
	SpeedScore         int          `json:"speed_score"`   // 1-10, higher is faster
	SupportedDurations []int        `json:"supported_durations"`
	BestFor            []string     `json:"best_for"`
}

// SupportsDuration reports whether the provider renders the exact duration.
// No partial matches: 12s is not "close enough" to 10s.
func (p Provider) SupportsDuration(seconds int) bool {
	for _, d := range p.SupportedDurations {
		if d == seconds {
			return true
		}
	}
	return false
}

// SelectionRequest is the caller's requirements for provider selection.
type SelectionRequest struct {
	Duration       int    `json:"duration"`
	VideoType      string `json:"video_type"`
	Objective      string `json:"objective"`
	BudgetPriority string `json:"budget_priority"`
	HasAudio       bool   `json:"has_audio"`
	Caption        string `json:"caption"`
}

// Alternative is a runner-up provider suggested by the classifier.
type Alternative struct {
	ProviderID string `json:"provider_id"`
	Reason     string `json:"reason"`
}

// Selection is a resolved, catalog-validated provider choice.
type Selection struct {
	Provider             Provider      `json:"provider"`
	Reason               string        `json:"reason"` // classifier free text, not re-validated
	EstimatedCost        float64       `json:"estimated_cost"`
	EstimatedTimeSeconds int           `json:"estimated_time_seconds"`
	Alternatives         []Alternative `json:"alternatives,omitempty"`
}

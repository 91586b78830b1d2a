package plan

import "fmt"

// UnlimitedValue marks a feature limit with no cap.
const UnlimitedValue = -1

// FeatureLimit is an ordered entry in a plan's limit list, e.g.
// {Type: "projects", Value: 10} or {Type: "api_calls", Value: -1}.
type FeatureLimit struct {
	Type  string `json:"type"`
	Value int64  `json:"value"`
}

// NewFeatureLimit validates and builds a feature limit.
func NewFeatureLimit(limitType string, value int64) (FeatureLimit, error) {
	if limitType == "" {
		return FeatureLimit{}, fmt.Errorf("feature limit type is required")
	}
	if value < UnlimitedValue {
		return FeatureLimit{}, fmt.Errorf("feature limit value must be >= -1, got %d", value)
	}
	return FeatureLimit{Type: limitType, Value: value}, nil
}

// IsUnlimited reports whether this limit imposes no cap.
func (f FeatureLimit) IsUnlimited() bool {
	return f.Value == UnlimitedValue
}

// Allows reports whether the given usage fits under this limit.
func (f FeatureLimit) Allows(usage int64) bool {
	return f.IsUnlimited() || usage <= f.Value
}

package types

import "fmt"

// RiskLevel is the categorical band of a rating. The empty value means the
// risk has not been assessed.
type RiskLevel string

const (
	RiskLevelNone     RiskLevel = ""
	RiskLevelLow      RiskLevel = "Low"
	RiskLevelMedium   RiskLevel = "Medium"
	RiskLevelHigh     RiskLevel = "High"
	RiskLevelCritical RiskLevel = "Critical"
)

// AllRiskLevels returns all assessed levels from lowest to highest
func AllRiskLevels() []RiskLevel {
	return []RiskLevel{
		RiskLevelLow,
		RiskLevelMedium,
		RiskLevelHigh,
		RiskLevelCritical,
	}
}

// IsValid checks if the level is one of the assessed levels
func (l RiskLevel) IsValid() bool {
	switch l {
	case RiskLevelLow,
		RiskLevelMedium,
		RiskLevelHigh,
		RiskLevelCritical:
		return true
	default:
		return false
	}
}

// IsAssessed reports whether the level carries a value
func (l RiskLevel) IsAssessed() bool {
	return l != RiskLevelNone
}

// String returns the string representation of the level
func (l RiskLevel) String() string {
	if l == RiskLevelNone {
		return "Not Assessed"
	}
	return string(l)
}

// ParseRiskLevel parses a string into a RiskLevel
func ParseRiskLevel(s string) (RiskLevel, error) {
	level := RiskLevel(s)
	if !level.IsValid() {
		return "", fmt.Errorf("invalid risk level: %s", s)
	}
	return level, nil
}

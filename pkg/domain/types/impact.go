package types

import (
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Impact is the severity selection of a risk, 1 (Minor) to 4 (Extreme).
// Zero means no selection was made.
type Impact int

const (
	ImpactUnset    Impact = 0
	ImpactMinor    Impact = 1
	ImpactModerate Impact = 2
	ImpactMajor    Impact = 3
	ImpactExtreme  Impact = 4
)

var impactLabels = map[Impact]string{
	ImpactMinor:    "Minor",
	ImpactModerate: "Moderate",
	ImpactMajor:    "Major",
	ImpactExtreme:  "Extreme",
}

// AllImpacts returns all selectable impact values
func AllImpacts() []Impact {
	return []Impact{
		ImpactMinor,
		ImpactModerate,
		ImpactMajor,
		ImpactExtreme,
	}
}

// IsSet reports whether a selection was made
func (i Impact) IsSet() bool {
	return i != ImpactUnset
}

// IsValid checks if the impact is unset or within 1..4
func (i Impact) IsValid() bool {
	return i >= ImpactUnset && i <= ImpactExtreme
}

// Validate returns an error if the impact is out of range
func (i Impact) Validate() error {
	if !i.IsValid() {
		return goerr.New("impact must be between 1 and 4", goerr.V("impact", int(i)))
	}
	return nil
}

// String returns the label of the impact
func (i Impact) String() string {
	if label, ok := impactLabels[i]; ok {
		return label
	}
	return strconv.Itoa(int(i))
}

// ParseImpact accepts either the numeric score or the label
func ParseImpact(s string) (Impact, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ImpactUnset, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		i := Impact(n)
		if err := i.Validate(); err != nil {
			return ImpactUnset, err
		}
		return i, nil
	}
	for i, label := range impactLabels {
		if strings.EqualFold(label, s) {
			return i, nil
		}
	}
	return ImpactUnset, goerr.New("invalid impact", goerr.V("impact", s))
}

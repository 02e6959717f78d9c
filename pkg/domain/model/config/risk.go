package config

// Category represents a risk category configuration
type Category struct {
	ID          string
	Name        string
	Description string
}

// LikelihoodLevel represents the label of one likelihood score
type LikelihoodLevel struct {
	Name        string
	Description string
	Score       int
}

// ImpactLevel represents the label of one impact score
type ImpactLevel struct {
	Name        string
	Description string
	Score       int
}

// Department represents a department configuration
type Department struct {
	ID   string
	Name string
}

const (
	DefaultControlEffectiveness = 1.0
	DefaultMergeMinScore        = 60
	DefaultPrefixSegments       = 2
)

// RiskConfig holds all risk scoring policy
type RiskConfig struct {
	Categories  []Category
	Likelihood  []LikelihoodLevel
	Impact      []ImpactLevel
	Departments []Department

	// ControlEffectiveness applied when a report does not state its own
	ControlEffectiveness float64
	// MergeMinScore is the lowest similarity score reported as a merge candidate
	MergeMinScore int
	// MergeWorkers bounds the goroutines used for the candidate search; 0 means GOMAXPROCS
	MergeWorkers int
	// PrefixSegments is the number of leading composite id segments shared by merged reports
	PrefixSegments int
}

// EffectiveControlEffectiveness returns the configured default or 1
func (c *RiskConfig) EffectiveControlEffectiveness() float64 {
	if c == nil || c.ControlEffectiveness == 0 {
		return DefaultControlEffectiveness
	}
	return c.ControlEffectiveness
}

// EffectiveMergeMinScore returns the configured threshold or the default
func (c *RiskConfig) EffectiveMergeMinScore() int {
	if c == nil || c.MergeMinScore == 0 {
		return DefaultMergeMinScore
	}
	return c.MergeMinScore
}

// EffectivePrefixSegments returns the configured prefix length or the default
func (c *RiskConfig) EffectivePrefixSegments() int {
	if c == nil || c.PrefixSegments == 0 {
		return DefaultPrefixSegments
	}
	return c.PrefixSegments
}

// HasCategory reports whether name is a configured category. Without any
// configured category every name is accepted.
func (c *RiskConfig) HasCategory(name string) bool {
	if c == nil || len(c.Categories) == 0 {
		return true
	}
	for _, cat := range c.Categories {
		if cat.Name == name {
			return true
		}
	}
	return false
}

// HasDepartment reports whether id is a configured department. Without any
// configured department every id is accepted.
func (c *RiskConfig) HasDepartment(id string) bool {
	if c == nil || len(c.Departments) == 0 {
		return true
	}
	for _, d := range c.Departments {
		if d.ID == id {
			return true
		}
	}
	return false
}

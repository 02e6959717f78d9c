package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/secmon-lab/riskscope/pkg/domain/model/config"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// AppConfig represents the scoring policy file
type AppConfig struct {
	Scoring     Scoring           `toml:"scoring"`
	Categories  []Category        `toml:"category"`
	Likelihood  []LikelihoodLevel `toml:"likelihood"`
	Impact      []ImpactLevel     `toml:"impact"`
	Departments []Department      `toml:"department"`

	path string
}

// Scoring holds the tunables of the engine
type Scoring struct {
	ControlEffectiveness float64 `toml:"control_effectiveness"`
	MergeMinScore        int     `toml:"merge_min_score"`
	MergeWorkers         int     `toml:"merge_workers"`
	PrefixSegments       int     `toml:"prefix_segments"`
}

// Validate checks the scoring tunables. Zero values select defaults.
func (s *Scoring) Validate() error {
	if s.ControlEffectiveness < 0 || s.ControlEffectiveness > 1 {
		return goerr.Wrap(ErrInvalidScore, "control_effectiveness must be within [0, 1]",
			goerr.V(ScoreKey, s.ControlEffectiveness))
	}
	if s.MergeMinScore < 0 || s.MergeMinScore > 100 {
		return goerr.Wrap(ErrInvalidScore, "merge_min_score must be within [0, 100]",
			goerr.V(ScoreKey, s.MergeMinScore))
	}
	if s.MergeWorkers < 0 {
		return goerr.Wrap(ErrInvalidConfig, "merge_workers must not be negative", goerr.V("merge_workers", s.MergeWorkers))
	}
	if s.PrefixSegments < 0 {
		return goerr.Wrap(ErrInvalidConfig, "prefix_segments must not be negative", goerr.V("prefix_segments", s.PrefixSegments))
	}
	return nil
}

// Category represents a risk category configuration
type Category struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// Validate checks if the Category is valid
func (c *Category) Validate() error {
	id := types.CategoryID(c.ID)
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid category ID")
	}
	if c.Name == "" {
		return goerr.Wrap(ErrMissingName, "category name is required", goerr.V(IDKey, c.ID))
	}
	return nil
}

// LikelihoodLevel labels one likelihood score
type LikelihoodLevel struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Score       int    `toml:"score"`
}

// Validate checks if the LikelihoodLevel is valid
func (l *LikelihoodLevel) Validate() error {
	if l.Name == "" {
		return goerr.Wrap(ErrMissingName, "likelihood name is required", goerr.V(ScoreKey, l.Score))
	}
	if !types.Likelihood(l.Score).IsSet() || !types.Likelihood(l.Score).IsValid() {
		return goerr.Wrap(ErrInvalidScore, "likelihood score must be between 1 and 4",
			goerr.V("name", l.Name), goerr.V(ScoreKey, l.Score))
	}
	return nil
}

// ImpactLevel labels one impact score
type ImpactLevel struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Score       int    `toml:"score"`
}

// Validate checks if the ImpactLevel is valid
func (i *ImpactLevel) Validate() error {
	if i.Name == "" {
		return goerr.Wrap(ErrMissingName, "impact name is required", goerr.V(ScoreKey, i.Score))
	}
	if !types.Impact(i.Score).IsSet() || !types.Impact(i.Score).IsValid() {
		return goerr.Wrap(ErrInvalidScore, "impact score must be between 1 and 4",
			goerr.V("name", i.Name), goerr.V(ScoreKey, i.Score))
	}
	return nil
}

// Department represents a department configuration
type Department struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

// Validate checks if the Department is valid
func (d *Department) Validate() error {
	if err := types.Department(d.ID).Validate(); err != nil {
		return goerr.Wrap(err, "invalid department ID")
	}
	if d.Name == "" {
		return goerr.Wrap(ErrMissingName, "department name is required", goerr.V(IDKey, d.ID))
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if err := a.Scoring.Validate(); err != nil {
		return goerr.Wrap(err, "invalid scoring section")
	}

	categoryIDs := make(map[string]bool)
	categoryNames := make(map[string]bool)
	for _, cat := range a.Categories {
		if err := cat.Validate(); err != nil {
			return goerr.Wrap(err, "invalid category")
		}
		if categoryIDs[cat.ID] {
			return goerr.Wrap(ErrDuplicateID, "duplicate category ID", goerr.V(IDKey, cat.ID))
		}
		if categoryNames[cat.Name] {
			return goerr.Wrap(ErrDuplicateID, "duplicate category name", goerr.V("name", cat.Name))
		}
		categoryIDs[cat.ID] = true
		categoryNames[cat.Name] = true
	}

	likelihoodScores := make(map[int]bool)
	for _, lh := range a.Likelihood {
		if err := lh.Validate(); err != nil {
			return goerr.Wrap(err, "invalid likelihood level")
		}
		if likelihoodScores[lh.Score] {
			return goerr.Wrap(ErrDuplicateID, "duplicate likelihood score", goerr.V(ScoreKey, lh.Score))
		}
		likelihoodScores[lh.Score] = true
	}

	impactScores := make(map[int]bool)
	for _, imp := range a.Impact {
		if err := imp.Validate(); err != nil {
			return goerr.Wrap(err, "invalid impact level")
		}
		if impactScores[imp.Score] {
			return goerr.Wrap(ErrDuplicateID, "duplicate impact score", goerr.V(ScoreKey, imp.Score))
		}
		impactScores[imp.Score] = true
	}

	departmentIDs := make(map[string]bool)
	for _, dept := range a.Departments {
		if err := dept.Validate(); err != nil {
			return goerr.Wrap(err, "invalid department")
		}
		if departmentIDs[dept.ID] {
			return goerr.Wrap(ErrDuplicateID, "duplicate department ID", goerr.V(IDKey, dept.ID))
		}
		departmentIDs[dept.ID] = true
	}

	return nil
}

// LoadAppConfiguration loads the scoring policy from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// Flags returns CLI flags for the policy file
func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Scoring policy file (TOML). Without it every category and department is accepted",
			Sources:     cli.EnvVars("RISKSCOPE_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Configure loads the policy file given by the flags. It returns nil when
// no file was given.
func (a *AppConfig) Configure() (*domainConfig.RiskConfig, error) {
	if a.path == "" {
		return nil, nil
	}

	loaded, err := LoadAppConfiguration(a.path)
	if err != nil {
		return nil, err
	}
	return loaded.ToDomainRiskConfig(), nil
}

// ToDomainRiskConfig converts AppConfig to domain RiskConfig
func (a *AppConfig) ToDomainRiskConfig() *domainConfig.RiskConfig {
	categories := make([]domainConfig.Category, len(a.Categories))
	for i, cat := range a.Categories {
		categories[i] = domainConfig.Category{
			ID:          cat.ID,
			Name:        cat.Name,
			Description: cat.Description,
		}
	}

	likelihood := make([]domainConfig.LikelihoodLevel, len(a.Likelihood))
	for i, level := range a.Likelihood {
		likelihood[i] = domainConfig.LikelihoodLevel{
			Name:        level.Name,
			Description: level.Description,
			Score:       level.Score,
		}
	}

	impact := make([]domainConfig.ImpactLevel, len(a.Impact))
	for i, level := range a.Impact {
		impact[i] = domainConfig.ImpactLevel{
			Name:        level.Name,
			Description: level.Description,
			Score:       level.Score,
		}
	}

	departments := make([]domainConfig.Department, len(a.Departments))
	for i, dept := range a.Departments {
		departments[i] = domainConfig.Department{
			ID:   dept.ID,
			Name: dept.Name,
		}
	}

	return &domainConfig.RiskConfig{
		Categories:           categories,
		Likelihood:           likelihood,
		Impact:               impact,
		Departments:          departments,
		ControlEffectiveness: a.Scoring.ControlEffectiveness,
		MergeMinScore:        a.Scoring.MergeMinScore,
		MergeWorkers:         a.Scoring.MergeWorkers,
		PrefixSegments:       a.Scoring.PrefixSegments,
	}
}

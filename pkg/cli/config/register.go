package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/secmon-lab/riskscope/pkg/domain/model/config"
	"github.com/secmon-lab/riskscope/pkg/domain/scoring"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
	"github.com/secmon-lab/riskscope/pkg/usecase"
)

// Register is a risk register seed file holding [[report]] tables
type Register struct {
	Reports []RegisterReport `toml:"report"`
}

// RegisterReport is one report of a register file. Assessments are given
// either as [[report.assessment]] tables or in the legacy string form
// (categories JSON list plus comma separated likelihoods and impacts).
type RegisterReport struct {
	CompositeID          string               `toml:"composite_id"`
	Name                 string               `toml:"name"`
	Description          string               `toml:"description"`
	Department           string               `toml:"department"`
	Status               string               `toml:"status"`
	ControlEffectiveness float64              `toml:"control_effectiveness"`
	DueDate              string               `toml:"due_date"`
	Assessments          []RegisterAssessment `toml:"assessment"`

	Categories  string `toml:"categories"`
	Likelihoods string `toml:"likelihoods"`
	Impacts     string `toml:"impacts"`
}

// RegisterAssessment is one category assessment. Likelihood and impact
// accept a score or a label.
type RegisterAssessment struct {
	Category   string `toml:"category"`
	Likelihood any    `toml:"likelihood"`
	Impact     any    `toml:"impact"`
}

// LoadRegister reads a register file
func LoadRegister(path string) (*Register, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "register file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read register file", goerr.V(ConfigPathKey, path))
	}

	var register Register
	if err := toml.Unmarshal(data, &register); err != nil {
		return nil, goerr.Wrap(ErrInvalidRegister, "failed to parse TOML register",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	return &register, nil
}

// Inputs converts every report into a submission, resolving labels
// against the policy when one is given
func (r *Register) Inputs(policy *domainConfig.RiskConfig) ([]usecase.SubmitReportInput, error) {
	inputs := make([]usecase.SubmitReportInput, len(r.Reports))
	for i, report := range r.Reports {
		input, err := report.toInput(policy)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid register report",
				goerr.V(ReportIndexKey, i), goerr.V("name", report.Name))
		}
		inputs[i] = input
	}
	return inputs, nil
}

func (r *RegisterReport) toInput(policy *domainConfig.RiskConfig) (usecase.SubmitReportInput, error) {
	input := usecase.SubmitReportInput{
		CompositeID:          strings.TrimSpace(r.CompositeID),
		Name:                 r.Name,
		Description:          r.Description,
		Department:           types.Department(strings.TrimSpace(r.Department)),
		ControlEffectiveness: r.ControlEffectiveness,
	}

	if r.Status != "" {
		status, err := types.ParseReportStatus(strings.ToUpper(r.Status))
		if err != nil {
			return input, goerr.Wrap(ErrInvalidRegister, "invalid status", goerr.V("status", r.Status))
		}
		input.Status = status
	}

	if r.DueDate != "" {
		due, err := parseDate(r.DueDate)
		if err != nil {
			return input, err
		}
		input.DueDate = &due
	}

	assessments, err := r.assessments(policy)
	if err != nil {
		return input, err
	}
	input.Assessments = assessments
	return input, nil
}

func (r *RegisterReport) assessments(policy *domainConfig.RiskConfig) ([]usecase.AssessmentInput, error) {
	legacy := r.Categories != "" || r.Likelihoods != "" || r.Impacts != ""
	if legacy && len(r.Assessments) > 0 {
		return nil, goerr.Wrap(ErrInvalidRegister, "assessment tables and legacy fields cannot be mixed")
	}

	if legacy {
		parsed, err := scoring.ParseLegacyAssessments(r.Categories, r.Likelihoods, r.Impacts)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidRegister, "invalid legacy assessment fields", goerr.V("cause", err.Error()))
		}
		inputs := make([]usecase.AssessmentInput, len(parsed))
		for i, a := range parsed {
			inputs[i] = usecase.AssessmentInput{
				Category:   a.Category,
				Likelihood: a.Likelihood,
				Impact:     a.Impact,
			}
		}
		return inputs, nil
	}

	inputs := make([]usecase.AssessmentInput, len(r.Assessments))
	for i, a := range r.Assessments {
		l, err := resolveLikelihood(a.Likelihood, policy)
		if err != nil {
			return nil, err
		}
		im, err := resolveImpact(a.Impact, policy)
		if err != nil {
			return nil, err
		}
		inputs[i] = usecase.AssessmentInput{
			Category:   a.Category,
			Likelihood: l,
			Impact:     im,
		}
	}
	return inputs, nil
}

func scalarString(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// resolveLikelihood matches policy labels first, then the built in scale
func resolveLikelihood(v any, policy *domainConfig.RiskConfig) (types.Likelihood, error) {
	s := scalarString(v)
	if policy != nil {
		for _, level := range policy.Likelihood {
			if strings.EqualFold(level.Name, s) {
				return types.Likelihood(level.Score), nil
			}
		}
	}
	l, err := types.ParseLikelihood(s)
	if err != nil {
		return 0, goerr.Wrap(ErrInvalidRegister, "invalid likelihood", goerr.V("likelihood", s))
	}
	return l, nil
}

// resolveImpact matches policy labels first, then the built in scale
func resolveImpact(v any, policy *domainConfig.RiskConfig) (types.Impact, error) {
	s := scalarString(v)
	if policy != nil {
		for _, level := range policy.Impact {
			if strings.EqualFold(level.Name, s) {
				return types.Impact(level.Score), nil
			}
		}
	}
	i, err := types.ParseImpact(s)
	if err != nil {
		return 0, goerr.Wrap(ErrInvalidRegister, "invalid impact", goerr.V("impact", s))
	}
	return i, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, goerr.Wrap(ErrInvalidRegister, "due_date must be YYYY-MM-DD or RFC 3339", goerr.V("due_date", s))
}

// ParseAssessment parses "Category:Likelihood:Impact" as given on the command
// line. Likelihood and impact may be omitted to leave the category unassessed.
func ParseAssessment(s string, policy *domainConfig.RiskConfig) (usecase.AssessmentInput, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 || strings.TrimSpace(parts[0]) == "" {
		return usecase.AssessmentInput{}, goerr.Wrap(ErrInvalidRegister,
			"assessment must be Category:Likelihood:Impact", goerr.V("assessment", s))
	}
	for len(parts) < 3 {
		parts = append(parts, "")
	}

	l, err := resolveLikelihood(parts[1], policy)
	if err != nil {
		return usecase.AssessmentInput{}, err
	}
	im, err := resolveImpact(parts[2], policy)
	if err != nil {
		return usecase.AssessmentInput{}, err
	}
	return usecase.AssessmentInput{
		Category:   strings.TrimSpace(parts[0]),
		Likelihood: l,
		Impact:     im,
	}, nil
}

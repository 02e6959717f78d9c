package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/secmon-lab/riskscope/pkg/domain/model"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
)

var dimColor = color.New(color.Faint)

func levelColor(level types.RiskLevel) *color.Color {
	switch level {
	case types.RiskLevelCritical:
		return color.New(color.FgRed, color.Bold)
	case types.RiskLevelHigh:
		return color.New(color.FgRed)
	case types.RiskLevelMedium:
		return color.New(color.FgYellow)
	case types.RiskLevelLow:
		return color.New(color.FgGreen)
	default:
		return dimColor
	}
}

func bandColor(band types.HealthBand) *color.Color {
	switch band.Color() {
	case "green":
		return color.New(color.FgGreen)
	case "amber":
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// Coloured cells are kept in the last column so escape codes do not skew
// the tabwriter alignment.
func printAssessments(w io.Writer, assessments []model.RiskCategoryAssessment) {
	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "CATEGORY\tLIKELIHOOD\tIMPACT\tINHERENT\tRESIDUAL\tLEVEL")
	for _, a := range assessments {
		if !a.IsComplete() {
			_, _ = fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t%s\n", a.Category, dimColor.Sprint(types.RiskLevelNone.String()))
			continue
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s (%d)\t%s (%d)\t%d\t%d\t%s -> %s\n",
			a.Category,
			a.Likelihood, int(a.Likelihood),
			a.Impact, int(a.Impact),
			a.InherentRating,
			a.ResidualRating,
			levelColor(a.Level).Sprint(a.Level),
			levelColor(a.ResidualLevel).Sprint(a.ResidualLevel),
		)
	}
	_ = tw.Flush()
}

func printReports(w io.Writer, reports []*model.RiskReport) {
	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "COMPOSITE ID\tDEPARTMENT\tSTATUS\tINHERENT\tRESIDUAL\tNAME")
	for _, r := range reports {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.2f\t%s\n",
			r.CompositeID, r.Department, r.Status,
			r.GeneralInherentScore, r.GeneralResidualScore, r.Name)
	}
	_ = tw.Flush()
}

func printGroups(w io.Writer, groups []*model.RiskGroup, duplicatesOnly bool) {
	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "GROUP\tREPORTS\tMEMBERS\tCATEGORIES")
	for _, g := range groups {
		if duplicatesOnly && !g.IsDuplicate() {
			continue
		}
		members := make([]string, len(g.Members))
		for i, m := range g.Members {
			members[i] = m.CompositeID
		}
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
			g.ID, g.ReportCount, strings.Join(members, ","), strings.Join(g.Categories, ", "))
	}
	_ = tw.Flush()
}

func printCandidates(w io.Writer, pairs []*model.MergeCandidatePair) {
	if len(pairs) == 0 {
		_, _ = fmt.Fprintln(w, dimColor.Sprint("no merge candidates"))
		return
	}
	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "SCORE\tREPORT A\tREPORT B\tNAME SIMILARITY\tSIGNALS")
	for _, p := range pairs {
		signals := make([]string, len(p.MatchedSignals))
		for i, s := range p.MatchedSignals {
			signals[i] = s.String()
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%s\n",
			p.Score, p.ReportA.CompositeID, p.ReportB.CompositeID,
			p.NameSimilarity, strings.Join(signals, ", "))
	}
	_ = tw.Flush()
}

func printHealth(w io.Writer, health []*model.DepartmentHealth) {
	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "DEPARTMENT\tTOTAL\tCLOSED\tOVERDUE\tAVG RESIDUAL\tSCORE\tBAND")
	for _, h := range health {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.2f\t%.2f\t%s\n",
			h.Department, h.TotalRisks, h.ClosedRisks, h.OverdueCount,
			h.AverageResidualRating, h.HealthScore,
			bandColor(h.Band).Sprint(h.Band))
	}
	_ = tw.Flush()
}

func printSection(w io.Writer, title string) {
	_, _ = fmt.Fprintf(w, "\n%s\n", color.New(color.Bold, color.Underline).Sprint(title))
}

package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskscope/pkg/cli/config"
	"github.com/secmon-lab/riskscope/pkg/repository/memory"
	"github.com/secmon-lab/riskscope/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdRate() *cli.Command {
	var appCfg config.AppConfig
	var ce float64

	flags := []cli.Flag{
		&cli.FloatFlag{
			Name:        "control-effectiveness",
			Aliases:     []string{"e"},
			Usage:       "Control effectiveness factor in [0, 1] (policy default when omitted)",
			Destination: &ce,
		},
	}
	flags = append(flags, appCfg.Flags()...)

	return &cli.Command{
		Name:      "rate",
		Aliases:   []string{"r"},
		Usage:     "Score category assessments without storing them",
		ArgsUsage: "Category:Likelihood:Impact [...]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() == 0 {
				return goerr.New("at least one assessment is required")
			}

			riskCfg, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load scoring policy")
			}

			inputs := make([]usecase.AssessmentInput, 0, c.Args().Len())
			for _, arg := range c.Args().Slice() {
				input, err := config.ParseAssessment(arg, riskCfg)
				if err != nil {
					return err
				}
				inputs = append(inputs, input)
			}

			uc := usecase.New(memory.New(), usecase.WithRiskConfig(riskCfg))
			preview, err := uc.Report.Rate(ctx, inputs, ce)
			if err != nil {
				return goerr.Wrap(err, "failed to rate assessments")
			}

			w := output(c)
			printAssessments(w, preview.Assessments)

			agg := preview.Aggregate
			_, _ = fmt.Fprintf(w, "\ncontrol effectiveness: %.2f\n", preview.ControlEffectiveness)
			_, _ = fmt.Fprintf(w, "general inherent score: %.2f\n", agg.GeneralInherentScore)
			_, _ = fmt.Fprintf(w, "general residual score: %.2f\n", agg.GeneralResidualScore)
			_, _ = fmt.Fprintf(w, "average rating: %.2f (%s)\n", agg.AverageRating, levelColor(agg.AverageLevel).Sprint(agg.AverageLevel))
			return nil
		},
	}
}

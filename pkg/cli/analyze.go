package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskscope/pkg/cli/config"
	"github.com/secmon-lab/riskscope/pkg/usecase"
	"github.com/secmon-lab/riskscope/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdAnalyze() *cli.Command {
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var registerPath string
	var allGroups bool

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "register",
			Aliases:     []string{"r"},
			Usage:       "Risk register file submitted before the analysis",
			Sources:     cli.EnvVars("RISKSCOPE_REGISTER"),
			Destination: &registerPath,
		},
		&cli.BoolFlag{
			Name:        "all-groups",
			Usage:       "Show category groups with a single report too",
			Destination: &allGroups,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "analyze",
		Aliases: []string{"a"},
		Usage:   "Show duplicate groups, merge candidates and department health",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			riskCfg, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load scoring policy")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			uc := usecase.New(repo, usecase.WithRiskConfig(riskCfg))
			if registerPath != "" {
				if _, err := importRegister(ctx, uc, registerPath, riskCfg); err != nil {
					return err
				}
			}

			groups, err := uc.Analytics.CategoryGroups(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to group reports")
			}
			candidates, err := uc.Analytics.MergeCandidates(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to find merge candidates")
			}
			health, err := uc.Analytics.AllDepartmentHealth(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to compute department health")
			}

			w := output(c)
			printSection(w, "Category groups")
			printGroups(w, groups, !allGroups)
			printSection(w, "Merge candidates")
			printCandidates(w, candidates)
			printSection(w, "Department health")
			printHealth(w, health)
			return nil
		},
	}
}

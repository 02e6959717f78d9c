package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskscope/pkg/cli/config"
	"github.com/secmon-lab/riskscope/pkg/repository/memory"
	"github.com/secmon-lab/riskscope/pkg/usecase"
	"github.com/secmon-lab/riskscope/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var appCfg config.AppConfig
	var registerPath string

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, &cli.StringFlag{
		Name:        "register",
		Aliases:     []string{"r"},
		Usage:       "Risk register file (if specified, every report is checked against the policy)",
		Sources:     cli.EnvVars("RISKSCOPE_REGISTER"),
		Destination: &registerPath,
	})

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the scoring policy and optionally a risk register",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			w := output(c)

			// Step 1: Load and validate the policy
			riskCfg, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}
			if riskCfg == nil {
				logger.Info("No scoring policy specified, built in defaults apply")
			} else {
				logger.Info("Configuration validation passed",
					"category_count", len(riskCfg.Categories),
					"department_count", len(riskCfg.Departments),
				)
			}

			// Step 2: Dry run the register against an in-memory repository
			if registerPath == "" {
				_, _ = fmt.Fprintln(w, "policy OK")
				return nil
			}

			uc := usecase.New(memory.New(), usecase.WithRiskConfig(riskCfg))
			created, err := importRegister(ctx, uc, registerPath, riskCfg)
			if err != nil {
				return goerr.Wrap(err, "register validation failed")
			}

			_, _ = fmt.Fprintf(w, "policy OK, %d register reports OK\n", len(created))
			return nil
		},
	}
}

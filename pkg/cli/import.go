package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskscope/pkg/cli/config"
	"github.com/secmon-lab/riskscope/pkg/domain/model"
	domainConfig "github.com/secmon-lab/riskscope/pkg/domain/model/config"
	"github.com/secmon-lab/riskscope/pkg/usecase"
	"github.com/secmon-lab/riskscope/pkg/utils/logging"
	"github.com/secmon-lab/riskscope/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdImport() *cli.Command {
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var registerPath string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "register",
			Aliases:     []string{"r"},
			Usage:       "Path to the risk register file (TOML)",
			Required:    true,
			Sources:     cli.EnvVars("RISKSCOPE_REGISTER"),
			Destination: &registerPath,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "import",
		Aliases: []string{"i"},
		Usage:   "Submit every report of a risk register",
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
			created, err := importRegister(ctx, uc, registerPath, riskCfg)
			if err != nil {
				return err
			}

			w := output(c)
			printReports(w, created)
			_, _ = fmt.Fprintf(w, "\nimported %d reports\n", len(created))
			return nil
		},
	}
}

// importRegister submits the register reports in file order and stops at the
// first rejected report
func importRegister(ctx context.Context, uc *usecase.UseCases, path string, riskCfg *domainConfig.RiskConfig) ([]*model.RiskReport, error) {
	reg, err := config.LoadRegister(path)
	if err != nil {
		return nil, err
	}
	inputs, err := reg.Inputs(riskCfg)
	if err != nil {
		return nil, err
	}

	created := make([]*model.RiskReport, 0, len(inputs))
	for i, input := range inputs {
		report, err := uc.Report.SubmitReport(ctx, input)
		if err != nil {
			return created, goerr.Wrap(err, "failed to submit register report",
				goerr.V(config.ReportIndexKey, i),
				goerr.V("name", input.Name))
		}
		created = append(created, report)
	}

	logging.From(ctx).Info("risk register imported", "path", path, "count", len(created))
	return created, nil
}

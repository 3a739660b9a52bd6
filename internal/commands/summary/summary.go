package summary

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/thomas-vilte/debtguard/internal/commands/completion_helper"
	cfg "github.com/thomas-vilte/debtguard/internal/config"
	domainErrors "github.com/thomas-vilte/debtguard/internal/errors"
	"github.com/thomas-vilte/debtguard/internal/i18n"
	"github.com/thomas-vilte/debtguard/internal/logger"
	"github.com/thomas-vilte/debtguard/internal/models"
	"github.com/thomas-vilte/debtguard/internal/report"
	"github.com/thomas-vilte/debtguard/internal/ui"
	"github.com/urfave/cli/v3"
)

// ReportReader loads a report file into memory.
type ReportReader func(path string) (map[string]models.CommitReport, error)

type SummaryCommand struct {
	read ReportReader
}

func NewSummaryCommand(read ReportReader) *SummaryCommand {
	if read == nil {
		read = report.Read
	}
	return &SummaryCommand{read: read}
}

func (c *SummaryCommand) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:          "summary",
		Usage:         t.GetMessage("summary.usage", 0, nil),
		ArgsUsage:     t.GetMessage("summary.args_usage", 0, nil),
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			out := cmd.Root().Writer

			path := cmd.Args().First()
			if path == "" {
				ui.HandleAppError(cmd.Root().ErrWriter, domainErrors.ErrMissingArgument, t)
				return errors.New(t.GetMessage("error.missing_report", 0, nil))
			}

			log.Debug("reading report", "path", path)
			reports, err := c.read(path)
			if err != nil {
				ui.HandleAppError(cmd.Root().ErrWriter, err, t)
				return fmt.Errorf(t.GetMessage("error.report_read", 0, nil)+": %w", err)
			}

			printSummary(out, t, path, report.Summarize(reports))
			return nil
		},
	}
}

func printSummary(w io.Writer, t *i18n.Translations, path string, s report.Summary) {
	ui.PrintSectionBanner(w, t.GetMessage("summary.title", 0, map[string]interface{}{
		"Path": path,
	}))
	ui.PrintKeyValue(w, t.GetMessage("summary.history", 0, nil), fmt.Sprintf("%s, %s",
		t.GetMessage("summary.commits", s.Commits, map[string]interface{}{"Count": s.Commits}),
		t.GetMessage("summary.clean_commits", s.CleanCommits, map[string]interface{}{"Count": s.CleanCommits})))
	ui.PrintKeyValue(w, t.GetMessage("summary.security_total", 0, nil), fmt.Sprint(s.SecurityTotal))
	ui.PrintKeyValue(w, t.GetMessage("summary.technical_total", 0, nil), fmt.Sprint(s.TechnicalTotal))

	if len(s.Types) == 0 {
		_, _ = fmt.Fprintln(w)
		ui.PrintSuccess(w, t.GetMessage("summary.no_findings", 0, nil))
		return
	}

	var kind models.DebtKind
	for _, tc := range s.Types {
		if tc.Kind != kind {
			kind = tc.Kind
			_, _ = fmt.Fprintf(w, "\n%s\n", ui.Info.Sprint(kindTitle(t, kind)))
		}
		_, _ = fmt.Fprintf(w, "   %-40s %s\n", tc.Type, ui.Accent.Sprint(tc.Count))
	}

	locations := make([]ui.LocationCount, 0, len(s.Files))
	for _, f := range s.Files {
		locations = append(locations, ui.LocationCount{Path: f.Path, Security: f.Security, Debt: f.Debt})
	}
	ui.PrintFindingsTree(w, t.GetMessage("summary.locations", 0, nil), locations)
}

func kindTitle(t *i18n.Translations, kind models.DebtKind) string {
	if kind == models.SecurityDebt {
		return t.GetMessage("summary.security_title", 0, nil)
	}
	return t.GetMessage("summary.technical_title", 0, nil)
}

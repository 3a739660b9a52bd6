package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/thomas-vilte/debtguard/internal/commands/completion_helper"
	cfg "github.com/thomas-vilte/debtguard/internal/config"
	domainErrors "github.com/thomas-vilte/debtguard/internal/errors"
	"github.com/thomas-vilte/debtguard/internal/i18n"
	"github.com/thomas-vilte/debtguard/internal/logger"
	"github.com/thomas-vilte/debtguard/internal/models"
	"github.com/thomas-vilte/debtguard/internal/services"
	"github.com/thomas-vilte/debtguard/internal/ui"
	"github.com/urfave/cli/v3"
)

// Scanner runs one scan over an opened repository.
type Scanner interface {
	Run(ctx context.Context, opts services.ScanOptions, progress func(models.ProgressEvent)) (models.ScanSummary, error)
}

// ScanRequest carries the command line overrides of a run.
type ScanRequest struct {
	Address   string
	OutputDir string
	Rev       string
	Since     string
	Provider  string
	Model     string
	UseCache  bool
}

// ScannerProvider prepares a Scanner for req. The returned cleanup releases
// the repository and must be called once the scan is over.
type ScannerProvider func(ctx context.Context, req ScanRequest) (Scanner, func(), error)

type RunCommand struct {
	provider ScannerProvider
}

func NewRunCommand(provider ScannerProvider) *RunCommand {
	return &RunCommand{
		provider: provider,
	}
}

func (c *RunCommand) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     t.GetMessage("run.usage", 0, nil),
		ArgsUsage: t.GetMessage("run.args_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "resume",
				Aliases: []string{"r"},
				Usage:   t.GetMessage("run.resume_flag", 0, nil),
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   t.GetMessage("run.output_dir_flag", 0, nil),
			},
			&cli.StringFlag{
				Name:  "rev",
				Usage: t.GetMessage("run.rev_flag", 0, nil),
			},
			&cli.StringFlag{
				Name:  "since",
				Usage: t.GetMessage("run.since_flag", 0, nil),
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   t.GetMessage("run.provider_flag", 0, nil),
			},
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   t.GetMessage("run.model_flag", 0, nil),
			},
			&cli.IntFlag{
				Name:  "max-commits",
				Usage: t.GetMessage("run.max_commits_flag", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "cache",
				Usage: t.GetMessage("run.cache_flag", 0, nil),
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			start := time.Now()
			out := cmd.Root().Writer
			errOut := cmd.Root().ErrWriter

			req := ScanRequest{
				Address:   cmd.Args().First(),
				OutputDir: cmd.String("output-dir"),
				Rev:       cmd.String("rev"),
				Since:     cmd.String("since"),
				Provider:  cmd.String("provider"),
				Model:     cmd.String("model"),
				UseCache:  cmd.Bool("cache"),
			}
			opts := services.ScanOptions{
				Resume:     cmd.Bool("resume"),
				MaxCommits: cmd.Int("max-commits"),
			}

			log.Info("executing run command",
				"address", req.Address,
				"resume", opts.Resume,
				"max_commits", opts.MaxCommits)

			if req.Address == "" {
				ui.HandleAppError(errOut, domainErrors.ErrMissingArgument, t)
				return errors.New(t.GetMessage("error.missing_address", 0, nil))
			}

			scanner, cleanup, err := c.provider(ctx, req)
			if err != nil {
				log.Error("failed to prepare scan",
					"error", err,
					"duration_ms", time.Since(start).Milliseconds())
				ui.HandleAppError(errOut, err, t)
				return fmt.Errorf(t.GetMessage("error.scan_setup", 0, nil)+": %w", err)
			}
			if cleanup != nil {
				defer cleanup()
			}

			spinner := ui.NewSmartSpinner(t.GetMessage("run.listing_commits", 0, nil))
			spinner.Start()

			summary, err := scanner.Run(ctx, opts, progressRenderer(t, spinner))
			spinner.Stop()

			if errors.Is(err, context.Canceled) {
				log.Warn("scan interrupted",
					"analyzed", summary.Analyzed,
					"duration_ms", time.Since(start).Milliseconds())
				printSummary(out, t, summary, time.Since(start))
				ui.PrintWarning(errOut, t.GetMessage("run.interrupted", 0, map[string]interface{}{
					"Path": summary.ReportPath,
				}))
				return fmt.Errorf(t.GetMessage("error.scan_interrupted", 0, nil)+": %w", err)
			}
			if err != nil {
				log.Error("scan failed",
					"error", err,
					"duration_ms", time.Since(start).Milliseconds())
				ui.HandleAppError(errOut, err, t)
				return fmt.Errorf(t.GetMessage("error.scan_failed", 0, nil)+": %w", err)
			}

			log.Info("scan completed",
				"analyzed", summary.Analyzed,
				"failed", summary.Failed,
				"duration_ms", time.Since(start).Milliseconds())

			printSummary(out, t, summary, time.Since(start))
			return nil
		},
	}
}

// progressRenderer turns scan events into spinner updates.
func progressRenderer(t *i18n.Translations, spinner *ui.SmartSpinner) func(models.ProgressEvent) {
	return func(ev models.ProgressEvent) {
		short := shortHash(ev.CommitHash)
		switch ev.Type {
		case models.ProgressScanStarted:
			spinner.UpdateMessage(t.GetMessage("run.scan_started", ev.Total, map[string]interface{}{
				"Count": ev.Total,
			}))
		case models.ProgressCommitStarted:
			spinner.UpdateMessage(t.GetMessage("run.analyzing_commit", 0, map[string]interface{}{
				"Index": ev.Index,
				"Total": ev.Total,
				"Hash":  short,
			}))
		case models.ProgressSnippetAnalyzed:
			spinner.UpdateMessage(t.GetMessage("run.snippet_analyzed", 0, map[string]interface{}{
				"Hash": short,
				"Path": ev.Path,
			}))
		case models.ProgressCommitRetry:
			spinner.Log(ui.Warning.Sprint(t.GetMessage("run.commit_retry", 0, map[string]interface{}{
				"Hash": short,
			})))
		case models.ProgressCommitFailed:
			spinner.Log(ui.Error.Sprint(t.GetMessage("run.commit_failed", 0, map[string]interface{}{
				"Hash":  short,
				"Error": ev.Err,
			})))
		case models.ProgressCommitRecorded:
			spinner.Log(t.GetMessage("run.commit_recorded", 0, map[string]interface{}{
				"Index":    ev.Index,
				"Total":    ev.Total,
				"Hash":     short,
				"Path":     ev.Path,
				"Findings": ev.Message,
			}))
		}
	}
}

func printSummary(w io.Writer, t *i18n.Translations, summary models.ScanSummary, elapsed time.Duration) {
	ui.PrintSectionBanner(w, t.GetMessage("run.summary_title", 0, nil))
	ui.PrintKeyValue(w, t.GetMessage("run.summary_report", 0, nil), summary.ReportPath)
	ui.PrintKeyValue(w, t.GetMessage("run.summary_total", 0, nil), fmt.Sprint(summary.Total))
	ui.PrintKeyValue(w, t.GetMessage("run.summary_analyzed", 0, nil), fmt.Sprint(summary.Analyzed))
	ui.PrintKeyValue(w, t.GetMessage("run.summary_resumed", 0, nil), fmt.Sprint(summary.Resumed))
	ui.PrintKeyValue(w, t.GetMessage("run.summary_empty", 0, nil), fmt.Sprint(summary.Empty))
	ui.PrintKeyValue(w, t.GetMessage("run.summary_failed", 0, nil), fmt.Sprint(summary.Failed))
	ui.PrintKeyValue(w, t.GetMessage("run.summary_findings", 0, nil), fmt.Sprint(summary.Findings))
	_, _ = fmt.Fprintln(w)
	ui.PrintTokenUsage(w, &summary.Usage, t)
	ui.PrintDuration(w, t.GetMessage("run.finished", 0, nil), elapsed)
}

func shortHash(hash string) string {
	return models.Commit{Hash: hash}.ShortHash()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	cfgcmd "github.com/thomas-vilte/debtguard/internal/commands/config"
	"github.com/thomas-vilte/debtguard/internal/commands/registry"
	"github.com/thomas-vilte/debtguard/internal/commands/run"
	"github.com/thomas-vilte/debtguard/internal/commands/summary"
	cfg "github.com/thomas-vilte/debtguard/internal/config"
	"github.com/thomas-vilte/debtguard/internal/i18n"
	"github.com/thomas-vilte/debtguard/internal/logger"
	"github.com/thomas-vilte/debtguard/internal/version"
	"github.com/urfave/cli/v3"
)

const exitInterrupted = 130

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := initializeApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error starting debtguard: %v\n", err)
		os.Exit(1)
	}

	if err := app.Run(ctx, os.Args); err != nil {
		stop()
		if errors.Is(err, context.Canceled) {
			os.Exit(exitInterrupted)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initializeApp() (*cli.Command, error) {
	// A missing .env is normal; the real environment still applies.
	_ = godotenv.Load()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("could not resolve the home directory: %w", err)
	}

	cfgApp, err := cfg.LoadConfig(homeDir)
	if err != nil {
		return nil, err
	}

	translations, err := i18n.NewTranslations(cfg.GetLocaleConfig(cfgApp.Language))
	if err != nil {
		return nil, fmt.Errorf("error loading translations: %w", err)
	}

	registerCommand := registry.NewRegistry(cfgApp, translations)

	if err := registerCommand.Register("run", run.NewRunCommand(run.NewScannerProvider(cfgApp))); err != nil {
		return nil, err
	}
	if err := registerCommand.Register("summary", summary.NewSummaryCommand(nil)); err != nil {
		return nil, err
	}
	if err := registerCommand.Register("config", cfgcmd.NewConfigCommandFactory()); err != nil {
		return nil, err
	}

	return &cli.Command{
		Name:                  "debtguard",
		Usage:                 translations.GetMessage("app_usage", 0, nil),
		Version:               version.FullVersion(),
		Description:           translations.GetMessage("app_description", 0, nil),
		Commands:              registerCommand.CreateCommands(),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: translations.GetMessage("flag.debug", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: translations.GetMessage("flag.verbose", 0, nil),
			},
			&cli.StringFlag{
				Name:  "lang",
				Usage: translations.GetMessage("flag.lang", 0, nil),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logger.Initialize(cmd.Bool("debug"), cmd.Bool("verbose"))
			if lang := cmd.String("lang"); lang != "" {
				lang = cfg.GetLocaleConfig(lang)
				if err := translations.SetLanguage(lang); err != nil {
					return ctx, err
				}
				cfgApp.Language = lang
			}
			logger.Debug(ctx, "configuration loaded", "path", cfgApp.PathFile, "language", cfgApp.Language)
			return ctx, nil
		},
	}, nil
}

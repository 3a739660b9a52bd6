package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/thomas-vilte/debtguard/internal/config"
	"github.com/thomas-vilte/debtguard/internal/i18n"
	"github.com/thomas-vilte/debtguard/internal/ui"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newShowCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: t.GetMessage("config.show_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: t.GetMessage("config.show_json_flag", 0, nil),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			out := command.Root().Writer

			if command.Bool("json") {
				data, err := json.MarshalIndent(cfg, "", "  ")
				if err != nil {
					return fmt.Errorf("error encoding configuration: %w", err)
				}
				_, _ = fmt.Fprintln(out, string(data))
				return nil
			}

			ui.PrintSectionBanner(out, t.GetMessage("config.current", 0, nil))
			ui.PrintKeyValue(out, t.GetMessage("config.file_label", 0, nil), cfg.PathFile)
			ui.PrintKeyValue(out, t.GetMessage("config.language_label", 0, nil), cfg.Language)
			ui.PrintKeyValue(out, t.GetMessage("config.output_dir_label", 0, nil), cfg.OutputDir)
			ui.PrintKeyValue(out, t.GetMessage("config.active_ai_label", 0, nil), string(cfg.AIConfig.ActiveAI))
			ui.PrintKeyValue(out, t.GetMessage("config.model_label", 0, nil), string(cfg.ActiveModel()))
			ui.PrintKeyValue(out, t.GetMessage("config.temperature_label", 0, nil), fmt.Sprint(cfg.AIConfig.Temperature))
			ui.PrintKeyValue(out, t.GetMessage("config.repairs_label", 0, nil), fmt.Sprint(cfg.AIConfig.MaxRepairAttempts))
			ui.PrintKeyValue(out, t.GetMessage("config.retries_label", 0, nil), fmt.Sprint(cfg.AIConfig.MaxTransportRetries))
			if cfg.AIConfig.ActiveAI == config.AIAzure {
				ui.PrintKeyValue(out, t.GetMessage("config.azure_endpoint_label", 0, nil), cfg.AIConfig.Azure.Endpoint)
				ui.PrintKeyValue(out, t.GetMessage("config.azure_deployment_label", 0, nil), cfg.AIConfig.Azure.Deployment)
			}
			ui.PrintKeyValue(out, t.GetMessage("config.extensions_label", 0, nil), strings.Join(cfg.Scan.SourceExtensions, " "))
			ui.PrintKeyValue(out, t.GetMessage("config.context_lines_label", 0, nil), fmt.Sprint(cfg.Scan.ContextLines))
			cacheState := t.GetMessage("config.cache_disabled", 0, nil)
			if cfg.Cache.Enabled {
				cacheState = t.GetMessage("config.cache_enabled", 0, map[string]interface{}{
					"Dir": cfg.CacheDir(),
					"TTL": cfg.CacheTTL(),
				})
			}
			ui.PrintKeyValue(out, t.GetMessage("config.cache_label", 0, nil), cacheState)

			_, _ = fmt.Fprintln(out)
			for _, ai := range config.SupportedAIs() {
				env := config.APIKeyEnv[ai]
				data := map[string]interface{}{"Provider": ai, "Env": env}
				if strings.TrimSpace(os.Getenv(env)) == "" {
					ui.PrintWarning(out, t.GetMessage("config.key_not_set", 0, data))
				} else {
					ui.PrintSuccess(out, t.GetMessage("config.key_set", 0, data))
				}
			}
			return nil
		},
	}
}

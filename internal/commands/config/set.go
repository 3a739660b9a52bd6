package config

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/thomas-vilte/debtguard/internal/config"
	"github.com/thomas-vilte/debtguard/internal/i18n"
	"github.com/thomas-vilte/debtguard/internal/ui"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newSetCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     t.GetMessage("config.set_usage", 0, nil),
		ArgsUsage: t.GetMessage("config.set_args_usage", 0, nil),
		Action: func(ctx context.Context, command *cli.Command) error {
			out := command.Root().Writer
			if command.Args().Len() < 2 {
				ui.PrintError(out, t.GetMessage("config.set_error_args", 0, nil))
				return errors.New(t.GetMessage("config.set_error_args", 0, nil))
			}

			key := strings.ToLower(command.Args().Get(0))
			value := command.Args().Get(1)

			updated := *cfg
			if err := applySetting(&updated, key, value); err != nil {
				return err
			}
			if err := config.SaveConfig(&updated); err != nil {
				ui.PrintError(out, t.GetMessage("config.save_error", 0, nil))
				return err
			}
			*cfg = updated

			ui.PrintSuccess(out, t.GetMessage("config.set_success", 0, map[string]interface{}{
				"Key":   key,
				"Value": value,
			}))
			return nil
		},
	}
}

func applySetting(cfg *config.Config, key, value string) error {
	switch key {
	case "lang", "language":
		if value != config.LangEN && value != config.LangES {
			return fmt.Errorf("invalid language: %s", value)
		}
		cfg.Language = value
	case "output-dir", "output_dir":
		cfg.OutputDir = value
	case "active-ai", "active_ai":
		ai := config.AI(strings.ToLower(value))
		if !config.IsSupportedAI(ai) {
			return fmt.Errorf("AI provider not supported: %s", value)
		}
		cfg.AIConfig.ActiveAI = ai
	case "model":
		models := make(map[config.AI]config.Model, len(cfg.AIConfig.Models)+1)
		for k, v := range cfg.AIConfig.Models {
			models[k] = v
		}
		models[cfg.AIConfig.ActiveAI] = config.Model(value)
		cfg.AIConfig.Models = models
	case "temperature":
		f, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return fmt.Errorf("invalid temperature: %s", value)
		}
		cfg.AIConfig.Temperature = float32(f)
	case "azure-endpoint", "azure_endpoint":
		cfg.AIConfig.Azure.Endpoint = value
	case "azure-deployment", "azure_deployment":
		cfg.AIConfig.Azure.Deployment = value
	case "context-lines", "context_lines":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid context lines: %s", value)
		}
		cfg.Scan.ContextLines = n
	case "cache":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value: %s", value)
		}
		cfg.Cache.Enabled = enabled
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

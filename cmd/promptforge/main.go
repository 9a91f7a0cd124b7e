package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"promptforge/internal/app"
	"promptforge/internal/tui"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagBackend  string
	flagModel    string
	flagLocalURL string
	flagMock     bool
)

func main() {
	// A missing .env is fine; the config layer falls back to defaults.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "promptforge",
		Short: "Forge production-grade prompts from plain-language goals",
		Long: "promptforge turns a plain description of what you need into a multi-phase\n" +
			"prompt engineering dossier, then lets you test, score and refine the result.",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApplication(cmd.Context())
			if err != nil {
				return err
			}
			defer application.Close()
			return tui.Run(application)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", app.DefaultConfigPath(), "config file path")
	root.PersistentFlags().StringVar(&flagBackend, "backend", "", "model backend: gemini or local")
	root.PersistentFlags().StringVar(&flagModel, "model", "", "model name override")
	root.PersistentFlags().StringVar(&flagLocalURL, "local-url", "", "local backend base URL")
	root.PersistentFlags().BoolVar(&flagMock, "mock", false, "run against the deterministic mock backend")

	root.AddCommand(modelsCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (app.Config, error) {
	cfg, err := app.LoadConfig(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagBackend != "" {
		cfg.Backend = flagBackend
	}
	if flagLocalURL != "" {
		cfg.LocalURL = flagLocalURL
	}
	if flagModel != "" {
		switch cfg.Backend {
		case "local":
			cfg.LocalModel = flagModel
		default:
			cfg.GeminiModel = flagModel
		}
	}
	return cfg, nil
}

func buildApplication(ctx context.Context) (*app.Application, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.NewApplication(ctx, cfg, flagMock)
}

func modelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List models available on the local backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			local := app.NewLocalGateway(cfg.LocalURL, cfg.LocalModel, nil)
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			names, err := local.ListModels(ctx)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}

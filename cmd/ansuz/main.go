package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	pkgconfig "github.com/starford/ansuz/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, *slog.Logger, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config: %w", err)
	}
	logger := internal.NewLogger(cfg.LogLevel, cmd.Bool("verbose"))
	return cfg, logger, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "ansuz",
		Usage: "Publishing pipeline for a markdown knowledge base: wiki link resolution, translation, concatenation, and pandoc conversion",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "ansuz.yaml",
				Value:       "ansuz.yaml",
				Sources:     cli.EnvVars("ANSUZ_CONFIG_FILE"),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "links",
				Usage:     "Rewrite wiki links in staged documents",
				ArgsUsage: "[path]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "Keep running and process files as they change",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, logger, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.RunLinks(ctx, cfg, logger, cmd.Args().First(), cmd.Bool("watch"))
				},
			},
			{
				Name:  "scan",
				Usage: "Reconcile the translation ledger with sources and translated output",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "reset-failed",
						Usage: "Flip failed ledger rows back to pending before scanning",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					cfg, logger, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.RunScan(cfg, logger, cmd.Bool("reset-failed"))
				},
			},
			{
				Name:  "translate",
				Usage: "Translate pending ledger entries via the Anthropic API",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Translate at most this many entries (0 uses the configured batch size)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, logger, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.RunTranslate(ctx, cfg, logger, int(cmd.Int("limit")))
				},
			},
			{
				Name:  "status",
				Usage: "Print a summary of the translation ledger",
				Action: func(_ context.Context, cmd *cli.Command) error {
					cfg, logger, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.RunStatus(cfg, logger)
				},
			},
			{
				Name:      "concat",
				Usage:     "Combine section documents into per-code guides",
				ArgsUsage: "[dir]",
				Action: func(_ context.Context, cmd *cli.Command) error {
					cfg, logger, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.RunConcat(cfg, logger, cmd.Args().First())
				},
			},
			{
				Name:      "convert",
				Usage:     "Render a markdown file through pandoc",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "to",
						Usage: "Output format (defaults to the configured one)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					input := cmd.Args().First()
					if input == "" {
						return fmt.Errorf("convert needs an input file")
					}
					cfg, logger, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.RunConvert(ctx, cfg, logger, input, cmd.String("output"), cmd.String("to"))
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

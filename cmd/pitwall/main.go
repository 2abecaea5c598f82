// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/pitwall"
	"github.com/poiesic/pitwall/config"
	"github.com/poiesic/pitwall/core"
	"github.com/poiesic/pitwall/ingestion"
	"github.com/poiesic/pitwall/news"
	"github.com/poiesic/pitwall/query"
	"github.com/poiesic/pitwall/refresh"
	"github.com/poiesic/pitwall/server"
	"github.com/poiesic/pitwall/topics"
	"github.com/urfave/cli/v2"
)

var _ server.Service = (*pitwall.Service)(nil)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "pitwall",
		Usage: "Formula 1 season assistant backed by per-topic news memory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				EnvVars: []string{config.EnvConfigPath},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides dataDir)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API and the periodic topic refresh",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (overrides server.addr)",
					},
					&cli.BoolFlag{
						Name:  "no-refresh",
						Usage: "Disable the periodic refresh",
					},
				},
			},
			{
				Name:      "ingest",
				Usage:     "Fetch, summarize and store fresh news",
				ArgsUsage: "[topicKey...]",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Refresh every tracked topic",
					},
				},
			},
			{
				Name:      "query",
				Usage:     "Answer a question from the stored news",
				ArgsUsage: "<question>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "topic",
						Aliases: []string{"t"},
						Usage:   "Topic hint (topic key or \"auto\")",
						Value:   "auto",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the full result as JSON",
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Print routing and context details to stderr",
					},
				},
			},
			{
				Name:      "resolve",
				Usage:     "Show which topic a question is routed to",
				ArgsUsage: "<question>",
				Action:    resolveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "topic",
						Aliases: []string{"t"},
						Usage:   "Topic hint (topic key or \"auto\")",
					},
				},
			},
			{
				Name:   "topics",
				Usage:  "List tracked topics and their stored entries",
				Action: topicsCommand,
			},
		},
	}
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	svc, err := openService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	if cfg.Refresh.Enabled && !c.Bool("no-refresh") {
		scheduler := refresh.NewScheduler(svc.Refresher(), cfg.Refresh.Interval,
			refresh.WithImmediateRun(cfg.Refresh.OnStart),
		)
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start refresh scheduler: %w", err)
		}
		defer scheduler.Stop()
		slog.Info("periodic refresh enabled", "interval", cfg.Refresh.Interval, "topics", svc.Table().Len())
	}

	addr := cfg.Server.Addr
	if c.IsSet("addr") {
		addr = c.String("addr")
	}
	if !strings.EqualFold(c.String("log-level"), "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(svc, server.WithAllowOrigins(cfg.Server.AllowOrigins...))
	return srv.Run(ctx, addr)
}

func ingestCommand(c *cli.Context) error {
	if !c.Bool("all") && c.NArg() == 0 {
		return fmt.Errorf("give one or more topic keys, or --all")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.News.APIKey == "" {
		return fmt.Errorf("ingest needs a news API key: set %s", config.EnvSerperAPIKey)
	}

	progress := refresh.NewProgressTracker(c.App.ErrWriter)
	svc, err := openService(cfg, refresh.WithProgress(progress))
	if err != nil {
		return err
	}
	defer svc.Close()

	if c.Bool("all") {
		report, err := svc.Refresher().RefreshAll(c.Context)
		if err != nil {
			return fmt.Errorf("refresh failed: %w", err)
		}
		if failed := report.Failed(); failed > 0 {
			return fmt.Errorf("%d of %d topics failed", failed, len(report.Topics))
		}
		return nil
	}

	for _, arg := range c.Args().Slice() {
		key := core.TopicKey(arg)
		if !svc.Table().Contains(key) {
			return fmt.Errorf("%w: %s", topics.ErrUnknownTopic, key)
		}
		added, err := svc.Refresher().RefreshTopic(c.Context, key)
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", key, err)
		}
		fmt.Fprintf(c.App.Writer, "%s +%d\n", key, added)
	}
	return nil
}

func queryCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("question is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	svc, err := openService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	var monitor query.Monitor
	if c.Bool("verbose") {
		monitor = newVerboseMonitor(c.App.ErrWriter)
	}
	result, err := svc.AnswerWithMonitor(c.Context, question, c.String("topic"), monitor)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	fmt.Fprintln(c.App.Writer, result.Answer)
	fmt.Fprintf(c.App.Writer, "\n(%s, %d entries)\n", result.TopicKey, len(result.ContextUsed))
	return nil
}

func resolveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	table, err := cfg.Topics()
	if err != nil {
		return err
	}
	router, err := topics.NewRouter(table)
	if err != nil {
		return err
	}

	res := router.Explain(strings.Join(c.Args().Slice(), " "), c.String("topic"))
	fmt.Fprintf(c.App.Writer, "%s\t%s\n", res.TopicKey, res)
	return nil
}

func topicsCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	svc, err := openService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	statuses, err := svc.Topics(c.Context)
	if err != nil {
		return err
	}
	for _, st := range statuses {
		updated := "never"
		if !st.LastUpdated.IsZero() {
			updated = st.LastUpdated.Format(time.RFC3339)
		}
		fmt.Fprintf(c.App.Writer, "%-28s %-26s %4d  %s\n", st.TopicKey, st.DisplayName, st.Entries, updated)
	}
	return nil
}

// loadConfig reads the configuration and applies global flags on top.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("db") {
		cfg.DataDir = c.String("db")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func openService(cfg *config.Config, refreshOpts ...refresh.Option) (*pitwall.Service, error) {
	table, err := cfg.Topics()
	if err != nil {
		return nil, fmt.Errorf("failed to load topics: %w", err)
	}

	refreshOpts = append([]refresh.Option{
		refresh.WithMinDelay(cfg.Refresh.MinDelay),
		refresh.WithWorkers(cfg.Refresh.Workers),
		refresh.WithRetryPolicy(refresh.RetryPolicy{
			MaxAttempts: cfg.Refresh.MaxAttempts,
			BaseDelay:   time.Second,
			MaxDelay:    30 * time.Second,
		}),
	}, refreshOpts...)
	if cfg.Refresh.TopicTimeout > 0 {
		refreshOpts = append(refreshOpts, refresh.WithTopicTimeout(cfg.Refresh.TopicTimeout))
	}

	opts := []pitwall.ServiceOption{
		pitwall.WithAIConfig(cfg.AIConfig()),
		pitwall.WithTopics(table),
		pitwall.WithIngestionOptions(
			ingestion.WithPoolSize(cfg.Ingestion.Workers),
			ingestion.WithMaxArticles(cfg.News.MaxArticles),
			ingestion.WithDeduplication(cfg.Ingestion.Deduplicate),
		),
		pitwall.WithQueryOptions(query.WithMaxContext(cfg.Query.MaxContext)),
		pitwall.WithRefreshOptions(refreshOpts...),
	}

	if cfg.News.APIKey != "" {
		newsOpts := []news.Option{}
		if cfg.News.Endpoint != "" {
			newsOpts = append(newsOpts, news.WithEndpoint(cfg.News.Endpoint))
		}
		if cfg.News.Timeout > 0 {
			newsOpts = append(newsOpts, news.WithTimeout(cfg.News.Timeout))
		}
		source, err := news.NewSerperClient(cfg.News.APIKey, newsOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create news source: %w", err)
		}
		opts = append(opts, pitwall.WithNewsSource(source))
	} else {
		slog.Warn("no news API key configured, refresh will fail", "env", config.EnvSerperAPIKey)
	}

	svc, err := pitwall.NewService(cfg.DataDir, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open service: %w", err)
	}
	return svc, nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

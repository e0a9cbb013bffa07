package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/skillroute/internal/assist"
	"github.com/abhisek/skillroute/internal/config"
	"github.com/abhisek/skillroute/internal/llm"
	"github.com/abhisek/skillroute/internal/logger"
	"github.com/abhisek/skillroute/internal/pathgen"
	"github.com/abhisek/skillroute/internal/paths"
	"github.com/abhisek/skillroute/internal/pathstore"
	"github.com/abhisek/skillroute/internal/store"
	"github.com/abhisek/skillroute/internal/tracker"
)

var rootCmd = &cobra.Command{
	Use:           "skillroute",
	Short:         "AI learning path generator",
	Long:          "SkillRoute turns your skills, goal and resume into a phased learning path you can track.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command under ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default "+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SKILLROUTE_DB env var)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// appEnv is everything a command needs, built from config.
type appEnv struct {
	cfg      config.Config
	log      *zap.Logger
	db       *store.Store // nil on the file backend
	events   store.EventRepo
	paths    *pathstore.Store
	provider llm.Provider // nil when no credential is configured
}

// loadConfig reads config honoring --config and --db.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	explicit := path != ""
	if !explicit {
		path = config.DefaultFile
	}
	cfg, err := config.Load(path, explicit)
	if err != nil {
		return cfg, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Storage.Backend = config.BackendSQLite
		cfg.Storage.Path = p
	}
	return cfg, nil
}

// openEnv loads config, builds the logger, opens storage and, when a
// credential is present, the model provider. Close must be called.
func openEnv(cmd *cobra.Command) (*appEnv, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	verbose, _ := cmd.Flags().GetBool("verbose")
	log, err := logger.New(cfg.App.LogLevel, verbose)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	env := &appEnv{cfg: cfg, log: log}
	var kv store.KV
	switch cfg.Storage.Backend {
	case config.BackendFile:
		fkv, err := store.NewFileKV(cfg.Storage.Dir)
		if err != nil {
			env.Close()
			return nil, fmt.Errorf("open file store: %w", err)
		}
		kv = fkv
	default:
		if err := store.EnsureDir(cfg.Storage.Path); err != nil {
			env.Close()
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		db, err := store.Open(cfg.Storage.Path)
		if err != nil {
			env.Close()
			return nil, fmt.Errorf("open store: %w", err)
		}
		env.db = db
		env.events = db.EventRepo()
		kv = db.KV()
	}
	env.paths = pathstore.New(kv, log.Named("pathstore"))

	provider, err := llm.NewProviderIfConfigured(cmd.Context(), cfg.LLM, env.events, log.Named("llm"))
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("build LLM provider: %w", err)
	}
	if provider == nil {
		log.Warn("no API key configured; AI features will be unavailable",
			zap.String("provider", cfg.LLM.Provider))
	} else {
		env.provider = provider
	}
	return env, nil
}

func (e *appEnv) Close() {
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			e.log.Warn("close store", zap.Error(err))
		}
	}
	_ = e.log.Sync()
}

func (e *appEnv) generator() *pathgen.Service {
	return pathgen.NewService(e.provider, pathgen.DefaultConfig(), e.log.Named("pathgen"))
}

func (e *appEnv) assistant() *assist.Service {
	return assist.NewService(e.provider, assist.DefaultConfig(), e.log.Named("assist"))
}

func (e *appEnv) sessionOpts() []tracker.Option {
	return []tracker.Option{tracker.WithLogger(e.log.Named("tracker"))}
}

// requestContext bounds one model round-trip by the configured timeout.
func (e *appEnv) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.LLM.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.cfg.LLM.Timeout)
}

// timeoutAssistant applies the request timeout to each chat question.
type timeoutAssistant struct {
	env *appEnv
}

func (t timeoutAssistant) Ask(ctx context.Context, query, pathTitle string) string {
	ctx, cancel := t.env.requestContext(ctx)
	defer cancel()
	return t.env.assistant().Ask(ctx, query, pathTitle)
}

// timeoutGenerator applies the request timeout to each generation.
type timeoutGenerator struct {
	env *appEnv
}

func (t timeoutGenerator) Generate(ctx context.Context, input paths.Input) (*paths.GeneratedPath, error) {
	ctx, cancel := t.env.requestContext(ctx)
	defer cancel()
	return t.env.generator().Generate(ctx, input)
}

// requireEvents returns the LLM event log, which only the SQLite backend keeps.
func (e *appEnv) requireEvents() (store.EventRepo, error) {
	if e.events == nil {
		return nil, fmt.Errorf("the LLM event log requires the %q storage backend", config.BackendSQLite)
	}
	return e.events, nil
}

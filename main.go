package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"ai_prompt_factory/config"
	"ai_prompt_factory/db"
	"ai_prompt_factory/logger"
	"ai_prompt_factory/services"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "prompt-factory",
	Short: "AI prompt generation, scoring and marketplace publishing",
	Long: `Generates AI prompt products every day, scores them with a heuristic quality
model, publishes the best ones to Whop and reports revenue.

Commands:
  serve    - run the HTTP dashboard API and the scheduler
  generate - run one batch immediately
  score    - score a prompt text from a file or stdin
  report   - print today's daily report`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to config.yaml")

	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "Generate and print candidates without publishing or saving")
	generateCmd.Flags().Uint64Var(&generateSeed, "seed", 0, "Random seed for reproducible batches (0 = random)")
	generateCmd.Flags().StringVar(&generateDocx, "docx", "", "Export the batch to a .docx file for review")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app 各命令共享的组件
type app struct {
	cfg        *config.Config
	log        *slog.Logger
	db         *sql.DB
	automation *services.AutomationService
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("配置校验失败: %w", err)
	}

	// 初始化日志系统
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	slog.SetDefault(log)
	log.Info("日志系统初始化成功", "level", cfg.Log.Level, "format", cfg.Log.Format, "output", cfg.Log.Output)
	return cfg, log, nil
}

func newApp(ctx context.Context) (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}

	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	if err := db.Migrate(ctx, conn, cfg.Database.Driver); err != nil {
		conn.Close()
		return nil, err
	}
	log.Info("数据库连接成功", "driver", cfg.Database.Driver)

	llm, err := services.NewTextGenerator(ctx, cfg.LLM, log)
	if err != nil {
		conn.Close()
		return nil, err
	}

	var rng *rand.Rand
	if seed := cfg.Generation.Seed; seed != 0 {
		rng = rand.New(rand.NewPCG(seed, seed))
	}
	generator := services.NewPromptGenerator(llm, cfg.LLM.TitleModel, rng, log)
	batch := services.NewBatchService(generator, cfg, log)

	publisher := services.NewWhopPublisher(cfg.Whop, cfg.Pricing, log)
	if cfg.Whop.AutoPublish {
		// 失败时自动切换到模拟模式，不阻止启动
		_ = publisher.Ping(ctx)
	}

	notifier, err := services.NewNotifier(cfg.Telegram, log)
	if err != nil {
		log.Warn("Telegram 初始化失败，关闭通知", "error", err)
		notifier = services.NopNotifier{}
	}

	return &app{
		cfg:        cfg,
		log:        log,
		db:         conn,
		automation: services.NewAutomationService(cfg, conn, batch, publisher, notifier, log),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.log.Warn("关闭数据库失败", "error", err)
	}
}

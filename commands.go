package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"ai_prompt_factory/handlers"
	"ai_prompt_factory/models"
	"ai_prompt_factory/scheduler"
	"ai_prompt_factory/services"
	"ai_prompt_factory/utils"
)

var (
	generateDryRun bool
	generateSeed   uint64
	generateDocx   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the daily scheduler",
	RunE:  runServe,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one generation batch now",
	Long: `Generate one batch of prompts using the configured niches.

Without --dry-run the batch is published (or saved as drafts when
whop.auto_publish is false), stored and reported like the daily run.`,
	RunE: runGenerate,
}

var scoreCmd = &cobra.Command{
	Use:   "score [file]",
	Short: "Score a prompt text (reads stdin when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScore,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print today's daily report as JSON",
	RunE:  runReport,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := scheduler.New(a.cfg, a.automation, a.log)
	if err != nil {
		return err
	}
	sched.Start()

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	handlers.NewHandler(a.db, a.automation, sched, a.cfg.Generation.MinQuality, a.log).RegisterRoutes(r)

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("服务器启动", "address", srv.Addr)
		a.log.Info("Swagger文档可访问", "url", fmt.Sprintf("http://%s:%d/swagger/index.html", a.cfg.Server.Host, a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		a.log.Info("收到退出信号，开始关闭")
	case err := <-errCh:
		if err != nil {
			<-sched.Stop().Done()
			return fmt.Errorf("HTTP服务异常退出: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("HTTP服务关闭失败", "error", err)
	}
	select {
	case <-sched.Stop().Done():
	case <-shutdownCtx.Done():
		a.log.Warn("等待定时任务退出超时")
	}
	a.log.Info("服务已停止")
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.automation.Run(ctx, services.RunOptions{DryRun: generateDryRun, Seed: generateSeed})
	if err != nil {
		return err
	}

	if generateDocx != "" {
		if err := services.ExportBatchDocx(generateDocx, result.BatchID, result.Candidates); err != nil {
			return fmt.Errorf("导出docx失败: %w", err)
		}
		a.log.Info("批次已导出", "path", generateDocx)
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func runScore(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("读取文本失败: %w", err)
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	text := string(data)
	score := services.ScorePrompt(text)
	return printJSON(cmd.OutOrStdout(), models.ScoreResponse{
		Score:     score,
		WordCount: utils.CountWords(text),
		Passed:    score >= cfg.Generation.MinQuality,
	})
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.automation.DailyAnalytics(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), report)
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	return encoder.Encode(v)
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"ai_prompt_factory/config"
	"ai_prompt_factory/models"
	"ai_prompt_factory/repository"
)

// ErrRunInProgress 已有一次会上架商品的运行正在进行
var ErrRunInProgress = errors.New("已有批量生成正在运行")

// Publisher 商品上架与统计
type Publisher interface {
	Publish(ctx context.Context, candidates []models.Candidate) ([]PublishedCandidate, error)
	ProductStats(ctx context.Context, productID string) (models.ProductStats, error)
}

// RunOptions 手动运行时的覆盖参数
type RunOptions struct {
	DryRun bool
	// 非0时覆盖配置中的种子
	Seed uint64
}

// AutomationService 串联生成、上架、入库、报表和通知
type AutomationService struct {
	cfg       *config.Config
	db        *sql.DB
	batch     *BatchService
	publisher Publisher
	products  *repository.ProductRepo
	metrics   *repository.MetricsRepo
	analytics *repository.AnalyticsRepo
	notifier  Notifier
	log       *slog.Logger
	now       func() time.Time

	// 串行化会上架商品的运行，定时任务和手动触发共用
	runMu sync.Mutex
}

func NewAutomationService(
	cfg *config.Config,
	conn *sql.DB,
	batch *BatchService,
	publisher Publisher,
	notifier Notifier,
	log *slog.Logger,
) *AutomationService {
	return &AutomationService{
		cfg:       cfg,
		db:        conn,
		batch:     batch,
		publisher: publisher,
		products:  repository.NewProductRepo(conn),
		metrics:   repository.NewMetricsRepo(conn),
		analytics: repository.NewAnalyticsRepo(conn),
		notifier:  notifier,
		log:       log,
		now:       time.Now,
	}
}

// RunDaily 每日定时任务入口
func (s *AutomationService) RunDaily(ctx context.Context) error {
	_, err := s.Run(ctx, RunOptions{})
	return err
}

// Run 生成一批候选；非 dry-run 时入库、上架并发送日报。
// 同一时间只允许一次非 dry-run 的运行，否则返回 ErrRunInProgress
func (s *AutomationService) Run(ctx context.Context, opts RunOptions) (models.GenerateResult, error) {
	if !opts.DryRun {
		if !s.runMu.TryLock() {
			s.log.Warn("已有批量生成正在运行，拒绝本次运行")
			return models.GenerateResult{}, ErrRunInProgress
		}
		defer s.runMu.Unlock()
	}

	result, err := s.run(ctx, opts)
	if err != nil {
		s.log.Error("每日自动化运行失败", "batch_id", result.BatchID, "error", err)
		s.alert(ctx, "daily_generation", err)
	}
	return result, err
}

func (s *AutomationService) run(ctx context.Context, opts RunOptions) (models.GenerateResult, error) {
	result := models.GenerateResult{BatchID: uuid.NewString()}
	s.log.Info("开始每日自动化运行", "batch_id", result.BatchID, "dry_run", opts.DryRun)

	req := NewBatchRequest(s.cfg.Generation)
	if opts.Seed != 0 {
		req.Seed = opts.Seed
	}
	candidates, err := s.batch.GenerateDailyBatch(ctx, req)
	if err != nil {
		return result, fmt.Errorf("批量生成失败: %w", err)
	}
	result.Candidates = candidates
	if opts.DryRun {
		return result, nil
	}

	// 先以草稿入库，上架成功后逐条更新，保证市场上的商品都有本地记录
	products := s.draftProducts(result.BatchID, candidates)
	if err := s.products.SaveAll(ctx, products); err != nil {
		return result, fmt.Errorf("保存商品失败: %w", err)
	}
	result.Products = products

	published, err := s.publish(ctx, products, candidates)
	if err != nil {
		return result, err
	}

	report, err := s.analytics.DailyReport(ctx, s.now())
	if err != nil {
		return result, fmt.Errorf("生成日报失败: %w", err)
	}
	if err := s.notifier.Notify(ctx, FormatDailyMessage(report, len(candidates), published)); err != nil {
		s.log.Warn("发送日报通知失败", "error", err)
	}

	s.log.Info("每日自动化运行完成", "batch_id", result.BatchID, "generated", len(candidates), "published", published)
	return result, nil
}

func (s *AutomationService) draftProducts(batchID string, candidates []models.Candidate) []models.Product {
	products := make([]models.Product, 0, len(candidates))
	for _, c := range candidates {
		priceCents := PriceFor(s.cfg.Pricing, c.Niche, c.QualityScore) * 100
		products = append(products, models.NewProductFromCandidate(uuid.NewString(), batchID, c, priceCents))
	}
	return products
}

// publish 开启自动上架时上架草稿并逐条更新状态，返回成功上架的数量。
// 上架中途出错时，已上架的部分仍然会被记录
func (s *AutomationService) publish(ctx context.Context, products []models.Product, candidates []models.Candidate) (int, error) {
	if !s.cfg.Whop.AutoPublish || len(candidates) == 0 {
		return 0, nil
	}
	items, pubErr := s.publisher.Publish(ctx, candidates)

	// 即使 ctx 已取消，也要把已上架的商品写回数据库
	saveCtx := context.WithoutCancel(ctx)
	var errs []error
	published := 0
	for _, item := range items {
		if item.Index < 0 || item.Index >= len(products) {
			continue
		}
		p := &products[item.Index]
		if err := s.products.MarkPublished(saveCtx, p.ID, item.WhopProductID, item.PriceCents); err != nil {
			s.log.Error("更新上架状态失败", "product_id", p.ID, "whop_product_id", item.WhopProductID, "error", err)
			errs = append(errs, err)
			continue
		}
		p.Status = models.ProductStatusPublished
		p.WhopProductID = item.WhopProductID
		p.PriceCents = item.PriceCents
		published++
	}

	if pubErr != nil {
		errs = append(errs, fmt.Errorf("上架商品失败: %w", pubErr))
	}
	if err := errors.Join(errs...); err != nil {
		s.log.Error("上架未全部完成", "published", published, "total", len(candidates), "error", err)
		return published, err
	}
	return published, nil
}

// DailyAnalytics 生成当日报表并通知
func (s *AutomationService) DailyAnalytics(ctx context.Context) (models.DailyReport, error) {
	report, err := s.analytics.DailyReport(ctx, s.now())
	if err != nil {
		s.alert(ctx, "daily_analytics", err)
		return report, err
	}
	if err := s.notifier.Notify(ctx, FormatDailyMessage(report, report.ProductsCreated, 0)); err != nil {
		s.log.Warn("发送日报通知失败", "error", err)
	}
	return report, nil
}

// WeeklyReport 生成周报并通知
func (s *AutomationService) WeeklyReport(ctx context.Context) (models.WeeklyReport, error) {
	report, err := s.analytics.WeeklyReport(ctx, s.now())
	if err != nil {
		s.alert(ctx, "weekly_report", err)
		return report, err
	}
	if err := s.notifier.Notify(ctx, FormatWeeklyMessage(report)); err != nil {
		s.log.Warn("发送周报通知失败", "error", err)
	}
	return report, nil
}

// RefreshProductStats 拉取近30天已上架商品的表现数据写入指标表，返回成功数
func (s *AutomationService) RefreshProductStats(ctx context.Context) (int, error) {
	if !s.cfg.Whop.StatsEnabled {
		return 0, nil
	}
	products, err := s.products.ListPublishedSince(ctx, s.now().AddDate(0, 0, -30))
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, p := range products {
		stats, err := s.publisher.ProductStats(ctx, p.WhopProductID)
		if err != nil {
			s.log.Error("获取商品统计失败", "product_id", p.ID, "error", err)
			continue
		}
		at := s.now()
		values := []struct {
			name  string
			value float64
		}{
			{"views", float64(stats.Views)},
			{"sales", float64(stats.Sales)},
			{"revenue", stats.Revenue},
			{"conversion_rate", stats.ConversionRate},
		}
		for _, v := range values {
			if err := s.metrics.Record(ctx, p.ID, v.name, v.value, at); err != nil {
				return updated, err
			}
		}
		updated++
	}
	s.log.Info("商品统计刷新完成", "products", len(products), "updated", updated)
	return updated, nil
}

// HealthCheck 检查数据库连接
func (s *AutomationService) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		err = fmt.Errorf("数据库连接异常: %w", err)
		s.alert(context.WithoutCancel(ctx), "health_check", err)
		return err
	}
	return nil
}

func (s *AutomationService) alert(ctx context.Context, task string, err error) {
	if nerr := s.notifier.Notify(context.WithoutCancel(ctx), FormatAlertMessage(task, err)); nerr != nil {
		s.log.Warn("发送告警失败", "task", task, "error", nerr)
	}
}

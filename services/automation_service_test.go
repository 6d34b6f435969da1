package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai_prompt_factory/config"
	"ai_prompt_factory/db"
	"ai_prompt_factory/logger"
	"ai_prompt_factory/models"
	"ai_prompt_factory/repository"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type automationFixture struct {
	svc       *AutomationService
	publisher *fakePublisher
	notifier  *captureNotifier
	products  *repository.ProductRepo
	cfg       *config.Config
}

func newAutomationFixture(t *testing.T) *automationFixture {
	t.Helper()
	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "factory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(context.Background(), conn, db.DriverSQLite))

	cfg := config.Default()
	cfg.Generation.Niches = []string{bmNiche}
	cfg.Generation.PerNicheCount = 2

	publisher := &fakePublisher{stats: models.ProductStats{Views: 10, Sales: 1, Revenue: 45, ConversionRate: 0.1}}
	notifier := &captureNotifier{}
	svc := NewAutomationService(cfg, conn, newTestBatch(DisabledGenerator{}), publisher, notifier, logger.Discard())
	svc.now = func() time.Time { return testNow }

	return &automationFixture{
		svc:       svc,
		publisher: publisher,
		notifier:  notifier,
		products:  repository.NewProductRepo(conn),
		cfg:       cfg,
	}
}

func TestRunPublishesAndSaves(t *testing.T) {
	f := newAutomationFixture(t)
	f.publisher.failAt = map[int]bool{1: true}

	result, err := f.svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.Len(t, result.Candidates, 2)
	require.Len(t, result.Products, 2)

	assert.Equal(t, models.ProductStatusPublished, result.Products[0].Status)
	assert.Equal(t, "prod_a", result.Products[0].WhopProductID)
	assert.Equal(t, models.ProductStatusDraft, result.Products[1].Status)
	assert.Empty(t, result.Products[1].WhopProductID)
	assert.Equal(t, 4500, result.Products[1].PriceCents)

	saved, err := f.products.ListByBatch(context.Background(), result.BatchID)
	require.NoError(t, err)
	assert.Len(t, saved, 2)

	messages := f.notifier.all()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "Daily Prompt Factory Report")
	assert.Contains(t, messages[0], "Generated: 2")
	assert.Contains(t, messages[0], "Published: 1")
}

func TestRunDryRunSkipsSideEffects(t *testing.T) {
	f := newAutomationFixture(t)

	result, err := f.svc.Run(context.Background(), RunOptions{DryRun: true, Seed: 7})
	require.NoError(t, err)
	assert.Len(t, result.Candidates, 2)
	assert.Empty(t, result.Products)
	assert.Zero(t, f.publisher.calls)
	assert.Empty(t, f.notifier.all())

	recent, err := f.products.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestRunWithoutAutoPublishSavesDrafts(t *testing.T) {
	f := newAutomationFixture(t)
	f.cfg.Whop.AutoPublish = false

	result, err := f.svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.Zero(t, f.publisher.calls)
	for _, p := range result.Products {
		assert.Equal(t, models.ProductStatusDraft, p.Status)
	}
}

func TestRunPublisherErrorAlerts(t *testing.T) {
	f := newAutomationFixture(t)
	f.publisher.err = errors.New("whop down")

	result, err := f.svc.Run(context.Background(), RunOptions{})
	require.Error(t, err)

	messages := f.notifier.all()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "Prompt Factory alert")
	assert.Contains(t, messages[0], "daily_generation")

	// 上架失败的商品仍以草稿保留
	saved, err := f.products.ListByBatch(context.Background(), result.BatchID)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	for _, p := range saved {
		assert.Equal(t, models.ProductStatusDraft, p.Status)
	}
}

func TestRunKeepsItemsPublishedBeforeError(t *testing.T) {
	f := newAutomationFixture(t)
	f.publisher.err = errors.New("rate limited")
	f.publisher.errAfter = 1

	result, err := f.svc.Run(context.Background(), RunOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	require.Len(t, result.Products, 2)
	assert.Equal(t, models.ProductStatusPublished, result.Products[0].Status)
	assert.Equal(t, models.ProductStatusDraft, result.Products[1].Status)

	ctx := context.Background()
	published, err := f.products.Get(ctx, result.Products[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusPublished, published.Status)
	assert.Equal(t, "prod_a", published.WhopProductID)

	draft, err := f.products.Get(ctx, result.Products[1].ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusDraft, draft.Status)
	assert.Empty(t, draft.WhopProductID)

	messages := f.notifier.all()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "daily_generation")
}

func TestRunDoesNotPublishWhenSaveFails(t *testing.T) {
	f := newAutomationFixture(t)
	_, err := f.svc.db.Exec(`DROP TABLE products`)
	require.NoError(t, err)

	_, err = f.svc.Run(context.Background(), RunOptions{})
	require.Error(t, err)
	assert.Zero(t, f.publisher.calls)
}

func TestRunRejectsConcurrentRun(t *testing.T) {
	f := newAutomationFixture(t)
	f.svc.runMu.Lock()

	_, err := f.svc.Run(context.Background(), RunOptions{})
	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.ErrorIs(t, f.svc.RunDaily(context.Background()), ErrRunInProgress)
	assert.Zero(t, f.publisher.calls)
	assert.Empty(t, f.notifier.all())

	// dry-run 不受影响
	result, err := f.svc.Run(context.Background(), RunOptions{DryRun: true})
	require.NoError(t, err)
	assert.Len(t, result.Candidates, 2)

	f.svc.runMu.Unlock()
	_, err = f.svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, f.publisher.calls)
}

func TestRefreshProductStats(t *testing.T) {
	f := newAutomationFixture(t)
	result, err := f.svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	updated, err := f.svc.RefreshProductStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, updated)
	assert.ElementsMatch(t, []string{"prod_a", "prod_b"}, f.publisher.statIDs)

	metrics, err := repository.NewMetricsRepo(f.svc.db).Latest(context.Background(), result.Products[0].ID)
	require.NoError(t, err)
	require.Len(t, metrics, 4)
	assert.Equal(t, "conversion_rate", metrics[0].Name)
	assert.Equal(t, 0.1, metrics[0].Value)
	assert.Equal(t, "views", metrics[3].Name)
	assert.Equal(t, 10.0, metrics[3].Value)

	f.cfg.Whop.StatsEnabled = false
	updated, err = f.svc.RefreshProductStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestDailyAndWeeklyReports(t *testing.T) {
	f := newAutomationFixture(t)
	_, err := f.svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	daily, err := f.svc.DailyAnalytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", daily.Date)
	assert.Equal(t, 2, daily.ProductsCreated)
	assert.Equal(t, bmNiche, daily.TopNiche)

	weekly, err := f.svc.WeeklyReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, weekly.TotalProducts)

	messages := f.notifier.all()
	require.Len(t, messages, 3)
	assert.Contains(t, messages[2], "Weekly Report")
}

func TestHealthCheck(t *testing.T) {
	f := newAutomationFixture(t)
	require.NoError(t, f.svc.HealthCheck(context.Background()))
	assert.Empty(t, f.notifier.all())

	require.NoError(t, f.svc.db.Close())
	assert.Error(t, f.svc.HealthCheck(context.Background()))

	messages := f.notifier.all()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "health_check")
}

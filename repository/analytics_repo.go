package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"ai_prompt_factory/models"
)

// ErrInsufficientData 历史数据不足以做预测
var ErrInsufficientData = errors.New("历史数据不足，无法预测")

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"

	// 预测至少需要的有销售天数
	minPredictionDays = 7
	// 达到该天数置信度提升为 medium
	mediumConfidenceDays = 14
)

// AnalyticsRepo 运营报表查询，日期分桶在Go中完成以兼容 MySQL 和 SQLite
type AnalyticsRepo struct {
	db *sql.DB
}

func NewAnalyticsRepo(conn *sql.DB) *AnalyticsRepo {
	return &AnalyticsRepo{db: conn}
}

func dayRange(day time.Time) (time.Time, time.Time) {
	d := day.UTC()
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

func percent(num, den int) float64 {
	if den < 1 {
		den = 1
	}
	return float64(num) / float64(den) * 100
}

// DailyReport 生成指定日期（UTC）的日报，并写入 daily_summary
func (r *AnalyticsRepo) DailyReport(ctx context.Context, day time.Time) (models.DailyReport, error) {
	start, end := dayRange(day)
	report := models.DailyReport{Date: start.Format(dateLayout), TopNiche: "N/A"}

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(AVG(quality_score), 0)
		FROM products WHERE created_at >= ? AND created_at < ?
	`, start, end).Scan(&report.ProductsCreated, &report.AvgQualityScore)
	if err != nil {
		return report, fmt.Errorf("统计当日商品失败: %w", err)
	}

	var revenueCents int64
	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(amount), 0)
		FROM sales WHERE sale_date >= ? AND sale_date < ?
	`, start, end).Scan(&report.DailySales, &revenueCents)
	if err != nil {
		return report, fmt.Errorf("统计当日销售失败: %w", err)
	}
	report.DailyRevenue = float64(revenueCents) / 100

	var topNiche string
	err = r.db.QueryRowContext(ctx, `
		SELECT niche FROM products
		WHERE created_at >= ? AND created_at < ?
		GROUP BY niche ORDER BY COUNT(*) DESC, niche LIMIT 1
	`, start, end).Scan(&topNiche)
	switch {
	case err == nil:
		report.TopNiche = topNiche
	case !errors.Is(err, sql.ErrNoRows):
		return report, fmt.Errorf("统计热门领域失败: %w", err)
	}

	report.ConversionRate = percent(report.DailySales, report.ProductsCreated)

	_, err = r.db.ExecContext(ctx, `
		REPLACE INTO daily_summary
			(summary_date, products_created, total_revenue, total_sales, avg_quality_score, top_niche)
		VALUES (?, ?, ?, ?, ?, ?)
	`, report.Date, report.ProductsCreated, revenueCents, report.DailySales, report.AvgQualityScore, report.TopNiche)
	if err != nil {
		return report, fmt.Errorf("写入日汇总失败: %w", err)
	}
	return report, nil
}

// WeeklyReport 汇总 now 之前7天的数据
func (r *AnalyticsRepo) WeeklyReport(ctx context.Context, now time.Time) (models.WeeklyReport, error) {
	end := now.UTC().Truncate(time.Second)
	start := end.AddDate(0, 0, -7)
	report := models.WeeklyReport{
		Period:      start.Format(dateLayout) + " to " + end.Format(dateLayout),
		TopNiches:   make([]models.NicheCount, 0),
		DailyTrends: make([]models.DailyTrend, 0),
	}

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(AVG(quality_score), 0)
		FROM products WHERE created_at >= ? AND created_at <= ?
	`, start, end).Scan(&report.TotalProducts, &report.AvgQualityScore)
	if err != nil {
		return report, fmt.Errorf("统计周商品失败: %w", err)
	}

	var revenueCents int64
	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(amount), 0)
		FROM sales WHERE sale_date >= ? AND sale_date <= ?
	`, start, end).Scan(&report.TotalSales, &revenueCents)
	if err != nil {
		return report, fmt.Errorf("统计周销售失败: %w", err)
	}
	report.TotalRevenue = float64(revenueCents) / 100
	report.ConversionRate = percent(report.TotalSales, report.TotalProducts)

	rows, err := r.db.QueryContext(ctx, `
		SELECT niche, COUNT(*), AVG(quality_score)
		FROM products WHERE created_at >= ? AND created_at <= ?
		GROUP BY niche ORDER BY COUNT(*) DESC, niche LIMIT 5
	`, start, end)
	if err != nil {
		return report, fmt.Errorf("统计周热门领域失败: %w", err)
	}
	for rows.Next() {
		var nc models.NicheCount
		if err := rows.Scan(&nc.Niche, &nc.Count, &nc.AvgQuality); err != nil {
			rows.Close()
			return report, err
		}
		report.TopNiches = append(report.TopNiches, nc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return report, err
	}

	trends, err := r.dailyTrends(ctx, start, end)
	if err != nil {
		return report, err
	}
	report.DailyTrends = trends
	return report, nil
}

func (r *AnalyticsRepo) dailyTrends(ctx context.Context, start, end time.Time) ([]models.DailyTrend, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT created_at, quality_score FROM products
		WHERE created_at >= ? AND created_at <= ?
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("查询每日趋势失败: %w", err)
	}
	defer rows.Close()

	type bucket struct {
		count int
		sum   float64
	}
	buckets := make(map[string]*bucket)
	for rows.Next() {
		var (
			createdAt time.Time
			quality   float64
		)
		if err := rows.Scan(&createdAt, &quality); err != nil {
			return nil, err
		}
		key := createdAt.UTC().Format(dateLayout)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.count++
		b.sum += quality
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	trends := make([]models.DailyTrend, 0, len(buckets))
	for date, b := range buckets {
		trends = append(trends, models.DailyTrend{Date: date, Products: b.count, Quality: b.sum / float64(b.count)})
	}
	sort.Slice(trends, func(i, j int) bool { return trends[i].Date < trends[j].Date })
	return trends, nil
}

// RevenueMetrics 全量收入指标，月度收入取最近12个月
func (r *AnalyticsRepo) RevenueMetrics(ctx context.Context, now time.Time) (models.RevenueMetrics, error) {
	metrics := models.RevenueMetrics{
		MonthlyRevenue: make([]models.MonthlyRevenue, 0),
		TopProducts:    make([]models.TopProduct, 0),
	}

	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(AVG(quality_score), 0) FROM products`).
		Scan(&metrics.TotalProducts, &metrics.AvgQualityScore)
	if err != nil {
		return metrics, fmt.Errorf("统计商品总量失败: %w", err)
	}

	var revenueCents int64
	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM sales`).
		Scan(&metrics.TotalSales, &revenueCents)
	if err != nil {
		return metrics, fmt.Errorf("统计销售总量失败: %w", err)
	}
	metrics.TotalRevenue = float64(revenueCents) / 100

	monthly, err := r.monthlyRevenue(ctx, now)
	if err != nil {
		return metrics, err
	}
	metrics.MonthlyRevenue = monthly

	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.title, p.niche, p.price, COUNT(s.id), COALESCE(SUM(s.amount), 0)
		FROM products p
		LEFT JOIN sales s ON s.product_id = p.id
		GROUP BY p.id, p.title, p.niche, p.price
		ORDER BY 6 DESC, p.id
		LIMIT 10
	`)
	if err != nil {
		return metrics, fmt.Errorf("查询热销商品失败: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			tp         models.TopProduct
			priceCents int64
			totalCents int64
		)
		if err := rows.Scan(&tp.ID, &tp.Title, &tp.Niche, &priceCents, &tp.SalesCount, &totalCents); err != nil {
			return metrics, err
		}
		tp.Price = float64(priceCents) / 100
		tp.TotalRevenue = float64(totalCents) / 100
		metrics.TopProducts = append(metrics.TopProducts, tp)
	}
	return metrics, rows.Err()
}

func (r *AnalyticsRepo) monthlyRevenue(ctx context.Context, now time.Time) ([]models.MonthlyRevenue, error) {
	n := now.UTC()
	since := time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)

	rows, err := r.db.QueryContext(ctx, `SELECT sale_date, amount FROM sales WHERE sale_date >= ?`, since)
	if err != nil {
		return nil, fmt.Errorf("查询月度收入失败: %w", err)
	}
	defer rows.Close()

	byMonth := make(map[string]*models.MonthlyRevenue)
	for rows.Next() {
		var (
			saleDate time.Time
			amount   int64
		)
		if err := rows.Scan(&saleDate, &amount); err != nil {
			return nil, err
		}
		key := saleDate.UTC().Format(monthLayout)
		m, ok := byMonth[key]
		if !ok {
			m = &models.MonthlyRevenue{Month: key}
			byMonth[key] = m
		}
		m.Sales++
		m.Revenue += float64(amount) / 100
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]models.MonthlyRevenue, 0, len(byMonth))
	for _, m := range byMonth {
		result = append(result, *m)
	}
	// 新月份在前
	sort.Slice(result, func(i, j int) bool { return result[i].Month > result[j].Month })
	return result, nil
}

// NichePerformance 各领域的商品数、平均质量、平均价格和销售情况，按收入倒序
func (r *AnalyticsRepo) NichePerformance(ctx context.Context) ([]models.NichePerformance, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT niche, COUNT(*), AVG(quality_score), AVG(price)
		FROM products GROUP BY niche
	`)
	if err != nil {
		return nil, fmt.Errorf("统计领域商品失败: %w", err)
	}
	byNiche := make(map[string]*models.NichePerformance)
	for rows.Next() {
		var (
			np       models.NichePerformance
			avgCents float64
		)
		if err := rows.Scan(&np.Niche, &np.ProductsCount, &np.AvgQualityScore, &avgCents); err != nil {
			rows.Close()
			return nil, err
		}
		np.AvgPrice = avgCents / 100
		byNiche[np.Niche] = &np
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx, `
		SELECT p.niche, COUNT(s.id), COALESCE(SUM(s.amount), 0)
		FROM sales s JOIN products p ON p.id = s.product_id
		GROUP BY p.niche
	`)
	if err != nil {
		return nil, fmt.Errorf("统计领域销售失败: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			niche      string
			sales      int
			totalCents int64
		)
		if err := rows.Scan(&niche, &sales, &totalCents); err != nil {
			return nil, err
		}
		if np, ok := byNiche[niche]; ok {
			np.TotalSales = sales
			np.TotalRevenue = float64(totalCents) / 100
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]models.NichePerformance, 0, len(byNiche))
	for _, np := range byNiche {
		np.ConversionRate = percent(np.TotalSales, np.ProductsCount)
		result = append(result, *np)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalRevenue != result[j].TotalRevenue {
			return result[i].TotalRevenue > result[j].TotalRevenue
		}
		return result[i].Niche < result[j].Niche
	})
	return result, nil
}

// PredictRevenue 基于最近30天每日收入的均值和首尾趋势预测未来 daysAhead 天收入
func (r *AnalyticsRepo) PredictRevenue(ctx context.Context, now time.Time, daysAhead int) (models.RevenuePrediction, error) {
	prediction := models.RevenuePrediction{PredictionPeriodDays: daysAhead}
	if daysAhead <= 0 {
		return prediction, fmt.Errorf("预测天数必须大于0: %d", daysAhead)
	}

	since := now.UTC().Truncate(time.Second).AddDate(0, 0, -30)
	rows, err := r.db.QueryContext(ctx, `SELECT sale_date, amount FROM sales WHERE sale_date >= ?`, since)
	if err != nil {
		return prediction, fmt.Errorf("查询历史收入失败: %w", err)
	}
	defer rows.Close()

	daily := make(map[string]int64)
	for rows.Next() {
		var (
			saleDate time.Time
			amount   int64
		)
		if err := rows.Scan(&saleDate, &amount); err != nil {
			return prediction, err
		}
		daily[saleDate.UTC().Format(dateLayout)] += amount
	}
	if err := rows.Err(); err != nil {
		return prediction, err
	}

	if len(daily) < minPredictionDays {
		prediction.Message = "Insufficient data for prediction"
		return prediction, ErrInsufficientData
	}

	days := make([]string, 0, len(daily))
	for d := range daily {
		days = append(days, d)
	}
	sort.Strings(days)

	var total float64
	for _, d := range days {
		total += float64(daily[d])
	}
	n := float64(len(days))
	avg := total / n
	trend := (float64(daily[days[len(days)-1]]) - float64(daily[days[0]])) / n

	predicted := (avg + trend*float64(daysAhead)) * float64(daysAhead)
	if predicted < 0 {
		predicted = 0
	}

	prediction.HistoricalAvgDailyRevenue = avg / 100
	prediction.PredictedTotalRevenue = predicted / 100
	prediction.Confidence = "low"
	if len(days) >= mediumConfidenceDays {
		prediction.Confidence = "medium"
	}
	return prediction, nil
}

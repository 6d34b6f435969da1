package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"ai_prompt_factory/models"
)

const topCustomersLimit = 10

// 客户分层，按购买次数划分
const (
	SegmentOneTime = "One-time"
	SegmentRegular = "Regular"
	SegmentVIP     = "VIP"
)

// CustomerRepo 客户查询，客户记录由 SalesRepo.Record 维护
type CustomerRepo struct {
	db *sql.DB
}

func NewCustomerRepo(conn *sql.DB) *CustomerRepo {
	return &CustomerRepo{db: conn}
}

// Get 按邮箱查询客户，大小写不敏感，不存在时返回 ErrNotFound
func (r *CustomerRepo) Get(ctx context.Context, email string) (models.Customer, error) {
	var c models.Customer
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, registration_date, total_purchases, total_spent, last_activity
		FROM customers WHERE email = ?
	`, normalizeEmail(email)).Scan(&c.ID, &c.Email, &c.RegistrationDate, &c.TotalPurchases,
		&c.TotalSpentCents, &c.LastActivity)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Customer{}, ErrNotFound
	}
	if err != nil {
		return models.Customer{}, fmt.Errorf("查询客户失败: %w", err)
	}
	c.RegistrationDate = c.RegistrationDate.UTC()
	c.LastActivity = c.LastActivity.UTC()
	return c, nil
}

func segmentOf(purchases int) string {
	switch {
	case purchases == 1:
		return SegmentOneTime
	case purchases >= 2 && purchases <= 5:
		return SegmentRegular
	default:
		return SegmentVIP
	}
}

// Analytics 客户总数、本月（UTC）新客、客单生命周期价值、消费前10和分层分布
func (r *CustomerRepo) Analytics(ctx context.Context, now time.Time) (models.CustomerAnalytics, error) {
	report := models.CustomerAnalytics{
		TopCustomers:     []models.TopCustomer{},
		CustomerSegments: []models.CustomerSegment{},
	}

	n := now.UTC()
	monthStart := time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, time.UTC)
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN registration_date >= ? THEN 1 ELSE 0 END), 0)
		FROM customers
	`, monthStart).Scan(&report.TotalCustomers, &report.NewCustomersMonth)
	if err != nil {
		return report, fmt.Errorf("统计客户数失败: %w", err)
	}

	var (
		avgCents float64
		maxCents int64
	)
	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(AVG(total_spent), 0), COALESCE(MAX(total_spent), 0)
		FROM customers WHERE total_spent > 0
	`).Scan(&avgCents, &maxCents)
	if err != nil {
		return report, fmt.Errorf("统计客户价值失败: %w", err)
	}
	report.AvgCustomerLTV = roundCents(avgCents)
	report.MaxCustomerLTV = float64(maxCents) / 100

	rows, err := r.db.QueryContext(ctx, `
		SELECT email, total_purchases, total_spent
		FROM customers ORDER BY total_spent DESC, email LIMIT ?
	`, topCustomersLimit)
	if err != nil {
		return report, fmt.Errorf("查询消费排行失败: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			c     models.TopCustomer
			cents int64
		)
		if err := rows.Scan(&c.Email, &c.Purchases, &cents); err != nil {
			return report, err
		}
		c.TotalSpent = float64(cents) / 100
		report.TopCustomers = append(report.TopCustomers, c)
	}
	if err := rows.Err(); err != nil {
		return report, err
	}

	segments, err := r.segments(ctx)
	if err != nil {
		return report, err
	}
	report.CustomerSegments = segments
	return report, nil
}

func (r *CustomerRepo) segments(ctx context.Context) ([]models.CustomerSegment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT total_purchases, COUNT(*) FROM customers
		WHERE total_purchases > 0 GROUP BY total_purchases
	`)
	if err != nil {
		return nil, fmt.Errorf("统计客户分层失败: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var purchases, count int
		if err := rows.Scan(&purchases, &count); err != nil {
			return nil, err
		}
		counts[segmentOf(purchases)] += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	segments := []models.CustomerSegment{}
	for _, name := range []string{SegmentOneTime, SegmentRegular, SegmentVIP} {
		if counts[name] > 0 {
			segments = append(segments, models.CustomerSegment{Segment: name, Count: counts[name]})
		}
	}
	return segments, nil
}

func roundCents(cents float64) float64 {
	return math.Round(cents) / 100
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Metric 一条商品表现指标
type Metric struct {
	Name       string    `json:"name"`
	Value      float64   `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

// MetricsRepo performance_metrics 表读写
type MetricsRepo struct {
	db *sql.DB
}

func NewMetricsRepo(conn *sql.DB) *MetricsRepo {
	return &MetricsRepo{db: conn}
}

// Record 记录一条指标
func (r *MetricsRepo) Record(ctx context.Context, productID, name string, value float64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO performance_metrics (product_id, metric_name, metric_value, recorded_at)
		VALUES (?, ?, ?, ?)
	`, productID, name, value, dbTime(at))
	if err != nil {
		return fmt.Errorf("记录指标失败: %w", err)
	}
	return nil
}

// Latest 返回商品每个指标的最新值，按指标名排序
func (r *MetricsRepo) Latest(ctx context.Context, productID string) ([]Metric, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT metric_name, metric_value, recorded_at
		FROM performance_metrics
		WHERE product_id = ?
		ORDER BY metric_name, recorded_at DESC, id DESC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("查询指标失败: %w", err)
	}
	defer rows.Close()

	metrics := make([]Metric, 0)
	for rows.Next() {
		var m Metric
		if err := rows.Scan(&m.Name, &m.Value, &m.RecordedAt); err != nil {
			return nil, err
		}
		// 同名指标只保留第一条
		if n := len(metrics); n > 0 && metrics[n-1].Name == m.Name {
			continue
		}
		m.RecordedAt = m.RecordedAt.UTC()
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

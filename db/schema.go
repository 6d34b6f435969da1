package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// 两种方言的建表语句，列名和语义保持一致
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id VARCHAR(64) PRIMARY KEY,
		title VARCHAR(512) NOT NULL,
		niche VARCHAR(128) NOT NULL,
		template_type VARCHAR(128) NOT NULL,
		keywords JSON NOT NULL,
		body MEDIUMTEXT NOT NULL,
		description TEXT NOT NULL,
		quality_score DOUBLE NOT NULL,
		price INT NOT NULL,
		source VARCHAR(16) NOT NULL,
		status VARCHAR(16) NOT NULL,
		whop_product_id VARCHAR(128) NULL,
		batch_id VARCHAR(64) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		INDEX idx_products_created_at (created_at),
		INDEX idx_products_batch_id (batch_id)
	) DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS sales (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		product_id VARCHAR(64) NOT NULL,
		amount INT NOT NULL,
		customer_email VARCHAR(255) NOT NULL,
		platform VARCHAR(32) NOT NULL,
		sale_date DATETIME(6) NOT NULL,
		INDEX idx_sales_product_id (product_id),
		INDEX idx_sales_sale_date (sale_date)
	) DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS customers (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		registration_date DATETIME(6) NOT NULL,
		total_purchases INT NOT NULL,
		total_spent BIGINT NOT NULL,
		last_activity DATETIME(6) NOT NULL,
		UNIQUE KEY uk_customers_email (email),
		INDEX idx_customers_registration_date (registration_date)
	) DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS performance_metrics (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		product_id VARCHAR(64) NOT NULL,
		metric_name VARCHAR(64) NOT NULL,
		metric_value DOUBLE NOT NULL,
		recorded_at DATETIME(6) NOT NULL,
		INDEX idx_metrics_product_id (product_id)
	) DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS daily_summary (
		summary_date VARCHAR(10) PRIMARY KEY,
		products_created INT NOT NULL,
		total_revenue BIGINT NOT NULL,
		total_sales INT NOT NULL,
		avg_quality_score DOUBLE NOT NULL,
		top_niche VARCHAR(128) NOT NULL
	) DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		niche TEXT NOT NULL,
		template_type TEXT NOT NULL,
		keywords TEXT NOT NULL DEFAULT '[]',
		body TEXT NOT NULL,
		description TEXT NOT NULL,
		quality_score REAL NOT NULL,
		price INTEGER NOT NULL,
		source TEXT NOT NULL,
		status TEXT NOT NULL,
		whop_product_id TEXT,
		batch_id TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_products_batch_id ON products(batch_id)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id TEXT NOT NULL REFERENCES products(id),
		amount INTEGER NOT NULL,
		customer_email TEXT NOT NULL,
		platform TEXT NOT NULL,
		sale_date DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_sale_date ON sales(sale_date)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		registration_date DATETIME NOT NULL,
		total_purchases INTEGER NOT NULL,
		total_spent INTEGER NOT NULL,
		last_activity DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_customers_registration_date ON customers(registration_date)`,
	`CREATE TABLE IF NOT EXISTS performance_metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id TEXT NOT NULL REFERENCES products(id),
		metric_name TEXT NOT NULL,
		metric_value REAL NOT NULL,
		recorded_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS daily_summary (
		summary_date TEXT PRIMARY KEY,
		products_created INTEGER NOT NULL,
		total_revenue INTEGER NOT NULL,
		total_sales INTEGER NOT NULL,
		avg_quality_score REAL NOT NULL,
		top_niche TEXT NOT NULL
	)`,
}

// Migrate 创建所需的表，可重复执行
func Migrate(ctx context.Context, conn *sql.DB, driver string) error {
	var stmts []string
	switch strings.ToLower(driver) {
	case DriverMySQL:
		stmts = mysqlSchema
	case DriverSQLite:
		stmts = sqliteSchema
	default:
		return fmt.Errorf("不支持的数据库驱动: %q", driver)
	}

	for _, stmt := range stmts {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("执行建表语句失败: %w", err)
		}
	}
	return nil
}

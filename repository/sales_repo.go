package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ai_prompt_factory/models"
)

// SalesRepo 销售记录
type SalesRepo struct {
	db *sql.DB
}

func NewSalesRepo(conn *sql.DB) *SalesRepo {
	return &SalesRepo{db: conn}
}

// Record 写入一笔销售并累计到对应客户，返回自增ID。
// 客户按小写邮箱识别，首次购买时创建
func (r *SalesRepo) Record(ctx context.Context, sale models.Sale) (int64, error) {
	platform := sale.Platform
	if platform == "" {
		platform = "whop"
	}
	at := dbTime(sale.SaleDate)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO sales (product_id, amount, customer_email, platform, sale_date)
		VALUES (?, ?, ?, ?, ?)
	`, sale.ProductID, sale.Amount, sale.CustomerEmail, platform, at)
	if err != nil {
		return 0, fmt.Errorf("记录销售失败: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if email := normalizeEmail(sale.CustomerEmail); email != "" {
		if err := addPurchase(ctx, tx, email, sale.Amount, at); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("提交销售记录失败: %w", err)
	}
	return id, nil
}

func addPurchase(ctx context.Context, tx *sql.Tx, email string, amount int, at time.Time) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE customers
		SET total_purchases = total_purchases + 1, total_spent = total_spent + ?, last_activity = ?
		WHERE email = ?
	`, amount, at, email)
	if err != nil {
		return fmt.Errorf("更新客户 %s 失败: %w", email, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO customers (email, registration_date, total_purchases, total_spent, last_activity)
		VALUES (?, ?, 1, ?, ?)
	`, email, at, amount, at)
	if err != nil {
		return fmt.Errorf("创建客户 %s 失败: %w", email, err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai_prompt_factory/models"
)

// ErrNotFound 查询的记录不存在
var ErrNotFound = errors.New("记录不存在")

// ProductRepo 商品表读写
type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(conn *sql.DB) *ProductRepo {
	return &ProductRepo{db: conn}
}

const productColumns = `id, title, niche, template_type, keywords, body, description, quality_score,
	price, source, status, whop_product_id, batch_id, created_at`

// Save 插入或覆盖商品记录
func (r *ProductRepo) Save(ctx context.Context, p models.Product) error {
	return saveProduct(ctx, r.db, p)
}

// SaveAll 在一个事务内保存一批商品
func (r *ProductRepo) SaveAll(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, p := range products {
		if err := saveProduct(ctx, tx, p); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveProduct(ctx context.Context, ex execer, p models.Product) error {
	keywords, err := json.Marshal(nonNilStrings(p.Keywords))
	if err != nil {
		return fmt.Errorf("序列化关键词失败: %w", err)
	}

	var whopID sql.NullString
	if p.WhopProductID != "" {
		whopID = sql.NullString{String: p.WhopProductID, Valid: true}
	}

	_, err = ex.ExecContext(ctx, `
		REPLACE INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Title, p.Niche, p.TemplateType, string(keywords), p.Body, p.Description, p.QualityScore,
		p.PriceCents, p.Source, p.Status, whopID, p.BatchID, dbTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("保存商品 %s 失败: %w", p.ID, err)
	}
	return nil
}

// MarkPublished 将草稿商品标记为已上架并记录市场商品ID和实际售价
func (r *ProductRepo) MarkPublished(ctx context.Context, id, whopProductID string, priceCents int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products SET status = ?, whop_product_id = ?, price = ?
		WHERE id = ?
	`, models.ProductStatusPublished, whopProductID, priceCents, id)
	if err != nil {
		return fmt.Errorf("更新商品 %s 上架状态失败: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Get 按ID查询商品，不存在时返回 ErrNotFound
func (r *ProductRepo) Get(ctx context.Context, id string) (models.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrNotFound
	}
	return p, err
}

// ListRecent 按创建时间倒序返回最近的商品
func (r *ProductRepo) ListRecent(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	return r.query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id LIMIT ?`, limit)
}

// ListByBatch 返回同一批次的商品
func (r *ProductRepo) ListByBatch(ctx context.Context, batchID string) ([]models.Product, error) {
	return r.query(ctx, `SELECT `+productColumns+` FROM products WHERE batch_id = ? ORDER BY quality_score DESC, id`, batchID)
}

// ListPublishedSince 返回指定时间之后创建且已发布到市场的商品
func (r *ProductRepo) ListPublishedSince(ctx context.Context, since time.Time) ([]models.Product, error) {
	return r.query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE status = ? AND whop_product_id IS NOT NULL AND created_at >= ?
		ORDER BY created_at DESC, id
	`, models.ProductStatusPublished, dbTime(since))
}

func (r *ProductRepo) query(ctx context.Context, q string, args ...any) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("查询商品失败: %w", err)
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var (
		p        models.Product
		keywords string
		whopID   sql.NullString
	)
	err := row.Scan(&p.ID, &p.Title, &p.Niche, &p.TemplateType, &keywords, &p.Body, &p.Description,
		&p.QualityScore, &p.PriceCents, &p.Source, &p.Status, &whopID, &p.BatchID, &p.CreatedAt)
	if err != nil {
		return models.Product{}, err
	}
	if err := json.Unmarshal([]byte(keywords), &p.Keywords); err != nil {
		return models.Product{}, fmt.Errorf("解析商品 %s 关键词失败: %w", p.ID, err)
	}
	p.WhopProductID = whopID.String
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// dbTime 统一以秒精度的UTC时间入库，保证字符串比较与时间比较一致
func dbTime(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Truncate(time.Second)
}

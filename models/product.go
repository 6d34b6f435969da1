package models

import "time"

// 商品状态
const (
	ProductStatusDraft     = "draft"
	ProductStatusPublished = "published"
)

// Product 已持久化的提示词商品
type Product struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Niche         string    `json:"niche"`
	TemplateType  string    `json:"template_type"`
	Keywords      []string  `json:"keywords"`
	Body          string    `json:"body"`
	Description   string    `json:"description"`
	QualityScore  float64   `json:"quality_score"`
	PriceCents    int       `json:"price_cents"`
	Source        string    `json:"source"`
	Status        string    `json:"status"`
	WhopProductID string    `json:"whop_product_id,omitempty"`
	BatchID       string    `json:"batch_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewProductFromCandidate 由候选内容构造商品
func NewProductFromCandidate(id, batchID string, c Candidate, priceCents int) Product {
	return Product{
		ID:           id,
		Title:        c.Title,
		Niche:        c.Niche,
		TemplateType: c.TemplateType,
		Keywords:     append([]string(nil), c.Keywords...),
		Body:         c.Body,
		Description:  c.Description,
		QualityScore: c.QualityScore,
		PriceCents:   priceCents,
		Source:       c.Source,
		Status:       ProductStatusDraft,
		BatchID:      batchID,
		CreatedAt:    c.CreatedAt,
	}
}

// Sale 一笔销售记录，金额单位为美分
type Sale struct {
	ID            int64     `json:"id"`
	ProductID     string    `json:"product_id"`
	Amount        int       `json:"amount"`
	CustomerEmail string    `json:"customer_email"`
	Platform      string    `json:"platform"`
	SaleDate      time.Time `json:"sale_date"`
}

// ProductStats 市场平台返回的商品表现数据
type ProductStats struct {
	Views          int     `json:"views"`
	Sales          int     `json:"sales"`
	Revenue        float64 `json:"revenue"`
	ConversionRate float64 `json:"conversion_rate"`
}

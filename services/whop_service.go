package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"ai_prompt_factory/config"
	"ai_prompt_factory/models"
	"ai_prompt_factory/utils"
)

var nicheCategories = map[string]string{
	"Business & Marketing":           "business",
	"Content Creation & Copywriting": "content",
	"E-commerce & Sales":             "ecommerce",
	"Programming & Development":      "development",
	"Personal Productivity":          "productivity",
	"Social Media Marketing":         "marketing",
	"Email Marketing":                "marketing",
	"SEO & Digital Marketing":        "marketing",
}

// CategoryFor 领域到 Whop 分类的映射，未知领域归为 tools
func CategoryFor(niche string) string {
	if c, ok := nicheCategories[niche]; ok {
		return c
	}
	return "tools"
}

// PublishedCandidate 一条候选及其在市场上的商品ID和价格
type PublishedCandidate struct {
	// 在输入列表中的位置
	Index         int
	Candidate     models.Candidate
	WhopProductID string
	PriceCents    int
}

// whopProductPayload 创建商品的请求体
type whopProductPayload struct {
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Price           int        `json:"price"`
	Type            string     `json:"type"`
	Category        string     `json:"category"`
	Tags            []string   `json:"tags"`
	Files           []whopFile `json:"files"`
	InstantDelivery bool       `json:"instant_delivery"`
	UnlimitedStock  bool       `json:"unlimited_stock"`
}

type whopFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

// WhopPublisher 把候选上架到 Whop。连接失败或缺少密钥时进入模拟模式
type WhopPublisher struct {
	baseURL     string
	apiKey      string
	companyName string
	pricing     config.PricingConfig
	client      *http.Client
	limiter     *rate.Limiter
	log         *slog.Logger
	mock        atomic.Bool
}

func NewWhopPublisher(cfg config.WhopConfig, pricing config.PricingConfig, log *slog.Logger) *WhopPublisher {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	p := &WhopPublisher{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		companyName: cfg.CompanyName,
		pricing:     pricing,
		client:      &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(limit, 1),
		log:         log,
	}
	if cfg.ForceMock || cfg.APIKey == "" {
		p.mock.Store(true)
	}
	return p
}

// MockMode 是否处于模拟模式
func (p *WhopPublisher) MockMode() bool {
	return p.mock.Load()
}

// Ping 测试 API 连接，失败时切换到模拟模式
func (p *WhopPublisher) Ping(ctx context.Context) error {
	if p.MockMode() {
		p.log.Info("Whop 运行在模拟模式")
		return nil
	}

	var me struct {
		Username string `json:"username"`
	}
	status, err := p.doJSON(ctx, http.MethodGet, "/me", nil, &me)
	if err == nil && status != http.StatusOK {
		err = fmt.Errorf("连接测试失败，状态码: %d", status)
	}
	if err != nil {
		p.log.Error("Whop API 连接失败，切换到模拟模式", "error", err)
		p.mock.Store(true)
		return err
	}

	username := me.Username
	if username == "" {
		username = "Unknown"
	}
	p.log.Info("已连接 Whop", "username", username)
	return nil
}

// Publish 依次上架候选，单个失败只记录日志
func (p *WhopPublisher) Publish(ctx context.Context, candidates []models.Candidate) ([]PublishedCandidate, error) {
	p.log.Info("开始上架商品", "count", len(candidates), "mock", p.MockMode())

	published := make([]PublishedCandidate, 0, len(candidates))
	for i, c := range candidates {
		if err := p.limiter.Wait(ctx); err != nil {
			return published, err
		}

		priceCents := PriceFor(p.pricing, c.Niche, c.QualityScore) * 100
		id, err := p.createProduct(ctx, c, priceCents)
		if err != nil {
			if ctx.Err() != nil {
				return published, ctx.Err()
			}
			p.log.Error("上架商品失败", "title", c.Title, "error", err)
			continue
		}
		p.log.Info("上架商品成功", "title", c.Title, "product_id", id)
		published = append(published, PublishedCandidate{Index: i, Candidate: c, WhopProductID: id, PriceCents: priceCents})
	}

	p.log.Info("上架完成", "published", len(published), "total", len(candidates))
	return published, nil
}

func (p *WhopPublisher) createProduct(ctx context.Context, c models.Candidate, priceCents int) (string, error) {
	payload := whopProductPayload{
		Name:            c.Title,
		Description:     p.FormatDescription(c),
		Price:           priceCents,
		Type:            "digital_product",
		Category:        CategoryFor(c.Niche),
		Tags:            utils.DeduplicateSlice(append(append([]string(nil), c.Keywords...), "AI", "Prompts", "Automation")),
		Files:           []whopFile{p.productFile(c)},
		InstantDelivery: true,
		UnlimitedStock:  true,
	}

	if p.MockMode() {
		return "mock_" + uuid.NewString(), nil
	}

	var created struct {
		ID string `json:"id"`
	}
	status, err := p.doJSON(ctx, http.MethodPost, "/products", payload, &created)
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("创建商品失败，状态码: %d", status)
	}
	if created.ID == "" {
		return "", errors.New("创建商品响应缺少 id")
	}
	return created.ID, nil
}

// ProductStats 拉取商品表现数据，模拟模式返回固定值
func (p *WhopPublisher) ProductStats(ctx context.Context, productID string) (models.ProductStats, error) {
	if p.MockMode() {
		return models.ProductStats{Views: 45, Sales: 3, Revenue: 135, ConversionRate: 0.067}, nil
	}

	var stats models.ProductStats
	status, err := p.doJSON(ctx, http.MethodGet, "/products/"+productID+"/stats", nil, &stats)
	if err != nil {
		return stats, err
	}
	if status != http.StatusOK {
		return stats, fmt.Errorf("获取商品统计失败，状态码: %d", status)
	}
	return stats, nil
}

func (p *WhopPublisher) doJSON(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("序列化请求体失败: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("读取响应失败: %w", err)
	}
	if resp.StatusCode >= 300 {
		p.log.Error("Whop 请求失败", "path", path, "status", resp.StatusCode, "response", utils.Preview(string(respBody), 300))
		return resp.StatusCode, nil
	}
	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.StatusCode, fmt.Errorf("解析响应失败: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// FormatDescription 生成商品页的 markdown 描述
func (p *WhopPublisher) FormatDescription(c models.Candidate) string {
	company := p.companyName
	return fmt.Sprintf(`🤖 **Professional AI Prompt for %[1]s**

%[2]s

**🎯 What You Get:**
• High-quality AI prompt (150-300 words)
• Detailed instructions and examples
• Ready-to-use with ChatGPT, Claude, or any AI
• Professional results in minutes
• Keywords: %[3]s

**💡 Perfect For:**
• %[1]s professionals
• Content creators and marketers
• Business owners and entrepreneurs
• Anyone wanting to save time with AI

**⚡ Instant Delivery:**
Download immediately after purchase - no waiting!

**🏆 Quality Guarantee:**
Quality Score: %.1[4]f/1.0
Created by %[5]s - Professional AI Solutions

---
*Built by %[5]s - Your AI Automation Experts*`,
		c.Niche, c.Description, strings.Join(c.Keywords, ", "), c.QualityScore, company)
}

// productFile 随商品交付的文本文件
func (p *WhopPublisher) productFile(c models.Candidate) whopFile {
	content := fmt.Sprintf(`# %s

## AI Prompt:

%s

## Usage Instructions:

1. Copy the prompt above
2. Paste it into ChatGPT, Claude, or your preferred AI
3. Replace any [PLACEHOLDER] text with your specific details
4. Run the prompt and get professional results!

## Keywords:
%s

## Template Type:
%s

## Created:
%s

---
Created by %s
Professional AI Solutions
`, c.Title, c.Body, strings.Join(c.Keywords, ", "), c.TemplateType, c.CreatedAt.Format(time.RFC3339), p.companyName)

	return whopFile{
		Name:    strings.ReplaceAll(c.Title, " ", "_") + ".txt",
		Content: content,
		Type:    "text/plain",
	}
}

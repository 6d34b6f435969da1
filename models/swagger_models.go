package models

// APIResponse 通用API响应
type APIResponse struct {
	Code    int         `json:"code" example:"0"`
	Message string      `json:"message" example:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// GenerateRequest 手动触发批量生成的请求体
type GenerateRequest struct {
	DryRun bool   `json:"dry_run" example:"true"`
	Seed   uint64 `json:"seed,omitempty" example:"42"`
}

// GenerateResult 批量生成结果
type GenerateResult struct {
	BatchID    string      `json:"batch_id" example:"5f0c6f0e-8a4b-4d5e-9a51-2f7c1b6f3f20"`
	Candidates []Candidate `json:"candidates,omitempty"`
	Products   []Product   `json:"products,omitempty"`
}

// SaleRequest 记录销售的请求体
type SaleRequest struct {
	ProductID     string `json:"product_id" example:"mock_1b9d6bcd"`
	Amount        int    `json:"amount" example:"4500"`
	CustomerEmail string `json:"customer_email" example:"buyer@example.com"`
	Platform      string `json:"platform" example:"whop"`
}

// ScoreRequest 质量评分请求体
type ScoreRequest struct {
	Text string `json:"text" example:"1. Create a detailed strategic analysis..."`
}

// ScoreResponse 质量评分结果
type ScoreResponse struct {
	Score     float64 `json:"score" example:"0.8"`
	WordCount int     `json:"word_count" example:"42"`
	Passed    bool    `json:"passed" example:"true"`
}

// TaskSnapshot 定时任务状态
type TaskSnapshot struct {
	Name        string `json:"name" example:"daily_generation"`
	Description string `json:"description" example:"每日批量生成"`
	LastRun     string `json:"last_run,omitempty"`
	NextRun     string `json:"next_run,omitempty"`
	IsRunning   bool   `json:"is_running"`
	LastError   string `json:"last_error,omitempty"`
}

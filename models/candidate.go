package models

import "time"

// 候选内容来源
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

// Candidate 一次批量生成中的提示词候选，评分后不再修改
type Candidate struct {
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Description  string    `json:"description"`
	Keywords     []string  `json:"keywords"`
	TemplateType string    `json:"template_type"`
	Niche        string    `json:"niche"`
	QualityScore float64   `json:"quality_score"`
	Source       string    `json:"source"` // ai / fallback
	CreatedAt    time.Time `json:"created_at"`
}

package config

// 内置的领域关键词
var nicheKeywords = map[string][]string{
	"Business & Marketing": {
		"lead generation", "sales funnel", "customer acquisition",
		"brand strategy", "market research", "competitive analysis",
		"business plan", "ROI optimization", "conversion rate",
	},
	"Content Creation & Copywriting": {
		"blog posts", "sales copy", "email sequences",
		"social media content", "ad copy", "headlines",
		"storytelling", "persuasive writing", "content strategy",
	},
	"E-commerce & Sales": {
		"product descriptions", "Amazon listings", "sales pages",
		"checkout optimization", "upsell strategies", "cart abandonment",
		"customer reviews", "product photography", "inventory management",
	},
	"Programming & Development": {
		"code generation", "debugging", "API documentation",
		"database design", "testing strategies", "deployment",
		"performance optimization", "security best practices", "architecture",
	},
	"Personal Productivity": {
		"time management", "goal setting", "habit formation",
		"workflow optimization", "task prioritization", "focus techniques",
		"productivity systems", "motivation", "work-life balance",
	},
}

// KeywordsFor 返回领域关键词，配置文件中的 generation.keywords 优先
func (c *Config) KeywordsFor(niche string) []string {
	if kws, ok := c.Generation.Keywords[niche]; ok && len(kws) > 0 {
		return append([]string(nil), kws...)
	}
	return append([]string(nil), nicheKeywords[niche]...)
}

package services

var nicheTemplates = map[string][]string{
	"Business & Marketing": {
		"Strategic Analysis", "Campaign Planning", "Market Research",
		"Competitive Intelligence", "Customer Journey Mapping", "ROI Optimization",
	},
	"Content Creation & Copywriting": {
		"Persuasive Writing", "Storytelling Framework", "Content Strategy",
		"Audience Engagement", "Conversion Copywriting", "Brand Voice Development",
	},
	"E-commerce & Sales": {
		"Product Optimization", "Sales Funnel Design", "Customer Retention",
		"Pricing Strategy", "Conversion Rate Optimization", "Customer Service Excellence",
	},
	"Programming & Development": {
		"Code Architecture", "Problem Solving", "Performance Optimization",
		"Testing Strategy", "Documentation", "Debugging Process",
	},
	"Personal Productivity": {
		"Goal Achievement", "Time Management", "Habit Formation",
		"Focus Enhancement", "Workflow Optimization", "Motivation Boost",
	},
}

var defaultTemplates = []string{"General Framework", "Step-by-Step Guide", "Strategic Approach"}

// TemplatesFor 返回领域可用的模板类型，未知领域使用通用模板。返回值为副本
func TemplatesFor(niche string) []string {
	templates, ok := nicheTemplates[niche]
	if !ok {
		templates = defaultTemplates
	}
	return append([]string(nil), templates...)
}

package models

import "time"

// DailyReport 每日运营报告，金额单位为美元
type DailyReport struct {
	Date            string  `json:"date"`
	ProductsCreated int     `json:"products_created"`
	DailyRevenue    float64 `json:"daily_revenue"`
	DailySales      int     `json:"daily_sales"`
	AvgQualityScore float64 `json:"avg_quality_score"`
	TopNiche        string  `json:"top_niche"`
	ConversionRate  float64 `json:"conversion_rate"`
}

type NicheCount struct {
	Niche      string  `json:"niche"`
	Count      int     `json:"count"`
	AvgQuality float64 `json:"avg_quality"`
}

type DailyTrend struct {
	Date     string  `json:"date"`
	Products int     `json:"products"`
	Quality  float64 `json:"quality"`
}

// WeeklyReport 最近7天的汇总
type WeeklyReport struct {
	Period          string       `json:"period"`
	TotalProducts   int          `json:"total_products"`
	TotalRevenue    float64      `json:"total_revenue"`
	TotalSales      int          `json:"total_sales"`
	AvgQualityScore float64      `json:"avg_quality_score"`
	ConversionRate  float64      `json:"conversion_rate"`
	TopNiches       []NicheCount `json:"top_niches"`
	DailyTrends     []DailyTrend `json:"daily_trends"`
}

type MonthlyRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Sales   int     `json:"sales"`
}

type TopProduct struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Niche        string  `json:"niche"`
	Price        float64 `json:"price"`
	SalesCount   int     `json:"sales_count"`
	TotalRevenue float64 `json:"total_revenue"`
}

// RevenueMetrics 全量收入指标
type RevenueMetrics struct {
	TotalProducts   int              `json:"total_products"`
	TotalRevenue    float64          `json:"total_revenue"`
	TotalSales      int              `json:"total_sales"`
	AvgQualityScore float64          `json:"avg_quality_score"`
	MonthlyRevenue  []MonthlyRevenue `json:"monthly_revenue"`
	TopProducts     []TopProduct     `json:"top_products"`
}

// NichePerformance 按领域汇总的表现
type NichePerformance struct {
	Niche           string  `json:"niche"`
	ProductsCount   int     `json:"products_count"`
	AvgQualityScore float64 `json:"avg_quality_score"`
	AvgPrice        float64 `json:"avg_price"`
	TotalSales      int     `json:"total_sales"`
	TotalRevenue    float64 `json:"total_revenue"`
	ConversionRate  float64 `json:"conversion_rate"`
}

// RevenuePrediction 基于近30天趋势的收入预测
type RevenuePrediction struct {
	PredictionPeriodDays      int     `json:"prediction_period_days"`
	HistoricalAvgDailyRevenue float64 `json:"historical_avg_daily_revenue"`
	PredictedTotalRevenue     float64 `json:"predicted_total_revenue"`
	Confidence                string  `json:"confidence"`
	Message                   string  `json:"message,omitempty"`
}

// Customer 按邮箱聚合的购买者，金额单位为美分
type Customer struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	RegistrationDate time.Time `json:"registration_date"`
	TotalPurchases   int       `json:"total_purchases"`
	TotalSpentCents  int64     `json:"total_spent_cents"`
	LastActivity     time.Time `json:"last_activity"`
}

type TopCustomer struct {
	Email      string  `json:"email"`
	Purchases  int     `json:"purchases"`
	TotalSpent float64 `json:"total_spent"`
}

type CustomerSegment struct {
	Segment string `json:"segment"`
	Count   int    `json:"count"`
}

// CustomerAnalytics 客户统计，金额单位为美元
type CustomerAnalytics struct {
	TotalCustomers    int               `json:"total_customers"`
	NewCustomersMonth int               `json:"new_customers_month"`
	AvgCustomerLTV    float64           `json:"avg_customer_ltv"`
	MaxCustomerLTV    float64           `json:"max_customer_ltv"`
	TopCustomers      []TopCustomer     `json:"top_customers"`
	CustomerSegments  []CustomerSegment `json:"customer_segments"`
}

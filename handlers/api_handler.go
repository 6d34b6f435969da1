package handlers

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "ai_prompt_factory/docs" // 导入 swagger 文档
	"ai_prompt_factory/models"
	"ai_prompt_factory/repository"
	"ai_prompt_factory/scheduler"
	"ai_prompt_factory/services"
	"ai_prompt_factory/utils"
)

// Automation 手动运行批量生成和健康检查
type Automation interface {
	Run(ctx context.Context, opts services.RunOptions) (models.GenerateResult, error)
	HealthCheck(ctx context.Context) error
}

// TaskScheduler 定时任务状态查询和手动触发
type TaskScheduler interface {
	Status() []models.TaskSnapshot
	Trigger(name string) error
}

// Handler 仪表盘 API
type Handler struct {
	automation Automation
	scheduler  TaskScheduler
	products   *repository.ProductRepo
	sales      *repository.SalesRepo
	customers  *repository.CustomerRepo
	metrics    *repository.MetricsRepo
	analytics  *repository.AnalyticsRepo
	minQuality float64
	log        *slog.Logger
	now        func() time.Time
}

func NewHandler(conn *sql.DB, automation Automation, sched TaskScheduler, minQuality float64, log *slog.Logger) *Handler {
	return &Handler{
		automation: automation,
		scheduler:  sched,
		products:   repository.NewProductRepo(conn),
		sales:      repository.NewSalesRepo(conn),
		customers:  repository.NewCustomerRepo(conn),
		metrics:    repository.NewMetricsRepo(conn),
		analytics:  repository.NewAnalyticsRepo(conn),
		minQuality: minQuality,
		log:        log,
		now:        time.Now,
	}
}

// RegisterRoutes 注册所有路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	// Swagger 文档
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"), // Swagger JSON 的 URL
	))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/analytics/daily", h.DailyAnalytics)
		r.Get("/analytics/weekly", h.WeeklyAnalytics)
		r.Get("/revenue", h.Revenue)
		r.Get("/niches", h.Niches)
		r.Get("/prediction/{days}", h.Prediction)

		r.Post("/generate", h.Generate)
		r.Post("/score", h.Score)

		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.GetProduct)
		r.Post("/sales", h.RecordSale)
		r.Get("/customers", h.CustomerAnalytics)
		r.Get("/customers/{email}", h.GetCustomer)

		r.Get("/scheduler", h.SchedulerStatus)
		r.Post("/scheduler/{task}/trigger", h.TriggerTask)
	})
}

// Health godoc
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} models.APIResponse "成功"
// @Failure 500 {object} models.APIResponse "数据库异常"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.automation.HealthCheck(r.Context()); err != nil {
		utils.WriteCustomErrorResponse(w, models.CodeDatabaseError, err.Error(), map[string]interface{}{"status": "unhealthy"})
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"status":    "healthy",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// DailyAnalytics godoc
// @Summary 日报
// @Description 生成指定日期（默认今天，UTC）的运营日报
// @Tags 报表
// @Produce json
// @Param date query string false "日期 YYYY-MM-DD"
// @Success 200 {object} models.APIResponse{data=models.DailyReport} "成功"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Router /api/analytics/daily [get]
func (h *Handler) DailyAnalytics(w http.ResponseWriter, r *http.Request) {
	day := h.now()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			utils.WriteErrorResponse(w, models.CodeInvalidParams, map[string]interface{}{"param": "date"})
			return
		}
		day = parsed
	}

	report, err := h.analytics.DailyReport(r.Context(), day)
	if err != nil {
		utils.WriteCustomErrorResponse(w, models.CodeDatabaseError, err.Error(), map[string]interface{}{})
		return
	}
	utils.WriteSuccessResponse(w, report)
}

// WeeklyAnalytics godoc
// @Summary 周报
// @Tags 报表
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.WeeklyReport} "成功"
// @Router /api/analytics/weekly [get]
func (h *Handler) WeeklyAnalytics(w http.ResponseWriter, r *http.Request) {
	report, err := h.analytics.WeeklyReport(r.Context(), h.now())
	if err != nil {
		utils.WriteCustomErrorResponse(w, models.CodeDatabaseError, err.Error(), map[string]interface{}{})
		return
	}
	utils.WriteSuccessResponse(w, report)
}

// Revenue godoc
// @Summary 收入指标
// @Tags 报表
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.RevenueMetrics} "成功"
// @Router /api/revenue [get]
func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.analytics.RevenueMetrics(r.Context(), h.now())
	if err != nil {
		utils.WriteCustomErrorResponse(w, models.CodeDatabaseError, err.Error(), map[string]interface{}{})
		return
	}
	utils.WriteSuccessResponse(w, metrics)
}

// Niches godoc
// @Summary 领域表现
// @Tags 报表
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]models.NichePerformance} "成功"
// @Router /api/niches [get]
func (h *Handler) Niches(w http.ResponseWriter, r *http.Request) {
	perf, err := h.analytics.NichePerformance(r.Context())
	if err != nil {
		utils.WriteCustomErrorResponse(w, models.CodeDatabaseError, err.Error(), map[string]interface{}{})
		return
	}
	utils.WriteSuccessResponse(w, perf)
}

// Prediction godoc
// @Summary 收入预测
// @Tags 报表
// @Produce json
// @Param days path int true "预测天数 1-365"
// @Success 200 {object} models.APIResponse{data=models.RevenuePrediction} "成功"
// @Failure 400 {object} models.APIResponse "参数错误或数据不足"
// @Router /api/prediction/{days} [get]
func (h *Handler) Prediction(w http.ResponseWriter, r *http.Request) {
	days, err := strconv.Atoi(chi.URLParam(r, "days"))
	if err != nil || days < 1 || days > 365 {
		utils.WriteErrorResponse(w, models.CodeInvalidParams, map[string]interface{}{"param": "days"})
		return
	}

	prediction, err := h.analytics.PredictRevenue(r.Context(), h.now(), days)
	switch {
	case errors.Is(err, repository.ErrInsufficientData):
		utils.WriteErrorResponse(w, models.CodeNoReportData, prediction)
	case err != nil:
		utils.WriteCustomErrorResponse(w, models.CodeDatabaseError, err.Error(), map[string]interface{}{})
	default:
		utils.WriteSuccessResponse(w, prediction)
	}
}

// Generate godoc
// @Summary 手动运行批量生成
// @Description dry_run 为 true 时只生成并返回候选，不上架也不入库
// @Tags 生成
// @Accept json
// @Produce json
// @Param request body models.GenerateRequest false "生成参数"
// @Success 200 {object} models.APIResponse{data=models.GenerateResult} "成功"
// @Failure 400 {object} models.APIResponse "已有批量生成正在运行"
// @Failure 500 {object} models.APIResponse "生成失败"
// @Router /api/generate [post]
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if r.ContentLength != 0 {
		if !utils.DecodeJSONBody(w, r, &req) {
			return
		}
	}

	result, err := h.automation.Run(r.Context(), services.RunOptions{DryRun: req.DryRun, Seed: req.Seed})
	if errors.Is(err, services.ErrRunInProgress) {
		utils.WriteCustomErrorResponse(w, models.CodeTaskRunning, err.Error(), map[string]interface{}{})
		return
	}
	if err != nil {
		utils.WriteCustomErrorResponse(w, models.CodeGenerationError, err.Error(), map[string]interface{}{"batch_id": result.BatchID})
		return
	}
	utils.WriteSuccessResponse(w, result)
}

// Score godoc
// @Summary 提示词质量评分
// @Tags 生成
// @Accept json
// @Produce json
// @Param request body models.ScoreRequest true "待评分文本"
// @Success 200 {object} models.APIResponse{data=models.ScoreResponse} "成功"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Router /api/score [post]
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	var req models.ScoreRequest
	if !utils.DecodeJSONBody(w, r, &req) {
		return
	}
	if req.Text == "" {
		utils.WriteErrorResponse(w, models.CodeMissingParams, map[string]interface{}{"param": "text"})
		return
	}

	score := services.ScorePrompt(req.Text)
	utils.WriteSuccessResponse(w, models.ScoreResponse{
		Score:     score,
		WordCount: utils.CountWords(req.Text),
		Passed:    score >= h.minQuality,
	})
}

// ListProducts godoc
// @Summary 最近的商品
// @Tags 商品
// @Produce json
// @Param limit query int false "数量，默认20，最大100"
// @Success 200 {object} models.APIResponse{data=[]models.Product} "成功"
// @Router /api/products [get]
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			utils.WriteErrorResponse(w, models.CodeInvalidParams, map[string]interface{}{"param": "limit"})
			return
		}
		limit = n
	}

	products, err := h.products.ListRecent(r.Context(), limit)
	if err != nil {
		utils.WriteCustomErrorResponse(w, models.CodeDatabaseError, err.Error(), map[string]interface{}{})
		return
	}
	utils.WriteSuccessResponse(w, products)
}

// GetProduct godoc
// @Summary 商品详情及最新指标
// @Tags 商品
// @Produce json
// @Param id path string true "商品ID"
// @Success 200 {object} models.APIResponse "成功"
// @Failure 404 {object} models.APIResponse "商品不存在"
// @Router /api/products/{id} [get]
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, err := h.products.Get(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		utils.WriteErrorResponse(w, models.CodeProductNotFound, map[string]interface{}{"id": id})
		return
	}
	if err != nil {
		utils.WriteCustomErrorResponse(w, models.CodeDatabaseError, err.Error(), map[string]interface{}{})
		return
	}

	metrics, err := h.metrics.Latest(r.Context(), id)
	if err != nil {
		utils.WriteCustomErrorResponse(w, models.CodeDatabaseError, err.Error(), map[string]interface{}{})
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"product": product,
		"metrics": metrics,
	})
}

// RecordSale godoc
// @Summary 记录一笔销售
// @Tags 商品
// @Accept json
// @Produce json
// @Param request body models.SaleRequest true "销售信息，金额单位为美分"
// @Success 200 {object} models.APIResponse{data=models.Sale} "成功"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Failure 404 {object} models.APIResponse "商品不存在"
// @Router /api/sales [post]
func (h *Handler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req models.SaleRequest
	if !utils.DecodeJSONBody(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		utils.WriteErrorResponse(w, models.CodeMissingParams, map[string]interface{}{"param": "product_id"})
		return
	}
	if req.Amount <= 0 {
		utils.WriteErrorResponse(w, models.CodeInvalidParams, map[string]interface{}{"param": "amount"})
		return
	}

	if _, err := h.products.Get(r.Context(), req.ProductID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.WriteErrorResponse(w, models.CodeProductNotFound, map[string]interface{}{"id": req.ProductID})
			return
		}
		utils.WriteCustomErrorResponse(w, models.CodeDatabaseError, err.Error(), map[string]interface{}{})
		return
	}

	sale := models.Sale{
		ProductID:     req.ProductID,
		Amount:        req.Amount,
		CustomerEmail: req.CustomerEmail,
		Platform:      req.Platform,
		SaleDate:      h.now().UTC().Truncate(time.Second),
	}
	if sale.Platform == "" {
		sale.Platform = "whop"
	}
	id, err := h.sales.Record(r.Context(), sale)
	if err != nil {
		utils.WriteCustomErrorResponse(w, models.CodeDatabaseError, err.Error(), map[string]interface{}{})
		return
	}
	sale.ID = id
	h.log.Info("记录销售", "product_id", sale.ProductID, "amount", sale.Amount)
	utils.WriteSuccessResponse(w, sale)
}

// CustomerAnalytics godoc
// @Summary 客户统计
// @Description 客户总数、本月新客、客户生命周期价值、消费前10和按购买次数的分层
// @Tags 客户
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.CustomerAnalytics} "成功"
// @Router /api/customers [get]
func (h *Handler) CustomerAnalytics(w http.ResponseWriter, r *http.Request) {
	report, err := h.customers.Analytics(r.Context(), h.now())
	if err != nil {
		utils.WriteCustomErrorResponse(w, models.CodeDatabaseError, err.Error(), map[string]interface{}{})
		return
	}
	utils.WriteSuccessResponse(w, report)
}

// GetCustomer godoc
// @Summary 客户详情
// @Tags 客户
// @Produce json
// @Param email path string true "客户邮箱"
// @Success 200 {object} models.APIResponse{data=models.Customer} "成功"
// @Failure 404 {object} models.APIResponse "客户不存在"
// @Router /api/customers/{email} [get]
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	customer, err := h.customers.Get(r.Context(), email)
	if errors.Is(err, repository.ErrNotFound) {
		utils.WriteErrorResponse(w, models.CodeCustomerNotFound, map[string]interface{}{"email": email})
		return
	}
	if err != nil {
		utils.WriteCustomErrorResponse(w, models.CodeDatabaseError, err.Error(), map[string]interface{}{})
		return
	}
	utils.WriteSuccessResponse(w, customer)
}

// SchedulerStatus godoc
// @Summary 定时任务状态
// @Tags 系统
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]models.TaskSnapshot} "成功"
// @Router /api/scheduler [get]
func (h *Handler) SchedulerStatus(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		utils.WriteSuccessResponse(w, []models.TaskSnapshot{})
		return
	}
	utils.WriteSuccessResponse(w, h.scheduler.Status())
}

// TriggerTask godoc
// @Summary 立即运行定时任务
// @Tags 系统
// @Produce json
// @Param task path string true "任务名"
// @Success 200 {object} models.APIResponse "已触发"
// @Failure 400 {object} models.APIResponse "未知任务或任务正在运行"
// @Router /api/scheduler/{task}/trigger [post]
func (h *Handler) TriggerTask(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "task")
	if h.scheduler == nil {
		utils.WriteErrorResponse(w, models.CodeUnknownTask, map[string]interface{}{"task": name})
		return
	}

	err := h.scheduler.Trigger(name)
	switch {
	case errors.Is(err, scheduler.ErrUnknownTask):
		utils.WriteErrorResponse(w, models.CodeUnknownTask, map[string]interface{}{"task": name})
	case errors.Is(err, scheduler.ErrTaskRunning):
		utils.WriteCustomErrorResponse(w, models.CodeTaskRunning, err.Error(), map[string]interface{}{"task": name})
	case err != nil:
		utils.WriteCustomErrorResponse(w, models.CodeServerError, err.Error(), map[string]interface{}{})
	default:
		utils.WriteSuccessResponse(w, map[string]interface{}{"task": name, "triggered": true})
	}
}

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"ai_prompt_factory/config"
	"ai_prompt_factory/models"
)

// 任务名称
const (
	TaskDailyGeneration = "daily_generation"
	TaskDailyAnalytics  = "daily_analytics"
	TaskWeeklyReport    = "weekly_report"
	TaskHealthCheck     = "health_check"
	TaskStatsRefresh    = "stats_refresh"
)

var (
	ErrUnknownTask = errors.New("未知的定时任务")
	ErrTaskRunning = errors.New("任务正在运行")
	ErrStopped     = errors.New("调度器已停止")
)

// Jobs 定时任务的实际执行者，由 AutomationService 实现
type Jobs interface {
	RunDaily(ctx context.Context) error
	DailyAnalytics(ctx context.Context) (models.DailyReport, error)
	WeeklyReport(ctx context.Context) (models.WeeklyReport, error)
	HealthCheck(ctx context.Context) error
	RefreshProductStats(ctx context.Context) (int, error)
}

// 任务状态
type TaskStatus struct {
	LastRun     time.Time
	IsRunning   bool
	Description string
	LastError   string
}

type task struct {
	name    string
	spec    string
	run     func(ctx context.Context) error
	entryID cron.EntryID
	status  TaskStatus
}

// 任务调度器
type Scheduler struct {
	cron   *cron.Cron
	tasks  map[string]*task
	order  []string
	mutex  sync.Mutex
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger

	// Stop 之后不再接受手动触发，wg.Add 不能与 wg.Wait 并发
	stopped bool
}

// 创建新的调度器，任务在 Start 之后才会被触发
func New(cfg *config.Config, jobs Jobs, log *slog.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("加载时区失败: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		tasks:  make(map[string]*task),
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
	if err := s.initTasks(cfg, jobs); err != nil {
		cancel()
		return nil, err
	}
	return s, nil
}

func dailySpec(hhmm string, weekday string) (string, string, error) {
	hour, minute, err := config.ParseTimeOfDay(hhmm)
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf("%d %d * * %s", minute, hour, weekday), fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// 初始化任务
func (s *Scheduler) initTasks(cfg *config.Config, jobs Jobs) error {
	var genSpec, genDesc string
	if cfg.Debug.Enabled {
		// Debug模式：按配置的秒数间隔运行
		freq := cfg.Debug.GenerationFreq
		if freq <= 0 {
			freq = 1800
		}
		genSpec = fmt.Sprintf("@every %ds", freq)
		genDesc = fmt.Sprintf("每日批量生成 (Debug模式: 每%d秒)", freq)
		s.log.Info("Debug模式已启用", "frequency_seconds", freq)
	} else {
		spec, at, err := dailySpec(cfg.Scheduler.GenerationTime, "*")
		if err != nil {
			return fmt.Errorf("generation_time: %w", err)
		}
		genSpec, genDesc = spec, fmt.Sprintf("每日批量生成 (%s)", at)
	}
	if err := s.add(TaskDailyGeneration, genSpec, genDesc, jobs.RunDaily); err != nil {
		return err
	}

	spec, at, err := dailySpec(cfg.Scheduler.AnalyticsTime, "*")
	if err != nil {
		return fmt.Errorf("analytics_time: %w", err)
	}
	err = s.add(TaskDailyAnalytics, spec, fmt.Sprintf("每日运营报表 (%s)", at), func(ctx context.Context) error {
		_, err := jobs.DailyAnalytics(ctx)
		return err
	})
	if err != nil {
		return err
	}

	spec, at, err = dailySpec(cfg.Scheduler.WeeklyTime, "1")
	if err != nil {
		return fmt.Errorf("weekly_time: %w", err)
	}
	err = s.add(TaskWeeklyReport, spec, fmt.Sprintf("周报 (每周一 %s)", at), func(ctx context.Context) error {
		_, err := jobs.WeeklyReport(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if cfg.Scheduler.HealthCheck {
		if err := s.add(TaskHealthCheck, "@hourly", "健康检查 (每小时)", jobs.HealthCheck); err != nil {
			return err
		}
	}
	if cfg.Whop.StatsEnabled {
		err = s.add(TaskStatsRefresh, "30 * * * *", "商品统计刷新 (每小时30分)", func(ctx context.Context) error {
			_, err := jobs.RefreshProductStats(ctx)
			return err
		})
		if err != nil {
			return err
		}
	}

	s.log.Info("定时任务初始化完成", "task_count", len(s.tasks))
	return nil
}

func (s *Scheduler) add(name, spec, description string, run func(ctx context.Context) error) error {
	t := &task{
		name:   name,
		spec:   spec,
		run:    run,
		status: TaskStatus{Description: description},
	}
	id, err := s.cron.AddFunc(spec, func() { s.runTask(t) })
	if err != nil {
		return fmt.Errorf("注册任务 %s 失败: %w", name, err)
	}
	t.entryID = id
	s.tasks[name] = t
	s.order = append(s.order, name)
	return nil
}

// Start 启动调度器
func (s *Scheduler) Start() {
	s.cron.Start()
	for _, snap := range s.Status() {
		s.log.Info("定时任务已注册", "task", snap.Description, "next_run", snap.NextRun)
	}
	s.log.Info("调度器已启动")
}

// Stop 停止调度并取消运行中的任务，返回的 context 在所有任务退出后结束
func (s *Scheduler) Stop() context.Context {
	s.mutex.Lock()
	s.stopped = true
	s.mutex.Unlock()

	cronCtx := s.cron.Stop()
	s.cancel()

	done, finish := context.WithCancel(context.Background())
	go func() {
		<-cronCtx.Done()
		s.wg.Wait()
		finish()
	}()
	return done
}

// Trigger 立即异步执行任务，任务正在运行时返回 ErrTaskRunning，停止后返回 ErrStopped
func (s *Scheduler) Trigger(name string) error {
	s.mutex.Lock()
	if s.stopped {
		s.mutex.Unlock()
		return ErrStopped
	}
	t, ok := s.tasks[name]
	if !ok {
		s.mutex.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	if t.status.IsRunning {
		s.mutex.Unlock()
		return ErrTaskRunning
	}
	t.status.IsRunning = true
	s.wg.Add(1)
	s.mutex.Unlock()

	go func() {
		defer s.wg.Done()
		s.execute(t)
	}()
	return nil
}

// 运行任务，同一任务的重叠触发会被跳过
func (s *Scheduler) runTask(t *task) {
	s.mutex.Lock()
	if t.status.IsRunning {
		s.mutex.Unlock()
		s.log.Warn("任务仍在运行，跳过本次触发", "task", t.name)
		return
	}
	t.status.IsRunning = true
	s.mutex.Unlock()

	s.execute(t)
}

func (s *Scheduler) execute(t *task) {
	start := time.Now()
	s.log.Info("开始执行任务", "task", t.status.Description)

	err := s.safeRun(t)

	s.mutex.Lock()
	t.status.IsRunning = false
	t.status.LastRun = start
	t.status.LastError = ""
	if err != nil {
		t.status.LastError = err.Error()
	}
	s.mutex.Unlock()

	if err != nil {
		s.log.Error("任务执行失败", "task", t.name, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	s.log.Info("任务执行完成", "task", t.name, "duration_ms", time.Since(start).Milliseconds())
}

func (s *Scheduler) safeRun(t *task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("任务 panic: %v", r)
		}
	}()
	return t.run(s.ctx)
}

// Status 按注册顺序返回任务状态
func (s *Scheduler) Status() []models.TaskSnapshot {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	snapshots := make([]models.TaskSnapshot, 0, len(s.order))
	for _, name := range s.order {
		t := s.tasks[name]
		snap := models.TaskSnapshot{
			Name:        name,
			Description: t.status.Description,
			IsRunning:   t.status.IsRunning,
			LastError:   t.status.LastError,
		}
		if !t.status.LastRun.IsZero() {
			snap.LastRun = t.status.LastRun.Format(time.RFC3339)
		}
		if next := s.cron.Entry(t.entryID).Next; !next.IsZero() {
			snap.NextRun = next.Format(time.RFC3339)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots
}

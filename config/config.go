package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 默认配置文件路径
const DefaultPath = "config.yaml"

var timeOfDayRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Addr string `yaml:"-"` // 不从配置文件读取，而是在加载后计算
	} `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	// 提示词生成相关配置
	Generation GenerationConfig `yaml:"generation"`
	Pricing    PricingConfig    `yaml:"pricing"`
	Whop       WhopConfig       `yaml:"whop"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Debug      struct {
		Enabled        bool `yaml:"enabled"`         // 是否启用debug模式
		GenerationFreq int  `yaml:"generation_freq"` // debug模式下生成频率，单位：秒
	} `yaml:"debug"`
}

type LogConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type DatabaseConfig struct {
	Driver          string `yaml:"driver"` // mysql / sqlite
	Path            string `yaml:"path"`   // sqlite 文件路径
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	Database        string `yaml:"database"`
	Charset         string `yaml:"charset"`
	ParseTime       bool   `yaml:"parse_time"`
	DSN             string `yaml:"-"`                 // 不从配置文件读取，而是在加载后计算
	MaxOpenConns    int    `yaml:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int    `yaml:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // 连接最大生命周期（分钟）
}

type LLMConfig struct {
	Provider   string `yaml:"provider"` // openai / siliconflow / gemini / disabled
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`       // 正文生成模型
	TitleModel string `yaml:"title_model"` // 标题、描述生成模型，为空时使用 Model
	TimeoutSec int    `yaml:"timeout_sec"`
}

type GenerationConfig struct {
	Niches        []string            `yaml:"niches"`          // 按顺序遍历
	Keywords      map[string][]string `yaml:"keywords"`        // 覆盖或补充内置关键词
	PerNicheCount int                 `yaml:"per_niche_count"` // 每个领域生成的候选数
	DailyCap      int                 `yaml:"daily_cap"`       // 每日最多保留的数量
	MinQuality    float64             `yaml:"min_quality"`     // 最低质量分
	Concurrency   int                 `yaml:"concurrency"`     // 生成并发数，1 表示串行
	Seed          uint64              `yaml:"seed"`            // 0 表示每次随机
}

type PricingConfig struct {
	BasePrices   map[string]int `yaml:"base_prices"` // 单位：美元
	DefaultPrice int            `yaml:"default_price"`
}

type WhopConfig struct {
	BaseURL      string  `yaml:"base_url"`
	APIKey       string  `yaml:"api_key"`
	AutoPublish  bool    `yaml:"auto_publish"`
	RatePerSec   float64 `yaml:"rate_per_sec"` // 上架速率限制
	TimeoutSec   int     `yaml:"timeout_sec"`
	CompanyName  string  `yaml:"company_name"`
	ForceMock    bool    `yaml:"force_mock"`
	StatsEnabled bool    `yaml:"stats_enabled"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type SchedulerConfig struct {
	Timezone       string `yaml:"timezone"`
	GenerationTime string `yaml:"generation_time"` // HH:MM
	AnalyticsTime  string `yaml:"analytics_time"`  // HH:MM
	WeeklyTime     string `yaml:"weekly_time"`     // 每周一 HH:MM
	HealthCheck    bool   `yaml:"health_check"`    // 每小时健康检查
}

// Default 返回与原系统一致的默认配置
func Default() *Config {
	var cfg Config
	cfg.Server.Host = "localhost"
	cfg.Server.Port = 8000

	cfg.Log = LogConfig{Level: "info", Format: "text", Output: "stdout"}

	cfg.Database = DatabaseConfig{
		Driver:          "sqlite",
		Path:            "data/prompt_factory.db",
		Port:            3306,
		Charset:         "utf8mb4",
		ParseTime:       true,
		MaxOpenConns:    50,
		MaxIdleConns:    10,
		ConnMaxLifetime: 60,
	}

	cfg.LLM = LLMConfig{
		Provider:   "openai",
		BaseURL:    "https://api.openai.com",
		Model:      "gpt-4",
		TitleModel: "gpt-3.5-turbo",
		TimeoutSec: 60,
	}

	cfg.Generation = GenerationConfig{
		Niches: []string{
			"Business & Marketing",
			"Content Creation & Copywriting",
			"E-commerce & Sales",
			"Programming & Development",
			"Personal Productivity",
		},
		PerNicheCount: 3,
		DailyCap:      50,
		MinQuality:    0.8,
		Concurrency:   1,
	}

	cfg.Pricing = PricingConfig{
		BasePrices: map[string]int{
			"Business & Marketing":           35,
			"E-commerce & Sales":             45,
			"Programming & Development":      50,
			"Content Creation & Copywriting": 25,
			"Personal Productivity":          20,
		},
		DefaultPrice: 30,
	}

	cfg.Whop = WhopConfig{
		BaseURL:      "https://api.whop.com/v1",
		AutoPublish:  true,
		RatePerSec:   1,
		TimeoutSec:   15,
		CompanyName:  "Nosyt LLC",
		StatsEnabled: true,
	}

	cfg.Scheduler = SchedulerConfig{
		Timezone:       "Local",
		GenerationTime: "09:00",
		AnalyticsTime:  "18:00",
		WeeklyTime:     "10:00",
		HealthCheck:    true,
	}
	cfg.Debug.GenerationFreq = 1800
	return &cfg
}

// Load 加载配置：默认值 -> config.yaml -> 环境变量
func Load(path string) (*Config, error) {
	// 首先尝试加载.env文件中的环境变量
	_ = godotenv.Load() // 忽略错误，如果.env文件不存在，继续使用系统环境变量

	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
		}
		log.Printf("Loading configuration from %s", path)
	case errors.Is(err, os.ErrNotExist):
		log.Printf("配置文件 %s 不存在，使用默认配置和环境变量", path)
	default:
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	applyEnv(cfg)

	// 计算 Server.Addr 字段
	cfg.Server.Addr = fmt.Sprintf(":%d", cfg.Server.Port)
	cfg.Database.DSN = buildDSN(cfg.Database)

	return cfg, nil
}

// applyEnv 从环境变量中加载敏感信息
func applyEnv(cfg *Config) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	// 数据库用户名和密码
	if v := os.Getenv("DATABASE_USERNAME"); v != "" {
		cfg.Database.Username = v
	}
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	// LLM API密钥，按提供方取对应的环境变量
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	} else if v := os.Getenv(providerKeyEnv(cfg.LLM.Provider)); v != "" {
		cfg.LLM.APIKey = v
	}

	if v := os.Getenv("WHOP_API_KEY"); v != "" {
		cfg.Whop.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Telegram.ChatID = id
		}
	}
}

func providerKeyEnv(provider string) string {
	switch strings.ToLower(provider) {
	case "gemini":
		return "GEMINI_API_KEY"
	case "siliconflow":
		return "SILICONFLOW_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// buildDSN 计算 DSN 字段，已通过环境变量给出时直接使用
func buildDSN(db DatabaseConfig) string {
	if db.DSN != "" {
		return db.DSN
	}
	if strings.EqualFold(db.Driver, "sqlite") {
		return db.Path
	}

	charset := db.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	parseTime := ""
	if db.ParseTime {
		parseTime = "&parseTime=true"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s%s",
		db.Username,
		db.Password,
		db.Host,
		db.Port,
		db.Database,
		charset,
		parseTime)
}

// Validate 启动时校验配置，任何错误都应在生成开始之前暴露
func (c *Config) Validate() error {
	var errs []error

	g := c.Generation
	if len(g.Niches) == 0 {
		errs = append(errs, errors.New("generation.niches 不能为空"))
	}
	if g.PerNicheCount <= 0 {
		errs = append(errs, fmt.Errorf("generation.per_niche_count 必须为正整数: %d", g.PerNicheCount))
	}
	if g.DailyCap <= 0 {
		errs = append(errs, fmt.Errorf("generation.daily_cap 必须为正整数: %d", g.DailyCap))
	}
	if g.MinQuality < 0 || g.MinQuality > 1 {
		errs = append(errs, fmt.Errorf("generation.min_quality 必须在 [0,1] 之间: %v", g.MinQuality))
	}
	if g.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("generation.concurrency 不能为负数: %d", g.Concurrency))
	}
	for _, niche := range g.Niches {
		if len(c.KeywordsFor(niche)) == 0 {
			errs = append(errs, fmt.Errorf("领域 %q 没有可用关键词", niche))
		}
	}

	switch strings.ToLower(c.Database.Driver) {
	case "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("database.driver 不支持: %q", c.Database.Driver))
	}

	switch strings.ToLower(c.LLM.Provider) {
	case "openai", "siliconflow", "gemini", "disabled":
	default:
		errs = append(errs, fmt.Errorf("llm.provider 不支持: %q", c.LLM.Provider))
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level 不支持: %q", c.Log.Level))
	}

	for name, v := range map[string]string{
		"scheduler.generation_time": c.Scheduler.GenerationTime,
		"scheduler.analytics_time":  c.Scheduler.AnalyticsTime,
		"scheduler.weekly_time":     c.Scheduler.WeeklyTime,
	} {
		if !timeOfDayRegex.MatchString(v) {
			errs = append(errs, fmt.Errorf("%s 格式错误（应为 HH:MM）: %q", name, v))
		}
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("scheduler.timezone 无效: %w", err))
	}

	if c.Whop.RatePerSec < 0 {
		errs = append(errs, fmt.Errorf("whop.rate_per_sec 不能为负数: %v", c.Whop.RatePerSec))
	}

	return errors.Join(errs...)
}

// ParseTimeOfDay 解析 HH:MM
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	m := timeOfDayRegex.FindStringSubmatch(s)
	if len(m) != 3 {
		return 0, 0, fmt.Errorf("时间格式错误: %q (expected HH:MM)", s)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	return hour, minute, nil
}

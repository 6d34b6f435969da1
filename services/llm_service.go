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
	"os"
	"strings"
	"time"

	"ai_prompt_factory/config"
	"ai_prompt_factory/utils"
)

// ErrLLMDisabled LLM未启用或缺少密钥
var ErrLLMDisabled = errors.New("LLM 未启用")

// CompletionRequest 一次文本生成请求
type CompletionRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
	// 为空时使用生成器的默认模型
	Model string
}

// TextGenerator 文本生成后端
type TextGenerator interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// NewTextGenerator 按配置选择LLM后端，缺少密钥时退化为 DisabledGenerator
func NewTextGenerator(ctx context.Context, cfg config.LLMConfig, log *slog.Logger) (TextGenerator, error) {
	provider := strings.ToLower(cfg.Provider)
	apiKey := resolveAPIKey(cfg.APIKey, log)
	if provider == "disabled" || apiKey == "" {
		log.Warn("未配置LLM密钥，所有内容使用备用模板", "provider", cfg.Provider)
		return DisabledGenerator{}, nil
	}
	cfg.APIKey = apiKey

	switch provider {
	case "openai", "siliconflow":
		return NewOpenAICompatibleGenerator(cfg, log), nil
	case "gemini":
		return NewGeminiGenerator(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("不支持的LLM提供商: %q", cfg.Provider)
	}
}

// 配置中的 ${ENV} 形式从环境变量读取
func resolveAPIKey(apiKey string, log *slog.Logger) string {
	if strings.HasPrefix(apiKey, "${") && strings.HasSuffix(apiKey, "}") {
		envName := apiKey[2 : len(apiKey)-1]
		log.Info("从环境变量获取API Key", "env_var", envName)
		return os.Getenv(envName)
	}
	return apiKey
}

// DisabledGenerator 总是返回 ErrLLMDisabled
type DisabledGenerator struct{}

func (DisabledGenerator) Complete(context.Context, CompletionRequest) (string, error) {
	return "", ErrLLMDisabled
}

// 定义OpenAI兼容接口的请求和响应结构
type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// OpenAICompatibleGenerator 调用 {base_url}/v1/chat/completions，适用于 OpenAI 和 SiliconFlow
type OpenAICompatibleGenerator struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	log     *slog.Logger
}

func NewOpenAICompatibleGenerator(cfg config.LLMConfig, log *slog.Logger) *OpenAICompatibleGenerator {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAICompatibleGenerator{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (g *OpenAICompatibleGenerator) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}
	g.log.Debug("LLM请求提示词预览", "model", model, "prompt_preview", utils.Preview(req.User, 100))

	var messages []message
	if req.System != "" {
		messages = append(messages, message{Role: "system", Content: req.System})
	}
	messages = append(messages, message{Role: "user", Content: req.User})

	reqJSON, err := json.Marshal(chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("序列化请求体失败: %w", err)
	}

	url := g.baseURL + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqJSON))
	if err != nil {
		return "", fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	startTime := time.Now()
	resp, err := g.client.Do(httpReq)
	duration := time.Since(startTime)
	if err != nil {
		g.log.Error("发送请求失败", "error", err, "duration_ms", duration.Milliseconds())
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取响应失败: %w", err)
	}
	g.log.Debug("LLM响应状态", "status_code", resp.StatusCode, "response_size", len(body), "duration_ms", duration.Milliseconds())

	if resp.StatusCode != http.StatusOK {
		g.log.Error("API请求失败", "status", resp.StatusCode, "response", utils.Preview(string(body), 500))
		return "", fmt.Errorf("API请求失败，状态码: %d", resp.StatusCode)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("API返回空结果")
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("API返回空内容")
	}
	g.log.Debug("LLM调用完成", "total_tokens", completion.Usage.TotalTokens)
	return content, nil
}

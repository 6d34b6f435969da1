package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"ai_prompt_factory/config"
)

// GeminiGenerator 通过 Google GenAI SDK 生成文本
type GeminiGenerator struct {
	client *genai.Client
	model  string
	log    *slog.Logger
}

func NewGeminiGenerator(ctx context.Context, cfg config.LLMConfig, log *slog.Logger) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("Gemini API key 为空")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 GenAI 客户端失败: %w", err)
	}

	model := cfg.Model
	if model == "" || strings.HasPrefix(model, "gpt-") {
		model = "gemini-2.0-flash"
	}
	return &GeminiGenerator{client: client, model: model, log: log}, nil
}

func (g *GeminiGenerator) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	model := req.Model
	if model == "" || strings.HasPrefix(model, "gpt-") {
		model = g.model
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.System != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(req.User), genCfg)
	if err != nil {
		g.log.Error("Gemini 请求失败", "model", model, "error", err)
		return "", err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("Gemini 返回空内容")
	}
	return text, nil
}

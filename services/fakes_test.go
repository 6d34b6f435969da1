package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"ai_prompt_factory/models"
)

var errFakeLLM = errors.New("fake llm failure")

// scriptedLLM 按系统提示词区分正文、标题、描述请求
type scriptedLLM struct {
	mu    sync.Mutex
	calls []CompletionRequest

	body        func(req CompletionRequest) (string, error)
	title       func(req CompletionRequest) (string, error)
	description func(req CompletionRequest) (string, error)
}

func (s *scriptedLLM) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	var fn func(CompletionRequest) (string, error)
	switch req.System {
	case bodySystemPrompt:
		fn = s.body
	case titleSystemPrompt:
		fn = s.title
	case descriptionSystemPrompt:
		fn = s.description
	}
	if fn == nil {
		return "", errFakeLLM
	}
	return fn(req)
}

func (s *scriptedLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func fixed(text string) func(CompletionRequest) (string, error) {
	return func(CompletionRequest) (string, error) { return text, nil }
}

// echoBody 正文包含关键词行，结果只取决于请求内容
func echoBody(req CompletionRequest) (string, error) {
	for _, line := range strings.Split(req.User, "\n") {
		if strings.HasPrefix(line, "- Focus on: ") {
			return "1. Create a specific strategic plan for " + strings.TrimPrefix(line, "- Focus on: "), nil
		}
	}
	return "", errFakeLLM
}

type staticKeywords map[string][]string

func (k staticKeywords) KeywordsFor(niche string) []string {
	return k[niche]
}

type fakePublisher struct {
	mu     sync.Mutex
	calls  int
	failAt map[int]bool
	err    error
	// err 非空时仍先返回前 errAfter 个上架成功的商品
	errAfter int
	stats    models.ProductStats
	statIDs  []string
}

func (f *fakePublisher) Publish(ctx context.Context, candidates []models.Candidate) ([]PublishedCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	var out []PublishedCandidate
	for i, c := range candidates {
		if f.failAt[i] {
			continue
		}
		out = append(out, PublishedCandidate{
			Index:         i,
			Candidate:     c,
			WhopProductID: "prod_" + string(rune('a'+i)),
			PriceCents:    4500,
		})
	}
	if f.err != nil {
		if len(out) > f.errAfter {
			out = out[:f.errAfter]
		}
		return out, f.err
	}
	return out, nil
}

func (f *fakePublisher) ProductStats(ctx context.Context, productID string) (models.ProductStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statIDs = append(f.statIDs, productID)
	return f.stats, nil
}

type captureNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (c *captureNotifier) Notify(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, text)
	return nil
}

func (c *captureNotifier) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.messages...)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"ai_prompt_factory/models"
	"ai_prompt_factory/utils"
)

// ErrNoKeywords 领域没有可用的关键词
var ErrNoKeywords = errors.New("关键词列表为空")

const (
	maxSelectedKeywords = 3
	// 生成标题和描述时引用正文的长度
	bodySeedLength = 200

	bodySystemPrompt        = "You are an expert prompt engineer creating valuable AI prompts for business professionals."
	titleSystemPrompt       = "Create catchy, sales-focused titles for AI prompts."
	descriptionSystemPrompt = "Write compelling product descriptions for AI prompts that highlight benefits and value."
)

// PromptGenerator 生成单条提示词候选，LLM失败时使用备用模板
type PromptGenerator struct {
	llm        TextGenerator
	titleModel string
	log        *slog.Logger
	now        func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPromptGenerator titleModel 用于标题和描述，为空时沿用LLM默认模型
func NewPromptGenerator(llm TextGenerator, titleModel string, rng *rand.Rand, log *slog.Logger) *PromptGenerator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &PromptGenerator{
		llm:        llm,
		titleModel: titleModel,
		log:        log,
		now:        time.Now,
		rng:        rng,
	}
}

// Generate 使用生成器自身的随机源生成一条候选
func (g *PromptGenerator) Generate(ctx context.Context, niche string, keywords []string) (models.Candidate, error) {
	if len(keywords) == 0 {
		return models.Candidate{}, ErrNoKeywords
	}
	g.mu.Lock()
	selected, template := pickInputs(g.rng, niche, keywords)
	g.mu.Unlock()
	return g.generate(ctx, niche, selected, template)
}

// GenerateWith 使用调用方提供的随机源，并发生成时每个调用各持有一个
func (g *PromptGenerator) GenerateWith(ctx context.Context, rng *rand.Rand, niche string, keywords []string) (models.Candidate, error) {
	if len(keywords) == 0 {
		return models.Candidate{}, ErrNoKeywords
	}
	selected, template := pickInputs(rng, niche, keywords)
	return g.generate(ctx, niche, selected, template)
}

// pickInputs 无放回抽取至多3个关键词，再均匀选择一个模板
func pickInputs(rng *rand.Rand, niche string, keywords []string) ([]string, string) {
	k := min(maxSelectedKeywords, len(keywords))
	perm := rng.Perm(len(keywords))
	selected := make([]string, 0, k)
	for _, idx := range perm[:k] {
		selected = append(selected, keywords[idx])
	}

	templates := TemplatesFor(niche)
	return selected, templates[rng.IntN(len(templates))]
}

func (g *PromptGenerator) generate(ctx context.Context, niche string, keywords []string, template string) (models.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return models.Candidate{}, err
	}

	candidate := models.Candidate{
		Keywords:     keywords,
		TemplateType: template,
		Niche:        niche,
	}

	body, err := g.llm.Complete(ctx, CompletionRequest{
		System:      bodySystemPrompt,
		User:        buildBodyPrompt(niche, keywords, template),
		MaxTokens:   500,
		Temperature: 0.7,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.Candidate{}, ctxErr
		}
		if !errors.Is(err, ErrLLMDisabled) {
			g.log.Warn("LLM生成正文失败，使用备用模板", "niche", niche, "template", template, "error", err)
		}
		candidate.Body = fallbackBody(niche, keywords, template)
		candidate.Title = fmt.Sprintf("%s for %s", template, niche)
		candidate.Description = fmt.Sprintf("Professional %s prompt for %s focusing on %s",
			strings.ToLower(template), niche, strings.Join(keywords, ", "))
		candidate.Source = models.SourceFallback
		candidate.CreatedAt = g.now()
		return candidate, nil
	}

	candidate.Body = body
	candidate.Source = models.SourceAI
	seed := utils.TruncateRunes(body, bodySeedLength)

	candidate.Title = g.subOutput(ctx, CompletionRequest{
		System:      titleSystemPrompt,
		User:        fmt.Sprintf("Create a compelling title for this %s prompt: %s...", niche, seed),
		MaxTokens:   50,
		Temperature: 0.8,
		Model:       g.titleModel,
	}, fmt.Sprintf("Professional %s AI Prompt", niche))

	candidate.Description = g.subOutput(ctx, CompletionRequest{
		System:      descriptionSystemPrompt,
		User:        fmt.Sprintf("Write a sales description for this %s AI prompt: %s...", niche, seed),
		MaxTokens:   150,
		Temperature: 0.7,
		Model:       g.titleModel,
	}, fmt.Sprintf("High-quality AI prompt for %s professionals. Get instant results and boost your productivity.", niche))

	if err := ctx.Err(); err != nil {
		return models.Candidate{}, err
	}
	candidate.CreatedAt = g.now()
	return candidate, nil
}

// subOutput 生成标题或描述，失败时返回固定文案
func (g *PromptGenerator) subOutput(ctx context.Context, req CompletionRequest, fallback string) string {
	text, err := g.llm.Complete(ctx, req)
	if err != nil {
		g.log.Warn("LLM生成标题或描述失败，使用固定文案", "error", err)
		return fallback
	}
	if cleaned := utils.CleanGeneratedLine(text); cleaned != "" {
		return cleaned
	}
	return fallback
}

func buildBodyPrompt(niche string, keywords []string, template string) string {
	return fmt.Sprintf(`Create a highly effective AI prompt for %s professionals.

Requirements:
- Focus on: %s
- Template style: %s
- Output should be practical and actionable
- Include specific instructions and examples
- Length: 150-300 words
- Professional tone
- End with one clear call-to-action

Generate only the prompt content, no explanations.`, niche, strings.Join(keywords, ", "), template)
}

func fallbackBody(niche string, keywords []string, template string) string {
	kws := strings.Join(keywords, ", ")
	tpl := strings.ToLower(template)

	switch niche {
	case "Business & Marketing":
		return fmt.Sprintf(`Act as an expert marketing strategist. Create a comprehensive %s for %s.

Your response should include:
1. Situation analysis
2. Strategic recommendations
3. Implementation steps
4. Success metrics
5. Risk mitigation strategies

Provide specific, actionable insights that can be immediately implemented.`, tpl, kws)
	case "Content Creation & Copywriting":
		return fmt.Sprintf(`You are a master copywriter. Develop %s content focusing on %s.

Include:
1. Target audience analysis
2. Key messaging strategy
3. Compelling headlines
4. Persuasive body content
5. Strong call-to-action

Make it conversion-focused and emotionally engaging.`, tpl, kws)
	default:
		return fmt.Sprintf("Create professional content about %s using %s approach.", kws, tpl)
	}
}

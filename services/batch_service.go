package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"

	"golang.org/x/sync/errgroup"

	"ai_prompt_factory/config"
	"ai_prompt_factory/models"
)

// KeywordSource 提供领域关键词，*config.Config 实现了该接口
type KeywordSource interface {
	KeywordsFor(niche string) []string
}

// BatchRequest 一次批量生成的参数
type BatchRequest struct {
	Niches        []string
	PerNicheCount int
	DailyCap      int
	MinQuality    float64
	// <=1 时顺序生成
	Concurrency int
	// 非0时结果可复现，且与并发度无关
	Seed uint64
}

// NewBatchRequest 由生成配置构造请求
func NewBatchRequest(cfg config.GenerationConfig) BatchRequest {
	return BatchRequest{
		Niches:        append([]string(nil), cfg.Niches...),
		PerNicheCount: cfg.PerNicheCount,
		DailyCap:      cfg.DailyCap,
		MinQuality:    cfg.MinQuality,
		Concurrency:   cfg.Concurrency,
		Seed:          cfg.Seed,
	}
}

func (r BatchRequest) validate() error {
	var errs []error
	if r.PerNicheCount <= 0 {
		errs = append(errs, fmt.Errorf("per_niche_count 必须大于0: %d", r.PerNicheCount))
	}
	if r.DailyCap <= 0 {
		errs = append(errs, fmt.Errorf("daily_cap 必须大于0: %d", r.DailyCap))
	}
	if r.MinQuality < 0 || r.MinQuality > 1 {
		errs = append(errs, fmt.Errorf("min_quality 必须在[0,1]之间: %v", r.MinQuality))
	}
	return errors.Join(errs...)
}

// BatchService 按领域批量生成、评分、过滤、排序并截断
type BatchService struct {
	generator *PromptGenerator
	keywords  KeywordSource
	log       *slog.Logger
}

func NewBatchService(generator *PromptGenerator, keywords KeywordSource, log *slog.Logger) *BatchService {
	return &BatchService{generator: generator, keywords: keywords, log: log}
}

type slot struct {
	candidate models.Candidate
	ok        bool
}

// GenerateDailyBatch 返回按质量分倒序、不超过 DailyCap 的候选列表。
// 单条候选失败只记录日志并跳过，空批次不是错误
func (s *BatchService) GenerateDailyBatch(ctx context.Context, req BatchRequest) ([]models.Candidate, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	s.log.Info("开始批量生成", "niches", len(req.Niches), "per_niche", req.PerNicheCount, "daily_cap", req.DailyCap)

	// 结果按 (领域序号, 请求序号) 存放，与完成顺序无关
	slots := make([]slot, len(req.Niches)*req.PerNicheCount)

	if req.Concurrency <= 1 {
		for i := range slots {
			if ctx.Err() != nil {
				break
			}
			slots[i] = s.generateOne(ctx, req, i)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(req.Concurrency)
		for i := range slots {
			g.Go(func() error {
				slots[i] = s.generateOne(gctx, req, i)
				return nil
			})
		}
		_ = g.Wait()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := make([]models.Candidate, 0, len(slots))
	for _, sl := range slots {
		if sl.ok {
			batch = append(batch, sl.candidate)
		}
	}

	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].QualityScore > batch[j].QualityScore
	})
	if len(batch) > req.DailyCap {
		batch = batch[:req.DailyCap]
	}

	s.log.Info("批量生成完成", "requested", len(slots), "retained", len(batch))
	return batch, nil
}

func (s *BatchService) generateOne(ctx context.Context, req BatchRequest, index int) slot {
	nicheIdx, reqIdx := index/req.PerNicheCount, index%req.PerNicheCount
	niche := req.Niches[nicheIdx]
	keywords := s.keywords.KeywordsFor(niche)

	var (
		candidate models.Candidate
		err       error
	)
	if req.Seed == 0 && req.Concurrency <= 1 {
		candidate, err = s.generator.Generate(ctx, niche, keywords)
	} else {
		candidate, err = s.generator.GenerateWith(ctx, callRand(req.Seed, nicheIdx, reqIdx), niche, keywords)
	}
	if err != nil {
		s.log.Error("生成候选失败，跳过", "niche", niche, "index", reqIdx, "error", err)
		return slot{}
	}

	candidate.QualityScore = ScorePrompt(candidate.Body)
	if candidate.QualityScore < req.MinQuality {
		s.log.Debug("候选质量不足，丢弃", "niche", niche, "score", candidate.QualityScore, "min", req.MinQuality)
		return slot{}
	}
	return slot{candidate: candidate, ok: true}
}

// callRand 为每次调用派生独立的随机源，seed 为0时使用随机种子
func callRand(seed uint64, nicheIdx, reqIdx int) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, uint64(nicheIdx)<<32|uint64(reqIdx)))
}

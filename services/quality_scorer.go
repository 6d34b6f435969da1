package services

import (
	"strings"

	"ai_prompt_factory/utils"
)

// 每条规则满分为 2（十分位），累计后除以10得到 [0,1] 的分数
const (
	rulePoints = 2
	maxPoints  = 10
)

var (
	structureMarkers    = []string{"1.", "2.", "3.", "•", "-"}
	specificityMarkers  = []string{"specific", "example", "include", "detailed", "step-by-step"}
	professionalMarkers = []string{"professional", "strategic", "analysis", "implementation", "optimization"}
	actionMarkers       = []string{"create", "develop", "analyze", "implement", "optimize", "design"}
)

// ScorePrompt 按长度、结构、具体性、专业性、可执行性五项规则给提示词打分
func ScorePrompt(text string) float64 {
	points := lengthPoints(utils.CountWords(text))

	if containsAny(text, structureMarkers) {
		points += rulePoints
	}

	lower := strings.ToLower(text)
	for _, markers := range [][]string{specificityMarkers, professionalMarkers, actionMarkers} {
		if containsAny(lower, markers) {
			points += rulePoints
		}
	}

	if points > maxPoints {
		points = maxPoints
	}
	return float64(points) / 10
}

func lengthPoints(words int) int {
	switch {
	case words >= 150 && words <= 300:
		return rulePoints
	case words >= 100 && words <= 400:
		return rulePoints / 2
	default:
		return 0
	}
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

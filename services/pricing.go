package services

import (
	"math"

	"ai_prompt_factory/config"
)

// PriceFor 按领域基础价和质量分计算售价（美元），质量系数范围 0.5x ~ 1.5x
func PriceFor(pricing config.PricingConfig, niche string, score float64) int {
	base, ok := pricing.BasePrices[niche]
	if !ok {
		base = pricing.DefaultPrice
	}
	multiplier := 1 + (score - 0.5)
	// 补偿浮点误差，避免 35*1.4 被截断为 48
	return int(math.Floor(float64(base)*multiplier + 1e-9))
}

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ai_prompt_factory/config"
)

func TestPriceFor(t *testing.T) {
	pricing := config.Default().Pricing

	tests := []struct {
		niche string
		score float64
		want  int
	}{
		{"Business & Marketing", 0.8, 45},
		{"Business & Marketing", 1.0, 52},
		{"Business & Marketing", 0.9, 49},
		{"Programming & Development", 0.9, 70},
		{"Personal Productivity", 0.5, 20},
		{"Unknown", 0.8, 39},
		{"Unknown", 0, 15},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PriceFor(pricing, tt.niche, tt.score), "%s %.1f", tt.niche, tt.score)
	}
}

func TestCategoryFor(t *testing.T) {
	assert.Equal(t, "business", CategoryFor("Business & Marketing"))
	assert.Equal(t, "marketing", CategoryFor("Email Marketing"))
	assert.Equal(t, "tools", CategoryFor("Gardening"))
}

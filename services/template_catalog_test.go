package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplatesFor(t *testing.T) {
	for niche := range nicheTemplates {
		assert.Len(t, TemplatesFor(niche), 6, niche)
	}
	assert.Equal(t, []string{"General Framework", "Step-by-Step Guide", "Strategic Approach"}, TemplatesFor("Underwater Basket Weaving"))
}

func TestTemplatesForReturnsCopy(t *testing.T) {
	got := TemplatesFor("Business & Marketing")
	got[0] = "mutated"
	assert.Equal(t, "Strategic Analysis", TemplatesFor("Business & Marketing")[0])

	def := TemplatesFor("unknown")
	def[0] = "mutated"
	assert.Equal(t, "General Framework", TemplatesFor("other")[0])
}

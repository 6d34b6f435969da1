package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai_prompt_factory/config"
	"ai_prompt_factory/logger"
	"ai_prompt_factory/models"
)

type fakeWhop struct {
	mu       sync.Mutex
	payloads []whopProductPayload
	meStatus int
}

func (f *fakeWhop) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer whop-key", r.Header.Get("Authorization"))
		if f.meStatus != 0 {
			w.WriteHeader(f.meStatus)
			return
		}
		_, _ = w.Write([]byte(`{"username":"nosyt"}`))
	})
	mux.HandleFunc("POST /products", func(w http.ResponseWriter, r *http.Request) {
		var p whopProductPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		f.mu.Lock()
		f.payloads = append(f.payloads, p)
		n := len(f.payloads)
		f.mu.Unlock()

		if p.Name == "bad" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error":"invalid"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "prod_" + string(rune('0'+n))})
	})
	mux.HandleFunc("GET /products/{id}/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "prod_1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"views":120,"sales":4,"revenue":180,"conversion_rate":0.033}`))
	})
	return mux
}

func newTestWhop(t *testing.T, fake *fakeWhop) *WhopPublisher {
	t.Helper()
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)
	return NewWhopPublisher(config.WhopConfig{
		BaseURL:     srv.URL,
		APIKey:      "whop-key",
		CompanyName: "Nosyt LLC",
	}, config.Default().Pricing, logger.Discard())
}

func testCandidate(title string) models.Candidate {
	return models.Candidate{
		Title:        title,
		Body:         "1. Create a specific plan",
		Description:  "A great prompt",
		Keywords:     []string{"brand awareness", "AI"},
		TemplateType: "Strategic Analysis",
		Niche:        bmNiche,
		QualityScore: 0.8,
		Source:       models.SourceAI,
		CreatedAt:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestWhopPingAndPublish(t *testing.T) {
	fake := &fakeWhop{}
	p := newTestWhop(t, fake)

	require.NoError(t, p.Ping(context.Background()))
	assert.False(t, p.MockMode())

	published, err := p.Publish(context.Background(), []models.Candidate{testCandidate("Launch Plan"), testCandidate("bad"), testCandidate("Growth Plan")})
	require.NoError(t, err)
	require.Len(t, published, 2)

	assert.Equal(t, 0, published[0].Index)
	assert.Equal(t, "prod_1", published[0].WhopProductID)
	assert.Equal(t, 4500, published[0].PriceCents)
	assert.Equal(t, 2, published[1].Index)
	assert.Equal(t, "prod_3", published[1].WhopProductID)

	require.Len(t, fake.payloads, 3)
	payload := fake.payloads[0]
	assert.Equal(t, 4500, payload.Price)
	assert.Equal(t, "business", payload.Category)
	assert.Equal(t, "digital_product", payload.Type)
	assert.Equal(t, []string{"brand awareness", "AI", "Prompts", "Automation"}, payload.Tags)
	require.Len(t, payload.Files, 1)
	assert.Equal(t, "Launch_Plan.txt", payload.Files[0].Name)
	assert.Contains(t, payload.Files[0].Content, "1. Create a specific plan")
	assert.Contains(t, payload.Description, "Quality Score: 0.8/1.0")
	assert.Contains(t, payload.Description, "Created by Nosyt LLC")
}

func TestWhopPingFailureSwitchesToMock(t *testing.T) {
	fake := &fakeWhop{meStatus: http.StatusUnauthorized}
	p := newTestWhop(t, fake)

	assert.Error(t, p.Ping(context.Background()))
	assert.True(t, p.MockMode())

	published, err := p.Publish(context.Background(), []models.Candidate{testCandidate("A"), testCandidate("B")})
	require.NoError(t, err)
	require.Len(t, published, 2)
	for _, item := range published {
		assert.True(t, strings.HasPrefix(item.WhopProductID, "mock_"), item.WhopProductID)
	}
	assert.NotEqual(t, published[0].WhopProductID, published[1].WhopProductID)
	assert.Empty(t, fake.payloads)
}

func TestWhopWithoutKeyIsMock(t *testing.T) {
	p := NewWhopPublisher(config.WhopConfig{}, config.Default().Pricing, logger.Discard())
	assert.True(t, p.MockMode())
	assert.NoError(t, p.Ping(context.Background()))

	stats, err := p.ProductStats(context.Background(), "mock_1")
	require.NoError(t, err)
	assert.Equal(t, models.ProductStats{Views: 45, Sales: 3, Revenue: 135, ConversionRate: 0.067}, stats)
}

func TestWhopProductStats(t *testing.T) {
	p := newTestWhop(t, &fakeWhop{})

	stats, err := p.ProductStats(context.Background(), "prod_1")
	require.NoError(t, err)
	assert.Equal(t, models.ProductStats{Views: 120, Sales: 4, Revenue: 180, ConversionRate: 0.033}, stats)

	_, err = p.ProductStats(context.Background(), "prod_404")
	assert.Error(t, err)
}

func TestWhopPublishCanceled(t *testing.T) {
	p := newTestWhop(t, &fakeWhop{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Publish(ctx, []models.Candidate{testCandidate("A")})
	assert.ErrorIs(t, err, context.Canceled)
}

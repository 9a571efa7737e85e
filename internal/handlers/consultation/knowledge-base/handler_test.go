// internal/handlers/consultation/knowledge-base/handler_test.go
package knowledgebase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "healing-guide/internal/common/errors"
	"healing-guide/internal/common/logger"
	"healing-guide/internal/knowledge"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:  2 * time.Second,
		CacheTTL: time.Hour,
	}
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func createTestHandler(t *testing.T, redisClient *redis.Client) *Handler {
	h := NewHandler(createTestConfig(), redisClient, logger.NewTestLogger(t))
	h.now = func() time.Time { return time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC) }
	return h
}

func assertNotFound(t *testing.T, err error, message string) {
	t.Helper()
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotFound, stdErr.Code)
	assert.Equal(t, message, stdErr.Message)
}

// ==========================
// Constitution Tests
// ==========================

func TestHandler_ConstitutionalAnalysis(t *testing.T) {
	tests := []struct {
		name           string
		input          *ConstitutionInput
		expectKey      string
		validateOutput func(t *testing.T, a *knowledge.ConstitutionAnalysis)
	}{
		{
			name:      "pure dosha",
			input:     &ConstitutionInput{Constitution: "Vata"},
			expectKey: "kb:constitution:vata:",
			validateOutput: func(t *testing.T, a *knowledge.ConstitutionAnalysis) {
				assert.Equal(t, "vata", a.Constitution)
				assert.NotEmpty(t, a.PrimaryQualities)
				assert.NotEmpty(t, a.RecommendedHerbs)
			},
		},
		{
			name:      "dual type",
			input:     &ConstitutionInput{Constitution: "pitta-kapha"},
			expectKey: "kb:constitution:pitta-kapha:",
			validateOutput: func(t *testing.T, a *knowledge.ConstitutionAnalysis) {
				assert.NotEmpty(t, a.BalancingApproach)
				assert.Empty(t, a.PrimaryQualities)
			},
		},
		{
			name:      "with symptoms",
			input:     &ConstitutionInput{Constitution: "vata", Symptoms: []string{"Anxiety", "dry skin"}},
			expectKey: "kb:constitution:vata:anxiety,dry skin",
			validateOutput: func(t *testing.T, a *knowledge.ConstitutionAnalysis) {
				assert.NotNil(t, a.SymptomAnalysis)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr, client := setupRedis(t)
			handler := createTestHandler(t, client)

			analysis, err := handler.ExecuteConstitution(context.Background(), tt.input)

			require.NoError(t, err)
			tt.validateOutput(t, analysis)
			assert.True(t, mr.Exists(tt.expectKey))
			assert.Equal(t, time.Hour, mr.TTL(tt.expectKey))
		})
	}
}

func TestHandler_ConstitutionalAnalysis_CacheHit(t *testing.T) {
	mr, client := setupRedis(t)
	require.NoError(t, mr.Set("kb:constitution:vata:", `{"constitution":"cached-vata"}`))
	handler := createTestHandler(t, client)

	analysis, err := handler.ExecuteConstitution(context.Background(), &ConstitutionInput{Constitution: "vata"})

	require.NoError(t, err)
	assert.Equal(t, "cached-vata", analysis.Constitution)
}

func TestHandler_ConstitutionalAnalysis_Errors(t *testing.T) {
	mr, client := setupRedis(t)
	handler := createTestHandler(t, client)

	_, err := handler.ExecuteConstitution(context.Background(), &ConstitutionInput{Constitution: "unknown"})
	assertNotFound(t, err, "Constitution not found")
	assert.False(t, mr.Exists("kb:constitution:unknown:"))

	_, err = handler.ExecuteConstitution(context.Background(), &ConstitutionInput{})
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeValidationFailed, stdErr.Code)
}

// ==========================
// Planet and Season Tests
// ==========================

func TestHandler_PlanetaryGuidance(t *testing.T) {
	mr, client := setupRedis(t)
	handler := createTestHandler(t, client)

	guidance, err := handler.ExecutePlanet(context.Background(), &PlanetInput{Planet: "Saturn", Constitution: "vata"})
	require.NoError(t, err)
	assert.Equal(t, "saturn", guidance.Planet)
	require.NotNil(t, guidance.ConstitutionalSpecific)
	assert.Contains(t, guidance.ConstitutionalSpecific.Interaction, "vata")
	assert.True(t, mr.Exists("kb:planet:saturn:vata"))

	plain, err := handler.ExecutePlanet(context.Background(), &PlanetInput{Planet: "moon"})
	require.NoError(t, err)
	assert.Nil(t, plain.ConstitutionalSpecific)

	_, err = handler.ExecutePlanet(context.Background(), &PlanetInput{Planet: "pluto"})
	assertNotFound(t, err, "Planet not found")
}

func TestHandler_SeasonalRecommendations(t *testing.T) {
	tests := []struct {
		name           string
		input          *SeasonInput
		expectKey      string
		validateOutput func(t *testing.T, r *knowledge.SeasonalRecommendations)
	}{
		{
			name:      "defaults to current season and general care",
			input:     &SeasonInput{},
			expectKey: "kb:season:summer:general",
			validateOutput: func(t *testing.T, r *knowledge.SeasonalRecommendations) {
				assert.Equal(t, "summer", r.Season)
				assert.Equal(t, "General care applies", r.ConstitutionalCare)
			},
		},
		{
			name:      "constitution specific care",
			input:     &SeasonInput{Season: "Winter", Constitution: "vata"},
			expectKey: "kb:season:winter:vata",
			validateOutput: func(t *testing.T, r *knowledge.SeasonalRecommendations) {
				assert.NotEqual(t, "General care applies", r.ConstitutionalCare)
				assert.NotEmpty(t, r.SeasonalHerbs)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr, client := setupRedis(t)
			handler := createTestHandler(t, client)

			recs, err := handler.ExecuteSeason(context.Background(), tt.input)

			require.NoError(t, err)
			tt.validateOutput(t, recs)
			assert.True(t, mr.Exists(tt.expectKey))
		})
	}

	t.Run("unknown season", func(t *testing.T) {
		_, client := setupRedis(t)
		handler := createTestHandler(t, client)

		_, err := handler.ExecuteSeason(context.Background(), &SeasonInput{Season: "monsoon"})
		assertNotFound(t, err, "Season not found")
	})
}

func TestHandler_CacheUnavailable(t *testing.T) {
	mr, client := setupRedis(t)
	mr.Close()
	handler := createTestHandler(t, client)

	analysis, err := handler.ExecuteConstitution(context.Background(), &ConstitutionInput{Constitution: "kapha"})

	require.NoError(t, err)
	assert.Equal(t, "kapha", analysis.Constitution)
}

// ==========================
// HTTP Tests
// ==========================

func TestHandler_HTTP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, client := setupRedis(t)
	handler := createTestHandler(t, client)

	router := gin.New()
	router.Use(apperrors.NewErrorHandler(logger.NewTestLogger(t)).Middleware())
	router.GET("/api/constitutional-analysis/:constitution", handler.ConstitutionalAnalysis)
	router.POST("/api/planetary-guidance", handler.PlanetaryGuidance)
	router.GET("/api/seasonal-recommendations", handler.SeasonalRecommendations)

	tests := []struct {
		name         string
		method       string
		path         string
		body         string
		expectStatus int
		expectKey    string
	}{
		{name: "constitution by path", method: http.MethodGet, path: "/api/constitutional-analysis/pitta", expectStatus: http.StatusOK, expectKey: "analysis"},
		{name: "planet by body", method: http.MethodPost, path: "/api/planetary-guidance", body: `{"planet":"jupiter","constitution":"kapha"}`, expectStatus: http.StatusOK, expectKey: "guidance"},
		{name: "unknown planet", method: http.MethodPost, path: "/api/planetary-guidance", body: `{"planet":"pluto"}`, expectStatus: http.StatusNotFound},
		{name: "season by query", method: http.MethodGet, path: "/api/seasonal-recommendations?season=fall&constitution=vata", expectStatus: http.StatusOK, expectKey: "recommendations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectStatus, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.expectKey != "" {
				assert.Equal(t, true, body["success"])
				assert.Contains(t, body, tt.expectKey)
				return
			}
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "Planet not found", body["message"])
		})
	}
}

// internal/handlers/consultation/knowledge-base/handler.go
package knowledgebase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "healing-guide/internal/common/errors"
	"healing-guide/internal/common/logger"
	"healing-guide/internal/common/metrics"
	"healing-guide/internal/knowledge"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	HandlerName = "knowledge-base"

	generalConstitution = "general"
)

// Handler serves the static knowledge base lookups. Hits are cached in
// Redis under kb:<kind>:<key>.
type Handler struct {
	config *Config
	redis  redis.Cmdable
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, redisClient redis.Cmdable, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		redis:  redisClient,
		logger: log.WithFields(map[string]interface{}{"handler": HandlerName}),
		now:    time.Now,
	}
}

// ==========================
// HTTP adapters
// ==========================

// ConstitutionalAnalysis serves POST /api/constitutional-analysis and
// GET /api/constitutional-analysis/:constitution.
func (h *Handler) ConstitutionalAnalysis(c *gin.Context) {
	var input ConstitutionInput
	if !bindOptional(c, &input) {
		return
	}
	if p := c.Param("constitution"); p != "" {
		input.Constitution = p
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	analysis, err := h.constitutionalAnalysis(ctx, &input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ConstitutionOutput{Success: true, Analysis: analysis})
}

// PlanetaryGuidance serves POST /api/planetary-guidance and
// GET /api/planetary-guidance/:planet?constitution=.
func (h *Handler) PlanetaryGuidance(c *gin.Context) {
	var input PlanetInput
	if !bindOptional(c, &input) {
		return
	}
	if p := c.Param("planet"); p != "" {
		input.Planet = p
	}
	if q := c.Query("constitution"); q != "" {
		input.Constitution = q
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	guidance, err := h.planetaryGuidance(ctx, &input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, PlanetOutput{Success: true, Guidance: guidance})
}

// SeasonalRecommendations serves POST and GET /api/seasonal-recommendations.
func (h *Handler) SeasonalRecommendations(c *gin.Context) {
	var input SeasonInput
	if !bindOptional(c, &input) {
		return
	}
	if q := c.Query("season"); q != "" {
		input.Season = q
	}
	if q := c.Query("constitution"); q != "" {
		input.Constitution = q
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	recs, err := h.seasonalRecommendations(ctx, &input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, SeasonOutput{Success: true, Recommendations: recs})
}

// bindOptional decodes a JSON body when one is present.
func bindOptional(c *gin.Context, dst interface{}) bool {
	if c.Request.Method == http.MethodGet || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		_ = c.Error(apperrors.NewValidationError("Invalid request body", err.Error()))
		return false
	}
	return true
}

// ==========================
// Lookups
// ==========================

func (h *Handler) constitutionalAnalysis(ctx context.Context, input *ConstitutionInput) (*knowledge.ConstitutionAnalysis, error) {
	name := strings.ToLower(strings.TrimSpace(input.Constitution))
	if name == "" {
		return nil, apperrors.NewValidationError("Constitution is required", "field: constitution")
	}

	key := cacheKey("constitution", name, strings.ToLower(strings.Join(input.Symptoms, ",")))
	return cachedLookup(ctx, h, key, func() (*knowledge.ConstitutionAnalysis, bool) {
		return knowledge.AnalyzeConstitution(name, input.Symptoms)
	}, "Constitution not found")
}

func (h *Handler) planetaryGuidance(ctx context.Context, input *PlanetInput) (*knowledge.PlanetaryGuidance, error) {
	planet := strings.ToLower(strings.TrimSpace(input.Planet))
	if planet == "" {
		return nil, apperrors.NewValidationError("Planet is required", "field: planet")
	}
	constitution := strings.ToLower(strings.TrimSpace(input.Constitution))

	key := cacheKey("planet", planet, constitution)
	return cachedLookup(ctx, h, key, func() (*knowledge.PlanetaryGuidance, bool) {
		return knowledge.PlanetaryGuidanceFor(planet, constitution)
	}, "Planet not found")
}

func (h *Handler) seasonalRecommendations(ctx context.Context, input *SeasonInput) (*knowledge.SeasonalRecommendations, error) {
	season := strings.ToLower(strings.TrimSpace(input.Season))
	if season == "" {
		season = knowledge.CurrentSeason(h.now())
	}
	constitution := strings.ToLower(strings.TrimSpace(input.Constitution))
	if constitution == "" {
		constitution = generalConstitution
	}

	key := cacheKey("season", season, constitution)
	return cachedLookup(ctx, h, key, func() (*knowledge.SeasonalRecommendations, bool) {
		return knowledge.SeasonalRecommendationsFor(season, constitution)
	}, "Season not found")
}

func cacheKey(kind string, parts ...string) string {
	return "kb:" + kind + ":" + strings.Join(parts, ":")
}

// cachedLookup reads key from Redis, falling back to load and caching a
// hit. Misses are never cached. Redis errors only cost the cache.
func cachedLookup[T any](ctx context.Context, h *Handler, key string, load func() (*T, bool), notFound string) (*T, error) {
	if val, err := h.redis.Get(ctx, key).Result(); err == nil {
		var out T
		if err := json.Unmarshal([]byte(val), &out); err == nil {
			metrics.CacheOperationsTotal.WithLabelValues(HandlerName, "hit").Inc()
			return &out, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		h.logger.Warn("knowledge cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	metrics.CacheOperationsTotal.WithLabelValues(HandlerName, "miss").Inc()

	out, ok := load()
	if !ok {
		return nil, apperrors.NewNotFoundError(notFound)
	}

	data, _ := json.Marshal(out)
	if err := h.redis.Set(ctx, key, data, h.config.CacheTTL).Err(); err != nil {
		h.logger.Warn("knowledge cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return out, nil
}

func (h *Handler) ExecuteConstitution(ctx context.Context, input *ConstitutionInput) (*knowledge.ConstitutionAnalysis, error) {
	return h.constitutionalAnalysis(ctx, input)
}

func (h *Handler) ExecutePlanet(ctx context.Context, input *PlanetInput) (*knowledge.PlanetaryGuidance, error) {
	return h.planetaryGuidance(ctx, input)
}

func (h *Handler) ExecuteSeason(ctx context.Context, input *SeasonInput) (*knowledge.SeasonalRecommendations, error) {
	return h.seasonalRecommendations(ctx, input)
}

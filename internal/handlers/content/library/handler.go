// internal/handlers/content/library/handler.go
package library

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	apperrors "healing-guide/internal/common/errors"
	"healing-guide/internal/common/logger"
	"healing-guide/internal/handlers/content/library/queries"
	"healing-guide/internal/models"
	"healing-guide/internal/repository"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
)

const (
	HandlerName = "library"

	SourceElasticsearch = "elasticsearch"
	SourceDatabase      = "database"
)

type LibraryStore interface {
	Search(ctx context.Context, q repository.LibraryQuery) (*models.LibraryPage, error)
}

// Handler lists published library items, searching Elasticsearch when a
// client is configured and Postgres otherwise.
type Handler struct {
	config *Config
	es     *elasticsearch.Client
	store  LibraryStore
	logger logger.Logger
}

// NewHandler builds the handler. es may be nil.
func NewHandler(config *Config, es *elasticsearch.Client, store LibraryStore, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		es:     es,
		store:  store,
		logger: log.WithFields(map[string]interface{}{"handler": HandlerName}),
	}
}

// Handle serves GET /api/library.
func (h *Handler) Handle(c *gin.Context) {
	var input Input
	if err := c.ShouldBindQuery(&input); err != nil {
		_ = c.Error(apperrors.NewValidationError("Invalid query parameters", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	q := queries.LibraryQuery{
		Index:    h.config.Index,
		Category: strings.TrimSpace(input.Category),
		Search:   strings.TrimSpace(input.Search),
		Page:     parsePage(input.Page),
		Size:     h.clampSize(input.Size),
	}

	if h.es != nil {
		page, err := queries.Execute(ctx, h.es, q)
		if err == nil {
			return toOutput(page, SourceElasticsearch), nil
		}
		h.logger.Warn("Library search failed, falling back to database", map[string]interface{}{
			"index": q.Index,
			"error": err.Error(),
		})
	}

	page, err := h.store.Search(ctx, repository.LibraryQuery{
		Category: q.Category,
		Search:   q.Search,
		Page:     q.Page,
		Size:     q.Size,
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("search_library", err)
	}
	return toOutput(page, SourceDatabase), nil
}

func toOutput(page *models.LibraryPage, source string) *Output {
	return &Output{
		Success: true,
		Items:   page.Items,
		Total:   page.Total,
		Page:    page.Page,
		Size:    page.Size,
		Source:  source,
	}
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	if page > repository.MaxLibraryPage {
		return repository.MaxLibraryPage
	}
	return page
}

// clampSize applies the default to a missing or unparsable size and
// clamps anything else to 1..MaxSize.
func (h *Handler) clampSize(raw string) int {
	size, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return h.config.DefaultSize
	}
	if size < 1 {
		return 1
	}
	if size > h.config.MaxSize {
		return h.config.MaxSize
	}
	return size
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

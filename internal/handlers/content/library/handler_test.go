// internal/handlers/content/library/handler_test.go
package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	apperrors "healing-guide/internal/common/errors"
	"healing-guide/internal/common/logger"
	"healing-guide/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var libraryColumns = []string{"id", "title", "category", "content_type", "description", "url", "tags", "is_published", "created_at"}

const searchHits = `{
	"took": 3,
	"hits": {
		"total": {"value": 42, "relation": "eq"},
		"hits": [
			{"_id": "abhyanga", "_source": {"id": "abhyanga", "title": "Abhyanga Self Massage", "category": "practices", "content_type": "video", "tags": ["vata", "oil"], "is_published": true, "created_at": "2026-01-05T10:00:00Z"}},
			{"_id": "kitchari", "_source": {"id": "kitchari", "title": "Kitchari Cleanse", "category": "recipes", "content_type": "article", "is_published": true, "created_at": "2026-01-04T10:00:00Z"}}
		]
	}
}`

type esServer struct {
	status int
	body   map[string]interface{}
	query  url.Values
}

func newESServer(t *testing.T, status int) (*esServer, *elasticsearch.Client) {
	fake := &esServer{status: status}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")

		fake.query = r.URL.Query()
		raw, _ := io.ReadAll(r.Body)
		fake.body = nil
		_ = json.Unmarshal(raw, &fake.body)

		if fake.status != http.StatusOK {
			w.WriteHeader(fake.status)
			_, _ = w.Write([]byte(`{"error":{"type":"index_not_found_exception"},"status":404}`))
			return
		}
		_, _ = w.Write([]byte(searchHits))
	}))
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{server.URL},
		DisableRetry: true,
	})
	require.NoError(t, err)
	return fake, client
}

func createTestHandler(t *testing.T, es *elasticsearch.Client, db *sql.DB) *Handler {
	return NewHandler(LoadConfig(), es, repository.NewLibraryRepository(db), logger.NewTestLogger(t))
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// ==========================
// Pagination Tests
// ==========================

func TestHandler_ClampSize(t *testing.T) {
	h := &Handler{config: LoadConfig()}

	tests := []struct {
		raw      string
		expected int
	}{
		{"", 20},
		{"abc", 20},
		{"0", 1},
		{"-5", 1},
		{"1", 1},
		{"50", 50},
		{"100", 100},
		{"500", 100},
	}
	for _, tt := range tests {
		t.Run("size="+tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, h.clampSize(tt.raw))
		})
	}
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, 1, parsePage(""))
	assert.Equal(t, 1, parsePage("0"))
	assert.Equal(t, 1, parsePage("x"))
	assert.Equal(t, 3, parsePage("3"))
	assert.Equal(t, repository.MaxLibraryPage, parsePage("99999999999"))
	assert.Equal(t, repository.MaxLibraryPage, parsePage("1001"))
}

// ==========================
// Search Tests
// ==========================

func TestHandler_Execute_Elasticsearch(t *testing.T) {
	fake, es := newESServer(t, http.StatusOK)
	db, mock := newMock(t)
	handler := createTestHandler(t, es, db)

	out, err := handler.Execute(context.Background(), &Input{Category: "practices", Search: "massage", Page: "2", Size: "10"})

	require.NoError(t, err)
	assert.Equal(t, SourceElasticsearch, out.Source)
	assert.Equal(t, 42, out.Total)
	assert.Equal(t, 2, out.Page)
	assert.Equal(t, 10, out.Size)
	require.Len(t, out.Items, 2)
	assert.Equal(t, []string{"vata", "oil"}, out.Items[0].Tags)
	assert.Equal(t, []string{}, out.Items[1].Tags)

	assert.Equal(t, "10", fake.query.Get("from"))
	assert.Equal(t, "10", fake.query.Get("size"))

	boolQuery := fake.body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	must := boolQuery["must"].([]interface{})
	require.Len(t, must, 1)
	assert.Contains(t, must[0], "multi_match")
	assert.Len(t, boolQuery["filter"], 2)
	assert.NotContains(t, fake.body, "sort")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_FallsBackToDatabase(t *testing.T) {
	_, es := newESServer(t, http.StatusNotFound)
	db, mock := newMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM library_items WHERE is_published = TRUE AND title ILIKE \$1 ESCAPE`).
		WithArgs("%dosha%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`FROM library_items`).
		WithArgs("%dosha%", 20, 0).
		WillReturnRows(sqlmock.NewRows(libraryColumns).
			AddRow("doshas-101", "Doshas 101", "basics", "article", "", "", "{vata,pitta,kapha}", true, time.Now()))

	handler := createTestHandler(t, es, db)
	out, err := handler.Execute(context.Background(), &Input{Search: "dosha"})

	require.NoError(t, err)
	assert.Equal(t, SourceDatabase, out.Source)
	assert.Equal(t, 1, out.Total)
	require.Len(t, out.Items, 1)
	assert.Equal(t, []string{"vata", "pitta", "kapha"}, out.Items[0].Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_DatabaseOnly(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM library_items WHERE is_published = TRUE AND category = \$1`).
		WithArgs("recipes").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`FROM library_items`).
		WithArgs("recipes", 100, 100).
		WillReturnRows(sqlmock.NewRows(libraryColumns))

	handler := createTestHandler(t, nil, db)
	out, err := handler.Execute(context.Background(), &Input{Category: "recipes", Page: "2", Size: "1000"})

	require.NoError(t, err)
	assert.Equal(t, SourceDatabase, out.Source)
	assert.Empty(t, out.Items)
	assert.NotNil(t, out.Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_DatabaseError(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`SELECT COUNT`).WillReturnError(sql.ErrConnDone)

	handler := createTestHandler(t, nil, db)
	_, err := handler.Execute(context.Background(), &Input{})

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeDatabaseError, stdErr.Code)
}

// ==========================
// HTTP Tests
// ==========================

func TestHandler_HTTP(t *testing.T) {
	fake, es := newESServer(t, http.StatusOK)
	db, _ := newMock(t)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(apperrors.NewErrorHandler(logger.NewTestLogger(t)).Middleware())
	router.GET("/api/library", createTestHandler(t, es, db).Handle)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/library?category=recipes", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var out Output
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.Success)
	assert.Equal(t, 20, out.Size)
	assert.Contains(t, fake.body, "sort")
}

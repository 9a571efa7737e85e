// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"healing-guide/internal/api"
	"healing-guide/internal/common/config"
	"healing-guide/internal/common/database"
	"healing-guide/internal/common/logger"
	"healing-guide/internal/common/observability"
	subscriptionstatus "healing-guide/internal/handlers/account/subscription-status"
	userprofile "healing-guide/internal/handlers/account/user-profile"
	constitutionassessment "healing-guide/internal/handlers/assessment/constitution-assessment"
	knowledgebase "healing-guide/internal/handlers/consultation/knowledge-base"
	"healing-guide/internal/handlers/content/library"
	"healing-guide/internal/handlers/content/library/queries"
	"healing-guide/internal/handlers/marketing/newsletter"
	"healing-guide/internal/knowledge"
	"healing-guide/internal/models"
	"healing-guide/internal/repository"
	"healing-guide/pkg/catalog"
)

var zapLog *zap.Logger

func TestMain(m *testing.M) {
	if os.Getenv("E2E") == "" {
		fmt.Println("E2E not set, skipping end-to-end tests")
		os.Exit(0)
	}

	gin.SetMode(gin.TestMode)
	zapLog, _ = zap.NewProduction()

	code := m.Run()
	_ = zapLog.Sync()
	os.Exit(code)
}

type stack struct {
	cfg    *config.Config
	pg     *database.PostgresClient
	redis  *database.RedisClient
	es     *database.ElasticsearchClient
	server *httptest.Server
	runID  string
}

func TestFullE2E(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	t.Log("Starting full E2E run against local services")

	// 1. Check all external services are available
	s := assertAllServicesConnectivity(ctx, t, cfg)
	defer s.close()

	// 2. Create the schema and seed the library
	prepareDatabase(ctx, t, s)

	// 3. Serve the API
	s.server = httptest.NewServer(buildRouter(s))
	defer s.server.Close()

	// 4. Exercise every endpoint group with real storage
	tests := []struct {
		name string
		fn   func(*testing.T, *stack)
	}{
		{"health", testHealth},
		{"knowledge-base", testKnowledgeBase},
		{"assessment", testAssessment},
		{"newsletter", testNewsletter},
		{"user-profile", testUserProfile},
		{"library", testLibrary},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, s)
		})
	}

	t.Log("All E2E flows passed")
}

func assertAllServicesConnectivity(ctx context.Context, t *testing.T, cfg *config.Config) *stack {
	t.Log("Checking service connectivity...")

	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"

	s := &stack{cfg: cfg, runID: fmt.Sprintf("%d", time.Now().UnixNano())}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	require.NoError(t, pg.Ping(ctx), "PostgreSQL ping failed")
	s.pg = pg
	t.Log("PostgreSQL connected")

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "Redis client creation failed")
	require.NoError(t, rdb.Ping(ctx), "Redis ping failed")
	s.redis = rdb
	t.Log("Redis connected")

	if cfg.Database.Elasticsearch.Enabled() {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		require.NoError(t, err, "Elasticsearch client creation failed")
		if err := es.Ping(ctx); err != nil {
			t.Logf("Elasticsearch unavailable, library runs on PostgreSQL: %v", err)
		} else {
			s.es = es
			t.Log("Elasticsearch connected")
		}
	}

	return s
}

func (s *stack) close() {
	if s.pg != nil {
		s.pg.Close()
	}
	if s.redis != nil {
		s.redis.Close()
	}
}

func prepareDatabase(ctx context.Context, t *testing.T, s *stack) {
	t.Log("Creating schema and loading the library catalog...")

	require.NoError(t, s.pg.EnsureSchema(ctx))

	cat, problems, err := catalog.LoadCatalog("../../configs/catalog/library.json")
	require.NoError(t, err)
	require.Empty(t, problems)

	index := s.cfg.Database.Elasticsearch.LibraryIndex
	if s.es != nil {
		require.NoError(t, s.es.EnsureIndex(ctx, index, queries.IndexMapping))
	}

	repo := repository.NewLibraryRepository(s.pg.DB)
	for _, entry := range cat.Items {
		item := entry.Item()
		item.CreatedAt = time.Now().UTC()
		require.NoError(t, repo.Upsert(ctx, item))
		if s.es != nil {
			require.NoError(t, s.es.IndexDocument(ctx, index, item.ID, item))
		}
	}

	t.Logf("Loaded %d library items", len(cat.Items))
}

func buildRouter(s *stack) http.Handler {
	log := logger.NewZapAdapter(zapLog)
	obs := observability.NewNoop()
	repos := repository.New(s.pg.DB)

	subscriptions := subscriptionstatus.NewHandler(subscriptionstatus.LoadConfig(), repos.Newsletter, repos.Premium, s.redis.Client, log)

	libCfg := library.LoadConfig()
	libCfg.Index = s.cfg.Database.Elasticsearch.LibraryIndex
	libHandler := library.NewHandler(libCfg, nil, repos.Library, log)
	if s.es != nil {
		libHandler = library.NewHandler(libCfg, s.es.Client, repos.Library, log)
	}

	handlers := api.Handlers{
		KnowledgeBase: knowledgebase.NewHandler(knowledgebase.LoadConfig(), s.redis.Client, log),
		Subscription:  subscriptions,
		Assessment:    constitutionassessment.NewHandler(constitutionassessment.LoadConfig(), repos.Assessments, repos.Users, nil, obs, log),
		Library:       libHandler,
		Newsletter: newsletter.NewHandler(newsletter.LoadConfig(), newsletter.Dependencies{
			Store: repos.Newsletter,
			Cache: subscriptions,
			Obs:   obs,
		}, log),
		Users: userprofile.NewHandler(userprofile.LoadConfig(), repos.Users, repos.Assessments, log),
	}

	return api.NewRouter(handlers, api.Options{
		ServiceName: "healing-guide-e2e",
		ReadinessChecks: map[string]api.ReadinessCheck{
			"postgres": s.pg.Ping,
			"redis":    s.redis.Ping,
		},
	}, log)
}

// ==========================
// Flows
// ==========================

func testHealth(t *testing.T, s *stack) {
	status, body := call(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])

	status, body = call(t, s, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body["status"])
}

func testKnowledgeBase(t *testing.T, s *stack) {
	status, body := call(t, s, http.MethodPost, "/api/constitutional-analysis", map[string]interface{}{
		"constitution": "vata-pitta",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	// Second call is served from Redis and must be identical.
	status, cached := call(t, s, http.MethodPost, "/api/constitutional-analysis", map[string]interface{}{
		"constitution": "vata-pitta",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, body, cached)
}

func testAssessment(t *testing.T, s *stack) {
	status, body := call(t, s, http.MethodGet, "/api/assessment/questions", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, len(knowledge.Questions), body["total"])

	answers := make([]models.AssessmentAnswer, 0, len(knowledge.Questions))
	for _, q := range knowledge.Questions {
		answers = append(answers, models.AssessmentAnswer{QuestionID: q.ID, OptionIndex: 1})
	}
	email := fmt.Sprintf("assess-%s@example.com", s.runID)

	status, body = call(t, s, http.MethodPost, "/api/assessment/submit", map[string]interface{}{
		"answers": answers,
		"email":   email,
		"name":    "E2E Tester",
	})
	require.Equal(t, http.StatusOK, status, "%v", body)

	result := body["constitution"].(map[string]interface{})
	assert.Equal(t, "pitta", result["primary"])
	id := body["assessment_id"].(string)
	require.NotEmpty(t, id)

	status, body = call(t, s, http.MethodGet, "/api/assessment/"+id, nil)
	require.Equal(t, http.StatusOK, status)
	stored := body["assessment"].(map[string]interface{})
	assert.Equal(t, id, stored["id"])

	status, _ = call(t, s, http.MethodGet, "/api/assessment/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func testNewsletter(t *testing.T, s *stack) {
	email := fmt.Sprintf("news-%s@example.com", s.runID)

	status, body := call(t, s, http.MethodGet, "/api/subscription-status/"+email, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["subscribed"])

	status, body = call(t, s, http.MethodPost, "/api/newsletter/subscribe", map[string]interface{}{
		"email":  email,
		"source": "e2e",
	})
	require.Equal(t, http.StatusOK, status, "%v", body)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["download_url"])

	// The subscribe call invalidates the cached negative status.
	status, body = call(t, s, http.MethodGet, "/api/subscription-status/"+email, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["subscribed"])

	status, _ = call(t, s, http.MethodPost, "/api/newsletter/unsubscribe", map[string]interface{}{"email": email})
	assert.Equal(t, http.StatusOK, status)

	status, body = call(t, s, http.MethodGet, "/api/subscription-status/"+email, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["subscribed"])
}

func testUserProfile(t *testing.T, s *stack) {
	email := fmt.Sprintf("user-%s@example.com", s.runID)

	status, body := call(t, s, http.MethodPost, "/api/users", map[string]interface{}{
		"email":        email,
		"name":         "Sam",
		"age":          42,
		"constitution": "pitta-kapha",
	})
	require.Equal(t, http.StatusOK, status, "%v", body)

	status, body = call(t, s, http.MethodGet, "/api/users/"+email, nil)
	require.Equal(t, http.StatusOK, status)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "Sam", user["name"])

	status, _ = call(t, s, http.MethodGet, "/api/users/missing-"+email, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func testLibrary(t *testing.T, s *stack) {
	status, body := call(t, s, http.MethodGet, "/api/library?category=seasonal", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 3, body["total"])

	status, body = call(t, s, http.MethodGet, "/api/library?search=Kitchari", nil)
	require.Equal(t, http.StatusOK, status)
	items := body["items"].([]interface{})
	require.NotEmpty(t, items)
	assert.Equal(t, "kitchari-basics", items[0].(map[string]interface{})["id"])

	// Unpublished entries never appear.
	status, body = call(t, s, http.MethodGet, "/api/library?category=astrology", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["total"])
}

func call(t *testing.T, s *stack, method, path string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

// Package api assembles the gin router for every endpoint group.
package api

import (
	"time"

	"healing-guide/internal/common/auth"
	apperrors "healing-guide/internal/common/errors"
	"healing-guide/internal/common/logger"
	"healing-guide/internal/common/ratelimit"
	subscriptionstatus "healing-guide/internal/handlers/account/subscription-status"
	userprofile "healing-guide/internal/handlers/account/user-profile"
	constitutionassessment "healing-guide/internal/handlers/assessment/constitution-assessment"
	premiumcheckout "healing-guide/internal/handlers/billing/premium-checkout"
	aiquery "healing-guide/internal/handlers/consultation/ai-query"
	"healing-guide/internal/handlers/consultation/avatar"
	knowledgebase "healing-guide/internal/handlers/consultation/knowledge-base"
	"healing-guide/internal/handlers/content/library"
	leadmagnet "healing-guide/internal/handlers/marketing/lead-magnet"
	"healing-guide/internal/handlers/marketing/newsletter"
	speechgeneration "healing-guide/internal/handlers/voice/speech-generation"
	voicecloning "healing-guide/internal/handlers/voice/voice-cloning"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers holds one handler per endpoint group. A nil member leaves
// its routes unregistered.
type Handlers struct {
	AIQuery       *aiquery.Handler
	KnowledgeBase *knowledgebase.Handler
	Avatar        *avatar.Handler
	Subscription  *subscriptionstatus.Handler
	Speech        *speechgeneration.Handler
	VoiceCloning  *voicecloning.Handler
	Assessment    *constitutionassessment.Handler
	Library       *library.Handler
	Newsletter    *newsletter.Handler
	LeadMagnet    *leadmagnet.Handler
	Users         *userprofile.Handler
	Billing       *premiumcheckout.Handler
}

type Options struct {
	ServiceName    string
	AllowedOrigins []string
	StaticDir      string
	MaxBodyBytes   int64

	// TrustedProxies lists the proxy CIDRs whose X-Forwarded-For is
	// believed. Empty means the peer address is the client address.
	TrustedProxies []string

	// AdminValidator authenticates admin routes; nil answers them with 503.
	AdminValidator auth.TokenValidator
	AdminRole      string

	AIQueryLimiter *ratelimit.Limiter
	SpeechLimiter  *ratelimit.Limiter

	ReadinessChecks  map[string]ReadinessCheck
	ReadinessTimeout time.Duration
}

// NewRouter builds the engine with middleware, API routes, operational
// routes and the SPA fallback.
func NewRouter(h Handlers, opts Options, log logger.Logger) *gin.Engine {
	if opts.ReadinessTimeout == 0 {
		opts.ReadinessTimeout = 2 * time.Second
	}

	errHandler := apperrors.NewErrorHandler(log)

	router := gin.New()
	if err := router.SetTrustedProxies(opts.TrustedProxies); err != nil {
		log.Error("Invalid trusted proxies, ignoring forwarded headers", map[string]interface{}{"error": err.Error()})
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(
		Recovery(errHandler),
		RequestID(),
		RequestLogger(log),
		Metrics(),
		cors.New(corsConfig(opts.AllowedOrigins)),
		errHandler.Middleware(),
		BodyLimit(opts.MaxBodyBytes),
	)

	router.GET("/health", healthHandler(opts.ServiceName))
	router.GET("/ready", readyHandler(opts.ReadinessChecks, opts.ReadinessTimeout))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := auth.RequireAdmin(opts.AdminValidator, opts.AdminRole, errHandler)
	api := router.Group("/api")

	if h.AIQuery != nil {
		limit := opts.AIQueryLimiter.Middleware(errHandler, log)
		api.POST("/ai-query", limit, h.AIQuery.Handle)
		api.POST("/ask", limit, h.AIQuery.Handle)
	}

	if h.KnowledgeBase != nil {
		api.POST("/constitutional-analysis", h.KnowledgeBase.ConstitutionalAnalysis)
		api.GET("/constitutional-analysis/:constitution", h.KnowledgeBase.ConstitutionalAnalysis)
		api.POST("/planetary-guidance", h.KnowledgeBase.PlanetaryGuidance)
		api.GET("/planetary-guidance/:planet", h.KnowledgeBase.PlanetaryGuidance)
		api.POST("/seasonal-recommendations", h.KnowledgeBase.SeasonalRecommendations)
		api.GET("/seasonal-recommendations", h.KnowledgeBase.SeasonalRecommendations)
	}

	if h.Avatar != nil {
		api.POST("/avatar-script", h.Avatar.Script)
		api.POST("/avatar/speak", h.Avatar.Speak)
	}

	if h.Subscription != nil {
		api.GET("/subscription-status/:email", h.Subscription.Handle)
	}

	voice := api.Group("/voice-cloning")
	if h.Speech != nil {
		voice.POST("/generate-speech", opts.SpeechLimiter.Middleware(errHandler, log), h.Speech.Handle)
		voice.POST("/test-voice", h.Speech.TestVoice)
		voice.POST("/test-voice/:voice_id", h.Speech.TestVoice)
		voice.GET("/voice-status", h.Speech.VoiceStatus)
	}
	if h.VoiceCloning != nil {
		voice.POST("/upload-voice-sample", admin, h.VoiceCloning.UploadSample)
		voice.GET("/voices", h.VoiceCloning.Voices)
		voice.DELETE("/voices/:voice_id", admin, h.VoiceCloning.DeleteVoice)
		voice.GET("/voice-settings/:voice_id", h.VoiceCloning.VoiceSettings)
		voice.POST("/voice-settings/:voice_id", admin, h.VoiceCloning.UpdateVoiceSettings)
		voice.GET("/user-info", h.VoiceCloning.UserInfo)
		voice.GET("/setup-status", h.VoiceCloning.SetupStatus)
	}

	if h.Assessment != nil {
		api.GET("/assessment/questions", h.Assessment.Questions)
		api.POST("/assessment/submit", h.Assessment.Submit)
		api.POST("/assessment", h.Assessment.Submit)
		api.GET("/assessment/:id", h.Assessment.Get)
	}

	if h.Library != nil {
		api.GET("/library", h.Library.Handle)
	}

	if h.Newsletter != nil {
		api.POST("/newsletter/subscribe", h.Newsletter.HandleSubscribe)
		api.POST("/newsletter", h.Newsletter.HandleSubscribe)
		api.POST("/newsletter/unsubscribe", h.Newsletter.HandleUnsubscribe)
		api.GET("/newsletter/stats", admin, h.Newsletter.HandleStats)
	}

	if h.LeadMagnet != nil {
		api.GET("/lead-magnet/download", h.LeadMagnet.Download)
		api.POST("/lead-magnet/send", h.LeadMagnet.Send)
		api.GET("/lead-magnet/stats", admin, h.LeadMagnet.Stats)
	}

	if h.Users != nil {
		api.POST("/users", h.Users.Save)
		api.GET("/users/:email", h.Users.Get)
	}

	if h.Billing != nil {
		api.POST("/billing/checkout", h.Billing.Checkout)
		api.POST("/billing/webhook", h.Billing.Webhook)
		api.GET("/billing/subscription/:email", h.Billing.Subscription)
	}

	router.NoRoute(spaHandler(opts.StaticDir))

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

// cmd/api-server/wiring.go
package main

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"healing-guide/internal/api"
	"healing-guide/internal/common/auth"
	commonaws "healing-guide/internal/common/aws"
	"healing-guide/internal/common/billing"
	"healing-guide/internal/common/config"
	"healing-guide/internal/common/database"
	"healing-guide/internal/common/elevenlabs"
	"healing-guide/internal/common/logger"
	"healing-guide/internal/common/observability"
	"healing-guide/internal/common/openai"
	"healing-guide/internal/common/ratelimit"
	"healing-guide/internal/common/zoho"
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
	"healing-guide/internal/repository"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type infra struct {
	db    *sql.DB
	redis *redis.Client
	es    *database.ElasticsearchClient
	obs   *observability.Observability
}

// integrations holds the optional vendor clients. Interface members stay
// nil when the vendor is not configured.
type integrations struct {
	openai     *openai.Client
	elevenlabs *elevenlabs.Client
	stripe     *billing.StripeClient
	crm        *zoho.CRMClient

	events         newsletter.EventPublisher
	mailer         newsletter.Mailer
	tokenIssuer    newsletter.TokenIssuer
	tokenVerifier  leadmagnet.TokenVerifier
	adminValidator auth.TokenValidator
}

func newIntegrations(ctx context.Context, cfg *config.Config, log *zap.Logger) *integrations {
	out := &integrations{
		openai: openai.NewClient(openai.Config{
			APIKey:      cfg.APIs.OpenAI.APIKey,
			BaseURL:     cfg.APIs.OpenAI.BaseURL,
			Model:       cfg.APIs.OpenAI.Model,
			MaxTokens:   cfg.APIs.OpenAI.MaxTokens,
			Temperature: cfg.APIs.OpenAI.Temperature,
			Timeout:     config.GetDuration(cfg.APIs.OpenAI.Timeout),
			MaxRetries:  config.GetHandlerConfig(cfg, aiquery.HandlerName).MaxRetries,
		}),
		elevenlabs: elevenlabs.NewClient(elevenlabs.Config{
			APIKey:     cfg.APIs.ElevenLabs.APIKey,
			BaseURL:    cfg.APIs.ElevenLabs.BaseURL,
			ModelID:    cfg.APIs.ElevenLabs.ModelID,
			Timeout:    config.GetDuration(cfg.APIs.ElevenLabs.Timeout),
			MaxRetries: config.GetHandlerConfig(cfg, speechgeneration.HandlerName).MaxRetries,
		}),
		stripe: billing.NewStripeClient(cfg.Integrations.Stripe.SecretKey, nil),
		crm:    zoho.NewCRMClient(cfg.Integrations.Zoho.APIKey, cfg.Integrations.Zoho.AuthToken, cfg.Integrations.Zoho.BaseURL),
	}

	if !out.openai.Configured() {
		log.Warn("OPENAI_API_KEY not set, consultations use the knowledge base")
	}
	if !out.elevenlabs.Configured() {
		log.Warn("ELEVENLABS_API_KEY not set, voice routes answer 503")
	}

	aws := cfg.Integrations.AWS
	if aws.SNS.Enabled {
		sns, err := commonaws.NewSNSClient(ctx, aws.Region, aws.SNS.TopicARN)
		if err != nil {
			log.Warn("SNS disabled", zap.Error(err))
		} else {
			out.events = sns
		}
	}
	if aws.SES.Enabled {
		ses, err := commonaws.NewSESClient(ctx, aws.Region, aws.SES.FromEmail)
		if err != nil {
			log.Warn("SES disabled", zap.Error(err))
		} else {
			out.mailer = ses
		}
	}

	if secret := cfg.Auth.DownloadTokens.Secret; secret != "" {
		tokens := auth.NewDownloadTokens(secret, cfg.Auth.DownloadTokens.Issuer,
			time.Duration(cfg.Auth.DownloadTokens.TTL)*time.Hour)
		out.tokenIssuer = tokens
		out.tokenVerifier = tokens
	} else {
		log.Warn("DOWNLOAD_TOKEN_SECRET not set, lead magnet links are unsigned")
	}

	if cfg.Auth.KeycloakEnabled() {
		out.adminValidator = auth.NewKeycloakClient(
			cfg.Auth.Keycloak.URL,
			cfg.Auth.Keycloak.Realm,
			cfg.Auth.Keycloak.ClientID,
			cfg.Auth.Keycloak.ClientSecret,
		)
	} else {
		log.Warn("Keycloak not configured, admin routes answer 503")
	}

	log.Info("All external service clients initialized")
	return out
}

// buildHandlers constructs every enabled endpoint group.
func buildHandlers(cfg *config.Config, in infra, ext *integrations, log logger.Logger) api.Handlers {
	repos := repository.New(in.db)
	var h api.Handlers

	subCfg := subscriptionstatus.LoadConfig()
	subCfg.Timeout = handlerTimeout(cfg, subscriptionstatus.HandlerName, subCfg.Timeout)
	subscriptions := subscriptionstatus.NewHandler(subCfg, repos.Newsletter, repos.Premium, in.redis, log)
	if config.IsHandlerEnabled(cfg, subscriptionstatus.HandlerName) {
		h.Subscription = subscriptions
	}

	if config.IsHandlerEnabled(cfg, aiquery.HandlerName) {
		hc := config.GetHandlerConfig(cfg, aiquery.HandlerName)
		c := aiquery.LoadConfig()
		c.Timeout = handlerTimeout(cfg, aiquery.HandlerName, c.Timeout)
		c.RequireSubscription = hc.RequireSubscription
		h.AIQuery = aiquery.NewHandler(c, subscriptions, repos.Users, repos.Assessments, ext.openai, in.obs, log)
	}

	if config.IsHandlerEnabled(cfg, knowledgebase.HandlerName) {
		c := knowledgebase.LoadConfig()
		c.Timeout = handlerTimeout(cfg, knowledgebase.HandlerName, c.Timeout)
		h.KnowledgeBase = knowledgebase.NewHandler(c, in.redis, log)
	}

	if config.IsHandlerEnabled(cfg, avatar.HandlerName) {
		h.Avatar = avatar.NewHandler(avatar.LoadConfig(), log)
	}

	if config.IsHandlerEnabled(cfg, speechgeneration.HandlerName) {
		c := speechgeneration.LoadConfig()
		c.Timeout = handlerTimeout(cfg, speechgeneration.HandlerName, c.Timeout)
		c.DefaultVoiceID = cfg.APIs.ElevenLabs.VoiceID
		c.ModelID = cfg.APIs.ElevenLabs.ModelID
		h.Speech = speechgeneration.NewHandler(c, ext.elevenlabs, in.obs, log)
	}

	if config.IsHandlerEnabled(cfg, voicecloning.HandlerName) {
		c := voicecloning.LoadConfig()
		c.Timeout = handlerTimeout(cfg, voicecloning.HandlerName, c.Timeout)
		c.DefaultVoiceID = cfg.APIs.ElevenLabs.VoiceID
		h.VoiceCloning = voicecloning.NewHandler(c, ext.elevenlabs, log)
	}

	if config.IsHandlerEnabled(cfg, constitutionassessment.HandlerName) {
		c := constitutionassessment.LoadConfig()
		c.Timeout = handlerTimeout(cfg, constitutionassessment.HandlerName, c.Timeout)
		h.Assessment = constitutionassessment.NewHandler(c, repos.Assessments, repos.Users, ext.events, in.obs, log)
	}

	if config.IsHandlerEnabled(cfg, library.HandlerName) {
		c := library.LoadConfig()
		c.Timeout = handlerTimeout(cfg, library.HandlerName, c.Timeout)
		c.Index = cfg.Database.Elasticsearch.LibraryIndex
		var es *elasticsearch.Client
		if in.es != nil {
			es = in.es.Client
		}
		h.Library = library.NewHandler(c, es, repos.Library, log)
	}

	nlCfg := newsletter.LoadConfig()
	nlCfg.Timeout = handlerTimeout(cfg, newsletter.HandlerName, nlCfg.Timeout)
	nlCfg.PublicURL = strings.TrimSuffix(cfg.App.PublicURL, "/")
	subscribe := newsletter.NewHandler(nlCfg, newsletter.Dependencies{
		Store:  repos.Newsletter,
		Cache:  subscriptions,
		CRM:    ext.crm,
		Events: ext.events,
		Mailer: ext.mailer,
		Tokens: ext.tokenIssuer,
		Obs:    in.obs,
	}, log)
	if config.IsHandlerEnabled(cfg, newsletter.HandlerName) {
		h.Newsletter = subscribe
	}

	if config.IsHandlerEnabled(cfg, leadmagnet.HandlerName) {
		c := leadmagnet.LoadConfig()
		c.Timeout = handlerTimeout(cfg, leadmagnet.HandlerName, c.Timeout)
		c.PDFPath = cfg.LeadMagnet.PDFPath
		c.DownloadName = cfg.LeadMagnet.DownloadName
		c.RequireToken = cfg.LeadMagnet.RequireToken
		h.LeadMagnet = leadmagnet.NewHandler(c, subscribe, repos.Downloads, repos.Newsletter, ext.tokenVerifier, in.redis, log)
	}

	if config.IsHandlerEnabled(cfg, userprofile.HandlerName) {
		c := userprofile.LoadConfig()
		c.Timeout = handlerTimeout(cfg, userprofile.HandlerName, c.Timeout)
		h.Users = userprofile.NewHandler(c, repos.Users, repos.Assessments, log)
	}

	if config.IsHandlerEnabled(cfg, premiumcheckout.HandlerName) {
		stripeCfg := cfg.Integrations.Stripe
		c := premiumcheckout.LoadConfig()
		c.Timeout = handlerTimeout(cfg, premiumcheckout.HandlerName, c.Timeout)
		c.WebhookSecret = stripeCfg.WebhookSecret
		c.SuccessURL = stripeCfg.SuccessURL
		c.CancelURL = stripeCfg.CancelURL
		for name, tier := range stripeCfg.Tiers {
			c.Tiers[strings.ToLower(name)] = premiumcheckout.Tier{
				PriceID:  tier.PriceID,
				Price:    tier.Price,
				Currency: tier.Currency,
				Interval: tier.Interval,
			}
		}
		h.Billing = premiumcheckout.NewHandler(c, repos.Premium, ext.stripe, subscriptions, ext.events, log)
	}

	return h
}

// handlerTimeout prefers the configured handler timeout over fallback.
func handlerTimeout(cfg *config.Config, name string, fallback time.Duration) time.Duration {
	if hc, ok := cfg.Handlers[name]; ok && hc.Timeout > 0 {
		return config.GetDuration(hc.Timeout)
	}
	return fallback
}

// newLimiter returns nil, which disables limiting, when the handler has
// no per-minute budget.
func newLimiter(cfg *config.Config, client redis.Cmdable, name string) *ratelimit.Limiter {
	perMinute := config.GetHandlerConfig(cfg, name).RateLimitPerMinute
	if perMinute <= 0 {
		return nil
	}
	return ratelimit.NewLimiter(client, name, perMinute, time.Minute)
}

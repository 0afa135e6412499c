package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	// Domains
	"github.com/arix/server/internal/domain/creation"
	"github.com/arix/server/internal/domain/entitlement"
	"github.com/arix/server/internal/domain/generation"
	"github.com/arix/server/internal/domain/identity"
	"github.com/arix/server/internal/domain/payment"

	// Ports
	"github.com/arix/server/internal/port/outbound"

	// Outbound adapters
	"github.com/arix/server/internal/adapter/outbound/aiprovider"
	"github.com/arix/server/internal/adapter/outbound/clerk"
	"github.com/arix/server/internal/adapter/outbound/mediaprovider"
	"github.com/arix/server/internal/adapter/outbound/memory"
	mongoadapter "github.com/arix/server/internal/adapter/outbound/mongo"
	"github.com/arix/server/internal/adapter/outbound/postgres"
	redisadapter "github.com/arix/server/internal/adapter/outbound/redis"
	s3adapter "github.com/arix/server/internal/adapter/outbound/s3"
	stripeadapter "github.com/arix/server/internal/adapter/outbound/stripe"

	// Infrastructure
	"github.com/arix/server/internal/infra/config"
	"github.com/arix/server/internal/infra/database"
	"github.com/arix/server/internal/infra/httpclient"
	"github.com/arix/server/internal/infra/resilience"

	// Utils
	"github.com/arix/server/internal/utils/logger"
	"github.com/arix/server/internal/utils/metrics"
)

// ===== Infrastructure Providers =====

// InfraSet provides infrastructure dependencies.
var InfraSet = wire.NewSet(
	ProvideLogger,
	ProvideRegistry,
	ProvideMetrics,
	ProvideHTTPClient,
	ProvideRedisClient,
)

// ProvideLogger creates the root zap logger.
func ProvideLogger(cfg *config.Config) (*zap.Logger, func()) {
	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	return log, func() { _ = log.Sync() }
}

// ProvideRegistry creates the Prometheus registry served on /metrics.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates the application metrics.
func ProvideMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New("arix", reg)
}

// ProvideHTTPClient creates the shared pooled HTTP client for provider calls.
func ProvideHTTPClient(cfg *config.Config) *http.Client {
	return httpclient.New(cfg.HTTPClient)
}

// ProvideRedisClient connects to Redis when the quota ledger lives there.
// The memory ledger runs without Redis and gets a nil client.
func ProvideRedisClient(cfg *config.Config, log *zap.Logger) (*goredis.Client, func(), error) {
	if cfg.Ledger.Driver != "redis" {
		return nil, func() {}, nil
	}
	client, err := database.NewRedis(context.Background(), &cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	log.Info("Connected to Redis", zap.String("address", cfg.Redis.Address))
	return client, func() { _ = client.Close() }, nil
}

func newGuard(name string, cfg *config.Config, timeout time.Duration, m *metrics.Metrics, log *zap.Logger) *resilience.Guard {
	gc := resilience.DefaultConfig()
	gc.FailureThreshold = cfg.Breaker.FailureThreshold
	gc.OpenTimeout = cfg.Breaker.OpenTimeout
	gc.Interval = cfg.Breaker.Interval
	if timeout > 0 {
		gc.Timeout = timeout
	}
	return resilience.NewGuard(name, gc, m, log.Named(name))
}

// ===== Store Providers =====

// StoreSet provides quota, grant, rate limit and creation stores.
var StoreSet = wire.NewSet(
	ProvideQuotaLedger,
	ProvidePremiumGrants,
	ProvideRateLimiter,
	ProvideCreationStore,
)

// ProvideQuotaLedger selects the quota ledger backend.
func ProvideQuotaLedger(client *goredis.Client) outbound.QuotaLedgerPort {
	if client == nil {
		return memory.NewQuotaLedger()
	}
	return redisadapter.NewQuotaLedger(client)
}

// ProvidePremiumGrants stores test-payment grants next to the ledger.
func ProvidePremiumGrants(client *goredis.Client) outbound.PremiumGrantPort {
	if client == nil {
		return memory.NewPremiumGrantStore()
	}
	return redisadapter.NewPremiumGrantStore(client)
}

// ProvideRateLimiter creates the per-user rate limiter.
func ProvideRateLimiter(cfg *config.Config, client *goredis.Client) outbound.RateLimiterPort {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	if client == nil {
		return memory.NewRateLimiter()
	}
	return redisadapter.NewRateLimiter(client)
}

// ProvideCreationStore opens the configured creation store and prepares its schema.
func ProvideCreationStore(cfg *config.Config, log *zap.Logger) (outbound.CreationDatabasePort, func(), error) {
	ctx := context.Background()

	switch cfg.Store.Driver {
	case "mongo":
		client, db, err := database.NewMongo(ctx, &cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		}
		if err := mongoadapter.Migrate(ctx, db); err != nil {
			cleanup()
			return nil, nil, err
		}
		log.Info("Creation store ready", zap.String("driver", "mongo"), zap.String("database", cfg.Mongo.Database))
		return mongoadapter.NewCreationStore(db), cleanup, nil

	case "postgres":
		db, err := database.NewPostgres(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() { _ = database.ClosePostgres(db) }
		if err := postgres.AutoMigrate(db); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("migrate creations: %w", err)
		}
		log.Info("Creation store ready", zap.String("driver", "postgres"), zap.String("database", cfg.Database.Database))
		return postgres.NewCreationAdapter(db), cleanup, nil

	case "memory":
		log.Warn("Creation store is in memory, creations are lost on restart")
		return memory.NewCreationStore(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}

// ===== Provider Adapters =====

// ProviderSet provides identity, generation, storage and payment adapters.
var ProviderSet = wire.NewSet(
	ProvideTokenVerifier,
	ProvideUserDirectory,
	ProvideTextGenerator,
	ProvideClipdrop,
	wire.Bind(new(outbound.ImageGeneratorPort), new(*mediaprovider.ClipdropAdapter)),
	wire.Bind(new(outbound.BackgroundRemoverPort), new(*mediaprovider.ClipdropAdapter)),
	ProvideObjectStorage,
	ProvidePaymentProvider,
)

// ProvideTokenVerifier creates the session token verifier.
func ProvideTokenVerifier(cfg *config.Config) (outbound.TokenVerifierPort, error) {
	return clerk.NewTokenVerifier(&clerk.VerifierConfig{
		Secret:       cfg.Auth.JWTSecret,
		PublicKeyPEM: cfg.Auth.JWTPublicKey,
		Issuer:       cfg.Auth.Issuer,
		PlanClaim:    cfg.Auth.PlanClaim,
		Leeway:       5 * time.Second,
	})
}

// ProvideUserDirectory creates the cached identity directory.
func ProvideUserDirectory(cfg *config.Config, client *http.Client, m *metrics.Metrics, log *zap.Logger) outbound.UserDirectoryPort {
	dir := clerk.NewDirectory(&clerk.DirectoryConfig{
		BaseURL:     cfg.Auth.DirectoryURL,
		SecretKey:   cfg.Auth.SecretKey,
		PremiumPlan: cfg.Auth.PremiumPlan,
	}, client, newGuard("clerk", cfg, cfg.Auth.DirectoryTimeout, m, log))
	return clerk.NewCachedDirectory(dir, cfg.Auth.ProfileCacheTTL, m)
}

// ProvideTextGenerator creates the Gemini text generator.
func ProvideTextGenerator(cfg *config.Config, client *http.Client, m *metrics.Metrics, log *zap.Logger) (outbound.TextGeneratorPort, error) {
	return aiprovider.NewGeminiTextGenerator(context.Background(), aiprovider.GeminiConfig{
		APIKey:  cfg.AI.APIKey,
		BaseURL: cfg.AI.BaseURL,
		Model:   cfg.AI.Model,
	}, client, newGuard("gemini", cfg, cfg.AI.Timeout, m, log))
}

// ProvideClipdrop creates the Clipdrop image adapter.
func ProvideClipdrop(cfg *config.Config, client *http.Client, m *metrics.Metrics, log *zap.Logger) *mediaprovider.ClipdropAdapter {
	if cfg.Media.APIKey == "" {
		log.Warn("Clipdrop API key is not set, image routes will fail")
	}
	return mediaprovider.NewClipdropAdapter(mediaprovider.ClipdropConfig{
		APIKey:  cfg.Media.APIKey,
		BaseURL: cfg.Media.BaseURL,
	}, client, newGuard("clipdrop", cfg, cfg.Media.Timeout, m, log))
}

// ProvideObjectStorage creates the S3 compatible object storage adapter.
func ProvideObjectStorage(cfg *config.Config, m *metrics.Metrics, log *zap.Logger) (outbound.ObjectStoragePort, error) {
	s3cfg := s3adapter.Config{
		Endpoint:        cfg.Storage.Endpoint,
		Region:          cfg.Storage.Region,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		Bucket:          cfg.Storage.Bucket,
		PublicBaseURL:   cfg.Storage.PublicBaseURL,
		SignedURLExpiry: cfg.Storage.SignedURLExpiry,
	}
	client, err := s3adapter.NewClient(context.Background(), s3cfg)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	return s3adapter.NewObjectStorageAdapter(client, s3cfg, newGuard("s3", cfg, cfg.Storage.Timeout, m, log)), nil
}

// ProvidePaymentProvider creates the Stripe provider, or nil when no key is configured.
func ProvidePaymentProvider(cfg *config.Config, m *metrics.Metrics, log *zap.Logger) outbound.PaymentProviderPort {
	if cfg.Payment.StripeSecretKey == "" {
		log.Info("Stripe key not set, test payments record the grant without a charge")
		return nil
	}
	return stripeadapter.NewPaymentProvider(&stripeadapter.Config{
		SecretKey: cfg.Payment.StripeSecretKey,
	}, newGuard("stripe", cfg, 0, m, log))
}

// ===== Domain Providers =====

// DomainSet provides the domain services.
var DomainSet = wire.NewSet(
	ProvideIdentityResolver,
	ProvideEntitlementGate,
	ProvideGenerationDomain,
	ProvideCreationDomain,
	ProvidePaymentDomain,
)

// ProvideIdentityResolver creates the identity resolver.
func ProvideIdentityResolver(
	cfg *config.Config,
	verifier outbound.TokenVerifierPort,
	directory outbound.UserDirectoryPort,
	grants outbound.PremiumGrantPort,
	log *zap.Logger,
) *identity.Resolver {
	return identity.NewResolver(verifier, directory, grants, &identity.Config{
		PlanSource:  cfg.Auth.PlanSource,
		PremiumPlan: cfg.Auth.PremiumPlan,
	}, log.Named("identity"))
}

// ProvideEntitlementGate creates the entitlement gate from the quota table.
func ProvideEntitlementGate(
	cfg *config.Config,
	ledger outbound.QuotaLedgerPort,
	m *metrics.Metrics,
	log *zap.Logger,
) (*entitlement.Gate, error) {
	policy, err := entitlement.NewPolicy(cfg.Quota.Buckets, cfg.Quota.Actions, cfg.Quota.Unmetered)
	if err != nil {
		return nil, err
	}
	gateCfg := entitlement.DefaultConfig()
	gateCfg.ReservationTTL = cfg.Ledger.ReservationTTL
	return entitlement.NewGate(ledger, policy, m, gateCfg, log.Named("entitlement")), nil
}

// ProvideGenerationDomain creates the generation dispatcher.
func ProvideGenerationDomain(
	cfg *config.Config,
	gate *entitlement.Gate,
	text outbound.TextGeneratorPort,
	images outbound.ImageGeneratorPort,
	remover outbound.BackgroundRemoverPort,
	storage outbound.ObjectStoragePort,
	creations outbound.CreationDatabasePort,
	m *metrics.Metrics,
	log *zap.Logger,
) *generation.Domain {
	gc := generation.DefaultConfig()
	gc.Temperature = cfg.AI.Temperature
	gc.DefaultArticleLength = cfg.AI.DefaultArticleLen
	gc.MaxArticleLength = cfg.AI.MaxArticleLen
	gc.BlogTitleMaxTokens = cfg.AI.BlogTitleMaxTokens
	gc.UploadDir = cfg.Storage.UploadDir
	gc.MaxUploadBytes = cfg.Server.MaxUploadBytes
	gc.SignedURLExpiry = cfg.Storage.SignedURLExpiry
	return generation.NewDomain(gate, text, images, remover, storage, creations, m, gc, log.Named("generation"))
}

// ProvideCreationDomain creates the creation catalog.
func ProvideCreationDomain(
	creations outbound.CreationDatabasePort,
	directory outbound.UserDirectoryPort,
	log *zap.Logger,
) *creation.Domain {
	return creation.NewDomain(creations, directory, nil, log.Named("creation"))
}

// ProvidePaymentDomain creates the test payment domain.
func ProvidePaymentDomain(
	cfg *config.Config,
	provider outbound.PaymentProviderPort,
	grants outbound.PremiumGrantPort,
	log *zap.Logger,
) *payment.Domain {
	return payment.NewDomain(provider, grants, &payment.Config{
		Amount:   cfg.Payment.TestAmount,
		Currency: cfg.Payment.Currency,
	}, log.Named("payment"))
}

// AppSet is the full provider graph.
var AppSet = wire.NewSet(
	InfraSet,
	StoreSet,
	ProviderSet,
	DomainSet,
)

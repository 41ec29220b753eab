package contextengine

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/nucleusmind/contextengine/config"
	"github.com/nucleusmind/contextengine/contextwindow"
	"github.com/nucleusmind/contextengine/entity"
	"github.com/nucleusmind/contextengine/errors"
	"github.com/nucleusmind/contextengine/internal/mylog"
	"github.com/nucleusmind/contextengine/internal/tracing"
	"github.com/nucleusmind/contextengine/memory"
	"github.com/nucleusmind/contextengine/subscription"
)

type (
	// Engine is the embeddable entry point: it wires the memory store,
	// the subscription resolver, and the context pipeline behind the two
	// operations the response generator consumes.
	Engine struct {
		service       contextwindow.Service
		store         memory.Store
		subscriptions subscription.Service
		embedder      memory.Embedder
		logger        *slog.Logger

		engineConfig *config.EngineConfig
		logConfig    *config.LogConfig
		openaiConfig *config.OpenAIConfig
		planCatalog  config.PlanCatalog
	}
	Option func(*Engine)
)

func NewEngine(ctx context.Context, optionFuncs ...Option) (*Engine, error) {
	e := &Engine{
		engineConfig: config.NewEngineConfig(),
		logConfig:    config.NewLogConfig(),
		openaiConfig: config.NewOpenAIConfig(),
	}
	for _, f := range optionFuncs {
		f(e)
	}

	if e.logger == nil {
		e.logger = mylog.NewLogger(e.logConfig.LogLevel, e.logConfig.LogHandler)
	}

	if e.store == nil {
		if !e.engineConfig.SqliteEnabled {
			e.store = memory.NewInMemoryStore()
		} else {
			store, err := memory.NewSqliteStore(e.engineConfig.SqlitePath, e.openaiConfig.EmbeddingDimensions)
			if err != nil {
				return nil, err
			}
			e.store = store
		}
	}

	if e.subscriptions == nil {
		if sqliteStore, ok := e.store.(*memory.SqliteStore); ok {
			subs, err := subscription.NewSqliteServiceWithDB(sqliteStore.DB())
			if err != nil {
				return nil, err
			}
			e.subscriptions = subs
		} else {
			e.subscriptions = subscription.NewInMemoryService()
		}
	}

	if e.embedder == nil {
		if e.openaiConfig.APIKey == "" {
			return nil, errors.Wrapf(errors.ErrInvalidConfig, "an embedder or an OpenAI API key is required")
		}
		e.embedder = memory.NewOpenAIEmbedder(e.openaiConfig)
	}

	var tracerProvider trace.TracerProvider
	if e.engineConfig.TraceEnabled {
		tracerProvider = tracing.NewTracerProvider(e.logger, false)
	}

	resolver := contextwindow.NewResolver(e.subscriptions, e.planCatalog, e.logger)
	retriever := memory.NewRetriever(
		e.store,
		e.embedder,
		e.logger,
		e.engineConfig.CandidateLimit,
		e.engineConfig.RecencyWindowDays,
	)
	recorder := memory.NewRecorder(e.store, e.logger, e.engineConfig.PipelineTimeout)

	e.service = contextwindow.NewService(
		e.logger,
		e.engineConfig,
		resolver,
		retriever,
		recorder,
		tracerProvider,
	)

	return e, nil
}

// BuildOptimizedContext assembles a ranked, budget-bounded context for
// the query. It never fails: on internal errors the result is empty with
// the "error" strategy, and the caller proceeds with a degraded prompt.
func (e *Engine) BuildOptimizedContext(ctx context.Context, query, organizationID, userID string) *contextwindow.ContextResult {
	return e.service.BuildOptimizedContext(ctx, query, organizationID, userID)
}

// GetConfigForOrganization resolves the effective context configuration
// for an organization, optionally applying a user's override.
func (e *Engine) GetConfigForOrganization(ctx context.Context, organizationID, userID string) *contextwindow.ContextConfig {
	return e.service.GetConfigForOrganization(ctx, organizationID, userID)
}

// SaveMemory embeds and stores a memory. Ingestion proper belongs to the
// write path outside this engine; this exists for provisioning and tools.
func (e *Engine) SaveMemory(ctx context.Context, m *entity.Memory) error {
	if m == nil {
		return errors.Wrapf(errors.ErrInvalidParams, "memory cannot be nil")
	}
	if len(m.ContentEmbedding) == 0 && m.Content != "" {
		embeddings, err := e.embedder.Embed(ctx, m.Content)
		if err != nil {
			return errors.Wrapf(err, "failed to embed memory content")
		}
		if len(embeddings) > 0 {
			m.ContentEmbedding = embeddings[0]
		}
	}
	return e.store.Save(ctx, m)
}

func (e *Engine) Service() contextwindow.Service {
	return e.service
}

func (e *Engine) Store() memory.Store {
	return e.store
}

func (e *Engine) Subscriptions() subscription.Service {
	return e.subscriptions
}

func (e *Engine) Close() error {
	return e.store.Close()
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithLogConfig(logConfig *config.LogConfig) Option {
	return func(e *Engine) {
		e.logConfig = logConfig
	}
}

func WithEngineConfig(engineConfig *config.EngineConfig) Option {
	return func(e *Engine) {
		e.engineConfig = engineConfig
	}
}

func WithOpenAIAPIKey(apiKey string) Option {
	return func(e *Engine) {
		e.openaiConfig.APIKey = apiKey
	}
}

func WithOpenAIConfig(openaiConfig *config.OpenAIConfig) Option {
	return func(e *Engine) {
		e.openaiConfig = openaiConfig
	}
}

func WithEmbedder(embedder memory.Embedder) Option {
	return func(e *Engine) {
		e.embedder = embedder
	}
}

func WithStore(store memory.Store) Option {
	return func(e *Engine) {
		e.store = store
	}
}

func WithSubscriptionService(subscriptions subscription.Service) Option {
	return func(e *Engine) {
		e.subscriptions = subscriptions
	}
}

func WithPlanCatalog(catalog config.PlanCatalog) Option {
	return func(e *Engine) {
		e.planCatalog = catalog
	}
}

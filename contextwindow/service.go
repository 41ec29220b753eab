package contextwindow

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/nucleusmind/contextengine/config"
	"github.com/nucleusmind/contextengine/memory"
)

type (
	// Service assembles a bounded, ranked context for a tenant's query.
	// It never returns an error: every internal failure degrades to a
	// valid (possibly empty) result the downstream prompt builder can use.
	Service interface {
		BuildOptimizedContext(ctx context.Context, query, organizationID, userID string) *ContextResult
		GetConfigForOrganization(ctx context.Context, organizationID, userID string) *ContextConfig
	}

	service struct {
		resolver    *Resolver
		retriever   *memory.Retriever
		prioritizer *Prioritizer
		compressor  *Compressor
		recorder    *memory.Recorder
		logger      *slog.Logger

		timeout time.Duration
		tracer  trace.Tracer
	}
)

var _ Service = (*service)(nil)

func NewService(
	logger *slog.Logger,
	conf *config.EngineConfig,
	resolver *Resolver,
	retriever *memory.Retriever,
	recorder *memory.Recorder,
	tracerProvider trace.TracerProvider,
) Service {
	if tracerProvider == nil {
		tracerProvider = noop.NewTracerProvider()
	}
	timeout := conf.PipelineTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &service{
		resolver:    resolver,
		retriever:   retriever,
		prioritizer: NewPrioritizer(),
		compressor:  NewCompressor(logger, conf),
		recorder:    recorder,
		logger:      logger,
		timeout:     timeout,
		tracer:      tracerProvider.Tracer("contextwindow"),
	}
}

// GetConfigForOrganization resolves the tier configuration, degrading to
// the free tier when the subscription store cannot answer.
func (s *service) GetConfigForOrganization(ctx context.Context, organizationID, userID string) *ContextConfig {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.resolver.Resolve(ctx, organizationID, userID)
}

// BuildOptimizedContext runs the full pipeline: resolve configuration,
// retrieve candidates, prioritize, compress if needed, fit to the token
// budget, and record access on whatever was selected.
func (s *service) BuildOptimizedContext(ctx context.Context, query, organizationID, userID string) (result *ContextResult) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("context pipeline panicked, returning empty context",
				slog.String("organizationId", organizationID),
				slog.Any("panic", p))
			result = EmptyResult(StrategyError)
		}
	}()

	if organizationID == "" {
		s.logger.Warn("context requested without organization id")
		return EmptyResult(StrategyError)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "buildOptimizedContext")
	defer span.End()

	conf := s.runResolve(ctx, organizationID, userID)

	scope := memory.Scope{OrganizationID: organizationID, UserID: userID}
	candidates := s.runRetrieve(ctx, query, scope, conf)

	ranked, strategy := s.runPrioritize(ctx, candidates, conf)

	compressed, record := s.runCompress(ctx, ranked, conf)
	if record.TokenSavings > 0 {
		s.logger.Debug("compressed context candidates",
			slog.String("organizationId", organizationID),
			slog.Int("tokenSavings", record.TokenSavings),
			slog.Float64("compressionRatio", record.CompressionRatio))
	}

	fit := s.runFit(ctx, compressed, conf)

	s.recorder.RecordAccess(scope, fit.Memories)

	utilization := 0.0
	if conf.MaxContextSize > 0 {
		utilization = float64(fit.TotalTokens) / float64(conf.MaxContextSize)
	}

	return &ContextResult{
		Memories:               fit.Memories,
		TotalTokens:            fit.TotalTokens,
		Truncated:              fit.Truncated,
		PrioritizationStrategy: strategy,
		Metadata: ResultMetadata{
			MemoryCount: MemoryCount{
				Retrieved: len(candidates),
				Selected:  len(fit.Memories),
			},
			ContextUtilization: utilization,
		},
	}
}

func (s *service) runResolve(ctx context.Context, organizationID, userID string) *ContextConfig {
	ctx, span := s.tracer.Start(ctx, "resolveConfig")
	defer span.End()
	return s.resolver.Resolve(ctx, organizationID, userID)
}

func (s *service) runRetrieve(ctx context.Context, query string, scope memory.Scope, conf *ContextConfig) []memory.ScoredMemory {
	ctx, span := s.tracer.Start(ctx, "retrieveCandidates")
	defer span.End()
	return s.retriever.Retrieve(ctx, memory.RetrieveRequest{
		Query:          query,
		Scope:          scope,
		LongTermMemory: conf.FeatureFlags.EnableLongTermMemory,
	})
}

func (s *service) runPrioritize(ctx context.Context, candidates []memory.ScoredMemory, conf *ContextConfig) ([]memory.ScoredMemory, Strategy) {
	_, span := s.tracer.Start(ctx, "prioritizeMemories")
	defer span.End()
	return s.prioritizer.Prioritize(candidates, conf)
}

func (s *service) runCompress(ctx context.Context, ranked []memory.ScoredMemory, conf *ContextConfig) ([]memory.ScoredMemory, *CompressionRecord) {
	_, span := s.tracer.Start(ctx, "compressMemories")
	defer span.End()
	return s.compressor.Compress(ranked, conf)
}

func (s *service) runFit(ctx context.Context, ranked []memory.ScoredMemory, conf *ContextConfig) FitResult {
	_, span := s.tracer.Start(ctx, "fitToContextWindow")
	defer span.End()
	return FitToContextWindow(ranked, conf.MaxContextSize)
}

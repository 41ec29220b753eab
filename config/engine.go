package config

import "time"

type EngineConfig struct {
	// Core Database Settings
	// SqliteEnabled controls whether the SQLite memory store is activated
	// Default: true
	SqliteEnabled bool `json:"sqliteEnabled,omitempty"`

	// SqlitePath specifies the file path for the SQLite database
	// Default: ":memory:"
	SqlitePath string `json:"sqlitePath,omitempty"`

	// Retrieval Settings
	// CandidateLimit is how many nearest neighbours are pulled from the
	// vector index before prioritization
	// Default: 50
	CandidateLimit int `json:"candidateLimit,omitempty"`

	// RecencyWindowDays restricts retrieval for tiers without long-term
	// memory to interactions newer than this many days
	// Default: 30
	RecencyWindowDays int `json:"recencyWindowDays,omitempty"`

	// Compression Settings
	// CompressionTriggerRatio activates compression when the estimated
	// footprint of the prioritized set exceeds ratio * maxContextSize
	// Default: 1.5
	CompressionTriggerRatio float64 `json:"compressionTriggerRatio,omitempty"`

	// CompressionPreserveTop keeps this many top-ranked memories verbatim
	// Default: 3
	CompressionPreserveTop int `json:"compressionPreserveTop,omitempty"`

	// PipelineTimeout bounds a whole BuildOptimizedContext call. The
	// embedding and datastore calls are the only unbounded-latency
	// operations, so this is the effective ceiling on them.
	// Default: 10s
	PipelineTimeout time.Duration `json:"pipelineTimeout,omitempty"`

	// TraceEnabled wraps each pipeline stage in a logged span
	// Default: false
	TraceEnabled bool `json:"traceEnabled,omitempty"`
}

// NewEngineConfig creates an EngineConfig with sensible defaults
func NewEngineConfig() *EngineConfig {
	return &EngineConfig{
		SqliteEnabled: true,
		SqlitePath:    ":memory:",

		CandidateLimit:    50,
		RecencyWindowDays: 30,

		CompressionTriggerRatio: 1.5,
		CompressionPreserveTop:  3,

		PipelineTimeout: 10 * time.Second,
	}
}

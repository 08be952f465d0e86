package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pmc-search/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on HTTP 429/503 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// EutilsConfig holds settings for the NCBI E-utilities client.
type EutilsConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL overrides the E-utilities root, e.g. for a caching mirror.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// Database is the Entrez database queried (default "pmc").
	Database string `json:"database" yaml:"database" mapstructure:"database"`

	// Tool and Email identify the caller to NCBI, as its usage policy asks.
	Tool  string `json:"tool,omitempty" yaml:"tool,omitempty" mapstructure:"tool"`
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`

	// APIKey raises the NCBI request ceiling from 3 to 10 requests per second.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`
}

// AcquisitionConfig holds settings for the collection stage.
type AcquisitionConfig struct {
	// MaxResults is the maximum number of identifiers requested from ESearch (default 500).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// RequestDelay is the fixed pause between consecutive record fetches (default 340ms).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay" mapstructure:"request_delay"`

	// OpenAccessOnly restricts ESearch to the PMC open access subset.
	OpenAccessOnly bool `json:"open_access_only" yaml:"open_access_only" mapstructure:"open_access_only"`

	// ExtractKeywords searches ESearch with the query's keywords rather than
	// its full text (default true).
	ExtractKeywords bool `json:"extract_keywords" yaml:"extract_keywords" mapstructure:"extract_keywords"`
}

// BM25Params are the BM25 tuning constants applied at query time.
type BM25Params struct {
	K1 float64 `json:"k1" yaml:"k1" mapstructure:"k1"`
	B  float64 `json:"b" yaml:"b" mapstructure:"b"`
}

// DefaultBM25 matches the tuning used for short biomedical collections.
var DefaultBM25 = BM25Params{K1: 0.9, B: 0.4}

// WithDefaults returns p with non-positive K1 replaced by DefaultBM25.K1 and
// B clamped to [0, 1].
func (p BM25Params) WithDefaults() BM25Params {
	if p.K1 <= 0 {
		p.K1 = DefaultBM25.K1
	}
	if p.B < 0 {
		p.B = 0
	}
	if p.B > 1 {
		p.B = 1
	}
	return p
}

// QueryConfig holds settings for the query stage.
type QueryConfig struct {
	BM25 BM25Params `json:"bm25" yaml:"bm25" mapstructure:"bm25"`

	// TopK is the number of ranked results requested from the index (default 100).
	TopK int `json:"top_k" yaml:"top_k" mapstructure:"top_k"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	// Level is a logrus level name (default "info").
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "text" or "json".
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	// File, when set, receives log output with size-based rotation.
	File string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	DataDir     string            `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	Eutils      EutilsConfig      `json:"eutils" yaml:"eutils" mapstructure:"eutils"`
	Acquisition AcquisitionConfig `json:"acquire" yaml:"acquire" mapstructure:"acquire"`
	Query       QueryConfig       `json:"query" yaml:"query" mapstructure:"query"`
	Log         LogConfig         `json:"log" yaml:"log" mapstructure:"log"`
}

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-reviewer/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SourceConfig holds the settings shared by every literature source.
type SourceConfig struct {
	// Enabled controls whether the source takes part in the fan-out.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// APIKey is the source's API key, when it has one.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries caps retries of transient failures (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0,lte=10"`
}

// SemanticScholarConfig adds the anonymous-access switch to SourceConfig.
type SemanticScholarConfig struct {
	SourceConfig `yaml:",inline" mapstructure:",squash"`

	// AllowAnonymous lets the source run without an API key at the free-tier
	// request rate. When false, a missing key marks the source as failed.
	AllowAnonymous bool `json:"allow_anonymous" yaml:"allow_anonymous" mapstructure:"allow_anonymous"`
}

// OpenAlexConfig adds the polite-pool contact address to SourceConfig.
type OpenAlexConfig struct {
	SourceConfig `yaml:",inline" mapstructure:",squash"`

	// Email is sent as the mailto parameter, which moves requests into
	// OpenAlex's faster polite pool.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email" validate:"omitempty,email"`
}

// LiteratureConfig holds settings for the literature fan-out.
type LiteratureConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MaxResults is the number of candidates requested from each source (default 5).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results" validate:"gte=1,lte=100"`

	// TimeoutPerSource bounds each (query, source) search, retries included.
	TimeoutPerSource time.Duration `json:"timeout_per_source" yaml:"timeout_per_source" mapstructure:"timeout_per_source" validate:"gt=0"`

	// MaxQueries caps how many generated queries are searched (default 3).
	MaxQueries int `json:"max_queries" yaml:"max_queries" mapstructure:"max_queries" validate:"gte=1,lte=10"`

	// Priority orders sources for dedup, highest first.
	Priority []string `json:"priority" yaml:"priority" mapstructure:"priority"`

	Arxiv           SourceConfig          `json:"arxiv" yaml:"arxiv" mapstructure:"arxiv"`
	SemanticScholar SemanticScholarConfig `json:"semantic_scholar" yaml:"semantic_scholar" mapstructure:"semantic_scholar"`
	OpenAlex        OpenAlexConfig        `json:"openalex" yaml:"openalex" mapstructure:"openalex"`
}

// ModelProvider selects the reasoning backend.
type ModelProvider string

const (
	ProviderOpenAI    ModelProvider = "openai"
	ProviderAnthropic ModelProvider = "anthropic"
)

// ModelConfig holds settings for the reasoning service.
type ModelConfig struct {
	// Provider selects the API flavour: openai (any OpenAI-compatible
	// endpoint such as OpenRouter) or anthropic.
	Provider ModelProvider `json:"provider" yaml:"provider" mapstructure:"provider" validate:"oneof=openai anthropic"`

	// Model is the model identifier (e.g. "openai/gpt-4o-mini").
	Model string `json:"model" yaml:"model" mapstructure:"model" validate:"required"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url" validate:"omitempty,url"`

	// APIKey is the authentication key for the model API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxTokens caps each completion (default 2000).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens" validate:"gte=1"`

	// Temperature is the sampling temperature (default 0.1).
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature" validate:"gte=0,lte=2"`

	// MaxRetries is the number of retries for rate-limited calls (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0,lte=10"`

	// Timeout bounds one model call.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// ReviewConfig holds the run policy.
type ReviewConfig struct {
	// ContinueOnError keeps the pipeline going after a failed stage.
	ContinueOnError bool `json:"continue_on_error" yaml:"continue_on_error" mapstructure:"continue_on_error"`

	// IncludeSocialContent enables the social stage.
	IncludeSocialContent bool `json:"include_social_content" yaml:"include_social_content" mapstructure:"include_social_content"`
}

// LoggingConfig holds structured-logging settings.
type LoggingConfig struct {
	// Level is the minimum level (trace, debug, info, warn, error).
	Level string `json:"level" yaml:"level" mapstructure:"level" validate:"oneof=trace debug info warn warning error disabled"`

	// Format is json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format" validate:"oneof=json console pretty"`

	// Output is stdout or stderr.
	Output string `json:"output" yaml:"output" mapstructure:"output" validate:"oneof=stdout stderr"`
}

// ArchiveConfig holds settings for the review archive.
type ArchiveConfig struct {
	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// Config groups every setting the CLI reads from file, env, and flags.
type Config struct {
	Model      ModelConfig      `json:"model" yaml:"model" mapstructure:"model"`
	Literature LiteratureConfig `json:"literature" yaml:"literature" mapstructure:"literature"`
	Review     ReviewConfig     `json:"review" yaml:"review" mapstructure:"review"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging" mapstructure:"logging"`
	Archive    ArchiveConfig    `json:"archive" yaml:"archive" mapstructure:"archive"`
	Download   HTTPConfig       `json:"download" yaml:"download" mapstructure:"download"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Model: ModelConfig{
			Provider:    ProviderOpenAI,
			Model:       "openai/gpt-4o-mini",
			BaseURL:     "https://openrouter.ai/api/v1",
			MaxTokens:   2000,
			Temperature: 0.1,
			MaxRetries:  2,
			Timeout:     120 * time.Second,
		},
		Literature: LiteratureConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "paper-reviewer/0.1",
			},
			MaxResults:       5,
			TimeoutPerSource: 30 * time.Second,
			MaxQueries:       3,
			Priority:         []string{"semantic_scholar", "arxiv", "openalex"},
			Arxiv:            SourceConfig{Enabled: true, MaxRetries: 3},
			SemanticScholar: SemanticScholarConfig{
				SourceConfig: SourceConfig{Enabled: true, MaxRetries: 3},
			},
			OpenAlex: OpenAlexConfig{
				SourceConfig: SourceConfig{Enabled: false, MaxRetries: 3},
			},
		},
		Review: ReviewConfig{
			IncludeSocialContent: true,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
			Output: "stderr",
		},
		Archive: ArchiveConfig{
			Path: "reviews.db",
		},
		Download: HTTPConfig{
			Timeout:   60 * time.Second,
			UserAgent: "paper-reviewer/0.1",
		},
	}
}

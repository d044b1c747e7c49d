package classify

// ClassifierConfig controls which classification backend is used and how
// aggressively the resilient decorator shields it.
type ClassifierConfig struct {
	// Provider selects the backend: "gemini", "local", or "none".
	Provider string `yaml:"provider" json:"provider"` // default: "none"

	// Model is the generative model name used by the gemini provider.
	Model string `yaml:"model" json:"model"` // default: "gemini-2.0-flash"

	// APIKey authenticates the gemini provider. Usually supplied via
	// environment rather than the config file.
	APIKey string `yaml:"api_key" json:"api_key"`

	// BatchSize caps how many filenames go into a single request.
	BatchSize int `yaml:"batch_size" json:"batch_size"` // default: 25

	// RateLimitRPS is the sustained request rate allowed against the
	// backend. Zero disables rate limiting.
	RateLimitRPS float64 `yaml:"rate_limit_rps" json:"rate_limit_rps"` // default: 2.0

	// RateLimitBurst is the burst allowance on top of RateLimitRPS.
	RateLimitBurst int `yaml:"rate_limit_burst" json:"rate_limit_burst"` // default: 4

	// MaxRetries is how many times a failed request is retried before
	// the error is surfaced.
	MaxRetries int `yaml:"max_retries" json:"max_retries"` // default: 3

	// RetryBackoffMS is the base backoff in milliseconds; it doubles on
	// each subsequent retry.
	RetryBackoffMS int `yaml:"retry_backoff_ms" json:"retry_backoff_ms"` // default: 500

	// BreakerFailures is the consecutive-failure count that opens the
	// circuit breaker.
	BreakerFailures int `yaml:"breaker_failures" json:"breaker_failures"` // default: 5

	// BreakerCooldownMS is how long the breaker stays open before
	// probing again, in milliseconds.
	BreakerCooldownMS int `yaml:"breaker_cooldown_ms" json:"breaker_cooldown_ms"` // default: 30000
}

// BoostConfig controls how classification confidence is folded back into
// heuristic document scores.
type BoostConfig struct {
	// Mode selects the blend: "additive" adds Confidence*BoostWeight,
	// "multiplicative" scales the score by 1+Confidence*(BoostFactor-1).
	Mode string `yaml:"mode" json:"mode"` // default: "additive"

	// BoostWeight is the additive gain at full confidence.
	BoostWeight float64 `yaml:"boost_weight" json:"boost_weight"` // default: 5.0

	// BoostFactor is the multiplicative gain at full confidence.
	BoostFactor float64 `yaml:"boost_factor" json:"boost_factor"` // default: 1.5

	// MaxBoost caps the points any single document can gain.
	MaxBoost float64 `yaml:"max_boost" json:"max_boost"` // default: 10.0
}

const (
	// ProviderGemini classifies through the Gemini API.
	ProviderGemini = "gemini"
	// ProviderLocal classifies with the local embedding model.
	ProviderLocal = "local"
	// ProviderNone disables AI classification entirely.
	ProviderNone = "none"
)

const (
	// ModeAdditive adds confidence-scaled points to the score.
	ModeAdditive = "additive"
	// ModeMultiplicative scales the score by a confidence-driven factor.
	ModeMultiplicative = "multiplicative"
)

// DefaultClassifierConfig returns the classifier configuration used when
// none is supplied.
func DefaultClassifierConfig() *ClassifierConfig {
	return &ClassifierConfig{
		Provider:          ProviderNone,
		Model:             "gemini-2.0-flash",
		BatchSize:         25,
		RateLimitRPS:      2.0,
		RateLimitBurst:    4,
		MaxRetries:        3,
		RetryBackoffMS:    500,
		BreakerFailures:   5,
		BreakerCooldownMS: 30000,
	}
}

// DefaultBoostConfig returns the boost configuration used when none is
// supplied.
func DefaultBoostConfig() *BoostConfig {
	return &BoostConfig{
		Mode:        ModeAdditive,
		BoostWeight: 5.0,
		BoostFactor: 1.5,
		MaxBoost:    10.0,
	}
}

// ApplyDefaults fills zero values with defaults.
func (c *ClassifierConfig) ApplyDefaults() {
	def := DefaultClassifierConfig()
	if c.Provider == "" {
		c.Provider = def.Provider
	}
	if c.Model == "" {
		c.Model = def.Model
	}
	if c.BatchSize <= 0 {
		c.BatchSize = def.BatchSize
	}
	if c.RateLimitRPS <= 0 {
		c.RateLimitRPS = def.RateLimitRPS
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = def.RateLimitBurst
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.RetryBackoffMS <= 0 {
		c.RetryBackoffMS = def.RetryBackoffMS
	}
	if c.BreakerFailures <= 0 {
		c.BreakerFailures = def.BreakerFailures
	}
	if c.BreakerCooldownMS <= 0 {
		c.BreakerCooldownMS = def.BreakerCooldownMS
	}
}

// ApplyDefaults fills zero values with defaults.
func (c *BoostConfig) ApplyDefaults() {
	def := DefaultBoostConfig()
	if c.Mode == "" {
		c.Mode = def.Mode
	}
	if c.BoostWeight <= 0 {
		c.BoostWeight = def.BoostWeight
	}
	if c.BoostFactor <= 0 {
		c.BoostFactor = def.BoostFactor
	}
	if c.MaxBoost <= 0 {
		c.MaxBoost = def.MaxBoost
	}
}

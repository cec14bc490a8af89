package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Limiter gates outbound completion calls; worker.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context, key string) error
}

// Summarizer wraps a provider with response caching and rate limiting.
// The engine itself stays stateless; caching lives here, in the harness
// layer, keyed by transcript hash.
type Summarizer struct {
	provider Provider
	config   Config
	cache    *gocache.Cache // nil when caching disabled
	limiter  Limiter        // nil when unlimited
}

// NewSummarizer creates a summarizer from configuration. A disabled
// provider yields a summarizer whose Generate always reports fallback.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}

	s := &Summarizer{provider: provider, config: config}
	if config.CacheTTL > 0 {
		ttl := time.Duration(config.CacheTTL) * time.Second
		s.cache = gocache.New(ttl, 2*ttl)
	}
	return s, nil
}

// NewSummarizerWithProvider wraps an already-built provider. Used by tests
// and by callers that construct providers themselves.
func NewSummarizerWithProvider(provider Provider, config Config) *Summarizer {
	return &Summarizer{provider: provider, config: config}
}

// SetLimiter installs a rate limiter for batch runs.
func (s *Summarizer) SetLimiter(l Limiter) {
	s.limiter = l
}

// IsEnabled reports whether a provider is configured.
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// ProviderName returns the configured provider name, or "" when disabled.
func (s *Summarizer) ProviderName() string {
	if !s.IsEnabled() {
		return ""
	}
	return s.provider.Name()
}

// ModelName returns the model behind the provider, or "" when disabled.
func (s *Summarizer) ModelName() string {
	type modeler interface{ Model() string }
	if m, ok := s.provider.(modeler); ok {
		return m.Model()
	}
	return ""
}

// Generate produces the coaching block for one session. Returns nil, nil
// when the provider is disabled; any provider error is returned so the
// caller can take its deterministic fallback path.
func (s *Summarizer) Generate(ctx context.Context, req CoachingRequest) (*CoachingResponse, error) {
	if !s.IsEnabled() {
		return nil, nil
	}

	key := cacheKey(req)
	if s.cache != nil {
		if cached, found := s.cache.Get(key); found {
			resp := cached.(CoachingResponse)
			return &resp, nil
		}
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, s.provider.Name()); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	resp, err := s.provider.Coach(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.PublicSummary == "" {
		return nil, fmt.Errorf("empty coaching response from %s", s.provider.Name())
	}

	if s.cache != nil {
		s.cache.Set(key, *resp, gocache.DefaultExpiration)
	}
	return resp, nil
}

func cacheKey(req CoachingRequest) string {
	h := sha256.Sum256([]byte(req.Transcript))
	return hex.EncodeToString(h[:])
}

// Package imagegen generates article cover images through interchangeable
// providers with retry, classified failures, and a deterministic placeholder
// fallback. Generation never fails: callers always get a usable image URL.
package imagegen

import "fmt"

// ErrorKind classifies a provider failure. Retry behavior is decided on the
// kind, never by matching error message text.
type ErrorKind int

const (
	// KindTransient covers timeouts, 5xx responses, and network errors.
	// Worth retrying.
	KindTransient ErrorKind = iota
	// KindRateLimit is an HTTP 429. Retrying within the same run wastes
	// quota, so the engine short-circuits to the placeholder.
	KindRateLimit
	// KindContentPolicy means the prompt was rejected. Retrying the same
	// prompt cannot succeed.
	KindContentPolicy
	// KindAuth means the credential was rejected.
	KindAuth
	// KindOther is any unclassified failure. Not retried: without knowing
	// the cause, another attempt with the same prompt is as likely to fail.
	KindOther
)

// String returns the kind name used in logs and placeholder reasons.
func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindRateLimit:
		return "rate_limit"
	case KindContentPolicy:
		return "content_policy"
	case KindAuth:
		return "auth"
	default:
		return "other"
	}
}

// Retryable reports whether another attempt with the same prompt can
// reasonably succeed. Only transient failures qualify.
func (k ErrorKind) Retryable() bool {
	return k == KindTransient
}

// ProviderError is the classified failure every provider returns.
type ProviderError struct {
	Kind     ErrorKind
	Provider string
	Status   int // HTTP status when applicable, 0 otherwise
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s image generation failed (%s, HTTP %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s image generation failed (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// classifyStatus maps an HTTP status code to an error kind.
func classifyStatus(status int) ErrorKind {
	switch {
	case status == 429:
		return KindRateLimit
	case status == 400 || status == 422:
		return KindContentPolicy
	case status == 401 || status == 403:
		return KindAuth
	case status >= 500:
		return KindTransient
	default:
		return KindOther
	}
}

// GeneratedImage is a provider's successful output.
type GeneratedImage struct {
	URL           string // Hosted image URL
	RevisedPrompt string // Provider-rewritten prompt, when reported
}

package redirect

import "time"

// DefaultKey is the destinations entry used when the viewer country has no
// entry of its own.
const DefaultKey = "default"

// Record is a short link as stored by the backing key-value store.
// Destinations maps uppercase ISO country codes, plus DefaultKey, to URLs.
type Record struct {
	ShortID      string            `json:"short_id" dynamodbav:"short_id"`
	Destinations map[string]string `json:"destinations" dynamodbav:"destinations"`
}

// Destination picks the URL for country, falling back to the default entry.
// Empty values count as missing.
func (r Record) Destination(country string) (string, bool) {
	if country != "" {
		if u := r.Destinations[country]; u != "" {
			return u, true
		}
	}
	if u := r.Destinations[DefaultKey]; u != "" {
		return u, true
	}
	return "", false
}

// Request is the transport-independent input of one resolution.
type Request struct {
	ShortID       string
	ViewerCountry string
}

type Outcome uint8

const (
	OutcomeRedirect Outcome = iota + 1
	OutcomeNotFound
	OutcomeNoContent
	OutcomeInternalError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRedirect:
		return "redirect"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeNoContent:
		return "no_content"
	case OutcomeInternalError:
		return "internal_error"
	default:
		return "unknown"
	}
}

// Result is the outcome of a resolution. Only the fields relevant to
// Outcome are set: URL and TTL for redirects, Reason and TTL for not-found,
// Reason for internal errors.
type Result struct {
	Outcome Outcome
	URL     string
	TTL     time.Duration
	Reason  string
}

func Redirect(url string, ttl time.Duration) Result {
	return Result{Outcome: OutcomeRedirect, URL: url, TTL: ttl}
}

func NotFound(reason string, ttl time.Duration) Result {
	return Result{Outcome: OutcomeNotFound, Reason: reason, TTL: ttl}
}

func NoContent() Result {
	return Result{Outcome: OutcomeNoContent}
}

func InternalError(message string) Result {
	return Result{Outcome: OutcomeInternalError, Reason: message}
}

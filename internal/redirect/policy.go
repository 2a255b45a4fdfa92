package redirect

import (
	"fmt"
	"net/http"
	"time"
)

const (
	DefaultRedirectTTL = 300 * time.Second
	DefaultNotFoundTTL = 60 * time.Second

	// InternalErrorBody is the only text a viewer sees on a 500.
	InternalErrorBody = "An internal error occurred."

	NoShortIDReason = "No short id"
)

// RootMode selects what a request for "/" resolves to.
type RootMode string

const (
	RootNotFound RootMode = "not_found"
	RootRedirect RootMode = "redirect"
)

// CacheMode selects the Cache-Control directive emitted on redirects and
// not-found responses.
type CacheMode string

const (
	// CacheMaxAge emits "max-age=<ttl seconds>".
	CacheMaxAge CacheMode = "max_age"
	// CachePrivate emits "private, max-age=0" and disables shared caching.
	CachePrivate CacheMode = "private"
)

// Policy carries the deployment-dependent parts of resolution and rendering.
type Policy struct {
	RedirectTTL     time.Duration
	NotFoundTTL     time.Duration
	RootMode        RootMode
	RootRedirectURL string
	CacheMode       CacheMode
}

func DefaultPolicy() Policy {
	return Policy{
		RedirectTTL: DefaultRedirectTTL,
		NotFoundTTL: DefaultNotFoundTTL,
		RootMode:    RootNotFound,
		CacheMode:   CacheMaxAge,
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.RedirectTTL <= 0 {
		p.RedirectTTL = d.RedirectTTL
	}
	if p.NotFoundTTL <= 0 {
		p.NotFoundTTL = d.NotFoundTTL
	}
	if p.RootMode == "" {
		p.RootMode = d.RootMode
	}
	if p.CacheMode == "" {
		p.CacheMode = d.CacheMode
	}
	return p
}

// CacheControl returns the Cache-Control value for a response cacheable for ttl.
func (p Policy) CacheControl(ttl time.Duration) string {
	if p.CacheMode == CachePrivate {
		return "private, max-age=0"
	}
	return fmt.Sprintf("max-age=%d", int64(ttl/time.Second))
}

// Response is a transport-neutral HTTP response.
type Response struct {
	Status int
	Header http.Header
	Body   string
}

// Render maps a Result to status, headers and body.
//
//	Redirect      302  Location, Cache-Control
//	NotFound      404  Cache-Control, reason body
//	NoContent     204  nothing
//	InternalError 500  generic body
func (p Policy) Render(res Result) Response {
	p = p.withDefaults()

	switch res.Outcome {
	case OutcomeRedirect:
		h := http.Header{}
		h.Set("Location", res.URL)
		h.Set("Cache-Control", p.CacheControl(res.TTL))
		return Response{Status: http.StatusFound, Header: h}

	case OutcomeNotFound:
		ttl := res.TTL
		if ttl <= 0 {
			ttl = p.NotFoundTTL
		}
		h := http.Header{}
		h.Set("Cache-Control", p.CacheControl(ttl))
		return Response{Status: http.StatusNotFound, Header: h, Body: res.Reason}

	case OutcomeNoContent:
		return Response{Status: http.StatusNoContent, Header: http.Header{}}

	default:
		return Response{
			Status: http.StatusInternalServerError,
			Header: http.Header{},
			Body:   InternalErrorBody,
		}
	}
}

// Package edge adapts CloudFront origin-request events to the redirect
// resolver.
package edge

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/sundayezeilo/georedirect/internal/httpx"
	"github.com/sundayezeilo/georedirect/internal/redirect"
)

type Handler struct {
	resolver      redirect.Resolver
	policy        redirect.Policy
	assets        redirect.StaticAssets
	countryHeader string
	logger        *slog.Logger
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Resolver       redirect.Resolver
	Policy         redirect.Policy
	StaticSuffixes []string
	CountryHeader  string // defaults to redirect.DefaultCountryHeader
	Logger         *slog.Logger
}

func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	header := cfg.CountryHeader
	if header == "" {
		header = redirect.DefaultCountryHeader
	}

	return &Handler{
		resolver: cfg.Resolver,
		policy:   cfg.Policy,
		assets:   redirect.NewStaticAssets(cfg.StaticSuffixes),
		// CloudFront lowercases header names in the event.
		countryHeader: strings.ToLower(header),
		logger:        logger,
	}
}

// Handle answers an origin-request event with a generated response. It
// never returns an error: CloudFront would turn one into a 502 with its own
// error page.
func (h *Handler) Handle(ctx context.Context, ev Event) (Response, error) {
	if len(ev.Records) == 0 {
		h.logger.ErrorContext(ctx, "origin-request event has no records")
		return Convert(h.policy.Render(redirect.InternalError(redirect.InternalErrorBody))), nil
	}

	cf := ev.Records[0].CF
	if cf.Config.RequestID != "" {
		ctx = httpx.WithRequestID(ctx, cf.Config.RequestID)
	}
	req := cf.Request

	var res redirect.Result
	if h.assets.Match(req.URI) {
		res = redirect.NoContent()
	} else {
		res = h.resolver.Resolve(ctx, redirect.Request{
			ShortID:       redirect.ShortIDFromPath(req.URI),
			ViewerCountry: req.Headers.Get(h.countryHeader),
		})
	}

	resp := Convert(h.policy.Render(res))
	h.logger.InfoContext(ctx, "edge request",
		"request_id", httpx.GetRequestID(ctx),
		"uri", req.URI,
		"status", resp.Status,
		"outcome", res.Outcome.String(),
	)
	return resp, nil
}

// Convert renders a redirect.Response in CloudFront's generated-response shape.
func Convert(r redirect.Response) Response {
	out := Response{
		Status:            strconv.Itoa(r.Status),
		StatusDescription: http.StatusText(r.Status),
		Body:              r.Body,
	}
	if len(r.Header) == 0 {
		return out
	}

	out.Headers = make(Headers, len(r.Header))
	for name, values := range r.Header {
		lower := strings.ToLower(name)
		for _, v := range values {
			out.Headers[lower] = append(out.Headers[lower], Header{
				Key:   http.CanonicalHeaderKey(name),
				Value: v,
			})
		}
	}
	return out
}

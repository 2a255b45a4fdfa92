package redirect

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sundayezeilo/georedirect/internal/errx"
	"github.com/sundayezeilo/georedirect/internal/httpx"
	"github.com/sundayezeilo/georedirect/internal/metrics"
)

const tracerName = "github.com/sundayezeilo/georedirect/internal/redirect"

// Store is the read side of the short link key-value store.
// A missing key is reported as found == false with a nil error.
type Store interface {
	Get(ctx context.Context, shortID string) (rec Record, found bool, err error)
}

// Resolver turns a short id and viewer country into a Result.
// Implementations must be safe for concurrent use.
type Resolver interface {
	Resolve(ctx context.Context, req Request) Result
}

type resolver struct {
	store  Store
	policy Policy
	logger *slog.Logger
	tracer trace.Tracer
}

// ResolverConfig holds the dependencies of a Resolver.
type ResolverConfig struct {
	Store  Store
	Policy Policy
	Logger *slog.Logger
}

// NewResolver creates a Resolver. Zero policy fields take their defaults.
func NewResolver(cfg ResolverConfig) Resolver {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &resolver{
		store:  cfg.Store,
		policy: cfg.Policy.withDefaults(),
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}
}

// Resolve never fails: every store error becomes an InternalError result.
func (r *resolver) Resolve(ctx context.Context, req Request) Result {
	ctx, span := r.tracer.Start(ctx, "redirect.Resolve")
	defer span.End()

	req.ViewerCountry = NormalizeCountry(req.ViewerCountry)
	span.SetAttributes(
		attribute.String("redirect.short_id", req.ShortID),
		attribute.String("redirect.viewer_country", req.ViewerCountry),
	)

	res, label := r.resolve(ctx, req)

	span.SetAttributes(attribute.String("redirect.outcome", label))
	if res.Outcome == OutcomeInternalError {
		span.SetStatus(codes.Error, label)
	}
	metrics.ResolutionsTotal.WithLabelValues(label).Inc()

	return res
}

func (r *resolver) resolve(ctx context.Context, req Request) (Result, string) {
	logger := r.logger.With(
		"request_id", httpx.GetRequestID(ctx),
		"short_id", req.ShortID,
		"viewer_country", req.ViewerCountry,
	)

	if req.ShortID == "" {
		if r.policy.RootMode == RootRedirect && r.policy.RootRedirectURL != "" {
			return Redirect(r.policy.RootRedirectURL, r.policy.RedirectTTL), "root_redirect"
		}
		return NotFound(NoShortIDReason, r.policy.NotFoundTTL), OutcomeNotFound.String()
	}

	rec, found, err := r.store.Get(ctx, req.ShortID)
	if err != nil {
		logger.ErrorContext(ctx, "short link lookup failed",
			"error", err.Error(),
			"error_kind", errx.KindOf(err),
			"operation", errx.OpOf(err),
		)
		return InternalError(InternalErrorBody), OutcomeInternalError.String()
	}

	if !found {
		logger.InfoContext(ctx, "short link not found")
		return NotFound(fmt.Sprintf("Short URL for %q not found.", req.ShortID), r.policy.NotFoundTTL),
			OutcomeNotFound.String()
	}

	url, ok := rec.Destination(req.ViewerCountry)
	if !ok {
		logger.WarnContext(ctx, "short link has no usable destination",
			"data_quality", true,
			"destinations", len(rec.Destinations),
		)
		return NotFound(fmt.Sprintf("No destination for %q", req.ShortID), r.policy.NotFoundTTL),
			"no_destination"
	}

	logger.DebugContext(ctx, "short link resolved", "url", url)
	return Redirect(url, r.policy.RedirectTTL), OutcomeRedirect.String()
}

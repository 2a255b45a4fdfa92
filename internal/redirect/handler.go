package redirect

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/sundayezeilo/georedirect/internal/httpx"
)

// DefaultCountryHeader is the geolocation header set by CloudFront.
const DefaultCountryHeader = "CloudFront-Viewer-Country"

// Handler serves short links over plain net/http. It is the HTTP
// counterpart of the CloudFront adapter in package edge.
type Handler struct {
	resolver      Resolver
	policy        Policy
	assets        StaticAssets
	countryHeader string
	logger        *slog.Logger
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Resolver       Resolver
	Policy         Policy
	StaticSuffixes []string
	CountryHeader  string // defaults to DefaultCountryHeader
	Logger         *slog.Logger
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	header := cfg.CountryHeader
	if header == "" {
		header = DefaultCountryHeader
	}

	return &Handler{
		resolver:      cfg.Resolver,
		policy:        cfg.Policy.withDefaults(),
		assets:        NewStaticAssets(cfg.StaticSuffixes),
		countryHeader: header,
		logger:        logger,
	}
}

// ServeHTTP resolves the request path and writes the rendered result.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var res Result
	if h.assets.Match(r.URL.Path) {
		res = NoContent()
	} else {
		res = h.resolver.Resolve(r.Context(), Request{
			ShortID:       ShortIDFromPath(r.URL.Path),
			ViewerCountry: r.Header.Get(h.countryHeader),
		})
	}

	write(w, r, h.policy.Render(res), h.logger)
}

func write(w http.ResponseWriter, r *http.Request, resp Response, logger *slog.Logger) {
	for k, vs := range resp.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	if resp.Body != "" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(resp.Status)

	if resp.Body == "" || r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, resp.Body); err != nil {
		logger.WarnContext(r.Context(), "failed to write response body",
			"request_id", httpx.GetRequestID(r.Context()),
			"error", err.Error(),
		)
	}
}

package edge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/sundayezeilo/georedirect/internal/errx"
	"github.com/sundayezeilo/georedirect/internal/redirect"
	"github.com/sundayezeilo/georedirect/internal/store/memory"
)

const originRequestEvent = `{
  "Records": [
    {
      "cf": {
        "config": {
          "distributionId": "EDFDVBD6EXAMPLE",
          "eventType": "origin-request",
          "requestId": "4TyzHTaYWb1GX1qTfsHhEqV6HUDd_BzoBZnwfnvQc_1oF26ClkoUSEQ=="
        },
        "request": {
          "clientIp": "203.0.113.178",
          "method": "GET",
          "uri": "%s",
          "querystring": "",
          "headers": {
            "host": [{"key": "Host", "value": "go.example.com"}],
            "cloudfront-viewer-country": [{"key": "CloudFront-Viewer-Country", "value": "%s"}]
          }
        }
      }
    }
  ]
}`

func decodeEvent(t *testing.T, uri, country string) Event {
	t.Helper()
	raw := strings.Replace(strings.Replace(originRequestEvent, "%s", uri, 1), "%s", country, 1)

	var ev Event
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	return ev
}

// countingStore wraps a memory store and counts lookups.
type countingStore struct {
	*memory.Store
	calls int
	err   error
}

func (s *countingStore) Get(ctx context.Context, id string) (redirect.Record, bool, error) {
	s.calls++
	if s.err != nil {
		return redirect.Record{}, false, s.err
	}
	return s.Store.Get(ctx, id)
}

func newTestHandler(store redirect.Store) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(HandlerConfig{
		Resolver:       redirect.NewResolver(redirect.ResolverConfig{Store: store, Logger: logger}),
		StaticSuffixes: []string{"favicon.ico"},
		Logger:         logger,
	})
}

func seededStore() *countingStore {
	return &countingStore{Store: memory.New(redirect.Record{
		ShortID: "promo",
		Destinations: map[string]string{
			"US":      "https://example.com/us",
			"default": "https://example.com",
		},
	})}
}

func TestHandle_Redirects(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		country  string
		location string
	}{
		{name: "country match", uri: "/promo", country: "US", location: "https://example.com/us"},
		{name: "lowercase country", uri: "/promo", country: "us", location: "https://example.com/us"},
		{name: "fallback", uri: "/promo", country: "FR", location: "https://example.com"},
		{name: "double slash", uri: "//promo", country: "", location: "https://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(seededStore())

			resp, err := h.Handle(context.Background(), decodeEvent(t, tt.uri, tt.country))
			if err != nil {
				t.Fatalf("Handle() error: %v", err)
			}
			if resp.Status != "302" || resp.StatusDescription != "Found" {
				t.Errorf("status = %s %s, want 302 Found", resp.Status, resp.StatusDescription)
			}
			if got := resp.Headers.Get("location"); got != tt.location {
				t.Errorf("location = %q, want %q", got, tt.location)
			}
			if got := resp.Headers["location"][0].Key; got != "Location" {
				t.Errorf("location key = %q, want Location", got)
			}
			if got := resp.Headers.Get("cache-control"); got != "max-age=300" {
				t.Errorf("cache-control = %q, want max-age=300", got)
			}
		})
	}
}

func TestHandle_NotFound(t *testing.T) {
	h := newTestHandler(seededStore())

	resp, _ := h.Handle(context.Background(), decodeEvent(t, "/nope", "US"))

	if resp.Status != "404" || resp.StatusDescription != "Not Found" {
		t.Errorf("status = %s %s, want 404 Not Found", resp.Status, resp.StatusDescription)
	}
	if resp.Body != `Short URL for "nope" not found.` {
		t.Errorf("body = %q", resp.Body)
	}
	if got := resp.Headers.Get("cache-control"); got != "max-age=60" {
		t.Errorf("cache-control = %q, want max-age=60", got)
	}
}

func TestHandle_RootPath(t *testing.T) {
	store := seededStore()
	h := newTestHandler(store)

	resp, _ := h.Handle(context.Background(), decodeEvent(t, "/", "US"))

	if resp.Status != "404" || resp.Body != "No short id" {
		t.Errorf("got %s %q, want 404 No short id", resp.Status, resp.Body)
	}
	if store.calls != 0 {
		t.Errorf("store called %d times, want 0", store.calls)
	}
}

func TestHandle_Favicon(t *testing.T) {
	store := seededStore()
	h := newTestHandler(store)

	resp, _ := h.Handle(context.Background(), decodeEvent(t, "/favicon.ico", "US"))

	if resp.Status != "204" || resp.StatusDescription != "No Content" {
		t.Errorf("status = %s %s, want 204 No Content", resp.Status, resp.StatusDescription)
	}
	if len(resp.Headers) != 0 || resp.Body != "" {
		t.Errorf("expected bare response, got %+v", resp)
	}
	if store.calls != 0 {
		t.Errorf("store called %d times, want 0", store.calls)
	}
}

func TestHandle_StoreFailure(t *testing.T) {
	store := seededStore()
	store.err = errx.E("dynamo.Get", errx.Unavailable, errors.New("ResourceNotFoundException: table url-shortener"))
	h := newTestHandler(store)

	resp, err := h.Handle(context.Background(), decodeEvent(t, "/promo", "US"))
	if err != nil {
		t.Fatalf("Handle() must not return an error, got %v", err)
	}
	if resp.Status != "500" || resp.StatusDescription != "Internal Server Error" {
		t.Errorf("status = %s %s", resp.Status, resp.StatusDescription)
	}
	if strings.Contains(resp.Body, "ResourceNotFound") {
		t.Errorf("internal detail leaked: %q", resp.Body)
	}
}

func TestHandle_EmptyEvent(t *testing.T) {
	h := newTestHandler(seededStore())

	resp, err := h.Handle(context.Background(), Event{})
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if resp.Status != "500" {
		t.Errorf("status = %s, want 500", resp.Status)
	}
}

func TestHandle_MissingCountryHeader(t *testing.T) {
	h := newTestHandler(seededStore())

	ev := decodeEvent(t, "/promo", "US")
	delete(ev.Records[0].CF.Request.Headers, "cloudfront-viewer-country")

	resp, _ := h.Handle(context.Background(), ev)
	if got := resp.Headers.Get("location"); got != "https://example.com" {
		t.Errorf("location = %q, want default destination", got)
	}
}

func TestResponse_JSONShape(t *testing.T) {
	resp := Convert(redirect.DefaultPolicy().Render(redirect.Redirect("https://example.com", redirect.DefaultRedirectTTL)))

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["status"] != "302" {
		t.Errorf("status = %v, want string 302", got["status"])
	}
	if _, ok := got["body"]; ok {
		t.Error("redirect response should omit body")
	}
	headers := got["headers"].(map[string]any)
	loc := headers["location"].([]any)[0].(map[string]any)
	if loc["key"] != "Location" || loc["value"] != "https://example.com" {
		t.Errorf("location header = %v", loc)
	}

	noContent, _ := json.Marshal(Convert(redirect.DefaultPolicy().Render(redirect.NoContent())))
	if strings.Contains(string(noContent), "headers") {
		t.Errorf("204 response should omit headers: %s", noContent)
	}
}

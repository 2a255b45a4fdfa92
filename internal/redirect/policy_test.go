package redirect

import (
	"net/http"
	"testing"
	"time"
)

func TestPolicy_Render(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name       string
		res        Result
		wantStatus int
		wantHeader map[string]string
		wantBody   string
	}{
		{
			name:       "redirect",
			res:        Redirect("https://example.com/us", 300*time.Second),
			wantStatus: http.StatusFound,
			wantHeader: map[string]string{"Location": "https://example.com/us", "Cache-Control": "max-age=300"},
		},
		{
			name:       "not found",
			res:        NotFound(`Short URL for "x" not found.`, 60*time.Second),
			wantStatus: http.StatusNotFound,
			wantHeader: map[string]string{"Cache-Control": "max-age=60", "Location": ""},
			wantBody:   `Short URL for "x" not found.`,
		},
		{
			name:       "not found without ttl uses policy",
			res:        NotFound("No short id", 0),
			wantStatus: http.StatusNotFound,
			wantHeader: map[string]string{"Cache-Control": "max-age=60"},
			wantBody:   "No short id",
		},
		{
			name:       "no content",
			res:        NoContent(),
			wantStatus: http.StatusNoContent,
			wantHeader: map[string]string{"Cache-Control": "", "Location": ""},
		},
		{
			name:       "internal error hides message",
			res:        InternalError("dial tcp 10.0.0.1:443: i/o timeout"),
			wantStatus: http.StatusInternalServerError,
			wantHeader: map[string]string{"Cache-Control": ""},
			wantBody:   InternalErrorBody,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Render(tt.res)

			if got.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", got.Status, tt.wantStatus)
			}
			for k, want := range tt.wantHeader {
				if v := got.Header.Get(k); v != want {
					t.Errorf("header %s = %q, want %q", k, v, want)
				}
			}
			if got.Body != tt.wantBody {
				t.Errorf("Body = %q, want %q", got.Body, tt.wantBody)
			}
		})
	}
}

func TestPolicy_CacheControl(t *testing.T) {
	tests := []struct {
		name string
		mode CacheMode
		ttl  time.Duration
		want string
	}{
		{name: "max-age redirect", mode: CacheMaxAge, ttl: 300 * time.Second, want: "max-age=300"},
		{name: "max-age truncates sub-second", mode: CacheMaxAge, ttl: 1500 * time.Millisecond, want: "max-age=1"},
		{name: "private ignores ttl", mode: CachePrivate, ttl: 300 * time.Second, want: "private, max-age=0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Policy{CacheMode: tt.mode}).CacheControl(tt.ttl); got != tt.want {
				t.Errorf("CacheControl() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPolicy_RenderPrivateMode(t *testing.T) {
	p := Policy{CacheMode: CachePrivate}

	if got := p.Render(Redirect("https://x", time.Minute)).Header.Get("Cache-Control"); got != "private, max-age=0" {
		t.Errorf("redirect Cache-Control = %q", got)
	}
	if got := p.Render(NotFound("nope", time.Minute)).Header.Get("Cache-Control"); got != "private, max-age=0" {
		t.Errorf("not found Cache-Control = %q", got)
	}
}

package redirect

import "testing"

func TestShortIDFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/abc123", "abc123"},
		{"//abc123", "abc123"},
		{"abc123", "abc123"},
		{"/", ""},
		{"", ""},
		{"/campaign/spring", "campaign/spring"},
	}

	for _, tt := range tests {
		if got := ShortIDFromPath(tt.path); got != tt.want {
			t.Errorf("ShortIDFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestNormalizeCountry(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"us", "US"},
		{"US", "US"},
		{" fr\t", "FR"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeCountry(tt.in); got != tt.want {
			t.Errorf("NormalizeCountry(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStaticAssets_Match(t *testing.T) {
	assets := NewStaticAssets([]string{"favicon.ico", " ", "robots.txt"})

	if len(assets) != 2 {
		t.Fatalf("expected blank suffixes to be dropped, got %v", assets)
	}

	tests := []struct {
		path string
		want bool
	}{
		{"/favicon.ico", true},
		{"/nested/favicon.ico", true},
		{"/robots.txt", true},
		{"/abc", false},
		{"/favicon.ico/abc", false},
	}

	for _, tt := range tests {
		if got := assets.Match(tt.path); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}

	if (StaticAssets(nil)).Match("/favicon.ico") {
		t.Error("empty set should not match")
	}
}

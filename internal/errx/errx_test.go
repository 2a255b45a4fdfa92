package errx

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestE(t *testing.T) {
	t.Run("returns nil when error is nil", func(t *testing.T) {
		got := E("op", NotFound, nil)
		if got != nil {
			t.Errorf("E() with nil error = %v, want nil", got)
		}
	})

	t.Run("constructs Error with all fields", func(t *testing.T) {
		root := errors.New("root cause")
		err := E("dynamo.Get", Unavailable, root)

		var e *Error
		if !errors.As(err, &e) {
			t.Fatal("expected error to be of type *errx.Error")
		}

		if got, want := e.Op, "dynamo.Get"; got != want {
			t.Errorf("Op = %q, want %q", got, want)
		}
		if got, want := e.Kind, Unavailable; got != want {
			t.Errorf("Kind = %v, want %v", got, want)
		}
		if !errors.Is(e.Err, root) {
			t.Errorf("Err = %v, want %v", e.Err, root)
		}
	})

	t.Run("preserves all error kinds", func(t *testing.T) {
		kinds := []Kind{Unknown, NotFound, Invalid, Integrity, Timeout, Unavailable, Internal}
		root := errors.New("test error")

		for _, kind := range kinds {
			t.Run(fmt.Sprintf("kind_%d", kind), func(t *testing.T) {
				err := E("operation", kind, root)
				if got := KindOf(err); got != kind {
					t.Errorf("KindOf() = %v, want %v", got, kind)
				}
			})
		}
	})
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: Timeout},
		{name: "wrapped deadline", err: fmt.Errorf("get item: %w", context.DeadlineExceeded), want: Timeout},
		{name: "cancelled", err: context.Canceled, want: Timeout},
		{name: "other error uses fallback", err: errors.New("connection refused"), want: Unavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromContext("op", Unavailable, tt.err)
			if got := KindOf(err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("wrapped error lost original cause")
			}
		})
	}

	if FromContext("op", Unavailable, nil) != nil {
		t.Error("FromContext(nil) should be nil")
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "nil inner error returns op",
			err:  &Error{Op: "redirect.Resolve", Kind: Internal, Err: nil},
			want: "redirect.Resolve",
		},
		{
			name: "empty op returns inner error message",
			err:  &Error{Op: "", Kind: Unknown, Err: errors.New("root cause")},
			want: "root cause",
		},
		{
			name: "normal case formats op and error",
			err:  &Error{Op: "postgres.Get", Kind: Unavailable, Err: errors.New("root cause")},
			want: "postgres.Get: root cause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	t.Run("plain error is Unknown", func(t *testing.T) {
		if got := KindOf(errors.New("plain")); got != Unknown {
			t.Errorf("KindOf() = %v, want Unknown", got)
		}
	})

	t.Run("nil is Unknown", func(t *testing.T) {
		if got := KindOf(nil); got != Unknown {
			t.Errorf("KindOf(nil) = %v, want Unknown", got)
		}
	})

	t.Run("outermost kind wins", func(t *testing.T) {
		inner := E("inner", Integrity, errors.New("bad attribute"))
		outer := E("outer", Unavailable, inner)
		if got := KindOf(outer); got != Unavailable {
			t.Errorf("KindOf() = %v, want Unavailable", got)
		}
		if got := OpOf(outer); got != "outer" {
			t.Errorf("OpOf() = %q, want %q", got, "outer")
		}
	})

	t.Run("found through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("context: %w", E("store.Get", Timeout, errors.New("slow")))
		if !Is(err, Timeout) {
			t.Error("Is(err, Timeout) = false, want true")
		}
		if Is(nil, Timeout) {
			t.Error("Is(nil, Timeout) = true, want false")
		}
	})
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Unknown, "Unknown"},
		{NotFound, "NotFound"},
		{Invalid, "Invalid"},
		{Integrity, "Integrity"},
		{Timeout, "Timeout"},
		{Unavailable, "Unavailable"},
		{Internal, "Internal"},
		{Kind(99), "Kind(99)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

package booking

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/geocoder89/eventbooking/internal/validation"
)

type fakeLookup struct {
	existsFn func(ctx context.Context, id string) (bool, error)
	calls    int
}

func (f *fakeLookup) Exists(ctx context.Context, id string) (bool, error) {
	f.calls++
	if f.existsFn != nil {
		return f.existsFn(ctx, id)
	}
	return true, nil
}

type emptyErr struct{}

func (emptyErr) Error() string { return "" }

func TestValidate_Email(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		wantEmail string
		wantErr   bool
	}{
		{name: "normalized", email: "  Jane.Doe@Example.COM ", wantEmail: "jane.doe@example.com"},
		{name: "missing", email: "   ", wantErr: true},
		{name: "no_at", email: "jane.example.com", wantErr: true},
		{name: "two_ats", email: "jane@doe@example.com", wantErr: true},
		{name: "inner_space", email: "jane doe@example.com", wantErr: true},
		{name: "no_domain_dot", email: "jane@localhost", wantErr: true},
		{name: "too_long", email: strings.Repeat("a", 250) + "@x.io", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := &fakeLookup{}

			got, err := Validate(context.Background(), Booking{EventID: "evt-1", Email: tt.email}, nil, lookup)
			if tt.wantErr {
				ve, ok := validation.AsError(err)
				if !ok {
					t.Fatalf("expected validation error, got %v", err)
				}
				if !ve.Has("email") {
					t.Fatalf("expected email field error, got %+v", ve.Fields)
				}
				if lookup.calls != 0 {
					t.Fatalf("reference must not be checked for invalid input, calls=%d", lookup.calls)
				}
				return
			}

			if err != nil {
				t.Fatalf("Validate error: %v", err)
			}
			if got.Email != tt.wantEmail {
				t.Fatalf("expected email %q, got %q", tt.wantEmail, got.Email)
			}
			if lookup.calls != 1 {
				t.Fatalf("expected one lookup, got %d", lookup.calls)
			}
		})
	}
}

func TestValidate_MissingEventID(t *testing.T) {
	_, err := Validate(context.Background(), Booking{Email: "a@b.co"}, nil, &fakeLookup{})

	ve, ok := validation.AsError(err)
	if !ok || !ve.Has("eventId") {
		t.Fatalf("expected eventId field error, got %v", err)
	}
}

func TestValidate_Reference(t *testing.T) {
	t.Run("missing_event_names_id", func(t *testing.T) {
		lookup := &fakeLookup{existsFn: func(ctx context.Context, id string) (bool, error) { return false, nil }}

		_, err := Validate(context.Background(), Booking{EventID: "evt-404", Email: "a@b.co"}, nil, lookup)

		if !errors.Is(err, ErrEventNotFound) {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
		var refErr *ReferenceError
		if !errors.As(err, &refErr) {
			t.Fatalf("expected *ReferenceError, got %T", err)
		}
		if refErr.EventID != "evt-404" || !strings.Contains(err.Error(), "evt-404") {
			t.Fatalf("error should name the missing id: %v", err)
		}
	})

	t.Run("lookup_failure_preserves_message", func(t *testing.T) {
		cause := errors.New("connection reset")
		lookup := &fakeLookup{existsFn: func(ctx context.Context, id string) (bool, error) { return false, cause }}

		_, err := Validate(context.Background(), Booking{EventID: "evt-1", Email: "a@b.co"}, nil, lookup)

		if !errors.Is(err, cause) {
			t.Fatalf("expected wrapped cause, got %v", err)
		}
		if want := "eventId: failed to validate event reference: connection reset"; err.Error() != want {
			t.Fatalf("got %q, want %q", err.Error(), want)
		}
	})

	t.Run("lookup_failure_without_message", func(t *testing.T) {
		lookup := &fakeLookup{existsFn: func(ctx context.Context, id string) (bool, error) { return false, emptyErr{} }}

		_, err := Validate(context.Background(), Booking{EventID: "evt-1", Email: "a@b.co"}, nil, lookup)

		if want := "eventId: failed to validate event reference: unknown error"; err == nil || err.Error() != want {
			t.Fatalf("got %v, want %q", err, want)
		}
	})

	t.Run("unchanged_event_skips_lookup", func(t *testing.T) {
		lookup := &fakeLookup{existsFn: func(ctx context.Context, id string) (bool, error) { return false, nil }}
		prev := Booking{ID: "b-1", EventID: "evt-1", Email: "a@b.co"}

		got, err := Validate(context.Background(), Booking{ID: "b-1", EventID: "evt-1", Email: "New@B.co"}, &prev, lookup)

		if err != nil {
			t.Fatalf("Validate error: %v", err)
		}
		if got.Email != "new@b.co" {
			t.Fatalf("unexpected email: %q", got.Email)
		}
		if lookup.calls != 0 {
			t.Fatalf("lookup should be skipped, calls=%d", lookup.calls)
		}
	})

	t.Run("changed_event_is_checked", func(t *testing.T) {
		lookup := &fakeLookup{}
		prev := Booking{ID: "b-1", EventID: "evt-1", Email: "a@b.co"}

		_, err := Validate(context.Background(), Booking{ID: "b-1", EventID: "evt-2", Email: "a@b.co"}, &prev, lookup)

		if err != nil {
			t.Fatalf("Validate error: %v", err)
		}
		if lookup.calls != 1 {
			t.Fatalf("expected one lookup, got %d", lookup.calls)
		}
	})
}

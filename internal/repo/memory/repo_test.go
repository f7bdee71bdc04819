package memory

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/geocoder89/eventbooking/internal/domain/booking"
	"github.com/geocoder89/eventbooking/internal/domain/event"
)

func TestEventsRepo_UniqueSlug(t *testing.T) {
	ctx := context.Background()
	repo := NewEventsRepo()

	first, err := repo.Insert(ctx, event.Event{Title: "A", Slug: "a", Tags: []string{"go"}})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if first.ID == "" {
		t.Fatalf("expected generated id")
	}

	if _, err := repo.Insert(ctx, event.Event{Title: "A", Slug: "a"}); !errors.Is(err, event.ErrDuplicateSlug) {
		t.Fatalf("expected ErrDuplicateSlug, got %v", err)
	}

	second, err := repo.Insert(ctx, event.Event{Title: "B", Slug: "b"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	second.Slug = "a"
	if _, err := repo.Replace(ctx, second); !errors.Is(err, event.ErrDuplicateSlug) {
		t.Fatalf("expected ErrDuplicateSlug on replace, got %v", err)
	}

	// replacing a record with its own slug is fine
	if _, err := repo.Replace(ctx, first); err != nil {
		t.Fatalf("replace with own slug: %v", err)
	}

	if _, err := repo.Replace(ctx, event.Event{ID: "missing"}); !errors.Is(err, event.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEventsRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewEventsRepo()

	saved, err := repo.Insert(ctx, event.Event{Slug: "a", Tags: []string{"go"}})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	saved.Tags[0] = "mutated"

	got, err := repo.GetByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !slices.Equal(got.Tags, []string{"go"}) {
		t.Fatalf("stored tags changed: %v", got.Tags)
	}
}

func TestEventsRepo_ListAndTags(t *testing.T) {
	ctx := context.Background()
	repo := NewEventsRepo()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	online := event.ModeOnline

	a, _ := repo.Insert(ctx, event.Event{Slug: "a", Mode: event.ModeOnline, Tags: []string{"go"}, CreatedAt: base})
	b, _ := repo.Insert(ctx, event.Event{Slug: "b", Mode: event.ModeOffline, Tags: []string{"go", "cloud"}, CreatedAt: base.Add(time.Hour)})
	c, _ := repo.Insert(ctx, event.Event{Slug: "c", Mode: event.ModeOnline, Tags: []string{"rust"}, CreatedAt: base.Add(2 * time.Hour)})

	tests := []struct {
		name string
		list func() ([]event.Event, error)
		want []string
	}{
		{name: "newest_first", list: func() ([]event.Event, error) { return repo.List(ctx, event.ListFilter{}) }, want: []string{c.ID, b.ID, a.ID}},
		{name: "paged", list: func() ([]event.Event, error) { return repo.List(ctx, event.ListFilter{Limit: 1, Offset: 1}) }, want: []string{b.ID}},
		{name: "mode", list: func() ([]event.Event, error) { return repo.List(ctx, event.ListFilter{Mode: &online}) }, want: []string{c.ID, a.ID}},
		{name: "similar_by_tag", list: func() ([]event.Event, error) { return repo.ListByTags(ctx, []string{"go"}, a.ID, 10) }, want: []string{b.ID}},
		{name: "offset_past_end", list: func() ([]event.Event, error) { return repo.List(ctx, event.ListFilter{Offset: 10}) }, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.list()
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if !slices.Equal(ids(got), tt.want) {
				t.Fatalf("got %v want %v", ids(got), tt.want)
			}
		})
	}
}

func TestBookingsRepo_UniquePair(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingsRepo()

	if _, err := repo.Insert(ctx, booking.Booking{EventID: "e1", Email: "a@b.co"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := repo.Insert(ctx, booking.Booking{EventID: "e1", Email: "a@b.co"}); !errors.Is(err, booking.ErrAlreadyBooked) {
		t.Fatalf("expected ErrAlreadyBooked, got %v", err)
	}
	if _, err := repo.Insert(ctx, booking.Booking{EventID: "e2", Email: "a@b.co"}); err != nil {
		t.Fatalf("same email on another event: %v", err)
	}

	other, err := repo.Insert(ctx, booking.Booking{EventID: "e1", Email: "c@d.co"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	other.Email = "a@b.co"
	if _, err := repo.Replace(ctx, other); !errors.Is(err, booking.ErrAlreadyBooked) {
		t.Fatalf("expected ErrAlreadyBooked on replace, got %v", err)
	}

	n, err := repo.CountByEvent(ctx, "e1")
	if err != nil || n != 2 {
		t.Fatalf("count: got %d, %v want 2", n, err)
	}

	deleted, err := repo.DeleteByEvent(ctx, "e1")
	if err != nil || deleted != 2 {
		t.Fatalf("delete by event: got %d, %v want 2", deleted, err)
	}

	left, err := repo.ListByEvent(ctx, "e2")
	if err != nil || len(left) != 1 {
		t.Fatalf("list by event: got %d, %v want 1", len(left), err)
	}

	if err := repo.Delete(ctx, "missing"); !errors.Is(err, booking.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func ids(events []event.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

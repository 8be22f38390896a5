package memory

import (
	"context"
	"testing"

	"staymap/internal/domain/entities"
)

func TestCalendarRepository_Get(t *testing.T) {
	repo := NewCalendarRepository([]entities.CalendarEntry{
		{ListingID: 1, Date: "2024-01-01", Available: true, Price: 50},
		{ListingID: 1, Date: "2024-01-02", Available: false, Price: 55},
		{ListingID: 2, Date: "2024-01-01", Available: true, Price: 80},
	})
	ctx := context.Background()

	entry, err := repo.Get(ctx, 1, "2024-01-01")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if entry == nil || entry.Price != 50 || !entry.Available {
		t.Errorf("Unexpected entry: %+v", entry)
	}

	entry, err = repo.Get(ctx, 1, "2024-03-01")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if entry != nil {
		t.Errorf("Expected nil for missing date, got %+v", entry)
	}

	entry, err = repo.Get(ctx, 42, "2024-01-01")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if entry != nil {
		t.Errorf("Expected nil for unknown listing, got %+v", entry)
	}
}

func TestCalendarRepository_EntriesOn(t *testing.T) {
	repo := NewCalendarRepository([]entities.CalendarEntry{
		{ListingID: 1, Date: "2024-01-01", Available: true, Price: 50},
		{ListingID: 2, Date: "2024-01-01", Available: false, Price: 80},
		{ListingID: 1, Date: "2024-01-02", Available: true, Price: 55},
	})
	ctx := context.Background()

	entries, err := repo.EntriesOn(ctx, "2024-01-01")
	if err != nil {
		t.Fatalf("EntriesOn failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(entries))
	}
	if entries[1] == nil || entries[1].Price != 50 {
		t.Errorf("Unexpected entry for listing 1: %+v", entries[1])
	}

	entries, err = repo.EntriesOn(ctx, "2030-01-01")
	if err != nil {
		t.Fatalf("EntriesOn failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}

func TestCalendarRepository_DuplicateLastWins(t *testing.T) {
	repo := NewCalendarRepository([]entities.CalendarEntry{
		{ListingID: 1, Date: "2024-01-01", Available: false, Price: 10},
		{ListingID: 1, Date: "2024-01-01", Available: true, Price: 20},
	})
	ctx := context.Background()

	entry, err := repo.Get(ctx, 1, "2024-01-01")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if entry == nil || entry.Price != 20 || !entry.Available {
		t.Errorf("Expected last duplicate to win, got %+v", entry)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected count 1 after de-duplication, got %d", count)
	}
}

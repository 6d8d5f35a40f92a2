package disk

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kpavlov42/placeradar/internal/domain"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(Config{Dir: t.TempDir()}, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestCache_PutGet(t *testing.T) {
	c := newTestCache(t)

	businesses := []domain.Business{
		{Name: "Corner Cafe", Address: "1 Main St", PrimaryCategory: "cafe", ProviderID: "p1"},
	}
	if err := c.Put("area-1", "cafe", businesses); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	entry, ok := c.Get("area-1", "cafe")
	if !ok {
		t.Fatal("Get() miss, want hit")
	}
	if len(entry.Businesses) != 1 || entry.Businesses[0].Name != "Corner Cafe" {
		t.Errorf("Get() businesses = %+v", entry.Businesses)
	}
	if entry.WrittenAt.IsZero() {
		t.Error("Get() entry has zero timestamp")
	}
}

func TestCache_MissWhenAbsent(t *testing.T) {
	c := newTestCache(t)

	if _, ok := c.Get("area-1", "cafe"); ok {
		t.Error("Get() hit on empty cache, want miss")
	}
}

func TestCache_SeparateKeys(t *testing.T) {
	c := newTestCache(t)

	if err := c.Put("area-1", "cafe", []domain.Business{{Name: "A"}}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if _, ok := c.Get("area-1", "bakery"); ok {
		t.Error("Get() other category hit, want miss")
	}
	if _, ok := c.Get("area-2", "cafe"); ok {
		t.Error("Get() other area hit, want miss")
	}
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c, err := New(Config{Dir: dir}, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := c.Put("area-1", "cafe", nil); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("ReadDir() entries = %v, err = %v", entries, err)
	}
	path := filepath.Join(dir, entries[0].Name())
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, ok := c.Get("area-1", "cafe"); ok {
		t.Error("Get() hit on corrupt entry, want miss")
	}
}

func TestCache_FreshnessBoundary(t *testing.T) {
	c := newTestCache(t)

	written := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	entry := &Entry{WrittenAt: written}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"just written", written, true},
		{"one minute before expiry", written.Add(24*time.Hour - time.Minute), true},
		{"one minute after expiry", written.Add(24*time.Hour + time.Minute), false},
		{"exactly at expiry", written.Add(24 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.now = func() time.Time { return tt.now }
			if got := c.Fresh(entry); got != tt.want {
				t.Errorf("Fresh() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCache_PutOverwrites(t *testing.T) {
	c := newTestCache(t)

	if err := c.Put("area-1", "cafe", []domain.Business{{Name: "Old"}}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := c.Put("area-1", "cafe", []domain.Business{{Name: "New"}, {Name: "Newer"}}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	entry, ok := c.Get("area-1", "cafe")
	if !ok {
		t.Fatal("Get() miss, want hit")
	}
	if len(entry.Businesses) != 2 || entry.Businesses[0].Name != "New" {
		t.Errorf("Get() businesses = %+v, want overwritten set", entry.Businesses)
	}
}

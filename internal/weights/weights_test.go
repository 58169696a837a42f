package weights

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestValidate tests the sum-to-one invariant and parameter bounds.
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			weights: Defaults(),
			wantErr: false,
		},
		{
			name: "exact sum",
			weights: Weights{
				Motivation: 0.25, Distance: 0.25, Skill: 0.25, Freshness: 0.25,
				FreshnessDays: 30, SmallOrgThreshold: 5, LargeOrgThreshold: 100,
			},
			wantErr: false,
		},
		{
			name: "within tolerance",
			weights: Weights{
				Motivation: 0.451, Distance: 0.25, Skill: 0.20, Freshness: 0.10,
				FreshnessDays: 60, SmallOrgThreshold: 10, LargeOrgThreshold: 200,
			},
			wantErr: false,
		},
		{
			name: "sum too high",
			weights: Weights{
				Motivation: 0.5, Distance: 0.3, Skill: 0.2, Freshness: 0.1,
				FreshnessDays: 60, SmallOrgThreshold: 10, LargeOrgThreshold: 200,
			},
			wantErr: true,
		},
		{
			name: "sum too low",
			weights: Weights{
				Motivation: 0.4, Distance: 0.2, Skill: 0.2, Freshness: 0.1,
				FreshnessDays: 60, SmallOrgThreshold: 10, LargeOrgThreshold: 200,
			},
			wantErr: true,
		},
		{
			name: "just outside tolerance",
			weights: Weights{
				Motivation: 0.456, Distance: 0.25, Skill: 0.20, Freshness: 0.10,
				FreshnessDays: 60, SmallOrgThreshold: 10, LargeOrgThreshold: 200,
			},
			wantErr: true,
		},
		{
			name: "negative component",
			weights: Weights{
				Motivation: 1.1, Distance: -0.1, Skill: 0.0, Freshness: 0.0,
				FreshnessDays: 60, SmallOrgThreshold: 10, LargeOrgThreshold: 200,
			},
			wantErr: true,
		},
		{
			name: "zero freshness window",
			weights: Weights{
				Motivation: 0.45, Distance: 0.25, Skill: 0.20, Freshness: 0.10,
				FreshnessDays: 0, SmallOrgThreshold: 10, LargeOrgThreshold: 200,
			},
			wantErr: true,
		},
		{
			name: "inverted thresholds",
			weights: Weights{
				Motivation: 0.45, Distance: 0.25, Skill: 0.20, Freshness: 0.10,
				FreshnessDays: 60, SmallOrgThreshold: 200, LargeOrgThreshold: 10,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// failingStore always errors on Load to exercise the defaults fallback.
type failingStore struct{}

func (failingStore) Load(ctx context.Context) (Weights, error) {
	return Weights{}, errors.New("store unavailable")
}

func (failingStore) Save(ctx context.Context, w Weights) error {
	return errors.New("store unavailable")
}

// TestCacheFallsBackToDefaults verifies a failing store never fails a read.
func TestCacheFallsBackToDefaults(t *testing.T) {
	cache := NewCache(failingStore{}, time.Minute, nil)

	got := cache.Get(context.Background())
	if got != Defaults() {
		t.Errorf("expected defaults on store failure, got %+v", got)
	}
}

// TestCacheServesStoredWeights verifies the reload path.
func TestCacheServesStoredWeights(t *testing.T) {
	store := NewInMemoryStore()
	custom := Weights{
		Motivation: 0.40, Distance: 0.30, Skill: 0.20, Freshness: 0.10,
		FreshnessDays: 30, SmallOrgThreshold: 5, LargeOrgThreshold: 100,
	}
	if err := store.Save(context.Background(), custom); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	cache := NewCache(store, time.Minute, nil)
	got := cache.Get(context.Background())
	if got != custom {
		t.Errorf("expected stored weights %+v, got %+v", custom, got)
	}
}

// TestCacheStaleUntilInvalidated verifies the TTL snapshot is served even
// after the store changes, and that Invalidate forces a reload.
func TestCacheStaleUntilInvalidated(t *testing.T) {
	store := NewInMemoryStore()
	cache := NewCache(store, time.Hour, nil)

	// First read populates the snapshot from an empty store (defaults).
	first := cache.Get(context.Background())
	if first != Defaults() {
		t.Fatalf("expected defaults, got %+v", first)
	}

	custom := Weights{
		Motivation: 0.40, Distance: 0.30, Skill: 0.20, Freshness: 0.10,
		FreshnessDays: 30, SmallOrgThreshold: 5, LargeOrgThreshold: 100,
	}
	if err := store.Save(context.Background(), custom); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Still within TTL: stale snapshot is expected.
	if got := cache.Get(context.Background()); got != first {
		t.Errorf("expected stale snapshot %+v, got %+v", first, got)
	}

	cache.Invalidate()
	if got := cache.Get(context.Background()); got != custom {
		t.Errorf("expected reloaded weights %+v, got %+v", custom, got)
	}
}

// TestCacheUpdate verifies the validated write path: invalid updates are
// rejected and leave the stored weights unchanged; valid updates become
// visible without waiting for the TTL.
func TestCacheUpdate(t *testing.T) {
	store := NewInMemoryStore()
	cache := NewCache(store, time.Hour, nil)

	valid := Weights{
		Motivation: 0.50, Distance: 0.20, Skill: 0.20, Freshness: 0.10,
		FreshnessDays: 45, SmallOrgThreshold: 8, LargeOrgThreshold: 150,
	}
	if err := cache.Update(context.Background(), valid); err != nil {
		t.Fatalf("valid update rejected: %v", err)
	}
	if got := cache.Get(context.Background()); got != valid {
		t.Errorf("expected updated weights %+v, got %+v", valid, got)
	}

	invalid := valid
	invalid.Motivation = 0.9
	if err := cache.Update(context.Background(), invalid); err == nil {
		t.Fatal("invalid update accepted")
	}

	// Stored weights must be unchanged after the rejected update.
	stored, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if stored != valid {
		t.Errorf("stored weights changed after rejected update: %+v", stored)
	}
}

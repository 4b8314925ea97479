package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plandrift/internal/config"
	"plandrift/internal/driftcheck"
	"plandrift/pkg/logging"
)

// fakeRedis is an in-memory RedisClient with just enough semantics for the store.
type fakeRedis struct {
	mu      sync.Mutex
	strings map[string]string
	zsets   map[string]map[string]float64
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		strings: make(map[string]string),
		zsets:   make(map[string]map[string]float64),
	}
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.strings[key] = string(v)
	case string:
		f.strings[key] = v
	default:
		return redis.NewStatusResult("", errors.New("unsupported value type"))
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.strings[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) ZAdd(_ context.Context, key string, members ...*redis.Z) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.zsets[key]
	if !ok {
		set = make(map[string]float64)
		f.zsets[key] = set
	}
	var added int64
	for _, m := range members {
		member := m.Member.(string)
		if _, exists := set[member]; !exists {
			added++
		}
		set[member] = m.Score
	}
	return redis.NewIntResult(added, nil)
}

func (f *fakeRedis) ZRevRange(_ context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := f.zsets[key]
	members := make([]string, 0, len(set))
	for m := range set {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool {
		if set[members[i]] == set[members[j]] {
			return members[i] > members[j]
		}
		return set[members[i]] > set[members[j]]
	})

	end := int64(len(members))
	if stop >= 0 && stop+1 < end {
		end = stop + 1
	}
	if start >= end {
		return redis.NewStringSliceResult([]string{}, nil)
	}
	return redis.NewStringSliceResult(members[start:end], nil)
}

func (f *fakeRedis) Close() error { return nil }

func testRecord(repo string, ts time.Time, drift bool) *PlanRecord {
	return &PlanRecord{
		PlanID:          NewPlanID(repo, ts),
		RepoName:        repo,
		Timestamp:       ts.UTC(),
		PlanContent:     "Plan: 1 to add, 0 to change, 0 to destroy.",
		DriftDetected:   drift,
		ChangesDetected: 1,
		ChangeSummary:   []string{"Add: 1 resources"},
		RiskLevel:       "LOW",
	}
}

func storesUnderTest(t *testing.T) map[string]Store {
	logger := logging.NewMockLogger()

	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "plans.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
		"redis":  NewRedisStoreWithClient(newFakeRedis(), "", logger),
	}
}

func TestStores_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			record := testRecord("network", ts, true)
			require.NoError(t, store.Save(ctx, record))

			got, err := store.Get(ctx, record.PlanID)
			require.NoError(t, err)
			assert.Equal(t, record.PlanID, got.PlanID)
			assert.Equal(t, "network", got.RepoName)
			assert.True(t, ts.Equal(got.Timestamp))
			assert.Equal(t, record.PlanContent, got.PlanContent)
			assert.True(t, got.DriftDetected)
			assert.Equal(t, 1, got.ChangesDetected)
			assert.Equal(t, []string{"Add: 1 resources"}, got.ChangeSummary)
			assert.Equal(t, "LOW", got.RiskLevel)
		})
	}
}

func TestStores_GetMissing(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(context.Background(), "network#2024-01-01T00:00:00Z")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStores_ListByRepoNewestFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 4; i++ {
				require.NoError(t, store.Save(ctx, testRecord("network", base.Add(time.Duration(i)*time.Hour), i%2 == 0)))
			}
			require.NoError(t, store.Save(ctx, testRecord("edge", base.Add(10*time.Hour), false)))

			all, err := store.ListByRepo(ctx, "network", 0)
			require.NoError(t, err)
			require.Len(t, all, 4)
			for i := 1; i < len(all); i++ {
				assert.True(t, all[i-1].Timestamp.After(all[i].Timestamp), "records must be newest first")
			}
			assert.Equal(t, NewPlanID("network", base.Add(3*time.Hour)), all[0].PlanID)

			limited, err := store.ListByRepo(ctx, "network", 2)
			require.NoError(t, err)
			assert.Len(t, limited, 2)
			assert.Equal(t, all[0].PlanID, limited[0].PlanID)

			none, err := store.ListByRepo(ctx, "unknown", 5)
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestStores_SameSecondPlansKeptApart(t *testing.T) {
	ctx := context.Background()
	first := time.Date(2024, 3, 1, 12, 0, 0, 100_000_000, time.UTC)
	second := first.Add(250 * time.Millisecond)

	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save(ctx, testRecord("network", first, false)))
			require.NoError(t, store.Save(ctx, testRecord("network", second, true)))

			list, err := store.ListByRepo(ctx, "network", 0)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, NewPlanID("network", second), list[0].PlanID)
			assert.Equal(t, NewPlanID("network", first), list[1].PlanID)
		})
	}
}

func TestStores_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			record := testRecord("network", ts, true)
			require.NoError(t, store.Save(ctx, record))

			record.RiskLevel = "HIGH"
			require.NoError(t, store.Save(ctx, record))

			got, err := store.Get(ctx, record.PlanID)
			require.NoError(t, err)
			assert.Equal(t, "HIGH", got.RiskLevel)

			list, err := store.ListByRepo(ctx, "network", 0)
			require.NoError(t, err)
			assert.Len(t, list, 1)
		})
	}
}

func TestStores_RejectInvalidRecords(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, store.Save(context.Background(), &PlanRecord{RepoName: "network"}))
			assert.Error(t, store.Save(context.Background(), &PlanRecord{PlanID: "x#y"}))
		})
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	record := testRecord("network", time.Now(), true)
	require.NoError(t, store.Save(ctx, record))

	got, err := store.Get(ctx, record.PlanID)
	require.NoError(t, err)
	got.ChangeSummary[0] = "mutated"

	again, err := store.Get(ctx, record.PlanID)
	require.NoError(t, err)
	assert.Equal(t, "Add: 1 resources", again.ChangeSummary[0])
}

func TestNewPlanID(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2024, 3, 1, 13, 30, 0, 0, loc)

	id := NewPlanID("network", ts)
	assert.Equal(t, "network#2024-03-01T12:30:00Z", id)
	assert.Equal(t, "network#2024-03-01T12:30:00.5Z", NewPlanID("network", ts.Add(500*time.Millisecond)))

	repo, err := RepoFromPlanID(id)
	require.NoError(t, err)
	assert.Equal(t, "network", repo)

	_, err = RepoFromPlanID("no-separator")
	assert.Error(t, err)
}

func TestNewPlanRecord(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	result, err := driftcheck.AnalyzePlan("Plan: 2 to add, 0 to change, 1 to destroy.", "network")
	require.NoError(t, err)
	result.ScannedAt = ts

	record := NewPlanRecord(NewPlanID("network", ts), result, "raw text")

	assert.Equal(t, "network#2024-03-01T12:00:00Z", record.PlanID)
	assert.Equal(t, "network", record.RepoName)
	assert.Equal(t, ts, record.Timestamp)
	assert.Equal(t, "raw text", record.PlanContent)
	assert.True(t, record.DriftDetected)
	assert.Equal(t, 3, record.ChangesDetected)
	assert.Equal(t, []string{"Add: 2 resources", "Destroy: 1 resources"}, record.ChangeSummary)
	assert.Equal(t, "HIGH", record.RiskLevel)
}

func TestOpen(t *testing.T) {
	logger := logging.NewMockLogger()

	store, err := Open(context.Background(), nil, logger)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = Open(context.Background(), &config.StoreConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "nested", "plans.db"),
	}, logger)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	assert.NoError(t, store.Close())

	_, err = Open(context.Background(), &config.StoreConfig{Driver: config.DriverDynamoDB}, logger)
	assert.Error(t, err)
}

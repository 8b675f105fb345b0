package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// memoryRedis answers MGET and SET from a map through a client hook, so no server is needed.
type memoryRedis struct {
	mu   sync.Mutex
	data map[string]string
	down bool
}

func (m *memoryRedis) DialHook(next redis.DialHook) redis.DialHook { return next }

func (m *memoryRedis) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error { return m.process(cmd) }
}

func (m *memoryRedis) ProcessPipelineHook(redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(_ context.Context, cmds []redis.Cmder) error {
		for _, cmd := range cmds {
			if err := m.process(cmd); err != nil {
				return err
			}
		}
		return nil
	}
}

func (m *memoryRedis) process(cmd redis.Cmder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		err := errors.New("dial tcp: connection refused")
		cmd.SetErr(err)
		return err
	}
	args := cmd.Args()
	switch c := cmd.(type) {
	case *redis.SliceCmd:
		vals := make([]interface{}, len(args)-1)
		for i, k := range args[1:] {
			if v, ok := m.data[fmt.Sprint(k)]; ok {
				vals[i] = v
			}
		}
		c.SetVal(vals)
	case *redis.StatusCmd:
		m.data[fmt.Sprint(args[1])] = fmt.Sprint(args[2])
		c.SetVal("OK")
	default:
		return fmt.Errorf("unexpected command %v", args)
	}
	return nil
}

func (m *memoryRedis) get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

type countingLedger struct {
	counts map[string]int
	err    error
	asked  [][]string
}

func (l *countingLedger) ReferralCounts(_ context.Context, codes []string) (map[string]int, error) {
	l.asked = append(l.asked, append([]string(nil), codes...))
	if l.err != nil {
		return nil, l.err
	}
	out := map[string]int{}
	for _, c := range codes {
		if n, ok := l.counts[c]; ok {
			out[c] = n
		}
	}
	return out, nil
}

func newCachedLedger(t *testing.T, cache *memoryRedis, next *countingLedger) *CachedReferralLedger {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	rdb.AddHook(cache)
	t.Cleanup(func() { rdb.Close() })
	return NewCachedReferralLedger(next, rdb, time.Minute)
}

func TestCachedReferralLedger(t *testing.T) {
	tests := []struct {
		name      string
		cached    map[string]string
		down      bool
		next      map[string]int
		want      map[string]int
		wantAsked []string
	}{
		{
			name:      "all cached",
			cached:    map[string]string{referralKey("A"): "4", referralKey("B"): "0", referralKey("C"): "1"},
			want:      map[string]int{"A": 4, "B": 0, "C": 1},
			wantAsked: nil,
		},
		{
			name:      "hits and misses merge",
			cached:    map[string]string{referralKey("A"): "4", referralKey("C"): "not-a-number"},
			next:      map[string]int{"B": 2, "C": 5},
			want:      map[string]int{"A": 4, "B": 2, "C": 5},
			wantAsked: []string{"B", "C"},
		},
		{
			name:      "redis down falls through",
			cached:    map[string]string{referralKey("A"): "4"},
			down:      true,
			next:      map[string]int{"A": 3, "B": 2},
			want:      map[string]int{"A": 3, "B": 2, "C": 0},
			wantAsked: []string{"A", "B", "C"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := &memoryRedis{data: tt.cached, down: tt.down}
			next := &countingLedger{counts: tt.next}
			ledger := newCachedLedger(t, cache, next)

			got, err := ledger.ReferralCounts(context.Background(), []string{"A", "B", "C"})
			if err != nil {
				t.Fatalf("ReferralCounts() error = %v", err)
			}
			for code, want := range tt.want {
				if got[code] != want {
					t.Errorf("count[%s] = %d, want %d", code, got[code], want)
				}
			}

			if tt.wantAsked == nil {
				if len(next.asked) != 0 {
					t.Errorf("underlying ledger asked %v, want no call", next.asked)
				}
				return
			}
			if len(next.asked) != 1 {
				t.Fatalf("underlying ledger calls = %v, want one", next.asked)
			}
			asked := next.asked[0]
			sort.Strings(asked)
			if fmt.Sprint(asked) != fmt.Sprint(tt.wantAsked) {
				t.Errorf("underlying ledger asked %v, want %v", asked, tt.wantAsked)
			}
		})
	}
}

func TestCachedReferralLedger_StoresMisses(t *testing.T) {
	cache := &memoryRedis{data: map[string]string{}}
	next := &countingLedger{counts: map[string]int{"A": 3}}
	ledger := newCachedLedger(t, cache, next)

	if _, err := ledger.ReferralCounts(context.Background(), []string{"A", "B"}); err != nil {
		t.Fatalf("ReferralCounts() error = %v", err)
	}
	for key, want := range map[string]string{referralKey("A"): "3", referralKey("B"): "0"} {
		if got, ok := cache.get(key); !ok || got != want {
			t.Errorf("cache[%s] = %q (%v), want %q", key, got, ok, want)
		}
	}

	// The second pass is served from the cache.
	got, err := ledger.ReferralCounts(context.Background(), []string{"A", "B"})
	if err != nil {
		t.Fatalf("ReferralCounts() error = %v", err)
	}
	if got["A"] != 3 || got["B"] != 0 || len(next.asked) != 1 {
		t.Errorf("second pass = %v, underlying calls %v", got, next.asked)
	}
}

func TestCachedReferralLedger_UnderlyingFailure(t *testing.T) {
	next := &countingLedger{err: errors.New("db down")}
	ledger := newCachedLedger(t, &memoryRedis{data: map[string]string{}}, next)

	if _, err := ledger.ReferralCounts(context.Background(), []string{"A"}); err == nil {
		t.Fatal("ReferralCounts() error = nil, want underlying failure")
	}
}

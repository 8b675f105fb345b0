package ranking

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeSource struct {
	candidates  []Candidate
	loadErr     error
	activateErr error

	activated []uint
	at        time.Time
}

func (s *fakeSource) Candidates(context.Context, uint) ([]Candidate, error) {
	return s.candidates, s.loadErr
}

func (s *fakeSource) ActivateBoosts(_ context.Context, ids []uint, at time.Time) error {
	s.activated = append(s.activated, ids...)
	s.at = at
	return s.activateErr
}

type fakeLedger struct {
	counts map[string]int
	err    error
	asked  []string
}

func (l *fakeLedger) ReferralCounts(_ context.Context, codes []string) (map[string]int, error) {
	l.asked = append(l.asked, codes...)
	return l.counts, l.err
}

func newTestFeed(source CandidateSource, ledger ReferralLedger) *Feed {
	f := NewFeed(source, ledger, Policy{})
	f.now = func() time.Time { return now }
	return f
}

func TestFeed_RanksAndActivatesBoosts(t *testing.T) {
	source := &fakeSource{candidates: []Candidate{
		{ProfileID: 2, MatchScore: MatchScore{99}},
		{ProfileID: 1, MatchScore: MatchScore{30}, ReferralCode: code("X")},
		{ProfileID: 3, MatchScore: MatchScore{40}, ReferralCode: code("X")},
	}}
	ledger := &fakeLedger{counts: map[string]int{"X": 5}}

	r, err := newTestFeed(source, ledger).Rank(context.Background(), 7)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	assertOrder(t, *r, 3, 1, 2)

	if len(ledger.asked) != 1 || ledger.asked[0] != "X" {
		t.Errorf("ledger asked for %v, want [X] once", ledger.asked)
	}
	if len(source.activated) != 2 || !source.at.Equal(now) {
		t.Errorf("activated %v at %v, want two profiles at %v", source.activated, source.at, now)
	}
}

func TestFeed_SkipsLedgerWithoutCodes(t *testing.T) {
	source := &fakeSource{candidates: []Candidate{{ProfileID: 1}}}
	ledger := &fakeLedger{err: errors.New("should not be called")}

	if _, err := newTestFeed(source, ledger).Rank(context.Background(), 7); err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(ledger.asked) != 0 {
		t.Errorf("ledger called with %v", ledger.asked)
	}
	if len(source.activated) != 0 {
		t.Errorf("activated %v, want none", source.activated)
	}
}

func TestFeed_ActivationFailureStillRanks(t *testing.T) {
	source := &fakeSource{
		candidates:  []Candidate{{ProfileID: 1, ReferralCode: code("X")}},
		activateErr: errors.New("deadlock"),
	}
	r, err := newTestFeed(source, &fakeLedger{counts: map[string]int{"X": 3}}).Rank(context.Background(), 7)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if !r.Candidates[0].Boosted {
		t.Error("candidate not boosted")
	}
}

func TestFeed_Errors(t *testing.T) {
	t.Run("candidate load", func(t *testing.T) {
		source := &fakeSource{loadErr: errors.New("db down")}
		if _, err := newTestFeed(source, &fakeLedger{}).Rank(context.Background(), 7); err == nil {
			t.Error("Rank() error = nil")
		}
	})
	t.Run("ledger", func(t *testing.T) {
		source := &fakeSource{candidates: []Candidate{{ProfileID: 1, ReferralCode: code("X")}}}
		if _, err := newTestFeed(source, &fakeLedger{err: errors.New("redis down")}).Rank(context.Background(), 7); err == nil {
			t.Error("Rank() error = nil")
		}
	})
}

package ranking

import (
	"context"
	"fmt"
	"time"

	"matchwell/backend/internal/logging"
)

// CandidateSource loads feed candidates and persists lazy boost activations.
type CandidateSource interface {
	// Candidates returns every profile eligible for viewerID's feed with TheyLikedMeFirst
	// and MatchScore filled in.
	Candidates(ctx context.Context, viewerID uint) ([]Candidate, error)
	// ActivateBoosts sets the boost start of profileIDs to at, only where it is unset.
	ActivateBoosts(ctx context.Context, profileIDs []uint, at time.Time) error
}

// ReferralLedger counts profiles attributed to referral codes.
type ReferralLedger interface {
	// ReferralCounts returns the count per code. Codes without referrals may be absent.
	ReferralCounts(ctx context.Context, codes []string) (map[string]int, error)
}

// Feed ranks a viewer's candidates.
type Feed struct {
	source CandidateSource
	ledger ReferralLedger
	policy Policy
	now    func() time.Time
}

// NewFeed creates a Feed. A zero policy means DefaultPolicy.
func NewFeed(source CandidateSource, ledger ReferralLedger, policy Policy) *Feed {
	if policy == (Policy{}) {
		policy = DefaultPolicy()
	}
	return &Feed{
		source: source,
		ledger: ledger,
		policy: policy,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Rank loads, ranks and returns viewerID's feed, persisting any lazy boost activations. A
// failed activation write is logged; the ranking is still returned and the next pass retries.
func (f *Feed) Rank(ctx context.Context, viewerID uint) (*Ranking, error) {
	candidates, err := f.source.Candidates(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	seen := make(map[string]struct{})
	var codes []string
	for _, c := range candidates {
		if c.ReferralCode == nil {
			continue
		}
		if _, ok := seen[*c.ReferralCode]; !ok {
			seen[*c.ReferralCode] = struct{}{}
			codes = append(codes, *c.ReferralCode)
		}
	}

	counts := map[string]int{}
	if len(codes) > 0 {
		counts, err = f.ledger.ReferralCounts(ctx, codes)
		if err != nil {
			return nil, fmt.Errorf("referral counts: %w", err)
		}
	}

	now := f.now()
	ranking := f.policy.Rank(candidates, counts, now)

	if len(ranking.ActivateBoost) > 0 {
		if err := f.source.ActivateBoosts(ctx, ranking.ActivateBoost, now); err != nil {
			logging.Warn(ctx).
				Err(err).
				Uint("viewer_id", viewerID).
				Int("profiles", len(ranking.ActivateBoost)).
				Msg("failed to persist referral boost start")
		}
	}
	return &ranking, nil
}

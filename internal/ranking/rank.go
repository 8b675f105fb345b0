// Package ranking orders feed candidates: boosted profiles first, then profiles that already
// sent the viewer an interest, then by compatibility score.
package ranking

import (
	"sort"
	"time"
)

// MatchScore is the upstream compatibility score, 0-100.
type MatchScore struct {
	Percentage float64 `json:"percentage"`
}

// Candidate is one profile considered for a viewer's feed. It exists only for one ranking
// pass.
type Candidate struct {
	ProfileID          uint       `json:"profile_id"`
	UserID             uint       `json:"user_id"`
	FullName           string     `json:"full_name"`
	ReferralCode       *string    `json:"-"`
	ReferralBoostStart *time.Time `json:"-"`
	TheyLikedMeFirst   bool       `json:"they_liked_me_first"`
	MatchScore         MatchScore `json:"match_score"`

	// Boosted is filled in by Rank.
	Boosted bool `json:"boosted"`
}

// Policy holds the referral boost rules.
type Policy struct {
	// ReferralThreshold is the referral count at which a profile becomes boost eligible.
	ReferralThreshold int
	// BoostWindow is how long a boost stays active after it starts.
	BoostWindow time.Duration
}

// DefaultPolicy boosts profiles with 3 or more referrals for 30 days.
func DefaultPolicy() Policy {
	return Policy{ReferralThreshold: 3, BoostWindow: 30 * 24 * time.Hour}
}

// Ranking is the ordered feed plus the profiles whose boost start must be persisted.
type Ranking struct {
	Candidates []Candidate
	// ActivateBoost lists profile ids that are boosted for the first time in this pass and
	// need ReferralBoostStart set to the ranking time.
	ActivateBoost []uint
}

// Boost reports whether a candidate with referralCount referrals is boosted at now, and
// whether this is a lazy first activation.
func (p Policy) Boost(c Candidate, referralCount int, now time.Time) (boosted, activate bool) {
	if referralCount < p.ReferralThreshold {
		return false, false
	}
	if c.ReferralBoostStart == nil {
		return true, true
	}
	return now.Sub(*c.ReferralBoostStart) < p.BoostWindow, false
}

// Rank returns candidates in feed order. The input slice is not modified. Candidates equal on
// every tier keep their input order.
func (p Policy) Rank(candidates []Candidate, referralCounts map[string]int, now time.Time) Ranking {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)

	var activate []uint
	for i := range ranked {
		count := 0
		if code := ranked[i].ReferralCode; code != nil {
			count = referralCounts[*code]
		}
		boosted, lazy := p.Boost(ranked[i], count, now)
		ranked[i].Boosted = boosted
		if lazy {
			activate = append(activate, ranked[i].ProfileID)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Boosted != b.Boosted {
			return a.Boosted
		}
		if a.TheyLikedMeFirst != b.TheyLikedMeFirst {
			return a.TheyLikedMeFirst
		}
		return a.MatchScore.Percentage > b.MatchScore.Percentage
	})

	return Ranking{Candidates: ranked, ActivateBoost: activate}
}

// Rank orders candidates with DefaultPolicy.
func Rank(candidates []Candidate, referralCounts map[string]int, now time.Time) Ranking {
	return DefaultPolicy().Rank(candidates, referralCounts, now)
}

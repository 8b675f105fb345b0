package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"matchwell/backend/internal/logging"
	"matchwell/backend/internal/models"
	"matchwell/backend/internal/ranking"
)

// ReferralLedger counts profiles attributed to referral codes through profiles.referred_by.
type ReferralLedger struct {
	db *gorm.DB
}

// NewReferralLedger creates a ReferralLedger.
func NewReferralLedger(db *gorm.DB) *ReferralLedger {
	return &ReferralLedger{db: db}
}

// ReferralCounts returns the referral count per code. Codes with no referrals are absent.
func (l *ReferralLedger) ReferralCounts(ctx context.Context, codes []string) (map[string]int, error) {
	counts := make(map[string]int, len(codes))
	if len(codes) == 0 {
		return counts, nil
	}

	var rows []struct {
		Code  string
		Total int
	}
	err := l.db.WithContext(ctx).
		Model(&models.Profile{}).
		Select("referred_by AS code, COUNT(*) AS total").
		Where("referred_by IN ?", codes).
		Group("referred_by").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count referrals: %w", err)
	}
	for _, r := range rows {
		counts[r.Code] = r.Total
	}
	return counts, nil
}

// CachedReferralLedger keeps referral counts in redis for ttl in front of another ledger.
// A redis failure falls through to the underlying ledger.
type CachedReferralLedger struct {
	next ranking.ReferralLedger
	rdb  *redis.Client
	ttl  time.Duration
}

// NewCachedReferralLedger creates a CachedReferralLedger.
func NewCachedReferralLedger(next ranking.ReferralLedger, rdb *redis.Client, ttl time.Duration) *CachedReferralLedger {
	return &CachedReferralLedger{next: next, rdb: rdb, ttl: ttl}
}

func referralKey(code string) string { return "referrals:count:" + code }

func (c *CachedReferralLedger) ReferralCounts(ctx context.Context, codes []string) (map[string]int, error) {
	counts := make(map[string]int, len(codes))
	if len(codes) == 0 {
		return counts, nil
	}

	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = referralKey(code)
	}

	missing := codes
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		logging.Warn(ctx).Err(err).Msg("referral count cache unavailable")
	} else {
		missing = missing[:0:0]
		for i, v := range vals {
			s, ok := v.(string)
			if !ok {
				missing = append(missing, codes[i])
				continue
			}
			n, err := strconv.Atoi(s)
			if err != nil {
				missing = append(missing, codes[i])
				continue
			}
			counts[codes[i]] = n
		}
	}
	if len(missing) == 0 {
		return counts, nil
	}

	fresh, err := c.next.ReferralCounts(ctx, missing)
	if err != nil {
		return nil, err
	}

	pipe := c.rdb.Pipeline()
	for _, code := range missing {
		n := fresh[code]
		counts[code] = n
		pipe.Set(ctx, referralKey(code), n, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logging.Warn(ctx).Err(err).Int("codes", len(missing)).Msg("failed to cache referral counts")
	}
	return counts, nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"matchwell/backend/internal/models"
	"matchwell/backend/internal/ranking"
)

// CandidateSource loads feed candidates from postgres.
type CandidateSource struct {
	db *gorm.DB
}

// NewCandidateSource creates a CandidateSource.
func NewCandidateSource(db *gorm.DB) *CandidateSource {
	return &CandidateSource{db: db}
}

// Candidates returns available profiles for viewerID's feed. Left out are the viewer, users
// the viewer declined or withdrew from, users the viewer already sent an interest to, and
// users whose interest to the viewer is no longer pending.
func (s *CandidateSource) Candidates(ctx context.Context, viewerID uint) ([]ranking.Candidate, error) {
	db := s.db.WithContext(ctx)

	declined := db.Model(&models.DeclinedMarker{}).Select("declined_user_id").Where("user_id = ?", viewerID)
	sent := db.Model(&models.Interest{}).Select("receiver_id").Where("sender_id = ?", viewerID)
	settled := db.Model(&models.Interest{}).Select("sender_id").
		Where("receiver_id = ? AND status <> ?", viewerID, models.StatusPending)

	var profiles []models.Profile
	err := db.
		Where("user_id <> ?", viewerID).
		Where("approval_status = ? AND is_active = ? AND is_suspended = ?", models.ApprovalApproved, true, false).
		Where("user_id NOT IN (?)", declined).
		Where("user_id NOT IN (?)", sent).
		Where("user_id NOT IN (?)", settled).
		Order("id").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("load candidate profiles: %w", err)
	}
	if len(profiles) == 0 {
		return nil, nil
	}

	userIDs := make([]uint, len(profiles))
	for i, p := range profiles {
		userIDs[i] = p.UserID
	}

	var likedMe []uint
	err = db.Model(&models.Interest{}).
		Where("receiver_id = ? AND status = ? AND sender_id IN ?", viewerID, models.StatusPending, userIDs).
		Pluck("sender_id", &likedMe).Error
	if err != nil {
		return nil, fmt.Errorf("load received interests: %w", err)
	}
	liked := make(map[uint]bool, len(likedMe))
	for _, id := range likedMe {
		liked[id] = true
	}

	var scores []models.MatchScore
	err = db.Where("viewer_id = ? AND candidate_id IN ?", viewerID, userIDs).Find(&scores).Error
	if err != nil {
		return nil, fmt.Errorf("load match scores: %w", err)
	}
	scoreOf := make(map[uint]float64, len(scores))
	for _, sc := range scores {
		scoreOf[sc.CandidateID] = sc.Percentage
	}

	candidates := make([]ranking.Candidate, len(profiles))
	for i, p := range profiles {
		candidates[i] = ranking.Candidate{
			ProfileID:          p.ID,
			UserID:             p.UserID,
			FullName:           p.FullName,
			ReferralCode:       p.ReferralCode,
			ReferralBoostStart: p.ReferralBoostStart,
			TheyLikedMeFirst:   liked[p.UserID],
			MatchScore:         ranking.MatchScore{Percentage: scoreOf[p.UserID]},
		}
	}
	return candidates, nil
}

// ActivateBoosts starts the referral boost of profileIDs at at. Profiles whose boost already
// started are left alone.
func (s *CandidateSource) ActivateBoosts(ctx context.Context, profileIDs []uint, at time.Time) error {
	if len(profileIDs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id IN ? AND referral_boost_start IS NULL", profileIDs).
		Update("referral_boost_start", at).Error
}

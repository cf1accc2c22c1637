package services

import (
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/werta666/jifen-go/models"
)

// Summary is the per-user overview payload consumed by the front-end.
type Summary struct {
	Signed          bool           `json:"signed"`
	ConsecutiveDays int            `json:"consecutive_days"`
	TotalScore      int            `json:"total_score"`
	TodayScore      int            `json:"today_score"`
	Points          int            `json:"points"`
	MakeupCards     int            `json:"makeup_cards"`
	MakeupCardPrice int            `json:"makeup_card_price"`
	InstallDate     string         `json:"install_date"`
	Rewards         map[string]int `json:"rewards"`
	NextReward      *NextReward    `json:"next_reward,omitempty"`
	RecentRecords   []SigninRecord `json:"recent_records"`
}

// Summary builds the full overview for a user: signin state, streak,
// available balance, reward outlook and the trailing 7-day record window.
func (s *Service) Summary(user Identity) (*Summary, error) {
	st := s.Settings()

	var row models.User
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		u, err := ensureUser(tx, user)
		if err != nil {
			return err
		}
		row = *u
		return nil
	}); err != nil {
		return nil, err
	}

	signed, err := s.SignedToday(user.ID)
	if err != nil {
		return nil, err
	}
	streak, err := s.streakForSummary(user.ID)
	if err != nil {
		return nil, err
	}
	total, err := s.TotalPoints(user.ID)
	if err != nil {
		return nil, err
	}
	today, err := s.TodayPoints(user.ID)
	if err != nil {
		return nil, err
	}
	install, err := s.InstallDate()
	if err != nil {
		return nil, err
	}
	recent, err := s.RecentRecords(user.ID, 7)
	if err != nil {
		return nil, err
	}

	rewards := ParseRewards(st.RewardsJSON)
	return &Summary{
		Signed:          signed,
		ConsecutiveDays: streak,
		TotalScore:      total - row.SpentPoints,
		TodayScore:      today,
		Points:          st.BasePoints,
		MakeupCards:     row.MakeupCards,
		MakeupCardPrice: st.MakeupCardPrice,
		InstallDate:     install,
		Rewards:         rewards,
		NextReward:      NextRewardInfo(streak, rewards),
		RecentRecords:   recent,
	}, nil
}

// Signin records today's signin. Calling it again the same day is a no-op
// that returns the current summary. Concurrent attempts that slip past the
// check are stopped by the (user_id, date) unique index and reported as
// ErrAlreadySigned.
func (s *Service) Signin(user Identity) (*Summary, error) {
	signed, err := s.SignedToday(user.ID)
	if err != nil {
		return nil, err
	}
	if signed {
		return s.Summary(user)
	}

	st := s.Settings()
	rewards := ParseRewards(st.RewardsJSON)
	now := s.Now()
	today := now.Format(dateLayout)
	yesterday := s.yesterday()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := ensureUser(tx, user); err != nil {
			return err
		}

		// Hold the latest ledger row for the duration of the streak
		// computation to narrow the double-credit window.
		prev, err := latestSignin(lockForUpdate(tx), user.ID)
		if err != nil {
			return err
		}
		if prev != nil && prev.Date == today {
			return ErrAlreadySigned
		}

		streak := 1
		if prev != nil && prev.Date == yesterday {
			streak = prev.StreakCount + 1
		}

		pts := st.BasePoints + rewards[strconv.Itoa(streak)]
		record := models.SignIn{
			UserID:      user.ID,
			Date:        today,
			SignedAt:    now,
			Makeup:      false,
			Points:      pts,
			StreakCount: streak,
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadySigned
		}
		return nil, err
	}

	return s.Summary(user)
}

// Makeup backfills a past date, consuming one makeup card. The entry is
// credited at the configured ratio of the base points and stored with
// streak_count = 1; a later signin chains off it like any other latest entry.
func (s *Service) Makeup(user Identity, dateStr string) (*Summary, error) {
	if dateStr == "" {
		return nil, ErrInvalidDate
	}
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return nil, ErrInvalidDate
	}
	target := date.Format(dateLayout)

	if target > s.today() {
		return nil, ErrFutureDate
	}
	install, err := s.InstallDate()
	if err != nil {
		return nil, err
	}
	if target < install {
		return nil, ErrBeforeInstall
	}

	exists, err := s.signedOn(s.db, user.ID, target)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyRecorded
	}

	st := s.Settings()
	pts := st.BasePoints * clampRatio(st.MakeupRatioPercent) / 100

	err = s.db.Transaction(func(tx *gorm.DB) error {
		u, err := ensureUser(tx, user)
		if err != nil {
			return err
		}
		if u.MakeupCards <= 0 {
			return ErrNoMakeupCards
		}

		u.MakeupCards--
		if err := tx.Save(u).Error; err != nil {
			return err
		}

		record := models.SignIn{
			UserID:      user.ID,
			Date:        target,
			SignedAt:    s.Now(),
			Makeup:      true,
			Points:      pts,
			StreakCount: 1,
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyRecorded
		}
		return nil, err
	}

	return s.Summary(user)
}

// ResetToday removes the target's entry for today so they may sign in again.
// Admin-only; the count removed (0 or 1) is audited and returned.
func (s *Service) ResetToday(actor, target Identity) (int64, error) {
	res := s.db.Where("user_id = ? AND date = ?", target.ID, s.today()).Delete(&models.SignIn{})
	if res.Error != nil {
		return 0, res.Error
	}

	s.audit.Log(actor, "jifen_reset_today", map[string]any{
		"target_user_id":  target.ID,
		"target_username": target.Username,
		"removed":         res.RowsAffected,
	})
	return res.RowsAffected, nil
}

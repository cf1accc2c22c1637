package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/werta666/jifen-go/models"
)

// SigninRecord is the read model for one ledger entry.
type SigninRecord struct {
	Date        string    `json:"date"`
	SignedAt    time.Time `json:"signed_at"`
	Makeup      bool      `json:"makeup"`
	Points      int       `json:"points"`
	StreakCount int       `json:"streak_count"`
}

// signedOn reports whether a ledger entry exists for the given date.
func (s *Service) signedOn(db *gorm.DB, userID uint, date string) (bool, error) {
	var count int64
	err := db.Model(&models.SignIn{}).
		Where("user_id = ? AND date = ?", userID, date).
		Count(&count).Error
	return count > 0, err
}

// SignedToday reports whether the user already has today's entry.
func (s *Service) SignedToday(userID uint) (bool, error) {
	return s.signedOn(s.db, userID, s.today())
}

// latestSignin returns the most recent entry by date, or nil.
func latestSignin(db *gorm.DB, userID uint) (*models.SignIn, error) {
	var last models.SignIn
	err := db.Where("user_id = ?", userID).Order("date DESC").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &last, nil
}

// totalPoints sums all points ever credited to the user.
func totalPoints(db *gorm.DB, userID uint) (int, error) {
	var total int
	err := db.Model(&models.SignIn{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error
	return total, err
}

// TotalPoints sums all points ever credited to the user.
func (s *Service) TotalPoints(userID uint) (int, error) {
	return totalPoints(s.db, userID)
}

// TodayPoints sums the points credited for today's date.
func (s *Service) TodayPoints(userID uint) (int, error) {
	var total int
	err := s.db.Model(&models.SignIn{}).
		Where("user_id = ? AND date = ?", userID, s.today()).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error
	return total, err
}

// InstallDate is the earliest date in the ledger across all users, or today
// when the ledger is empty. It bounds makeup eligibility from below.
func (s *Service) InstallDate() (string, error) {
	var first models.SignIn
	err := s.db.Order("date ASC").First(&first).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.today(), nil
	}
	if err != nil {
		return "", err
	}
	return first.Date, nil
}

// RecentRecords returns up to days entries from the trailing window ending
// today, newest first.
func (s *Service) RecentRecords(userID uint, days int) ([]SigninRecord, error) {
	if days <= 0 {
		days = 7
	}
	startDate := s.Now().AddDate(0, 0, -(days - 1)).Format(dateLayout)

	var rows []models.SignIn
	err := s.db.Where("user_id = ? AND date >= ?", userID, startDate).
		Order("date DESC").
		Limit(days).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]SigninRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, SigninRecord{
			Date:        r.Date,
			SignedAt:    r.SignedAt,
			Makeup:      r.Makeup,
			Points:      r.Points,
			StreakCount: r.StreakCount,
		})
	}
	return records, nil
}

// streakForSummary is the display streak: the latest entry's stored count if
// that entry is from today or yesterday (chain unbroken), otherwise 0.
// It deliberately depends only on the latest entry; makeup entries for older
// gaps do not retroactively extend it.
func (s *Service) streakForSummary(userID uint) (int, error) {
	last, err := latestSignin(s.db, userID)
	if err != nil {
		return 0, err
	}
	if last == nil {
		return 0, nil
	}
	if last.Date == s.today() || last.Date == s.yesterday() {
		return last.StreakCount, nil
	}
	return 0, nil
}

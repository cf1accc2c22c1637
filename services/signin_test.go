package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/werta666/jifen-go/models"
)

func TestSigninFirstDay(t *testing.T) {
	svc, _ := newTestService(t)
	user := testUser(1)

	sum, err := svc.Signin(user)
	require.NoError(t, err)
	require.True(t, sum.Signed)
	require.Equal(t, 1, sum.ConsecutiveDays)
	require.Equal(t, 10, sum.TotalScore)
	require.Equal(t, 10, sum.TodayScore)
	require.Equal(t, "2025-03-10", sum.InstallDate)
	require.Len(t, sum.RecentRecords, 1)
	require.Equal(t, "2025-03-10", sum.RecentRecords[0].Date)
	require.False(t, sum.RecentRecords[0].Makeup)
}

func TestSigninSameDayIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	user := testUser(1)

	_, err := svc.Signin(user)
	require.NoError(t, err)

	sum, err := svc.Signin(user)
	require.NoError(t, err)
	require.True(t, sum.Signed)
	require.Equal(t, 10, sum.TotalScore)

	var count int64
	require.NoError(t, svc.db.Model(&models.SignIn{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestSigninStreakAndRewards(t *testing.T) {
	svc, _ := newTestService(t)
	user := testUser(1)

	days := []string{"2025-03-10", "2025-03-11", "2025-03-12"}
	var sum *Summary
	var err error
	for _, d := range days {
		setDay(t, svc, d)
		sum, err = svc.Signin(user)
		require.NoError(t, err)
	}

	// Day three hits the "3": 20 bonus tier: 10 + 10 + (10+20).
	require.Equal(t, 3, sum.ConsecutiveDays)
	require.Equal(t, 50, sum.TotalScore)
	require.Equal(t, 30, sum.TodayScore)
	require.NotNil(t, sum.NextReward)
	require.Equal(t, 7, sum.NextReward.Days)
	require.Equal(t, 50, sum.NextReward.Points)
	require.Equal(t, 4, sum.NextReward.Remain)
}

func TestSigninGapResetsStreak(t *testing.T) {
	svc, _ := newTestService(t)
	user := testUser(1)

	setDay(t, svc, "2025-03-10")
	_, err := svc.Signin(user)
	require.NoError(t, err)
	setDay(t, svc, "2025-03-11")
	_, err = svc.Signin(user)
	require.NoError(t, err)

	// Miss the 12th, sign again the 13th.
	setDay(t, svc, "2025-03-13")
	sum, err := svc.Signin(user)
	require.NoError(t, err)
	require.Equal(t, 1, sum.ConsecutiveDays)
	require.Equal(t, 30, sum.TotalScore)
}

func TestStreakDisplayDropsToZeroAfterGap(t *testing.T) {
	svc, _ := newTestService(t)
	user := testUser(1)

	setDay(t, svc, "2025-03-10")
	_, err := svc.Signin(user)
	require.NoError(t, err)

	// Yesterday's signin still counts toward the display streak.
	setDay(t, svc, "2025-03-11")
	sum, err := svc.Summary(user)
	require.NoError(t, err)
	require.False(t, sum.Signed)
	require.Equal(t, 1, sum.ConsecutiveDays)

	// Two days later the chain is broken.
	setDay(t, svc, "2025-03-12")
	sum, err = svc.Summary(user)
	require.NoError(t, err)
	require.Equal(t, 0, sum.ConsecutiveDays)
}

func TestSigninDuplicateRowRejected(t *testing.T) {
	svc, _ := newTestService(t)
	user := testUser(1)
	_, err := svc.Signin(user)
	require.NoError(t, err)

	// A row slipped in concurrently surfaces as a duplicate on direct insert.
	err = svc.db.Create(&models.SignIn{UserID: user.ID, Date: "2025-03-10", SignedAt: svc.Now(), Points: 10, StreakCount: 1}).Error
	require.Error(t, err)
}

func TestMakeupValidations(t *testing.T) {
	svc, _ := newTestService(t)
	user := testUser(1)

	setDay(t, svc, "2025-03-10")
	_, err := svc.Signin(user)
	require.NoError(t, err)
	setDay(t, svc, "2025-03-14")

	_, err = svc.Makeup(user, "not-a-date")
	require.ErrorIs(t, err, ErrInvalidDate)

	_, err = svc.Makeup(user, "")
	require.ErrorIs(t, err, ErrInvalidDate)

	_, err = svc.Makeup(user, "2025-03-15")
	require.ErrorIs(t, err, ErrFutureDate)

	_, err = svc.Makeup(user, "2025-03-09")
	require.ErrorIs(t, err, ErrBeforeInstall)

	_, err = svc.Makeup(user, "2025-03-10")
	require.ErrorIs(t, err, ErrAlreadyRecorded)

	// Valid gap date but no cards.
	_, err = svc.Makeup(user, "2025-03-12")
	require.ErrorIs(t, err, ErrNoMakeupCards)
}

func TestMakeupConsumesCardAndCreditsRatio(t *testing.T) {
	svc, _ := newTestService(t)
	user := testUser(1)

	setDay(t, svc, "2025-03-10")
	_, err := svc.Signin(user)
	require.NoError(t, err)
	setDay(t, svc, "2025-03-14")

	require.NoError(t, svc.db.Model(&models.User{}).Where("id = ?", user.ID).Update("makeup_cards", 2).Error)

	sum, err := svc.Makeup(user, "2025-03-12")
	require.NoError(t, err)
	require.Equal(t, 1, sum.MakeupCards)
	// Full ratio: base points for the backfilled day.
	require.Equal(t, 20, sum.TotalScore)

	var row models.SignIn
	require.NoError(t, svc.db.Where("user_id = ? AND date = ?", user.ID, "2025-03-12").First(&row).Error)
	require.True(t, row.Makeup)
	require.Equal(t, 10, row.Points)
	require.Equal(t, 1, row.StreakCount)

	// The same date cannot be backfilled twice.
	_, err = svc.Makeup(user, "2025-03-12")
	require.ErrorIs(t, err, ErrAlreadyRecorded)
}

func TestMakeupHalfRatio(t *testing.T) {
	svc, _ := newTestService(t)
	user := testUser(1)
	svc.Settings = func() Settings {
		return Settings{Enabled: true, BasePoints: 10, MakeupCardPrice: 20, MakeupRatioPercent: 50}
	}

	setDay(t, svc, "2025-03-10")
	_, err := svc.Signin(user)
	require.NoError(t, err)
	setDay(t, svc, "2025-03-12")
	require.NoError(t, svc.db.Model(&models.User{}).Where("id = ?", user.ID).Update("makeup_cards", 1).Error)

	_, err = svc.Makeup(user, "2025-03-11")
	require.NoError(t, err)

	var row models.SignIn
	require.NoError(t, svc.db.Where("user_id = ? AND date = ?", user.ID, "2025-03-11").First(&row).Error)
	require.Equal(t, 5, row.Points)
}

func TestSigninChainsFromMakeupEntry(t *testing.T) {
	svc, _ := newTestService(t)
	user := testUser(1)

	setDay(t, svc, "2025-03-10")
	_, err := svc.Signin(user)
	require.NoError(t, err)

	setDay(t, svc, "2025-03-12")
	require.NoError(t, svc.db.Model(&models.User{}).Where("id = ?", user.ID).Update("makeup_cards", 1).Error)
	_, err = svc.Makeup(user, "2025-03-11")
	require.NoError(t, err)

	// The makeup row itself restarts at 1, but the next signin chains off it
	// like any other latest entry.
	var row models.SignIn
	require.NoError(t, svc.db.Where("user_id = ? AND date = ?", user.ID, "2025-03-11").First(&row).Error)
	require.Equal(t, 1, row.StreakCount)

	sum, err := svc.Signin(user)
	require.NoError(t, err)
	require.Equal(t, 2, sum.ConsecutiveDays)
}

func TestResetToday(t *testing.T) {
	svc, audit := newTestService(t)
	admin := Identity{ID: 99, Username: "admin", IsAdmin: true}
	user := testUser(1)

	_, err := svc.Signin(user)
	require.NoError(t, err)

	removed, err := svc.ResetToday(admin, user)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)
	require.Contains(t, audit.actions(), "jifen_reset_today")

	signed, err := svc.SignedToday(user.ID)
	require.NoError(t, err)
	require.False(t, signed)

	// Signing in again works; second reset removes nothing.
	_, err = svc.Signin(user)
	require.NoError(t, err)
	_, err = svc.ResetToday(admin, user)
	require.NoError(t, err)
	removed, err = svc.ResetToday(admin, user)
	require.NoError(t, err)
	require.EqualValues(t, 0, removed)
}

package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/werta666/jifen-go/models"
)

// earnPoints signs the user in across consecutive days starting at the given
// date, leaving the clock on the last day.
func earnPoints(t *testing.T, svc *Service, user Identity, start string, days int) *Summary {
	t.Helper()
	d := start
	var sum *Summary
	var err error
	for i := 0; i < days; i++ {
		setDay(t, svc, d)
		sum, err = svc.Signin(user)
		require.NoError(t, err)
		d = svc.Now().AddDate(0, 0, 1).Format(dateLayout)
	}
	return sum
}

func TestAdjustPointsZeroDelta(t *testing.T) {
	svc, _ := newTestService(t)
	admin := Identity{ID: 99, Username: "admin", IsAdmin: true}

	_, err := svc.AdjustPoints(admin, testUser(1), 0)
	require.ErrorIs(t, err, ErrZeroDelta)
}

func TestAdjustPointsDebitAndCredit(t *testing.T) {
	svc, audit := newTestService(t)
	admin := Identity{ID: 99, Username: "admin", IsAdmin: true}
	user := testUser(1)

	earnPoints(t, svc, user, "2025-03-10", 3) // 10 + 10 + 30

	sum, err := svc.AdjustPoints(admin, user, -15)
	require.NoError(t, err)
	require.Equal(t, 35, sum.TotalScore)

	sum, err = svc.AdjustPoints(admin, user, 5)
	require.NoError(t, err)
	require.Equal(t, 40, sum.TotalScore)
	require.Contains(t, audit.actions(), "jifen_adjust_points")
}

func TestAdjustPointsClampsAtZero(t *testing.T) {
	svc, _ := newTestService(t)
	admin := Identity{ID: 99, Username: "admin", IsAdmin: true}
	user := testUser(1)

	earnPoints(t, svc, user, "2025-03-10", 1) // 10 available

	// Over-debit saturates instead of going negative.
	sum, err := svc.AdjustPoints(admin, user, -500)
	require.NoError(t, err)
	require.Equal(t, 0, sum.TotalScore)

	var row models.User
	require.NoError(t, svc.db.First(&row, user.ID).Error)
	require.Equal(t, 10, row.SpentPoints)
}

func TestAdjustPointsClampsAtTotal(t *testing.T) {
	svc, _ := newTestService(t)
	admin := Identity{ID: 99, Username: "admin", IsAdmin: true}
	user := testUser(1)

	earnPoints(t, svc, user, "2025-03-10", 1)
	_, err := svc.AdjustPoints(admin, user, -4)
	require.NoError(t, err)

	// Over-credit cannot push the balance above total earned.
	sum, err := svc.AdjustPoints(admin, user, 1000)
	require.NoError(t, err)
	require.Equal(t, 10, sum.TotalScore)

	var row models.User
	require.NoError(t, svc.db.First(&row, user.ID).Error)
	require.Equal(t, 0, row.SpentPoints)
}

func TestAdjustPointsUserWithNoLedger(t *testing.T) {
	svc, _ := newTestService(t)
	admin := Identity{ID: 99, Username: "admin", IsAdmin: true}

	// No earnings: a credit clamps right back to zero available.
	sum, err := svc.AdjustPoints(admin, testUser(2), 100)
	require.NoError(t, err)
	require.Equal(t, 0, sum.TotalScore)
}

func TestPurchaseMakeupCard(t *testing.T) {
	svc, _ := newTestService(t)
	user := testUser(1)

	earnPoints(t, svc, user, "2025-03-10", 3) // 50 available, card price 20

	sum, err := svc.PurchaseMakeupCard(user)
	require.NoError(t, err)
	require.Equal(t, 30, sum.TotalScore)
	require.Equal(t, 1, sum.MakeupCards)

	sum, err = svc.PurchaseMakeupCard(user)
	require.NoError(t, err)
	require.Equal(t, 10, sum.TotalScore)
	require.Equal(t, 2, sum.MakeupCards)

	// 10 left, price is 20: a real purchase is rejected, never clamped.
	_, err = svc.PurchaseMakeupCard(user)
	require.ErrorIs(t, err, ErrInsufficientPoints)
}

func TestBalanceLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	admin := Identity{ID: 99, Username: "admin", IsAdmin: true}
	user := testUser(1)

	earnPoints(t, svc, user, "2025-03-10", 3)
	available, err := svc.AvailablePoints(user)
	require.NoError(t, err)
	require.Equal(t, 50, available)

	_, err = svc.AdjustPoints(admin, user, -15)
	require.NoError(t, err)

	sum, err := svc.PurchaseMakeupCard(user)
	require.NoError(t, err)
	require.Equal(t, 15, sum.TotalScore)
	require.Equal(t, 1, sum.MakeupCards)

	// Total earned is untouched by spending; only the spent counter moves.
	total, err := svc.TotalPoints(user.ID)
	require.NoError(t, err)
	require.Equal(t, 50, total)
}

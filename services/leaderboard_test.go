package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/werta666/jifen-go/utils"
)

func clearBoardCache() {
	utils.CacheDelete(leaderboardCacheKey)
	utils.CacheDelete(leaderboardUpdatedKey)
}

func TestRecomputeLeaderboard(t *testing.T) {
	svc, _ := newTestService(t)
	clearBoardCache()
	admin := Identity{ID: 99, Username: "admin", IsAdmin: true}

	earnPoints(t, svc, testUser(1), "2025-03-10", 3) // 50
	earnPoints(t, svc, testUser(2), "2025-03-11", 2) // 20
	earnPoints(t, svc, testUser(3), "2025-03-12", 1) // 10
	earnPoints(t, svc, testUser(4), "2025-03-12", 1)
	_, err := svc.AdjustPoints(admin, testUser(4), -10) // drained to zero
	require.NoError(t, err)

	snap, err := svc.RecomputeLeaderboard(10)
	require.NoError(t, err)
	require.Len(t, snap.Leaderboard, 3)
	require.Equal(t, "user1", snap.Leaderboard[0].Username)
	require.Equal(t, 50, snap.Leaderboard[0].Points)
	require.Equal(t, 1, snap.Leaderboard[0].Rank)
	require.Equal(t, "user2", snap.Leaderboard[1].Username)
	require.Equal(t, 2, snap.Leaderboard[1].Rank)
	require.Equal(t, "user3", snap.Leaderboard[2].Username)
	require.Equal(t, 3, snap.Leaderboard[2].Rank)

	// Spending reorders the board.
	_, err = svc.AdjustPoints(admin, testUser(1), -45) // down to 5
	require.NoError(t, err)
	snap, err = svc.RecomputeLeaderboard(10)
	require.NoError(t, err)
	require.Equal(t, "user2", snap.Leaderboard[0].Username)
	require.Equal(t, "user1", snap.Leaderboard[2].Username)
	require.Equal(t, 5, snap.Leaderboard[2].Points)
}

func TestRecomputeLeaderboardLimit(t *testing.T) {
	svc, _ := newTestService(t)
	clearBoardCache()

	earnPoints(t, svc, testUser(1), "2025-03-10", 2)
	earnPoints(t, svc, testUser(2), "2025-03-10", 1)
	earnPoints(t, svc, testUser(3), "2025-03-10", 3)

	snap, err := svc.RecomputeLeaderboard(2)
	require.NoError(t, err)
	require.Len(t, snap.Leaderboard, 2)
	require.Equal(t, "user3", snap.Leaderboard[0].Username)
	require.Equal(t, "user1", snap.Leaderboard[1].Username)
}

func TestLeaderboardReadThrough(t *testing.T) {
	svc, _ := newTestService(t)
	clearBoardCache()

	earnPoints(t, svc, testUser(1), "2025-03-10", 1)

	// Miss path computes and primes the cache.
	board, err := svc.Leaderboard(5)
	require.NoError(t, err)
	require.False(t, board.FromCache)
	require.Len(t, board.Leaderboard, 1)

	// Second read is served from cache, even after new data lands.
	earnPoints(t, svc, testUser(2), "2025-03-10", 3)
	board, err = svc.Leaderboard(5)
	require.NoError(t, err)
	require.True(t, board.FromCache)
	require.Len(t, board.Leaderboard, 1)
}

func TestLeaderboardLimitServedFromLargerCache(t *testing.T) {
	svc, _ := newTestService(t)
	clearBoardCache()

	for i := uint(1); i <= 8; i++ {
		earnPoints(t, svc, testUser(i), "2025-03-10", int(i%3)+1)
	}

	board, err := svc.Leaderboard(3)
	require.NoError(t, err)
	require.Len(t, board.Leaderboard, 3)

	// The cache holds more rows than the display limit.
	board, err = svc.Leaderboard(8)
	require.NoError(t, err)
	require.True(t, board.FromCache)
	require.Len(t, board.Leaderboard, 8)
}

func TestForceRefreshLeaderboard(t *testing.T) {
	svc, audit := newTestService(t)
	clearBoardCache()

	earnPoints(t, svc, testUser(1), "2025-03-10", 1)
	_, err := svc.Leaderboard(5)
	require.NoError(t, err)

	earnPoints(t, svc, testUser(2), "2025-03-10", 2)
	board, err := svc.ForceRefreshLeaderboard(Identity{ID: 99, Username: "admin", IsAdmin: true})
	require.NoError(t, err)
	require.False(t, board.FromCache)
	require.Len(t, board.Leaderboard, 2)
	require.Contains(t, audit.actions(), "jifen_force_refresh_board")

	// The rebuilt snapshot is what subsequent reads serve.
	board, err = svc.Leaderboard(5)
	require.NoError(t, err)
	require.True(t, board.FromCache)
	require.Len(t, board.Leaderboard, 2)
}

func TestRefreshLeaderboardIfDue(t *testing.T) {
	svc, _ := newTestService(t)
	clearBoardCache()

	earnPoints(t, svc, testUser(1), "2025-03-10", 1)

	// No last-update marker: refresh runs.
	require.NoError(t, svc.RefreshLeaderboardIfDue())
	board, err := svc.Leaderboard(5)
	require.NoError(t, err)
	require.True(t, board.FromCache)
	require.Len(t, board.Leaderboard, 1)

	// Inside the interval: a second call is a no-op.
	earnPoints(t, svc, testUser(2), "2025-03-10", 1)
	require.NoError(t, svc.RefreshLeaderboardIfDue())
	board, err = svc.Leaderboard(5)
	require.NoError(t, err)
	require.Len(t, board.Leaderboard, 1)

	// Backdate the marker past the interval: refresh runs again.
	stale := svc.Now().Add(-10 * time.Minute).Format(time.RFC3339)
	utils.CacheSetBytes(leaderboardUpdatedKey, []byte(stale), time.Hour)
	require.NoError(t, svc.RefreshLeaderboardIfDue())
	board, err = svc.Leaderboard(5)
	require.NoError(t, err)
	require.Len(t, board.Leaderboard, 2)
}

func TestRefreshLeaderboardDisabled(t *testing.T) {
	svc, _ := newTestService(t)
	clearBoardCache()
	svc.Settings = func() Settings { return Settings{Enabled: false} }

	earnPoints(t, svc, testUser(1), "2025-03-10", 1)
	require.NoError(t, svc.RefreshLeaderboardIfDue())

	_, ok := utils.CacheGetBytes(leaderboardCacheKey)
	require.False(t, ok)
}

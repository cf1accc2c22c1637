package services

import (
	"sort"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/werta666/jifen-go/models"
	"github.com/werta666/jifen-go/utils"
)

const (
	leaderboardCacheKey   = "jifen:leaderboard"
	leaderboardUpdatedKey = "jifen:leaderboard:updated"

	// The cache holds more entries than the default display size so smaller
	// limits are always served from cache.
	leaderboardCacheSize = 10
	defaultBoardLimit    = 5

	// Cache TTL is far longer than any refresh interval so a stalled job
	// degrades to stale data instead of an empty board.
	leaderboardCacheTTL = 2 * time.Hour
	// Miss-path writes use a short TTL; the scheduled refresh owns the cache.
	leaderboardMissTTL = time.Hour
)

// BoardEntry is one ranked row of the leaderboard.
type BoardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Points   int    `json:"points"`
}

// BoardData is the leaderboard payload served to clients.
type BoardData struct {
	Leaderboard []BoardEntry `json:"leaderboard"`
	UpdatedAt   string       `json:"updated_at"`
	FromCache   bool         `json:"from_cache"`
}

// BoardSnapshot is the cached representation.
type BoardSnapshot struct {
	Leaderboard []BoardEntry `json:"leaderboard"`
	UpdatedAt   string       `json:"updated_at"`
}

// Leaderboard serves the top-limit ranking, read-through. On a cache hit the
// snapshot may be up to one refresh interval stale; on a miss it is computed
// synchronously and cached with a short safety TTL.
func (s *Service) Leaderboard(limit int) (*BoardData, error) {
	if limit <= 0 {
		limit = defaultBoardLimit
	}

	var cached BoardSnapshot
	if utils.CacheGetJSON(leaderboardCacheKey, &cached) {
		return &BoardData{
			Leaderboard: firstEntries(cached.Leaderboard, limit),
			UpdatedAt:   cached.UpdatedAt,
			FromCache:   true,
		}, nil
	}

	utils.Sugar.Warn("leaderboard cache miss, computing synchronously")
	fresh, err := s.RecomputeLeaderboard(leaderboardCacheSize)
	if err != nil {
		return nil, err
	}
	utils.CacheSetJSON(leaderboardCacheKey, fresh, leaderboardMissTTL)

	return &BoardData{
		Leaderboard: firstEntries(fresh.Leaderboard, limit),
		UpdatedAt:   fresh.UpdatedAt,
		FromCache:   false,
	}, nil
}

// RecomputeLeaderboard scans the ledger and ranks every user with a positive
// available balance, descending. Ties keep scan order, which is not
// guaranteed stable across recomputations.
func (s *Service) RecomputeLeaderboard(limit int) (*BoardSnapshot, error) {
	type boardRow struct {
		UserID    uint
		Username  string
		Available int
	}

	var rows []boardRow
	err := s.db.Model(&models.SignIn{}).
		Select("jifen_signins.user_id AS user_id, users.username AS username, COALESCE(SUM(jifen_signins.points), 0) - users.spent_points AS available").
		Joins("JOIN users ON users.id = jifen_signins.user_id").
		Group("jifen_signins.user_id, users.username, users.spent_points").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	positive := rows[:0]
	for _, r := range rows {
		if r.Available > 0 {
			positive = append(positive, r)
		}
	}
	sort.SliceStable(positive, func(i, j int) bool {
		return positive[i].Available > positive[j].Available
	})
	if limit > 0 && len(positive) > limit {
		positive = positive[:limit]
	}

	board := make([]BoardEntry, 0, len(positive))
	for i, r := range positive {
		board = append(board, BoardEntry{
			Rank:     i + 1,
			Username: r.Username,
			Points:   r.Available,
		})
	}

	return &BoardSnapshot{
		Leaderboard: board,
		UpdatedAt:   s.Now().Format(time.RFC3339),
	}, nil
}

// refreshLeaderboardCache recomputes and overwrites both the snapshot and the
// last-update gate.
func (s *Service) refreshLeaderboardCache() (*BoardSnapshot, error) {
	fresh, err := s.RecomputeLeaderboard(leaderboardCacheSize)
	if err != nil {
		return nil, err
	}
	utils.CacheSetJSON(leaderboardCacheKey, fresh, leaderboardCacheTTL)
	utils.CacheSetBytes(leaderboardUpdatedKey, []byte(s.Now().Format(time.RFC3339)), leaderboardCacheTTL)
	return fresh, nil
}

// ForceRefreshLeaderboard unconditionally rebuilds the cache, bypassing the
// interval gate. Admin-only; the action is audited.
func (s *Service) ForceRefreshLeaderboard(actor Identity) (*BoardData, error) {
	fresh, err := s.refreshLeaderboardCache()
	if err != nil {
		return nil, err
	}

	s.audit.Log(actor, "jifen_force_refresh_board", map[string]any{
		"entries": len(fresh.Leaderboard),
	})
	utils.Sugar.Infof("leaderboard cache force-refreshed, %d entries", len(fresh.Leaderboard))

	return &BoardData{
		Leaderboard: fresh.Leaderboard,
		UpdatedAt:   fresh.UpdatedAt,
		FromCache:   false,
	}, nil
}

// RefreshLeaderboardIfDue recomputes only when the configured interval has
// elapsed since the last successful update. The gate lives in the cache, not
// the scheduler, because the interval is admin-adjustable at runtime while
// the job ticks at a fixed minimum cadence.
func (s *Service) RefreshLeaderboardIfDue() error {
	st := s.Settings()
	if !st.Enabled {
		return nil
	}

	if raw, ok := utils.CacheGetBytes(leaderboardUpdatedKey); ok {
		if last, err := time.Parse(time.RFC3339, string(raw)); err == nil {
			if s.Now().Sub(last) < st.LeaderboardInterval {
				return nil
			}
		}
	}

	fresh, err := s.refreshLeaderboardCache()
	if err != nil {
		return err
	}
	utils.Sugar.Infof("leaderboard cache refreshed, %d entries", len(fresh.Leaderboard))
	return nil
}

// StartLeaderboardScheduler ticks every minute; each tick is a no-op until
// the refresh interval has elapsed. Repeated ticks inside the interval cost
// one cache read.
func (s *Service) StartLeaderboardScheduler() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(time.Minute),
		gocron.NewTask(func() {
			if err := s.RefreshLeaderboardIfDue(); err != nil {
				utils.Sugar.Errorf("leaderboard refresh failed: %v", err)
			}
		}),
	)
	if err != nil {
		return err
	}

	sched.Start()
	return nil
}

func firstEntries(entries []BoardEntry, limit int) []BoardEntry {
	if len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

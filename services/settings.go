package services

import (
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/werta666/jifen-go/config"
)

// Settings is an immutable snapshot of the points-system configuration.
// Operations capture one snapshot at entry so an admin changing settings
// mid-request cannot produce a half-old, half-new computation.
type Settings struct {
	Enabled             bool
	BasePoints          int
	RewardsJSON         string
	MakeupCardPrice     int
	MakeupRatioPercent  int
	LeaderboardInterval time.Duration
}

// SettingsFromConfig builds a snapshot from the loaded app configuration,
// clamping out-of-range values the same way reads do.
func SettingsFromConfig() Settings {
	cfg := config.Get()
	interval := cfg.LeaderboardUpdateMinutes
	if interval < 1 || interval > 60 {
		interval = 3
	}
	return Settings{
		Enabled:             cfg.JifenEnabled,
		BasePoints:          cfg.BasePointsPerSignin,
		RewardsJSON:         cfg.ConsecutiveRewardsJSON,
		MakeupCardPrice:     cfg.MakeupCardPrice,
		MakeupRatioPercent:  clampRatio(cfg.MakeupRatioPercent),
		LeaderboardInterval: time.Duration(interval) * time.Minute,
	}
}

func clampRatio(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// NextReward describes the closest unreached streak bonus tier.
type NextReward struct {
	Days   int `json:"days"`
	Points int `json:"points"`
	Remain int `json:"remain"`
}

// ParseRewards parses the free-form reward schedule ("streak days" -> bonus
// points). The schedule is operator-supplied text, so it is parsed
// defensively: malformed JSON yields an empty schedule and entries with
// non-numeric keys or values are dropped. Never a hard failure at read time.
func ParseRewards(raw string) map[string]int {
	rewards := map[string]int{}
	if raw == "" {
		return rewards
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return rewards
	}
	for k, v := range parsed {
		if _, err := strconv.Atoi(k); err != nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			rewards[k] = int(t)
		case string:
			if n, err := strconv.Atoi(t); err == nil {
				rewards[k] = n
			}
		}
	}
	return rewards
}

// NextRewardInfo returns the first bonus tier with a threshold strictly above
// the current streak, or nil when the streak exceeds every tier or the
// schedule is empty.
func NextRewardInfo(streak int, rewards map[string]int) *NextReward {
	if len(rewards) == 0 {
		return nil
	}
	type tier struct{ days, points int }
	tiers := make([]tier, 0, len(rewards))
	for k, v := range rewards {
		days, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		tiers = append(tiers, tier{days: days, points: v})
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].days < tiers[j].days })
	for _, t := range tiers {
		if t.days > streak {
			return &NextReward{Days: t.days, Points: t.points, Remain: t.days - streak}
		}
	}
	return nil
}

package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/werta666/jifen-go/services"
	"github.com/werta666/jifen-go/utils"
)

// BetsController serves the mock esports-betting feature. Events are
// fabricated display data and never persisted; only the stake debit is real,
// flowing through the same balance accounting as every other spend.
type BetsController struct {
	svc *services.Service
}

// NewBetsController creates a new controller instance.
func NewBetsController(svc *services.Service) *BetsController {
	return &BetsController{svc: svc}
}

type betOption struct {
	ID     uint    `json:"id"`
	Name   string  `json:"name"`
	Logo   string  `json:"logo"`
	Odds   float64 `json:"odds"`
	Votes  int     `json:"votes"`
	Pool   int     `json:"pool"`
	Winner bool    `json:"winner,omitempty"`
}

type betEvent struct {
	ID         uint        `json:"id"`
	Title      string      `json:"title"`
	Subtitle   string      `json:"subtitle"`
	Status     string      `json:"status"` // active, closed, finished
	EndTime    string      `json:"end_time"`
	WinnerID   uint        `json:"winner_id,omitempty"`
	TotalVotes int         `json:"total_votes"`
	TotalPool  int         `json:"total_pool"`
	Options    []betOption `json:"options"`
}

func mockEvents(now time.Time) []betEvent {
	return []betEvent{
		{
			ID: 1, Title: "LPL Spring Finals", Subtitle: "JDG vs BLG",
			Status: "active", EndTime: now.Add(2 * time.Hour).Format(time.RFC3339),
			TotalVotes: 1247, TotalPool: 15680,
			Options: []betOption{
				{ID: 1, Name: "JDG", Logo: "🏆", Odds: 1.85, Votes: 687, Pool: 8420},
				{ID: 2, Name: "BLG", Logo: "⚡", Odds: 2.15, Votes: 560, Pool: 7260},
			},
		},
		{
			ID: 2, Title: "DOTA2 The International", Subtitle: "Team Spirit vs PSG.LGD",
			Status: "active", EndTime: now.Add(4 * time.Hour).Format(time.RFC3339),
			TotalVotes: 892, TotalPool: 11240,
			Options: []betOption{
				{ID: 3, Name: "Team Spirit", Logo: "👻", Odds: 2.3, Votes: 340, Pool: 4680},
				{ID: 4, Name: "PSG.LGD", Logo: "🐉", Odds: 1.7, Votes: 552, Pool: 6560},
			},
		},
		{
			ID: 3, Title: "CS2 Major Finals", Subtitle: "FaZe vs NAVI",
			Status: "finished", EndTime: now.Add(-time.Hour).Format(time.RFC3339), WinnerID: 5,
			TotalVotes: 2156, TotalPool: 28940,
			Options: []betOption{
				{ID: 5, Name: "FaZe", Logo: "🔥", Odds: 2.1, Votes: 1024, Pool: 15680, Winner: true},
				{ID: 6, Name: "NAVI", Logo: "⭐", Odds: 1.9, Votes: 1132, Pool: 13260},
			},
		},
	}
}

// Events returns the fabricated event list plus the caller's balance.
func (b *BetsController) Events(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	balance, err := b.svc.AvailablePoints(identity)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"events":       mockEvents(time.Now()),
		"user_balance": balance,
		"is_admin":     identity.IsAdmin,
	})
}

type voteRequest struct {
	EventID   uint `json:"event_id"`
	OptionID  uint `json:"option_id"`
	BetAmount int  `json:"bet_amount"`
}

// Vote stakes points on an option. The stake is debited immediately; there is
// no settlement since events are mock data.
func (b *BetsController) Vote(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var req voteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.BetAmount <= 0 {
		respondServiceError(ctx, services.ErrInvalidStake)
		return
	}

	available, err := b.svc.AvailablePoints(identity)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	if req.BetAmount > available {
		respondServiceError(ctx, services.ErrInsufficientPoints)
		return
	}

	summary, err := b.svc.AdjustPoints(identity, identity, -req.BetAmount)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"event_id":    req.EventID,
		"option_id":   req.OptionID,
		"bet_amount":  req.BetAmount,
		"new_balance": summary.TotalScore,
	})
}

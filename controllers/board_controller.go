package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/werta666/jifen-go/services"
	"github.com/werta666/jifen-go/utils"
)

// BoardController serves the points leaderboard.
type BoardController struct {
	svc *services.Service
}

// NewBoardController creates a new controller instance.
func NewBoardController(svc *services.Service) *BoardController {
	return &BoardController{svc: svc}
}

// GetBoard returns the cached top-N ranking.
func (b *BoardController) GetBoard(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	limit := 5
	if raw := ctx.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 10 {
			limit = n
		}
	}

	board, err := b.svc.Leaderboard(limit)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"leaderboard": board.Leaderboard,
		"updated_at":  board.UpdatedAt,
		"from_cache":  board.FromCache,
		"is_admin":    identity.IsAdmin,
	})
}

// ForceRefresh rebuilds the leaderboard cache immediately, bypassing the
// interval gate. Admin-only.
func (b *BoardController) ForceRefresh(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	board, err := b.svc.ForceRefreshLeaderboard(identity)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"leaderboard": board.Leaderboard,
		"updated_at":  board.UpdatedAt,
	})
}

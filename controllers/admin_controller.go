package controllers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/werta666/jifen-go/services"
	"github.com/werta666/jifen-go/utils"
)

// AdminController exposes the staff debugging/adjustment endpoints and the
// integration balance API.
type AdminController struct {
	svc *services.Service
}

// NewAdminController creates a new controller instance.
func NewAdminController(svc *services.Service) *AdminController {
	return &AdminController{svc: svc}
}

type adjustRequest struct {
	Username string `json:"username"`
	UserID   uint   `json:"user_id"`
	Delta    int    `json:"delta"`
}

// AdjustPoints manually changes a user's available balance. The adjustment
// saturates at the balance bounds rather than failing.
func (a *AdminController) AdjustPoints(ctx *gin.Context) {
	actor, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var req adjustRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondServiceError(ctx, services.ErrZeroDelta)
		return
	}

	target, err := a.resolveTarget(req.UserID, req.Username)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	before, err := a.svc.AvailablePoints(target)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	summary, err := a.svc.AdjustPoints(actor, target, req.Delta)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"target_username":  target.Username,
		"delta":            req.Delta,
		"before_available": before,
		"after_available":  summary.TotalScore,
	})
}

type resetRequest struct {
	Username string `json:"username"`
}

// ResetToday deletes the target's signin entry for today so they can sign in
// again.
func (a *AdminController) ResetToday(ctx *gin.Context) {
	actor, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var req resetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Username) == "" {
		respondServiceError(ctx, services.ErrUserNotFound)
		return
	}

	target, err := a.svc.FindIdentityByUsername(strings.TrimSpace(req.Username))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	removed, err := a.svc.ResetToday(actor, target)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"target_username": target.Username,
		"removed":         removed,
	})
}

// Balance returns available and lifetime points for a user. Users may query
// themselves; admins may query anyone.
func (a *AdminController) Balance(ctx *gin.Context) {
	actor, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	target := actor
	if raw := ctx.Query("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondServiceError(ctx, services.ErrUserNotFound)
			return
		}
		t, err := a.svc.FindIdentityByID(uint(id))
		if err != nil {
			respondServiceError(ctx, err)
			return
		}
		target = t
	} else if username := ctx.Query("username"); username != "" {
		t, err := a.svc.FindIdentityByUsername(username)
		if err != nil {
			respondServiceError(ctx, err)
			return
		}
		target = t
	}

	if target.ID != actor.ID && !actor.IsAdmin {
		utils.Error(ctx, 403, 40302, "cannot query other users")
		return
	}

	available, err := a.svc.AvailablePoints(target)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	total, err := a.svc.TotalPoints(target.ID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"user_id":             target.ID,
		"username":            target.Username,
		"available_points":    available,
		"total_signed_points": total,
	})
}

// resolveTarget accepts either a user id or a username, id winning. Both
// paths verify the user exists; an unknown id must not mint a mirror row.
func (a *AdminController) resolveTarget(userID uint, username string) (services.Identity, error) {
	if userID != 0 {
		return a.svc.FindIdentityByID(userID)
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return services.Identity{}, services.ErrUserNotFound
	}
	return a.svc.FindIdentityByUsername(username)
}

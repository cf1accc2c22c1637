package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/werta666/jifen-go/services"
	"github.com/werta666/jifen-go/utils"
)

// SignInController handles daily signin, makeup and summary endpoints.
type SignInController struct {
	svc *services.Service
}

// NewSignInController creates a new controller instance.
func NewSignInController(svc *services.Service) *SignInController {
	return &SignInController{svc: svc}
}

// Summary returns the user's full points overview.
func (s *SignInController) Summary(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	summary, err := s.svc.Summary(identity)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, summary)
}

// Records returns the last 7 days of signin records, newest first.
func (s *SignInController) Records(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	records, err := s.svc.RecentRecords(identity.ID, 7)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"records": records})
}

// DailySignIn records a daily signin and returns the refreshed summary.
// Re-signing the same day returns the summary unchanged.
func (s *SignInController) DailySignIn(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	summary, err := s.svc.Signin(identity)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, summary)
}

type makeupRequest struct {
	Date string `json:"date"`
}

// Makeup backfills a missed day, consuming one makeup card.
func (s *SignInController) Makeup(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var req makeupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondServiceError(ctx, services.ErrInvalidDate)
		return
	}

	summary, err := s.svc.Makeup(identity, req.Date)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, summary)
}

// BuyMakeupCard spends points on one makeup card.
func (s *SignInController) BuyMakeupCard(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	summary, err := s.svc.PurchaseMakeupCard(identity)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, summary)
}

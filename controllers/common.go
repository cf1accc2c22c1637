package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/werta666/jifen-go/middleware"
	"github.com/werta666/jifen-go/services"
	"github.com/werta666/jifen-go/utils"
)

// requireIdentity fetches the identity stored by the auth middleware,
// responding 401 when absent.
func requireIdentity(ctx *gin.Context) (services.Identity, bool) {
	identity, ok := middleware.GetIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		ctx.Abort()
		return services.Identity{}, false
	}
	return identity, true
}

// respondServiceError maps core error kinds to HTTP statuses. The service
// layer only knows named kinds; status mapping lives here at the boundary.
func respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrOrderNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, err.Error())
	case errors.Is(err, services.ErrAlreadySigned),
		errors.Is(err, services.ErrAlreadyRecorded):
		utils.Error(ctx, http.StatusConflict, 40901, err.Error())
	case errors.Is(err, services.ErrZeroDelta),
		errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrFutureDate),
		errors.Is(err, services.ErrBeforeInstall),
		errors.Is(err, services.ErrNoMakeupCards),
		errors.Is(err, services.ErrInsufficientPoints),
		errors.Is(err, services.ErrOutOfStock),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidStake):
		utils.Error(ctx, http.StatusUnprocessableEntity, 42201, err.Error())
	default:
		utils.Sugar.Errorf("internal error: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50001, "internal error")
	}
}

package main

import (
	"github.com/werta666/jifen-go/config"
	"github.com/werta666/jifen-go/models"
	"github.com/werta666/jifen-go/routes"
	"github.com/werta666/jifen-go/services"
	"github.com/werta666/jifen-go/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.SignIn{}, &models.ShopProduct{}, &models.ShopOrder{})

	svc := services.New(db, services.NewZapAudit(utils.Logger))

	if cfg.JifenEnabled {
		if err := svc.StartLeaderboardScheduler(); err != nil {
			utils.Sugar.Warnf("leaderboard scheduler not started: %v", err)
		}
	}

	r := routes.SetupRouter(svc)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

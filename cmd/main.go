package main

import (
	"backend/config"
	"backend/controllers"
	"backend/routes"
	"backend/services"
)

func main() {
	config.LoadEnv()
	db := config.InitDB()
	rdb := config.InitRedis()

	hub := services.NewRealtimeHub()
	estimator := services.NewEstimatorService(rdb)
	summarySvc := services.NewSummaryService(db)
	mealSvc := services.NewMealService(db, summarySvc, hub)
	insightsSvc := services.NewInsightsService(db, estimator)

	ctrl := routes.Controllers{
		Auth:      controllers.NewAuthController(services.NewAuthService(db)),
		User:      controllers.NewUserController(services.NewUserService(db)),
		Meal:      controllers.NewMealController(mealSvc, estimator),
		Nutrition: controllers.NewNutritionController(estimator, summarySvc, insightsSvc),
		Goal:      controllers.NewGoalController(services.NewGoalService(db)),
		Realtime:  controllers.NewRealtimeController(hub),
	}

	r := routes.SetupRouter(db, ctrl)
	r.Run(":8080")
}

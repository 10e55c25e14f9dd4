package routes

import (
	"backend/controllers"
	"backend/middlewares"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Controllers struct {
	Auth      *controllers.AuthController
	User      *controllers.UserController
	Meal      *controllers.MealController
	Nutrition *controllers.NutritionController
	Goal      *controllers.GoalController
	Realtime  *controllers.RealtimeController
}

func SetupRouter(db *gorm.DB, ctrl Controllers) *gin.Engine {
	r := gin.Default()

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
	}

	authorized := r.Group("/")
	authorized.Use(middlewares.AuthMiddleware(db))
	{
		authorized.GET("/user/profile", ctrl.User.GetProfile)
		authorized.PUT("/user/profile", ctrl.User.UpdateProfile)

		authorized.POST("/meals", ctrl.Meal.CreateMeal)
		authorized.GET("/meals", ctrl.Meal.ListMeals)
		authorized.GET("/meals/:id", ctrl.Meal.GetMeal)
		authorized.PUT("/meals/:id", ctrl.Meal.UpdateMeal)
		authorized.DELETE("/meals/:id", ctrl.Meal.DeleteMeal)

		authorized.POST("/nutrition/analyze", ctrl.Nutrition.Analyze)
		authorized.GET("/nutrition/daily", ctrl.Nutrition.GetDailySummary)
		authorized.GET("/nutrition/summaries", ctrl.Nutrition.GetSummaryRange)
		authorized.GET("/nutrition/insights", ctrl.Nutrition.GetInsights)

		authorized.POST("/goals", ctrl.Goal.CreateGoal)
		authorized.GET("/goals", ctrl.Goal.ListGoals)
		authorized.PUT("/goals/:id", ctrl.Goal.UpdateGoal)
		authorized.DELETE("/goals/:id", ctrl.Goal.DeleteGoal)

		authorized.GET("/ws", ctrl.Realtime.SummariesWS)
	}

	return r
}

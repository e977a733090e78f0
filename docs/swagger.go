package docs

import "github.com/swaggo/swag"

// @title           TaskPulse API
// @version         1.0
// @description     API for personal tasks, daily routines and completion analytics

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token

// @tag.name Users
// @tag.description Registration and login

// @tag.name Tasks
// @tag.description Task and routine management operations

// @tag.name Stats
// @tag.description Streak, timeseries and priority analytics

// Register swagger info
func SwaggerInfo() *swag.Spec {
	return &swag.Spec{
		Version:     "1.0",
		Host:        "localhost:8080",
		BasePath:    "/",
		Title:       "TaskPulse API",
		Description: "API for personal tasks, daily routines and completion analytics",
	}
}

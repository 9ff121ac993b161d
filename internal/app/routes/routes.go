package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/campus/internal/app/controllers"
	"github.com/yigit/campus/internal/middleware"
)

// Controllers groups the handlers the route table dispatches to
type Controllers struct {
	Auth    *controllers.AuthController
	Admin   *controllers.AdminController
	Student *controllers.StudentController
	Legacy  *controllers.LegacyController
	Health  *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl Controllers, authMiddleware *middleware.AuthMiddleware) {
	// Legacy JSON endpoint, public and unversioned
	router.GET("/api/get_students", ctrl.Legacy.GetStudents)

	// API version group
	v1 := router.Group("/api/v1")
	v1.GET("/health", ctrl.Health.Health)

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.POST("/auth/logout", ctrl.Auth.Logout)

		admins := authenticated.Group("/admins")
		{
			admins.GET("", ctrl.Admin.ListAdmins)
			admins.GET("/:id", ctrl.Admin.GetAdmin)
			admins.POST("", ctrl.Admin.CreateAdmin)
			admins.PUT("/:id", ctrl.Admin.UpdateAdmin)
			admins.DELETE("/:id", ctrl.Admin.DeleteAdmin)
		}

		students := authenticated.Group("/students")
		{
			students.GET("", ctrl.Student.ListStudents)
			students.GET("/:idno", ctrl.Student.GetStudent)
			students.POST("", ctrl.Student.CreateStudent)
			students.PUT("/:idno", ctrl.Student.UpdateStudent)
			students.DELETE("/:idno", ctrl.Student.DeleteStudent)
		}
	}
}

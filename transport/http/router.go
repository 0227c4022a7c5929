package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/chaitanyaghughuskar/cdac-project/core"
	"github.com/chaitanyaghughuskar/cdac-project/ports"
)

// SetupRouter sets up the Gin router.
func SetupRouter(handlers *Handlers, tokenizer ports.Tokenizer) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	authed := router.Group("/")
	authed.Use(AuthMiddleware(tokenizer))

	wa := authed.Group("/webauthn")
	{
		wa.POST("/register/start", handlers.RegisterStart)
		wa.POST("/register/finish", handlers.RegisterFinish)
		wa.DELETE("/reset", handlers.Reset)
		wa.POST("/auth/start", handlers.AuthStart)
		wa.POST("/auth/finish", handlers.AuthFinish)
	}

	faculty := authed.Group("/faculty")
	faculty.Use(RequireRole(core.RoleFaculty))
	{
		faculty.POST("/qr/generate", handlers.QRGenerate)
		faculty.GET("/sessions", handlers.FacultySessions)
		faculty.GET("/sessions/:id/attendance", handlers.SessionAttendance)
	}

	admin := authed.Group("/admin")
	admin.Use(RequireRole(core.RoleAdmin))
	{
		admin.GET("/location", handlers.GetLocation)
		admin.POST("/location", handlers.SetLocation)
		admin.DELETE("/attendance/:id", handlers.DeleteAttendance)
	}

	return router
}

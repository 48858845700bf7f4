package infrastructure

import (
	"fmt"
	"net/http"
	"os"

	"github.com/didip/tollbooth"
	"github.com/didip/tollbooth_gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"presenza.io/infrastructure/logger"
	"presenza.io/infrastructure/middleware"
	routev1 "presenza.io/infrastructure/routes/ginRouter/web/v1"
)

type ginServer struct{}

func (s ginServer) Start() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	server := gin.Default()

	server.Use(cors.New(cors.Config{
		AllowOrigins:     []string{os.Getenv("CLIENT_ORIGIN")},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Device-Id"},
		AllowCredentials: true,
	}))

	limit := tollbooth.NewLimiter(10, nil)
	server.Use(tollbooth_gin.LimitHandler(limit))
	server.Use(middleware.DeviceMiddleware())

	v1 := server.Group("/api/v1")
	{
		routev1.AttendanceRouter(v1)
		routev1.StudentRouter(v1)
	}

	server.GET("/ping", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	server.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"message": "this route does not exist"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info(fmt.Sprintf("server starting on port %s", port))
	if err := server.Run(fmt.Sprintf(":%s", port)); err != nil {
		logger.Error("gin server exited", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
	}
}

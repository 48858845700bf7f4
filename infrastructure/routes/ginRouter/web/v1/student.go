package routev1

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "presenza.io/application/appErrors"
	"presenza.io/application/controller"
	"presenza.io/application/controller/dto"
	"presenza.io/infrastructure/middleware"
)

func StudentRouter(router *gin.RouterGroup) {
	studentRouter := router.Group("/students")
	{
		studentRouter.POST("/", func(ctx *gin.Context) {
			var body dto.RegisterStudentDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx)
				return
			}
			controller.RegisterStudent(middleware.BuildAppContext(ctx, &body))
		})

		studentRouter.GET("/:identityKey/status", func(ctx *gin.Context) {
			ctx.Set("identityKey", ctx.Param("identityKey"))
			controller.FetchEnrollmentStatus(middleware.BuildAppContext[any](ctx, nil))
		})
	}
}

func queryInt(ctx *gin.Context, key string) int64 {
	value, err := strconv.ParseInt(ctx.Query(key), 10, 64)
	if err != nil {
		return 0
	}
	return value
}

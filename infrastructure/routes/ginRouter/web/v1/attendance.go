package routev1

import (
	"github.com/gin-gonic/gin"

	apperrors "presenza.io/application/appErrors"
	"presenza.io/application/controller"
	"presenza.io/application/controller/dto"
	"presenza.io/infrastructure/middleware"
)

func AttendanceRouter(router *gin.RouterGroup) {
	attendanceRouter := router.Group("/attendance")
	{
		attendanceRouter.POST("/session", func(ctx *gin.Context) {
			var body dto.StartSessionDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx)
				return
			}
			controller.StartVerificationSession(middleware.BuildAppContext(ctx, &body))
		})

		attendanceRouter.POST("/verify", middleware.SessionMiddleware(), func(ctx *gin.Context) {
			var body dto.VerifyAttendanceDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx)
				return
			}
			controller.VerifyAttendance(middleware.BuildAppContext(ctx, &body))
		})

		attendanceRouter.GET("/history/:identityKey", func(ctx *gin.Context) {
			body := dto.HistoryFilterDTO{
				IdentityKey: ctx.Param("identityKey"),
				Page:        queryInt(ctx, "page"),
				PerPage:     queryInt(ctx, "perPage"),
			}
			controller.FetchAttendanceHistory(middleware.BuildAppContext(ctx, &body))
		})
	}
}

package router

import (
	"gitee.com/taoJie_1/faq-agent/controller"
	"gitee.com/taoJie_1/faq-agent/middleware"
	"gitee.com/taoJie_1/faq-agent/model/common"

	"github.com/gin-gonic/gin"
)

func Start(ginServer *gin.Engine) {
	ginServer.Use(middleware.CorsHandle(), middleware.OptionsMethod) //全局中间件

	ginServer.NoRoute(func(ctx *gin.Context) {
		common.FailNotFound(ctx)
	})

	v1 := ginServer.Group("api/v1")
	{
		// FAQ检索与反馈
		v1.GET("/faq", controller.Api.UserApiGroup.FaqApi.Query)
		v1.GET("/faqs", controller.Api.UserApiGroup.FaqApi.List)
		v1.GET("/faq/:id", controller.Api.UserApiGroup.FaqApi.Get)
		v1.POST("/faq/feedback", controller.Api.UserApiGroup.FaqApi.Feedback)

		// 学习管道
		v1.POST("/learning/run", controller.Api.UserApiGroup.LearningApi.RunPipeline)
		v1.POST("/learning/realtime", controller.Api.UserApiGroup.LearningApi.Realtime)
		v1.GET("/learning/status", controller.Api.UserApiGroup.LearningApi.Status)
	}

	adminGroup := ginServer.Group("api/v1/admin")
	{
		adminGroup.GET("/faqs/pending", controller.Api.AdminApiGroup.ReviewApi.ListPending)
		adminGroup.POST("/faqs/approve", controller.Api.AdminApiGroup.ReviewApi.Approve)
		adminGroup.POST("/faqs/reject", controller.Api.AdminApiGroup.ReviewApi.Reject)
		adminGroup.POST("/faqs/publish", controller.Api.AdminApiGroup.ReviewApi.Publish)
		adminGroup.POST("/faqs/unpublish", controller.Api.AdminApiGroup.ReviewApi.Unpublish)
		adminGroup.GET("/stats", controller.Api.AdminApiGroup.ReviewApi.Stats)
		adminGroup.POST("/export", controller.Api.AdminApiGroup.ReviewApi.Export)
		adminGroup.POST("/sync-kb", controller.Api.AdminApiGroup.ReviewApi.SyncKb)
	}
}

package middleware

import (
	"net/http"
	"time"

	"gitee.com/taoJie_1/faq-agent/global"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CorsHandle 跨域配置, 允许的来源从配置读取, 未配置时放开
func CorsHandle() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(global.Config.Cors) > 0 {
		cfg.AllowOrigins = global.Config.Cors
	} else {
		cfg.AllowAllOrigins = true
	}
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	cfg.MaxAge = 12 * time.Hour
	return cors.New(cfg)
}

// OptionsMethod 预检请求直接返回204
func OptionsMethod(ctx *gin.Context) {
	if ctx.Request.Method == http.MethodOptions {
		ctx.AbortWithStatus(http.StatusNoContent)
		return
	}
	ctx.Next()
}

package user

import (
	"context"
	"errors"

	"gitee.com/taoJie_1/faq-agent/global"
	"gitee.com/taoJie_1/faq-agent/model/common"
	"gitee.com/taoJie_1/faq-agent/model/dto"
	"gitee.com/taoJie_1/faq-agent/model/enum"
	"gitee.com/taoJie_1/faq-agent/service"
	"gitee.com/taoJie_1/faq-agent/service/learning"
	"github.com/gin-gonic/gin"
)

type LearningApi struct{}

// RunPipeline 手动触发一次全量学习, 任务在后台执行
func (a *LearningApi) RunPipeline(ctx *gin.Context) {
	var req common.RunPipelineRequest
	// 请求体可为空, 为空时按默认条件运行
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		common.Fail(ctx, "参数无效")
		return
	}

	if service.Service.LearningServiceGroup.PipelineService.GetPipelineStatus().IsProcessing {
		common.Fail(ctx, "学习管道正在运行中, 请稍后重试")
		return
	}

	criteria := &dto.ExtractionCriteria{
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		MinSatisfaction:    req.MinSatisfaction,
		MinDurationSeconds: req.MinDuration,
		Categories:         req.Categories,
		ExcludeCategories:  req.ExcludeCategory,
		Limit:              req.Limit,
	}

	// HTTP连接断开不应中止学习任务
	go func() {
		defer func() {
			if p := recover(); p != nil {
				global.Log.Errorf("[RunPipeline]: %v", p)
			}
		}()
		if _, err := service.Service.LearningServiceGroup.PipelineService.Run(context.Background(), criteria); err != nil &&
			!errors.Is(err, learning.ErrPipelineBusy) {
			global.Log.Errorf("学习管道运行失败: %v", err)
		}
	}()

	common.SuccessOk(ctx, "学习任务已触发")
}

// Realtime 单条交互的实时增量学习, 同步执行并返回结果
func (a *LearningApi) Realtime(ctx *gin.Context) {
	var req common.RealtimeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		common.Fail(ctx, "参数无效")
		return
	}

	sourceType := enum.SourceType(req.SourceType)
	if sourceType != enum.SourceChat && sourceType != enum.SourceTicket {
		common.Fail(ctx, "不支持的数据源类型")
		return
	}

	result, err := service.Service.LearningServiceGroup.PipelineService.ProcessRealTimeData(ctx.Request.Context(), sourceType, req.SourceId)
	if err != nil {
		if errors.Is(err, learning.ErrPipelineBusy) {
			common.Fail(ctx, err.Error())
			return
		}
		global.Log.Errorf("实时学习失败: %v", err)
		common.Fail(ctx, "实时学习失败")
		return
	}
	common.Success(ctx, result)
}

// Status 管道状态
func (a *LearningApi) Status(ctx *gin.Context) {
	common.Success(ctx, service.Service.LearningServiceGroup.PipelineService.GetPipelineStatus())
}

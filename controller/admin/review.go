package admin

import (
	"strconv"

	"gitee.com/taoJie_1/faq-agent/global"
	"gitee.com/taoJie_1/faq-agent/model/common"
	"gitee.com/taoJie_1/faq-agent/service"
	"github.com/gin-gonic/gin"
)

type ReviewApi struct{}

// ListPending 待审核条目列表, 支持limit/offset分页
func (a *ReviewApi) ListPending(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	list, err := service.Service.AdminServiceGroup.ReviewService.ListPending(ctx.Request.Context(), limit, offset)
	if err != nil {
		global.Log.Errorf("查询待审核FAQ失败: %v", err)
		common.Fail(ctx, "查询失败")
		return
	}
	common.Success(ctx, list)
}

func (a *ReviewApi) Approve(ctx *gin.Context) {
	req, ok := bindReview(ctx)
	if !ok {
		return
	}
	if err := service.Service.AdminServiceGroup.ReviewService.Approve(ctx.Request.Context(), req.FaqId); err != nil {
		common.Fail(ctx, err.Error())
		return
	}
	common.SuccessOk(ctx, "已通过审核")
}

func (a *ReviewApi) Reject(ctx *gin.Context) {
	req, ok := bindReview(ctx)
	if !ok {
		return
	}
	if err := service.Service.AdminServiceGroup.ReviewService.Reject(ctx.Request.Context(), req.FaqId, req.Reason); err != nil {
		common.Fail(ctx, err.Error())
		return
	}
	common.SuccessOk(ctx, "已驳回")
}

func (a *ReviewApi) Publish(ctx *gin.Context) {
	req, ok := bindReview(ctx)
	if !ok {
		return
	}
	if err := service.Service.AdminServiceGroup.ReviewService.Publish(ctx.Request.Context(), req.FaqId); err != nil {
		common.Fail(ctx, err.Error())
		return
	}
	common.SuccessOk(ctx, "已发布")
}

func (a *ReviewApi) Unpublish(ctx *gin.Context) {
	req, ok := bindReview(ctx)
	if !ok {
		return
	}
	if err := service.Service.AdminServiceGroup.ReviewService.Unpublish(ctx.Request.Context(), req.FaqId); err != nil {
		common.Fail(ctx, err.Error())
		return
	}
	common.SuccessOk(ctx, "已下线")
}

// Stats 学习看板统计
func (a *ReviewApi) Stats(ctx *gin.Context) {
	stats, err := service.Service.AdminServiceGroup.ReviewService.Stats(ctx.Request.Context())
	if err != nil {
		global.Log.Errorf("查询统计失败: %v", err)
		common.Fail(ctx, "查询失败")
		return
	}
	common.Success(ctx, stats)
}

// Export 导出已发布FAQ快照到OSS
func (a *ReviewApi) Export(ctx *gin.Context) {
	url, err := service.Service.AdminServiceGroup.ReviewService.ExportPublished(ctx.Request.Context())
	if err != nil {
		global.Log.Errorf("导出FAQ失败: %v", err)
		common.Fail(ctx, err.Error())
		return
	}
	common.Success(ctx, gin.H{"url": url})
}

// SyncKb 推送已发布FAQ到下游知识库
func (a *ReviewApi) SyncKb(ctx *gin.Context) {
	pushed, err := service.Service.AdminServiceGroup.ReviewService.SyncKnowledgeBase(ctx.Request.Context())
	if err != nil {
		global.Log.Errorf("同步知识库失败: %v", err)
		common.Fail(ctx, err.Error())
		return
	}
	common.Success(ctx, gin.H{"pushed": pushed})
}

func bindReview(ctx *gin.Context) (common.ReviewRequest, bool) {
	var req common.ReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		common.Fail(ctx, "参数无效")
		return req, false
	}
	return req, true
}

package user

import (
	"context"
	"strconv"
	"strings"

	"gitee.com/taoJie_1/faq-agent/dao"
	"gitee.com/taoJie_1/faq-agent/global"
	"gitee.com/taoJie_1/faq-agent/model/common"
	"gitee.com/taoJie_1/faq-agent/model/db"
	"gitee.com/taoJie_1/faq-agent/model/enum"
	"gitee.com/taoJie_1/faq-agent/service"
	"github.com/gin-gonic/gin"
)

type FaqApi struct{}

// Query 已发布FAQ检索: 先精确命中, 再按相似度匹配
func (a *FaqApi) Query(ctx *gin.Context) {
	question := strings.TrimSpace(ctx.Query("q"))
	if question == "" {
		common.Fail(ctx, "缺少查询参数q")
		return
	}

	key := strings.ToLower(question)
	global.PublishedFaqs.RLock()
	answer, exact := global.PublishedFaqs.Data[key]
	global.PublishedFaqs.RUnlock()

	matchedQuestion := question
	if !exact {
		matchedQuestion, answer = a.bestMatch(question)
	}
	if answer == "" {
		common.FailNotFound(ctx)
		return
	}

	// 命中计数异步累加, 不阻塞响应
	go a.recordUsage(matchedQuestion)

	common.Success(ctx, gin.H{
		"question": matchedQuestion,
		"answer":   answer,
	})
}

// bestMatch 在已发布缓存中找相似度最高且达标的问题
func (a *FaqApi) bestMatch(question string) (string, string) {
	threshold := global.Config.Learning.SimilarityThreshold
	if threshold <= 0 {
		threshold = 0.8
	}
	similarity := service.Service.LearningServiceGroup.SimilarityService

	var bestQuestion, bestAnswer string
	var bestScore float64

	global.PublishedFaqs.RLock()
	defer global.PublishedFaqs.RUnlock()
	for q, ans := range global.PublishedFaqs.Data {
		score := similarity.Similarity(question, q)
		if score >= threshold && score > bestScore {
			bestScore = score
			bestQuestion = q
			bestAnswer = ans
		}
	}
	return bestQuestion, bestAnswer
}

func (a *FaqApi) recordUsage(question string) {
	defer func() {
		if p := recover(); p != nil {
			global.Log.Errorf("[recordUsage]: %v", p)
		}
	}()

	ctx := context.Background()
	id, err := dao.App.FaqDb.GetPublishedIdByQuestion(ctx, question)
	if err != nil || id == 0 {
		return
	}
	if err := service.Service.LearningServiceGroup.FeedbackService.RecordUsage(ctx, id); err != nil {
		global.Log.Warnf("记录FAQ命中失败: %v", err)
	}
}

// List 浏览已发布FAQ, 支持category与keyword过滤, 两者都给时取交集
func (a *FaqApi) List(ctx *gin.Context) {
	category := strings.TrimSpace(ctx.Query("category"))
	keyword := strings.TrimSpace(ctx.Query("keyword"))

	var (
		list []db.LearnedFaqs
		err  error
	)
	switch {
	case keyword != "":
		list, err = dao.App.FaqDb.SearchByKeyword(ctx.Request.Context(), keyword)
		if err == nil && category != "" {
			filtered := list[:0]
			for i := range list {
				if strings.EqualFold(list[i].Category, category) {
					filtered = append(filtered, list[i])
				}
			}
			list = filtered
		}
	case category != "":
		list, err = dao.App.FaqDb.ListByCategory(ctx.Request.Context(), category)
	default:
		list, err = dao.App.FaqDb.ListPublished(ctx.Request.Context())
	}
	if err != nil {
		global.Log.Errorf("查询FAQ列表失败: %v", err)
		common.Fail(ctx, "查询失败")
		return
	}
	common.Success(ctx, list)
}

// Get FAQ条目详情, 浏览计数+1
func (a *FaqApi) Get(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		common.Fail(ctx, "参数无效")
		return
	}

	faq, err := dao.App.FaqDb.GetFaq(ctx.Request.Context(), uint(id))
	if err != nil {
		global.Log.Errorf("查询FAQ失败: %v", err)
		common.Fail(ctx, "查询失败")
		return
	}
	if faq == nil || faq.Status != string(enum.FaqStatusPublished) {
		common.FailNotFound(ctx)
		return
	}

	if err := service.Service.LearningServiceGroup.FeedbackService.RecordView(ctx.Request.Context(), uint(id)); err != nil {
		global.Log.Warnf("记录FAQ浏览失败: %v", err)
	}
	common.Success(ctx, faq)
}

// Feedback 用户反馈: helpful/not_helpful
func (a *FaqApi) Feedback(ctx *gin.Context) {
	var req common.FeedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		common.Fail(ctx, "参数无效")
		return
	}

	impact, err := service.Service.LearningServiceGroup.FeedbackService.RecordFeedback(
		ctx.Request.Context(), req.FaqId, enum.FeedbackType(req.Feedback))
	if err != nil {
		global.Log.Errorf("记录FAQ反馈失败: %v", err)
		common.Fail(ctx, "记录反馈失败")
		return
	}
	if req.Comment != "" {
		global.Log.Infof("FAQ %d 收到反馈备注: %s", req.FaqId, req.Comment)
	}
	common.Success(ctx, impact)
}

package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gitee.com/taoJie_1/faq-agent/dao"
	"gitee.com/taoJie_1/faq-agent/global"
	"gitee.com/taoJie_1/faq-agent/model/db"
	"gitee.com/taoJie_1/faq-agent/model/dto"
	"gitee.com/taoJie_1/faq-agent/model/enum"
	"gitee.com/taoJie_1/faq-agent/utils"
)

// ReviewService 人工审核与发布流程
type ReviewService interface {
	// ListPending 待审核条目, 置信度高的排前面
	ListPending(ctx context.Context, limit, offset int) ([]db.LearnedFaqs, error)
	// Approve 通过审核: pending_review -> approved
	Approve(ctx context.Context, id uint) error
	// Reject 驳回: pending_review/approved -> rejected
	Reject(ctx context.Context, id uint, reason string) error
	// Publish 发布: approved/pending_review -> published
	Publish(ctx context.Context, id uint) error
	// Unpublish 下线: published -> approved
	Unpublish(ctx context.Context, id uint) error
	// Stats 学习看板统计, 结果短暂缓存
	Stats(ctx context.Context) (*dto.DashboardStats, error)
	// ExportPublished 导出全部已发布条目为JSON快照并上传OSS, 返回访问URL
	ExportPublished(ctx context.Context) (string, error)
	// SyncKnowledgeBase 将已发布条目推送到下游知识库, 返回推送条数
	SyncKnowledgeBase(ctx context.Context) (int, error)
}

type reviewService struct{}

// NewReviewService 创建 ReviewService 实例。
func NewReviewService() ReviewService {
	return &reviewService{}
}

const (
	statsCacheKey = "faq:stats"
	// 统计缓存基础TTL, 秒
	statsCacheTTL int64 = 60
	// 下游知识库约定的MCP工具名
	kbUpsertTool = "upsert_faqs"
)

func (s *reviewService) ListPending(ctx context.Context, limit, offset int) ([]db.LearnedFaqs, error) {
	return dao.App.FaqDb.ListByStatus(ctx, enum.FaqStatusPendingReview, limit, offset)
}

func (s *reviewService) Approve(ctx context.Context, id uint) error {
	return s.transition(ctx, id, enum.FaqStatusApproved, enum.FaqStatusPendingReview)
}

func (s *reviewService) Reject(ctx context.Context, id uint, reason string) error {
	if err := s.transition(ctx, id, enum.FaqStatusRejected, enum.FaqStatusPendingReview, enum.FaqStatusApproved); err != nil {
		return err
	}
	if reason != "" {
		global.Log.Infof("FAQ %d 被驳回: %s", id, reason)
	}
	return nil
}

func (s *reviewService) Publish(ctx context.Context, id uint) error {
	return s.transition(ctx, id, enum.FaqStatusPublished, enum.FaqStatusApproved, enum.FaqStatusPendingReview)
}

func (s *reviewService) Unpublish(ctx context.Context, id uint) error {
	return s.transition(ctx, id, enum.FaqStatusApproved, enum.FaqStatusPublished)
}

// transition 校验当前状态后流转, 不允许跳过审核链路
func (s *reviewService) transition(ctx context.Context, id uint, target enum.FaqStatus, allowedFrom ...enum.FaqStatus) error {
	faq, err := dao.App.FaqDb.GetFaq(ctx, id)
	if err != nil {
		return err
	}
	if faq == nil {
		return fmt.Errorf("FAQ %d 不存在", id)
	}

	allowed := false
	for _, from := range allowedFrom {
		if faq.Status == string(from) {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("FAQ %d 当前状态为 %s, 不能流转到 %s", id, faq.Status, target)
	}

	if err := dao.App.FaqDb.UpdateStatus(ctx, id, target); err != nil {
		return err
	}
	s.dropStatsCache(ctx)
	return nil
}

func (s *reviewService) Stats(ctx context.Context) (*dto.DashboardStats, error) {
	if global.RedisClient != nil {
		if raw, err := global.RedisClient.Get(ctx, statsCacheKey).Result(); err == nil && raw != "" {
			var cached dto.DashboardStats
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	cfg := global.Config.Learning
	medium, high, veryHigh := cfg.LevelMedium, cfg.LevelHigh, cfg.LevelVeryHigh
	if medium <= 0 {
		medium = 50
	}
	if high <= medium {
		high = 75
	}
	if veryHigh <= high {
		veryHigh = 90
	}

	stats, err := dao.App.FaqDb.Stats(ctx, medium, high, veryHigh)
	if err != nil {
		return nil, err
	}
	if stats.TotalPatterns, err = dao.App.PatternDb.Count(ctx); err != nil {
		return nil, err
	}

	if global.RedisClient != nil {
		if raw, err := json.Marshal(stats); err == nil {
			ttl := utils.GetTTLWithJitter(statsCacheTTL)
			if err := global.RedisClient.Set(ctx, statsCacheKey, string(raw), ttl).Err(); err != nil {
				global.Log.Warnf("写入统计缓存失败: %v", err)
			}
		}
	}
	return stats, nil
}

func (s *reviewService) dropStatsCache(ctx context.Context) {
	if global.RedisClient == nil {
		return
	}
	if err := global.RedisClient.Del(ctx, statsCacheKey).Err(); err != nil {
		global.Log.Warnf("清理统计缓存失败: %v", err)
	}
}

// exportEntry 对外快照的精简字段
type exportEntry struct {
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Category   string   `json:"category"`
	Keywords   []string `json:"keywords,omitempty"`
	Confidence int      `json:"confidence"`
}

func (s *reviewService) buildExport(ctx context.Context) ([]exportEntry, error) {
	published, err := dao.App.FaqDb.ListPublished(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]exportEntry, 0, len(published))
	for i := range published {
		entry := exportEntry{
			Question:   published[i].Question,
			Answer:     published[i].Answer,
			Category:   published[i].Category,
			Confidence: published[i].Confidence,
		}
		if published[i].Keywords != "" {
			if err := json.Unmarshal([]byte(published[i].Keywords), &entry.Keywords); err != nil {
				global.Log.Warnf("FAQ %d 关键词解析失败: %v", published[i].Id, err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *reviewService) ExportPublished(ctx context.Context) (string, error) {
	if global.OssService == nil {
		return "", errors.New("未配置对象存储, 无法导出")
	}

	entries, err := s.buildExport(ctx)
	if err != nil {
		return "", err
	}
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("序列化导出内容失败: %w", err)
	}

	objectKey, err := global.OssService.UploadSnapshot("faq-export.json", raw)
	if err != nil {
		return "", err
	}
	return global.OssService.GetURL(objectKey), nil
}

func (s *reviewService) SyncKnowledgeBase(ctx context.Context) (int, error) {
	if global.McpService == nil {
		return 0, errors.New("未配置MCP服务, 无法同步知识库")
	}

	clients := global.McpService.ClientsWithTool(kbUpsertTool)
	if len(clients) == 0 {
		return 0, fmt.Errorf("没有MCP服务提供 '%s' 工具", kbUpsertTool)
	}

	entries, err := s.buildExport(ctx)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	payload, err := json.Marshal(map[string]interface{}{"faqs": entries})
	if err != nil {
		return 0, fmt.Errorf("序列化知识库推送内容失败: %w", err)
	}

	pushed := 0
	for _, clientName := range clients {
		if _, err := global.McpService.CallTool(ctx, clientName, kbUpsertTool, payload); err != nil {
			global.Log.Errorf("推送知识库到 '%s' 失败: %v", clientName, err)
			continue
		}
		pushed += len(entries)
	}
	if pushed == 0 {
		return 0, errors.New("所有知识库推送均失败")
	}
	return pushed, nil
}

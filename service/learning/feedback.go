package learning

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gitee.com/taoJie_1/faq-agent/model/db"
	"gitee.com/taoJie_1/faq-agent/model/dto"
	"gitee.com/taoJie_1/faq-agent/model/enum"
	"github.com/sirupsen/logrus"
)

// FeedbackStore 用户反馈落库契约
type FeedbackStore interface {
	// GetFaq 按id读取条目, 未找到返回(nil, nil)
	GetFaq(ctx context.Context, id uint) (*db.LearnedFaqs, error)
	// ApplyFeedback 原子更新票数、置信度与调整历史
	ApplyFeedback(ctx context.Context, id uint, feedback enum.FeedbackType, confidence int, historyJson string) error
	// IncrUsage 命中计数+1
	IncrUsage(ctx context.Context, id uint) error
	// IncrView 浏览计数+1
	IncrView(ctx context.Context, id uint) error
}

// FeedbackService 用户反馈处理: 记票并按衰减权重调整置信度
type FeedbackService interface {
	// RecordFeedback 记录一次helpful/not_helpful投票, 返回置信度变化
	RecordFeedback(ctx context.Context, faqId uint, feedback enum.FeedbackType) (*dto.FeedbackImpact, error)
	// RecordUsage 记录一次FAQ命中
	RecordUsage(ctx context.Context, faqId uint) error
	// RecordView 记录一次FAQ浏览
	RecordView(ctx context.Context, faqId uint) error
}

type feedbackService struct {
	log        *logrus.Logger
	store      FeedbackStore
	confidence ConfidenceService
}

// NewFeedbackService 创建 FeedbackService 实例。
func NewFeedbackService(log *logrus.Logger, store FeedbackStore, confidence ConfidenceService) FeedbackService {
	return &feedbackService{log: log, store: store, confidence: confidence}
}

func (s *feedbackService) RecordFeedback(ctx context.Context, faqId uint, feedback enum.FeedbackType) (*dto.FeedbackImpact, error) {
	if feedback != enum.FeedbackHelpful && feedback != enum.FeedbackNotHelpful {
		return nil, fmt.Errorf("无效的反馈类型: %s", feedback)
	}

	faq, err := s.store.GetFaq(ctx, faqId)
	if err != nil {
		return nil, fmt.Errorf("读取FAQ %d 失败: %w", faqId, err)
	}
	if faq == nil {
		return nil, fmt.Errorf("FAQ %d 不存在", faqId)
	}

	impact := s.confidence.AdjustFromFeedback(faq.Confidence, feedback, faq.HelpfulCount, faq.NotHelpfulCount)

	historyJson, err := appendAdjustment(faq.AdjustmentHistory, dto.ConfidenceAdjustment{
		Before:         faq.Confidence,
		After:          impact.NewConfidence,
		ChangedFactors: []string{feedbackFactorKey(feedback)},
		Reason:         "user_feedback",
		AdjustedAt:     time.Now().Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("序列化调整历史失败: %w", err)
	}

	if err := s.store.ApplyFeedback(ctx, faqId, feedback, impact.NewConfidence, historyJson); err != nil {
		return nil, fmt.Errorf("更新FAQ %d 反馈失败: %w", faqId, err)
	}

	s.log.Infof("FAQ %d 收到反馈 %s, 置信度 %d -> %d", faqId, feedback, faq.Confidence, impact.NewConfidence)
	return &impact, nil
}

func (s *feedbackService) RecordUsage(ctx context.Context, faqId uint) error {
	return s.store.IncrUsage(ctx, faqId)
}

func (s *feedbackService) RecordView(ctx context.Context, faqId uint) error {
	return s.store.IncrView(ctx, faqId)
}

func feedbackFactorKey(feedback enum.FeedbackType) string {
	if feedback == enum.FeedbackHelpful {
		return "helpful_votes"
	}
	return "not_helpful_votes"
}

// appendAdjustment 调整历史只追加不改写
func appendAdjustment(historyJson string, adjustment dto.ConfidenceAdjustment) (string, error) {
	var history []dto.ConfidenceAdjustment
	if historyJson != "" {
		if err := json.Unmarshal([]byte(historyJson), &history); err != nil {
			return "", err
		}
	}
	history = append(history, adjustment)

	raw, err := json.Marshal(history)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

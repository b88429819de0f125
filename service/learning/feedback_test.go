package learning

import (
	"context"
	"encoding/json"
	"testing"

	"gitee.com/taoJie_1/faq-agent/model/db"
	"gitee.com/taoJie_1/faq-agent/model/dto"
	"gitee.com/taoJie_1/faq-agent/model/enum"
	"github.com/sirupsen/logrus"
)

// fakeFeedbackStore 内存反馈落库
type fakeFeedbackStore struct {
	faqs        map[uint]*db.LearnedFaqs
	lastHistory string
	usage       int
	views       int
}

func (f *fakeFeedbackStore) GetFaq(ctx context.Context, id uint) (*db.LearnedFaqs, error) {
	faq, ok := f.faqs[id]
	if !ok {
		return nil, nil
	}
	clone := *faq
	return &clone, nil
}

func (f *fakeFeedbackStore) ApplyFeedback(ctx context.Context, id uint, feedback enum.FeedbackType, confidence int, historyJson string) error {
	faq := f.faqs[id]
	faq.Confidence = confidence
	faq.AdjustmentHistory = historyJson
	if feedback == enum.FeedbackHelpful {
		faq.HelpfulCount++
	} else {
		faq.NotHelpfulCount++
	}
	f.lastHistory = historyJson
	return nil
}

func (f *fakeFeedbackStore) IncrUsage(ctx context.Context, id uint) error {
	f.usage++
	return nil
}

func (f *fakeFeedbackStore) IncrView(ctx context.Context, id uint) error {
	f.views++
	return nil
}

func newTestFeedback(store FeedbackStore) FeedbackService {
	return NewFeedbackService(logrus.New(), store, NewConfidenceService(testLearningConfig()))
}

// TestRecordFeedback helpful反馈提升置信度并追加调整历史
func TestRecordFeedback(t *testing.T) {
	store := &fakeFeedbackStore{faqs: map[uint]*db.LearnedFaqs{
		3: {BaseField: db.BaseField{Id: 3}, Confidence: 50},
	}}
	s := newTestFeedback(store)

	impact, err := s.RecordFeedback(context.Background(), 3, enum.FeedbackHelpful)
	if err != nil {
		t.Fatalf("RecordFeedback失败: %v", err)
	}
	if impact.NewConfidence != 55 {
		t.Errorf("零投票时50分收到helpful应变为55: got %d", impact.NewConfidence)
	}

	var history []dto.ConfidenceAdjustment
	if err := json.Unmarshal([]byte(store.lastHistory), &history); err != nil {
		t.Fatalf("调整历史应为合法JSON: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("应追加1条调整记录: got %d", len(history))
	}
	if history[0].Reason != "user_feedback" {
		t.Errorf("调整原因错误: %s", history[0].Reason)
	}
	if len(history[0].ChangedFactors) != 1 || history[0].ChangedFactors[0] != "helpful_votes" {
		t.Errorf("变更因子错误: %v", history[0].ChangedFactors)
	}
}

// TestRecordFeedbackAppendOnly 既有历史不被改写, 新记录只追加在尾部
func TestRecordFeedbackAppendOnly(t *testing.T) {
	existing, _ := json.Marshal([]dto.ConfidenceAdjustment{
		{Before: 40, After: 50, Reason: "factor_update", AdjustedAt: 1600000000},
	})
	store := &fakeFeedbackStore{faqs: map[uint]*db.LearnedFaqs{
		5: {BaseField: db.BaseField{Id: 5}, Confidence: 50, AdjustmentHistory: string(existing)},
	}}
	s := newTestFeedback(store)

	if _, err := s.RecordFeedback(context.Background(), 5, enum.FeedbackNotHelpful); err != nil {
		t.Fatalf("RecordFeedback失败: %v", err)
	}

	var history []dto.ConfidenceAdjustment
	if err := json.Unmarshal([]byte(store.lastHistory), &history); err != nil {
		t.Fatalf("调整历史应为合法JSON: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("历史应有2条记录: got %d", len(history))
	}
	if history[0].AdjustedAt != 1600000000 {
		t.Errorf("既有记录不应被改写: %+v", history[0])
	}
	if history[1].Reason != "user_feedback" {
		t.Errorf("新记录应在尾部: %+v", history[1])
	}
}

// TestRecordFeedbackInvalid 无效反馈类型与不存在的条目都应报错
func TestRecordFeedbackInvalid(t *testing.T) {
	store := &fakeFeedbackStore{faqs: map[uint]*db.LearnedFaqs{}}
	s := newTestFeedback(store)

	if _, err := s.RecordFeedback(context.Background(), 1, enum.FeedbackType("maybe")); err == nil {
		t.Error("无效反馈类型应报错")
	}
	if _, err := s.RecordFeedback(context.Background(), 404, enum.FeedbackHelpful); err == nil {
		t.Error("不存在的条目应报错")
	}
}

// TestRecordUsageAndView 命中与浏览计数透传到存储层
func TestRecordUsageAndView(t *testing.T) {
	store := &fakeFeedbackStore{faqs: map[uint]*db.LearnedFaqs{}}
	s := newTestFeedback(store)

	if err := s.RecordUsage(context.Background(), 1); err != nil {
		t.Fatalf("RecordUsage失败: %v", err)
	}
	if err := s.RecordView(context.Background(), 1); err != nil {
		t.Fatalf("RecordView失败: %v", err)
	}
	if store.usage != 1 || store.views != 1 {
		t.Errorf("计数透传错误: usage %d, views %d", store.usage, store.views)
	}
}

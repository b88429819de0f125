package learning

import (
	"testing"

	"gitee.com/taoJie_1/faq-agent/model/config"
	"gitee.com/taoJie_1/faq-agent/model/dto"
	"gitee.com/taoJie_1/faq-agent/model/enum"
)

func testLearningConfig() func() config.Learning {
	return func() config.Learning {
		return config.Learning{
			MinConfidence:        60,
			LevelMedium:          50,
			LevelHigh:            75,
			LevelVeryHigh:        90,
			AutoPublishThreshold: 85,
		}
	}
}

// TestCalculateBounds 任意因子输入下最终分数都应落在[1,100]
func TestCalculateBounds(t *testing.T) {
	s := NewConfidenceService(testLearningConfig())

	zero := s.Calculate(dto.ConfidenceFactors{})
	if zero.FinalConfidence < 1 || zero.FinalConfidence > 100 {
		t.Errorf("全零因子的分数超出[1,100]: %d", zero.FinalConfidence)
	}

	perfect := s.Calculate(dto.ConfidenceFactors{
		SourceReliability: 1, SatisfactionScore: 1, ResolutionSuccess: 1,
		QuestionClarity: 1, AnswerCompleteness: 1, LanguageQuality: 1, StructuredContent: 1,
		PatternFrequency: 10, PatternConsistency: 1, SourceVariety: 3,
		HelpfulVotes: 10, NotHelpfulVotes: 0, UsageCount: 50,
		AiConfidence: 1, ProcessingSuccess: 1,
		CategoryMatch: 1, KeywordRelevance: 1, ContextRichness: 1,
	})
	if perfect.FinalConfidence != 100 {
		t.Errorf("满分因子应得100分: got %d", perfect.FinalConfidence)
	}
	if perfect.ConfidenceLevel != enum.ConfidenceVeryHigh {
		t.Errorf("满分应为very_high档: got %s", perfect.ConfidenceLevel)
	}
}

// TestCalculateNeutralFeedback 无任何投票时反馈桶取中性50分
func TestCalculateNeutralFeedback(t *testing.T) {
	s := NewConfidenceService(testLearningConfig())

	result := s.Calculate(dto.ConfidenceFactors{})
	if result.FactorBreakdown.UserFeedback != 50 {
		t.Errorf("零投票时反馈桶应为50: got %v", result.FactorBreakdown.UserFeedback)
	}
}

// TestLevel 验证分档阈值映射
func TestLevel(t *testing.T) {
	s := NewConfidenceService(testLearningConfig())

	cases := []struct {
		score int
		want  enum.ConfidenceLevel
	}{
		{1, enum.ConfidenceLow},
		{49, enum.ConfidenceLow},
		{50, enum.ConfidenceMedium},
		{74, enum.ConfidenceMedium},
		{75, enum.ConfidenceHigh},
		{89, enum.ConfidenceHigh},
		{90, enum.ConfidenceVeryHigh},
		{100, enum.ConfidenceVeryHigh},
	}
	for _, c := range cases {
		if got := s.Level(c.score); got != c.want {
			t.Errorf("Level(%d) = %s, want %s", c.score, got, c.want)
		}
	}
}

// TestAdjustFromFeedback 验证正负反馈的方向与最小步长
func TestAdjustFromFeedback(t *testing.T) {
	s := NewConfidenceService(testLearningConfig())

	up := s.AdjustFromFeedback(50, enum.FeedbackHelpful, 0, 0)
	if up.ConfidenceChange <= 0 {
		t.Errorf("helpful反馈应提升置信度: change %d", up.ConfidenceChange)
	}
	if up.NewConfidence != 55 {
		t.Errorf("零投票时50分收到helpful应变为55: got %d", up.NewConfidence)
	}

	down := s.AdjustFromFeedback(50, enum.FeedbackNotHelpful, 0, 0)
	if down.ConfidenceChange >= 0 {
		t.Errorf("not_helpful反馈应降低置信度: change %d", down.ConfidenceChange)
	}

	// 接近上限时变化量至少为1, 且不越界
	top := s.AdjustFromFeedback(99, enum.FeedbackHelpful, 100, 100)
	if top.NewConfidence != 100 {
		t.Errorf("99分收到helpful应到100: got %d", top.NewConfidence)
	}
}

// TestAdjustFromFeedbackDamping 投票越多单次反馈影响越小
func TestAdjustFromFeedbackDamping(t *testing.T) {
	s := NewConfidenceService(testLearningConfig())

	fresh := s.AdjustFromFeedback(50, enum.FeedbackHelpful, 0, 0)
	voted := s.AdjustFromFeedback(50, enum.FeedbackHelpful, 30, 10)
	if voted.ConfidenceChange >= fresh.ConfidenceChange {
		t.Errorf("高票条目的变化量(%d)应小于零票条目(%d)", voted.ConfidenceChange, fresh.ConfidenceChange)
	}
	if voted.FeedbackWeight >= fresh.FeedbackWeight {
		t.Errorf("高票条目的反馈权重(%v)应小于零票条目(%v)", voted.FeedbackWeight, fresh.FeedbackWeight)
	}
}

// TestRecalculate 只有已知因子被更新, 调整记录按字段名排序
func TestRecalculate(t *testing.T) {
	s := NewConfidenceService(testLearningConfig())

	last := dto.ConfidenceFactors{SourceReliability: 0.7, ProcessingSuccess: 1}
	_, adj := s.Recalculate(last, map[string]float64{
		"usage_count":   20,
		"helpful_votes": 5,
		"unknown_field": 1,
	}, 1700000000)

	if len(adj.ChangedFactors) != 2 {
		t.Fatalf("未知因子不应计入变更: %v", adj.ChangedFactors)
	}
	if adj.ChangedFactors[0] != "helpful_votes" || adj.ChangedFactors[1] != "usage_count" {
		t.Errorf("变更因子应按名称排序: %v", adj.ChangedFactors)
	}
	if adj.Reason != "factor_update" {
		t.Errorf("调整原因错误: %s", adj.Reason)
	}
	if adj.AdjustedAt != 1700000000 {
		t.Errorf("调整时间应取入参: %d", adj.AdjustedAt)
	}
}

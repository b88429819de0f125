package learning

import (
	"math"
	"sort"

	"gitee.com/taoJie_1/faq-agent/model/config"
	"gitee.com/taoJie_1/faq-agent/model/dto"
	"gitee.com/taoJie_1/faq-agent/model/enum"
	"gitee.com/taoJie_1/faq-agent/utils"
)

// ConfidenceService 多因子置信度模型
// 首次评分与反馈重算共用同一套公式, 保证分数可复现
type ConfidenceService interface {
	// Calculate 从因子计算置信度结果, 最终分数在[1,100]
	Calculate(factors dto.ConfidenceFactors) dto.ConfidenceCalculationResult
	// Level 将分数映射到分档, 阈值来自配置
	Level(score int) enum.ConfidenceLevel
	// AdjustFromFeedback 根据一次用户反馈计算分数变化
	// 既有投票越多, 单次反馈的影响越小
	AdjustFromFeedback(current int, feedback enum.FeedbackType, helpfulVotes, notHelpfulVotes int64) dto.FeedbackImpact
	// Recalculate 将部分因子更新合并到最近一次因子上重算, 并产出调整记录
	Recalculate(last dto.ConfidenceFactors, update map[string]float64, now int64) (dto.ConfidenceCalculationResult, dto.ConfidenceAdjustment)
}

type confidenceService struct {
	cfgFn func() config.Learning
}

// NewConfidenceService 创建 ConfidenceService 实例。
func NewConfidenceService(cfgFn func() config.Learning) ConfidenceService {
	return &confidenceService{cfgFn: cfgFn}
}

func (s *confidenceService) Calculate(factors dto.ConfidenceFactors) dto.ConfidenceCalculationResult {
	breakdown := dto.FactorBreakdown{
		SourceQuality:       100 * (0.4*factors.SourceReliability + 0.35*factors.SatisfactionScore + 0.25*factors.ResolutionSuccess),
		ContentQuality:      100 * (0.3*factors.QuestionClarity + 0.35*factors.AnswerCompleteness + 0.2*factors.LanguageQuality + 0.15*factors.StructuredContent),
		PatternStrength:     s.patternStrength(factors),
		UserFeedback:        s.userFeedback(factors),
		AiProcessing:        100 * (0.6*factors.AiConfidence + 0.4*factors.ProcessingSuccess),
		ContextualRelevance: 100 * (0.4*factors.CategoryMatch + 0.35*factors.KeywordRelevance + 0.25*factors.ContextRichness),
	}

	combined := 0.2*breakdown.SourceQuality +
		0.2*breakdown.ContentQuality +
		0.25*breakdown.PatternStrength +
		0.15*breakdown.UserFeedback +
		0.1*breakdown.AiProcessing +
		0.1*breakdown.ContextualRelevance

	final := utils.Clamp(int(math.Round(combined)), 1, 100)

	return dto.ConfidenceCalculationResult{
		FinalConfidence: final,
		FactorBreakdown: breakdown,
		ConfidenceLevel: s.Level(final),
		Recommendations: s.recommendations(final, breakdown),
	}
}

// patternStrength 频次与来源多样性按上限归一
func (s *confidenceService) patternStrength(factors dto.ConfidenceFactors) float64 {
	freqScore := math.Min(1, float64(factors.PatternFrequency)/10)
	varietyScore := math.Min(1, float64(factors.SourceVariety)/3)
	return 100 * (0.45*freqScore + 0.3*factors.PatternConsistency + 0.25*varietyScore)
}

// userFeedback 无任何投票时取中性50分
func (s *confidenceService) userFeedback(factors dto.ConfidenceFactors) float64 {
	total := factors.HelpfulVotes + factors.NotHelpfulVotes
	if total == 0 {
		return 50
	}
	ratio := float64(factors.HelpfulVotes) / float64(total)
	usageScore := math.Min(1, float64(factors.UsageCount)/50)
	return 100 * (0.7*ratio + 0.3*usageScore)
}

func (s *confidenceService) Level(score int) enum.ConfidenceLevel {
	cfg := s.cfgFn()
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

	switch {
	case score < medium:
		return enum.ConfidenceLow
	case score < high:
		return enum.ConfidenceMedium
	case score < veryHigh:
		return enum.ConfidenceHigh
	default:
		return enum.ConfidenceVeryHigh
	}
}

func (s *confidenceService) recommendations(final int, breakdown dto.FactorBreakdown) []string {
	recs := make([]string, 0, 4)
	if breakdown.PatternStrength < 40 {
		recs = append(recs, "样本频次或来源多样性不足, 建议积累更多数据后再发布")
	}
	if breakdown.ContentQuality < 50 {
		recs = append(recs, "答案完整度偏低, 建议人工润色后再发布")
	}
	if breakdown.UserFeedback < 40 {
		recs = append(recs, "负向反馈偏多, 建议复核答案准确性")
	}

	cfg := s.cfgFn()
	autoPublish := cfg.AutoPublishThreshold
	if autoPublish <= 0 {
		autoPublish = 85
	}
	if final >= autoPublish {
		recs = append(recs, "置信度达标, 可自动发布")
	} else if final < cfg.MinConfidence {
		recs = append(recs, "置信度低于最小阈值, 建议丢弃或转人工审核")
	}
	return recs
}

func (s *confidenceService) AdjustFromFeedback(current int, feedback enum.FeedbackType, helpfulVotes, notHelpfulVotes int64) dto.FeedbackImpact {
	totalVotes := helpfulVotes + notHelpfulVotes
	// 投票越多, 单次反馈权重越低
	weight := 1.0 / (1.0 + float64(totalVotes)/10.0)

	var change int
	switch feedback {
	case enum.FeedbackHelpful:
		change = int(math.Round(float64(100-current) * 0.1 * weight))
		if change == 0 && current < 100 {
			change = 1
		}
	case enum.FeedbackNotHelpful:
		change = -int(math.Round(float64(current-1) * 0.15 * weight))
		if change == 0 && current > 1 {
			change = -1
		}
	}

	newConfidence := utils.Clamp(current+change, 1, 100)
	return dto.FeedbackImpact{
		ConfidenceChange: newConfidence - current,
		NewConfidence:    newConfidence,
		FeedbackWeight:   weight,
	}
}

func (s *confidenceService) Recalculate(last dto.ConfidenceFactors, update map[string]float64, now int64) (dto.ConfidenceCalculationResult, dto.ConfidenceAdjustment) {
	before := s.Calculate(last).FinalConfidence

	merged := last
	changed := make([]string, 0, len(update))
	for key, value := range update {
		if applyFactorUpdate(&merged, key, value) {
			changed = append(changed, key)
		}
	}
	sort.Strings(changed)

	result := s.Calculate(merged)
	adjustment := dto.ConfidenceAdjustment{
		Before:         before,
		After:          result.FinalConfidence,
		ChangedFactors: changed,
		Reason:         "factor_update",
		AdjustedAt:     now,
	}
	return result, adjustment
}

// applyFactorUpdate 按json字段名更新单个因子, 未知字段返回false
func applyFactorUpdate(f *dto.ConfidenceFactors, key string, value float64) bool {
	switch key {
	case "source_reliability":
		f.SourceReliability = value
	case "satisfaction_score":
		f.SatisfactionScore = value
	case "resolution_success":
		f.ResolutionSuccess = value
	case "question_clarity":
		f.QuestionClarity = value
	case "answer_completeness":
		f.AnswerCompleteness = value
	case "language_quality":
		f.LanguageQuality = value
	case "structured_content":
		f.StructuredContent = value
	case "pattern_frequency":
		f.PatternFrequency = int(value)
	case "pattern_consistency":
		f.PatternConsistency = value
	case "source_variety":
		f.SourceVariety = int(value)
	case "helpful_votes":
		f.HelpfulVotes = int(value)
	case "not_helpful_votes":
		f.NotHelpfulVotes = int(value)
	case "usage_count":
		f.UsageCount = int64(value)
	case "ai_confidence":
		f.AiConfidence = value
	case "processing_success":
		f.ProcessingSuccess = value
	case "category_match":
		f.CategoryMatch = value
	case "keyword_relevance":
		f.KeywordRelevance = value
	case "context_richness":
		f.ContextRichness = value
	default:
		return false
	}
	return true
}

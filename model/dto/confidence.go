package dto

import (
	"gitee.com/taoJie_1/faq-agent/model/enum"
)

// ConfidenceFactors 置信度模型的全部输入因子
// 比例类因子取值[0,1], 计数类因子为原始计数
type ConfidenceFactors struct {
	// 来源质量
	SourceReliability float64 `json:"source_reliability"`
	SatisfactionScore float64 `json:"satisfaction_score"`
	ResolutionSuccess float64 `json:"resolution_success"`
	// 内容质量
	QuestionClarity    float64 `json:"question_clarity"`
	AnswerCompleteness float64 `json:"answer_completeness"`
	LanguageQuality    float64 `json:"language_quality"`
	StructuredContent  float64 `json:"structured_content"`
	// 模式强度
	PatternFrequency   int     `json:"pattern_frequency"`
	PatternConsistency float64 `json:"pattern_consistency"`
	SourceVariety      int     `json:"source_variety"`
	// 用户反馈
	HelpfulVotes    int   `json:"helpful_votes"`
	NotHelpfulVotes int   `json:"not_helpful_votes"`
	UsageCount      int64 `json:"usage_count"`
	// AI处理
	AiConfidence      float64 `json:"ai_confidence"`
	ProcessingSuccess float64 `json:"processing_success"`
	// 上下文相关性
	CategoryMatch    float64 `json:"category_match"`
	KeywordRelevance float64 `json:"keyword_relevance"`
	ContextRichness  float64 `json:"context_richness"`
}

// FactorBreakdown 六个聚合桶, 各自取值[0,100]
type FactorBreakdown struct {
	SourceQuality       float64 `json:"source_quality"`
	ContentQuality      float64 `json:"content_quality"`
	PatternStrength     float64 `json:"pattern_strength"`
	UserFeedback        float64 `json:"user_feedback"`
	AiProcessing        float64 `json:"ai_processing"`
	ContextualRelevance float64 `json:"contextual_relevance"`
}

// ConfidenceCalculationResult 置信度计算结果
type ConfidenceCalculationResult struct {
	FinalConfidence int                  `json:"final_confidence"` // [1,100]
	FactorBreakdown FactorBreakdown      `json:"factor_breakdown"`
	ConfidenceLevel enum.ConfidenceLevel `json:"confidence_level"`
	Recommendations []string             `json:"recommendations"`
}

// ConfidenceAdjustment 一次置信度调整记录, 历史只追加不修改
type ConfidenceAdjustment struct {
	Before         int      `json:"before"`
	After          int      `json:"after"`
	ChangedFactors []string `json:"changed_factors"`
	Reason         string   `json:"reason,omitempty"`
	AdjustedAt     int64    `json:"adjusted_at"`
}

// FeedbackImpact 一次用户反馈对置信度的影响
type FeedbackImpact struct {
	ConfidenceChange int     `json:"confidence_change"`
	NewConfidence    int     `json:"new_confidence"`
	FeedbackWeight   float64 `json:"feedback_weight"`
}

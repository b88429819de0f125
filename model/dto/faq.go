package dto

import (
	"gitee.com/taoJie_1/faq-agent/model/enum"
)

// FaqGenerationOptions 生成阶段的可调参数
type FaqGenerationOptions struct {
	EnableAiGeneration     bool    `json:"enable_ai_generation"`
	AutoCategorize         bool    `json:"auto_categorize"`
	SimilarityThreshold    float64 `json:"similarity_threshold"`
	MergeThreshold         float64 `json:"merge_threshold"`
	DiscardThreshold       float64 `json:"discard_threshold"`
	MinConfidenceThreshold int     `json:"min_confidence_threshold"`
}

// GeneratedFaq 候选FAQ条目
type GeneratedFaq struct {
	Question         string                `json:"question"`
	Answer           string                `json:"answer"`
	Category         string                `json:"category,omitempty"`
	Keywords         []string              `json:"keywords"`
	Confidence       int                   `json:"confidence"` // [1,100]
	GenerationMethod enum.GenerationMethod `json:"generation_method"`
	SourcePatterns   []string              `json:"source_patterns"`
	QualityScore     int                   `json:"quality_score"`
	DuplicateOf      uint                  `json:"duplicate_of,omitempty"`
	MergedFrom       []uint                `json:"merged_from,omitempty"`
}

// FaqMatch 既有FAQ的相似度检索结果
type FaqMatch struct {
	Id         uint    `json:"id"`
	Question   string  `json:"question"`
	Similarity float64 `json:"similarity"`
}

// DuplicateDetectionResult 重复检测结果
type DuplicateDetectionResult struct {
	IsDuplicate    bool                 `json:"is_duplicate"`
	Action         enum.DuplicateAction `json:"action"`
	BestMatchId    uint                 `json:"best_match_id,omitempty"`
	BestSimilarity float64              `json:"best_similarity"`
	Similar        []FaqMatch           `json:"similar"`
}

// BatchGenerationResult 批量生成的成败分区
type BatchGenerationResult struct {
	Successful []GeneratedFaq     `json:"successful"`
	Failed     []BatchItemFailure `json:"failed"`
}

// BatchItemFailure 单条生成失败的记录
type BatchItemFailure struct {
	DataId string `json:"data_id"`
	Error  string `json:"error"`
}

package dto

import (
	"gitee.com/taoJie_1/faq-agent/model/enum"
)

// PatternSource 模式的一次来源观测
type PatternSource struct {
	Type      enum.SourceType `json:"type"`
	Id        string          `json:"id"`
	Relevance float64         `json:"relevance"` // [0,1]
}

// LearningPattern 规范化去重后的学习模式
// 同一hash的文本只累计频次, 不产生新模式
type LearningPattern struct {
	Pattern     string                 `json:"pattern"`
	PatternHash string                 `json:"pattern_hash"`
	Type        enum.PatternType       `json:"type"`
	Frequency   int                    `json:"frequency"`  // 只增不减
	Confidence  int                    `json:"confidence"` // [1,100]
	Keywords    []string               `json:"keywords"`
	Category    string                 `json:"category,omitempty"`
	Sources     []PatternSource        `json:"sources"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// IncrementFrequency 记录一次重复出现
func (p *LearningPattern) IncrementFrequency() {
	p.Frequency++
}

// AddSource 记录一次来源观测
// 同一(type,id)只保留相关度最高的一条
func (p *LearningPattern) AddSource(src PatternSource) {
	for i := range p.Sources {
		if p.Sources[i].Type == src.Type && p.Sources[i].Id == src.Id {
			if src.Relevance > p.Sources[i].Relevance {
				p.Sources[i].Relevance = src.Relevance
			}
			return
		}
	}
	p.Sources = append(p.Sources, src)
}

// DistinctSourceCount 去重后的来源数量
func (p *LearningPattern) DistinctSourceCount() int {
	return len(p.Sources)
}

// AvgSourceRelevance 来源平均相关度, 无来源时为0
func (p *LearningPattern) AvgSourceRelevance() float64 {
	if len(p.Sources) == 0 {
		return 0
	}
	var sum float64
	for _, s := range p.Sources {
		sum += s.Relevance
	}
	return sum / float64(len(p.Sources))
}

// PatternMatch 相似度检索结果
type PatternMatch struct {
	Pattern    *LearningPattern `json:"pattern"`
	Similarity float64          `json:"similarity"`
}

// QuestionGroup 近似重复问题的聚类, 每轮运行重新计算
type QuestionGroup struct {
	RepresentativeQuestion string   `json:"representative_question"`
	Questions              []string `json:"questions"`
	CommonPattern          []string `json:"common_pattern"`
	Confidence             int      `json:"confidence"`
	Frequency              int      `json:"frequency"`
	Category               string   `json:"category"`
}

// PatternAnalysisResult 一次模式分析的汇总结果
type PatternAnalysisResult struct {
	Patterns         []*LearningPattern `json:"patterns"`
	Groups           []QuestionGroup    `json:"groups"`
	TotalAnalyzed    int                `json:"total_analyzed"`
	ProcessingTimeMs int64              `json:"processing_time_ms"`
}

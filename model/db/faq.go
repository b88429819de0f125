package db

// LearnedFaqs 学习到的FAQ条目
// keywords/source_patterns/confidence_factors/adjustment_history 均为JSON字符串
type LearnedFaqs struct {
	BaseField
	Question          string  `db:"question" json:"question" info:"标准问题"`
	Answer            string  `db:"answer" json:"answer" info:"标准答案"`
	Category          string  `db:"category" json:"category" info:"分类"`
	Keywords          string  `db:"keywords" json:"keywords" info:"关键词列表"`
	Confidence        int     `db:"confidence" json:"confidence" info:"置信度1-100"`
	QualityScore      int     `db:"quality_score" json:"quality_score" info:"质量分"`
	GenerationMethod  string  `db:"generation_method" json:"generation_method" info:"生成方式"`
	Status            string  `db:"status" json:"status" info:"审核状态"`
	SourcePatterns    string  `db:"source_patterns" json:"source_patterns" info:"来源模式hash列表"`
	UsageCount        int64   `db:"usage_count" json:"usage_count" info:"命中次数"`
	ViewCount         int64   `db:"view_count" json:"view_count" info:"浏览次数"`
	HelpfulCount      int64   `db:"helpful_count" json:"helpful_count" info:"有用票数"`
	NotHelpfulCount   int64   `db:"not_helpful_count" json:"not_helpful_count" info:"无用票数"`
	ConfidenceFactors string  `db:"confidence_factors" json:"confidence_factors" info:"最近一次评分因子"`
	AdjustmentHistory string  `db:"adjustment_history" json:"adjustment_history" info:"置信度调整历史"`
	PublishedAt       *int64  `db:"published_at" json:"published_at" info:"发布时间"`
	MergedFrom        *string `db:"merged_from" json:"merged_from" info:"被合并条目id列表"`
}

func (LearnedFaqs) TableName() string {
	return `learned_faqs`
}

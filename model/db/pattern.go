package db

// LearningPatterns 规范化去重后的学习模式
// keywords/sources 为JSON字符串; pattern_hash 全局唯一
type LearningPatterns struct {
	BaseField
	Pattern     string `db:"pattern" json:"pattern" info:"规范化文本"`
	PatternHash string `db:"pattern_hash" json:"pattern_hash" info:"去重hash"`
	Type        string `db:"type" json:"type" info:"文本类型"`
	Frequency   int    `db:"frequency" json:"frequency" info:"出现次数"`
	Confidence  int    `db:"confidence" json:"confidence" info:"置信度1-100"`
	Keywords    string `db:"keywords" json:"keywords" info:"关键词列表"`
	Category    string `db:"category" json:"category" info:"分类"`
	Sources     string `db:"sources" json:"sources" info:"来源列表"`
}

func (LearningPatterns) TableName() string {
	return `learning_patterns`
}

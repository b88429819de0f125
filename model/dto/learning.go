package dto

import (
	"gitee.com/taoJie_1/faq-agent/model/db"
	"gitee.com/taoJie_1/faq-agent/model/enum"
)

// ExtractionCriteria 描述哪些历史交互可以参与学习
type ExtractionCriteria struct {
	StartDate          int64    `json:"start_date"`
	EndDate            int64    `json:"end_date"`
	MinDurationSeconds int64    `json:"min_duration_seconds"`
	MinSatisfaction    float64  `json:"min_satisfaction"`
	Categories         []string `json:"categories"`
	ExcludeCategories  []string `json:"exclude_categories"`
	Limit              int      `json:"limit"`
}

// ExtractedData 提取器输出的候选问答对, 创建后不再修改
type ExtractedData struct {
	Id                     string                 `json:"id"`
	SourceType             enum.SourceType        `json:"source_type"`
	SourceId               string                 `json:"source_id"`
	Question               string                 `json:"question"`
	Answer                 string                 `json:"answer"`
	Context                string                 `json:"context,omitempty"`
	Confidence             int                    `json:"confidence"` // [0,100]
	Keywords               []string               `json:"keywords"`
	Category               string                 `json:"category"`
	ExtractedAt            int64                  `json:"extracted_at"`
	SessionDurationSeconds int64                  `json:"session_duration_seconds,omitempty"`
	SatisfactionScore      *float64               `json:"satisfaction_score,omitempty"`
	Metadata               map[string]interface{} `json:"metadata,omitempty"`
}

// NormalizedData 清洗后的候选问答对, 附带处理审计
type NormalizedData struct {
	ExtractedData
	ProcessingSteps []string `json:"processing_steps"`
}

// ChatThread 按时间排序的完整会话
type ChatThread struct {
	Session  db.ChatSessions
	Messages []db.ChatMessages
}

// TicketThread 按时间排序的完整工单
type TicketThread struct {
	Ticket   db.Tickets
	Messages []db.TicketMessages
}

package common

// RunPipelineRequest 手动触发一次学习管道运行的请求体
type RunPipelineRequest struct {
	StartDate       int64    `json:"start_date"`
	EndDate         int64    `json:"end_date"`
	MinSatisfaction float64  `json:"min_satisfaction"`
	MinDuration     int64    `json:"min_duration"`
	Categories      []string `json:"categories"`
	ExcludeCategory []string `json:"exclude_categories"`
	Limit           int      `json:"limit"`
}

// RealtimeRequest 单条交互的实时增量学习请求体
type RealtimeRequest struct {
	SourceType string `json:"source_type" binding:"required"`
	SourceId   string `json:"source_id" binding:"required"`
}

// FeedbackRequest 用户对FAQ条目的反馈请求体
type FeedbackRequest struct {
	FaqId    uint   `json:"faq_id" binding:"required"`
	Feedback string `json:"feedback" binding:"required"`
	Comment  string `json:"comment"`
}

// ReviewRequest 审核操作请求体
type ReviewRequest struct {
	FaqId  uint   `json:"faq_id" binding:"required"`
	Reason string `json:"reason"`
}

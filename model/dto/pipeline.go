package dto

import (
	"gitee.com/taoJie_1/faq-agent/model/enum"
)

// PipelineRunResult 一次学习管道运行的汇总报告
type PipelineRunResult struct {
	ProcessedItems   int            `json:"processed_items"`
	NewFaqs          int            `json:"new_faqs"`
	UpdatedPatterns  int            `json:"updated_patterns"`
	Errors           []string       `json:"errors"`
	ProcessingTimeMs int64          `json:"processing_time_ms"`
	Status           enum.RunStatus `json:"status"`
}

// PipelineStatus 管道当前状态
type PipelineStatus struct {
	IsProcessing         bool               `json:"is_processing"`
	DailyProcessingCount int                `json:"daily_processing_count"`
	LastRun              *PipelineRunResult `json:"last_run,omitempty"`
	LastRunAt            int64              `json:"last_run_at,omitempty"`
	NextScheduledRun     int64              `json:"next_scheduled_run,omitempty"`
}

// DashboardStats 学习看板统计
type DashboardStats struct {
	TotalFaqs         int64            `json:"total_faqs"`
	PublishedFaqs     int64            `json:"published_faqs"`
	PendingReview     int64            `json:"pending_review"`
	AvgConfidence     float64          `json:"avg_confidence"`
	ByConfidenceLevel map[string]int64 `json:"by_confidence_level"`
	TotalPatterns     int64            `json:"total_patterns"`
}

package task

import (
	"context"

	"gitee.com/taoJie_1/faq-agent/model/dto"
)

// PipelineRunner 学习管道的任务侧契约
type PipelineRunner interface {
	Run(ctx context.Context, criteria *dto.ExtractionCriteria) (*dto.PipelineRunResult, error)
	SetNextScheduledRun(ts int64)
}

// KbPublisher 知识库导出与推送的任务侧契约
type KbPublisher interface {
	ExportPublished(ctx context.Context) (string, error)
	SyncKnowledgeBase(ctx context.Context) (int, error)
}

type Manager struct {
	pipeline PipelineRunner
	kb       KbPublisher
}

// NewManager 创建一个新的任务管理器
func NewManager(pipeline PipelineRunner, kb KbPublisher) *Manager {
	return &Manager{
		pipeline: pipeline,
		kb:       kb,
	}
}

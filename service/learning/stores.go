package learning

import (
	"context"

	"gitee.com/taoJie_1/faq-agent/model/db"
	"gitee.com/taoJie_1/faq-agent/model/dto"
	"gitee.com/taoJie_1/faq-agent/model/enum"
)

// InteractionStore 历史交互存储契约
type InteractionStore interface {
	// QueryClosedChats 查询时间窗内已关闭的会话, 按关闭时间倒序
	QueryClosedChats(ctx context.Context, criteria *dto.ExtractionCriteria) ([]dto.ChatThread, error)
	// QueryChatBySessionId 查询单个已关闭会话, 未找到返回(nil, nil)
	QueryChatBySessionId(ctx context.Context, sessionId string) (*dto.ChatThread, error)
	// QueryResolvedTickets 查询时间窗内已解决的工单, 按解决时间倒序
	QueryResolvedTickets(ctx context.Context, criteria *dto.ExtractionCriteria) ([]dto.TicketThread, error)
	// QueryTicketByTicketId 查询单个已解决工单, 未找到返回(nil, nil)
	QueryTicketByTicketId(ctx context.Context, ticketId string) (*dto.TicketThread, error)
}

// PatternStore 学习模式存储契约
type PatternStore interface {
	// FindByHash 按hash查找模式, 未找到返回(nil, nil)
	FindByHash(ctx context.Context, hash string) (*dto.LearningPattern, error)
	// Upsert 按hash插入或更新模式
	Upsert(ctx context.Context, pattern *dto.LearningPattern) error
	// All 返回全部持久化模式
	All(ctx context.Context) ([]*dto.LearningPattern, error)
}

// FaqStore FAQ条目存储契约
type FaqStore interface {
	// ListActive 返回未被拒绝的全部条目, 用于重复检测
	ListActive(ctx context.Context) ([]db.LearnedFaqs, error)
	// Persist 持久化新条目并返回id
	Persist(ctx context.Context, faq *dto.GeneratedFaq, status enum.FaqStatus, factors *dto.ConfidenceFactors) (uint, error)
	// Merge 将候选条目合并进既有条目
	Merge(ctx context.Context, targetId uint, faq *dto.GeneratedFaq) error
}

// AiProvider 生成式AI增强契约, 失败时走模板回退, 不得中断管道
type AiProvider interface {
	// Generate 根据问答对改写标准FAQ答案, 返回答案文本与提供方置信度[0,1]
	Generate(ctx context.Context, question, answer, context string) (string, float64, error)
	// Categorize 为问答对选择分类标签
	Categorize(ctx context.Context, question, answer string) (string, error)
}

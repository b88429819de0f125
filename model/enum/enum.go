package enum

type DbType string

const (
	MYSQL  DbType = `mysql`
	SQLITE DbType = `sqlite3`
)

type Msg string

const (
	DefaultSuccessMsg Msg = `ok`
	DefaultFailMsg    Msg = `错误`
)

type ResCode int8

const (
	SuccessCode   ResCode = 0
	ErrorCode     ResCode = 1
	AuthErrorCode ResCode = 2
)

type LlmSize string

const (
	ModelSmall  LlmSize = "small"
	ModelMedium LlmSize = "medium"
	ModelLarge  LlmSize = "large"
)

// SourceType 候选问答对的来源类型
type SourceType string

const (
	SourceChat           SourceType = "chat"
	SourceTicket         SourceType = "ticket"
	SourceUserSuggestion SourceType = "user_suggestion"
)

// PatternType 学习模式的文本类型
type PatternType string

const (
	PatternQuestion PatternType = "question"
	PatternAnswer   PatternType = "answer"
	PatternContext  PatternType = "context"
)

// GenerationMethod FAQ条目的生成方式
type GenerationMethod string

const (
	GenerationAi       GenerationMethod = "ai"
	GenerationTemplate GenerationMethod = "template"
	GenerationMerged   GenerationMethod = "merged"
)

// ConfidenceLevel 置信度分档
type ConfidenceLevel string

const (
	ConfidenceLow      ConfidenceLevel = "low"
	ConfidenceMedium   ConfidenceLevel = "medium"
	ConfidenceHigh     ConfidenceLevel = "high"
	ConfidenceVeryHigh ConfidenceLevel = "very_high"
)

// FaqStatus 学习到的FAQ条目的审核状态
type FaqStatus string

const (
	FaqStatusDraft         FaqStatus = "draft"
	FaqStatusPendingReview FaqStatus = "pending_review"
	FaqStatusApproved      FaqStatus = "approved"
	FaqStatusRejected      FaqStatus = "rejected"
	FaqStatusPublished     FaqStatus = "published"
)

// RunStatus 学习管道单次运行的最终状态
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunPartial   RunStatus = "partial"
	RunFailed    RunStatus = "failed"
)

// DuplicateAction 重复检测后的处理建议
type DuplicateAction string

const (
	DuplicateMerge        DuplicateAction = "merge"
	DuplicateKeepSeparate DuplicateAction = "keep_separate"
	DuplicateDiscard      DuplicateAction = "discard"
)

// FeedbackType 用户对FAQ条目的反馈类型
type FeedbackType string

const (
	FeedbackHelpful    FeedbackType = "helpful"
	FeedbackNotHelpful FeedbackType = "not_helpful"
)

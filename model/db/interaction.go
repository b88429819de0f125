package db

// ChatSessions 历史会话(已关闭的才参与学习)
type ChatSessions struct {
	BaseField
	SessionId         string   `db:"session_id" json:"session_id" info:"会话id"`
	Status            string   `db:"status" json:"status" info:"会话状态"`
	Category          string   `db:"category" json:"category" info:"分类"`
	SatisfactionScore *float64 `db:"satisfaction_score" json:"satisfaction_score" info:"满意度0-1"`
	DurationSeconds   int64    `db:"duration_seconds" json:"duration_seconds" info:"会话时长"`
	ClosedAt          int64    `db:"closed_at" json:"closed_at" info:"关闭时间"`
}

func (ChatSessions) TableName() string {
	return `chat_sessions`
}

// ChatMessages 会话内消息, role取值 user/agent/ai
type ChatMessages struct {
	BaseField
	SessionId    string   `db:"session_id" json:"session_id" info:"会话id"`
	Role         string   `db:"role" json:"role" info:"发送者角色"`
	Content      string   `db:"content" json:"content" info:"消息内容"`
	SentAt       int64    `db:"sent_at" json:"sent_at" info:"发送时间"`
	AiConfidence *float64 `db:"ai_confidence" json:"ai_confidence" info:"AI回复置信度0-1"`
	Helpful      *int     `db:"helpful" json:"helpful" info:"用户是否标记有用 1/0"`
}

func (ChatMessages) TableName() string {
	return `chat_messages`
}

// Tickets 历史工单(已解决的才参与学习)
type Tickets struct {
	BaseField
	TicketId          string   `db:"ticket_id" json:"ticket_id" info:"工单id"`
	Subject           string   `db:"subject" json:"subject" info:"工单标题"`
	Description       string   `db:"description" json:"description" info:"工单描述"`
	Status            string   `db:"status" json:"status" info:"工单状态"`
	Category          string   `db:"category" json:"category" info:"分类"`
	AssignedAgent     string   `db:"assigned_agent" json:"assigned_agent" info:"受理客服"`
	SlaBreached       int      `db:"sla_breached" json:"sla_breached" info:"是否超出SLA 1/0"`
	ResolutionSeconds int64    `db:"resolution_seconds" json:"resolution_seconds" info:"解决耗时"`
	SatisfactionScore *float64 `db:"satisfaction_score" json:"satisfaction_score" info:"满意度0-1"`
	ResolvedAt        int64    `db:"resolved_at" json:"resolved_at" info:"解决时间"`
}

func (Tickets) TableName() string {
	return `tickets`
}

// TicketMessages 工单内消息, role取值 user/agent
type TicketMessages struct {
	BaseField
	TicketId string `db:"ticket_id" json:"ticket_id" info:"工单id"`
	Role     string `db:"role" json:"role" info:"发送者角色"`
	Content  string `db:"content" json:"content" info:"消息内容"`
	SentAt   int64  `db:"sent_at" json:"sent_at" info:"发送时间"`
}

func (TicketMessages) TableName() string {
	return `ticket_messages`
}

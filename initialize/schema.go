package initialize

import (
	"fmt"
	"strings"

	"gitee.com/taoJie_1/faq-agent/dao"
	"gitee.com/taoJie_1/faq-agent/global"
	"gitee.com/taoJie_1/faq-agent/model/enum"
)

// ensureSchema 建表, 已存在则跳过
// sqlite与mysql的自增主键语法不同, 通过占位符切换
func ensureSchema() error {
	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	textType := "TEXT"
	if global.Config.Database.Type == string(enum.MYSQL) {
		pk = "BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT"
		textType = "MEDIUMTEXT"
	}

	tables := []string{
		`CREATE TABLE IF NOT EXISTS learned_faqs (
			id {PK},
			question {TEXT} NOT NULL,
			answer {TEXT} NOT NULL,
			category VARCHAR(64) NOT NULL DEFAULT '',
			keywords {TEXT} NOT NULL,
			confidence INTEGER NOT NULL DEFAULT 0,
			quality_score INTEGER NOT NULL DEFAULT 0,
			generation_method VARCHAR(32) NOT NULL DEFAULT '',
			status VARCHAR(32) NOT NULL DEFAULT 'draft',
			source_patterns {TEXT} NOT NULL,
			usage_count INTEGER NOT NULL DEFAULT 0,
			view_count INTEGER NOT NULL DEFAULT 0,
			helpful_count INTEGER NOT NULL DEFAULT 0,
			not_helpful_count INTEGER NOT NULL DEFAULT 0,
			confidence_factors {TEXT} NOT NULL,
			adjustment_history {TEXT} NOT NULL,
			published_at INTEGER,
			merged_from {TEXT},
			created_at INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS learning_patterns (
			id {PK},
			pattern {TEXT} NOT NULL,
			pattern_hash VARCHAR(64) NOT NULL UNIQUE,
			type VARCHAR(32) NOT NULL DEFAULT '',
			frequency INTEGER NOT NULL DEFAULT 0,
			confidence INTEGER NOT NULL DEFAULT 0,
			keywords {TEXT} NOT NULL,
			category VARCHAR(64) NOT NULL DEFAULT '',
			sources {TEXT} NOT NULL,
			created_at INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS chat_sessions (
			id {PK},
			session_id VARCHAR(64) NOT NULL,
			status VARCHAR(32) NOT NULL DEFAULT '',
			category VARCHAR(64) NOT NULL DEFAULT '',
			satisfaction_score REAL,
			duration_seconds INTEGER NOT NULL DEFAULT 0,
			closed_at INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id {PK},
			session_id VARCHAR(64) NOT NULL,
			role VARCHAR(16) NOT NULL DEFAULT '',
			content {TEXT} NOT NULL,
			sent_at INTEGER NOT NULL DEFAULT 0,
			ai_confidence REAL,
			helpful INTEGER,
			created_at INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS tickets (
			id {PK},
			ticket_id VARCHAR(64) NOT NULL,
			subject {TEXT} NOT NULL,
			description {TEXT} NOT NULL,
			status VARCHAR(32) NOT NULL DEFAULT '',
			category VARCHAR(64) NOT NULL DEFAULT '',
			assigned_agent VARCHAR(64) NOT NULL DEFAULT '',
			sla_breached INTEGER NOT NULL DEFAULT 0,
			resolution_seconds INTEGER NOT NULL DEFAULT 0,
			satisfaction_score REAL,
			resolved_at INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS ticket_messages (
			id {PK},
			ticket_id VARCHAR(64) NOT NULL,
			role VARCHAR(16) NOT NULL DEFAULT '',
			content {TEXT} NOT NULL,
			sent_at INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL DEFAULT 0
		)`,
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_learned_faqs_status ON learned_faqs (status)`,
		`CREATE INDEX IF NOT EXISTS idx_learning_patterns_frequency ON learning_patterns (frequency)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_sessions_closed ON chat_sessions (status, closed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages (session_id, sent_at)`,
		`CREATE INDEX IF NOT EXISTS idx_tickets_resolved ON tickets (status, resolved_at)`,
		`CREATE INDEX IF NOT EXISTS idx_ticket_messages_ticket ON ticket_messages (ticket_id, sent_at)`,
	}

	replacer := strings.NewReplacer("{PK}", pk, "{TEXT}", textType)
	for _, ddl := range tables {
		if _, err := dao.DB.Exec(replacer.Replace(ddl)); err != nil {
			return fmt.Errorf("初始化数据表失败: %w", err)
		}
	}

	// mysql 8.0.13之前不支持 IF NOT EXISTS 建索引, 失败仅告警
	for _, ddl := range indexes {
		if _, err := dao.DB.Exec(ddl); err != nil {
			global.Log.Warnf("创建索引失败: %v", err)
		}
	}
	return nil
}

package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gitee.com/taoJie_1/faq-agent/model/db"
	"gitee.com/taoJie_1/faq-agent/model/dto"
	"github.com/jmoiron/sqlx"
)

type InteractionDb struct{}

const maxExtractionRows = 500

// QueryClosedChats 查询时间窗内已关闭的会话, 按关闭时间倒序
func (d *InteractionDb) QueryClosedChats(ctx context.Context, criteria *dto.ExtractionCriteria) ([]dto.ChatThread, error) {
	query, args := buildCriteriaQuery(db.ChatSessions{}.TableName(), "closed", "closed_at", "duration_seconds", criteria)

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("构建会话查询失败: %w", err)
	}

	var sessions []db.ChatSessions
	if err := DB.SelectContext(ctx, &sessions, DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("查询已关闭会话失败: %w", err)
	}

	threads := make([]dto.ChatThread, 0, len(sessions))
	for i := range sessions {
		messages, err := d.chatMessages(ctx, sessions[i].SessionId)
		if err != nil {
			return nil, err
		}
		threads = append(threads, dto.ChatThread{Session: sessions[i], Messages: messages})
	}
	return threads, nil
}

// QueryChatBySessionId 查询单个已关闭会话, 未找到返回(nil, nil)
func (d *InteractionDb) QueryChatBySessionId(ctx context.Context, sessionId string) (*dto.ChatThread, error) {
	var session db.ChatSessions
	query := fmt.Sprintf("SELECT * FROM `%s` WHERE `session_id` = ? AND `status` = 'closed' LIMIT 1", db.ChatSessions{}.TableName())

	if err := DB.GetContext(ctx, &session, query, sessionId); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询会话失败: %w", err)
	}

	messages, err := d.chatMessages(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	return &dto.ChatThread{Session: session, Messages: messages}, nil
}

func (d *InteractionDb) chatMessages(ctx context.Context, sessionId string) ([]db.ChatMessages, error) {
	var messages []db.ChatMessages
	query := fmt.Sprintf("SELECT * FROM `%s` WHERE `session_id` = ? ORDER BY `sent_at` ASC, `id` ASC", db.ChatMessages{}.TableName())

	if err := DB.SelectContext(ctx, &messages, query, sessionId); err != nil {
		return nil, fmt.Errorf("查询会话消息失败: %w", err)
	}
	return messages, nil
}

// QueryResolvedTickets 查询时间窗内已解决的工单, 按解决时间倒序
func (d *InteractionDb) QueryResolvedTickets(ctx context.Context, criteria *dto.ExtractionCriteria) ([]dto.TicketThread, error) {
	query, args := buildCriteriaQuery(db.Tickets{}.TableName(), "resolved", "resolved_at", "resolution_seconds", criteria)

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("构建工单查询失败: %w", err)
	}

	var tickets []db.Tickets
	if err := DB.SelectContext(ctx, &tickets, DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("查询已解决工单失败: %w", err)
	}

	threads := make([]dto.TicketThread, 0, len(tickets))
	for i := range tickets {
		messages, err := d.ticketMessages(ctx, tickets[i].TicketId)
		if err != nil {
			return nil, err
		}
		threads = append(threads, dto.TicketThread{Ticket: tickets[i], Messages: messages})
	}
	return threads, nil
}

// QueryTicketByTicketId 查询单个已解决工单, 未找到返回(nil, nil)
func (d *InteractionDb) QueryTicketByTicketId(ctx context.Context, ticketId string) (*dto.TicketThread, error) {
	var ticket db.Tickets
	query := fmt.Sprintf("SELECT * FROM `%s` WHERE `ticket_id` = ? AND `status` = 'resolved' LIMIT 1", db.Tickets{}.TableName())

	if err := DB.GetContext(ctx, &ticket, query, ticketId); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询工单失败: %w", err)
	}

	messages, err := d.ticketMessages(ctx, ticketId)
	if err != nil {
		return nil, err
	}
	return &dto.TicketThread{Ticket: ticket, Messages: messages}, nil
}

func (d *InteractionDb) ticketMessages(ctx context.Context, ticketId string) ([]db.TicketMessages, error) {
	var messages []db.TicketMessages
	query := fmt.Sprintf("SELECT * FROM `%s` WHERE `ticket_id` = ? ORDER BY `sent_at` ASC, `id` ASC", db.TicketMessages{}.TableName())

	if err := DB.SelectContext(ctx, &messages, query, ticketId); err != nil {
		return nil, fmt.Errorf("查询工单消息失败: %w", err)
	}
	return messages, nil
}

// buildCriteriaQuery 按提取条件动态构建WHERE子句
func buildCriteriaQuery(table, status, timeColumn, durationColumn string, criteria *dto.ExtractionCriteria) (string, []interface{}) {
	var sb strings.Builder
	args := make([]interface{}, 0, 8)

	sb.WriteString(fmt.Sprintf("SELECT * FROM `%s` WHERE `status` = ?", table))
	args = append(args, status)

	if criteria != nil {
		if criteria.StartDate > 0 {
			sb.WriteString(fmt.Sprintf(" AND `%s` >= ?", timeColumn))
			args = append(args, criteria.StartDate)
		}
		if criteria.EndDate > 0 {
			sb.WriteString(fmt.Sprintf(" AND `%s` <= ?", timeColumn))
			args = append(args, criteria.EndDate)
		}
		if criteria.MinDurationSeconds > 0 {
			sb.WriteString(fmt.Sprintf(" AND `%s` >= ?", durationColumn))
			args = append(args, criteria.MinDurationSeconds)
		}
		if criteria.MinSatisfaction > 0 {
			sb.WriteString(" AND `satisfaction_score` >= ?")
			args = append(args, criteria.MinSatisfaction)
		}
		if len(criteria.Categories) > 0 {
			sb.WriteString(" AND `category` IN (?)")
			args = append(args, criteria.Categories)
		}
		if len(criteria.ExcludeCategories) > 0 {
			sb.WriteString(" AND `category` NOT IN (?)")
			args = append(args, criteria.ExcludeCategories)
		}
	}

	sb.WriteString(fmt.Sprintf(" ORDER BY `%s` DESC", timeColumn))

	limit := maxExtractionRows
	if criteria != nil && criteria.Limit > 0 && criteria.Limit < maxExtractionRows {
		limit = criteria.Limit
	}
	sb.WriteString(fmt.Sprintf(" LIMIT %d", limit))

	return sb.String(), args
}

package learning

import (
	"context"
	"fmt"
	"math"
	"strings"

	"gitee.com/taoJie_1/faq-agent/model/dto"
	"gitee.com/taoJie_1/faq-agent/model/enum"
	"gitee.com/taoJie_1/faq-agent/utils"
	"github.com/sirupsen/logrus"
)

// TicketExtractorService 从已解决工单中提取候选问答对
type TicketExtractorService interface {
	Extract(ctx context.Context, criteria *dto.ExtractionCriteria) ([]dto.ExtractedData, error)
	// ExtractOne 针对单个工单做增量提取
	ExtractOne(ctx context.Context, ticketId string) ([]dto.ExtractedData, error)
}

type ticketExtractorService struct {
	log        *logrus.Logger
	store      InteractionStore
	normalizer NormalizerService
}

// NewTicketExtractorService 创建 TicketExtractorService 实例。
func NewTicketExtractorService(log *logrus.Logger, store InteractionStore, normalizer NormalizerService) TicketExtractorService {
	return &ticketExtractorService{log: log, store: store, normalizer: normalizer}
}

const (
	minTicketAnswerChars     = 30
	gateMinTicketAnswerChars = 30
)

// 解决方案特征词, 中英文均参与打分
var solutionWords = []string{
	"solution", "resolved", "fix", "fixed", "please try", "you can", "steps", "follow",
	"解决", "已处理", "您可以", "请尝试", "步骤", "方法", "操作如下", "按以下",
}

func (s *ticketExtractorService) Extract(ctx context.Context, criteria *dto.ExtractionCriteria) ([]dto.ExtractedData, error) {
	threads, err := s.store.QueryResolvedTickets(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("查询已解决工单失败: %w", err)
	}

	var result []dto.ExtractedData
	for i := range threads {
		data, ok := s.extractFromThread(&threads[i])
		if ok {
			result = append(result, data)
		}
	}
	return result, nil
}

func (s *ticketExtractorService) ExtractOne(ctx context.Context, ticketId string) ([]dto.ExtractedData, error) {
	thread, err := s.store.QueryTicketByTicketId(ctx, ticketId)
	if err != nil {
		return nil, fmt.Errorf("查询工单 %s 失败: %w", ticketId, err)
	}
	if thread == nil {
		return nil, nil
	}
	data, ok := s.extractFromThread(thread)
	if !ok {
		return nil, nil
	}
	return []dto.ExtractedData{data}, nil
}

// extractFromThread 问题取标题+描述首句, 答案取得分最高的客服消息
func (s *ticketExtractorService) extractFromThread(thread *dto.TicketThread) (dto.ExtractedData, bool) {
	question := s.buildQuestion(thread)
	answer := s.pickBestAgentMessage(thread)
	if answer == "" {
		return dto.ExtractedData{}, false
	}

	data := dto.ExtractedData{
		Id:                     fmt.Sprintf("ticket-%s", thread.Ticket.TicketId),
		SourceType:             enum.SourceTicket,
		SourceId:               thread.Ticket.TicketId,
		Question:               question,
		Answer:                 answer,
		Context:                thread.Ticket.Description,
		Keywords:               s.normalizer.ExtractKeywords(question),
		Category:               s.resolveCategory(thread, question),
		ExtractedAt:            thread.Ticket.ResolvedAt,
		SessionDurationSeconds: thread.Ticket.ResolutionSeconds,
		SatisfactionScore:      thread.Ticket.SatisfactionScore,
	}
	data.Confidence = s.calculateConfidence(thread, answer)

	if !validateExtracted(&data, gateMinTicketAnswerChars) {
		return dto.ExtractedData{}, false
	}
	return data, true
}

func (s *ticketExtractorService) buildQuestion(thread *dto.TicketThread) string {
	subject := strings.TrimSpace(thread.Ticket.Subject)
	firstClause := firstSentence(thread.Ticket.Description)
	if firstClause == "" {
		return subject
	}
	if subject == "" {
		return firstClause
	}
	return subject + ": " + firstClause
}

// firstSentence 取首个分句, 无终止符时返回整段
func firstSentence(text string) string {
	trimmed := strings.TrimSpace(text)
	minIdx := -1
	for _, term := range sentenceTerminators {
		if idx := strings.Index(trimmed, term); idx >= 0 && (minIdx == -1 || idx < minIdx) {
			minIdx = idx
		}
	}
	if minIdx >= 0 {
		return strings.TrimSpace(trimmed[:minIdx])
	}
	return trimmed
}

// pickBestAgentMessage 打分 = 长度分 + 位置分 + 解决方案特征分
func (s *ticketExtractorService) pickBestAgentMessage(thread *dto.TicketThread) string {
	var best string
	var bestScore float64 = -1
	total := len(thread.Messages)

	for i := range thread.Messages {
		msg := &thread.Messages[i]
		if msg.Role != "agent" {
			continue
		}
		content := strings.TrimSpace(msg.Content)
		if len(content) < minTicketAnswerChars {
			continue
		}

		// 长度分上限30, 越靠后的回复越可能是最终方案
		score := math.Min(30, float64(len(content))/20)
		if total > 1 {
			score += float64(i) / float64(total-1) * 20
		}
		if utils.ContainsAny(strings.ToLower(content), solutionWords) {
			score += 15
		}

		if score > bestScore {
			bestScore = score
			best = content
		}
	}
	return best
}

func (s *ticketExtractorService) resolveCategory(thread *dto.TicketThread, question string) string {
	if thread.Ticket.Category != "" {
		return thread.Ticket.Category
	}
	return string(InferCategory(question))
}

// calculateConfidence 基准60分, 工单元数据决定加减分, 最终钳制到[0,100]
func (s *ticketExtractorService) calculateConfidence(thread *dto.TicketThread, answer string) int {
	confidence := 60

	if thread.Ticket.AssignedAgent != "" {
		confidence += 10
	}
	if thread.Ticket.SlaBreached == 1 {
		confidence -= 10
	}
	if thread.Ticket.Category != "" {
		confidence += 5
	}
	// 一小时内解决的工单更可信
	if thread.Ticket.ResolutionSeconds > 0 && thread.Ticket.ResolutionSeconds <= 3600 {
		confidence += 5
	}

	answerLen := len(answer)
	if answerLen >= 50 && answerLen <= 800 {
		confidence += 5
	}
	if structuredContentRe.MatchString(answer) {
		confidence += 5
	}

	if thread.Ticket.SatisfactionScore != nil {
		switch score := *thread.Ticket.SatisfactionScore; {
		case score >= 0.8:
			confidence += 10
		case score >= 0.6:
			confidence += 5
		case score < 0.4:
			confidence -= 10
		}
	}

	return utils.Clamp(confidence, 0, 100)
}

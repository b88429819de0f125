package learning

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"gitee.com/taoJie_1/faq-agent/model/db"
	"gitee.com/taoJie_1/faq-agent/model/dto"
	"gitee.com/taoJie_1/faq-agent/model/enum"
	"gitee.com/taoJie_1/faq-agent/utils"
	"github.com/sirupsen/logrus"
)

// ChatExtractorService 从已关闭会话中提取候选问答对
type ChatExtractorService interface {
	Extract(ctx context.Context, criteria *dto.ExtractionCriteria) ([]dto.ExtractedData, error)
	// ExtractOne 针对单个会话做增量提取
	ExtractOne(ctx context.Context, sessionId string) ([]dto.ExtractedData, error)
}

type chatExtractorService struct {
	log        *logrus.Logger
	store      InteractionStore
	normalizer NormalizerService
}

// NewChatExtractorService 创建 ChatExtractorService 实例。
func NewChatExtractorService(log *logrus.Logger, store InteractionStore, normalizer NormalizerService) ChatExtractorService {
	return &chatExtractorService{log: log, store: store, normalizer: normalizer}
}

const (
	minQuestionChars   = 15
	minChatAnswerChars = 30
	// 验证门槛, 低于此长度的记录被静默丢弃
	gateMinQuestionChars   = 10
	gateMinChatAnswerChars = 20
)

// 寒暄/应答词, 命中的用户消息不作为问题
var greetingWords = []string{
	"hi", "hello", "hey", "thanks", "thank you", "ok", "okay", "bye", "good morning", "good afternoon",
	"你好", "您好", "在吗", "在么", "谢谢", "好的", "嗯", "哦", "再见", "辛苦了",
}

var sentenceTerminators = []string{".", "!", "?", "。", "！", "？", ";", "；"}

var structuredContentRe = regexp.MustCompile(`(?m)^\s*(\d+[\.、\)）]|[-*•])`)

func (s *chatExtractorService) Extract(ctx context.Context, criteria *dto.ExtractionCriteria) ([]dto.ExtractedData, error) {
	threads, err := s.store.QueryClosedChats(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("查询已关闭会话失败: %w", err)
	}

	var result []dto.ExtractedData
	for i := range threads {
		pairs := s.extractFromThread(&threads[i])
		result = append(result, pairs...)
	}
	return result, nil
}

func (s *chatExtractorService) ExtractOne(ctx context.Context, sessionId string) ([]dto.ExtractedData, error) {
	thread, err := s.store.QueryChatBySessionId(ctx, sessionId)
	if err != nil {
		return nil, fmt.Errorf("查询会话 %s 失败: %w", sessionId, err)
	}
	if thread == nil {
		return nil, nil
	}
	return s.extractFromThread(thread), nil
}

// extractFromThread 将有效用户提问与其后最近的一条客服/AI回复配对
func (s *chatExtractorService) extractFromThread(thread *dto.ChatThread) []dto.ExtractedData {
	var result []dto.ExtractedData
	messages := thread.Messages

	for i := 0; i < len(messages); i++ {
		if messages[i].Role != "user" || !s.isMeaningfulQuestion(messages[i].Content) {
			continue
		}

		// 向后寻找最近的一条有效回复
		answerIdx := -1
		for j := i + 1; j < len(messages); j++ {
			if messages[j].Role == "user" {
				break
			}
			if s.isValidAnswer(messages[j].Content) {
				answerIdx = j
				break
			}
		}
		if answerIdx == -1 {
			continue
		}

		data := s.buildRecord(thread, &messages[i], &messages[answerIdx], i)
		if validateExtracted(&data, gateMinChatAnswerChars) {
			result = append(result, data)
		}
		i = answerIdx
	}
	return result
}

// isMeaningfulQuestion 过滤过短消息与寒暄应答
func (s *chatExtractorService) isMeaningfulQuestion(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minQuestionChars {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, g := range greetingWords {
		if lower == g {
			return false
		}
	}
	return true
}

// isValidAnswer 回复需达到最小长度且至少含一个完整分句
func (s *chatExtractorService) isValidAnswer(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minChatAnswerChars {
		return false
	}
	return utils.ContainsAny(trimmed, sentenceTerminators)
}

func (s *chatExtractorService) buildRecord(thread *dto.ChatThread, question, answer *db.ChatMessages, idx int) dto.ExtractedData {
	q := strings.TrimSpace(question.Content)
	a := strings.TrimSpace(answer.Content)

	data := dto.ExtractedData{
		Id:                     fmt.Sprintf("chat-%s-%d", thread.Session.SessionId, idx),
		SourceType:             enum.SourceChat,
		SourceId:               thread.Session.SessionId,
		Question:               q,
		Answer:                 a,
		Keywords:               s.normalizer.ExtractKeywords(q),
		Category:               string(InferCategory(q)),
		ExtractedAt:            answer.SentAt,
		SessionDurationSeconds: thread.Session.DurationSeconds,
		SatisfactionScore:      thread.Session.SatisfactionScore,
	}
	if data.ExtractedAt == 0 {
		data.ExtractedAt = thread.Session.ClosedAt
	}
	data.Confidence = s.calculateConfidence(thread, answer, a)
	return data
}

// calculateConfidence 基准60分, 各加分项有界, 最终钳制到[0,100]
func (s *chatExtractorService) calculateConfidence(thread *dto.ChatThread, answer *db.ChatMessages, answerText string) int {
	confidence := 60

	// AI回复自带置信度, 贡献上限+15
	if answer.Role == "ai" && answer.AiConfidence != nil {
		confidence += int(math.Min(15, math.Round(*answer.AiConfidence*15)))
	}

	// 用户明确标记的有用/无用
	if answer.Helpful != nil {
		if *answer.Helpful == 1 {
			confidence += 15
		} else {
			confidence -= 15
		}
	}

	// 答案长度甜区
	answerLen := len(answerText)
	switch {
	case answerLen >= 50 && answerLen <= 500:
		confidence += 10
	case answerLen > 1000:
		confidence -= 5
	}

	// 编号/列表式结构化内容
	if structuredContentRe.MatchString(answerText) {
		confidence += 5
	}

	// 会话满意度
	if thread.Session.SatisfactionScore != nil {
		switch score := *thread.Session.SatisfactionScore; {
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

// validateExtracted 最小字段门槛, 未达标的记录静默丢弃
func validateExtracted(d *dto.ExtractedData, minAnswerChars int) bool {
	if d.Id == "" || d.SourceId == "" {
		return false
	}
	if len(strings.TrimSpace(d.Question)) < gateMinQuestionChars {
		return false
	}
	if len(strings.TrimSpace(d.Answer)) < minAnswerChars {
		return false
	}
	if d.Confidence < 0 || d.Confidence > 100 {
		return false
	}
	if d.ExtractedAt == 0 {
		return false
	}
	return true
}

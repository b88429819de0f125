package learning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gitee.com/taoJie_1/faq-agent/dao"
	"gitee.com/taoJie_1/faq-agent/global"
	"gitee.com/taoJie_1/faq-agent/model/config"
	"gitee.com/taoJie_1/faq-agent/model/enum"
)

type ServiceGroup struct {
	NormalizerService NormalizerService
	SimilarityService SimilarityService
	ChatExtractor     ChatExtractorService
	TicketExtractor   TicketExtractorService
	RecognizerService RecognizerService
	ConfidenceService ConfidenceService
	GeneratorService  GeneratorService
	FeedbackService   FeedbackService
	PipelineService   PipelineService
}

// NewServiceGroup 组装学习管道的全部服务
// 存储一律走dao, AI增强可缺省(未配置LLM时走模板路径)
func NewServiceGroup() ServiceGroup {
	cfgFn := func() config.Learning { return global.Config.Learning }

	normalizer := NewNormalizerService()
	similarity := NewSimilarityService(normalizer)
	chatExtractor := NewChatExtractorService(global.Log, &dao.App.InteractionDb, normalizer)
	ticketExtractor := NewTicketExtractorService(global.Log, &dao.App.InteractionDb, normalizer)
	recognizer := NewRecognizerService(global.Log, &dao.App.PatternDb, normalizer, similarity, cfgFn)
	confidence := NewConfidenceService(cfgFn)

	var ai AiProvider
	if global.LlmService != nil {
		ai = &llmProvider{}
	}
	generator := NewGeneratorService(global.Log, &dao.App.FaqDb, similarity, ai)
	feedback := NewFeedbackService(global.Log, &dao.App.FaqDb, confidence)
	pipeline := NewPipelineService(global.Log, chatExtractor, ticketExtractor, normalizer, recognizer, generator, confidence, &dao.App.FaqDb, cfgFn, global.Tz)

	return ServiceGroup{
		NormalizerService: normalizer,
		SimilarityService: similarity,
		ChatExtractor:     chatExtractor,
		TicketExtractor:   ticketExtractor,
		RecognizerService: recognizer,
		ConfidenceService: confidence,
		GeneratorService:  generator,
		FeedbackService:   feedback,
		PipelineService:   pipeline,
	}
}

// llmProvider 把全局LLM客户端适配成AiProvider
type llmProvider struct{}

const llmCallTimeout = 60 * time.Second

// 供应方不回传置信度, 按生成任务的经验值折算
const defaultAiConfidence = 0.8

func (p *llmProvider) Generate(ctx context.Context, question, answer, context_ string) (string, float64, error) {
	var sb strings.Builder
	sb.WriteString("用户问题: ")
	sb.WriteString(question)
	sb.WriteString("\n客服答案: ")
	sb.WriteString(answer)
	if context_ != "" {
		sb.WriteString("\n补充上下文: ")
		sb.WriteString(context_)
	}

	ctx, cancel := withTimeout(ctx, llmCallTimeout)
	defer cancel()

	text, err := global.LlmService.GetCompletion(ctx, enum.ModelLarge, enum.SystemPromptGenFaqAnswer, sb.String(), 0.3)
	if err != nil {
		return "", 0, err
	}
	return text, defaultAiConfidence, nil
}

func (p *llmProvider) Categorize(ctx context.Context, question, answer string) (string, error) {
	content := fmt.Sprintf("问题: %s\n答案: %s", question, answer)

	ctx, cancel := withTimeout(ctx, llmCallTimeout)
	defer cancel()

	return global.LlmService.GetCompletion(ctx, enum.ModelSmall, enum.SystemPromptCategorize, content, 0.1)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

package learning

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"gitee.com/taoJie_1/faq-agent/model/config"
	"gitee.com/taoJie_1/faq-agent/model/dto"
	"gitee.com/taoJie_1/faq-agent/model/enum"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrPipelineBusy 管道正在运行, 同一时刻只允许一次全量运行
var ErrPipelineBusy = errors.New("学习管道正在运行中, 请稍后重试")

// PipelineService 学习管道编排: 提取→清洗→模式识别→生成→入库
type PipelineService interface {
	// Run 执行一次全量学习, 重入时返回 ErrPipelineBusy
	Run(ctx context.Context, criteria *dto.ExtractionCriteria) (*dto.PipelineRunResult, error)
	// ProcessRealTimeData 针对单个会话/工单做增量学习
	ProcessRealTimeData(ctx context.Context, sourceType enum.SourceType, sourceId string) (*dto.PipelineRunResult, error)
	// GetPipelineStatus 返回管道当前状态快照
	GetPipelineStatus() dto.PipelineStatus
	// SetNextScheduledRun 记录下一次计划运行时间, 由定时任务写入
	SetNextScheduledRun(ts int64)
}

type pipelineService struct {
	log           *logrus.Logger
	chatExtractor ChatExtractorService
	tickets       TicketExtractorService
	normalizer    NormalizerService
	recognizer    RecognizerService
	generator     GeneratorService
	confidence    ConfidenceService
	faqStore      FaqStore
	cfgFn         func() config.Learning
	loc           *time.Location

	mu               sync.Mutex
	isProcessing     bool
	dailyCount       int
	lastDate         string
	lastRun          *dto.PipelineRunResult
	lastRunAt        int64
	nextScheduledRun int64
}

// NewPipelineService 创建 PipelineService 实例。
func NewPipelineService(
	log *logrus.Logger,
	chatExtractor ChatExtractorService,
	tickets TicketExtractorService,
	normalizer NormalizerService,
	recognizer RecognizerService,
	generator GeneratorService,
	confidence ConfidenceService,
	faqStore FaqStore,
	cfgFn func() config.Learning,
	loc *time.Location,
) PipelineService {
	return &pipelineService{
		log:           log,
		chatExtractor: chatExtractor,
		tickets:       tickets,
		normalizer:    normalizer,
		recognizer:    recognizer,
		generator:     generator,
		confidence:    confidence,
		faqStore:      faqStore,
		cfgFn:         cfgFn,
		loc:           loc,
	}
}

const maxPipelineErrors = 50

func (s *pipelineService) Run(ctx context.Context, criteria *dto.ExtractionCriteria) (*dto.PipelineRunResult, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	start := time.Now()
	// 运行期间配置只取一次快照, 中途热更新不影响本轮
	cfg := s.cfgFn()
	result := &dto.PipelineRunResult{Status: enum.RunCompleted}

	normalized, truncated, err := s.collect(ctx, criteria, cfg)
	if err != nil {
		result.Status = enum.RunFailed
		result.Errors = append(result.Errors, err.Error())
		result.ProcessingTimeMs = time.Since(start).Milliseconds()
		s.finish(result)
		return result, err
	}
	if truncated {
		result.Status = enum.RunPartial
		result.Errors = append(result.Errors, "已达到每日处理配额, 本轮只处理部分数据")
	}
	if len(normalized) == 0 {
		result.ProcessingTimeMs = time.Since(start).Milliseconds()
		s.finish(result)
		return result, nil
	}

	patterns, err := s.recognizer.IdentifyPatterns(ctx, normalized)
	if err != nil {
		result.Status = enum.RunFailed
		result.Errors = append(result.Errors, err.Error())
		result.ProcessingTimeMs = time.Since(start).Milliseconds()
		s.finish(result)
		return result, err
	}
	result.UpdatedPatterns = len(patterns)

	s.generateAndPersist(ctx, normalized, patterns, cfg, result)

	result.ProcessedItems = len(normalized)
	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	s.addDailyCount(len(normalized))
	s.finish(result)

	s.log.Infof("学习管道完成: 处理%d条, 新增FAQ %d条, 更新模式%d个, 状态%s",
		result.ProcessedItems, result.NewFaqs, result.UpdatedPatterns, result.Status)
	return result, nil
}

func (s *pipelineService) ProcessRealTimeData(ctx context.Context, sourceType enum.SourceType, sourceId string) (*dto.PipelineRunResult, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	start := time.Now()
	cfg := s.cfgFn()
	result := &dto.PipelineRunResult{Status: enum.RunCompleted}

	var extracted []dto.ExtractedData
	var err error
	switch sourceType {
	case enum.SourceChat:
		extracted, err = s.chatExtractor.ExtractOne(ctx, sourceId)
	case enum.SourceTicket:
		extracted, err = s.tickets.ExtractOne(ctx, sourceId)
	default:
		err = fmt.Errorf("不支持的数据源类型: %s", sourceType)
	}
	if err != nil {
		result.Status = enum.RunFailed
		result.Errors = append(result.Errors, err.Error())
		result.ProcessingTimeMs = time.Since(start).Milliseconds()
		s.finish(result)
		return result, err
	}

	normalized := s.normalizeAll(extracted, cfg)
	if len(normalized) == 0 {
		result.ProcessingTimeMs = time.Since(start).Milliseconds()
		s.finish(result)
		return result, nil
	}

	patterns, err := s.recognizer.IdentifyPatterns(ctx, normalized)
	if err != nil {
		result.Status = enum.RunFailed
		result.Errors = append(result.Errors, err.Error())
		result.ProcessingTimeMs = time.Since(start).Milliseconds()
		s.finish(result)
		return result, err
	}
	result.UpdatedPatterns = len(patterns)

	s.generateAndPersist(ctx, normalized, patterns, cfg, result)

	result.ProcessedItems = len(normalized)
	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	s.addDailyCount(len(normalized))
	s.finish(result)
	return result, nil
}

// collect 提取两类数据源并清洗, 按每日配额截断
func (s *pipelineService) collect(ctx context.Context, criteria *dto.ExtractionCriteria, cfg config.Learning) ([]dto.NormalizedData, bool, error) {
	chats, err := s.chatExtractor.Extract(ctx, criteria)
	if err != nil {
		return nil, false, fmt.Errorf("提取会话数据失败: %w", err)
	}
	ticketData, err := s.tickets.Extract(ctx, criteria)
	if err != nil {
		return nil, false, fmt.Errorf("提取工单数据失败: %w", err)
	}

	extracted := make([]dto.ExtractedData, 0, len(chats)+len(ticketData))
	extracted = append(extracted, chats...)
	extracted = append(extracted, ticketData...)

	normalized := s.normalizeAll(extracted, cfg)

	truncated := false
	if quota := s.remainingQuota(cfg); len(normalized) > quota {
		normalized = normalized[:quota]
		truncated = true
	}
	return normalized, truncated, nil
}

// normalizeAll 清洗并按最小置信度过滤
func (s *pipelineService) normalizeAll(extracted []dto.ExtractedData, cfg config.Learning) []dto.NormalizedData {
	normalized := make([]dto.NormalizedData, 0, len(extracted))
	for i := range extracted {
		n := s.normalizer.Normalize(&extracted[i])
		if n == nil {
			continue
		}
		if n.Confidence < cfg.MinConfidence {
			continue
		}
		normalized = append(normalized, *n)
	}
	return normalized
}

// generateAndPersist 分批并发生成, 单条失败只记入errors不中断整轮
func (s *pipelineService) generateAndPersist(ctx context.Context, normalized []dto.NormalizedData, patterns []*dto.LearningPattern, cfg config.Learning, result *dto.PipelineRunResult) {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	concurrency := cfg.MaxConcurrency
	if concurrency <= 0 {
		concurrency = 3
	}

	opts := dto.FaqGenerationOptions{
		EnableAiGeneration:     cfg.EnableAiGeneration,
		AutoCategorize:         cfg.EnableAiGeneration,
		SimilarityThreshold:    cfg.SimilarityThreshold,
		MergeThreshold:         cfg.MergeThreshold,
		DiscardThreshold:       cfg.DiscardThreshold,
		MinConfidenceThreshold: cfg.MinConfidence,
	}

	var mu sync.Mutex
	newFaqs := 0
	addError := func(msg string) {
		mu.Lock()
		defer mu.Unlock()
		if len(result.Errors) < maxPipelineErrors {
			result.Errors = append(result.Errors, msg)
		}
	}

	for offset := 0; offset < len(normalized); offset += batchSize {
		// 批次之间响应取消, 已完成的批次结果保留
		if ctx.Err() != nil {
			result.Status = enum.RunPartial
			addError("运行被取消, 剩余批次未处理")
			break
		}

		end := offset + batchSize
		if end > len(normalized) {
			end = len(normalized)
		}
		batch := normalized[offset:end]

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for i := range batch {
			item := &batch[i]
			g.Go(func() error {
				created, err := s.processOne(gctx, item, patterns, opts, cfg)
				if err != nil {
					addError(fmt.Sprintf("处理 %s 失败: %v", item.Id, err))
					return nil
				}
				if created {
					mu.Lock()
					newFaqs++
					mu.Unlock()
				}
				return nil
			})
		}
		_ = g.Wait()
	}

	result.NewFaqs = newFaqs
	if len(result.Errors) > 0 && result.Status == enum.RunCompleted {
		result.Status = enum.RunPartial
	}
}

// processOne 单条候选的去重、生成与入库
func (s *pipelineService) processOne(ctx context.Context, data *dto.NormalizedData, patterns []*dto.LearningPattern, opts dto.FaqGenerationOptions, cfg config.Learning) (bool, error) {
	dup, err := s.generator.DetectDuplicates(ctx, data.Question, opts)
	if err != nil {
		return false, err
	}
	if dup.Action == enum.DuplicateDiscard {
		s.log.Debugf("候选 %s 与既有FAQ高度重复, 丢弃", data.Id)
		return false, nil
	}

	faq, err := s.generator.GenerateFaq(ctx, data, patterns, opts)
	if err != nil {
		return false, err
	}

	relevant := s.generator.FindRelevantPatterns(data, patterns)
	factors := buildConfidenceFactors(data, faq, relevant)
	calc := s.confidence.Calculate(factors)
	faq.Confidence = calc.FinalConfidence

	if faq.Confidence < cfg.MinConfidence {
		s.log.Debugf("候选 %s 置信度%d低于阈值%d, 丢弃", data.Id, faq.Confidence, cfg.MinConfidence)
		return false, nil
	}

	if dup.Action == enum.DuplicateMerge {
		if err := s.faqStore.Merge(ctx, dup.BestMatchId, faq); err != nil {
			return false, fmt.Errorf("合并到FAQ %d 失败: %w", dup.BestMatchId, err)
		}
		return false, nil
	}

	status := enum.FaqStatusPendingReview
	autoPublish := cfg.AutoPublishThreshold
	if autoPublish <= 0 {
		autoPublish = 85
	}
	if cfg.EnableAutoPublishing && faq.Confidence >= autoPublish {
		status = enum.FaqStatusPublished
	}

	if _, err := s.faqStore.Persist(ctx, faq, status, &factors); err != nil {
		return false, fmt.Errorf("持久化FAQ失败: %w", err)
	}
	return true, nil
}

// buildConfidenceFactors 将候选数据与模式上下文折算成多因子输入
func buildConfidenceFactors(data *dto.NormalizedData, faq *dto.GeneratedFaq, patterns []*dto.LearningPattern) dto.ConfidenceFactors {
	factors := dto.ConfidenceFactors{
		SourceReliability: 0.7,
		SatisfactionScore: 0.5,
		ResolutionSuccess: 0.8,
		LanguageQuality:   0.8,
		ProcessingSuccess: 1,
	}

	// 工单经过正式解决流程, 可靠度高于会话
	if data.SourceType == enum.SourceTicket {
		factors.SourceReliability = 0.8
		factors.ResolutionSuccess = 1
	}
	if data.SatisfactionScore != nil {
		factors.SatisfactionScore = *data.SatisfactionScore
	}

	factors.QuestionClarity = math.Min(1, float64(len(data.Question))/100)
	if answerLen := len(faq.Answer); answerLen >= 50 && answerLen <= 1000 {
		factors.AnswerCompleteness = 1
	} else {
		factors.AnswerCompleteness = 0.6
	}
	if structuredContentRe.MatchString(faq.Answer) {
		factors.StructuredContent = 1
	}

	for _, p := range patterns {
		if p.Frequency > factors.PatternFrequency {
			factors.PatternFrequency = p.Frequency
		}
		factors.PatternConsistency += p.AvgSourceRelevance()
		if distinct := p.DistinctSourceCount(); distinct > factors.SourceVariety {
			factors.SourceVariety = distinct
		}
	}
	if len(patterns) > 0 {
		factors.PatternConsistency /= float64(len(patterns))
	}

	if faq.GenerationMethod == enum.GenerationAi {
		factors.AiConfidence = float64(faq.Confidence) / 100
	} else {
		factors.AiConfidence = 0.6
	}

	if faq.Category != "" && faq.Category != string(enum.CategoryGeneral) {
		factors.CategoryMatch = 1
	} else {
		factors.CategoryMatch = 0.5
	}
	factors.KeywordRelevance = math.Min(1, float64(len(faq.Keywords))/5)
	if data.Context != "" {
		factors.ContextRichness = 1
	} else {
		factors.ContextRichness = 0.3
	}
	return factors
}

// acquire 单飞锁, 同时完成每日配额的跨日重置
func (s *pipelineService) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isProcessing {
		return ErrPipelineBusy
	}

	today := time.Now().In(s.loc).Format("2006-01-02")
	if s.lastDate != today {
		s.lastDate = today
		s.dailyCount = 0
	}
	s.isProcessing = true
	return nil
}

func (s *pipelineService) release() {
	s.mu.Lock()
	s.isProcessing = false
	s.mu.Unlock()
}

func (s *pipelineService) remainingQuota(cfg config.Learning) int {
	limit := cfg.DailyProcessingLimit
	if limit <= 0 {
		limit = 1000
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	remaining := limit - s.dailyCount
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

func (s *pipelineService) addDailyCount(n int) {
	s.mu.Lock()
	s.dailyCount += n
	s.mu.Unlock()
}

func (s *pipelineService) finish(result *dto.PipelineRunResult) {
	s.mu.Lock()
	s.lastRun = result
	s.lastRunAt = time.Now().Unix()
	s.mu.Unlock()
}

func (s *pipelineService) GetPipelineStatus() dto.PipelineStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dto.PipelineStatus{
		IsProcessing:         s.isProcessing,
		DailyProcessingCount: s.dailyCount,
		LastRun:              s.lastRun,
		LastRunAt:            s.lastRunAt,
		NextScheduledRun:     s.nextScheduledRun,
	}
}

func (s *pipelineService) SetNextScheduledRun(ts int64) {
	s.mu.Lock()
	s.nextScheduledRun = ts
	s.mu.Unlock()
}

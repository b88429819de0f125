package learning

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"gitee.com/taoJie_1/faq-agent/model/dto"
	"gitee.com/taoJie_1/faq-agent/model/enum"
	"gitee.com/taoJie_1/faq-agent/utils"
	"github.com/sirupsen/logrus"
)

// GeneratorService FAQ合成: AI生成+模板回退+重复抑制
type GeneratorService interface {
	// GenerateFaq 从一条候选数据合成FAQ条目
	// AI失败时自动走模板回退, 两者都失败才返回错误
	GenerateFaq(ctx context.Context, data *dto.NormalizedData, patterns []*dto.LearningPattern, opts dto.FaqGenerationOptions) (*dto.GeneratedFaq, error)
	// GenerateBatch 批量生成, 单条失败不中断整批
	GenerateBatch(ctx context.Context, items []dto.NormalizedData, patterns []*dto.LearningPattern, opts dto.FaqGenerationOptions) *dto.BatchGenerationResult
	// DetectDuplicates 与既有FAQ做相似度比对, 给出merge/keep_separate/discard建议
	DetectDuplicates(ctx context.Context, question string, opts dto.FaqGenerationOptions) (*dto.DuplicateDetectionResult, error)
	// MergeFaqs 将候选条目与既有条目合并
	MergeFaqs(existingId uint, existingQuestion, existingAnswer string, existingConfidence int, existingKeywords []string, candidate *dto.GeneratedFaq) *dto.GeneratedFaq
	// FindRelevantPatterns 按关键词重合度挑选最相关的模式
	FindRelevantPatterns(data *dto.NormalizedData, patterns []*dto.LearningPattern) []*dto.LearningPattern
}

type generatorService struct {
	log        *logrus.Logger
	faqStore   FaqStore
	similarity SimilarityService
	ai         AiProvider
}

// NewGeneratorService 创建 GeneratorService 实例。ai可为nil, 此时只走模板路径。
func NewGeneratorService(log *logrus.Logger, faqStore FaqStore, similarity SimilarityService, ai AiProvider) GeneratorService {
	return &generatorService{
		log:        log,
		faqStore:   faqStore,
		similarity: similarity,
		ai:         ai,
	}
}

const (
	maxRelevantPatterns   = 3
	maxSimilarFaqsToTrack = 5
)

func (s *generatorService) GenerateFaq(ctx context.Context, data *dto.NormalizedData, patterns []*dto.LearningPattern, opts dto.FaqGenerationOptions) (*dto.GeneratedFaq, error) {
	if data == nil || strings.TrimSpace(data.Question) == "" {
		return nil, errors.New("候选数据为空, 无法生成FAQ")
	}

	relevant := s.FindRelevantPatterns(data, patterns)
	sourceHashes := make([]string, 0, len(relevant))
	for _, p := range relevant {
		sourceHashes = append(sourceHashes, p.PatternHash)
	}

	faq := &dto.GeneratedFaq{
		Question:       data.Question,
		Keywords:       data.Keywords,
		Category:       data.Category,
		SourcePatterns: sourceHashes,
	}

	// AI优先, 失败则模板兜底
	generated := false
	if opts.EnableAiGeneration && s.ai != nil {
		if err := s.generateWithAi(ctx, data, faq); err != nil {
			s.log.Warnf("AI生成FAQ失败, 回退到模板: %v", err)
		} else {
			generated = true
		}
	}
	if !generated {
		if err := s.generateWithTemplate(data, faq); err != nil {
			return nil, fmt.Errorf("模板生成FAQ失败: %w", err)
		}
	}

	if opts.AutoCategorize {
		s.autoCategorize(ctx, faq)
	}

	if err := s.validateOutput(faq); err != nil {
		return nil, err
	}
	faq.QualityScore = validateQuality(faq.Answer, faq.Keywords)
	return faq, nil
}

func (s *generatorService) generateWithAi(ctx context.Context, data *dto.NormalizedData, faq *dto.GeneratedFaq) error {
	text, aiConfidence, err := s.ai.Generate(ctx, data.Question, data.Answer, data.Context)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("AI返回了空答案")
	}

	faq.Answer = strings.TrimSpace(text)
	faq.GenerationMethod = enum.GenerationAi
	// 提取置信度与AI置信度各占一半
	faq.Confidence = utils.Clamp(int(math.Round((float64(data.Confidence)+aiConfidence*100)/2)), 1, 100)
	return nil
}

func (s *generatorService) generateWithTemplate(data *dto.NormalizedData, faq *dto.GeneratedFaq) error {
	tpl := selectTemplate(data.Category)
	vars := ExtractTemplateVariables(data.Question, data.Answer, data.Keywords)
	answer := renderTemplate(tpl, vars, data.Answer)
	if strings.TrimSpace(answer) == "" {
		return errors.New("模板渲染结果为空")
	}

	faq.Answer = answer
	faq.GenerationMethod = enum.GenerationTemplate
	// 模板答案未经改写, 置信度略降
	faq.Confidence = utils.Clamp(int(math.Round(float64(data.Confidence)*0.9)), 1, 100)
	return nil
}

func (s *generatorService) autoCategorize(ctx context.Context, faq *dto.GeneratedFaq) {
	if s.ai == nil {
		return
	}
	category, err := s.ai.Categorize(ctx, faq.Question, faq.Answer)
	if err != nil {
		s.log.Debugf("AI分类失败, 保留关键词表分类: %v", err)
		return
	}
	category = strings.ToLower(strings.TrimSpace(category))
	switch enum.FaqCategory(category) {
	case enum.CategoryAuthentication, enum.CategoryBilling, enum.CategoryTechnical, enum.CategoryAccount, enum.CategoryGeneral:
		faq.Category = category
	}
}

// validateOutput 质量门: 非空、最小长度、无残留占位符
func (s *generatorService) validateOutput(faq *dto.GeneratedFaq) error {
	if strings.TrimSpace(faq.Answer) == "" {
		return errors.New("生成的答案为空")
	}
	if len(faq.Answer) < 20 {
		return errors.New("生成的答案过短")
	}
	if strings.Contains(faq.Answer, "{{") || strings.Contains(faq.Question, "{{") {
		return errors.New("生成结果含未渲染的占位符")
	}
	return nil
}

// 答案中出现可操作性词汇时加分
var actionableWords = []string{
	"click", "select", "go to", "open", "enter", "follow",
	"点击", "打开", "进入", "选择", "输入", "按照", "前往",
}

// validateQuality 质量分: 基准70, 各加分项封顶100
func validateQuality(answer string, keywords []string) int {
	score := 70

	if len(answer) >= 50 && len(answer) <= 1000 {
		score += 10
	}
	if utils.ContainsAny(strings.ToLower(answer), actionableWords) {
		score += 10
	}
	if structuredContentRe.MatchString(answer) {
		score += 10
	}
	if len(keywords) >= 3 {
		score += 5
	}

	return utils.Clamp(score, 1, 100)
}

func (s *generatorService) GenerateBatch(ctx context.Context, items []dto.NormalizedData, patterns []*dto.LearningPattern, opts dto.FaqGenerationOptions) *dto.BatchGenerationResult {
	result := &dto.BatchGenerationResult{}

	for i := range items {
		faq, err := s.GenerateFaq(ctx, &items[i], patterns, opts)
		if err != nil {
			result.Failed = append(result.Failed, dto.BatchItemFailure{
				DataId: items[i].Id,
				Error:  err.Error(),
			})
			continue
		}
		result.Successful = append(result.Successful, *faq)
	}
	return result
}

func (s *generatorService) DetectDuplicates(ctx context.Context, question string, opts dto.FaqGenerationOptions) (*dto.DuplicateDetectionResult, error) {
	existing, err := s.faqStore.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取既有FAQ失败: %w", err)
	}

	threshold := opts.SimilarityThreshold
	if threshold <= 0 {
		threshold = 0.8
	}
	mergeThreshold := opts.MergeThreshold
	if mergeThreshold <= 0 {
		mergeThreshold = 0.85
	}
	discardThreshold := opts.DiscardThreshold
	if discardThreshold <= 0 {
		discardThreshold = 0.95
	}

	result := &dto.DuplicateDetectionResult{Action: enum.DuplicateKeepSeparate}
	for i := range existing {
		sim := s.similarity.Similarity(question, existing[i].Question)
		if sim < threshold {
			continue
		}
		result.Similar = append(result.Similar, dto.FaqMatch{
			Id:         existing[i].Id,
			Question:   existing[i].Question,
			Similarity: sim,
		})
		if sim > result.BestSimilarity {
			result.BestSimilarity = sim
			result.BestMatchId = existing[i].Id
		}
	}

	sort.SliceStable(result.Similar, func(i, j int) bool {
		return result.Similar[i].Similarity > result.Similar[j].Similarity
	})
	if len(result.Similar) > maxSimilarFaqsToTrack {
		result.Similar = result.Similar[:maxSimilarFaqsToTrack]
	}

	if len(result.Similar) == 0 {
		return result, nil
	}

	result.IsDuplicate = true
	switch {
	case result.BestSimilarity >= discardThreshold:
		result.Action = enum.DuplicateDiscard
	case result.BestSimilarity >= mergeThreshold:
		result.Action = enum.DuplicateMerge
	default:
		result.Action = enum.DuplicateKeepSeparate
	}
	return result, nil
}

func (s *generatorService) MergeFaqs(existingId uint, existingQuestion, existingAnswer string, existingConfidence int, existingKeywords []string, candidate *dto.GeneratedFaq) *dto.GeneratedFaq {
	merged := &dto.GeneratedFaq{
		Question:         candidate.Question,
		Answer:           candidate.Answer,
		Category:         candidate.Category,
		GenerationMethod: enum.GenerationMerged,
		SourcePatterns:   candidate.SourcePatterns,
		QualityScore:     candidate.QualityScore,
		MergedFrom:       append(append([]uint{}, candidate.MergedFrom...), existingId),
	}

	// 保留置信度更高一方的答案
	if existingConfidence > candidate.Confidence {
		merged.Question = existingQuestion
		merged.Answer = existingAnswer
		merged.Confidence = existingConfidence
	} else {
		merged.Confidence = candidate.Confidence
	}

	// 关键词取并集, 保持候选方顺序在前
	seen := make(map[string]struct{}, len(candidate.Keywords))
	for _, kw := range candidate.Keywords {
		seen[kw] = struct{}{}
		merged.Keywords = append(merged.Keywords, kw)
	}
	for _, kw := range existingKeywords {
		if _, ok := seen[kw]; !ok {
			merged.Keywords = append(merged.Keywords, kw)
		}
	}
	return merged
}

func (s *generatorService) FindRelevantPatterns(data *dto.NormalizedData, patterns []*dto.LearningPattern) []*dto.LearningPattern {
	type scored struct {
		pattern *dto.LearningPattern
		overlap int
		order   int
	}

	kwSet := make(map[string]struct{}, len(data.Keywords))
	for _, kw := range data.Keywords {
		kwSet[kw] = struct{}{}
	}

	var candidates []scored
	for i, p := range patterns {
		overlap := 0
		for _, kw := range p.Keywords {
			if _, ok := kwSet[kw]; ok {
				overlap++
			}
		}
		if overlap > 0 {
			candidates = append(candidates, scored{pattern: p, overlap: overlap, order: i})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].overlap != candidates[j].overlap {
			return candidates[i].overlap > candidates[j].overlap
		}
		return candidates[i].order < candidates[j].order
	})

	if len(candidates) > maxRelevantPatterns {
		candidates = candidates[:maxRelevantPatterns]
	}

	result := make([]*dto.LearningPattern, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, c.pattern)
	}
	return result
}

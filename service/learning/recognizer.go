package learning

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"gitee.com/taoJie_1/faq-agent/model/config"
	"gitee.com/taoJie_1/faq-agent/model/dto"
	"gitee.com/taoJie_1/faq-agent/model/enum"
	"gitee.com/taoJie_1/faq-agent/utils"
	"github.com/sirupsen/logrus"
)

// RecognizerService 模式识别: 哈希去重聚合 + 近似问题聚类
type RecognizerService interface {
	// IdentifyPatterns 去重聚合候选数据, 返回本轮新建或更新过的模式
	IdentifyPatterns(ctx context.Context, data []dto.NormalizedData) ([]*dto.LearningPattern, error)
	// AnalyzePatterns 识别模式并聚类近似问题
	AnalyzePatterns(ctx context.Context, data []dto.NormalizedData) (*dto.PatternAnalysisResult, error)
	// GroupSimilarQuestions 贪心单遍聚类, 只输出成员数>=2的组
	GroupSimilarQuestions(questions []string) []dto.QuestionGroup
	// FindSimilarPatterns 在持久化模式库中检索相似模式, 按相似度降序
	FindSimilarPatterns(ctx context.Context, text string, threshold float64) ([]dto.PatternMatch, error)
	// CalculatePatternConfidence 计算模式置信度, 结果在[1,100]
	CalculatePatternConfidence(pattern *dto.LearningPattern) int
}

type recognizerService struct {
	log        *logrus.Logger
	store      PatternStore
	normalizer NormalizerService
	similarity SimilarityService
	cfgFn      func() config.Learning
}

// NewRecognizerService 创建 RecognizerService 实例。
func NewRecognizerService(log *logrus.Logger, store PatternStore, normalizer NormalizerService, similarity SimilarityService, cfgFn func() config.Learning) RecognizerService {
	return &recognizerService{
		log:        log,
		store:      store,
		normalizer: normalizer,
		similarity: similarity,
		cfgFn:      cfgFn,
	}
}

// 组内默认置信度, 后续由置信度模型重算
const defaultGroupConfidence = 75

func (s *recognizerService) IdentifyPatterns(ctx context.Context, data []dto.NormalizedData) ([]*dto.LearningPattern, error) {
	// 以hash为键做O(1)查找, 同一轮内重复文本只累计频次
	touched := make(map[string]*dto.LearningPattern)
	order := make([]string, 0, len(data)*2)

	for i := range data {
		item := &data[i]
		relevance := float64(item.Confidence) / 100

		if err := s.ingest(ctx, touched, &order, item.Question, enum.PatternQuestion, item, relevance); err != nil {
			return nil, err
		}
		if err := s.ingest(ctx, touched, &order, item.Answer, enum.PatternAnswer, item, relevance); err != nil {
			return nil, err
		}
	}

	result := make([]*dto.LearningPattern, 0, len(order))
	for _, hash := range order {
		p := touched[hash]
		p.Confidence = s.CalculatePatternConfidence(p)
		if err := s.store.Upsert(ctx, p); err != nil {
			return nil, fmt.Errorf("持久化模式失败: %w", err)
		}
		result = append(result, p)
	}
	return result, nil
}

// ingest 处理单条文本: 命中既有模式则累计, 否则新建
func (s *recognizerService) ingest(ctx context.Context, touched map[string]*dto.LearningPattern, order *[]string, text string, patternType enum.PatternType, item *dto.NormalizedData, relevance float64) error {
	canonical := s.normalizer.Canonicalize(text)
	if canonical == "" {
		return nil
	}
	hash := utils.Hash(canonical)

	pattern, ok := touched[hash]
	if !ok {
		existing, err := s.store.FindByHash(ctx, hash)
		if err != nil {
			return fmt.Errorf("查询模式hash失败: %w", err)
		}
		if existing != nil {
			pattern = existing
		} else {
			pattern = &dto.LearningPattern{
				Pattern:     canonical,
				PatternHash: hash,
				Type:        patternType,
				Frequency:   0,
				Keywords:    s.normalizer.ExtractKeywords(canonical),
			}
			if patternType == enum.PatternQuestion {
				pattern.Category = string(InferCategory(canonical))
			}
		}
		touched[hash] = pattern
		*order = append(*order, hash)
	}

	pattern.IncrementFrequency()
	pattern.AddSource(dto.PatternSource{
		Type:      item.SourceType,
		Id:        item.SourceId,
		Relevance: relevance,
	})
	return nil
}

func (s *recognizerService) AnalyzePatterns(ctx context.Context, data []dto.NormalizedData) (*dto.PatternAnalysisResult, error) {
	start := time.Now()

	patterns, err := s.IdentifyPatterns(ctx, data)
	if err != nil {
		return nil, err
	}

	questions := make([]string, 0, len(data))
	for i := range data {
		questions = append(questions, data[i].Question)
	}

	return &dto.PatternAnalysisResult{
		Patterns:         patterns,
		Groups:           s.GroupSimilarQuestions(questions),
		TotalAnalyzed:    len(data),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

func (s *recognizerService) GroupSimilarQuestions(questions []string) []dto.QuestionGroup {
	threshold := s.cfgFn().ClusteringThreshold
	if threshold <= 0 {
		threshold = 0.7
	}

	processed := make([]bool, len(questions))
	var groups []dto.QuestionGroup

	for i := 0; i < len(questions); i++ {
		if processed[i] {
			continue
		}
		processed[i] = true
		members := []string{questions[i]}

		// 只向后扫描未处理的问题, 保证同一问题不会进入两个组
		for j := i + 1; j < len(questions); j++ {
			if processed[j] {
				continue
			}
			if s.similarity.Similarity(questions[i], questions[j]) >= threshold {
				members = append(members, questions[j])
				processed[j] = true
			}
		}

		if len(members) < 2 {
			continue
		}

		representative := shortestMember(members)
		groups = append(groups, dto.QuestionGroup{
			RepresentativeQuestion: representative,
			Questions:              members,
			CommonPattern:          s.commonPattern(members),
			Confidence:             defaultGroupConfidence,
			Frequency:              len(members),
			Category:               string(InferCategory(representative)),
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Frequency > groups[j].Frequency
	})
	return groups
}

// shortestMember 取最短成员, 等长时保留先遇到的
func shortestMember(members []string) string {
	best := members[0]
	for _, m := range members[1:] {
		if len(m) < len(best) {
			best = m
		}
	}
	return best
}

// commonPattern 取出现在多个成员中的关键词, 按跨成员频次降序取前5
func (s *recognizerService) commonPattern(members []string) []string {
	counts := make(map[string]int)
	order := make([]string, 0)

	for _, m := range members {
		seen := make(map[string]struct{})
		for _, kw := range s.normalizer.ExtractKeywords(m) {
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			if _, ok := counts[kw]; !ok {
				order = append(order, kw)
			}
			counts[kw]++
		}
	}

	shared := make([]string, 0)
	for _, kw := range order {
		if counts[kw] > 1 {
			shared = append(shared, kw)
		}
	}
	sort.SliceStable(shared, func(i, j int) bool {
		return counts[shared[i]] > counts[shared[j]]
	})

	if len(shared) > 5 {
		shared = shared[:5]
	}
	return shared
}

func (s *recognizerService) FindSimilarPatterns(ctx context.Context, text string, threshold float64) ([]dto.PatternMatch, error) {
	if threshold <= 0 {
		threshold = 0.7
	}

	patterns, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取模式库失败: %w", err)
	}

	var matches []dto.PatternMatch
	for _, p := range patterns {
		sim := s.similarity.Similarity(text, p.Pattern)
		if sim >= threshold {
			matches = append(matches, dto.PatternMatch{Pattern: p, Similarity: sim})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches, nil
}

func (s *recognizerService) CalculatePatternConfidence(pattern *dto.LearningPattern) int {
	confidence := 50

	switch {
	case pattern.Frequency >= 5:
		confidence += 20
	case pattern.Frequency >= 3:
		confidence += 10
	case pattern.Frequency == 1:
		confidence -= 10
	}

	switch {
	case pattern.DistinctSourceCount() >= 3:
		confidence += 15
	case pattern.DistinctSourceCount() >= 2:
		confidence += 10
	}

	confidence += int(math.Round((pattern.AvgSourceRelevance() - 0.5) * 20))

	patternLen := len(pattern.Pattern)
	switch {
	case patternLen >= 20 && patternLen <= 200:
		confidence += 10
	case patternLen < 10:
		confidence -= 15
	}

	if len(pattern.Keywords) >= 3 {
		confidence += 5
	}
	if pattern.Category != "" && pattern.Category != string(enum.CategoryGeneral) {
		confidence += 5
	}

	return utils.Clamp(confidence, 1, 100)
}

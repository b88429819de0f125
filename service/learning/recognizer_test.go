package learning

import (
	"context"
	"testing"

	"gitee.com/taoJie_1/faq-agent/model/dto"
	"gitee.com/taoJie_1/faq-agent/model/enum"
	"github.com/sirupsen/logrus"
)

// fakePatternStore 内存模式库, 记录Upsert次数
type fakePatternStore struct {
	patterns map[string]*dto.LearningPattern
	upserts  int
}

func newFakePatternStore() *fakePatternStore {
	return &fakePatternStore{patterns: make(map[string]*dto.LearningPattern)}
}

func (f *fakePatternStore) FindByHash(ctx context.Context, hash string) (*dto.LearningPattern, error) {
	p, ok := f.patterns[hash]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (f *fakePatternStore) Upsert(ctx context.Context, pattern *dto.LearningPattern) error {
	f.upserts++
	clone := *pattern
	f.patterns[pattern.PatternHash] = &clone
	return nil
}

func (f *fakePatternStore) All(ctx context.Context) ([]*dto.LearningPattern, error) {
	result := make([]*dto.LearningPattern, 0, len(f.patterns))
	for _, p := range f.patterns {
		result = append(result, p)
	}
	return result, nil
}

func newTestRecognizer(store PatternStore) RecognizerService {
	normalizer := NewNormalizerService()
	return NewRecognizerService(logrus.New(), store, normalizer, NewSimilarityService(normalizer), testLearningConfig())
}

// TestIdentifyPatternsDedup 同一文本重复出现只累计频次, 不产生新模式
func TestIdentifyPatternsDedup(t *testing.T) {
	store := newFakePatternStore()
	s := newTestRecognizer(store)

	data := []dto.NormalizedData{
		{ExtractedData: dto.ExtractedData{
			Id: "chat-s1-0", SourceType: enum.SourceChat, SourceId: "s1",
			Question: "how do i reset my password", Answer: "click the forgot password link on login page", Confidence: 80,
		}},
		{ExtractedData: dto.ExtractedData{
			Id: "chat-s2-0", SourceType: enum.SourceChat, SourceId: "s2",
			Question: "How do I reset my password?", Answer: "open settings and choose reset password option", Confidence: 70,
		}},
	}

	patterns, err := s.IdentifyPatterns(context.Background(), data)
	if err != nil {
		t.Fatalf("IdentifyPatterns失败: %v", err)
	}

	// 两个问题规范化后一致, 应合并为一个问题模式加两个答案模式
	if len(patterns) != 3 {
		t.Fatalf("应产生3个模式(1问题+2答案): got %d", len(patterns))
	}

	var question *dto.LearningPattern
	for _, p := range patterns {
		if p.Type == enum.PatternQuestion {
			question = p
		}
	}
	if question == nil {
		t.Fatal("未找到问题模式")
	}
	if question.Frequency != 2 {
		t.Errorf("重复问题的频次应为2: got %d", question.Frequency)
	}
	if question.DistinctSourceCount() != 2 {
		t.Errorf("问题模式应有2个去重来源: got %d", question.DistinctSourceCount())
	}
	if question.Confidence < 1 || question.Confidence > 100 {
		t.Errorf("模式置信度超出[1,100]: %d", question.Confidence)
	}
}

// TestIdentifyPatternsAccumulate 第二轮运行命中既有模式时继续累计
func TestIdentifyPatternsAccumulate(t *testing.T) {
	store := newFakePatternStore()
	s := newTestRecognizer(store)

	item := dto.NormalizedData{ExtractedData: dto.ExtractedData{
		Id: "ticket-t1", SourceType: enum.SourceTicket, SourceId: "t1",
		Question: "why was my payment declined", Answer: "please verify the card information and retry payment", Confidence: 75,
	}}

	if _, err := s.IdentifyPatterns(context.Background(), []dto.NormalizedData{item}); err != nil {
		t.Fatalf("首轮识别失败: %v", err)
	}
	patterns, err := s.IdentifyPatterns(context.Background(), []dto.NormalizedData{item})
	if err != nil {
		t.Fatalf("二轮识别失败: %v", err)
	}

	for _, p := range patterns {
		if p.Type == enum.PatternQuestion && p.Frequency != 2 {
			t.Errorf("二轮后问题模式频次应为2: got %d", p.Frequency)
		}
	}
}

// TestGroupSimilarQuestions 聚类只输出成员数>=2的组, 且同一问题不会进入两个组
func TestGroupSimilarQuestions(t *testing.T) {
	s := newTestRecognizer(newFakePatternStore())

	questions := []string{
		"how do i reset my password",
		"How do I reset my password?",
		"where can i download the billing invoice for march",
	}
	groups := s.GroupSimilarQuestions(questions)

	if len(groups) != 1 {
		t.Fatalf("应只有一个成员数>=2的组: got %d", len(groups))
	}
	if groups[0].Frequency != 2 {
		t.Errorf("组频次应为2: got %d", groups[0].Frequency)
	}

	seen := make(map[string]int)
	for _, g := range groups {
		for _, q := range g.Questions {
			seen[q]++
		}
	}
	for q, n := range seen {
		if n > 1 {
			t.Errorf("问题 %q 进入了%d个组", q, n)
		}
	}
}

// TestCalculatePatternConfidence 高频多来源模式的分数应高于单次出现的短模式
func TestCalculatePatternConfidence(t *testing.T) {
	s := newTestRecognizer(newFakePatternStore())

	strong := &dto.LearningPattern{
		Pattern:   "how do i reset my account password safely",
		Frequency: 6,
		Keywords:  []string{"reset", "password", "account"},
		Category:  string(enum.CategoryAuthentication),
		Sources: []dto.PatternSource{
			{Type: enum.SourceChat, Id: "s1", Relevance: 0.9},
			{Type: enum.SourceChat, Id: "s2", Relevance: 0.8},
			{Type: enum.SourceTicket, Id: "t1", Relevance: 0.7},
		},
	}
	weak := &dto.LearningPattern{
		Pattern:   "help",
		Frequency: 1,
		Sources:   []dto.PatternSource{{Type: enum.SourceChat, Id: "s9", Relevance: 0.3}},
	}

	strongScore := s.CalculatePatternConfidence(strong)
	weakScore := s.CalculatePatternConfidence(weak)
	if strongScore <= weakScore {
		t.Errorf("强模式分数(%d)应高于弱模式(%d)", strongScore, weakScore)
	}
	if weakScore < 1 || strongScore > 100 {
		t.Errorf("模式分数应在[1,100]: weak %d, strong %d", weakScore, strongScore)
	}
}

package learning

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"gitee.com/taoJie_1/faq-agent/model/db"
	"gitee.com/taoJie_1/faq-agent/model/dto"
	"gitee.com/taoJie_1/faq-agent/model/enum"
	"github.com/sirupsen/logrus"
)

// fakeFaqStore 内存FAQ库, 管道测试会并发写入
type fakeFaqStore struct {
	mu        sync.Mutex
	active    []db.LearnedFaqs
	persisted []dto.GeneratedFaq
	merged    map[uint]*dto.GeneratedFaq
}

func newFakeFaqStore() *fakeFaqStore {
	return &fakeFaqStore{merged: make(map[uint]*dto.GeneratedFaq)}
}

func (f *fakeFaqStore) ListActive(ctx context.Context) ([]db.LearnedFaqs, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active, nil
}

func (f *fakeFaqStore) Persist(ctx context.Context, faq *dto.GeneratedFaq, status enum.FaqStatus, factors *dto.ConfidenceFactors) (uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.persisted = append(f.persisted, *faq)
	return uint(len(f.persisted)), nil
}

func (f *fakeFaqStore) Merge(ctx context.Context, targetId uint, faq *dto.GeneratedFaq) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.merged[targetId] = faq
	return nil
}

// fakeSimilarity 返回固定分数, 用于精确测试阈值分支
type fakeSimilarity struct{ score float64 }

func (f *fakeSimilarity) Similarity(a, b string) float64 { return f.score }

// fakeAi 可控的AI增强实现
type fakeAi struct {
	answer     string
	confidence float64
	err        error
}

func (f *fakeAi) Generate(ctx context.Context, question, answer, context_ string) (string, float64, error) {
	return f.answer, f.confidence, f.err
}

func (f *fakeAi) Categorize(ctx context.Context, question, answer string) (string, error) {
	return "billing", nil
}

func testNormalized(confidence int) *dto.NormalizedData {
	return &dto.NormalizedData{ExtractedData: dto.ExtractedData{
		Id:         "chat-s1-0",
		SourceType: enum.SourceChat,
		SourceId:   "s1",
		Question:   "如何申请订单退款",
		Answer:     "请在订单详情页点击申请退款按钮，填写退款原因后提交，客服会在一个工作日内处理。",
		Keywords:   []string{"退款", "订单"},
		Category:   string(enum.CategoryBilling),
		Confidence: confidence,
	}}
}

// TestGenerateFaqTemplate 未配置AI时走模板路径, 置信度按9折折算
func TestGenerateFaqTemplate(t *testing.T) {
	normalizer := NewNormalizerService()
	s := NewGeneratorService(logrus.New(), newFakeFaqStore(), NewSimilarityService(normalizer), nil)

	faq, err := s.GenerateFaq(context.Background(), testNormalized(80), nil, dto.FaqGenerationOptions{})
	if err != nil {
		t.Fatalf("GenerateFaq失败: %v", err)
	}
	if faq.GenerationMethod != enum.GenerationTemplate {
		t.Errorf("应使用模板生成: got %s", faq.GenerationMethod)
	}
	if faq.Confidence != 72 {
		t.Errorf("模板置信度应为80*0.9=72: got %d", faq.Confidence)
	}
	if strings.Contains(faq.Answer, "{{") {
		t.Errorf("答案不应残留占位符: %q", faq.Answer)
	}
	if faq.QualityScore < 1 || faq.QualityScore > 100 {
		t.Errorf("质量分超出[1,100]: %d", faq.QualityScore)
	}
}

// TestGenerateFaqAiFallback AI失败时自动回退到模板, 不应报错
func TestGenerateFaqAiFallback(t *testing.T) {
	normalizer := NewNormalizerService()
	ai := &fakeAi{err: errors.New("上游超时")}
	s := NewGeneratorService(logrus.New(), newFakeFaqStore(), NewSimilarityService(normalizer), ai)

	faq, err := s.GenerateFaq(context.Background(), testNormalized(80), nil, dto.FaqGenerationOptions{EnableAiGeneration: true})
	if err != nil {
		t.Fatalf("AI失败时应回退模板而非报错: %v", err)
	}
	if faq.GenerationMethod != enum.GenerationTemplate {
		t.Errorf("回退后应为模板生成: got %s", faq.GenerationMethod)
	}
}

// TestGenerateFaqWithAi AI成功时置信度取提取分与AI分的均值
func TestGenerateFaqWithAi(t *testing.T) {
	normalizer := NewNormalizerService()
	ai := &fakeAi{answer: "您可以在订单详情页提交退款申请，审核通过后退款将原路返回。", confidence: 0.9}
	s := NewGeneratorService(logrus.New(), newFakeFaqStore(), NewSimilarityService(normalizer), ai)

	faq, err := s.GenerateFaq(context.Background(), testNormalized(80), nil, dto.FaqGenerationOptions{EnableAiGeneration: true})
	if err != nil {
		t.Fatalf("GenerateFaq失败: %v", err)
	}
	if faq.GenerationMethod != enum.GenerationAi {
		t.Errorf("应使用AI生成: got %s", faq.GenerationMethod)
	}
	// (80 + 90) / 2 = 85
	if faq.Confidence != 85 {
		t.Errorf("AI置信度应为85: got %d", faq.Confidence)
	}
}

// TestDetectDuplicatesThresholds 验证discard/merge/keep_separate三个分支
func TestDetectDuplicatesThresholds(t *testing.T) {
	store := newFakeFaqStore()
	store.active = []db.LearnedFaqs{{
		BaseField: db.BaseField{Id: 7},
		Question:  "如何申请退款",
		Status:    string(enum.FaqStatusPublished),
	}}

	cases := []struct {
		score float64
		want  enum.DuplicateAction
	}{
		{0.96, enum.DuplicateDiscard},
		{0.90, enum.DuplicateMerge},
		{0.82, enum.DuplicateKeepSeparate},
	}
	for _, c := range cases {
		s := NewGeneratorService(logrus.New(), store, &fakeSimilarity{score: c.score}, nil)
		result, err := s.DetectDuplicates(context.Background(), "怎么退款", dto.FaqGenerationOptions{})
		if err != nil {
			t.Fatalf("DetectDuplicates失败: %v", err)
		}
		if result.Action != c.want {
			t.Errorf("相似度%.2f的建议应为%s: got %s", c.score, c.want, result.Action)
		}
		if !result.IsDuplicate {
			t.Errorf("相似度%.2f应判定为重复", c.score)
		}
		if result.BestMatchId != 7 {
			t.Errorf("最佳匹配id错误: %d", result.BestMatchId)
		}
	}

	// 低于检索阈值时不算重复
	s := NewGeneratorService(logrus.New(), store, &fakeSimilarity{score: 0.5}, nil)
	result, err := s.DetectDuplicates(context.Background(), "完全无关的问题", dto.FaqGenerationOptions{})
	if err != nil {
		t.Fatalf("DetectDuplicates失败: %v", err)
	}
	if result.IsDuplicate || result.Action != enum.DuplicateKeepSeparate {
		t.Errorf("低相似度不应判定为重复: %+v", result)
	}
}

// TestMergeFaqs 合并保留置信度更高一方的问答, 关键词取并集
func TestMergeFaqs(t *testing.T) {
	s := NewGeneratorService(logrus.New(), newFakeFaqStore(), &fakeSimilarity{}, nil)

	candidate := &dto.GeneratedFaq{
		Question:   "怎么申请退款",
		Answer:     "候选答案",
		Confidence: 70,
		Keywords:   []string{"退款", "申请"},
	}
	merged := s.MergeFaqs(9, "如何申请退款", "既有答案", 90, []string{"退款", "订单"}, candidate)

	if merged.Answer != "既有答案" || merged.Question != "如何申请退款" {
		t.Errorf("应保留高置信度一方的问答: %+v", merged)
	}
	if merged.Confidence != 90 {
		t.Errorf("合并置信度应取较高者: %d", merged.Confidence)
	}
	if merged.GenerationMethod != enum.GenerationMerged {
		t.Errorf("合并条目的生成方式应为merged: %s", merged.GenerationMethod)
	}

	want := []string{"退款", "申请", "订单"}
	if len(merged.Keywords) != len(want) {
		t.Fatalf("关键词并集错误: %v", merged.Keywords)
	}
	for i, kw := range want {
		if merged.Keywords[i] != kw {
			t.Errorf("关键词顺序错误: got %v, want %v", merged.Keywords, want)
		}
	}

	if len(merged.MergedFrom) != 1 || merged.MergedFrom[0] != 9 {
		t.Errorf("合并来源应记录既有条目id: %v", merged.MergedFrom)
	}
}

// TestGenerateBatch 单条失败不影响其余条目
func TestGenerateBatch(t *testing.T) {
	normalizer := NewNormalizerService()
	s := NewGeneratorService(logrus.New(), newFakeFaqStore(), NewSimilarityService(normalizer), nil)

	items := []dto.NormalizedData{
		*testNormalized(80),
		{ExtractedData: dto.ExtractedData{Id: "bad-1", Question: "  "}},
	}
	result := s.GenerateBatch(context.Background(), items, nil, dto.FaqGenerationOptions{})

	if len(result.Successful) != 1 {
		t.Errorf("应有1条成功: got %d", len(result.Successful))
	}
	if len(result.Failed) != 1 || result.Failed[0].DataId != "bad-1" {
		t.Errorf("失败记录错误: %+v", result.Failed)
	}
}

// TestFindRelevantPatterns 按关键词重合度排序并截断
func TestFindRelevantPatterns(t *testing.T) {
	s := NewGeneratorService(logrus.New(), newFakeFaqStore(), &fakeSimilarity{}, nil)

	data := testNormalized(80)
	patterns := []*dto.LearningPattern{
		{PatternHash: "p1", Keywords: []string{"无关"}},
		{PatternHash: "p2", Keywords: []string{"退款"}},
		{PatternHash: "p3", Keywords: []string{"退款", "订单"}},
	}

	relevant := s.FindRelevantPatterns(data, patterns)
	if len(relevant) != 2 {
		t.Fatalf("应命中2个相关模式: got %d", len(relevant))
	}
	if relevant[0].PatternHash != "p3" {
		t.Errorf("重合度最高的模式应排在首位: %s", relevant[0].PatternHash)
	}
}

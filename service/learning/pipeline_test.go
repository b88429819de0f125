package learning

import (
	"context"
	"errors"
	"testing"
	"time"

	"gitee.com/taoJie_1/faq-agent/model/config"
	"gitee.com/taoJie_1/faq-agent/model/db"
	"gitee.com/taoJie_1/faq-agent/model/dto"
	"gitee.com/taoJie_1/faq-agent/model/enum"
	"github.com/sirupsen/logrus"
)

func newTestPipeline(store *fakeInteractionStore, faqStore *fakeFaqStore, cfgFn func() config.Learning) PipelineService {
	log := logrus.New()
	normalizer := NewNormalizerService()
	similarity := NewSimilarityService(normalizer)
	chatExtractor := NewChatExtractorService(log, store, normalizer)
	ticketExtractor := NewTicketExtractorService(log, store, normalizer)
	recognizer := NewRecognizerService(log, newFakePatternStore(), normalizer, similarity, cfgFn)
	confidence := NewConfidenceService(cfgFn)
	generator := NewGeneratorService(log, faqStore, similarity, nil)
	return NewPipelineService(log, chatExtractor, ticketExtractor, normalizer, recognizer, generator, confidence, faqStore, cfgFn, time.UTC)
}

func pipelineQaThread(sessionId, question, answer string) dto.ChatThread {
	return chatThread(sessionId, []db.ChatMessages{
		{SessionId: sessionId, Role: "user", Content: question, SentAt: 1},
		{SessionId: sessionId, Role: "agent", Content: answer, SentAt: 2},
	})
}

func pipelineChatThreads() []dto.ChatThread {
	return []dto.ChatThread{
		pipelineQaThread("p1", "我想申请这笔订单的退款，需要提供哪些资料呢？", "请在订单详情页点击申请退款，上传购买凭证后提交，我们会在一个工作日内审核。"),
		pipelineQaThread("p2", "登录的时候一直提示网络错误，是什么原因造成的？", "请先检查网络连接，然后清除缓存后重新打开应用登录重试。"),
	}
}

// TestPipelineRun 正常跑完一轮: 提取、识别、生成全部生效
func TestPipelineRun(t *testing.T) {
	store := &fakeInteractionStore{chats: pipelineChatThreads()}
	faqStore := newFakeFaqStore()
	cfgFn := func() config.Learning {
		return config.Learning{
			MinConfidence:        30,
			DailyProcessingLimit: 100,
			BatchSize:            10,
			MaxConcurrency:       2,
		}
	}
	s := newTestPipeline(store, faqStore, cfgFn)

	result, err := s.Run(context.Background(), &dto.ExtractionCriteria{})
	if err != nil {
		t.Fatalf("Run失败: %v", err)
	}
	if result.Status != enum.RunCompleted {
		t.Errorf("状态应为completed: %s, errors: %v", result.Status, result.Errors)
	}
	if result.ProcessedItems != 2 {
		t.Errorf("应处理2条: got %d", result.ProcessedItems)
	}
	if result.UpdatedPatterns == 0 {
		t.Error("应更新至少1个模式")
	}
	if result.NewFaqs != len(faqStore.persisted) {
		t.Errorf("NewFaqs(%d)与入库数(%d)不一致", result.NewFaqs, len(faqStore.persisted))
	}
	if result.NewFaqs == 0 {
		t.Error("低阈值下应产出FAQ")
	}

	status := s.GetPipelineStatus()
	if status.IsProcessing {
		t.Error("运行结束后不应处于处理中状态")
	}
	if status.DailyProcessingCount != 2 {
		t.Errorf("当日处理计数应为2: got %d", status.DailyProcessingCount)
	}
	if status.LastRun == nil {
		t.Error("应记录最近一次运行结果")
	}
}

// TestPipelineQuota 超出每日配额时截断并标记partial
func TestPipelineQuota(t *testing.T) {
	store := &fakeInteractionStore{chats: pipelineChatThreads()}
	cfgFn := func() config.Learning {
		return config.Learning{
			MinConfidence:        30,
			DailyProcessingLimit: 1,
			BatchSize:            10,
			MaxConcurrency:       2,
		}
	}
	s := newTestPipeline(store, newFakeFaqStore(), cfgFn)

	result, err := s.Run(context.Background(), &dto.ExtractionCriteria{})
	if err != nil {
		t.Fatalf("Run失败: %v", err)
	}
	if result.Status != enum.RunPartial {
		t.Errorf("超配额应为partial: %s", result.Status)
	}
	if result.ProcessedItems != 1 {
		t.Errorf("应只处理配额内的1条: got %d", result.ProcessedItems)
	}
}

// TestPipelineMinConfidenceFilter 低于最小置信度的候选在清洗阶段被过滤
func TestPipelineMinConfidenceFilter(t *testing.T) {
	store := &fakeInteractionStore{chats: pipelineChatThreads()}
	cfgFn := func() config.Learning {
		return config.Learning{
			MinConfidence:        99,
			DailyProcessingLimit: 100,
		}
	}
	faqStore := newFakeFaqStore()
	s := newTestPipeline(store, faqStore, cfgFn)

	result, err := s.Run(context.Background(), &dto.ExtractionCriteria{})
	if err != nil {
		t.Fatalf("Run失败: %v", err)
	}
	if result.ProcessedItems != 0 {
		t.Errorf("高阈值下不应有候选通过: got %d", result.ProcessedItems)
	}
	if len(faqStore.persisted) != 0 {
		t.Errorf("不应有FAQ入库: got %d", len(faqStore.persisted))
	}
}

// TestPipelineBusy 管道运行期间的重入请求应被拒绝
func TestPipelineBusy(t *testing.T) {
	s := newTestPipeline(&fakeInteractionStore{}, newFakeFaqStore(), testLearningConfig())

	inner := s.(*pipelineService)
	if err := inner.acquire(); err != nil {
		t.Fatalf("首次获取不应失败: %v", err)
	}
	defer inner.release()

	if _, err := s.Run(context.Background(), &dto.ExtractionCriteria{}); !errors.Is(err, ErrPipelineBusy) {
		t.Errorf("重入应返回ErrPipelineBusy: got %v", err)
	}
	if _, err := s.ProcessRealTimeData(context.Background(), enum.SourceChat, "s1"); !errors.Is(err, ErrPipelineBusy) {
		t.Errorf("增量入口同样应被拒绝: got %v", err)
	}
}

// TestPipelineRealTimeUnknownSource 不支持的数据源类型直接失败
func TestPipelineRealTimeUnknownSource(t *testing.T) {
	s := newTestPipeline(&fakeInteractionStore{}, newFakeFaqStore(), testLearningConfig())

	result, err := s.ProcessRealTimeData(context.Background(), enum.SourceType("bogus"), "x1")
	if err == nil {
		t.Fatal("未知数据源应报错")
	}
	if result.Status != enum.RunFailed {
		t.Errorf("状态应为failed: %s", result.Status)
	}
}

// TestPipelineSetNextScheduledRun 定时任务写入的计划时间可从状态读回
func TestPipelineSetNextScheduledRun(t *testing.T) {
	s := newTestPipeline(&fakeInteractionStore{}, newFakeFaqStore(), testLearningConfig())

	s.SetNextScheduledRun(1800000000)
	if got := s.GetPipelineStatus().NextScheduledRun; got != 1800000000 {
		t.Errorf("计划时间读回错误: %d", got)
	}
}

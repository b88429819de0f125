package learning

import (
	"context"
	"testing"

	"gitee.com/taoJie_1/faq-agent/model/db"
	"gitee.com/taoJie_1/faq-agent/model/dto"
	"github.com/sirupsen/logrus"
)

// fakeInteractionStore 内存交互数据源
type fakeInteractionStore struct {
	chats   []dto.ChatThread
	tickets []dto.TicketThread
}

func (f *fakeInteractionStore) QueryClosedChats(ctx context.Context, criteria *dto.ExtractionCriteria) ([]dto.ChatThread, error) {
	return f.chats, nil
}

func (f *fakeInteractionStore) QueryChatBySessionId(ctx context.Context, sessionId string) (*dto.ChatThread, error) {
	for i := range f.chats {
		if f.chats[i].Session.SessionId == sessionId {
			return &f.chats[i], nil
		}
	}
	return nil, nil
}

func (f *fakeInteractionStore) QueryResolvedTickets(ctx context.Context, criteria *dto.ExtractionCriteria) ([]dto.TicketThread, error) {
	return f.tickets, nil
}

func (f *fakeInteractionStore) QueryTicketByTicketId(ctx context.Context, ticketId string) (*dto.TicketThread, error) {
	for i := range f.tickets {
		if f.tickets[i].Ticket.TicketId == ticketId {
			return &f.tickets[i], nil
		}
	}
	return nil, nil
}

func chatThread(sessionId string, messages []db.ChatMessages) dto.ChatThread {
	return dto.ChatThread{
		Session: db.ChatSessions{
			SessionId:       sessionId,
			Status:          "closed",
			DurationSeconds: 300,
			ClosedAt:        1700000000,
		},
		Messages: messages,
	}
}

// TestChatExtract 有效提问与其后最近的客服回复配对
func TestChatExtract(t *testing.T) {
	store := &fakeInteractionStore{chats: []dto.ChatThread{
		chatThread("s1", []db.ChatMessages{
			{SessionId: "s1", Role: "user", Content: "你好", SentAt: 1},
			{SessionId: "s1", Role: "user", Content: "我无法登录我的账户，一直提示密码错误，该怎么办？", SentAt: 2},
			{SessionId: "s1", Role: "agent", Content: "好的", SentAt: 3},
			{SessionId: "s1", Role: "agent", Content: "您可以点击登录页的忘记密码链接，按提示重置密码即可。", SentAt: 4},
		}),
	}}
	s := NewChatExtractorService(logrus.New(), store, NewNormalizerService())

	result, err := s.Extract(context.Background(), &dto.ExtractionCriteria{})
	if err != nil {
		t.Fatalf("Extract失败: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("应提取到1个问答对: got %d", len(result))
	}

	pair := result[0]
	if pair.SourceId != "s1" {
		t.Errorf("来源id错误: %s", pair.SourceId)
	}
	if pair.Question == "" || pair.Answer == "" {
		t.Error("问答内容不应为空")
	}
	// 过短的"好的"不应被选为答案
	if pair.Answer == "好的" {
		t.Error("过短回复不应成为答案")
	}
	if pair.Confidence < 0 || pair.Confidence > 100 {
		t.Errorf("提取置信度超出[0,100]: %d", pair.Confidence)
	}
}

// TestChatExtractGreetingOnly 只有寒暄的会话不应产出问答对
func TestChatExtractGreetingOnly(t *testing.T) {
	store := &fakeInteractionStore{chats: []dto.ChatThread{
		chatThread("s2", []db.ChatMessages{
			{SessionId: "s2", Role: "user", Content: "你好", SentAt: 1},
			{SessionId: "s2", Role: "agent", Content: "您好，请问有什么可以帮您？", SentAt: 2},
			{SessionId: "s2", Role: "user", Content: "谢谢", SentAt: 3},
		}),
	}}
	s := NewChatExtractorService(logrus.New(), store, NewNormalizerService())

	result, err := s.Extract(context.Background(), &dto.ExtractionCriteria{})
	if err != nil {
		t.Fatalf("Extract失败: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("寒暄会话不应产出问答对: got %d", len(result))
	}
}

// TestChatExtractHelpfulBoost 用户标记有用的AI回复置信度更高
func TestChatExtractHelpfulBoost(t *testing.T) {
	helpful := 1
	aiConf := 0.9
	question := "我想修改绑定的手机号码，应该在哪里操作呢？"
	answer := "请进入账户设置页面，选择安全选项后点击修改手机号，按提示完成验证。"

	plain := chatThread("s3", []db.ChatMessages{
		{SessionId: "s3", Role: "user", Content: question, SentAt: 1},
		{SessionId: "s3", Role: "agent", Content: answer, SentAt: 2},
	})
	boosted := chatThread("s4", []db.ChatMessages{
		{SessionId: "s4", Role: "user", Content: question, SentAt: 1},
		{SessionId: "s4", Role: "ai", Content: answer, SentAt: 2, AiConfidence: &aiConf, Helpful: &helpful},
	})

	store := &fakeInteractionStore{chats: []dto.ChatThread{plain, boosted}}
	s := NewChatExtractorService(logrus.New(), store, NewNormalizerService())

	result, err := s.Extract(context.Background(), &dto.ExtractionCriteria{})
	if err != nil {
		t.Fatalf("Extract失败: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("应提取到2个问答对: got %d", len(result))
	}
	if result[1].Confidence <= result[0].Confidence {
		t.Errorf("有用标记与AI置信度应提高分数: %d vs %d", result[1].Confidence, result[0].Confidence)
	}
}

// TestChatExtractOneMissing 未找到会话时返回空结果且无错误
func TestChatExtractOneMissing(t *testing.T) {
	s := NewChatExtractorService(logrus.New(), &fakeInteractionStore{}, NewNormalizerService())

	result, err := s.ExtractOne(context.Background(), "nope")
	if err != nil {
		t.Fatalf("ExtractOne不应报错: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("未找到会话应返回空: got %d", len(result))
	}
}

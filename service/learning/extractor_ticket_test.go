package learning

import (
	"context"
	"strings"
	"testing"

	"gitee.com/taoJie_1/faq-agent/model/db"
	"gitee.com/taoJie_1/faq-agent/model/dto"
	"github.com/sirupsen/logrus"
)

func ticketThread(ticketId string, messages []db.TicketMessages) dto.TicketThread {
	return dto.TicketThread{
		Ticket: db.Tickets{
			TicketId:          ticketId,
			Subject:           "无法收到验证码",
			Description:       "手机号换了之后一直收不到短信验证码。之前都是正常的。",
			Status:            "resolved",
			AssignedAgent:     "agent-01",
			ResolutionSeconds: 1800,
			ResolvedAt:        1700000000,
		},
		Messages: messages,
	}
}

// TestTicketExtract 问题取标题+描述首句, 答案取得分最高的客服消息
func TestTicketExtract(t *testing.T) {
	solution := "请先在账户设置中更新绑定手机号，然后重新获取验证码，如果仍未收到请尝试检查短信拦截设置。"
	store := &fakeInteractionStore{tickets: []dto.TicketThread{
		ticketThread("t1", []db.TicketMessages{
			{TicketId: "t1", Role: "user", Content: "麻烦尽快处理一下，谢谢。", SentAt: 1},
			{TicketId: "t1", Role: "agent", Content: "收到，我们正在排查您的问题，请稍候。", SentAt: 2},
			{TicketId: "t1", Role: "agent", Content: solution, SentAt: 3},
		}),
	}}
	s := NewTicketExtractorService(logrus.New(), store, NewNormalizerService())

	result, err := s.Extract(context.Background(), &dto.ExtractionCriteria{})
	if err != nil {
		t.Fatalf("Extract失败: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("应提取到1个问答对: got %d", len(result))
	}

	pair := result[0]
	if pair.Answer != solution {
		t.Errorf("应选中含解决方案特征词的靠后回复: %q", pair.Answer)
	}
	if !strings.HasPrefix(pair.Question, "无法收到验证码") {
		t.Errorf("问题应以工单标题开头: %q", pair.Question)
	}
	if strings.Contains(pair.Question, "之前都是正常的") {
		t.Errorf("问题只应包含描述首句: %q", pair.Question)
	}
	if pair.Context == "" {
		t.Error("工单描述应作为补充上下文保留")
	}
}

// TestTicketExtractNoAgentAnswer 没有合格客服回复的工单应被跳过
func TestTicketExtractNoAgentAnswer(t *testing.T) {
	store := &fakeInteractionStore{tickets: []dto.TicketThread{
		ticketThread("t2", []db.TicketMessages{
			{TicketId: "t2", Role: "user", Content: "到底什么时候能修好？", SentAt: 1},
			{TicketId: "t2", Role: "agent", Content: "在看了", SentAt: 2},
		}),
	}}
	s := NewTicketExtractorService(logrus.New(), store, NewNormalizerService())

	result, err := s.Extract(context.Background(), &dto.ExtractionCriteria{})
	if err != nil {
		t.Fatalf("Extract失败: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("无合格回复的工单不应产出问答对: got %d", len(result))
	}
}

// TestTicketExtractOneMissing 未找到工单时返回空结果且无错误
func TestTicketExtractOneMissing(t *testing.T) {
	s := NewTicketExtractorService(logrus.New(), &fakeInteractionStore{}, NewNormalizerService())

	result, err := s.ExtractOne(context.Background(), "nope")
	if err != nil {
		t.Fatalf("ExtractOne不应报错: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("未找到工单应返回空: got %d", len(result))
	}
}

package learning

import (
	"strings"
	"testing"

	"gitee.com/taoJie_1/faq-agent/model/dto"
	"gitee.com/taoJie_1/faq-agent/model/enum"
)

// TestClean 验证清洗会去掉HTML标签并把URL/邮箱/电话替换为占位符
func TestClean(t *testing.T) {
	s := NewNormalizerService()

	got := s.Clean("<b>请访问</b> https://example.com 或发邮件到 help@example.com")
	if strings.Contains(got, "<b>") {
		t.Errorf("清洗结果不应包含HTML标签: %s", got)
	}
	if !strings.Contains(got, "URL") {
		t.Errorf("URL应被替换为占位符: %s", got)
	}
	if !strings.Contains(got, "EMAIL") {
		t.Errorf("邮箱应被替换为占位符: %s", got)
	}
	if strings.Contains(got, "  ") {
		t.Errorf("清洗结果不应包含连续空白: %q", got)
	}
}

// TestCanonicalize 验证规范化会统一大小写并去掉标点
func TestCanonicalize(t *testing.T) {
	s := NewNormalizerService()

	got := s.Canonicalize("How do I reset my PASSWORD?!")
	want := "how do i reset my password"
	if got != want {
		t.Errorf("规范化结果错误: got %q, want %q", got, want)
	}

	// 同义变体规范化后应一致
	if s.Canonicalize("Reset Password.") != s.Canonicalize("reset password") {
		t.Error("仅标点与大小写不同的文本规范化后应一致")
	}
}

// TestExtractKeywords 验证多词词组得分加倍后排在一元词前面
func TestExtractKeywords(t *testing.T) {
	s := NewNormalizerService()

	keywords := s.ExtractKeywords("reset password reset password")
	if len(keywords) == 0 {
		t.Fatal("应提取到关键词")
	}
	if keywords[0] != "reset password" {
		t.Errorf("高频多词词组应排在首位: got %q", keywords[0])
	}

	// 纯数字与停用词不应出现
	keywords = s.ExtractKeywords("the 12345 billing invoice")
	for _, kw := range keywords {
		if kw == "the" || kw == "12345" {
			t.Errorf("停用词或纯数字不应成为关键词: %q", kw)
		}
	}
}

// TestExtractKeywordsLimit 验证关键词数量上限
func TestExtractKeywordsLimit(t *testing.T) {
	s := NewNormalizerService()

	text := "alpha bravo charlie delta echo foxtrot golf hotel india juliett kilo lima mike november oscar papa quebec romeo sierra tango"
	keywords := s.ExtractKeywords(text)
	if len(keywords) > 15 {
		t.Errorf("关键词数量不应超过15: got %d", len(keywords))
	}
}

// TestNormalizeHeavyCleaningPenalty 验证清洗丢失过多内容时下调置信度
func TestNormalizeHeavyCleaningPenalty(t *testing.T) {
	s := NewNormalizerService()

	data := &dto.ExtractedData{
		Id:          "chat-s1-0",
		SourceType:  enum.SourceChat,
		SourceId:    "s1",
		Question:    "我无法登录我的账户该怎么办",
		Answer:      "<div><span><strong></strong></span></div><p></p>short answer here.",
		Confidence:  60,
		ExtractedAt: 1700000000,
	}

	got := s.Normalize(data)
	if got == nil {
		t.Fatal("Normalize不应返回nil")
	}
	if got.Confidence != 55 {
		t.Errorf("清洗丢失超三成内容应扣5分: got %d", got.Confidence)
	}

	found := false
	for _, step := range got.ProcessingSteps {
		if step == "confidence_penalty_heavy_cleaning" {
			found = true
		}
	}
	if !found {
		t.Errorf("处理审计应记录扣分步骤: %v", got.ProcessingSteps)
	}
}

// TestNormalizeNil 验证nil输入返回nil
func TestNormalizeNil(t *testing.T) {
	s := NewNormalizerService()
	if s.Normalize(nil) != nil {
		t.Error("nil输入应返回nil")
	}
}

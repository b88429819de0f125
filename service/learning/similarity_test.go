package learning

import (
	"math"
	"testing"
)

// TestSimilarityIdentical 完全相同的文本相似度为1, 包括空串
func TestSimilarityIdentical(t *testing.T) {
	s := NewSimilarityService(NewNormalizerService())

	if got := s.Similarity("怎么重置密码", "怎么重置密码"); got != 1 {
		t.Errorf("相同文本相似度应为1: got %v", got)
	}
	if got := s.Similarity("", ""); got != 1 {
		t.Errorf("双空串相似度应为1: got %v", got)
	}
	// 仅大小写与标点不同, 规范化后一致
	if got := s.Similarity("Reset Password!", "reset password"); got != 1 {
		t.Errorf("规范化后一致的文本相似度应为1: got %v", got)
	}
}

// TestSimilaritySymmetric 相似度满足对称性
func TestSimilaritySymmetric(t *testing.T) {
	s := NewSimilarityService(NewNormalizerService())

	a := "how do i reset my password"
	b := "how can i change my password"
	if math.Abs(s.Similarity(a, b)-s.Similarity(b, a)) > 1e-9 {
		t.Error("相似度应满足 sim(a,b) == sim(b,a)")
	}
}

// TestSimilarityRange 相似度始终落在[0,1]区间
func TestSimilarityRange(t *testing.T) {
	s := NewSimilarityService(NewNormalizerService())

	pairs := [][2]string{
		{"如何申请退款", "登录报错怎么办"},
		{"password reset", "billing invoice refund"},
		{"a", ""},
		{"相同的问题", "相同的问题但多了几个字"},
	}
	for _, p := range pairs {
		got := s.Similarity(p[0], p[1])
		if got < 0 || got > 1 {
			t.Errorf("sim(%q, %q) = %v, 超出[0,1]", p[0], p[1], got)
		}
	}
}

// TestSimilarityOrdering 近似问题的相似度应高于无关问题
func TestSimilarityOrdering(t *testing.T) {
	s := NewSimilarityService(NewNormalizerService())

	base := "how do i reset my password"
	near := s.Similarity(base, "how do i reset my login password")
	far := s.Similarity(base, "where is my billing invoice")
	if near <= far {
		t.Errorf("近似问题相似度(%v)应高于无关问题(%v)", near, far)
	}
}

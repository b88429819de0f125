package learning

import (
	"math"
	"strings"
)

// SimilarityService 词法相似度计算
// 三个子指标按 40/40/20 固定权重混合, 聚类与去重阈值均以此为准
type SimilarityService interface {
	// Similarity 返回[0,1]区间的对称相似度
	Similarity(a, b string) float64
}

type similarityService struct {
	normalizer NormalizerService
}

// NewSimilarityService 创建 SimilarityService 实例。
func NewSimilarityService(normalizer NormalizerService) SimilarityService {
	return &similarityService{normalizer: normalizer}
}

func (s *similarityService) Similarity(a, b string) float64 {
	na := s.normalizer.Canonicalize(a)
	nb := s.normalizer.Canonicalize(b)

	// 规范化后完全一致(包括双空串)直接视为相同
	if na == nb {
		return 1
	}

	jaccard := jaccardSimilarity(na, nb)
	cosine := cosineSimilarity(na, nb)
	levenshtein := levenshteinSimilarity(na, nb)

	return 0.4*jaccard + 0.4*cosine + 0.2*levenshtein
}

// jaccardSimilarity 空格分词集合的交并比
func jaccardSimilarity(a, b string) float64 {
	setA := make(map[string]struct{})
	for _, t := range strings.Fields(a) {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{})
	for _, t := range strings.Fields(b) {
		setB[t] = struct{}{}
	}

	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}

	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// cosineSimilarity 词频向量夹角余弦, 任一向量模为0时返回0
func cosineSimilarity(a, b string) float64 {
	freqA := termFrequency(a)
	freqB := termFrequency(b)

	var dot, magA, magB float64
	for t, ca := range freqA {
		magA += float64(ca * ca)
		if cb, ok := freqB[t]; ok {
			dot += float64(ca * cb)
		}
	}
	for _, cb := range freqB {
		magB += float64(cb * cb)
	}

	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

func termFrequency(text string) map[string]int {
	freq := make(map[string]int)
	for _, t := range strings.Fields(text) {
		freq[t]++
	}
	return freq
}

// levenshteinSimilarity 1 - 编辑距离/最大长度, 双空串为1
func levenshteinSimilarity(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshteinDistance(ra, rb))/float64(maxLen)
}

// levenshteinDistance 双行DP求编辑距离
func levenshteinDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost

			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

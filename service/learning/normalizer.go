package learning

import (
	"regexp"
	"sort"
	"strings"

	"gitee.com/taoJie_1/faq-agent/model/dto"
)

// NormalizerService 文本清洗与关键词提取, 全部为纯函数, 无副作用
type NormalizerService interface {
	// Clean 清洗原始文本: 去HTML标签, 替换URL/邮箱/电话为占位符, 压缩空白
	Clean(text string) string
	// Canonicalize 规范化文本用于哈希与相似度: 小写, 去非词字符, 压缩空白
	Canonicalize(text string) string
	// ExtractKeywords 提取按得分排序的关键词(一元词+二三元词组)
	ExtractKeywords(text string) []string
	// Normalize 清洗整条候选问答对, 并记录处理审计
	Normalize(data *dto.ExtractedData) *dto.NormalizedData
}

type normalizerService struct{}

// NewNormalizerService 创建 NormalizerService 实例。
func NewNormalizerService() NormalizerService {
	return &normalizerService{}
}

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]*>`)
	urlRe        = regexp.MustCompile(`(?i)\bhttps?://\S+|\bwww\.\S+`)
	emailRe      = regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.-]+`)
	phoneRe      = regexp.MustCompile(`\+?\d[\d\s-]{7,}\d`)
	nonWordRe    = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	numericRe    = regexp.MustCompile(`^\d+$`)
)

// 停用词表, 命中的词不参与关键词统计
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "may": {}, "might": {}, "must": {}, "can": {},
	"this": {}, "that": {}, "these": {}, "those": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {},
	"what": {}, "which": {}, "who": {}, "when": {}, "where": {}, "why": {}, "how": {},
	"的": {}, "了": {}, "是": {}, "我": {}, "你": {}, "吗": {}, "呢": {}, "啊": {}, "请": {},
}

func (s *normalizerService) Clean(text string) string {
	text = htmlTagRe.ReplaceAllString(text, " ")
	text = urlRe.ReplaceAllString(text, " URL ")
	text = emailRe.ReplaceAllString(text, " EMAIL ")
	text = phoneRe.ReplaceAllString(text, " PHONE ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func (s *normalizerService) Canonicalize(text string) string {
	text = strings.ToLower(s.Clean(text))
	text = nonWordRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// keywordCandidate 关键词候选项, order记录首次出现位置用于稳定排序
type keywordCandidate struct {
	term  string
	count int
	score float64
	order int
}

func (s *normalizerService) ExtractKeywords(text string) []string {
	tokens := s.tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	totalTokens := len(tokens)

	candidates := make(map[string]*keywordCandidate)
	order := 0
	record := func(term string) {
		if c, ok := candidates[term]; ok {
			c.count++
			return
		}
		candidates[term] = &keywordCandidate{term: term, count: 1, order: order}
		order++
	}

	// 一元词频次
	for _, tok := range tokens {
		record(tok)
	}

	// 二元与三元词组, 拼接长度需大于5
	for n := 2; n <= 3; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			term := strings.Join(tokens[i:i+n], " ")
			if len(term) > 5 {
				record(term)
			}
		}
	}

	list := make([]*keywordCandidate, 0, len(candidates))
	for _, c := range candidates {
		c.score = float64(c.count) / float64(totalTokens)
		// 多词词组更具体, 得分加倍
		if strings.Contains(c.term, " ") {
			c.score *= 2
		}
		list = append(list, c)
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].score != list[j].score {
			return list[i].score > list[j].score
		}
		return list[i].order < list[j].order
	})

	const maxKeywords = 15
	if len(list) > maxKeywords {
		list = list[:maxKeywords]
	}

	result := make([]string, 0, len(list))
	for _, c := range list {
		result = append(result, c.term)
	}
	return result
}

// tokenize 规范化后分词, 丢弃长度<=2、纯数字和停用词
func (s *normalizerService) tokenize(text string) []string {
	fields := strings.Fields(s.Canonicalize(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) <= 2 && !isCjk(f) {
			continue
		}
		if numericRe.MatchString(f) {
			continue
		}
		if _, ok := stopWords[f]; ok {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// isCjk 判断是否为中日韩文本, 这类token不按英文长度阈值过滤
func isCjk(s string) bool {
	for _, r := range s {
		if r >= 0x4E00 && r <= 0x9FFF {
			return true
		}
	}
	return false
}

func (s *normalizerService) Normalize(data *dto.ExtractedData) *dto.NormalizedData {
	if data == nil {
		return nil
	}

	result := &dto.NormalizedData{ExtractedData: *data}
	steps := make([]string, 0, 4)

	cleanedQuestion := s.Clean(data.Question)
	if cleanedQuestion != data.Question {
		steps = append(steps, "clean_question")
	}
	cleanedAnswer := s.Clean(data.Answer)
	if cleanedAnswer != data.Answer {
		steps = append(steps, "clean_answer")
	}
	result.Question = cleanedQuestion
	result.Answer = cleanedAnswer
	if data.Context != "" {
		result.Context = s.Clean(data.Context)
	}

	// 清洗丢失超过三成内容时, 适当下调置信度
	if len(data.Answer) > 0 && float64(len(cleanedAnswer)) < float64(len(data.Answer))*0.7 {
		result.Confidence -= 5
		steps = append(steps, "confidence_penalty_heavy_cleaning")
	}
	if result.Confidence < 0 {
		result.Confidence = 0
	}

	// 基于清洗后的问题重算关键词
	result.Keywords = s.ExtractKeywords(cleanedQuestion)
	steps = append(steps, "recompute_keywords")

	result.ProcessingSteps = steps
	return result
}

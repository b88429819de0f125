package enum

import (
	"strings"
	"testing"
)

// TestCategorizePromptConsistency 单元测试，用于确保分类系统提示词中
// 使用的分类标签与代码中定义的常量保持严格一致。
// 这可以防止因修改常量而忘记更新提示词导致的潜在BUG。
func TestCategorizePromptConsistency(t *testing.T) {
	prompt := string(SystemPromptCategorize)

	// 1. 定义所有需要被检查的常量值
	categories := []FaqCategory{
		CategoryAuthentication,
		CategoryBilling,
		CategoryTechnical,
		CategoryAccount,
		CategoryGeneral,
	}

	// 2. 遍历并断言每个常量的值都存在于Prompt中
	// 为了精确匹配，检查带引号的字符串，例如 "billing"
	for _, category := range categories {
		expectedSubstring := `"` + string(category) + `"`
		if !strings.Contains(prompt, expectedSubstring) {
			t.Errorf("SystemPromptCategorize应包含分类常量: %s", expectedSubstring)
		}
	}
}

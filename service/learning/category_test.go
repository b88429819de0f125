package learning

import (
	"testing"

	"gitee.com/taoJie_1/faq-agent/model/enum"
)

// TestInferCategory 关键词表分类的中英文命中与general兜底
func TestInferCategory(t *testing.T) {
	cases := []struct {
		text string
		want enum.FaqCategory
	}{
		{"I forgot my password and cannot log in", enum.CategoryAuthentication},
		{"收不到验证码怎么办", enum.CategoryAuthentication},
		{"how do i get a refund for this order", enum.CategoryBilling},
		{"支付失败但是被扣款了", enum.CategoryBilling},
		{"the app keeps crashing on startup", enum.CategoryTechnical},
		{"页面打不开一直转圈", enum.CategoryTechnical},
		{"如何注销我的账号", enum.CategoryAccount},
		{"今天天气怎么样", enum.CategoryGeneral},
	}
	for _, c := range cases {
		if got := InferCategory(c.text); got != c.want {
			t.Errorf("InferCategory(%q) = %s, want %s", c.text, got, c.want)
		}
	}
}

// TestTemplateRender 模板渲染不残留占位符
func TestTemplateRender(t *testing.T) {
	for _, tpl := range faqTemplates {
		vars := ExtractTemplateVariables("如何重置密码", "点击忘记密码链接进行重置。", []string{"密码"})
		got := renderTemplate(tpl, vars, "点击忘记密码链接进行重置。")
		if got == "" {
			t.Errorf("模板 %s 渲染结果为空", tpl.Category)
		}
		if containsPlaceholder(got) {
			t.Errorf("模板 %s 渲染后残留占位符: %q", tpl.Category, got)
		}
	}
}

func containsPlaceholder(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '{' && s[i+1] == '{' {
			return true
		}
	}
	return false
}

// TestSelectTemplateFallback 未知分类回退到general模板
func TestSelectTemplateFallback(t *testing.T) {
	tpl := selectTemplate("nonexistent")
	if tpl.Category != enum.CategoryGeneral {
		t.Errorf("未知分类应回退到general: got %s", tpl.Category)
	}
}

package learning

import (
	"strings"

	"gitee.com/taoJie_1/faq-agent/model/enum"
)

// FaqTemplate 模板回退方案, 占位符为 {{product}} {{issue}} {{action}} {{answer}}
type FaqTemplate struct {
	Category enum.FaqCategory
	Answer   string
}

var faqTemplates = []FaqTemplate{
	{enum.CategoryAuthentication, "如果您在{{product}}遇到{{issue}}, 可以尝试{{action}}。具体说明: {{answer}}"},
	{enum.CategoryBilling, "关于{{issue}}的费用问题: {{answer}} 如需进一步帮助, 请联系客服并提供订单信息。"},
	{enum.CategoryTechnical, "针对{{issue}}, 请先尝试{{action}}。详细步骤: {{answer}}"},
	{enum.CategoryAccount, "关于{{product}}账户的{{issue}}: {{answer}}"},
	{enum.CategoryGeneral, "关于{{issue}}: {{answer}}"},
}

// 变量提取词表
var (
	productWords = []string{"app", "应用", "网站", "系统", "平台", "客户端", "小程序", "account", "账户"}
	actionWords  = []string{"重置", "登录", "修改", "更新", "取消", "删除", "下载", "安装", "刷新", "重启", "reset", "login", "update", "cancel", "reinstall", "restart"}
)

// ExtractTemplateVariables 从问答文本中提取模板变量, 纯函数
func ExtractTemplateVariables(question, answer string, keywords []string) map[string]string {
	vars := map[string]string{
		"product": "系统",
		"action":  "按提示操作",
		"issue":   "该问题",
	}

	lowerQ := strings.ToLower(question)
	for _, w := range productWords {
		if strings.Contains(lowerQ, w) {
			vars["product"] = w
			break
		}
	}

	lowerAll := lowerQ + " " + strings.ToLower(answer)
	for _, w := range actionWords {
		if strings.Contains(lowerAll, w) {
			vars["action"] = w
			break
		}
	}

	if len(keywords) > 0 {
		vars["issue"] = keywords[0]
	}
	return vars
}

// selectTemplate 按分类匹配模板, 未命中时回退到general
func selectTemplate(category string) FaqTemplate {
	var general FaqTemplate
	for _, tpl := range faqTemplates {
		if string(tpl.Category) == category {
			return tpl
		}
		if tpl.Category == enum.CategoryGeneral {
			general = tpl
		}
	}
	return general
}

// renderTemplate 填充全部占位符
func renderTemplate(tpl FaqTemplate, vars map[string]string, answer string) string {
	result := tpl.Answer
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	result = strings.ReplaceAll(result, "{{answer}}", answer)
	return result
}

package learning

import (
	"strings"

	"gitee.com/taoJie_1/faq-agent/model/enum"
)

// 分类关键词表, 按表序匹配, 命中即返回
var categoryKeywords = []struct {
	category enum.FaqCategory
	keywords []string
}{
	{enum.CategoryAuthentication, []string{
		"password", "login", "log in", "sign in", "signin", "authentication", "verification code", "2fa",
		"密码", "登录", "登陆", "验证码", "身份验证",
	}},
	{enum.CategoryBilling, []string{
		"bill", "billing", "payment", "invoice", "refund", "charge", "subscription", "price",
		"支付", "退款", "发票", "账单", "扣款", "价格", "订阅",
	}},
	{enum.CategoryTechnical, []string{
		"error", "bug", "crash", "not working", "failed", "timeout", "slow",
		"报错", "错误", "故障", "崩溃", "无法", "打不开", "超时", "卡顿",
	}},
	{enum.CategoryAccount, []string{
		"account", "profile", "settings", "register", "sign up", "delete my",
		"账户", "账号", "注册", "资料", "设置", "注销",
	}},
}

// InferCategory 基于关键词表推断问题分类, 未命中时归入general
func InferCategory(text string) enum.FaqCategory {
	lower := strings.ToLower(text)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.category
			}
		}
	}
	return enum.CategoryGeneral
}

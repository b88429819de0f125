package task

import (
	"context"

	"gitee.com/taoJie_1/faq-agent/global"
)

// KbExporter 定时归档并推送已发布FAQ
// OSS与MCP均未配置时任务静默跳过
func (m *Manager) KbExporter() error {
	ctx := context.Background()

	if global.OssService != nil {
		url, err := m.kb.ExportPublished(ctx)
		if err != nil {
			global.Log.Errorf("导出FAQ快照失败: %v", err)
		} else {
			global.Log.Infof("FAQ快照已归档: %s", url)
		}
	}

	if global.McpService != nil {
		pushed, err := m.kb.SyncKnowledgeBase(ctx)
		if err != nil {
			global.Log.Errorf("同步知识库失败: %v", err)
			return nil
		}
		global.Log.Infof("已推送 %d 条FAQ到下游知识库", pushed)
	}
	return nil
}

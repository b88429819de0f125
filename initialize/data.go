package initialize

import (
	"gitee.com/taoJie_1/faq-agent/global"
	"gitee.com/taoJie_1/faq-agent/task"
)

// loadData 加载业务所需数据
func (i *Initializer) loadData(taskManager *task.Manager) {
	if err := taskManager.LoadPublishedFaqs(); err != nil {
		global.Log.Errorln("启动时加载已发布FAQ失败, 问答查询功能将不可用:", err)
	}
}

package task

import (
	"sync"
	"time"

	"gitee.com/taoJie_1/faq-agent/global"
)

var (
	learningTimer *time.Timer
	learningMutex sync.Mutex
)

// DebounceLearning 为 LearningRunner 提供防抖调用功能。
// 每次调用都会重置定时器。
func (m *Manager) DebounceLearning(delay time.Duration) {
	learningMutex.Lock()
	defer learningMutex.Unlock()

	if learningTimer != nil {
		learningTimer.Stop()
	}

	learningTimer = time.AfterFunc(delay, func() {
		global.Log.Info("触发经防抖处理的学习任务...")
		if err := m.LearningRunner(); err != nil {
			global.Log.Errorf("执行经防抖处理的学习任务失败: %v", err)
		}
	})
	global.Log.Infof("学习任务已调度在 %v 后执行", delay)
}

package task

import (
	"context"
	"errors"
	"time"

	"gitee.com/taoJie_1/faq-agent/global"
	"gitee.com/taoJie_1/faq-agent/model/dto"
	"gitee.com/taoJie_1/faq-agent/service/learning"
)

const (
	// 多实例部署时的分布式锁
	learningLockKey = "faq:learning:lock"
	learningLockTTL = 30 * time.Minute
	// 定时学习的时间窗: 最近24小时
	learningWindow = 24 * time.Hour
	// 定时学习的执行间隔, 与cron表达式保持一致
	learningInterval = time.Hour
)

// LearningRunner 定时学习任务: 处理最近一个时间窗内的交互数据
func (m *Manager) LearningRunner() error {
	ctx := context.Background()

	// 拿不到锁说明其他实例正在学习
	if global.RedisClient != nil {
		ok, err := global.RedisClient.SetNX(ctx, learningLockKey, time.Now().Unix(), learningLockTTL).Result()
		if err != nil {
			global.Log.Warnf("获取学习任务锁失败, 继续本地执行: %v", err)
		} else if !ok {
			global.Log.Info("其他实例正在执行学习任务, 本轮跳过")
			return nil
		} else {
			defer func() {
				if err := global.RedisClient.Del(ctx, learningLockKey).Err(); err != nil {
					global.Log.Warnf("释放学习任务锁失败: %v", err)
				}
			}()
		}
	}

	now := time.Now().In(global.Tz)
	criteria := &dto.ExtractionCriteria{
		StartDate: now.Add(-learningWindow).Unix(),
		EndDate:   now.Unix(),
	}

	result, err := m.pipeline.Run(ctx, criteria)
	m.pipeline.SetNextScheduledRun(now.Add(learningInterval).Unix())
	if err != nil {
		if errors.Is(err, learning.ErrPipelineBusy) {
			global.Log.Info("学习管道正在运行, 本轮定时任务跳过")
			return nil
		}
		return err
	}

	global.Log.Infof("定时学习任务完成: 处理%d条, 新增FAQ %d条, 状态%s",
		result.ProcessedItems, result.NewFaqs, result.Status)
	return nil
}

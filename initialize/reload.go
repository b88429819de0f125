package initialize

import (
	"context"
	"reflect"
	"strings"
	"time"

	"gitee.com/taoJie_1/faq-agent/global"
	"gitee.com/taoJie_1/faq-agent/model/config"
	"gitee.com/taoJie_1/faq-agent/service"
	"gitee.com/taoJie_1/faq-agent/service/learning"
	"golang.org/x/sync/errgroup"
)

// HandleConfigChange 检测配置变化并安全地、并发地重载相关服务
func (i *Initializer) HandleConfigChange(oldConfig, newConfig *config.Config) {
	i.reloadLock.Lock()
	defer i.reloadLock.Unlock()

	var restartNeeded []string

	// --- 1. 检查不可热重载的高风险配置 ---
	if !reflect.DeepEqual(oldConfig.Database, newConfig.Database) {
		restartNeeded = append(restartNeeded, "database")
	}
	if oldConfig.GinAddr != newConfig.GinAddr {
		restartNeeded = append(restartNeeded, "gin_addr")
	}
	if oldConfig.GinLogPath != newConfig.GinLogPath || oldConfig.RunLogPath != newConfig.RunLogPath {
		restartNeeded = append(restartNeeded, "log_path")
	}

	// --- 2. 并发执行可安全热重载的任务 ---
	eg, _ := errgroup.WithContext(context.Background())

	// 时区重载
	if oldConfig.Tz != newConfig.Tz {
		eg.Go(func() error {
			if err := i.InitTz(); err != nil {
				global.Log.Errorf("热重载时区失败: %v", err)
				return err
			}
			return nil
		})
	}

	// Redis客户端重载
	if !reflect.DeepEqual(oldConfig.Redis, newConfig.Redis) {
		eg.Go(func() error {
			if err := i.redisClose(); err != nil {
				global.Log.Warnf("关闭旧Redis客户端失败: %v", err)
			}
			if err := i.initRedis(); err != nil {
				global.Log.Errorf("热重载Redis客户端失败: %v", err)
				return err
			}
			return nil
		})
	}

	// LLM服务重载, 生成服务依赖LLM可用性, 需要一并重建
	if !reflect.DeepEqual(oldConfig.Llm, newConfig.Llm) {
		eg.Go(func() error {
			if err := i.initLlm(); err != nil {
				global.Log.Errorf("热重载LLM服务失败: %v", err)
				return err
			}
			service.Service.LearningServiceGroup = learning.NewServiceGroup()
			return nil
		})
	}

	// MCP服务重载
	if !reflect.DeepEqual(oldConfig.McpServers, newConfig.McpServers) {
		eg.Go(func() error {
			if global.McpService == nil {
				// 如果之前未初始化，则进行初始化
				if err := i.initMcp(); err != nil {
					global.Log.Errorf("热重载期间初始化MCP服务失败: %v", err)
					return err
				}
				return nil
			}

			oldMap := oldConfig.McpServers
			newMap := newConfig.McpServers

			for name, oldCfg := range oldMap {
				if newCfg, ok := newMap[name]; !ok {
					// 被移除
					global.McpService.RemoveClient(name)
				} else if !reflect.DeepEqual(oldCfg, newCfg) {
					// 被修改
					global.McpService.AddOrUpdateClient(name, newCfg)
				}
			}

			// 新增的
			for name, newCfg := range newMap {
				if _, ok := oldMap[name]; !ok {
					global.McpService.AddOrUpdateClient(name, newCfg)
				}
			}
			return nil
		})
	}

	// OSS 服务重载
	if !reflect.DeepEqual(oldConfig.Oss, newConfig.Oss) {
		eg.Go(func() error {
			if err := i.ossClose(); err != nil {
				global.Log.Warnf("关闭旧OSS客户端失败: %v", err)
			}
			if err := i.initOss(); err != nil {
				global.Log.Errorf("热重载OSS客户端失败: %v", err)
				return err
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		global.Log.Errorf("并发热重载过程中发生错误: %v", err)
	}

	// 学习参数走 cfgFn 实时读取, 无需重建服务
	// 阈值变更后防抖触发一轮学习, 让新参数尽快生效
	if !reflect.DeepEqual(oldConfig.Learning, newConfig.Learning) && i.taskManager != nil {
		global.Log.Info("学习参数已更新, 30秒后触发一轮学习")
		i.taskManager.DebounceLearning(30 * time.Second)
	}

	// --- 3. 如果有需要重启的变更，发出统一警告 ---
	if len(restartNeeded) > 0 {
		global.Log.Warnf("检测到存在需要 重启服务 才能生效的配置变更: [%s]。", strings.Join(restartNeeded, ", "))
	}

	global.Log.Info("配置变更处理完成")
}

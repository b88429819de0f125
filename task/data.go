package task

import (
	"context"
	"strings"

	"gitee.com/taoJie_1/faq-agent/dao"
	"gitee.com/taoJie_1/faq-agent/global"
)

// LoadPublishedFaqs 预热已发布FAQ缓存
// 优先读redis hash, 未命中时从数据库全量加载并回填
func (m *Manager) LoadPublishedFaqs() error {
	ctx := context.Background()

	if global.RedisClient != nil {
		cached, err := global.RedisClient.HGetAll(ctx, dao.PublishedFaqCacheKey).Result()
		if err == nil && len(cached) > 0 {
			global.PublishedFaqs.Lock()
			global.PublishedFaqs.Data = cached
			global.PublishedFaqs.Unlock()
			global.Log.Infof("从redis加载了 %d 条已发布FAQ", len(cached))
			return nil
		}
	}

	rows, err := dao.App.FaqDb.ListPublished(ctx)
	if err != nil {
		return err
	}

	data := make(map[string]string, len(rows))
	for i := range rows {
		key := strings.ToLower(strings.TrimSpace(rows[i].Question))
		data[key] = rows[i].Answer
	}

	global.PublishedFaqs.Lock()
	global.PublishedFaqs.Data = data
	global.PublishedFaqs.Unlock()

	// 回填redis, 供其他实例共享
	if global.RedisClient != nil && len(data) > 0 {
		if err := global.RedisClient.Del(ctx, dao.PublishedFaqCacheKey).Err(); err != nil {
			global.Log.Warnf("清理FAQ缓存失败: %v", err)
		}
		values := make([]interface{}, 0, len(data)*2)
		for k, v := range data {
			values = append(values, k, v)
		}
		if err := global.RedisClient.HSet(ctx, dao.PublishedFaqCacheKey, values...).Err(); err != nil {
			global.Log.Warnf("回填FAQ缓存失败: %v", err)
		}
	}

	global.Log.Infof("从数据库加载了 %d 条已发布FAQ", len(rows))
	return nil
}

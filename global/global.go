package global

import (
	"sync"
	"time"

	"gitee.com/taoJie_1/faq-agent/internal/llm"
	"gitee.com/taoJie_1/faq-agent/internal/mcp"
	"gitee.com/taoJie_1/faq-agent/internal/oss"
	"gitee.com/taoJie_1/faq-agent/internal/redis"
	"gitee.com/taoJie_1/faq-agent/model/config"
	"github.com/sirupsen/logrus"
)

var Version = "1.0.0"

// 全局变量
// 业务逻辑禁止修改
var (
	Config        *config.Config = new(config.Config) //指针类型, 给与其内存空间
	Log           *logrus.Logger
	Tz            *time.Location
	LlmService    llm.Service
	RedisClient   redis.Service
	McpService    mcp.Service
	OssService    oss.Service
	PublishedFaqs *PublishedFaqMap = &PublishedFaqMap{Data: make(map[string]string)}
)

// PublishedFaqMap 已发布FAQ的内存缓存, key为小写问题文本
type PublishedFaqMap struct {
	sync.RWMutex
	Data map[string]string
}

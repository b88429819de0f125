package initialize

import (
	"flag"
	"fmt"

	"gitee.com/taoJie_1/faq-agent/global"
	"gitee.com/taoJie_1/faq-agent/model/config"
	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

var (
	Conf string
	Act  string
)

func init() {
	flag.StringVar(&Conf, "c", "", "choose config file.")
	flag.StringVar(&Act, "a", "", `行为,默认为空,即启动服务; "learn": 立即执行一轮学习; "export": 导出并推送知识库;`)
}

// New 创建一个新的初始化器，并加载配置文件
func New() *Initializer {
	var configPath string
	if gin.Mode() != gin.TestMode {
		flag.Parse()
		if Conf != "" {
			configPath = Conf
		}
	}
	if configPath == "" {
		configPath = `config.yaml`
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		panic("读取配置失败[u9ij]: " + configPath + err.Error())
	}

	initializer := &Initializer{}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("配置文件变化[djiads]: ", e.Name)
		oldConfig := global.Config.DeepCopy()
		if err := v.Unmarshal(global.Config); err != nil {
			fmt.Println(err)
			return
		}
		handleConfig(global.Config)
		initializer.HandleConfigChange(oldConfig, global.Config)
	})

	if err := v.Unmarshal(global.Config); err != nil {
		panic("出错[dhfal]: " + err.Error())
	}

	handleConfig(global.Config)

	return initializer
}

// handleConfig 处理和设置配置的默认值
func handleConfig(c *config.Config) {
	if c.ProjectName == "" {
		c.ProjectName = "FAQ学习系统"
	}
	if c.GinAddr == "" {
		c.GinAddr = ":80"
	}
	if c.GinLogPath == "" {
		c.GinLogPath = "log/gin.log"
	}
	if c.RunLogPath == "" {
		c.RunLogPath = "log/run.log"
	}
	if c.Tz == "" {
		c.Tz = "Asia/Shanghai"
	}
	if len(c.Cors) == 0 {
		c.Cors = []string{"*"}
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite3"
	}
	if c.Database.SqlitePath == "" {
		c.Database.SqlitePath = "data.db"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Redis.FaqCacheTTL == 0 {
		c.Redis.FaqCacheTTL = 3600
	}
	for i := range c.Llm {
		if c.Llm[i].Timeout == 0 {
			c.Llm[i].Timeout = 10
		}
	}
	for name, mcpCfg := range c.McpServers {
		if mcpCfg.Timeout == 0 {
			mcpCfg.Timeout = 10
			c.McpServers[name] = mcpCfg
		}
	}
	handleLearningConfig(&c.Learning)
}

// handleLearningConfig 学习管道参数的默认值
func handleLearningConfig(l *config.Learning) {
	if l.MinFrequency == 0 {
		l.MinFrequency = 2
	}
	if l.MinConfidence == 0 {
		l.MinConfidence = 60
	}
	if l.SimilarityThreshold == 0 {
		l.SimilarityThreshold = 0.8
	}
	if l.MaxPatterns == 0 {
		l.MaxPatterns = 10000
	}
	if l.ClusteringThreshold == 0 {
		l.ClusteringThreshold = 0.7
	}
	if l.DailyProcessingLimit == 0 {
		l.DailyProcessingLimit = 1000
	}
	if l.BatchSize == 0 {
		l.BatchSize = 100
	}
	if l.MaxConcurrency == 0 {
		l.MaxConcurrency = 3
	}
	if l.MergeThreshold == 0 {
		l.MergeThreshold = 0.85
	}
	if l.DiscardThreshold == 0 {
		l.DiscardThreshold = 0.95
	}
	if l.LevelMedium == 0 {
		l.LevelMedium = 50
	}
	if l.LevelHigh == 0 {
		l.LevelHigh = 75
	}
	if l.LevelVeryHigh == 0 {
		l.LevelVeryHigh = 90
	}
	if l.AutoPublishThreshold == 0 {
		l.AutoPublishThreshold = 85
	}
}

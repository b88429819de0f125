package config

type Database struct {
	Type          string `json:"type" mapstructure:"type" yaml:"type"`
	SqlitePath    string `json:"sqlite_path" mapstructure:"sqlite_path" yaml:"sqlite_path"`
	MysqlHost     string `json:"mysql_host" mapstructure:"mysql_host" yaml:"mysql_host"`
	MysqlPort     string `json:"mysql_port" mapstructure:"mysql_port" yaml:"mysql_port"`
	MysqlDbname   string `json:"mysql_dbname" mapstructure:"mysql_dbname" yaml:"mysql_dbname"`
	MysqlUsername string `json:"mysql_username" mapstructure:"mysql_username" yaml:"mysql_username"`
	MysqlPassword string `json:"mysql_password" mapstructure:"mysql_password" yaml:"mysql_password"`
}

type Redis struct {
	Addr        string `json:"addr" mapstructure:"addr" yaml:"addr"`
	Password    string `json:"password" mapstructure:"password" yaml:"password"`
	DB          int64  `json:"db" mapstructure:"db" yaml:"db"`
	FaqCacheTTL int64  `json:"faq_cache_ttl" mapstructure:"faq_cache_ttl" yaml:"faq_cache_ttl"`
}

type Llm struct {
	Url         string   `json:"url" mapstructure:"url" yaml:"url"`
	Model       string   `json:"model" mapstructure:"model" yaml:"model"`
	Auth        string   `json:"auth" mapstructure:"auth" yaml:"auth"`
	Size        string   `json:"size" mapstructure:"size" yaml:"size"`
	Timeout     int64    `json:"timeout" mapstructure:"timeout" yaml:"timeout"`
	Temperature *float32 `json:"temperature" mapstructure:"temperature" yaml:"temperature"`
}

// Learning 学习管道的全部可调参数
type Learning struct {
	MinFrequency         int     `json:"min_frequency" mapstructure:"min_frequency" yaml:"min_frequency"`
	MinConfidence        int     `json:"min_confidence" mapstructure:"min_confidence" yaml:"min_confidence"`
	SimilarityThreshold  float64 `json:"similarity_threshold" mapstructure:"similarity_threshold" yaml:"similarity_threshold"`
	MaxPatterns          int     `json:"max_patterns" mapstructure:"max_patterns" yaml:"max_patterns"`
	ClusteringThreshold  float64 `json:"clustering_threshold" mapstructure:"clustering_threshold" yaml:"clustering_threshold"`
	DailyProcessingLimit int     `json:"daily_processing_limit" mapstructure:"daily_processing_limit" yaml:"daily_processing_limit"`
	BatchSize            int     `json:"batch_size" mapstructure:"batch_size" yaml:"batch_size"`
	MaxConcurrency       int     `json:"max_concurrency" mapstructure:"max_concurrency" yaml:"max_concurrency"`
	EnableAutoPublishing bool    `json:"enable_auto_publishing" mapstructure:"enable_auto_publishing" yaml:"enable_auto_publishing"`
	EnableAiGeneration   bool    `json:"enable_ai_generation" mapstructure:"enable_ai_generation" yaml:"enable_ai_generation"`
	MergeThreshold       float64 `json:"merge_threshold" mapstructure:"merge_threshold" yaml:"merge_threshold"`
	DiscardThreshold     float64 `json:"discard_threshold" mapstructure:"discard_threshold" yaml:"discard_threshold"`
	LevelMedium          int     `json:"level_medium" mapstructure:"level_medium" yaml:"level_medium"`
	LevelHigh            int     `json:"level_high" mapstructure:"level_high" yaml:"level_high"`
	LevelVeryHigh        int     `json:"level_very_high" mapstructure:"level_very_high" yaml:"level_very_high"`
	AutoPublishThreshold int     `json:"auto_publish_threshold" mapstructure:"auto_publish_threshold" yaml:"auto_publish_threshold"`
}

type Mcp struct {
	Url     string `json:"url" mapstructure:"url" yaml:"url"`
	Auth    string `json:"auth" mapstructure:"auth" yaml:"auth"`
	Timeout int64  `json:"timeout" mapstructure:"timeout" yaml:"timeout"`
}

type Oss struct {
	Endpoint        string `json:"endpoint" mapstructure:"endpoint" yaml:"endpoint"`
	Bucket          string `json:"bucket" mapstructure:"bucket" yaml:"bucket"`
	AccessKeyId     string `json:"access_key_id" mapstructure:"access_key_id" yaml:"access_key_id"`
	AccessKeySecret string `json:"access_key_secret" mapstructure:"access_key_secret" yaml:"access_key_secret"`
	StoragePath     string `json:"storage_path" mapstructure:"storage_path" yaml:"storage_path"`
	CdnDomain       string `json:"cdn_domain" mapstructure:"cdn_domain" yaml:"cdn_domain"`
}

package oss

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"gitee.com/taoJie_1/faq-agent/model/config"
	"gitee.com/taoJie_1/faq-agent/utils"
	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// Service 定义对象存储服务的接口, 用于归档FAQ快照与导出文件
type Service interface {
	// UploadSnapshot 上传一份快照内容, 返回对象键
	// name 用作文件名前缀, 内容哈希参与对象键保证幂等
	UploadSnapshot(name string, data []byte) (string, error)
	// GetURL 为给定的对象键生成可公开访问的 URL
	GetURL(objectKey string) string
	// Close 关闭底层客户端连接
	Close() error
}

type aliyunOssService struct {
	client   *oss.Client
	config   config.Oss
	location *time.Location
}

// NewClient 创建一个新的 OSS 服务客户端。
func NewClient(cfg config.Oss, location *time.Location) (Service, error) {
	// OSS SDK 的 Endpoint 不包含协议头，如果配置中包含了协议头，需要去除
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")

	client, err := oss.New(endpoint, cfg.AccessKeyId, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("创建阿里云OSS客户端失败: %w", err)
	}

	return &aliyunOssService{
		client:   client,
		config:   cfg,
		location: location,
	}, nil
}

func (s *aliyunOssService) UploadSnapshot(name string, data []byte) (string, error) {
	bucket, err := s.client.Bucket(s.config.Bucket)
	if err != nil {
		return "", fmt.Errorf("获取OSS Bucket失败: %w", err)
	}

	// 对象键带内容哈希, 同一份内容重复上传不产生新对象
	hash := utils.HashBytes(data)
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	objectKey := fmt.Sprintf("%sexports/%s/%s-%s%s",
		s.config.StoragePath,
		time.Now().In(s.location).Format("20060102"),
		base, hash[:12], ext)

	if err = bucket.PutObject(objectKey, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("上传快照到OSS失败: %w", err)
	}
	return objectKey, nil
}

func (s *aliyunOssService) GetURL(objectKey string) string {
	if s.config.CdnDomain != "" {
		cdnURL, err := url.Parse(s.config.CdnDomain)
		if err == nil {
			cdnURL.Path = strings.TrimSuffix(cdnURL.Path, "/") + "/" + strings.TrimPrefix(objectKey, "/")
			return cdnURL.String()
		}
		// 解析失败时回退到简单拼接
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(s.config.CdnDomain, "/"), strings.TrimPrefix(objectKey, "/"))
	}
	return fmt.Sprintf("https://%s.%s/%s", s.config.Bucket, s.config.Endpoint, objectKey)
}

func (s *aliyunOssService) Close() error {
	// aliyun-oss-go-sdk 客户端不需要显式关闭连接
	return nil
}

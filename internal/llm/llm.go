package llm

import (
	"context"
	"errors"
	"strings"

	"gitee.com/taoJie_1/faq-agent/model/config"
	"gitee.com/taoJie_1/faq-agent/model/enum"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// Service 封装后台文本生成任务对LLM的调用
type Service interface {
	// GetCompletion 执行一次性的文本生成任务
	GetCompletion(ctx context.Context, size enum.LlmSize, systemPrompt enum.SystemPrompt, content string, temperature ...float32) (string, error)
}

type client struct {
	log        *logrus.Logger
	llmClients map[enum.LlmSize]*openai.Client
	llmConfigs []config.Llm
}

// NewClient 创建一个新的LLM客户端实例，并通过依赖注入初始化
func NewClient(log *logrus.Logger, clients map[enum.LlmSize]*openai.Client, configs []config.Llm) Service {
	return &client{
		log:        log,
		llmClients: clients,
		llmConfigs: configs,
	}
}

// getLlmConfig 根据大小获取模型配置, 未命中时退回第一个
func (c *client) getLlmConfig(size enum.LlmSize) *config.Llm {
	for i := range c.llmConfigs {
		if enum.LlmSize(c.llmConfigs[i].Size) == size {
			return &c.llmConfigs[i]
		}
	}
	if len(c.llmConfigs) > 0 {
		return &c.llmConfigs[0]
	}
	return nil
}

// filterContent 从LLM的原始响应中剥离思考过程标签
func (c *client) filterContent(rawAnswer string) string {
	if parts := strings.SplitN(rawAnswer, "</think>", 2); len(parts) > 1 {
		return strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(rawAnswer)
}

func (c *client) GetCompletion(ctx context.Context, size enum.LlmSize, systemPrompt enum.SystemPrompt, content string, temperature ...float32) (string, error) {
	llmClient, ok := c.llmClients[size]
	if !ok {
		return "", errors.New("未找到指定大小的LLM客户端实例")
	}
	llmConfig := c.getLlmConfig(size)
	if llmConfig == nil || llmConfig.Model == "" {
		return "", errors.New("未找到指定的LLM客户端配置")
	}

	req := openai.ChatCompletionRequest{
		Model: llmConfig.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: string(systemPrompt),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: content,
			},
		},
	}

	// 优先使用传入的temperature参数，其次是配置文件中的，最后使用LLM默认值
	if len(temperature) > 0 {
		req.Temperature = temperature[0]
	} else if llmConfig.Temperature != nil {
		req.Temperature = *llmConfig.Temperature
	}

	resp, err := llmClient.CreateChatCompletion(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		c.log.Errorf("LLM API调用失败: %v", err)
		return "", errors.New("LLM服务暂不可用, 请稍后再试")
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("LLM服务返回了空结果")
	}
	return c.filterContent(resp.Choices[0].Message.Content), nil
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"gitee.com/taoJie_1/faq-agent/model/config"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
)

// Service 定义了与外部知识库MCP服务交互的接口
// 已发布的FAQ通过MCP工具同步到下游知识库
type Service interface {
	// Close 关闭所有MCP会话
	Close() error
	// AddOrUpdateClient 添加或更新一个MCP客户端配置，并执行一次性连接以发现工具
	AddOrUpdateClient(name string, cfg config.Mcp) error
	// RemoveClient 移除一个MCP客户端
	RemoveClient(name string) error
	// ClientsWithTool 返回所有提供指定工具的客户端名称
	ClientsWithTool(toolName string) []string
	// CallTool 调用指定客户端的工具, 返回文本结果
	CallTool(ctx context.Context, clientName string, toolName string, arguments json.RawMessage) (string, error)
}

type client struct {
	log         *logrus.Logger
	clients     map[string]*mcp.Client
	configs     map[string]config.Mcp
	tools       map[string]map[string]mcp.Tool
	mu          sync.RWMutex
	appVersion  string
	projectName string
}

// transportWithAuth 在每个请求中附加认证头
type transportWithAuth struct {
	http.RoundTripper
	token string
}

func (t *transportWithAuth) RoundTrip(req *http.Request) (*http.Response, error) {
	// 克隆请求以避免并发问题
	req2 := req.Clone(req.Context())
	req2.Header.Set("Authorization", "Bearer "+t.token)
	return t.RoundTripper.RoundTrip(req2)
}

// NewClient 创建并初始化一个新的MCP服务客户端
func NewClient(log *logrus.Logger, mcpConfigs map[string]config.Mcp, appVersion, projectName string) (Service, error) {
	c := &client{
		log:         log,
		clients:     make(map[string]*mcp.Client),
		configs:     make(map[string]config.Mcp),
		tools:       make(map[string]map[string]mcp.Tool),
		appVersion:  appVersion,
		projectName: projectName,
	}

	for name, cfg := range mcpConfigs {
		if err := c.AddOrUpdateClient(name, cfg); err != nil {
			// 单个客户端失败不阻塞其余客户端
			log.Errorf("初始化MCP客户端 '%s' 失败: %v", name, err)
		}
	}
	return c, nil
}

func (c *client) newTransport(cfg config.Mcp) *mcp.StreamableClientTransport {
	httpClient := &http.Client{
		Transport: &transportWithAuth{
			RoundTripper: http.DefaultTransport,
			token:        cfg.Auth,
		},
	}
	return &mcp.StreamableClientTransport{
		Endpoint:   cfg.Url,
		HTTPClient: httpClient,
	}
}

func (c *client) AddOrUpdateClient(name string, cfg config.Mcp) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clients[name] = mcp.NewClient(&mcp.Implementation{Name: c.projectName, Version: c.appVersion}, nil)
	c.configs[name] = cfg

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// 一次性连接做工具发现, 发现完成立即关闭会话
	session, err := c.clients[name].Connect(ctx, c.newTransport(cfg), nil)
	if err != nil {
		c.log.Errorf("为MCP服务 '%s' 发现工具时连接失败: %v", name, err)
		delete(c.tools, name)
		return nil
	}
	defer session.Close()

	loadedTools := make(map[string]mcp.Tool)
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			c.log.Errorf("从MCP服务 '%s' 获取工具列表时出错: %v", name, err)
			delete(c.tools, name)
			return nil
		}
		loadedTools[tool.Name] = *tool
	}

	c.tools[name] = loadedTools
	c.log.Infof("成功为MCP服务 '%s' 发现 %d 个工具", name, len(loadedTools))
	return nil
}

func (c *client) RemoveClient(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.clients, name)
	delete(c.configs, name)
	delete(c.tools, name)
	c.log.Infof("已移除MCP客户端: %s", name)
	return nil
}

func (c *client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name := range c.clients {
		delete(c.clients, name)
		delete(c.configs, name)
		delete(c.tools, name)
	}
	return nil
}

func (c *client) ClientsWithTool(toolName string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var names []string
	for clientName, clientTools := range c.tools {
		if _, ok := clientTools[toolName]; ok {
			names = append(names, clientName)
		}
	}
	return names
}

// coerceArguments 按工具schema矫正参数类型
// LLM或上游传入的字符串数字会被转换为schema要求的类型
func (c *client) coerceArguments(arguments json.RawMessage, schema *jsonschema.Schema) (json.RawMessage, error) {
	if len(arguments) == 0 || string(arguments) == "null" {
		return arguments, nil
	}

	var argsMap map[string]interface{}
	if err := json.Unmarshal(arguments, &argsMap); err != nil {
		return nil, fmt.Errorf("无法将参数解码为map: %w", err)
	}
	if schema.Properties == nil {
		return arguments, nil
	}

	for key, value := range argsMap {
		propSchema, ok := schema.Properties[key]
		if !ok {
			continue
		}
		valStr, ok := value.(string)
		if !ok {
			continue
		}
		switch propSchema.Type {
		case "integer":
			if intVal, err := strconv.ParseInt(valStr, 10, 64); err == nil {
				argsMap[key] = intVal
			}
		case "number":
			if floatVal, err := strconv.ParseFloat(valStr, 64); err == nil {
				argsMap[key] = floatVal
			}
		case "boolean":
			if boolVal, err := strconv.ParseBool(valStr); err == nil {
				argsMap[key] = boolVal
			}
		}
	}

	coerced, err := json.Marshal(argsMap)
	if err != nil {
		return nil, fmt.Errorf("无法将修正后的参数重新编码为JSON: %w", err)
	}
	return coerced, nil
}

func (c *client) CallTool(ctx context.Context, clientName string, toolName string, arguments json.RawMessage) (string, error) {
	c.mu.RLock()
	cfg, cfgOk := c.configs[clientName]
	mcpClient, clientOk := c.clients[clientName]
	clientTools, toolsOk := c.tools[clientName]
	var tool mcp.Tool
	var toolOk bool
	if toolsOk {
		tool, toolOk = clientTools[toolName]
	}
	c.mu.RUnlock()

	if !cfgOk || !clientOk {
		return "", fmt.Errorf("未找到名为 '%s' 的MCP客户端", clientName)
	}

	finalArguments := arguments
	if toolOk && tool.InputSchema != nil {
		schemaBytes, err := json.Marshal(tool.InputSchema)
		if err == nil {
			var inputSchema jsonschema.Schema
			if json.Unmarshal(schemaBytes, &inputSchema) == nil {
				if corrected, err := c.coerceArguments(arguments, &inputSchema); err == nil {
					finalArguments = corrected
				} else {
					c.log.Warnf("MCP工具 '%s' 的参数类型转换失败: %v, 使用原始参数", toolName, err)
				}
			}
		}
	}

	// 按需执行 连接-调用-关闭
	session, err := mcpClient.Connect(ctx, c.newTransport(cfg), nil)
	if err != nil {
		return "", fmt.Errorf("连接到MCP服务 '%s' 失败: %w", clientName, err)
	}
	defer session.Close()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolName,
		Arguments: finalArguments,
	})
	if err != nil {
		return "", fmt.Errorf("调用工具 '%s' 失败: %w", toolName, err)
	}

	var builder strings.Builder
	for _, content := range res.Content {
		if textContent, ok := content.(*mcp.TextContent); ok {
			builder.WriteString(textContent.Text)
		}
	}
	if res.IsError {
		return "", fmt.Errorf("工具 '%s' 执行返回错误: %s", toolName, builder.String())
	}
	return builder.String(), nil
}

// Package whatsapp WhatsApp Cloud API 模板消息发送
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Message 预订确认消息参数
type Message struct {
	To          string
	GuestName   string
	Reference   string
	PaymentLink string
}

// Result 对端响应
type Result struct {
	StatusCode int
	Body       string
}

// OK 是否为 2xx
func (r *Result) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Sender 消息发送器接口，传输失败时返回 error
type Sender interface {
	Send(ctx context.Context, endpoint string, msg Message) (*Result, error)
}

// Config 客户端配置
type Config struct {
	Token        string
	TemplateName string
	LanguageCode string
	Timeout      time.Duration
}

// Client 基于 HTTP 的发送器
type Client struct {
	httpClient   *http.Client
	token        string
	templateName string
	languageCode string
}

// NewClient 创建发送器
func NewClient(cfg Config) *Client {
	if cfg.Token == "" {
		cfg.Token = "MOCK_TOKEN"
	}
	if cfg.TemplateName == "" {
		cfg.TemplateName = "innflow_booking_confirmed"
	}
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = "en"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		token:        cfg.Token,
		templateName: cfg.TemplateName,
		languageCode: cfg.LanguageCode,
	}
}

// Payload 模板消息请求体
type Payload struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Template         Template `json:"template"`
}

// Template 模板
type Template struct {
	Name       string      `json:"name"`
	Language   Language    `json:"language"`
	Components []Component `json:"components"`
}

// Language 模板语言
type Language struct {
	Code string `json:"code"`
}

// Component 模板组件
type Component struct {
	Type       string      `json:"type"`
	Parameters []Parameter `json:"parameters"`
}

// Parameter 模板参数
type Parameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// BuildPayload 构造请求体，号码去除空白，正文参数依次为客人、预订号、支付链接
func BuildPayload(msg Message, templateName, languageCode string) Payload {
	return Payload{
		MessagingProduct: "whatsapp",
		To:               strings.Join(strings.Fields(msg.To), ""),
		Type:             "template",
		Template: Template{
			Name:     templateName,
			Language: Language{Code: languageCode},
			Components: []Component{{
				Type: "body",
				Parameters: []Parameter{
					{Type: "text", Text: msg.GuestName},
					{Type: "text", Text: msg.Reference},
					{Type: "text", Text: msg.PaymentLink},
				},
			}},
		},
	}
}

// Send 发送模板消息
func (c *Client) Send(ctx context.Context, endpoint string, msg Message) (*Result, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("webhook endpoint not configured")
	}

	body, err := json.Marshal(BuildPayload(msg, c.templateName, c.languageCode))
	if err != nil {
		return nil, fmt.Errorf("序列化消息失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Idempotency-Key", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求 WhatsApp 接口失败: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &Result{StatusCode: resp.StatusCode, Body: string(raw)}, nil
}

// MockSender 模拟发送器（用于开发/测试）
type MockSender struct {
	mu     sync.Mutex
	Sent   []MockMessage
	Status int
	Err    error
}

// MockMessage 模拟消息
type MockMessage struct {
	Endpoint string
	Message  Message
	SentAt   time.Time
}

// NewMockSender 创建模拟发送器，默认返回 200
func NewMockSender() *MockSender {
	return &MockSender{Status: http.StatusOK}
}

// Send 记录消息并返回预设结果
func (s *MockSender) Send(ctx context.Context, endpoint string, msg Message) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Sent = append(s.Sent, MockMessage{Endpoint: endpoint, Message: msg, SentAt: time.Now()})
	if s.Err != nil {
		return nil, s.Err
	}
	return &Result{StatusCode: s.Status}, nil
}

// Count 已发送条数
func (s *MockSender) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Sent)
}

// Last 最后一条消息
func (s *MockSender) Last() *MockMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Sent) == 0 {
		return nil
	}
	m := s.Sent[len(s.Sent)-1]
	return &m
}

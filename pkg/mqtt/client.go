// Package mqtt 门禁控制器 MQTT 通信
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// Config MQTT 配置
type Config struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	KeepAlive      time.Duration
	ConnectTimeout time.Duration
	AutoReconnect  bool
	QoS            byte
	Retained       bool
	Logger         *zap.Logger
}

// MessageHandler 消息处理器
type MessageHandler func(topic string, payload []byte)

// Client MQTT 客户端
type Client struct {
	config   Config
	client   paho.Client
	log      *zap.Logger
	handlers map[string]MessageHandler
	mu       sync.RWMutex
}

// NewClient 创建 MQTT 客户端
func NewClient(cfg Config) *Client {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	return &Client{
		config:   cfg,
		log:      cfg.Logger.Named("mqtt"),
		handlers: make(map[string]MessageHandler),
	}
}

// Connect 连接 Broker
func (c *Client) Connect() error {
	opts := paho.NewClientOptions()
	opts.AddBroker(c.config.Broker)
	opts.SetClientID(c.config.ClientID)
	opts.SetUsername(c.config.Username)
	opts.SetPassword(c.config.Password)
	opts.SetKeepAlive(c.config.KeepAlive)
	opts.SetAutoReconnect(c.config.AutoReconnect)
	opts.SetConnectTimeout(c.config.ConnectTimeout)
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		c.log.Warn("connection lost", zap.Error(err))
	})
	opts.SetOnConnectHandler(c.onConnect)

	c.client = paho.NewClient(opts)

	token := c.client.Connect()
	if !token.WaitTimeout(c.config.ConnectTimeout) {
		return fmt.Errorf("mqtt connect timeout: %s", c.config.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect error: %w", err)
	}

	c.log.Info("connected", zap.String("broker", c.config.Broker))
	return nil
}

// Disconnect 断开连接
func (c *Client) Disconnect() {
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(250)
		c.log.Info("disconnected")
	}
}

// IsConnected 是否已连接
func (c *Client) IsConnected() bool {
	return c.client != nil && c.client.IsConnected()
}

// Subscribe 订阅主题，重连后自动恢复
func (c *Client) Subscribe(topic string, handler MessageHandler) error {
	c.mu.Lock()
	c.handlers[topic] = handler
	c.mu.Unlock()

	token := c.client.Subscribe(topic, c.config.QoS, c.dispatch(topic))
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt subscribe error: %w", token.Error())
	}
	return nil
}

// Publish 发布消息
func (c *Client) Publish(ctx context.Context, topic string, payload interface{}) error {
	if !c.IsConnected() {
		return fmt.Errorf("mqtt not connected")
	}

	data, err := encode(payload)
	if err != nil {
		return err
	}

	token := c.client.Publish(topic, c.config.QoS, c.config.Retained, data)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
		if token.Error() != nil {
			return fmt.Errorf("mqtt publish error: %w", token.Error())
		}
		return nil
	}
}

func (c *Client) dispatch(filter string) paho.MessageHandler {
	return func(_ paho.Client, msg paho.Message) {
		c.mu.RLock()
		h, ok := c.handlers[filter]
		c.mu.RUnlock()
		if ok {
			h(msg.Topic(), msg.Payload())
		}
	}
}

// onConnect 重新订阅全部主题
func (c *Client) onConnect(client paho.Client) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for topic := range c.handlers {
		if token := client.Subscribe(topic, c.config.QoS, c.dispatch(topic)); token.Wait() && token.Error() != nil {
			c.log.Error("resubscribe failed", zap.String("topic", topic), zap.Error(token.Error()))
		}
	}
}

func encode(payload interface{}) ([]byte, error) {
	switch v := payload.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("mqtt marshal payload error: %w", err)
		}
		return data, nil
	}
}

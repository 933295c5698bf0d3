package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// 主题模板，%s 依次为前缀与房号
const (
	TopicRoomAccess = "%srooms/%s/access" // 下发入住/退房事件
	TopicRoomAck    = "%srooms/+/ack"     // 门禁控制器回执
)

// 事件类型
const (
	EventCheckIn  = "check_in"
	EventCheckOut = "check_out"
)

// AccessEvent 房间门禁事件
type AccessEvent struct {
	Type       string `json:"type"`
	RoomNumber string `json:"room_number"`
	Reference  string `json:"reference"`
	GuestName  string `json:"guest_name,omitempty"`
	ValidFrom  string `json:"valid_from,omitempty"`
	ValidUntil string `json:"valid_until,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// AckPayload 控制器回执
type AckPayload struct {
	Reference string `json:"reference"`
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
}

// Publisher 消息发布接口
type Publisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

// AccessPublisher 门禁事件发布器
type AccessPublisher struct {
	pub    Publisher
	prefix string
	now    func() time.Time
}

// NewAccessPublisher 创建门禁事件发布器
func NewAccessPublisher(pub Publisher, topicPrefix string) *AccessPublisher {
	return &AccessPublisher{pub: pub, prefix: topicPrefix, now: time.Now}
}

// AccessTopic 房间门禁主题
func AccessTopic(prefix, roomNumber string) string {
	return fmt.Sprintf(TopicRoomAccess, prefix, roomNumber)
}

// AckTopic 回执订阅主题
func AckTopic(prefix string) string {
	return fmt.Sprintf(TopicRoomAck, prefix)
}

// Publish 发布事件，返回实际使用的主题
func (p *AccessPublisher) Publish(ctx context.Context, ev AccessEvent) (string, error) {
	if ev.Type != EventCheckIn && ev.Type != EventCheckOut {
		return "", fmt.Errorf("unknown access event type: %s", ev.Type)
	}
	if ev.Timestamp == 0 {
		ev.Timestamp = p.now().Unix()
	}
	topic := AccessTopic(p.prefix, ev.RoomNumber)
	return topic, p.pub.Publish(ctx, topic, ev)
}

// ParseAck 解析回执，返回房号
func ParseAck(topic string, payload []byte) (string, *AckPayload, error) {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 || parts[len(parts)-1] != "ack" || parts[len(parts)-3] != "rooms" {
		return "", nil, fmt.Errorf("invalid ack topic: %s", topic)
	}

	var ack AckPayload
	if err := json.Unmarshal(payload, &ack); err != nil {
		return "", nil, fmt.Errorf("invalid ack payload: %w", err)
	}
	return parts[len(parts)-2], &ack, nil
}

// MockPublisher 模拟发布器（用于开发/测试）
type MockPublisher struct {
	mu       sync.Mutex
	Messages []MockMessage
	Err      error
}

// MockMessage 模拟消息
type MockMessage struct {
	Topic   string
	Payload []byte
}

// Publish 记录消息
func (m *MockPublisher) Publish(ctx context.Context, topic string, payload interface{}) error {
	if m.Err != nil {
		return m.Err
	}
	data, err := encode(payload)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, MockMessage{Topic: topic, Payload: data})
	return nil
}

// Count 已发布条数
func (m *MockPublisher) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Messages)
}

// Last 最后一条消息
func (m *MockPublisher) Last() *MockMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Messages) == 0 {
		return nil
	}
	msg := m.Messages[len(m.Messages)-1]
	return &msg
}

package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/sponsorship-backend/internal/logger"
	"github.com/ignatzorin/sponsorship-backend/internal/ws"
)

// Channel канал Redis для событий между инстансами.
const Channel = "sponsorship:events"

// Event событие для конкретного пользователя.
type Event struct {
	UserID uuid.UUID       `json:"user_id"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
}

// Publisher доставляет события подключённым пользователям.
type Publisher interface {
	Publish(ctx context.Context, userID uuid.UUID, event string, data any) error
}

// HubPublisher доставляет события только в локальный хаб.
type HubPublisher struct {
	hub *ws.Hub
}

func NewHubPublisher(hub *ws.Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) Publish(_ context.Context, userID uuid.UUID, event string, data any) error {
	return p.hub.BroadcastToUser(userID, event, data)
}

// RedisPublisher публикует события в Redis, их получают хабы всех инстансов.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client, channel: Channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, userID uuid.UUID, event string, data any) error {
	raw, err := encodeEvent(userID, event, data)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.channel, raw).Err(); err != nil {
		return fmt.Errorf("realtime: publish %s: %w", event, err)
	}
	return nil
}

// Subscribe слушает канал и пересылает события в локальный хаб до отмены контекста.
func Subscribe(ctx context.Context, client *redis.Client, hub *ws.Hub) {
	sub := client.Subscribe(ctx, Channel)
	defer sub.Close()

	log := logger.WithComponent("realtime")
	log.WithField("channel", Channel).Info("подписка на события")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := dispatch(hub, msg.Payload); err != nil {
				log.WithFields(logrus.Fields{"error": err}).Warn("некорректное событие")
			}
		}
	}
}

func encodeEvent(userID uuid.UUID, event string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("realtime: marshal data: %w", err)
	}
	raw, err := json.Marshal(Event{UserID: userID, Type: event, Data: payload})
	if err != nil {
		return nil, fmt.Errorf("realtime: marshal event: %w", err)
	}
	return raw, nil
}

func dispatch(hub *ws.Hub, payload string) error {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return fmt.Errorf("realtime: decode event: %w", err)
	}
	if ev.UserID == uuid.Nil || ev.Type == "" {
		return fmt.Errorf("realtime: event without user or type")
	}
	return hub.BroadcastToUser(ev.UserID, ev.Type, ev.Data)
}

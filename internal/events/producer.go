// Package events publishes membership change events to Kafka. Downstream
// collaborators (the real-time transport, the search indexer) consume these
// instead of talking to the membership store directly.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/Gopher0727/Concord/internal/model"
)

// Type identifies the kind of membership change.
type Type string

const (
	ServerCreated     Type = "server.created"
	ServerUpdated     Type = "server.updated"
	ServerDeleted     Type = "server.deleted"
	InviteRotated     Type = "server.invite_rotated"
	ChannelCreated    Type = "channel.created"
	MemberJoined      Type = "member.joined"
	MemberLeft        Type = "member.left"
	MemberKicked      Type = "member.kicked"
	MemberRoleChanged Type = "member.role_changed"
)

// Event is the wire payload for a membership change. Keyed by server ID so
// all events of one server land on one partition in commit order.
type Event struct {
	Type           Type             `json:"type"`
	ServerID       string           `json:"server_id"`
	ActorProfileID string           `json:"actor_profile_id"`
	TargetMemberID string           `json:"target_member_id,omitempty"`
	ChannelID      string           `json:"channel_id,omitempty"`
	Role           model.MemberRole `json:"role,omitempty"`
	At             time.Time        `json:"at"`
}

// Producer wraps a sarama sync producer for membership events.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

// NewProducer connects to the given brokers. Callers treat a nil *Producer as
// degraded mode: the engine keeps working, events are simply not emitted.
func NewProducer(brokers []string, topic string, logger *zap.Logger) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to start sarama producer: %w", err)
	}
	return &Producer{producer: producer, topic: topic, logger: logger}, nil
}

// NewProducerWithClient wraps an existing sync producer. Used by tests.
func NewProducerWithClient(sp sarama.SyncProducer, topic string, logger *zap.Logger) *Producer {
	return &Producer{producer: sp, topic: topic, logger: logger}
}

// Publish sends one event. Safe to call on a nil Producer.
func (p *Producer) Publish(event Event) error {
	if p == nil {
		return nil
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	bytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.ServerID),
		Value: sarama.ByteEncoder(bytes),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to publish membership event: %w", err)
	}

	p.logger.Debug("membership event published",
		zap.String("type", string(event.Type)),
		zap.String("server_id", event.ServerID),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

// Close shuts down the underlying producer. Safe on nil.
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.producer.Close()
}

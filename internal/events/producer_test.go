package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublish(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event Event
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.Type != MemberJoined {
			return errors.New("unexpected event type")
		}
		if event.ServerID != "server-1" {
			return errors.New("unexpected server id")
		}
		if event.At.IsZero() {
			return errors.New("event timestamp not set")
		}
		return nil
	})

	p := NewProducerWithClient(sp, "membership-events", zap.NewNop())
	err := p.Publish(Event{
		Type:           MemberJoined,
		ServerID:       "server-1",
		ActorProfileID: "p2",
		TargetMemberID: "m2",
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestPublishBrokerFailure(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageAndFail(errors.New("broker down"))

	p := NewProducerWithClient(sp, "membership-events", zap.NewNop())
	err := p.Publish(Event{Type: ServerCreated, ServerID: "server-1"})
	assert.Error(t, err)
	require.NoError(t, p.Close())
}

func TestNilProducerIsNoOp(t *testing.T) {
	var p *Producer
	assert.NoError(t, p.Publish(Event{Type: ServerDeleted, ServerID: "server-1"}))
	assert.NoError(t, p.Close())
}

package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	ctx := context.Background()

	require.NoError(t, r.Publish(ctx, TopicCart, "1", CartChanged{Type: TypeItemAdded, UserID: 1}))
	require.NoError(t, r.Publish(ctx, TopicUsers, "1", UserRegistered{Type: TypeUserRegistered, UserID: 1}))
	require.NoError(t, r.Publish(ctx, TopicCart, "1", CartChanged{Type: TypeCartCleared, UserID: 1}))

	assert.Len(t, r.Messages(), 3)
	last, ok := r.Last(TopicCart)
	require.True(t, ok)
	assert.Equal(t, TypeCartCleared, last.Event.(CartChanged).Type)

	_, ok = r.Last(TopicAnimals)
	assert.False(t, ok)

	r.Err = errors.New("broker down")
	assert.Error(t, r.Publish(ctx, TopicCart, "1", nil))
}

func TestNewKafkaPublisher_NeedsBrokers(t *testing.T) {
	_, err := NewKafkaPublisher(nil)
	assert.Error(t, err)

	p, err := NewKafkaPublisher([]string{"localhost:9092"})
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), TopicUsers, "", nil))
	assert.NoError(t, p.Close())
}

package redisstate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	projectID uint
	payload   string
}

func TestRedisSyncBus_PublishSubscribe(t *testing.T) {
	_, client := newTestClient(t)
	bus := NewRedisSyncBus(client, "sync-test:")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan received, 128)
	done := make(chan error, 1)
	go func() {
		done <- bus.Subscribe(ctx, func(projectID uint, payload []byte) {
			got <- received{projectID: projectID, payload: string(payload)}
		})
	}()

	// 订阅是异步建立的，重复发布直到收到消息
	deadline := time.After(3 * time.Second)
	var msg received
loop:
	for {
		require.NoError(t, bus.Publish(context.Background(), 42, []byte(`{"hello":"world"}`)))
		select {
		case msg = <-got:
			break loop
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("没有收到同步消息")
		}
	}
	assert.Equal(t, uint(42), msg.projectID)
	assert.Equal(t, `{"hello":"world"}`, msg.payload)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("取消后 Subscribe 应返回")
	}
}

func TestRedisSyncBus_ParseChannel(t *testing.T) {
	bus := &RedisSyncBus{keyPrefix: "px:"}

	id, err := bus.parseChannel("px:project:17:sync")
	require.NoError(t, err)
	assert.Equal(t, uint(17), id)

	_, err = bus.parseChannel("px:project:abc:sync")
	assert.Error(t, err)
}

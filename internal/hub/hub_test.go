package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collaborative-pixelart/internal/domain"
	"collaborative-pixelart/internal/dto"
	"collaborative-pixelart/internal/service"
	"collaborative-pixelart/internal/tasks"
)

type fakeCollab struct {
	mu      sync.Mutex
	version uint
	err     error
	calls   int
}

func (f *fakeCollab) ProcessIncomingEdit(_ context.Context, projectID, userID uint, peerID string, _ []byte) (*domain.Edit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	f.version++
	return &domain.Edit{ProjectID: projectID, UserID: userID, PeerID: peerID, EditType: domain.EditPaint, Version: f.version}, nil
}

type fakeCanvases struct{}

func (fakeCanvases) GetCanvasForClient(context.Context, uint) (*domain.Canvas, uint, error) {
	return domain.NewBlankCanvas(2, 2, 4), 7, nil
}

type fakePresence struct {
	mu       sync.Mutex
	peers    map[string]domain.Peer
	left     []string
	joinGate chan struct{} // 非 nil 时 Join 等待通道关闭
}

func newFakePresence() *fakePresence {
	return &fakePresence{peers: make(map[string]domain.Peer)}
}

func (f *fakePresence) Join(_ context.Context, projectID, userID uint, name string, canEdit bool) (*domain.Peer, error) {
	if f.joinGate != nil {
		<-f.joinGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := domain.Peer{ID: fmt.Sprintf("peer-%d", userID), ProjectID: projectID, UserID: userID, Name: name, CanEdit: canEdit, Connected: true}
	f.peers[p.ID] = p
	return &p, nil
}

func (f *fakePresence) Leave(_ context.Context, peer *domain.Peer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	peer.Connected = false
	f.peers[peer.ID] = *peer
	f.left = append(f.left, peer.ID)
	return nil
}

func (f *fakePresence) Touch(context.Context, *domain.Peer) error { return nil }

func (f *fakePresence) Peers(_ context.Context, projectID uint) ([]domain.Peer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Peer
	for _, p := range f.peers {
		if p.ProjectID == projectID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePresence) leftPeers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.left...)
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakePublisher) Publish(_ context.Context, _ uint, message []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, string(message))
	return nil
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.messages {
		var env dto.Envelope
		_ = json.Unmarshal([]byte(m), &env)
		out = append(out, env.Type)
	}
	return out
}

type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func (f *fakeEnqueuer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

type testHub struct {
	*Hub
	collab    *fakeCollab
	presence  *fakePresence
	publisher *fakePublisher
	enqueuer  *fakeEnqueuer
}

func startHub(t *testing.T) *testHub {
	th := &testHub{
		collab:    &fakeCollab{},
		presence:  newFakePresence(),
		publisher: &fakePublisher{},
		enqueuer:  &fakeEnqueuer{},
	}
	th.Hub = NewHub(th.collab, fakeCanvases{}, th.presence, th.publisher, th.enqueuer)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go th.Run(ctx)
	return th
}

// waitFor 读取客户端消息直到出现指定类型
func waitFor(t *testing.T, c *Client, msgType string) []byte {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case msg, ok := <-c.send:
			require.True(t, ok, "等待 %s 时通道被关闭", msgType)
			var env dto.Envelope
			require.NoError(t, json.Unmarshal(msg, &env))
			if env.Type == msgType {
				return msg
			}
		case <-timeout:
			t.Fatalf("超时：没有收到 %s 消息", msgType)
			return nil
		}
	}
}

func TestHub_RegisterSendsCanvasAndPresence(t *testing.T) {
	h := startHub(t)
	c := NewClient(h.Hub, nil, 3, 1, "ann", true)
	require.True(t, h.Register(c))

	var canvasMsg dto.CanvasMessage
	require.NoError(t, json.Unmarshal(waitFor(t, c, dto.MessageCanvas), &canvasMsg))
	assert.Equal(t, uint(7), canvasMsg.Version)
	assert.Equal(t, "peer-1", canvasMsg.PeerID)
	require.NotNil(t, canvasMsg.Canvas)
	assert.Equal(t, 2, canvasMsg.Canvas.Columns)

	var presence dto.PresenceMessage
	require.NoError(t, json.Unmarshal(waitFor(t, c, dto.MessagePresence), &presence))
	require.Len(t, presence.Peers, 1)
	assert.True(t, presence.Peers[0].IsSelf)
	assert.Equal(t, "+peer-1 (you)", presence.Peers[0].Label)

	assert.Equal(t, []uint{3}, h.GetActiveProjectIDs())
	assert.Eventually(t, func() bool {
		return len(h.publisher.types()) > 0
	}, time.Second, 10*time.Millisecond, "协作者变化应通知其他实例")
}

func TestHub_EditIsBroadcastPersistedAndPublished(t *testing.T) {
	h := startHub(t)
	a := NewClient(h.Hub, nil, 3, 1, "ann", true)
	b := NewClient(h.Hub, nil, 3, 2, "bo", true)
	require.True(t, h.Register(a))
	require.True(t, h.Register(b))
	waitFor(t, a, dto.MessageCanvas)
	waitFor(t, b, dto.MessageCanvas)

	require.True(t, h.QueueMessage(HubMessage{Type: msgEdit, ProjectID: 3, UserID: 1, Client: a, RawData: []byte(`{"type":"paint"}`)}))

	for _, c := range []*Client{a, b} {
		var msg dto.EditMessage
		require.NoError(t, json.Unmarshal(waitFor(t, c, dto.MessageEdit), &msg))
		assert.Equal(t, uint(1), msg.Edit.Version)
		assert.Equal(t, uint(1), msg.Edit.UserID)
	}

	require.Eventually(t, func() bool { return h.enqueuer.count() == 1 }, time.Second, 10*time.Millisecond)
	h.enqueuer.mu.Lock()
	task := h.enqueuer.tasks[0]
	h.enqueuer.mu.Unlock()
	assert.Equal(t, tasks.TypeEditPersistence, task.Type())

	assert.Contains(t, h.publisher.types(), dto.MessageEdit)
}

func TestHub_ReadOnlyClientCannotEdit(t *testing.T) {
	h := startHub(t)
	c := NewClient(h.Hub, nil, 3, 5, "viewer", false)
	require.True(t, h.Register(c))
	waitFor(t, c, dto.MessageCanvas)

	h.QueueMessage(HubMessage{Type: msgEdit, ProjectID: 3, UserID: 5, Client: c, RawData: []byte(`{}`)})

	var errMsg dto.ErrorDTO
	require.NoError(t, json.Unmarshal(waitFor(t, c, dto.MessageError), &errMsg))
	assert.Contains(t, errMsg.Message, "permission")
	h.collab.mu.Lock()
	assert.Equal(t, 0, h.collab.calls)
	h.collab.mu.Unlock()
}

func TestHub_RejectedEditReportsError(t *testing.T) {
	h := startHub(t)
	h.collab.err = service.ErrVersionConflict
	c := NewClient(h.Hub, nil, 3, 1, "ann", true)
	require.True(t, h.Register(c))
	waitFor(t, c, dto.MessageCanvas)

	h.QueueMessage(HubMessage{Type: msgEdit, ProjectID: 3, UserID: 1, Client: c, RawData: []byte(`{}`)})

	var errMsg dto.ErrorDTO
	require.NoError(t, json.Unmarshal(waitFor(t, c, dto.MessageError), &errMsg))
	assert.Contains(t, errMsg.Message, "retry")
}

func TestHub_DeliverRemote(t *testing.T) {
	h := startHub(t)
	c := NewClient(h.Hub, nil, 3, 1, "ann", true)
	require.True(t, h.Register(c))
	waitFor(t, c, dto.MessageCanvas)

	h.DeliverRemote(3, []byte(`{"type":"edit","edit":{"version":42}}`))
	var msg dto.EditMessage
	require.NoError(t, json.Unmarshal(waitFor(t, c, dto.MessageEdit), &msg))
	assert.Equal(t, uint(42), msg.Edit.Version)

	// 远端协作者变化时从共享存储重建列表
	_, err := h.presence.Join(context.Background(), 3, 9, "remote", false)
	require.NoError(t, err)
	h.DeliverRemote(3, []byte(`{"type":"presence","peers":null}`))
	require.Eventually(t, func() bool {
		select {
		case raw := <-c.send:
			var p dto.PresenceMessage
			return json.Unmarshal(raw, &p) == nil && len(p.Peers) == 2
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	// 没有本地客户端的工程直接忽略
	h.DeliverRemote(99, []byte(`{"type":"edit"}`))
}

func TestHub_UnregisterClosesClientAndLeaves(t *testing.T) {
	h := startHub(t)
	c := NewClient(h.Hub, nil, 3, 1, "ann", true)
	require.True(t, h.Register(c))
	waitFor(t, c, dto.MessageCanvas)

	h.QueueMessage(HubMessage{Type: msgUnregister, ProjectID: 3, UserID: 1, Client: c})

	require.Eventually(t, func() bool {
		for {
			select {
			case _, ok := <-c.send:
				if !ok {
					return true
				}
			default:
				return false
			}
		}
	}, 2*time.Second, 10*time.Millisecond, "注销后发送通道应关闭")

	assert.Empty(t, h.GetActiveProjectIDs())
	assert.Eventually(t, func() bool {
		return len(h.presence.leftPeers()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestHub_DisconnectDuringJoinMarksPeerLeft(t *testing.T) {
	h := startHub(t)
	gate := make(chan struct{})
	h.presence.joinGate = gate

	c := NewClient(h.Hub, nil, 3, 1, "ann", true)
	require.True(t, h.Register(c))
	require.Eventually(t, func() bool { return len(h.GetActiveProjectIDs()) == 1 }, time.Second, 10*time.Millisecond)

	// Join 尚未返回时连接断开
	h.QueueMessage(HubMessage{Type: msgUnregister, ProjectID: 3, UserID: 1, Client: c})
	require.Eventually(t, func() bool { return len(h.GetActiveProjectIDs()) == 0 }, time.Second, 10*time.Millisecond)
	close(gate)

	require.Eventually(t, func() bool {
		return len(h.presence.leftPeers()) == 1
	}, 2*time.Second, 10*time.Millisecond, "迟到的登记应被标记为离开")

	peers, err := h.presence.Peers(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, peers, 1)
	assert.False(t, peers[0].Connected, "断开的协作者不应显示为在线")
	assert.Nil(t, c.Peer(), "已注销的客户端不记录协作者")
}

func TestClientErrorMessage(t *testing.T) {
	assert.Equal(t, "Invalid edit", clientErrorMessage(service.ErrInvalidEdit))
	assert.Equal(t, "Internal server error", clientErrorMessage(fmt.Errorf("boom")))
}

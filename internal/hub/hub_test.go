package hub

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedSend struct {
	Event   string
	Payload any
}

type fakeConn struct {
	mu    sync.Mutex
	sends []recordedSend
}

func (c *fakeConn) Send(event string, payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sends = append(c.sends, recordedSend{Event: event, Payload: payload})
}

func (c *fakeConn) recorded() []recordedSend {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]recordedSend, len(c.sends))
	copy(out, c.sends)
	return out
}

func TestRoomNames(t *testing.T) {
	assert.Equal(t, "admins", Admins().String())
	assert.Equal(t, "courier:c1", Courier("c1").String())
	assert.Equal(t, "order:o1", OrderWatch("o1").String())
}

func TestBroadcastRoomIsolation(t *testing.T) {
	h := New(zap.NewNop())

	watcherA := &fakeConn{}
	watcherB := &fakeConn{}
	courier := &fakeConn{}

	h.Join(watcherA, OrderWatch("A"))
	h.Join(watcherB, OrderWatch("B"))
	h.Join(courier, Courier("X"))

	h.Broadcast(OrderWatch("B"), "order:updated", "payload")
	h.Broadcast(Courier("X"), "order:assigned", "payload")

	assert.Empty(t, watcherA.recorded(), "watcher of A must not see B or courier traffic")
	assert.Len(t, watcherB.recorded(), 1)
	assert.Len(t, courier.recorded(), 1)
}

func TestBroadcastOverlappingRoomsDeliversTwice(t *testing.T) {
	h := New(zap.NewNop())

	admin := &fakeConn{}
	h.Join(admin, Admins())
	h.Join(admin, OrderWatch("o1"))

	// Two separate sends for one logical event: the overlapping member
	// gets both copies.
	h.Broadcast(Admins(), "order:updated", "payload")
	h.Broadcast(OrderWatch("o1"), "order:updated", "payload")

	assert.Len(t, admin.recorded(), 2)
}

func TestLeaveAll(t *testing.T) {
	h := New(zap.NewNop())

	c := &fakeConn{}
	h.Join(c, Admins())
	h.Join(c, OrderWatch("o1"))

	h.LeaveAll(c)
	require.Equal(t, 0, h.MemberCount(Admins()))
	require.Equal(t, 0, h.MemberCount(OrderWatch("o1")))

	h.Broadcast(Admins(), "orders:snapshot", "payload")
	assert.Empty(t, c.recorded())

	// Leaving again must be a harmless no-op.
	h.LeaveAll(c)
}

func TestBroadcastEmptyRoom(t *testing.T) {
	h := New(zap.NewNop())
	h.Broadcast(OrderWatch("nobody"), "order:updated", "payload")
}

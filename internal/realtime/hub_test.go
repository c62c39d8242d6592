package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, sendBuffer int) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(sendBuffer, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
	})
	return hub, cancel
}

// testConn is a socket-less connection; frames stay in its send queue.
func testConn(t *testing.T, hub *Hub) *Conn {
	t.Helper()
	c := newConn(hub, nil)
	require.True(t, hub.track(c))
	return c
}

func drain(c *Conn) [][]byte {
	var frames [][]byte
	for {
		select {
		case f := <-c.send:
			frames = append(frames, f)
		default:
			return frames
		}
	}
}

func decodeData(t *testing.T, frame []byte) map[string]any {
	t.Helper()
	var n Notification[map[string]any]
	require.NoError(t, json.Unmarshal(frame, &n))
	require.Equal(t, FrameNotification, n.Type)
	return n.Data
}

func TestRegisterAcknowledges(t *testing.T) {
	hub, _ := startHub(t, 8)
	c := testConn(t, hub)

	require.True(t, hub.Register("u1", RoleCustomer, c))

	frames := drain(c)
	require.Len(t, frames, 1)
	assert.JSONEq(t, `{"type":"connected","message":"تم الاتصال بنجاح"}`, string(frames[0]))
	assert.Equal(t, 1, hub.Len())
}

func TestRegisterOverwritesPreviousEntry(t *testing.T) {
	hub, _ := startHub(t, 8)
	a := testConn(t, hub)
	b := testConn(t, hub)

	hub.Register("u1", RoleDriver, a)
	hub.Register("u1", RoleAdmin, b)
	drain(a)
	drain(b)

	assert.True(t, hub.Notify("u1", map[string]any{"n": 1}))
	assert.Empty(t, drain(a))
	require.Len(t, drain(b), 1)

	stats := hub.Stats()
	assert.Equal(t, 1, stats.Connections)
	assert.Equal(t, 1, stats.ByRole[RoleAdmin])
	assert.Equal(t, 0, stats.ByRole[RoleDriver])
}

func TestUnregisterRemovesOnlyMatchingConn(t *testing.T) {
	hub, _ := startHub(t, 8)
	a := testConn(t, hub)
	b := testConn(t, hub)
	hub.Register("u1", RoleDriver, a)
	hub.Register("u2", RoleDriver, b)

	assert.True(t, hub.Unregister(a))

	assert.False(t, hub.Notify("u1", "x"))
	assert.True(t, hub.Notify("u2", "x"))
	assert.Equal(t, 1, hub.Len())
}

func TestUnregisterUnknownConnIsNoop(t *testing.T) {
	hub, _ := startHub(t, 8)
	a := testConn(t, hub)
	stranger := testConn(t, hub)
	hub.Register("u1", RoleAdmin, a)

	assert.False(t, hub.Unregister(stranger))
	assert.Equal(t, 1, hub.Len())
}

func TestUnregisterReplacedConnKeepsNewEntry(t *testing.T) {
	hub, _ := startHub(t, 8)
	a := testConn(t, hub)
	b := testConn(t, hub)
	hub.Register("u1", RoleCustomer, a)
	hub.Register("u1", RoleCustomer, b)

	assert.False(t, hub.Unregister(a))
	assert.True(t, hub.Notify("u1", "still here"))
}

func TestUnregisterRemovesEveryEntryOfConn(t *testing.T) {
	hub, _ := startHub(t, 8)
	a := testConn(t, hub)
	hub.Register("u1", RoleAdmin, a)
	hub.Register("u2", RoleAdmin, a)

	assert.True(t, hub.Unregister(a))
	assert.Equal(t, 0, hub.Len())
}

func TestNotifyUnknownUser(t *testing.T) {
	hub, _ := startHub(t, 8)
	a := testConn(t, hub)
	hub.Register("u1", RoleDriver, a)
	drain(a)

	assert.False(t, hub.Notify("nobody", "x"))
	assert.False(t, hub.Notify("", "x"))
	assert.Empty(t, drain(a))
	assert.Equal(t, float64(1), testutil.ToFloat64(hub.metrics.Dropped.WithLabelValues(reasonNotRegistered)))
}

func TestNotifyDeliversEnvelope(t *testing.T) {
	hub, _ := startHub(t, 8)
	a := testConn(t, hub)
	hub.Register("u1", RoleCustomer, a)
	drain(a)

	ev := OrderEvent{Type: EventOrderStatus, OrderID: "o-9", Status: "on_the_way", CreatedAt: time.Unix(0, 0).UTC()}
	require.True(t, hub.NotifyUser("u1", ev))

	frames := drain(a)
	require.Len(t, frames, 1)
	data := decodeData(t, frames[0])
	assert.Equal(t, "order_status", data["type"])
	assert.Equal(t, "o-9", data["orderId"])
	assert.Equal(t, "on_the_way", data["status"])
}

func TestNotifyClosedConn(t *testing.T) {
	hub, _ := startHub(t, 8)
	a := testConn(t, hub)
	hub.Register("u1", RoleCustomer, a)
	a.closeSocket(1000)

	assert.False(t, hub.Notify("u1", "x"))
	assert.Equal(t, float64(1), testutil.ToFloat64(hub.metrics.Dropped.WithLabelValues(reasonNotReady)))
}

func TestNotifyFullQueue(t *testing.T) {
	hub, _ := startHub(t, 2)
	a := testConn(t, hub)
	hub.Register("u1", RoleCustomer, a) // connected frame takes one slot

	assert.True(t, hub.Notify("u1", 1))
	assert.False(t, hub.Notify("u1", 2))
	assert.Len(t, drain(a), 2)
}

func TestNotifyUnencodablePayload(t *testing.T) {
	hub, _ := startHub(t, 8)
	a := testConn(t, hub)
	hub.Register("u1", RoleCustomer, a)

	assert.False(t, hub.Notify("u1", make(chan int)))
	assert.Equal(t, 0, hub.BroadcastToRole(RoleCustomer, func() {}))
}

func TestBroadcastToRole(t *testing.T) {
	hub, _ := startHub(t, 4)

	drivers := make([]*Conn, 3)
	for i := range drivers {
		drivers[i] = testConn(t, hub)
		hub.Register(string(rune('a'+i)), RoleDriver, drivers[i])
	}
	admin := testConn(t, hub)
	customer := testConn(t, hub)
	hub.Register("admin", RoleAdmin, admin)
	hub.Register("customer", RoleCustomer, customer)
	for _, c := range append(drivers, admin, customer) {
		drain(c)
	}

	// Fill one driver's queue so it is not ready.
	for drivers[2].enqueue([]byte("filler")) {
	}

	sent := hub.BroadcastToDrivers(OrderEvent{Type: EventNewOrder, OrderID: "o-1"})
	assert.Equal(t, 2, sent)
	assert.Len(t, drain(drivers[0]), 1)
	assert.Len(t, drain(drivers[1]), 1)
	assert.Empty(t, drain(admin))
	assert.Empty(t, drain(customer))

	assert.Equal(t, 1, hub.BroadcastToAdmins(Announcement{Type: EventAnnouncement, Title: "t"}))
	assert.Len(t, drain(admin), 1)
	assert.Empty(t, drain(drivers[0]))
}

func TestBroadcastNoMatches(t *testing.T) {
	hub, _ := startHub(t, 4)
	assert.Equal(t, 0, hub.BroadcastToRole(RoleDriver, "x"))
}

func TestRegisterClosedConnIgnored(t *testing.T) {
	hub, _ := startHub(t, 4)
	a := testConn(t, hub)
	a.closeSocket(1000)

	assert.False(t, hub.Register("u1", RoleDriver, a))
	assert.Equal(t, 0, hub.Len())
}

func TestStoppedHubIsNoop(t *testing.T) {
	hub, cancel := startHub(t, 4)
	a := testConn(t, hub)
	hub.Register("u1", RoleDriver, a)

	cancel()
	<-hub.Done()

	assert.True(t, a.closed(), "sockets are closed on shutdown")
	assert.False(t, hub.Register("u2", RoleDriver, newConn(hub, nil)))
	assert.False(t, hub.Unregister(a))
	assert.False(t, hub.Notify("u1", "x"))
	assert.Equal(t, 0, hub.BroadcastToRole(RoleDriver, "x"))
	assert.Equal(t, 0, hub.Len())
	assert.False(t, hub.track(newConn(hub, nil)))
}

func TestRunOnlyOnce(t *testing.T) {
	hub, _ := startHub(t, 4)

	returned := make(chan struct{})
	go func() {
		hub.Run(context.Background())
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("second Run call should return immediately")
	}
	assert.Equal(t, 0, hub.Len())
}

func TestMetricsTrackRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	hub := NewHub(4, m)
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		<-hub.Done()
	}()
	go hub.Run(ctx)

	a := newConn(hub, nil)
	b := newConn(hub, nil)
	hub.track(a)
	hub.track(b)
	hub.Register("u1", RoleDriver, a)
	hub.Register("u2", RoleAdmin, b)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Registered))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Sockets))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Sent.WithLabelValues(kindConnected)))

	hub.BroadcastToDrivers("x")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Sent.WithLabelValues(kindBroadcast)))

	hub.Unregister(a)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Registered))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Sockets))

	count, err := testutil.GatherAndCount(reg, "saree_ws_connections", "saree_ws_sockets")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

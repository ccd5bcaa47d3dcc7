package websocket

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func newTestClient(name string) *Client {
	return &Client{
		ID:       uuid.New().String(),
		UserID:   uuid.New(),
		Username: name,
		Send:     make(chan []byte, 64),
	}
}

func drain(c *Client) [][]byte {
	var msgs [][]byte
	for {
		select {
		case m := <-c.Send:
			msgs = append(msgs, m)
		default:
			return msgs
		}
	}
}

func TestBroadcastSkipsSender(t *testing.T) {
	h := NewHub()
	host := newTestClient("host")
	guest := newTestClient("guest")
	h.Bind("room-1", host)
	h.Bind("room-1", guest)

	h.Broadcast("room-1", host.ID, []byte("ready"))

	if got := len(drain(host)); got != 0 {
		t.Fatalf("sender received %d messages, want 0", got)
	}
	if got := len(drain(guest)); got != 1 {
		t.Fatalf("peer received %d messages, want 1", got)
	}
}

func TestBroadcastToAll(t *testing.T) {
	h := NewHub()
	host := newTestClient("host")
	guest := newTestClient("guest")
	h.Bind("room-1", host)
	h.Bind("room-1", guest)

	h.Broadcast("room-1", "", []byte("start"))

	for _, c := range []*Client{host, guest} {
		if got := len(drain(c)); got != 1 {
			t.Fatalf("%s received %d messages, want 1", c.Username, got)
		}
	}
}

func TestUnboundClientNeverReceives(t *testing.T) {
	h := NewHub()
	bound := newTestClient("bound")
	stranger := newTestClient("stranger")
	h.Bind("room-1", bound)

	h.Broadcast("room-1", "", []byte("hello"))

	if got := len(drain(stranger)); got != 0 {
		t.Fatalf("unbound client received %d messages, want 0", got)
	}
	if h.Contains("room-1", stranger) {
		t.Fatal("unbound client reported as member")
	}
}

func TestUnbindClearsSeatState(t *testing.T) {
	h := NewHub()
	c := newTestClient("host")
	c.Seat = 1
	c.Host = true
	h.Bind("room-1", c)

	roomID, ok := h.Unbind(c)
	if !ok || roomID != "room-1" {
		t.Fatalf("Unbind = (%q, %v), want (room-1, true)", roomID, ok)
	}
	if c.RoomID != "" || c.Seat != 0 || c.Host {
		t.Fatalf("client state not cleared: %+v", c)
	}
	if h.ClientCount("room-1") != 0 {
		t.Fatal("empty room should be dropped")
	}

	if _, ok := h.Unbind(c); ok {
		t.Fatal("second unbind should be a no-op")
	}
}

func TestRebindAfterDisconnect(t *testing.T) {
	h := NewHub()
	c := newTestClient("guest")
	c.Seat = 2
	h.Bind("room-1", c)
	h.Unbind(c)

	again := newTestClient("guest")
	again.Seat = 2
	h.Bind("room-1", again)

	if !h.Contains("room-1", again) {
		t.Fatal("rebound client missing from room")
	}
	if h.ClientCount("room-1") != 1 {
		t.Fatalf("count = %d, want 1", h.ClientCount("room-1"))
	}
}

func TestBindToAnotherRoomLeavesOld(t *testing.T) {
	h := NewHub()
	peer := newTestClient("peer")
	mover := newTestClient("mover")
	h.Bind("room-1", peer)
	h.Bind("room-1", mover)

	h.Bind("room-2", mover)

	if h.Contains("room-1", mover) {
		t.Fatal("client still in old room after rebinding")
	}
	if !h.Contains("room-2", mover) {
		t.Fatal("client missing from new room")
	}
	if h.ClientCount("room-1") != 1 {
		t.Fatalf("old room count = %d, want 1", h.ClientCount("room-1"))
	}

	// A dead entry left behind would crash the old room's next broadcast
	// once the connection's Send channel closes at teardown.
	close(mover.Send)
	h.Broadcast("room-1", "", []byte("ping"))

	if got := len(drain(peer)); got != 1 {
		t.Fatalf("peer received %d messages, want 1", got)
	}
}

func TestNewConnectionForSameUserReplacesOld(t *testing.T) {
	h := NewHub()
	host := newTestClient("host")
	stale := newTestClient("guest")
	stale.Seat = 2
	h.Bind("room-1", host)
	h.Bind("room-1", stale)

	fresh := newTestClient("guest")
	fresh.UserID = stale.UserID
	fresh.Seat = 2
	h.Bind("room-1", fresh)

	if h.ClientCount("room-1") != 2 {
		t.Fatalf("count = %d, want 2", h.ClientCount("room-1"))
	}
	if h.Contains("room-1", stale) {
		t.Fatal("superseded connection still in room")
	}
	if !h.Contains("room-1", fresh) {
		t.Fatal("fresh connection missing from room")
	}

	// The superseded socket's teardown reports it was not in the set.
	if _, present := h.Unbind(stale); present {
		t.Fatal("superseded connection should unbind as absent")
	}
	if h.ClientCount("room-1") != 2 {
		t.Fatalf("count after stale unbind = %d, want 2", h.ClientCount("room-1"))
	}
}

// Two connections joining, leaving and broadcasting at once must not tear
// the member set.
func TestConcurrentBindAndBroadcast(t *testing.T) {
	h := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c := newTestClient(fmt.Sprintf("c%d", n))
			h.Bind("room-1", c)
			h.Broadcast("room-1", c.ID, []byte("ping"))
			h.Unbind(c)
		}(i)
	}
	wg.Wait()

	if h.ClientCount("room-1") != 0 {
		t.Fatalf("count = %d, want 0", h.ClientCount("room-1"))
	}
}

package hub

import (
	"context"
	"testing"
	"time"
)

func drain(t *testing.T, c *Client, timeout time.Duration) []byte {
	t.Helper()
	select {
	case msg := <-c.Outbound():
		return msg
	case <-time.After(timeout):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestConnectThenBroadcastDelivers(t *testing.T) {
	h := New(8)
	ctx := context.Background()

	c := NewClient(1, 100, 8)
	h.Connect(ctx, c, []int64{42})

	h.Broadcast(ctx, 42, []byte("hello"))

	if got := drain(t, c, time.Second); string(got) != "hello" {
		t.Fatalf("got %q, want hello", got)
	}
}

func TestDisconnectThenBroadcastIsNoop(t *testing.T) {
	h := New(8)
	ctx := context.Background()

	c := NewClient(1, 100, 8)
	h.Connect(ctx, c, []int64{42})
	h.Disconnect(ctx, c)

	h.Broadcast(ctx, 42, []byte("hello"))

	select {
	case msg := <-c.Outbound():
		t.Fatalf("unexpected delivery after disconnect: %q", msg)
	case <-time.After(50 * time.Millisecond):
	}

	if h.IsUserIn(1, 42) {
		t.Fatal("user should no longer be in room 42 after disconnect")
	}
}

func TestDisconnectThenConnectEquivalentToFresh(t *testing.T) {
	h := New(8)
	ctx := context.Background()

	c := NewClient(1, 100, 8)
	h.Connect(ctx, c, []int64{42})
	h.Disconnect(ctx, c)

	numUsers, numClients, _ := h.Status()
	if numUsers != 0 || numClients != 0 {
		t.Fatalf("expected empty hub after disconnect, got users=%d clients=%d", numUsers, numClients)
	}

	c2 := NewClient(1, 100, 8)
	h.Connect(ctx, c2, []int64{42})
	if !h.IsUserIn(1, 42) {
		t.Fatal("reconnect should re-establish room membership")
	}
}

func TestMultiDeviceFanOut(t *testing.T) {
	h := New(8)
	ctx := context.Background()

	c1a := NewClient(1, 100, 8)
	c1b := NewClient(1, 100, 8)
	h.Connect(ctx, c1a, []int64{100})
	h.Connect(ctx, c1b, []int64{100})

	h.Tell(ctx, 1, []byte("ping"))

	drain(t, c1a, time.Second)
	drain(t, c1b, time.Second)
}

func TestSlowSubscriberDoesNotBlockOthers(t *testing.T) {
	h := New(8)
	ctx := context.Background()

	slow := NewClient(1, 100, 1)
	fast := NewClient(2, 200, 8)
	h.Connect(ctx, slow, []int64{7})
	h.Connect(ctx, fast, []int64{7})

	// Fill the slow client's queue so subsequent sends are dropped for it.
	slow.out <- []byte("filler")

	h.Broadcast(ctx, 7, []byte("msg"))

	if got := drain(t, fast, time.Second); string(got) != "msg" {
		t.Fatalf("fast subscriber got %q, want msg", got)
	}
}

func TestDeleteRoomClearsMembershipAndRemovesActor(t *testing.T) {
	h := New(1)
	ctx := context.Background()

	c := NewClient(1, 100, 8)
	h.Connect(ctx, c, []int64{9})

	h.DeleteRoom(9, []int64{1})

	if h.IsUserIn(1, 9) {
		t.Fatal("room membership should be cleared after delete")
	}

	h.mu.RLock()
	_, exists := h.rooms[9]
	h.mu.RUnlock()
	if exists {
		t.Fatal("room actor should be removed from the hub")
	}
}

func TestCreateRoomDeleteRoomRoundTrip(t *testing.T) {
	h := New(8)
	ctx := context.Background()

	me := NewClient(1, 100, 8)
	a := NewClient(2, 200, 8)
	b := NewClient(3, 300, 8)
	h.Connect(ctx, me, []int64{100})
	h.Connect(ctx, a, []int64{200})
	h.Connect(ctx, b, []int64{300})

	h.AddMembers(ctx, 55, []int64{1, 2, 3})
	if !h.IsUserIn(1, 55) || !h.IsUserIn(2, 55) || !h.IsUserIn(3, 55) {
		t.Fatal("all three should be members of room 55")
	}

	h.DeleteRoom(55, []int64{1, 2, 3})
	if h.IsUserIn(1, 55) || h.IsUserIn(2, 55) || h.IsUserIn(3, 55) {
		t.Fatal("room membership should be cleared for all three")
	}
}

package hub

import (
	"testing"
	"time"
)

func recvOrTimeout(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case data := <-ch:
		return data
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for message")
		return nil
	}
}

func TestBroadcastReachesBatchWatchers(t *testing.T) {
	h := NewHub()
	go h.Run()

	watcher := h.NewConnection(nil)
	h.Register(watcher)
	other := h.NewConnection(nil)
	h.Register(other)

	h.BindWatch(watcher, "batch_1")
	h.BindWatch(other, "batch_2")

	h.Broadcast("batch_1", []byte("hello"))

	if got := recvOrTimeout(t, watcher.Send); string(got) != "hello" {
		t.Fatalf("unexpected message: %q", got)
	}
	select {
	case data := <-other.Send:
		t.Fatalf("unwatched connection received %q", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWildcardWatcherReceivesAllBatches(t *testing.T) {
	h := NewHub()
	go h.Run()

	watcher := h.NewConnection(nil)
	h.Register(watcher)
	h.BindWatch(watcher, WatchAll)

	h.Broadcast("batch_1", []byte("one"))
	h.Broadcast("batch_2", []byte("two"))

	if got := recvOrTimeout(t, watcher.Send); string(got) != "one" {
		t.Fatalf("unexpected first message: %q", got)
	}
	if got := recvOrTimeout(t, watcher.Send); string(got) != "two" {
		t.Fatalf("unexpected second message: %q", got)
	}
}

func TestRebindMovesWatch(t *testing.T) {
	h := NewHub()
	go h.Run()

	conn := h.NewConnection(nil)
	h.Register(conn)

	h.BindWatch(conn, "batch_1")
	if h.GetWatcherCount("batch_1") != 1 {
		t.Fatalf("expected 1 watcher on batch_1")
	}

	h.BindWatch(conn, "batch_2")
	if h.GetWatcherCount("batch_1") != 0 {
		t.Fatalf("expected batch_1 watch removed")
	}
	if h.GetWatcherCount("batch_2") != 1 {
		t.Fatalf("expected 1 watcher on batch_2")
	}
}

func TestUnregisterClosesSendChannel(t *testing.T) {
	h := NewHub()
	go h.Run()

	conn := h.NewConnection(nil)
	h.Register(conn)
	h.BindWatch(conn, "batch_1")
	h.Unregister(conn)

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-conn.Send:
			if !ok {
				if h.GetConnectionCount() != 0 {
					t.Fatalf("expected 0 connections after unregister")
				}
				return
			}
		case <-deadline:
			t.Fatalf("send channel never closed")
		}
	}
}

func TestBroadcastJSON(t *testing.T) {
	h := NewHub()
	go h.Run()

	conn := h.NewConnection(nil)
	h.Register(conn)
	h.BindWatch(conn, "batch_1")

	if err := h.BroadcastJSON("batch_1", map[string]string{"type": "batch_done"}); err != nil {
		t.Fatalf("BroadcastJSON failed: %v", err)
	}
	got := recvOrTimeout(t, conn.Send)
	if string(got) != `{"type":"batch_done"}` {
		t.Fatalf("unexpected payload: %s", got)
	}
}

package notify

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func expectEvent(t *testing.T, ch *Channel, want string) {
	t.Helper()
	select {
	case got := <-ch.Events():
		if got != want {
			t.Fatalf("expected event %q, got %q", want, got)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event %q", want)
	}
}

func expectClosed(t *testing.T, ch *Channel) {
	t.Helper()
	select {
	case <-ch.Done():
	case <-time.After(time.Second):
		t.Fatal("expected channel to be closed")
	}
}

func TestOpenSendsConnectedImmediately(t *testing.T) {
	hub := NewHub(zap.NewNop())

	ch := hub.Open("alice")
	expectEvent(t, ch, EventConnected)

	if !hub.IsOpen("alice") {
		t.Fatal("expected live channel for alice")
	}
}

func TestSendWithoutChannelIsSilentNoOp(t *testing.T) {
	hub := NewHub(zap.NewNop())

	// Must neither panic nor create a channel.
	hub.Send("ghost", EventSessionInvalidated)

	if hub.IsOpen("ghost") {
		t.Fatal("send must not create a channel")
	}
}

func TestSendDeliversToLiveChannel(t *testing.T) {
	hub := NewHub(zap.NewNop())

	ch := hub.Open("alice")
	expectEvent(t, ch, EventConnected)

	hub.Send("alice", EventSessionInvalidated)
	expectEvent(t, ch, EventSessionInvalidated)
}

func TestSecondOpenClosesFirstTransport(t *testing.T) {
	hub := NewHub(zap.NewNop())

	first := hub.Open("alice")
	expectEvent(t, first, EventConnected)

	second := hub.Open("alice")
	expectClosed(t, first)
	expectEvent(t, second, EventConnected)

	// Events reach only the replacement channel.
	hub.Send("alice", EventSessionInvalidated)
	expectEvent(t, second, EventSessionInvalidated)
}

func TestDetachSupersededChannelKeepsReplacement(t *testing.T) {
	hub := NewHub(zap.NewNop())

	first := hub.Open("alice")
	second := hub.Open("alice")

	// The superseded pump exiting must not tear down the new channel.
	hub.Detach("alice", first)
	if !hub.IsOpen("alice") {
		t.Fatal("replacement channel must stay live after superseded detach")
	}

	hub.Detach("alice", second)
	if hub.IsOpen("alice") {
		t.Fatal("expected channel removed after its own detach")
	}
}

func TestCloseRemovesChannel(t *testing.T) {
	hub := NewHub(zap.NewNop())

	ch := hub.Open("alice")
	hub.Close("alice")

	expectClosed(t, ch)
	if hub.IsOpen("alice") {
		t.Fatal("expected no live channel after close")
	}

	// Closing again is harmless.
	hub.Close("alice")
}

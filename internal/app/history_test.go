package app

import (
	"fmt"
	"testing"

	"watchparty/internal/domain"
)

func TestHistoryBound(t *testing.T) {
	h := NewHistory(50)
	for i := 0; i < 60; i++ {
		h.Append("r1", domain.ChatMessage{Message: fmt.Sprintf("msg-%d", i)})
	}

	msgs := h.Replay("r1")
	if len(msgs) != 50 {
		t.Fatalf("len = %d", len(msgs))
	}
	if msgs[0].Message != "msg-10" || msgs[49].Message != "msg-59" {
		t.Fatalf("window = [%s .. %s]", msgs[0].Message, msgs[49].Message)
	}
}

func TestHistoryEmptyRoom(t *testing.T) {
	h := NewHistory(50)
	if msgs := h.Replay("r1"); msgs != nil {
		t.Fatalf("want nil, got %v", msgs)
	}
}

func TestHistoryReplayIsCopy(t *testing.T) {
	h := NewHistory(50)
	h.Append("r1", domain.ChatMessage{Message: "original"})
	msgs := h.Replay("r1")
	msgs[0].Message = "mutated"
	if h.Replay("r1")[0].Message != "original" {
		t.Fatal("replay must not expose internal state")
	}
}

func TestHistoryRoomsIndependent(t *testing.T) {
	h := NewHistory(2)
	h.Append("r1", domain.ChatMessage{Message: "a"})
	h.Append("r2", domain.ChatMessage{Message: "b"})
	if len(h.Replay("r1")) != 1 || len(h.Replay("r2")) != 1 {
		t.Fatal("rooms must not share buffers")
	}
}

package frame

import "testing"

func TestAssembler_BulkEmitsImmediately(t *testing.T) {
	var got []Message
	a := NewAssembler(func(m Message) { got = append(got, m) }, nil)

	a.Feed(Header{ChannelID: 5, FrameType: TypeBulk, MessageType: Specific}, []byte("hi"))

	if len(got) != 1 || string(got[0].Payload) != "hi" {
		t.Fatalf("got %+v", got)
	}
}

func TestAssembler_FirstMiddleLast(t *testing.T) {
	var got []Message
	a := NewAssembler(func(m Message) { got = append(got, m) }, nil)

	a.Feed(Header{ChannelID: 1, FrameType: TypeFirst, MessageType: Control}, []byte("AB"))
	a.Feed(Header{ChannelID: 1, FrameType: TypeMiddle, MessageType: Specific}, []byte("CD"))
	a.Feed(Header{ChannelID: 1, FrameType: TypeLast, MessageType: Specific}, []byte("EF"))

	if len(got) != 1 {
		t.Fatalf("got %d messages, want 1", len(got))
	}
	if string(got[0].Payload) != "ABCDEF" {
		t.Fatalf("got payload %q", got[0].Payload)
	}
	// message_type must be the one declared by First, not by later frames.
	if got[0].MessageType != Control {
		t.Fatalf("got message type %v, want Control", got[0].MessageType)
	}
}

func TestAssembler_InterleavedChannelsIndependent(t *testing.T) {
	var got []Message
	a := NewAssembler(func(m Message) { got = append(got, m) }, nil)

	a.Feed(Header{ChannelID: 'A', FrameType: TypeFirst, MessageType: Control}, []byte("A1"))
	a.Feed(Header{ChannelID: 'B', FrameType: TypeBulk, MessageType: Specific}, []byte("B"))
	a.Feed(Header{ChannelID: 'A', FrameType: TypeLast, MessageType: Specific}, []byte("A2"))

	if len(got) != 2 {
		t.Fatalf("got %d messages, want 2", len(got))
	}
	if got[0].ChannelID != 'B' || string(got[0].Payload) != "B" {
		t.Fatalf("expected B's bulk message first, got %+v", got[0])
	}
	if got[1].ChannelID != 'A' || string(got[1].Payload) != "A1A2" {
		t.Fatalf("expected A's concatenation second, got %+v", got[1])
	}
}

func TestAssembler_DuplicateFirstDiscardsPrevious(t *testing.T) {
	var got []Message
	a := NewAssembler(func(m Message) { got = append(got, m) }, nil)

	a.Feed(Header{ChannelID: 1, FrameType: TypeFirst, MessageType: Specific}, []byte("stale"))
	a.Feed(Header{ChannelID: 1, FrameType: TypeFirst, MessageType: Specific}, []byte("fresh"))
	a.Feed(Header{ChannelID: 1, FrameType: TypeLast, MessageType: Specific}, []byte("-end"))

	if len(got) != 1 || string(got[0].Payload) != "fresh-end" {
		t.Fatalf("got %+v, want the second First to win", got)
	}
}

func TestAssembler_OrphanMiddleAndLastAreDropped(t *testing.T) {
	var got []Message
	a := NewAssembler(func(m Message) { got = append(got, m) }, nil)

	a.Feed(Header{ChannelID: 1, FrameType: TypeMiddle, MessageType: Specific}, []byte("orphan-middle"))
	a.Feed(Header{ChannelID: 1, FrameType: TypeLast, MessageType: Specific}, []byte("orphan-last"))

	if len(got) != 0 {
		t.Fatalf("got %d messages, want 0 for orphaned fragments", len(got))
	}
}

package transport

import "testing"

func TestReplay_FeedDeliversToCallback(t *testing.T) {
	var got []byte
	r := NewReplay(Callbacks{
		DataReceived: func(data []byte) { got = data },
	})
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	r.Feed([]byte{0x01, 0x02, 0x03})
	if string(got) != "\x01\x02\x03" {
		t.Fatalf("got %v, want %v", got, []byte{0x01, 0x02, 0x03})
	}
}

func TestReplay_WriteIsRecorded(t *testing.T) {
	r := NewReplay(Callbacks{})
	r.Write([]byte("first"))
	r.Write([]byte("second"))

	written := r.Written()
	if len(written) != 2 {
		t.Fatalf("got %d chunks, want 2", len(written))
	}
	if string(written[0]) != "first" || string(written[1]) != "second" {
		t.Fatalf("got %v", written)
	}

	r.ClearWritten()
	if len(r.Written()) != 0 {
		t.Fatal("ClearWritten should empty the history")
	}
}

func TestReplay_SimulateConnectAndDisconnect(t *testing.T) {
	var connected, disconnected bool
	r := NewReplay(Callbacks{
		Connected:    func() { connected = true },
		Disconnected: func() { disconnected = true },
	})

	if r.IsConnected() {
		t.Fatal("should start disconnected")
	}

	r.SimulateConnect()
	if !connected || !r.IsConnected() {
		t.Fatal("SimulateConnect should fire Connected and flip IsConnected")
	}

	r.SimulateDisconnect()
	if !disconnected || r.IsConnected() {
		t.Fatal("SimulateDisconnect should fire Disconnected and flip IsConnected")
	}
}

func TestReplay_SimulateError(t *testing.T) {
	var gotMessage string
	r := NewReplay(Callbacks{
		Error: func(message string) { gotMessage = message },
	})

	r.SimulateError("boom")
	if gotMessage != "boom" {
		t.Fatalf("got %q, want %q", gotMessage, "boom")
	}
}

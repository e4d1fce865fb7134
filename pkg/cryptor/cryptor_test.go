package cryptor

import (
	"bytes"
	"testing"
	"time"
)

// handshake drives two Cryptors to completion by shuttling bytes between
// their outgoing/incoming queues, bounded so a protocol regression fails
// the test instead of hanging it.
func handshake(t *testing.T, client, server *Cryptor) {
	t.Helper()

	const maxSteps = 500
	for step := 0; step < maxSteps; step++ {
		clientDone, err := client.DoHandshake()
		if err != nil {
			t.Fatalf("client handshake error: %v", err)
		}
		serverDone, err := server.DoHandshake()
		if err != nil {
			t.Fatalf("server handshake error: %v", err)
		}

		if out := client.ReadOutgoing(); len(out) > 0 {
			server.WriteIncoming(out)
		}
		if out := server.ReadOutgoing(); len(out) > 0 {
			client.WriteIncoming(out)
		}

		if clientDone && serverDone {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("handshake did not complete within %d steps", maxSteps)
}

func TestCryptor_HandshakeCompletes(t *testing.T) {
	var client, server Cryptor
	if err := client.Init(Client); err != nil {
		t.Fatalf("client Init: %v", err)
	}
	if err := server.Init(Server); err != nil {
		t.Fatalf("server Init: %v", err)
	}

	handshake(t, &client, &server)

	if !client.IsActive() || !server.IsActive() {
		t.Fatal("both cryptors should be active after a completed handshake")
	}

	// A handshake already complete keeps reporting true without error.
	done, err := client.DoHandshake()
	if err != nil || !done {
		t.Fatalf("DoHandshake post-completion: got (%v, %v), want (true, nil)", done, err)
	}
}

func TestCryptor_EncryptDecryptRoundTrip(t *testing.T) {
	var client, server Cryptor
	client.Init(Client)
	server.Init(Server)
	handshake(t, &client, &server)

	tests := [][]byte{
		[]byte("short message"),
		bytes.Repeat([]byte("x"), 1000),
		bytes.Repeat([]byte{0xAB}, 50*1024), // >= 50 KB per the round-trip property
	}

	for _, plaintext := range tests {
		ciphertext, err := client.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt(%d bytes): %v", len(plaintext), err)
		}
		if bytes.Equal(ciphertext, plaintext) {
			t.Fatalf("ciphertext should not equal plaintext for %d-byte payload", len(plaintext))
		}

		got, err := server.Decrypt(ciphertext)
		if err != nil {
			t.Fatalf("Decrypt(%d bytes): %v", len(ciphertext), err)
		}
		if !bytes.Equal(got, plaintext) {
			t.Fatalf("round trip mismatch for %d-byte payload: got %d bytes back", len(plaintext), len(got))
		}
	}
}

func TestCryptor_DeinitIsIdempotent(t *testing.T) {
	var c Cryptor
	c.Init(Client)
	c.Deinit()
	c.Deinit() // must not panic

	if c.IsActive() {
		t.Fatal("a deinitialized cryptor should not be active")
	}
}

func TestCryptor_ExportKeyingMaterial(t *testing.T) {
	var client, server Cryptor
	client.Init(Client)
	server.Init(Server)

	if _, err := client.ExportKeyingMaterial("test-label", 16); err != ErrNotInitialized {
		t.Fatalf("before handshake completes: got %v, want ErrNotInitialized", err)
	}

	handshake(t, &client, &server)

	clientKM, err := client.ExportKeyingMaterial("test-label", 16)
	if err != nil {
		t.Fatalf("client ExportKeyingMaterial: %v", err)
	}
	serverKM, err := server.ExportKeyingMaterial("test-label", 16)
	if err != nil {
		t.Fatalf("server ExportKeyingMaterial: %v", err)
	}
	if !bytes.Equal(clientKM, serverKM) {
		t.Fatal("both sides of a completed handshake should derive identical keying material for the same label")
	}

	other, err := client.ExportKeyingMaterial("other-label", 16)
	if err != nil {
		t.Fatalf("client ExportKeyingMaterial with different label: %v", err)
	}
	if bytes.Equal(clientKM, other) {
		t.Fatal("different exporter labels should derive different material")
	}
}

func TestCryptor_DriveHandshakeStepNeverReturnsAStaleEmptyFlight(t *testing.T) {
	var client, server Cryptor
	client.Init(Client)
	server.Init(Server)

	clientDone, out, err := client.DriveHandshakeStep()
	if err != nil {
		t.Fatalf("client step: %v", err)
	}
	if clientDone || len(out) == 0 {
		t.Fatalf("client's first step should block for and return a non-empty ClientHello, got done=%v len=%d", clientDone, len(out))
	}

	// Ping-pong the flight one carrier at a time, the way Messenger does
	// it: feed the bytes in, then step, never stepping speculatively
	// ahead of data that hasn't arrived yet.
	const maxSteps = 50
	pending, toServer := out, true
	for step := 0; step < maxSteps && len(pending) > 0; step++ {
		var stepOut []byte
		if toServer {
			server.WriteIncoming(pending)
			_, stepOut, err = server.DriveHandshakeStep()
		} else {
			client.WriteIncoming(pending)
			_, stepOut, err = client.DriveHandshakeStep()
		}
		if err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		pending, toServer = stepOut, !toServer
	}

	if !client.IsActive() || !server.IsActive() {
		t.Fatal("handshake driven one carrier at a time should still complete")
	}
}

func TestCryptor_InitRejectsUnknownRole(t *testing.T) {
	var c Cryptor
	if err := c.Init(Role(99)); err != ErrInvalidRole {
		t.Fatalf("got %v, want ErrInvalidRole", err)
	}
}

package policy

import "testing"

func TestShouldEncrypt(t *testing.T) {
	tests := []struct {
		name      string
		channelID uint8
		messageID uint16
		sslActive bool
		want      bool
	}{
		{"version request before ssl", 0, 0x0001, false, false},
		{"ssl handshake carrier during ssl", 0, 0x0003, true, false},
		{"service discovery request post-ssl", 0, 0x0005, true, true},
		{"application message post-ssl", 3, 0x8000, true, true},
		{"application message pre-ssl", 3, 0x8000, false, false},
		{"auth complete post-ssl", 0, 0x0004, true, false},
		{"ping request post-ssl", 0, 0x000b, true, false},
		{"ping response post-ssl", 0, 0x000c, true, false},
		{"control channel non-plaintext id post-ssl", 0, 0x0007, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldEncrypt(tt.channelID, tt.messageID, tt.sslActive); got != tt.want {
				t.Errorf("ShouldEncrypt(%d, 0x%04x, %v) = %v, want %v",
					tt.channelID, tt.messageID, tt.sslActive, got, tt.want)
			}
		})
	}
}

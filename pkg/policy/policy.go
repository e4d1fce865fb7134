// Package policy implements the pure decision of whether a given
// message should travel plaintext or encrypted, independent of frame
// encoding and of the TLS bridge itself.
package policy

// plaintextControlMessages are the channel-0 control message IDs that
// stay plaintext even once TLS is active: version request/response, the
// SSL handshake carrier itself, AuthComplete, and ping request/response.
var plaintextControlMessages = map[uint16]bool{
	0x0001: true,
	0x0002: true,
	0x0003: true,
	0x0004: true,
	0x000b: true,
	0x000c: true,
}

// ShouldEncrypt reports whether a message on channelID with the given
// messageID should be sent (or is expected to arrive) encrypted, given
// whether the session's TLS session is currently active.
func ShouldEncrypt(channelID uint8, messageID uint16, sslActive bool) bool {
	if !sslActive {
		return false
	}
	if channelID == 0 && plaintextControlMessages[messageID] {
		return false
	}
	return true
}

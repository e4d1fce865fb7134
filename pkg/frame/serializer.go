package frame

// Frame is a fully-built frame ready to encode to wire bytes, or to be
// mutated in place (as Messenger does when it encrypts a frame's
// payload after serialization and must rewrite frame_payload_size).
type Frame struct {
	Header  Header
	Payload []byte
}

// Encode renders the frame as wire bytes: channel_id, flags byte, size
// field (6 bytes for First, 2 otherwise), then payload.
func (f Frame) Encode() []byte {
	sizeLen := f.Header.SizeFieldLength()
	out := make([]byte, headerSize+sizeLen+len(f.Payload))

	out[0] = f.Header.ChannelID
	out[1] = f.Header.flagsByte()

	out[headerSize] = byte(len(f.Payload) >> 8)
	out[headerSize+1] = byte(len(f.Payload))
	if f.Header.FrameType == TypeFirst {
		out[headerSize+2] = byte(f.Header.TotalSize >> 24)
		out[headerSize+3] = byte(f.Header.TotalSize >> 16)
		out[headerSize+4] = byte(f.Header.TotalSize >> 8)
		out[headerSize+5] = byte(f.Header.TotalSize)
	}

	copy(out[headerSize+sizeLen:], f.Payload)
	return out
}

// Serialize chunks payload into the frame sequence that reproduces it on
// the receiving end: a single Bulk frame when it fits in one frame,
// otherwise a First/Middle.../Last run each bounded by MaxPayloadSize.
// encryption is recorded in every frame's header as given; Serialize
// itself does not encrypt. Callers that need ciphertext frames encrypt
// each Frame's Payload afterward and must rewrite frame_payload_size to
// match, which Frame.Encode does automatically from the current Payload
// length.
func Serialize(channelID uint8, messageType MessageType, encryption Encryption, payload []byte) []Frame {
	if len(payload) <= MaxPayloadSize {
		return []Frame{{
			Header: Header{
				ChannelID:   channelID,
				FrameType:   TypeBulk,
				MessageType: messageType,
				Encryption:  encryption,
			},
			Payload: payload,
		}}
	}

	var frames []Frame
	total := uint32(len(payload))
	offset := 0

	frames = append(frames, Frame{
		Header: Header{
			ChannelID:   channelID,
			FrameType:   TypeFirst,
			MessageType: messageType,
			Encryption:  encryption,
			TotalSize:   total,
		},
		Payload: payload[offset : offset+MaxPayloadSize],
	})
	offset += MaxPayloadSize

	for len(payload)-offset > MaxPayloadSize {
		frames = append(frames, Frame{
			Header: Header{
				ChannelID:   channelID,
				FrameType:   TypeMiddle,
				MessageType: messageType,
				Encryption:  encryption,
			},
			Payload: payload[offset : offset+MaxPayloadSize],
		})
		offset += MaxPayloadSize
	}

	frames = append(frames, Frame{
		Header: Header{
			ChannelID:   channelID,
			FrameType:   TypeLast,
			MessageType: messageType,
			Encryption:  encryption,
		},
		Payload: payload[offset:],
	})

	return frames
}

package frame

import "testing"

func TestHeader_FlagsRoundTrip(t *testing.T) {
	tests := []struct {
		name        string
		frameType   Type
		messageType MessageType
		encryption  Encryption
	}{
		{"bulk plain specific", TypeBulk, Specific, Plain},
		{"first encrypted control", TypeFirst, Control, Encrypted},
		{"middle plain control", TypeMiddle, Control, Plain},
		{"last encrypted specific", TypeLast, Specific, Encrypted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Header{FrameType: tt.frameType, MessageType: tt.messageType, Encryption: tt.encryption}
			gotType, gotMsgType, gotEnc := decodeFlagsByte(h.flagsByte())
			if gotType != tt.frameType {
				t.Errorf("frame type: got %v, want %v", gotType, tt.frameType)
			}
			if gotMsgType != tt.messageType {
				t.Errorf("message type: got %v, want %v", gotMsgType, tt.messageType)
			}
			if gotEnc != tt.encryption {
				t.Errorf("encryption: got %v, want %v", gotEnc, tt.encryption)
			}
		})
	}
}

func TestSizeFieldLength(t *testing.T) {
	if got := sizeFieldLength(TypeFirst); got != 6 {
		t.Errorf("First: got %d, want 6", got)
	}
	for _, typ := range []Type{TypeBulk, TypeMiddle, TypeLast} {
		if got := sizeFieldLength(typ); got != 2 {
			t.Errorf("%v: got %d, want 2", typ, got)
		}
	}
}

func TestType_IsValid(t *testing.T) {
	for _, typ := range []Type{TypeBulk, TypeFirst, TypeMiddle, TypeLast} {
		if !typ.IsValid() {
			t.Errorf("%v should be valid", typ)
		}
	}
	if Type(0x07).IsValid() {
		t.Error("Type(0x07) should not be valid; it is outside the two-bit wire range")
	}
}

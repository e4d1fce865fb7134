package channel

// Control-channel message IDs. ControlChannel and Session handle all
// of these directly; their payload encodings are out of scope here.
const (
	MsgVersionRequest           uint16 = 0x0001
	MsgVersionResponse          uint16 = 0x0002
	MsgSSLHandshake             uint16 = 0x0003
	MsgAuthComplete             uint16 = 0x0004
	MsgServiceDiscoveryRequest  uint16 = 0x0005
	MsgServiceDiscoveryResponse uint16 = 0x0006
	MsgChannelOpenRequest       uint16 = 0x0007
	MsgChannelOpenResponse      uint16 = 0x0008
	MsgPingRequest              uint16 = 0x000b
	MsgPingResponse             uint16 = 0x000c
	MsgNavigationFocusRequest   uint16 = 0x000d
	MsgNavigationFocusResponse  uint16 = 0x000e
	MsgShutdownRequest          uint16 = 0x000f
	MsgShutdownResponse         uint16 = 0x0010
	MsgVoiceSessionRequest      uint16 = 0x0011
	MsgAudioFocusRequest        uint16 = 0x0012
	MsgAudioFocusResponse       uint16 = 0x0013
)

// AV channel message IDs (Video, MediaAudio, SpeechAudio, SystemAudio,
// AVInput). Ported from the reference implementation's AVMessageId
// table; only the IDs the Input-priority rule and demo wiring need are
// exercised directly, the rest are provided for completeness.
const (
	AVMediaWithTimestamp uint16 = 0x0000
	AVMediaIndication    uint16 = 0x0001
	AVSetupRequest       uint16 = 0x8000
	AVStartIndication    uint16 = 0x8001
	AVStopIndication     uint16 = 0x8002
	AVSetupResponse      uint16 = 0x8003
	AVAckIndication      uint16 = 0x8004
	AVVideoFocusRequest  uint16 = 0x8007
	AVVideoFocusNotify   uint16 = 0x8009
)

// Input channel message IDs.
const (
	InputEventIndication uint16 = 0x8001
	InputBindingRequest  uint16 = 0x8002
	InputBindingResponse uint16 = 0x8003
)

// Sensor channel message IDs.
const (
	SensorStartRequest    uint16 = 0x8001
	SensorStartResponse   uint16 = 0x8002
	SensorEventIndication uint16 = 0x8003
)

// Bluetooth channel message IDs.
const (
	BluetoothPairingRequest  uint16 = 0x8001
	BluetoothPairingResponse uint16 = 0x8002
	BluetoothAuthData        uint16 = 0x8003
)

package frame

type parserState int

const (
	stateReadHeader parserState = iota
	stateReadSize
	stateReadPayload
)

// Parser is a streaming byte-to-frame decoder. It consumes arbitrary
// chunks handed to it by a transport and emits one callback per complete
// frame found in the accumulated stream. It never blocks and never
// emits a frame until all of that frame's declared bytes have arrived;
// partial input is retained across calls to Feed.
type Parser struct {
	onFrame func(Header, []byte)

	buf []byte
	r   int // next unread byte
	w   int // end of valid data

	state       parserState
	header      Header
	sizeLen     int
	payloadSize int
}

// NewParser creates a Parser that invokes onFrame for each decoded
// frame, in arrival order.
func NewParser(onFrame func(Header, []byte)) *Parser {
	return &Parser{
		onFrame: onFrame,
		buf:     make([]byte, 256),
	}
}

// Feed appends newly received bytes and decodes as many complete frames
// as the buffer now contains.
func (p *Parser) Feed(data []byte) {
	p.append(data)

	for {
		switch p.state {
		case stateReadHeader:
			if !p.tryReadHeader() {
				return
			}
		case stateReadSize:
			if !p.tryReadSize() {
				return
			}
		case stateReadPayload:
			if !p.tryReadPayload() {
				return
			}
		}
	}
}

func (p *Parser) pending() int {
	return p.w - p.r
}

func (p *Parser) append(data []byte) {
	if len(data) == 0 {
		return
	}
	need := p.w + len(data)
	if need > len(p.buf) {
		newCap := len(p.buf)
		if newCap == 0 {
			newCap = 256
		}
		for newCap < need {
			newCap *= 2
		}
		grown := make([]byte, newCap)
		copy(grown, p.buf[p.r:p.w])
		p.w -= p.r
		p.r = 0
		p.buf = grown
	}
	copy(p.buf[p.w:], data)
	p.w += len(data)
}

// reset returns both indices to the origin once the buffer has been
// fully drained, so it does not grow unbounded under steady traffic.
func (p *Parser) reset() {
	if p.r == p.w {
		p.r = 0
		p.w = 0
	}
}

func (p *Parser) tryReadHeader() bool {
	if p.pending() < headerSize {
		p.reset()
		return false
	}
	channelID := p.buf[p.r]
	flags := p.buf[p.r+1]
	p.r += headerSize

	frameType, messageType, encryption := decodeFlagsByte(flags)
	p.header = Header{
		ChannelID:   channelID,
		FrameType:   frameType,
		MessageType: messageType,
		Encryption:  encryption,
	}
	p.sizeLen = sizeFieldLength(frameType)
	p.state = stateReadSize
	return true
}

func (p *Parser) tryReadSize() bool {
	if p.pending() < p.sizeLen {
		return false
	}
	b := p.buf[p.r : p.r+p.sizeLen]
	payloadSize := int(b[0])<<8 | int(b[1])
	// The remaining 4 bytes of a First frame's size field repeat the
	// message's total plaintext size; the assembler reconstructs the
	// whole message by concatenation and never needs it, so it is
	// discarded here rather than carried in the decoded Header.
	p.r += p.sizeLen

	p.header.TotalSize = 0
	p.payloadSize = payloadSize
	p.state = stateReadPayload
	return true
}

func (p *Parser) tryReadPayload() bool {
	if p.pending() < p.payloadSize {
		return false
	}
	payload := make([]byte, p.payloadSize)
	copy(payload, p.buf[p.r:p.r+p.payloadSize])
	p.r += p.payloadSize

	header := p.header
	p.state = stateReadHeader
	p.reset()

	if p.onFrame != nil {
		p.onFrame(header, payload)
	}
	return true
}

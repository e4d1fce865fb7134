package session

// buildServiceDiscoveryResponse encodes the Config's identifying
// metadata and the session's currently registered channel IDs into the
// ServiceDiscoveryResponse payload. Strings are length-prefixed with a
// single byte (all fields here are short identifiers, never user text),
// booleans are one byte, and the channel set is a count byte followed
// by one byte per channel ID. See controlChannel's doc comment for why
// this port defines its own encoding for this payload.
func buildServiceDiscoveryResponse(cfg Config, channelIDs []uint8) []byte {
	var buf []byte

	appendString := func(s string) {
		b := []byte(s)
		if len(b) > 255 {
			b = b[:255]
		}
		buf = append(buf, byte(len(b)))
		buf = append(buf, b...)
	}
	appendBool := func(v bool) {
		if v {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	}

	appendString(cfg.HeadUnitName)
	appendString(cfg.CarModel)
	appendString(cfg.CarYear)
	appendString(cfg.CarSerial)
	appendBool(cfg.LeftHandDrive)
	appendString(cfg.Manufacturer)
	appendString(cfg.Model)
	appendString(cfg.SWBuild)
	appendString(cfg.SWVersion)
	appendBool(cfg.CanPlayNativeMediaDuringVR)

	if len(channelIDs) > 255 {
		channelIDs = channelIDs[:255]
	}
	buf = append(buf, byte(len(channelIDs)))
	buf = append(buf, channelIDs...)

	return buf
}

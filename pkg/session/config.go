package session

import "time"

// Default per-state timeouts and ping cadence, chosen to match a real
// phone's patience during version negotiation, the TLS handshake and
// service discovery.
const (
	DefaultProtocolMajor = 1
	DefaultProtocolMinor = 7

	DefaultVersionTimeout   = 5000 * time.Millisecond
	DefaultHandshakeTimeout = 10000 * time.Millisecond
	DefaultDiscoveryTimeout = 10000 * time.Millisecond
	DefaultPingInterval     = 5000 * time.Millisecond
	DefaultPingTimeout      = 15000 * time.Millisecond
)

// Config holds the identifying metadata a Session advertises during
// service discovery, along with the per-state timeouts and ping
// cadence. All fields are optional; zero values are replaced by
// WithDefaults.
type Config struct {
	ProtocolMajor uint16
	ProtocolMinor uint16

	HeadUnitName               string
	CarModel                   string
	CarYear                    string
	CarSerial                  string
	LeftHandDrive              bool
	Manufacturer               string
	Model                      string
	SWBuild                    string
	SWVersion                  string
	CanPlayNativeMediaDuringVR bool

	VersionTimeout   time.Duration
	HandshakeTimeout time.Duration
	DiscoveryTimeout time.Duration
	PingInterval     time.Duration
	PingTimeout      time.Duration
}

// pingMissBudget reports how many consecutive unanswered PingRequests
// a Session tolerates before disconnecting with PingTimeout: PingTimeout
// divided by PingInterval, rounded down and never less than one, so a
// caller's chosen timeout is honored regardless of the interval it
// picked alongside it. With the package defaults (5s interval, 15s
// timeout) that works out to the traditional three misses.
func (c Config) pingMissBudget() int {
	if c.PingInterval <= 0 {
		return 1
	}
	budget := int(c.PingTimeout / c.PingInterval)
	if budget < 1 {
		return 1
	}
	return budget
}

// DefaultConfig returns a Config populated entirely with the package's
// default timing.
func DefaultConfig() Config {
	return Config{}.WithDefaults()
}

// WithDefaults returns a copy of c with every zero-valued field
// replaced by its package default.
func (c Config) WithDefaults() Config {
	result := c
	if result.ProtocolMajor == 0 {
		result.ProtocolMajor = DefaultProtocolMajor
	}
	if result.ProtocolMinor == 0 {
		result.ProtocolMinor = DefaultProtocolMinor
	}
	if result.VersionTimeout == 0 {
		result.VersionTimeout = DefaultVersionTimeout
	}
	if result.HandshakeTimeout == 0 {
		result.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if result.DiscoveryTimeout == 0 {
		result.DiscoveryTimeout = DefaultDiscoveryTimeout
	}
	if result.PingInterval == 0 {
		result.PingInterval = DefaultPingInterval
	}
	if result.PingTimeout == 0 {
		result.PingTimeout = DefaultPingTimeout
	}
	return result
}

// oaa-head-unit is a minimal head-unit-side server for the Android Auto
// transport/session protocol core. It listens for a single phone
// connection, drives version exchange, TLS handshake and service
// discovery, answers pings, and logs traffic on every channel that has
// no real application handler wired up.
//
// Usage:
//
//	oaa-head-unit [options]
//
// Options:
//
//	-listen  TCP listen address (default: ":5277")
//	-name    Head unit name advertised during discovery (default: "OpenAuto Prodigy")
//	-log     Log level: trace, debug, info, warn, error (default: "info")
//
// Example:
//
//	oaa-head-unit -listen :5277 -name "My Head Unit"
package main

import (
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/pion/logging"

	"github.com/openauto/prodigy-core/pkg/channel"
	"github.com/openauto/prodigy-core/pkg/session"
	"github.com/openauto/prodigy-core/pkg/transport"
)

func main() {
	listenAddr := flag.String("listen", ":5277", "TCP listen address")
	headUnitName := flag.String("name", "OpenAuto Prodigy", "head unit name advertised during discovery")
	logLevel := flag.String("log", "info", "log level: trace, debug, info, warn, error")
	flag.Parse()

	lf := newLoggerFactory(*logLevel)
	top := lf.NewLogger("main")

	ln, err := net.Listen("tcp", *listenAddr)
	if err != nil {
		log.Fatalf("listen on %s: %v", *listenAddr, err)
	}
	defer ln.Close()
	top.Infof("listening on %s", *listenAddr)

	cfg := session.DefaultConfig()
	cfg.HeadUnitName = *headUnitName
	cfg.CarModel = "Universal"
	cfg.CarYear = "2025"
	cfg.Manufacturer = "OpenAuto"
	cfg.Model = "Prodigy"

	done := make(chan session.DisconnectReason, 1)

	cb := session.Callbacks{
		OnStateChanged: func(s session.State) {
			top.Infof("session state -> %s", s)
		},
		OnChannelOpened: func(id channel.ID) {
			top.Infof("channel %s opened", id)
		},
		OnChannelOpenRejected: func(id channel.ID) {
			top.Warnf("channel %s open rejected, no handler registered", id)
		},
		OnDisconnected: func(reason session.DisconnectReason) {
			top.Infof("disconnected: %s", reason)
			done <- reason
		},
		OnAudioFocusChanged: func(payload []byte) {
			top.Infof("audio focus request, len=%d", len(payload))
		},
		OnNavigationFocusRequest: func(payload []byte) {
			top.Infof("navigation focus request, len=%d", len(payload))
		},
		OnVoiceSessionRequest: func(payload []byte) {
			top.Infof("voice session request, len=%d", len(payload))
		},
	}

	newTransport := func(tcb transport.Callbacks) transport.Transport {
		return transport.NewTCP(transport.TCPConfig{
			Listener:      ln,
			Callbacks:     tcb,
			LoggerFactory: lf,
		})
	}

	s := session.New(newTransport, cfg, cb, lf)

	for _, id := range []channel.ID{
		channel.Sensor,
		channel.Video,
		channel.MediaAudio,
		channel.SpeechAudio,
		channel.SystemAudio,
		channel.Input,
		channel.Bluetooth,
	} {
		if err := s.RegisterHandler(channel.NewStubHandler(id, lf.NewLogger("channel"))); err != nil {
			log.Fatalf("register handler for %s: %v", id, err)
		}
	}

	if err := s.Start(); err != nil {
		log.Fatalf("start session: %v", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case reason := <-done:
		top.Infof("session ended (%s), exiting", reason)
	case <-sig:
		top.Info("interrupted, shutting down")
		s.Stop(0)
		<-done
	}
}

func newLoggerFactory(level string) logging.LoggerFactory {
	lf := logging.NewDefaultLoggerFactory()
	lf.DefaultLogLevel = parseLogLevel(level)
	return lf
}

func parseLogLevel(level string) logging.LogLevel {
	switch level {
	case "trace":
		return logging.LogLevelTrace
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}

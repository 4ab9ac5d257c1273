package dhcpsvc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

const maxDatagramSize = 1500

// Server runs the single-threaded DHCP receive/engine/send loop.
type Server struct {
	engine *Engine
	logger *slog.Logger
	host   string
	port   int
	conn   *net.UDPConn
}

// NewServer wires an engine to a UDP socket bound at host:port.
func NewServer(engine *Engine, logger *slog.Logger, host string, port int) *Server {
	return &Server{engine: engine, logger: logger, host: host, port: port}
}

// ListenAndServe binds the DHCP socket (with SO_BROADCAST and SO_REUSEADDR,
// as SPEC_FULL.md §4.5 requires) and runs the receive loop until ctx is
// canceled or a fatal socket error occurs.
func (s *Server) ListenAndServe(ctx context.Context) error {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				if sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1); sockErr != nil {
					return
				}
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}

	pc, err := lc.ListenPacket(ctx, "udp4", fmt.Sprintf("%s:%d", s.host, s.port))
	if err != nil {
		return fmt.Errorf("binding DHCP socket %s:%d: %w", s.host, s.port, err)
	}
	conn := pc.(*net.UDPConn)
	s.conn = conn
	defer conn.Close()

	s.logger.Info("DHCP server listening", "addr", conn.LocalAddr())

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, maxDatagramSize)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info("DHCP server stopped")
				return nil
			}
			s.logger.Error("DHCP receive error", "err", err)
			continue
		}

		result := s.engine.Handle(buf[:n])
		if !result.Ok {
			continue
		}
		if _, err := conn.WriteToUDP(result.Bytes, result.Dest); err != nil {
			s.logger.Error("DHCP send error", "err", err, "dest", result.Dest)
		}
	}
}

package dnssvc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/jroosing/netsvcd/internal/dns"
)

// Server runs the DNS client-facing receive loop and the upstream
// reply-receive loop side by side, plus the periodic in-flight sweep.
// Three loops, each in its own goroutine and coordinated only through
// Forwarder's mutex (SPEC_FULL.md §5's one deliberate exception to the
// single-threaded rule), plus one goroutine that closes both sockets on
// shutdown.
type Server struct {
	resolver      *Resolver
	forwarder     *Forwarder
	logger        *slog.Logger
	host          string
	port          int
	sweepInterval time.Duration
}

// NewServer wires a resolver and forwarder to a client-facing UDP socket.
func NewServer(resolver *Resolver, forwarder *Forwarder, logger *slog.Logger, host string, port int, sweepInterval time.Duration) *Server {
	return &Server{
		resolver:      resolver,
		forwarder:     forwarder,
		logger:        logger,
		host:          host,
		port:          port,
		sweepInterval: sweepInterval,
	}
}

// ListenAndServe binds the client-facing socket and runs all three loops
// until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := &net.UDPAddr{IP: net.ParseIP(s.host), Port: s.port}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return fmt.Errorf("binding DNS socket %s:%d: %w", s.host, s.port, err)
	}
	defer conn.Close()
	defer s.forwarder.Close()

	s.logger.Info("DNS server listening", "addr", conn.LocalAddr())

	go func() {
		<-ctx.Done()
		conn.Close()
		s.forwarder.Close()
	}()

	go s.sweepLoop(ctx)
	go s.upstreamLoop(ctx, conn)

	buf := make([]byte, dns.MaxIncomingDNSMessageSize)
	for {
		n, clientAddr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info("DNS server stopped")
				return nil
			}
			s.logger.Error("DNS receive error", "err", err)
			continue
		}
		s.handleQuery(conn, clientAddr, append([]byte(nil), buf[:n]...))
	}
}

func (s *Server) handleQuery(conn *net.UDPConn, clientAddr *net.UDPAddr, msg []byte) {
	q, err := dns.ParseQuery(msg)
	if err != nil {
		s.logger.Debug("dropping malformed DNS query", "err", err, "from", clientAddr)
		return
	}

	outcome, err := s.resolver.Resolve(q)
	if err != nil {
		s.logger.Error("failed to build local answer", "err", err, "name", q.Q.Name)
		return
	}

	if !outcome.Forward {
		if _, err := conn.WriteToUDP(outcome.Answer, clientAddr); err != nil {
			s.logger.Error("DNS send error", "err", err, "dest", clientAddr)
		}
		return
	}

	if err := s.forwarder.Forward(msg, clientAddr, q.ID); err != nil {
		s.logger.Error("failed to forward query upstream", "err", err, "name", q.Q.Name)
	}
}

func (s *Server) upstreamLoop(ctx context.Context, clientConn *net.UDPConn) {
	buf := make([]byte, dns.MaxIncomingDNSMessageSize)
	for {
		n, err := s.forwarder.ReadUpstreamReply(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error("upstream receive error", "err", err)
			continue
		}

		client, out, ok := s.forwarder.Resolve(append([]byte(nil), buf[:n]...))
		if !ok {
			continue
		}
		if _, err := clientConn.WriteToUDP(out, client); err != nil {
			s.logger.Error("DNS send error relaying upstream reply", "err", err, "dest", client)
		}
	}
}

func (s *Server) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if expired := s.forwarder.Sweep(now); expired > 0 {
				s.logger.Debug("expired in-flight forwarded queries", "count", expired)
			}
		}
	}
}

// Package dnssvc implements the DNS resolver/forwarder: answer A-record
// queries straight from the local zone table, and relay everything else to
// a configured upstream server, correlating the upstream reply back to the
// original client by transaction ID. Grounded on the teacher's
// ForwardingResolver (forwarding_resolver.go) for the byte-patching
// relay idiom, simplified to this daemon's single-upstream, no-cache,
// single-threaded shape (SPEC_FULL.md §4.3, §5).
package dnssvc

import (
	"log/slog"

	"github.com/jroosing/netsvcd/internal/audit"
	"github.com/jroosing/netsvcd/internal/dns"
	"github.com/jroosing/netsvcd/internal/store"
)

// Resolver answers what it can from the local zone and hands everything
// else to the caller for forwarding via Outcome.Forward.
type Resolver struct {
	zone   store.ZoneTable
	logger *slog.Logger
	audit  *audit.Log // nil when the audit log is disabled
}

// NewResolver wires a zone table into a resolver. auditLog may be nil.
func NewResolver(zone store.ZoneTable, logger *slog.Logger, auditLog *audit.Log) *Resolver {
	return &Resolver{zone: zone, logger: logger, audit: auditLog}
}

// Outcome is the result of resolving one incoming query.
type Outcome struct {
	// Answer holds a complete reply to send directly to the client. Nil if
	// the query should be forwarded instead.
	Answer []byte
	// Forward is true when the query matched no local zone entry (or asked
	// for something other than an A record) and must go upstream.
	Forward bool
}

// Resolve answers q from the local zone if possible. Only QTYPE=A queries
// are ever answered locally (the resolved Open Question in SPEC_FULL.md
// §9): anything else — AAAA, MX, NS, whatever — is forwarded even if the
// name exists in the zone, since the zone table only carries A records.
func (r *Resolver) Resolve(q dns.Query) (Outcome, error) {
	if q.Q.Type != uint16(dns.TypeA) || q.Q.Class != uint16(dns.ClassIN) {
		r.recordQuery(q, true)
		return Outcome{Forward: true}, nil
	}

	entry, ok := r.zone[q.Q.Name]
	if !ok {
		r.recordQuery(q, true)
		return Outcome{Forward: true}, nil
	}

	answer, err := dns.BuildAnswer(q.ID, q.RD(), q.Q, entry.IPs, entry.TTL)
	if err != nil {
		return Outcome{}, err
	}
	r.logger.Debug("answered from local zone", "name", q.Q.Name, "ips", entry.IPs)
	r.recordQuery(q, false)
	return Outcome{Answer: answer}, nil
}

func (r *Resolver) recordQuery(q dns.Query, forwarded bool) {
	if r.audit == nil {
		return
	}
	if err := r.audit.RecordDNSQuery(q.Q.Name, q.Q.Type, forwarded); err != nil {
		r.logger.Error("failed to write audit log entry", "err", err)
	}
}

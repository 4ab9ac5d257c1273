// Package config loads the immutable configuration record shared by the
// DHCP and DNS services: the JSON file contract of keys IP_DHCP, MASK_DHCP,
// IP_ROUTER, IP_DNS, START_IP_ADDRESS, START_IP_END, TIME_IP (plus the
// optional UPSTREAM_DNS), layered with environment-variable overrides for
// the ambient concerns (listen addresses, logging, the admin API, the
// audit log) that the wire contract is silent on.
package config

import (
	"net"
	"time"
)

// Config is the fully resolved, immutable configuration record. Both
// engines receive a pointer to the same instance; apart from cmd/netsvcd's
// --debug flag raising Logging.Level right after Load, nothing mutates it.
type Config struct {
	// Lease-engine configuration record (spec §3).
	DHCPServerIP net.IP
	SubnetMask   net.IP
	RouterIP     net.IP
	DNSIP        net.IP
	PoolStart    uint32
	PoolEnd      uint32
	LeaseSeconds uint32
	UpstreamDNS  string

	// Listen addresses.
	DHCPListenHost string
	DHCPListenPort int
	DNSListenHost  string
	DNSListenPort  int

	// State file locations.
	BusyAddressFile string
	ZoneFile        string

	// DNS forwarder tuning (resolved Open Questions, SPEC_FULL §9).
	InFlightTimeout time.Duration
	SweepInterval   time.Duration

	Logging LoggingConfig
	Admin   AdminConfig
	Audit   AuditConfig
}

// LoggingConfig controls internal/logging.Configure.
type LoggingConfig struct {
	Level            string
	Structured       bool
	StructuredFormat string
	IncludePID       bool
}

// AdminConfig controls the optional read-only management HTTP API.
type AdminConfig struct {
	Enabled bool
	Host    string
	Port    int
}

// AuditConfig controls the supplemental lease/query audit log.
type AuditConfig struct {
	Enabled bool
	DBPath  string
}

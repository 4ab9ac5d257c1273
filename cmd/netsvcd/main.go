// Command netsvcd runs the DHCP lease server and DNS resolver/forwarder
// described by a single JSON configuration file. Grounded on the teacher's
// cmd/hydradns orchestration shape (flag parsing, signal.NotifyContext,
// goroutine-per-listener, graceful admin-API shutdown) but built around two
// UDP services instead of one.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jroosing/netsvcd/internal/admin"
	"github.com/jroosing/netsvcd/internal/audit"
	"github.com/jroosing/netsvcd/internal/config"
	"github.com/jroosing/netsvcd/internal/dhcpsvc"
	"github.com/jroosing/netsvcd/internal/dnssvc"
	"github.com/jroosing/netsvcd/internal/logging"
	"github.com/jroosing/netsvcd/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "netsvcd.json", "path to the JSON configuration file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if *debug {
		cfg.Logging.Level = "DEBUG"
	}

	logger := logging.Configure(cfg.Logging)

	instanceID := uuid.New().String()[:8]
	logger.Info("netsvcd starting", "instance", instanceID, "config", *configPath)

	busy, err := store.LoadBusySet(cfg.BusyAddressFile)
	if err != nil {
		return fmt.Errorf("loading busy-address set: %w", err)
	}
	zone, err := store.LoadZoneTable(cfg.ZoneFile)
	if err != nil {
		return fmt.Errorf("loading zone table: %w", err)
	}

	var auditLog *audit.Log
	if cfg.Audit.Enabled {
		auditLog, err = audit.Open(cfg.Audit.DBPath)
		if err != nil {
			return fmt.Errorf("opening audit log: %w", err)
		}
		defer auditLog.Close()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dhcpLogger := logging.ForService(logger, "dhcp")
	dnsLogger := logging.ForService(logger, "dns")

	dhcpEngine := dhcpsvc.New(cfg, busy, dhcpLogger, auditLog)
	dhcpServer := dhcpsvc.NewServer(dhcpEngine, dhcpLogger, cfg.DHCPListenHost, cfg.DHCPListenPort)

	forwarder, err := dnssvc.NewForwarder(cfg.UpstreamDNS, cfg.InFlightTimeout, dnsLogger)
	if err != nil {
		return fmt.Errorf("setting up DNS forwarder: %w", err)
	}
	resolver := dnssvc.NewResolver(zone, dnsLogger, auditLog)
	dnsServer := dnssvc.NewServer(resolver, forwarder, dnsLogger, cfg.DNSListenHost, cfg.DNSListenPort, cfg.SweepInterval)

	var adminSrv *admin.Server
	if cfg.Admin.Enabled {
		adminSrv = admin.New(cfg, busy, zone, logger)
		logger.Info("admin API starting", "addr", adminSrv.Addr())
		go func() {
			if err := adminSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("admin API error", "err", err)
				cancel()
			}
		}()
	}

	errCh := make(chan error, 2)
	go func() { errCh <- dhcpServer.ListenAndServe(ctx) }()
	go func() { errCh <- dnsServer.ListenAndServe(ctx) }()

	var runErr error
	for range 2 {
		if err := <-errCh; err != nil && runErr == nil {
			runErr = err
			cancel()
		}
	}

	if adminSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = adminSrv.Shutdown(shutdownCtx)
		shutdownCancel()
		logger.Info("admin API stopped")
	}

	logger.Info("netsvcd stopped")
	return runErr
}

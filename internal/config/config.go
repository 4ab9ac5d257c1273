package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads the configuration file at configPath (the JSON contract of
// SPEC_FULL.md §6) and layers environment-variable overrides (NETSVCD_
// prefix) for the ambient settings the wire contract doesn't cover. A
// missing or malformed configuration file is a startup-fatal error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("NETSVCD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", configPath, err)
	}

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("UPSTREAM_DNS", "8.8.8.8")

	v.SetDefault("dhcp_listen_host", "0.0.0.0")
	v.SetDefault("dhcp_listen_port", 67)
	v.SetDefault("dns_listen_host", "0.0.0.0")
	v.SetDefault("dns_listen_port", 53)

	v.SetDefault("busy_address_file", "busy_ip_addresses_dhcp.json")
	v.SetDefault("zone_file", "domain_dns_name_ip.json")

	v.SetDefault("in_flight_timeout", "5s")
	v.SetDefault("sweep_interval", "1s")

	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.structured", false)
	v.SetDefault("logging.structured_format", "json")
	v.SetDefault("logging.include_pid", false)

	v.SetDefault("admin.enabled", false)
	v.SetDefault("admin.host", "127.0.0.1")
	v.SetDefault("admin.port", 8080)

	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.db_path", "netsvcd_audit.db")
}

func fromViper(v *viper.Viper) (*Config, error) {
	leaseSeconds, err := strconv.ParseUint(v.GetString("TIME_IP"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("TIME_IP must be a decimal integer: %w", err)
	}

	dhcpIP := net.ParseIP(v.GetString("IP_DHCP")).To4()
	mask := net.ParseIP(v.GetString("MASK_DHCP")).To4()
	router := net.ParseIP(v.GetString("IP_ROUTER")).To4()
	dnsIP := net.ParseIP(v.GetString("IP_DNS")).To4()
	poolStartIP := net.ParseIP(v.GetString("START_IP_ADDRESS")).To4()
	poolEndIP := net.ParseIP(v.GetString("START_IP_END")).To4()

	for name, ip := range map[string]net.IP{
		"IP_DHCP": dhcpIP, "MASK_DHCP": mask, "IP_ROUTER": router, "IP_DNS": dnsIP,
		"START_IP_ADDRESS": poolStartIP, "START_IP_END": poolEndIP,
	} {
		if ip == nil {
			return nil, fmt.Errorf("%s is missing or not a valid IPv4 dotted quad", name)
		}
	}

	inFlightTimeout, err := time.ParseDuration(v.GetString("in_flight_timeout"))
	if err != nil {
		return nil, fmt.Errorf("in_flight_timeout: %w", err)
	}
	sweepInterval, err := time.ParseDuration(v.GetString("sweep_interval"))
	if err != nil {
		return nil, fmt.Errorf("sweep_interval: %w", err)
	}

	cfg := &Config{
		DHCPServerIP: dhcpIP,
		SubnetMask:   mask,
		RouterIP:     router,
		DNSIP:        dnsIP,
		PoolStart:    ipToUint32(poolStartIP),
		PoolEnd:      ipToUint32(poolEndIP),
		LeaseSeconds: uint32(leaseSeconds), //nolint:gosec // parsed with bit size 32 above

		UpstreamDNS: v.GetString("UPSTREAM_DNS"),

		DHCPListenHost: v.GetString("dhcp_listen_host"),
		DHCPListenPort: v.GetInt("dhcp_listen_port"),
		DNSListenHost:  v.GetString("dns_listen_host"),
		DNSListenPort:  v.GetInt("dns_listen_port"),

		BusyAddressFile: v.GetString("busy_address_file"),
		ZoneFile:        v.GetString("zone_file"),

		InFlightTimeout: inFlightTimeout,
		SweepInterval:   sweepInterval,

		Logging: LoggingConfig{
			Level:            strings.ToUpper(v.GetString("logging.level")),
			Structured:       v.GetBool("logging.structured"),
			StructuredFormat: v.GetString("logging.structured_format"),
			IncludePID:       v.GetBool("logging.include_pid"),
		},
		Admin: AdminConfig{
			Enabled: v.GetBool("admin.enabled"),
			Host:    v.GetString("admin.host"),
			Port:    v.GetInt("admin.port"),
		},
		Audit: AuditConfig{
			Enabled: v.GetBool("audit.enabled"),
			DBPath:  v.GetString("audit.db_path"),
		},
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.PoolStart > cfg.PoolEnd {
		return errors.New("START_IP_ADDRESS must not be greater than START_IP_END")
	}
	if cfg.DHCPListenPort <= 0 || cfg.DHCPListenPort > 65535 {
		return errors.New("dhcp_listen_port must be 1..65535")
	}
	if cfg.DNSListenPort <= 0 || cfg.DNSListenPort > 65535 {
		return errors.New("dns_listen_port must be 1..65535")
	}
	if cfg.Admin.Enabled && (cfg.Admin.Port <= 0 || cfg.Admin.Port > 65535) {
		return errors.New("admin.port must be 1..65535")
	}
	return nil
}

func ipToUint32(ip net.IP) uint32 {
	v4 := ip.To4()
	return uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3])
}

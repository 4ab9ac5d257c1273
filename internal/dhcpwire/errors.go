// Package dhcpwire provides wire-format parsing and encoding for the BOOTP/DHCP
// frames this daemon needs: the fixed RFC 2131 header plus the handful of
// options (1, 3, 6, 50, 51, 53, 54, 56) the lease engine reads or writes.
package dhcpwire

import "errors"

// ErrMalformed is a sentinel error for DHCP wire violations. Wrap it with
// fmt.Errorf("context: %w", ErrMalformed) to add detail.
var ErrMalformed = errors.New("dhcp wire error")

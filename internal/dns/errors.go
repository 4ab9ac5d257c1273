package dns

import "errors"

// ErrDNSError is a sentinel error type for DNS protocol violations.
// Wrap this with fmt.Errorf("context: %w", ErrDNSError) to add context.
var ErrDNSError = errors.New("dns wire error")

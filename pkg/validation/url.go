// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for user-provided inputs that are used in
// outbound HTTP requests, database keys, or log output. Using these validators
// prevents injection attacks (SSRF, log injection, path traversal).
package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"unicode"
)

// ValidateOutboundURL checks that a URL is safe for an outbound request.
//
// Rules:
//   - Scheme must be http or https. This holds even in dev mode.
//   - Private and loopback hosts (localhost, 127.0.0.1, 10.x.x.x,
//     192.168.x.x, 172.16-31.x.x) are rejected unless devMode is true.
//
// The check is on the literal host only. It does not resolve DNS, so a
// public hostname pointing at a private address is not caught here.
//
// Example:
//
//	if err := validation.ValidateOutboundURL(target, cfg.DevMode); err != nil {
//	    return fmt.Errorf("refusing request: %w", err)
//	}
func ValidateOutboundURL(rawURL string, devMode bool) error {
	if rawURL == "" {
		return fmt.Errorf("url cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q (must be http or https)", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("url has no host")
	}

	if devMode {
		return nil
	}

	if isPrivateHost(host) {
		return fmt.Errorf("private or loopback host %q blocked outside dev mode", host)
	}

	return nil
}

// isPrivateHost reports whether host is a loopback name or an address in
// a private range (RFC 1918) or the loopback range.
func isPrivateHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified()
}

// SanitizeURLForLog reduces a URL to scheme, host, and path for safe logging.
// Query strings and fragments can carry tokens or session identifiers, so
// they are dropped. Unparseable input is replaced with a placeholder rather
// than passed through.
//
// Example:
//
//	logger.Info("posting webhook", "url", validation.SanitizeURLForLog(target))
func SanitizeURLForLog(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<unparseable-url>"
	}

	sanitized := url.URL{
		Scheme: u.Scheme,
		Host:   u.Host,
		Path:   u.Path,
	}
	return sanitized.String()
}

// StripNonPrintable removes control characters and other non-printable
// runes from a string. Used on header values and log fields that originate
// from external input.
func StripNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || unicode.IsPrint(r) {
			return r
		}
		return -1
	}, s)
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package validation

import "strings"

// sensitiveHeaderSubstrings mark header names that must never be
// forwarded on outbound requests. Substring match, case-insensitive:
// "Set-Cookie" and "Proxy-Authorization" are caught along with the
// plain forms.
var sensitiveHeaderSubstrings = []string{
	"cookie",
	"authorization",
}

// SanitizeHeaders returns a copy of headers with sensitive entries removed
// and non-printable characters stripped from the remaining values. The
// input map is not modified.
//
// Example:
//
//	safe := validation.SanitizeHeaders(req.Headers)
//	for k, v := range safe {
//	    httpReq.Header.Set(k, v)
//	}
func SanitizeHeaders(headers map[string]string) map[string]string {
	sanitized := make(map[string]string, len(headers))
	for name, value := range headers {
		if IsSensitiveHeader(name) {
			continue
		}
		sanitized[name] = StripNonPrintable(value)
	}
	return sanitized
}

// IsSensitiveHeader reports whether a header name carries credentials and
// must be excluded from outbound requests and log output.
func IsSensitiveHeader(name string) bool {
	lower := strings.ToLower(name)
	for _, substring := range sensitiveHeaderSubstrings {
		if strings.Contains(lower, substring) {
			return true
		}
	}
	return false
}

package validation

import (
	"testing"
)

func TestValidateOutboundURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		devMode bool
		wantErr bool
	}{
		// Valid targets
		{"public https", "https://api.example.com/graphql", false, false},
		{"public http", "http://ingestion.example.com:3000/webhooks/github", false, false},
		{"public ip", "https://93.184.216.34/query", false, false},

		// Scheme enforcement, including in dev mode
		{"file scheme", "file:///etc/passwd", false, true},
		{"ftp scheme", "ftp://example.com/data", false, true},
		{"gopher scheme", "gopher://example.com", false, true},
		{"file scheme dev mode", "file:///etc/passwd", true, true},
		{"no scheme", "example.com/path", false, true},
		{"empty", "", false, true},

		// Private targets blocked outside dev mode
		{"localhost", "http://localhost:3000/webhooks/github", false, true},
		{"localhost mixed case", "http://LocalHost:3000", false, true},
		{"loopback", "http://127.0.0.1:4000/graphql", false, true},
		{"ten range", "http://10.0.0.1/internal", false, true},
		{"one-nine-two range", "http://192.168.1.1/router", false, true},
		{"one-seven-two range", "http://172.20.0.1/metadata", false, true},
		{"unspecified", "http://0.0.0.0:8080", false, true},

		// Same targets allowed in dev mode
		{"localhost dev mode", "http://localhost:3000/webhooks/github", true, false},
		{"loopback dev mode", "http://127.0.0.1:4000/graphql", true, false},
		{"ten range dev mode", "http://10.0.0.1/internal", true, false},

		// Edge of the 172.16/12 block
		{"one-seven-two low edge", "http://172.16.0.1", false, true},
		{"one-seven-two high edge", "http://172.31.255.254", false, true},
		{"one-seven-two outside block", "http://172.32.0.1", false, false},
		{"one-seven-two below block", "http://172.15.0.1", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutboundURL(tt.url, tt.devMode)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutboundURL(%q, %v) error = %v, wantErr %v", tt.url, tt.devMode, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeURLForLog(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"strips query", "https://api.example.com/graphql?token=secret123", "https://api.example.com/graphql"},
		{"strips fragment", "https://api.example.com/docs#section", "https://api.example.com/docs"},
		{"strips both", "http://host:4000/query?key=abc#frag", "http://host:4000/query"},
		{"plain url unchanged", "https://api.example.com/graphql", "https://api.example.com/graphql"},
		{"keeps port", "http://localhost:3000/webhooks/github", "http://localhost:3000/webhooks/github"},
		{"unparseable", "http://bad\x7furl^ %", "<unparseable-url>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeURLForLog(tt.url); got != tt.want {
				t.Errorf("SanitizeURLForLog(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestStripNonPrintable(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean string", "application/json", "application/json"},
		{"newline injection", "value\r\nSet-Cookie: evil", "valueSet-Cookie: evil"},
		{"null byte", "value\x00hidden", "valuehidden"},
		{"tab preserved", "a\tb", "a\tb"},
		{"escape sequence", "\x1b[31mred\x1b[0m", "[31mred[0m"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripNonPrintable(tt.input); got != tt.want {
				t.Errorf("StripNonPrintable(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

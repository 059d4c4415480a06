package validation

import (
	"testing"
)

func TestValidateRepoFullName(t *testing.T) {
	tests := []struct {
		name     string
		fullName string
		wantErr  bool
	}{
		// Valid names
		{"simple", "facebook/react", false},
		{"with hyphen", "tree-sitter/tree-sitter-go", false},
		{"with dot", "dotnet/runtime.labs", false},
		{"with underscore", "my_org/my_repo", false},
		{"digits", "u2/p2p", false},

		// Invalid names - injection attempts
		{"empty", "", true},
		{"no slash", "react", true},
		{"two slashes", "a/b/c", true},
		{"path traversal", "../../etc/passwd", true},
		{"leading slash", "/react", true},
		{"trailing slash", "facebook/", true},
		{"spaces", "face book/react", true},
		{"newline", "facebook/react\n", true},
		{"starts with dot", ".hidden/repo", true},
		{"shell metachar", "org/repo;rm -rf", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRepoFullName(tt.fullName)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRepoFullName(%q) error = %v, wantErr %v", tt.fullName, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeRepoFullName(t *testing.T) {
	tests := []struct {
		name     string
		fullName string
		want     string
		wantErr  bool
	}{
		{"passthrough", "facebook/react", "facebook/react", false},
		{"trims whitespace", "  facebook/react  ", "facebook/react", false},
		{"invalid rejected", "no-slash", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeRepoFullName(tt.fullName)
			if (err != nil) != tt.wantErr {
				t.Errorf("SanitizeRepoFullName(%q) error = %v, wantErr %v", tt.fullName, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("SanitizeRepoFullName(%q) = %q, want %q", tt.fullName, got, tt.want)
			}
		})
	}
}

func TestValidateLanguage(t *testing.T) {
	tests := []struct {
		name     string
		language string
		wantErr  bool
	}{
		{"typescript", "typescript", false},
		{"python", "python", false},
		{"go", "go", false},
		{"c plus plus", "c++", false},
		{"c sharp", "c#", false},
		{"objective-c", "objective-c", false},

		{"empty", "", true},
		{"uppercase", "TypeScript", true},
		{"spaces", "type script", true},
		{"injection", "go\"){malicious}", true},
		{"starts with digit", "3lang", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLanguage(tt.language)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLanguage(%q) error = %v, wantErr %v", tt.language, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeLanguage(t *testing.T) {
	tests := []struct {
		name     string
		language string
		want     string
		wantErr  bool
	}{
		{"lowercase passthrough", "python", "python", false},
		{"uppercase normalized", "TypeScript", "typescript", false},
		{"trimmed", "  go  ", "go", false},
		{"invalid rejected", "bad lang!", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeLanguage(tt.language)
			if (err != nil) != tt.wantErr {
				t.Errorf("SanitizeLanguage(%q) error = %v, wantErr %v", tt.language, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("SanitizeLanguage(%q) = %q, want %q", tt.language, got, tt.want)
			}
		})
	}
}

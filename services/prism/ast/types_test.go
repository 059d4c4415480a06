package ast

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestEntityKind_String(t *testing.T) {
	tests := []struct {
		kind EntityKind
		want string
	}{
		{EntityUnknown, "unknown"},
		{EntityFunction, "function"},
		{EntityMethod, "method"},
		{EntityClass, "class"},
		{EntityKind(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("EntityKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestParseEntityKind(t *testing.T) {
	tests := []struct {
		input string
		want  EntityKind
	}{
		{"function", EntityFunction},
		{"method", EntityMethod},
		{"class", EntityClass},
		{"Function", EntityFunction},
		{" class ", EntityClass},
		{"interface", EntityUnknown},
		{"", EntityUnknown},
	}

	for _, tt := range tests {
		if got := ParseEntityKind(tt.input); got != tt.want {
			t.Errorf("ParseEntityKind(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestEntityKind_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(EntityMethod)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `"method"` {
		t.Errorf("Marshal() = %s, want %q", data, `"method"`)
	}
}

func TestEntityKind_UnmarshalJSON(t *testing.T) {
	var kind EntityKind
	if err := json.Unmarshal([]byte(`"class"`), &kind); err != nil {
		t.Fatalf("Unmarshal(string) error = %v", err)
	}
	if kind != EntityClass {
		t.Errorf("Unmarshal(string) = %v, want %v", kind, EntityClass)
	}

	// Integer fallback for old payloads
	if err := json.Unmarshal([]byte(`1`), &kind); err != nil {
		t.Fatalf("Unmarshal(int) error = %v", err)
	}
	if kind != EntityFunction {
		t.Errorf("Unmarshal(int) = %v, want %v", kind, EntityFunction)
	}

	if err := json.Unmarshal([]byte(`true`), &kind); err == nil {
		t.Error("expected error for bool input")
	}
}

func TestGenerateEntityID_Deterministic(t *testing.T) {
	id1 := GenerateEntityID("src/app.ts", "handleRequest")
	id2 := GenerateEntityID("src/app.ts", "handleRequest")

	if id1 != id2 {
		t.Errorf("IDs differ for identical input: %q != %q", id1, id2)
	}
	if !strings.Contains(id1, "src/app.ts") || !strings.Contains(id1, "handleRequest") {
		t.Errorf("ID %q should contain path and name", id1)
	}

	// Different name, different ID
	if GenerateEntityID("src/app.ts", "other") == id1 {
		t.Error("different names produced the same ID")
	}
	// Different file, different ID
	if GenerateEntityID("src/b.ts", "handleRequest") == id1 {
		t.Error("different files produced the same ID")
	}
}

func TestCodeEntity_Validate(t *testing.T) {
	valid := CodeEntity{
		ID:        GenerateEntityID("a.go", "Foo"),
		Kind:      EntityFunction,
		Name:      "Foo",
		FilePath:  "a.go",
		LineStart: 1,
		LineEnd:   3,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid entity failed validation: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*CodeEntity)
	}{
		{"empty name", func(e *CodeEntity) { e.Name = "" }},
		{"empty path", func(e *CodeEntity) { e.FilePath = "" }},
		{"path traversal", func(e *CodeEntity) { e.FilePath = "../../etc/passwd" }},
		{"zero line start", func(e *CodeEntity) { e.LineStart = 0 }},
		{"end before start", func(e *CodeEntity) { e.LineStart = 5; e.LineEnd = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entity := valid
			tt.mutate(&entity)
			if err := entity.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestFileAnalysis_Validate(t *testing.T) {
	analysis := FileAnalysis{
		Path:     "a.go",
		Language: "go",
		Entities: []*CodeEntity{
			{Name: "Foo", FilePath: "a.go", LineStart: 1, LineEnd: 1},
		},
	}
	if err := analysis.Validate(); err != nil {
		t.Errorf("valid analysis failed validation: %v", err)
	}

	analysis.Entities = append(analysis.Entities, nil)
	if err := analysis.Validate(); err == nil {
		t.Error("expected error for nil entity")
	}

	analysis.Entities = nil
	analysis.Language = ""
	if err := analysis.Validate(); err == nil {
		t.Error("expected error for empty language")
	}
}

func TestFileAnalysis_LocalImports(t *testing.T) {
	analysis := FileAnalysis{
		Imports: []ImportEdge{
			{Module: "react", IsLocal: false},
			{Module: "./utils", IsLocal: true},
			{Module: "../shared/config", IsLocal: true},
		},
	}

	local := analysis.LocalImports()
	if len(local) != 2 {
		t.Fatalf("got %d local imports, want 2", len(local))
	}
	for _, imp := range local {
		if !imp.IsLocal {
			t.Errorf("non-local import %q in LocalImports()", imp.Module)
		}
	}
}

func TestLanguageForPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"src/app.ts", "typescript"},
		{"src/App.tsx", "typescript"},
		{"lib/index.js", "javascript"},
		{"lib/Widget.jsx", "javascript"},
		{"scripts/run.py", "python"},
		{"main.go", "go"},
		{"core/lib.rs", "rust"},
		{"README.md", "markdown"},
		{"config.yaml", "yaml"},
		{"config.yml", "yaml"},
		{"Dockerfile", "dockerfile"},
		{"build/Dockerfile", "dockerfile"},
		{"Makefile", "make"},
		{"photo.png", "unknown"},
		{"no_extension", "unknown"},
		{"UPPER.TS", "typescript"},
	}

	for _, tt := range tests {
		if got := LanguageForPath(tt.path); got != tt.want {
			t.Errorf("LanguageForPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestParserRegistry_Register(t *testing.T) {
	registry := NewParserRegistry()
	registry.Register(NewGoParser())

	if _, ok := registry.GetByLanguage("go"); !ok {
		t.Error("GetByLanguage(go) not found after Register")
	}
	if _, ok := registry.GetByLanguage("GO"); !ok {
		t.Error("GetByLanguage should be case-insensitive")
	}
	if _, ok := registry.GetByExtension(".go"); !ok {
		t.Error("GetByExtension(.go) not found after Register")
	}
	if _, ok := registry.GetByExtension(".rs"); ok {
		t.Error("GetByExtension(.rs) should not be found")
	}

	// Nil registration is a no-op
	registry.Register(nil)
	if got := len(registry.Languages()); got != 1 {
		t.Errorf("got %d languages after nil Register, want 1", got)
	}
}

func TestNewDefaultRegistry(t *testing.T) {
	registry := NewDefaultRegistry()

	languages := registry.Languages()
	if len(languages) != 4 {
		t.Fatalf("got %d languages, want 4: %v", len(languages), languages)
	}

	for _, lang := range []string{"typescript", "javascript", "python", "go"} {
		if _, ok := registry.GetByLanguage(lang); !ok {
			t.Errorf("missing language %q", lang)
		}
	}

	// TSX routes to the TypeScript parser
	parser, ok := registry.GetByExtension(".tsx")
	if !ok {
		t.Fatal("missing extension .tsx")
	}
	if parser.Language() != "typescript" {
		t.Errorf(".tsx maps to %q, want typescript", parser.Language())
	}
}

package ast

import (
	"context"
	"strings"
	"testing"
)

// Test source code samples (embedded, no file I/O).
const (
	testGoImports = `package main

import (
	"fmt"
	stdlog "log"
	_ "embed"
	. "strings"
	"github.com/acme/widgets/internal/db"
)
`

	testGoSingleImport = `package main

import "os"
`

	testGoFunctions = `package svc

// Add returns the sum of a and b.
func Add(a, b int) int {
	return a + b
}

func helper(x int) (int, error) {
	return x, nil
}

func Variadic(items ...string) {
	_ = items
}
`

	testGoMethods = `package svc

type Store struct {
	data map[string]string
}

// Get returns the value for key.
func (s *Store) Get(key string) string {
	return s.data[key]
}

func (s *Store) set(key, value string) {
	s.data[key] = value
}
`

	testGoGenerics = `package svc

type Cache[K comparable, V any] struct {
	items map[K]V
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.items[key]
	return v, ok
}
`

	testGoTypes = `package svc

type Handler interface {
	Handle(input string) error
}

type Alias = Handler

type config struct {
	name string
}
`

	testGoValues = `package svc

const MaxRetries = 3

var (
	DefaultName = "svc"
	internal    = 1
)
`

	testGoSyntaxError = `package svc

func broken( {
}
`
)

func TestGoParser_Language(t *testing.T) {
	parser := NewGoParser()
	if got := parser.Language(); got != "go" {
		t.Errorf("Language() = %q, want %q", got, "go")
	}
}

func TestGoParser_Extensions(t *testing.T) {
	parser := NewGoParser()
	exts := parser.Extensions()
	if len(exts) != 1 || exts[0] != ".go" {
		t.Errorf("Extensions() = %v, want [.go]", exts)
	}
}

func TestGoParser_Parse_Imports(t *testing.T) {
	parser := NewGoParser()
	ctx := context.Background()

	analysis, err := parser.Parse(ctx, []byte(testGoImports), "main.go")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	byModule := make(map[string]ImportEdge)
	for _, imp := range analysis.Imports {
		byModule[imp.Module] = imp
	}

	if _, ok := byModule["fmt"]; !ok {
		t.Error("missing import 'fmt'")
	}

	logImp, ok := byModule["log"]
	if !ok {
		t.Fatal("missing import 'log'")
	}
	if len(logImp.Specifiers) != 1 || logImp.Specifiers[0].Local != "stdlog" {
		t.Errorf("log specifiers = %+v, want alias stdlog", logImp.Specifiers)
	}

	embedImp, ok := byModule["embed"]
	if !ok {
		t.Fatal("missing blank import 'embed'")
	}
	if len(embedImp.Specifiers) != 0 {
		t.Errorf("blank import specifiers = %+v, want none", embedImp.Specifiers)
	}

	stringsImp, ok := byModule["strings"]
	if !ok {
		t.Fatal("missing dot import 'strings'")
	}
	if !stringsImp.IsWildcard {
		t.Error("dot import should be a wildcard import")
	}

	if _, ok := byModule["github.com/acme/widgets/internal/db"]; !ok {
		t.Error("missing module-path import")
	}

	// Locality is resolved later against the module path, never here.
	for _, imp := range analysis.Imports {
		if imp.IsLocal {
			t.Errorf("import %q should not be marked local at parse time", imp.Module)
		}
	}
}

func TestGoParser_Parse_SingleImport(t *testing.T) {
	parser := NewGoParser()
	ctx := context.Background()

	analysis, err := parser.Parse(ctx, []byte(testGoSingleImport), "main.go")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(analysis.Imports) != 1 || analysis.Imports[0].Module != "os" {
		t.Errorf("Imports = %+v, want single 'os'", analysis.Imports)
	}
}

func TestGoParser_Parse_Functions(t *testing.T) {
	parser := NewGoParser()
	ctx := context.Background()

	analysis, err := parser.Parse(ctx, []byte(testGoFunctions), "svc.go")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	byName := make(map[string]*CodeEntity)
	for _, e := range analysis.Entities {
		byName[e.Name] = e
	}

	add, ok := byName["Add"]
	if !ok {
		t.Fatal("missing entity 'Add'")
	}
	if add.Kind != EntityFunction {
		t.Errorf("Add Kind = %v, want function", add.Kind)
	}
	if !add.Metadata.Exported {
		t.Error("Add should be exported")
	}
	if !add.Metadata.HasDoc {
		t.Error("Add should have a doc comment")
	}
	if add.Metadata.ParamCount != 2 {
		t.Errorf("Add ParamCount = %d, want 2", add.Metadata.ParamCount)
	}
	if add.Metadata.ReturnType != "int" {
		t.Errorf("Add ReturnType = %q, want int", add.Metadata.ReturnType)
	}

	helper, ok := byName["helper"]
	if !ok {
		t.Fatal("missing entity 'helper'")
	}
	if helper.Metadata.Exported {
		t.Error("helper should not be exported")
	}
	if helper.Metadata.ReturnType != "(int, error)" {
		t.Errorf("helper ReturnType = %q, want (int, error)", helper.Metadata.ReturnType)
	}

	variadic, ok := byName["Variadic"]
	if !ok {
		t.Fatal("missing entity 'Variadic'")
	}
	if variadic.Metadata.ParamCount != 1 {
		t.Errorf("Variadic ParamCount = %d, want 1", variadic.Metadata.ParamCount)
	}

	exports := make(map[string]bool)
	for _, exp := range analysis.Exports {
		exports[exp] = true
	}
	if !exports["Add"] || !exports["Variadic"] {
		t.Errorf("Exports = %v, want Add and Variadic", analysis.Exports)
	}
	if exports["helper"] {
		t.Error("helper should not be exported")
	}
}

func TestGoParser_Parse_Methods(t *testing.T) {
	parser := NewGoParser()
	ctx := context.Background()

	analysis, err := parser.Parse(ctx, []byte(testGoMethods), "store.go")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	byName := make(map[string]*CodeEntity)
	for _, e := range analysis.Entities {
		byName[e.Name] = e
	}

	store, ok := byName["Store"]
	if !ok {
		t.Fatal("missing struct entity 'Store'")
	}
	if store.Kind != EntityClass {
		t.Errorf("Store Kind = %v, want class", store.Kind)
	}

	get, ok := byName["Store.Get"]
	if !ok {
		t.Fatal("missing method entity 'Store.Get'")
	}
	if get.Kind != EntityMethod {
		t.Errorf("Get Kind = %v, want method", get.Kind)
	}
	if get.Metadata.Parent != "Store" {
		t.Errorf("Get Parent = %q, want Store", get.Metadata.Parent)
	}
	if get.Metadata.ParamCount != 1 {
		t.Errorf("Get ParamCount = %d, want 1", get.Metadata.ParamCount)
	}
	if !get.Metadata.HasDoc {
		t.Error("Get should have a doc comment")
	}
	if get.Metadata.ReturnType != "string" {
		t.Errorf("Get ReturnType = %q, want string", get.Metadata.ReturnType)
	}

	set, ok := byName["Store.set"]
	if !ok {
		t.Fatal("missing method entity 'Store.set'")
	}
	if set.Metadata.Exported {
		t.Error("set should not be exported")
	}
	if set.Metadata.ParamCount != 2 {
		t.Errorf("set ParamCount = %d, want 2", set.Metadata.ParamCount)
	}
}

func TestGoParser_Parse_GenericReceiver(t *testing.T) {
	parser := NewGoParser()
	ctx := context.Background()

	analysis, err := parser.Parse(ctx, []byte(testGoGenerics), "cache.go")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	byName := make(map[string]*CodeEntity)
	for _, e := range analysis.Entities {
		byName[e.Name] = e
	}

	if _, ok := byName["Cache"]; !ok {
		t.Fatal("missing generic struct entity 'Cache'")
	}

	get, ok := byName["Cache.Get"]
	if !ok {
		t.Fatalf("missing method entity 'Cache.Get', entities = %+v", analysis.Entities)
	}
	if get.Metadata.Parent != "Cache" {
		t.Errorf("Get Parent = %q, want Cache", get.Metadata.Parent)
	}
}

func TestGoParser_Parse_TypeDeclarations(t *testing.T) {
	parser := NewGoParser()
	ctx := context.Background()

	analysis, err := parser.Parse(ctx, []byte(testGoTypes), "types.go")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// Only struct types become entities.
	if len(analysis.Entities) != 1 {
		t.Fatalf("got %d entities, want 1: %+v", len(analysis.Entities), analysis.Entities)
	}
	cfg := analysis.Entities[0]
	if cfg.Name != "config" || cfg.Kind != EntityClass {
		t.Errorf("entity = %+v, want struct config as class", cfg)
	}
	if cfg.Metadata.Exported {
		t.Error("config should not be exported")
	}

	exports := make(map[string]bool)
	for _, exp := range analysis.Exports {
		exports[exp] = true
	}
	if !exports["Handler"] {
		t.Error("interface Handler should be exported")
	}
	if !exports["Alias"] {
		t.Error("type alias Alias should be exported")
	}
	if exports["config"] {
		t.Error("config should not be exported")
	}
}

func TestGoParser_Parse_ValueExports(t *testing.T) {
	parser := NewGoParser()
	ctx := context.Background()

	analysis, err := parser.Parse(ctx, []byte(testGoValues), "values.go")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	exports := make(map[string]bool)
	for _, exp := range analysis.Exports {
		exports[exp] = true
	}
	if !exports["MaxRetries"] {
		t.Error("const MaxRetries should be exported")
	}
	if !exports["DefaultName"] {
		t.Error("var DefaultName should be exported")
	}
	if exports["internal"] {
		t.Error("internal should not be exported")
	}
}

func TestGoParser_Parse_FilterUnexported(t *testing.T) {
	parser := NewGoParser(WithParseOptions(ParseOptions{
		IncludePrivate:  false,
		IncludeTypeOnly: true,
	}))
	ctx := context.Background()

	analysis, err := parser.Parse(ctx, []byte(testGoFunctions), "svc.go")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	for _, e := range analysis.Entities {
		if !e.Metadata.Exported {
			t.Errorf("unexported entity %q should be filtered", e.Name)
		}
	}
}

func TestGoParser_Parse_SyntaxError(t *testing.T) {
	parser := NewGoParser()
	ctx := context.Background()

	analysis, err := parser.Parse(ctx, []byte(testGoSyntaxError), "broken.go")
	if err != nil {
		t.Fatalf("Parse() should tolerate syntax errors, got: %v", err)
	}

	found := false
	for _, e := range analysis.Errors {
		if strings.Contains(e, "syntax errors") {
			found = true
		}
	}
	if !found {
		t.Errorf("Errors = %v, want syntax error note", analysis.Errors)
	}
}

func TestGoParser_Parse_ContextCancellation(t *testing.T) {
	parser := NewGoParser()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := parser.Parse(ctx, []byte(testGoFunctions), "test.go")
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if !strings.Contains(err.Error(), "canceled") {
		t.Errorf("expected 'canceled' in error, got: %v", err)
	}
}

func TestGoParser_Parse_FileTooLarge(t *testing.T) {
	parser := NewGoParser(WithMaxFileSize(10))
	ctx := context.Background()

	_, err := parser.Parse(ctx, []byte(testGoFunctions), "large.go")
	if err == nil {
		t.Fatal("expected error for file too large")
	}
	if !IsFileTooLarge(err) {
		t.Errorf("expected ErrFileTooLarge, got: %v", err)
	}
}

func TestGoParser_Parse_HashDeterministic(t *testing.T) {
	parser := NewGoParser()
	ctx := context.Background()

	first, err := parser.Parse(ctx, []byte(testGoMethods), "store.go")
	if err != nil {
		t.Fatalf("first parse failed: %v", err)
	}
	second, err := parser.Parse(ctx, []byte(testGoMethods), "store.go")
	if err != nil {
		t.Fatalf("second parse failed: %v", err)
	}

	if first.Hash != second.Hash {
		t.Errorf("hash not deterministic: %q != %q", first.Hash, second.Hash)
	}
	if len(first.Hash) != 64 {
		t.Errorf("expected 64-char hex hash, got %d chars", len(first.Hash))
	}
}

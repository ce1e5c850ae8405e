package parser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// ErrUnsupportedFile is returned for files no registered grammar handles.
var ErrUnsupportedFile = errors.New("unsupported file type")

// LanguageParser defines the interface each language must implement
type LanguageParser interface {
	// Language returns the language name (e.g., "go", "java")
	Language() string

	// Extensions returns file extensions this parser handles
	Extensions() []string

	// Grammar returns the tree-sitter grammar for the language
	Grammar() *sitter.Language
}

// Registry holds all registered language parsers
type Registry struct {
	parsers   map[string]LanguageParser // language name -> parser
	extToLang map[string]string         // extension -> language name
}

// NewRegistry creates a new parser registry
func NewRegistry() *Registry {
	return &Registry{
		parsers:   make(map[string]LanguageParser),
		extToLang: make(map[string]string),
	}
}

// Register adds a language parser to the registry
func (r *Registry) Register(p LanguageParser) {
	lang := p.Language()
	r.parsers[lang] = p
	for _, ext := range p.Extensions() {
		r.extToLang[strings.ToLower(ext)] = lang
	}
}

// GetParserForFile returns the appropriate parser for a file
func (r *Registry) GetParserForFile(filename string) (LanguageParser, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	lang, ok := r.extToLang[ext]
	if !ok {
		return nil, false
	}
	parser, ok := r.parsers[lang]
	return parser, ok
}

// SupportedExtensions returns all supported file extensions, sorted
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.extToLang))
	for ext := range r.extToLang {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ParseFile reads and parses path. The caller must Close the result.
func (r *Registry) ParseFile(ctx context.Context, path string) (*File, error) {
	if _, ok := r.GetParserForFile(path); !ok {
		return nil, fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedFile, path, strings.Join(r.SupportedExtensions(), " "))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return r.Parse(ctx, path, content)
}

// Parse parses content using the grammar selected by filename.
func (r *Registry) Parse(ctx context.Context, filename string, content []byte) (*File, error) {
	lang, ok := r.GetParserForFile(filename)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filename)
	}

	p := sitter.NewParser()
	p.SetLanguage(lang.Grammar())

	tree, err := p.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	return &File{
		Path:     filename,
		Language: lang.Language(),
		Content:  content,
		tree:     tree,
	}, nil
}

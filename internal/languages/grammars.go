package languages

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// GrammarParser binds a language name and its extensions to a grammar.
type GrammarParser struct {
	name       string
	extensions []string
	grammar    func() *sitter.Language
}

func (g GrammarParser) Language() string {
	return g.name
}

func (g GrammarParser) Extensions() []string {
	return g.extensions
}

func (g GrammarParser) Grammar() *sitter.Language {
	return g.grammar()
}

func NewJavaParser() GrammarParser {
	return GrammarParser{name: "java", extensions: []string{".java"}, grammar: java.GetLanguage}
}

func NewGoParser() GrammarParser {
	return GrammarParser{name: "go", extensions: []string{".go"}, grammar: golang.GetLanguage}
}

func NewPythonParser() GrammarParser {
	return GrammarParser{name: "python", extensions: []string{".py", ".pyi"}, grammar: python.GetLanguage}
}

func NewRubyParser() GrammarParser {
	return GrammarParser{name: "ruby", extensions: []string{".rb", ".rake", ".gemspec"}, grammar: ruby.GetLanguage}
}

func NewTypeScriptParser() GrammarParser {
	return GrammarParser{name: "typescript", extensions: []string{".ts", ".mts", ".cts"}, grammar: typescript.GetLanguage}
}

func NewJavaScriptParser() GrammarParser {
	return GrammarParser{name: "javascript", extensions: []string{".js", ".mjs", ".cjs", ".jsx"}, grammar: javascript.GetLanguage}
}

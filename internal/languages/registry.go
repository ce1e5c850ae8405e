package languages

import "github.com/morozRed/sigtrack/internal/parser"

// NewDefaultRegistry creates a registry with all supported language parsers
func NewDefaultRegistry() *parser.Registry {
	r := parser.NewRegistry()

	r.Register(NewJavaParser())
	r.Register(NewGoParser())
	r.Register(NewPythonParser())
	r.Register(NewRubyParser())
	r.Register(NewTypeScriptParser())
	r.Register(NewJavaScriptParser())

	return r
}

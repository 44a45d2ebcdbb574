package codegen

import (
	"bytes"
	"go/format"
	"text/template"

	"github.com/stardust-xr/stardust/pkg/idl"
)

// Options configures one Generate call (§4.H "Code generator").
type Options struct {
	// Package is the package name emitted at the top of the output file.
	Package string
}

var parsedTemplate = template.Must(
	template.Must(template.New("header").Parse(headerTemplate)).
		New("protocol").Parse(protocolTemplate),
)

// Generate renders Go source implementing every protocol's aspects,
// interface constructors, and custom types, then gofmts the result.
// Generate is pure: identical protocols and Options always produce
// byte-identical output (the determinism requirement of §4.H), since it
// does no filesystem or network I/O and the view layer sorts nothing by
// map iteration order — every slice it walks already comes from the
// resolved AST in source order.
func Generate(protocols []*idl.Protocol, opts Options) ([]byte, error) {
	if opts.Package == "" {
		opts.Package = "stardustgen"
	}
	view, err := buildView(opts.Package, protocols)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := parsedTemplate.ExecuteTemplate(&buf, "header", view); err != nil {
		return nil, &ErrTemplateExecution{Template: "header", Err: err}
	}
	if err := parsedTemplate.ExecuteTemplate(&buf, "protocol", view); err != nil {
		return nil, &ErrTemplateExecution{Template: "protocol", Err: err}
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, &ErrFormat{Err: err, Source: buf.String()}
	}
	return formatted, nil
}

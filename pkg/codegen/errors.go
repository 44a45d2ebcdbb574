package codegen

import "fmt"

// ErrTemplateExecution wraps a text/template execution failure, keeping the
// failing template name alongside the underlying error.
type ErrTemplateExecution struct {
	Template string
	Err      error
}

func (e *ErrTemplateExecution) Error() string {
	return fmt.Sprintf("codegen: executing %s: %v", e.Template, e.Err)
}

func (e *ErrTemplateExecution) Unwrap() error { return e.Err }

// ErrFormat wraps a go/format.Source failure on the generated output,
// printing the unformatted source so the caller can locate the bad line.
type ErrFormat struct {
	Err    error
	Source string
}

func (e *ErrFormat) Error() string {
	return fmt.Sprintf("codegen: generated source failed to gofmt: %v", e.Err)
}

func (e *ErrFormat) Unwrap() error { return e.Err }

// ErrUnsupportedType reports an argument whose type has no wire encoding in
// the generator, rather than letting the generated code silently drop the
// value on the floor.
type ErrUnsupportedType struct {
	Arg  string
	Type string
}

func (e *ErrUnsupportedType) Error() string {
	return fmt.Sprintf("codegen: arg %q has type %q, which the generator cannot encode", e.Arg, e.Type)
}

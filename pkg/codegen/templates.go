package codegen

// templates.go holds the raw text/template source as Go string constants,
// one named template per generated shape, mirroring the teacher pack's
// FIDL generator convention (other_examples' fuchsia garnet rust-target
// templates: a const Go string per `{{- define "..." -}}` block, composed
// by a parent template that ranges over the IR).

const headerTemplate = `// Code generated by stardustgen. DO NOT EDIT.

package {{ .Package }}

import (
	"context"
	"errors"
	"fmt"

	"github.com/stardust-xr/stardust/pkg/datamap"
	"github.com/stardust-xr/stardust/pkg/datamap/fdctx"
	"github.com/stardust-xr/stardust/pkg/node"
)
`

const protocolTemplate = `
{{ range $p := .Protocols }}
// {{ $p.Description }} (schema version {{ $p.Version }}).

{{ range $e := $p.Enums }}
type {{ $e.Name }} struct {
	Variant string
{{- range $v := $e.Variants }}
{{- range $f := $v.Fields }}
	{{ $f.GoName }} {{ $f.Type }}
{{- end }}
{{- end }}
}
{{ end }}

{{ range $s := $p.Structs }}
type {{ $s.Name }} struct {
{{- range $f := $s.Fields }}
	{{ $f.GoName }} {{ $f.Type }}
{{- end }}
}

func (v {{ $s.Name }}) ToValue() datamap.Value {
	return datamap.NewMap(map[string]datamap.Value{
{{- range $f := $s.Fields }}
		"{{ $f.Name }}": {{ $f.EncodeExpr }},
{{- end }}
	})
}

func {{ $s.Name }}FromValue(raw datamap.Value) ({{ $s.Name }}, error) {
	m, ok := raw.(*datamap.Map)
	if !ok {
		return {{ $s.Name }}{}, fmt.Errorf("{{ $s.Name }}: expected a map, got %T", raw)
	}
	var out {{ $s.Name }}
{{- range $f := $s.Fields }}
	if v, ok := m.Get("{{ $f.Name }}"); ok {
{{- if $f.DecodeNeedsErr }}
		decoded, err := {{ $f.DecodeExpr }}
		if err != nil {
			return {{ $s.Name }}{}, fmt.Errorf("{{ $s.Name }}.{{ $f.Name }}: %w", err)
		}
		out.{{ $f.GoName }} = decoded
{{- else }}
		out.{{ $f.GoName }} = {{ $f.DecodeExpr }}
{{- end }}
	}
{{- end }}
	return out, nil
}
{{ end }}

{{ range $u := $p.Unions }}
// {{ $u.Name }} is a closed union over: {{ range $m := $u.Members }}{{ $m }} {{ end }}.
type {{ $u.Name }} interface {
	is{{ $u.Name }}()
}
{{ range $m := $u.Members }}
func ({{ $m }}) is{{ $u.Name }}() {}
{{ end }}
{{ end }}

{{ range $ifm := $p.Interface }}
// Create{{ $ifm.GoName }} invokes the root interface's {{ $ifm.GoName }} member, creating a
// node on the server and returning a handle to it.
func Create{{ $ifm.GoName }}(ctx context.Context, c *node.Client{{ range $a := $ifm.Args }}, {{ $a.GoName }} {{ $a.Type }}{{ end }}) (*node.Handle, error) {
	m := datamap.NewMap(map[string]datamap.Value{
{{- range $a := $ifm.Args }}
		"{{ $a.Name }}": {{ $a.EncodeExpr }},
{{- end }}
	})
	payload, err := datamap.Marshal(m, fdctx.Token(0))
	if err != nil {
		return nil, fmt.Errorf("{{ $ifm.GoName }}: %w", err)
	}
	respPayload, _, err := c.InterfaceHandle().CallMethod(ctx, 0, {{ $ifm.Opcode }}, payload, nil)
	if err != nil {
		return nil, err
	}
	return node.DecodeCreatedHandle(c, respPayload)
}
{{ end }}

{{ range $a := $p.Aspects }}
// {{ $a.GoName }}AspectID identifies the {{ $a.Name }} aspect on the wire.
const {{ $a.GoName }}AspectID uint64 = {{ $a.ID }}
{{ range $inh := $a.ResolvedInherits }}
// {{ $a.GoName }} also implements {{ $inh }}.
{{- end }}

// {{ $a.GoName }} wraps a node.Handle bound to the {{ $a.Name }} aspect.
type {{ $a.GoName }} struct {
	h *node.Handle
}

// As{{ $a.GoName }} binds an existing node handle to the {{ $a.Name }} aspect,
// registering its event parsers on h so Recv* calls start returning events
// the server pushes (§4.E "Aspect event queues"). Binding the same
// underlying node to this aspect more than once is harmless — the second
// registration attempt hits ErrHandlerAlreadyRegistered, which is expected
// and ignored.
func As{{ $a.GoName }}(h *node.Handle) {{ $a.GoName }} {
	if err := register{{ $a.GoName }}Events(h); err != nil && !errors.Is(err, node.ErrHandlerAlreadyRegistered) {
		panic(fmt.Sprintf("{{ $a.GoName }}: registering event handlers: %v", err))
	}
	return {{ $a.GoName }}{h: h}
}

// Handle returns the underlying node handle.
func (a {{ $a.GoName }}) Handle() *node.Handle { return a.h }

{{ range $m := $a.OwnMembers }}
{{ if $m.IsMethod }}
// {{ $m.GoName }} calls the {{ $a.Name }}.{{ $m.Name }} method.
func (a {{ $a.GoName }}) {{ $m.GoName }}(ctx context.Context{{ range $arg := $m.Args }}, {{ $arg.GoName }} {{ $arg.Type }}{{ end }}) {{ if $m.ReturnType }}({{ $m.ReturnType }}, error){{ else }}error{{ end }} {
	m := datamap.NewMap(map[string]datamap.Value{
{{- range $arg := $m.Args }}
		"{{ $arg.Name }}": {{ $arg.EncodeExpr }},
{{- end }}
	})
	payload, err := datamap.Marshal(m, fdctx.Token(0))
	if err != nil {
{{- if $m.ReturnType }}
		var zero {{ $m.ReturnType }}
		return zero, fmt.Errorf("{{ $a.Name }}.{{ $m.Name }}: %w", err)
{{- else }}
		return fmt.Errorf("{{ $a.Name }}.{{ $m.Name }}: %w", err)
{{- end }}
	}
	respPayload, _, err := a.h.CallMethod(ctx, {{ $a.GoName }}AspectID, {{ $m.Opcode }}, payload, nil)
{{- if $m.ReturnType }}
	if err != nil {
		var zero {{ $m.ReturnType }}
		return zero, err
	}
	respMap, err := datamap.Unmarshal(respPayload, fdctx.Token(0))
	if err != nil {
		var zero {{ $m.ReturnType }}
		return zero, fmt.Errorf("{{ $a.Name }}.{{ $m.Name }}: %w", err)
	}
	raw, ok := respMap.Get("result")
	if !ok {
		var zero {{ $m.ReturnType }}
		return zero, fmt.Errorf("{{ $a.Name }}.{{ $m.Name }}: response missing result")
	}
{{- if $m.ReturnNeedsErr }}
	return {{ $m.ReturnDecode }}
{{- else }}
	return {{ $m.ReturnDecode }}, nil
{{- end }}
{{- else }}
	return err
{{- end }}
}
{{ else }}
// {{ $m.GoName }} emits the {{ $a.Name }}.{{ $m.Name }} signal.
func (a {{ $a.GoName }}) {{ $m.GoName }}({{ range $i, $arg := $m.Args }}{{ if $i }}, {{ end }}{{ $arg.GoName }} {{ $arg.Type }}{{ end }}) error {
	m := datamap.NewMap(map[string]datamap.Value{
{{- range $arg := $m.Args }}
		"{{ $arg.Name }}": {{ $arg.EncodeExpr }},
{{- end }}
	})
	payload, err := datamap.Marshal(m, fdctx.Token(0))
	if err != nil {
		return fmt.Errorf("{{ $a.Name }}.{{ $m.Name }}: %w", err)
	}
	return a.h.SendSignal({{ $a.GoName }}AspectID, {{ $m.Opcode }}, payload, nil)
}
{{ end }}
{{ end }}

// register{{ $a.GoName }}Events installs, for every {{ $a.Name }} event
// member, a node.Handler that decodes the incoming payload and pushes the
// typed event onto h's ring — the opcode-switch parser registration §4.H.3
// requires so Recv* calls ever see anything. It runs once per (handle,
// aspect) pair; called from As{{ $a.GoName }}.
func register{{ $a.GoName }}Events(h *node.Handle) error {
{{- range $m := $a.EventMembers }}
	if err := h.RegisterHandler({{ $a.GoName }}AspectID, {{ $m.Opcode }}, func(tok fdctx.Token, payload []byte) ([]byte, []int, error) {
		ev, err := decode{{ $a.GoName }}{{ $m.GoName }}Event(payload, tok)
		if err != nil {
			return nil, nil, err
		}
		if err := h.PushEvent({{ $a.GoName }}AspectID, ev); err != nil {
			return nil, nil, err
		}
{{- if $m.IsMethod }}
		ack, err := datamap.Marshal(datamap.NewMap(nil), tok)
		if err != nil {
			return nil, nil, fmt.Errorf("{{ $a.Name }}.{{ $m.Name }}: ack: %w", err)
		}
		return ack, nil, nil
{{- else }}
		return nil, nil, nil
{{- end }}
	}); err != nil {
		return err
	}
{{- end }}
	return nil
}

{{ range $m := $a.EventMembers }}
// {{ $a.GoName }}{{ $m.GoName }}Event carries the decoded {{ $a.Name }}.{{ $m.Name }} event payload.
type {{ $a.GoName }}{{ $m.GoName }}Event struct {
{{- range $arg := $m.Args }}
	{{ $arg.GoName }} {{ $arg.Type }}
{{- end }}
}

// decode{{ $a.GoName }}{{ $m.GoName }}Event parses an incoming {{ $a.Name }}.{{ $m.Name }} signal
// payload into the typed event; the dispatch loop calls this and pushes
// the result via node.Handle.PushEvent.
func decode{{ $a.GoName }}{{ $m.GoName }}Event(payload []byte, tok fdctx.Token) (*{{ $a.GoName }}{{ $m.GoName }}Event, error) {
	m, err := datamap.Unmarshal(payload, tok)
	if err != nil {
		return nil, fmt.Errorf("{{ $a.Name }}.{{ $m.Name }}: %w", err)
	}
	ev := &{{ $a.GoName }}{{ $m.GoName }}Event{}
{{- range $arg := $m.Args }}
	if v, ok := m.Get("{{ $arg.Name }}"); ok {
{{- if $arg.DecodeNeedsErr }}
		decoded, err := {{ $arg.DecodeExpr }}
		if err != nil {
			return nil, fmt.Errorf("{{ $a.Name }}.{{ $m.Name }}.{{ $arg.Name }}: %w", err)
		}
		ev.{{ $arg.GoName }} = decoded
{{- else }}
		ev.{{ $arg.GoName }} = {{ $arg.DecodeExpr }}
{{- end }}
	}
{{- end }}
	return ev, nil
}

// Recv{{ $m.GoName }} pops the next pending {{ $a.Name }}.{{ $m.Name }} event, if any.
func (a {{ $a.GoName }}) Recv{{ $m.GoName }}() (*{{ $a.GoName }}{{ $m.GoName }}Event, bool) {
	ev, ok := a.h.RecvEvent({{ $a.GoName }}AspectID)
	if !ok {
		return nil, false
	}
	typed, ok := ev.(*{{ $a.GoName }}{{ $m.GoName }}Event)
	if !ok {
		return nil, false
	}
	return typed, true
}
{{ end }}
{{ end }}
{{ end }}
`

package codegen

import (
	"fmt"
	"strings"

	"github.com/stardust-xr/stardust/pkg/idl"
)

// view.go reshapes the resolved idl AST into template-friendly data: Go
// type strings and exported names precomputed once, rather than computed
// inside the templates (§4.H "Code generator" — templates range over a
// view, following the teacher-pack's FIDL generator convention of a
// separate ir/template-data struct per node kind).

type fileView struct {
	Package   string
	Protocols []protocolView
}

type protocolView struct {
	Version       string
	Description   string
	InterfaceName string
	Interface     []interfaceMemberView
	Enums         []enumView
	Structs       []structView
	Unions        []unionView
	Aspects       []aspectView
}

type interfaceMemberView struct {
	GoName  string
	Opcode  uint64
	Args    []argView
	Creates string
}

type aspectView struct {
	Name             string
	GoName           string
	ID               uint64
	ResolvedInherits []string
	OwnMembers       []memberView // Side == Client: client invokes
	EventMembers     []memberView // Side == Server: client receives
}

type memberView struct {
	Name           string
	GoName         string
	Opcode         uint64
	IsMethod       bool
	Args           []argView
	ReturnType     string // Go type, "" for signals
	ReturnDecode   string // expression decoding "raw" into ReturnType
	ReturnNeedsErr bool
}

type argView struct {
	Name           string
	GoName         string
	Type           string
	EncodeExpr     string // expression converting the Go value into a datamap.Value
	DecodeExpr     string // expression converting a datamap.Value into the Go type (errors via ", err")
	DecodeNeedsErr bool
}

type enumView struct {
	Name     string
	Variants []variantView
}

type variantView struct {
	Name   string
	Fields []argView
}

type structView struct {
	Name   string
	Fields []argView
}

type unionView struct {
	Name    string
	Members []string
}

// buildView converts resolved protocols into the generator's template data.
func buildView(pkg string, protocols []*idl.Protocol) (fileView, error) {
	fv := fileView{Package: pkg}
	for _, p := range protocols {
		pv, err := buildProtocolView(p)
		if err != nil {
			return fileView{}, err
		}
		fv.Protocols = append(fv.Protocols, pv)
	}
	return fv, nil
}

func buildProtocolView(p *idl.Protocol) (protocolView, error) {
	pv := protocolView{
		Version:       p.Version,
		Description:   p.Description,
		InterfaceName: "Interface",
	}
	for _, m := range p.InterfaceMembers {
		args, err := buildArgs(m.Args)
		if err != nil {
			return protocolView{}, err
		}
		pv.Interface = append(pv.Interface, interfaceMemberView{
			GoName:  exportName(m.Name),
			Opcode:  m.Opcode,
			Args:    args,
			Creates: m.Creates,
		})
	}
	for _, e := range p.CustomEnums {
		ev := enumView{Name: exportName(e.Name)}
		for _, v := range e.Variants {
			fields, err := buildArgs(v.Fields)
			if err != nil {
				return protocolView{}, err
			}
			ev.Variants = append(ev.Variants, variantView{Name: exportName(v.Name), Fields: fields})
		}
		pv.Enums = append(pv.Enums, ev)
	}
	for _, s := range p.CustomStructs {
		fields, err := buildArgs(s.Fields)
		if err != nil {
			return protocolView{}, err
		}
		pv.Structs = append(pv.Structs, structView{Name: exportName(s.Name), Fields: fields})
	}
	for _, u := range p.CustomUnions {
		members := make([]string, len(u.Members))
		for i, m := range u.Members {
			members[i] = exportName(m)
		}
		pv.Unions = append(pv.Unions, unionView{Name: exportName(u.Name), Members: members})
	}
	for _, a := range p.Aspects {
		av, err := buildAspectView(a)
		if err != nil {
			return protocolView{}, err
		}
		pv.Aspects = append(pv.Aspects, av)
	}
	return pv, nil
}

func buildAspectView(a idl.Aspect) (aspectView, error) {
	av := aspectView{
		Name:             a.Name,
		GoName:           exportName(a.Name),
		ID:               a.ID,
		ResolvedInherits: a.ResolvedInherits,
	}
	for _, m := range a.Members {
		args, err := buildArgs(m.Args)
		if err != nil {
			return aspectView{}, err
		}
		mv := memberView{
			Name:     m.Name,
			GoName:   exportName(m.Name),
			Opcode:   m.Opcode,
			IsMethod: m.IsMethod,
			Args:     args,
		}
		if m.ReturnType != nil {
			mv.ReturnType = goType(*m.ReturnType)
			mv.ReturnDecode = decodeExpr(*m.ReturnType, "raw")
			mv.ReturnNeedsErr = decodeNeedsErr(*m.ReturnType)
		}
		if m.Side == idl.SideClient {
			av.OwnMembers = append(av.OwnMembers, mv)
		} else {
			av.EventMembers = append(av.EventMembers, mv)
		}
	}
	return av, nil
}

func buildArgs(args []idl.Arg) ([]argView, error) {
	views := make([]argView, len(args))
	for i, a := range args {
		name := lowerName(a.Name)
		encode, err := encodeExpr(a.Type, name)
		if err != nil {
			return nil, &ErrUnsupportedType{Arg: a.Name, Type: goType(a.Type)}
		}
		views[i] = argView{
			Name:           a.Name,
			GoName:         name,
			Type:           goType(a.Type),
			EncodeExpr:     encode,
			DecodeExpr:     decodeExpr(a.Type, "v"),
			DecodeNeedsErr: decodeNeedsErr(a.Type),
		}
	}
	return views, nil
}

// encodeExpr renders the expression that turns a Go-typed argument named
// varName into a datamap.Value, following the ToValue()-method convention
// the hand-written spatial types already use (§4.B custom shapes). It
// errors rather than silently dropping the value for kinds the wire layer
// has no encoding for yet.
func encodeExpr(t idl.FieldType, varName string) (string, error) {
	switch t.Kind {
	case idl.TypeBool:
		return "datamap.Bool(" + varName + ")", nil
	case idl.TypeInt, idl.TypeNodeID:
		return "datamap.Int64(" + varName + ")", nil
	case idl.TypeUint:
		return "datamap.Uint64(" + varName + ")", nil
	case idl.TypeFloat:
		return "datamap.Float64(" + varName + ")", nil
	case idl.TypeString:
		return "datamap.String(" + varName + ")", nil
	case idl.TypeResourceID:
		return varName + ".ToValue()", nil
	case idl.TypeBytes:
		return "datamap.Blob(" + varName + ")", nil
	case idl.TypeVec2, idl.TypeVec3, idl.TypeQuat, idl.TypeColor, idl.TypeEnum, idl.TypeStruct, idl.TypeUnion:
		return varName + ".ToValue()", nil
	case idl.TypeFd:
		return "datamap.Fd(" + varName + ")", nil
	default:
		return "", fmt.Errorf("unsupported")
	}
}

// decodeNeedsErr reports whether the decode expression returns (T, error)
// rather than a bare T.
func decodeNeedsErr(t idl.FieldType) bool {
	switch t.Kind {
	case idl.TypeBool, idl.TypeInt, idl.TypeUint, idl.TypeFloat, idl.TypeNodeID, idl.TypeFd, idl.TypeString, idl.TypeBytes:
		return false
	default:
		return true
	}
}

// decodeExpr renders the expression decoding a datamap.Value named varName
// into the arg's Go type.
func decodeExpr(t idl.FieldType, varName string) string {
	switch t.Kind {
	case idl.TypeBool:
		return "bool(" + varName + ".(datamap.Bool))"
	case idl.TypeInt:
		return "int64(" + varName + ".(datamap.Int64))"
	case idl.TypeNodeID:
		return "uint64(" + varName + ".(datamap.Int64))"
	case idl.TypeUint:
		return "uint64(" + varName + ".(datamap.Uint64))"
	case idl.TypeFloat:
		return "float64(" + varName + ".(datamap.Float64))"
	case idl.TypeString:
		return "string(" + varName + ".(datamap.String))"
	case idl.TypeResourceID:
		return "datamap.ResourceIDFromValue(" + varName + ")"
	case idl.TypeBytes:
		return "[]byte(" + varName + ".(datamap.Blob))"
	case idl.TypeVec2:
		return "datamap.Vec2FromValue(" + varName + ")"
	case idl.TypeVec3:
		return "datamap.Vec3FromValue(" + varName + ")"
	case idl.TypeQuat:
		return "datamap.QuatFromValue(" + varName + ")"
	case idl.TypeColor:
		return "datamap.ColorFromValue(" + varName + ")"
	case idl.TypeFd:
		return "int(" + varName + ".(datamap.Fd))"
	case idl.TypeEnum, idl.TypeStruct, idl.TypeUnion:
		return exportName(t.RefName) + "FromValue(" + varName + ")"
	default:
		return varName + " /* unsupported in generated decode */"
	}
}

// goType maps the closed IDL type grammar to a Go type (§4.G grammar,
// §4.H.4 custom shapes).
func goType(t idl.FieldType) string {
	switch t.Kind {
	case idl.TypeBool:
		return "bool"
	case idl.TypeInt:
		return "int64"
	case idl.TypeUint:
		return "uint64"
	case idl.TypeFloat:
		return "float64"
	case idl.TypeVec2:
		return "datamap.Vec2"
	case idl.TypeVec3:
		return "datamap.Vec3"
	case idl.TypeQuat:
		return "datamap.Quat"
	case idl.TypeMat4:
		return "[16]float32"
	case idl.TypeColor:
		return "datamap.Color"
	case idl.TypeString:
		return "string"
	case idl.TypeBytes:
		return "[]byte"
	case idl.TypeVec:
		return "[]" + goType(*t.Elem)
	case idl.TypeMap:
		return "map[string]" + goType(*t.Elem)
	case idl.TypeNodeID:
		return "uint64"
	case idl.TypeDatamap:
		return "*datamap.Map"
	case idl.TypeResourceID:
		return "datamap.ResourceID"
	case idl.TypeEnum, idl.TypeUnion, idl.TypeStruct:
		return exportName(t.RefName)
	case idl.TypeNode:
		return "*node.Handle"
	case idl.TypeFd:
		return "int"
	default:
		return "any"
	}
}

// exportName converts a schema identifier (snake_case or camelCase) to an
// exported Go identifier.
func exportName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' })
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	if b.Len() == 0 {
		return fmt.Sprintf("Field%d", len(name))
	}
	return b.String()
}

// lowerName converts a schema identifier to an unexported Go-style name
// (first segment lowercased, rest title-cased — simple camelCase).
func lowerName(name string) string {
	exported := exportName(name)
	if exported == "" {
		return exported
	}
	return strings.ToLower(exported[:1]) + exported[1:]
}

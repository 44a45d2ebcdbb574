package idl

import (
	"bytes"
	"fmt"
	"os"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/stardust-xr/stardust/internal/logger"
)

// ParseFile reads and parses one schema document (§6 "Schema files").
func ParseFile(path string) (*Protocol, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("idl: read %s: %w", path, err)
	}
	p, err := ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("idl: parse %s: %w", path, err)
	}
	logger.Debug("parsed schema", logger.Schema(path), logger.Protocol(p.Version))
	return p, nil
}

// ParseBytes parses one KDL document into a Protocol AST (§4.G grammar).
// It does not resolve inheritance — call Resolve across every loaded
// Protocol once all schema files are parsed.
func ParseBytes(data []byte) (*Protocol, error) {
	doc, err := kdl.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("idl: kdl syntax: %w", err)
	}

	p := &Protocol{}
	for _, n := range doc.Nodes {
		switch n.Name {
		case "version":
			p.Version = firstArgString(n)
		case "description":
			p.Description = firstArgString(n)
		case "interface":
			if err := parseInterface(n, p); err != nil {
				return nil, err
			}
		case "enum":
			def, err := parseEnum(n)
			if err != nil {
				return nil, err
			}
			p.CustomEnums = append(p.CustomEnums, def)
		case "struct":
			def, err := parseStruct(n)
			if err != nil {
				return nil, err
			}
			p.CustomStructs = append(p.CustomStructs, def)
		case "union":
			def, err := parseUnion(n)
			if err != nil {
				return nil, err
			}
			p.CustomUnions = append(p.CustomUnions, def)
		case "aspect":
			a, err := parseAspect(n)
			if err != nil {
				return nil, err
			}
			p.Aspects = append(p.Aspects, a)
		default:
			logger.Warn("ignoring unrecognized top-level schema node", logger.Path(n.Name))
		}
	}
	return p, nil
}

func parseInterface(n *document.Node, p *Protocol) error {
	p.InterfacePath = firstArgString(n)
	if n.Children == nil {
		return nil
	}
	for _, member := range n.Children.Nodes {
		m, err := parseInterfaceMember(member)
		if err != nil {
			return err
		}
		p.InterfaceMembers = append(p.InterfaceMembers, m)
	}
	return nil
}

func parseInterfaceMember(n *document.Node) (InterfaceMember, error) {
	args, err := parseArgs(n)
	if err != nil {
		return InterfaceMember{}, err
	}
	creates, _ := stringProp(n, "creates")
	return InterfaceMember{Name: n.Name, Args: args, Creates: creates}, nil
}

func parseAspect(n *document.Node) (Aspect, error) {
	a := Aspect{Name: firstArgString(n)}
	if desc, ok := stringProp(n, "description"); ok {
		a.Description = desc
	}
	if n.Children == nil {
		return a, nil
	}
	for _, child := range n.Children.Nodes {
		switch child.Name {
		case "inherits":
			for _, arg := range child.Arguments {
				a.DirectInherits = append(a.DirectInherits, valueAsString(arg))
			}
		case "signal":
			m, err := parseMember(child, false)
			if err != nil {
				return Aspect{}, err
			}
			a.Members = append(a.Members, m)
		case "method":
			m, err := parseMember(child, true)
			if err != nil {
				return Aspect{}, err
			}
			a.Members = append(a.Members, m)
		}
	}
	return a, nil
}

func parseMember(n *document.Node, isMethod bool) (Member, error) {
	m := Member{Name: firstArgString(n), IsMethod: isMethod, Side: sideFromProp(n)}
	args, err := parseArgs(n)
	if err != nil {
		return Member{}, err
	}
	m.Args = args

	if isMethod {
		if ret, ok := stringProp(n, "returns"); ok {
			t, err := parseTypeName(ret)
			if err != nil {
				return Member{}, err
			}
			m.ReturnType = &t
		}
	}
	return m, nil
}

func sideFromProp(n *document.Node) Side {
	if v, ok := stringProp(n, "side"); ok && v == "server" {
		return SideServer
	}
	return SideClient
}

func parseArgs(n *document.Node) ([]Arg, error) {
	if n.Children == nil {
		return nil, nil
	}
	var args []Arg
	for _, child := range n.Children.Nodes {
		if child.Name != "arg" {
			continue
		}
		name := firstArgString(child)
		typeName, _ := stringProp(child, "type")
		t, err := parseTypeName(typeName)
		if err != nil {
			return nil, fmt.Errorf("idl: arg %q: %w", name, err)
		}
		required := true
		if v, ok := boolProp(child, "required"); ok {
			required = v
		}
		args = append(args, Arg{Name: name, Type: t, Required: required})
	}
	return args, nil
}

func parseEnum(n *document.Node) (EnumDef, error) {
	def := EnumDef{Name: firstArgString(n)}
	if n.Children == nil {
		return def, nil
	}
	for _, v := range n.Children.Nodes {
		fields, err := parseArgs(v)
		if err != nil {
			return EnumDef{}, err
		}
		def.Variants = append(def.Variants, EnumVariant{Name: v.Name, Fields: fields})
	}
	return def, nil
}

func parseStruct(n *document.Node) (StructDef, error) {
	fields, err := parseArgs(n)
	if err != nil {
		return StructDef{}, err
	}
	return StructDef{Name: firstArgString(n), Fields: fields}, nil
}

func parseUnion(n *document.Node) (UnionDef, error) {
	if len(n.Arguments) < 1 {
		return UnionDef{}, fmt.Errorf("idl: union %q: missing name argument", n.Name)
	}
	def := UnionDef{Name: firstArgString(n)}
	for _, arg := range n.Arguments[1:] {
		def.Members = append(def.Members, valueAsString(arg))
	}
	return def, nil
}

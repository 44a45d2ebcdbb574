// Package idl parses Stardust's KDL-based schema dialect into a typed
// protocol AST and resolves aspect inheritance (§4.G).
package idl

import "github.com/stardust-xr/stardust/pkg/fnv1a"

// Side names which peer may invoke a member (§3 Member).
type Side int

const (
	SideClient Side = iota // client → server
	SideServer             // server → client
)

func (s Side) String() string {
	if s == SideServer {
		return "server"
	}
	return "client"
}

// TypeKind enumerates the closed type grammar (§4.G).
type TypeKind int

const (
	TypeBool TypeKind = iota
	TypeInt
	TypeUint
	TypeFloat
	TypeVec2
	TypeVec3
	TypeQuat
	TypeMat4
	TypeColor
	TypeString
	TypeBytes
	TypeVec    // vec<T>
	TypeMap    // map<T>
	TypeNodeID
	TypeDatamap
	TypeResourceID
	TypeEnum   // enum<Name>
	TypeUnion  // union<Name>
	TypeStruct // struct<Name>
	TypeNode   // node<Type, return_id_parameter?>
	TypeFd
)

// FieldType is a fully-resolved argument/return type: Kind plus whatever
// parameterization that kind needs (element type for vec/map, referenced
// name for enum/union/struct/node).
type FieldType struct {
	Kind TypeKind

	// Elem is the element type for TypeVec/TypeMap/TypeVec2/TypeVec3 (where
	// the vector is of a scalar other than float, e.g. vec3<int>).
	Elem *FieldType

	// RefName is the referenced enum/struct/union/node type name.
	RefName string

	// ReturnsID marks a node<Type, return_id_parameter> argument: the
	// argument additionally carries a freshly allocated id the callee
	// should assign to the node it creates (§4.G type grammar).
	ReturnsID bool
}

// Arg is one member argument.
type Arg struct {
	Name     string
	Type     FieldType
	Required bool
}

// Member is a Signal or Method declaration (§3 Member).
type Member struct {
	Name       string
	Opcode     uint64 // FNV-1a(Name), computed at resolve time
	IsMethod   bool   // false = signal, true = method
	Side       Side
	Args       []Arg
	ReturnType *FieldType // methods only; nil for signals
}

// Aspect is one capability set (§3 Aspect).
type Aspect struct {
	Name            string
	ID              uint64 // FNV-1a(Name)
	Description     string
	DirectInherits  []string
	Members         []Member
	ResolvedInherits []string // transitive closure, DFS order, set by Resolve
}

// EnumVariant is one case of a custom enum.
type EnumVariant struct {
	Name   string
	Fields []Arg // empty for a unit variant
}

// EnumDef is a custom tagged-union-like enum (§4.H.4).
type EnumDef struct {
	Name     string
	Variants []EnumVariant
}

// StructDef is a custom fixed-shape struct (§4.H.4).
type StructDef struct {
	Name   string
	Fields []Arg
}

// UnionDef is a custom union over named struct/enum members (§4.H.4).
type UnionDef struct {
	Name    string
	Members []string // referenced StructDef/EnumDef names
}

// InterfaceMember is a signal accepted on the interface node (id 0), most
// commonly a create_* constructor (§4.F construction path 1, §4.H.5).
type InterfaceMember struct {
	Name   string
	Opcode uint64
	Args   []Arg
	// Creates names the node type this member allocates and returns an
	// owning handle for, empty if this member isn't a constructor.
	Creates string
}

// Protocol is one parsed+partially-resolved schema document (§3 Protocol).
type Protocol struct {
	Version        string
	Description    string
	InterfacePath  string
	InterfaceMembers []InterfaceMember
	CustomEnums    []EnumDef
	CustomStructs  []StructDef
	CustomUnions   []UnionDef
	Aspects        []Aspect
}

// hashAspectAndMembers fills in Aspect.ID and each Member's Opcode from
// their names, per §4.G "FNV-1a hashing".
func (p *Protocol) hashAspectAndMembers() {
	for i := range p.Aspects {
		p.Aspects[i].ID = fnv1a.Hash64(p.Aspects[i].Name)
		for j := range p.Aspects[i].Members {
			p.Aspects[i].Members[j].Opcode = fnv1a.Hash64(p.Aspects[i].Members[j].Name)
		}
	}
	for i := range p.InterfaceMembers {
		p.InterfaceMembers[i].Opcode = fnv1a.Hash64(p.InterfaceMembers[i].Name)
	}
}

package idl

import (
	"fmt"
	"strings"

	"github.com/sblinch/kdl-go/document"
)

// valueAsString coerces one positional KDL argument to a string, used for
// node names and inherits lists where the schema always writes bare/quoted
// identifiers.
func valueAsString(v *document.Value) string {
	if v == nil {
		return ""
	}
	if s, ok := v.Value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v.Value)
}

// firstArgString returns n's first positional argument as a string, or ""
// if n has none (e.g. an aspect node written with only a name argument).
func firstArgString(n *document.Node) string {
	if len(n.Arguments) == 0 {
		return ""
	}
	return valueAsString(n.Arguments[0])
}

// stringProp looks up a `key=value` property on n.
func stringProp(n *document.Node, key string) (string, bool) {
	v, ok := n.Properties[key]
	if !ok || v == nil {
		return "", false
	}
	return valueAsString(v), true
}

// boolProp looks up a `key=#true`/`key=#false` property on n.
func boolProp(n *document.Node, key string) (bool, bool) {
	v, ok := n.Properties[key]
	if !ok || v == nil {
		return false, false
	}
	if b, ok := v.Value.(bool); ok {
		return b, true
	}
	return false, false
}

// parseTypeName parses one entry of the closed type grammar (§4.G):
// bool | int | uint | float | vec2<T> | vec3<T> | quat | mat4 | color |
// string | bytes | vec<T> | map<T> | node_id | datamap | resource_id |
// enum<Name> | union<Name> | struct<Name> | node<Type, return_id_parameter?> | fd
func parseTypeName(s string) (FieldType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FieldType{}, fmt.Errorf("idl: empty type name")
	}

	name, param, hasParam := splitTypeParam(s)
	switch name {
	case "bool":
		return FieldType{Kind: TypeBool}, nil
	case "int":
		return FieldType{Kind: TypeInt}, nil
	case "uint":
		return FieldType{Kind: TypeUint}, nil
	case "float":
		return FieldType{Kind: TypeFloat}, nil
	case "quat":
		return FieldType{Kind: TypeQuat}, nil
	case "mat4":
		return FieldType{Kind: TypeMat4}, nil
	case "color":
		return FieldType{Kind: TypeColor}, nil
	case "string":
		return FieldType{Kind: TypeString}, nil
	case "bytes":
		return FieldType{Kind: TypeBytes}, nil
	case "node_id":
		return FieldType{Kind: TypeNodeID}, nil
	case "datamap":
		return FieldType{Kind: TypeDatamap}, nil
	case "resource_id":
		return FieldType{Kind: TypeResourceID}, nil
	case "fd":
		return FieldType{Kind: TypeFd}, nil
	case "vec2":
		return parseElemType(TypeVec2, param, hasParam, TypeFloat)
	case "vec3":
		return parseElemType(TypeVec3, param, hasParam, TypeFloat)
	case "vec":
		return parseElemType(TypeVec, param, hasParam, TypeFloat)
	case "map":
		return parseElemType(TypeMap, param, hasParam, TypeDatamap)
	case "enum":
		return refType(TypeEnum, param, hasParam)
	case "union":
		return refType(TypeUnion, param, hasParam)
	case "struct":
		return refType(TypeStruct, param, hasParam)
	case "node":
		return parseNodeType(param, hasParam)
	default:
		return FieldType{}, fmt.Errorf("idl: unknown type %q", s)
	}
}

func splitTypeParam(s string) (name, param string, hasParam bool) {
	open := strings.IndexByte(s, '<')
	if open == -1 {
		return s, "", false
	}
	if !strings.HasSuffix(s, ">") {
		return s, "", false
	}
	return s[:open], s[open+1 : len(s)-1], true
}

func parseElemType(kind TypeKind, param string, hasParam bool, fallback TypeKind) (FieldType, error) {
	if !hasParam {
		return FieldType{Kind: kind, Elem: &FieldType{Kind: fallback}}, nil
	}
	elem, err := parseTypeName(param)
	if err != nil {
		return FieldType{}, err
	}
	return FieldType{Kind: kind, Elem: &elem}, nil
}

func refType(kind TypeKind, param string, hasParam bool) (FieldType, error) {
	if !hasParam {
		return FieldType{}, fmt.Errorf("idl: %v requires a <Name> parameter", kind)
	}
	return FieldType{Kind: kind, RefName: param}, nil
}

func parseNodeType(param string, hasParam bool) (FieldType, error) {
	if !hasParam {
		return FieldType{}, fmt.Errorf("idl: node requires a <Type[, return_id_parameter]> parameter")
	}
	parts := strings.SplitN(param, ",", 2)
	ft := FieldType{Kind: TypeNode, RefName: strings.TrimSpace(parts[0])}
	if len(parts) == 2 && strings.TrimSpace(parts[1]) == "return_id_parameter" {
		ft.ReturnsID = true
	}
	return ft, nil
}

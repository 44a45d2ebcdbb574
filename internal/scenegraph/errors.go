package scenegraph

import "errors"

// Routing error taxonomy (§7 "Routing").
var (
	ErrNodeNotFound    = errors.New("scenegraph: node not found")
	ErrBrokenAlias     = errors.New("scenegraph: alias refers to a destroyed node")
	ErrSignalNotFound  = errors.New("scenegraph: signal not found")
	ErrMethodNotFound  = errors.New("scenegraph: method not found")
)

package datamap

import "errors"

// Sentinel errors for the payload error taxonomy (§7 "Payload").
var (
	ErrSerializationFailed   = errors.New("datamap: serialization failed")
	ErrDeserializationFailed = errors.New("datamap: deserialization failed")
	ErrMissingFd             = errors.New("datamap: missing fd")
)

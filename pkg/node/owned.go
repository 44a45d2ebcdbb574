package node

import "github.com/stardust-xr/stardust/pkg/fnv1a"

// OwnedAspectID and DestroyOpcode identify the universal signal every node
// implicitly supports: owning-handle drop sends destroy on this
// (aspect_id, opcode) pair (§4.F "Ownership drop semantics").
var (
	OwnedAspectID  = fnv1a.Hash64("OwnedAspect")
	DestroyOpcode  = fnv1a.Hash64("destroy")
)

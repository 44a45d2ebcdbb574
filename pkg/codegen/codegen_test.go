package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stardust-xr/stardust/pkg/idl"
)

func sampleProtocols(t *testing.T) []*idl.Protocol {
	t.Helper()
	protocols := []*idl.Protocol{
		{
			Version:     "1.0",
			Description: "spatial positioning",
			Aspects: []idl.Aspect{
				{
					Name: "Spatial",
					Members: []idl.Member{
						{
							Name:     "setTransform",
							IsMethod: true,
							Side:     idl.SideClient,
							Args: []idl.Arg{
								{Name: "position", Type: idl.FieldType{Kind: idl.TypeVec3}, Required: true},
							},
						},
						{
							Name:     "setEnabled",
							IsMethod: false,
							Side:     idl.SideClient,
							Args: []idl.Arg{
								{Name: "enabled", Type: idl.FieldType{Kind: idl.TypeBool}, Required: true},
							},
						},
						{
							Name:     "onTransformChanged",
							IsMethod: false,
							Side:     idl.SideServer,
							Args: []idl.Arg{
								{Name: "position", Type: idl.FieldType{Kind: idl.TypeVec3}, Required: true},
							},
						},
					},
				},
			},
		},
	}
	require.NoError(t, idl.Resolve(protocols))
	return protocols
}

func TestGenerateIsDeterministic(t *testing.T) {
	protocols := sampleProtocols(t)

	out1, err := Generate(protocols, Options{Package: "stardustgen"})
	require.NoError(t, err)
	out2, err := Generate(protocols, Options{Package: "stardustgen"})
	require.NoError(t, err)

	assert.Equal(t, string(out1), string(out2))
}

func TestGenerateProducesExpectedSymbols(t *testing.T) {
	protocols := sampleProtocols(t)

	out, err := Generate(protocols, Options{Package: "stardustgen"})
	require.NoError(t, err)

	src := string(out)
	assert.True(t, strings.Contains(src, "package stardustgen"))
	assert.True(t, strings.Contains(src, "SpatialAspectID"))
	assert.True(t, strings.Contains(src, "func (a Spatial) SetTransform("))
	assert.True(t, strings.Contains(src, "func (a Spatial) SetEnabled("))
	assert.True(t, strings.Contains(src, "SpatialOnTransformChangedEvent"))
	assert.True(t, strings.Contains(src, "func (a Spatial) RecvOnTransformChanged()"))
	assert.True(t, strings.Contains(src, "func registerSpatialEvents(h *node.Handle) error"))
	assert.True(t, strings.Contains(src, "h.RegisterHandler(SpatialAspectID,"))
	assert.True(t, strings.Contains(src, "h.PushEvent(SpatialAspectID, ev)"))
	assert.True(t, strings.Contains(src, "registerSpatialEvents(h)"))
}

func TestGenerateEmptyProtocolSetStillFormats(t *testing.T) {
	out, err := Generate(nil, Options{})
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(out), "package stardustgen"))
}

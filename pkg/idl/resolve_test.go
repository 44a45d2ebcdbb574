package idl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stardust-xr/stardust/pkg/fnv1a"
)

func aspectProtocol(aspects ...Aspect) *Protocol {
	return &Protocol{Aspects: aspects}
}

func TestResolveLinearChain(t *testing.T) {
	// A, B inherits A, C inherits B (§8 scenario 5).
	p := aspectProtocol(
		Aspect{Name: "A"},
		Aspect{Name: "B", DirectInherits: []string{"A"}},
		Aspect{Name: "C", DirectInherits: []string{"B"}},
	)
	require.NoError(t, Resolve([]*Protocol{p}))

	var c *Aspect
	for i := range p.Aspects {
		if p.Aspects[i].Name == "C" {
			c = &p.Aspects[i]
		}
	}
	require.NotNil(t, c)
	assert.Equal(t, []string{"B", "A"}, c.ResolvedInherits)
}

func TestResolveDiamondInheritanceVisitsOnce(t *testing.T) {
	// D inherits B and C; both B and C inherit A.
	p := aspectProtocol(
		Aspect{Name: "A"},
		Aspect{Name: "B", DirectInherits: []string{"A"}},
		Aspect{Name: "C", DirectInherits: []string{"A"}},
		Aspect{Name: "D", DirectInherits: []string{"B", "C"}},
	)
	require.NoError(t, Resolve([]*Protocol{p}))

	var d *Aspect
	for i := range p.Aspects {
		if p.Aspects[i].Name == "D" {
			d = &p.Aspects[i]
		}
	}
	require.NotNil(t, d)
	assert.ElementsMatch(t, []string{"B", "C", "A"}, d.ResolvedInherits)
	// A appears exactly once despite two inheritance paths.
	count := 0
	for _, name := range d.ResolvedInherits {
		if name == "A" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestResolveCycleFails(t *testing.T) {
	// Introducing A inherits C closes the A -> C -> B -> A cycle.
	p := aspectProtocol(
		Aspect{Name: "A", DirectInherits: []string{"C"}},
		Aspect{Name: "B", DirectInherits: []string{"A"}},
		Aspect{Name: "C", DirectInherits: []string{"B"}},
	)
	err := Resolve([]*Protocol{p})
	require.Error(t, err)
	var cycleErr *ErrCyclicInheritance
	require.ErrorAs(t, err, &cycleErr)
}

func TestResolveUnknownAspectInInherits(t *testing.T) {
	p := aspectProtocol(Aspect{Name: "A", DirectInherits: []string{"Ghost"}})
	err := Resolve([]*Protocol{p})
	var unknownErr *ErrUnknownAspect
	require.ErrorAs(t, err, &unknownErr)
}

func TestResolveDuplicateAspectAcrossProtocols(t *testing.T) {
	p1 := aspectProtocol(Aspect{Name: "Spatial"})
	p2 := aspectProtocol(Aspect{Name: "Spatial"})
	err := Resolve([]*Protocol{p1, p2})
	var dupErr *ErrDuplicateAspect
	require.ErrorAs(t, err, &dupErr)
}

func TestResolveAcrossProtocolsCrossReference(t *testing.T) {
	base := aspectProtocol(Aspect{Name: "Spatial"})
	derived := aspectProtocol(Aspect{Name: "Field", DirectInherits: []string{"Spatial"}})
	require.NoError(t, Resolve([]*Protocol{base, derived}))
	assert.Equal(t, []string{"Spatial"}, derived.Aspects[0].ResolvedInherits)
}

func TestResolveHashesOpcodesAndAspectIDs(t *testing.T) {
	p := aspectProtocol(Aspect{
		Name: "Spatial",
		Members: []Member{
			{Name: "setTransform", IsMethod: true},
			{Name: "onDestroy", IsMethod: false},
		},
	})
	require.NoError(t, Resolve([]*Protocol{p}))

	a := p.Aspects[0]
	assert.Equal(t, fnv1a.Hash64("Spatial"), a.ID)
	assert.Equal(t, fnv1a.Hash64("setTransform"), a.Members[0].Opcode)
	assert.Equal(t, fnv1a.Hash64("onDestroy"), a.Members[1].Opcode)
	// Stable across calls.
	assert.Equal(t, a.ID, fnv1a.Hash64("Spatial"))
}

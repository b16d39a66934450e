package ecs

import (
	"github.com/phanxgames/vantage"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

// Spatial is the cull geometry of an entity.
type Spatial struct {
	vantage.Bounds
	// Unsized entities are never culled.
	Unsized bool
}

// BoundsComponent marks an entity as cullable.
var BoundsComponent = donburi.NewComponentType[Spatial]()

// Candidate is an entity snapshot that implements vantage.Candidate.
type Candidate struct {
	Entity donburi.Entity
	Spatial
}

// CullID implements vantage.Candidate using the entity's ID.
func (c *Candidate) CullID() vantage.ObjectID {
	return vantage.ObjectID(c.Entity.Id())
}

// CullBounds implements vantage.Candidate.
func (c *Candidate) CullBounds() (vantage.Bounds, bool) {
	return c.Bounds, !c.Unsized
}

// CandidateSource gathers every entity with BoundsComponent into a reused
// buffer. The zero value is ready to use.
type CandidateSource struct {
	query *donburi.Query
	buf   []Candidate
	ptrs  []*Candidate
}

// Collect snapshots the matching entities in query order. The returned slice
// and the candidates it points to are reused by the next call.
func (s *CandidateSource) Collect(world donburi.World) []*Candidate {
	if s.query == nil {
		s.query = donburi.NewQuery(filter.Contains(BoundsComponent))
	}
	s.buf = s.buf[:0]
	s.query.Each(world, func(e *donburi.Entry) {
		s.buf = append(s.buf, Candidate{
			Entity:  e.Entity(),
			Spatial: *BoundsComponent.Get(e),
		})
	})
	// Appends may move buf; take pointers only once it is full.
	s.ptrs = s.ptrs[:0]
	for i := range s.buf {
		s.ptrs = append(s.ptrs, &s.buf[i])
	}
	return s.ptrs
}

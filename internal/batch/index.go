package batch

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"voxbatch/internal/assert"
	"voxbatch/internal/material"
	"voxbatch/internal/world"
)

// Key identifies an aggregator: one per world, region and render material.
type Key struct {
	World    uuid.UUID
	Region   world.ChunkCoord
	Material string
}

type regionKey struct {
	World  uuid.UUID
	Region world.ChunkCoord
}

type group struct {
	material *material.RenderMaterial
	slots    []int
}

// Group is a render material with its live aggregators.
type Group struct {
	Material    *material.RenderMaterial
	Aggregators []*Aggregator
}

// Index stores live aggregators in an arena and keeps two views over it:
// by region and by render material. Both views hold arena slots, so they
// are updated together on every insert and remove.
type Index struct {
	arena    []*Aggregator
	free     []int
	byKey    map[Key]int
	byRegion map[regionKey][]int
	groups   []*group
	scratch  []*Aggregator
}

func NewIndex() *Index {
	return &Index{
		byKey:    make(map[Key]int),
		byRegion: make(map[regionKey][]int),
	}
}

// Len is the number of live aggregators.
func (ix *Index) Len() int {
	return len(ix.byKey)
}

// Insert adds a. It returns false if an aggregator with the same key exists.
func (ix *Index) Insert(a *Aggregator) bool {
	key := a.Key()
	if _, ok := ix.byKey[key]; ok {
		assert.IsTrue(false, "duplicate aggregator %v", key)
		return false
	}

	var slot int
	if n := len(ix.free); n > 0 {
		slot = ix.free[n-1]
		ix.free = ix.free[:n-1]
		ix.arena[slot] = a
	} else {
		slot = len(ix.arena)
		ix.arena = append(ix.arena, a)
	}

	ix.byKey[key] = slot
	rk := regionKey{World: key.World, Region: key.Region}
	ix.byRegion[rk] = append(ix.byRegion[rk], slot)
	g := ix.groupFor(a.material, true)
	g.slots = append(g.slots, slot)

	if assert.Enabled {
		assert.NoError(ix.Verify())
	}
	return true
}

// Remove drops a from both views. It returns false if a is not indexed.
func (ix *Index) Remove(a *Aggregator) bool {
	key := a.Key()
	slot, ok := ix.byKey[key]
	if !ok || ix.arena[slot] != a {
		return false
	}

	delete(ix.byKey, key)
	rk := regionKey{World: key.World, Region: key.Region}
	if rest := removeSlot(ix.byRegion[rk], slot); len(rest) > 0 {
		ix.byRegion[rk] = rest
	} else {
		delete(ix.byRegion, rk)
	}
	if g := ix.groupFor(a.material, false); g != nil {
		g.slots = removeSlot(g.slots, slot)
		if len(g.slots) == 0 {
			ix.groups = slices.DeleteFunc(ix.groups, func(o *group) bool { return o == g })
		}
	}
	ix.arena[slot] = nil
	ix.free = append(ix.free, slot)

	if assert.Enabled {
		assert.NoError(ix.Verify())
	}
	return true
}

func removeSlot(slots []int, slot int) []int {
	if i := slices.Index(slots, slot); i >= 0 {
		return slices.Delete(slots, i, i+1)
	}
	return slots
}

// groupFor finds the group of m, inserting it in draw order when create is set.
func (ix *Index) groupFor(m *material.RenderMaterial, create bool) *group {
	i, found := slices.BinarySearchFunc(ix.groups, m, func(g *group, target *material.RenderMaterial) int {
		return material.Compare(g.material, target)
	})
	if found {
		return ix.groups[i]
	}
	if !create {
		return nil
	}
	g := &group{material: m}
	ix.groups = slices.Insert(ix.groups, i, g)
	return g
}

// Find returns the aggregator for (world, region, material) or nil.
func (ix *Index) Find(worldID uuid.UUID, region world.ChunkCoord, m *material.RenderMaterial) *Aggregator {
	if slot, ok := ix.byKey[Key{World: worldID, Region: region, Material: m.Name}]; ok {
		return ix.arena[slot]
	}
	return nil
}

// AtRegion appends every aggregator of the region to dst.
func (ix *Index) AtRegion(worldID uuid.UUID, region world.ChunkCoord, dst []*Aggregator) []*Aggregator {
	for _, slot := range ix.byRegion[regionKey{World: worldID, Region: region}] {
		dst = append(dst, ix.arena[slot])
	}
	return dst
}

// EachMaterial calls fn for every render material in draw order with its
// aggregators. The slice is reused between calls and must not be retained.
func (ix *Index) EachMaterial(fn func(m *material.RenderMaterial, aggs []*Aggregator)) {
	for _, g := range ix.groups {
		ix.scratch = ix.scratch[:0]
		for _, slot := range g.slots {
			ix.scratch = append(ix.scratch, ix.arena[slot])
		}
		fn(g.material, ix.scratch)
	}
}

// Groups returns a copy of the by-material view.
func (ix *Index) Groups() []Group {
	out := make([]Group, 0, len(ix.groups))
	for _, g := range ix.groups {
		aggs := make([]*Aggregator, len(g.slots))
		for i, slot := range g.slots {
			aggs[i] = ix.arena[slot]
		}
		out = append(out, Group{Material: g.material, Aggregators: aggs})
	}
	return out
}

// All appends every live aggregator to dst.
func (ix *Index) All(dst []*Aggregator) []*Aggregator {
	for _, a := range ix.arena {
		if a != nil {
			dst = append(dst, a)
		}
	}
	return dst
}

// RemoveWorld drops every aggregator of a world and returns them.
func (ix *Index) RemoveWorld(worldID uuid.UUID) []*Aggregator {
	var removed []*Aggregator
	for _, a := range ix.arena {
		if a != nil && a.world == worldID {
			removed = append(removed, a)
		}
	}
	for _, a := range removed {
		ix.Remove(a)
	}
	return removed
}

// Verify checks that the key map, the region view and the material view
// describe exactly the same set of live aggregators.
func (ix *Index) Verify() error {
	live := 0
	for slot, a := range ix.arena {
		if a == nil {
			continue
		}
		live++
		if got, ok := ix.byKey[a.Key()]; !ok || got != slot {
			return fmt.Errorf("batch index: slot %d (%v) missing from key map", slot, a.Key())
		}
	}
	if live != len(ix.byKey) {
		return fmt.Errorf("batch index: %d live slots, %d keys", live, len(ix.byKey))
	}
	if live+len(ix.free) != len(ix.arena) {
		return fmt.Errorf("batch index: %d live + %d free != %d slots", live, len(ix.free), len(ix.arena))
	}

	inRegion := 0
	for rk, slots := range ix.byRegion {
		if len(slots) == 0 {
			return fmt.Errorf("batch index: empty region entry %v", rk.Region)
		}
		for _, slot := range slots {
			a := ix.arena[slot]
			if a == nil || a.world != rk.World || a.region != rk.Region {
				return fmt.Errorf("batch index: region %v lists stale slot %d", rk.Region, slot)
			}
			inRegion++
		}
	}
	if inRegion != live {
		return fmt.Errorf("batch index: region view has %d entries, want %d", inRegion, live)
	}

	inGroups := 0
	for i, g := range ix.groups {
		if len(g.slots) == 0 {
			return fmt.Errorf("batch index: empty material group %s", g.material.Name)
		}
		if i > 0 && !ix.groups[i-1].material.Less(g.material) {
			return fmt.Errorf("batch index: material %s out of order", g.material.Name)
		}
		for _, slot := range g.slots {
			a := ix.arena[slot]
			if a == nil || a.material.Name != g.material.Name {
				return fmt.Errorf("batch index: material %s lists stale slot %d", g.material.Name, slot)
			}
			inGroups++
		}
	}
	if inGroups != live {
		return fmt.Errorf("batch index: material view has %d entries, want %d", inGroups, live)
	}
	return nil
}

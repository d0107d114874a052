package renderer

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-render/engine/handle"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/texture"
)

// DefaultTextureUnits is the texture unit capacity used when none is configured.
const DefaultTextureUnits = 8

// SwitchStats counts the device binds the cache let through since the last Reset.
type SwitchStats struct {
	Program int
	Texture int
	Mesh    int
}

type textureSlot struct {
	unit int
	tex  texture.Texture
	id   handle.ID
}

// BindingCache remembers which program, geometry, material and textures are currently bound
// so redundant device binds can be elided. Textures are held only until Reset, which drops every
// reference; a texture slot whose texture was released is treated as free.
//
// The cache is owned by a single render pass and is not safe for concurrent use.
type BindingCache struct {
	capacity int

	program      handle.ID
	geometry     handle.ID
	material     handle.ID
	lightProgram handle.ID

	// slots is kept in allocation order; the front is the eviction candidate.
	slots []textureSlot

	stats SwitchStats
}

// NewBindingCache creates a cache managing the given number of texture units.
// A non-positive count selects DefaultTextureUnits.
func NewBindingCache(units int) *BindingCache {
	if units <= 0 {
		units = DefaultTextureUnits
	}
	return &BindingCache{
		capacity: units,
		slots:    make([]textureSlot, 0, units),
	}
}

// Capacity returns the number of texture units the cache manages.
func (c *BindingCache) Capacity() int {
	return c.capacity
}

// EnsureProgram calls bind unless p is already the bound program.
// The switch is only recorded when bind succeeds; its error is returned unchanged.
//
// Parameters:
//   - p: the program to make current
//   - bind: performs the device bind
//
// Returns:
//   - error: the bind error, if any
func (c *BindingCache) EnsureProgram(p shader.Program, bind func() error) error {
	if c.program != 0 && c.program == p.ID() {
		return nil
	}
	// Whatever material was set up no longer matches the device.
	c.material = 0
	if err := bind(); err != nil {
		return err
	}
	c.program = p.ID()
	c.stats.Program++
	return nil
}

// EnsureGeometry calls bind unless g is already the bound geometry buffer.
//
// Parameters:
//   - g: the geometry to make current
//   - bind: performs the device bind
//
// Returns:
//   - error: the bind error, if any
func (c *BindingCache) EnsureGeometry(g model.GeometryBuffer, bind func() error) error {
	if c.geometry != 0 && c.geometry == g.ID() {
		return nil
	}
	if err := bind(); err != nil {
		return err
	}
	c.geometry = g.ID()
	c.stats.Mesh++
	return nil
}

// EnsureTextureUnit returns the unit t is bound to, binding it first if needed.
//
// A texture already resident in a slot is returned without a bind. Otherwise a unit is chosen:
// the lowest never-used unit while below capacity, else the oldest slot whose texture has been
// released, else the oldest slot overall. The chosen slot moves to the back of the eviction
// order. A failed bind leaves the slot free.
//
// Parameters:
//   - t: the texture to make resident
//   - bind: performs the device bind to the chosen unit
//
// Returns:
//   - int: the texture unit
//   - error: the bind error, if any
func (c *BindingCache) EnsureTextureUnit(t texture.Texture, bind func(unit int) error) (int, error) {
	id := t.ID()
	for _, s := range c.slots {
		if s.id == id && s.tex.Alive() {
			return s.unit, nil
		}
	}

	unit := -1
	switch {
	case len(c.slots) < c.capacity:
		unit = c.freeUnit()
	default:
		victim := 0
		for i, s := range c.slots {
			if !s.tex.Alive() {
				victim = i
				break
			}
		}
		unit = c.slots[victim].unit
		c.slots = slices.Delete(c.slots, victim, victim+1)
	}

	if err := bind(unit); err != nil {
		return unit, err
	}
	c.slots = append(c.slots, textureSlot{unit: unit, tex: t, id: id})
	c.stats.Texture++
	return unit, nil
}

// freeUnit returns the lowest unit not held by any slot.
func (c *BindingCache) freeUnit() int {
	used := make([]bool, c.capacity)
	for _, s := range c.slots {
		used[s.unit] = true
	}
	for u, taken := range used {
		if !taken {
			return u
		}
	}
	return len(c.slots)
}

// MaterialBound reports whether m was the last material fully set up.
func (c *BindingCache) MaterialBound(m material.Material) bool {
	return c.material != 0 && c.material == m.ID()
}

// ForgetMaterial clears the set-up material. Called before a material's setup begins so a
// setup that fails halfway is never mistaken for a complete one.
func (c *BindingCache) ForgetMaterial() {
	c.material = 0
}

// MarkMaterial records m as the last material fully set up.
func (c *BindingCache) MarkMaterial(m material.Material) {
	c.material = m.ID()
}

// LightsCurrent reports whether light uniforms were already uploaded to p this pass.
func (c *BindingCache) LightsCurrent(p shader.Program) bool {
	return c.lightProgram != 0 && c.lightProgram == p.ID()
}

// MarkLights records p as the program holding the current light uniforms.
func (c *BindingCache) MarkLights(p shader.Program) {
	c.lightProgram = p.ID()
}

// Reset forgets every binding and zeroes the switch counters.
func (c *BindingCache) Reset() {
	c.program = 0
	c.geometry = 0
	c.material = 0
	c.lightProgram = 0
	clear(c.slots)
	c.slots = c.slots[:0]
	c.stats = SwitchStats{}
}

// Stats returns the switch counters since the last Reset.
func (c *BindingCache) Stats() SwitchStats {
	return c.stats
}

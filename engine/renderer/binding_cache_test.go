package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-render/engine/asset"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/texture"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidTexture(name string) texture.Texture {
	return texture.NewTexture(name, texture.WithPixels(texture.Solid(255, 255, 255, 255)))
}

func TestBindingCache_EnsureProgram(t *testing.T) {
	a := shader.NewProgram("a")
	b := shader.NewProgram("b")

	t.Run("same program binds once", func(t *testing.T) {
		c := NewBindingCache(8)
		binds := 0
		bind := func() error { binds++; return nil }

		require.NoError(t, c.EnsureProgram(a, bind))
		require.NoError(t, c.EnsureProgram(a, bind))
		assert.Equal(t, 1, binds)
		assert.Equal(t, 1, c.Stats().Program)
	})

	t.Run("distinct programs bind twice", func(t *testing.T) {
		c := NewBindingCache(8)
		bind := func() error { return nil }

		require.NoError(t, c.EnsureProgram(a, bind))
		require.NoError(t, c.EnsureProgram(b, bind))
		assert.Equal(t, 2, c.Stats().Program)
	})

	t.Run("failed bind is not cached", func(t *testing.T) {
		c := NewBindingCache(8)
		err := c.EnsureProgram(a, func() error { return asset.ErrNotReady })
		require.ErrorIs(t, err, asset.ErrNotReady)
		assert.Equal(t, 0, c.Stats().Program)

		binds := 0
		require.NoError(t, c.EnsureProgram(a, func() error { binds++; return nil }))
		assert.Equal(t, 1, binds)
	})

	t.Run("reset forgets the program", func(t *testing.T) {
		c := NewBindingCache(8)
		bind := func() error { return nil }
		require.NoError(t, c.EnsureProgram(a, bind))
		c.Reset()
		assert.Equal(t, SwitchStats{}, c.Stats())

		binds := 0
		require.NoError(t, c.EnsureProgram(a, func() error { binds++; return nil }))
		assert.Equal(t, 1, binds)
	})
}

func TestBindingCache_EnsureTextureUnit(t *testing.T) {
	t.Run("same texture reuses its unit", func(t *testing.T) {
		c := NewBindingCache(8)
		tex := solidTexture("t")
		binds := 0
		bind := func(int) error { binds++; return nil }

		u1, err := c.EnsureTextureUnit(tex, bind)
		require.NoError(t, err)
		u2, err := c.EnsureTextureUnit(tex, bind)
		require.NoError(t, err)

		assert.Equal(t, u1, u2)
		assert.Equal(t, 1, binds)
		assert.Equal(t, 1, c.Stats().Texture)
	})

	t.Run("ninth texture evicts the first", func(t *testing.T) {
		c := NewBindingCache(8)
		var units []int
		for i := 0; i < 9; i++ {
			u, err := c.EnsureTextureUnit(solidTexture("t"), func(int) error { return nil })
			require.NoError(t, err)
			units = append(units, u)
		}
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 0}, units)
		assert.Equal(t, 9, c.Stats().Texture)
	})

	t.Run("eviction is first in first out", func(t *testing.T) {
		c := NewBindingCache(2)
		first, second, third := solidTexture("1"), solidTexture("2"), solidTexture("3")
		bind := func(int) error { return nil }

		u1, _ := c.EnsureTextureUnit(first, bind)
		u2, _ := c.EnsureTextureUnit(second, bind)
		// A hit does not refresh the slot's position.
		_, _ = c.EnsureTextureUnit(first, bind)
		u3, err := c.EnsureTextureUnit(third, bind)
		require.NoError(t, err)
		assert.Equal(t, u1, u3)

		binds := 0
		u, err := c.EnsureTextureUnit(second, func(int) error { binds++; return nil })
		require.NoError(t, err)
		assert.Equal(t, u2, u)
		assert.Zero(t, binds)
	})

	t.Run("released texture slot is reused first", func(t *testing.T) {
		c := NewBindingCache(3)
		texs := []texture.Texture{solidTexture("a"), solidTexture("b"), solidTexture("c")}
		units := make([]int, len(texs))
		for i, tex := range texs {
			u, err := c.EnsureTextureUnit(tex, func(int) error { return nil })
			require.NoError(t, err)
			units[i] = u
		}
		texs[1].Release()

		u, err := c.EnsureTextureUnit(solidTexture("d"), func(int) error { return nil })
		require.NoError(t, err)
		assert.Equal(t, units[1], u)

		// The first texture is still resident.
		binds := 0
		u, err = c.EnsureTextureUnit(texs[0], func(int) error { binds++; return nil })
		require.NoError(t, err)
		assert.Equal(t, units[0], u)
		assert.Zero(t, binds)
	})

	t.Run("failed bind leaves the unit free", func(t *testing.T) {
		c := NewBindingCache(1)
		boom := errors.New("boom")
		_, err := c.EnsureTextureUnit(solidTexture("a"), func(int) error { return boom })
		require.ErrorIs(t, err, boom)

		u, err := c.EnsureTextureUnit(solidTexture("b"), func(int) error { return nil })
		require.NoError(t, err)
		assert.Equal(t, 0, u)
		assert.Equal(t, 1, c.Stats().Texture)
	})

	t.Run("non-positive capacity uses the default", func(t *testing.T) {
		assert.Equal(t, DefaultTextureUnits, NewBindingCache(0).Capacity())
	})
}

func TestBindingCache_Material(t *testing.T) {
	a := shader.NewProgram("a")
	b := shader.NewProgram("b")
	mat := material.NewMaterial(material.WithProgram(a))
	bind := func() error { return nil }

	t.Run("marked material is bound", func(t *testing.T) {
		c := NewBindingCache(8)
		assert.False(t, c.MaterialBound(mat))
		c.MarkMaterial(mat)
		assert.True(t, c.MaterialBound(mat))
		c.ForgetMaterial()
		assert.False(t, c.MaterialBound(mat))
	})

	t.Run("program switch forgets the material", func(t *testing.T) {
		c := NewBindingCache(8)
		require.NoError(t, c.EnsureProgram(a, bind))
		c.MarkMaterial(mat)
		require.NoError(t, c.EnsureProgram(a, bind))
		assert.True(t, c.MaterialBound(mat), "rebinding the same program is a no-op")

		require.NoError(t, c.EnsureProgram(b, bind))
		assert.False(t, c.MaterialBound(mat))
	})

	t.Run("failed program switch forgets the material", func(t *testing.T) {
		c := NewBindingCache(8)
		require.NoError(t, c.EnsureProgram(a, bind))
		c.MarkMaterial(mat)
		require.Error(t, c.EnsureProgram(b, func() error { return asset.ErrNotReady }))
		assert.False(t, c.MaterialBound(mat))
	})

	t.Run("lights follow the program", func(t *testing.T) {
		c := NewBindingCache(8)
		assert.False(t, c.LightsCurrent(a))
		c.MarkLights(a)
		assert.True(t, c.LightsCurrent(a))
		assert.False(t, c.LightsCurrent(b))
	})
}

func TestBindingCache_ResetDropsTextures(t *testing.T) {
	c := NewBindingCache(4)
	for i := 0; i < 4; i++ {
		_, err := c.EnsureTextureUnit(solidTexture("t"), func(int) error { return nil })
		require.NoError(t, err)
	}
	// Evicting through a failed bind must not leave a stale copy behind the slice end either.
	_, err := c.EnsureTextureUnit(solidTexture("e"), func(int) error { return errors.New("boom") })
	require.Error(t, err)
	for _, s := range c.slots[len(c.slots):cap(c.slots)] {
		assert.Nil(t, s.tex)
	}

	c.Reset()
	require.Empty(t, c.slots)
	for _, s := range c.slots[:cap(c.slots)] {
		assert.Nil(t, s.tex)
		assert.Zero(t, s.id)
	}
}

package texture

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/asset"
	"github.com/Carmen-Shannon/oxy-render/engine/handle"
	"github.com/pkg/errors"
)

// texture is the implementation of the Texture interface.
type texture struct {
	*asset.State

	id       handle.ID
	name     string
	source   *common.ImportedTexture
	staging  atomic.Pointer[common.TextureStagingData]
	released atomic.Bool
}

// Texture is a 2D RGBA image that can be bound to a texture unit.
//
// Textures are shared between materials and are never owned by the renderer: binding caches
// only observe them by ID and treat a released texture as gone. Pixel data is staged on the CPU
// and uploaded by the device on first bind.
type Texture interface {
	asset.Loadable

	// ID returns the texture's identity token.
	//
	// Returns:
	//   - handle.ID: the unique identity of this texture
	ID() handle.ID

	// Name returns the texture's debug name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Staging returns the decoded pixel data, or nil if it has not been loaded yet.
	//
	// Returns:
	//   - *common.TextureStagingData: the pixels and dimensions, or nil
	Staging() *common.TextureStagingData

	// SetStaging replaces the pixel data. The caller is responsible for marking the texture ready.
	//
	// Parameters:
	//   - data: the decoded pixels
	SetStaging(data common.TextureStagingData)

	// Decode decodes the texture's source image into staging data. Safe to call from a worker.
	//
	// Returns:
	//   - error: an error if there is no source or decoding fails
	Decode() error

	// Alive reports whether the texture has not been released.
	//
	// Returns:
	//   - bool: false once Release has been called
	Alive() bool

	// Release marks the texture as gone and drops its pixel data. Caches that still refer to it
	// treat its unit as free.
	Release()
}

var _ Texture = &texture{}

// NewTexture creates a pending texture. Provide pixels with WithPixels (which also marks it
// ready) or a source with WithSource / WithFile and load it through an asset.Streamer.
//
// Parameters:
//   - name: debug name of the texture
//   - options: functional options to configure the texture
//
// Returns:
//   - Texture: the new texture
func NewTexture(name string, options ...TextureBuilderOption) Texture {
	t := &texture{
		State: &asset.State{},
		id:    handle.NextID(),
		name:  name,
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

func (t *texture) ID() handle.ID {
	return t.id
}

func (t *texture) Name() string {
	return t.name
}

func (t *texture) Label() string {
	return "texture " + t.name
}

func (t *texture) Staging() *common.TextureStagingData {
	return t.staging.Load()
}

func (t *texture) SetStaging(data common.TextureStagingData) {
	t.staging.Store(&data)
}

func (t *texture) Decode() error {
	if t.source == nil {
		return errors.Errorf("texture %q has no source", t.name)
	}
	data, err := t.source.Decode()
	if err != nil {
		return err
	}
	t.SetStaging(data)
	return nil
}

func (t *texture) Status() error {
	if t.released.Load() {
		return errors.Errorf("texture %q released", t.name)
	}
	return t.State.Status()
}

func (t *texture) Alive() bool {
	return !t.released.Load()
}

func (t *texture) Release() {
	t.released.Store(true)
	t.staging.Store(nil)
}

// Load enqueues decoding of the texture's source on the streamer. The texture becomes ready on
// the first Step after decoding finishes.
//
// Parameters:
//   - s: the streamer to load on
//   - t: the texture to load
//
// Returns:
//   - error: an error if the streamer rejects the work
func Load(s asset.Streamer, t Texture) error {
	return s.Enqueue(t, t.Decode)
}

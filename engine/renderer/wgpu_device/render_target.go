package wgpu_device

import (
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/handle"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// renderTarget is an offscreen colour and depth attachment pair.
type renderTarget struct {
	id            handle.ID
	label         string
	width, height int
	format        wgpu.TextureFormat

	color     *wgpu.Texture
	colorView *wgpu.TextureView
	depth     *wgpu.Texture
	depthView *wgpu.TextureView
}

var _ camera.RenderTarget = &renderTarget{}

func (t *renderTarget) ID() handle.ID {
	return t.id
}

func (t *renderTarget) Size() (int, int) {
	return t.width, t.height
}

func (t *renderTarget) release() {
	if t.depthView != nil {
		t.depthView.Release()
	}
	if t.depth != nil {
		t.depth.Release()
	}
	if t.colorView != nil {
		t.colorView.Release()
	}
	if t.color != nil {
		t.color.Release()
	}
}

// createRenderTarget allocates the attachments of a width x height target. Caller must hold the mutex.
func (d *device) createRenderTarget(label string, width, height int) (*renderTarget, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("render target %s size %dx%d must be positive", label, width, height)
	}
	t := &renderTarget{
		id:     handle.NextID(),
		label:  label,
		width:  width,
		height: height,
		format: d.colorFormat,
	}
	size := wgpu.Extent3D{
		Width:              uint32(width),
		Height:             uint32(height),
		DepthOrArrayLayers: 1,
	}

	var err error
	t.color, err = d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label + " Color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        d.colorFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create colour attachment of %s", label)
	}
	t.colorView, err = t.color.CreateView(nil)
	if err != nil {
		t.release()
		return nil, errors.Wrapf(err, "create colour view of %s", label)
	}

	t.depth, err = d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label + " Depth",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        depthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.release()
		return nil, errors.Wrapf(err, "create depth attachment of %s", label)
	}
	t.depthView, err = t.depth.CreateView(nil)
	if err != nil {
		t.release()
		return nil, errors.Wrapf(err, "create depth view of %s", label)
	}
	return t, nil
}

package camera

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Controller owns a camera's eye and target. The camera copies them on Update.
type Controller interface {
	// Position returns the eye position.
	Position() mgl32.Vec3

	// Target returns the look-at point.
	Target() mgl32.Vec3
}

// orbitController places the eye on a sphere around the target using radius, azimuth and
// elevation.
type orbitController struct {
	mu *sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3

	radius    float32
	azimuth   float32 // around Y
	elevation float32 // from the horizontal plane

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32
}

// OrbitController is a Controller that circles a target point.
type OrbitController interface {
	Controller

	// Orbit rotates the eye around the target. Elevation is clamped to the configured limits.
	//
	// Parameters:
	//   - dAzimuth: change in horizontal angle, radians
	//   - dElevation: change in vertical angle, radians
	Orbit(dAzimuth, dElevation float32)

	// Zoom moves the eye toward the target by delta, clamped to the radius limits.
	Zoom(delta float32)

	// SetTarget moves the pivot point.
	SetTarget(target mgl32.Vec3)

	// Radius returns the current distance from target.
	Radius() float32

	// Azimuth returns the horizontal angle in radians.
	Azimuth() float32

	// Elevation returns the vertical angle in radians.
	Elevation() float32
}

var _ OrbitController = &orbitController{}

// NewOrbitController creates an orbit controller 10 units from the origin, 30 degrees up.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - OrbitController: the newly created controller
func NewOrbitController(options ...OrbitControllerOption) OrbitController {
	oc := &orbitController{
		mu:           &sync.Mutex{},
		radius:       10.0,
		elevation:    float32(math.Pi / 6),
		minRadius:    0.5,
		maxRadius:    1000.0,
		minElevation: float32(-math.Pi/2 + 0.1),
		maxElevation: float32(math.Pi/2 - 0.1),
	}
	for _, option := range options {
		option(oc)
	}
	oc.clamp()
	oc.updatePosition()
	return oc
}

func (oc *orbitController) Position() mgl32.Vec3 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.position
}

func (oc *orbitController) Target() mgl32.Vec3 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.target
}

func (oc *orbitController) Radius() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.radius
}

func (oc *orbitController) Azimuth() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.azimuth
}

func (oc *orbitController) Elevation() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.elevation
}

func (oc *orbitController) Orbit(dAzimuth, dElevation float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.azimuth = float32(math.Mod(float64(oc.azimuth+dAzimuth), 2*math.Pi))
	oc.elevation += dElevation
	oc.clamp()
	oc.updatePosition()
}

func (oc *orbitController) Zoom(delta float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.radius -= delta
	oc.clamp()
	oc.updatePosition()
}

func (oc *orbitController) SetTarget(target mgl32.Vec3) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.target = target
	oc.updatePosition()
}

// clamp keeps radius and elevation inside their limits.
// Caller must hold the mutex.
func (oc *orbitController) clamp() {
	oc.radius = mgl32.Clamp(oc.radius, oc.minRadius, oc.maxRadius)
	oc.elevation = mgl32.Clamp(oc.elevation, oc.minElevation, oc.maxElevation)
}

// updatePosition recomputes the eye from spherical coordinates.
// Caller must hold the mutex.
func (oc *orbitController) updatePosition() {
	cosElev := float32(math.Cos(float64(oc.elevation)))
	sinElev := float32(math.Sin(float64(oc.elevation)))
	cosAzim := float32(math.Cos(float64(oc.azimuth)))
	sinAzim := float32(math.Sin(float64(oc.azimuth)))

	oc.position = oc.target.Add(mgl32.Vec3{
		oc.radius * cosElev * sinAzim,
		oc.radius * sinElev,
		oc.radius * cosElev * cosAzim,
	})
}

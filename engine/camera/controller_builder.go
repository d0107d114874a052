package camera

import "github.com/go-gl/mathgl/mgl32"

// OrbitControllerOption is a functional option for configuring an OrbitController.
type OrbitControllerOption func(*orbitController)

// WithOrbitTarget sets the pivot point.
func WithOrbitTarget(target mgl32.Vec3) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.target = target
	}
}

// WithRadius sets the initial distance from the target.
func WithRadius(radius float32) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.radius = radius
	}
}

// WithAngles sets the initial azimuth and elevation in radians.
func WithAngles(azimuth, elevation float32) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.azimuth = azimuth
		oc.elevation = elevation
	}
}

// WithRadiusLimits sets the zoom limits.
func WithRadiusLimits(minRadius, maxRadius float32) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.minRadius = minRadius
		oc.maxRadius = maxRadius
	}
}

// WithElevationLimits sets the vertical angle limits in radians.
func WithElevationLimits(minElevation, maxElevation float32) OrbitControllerOption {
	return func(oc *orbitController) {
		oc.minElevation = minElevation
		oc.maxElevation = maxElevation
	}
}

// Package transform converts SGP4 output into earth-fixed and geodetic
// coordinates.
//
// SGP4 produces positions in TEME (True Equator Mean Equinox). Rotating by
// GMST about the Z axis gives PEF, used here as ECEF; polar motion and the
// equation of the equinoxes are ignored. The resulting error is tens of
// metres, well below what a ground-track plot can show.
//
// Reference: Vallado, "Fundamentals of Astrodynamics and Applications", Ch. 3.
package transform

import (
	"math"
	"time"
)

// PositionTEME is a position in the TEME frame, in km.
type PositionTEME struct {
	X, Y, Z float64
}

// Radius returns the geocentric distance in km.
func (p PositionTEME) Radius() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// PositionECEF is a position in the earth-fixed frame, in meters.
type PositionECEF struct {
	X, Y, Z float64
}

// TEMEToECEF rotates a TEME position into ECEF at the given time.
// Input in km, output in meters.
func TEMEToECEF(teme PositionTEME, t time.Time) PositionECEF {
	return TEMEToECEFWithGMST(teme, GMST(t))
}

// TEMEToECEFWithGMST applies r_ECEF = R3(θ) * r_TEME for a precomputed GMST
// angle θ in radians.
func TEMEToECEFWithGMST(teme PositionTEME, gmst float64) PositionECEF {
	cosG := math.Cos(gmst)
	sinG := math.Sin(gmst)

	return PositionECEF{
		X: (teme.X*cosG + teme.Y*sinG) * 1000.0,
		Y: (-teme.X*sinG + teme.Y*cosG) * 1000.0,
		Z: teme.Z * 1000.0,
	}
}

// ValidateECEF reports whether pos is a plausible Earth-orbit position:
// finite, and between 6200 km and 50000 km from the geocenter.
func ValidateECEF(pos PositionECEF) bool {
	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsNaN(pos.Z) {
		return false
	}
	if math.IsInf(pos.X, 0) || math.IsInf(pos.Y, 0) || math.IsInf(pos.Z, 0) {
		return false
	}

	const minRadius = 6200.0 * 1000.0
	const maxRadius = 50000.0 * 1000.0

	mag := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
	return mag >= minRadius && mag <= maxRadius
}

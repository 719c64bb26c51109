// Package geodetic converts between Earth-Centered Earth-Fixed (ECEF)
// rectangular coordinates and geodetic latitude, longitude and altitude on
// a reference ellipsoid.
//
// The forward direction (Forward) is closed form. The backward direction has
// no closed form and is delegated to a Solver: FukushimaHalley, the default,
// or Olson as an independent cross-check. Converter wraps both directions
// behind per-call parameter validation and a Status result.
package geodetic

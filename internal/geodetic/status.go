package geodetic

import "fmt"

// Status is the outcome of a single conversion call. Values are stable and
// may be persisted or exchanged with other systems.
type Status int

const (
	// Success means the returned coordinates are valid.
	Success Status = 1
	// Undetermined is the zero value. A completed call never returns it.
	Undetermined Status = 0
	// InvalidFlatteningFactor covers a flattening outside [0, 1), an
	// eccentricity squared outside [0, 1), and a non-positive complementary
	// eccentricity squared.
	InvalidFlatteningFactor Status = -1
	// InvalidEquatorialRadius means the equatorial radius was not strictly positive.
	InvalidEquatorialRadius Status = -2
	// InvalidAltitude means the forward conversion produced a non-positive
	// rho or rhoz, i.e. the altitude drove the point through the ellipsoid's
	// degenerate region.
	InvalidAltitude Status = -3
)

var statusNames = map[Status]string{
	Success:                 "success",
	Undetermined:            "undetermined",
	InvalidFlatteningFactor: "invalid_flattening_factor",
	InvalidEquatorialRadius: "invalid_equatorial_radius",
	InvalidAltitude:         "invalid_altitude",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Ok reports whether s is Success.
func (s Status) Ok() bool {
	return s == Success
}

// MarshalText encodes the status by name so JSON payloads stay readable.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	for st, name := range statusNames {
		if name == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown conversion status %q", text)
}

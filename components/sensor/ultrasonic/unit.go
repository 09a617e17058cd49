package ultrasonic

import (
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// microsecondsPerCm is the round trip time of sound for one centimeter of range, taking the speed
// of sound as 343 m/s.
const microsecondsPerCm = 29.1

// Unit is a length unit a distance can be reported in.
type Unit int

// The supported units. Any other Unit value converts as Centimeters.
const (
	Centimeters Unit = iota
	Meters
	Millimeters
	Inches
	Yards
	Miles
)

var unitNames = map[Unit]string{
	Centimeters: "cm",
	Meters:      "m",
	Millimeters: "mm",
	Inches:      "in",
	Yards:       "yd",
	Miles:       "mi",
}

var unitAliases = map[string]Unit{
	"cm": Centimeters, "centimeter": Centimeters, "centimeters": Centimeters,
	"m": Meters, "meter": Meters, "meters": Meters,
	"mm": Millimeters, "millimeter": Millimeters, "millimeters": Millimeters,
	"in": Inches, "inch": Inches, "inches": Inches,
	"yd": Yards, "yard": Yards, "yards": Yards,
	"mi": Miles, "mile": Miles, "miles": Miles,
}

func (u Unit) String() string {
	return unitNames[u.valid()]
}

// valid maps an unknown unit onto Centimeters.
func (u Unit) valid() Unit {
	if _, ok := unitNames[u]; ok {
		return u
	}
	return Centimeters
}

// ParseUnit parses a unit name such as "cm", "inches" or "Yards".
func ParseUnit(name string) (Unit, error) {
	if u, ok := unitAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return u, nil
	}
	return Centimeters, errors.Errorf("unknown distance unit %q", name)
}

// Convert turns the width of an echo pulse into the distance to the reflecting object.
func Convert(echo time.Duration, unit Unit) float64 {
	us := float64(echo) / float64(time.Microsecond)
	// halved because the pulse covers the way there and back
	cm := us / microsecondsPerCm / 2.0

	switch unit {
	case Centimeters:
		return cm
	case Meters:
		return cm / 100.0
	case Millimeters:
		return cm * 10.0
	case Inches:
		return cm / 2.54
	case Yards:
		return cm / 91.44
	case Miles:
		return cm / 160934.4
	default:
		return cm
	}
}

// TimeoutForDistance returns the per-phase timeout, in microseconds, that lets an echo from an
// object cm centimeters away complete.
func TimeoutForDistance(cm uint) uint {
	return uint(math.Round(float64(cm) * 2 * microsecondsPerCm))
}

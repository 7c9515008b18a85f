package rocket

import (
	"math"
	"strconv"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// TLE is a validated two line element set.
type TLE struct {
	Name         string
	Line1, Line2 string
	Epoch        time.Time
}

// ParseTLE checks the layout and checksums of both lines and reads the epoch.
// The SGP4 parser exits the process on malformed input, so nothing reaches it
// before passing these checks.
func ParseTLE(name, line1, line2 string) (TLE, error) {
	line1 = strings.TrimRight(line1, "\r\n ")
	line2 = strings.TrimRight(line2, "\r\n ")
	for i, line := range []string{line1, line2} {
		if len(line) != 69 {
			return TLE{}, invalidf("TLE line %d has %d characters instead of 69", i+1, len(line))
		}
		if line[0] != byte('1'+i) {
			return TLE{}, invalidf("TLE line %d must begin with %d", i+1, i+1)
		}
		sum, err := tleChecksum(line)
		if err != nil {
			return TLE{}, invalidf("TLE line %d: %s", i+1, err)
		}
		if exp := int(line[68] - '0'); sum != exp {
			return TLE{}, invalidf("TLE line %d checksum is %d, computed %d", i+1, exp, sum)
		}
	}
	if line1[2:7] != line2[2:7] {
		return TLE{}, invalidf("TLE lines describe satellites %s and %s", line1[2:7], line2[2:7])
	}
	// Every numeric field handed to SGP4 must parse.
	for _, field := range []string{line1[18:32], line1[33:43], line2[8:16], line2[17:25], line2[26:33], line2[34:42], line2[43:51], line2[52:63]} {
		s := strings.TrimSpace(field)
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			if _, err := strconv.ParseFloat("0"+s, 64); err != nil {
				return TLE{}, invalidf("TLE field %q is not a number", field)
			}
		}
	}
	for _, field := range []string{line1[44:52], line1[53:61]} {
		if !validTLEExponent(field) {
			return TLE{}, invalidf("TLE field %q is not an implied decimal", field)
		}
	}
	epoch, err := tleEpoch(line1[18:32])
	if err != nil {
		return TLE{}, err
	}
	return TLE{Name: strings.TrimSpace(name), Line1: line1, Line2: line2, Epoch: epoch}, nil
}

// validTLEExponent checks the implied decimal notation, e.g. " 12345-3".
func validTLEExponent(field string) bool {
	if len(field) != 8 || !strings.ContainsRune(" +-", rune(field[0])) || !strings.ContainsRune("+-", rune(field[6])) {
		return false
	}
	for _, c := range field[1:6] + field[7:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func tleChecksum(line string) (int, error) {
	var sum int
	for _, c := range line[:68] {
		switch {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	if line[68] < '0' || line[68] > '9' {
		return 0, invalidf("checksum %q is not a digit", line[68])
	}
	return sum % 10, nil
}

// tleEpoch reads YYDDD.DDDDDDDD, years 57 to 99 being in the 1900s.
func tleEpoch(field string) (time.Time, error) {
	field = strings.TrimSpace(field)
	if len(field) < 5 {
		return time.Time{}, invalidf("TLE epoch %q too short", field)
	}
	yy, err := strconv.Atoi(field[:2])
	if err != nil {
		return time.Time{}, invalidf("TLE epoch year %q", field[:2])
	}
	days, err := strconv.ParseFloat(field[2:], 64)
	if err != nil || days < 1 || days >= 367 {
		return time.Time{}, invalidf("TLE epoch day %q", field[2:])
	}
	year := 2000 + yy
	if yy >= 57 {
		year = 1900 + yy
	}
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	return start.Add(time.Duration((days - 1) * 24 * float64(time.Hour))).Round(time.Microsecond), nil
}

// StateAt propagates the element set with SGP4 to the provided time and returns
// the TEME position and velocity in meters and meters per second.
func (t TLE) StateAt(at time.Time) (R, V []float64, err error) {
	sat := satellite.TLEToSat(t.Line1, t.Line2, satellite.GravityWGS72)
	at = at.UTC()
	year, month, day := at.Date()
	hour, min, sec := at.Clock()
	pos, vel := satellite.Propagate(sat, year, int(month), day, hour, min, sec)
	const kmToM = 1000.0
	R = []float64{pos.X * kmToM, pos.Y * kmToM, pos.Z * kmToM}
	V = []float64{vel.X * kmToM, vel.Y * kmToM, vel.Z * kmToM}
	if !finite(append(R, V...)...) || norm(R) == 0 {
		return nil, nil, nonconvf("SGP4 failed for %s at %s (decayed or invalid elements)", t.Name, at)
	}
	return R, V, nil
}

// Orbit returns the osculating elements about Earth at the provided time.
func (t TLE) Orbit(at time.Time) (*OrbitElements, error) {
	R, V, err := t.StateAt(at)
	if err != nil {
		return nil, err
	}
	return NewOrbitFromRV(R, V, Earth)
}

// SatelliteFromTLE seeds a constellation member from its element set at the provided time.
func SatelliteFromTLE(t TLE, at time.Time) (Satellite, error) {
	o, err := t.Orbit(at)
	if err != nil {
		return Satellite{}, err
	}
	name := t.Name
	if name == "" {
		name = strings.TrimSpace(t.Line1[2:7])
	}
	return Satellite{Name: name, Orbit: o}, nil
}

// MeanMotionRevPerDay returns the mean motion recorded in the element set.
func (t TLE) MeanMotionRevPerDay() float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(t.Line2[52:63]), 64)
	if err != nil {
		return math.NaN()
	}
	return n
}

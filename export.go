package rocket

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// TrajectoryHeader is the header of the trajectory viewer CSV format.
var TrajectoryHeader = []string{"name", "x", "y", "z", "r", "g", "b"}

// DefaultPalette is cycled through for trajectories without a color.
var DefaultPalette = []string{"#00ffff", "#ff00ff", "#ffff00", "#00ff00", "#ff6b6b", "#4ecdc4"}

// Color is an RGB triplet with channels in [0, 1].
type Color [3]float64

// ParseHexColor reads "#rrggbb" (the # is optional).
func ParseHexColor(hex string) (Color, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return Color{}, invalidf("color %q is not #rrggbb", hex)
	}
	var c Color
	for i := range c {
		v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return Color{}, invalidf("color %q: %s", hex, err)
		}
		c[i] = float64(v) / 255
	}
	return c, nil
}

// Trajectory is a named time ordered list of positions in meters.
type Trajectory struct {
	Name      string
	Color     string // hex, from DefaultPalette if empty
	Positions [][]float64
}

// ExportPoint is one row of the trajectory viewer format, the position being
// in body radii.
type ExportPoint struct {
	Name    string
	X, Y, Z float64
	Color   Color
}

// WriteTrajectories writes the trajectories in the viewer CSV format, with
// positions normalized by the equatorial radius of the body.
func WriteTrajectories(w io.Writer, body CentralBody, trajs ...Trajectory) error {
	if !(body.Radius > 0) {
		return invalidf("trajectories need a body radius to be normalized")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(TrajectoryHeader); err != nil {
		return err
	}
	for i, traj := range trajs {
		if traj.Name == "" || strings.ContainsAny(traj.Name, ",\n\"") {
			return invalidf("trajectory name %q cannot be exported", traj.Name)
		}
		hex := traj.Color
		if hex == "" {
			hex = DefaultPalette[i%len(DefaultPalette)]
		}
		c, err := ParseHexColor(hex)
		if err != nil {
			return err
		}
		for _, R := range traj.Positions {
			if len(R) != 3 {
				return invalidf("trajectory %q has a %d component position", traj.Name, len(R))
			}
			record := []string{traj.Name}
			for _, x := range R {
				record = append(record, strconv.FormatFloat(x/body.Radius, 'f', 6, 64))
			}
			for _, x := range c {
				record = append(record, strconv.FormatFloat(x, 'f', 3, 64))
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTrajectories parses the viewer CSV format back, row by row.
func ReadTrajectories(r io.Reader) ([]ExportPoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(TrajectoryHeader)
	hdr, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if strings.Join(hdr, ",") != strings.Join(TrajectoryHeader, ",") {
		return nil, invalidf("unexpected header %q", strings.Join(hdr, ","))
	}
	var points []ExportPoint
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return points, nil
		}
		if err != nil {
			return nil, err
		}
		var vals [6]float64
		for i := range vals {
			if vals[i], err = strconv.ParseFloat(record[i+1], 64); err != nil {
				return nil, invalidf("row %d: %s", len(points)+1, err)
			}
		}
		points = append(points, ExportPoint{
			Name:  record[0],
			X:     vals[0],
			Y:     vals[1],
			Z:     vals[2],
			Color: Color{vals[3], vals[4], vals[5]},
		})
	}
}

// Trajectories returns the spacecraft, origin and destination paths of the transfer.
func (h HohmannTrajectory) Trajectories() []Trajectory {
	return []Trajectory{
		{Name: "Transfer", Color: "#ff6b6b", Positions: h.Spacecraft},
		{Name: "Origin", Color: "#00ffff", Positions: h.Origin},
		{Name: "Destination", Color: "#ff9f43", Positions: h.Destination},
	}
}

// Trajectory returns the inertial path of the track.
func (g GroundTrack) Trajectory() Trajectory {
	t := Trajectory{Name: g.Name, Positions: make([][]float64, len(g.Points))}
	for i, p := range g.Points {
		t.Positions[i] = p.R
	}
	return t
}

// Trajectory returns the inertial path of the vehicle.
func (r AscentResult) Trajectory(name string) Trajectory {
	t := Trajectory{Name: name, Positions: make([][]float64, len(r.Samples))}
	for i, s := range r.Samples {
		t.Positions[i] = s.R
	}
	return t
}

// WriteInterpolatedStates writes the track as <jd> <x> <y> <z> <vx> <vy> <vz>
// records in km and km/s, the first point being at epoch.
func WriteInterpolatedStates(w io.Writer, track GroundTrack, epoch time.Time) error {
	if _, err := fmt.Fprintf(w, "# %s\n# Records are <jd> <x> <y> <z> <vel x> <vel y> <vel z>\n#   Time is a UTC Julian date\n#   Position in km\n#   Velocity in km/sec\n#   Simulation time start (UTC): %s\n",
		track.Name, epoch.UTC()); err != nil {
		return err
	}
	jd0 := julian.TimeToJD(epoch)
	for _, p := range track.Points {
		if len(p.V) != 3 {
			return invalidf("track %q has no velocity at t=%g", track.Name, p.Time)
		}
		if _, err := fmt.Fprintf(w, "%f %f %f %f %f %f %f\n", jd0+p.Time/secondsPerDay,
			p.R[0]/1e3, p.R[1]/1e3, p.R[2]/1e3, p.V[0]/1e3, p.V[1]/1e3, p.V[2]/1e3); err != nil {
			return err
		}
	}
	return nil
}

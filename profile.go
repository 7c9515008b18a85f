package rocket

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/interp"
)

// AccelerationProfile is a monotonic series of (time, acceleration) samples
// treated as a continuous function by linear interpolation. Accelerations are in m/s^2.
// Outside of the sampled range the first or last value is held.
type AccelerationProfile struct {
	Time, Accel []float64
	pl          interp.PiecewiseLinear
}

// NewAccelerationProfile copies the samples. Times must be strictly increasing.
func NewAccelerationProfile(times, accels []float64) (AccelerationProfile, error) {
	if len(times) != len(accels) {
		return AccelerationProfile{}, invalidf("profile has %d times but %d accelerations", len(times), len(accels))
	}
	if len(times) < 2 {
		return AccelerationProfile{}, invalidf("profile needs at least two samples (got %d)", len(times))
	}
	p := AccelerationProfile{Time: make([]float64, len(times)), Accel: make([]float64, len(accels))}
	copy(p.Time, times)
	copy(p.Accel, accels)
	for i := range p.Time {
		if !finite(p.Time[i], p.Accel[i]) {
			return AccelerationProfile{}, invalidf("non finite profile sample %d", i)
		}
		if i > 0 && p.Time[i] <= p.Time[i-1] {
			return AccelerationProfile{}, invalidf("profile times must be strictly increasing (sample %d)", i)
		}
	}
	if err := p.pl.Fit(p.Time, p.Accel); err != nil {
		return AccelerationProfile{}, invalidf("%s", err)
	}
	return p, nil
}

// Len returns the number of samples.
func (p AccelerationProfile) Len() int {
	return len(p.Time)
}

// At returns the interpolated acceleration.
func (p AccelerationProfile) At(t float64) float64 {
	if t <= p.Time[0] {
		return p.Accel[0]
	}
	if t >= p.Time[len(p.Time)-1] {
		return p.Accel[len(p.Accel)-1]
	}
	return p.pl.Predict(t)
}

// Duration returns the time span of the profile.
func (p AccelerationProfile) Duration() float64 {
	return p.Time[len(p.Time)-1] - p.Time[0]
}

// uniformProfile samples f every dt over [0, duration).
func uniformProfile(duration, dt float64, f func(t float64) float64) (AccelerationProfile, error) {
	if !(duration > 0) || !(dt > 0) || 2*dt > duration {
		return AccelerationProfile{}, invalidf("profile needs 0 < 2·dt ≤ duration (got %g, %g)", dt, duration)
	}
	n := int(math.Ceil(duration/dt - 1e-9))
	times := make([]float64, n)
	accels := make([]float64, n)
	for i := range times {
		times[i] = float64(i) * dt
		accels[i] = f(times[i]) * StandardGravity
	}
	return NewAccelerationProfile(times, accels)
}

// StepProfile is a constant acceleration, in m/s^2, applied from t=0.
func StepProfile(accel, duration, dt float64) (AccelerationProfile, error) {
	return uniformProfile(duration, dt, func(float64) float64 { return accel / StandardGravity })
}

// vibration returns the sum of a·sin(2π·f·t) for each (amplitude g, frequency Hz) pair.
func vibration(t float64, terms ...[2]float64) float64 {
	var v float64
	for _, term := range terms {
		v += term[0] * math.Sin(2*math.Pi*term[1]*t)
	}
	return v
}

// StarshipLaunchProfile is a super heavy booster and ship ascent: throttle up,
// max Q bucket around T+40 s, booster burn to 3 g, hot staging, then the ship burn.
func StarshipLaunchProfile(duration, dt float64) (AccelerationProfile, error) {
	return uniformProfile(duration, dt, func(t float64) float64 {
		var g float64
		switch {
		case t < 5:
			g = 1.2 * t / 5
		case t < 60:
			g = 1.2 * (1 - 0.3*math.Exp(-(t-40)*(t-40)/200))
		case t < 150:
			g = 1.2 + 1.8*(t-60)/90
		case t < 155:
			g = 3.0 * (1 - (t-150)/5)
		case t < 160:
			g = 0.1 * math.Sin(2*math.Pi*2*(t-155))
		default:
			g = 1.5
		}
		if t < 155 || t > 160 {
			g += vibration(t, [2]float64{0.15, 25}, [2]float64{0.08, 12})
		}
		return g
	})
}

// StarshipLandingProfile is the belly flop, flip and landing burn of the ship.
func StarshipLandingProfile(duration, dt float64) (AccelerationProfile, error) {
	return uniformProfile(duration, dt, func(t float64) float64 {
		switch {
		case t < 15:
			return 0.3
		case t < 18:
			return 0.3 + 2.0*math.Sin(math.Pi*(t-15)/3)
		case t < 25:
			return 4.0 - 1.5*(t-18)/7
		case t < 25.5:
			return 6.0 * math.Exp(-20*(t-25))
		default:
			return 1.0
		}
	})
}

// SoyuzLaunchDuration is the time from liftoff to orbit insertion of a Soyuz.
const SoyuzLaunchDuration = 540.0

// SoyuzLaunchProfile is the staged Soyuz ascent with its drops at booster
// separation (T+118 s) and core stage separation (T+287 s).
func SoyuzLaunchProfile(dt float64) (AccelerationProfile, error) {
	return uniformProfile(SoyuzLaunchDuration, dt, func(t float64) float64 {
		var g float64
		switch {
		case t < 3:
			g = 1.3 * t / 3
		case t < 118:
			g = 1.3 + 2.5*(t-3)/115
		case t < 120:
			g = 3.8 * (1 - 0.5*(t-118)/2)
		case t < 287:
			g = 1.9 + 2.3*(t-120)/167
		case t < 290:
			g = 4.2 * (1 - (t-287)/3)
		case t < 295:
			g = 0.05
		case t < 530:
			g = 0.8 + 1.5*(t-295)/235
		}
		if t < 530 {
			g += vibration(t, [2]float64{0.12, 18}, [2]float64{0.06, 35})
		}
		return g
	})
}

// SoyuzReentryProfile is the descent module return. The guided descent peaks
// near 4.5 g, the ballistic fallback near 8 g.
func SoyuzReentryProfile(ballistic bool, dt float64) (AccelerationProfile, error) {
	if ballistic {
		return uniformProfile(350, dt, func(t float64) float64 {
			switch {
			case t < 60:
				return 2.0 * t / 60
			case t < 180:
				return 2.0 + 6.0*math.Sin(math.Pi*(t-60)/120)
			case t < 280:
				return 3.0 * math.Exp(-0.02*(t-180))
			case t < 340:
				return 1.0
			case t < 345:
				return 4.0
			default:
				return 1.0
			}
		})
	}
	return uniformProfile(420, dt, func(t float64) float64 {
		switch {
		case t < 90:
			return 1.5 * t / 90
		case t < 240:
			return 1.5 + 3.0*math.Sin(math.Pi*(t-90)/150)
		case t < 320:
			return 2.5 * math.Exp(-0.015*(t-240))
		case t < 410:
			return 1.0
		case t < 415:
			return 3.5
		default:
			return 1.0
		}
	})
}

// ShuttleLaunchProfile is the orbiter ascent, throttled to 3 g on the external tank.
func ShuttleLaunchProfile(dt float64) (AccelerationProfile, error) {
	return uniformProfile(520, dt, func(t float64) float64 {
		var g float64
		switch {
		case t < 7:
			g = 1.5 * t / 7
		case t < 52:
			g = 1.5 * (1 - 0.3*math.Sin(math.Pi*(t-7)/45))
		case t < 126:
			g = 1.5 + 1.0*(t-52)/74
		case t < 130:
			g = 1.0
		case t < 510:
			g = math.Min(1.0+2.0*(t-130)/380, 3.0)
		}
		if t < 510 {
			g += vibration(t, [2]float64{0.08, 20})
			if t < 126 {
				g += vibration(t, [2]float64{0.15, 15})
			}
		}
		return g
	})
}

// ApolloReentryProfile is a command module lunar return with a skip and a
// second deceleration pulse near 6.5 g, ending with splashdown.
func ApolloReentryProfile(dt float64) (AccelerationProfile, error) {
	return uniformProfile(900, dt, func(t float64) float64 {
		switch {
		case t < 60:
			return 1.5 * t / 60
		case t < 180:
			return 1.5 + 3.0*math.Sin(math.Pi*(t-60)/120)
		case t < 240:
			return 1.0
		case t < 420:
			p := (t - 240) / 180
			return 1.5 + 5.0*math.Exp(-(p-0.4)*(p-0.4)/0.05)
		case t < 600:
			return 2.5 - 1.5*(t-420)/180
		case t < 700:
			return 2.0 + 0.5*math.Sin(2*math.Pi*0.5*(t-600))
		case t < 880:
			return 1.0
		case t < 890:
			return 1.0 + 8.0*math.Exp(-(t-880)/0.5)
		default:
			return 1.0
		}
	})
}

// CrewDragonLaunchProfile is a Falcon 9 crew ascent with the second stage throttled to 4 g.
func CrewDragonLaunchProfile(dt float64) (AccelerationProfile, error) {
	return uniformProfile(570, dt, func(t float64) float64 {
		var g float64
		switch {
		case t < 5:
			g = 1.2 * t / 5
		case t < 60:
			g = 1.2 * (1 + 0.8*(t-5)/55) * (1 - 0.25*math.Exp(-(t-40)*(t-40)/100))
		case t < 150:
			g = 1.6 + 2.0*(t-60)/90
		case t < 155:
			g = 0.5 * (1 - (t-150)/5)
		case t < 160:
			g = 0
		case t < 500:
			g = math.Min(0.8+3.2*(t-160)/340, 4.0)
		}
		if t < 150 || (t > 160 && t < 500) {
			g += vibration(t, [2]float64{0.1, 22})
		}
		return g
	})
}

// NewShepardLaunchProfile is a suborbital New Shepard flight: a gentle 3 g
// ascent, microgravity above the Karman line, a reentry pulse near 6 g, then
// the parachute descent.
func NewShepardLaunchProfile(dt float64) (AccelerationProfile, error) {
	return uniformProfile(660, dt, func(t float64) float64 {
		switch {
		case t < 10:
			return 2.0 * t / 10
		case t < 140:
			return 2.0 + (t-10)/130
		case t < 240:
			return 0
		case t < 400:
			p := (t - 240) / 160
			return 5.0*math.Exp(-(p-0.5)*(p-0.5)/0.05) + 1.0
		case t < 600:
			return 1.5
		default:
			return 1.0
		}
	})
}

// ShenzhouLaunchProfile is a Long March 2F ascent, close to the Soyuz one with
// about 4 g at staging.
func ShenzhouLaunchProfile(dt float64) (AccelerationProfile, error) {
	return uniformProfile(600, dt, func(t float64) float64 {
		var g float64
		switch {
		case t < 10:
			g = 1.5 * t / 10
		case t < 120:
			g = 1.5 + 2.5*(t-10)/110
		case t < 140:
			g = 0.8
		case t < 280:
			g = 1.2 + 2.8*(t-140)/140
		case t < 300:
			g = 0.5
		case t < 550:
			g = 0.8 + 2.5*(t-300)/250
		}
		if t > 10 && t < 120 {
			g += vibration(t, [2]float64{0.15, 25})
		}
		return g
	})
}

// ShenzhouReentryProfile is the return capsule guided descent peaking near 5.5 g,
// ending with the soft landing rockets.
func ShenzhouReentryProfile(dt float64) (AccelerationProfile, error) {
	return uniformProfile(500, dt, func(t float64) float64 {
		switch {
		case t < 50:
			return 0.5
		case t < 100:
			return 1.5 * (t - 50) / 50
		case t < 200:
			p := (t - 100) / 100
			return 4.5*math.Exp(-(p-0.5)*(p-0.5)/0.08) + 1.0
		case t < 350:
			return 2.0 * (1 - (t-200)/150)
		case t < 480:
			return 1.5
		default:
			return 2.5
		}
	})
}

// VehiclePhase names a reference acceleration profile.
type VehiclePhase struct {
	Vehicle, Phase string
}

func (v VehiclePhase) String() string {
	return v.Vehicle + " " + v.Phase
}

// ReferenceProfile returns the named reference profile sampled every dt.
// Known vehicles are starship (launch, landing), soyuz (launch, reentry,
// ballistic-reentry), shuttle (launch), apollo (reentry), crew-dragon (launch),
// new-shepard (launch) and shenzhou (launch, reentry).
func ReferenceProfile(vp VehiclePhase, dt float64) (AccelerationProfile, error) {
	switch strings.ToLower(vp.Vehicle) + "/" + strings.ToLower(vp.Phase) {
	case "starship/launch":
		return StarshipLaunchProfile(180, dt)
	case "starship/landing":
		return StarshipLandingProfile(30, dt)
	case "soyuz/launch":
		return SoyuzLaunchProfile(dt)
	case "soyuz/reentry":
		return SoyuzReentryProfile(false, dt)
	case "soyuz/ballistic-reentry":
		return SoyuzReentryProfile(true, dt)
	case "shuttle/launch":
		return ShuttleLaunchProfile(dt)
	case "apollo/reentry":
		return ApolloReentryProfile(dt)
	case "crew-dragon/launch":
		return CrewDragonLaunchProfile(dt)
	case "new-shepard/launch":
		return NewShepardLaunchProfile(dt)
	case "shenzhou/launch":
		return ShenzhouLaunchProfile(dt)
	case "shenzhou/reentry":
		return ShenzhouReentryProfile(dt)
	}
	return AccelerationProfile{}, invalidf("unknown reference profile %q", vp)
}

// ReferenceProfiles lists the profiles ReferenceProfile knows.
var ReferenceProfiles = []VehiclePhase{
	{"starship", "launch"}, {"starship", "landing"},
	{"soyuz", "launch"}, {"soyuz", "reentry"}, {"soyuz", "ballistic-reentry"},
	{"shuttle", "launch"}, {"apollo", "reentry"}, {"crew-dragon", "launch"},
	{"new-shepard", "launch"}, {"shenzhou", "launch"}, {"shenzhou", "reentry"},
}

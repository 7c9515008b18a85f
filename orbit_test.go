package rocket

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestOrbitRV(t *testing.T) {
	// Vallado, example 2-6.
	p := 11067.790e3
	e := 0.83285
	a := p / (1 - e*e)
	o, err := NewOrbitElements(a, e, 87.87, 227.89, 53.38, 92.335, Earth)
	if err != nil {
		t.Fatal(err)
	}
	R, V, err := o.RV()
	if err != nil {
		t.Fatal(err)
	}
	if !vectorsEqual(R, []float64{6525.344e3, 6861.535e3, 6449.125e3}) {
		t.Fatalf("R=%+v", R)
	}
	if !vectorsEqual(V, []float64{4902.276, 5533.124, -1975.709}) {
		t.Fatalf("V=%+v", V)
	}
	r, _ := o.RNorm()
	v, _ := o.VNorm()
	if !scalar.EqualWithinRel(r, norm(R), 1e-9) || !scalar.EqualWithinRel(v, norm(V), 1e-9) {
		t.Fatalf("norms disagree: %f != %f or %f != %f", r, norm(R), v, norm(V))
	}
	if ξ := v*v/2 - Earth.GM()/r; !scalar.EqualWithinRel(ξ, o.Energyξ(), 1e-9) {
		t.Fatalf("energy %f != %f", ξ, o.Energyξ())
	}
}

func TestOrbitRV2COE(t *testing.T) {
	for _, c := range []struct{ a, e, i, Ω, ω, ν float64 }{
		{7000e3, 0.01, 51.6, 30, 45, 60},
		{26560e3, 0.7, 63.4, 270, 270, 10},
		{42164e3, 0, 10, 80, 0, 120},
		{7000e3, 0.1, 0, 0, 45, 200},
		{-20000e3, 1.4, 30, 100, 20, 40},
		{-20000e3, 2.5, 120, 200, 300, 330},
	} {
		o, err := NewOrbitElements(c.a, c.e, c.i, c.Ω, c.ω, c.ν, Earth)
		if err != nil {
			t.Fatalf("%+v: %s", c, err)
		}
		R, V, err := o.RV()
		if err != nil {
			t.Fatal(err)
		}
		o1, err := NewOrbitFromRV(R, V, Earth)
		if err != nil {
			t.Fatal(err)
		}
		if ok, err := o.StrictlyEquals(*o1); !ok {
			t.Fatalf("%s\n%s\n%s", o, o1, err)
		}
		if o.Type() != o1.Type() {
			t.Fatalf("type changed from %s to %s", o.Type(), o1.Type())
		}
	}
}

func TestOrbitInvariants(t *testing.T) {
	if _, err := NewOrbitElements(-7000e3, 0.1, 0, 0, 0, 0, Earth); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatal("negative a accepted for an ellipse")
	}
	if _, err := NewOrbitElements(7000e3, 1.5, 0, 0, 0, 0, Earth); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatal("positive a accepted for a hyperbola")
	}
	if _, err := NewOrbitElements(7000e3, 1, 0, 0, 0, 0, Earth); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatal("parabola accepted")
	}
	if _, err := NewOrbitElements(7000e3, -0.1, 0, 0, 0, 0, Earth); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatal("negative eccentricity accepted")
	}
	if _, err := NewOrbitElements(-7000e3, 1.5, 0, 0, 0, 170, Earth); !errors.Is(err, ErrOutOfDomain) {
		t.Fatal("true anomaly beyond the asymptote accepted")
	}
	o, _ := NewOrbitElements(-7000e3, 1.5, 0, 0, 0, 0, Earth)
	if !math.IsInf(o.Apoapsis(), 1) {
		t.Fatal("hyperbolic apoapsis should be infinite")
	}
	if !scalar.EqualWithinRel(o.Periapsis(), 3500e3, 1e-12) {
		t.Fatalf("periapsis %f", o.Periapsis())
	}
	if _, err := o.Period(); !errors.Is(err, ErrUndefinedResult) {
		t.Fatal("hyperbolic period must be undefined")
	}
	if o.Energyξ() <= 0 {
		t.Fatal("hyperbolic energy must be positive")
	}
}

func TestOrbitPropagate(t *testing.T) {
	o, _ := NewOrbitElements(8000e3, 0.2, 28.5, 10, 20, 30, Earth)
	P, err := o.Period()
	if err != nil {
		t.Fatal(err)
	}
	full, err := o.Propagate(P)
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := o.StrictlyEquals(*full); !ok {
		t.Fatalf("one period later: %s", err)
	}
	half, _ := o.Propagate(P / 2)
	if ok, _ := o.StrictlyEquals(*half); ok {
		t.Fatal("half a period later the true anomaly should differ")
	}
	// The radius must follow the conic equation at all times.
	for dt := 0.0; dt < P; dt += P / 20 {
		next, err := o.Propagate(dt)
		if err != nil {
			t.Fatal(err)
		}
		r, _ := next.RNorm()
		if r < o.Periapsis()-1 || r > o.Apoapsis()+1 {
			t.Fatalf("radius %f outside [%f, %f]", r, o.Periapsis(), o.Apoapsis())
		}
	}
	hyp, _ := NewOrbitElements(-20000e3, 1.5, 10, 0, 0, 0, Earth)
	out, err := hyp.Propagate(3600)
	if err != nil {
		t.Fatal(err)
	}
	r0, _ := hyp.RNorm()
	r1, _ := out.RNorm()
	if r1 <= r0 {
		t.Fatal("a hyperbolic orbit leaving periapsis must climb")
	}
}

func TestRadii2ae(t *testing.T) {
	a, e, err := Radii2ae(Earth.Radius+35786e3, Earth.Radius+250e3)
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(a, 24396137, 1) || !scalar.EqualWithinAbs(e, 0.728312, 1e-5) {
		t.Fatalf("a=%f e=%f", a, e)
	}
	if _, _, err := Radii2ae(1, 2); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatal("inverted radii accepted")
	}
}

package rocket

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestCross(t *testing.T) {
	i := []float64{1, 0, 0}
	j := []float64{0, 1, 0}
	k := []float64{0, 0, 1}
	if !vectorsEqual(cross(i, j), k) {
		t.Fatal("i x j != k")
	}
	if !vectorsEqual(cross(j, k), i) {
		t.Fatal("j x k != i")
	}
	if !vectorsEqual(cross([]float64{2, 3, 4}, []float64{5, 6, 7}), []float64{-3, 6, -3}) {
		t.Fatal("cross fail")
	}
	// Vallado, example 2-5.
	if !vectorsEqual(cross([]float64{6524.834, 6862.875, 6448.296}, []float64{4.901327, 5.533756, -1.976341}), []float64{-4.924667792015100e4, 4.450050424118601e4, 0.246964476137900e4}) {
		t.Fatal("cross fail")
	}
}

func TestUnit(t *testing.T) {
	if !vectorsEqual(unit([]float64{0, 0, 0}), []float64{0, 0, 0}) {
		t.Fatal("unit of null vector should be null")
	}
	u := unit([]float64{3, 4, 12})
	if !scalar.EqualWithinAbs(norm(u), 1, 1e-12) {
		t.Fatalf("|u| = %f", norm(u))
	}
	if !vectorsEqual(u, []float64{3. / 13, 4. / 13, 12. / 13}) {
		t.Fatalf("u = %+v", u)
	}
}

func TestAngles(t *testing.T) {
	for _, deg := range []float64{0, 30, 60, 90, 120, 150, 210, 359.5} {
		if ok, err := anglesEqual(Deg2rad(deg), deg*math.Pi/180); !ok {
			t.Fatalf("Deg2rad(%f): %s", deg, err)
		}
		if !scalar.EqualWithinAbs(Rad2deg(Deg2rad(deg)), deg, 1e-9) {
			t.Fatalf("round trip of %f gave %f", deg, Rad2deg(Deg2rad(deg)))
		}
	}
	if !scalar.EqualWithinAbs(Rad2deg(Deg2rad(-359.)), 1, 1e-9) {
		t.Fatal("incorrect conversion for -359")
	}
	if !scalar.EqualWithinAbs(Rad2deg(Deg2rad(-180.)), 180, 1e-9) {
		t.Fatal("incorrect conversion for -180")
	}
}

func TestWrap(t *testing.T) {
	for _, c := range []struct{ in, exp2π, expπ float64 }{
		{0, 0, 0},
		{-math.Pi / 2, 3 * math.Pi / 2, -math.Pi / 2},
		{5 * math.Pi / 2, math.Pi / 2, math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2, math.Pi / 2},
		{3 * math.Pi / 2, 3 * math.Pi / 2, -math.Pi / 2},
	} {
		if got := wrap2π(c.in); !scalar.EqualWithinAbs(got, c.exp2π, 1e-12) {
			t.Fatalf("wrap2π(%f) = %f, expected %f", c.in, got, c.exp2π)
		}
		if got := wrapπ(c.in); !scalar.EqualWithinAbs(got, c.expπ, 1e-12) {
			t.Fatalf("wrapπ(%f) = %f, expected %f", c.in, got, c.expπ)
		}
	}
}

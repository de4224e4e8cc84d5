// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.


package kernel

import (
	"math"
	"testing"
)

func TestInterpolateDividedDifferenceLinear(t *testing.T) {
	points:=[]Point{{X:0, Y:10}, {X:1, Y:20}}
	got:=InterpolateDividedDifference(points, 0.0)
	if got!=10 { t.Errorf("p(0)=%f; want 10", got) }
	got=InterpolateDividedDifference(points, 1.0)
	if got!=20 { t.Errorf("p(1)=%f; want 20", got) }
	got=InterpolateDividedDifference(points, 0.5)
	if got!=15 { t.Errorf("p(0.5)=%f; want 15", got) }
}

func TestInterpolateDividedDifferenceQuadratic(t *testing.T) {
	// samples of y=x^2 must be reproduced exactly by a second order polynomial
	points:=[]Point{{X:0, Y:0}, {X:2, Y:4}, {X:4, Y:16}}
	for _,x:=range []float64{0, 1, 2, 3, 4} {
		got:=InterpolateDividedDifference(points, x)
		if math.Abs(got-x*x)>1e-9 { t.Errorf("p(%f)=%f; want %f", x, got, x*x) }
	}
}

func TestInterpolateDividedDifferenceCoincidentX(t *testing.T) {
	// coincident sample positions must not fault, the difference is defined as zero
	points:=[]Point{{X:1, Y:100}, {X:1, Y:200}}
	got:=InterpolateDividedDifference(points, 1.0)
	if got!=100 { t.Errorf("p(1)=%f; want 100", got) }
}

func TestInterpolateDividedDifferenceClamped(t *testing.T) {
	points:=[]Point{{X:0, Y:0}, {X:1, Y:255}}
	got:=InterpolateDividedDifference(points, 2.0)  // extrapolates to 510 before clamping
	if got!=255 { t.Errorf("p(2)=%f; want 255", got) }
	got=InterpolateDividedDifference(points, -1.0)
	if got!=0 { t.Errorf("p(-1)=%f; want 0", got) }
}

func TestBlendSharp(t *testing.T) {
	if got:=BlendSharp(100, 200, 0); got!=140 { t.Errorf("blend(0)=%f; want 140", got) }      // t'=0.4
	if got:=BlendSharp(100, 200, 0.5); got!=200 { t.Errorf("blend(0.5)=%f; want 200", got) }  // t'=1.0
	if got:=BlendSharp(100, 200, 0.75); got!=175 { t.Errorf("blend(0.75)=%f; want 175", got) }
	if got:=BlendSharp(100, 200, 1); got!=200 { t.Errorf("blend(1)=%f; want 200", got) }
}

func TestGaussianDensity(t *testing.T) {
	got:=GaussianDensity(0, 1)
	want:=1/math.Sqrt(2*math.Pi)
	if math.Abs(got-want)>1e-12 { t.Errorf("density(0,1)=%f; want %f", got, want) }
	if GaussianDensity(3,1)>=GaussianDensity(0,1) { t.Errorf("density must decay away from the mean") }
}

func TestGaussian1DNormalized(t *testing.T) {
	for _,radius:=range []int{0, 1, 2, 3, 5, 10, 25} {
		for _,sigma:=range []float64{0.5, 1, 1.5, 2.5, 12.5} {
			k:=Gaussian1D(radius, sigma)
			if len(k)!=2*radius+1 { t.Errorf("len(kernel)=%d; want %d", len(k), 2*radius+1) }
			sum:=0.0
			for _,w:=range k { sum+=w }
			if math.Abs(sum-1)>1e-6 { t.Errorf("kernel sum=%f for radius %d sigma %f; want 1", sum, radius, sigma) }
		}
	}
}

func TestGaussian1DSymmetric(t *testing.T) {
	k:=Gaussian1D(4, 2)
	for i:=0; i<len(k)/2; i++ {
		if math.Abs(k[i]-k[len(k)-1-i])>1e-12 { t.Errorf("kernel[%d]=%g != kernel[%d]=%g", i, k[i], len(k)-1-i, k[len(k)-1-i]) }
	}
	for i:=1; i<=len(k)/2; i++ {
		if k[i]<k[i-1] { t.Errorf("kernel must increase toward the center, kernel[%d]=%g < kernel[%d]=%g", i, k[i], i-1, k[i-1]) }
	}
}

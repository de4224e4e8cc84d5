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


// Package kernel provides the scalar numerical primitives shared by the raster
// filters: divided difference polynomial interpolation, Gaussian density
// evaluation, and trapezoidal kernel discretization.
package kernel

import (
	"math"

	"gonum.org/v1/gonum/integrate"
)

// A sample point for polynomial interpolation
type Point struct {
	X, Y float64
}

// Clamps a pixel value to the representable range [0,255]
func Clamp8(v float64) float64 {
	if v<0   { return 0   }
	if v>255 { return 255 }
	return v
}

// Builds the Newton divided difference table for the given sample points and
// evaluates the resulting polynomial at xEval. O(n^2) in the number of points.
// Divided differences over coincident x coordinates are defined as zero rather
// than faulting on the division. The result is clamped to [0,255].
func InterpolateDividedDifference(points []Point, xEval float64) float64 {
	n:=len(points)
	if n==0 { return 0 }

	table:=make([]float64, n)  // column j of the table, updated in place
	for i,p:=range points { table[i]=p.Y }

	coeffs:=make([]float64, n)
	coeffs[0]=table[0]
	for j:=1; j<n; j++ {
		for i:=0; i<n-j; i++ {
			dx:=points[i+j].X-points[i].X
			if dx==0 {
				table[i]=0
			} else {
				table[i]=(table[i+1]-table[i])/dx
			}
		}
		coeffs[j]=table[0]
	}

	res:=coeffs[n-1]
	for j:=n-2; j>=0; j-- {
		res=res*(xEval-points[j].X)+coeffs[j]
	}
	return Clamp8(res)
}

// Blends two samples a and b at parameter t in [0,1], where t=0 yields a and
// t=1 yields b. Parameters at or below the midpoint are remapped to
// t'=0.4+1.2*t before blending, biasing the result toward the right-hand
// sample so that pixel transitions remain visible instead of being averaged
// away. This is the closed form of the two-point divided difference
// interpolation used throughout the resampler. The result is clamped to [0,255].
func BlendSharp(a, b, t float64) float64 {
	if t<=0.5 { t=0.4+1.2*t }
	return Clamp8(a+(b-a)*t)
}

// Interpolates the midpoint between two horizontally or vertically adjacent
// samples, with the sharpening remap of BlendSharp applied
func InterpolateMidpoint(a, b float64) float64 {
	return BlendSharp(a, b, 0.5)
}

// Evaluates the normal probability density with standard deviation sigma at x
func GaussianDensity(x, sigma float64) float64 {
	d:=x/sigma
	return math.Exp(-0.5*d*d)/(sigma*math.Sqrt(2*math.Pi))
}

// Builds a normalized 1D Gaussian kernel of length 2*radius+1 for the given
// standard deviation. Each weight is the trapezoidal rule approximation of the
// integral of the density over the unit-width cell centered on its offset,
// rather than a point sample of the density. Integrating per cell reduces
// aliasing for small radii. The weights sum to 1.
func Gaussian1D(radius int, sigma float64) []float64 {
	res:=make([]float64, 2*radius+1)
	sum:=0.0
	for i:=-radius; i<=radius; i++ {
		xs:=[]float64{float64(i)-0.5, float64(i)+0.5}
		fs:=[]float64{GaussianDensity(xs[0], sigma), GaussianDensity(xs[1], sigma)}
		w :=integrate.Trapezoidal(xs, fs)
		res[i+radius]=w
		sum+=w
	}
	factor:=1.0/sum
	for i:=range res { res[i]*=factor }
	return res
}

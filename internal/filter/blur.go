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


package filter

import (
	"github.com/mlnoga/rasterfilt/internal/kernel"
	"github.com/mlnoga/rasterfilt/internal/raster"
)

// Largest radius for which the direct 2D convolution beats the separable two-pass
const directBlurMaxRadius = 2

// Applies a Gaussian blur of the given radius. Radii up to 2 run a direct 2D
// convolution, as the tiny kernel makes the separable machinery pointless.
// Larger radii build a trapezoidally integrated 1D kernel with sigma=radius/2
// and run two sequential 1D convolutions over full precision planes, clamping
// back to 8 bit only after both passes. Borders replicate the edge pixel.
func Blur(src *raster.Image, radius int, c *Context) *raster.Image {
	if radius<=0 { return src.Clone() }
	if radius<=directBlurMaxRadius {
		return blurDirect(src, radius, c)
	}
	return blurWithKernel(src, kernel.Gaussian1D(radius, float64(radius)/2.0), c)
}

// Direct small-radius 2D Gaussian convolution, borders clamped
func blurDirect(src *raster.Image, radius int, c *Context) *raster.Image {
	k1:=kernel.Gaussian1D(radius, float64(radius)/2.0)
	size:=2*radius+1
	weights:=make([]float64, size*size)   // outer product of the 1D kernel, sums to 1
	for dy:=0; dy<size; dy++ {
		for dx:=0; dx<size; dx++ {
			weights[dy*size+dx]=k1[dy]*k1[dx]
		}
	}

	width, height:=int(src.Width), int(src.Height)
	res:=raster.NewImageLike(src)
	c.forEach(height, func(y int) {
		for x:=0; x<width; x++ {
			d:=(y*width+x)*raster.Channels
			for ch:=0; ch<raster.Channels; ch++ {
				sum:=0.0
				for dy:=-radius; dy<=radius; dy++ {
					y1:=clampInt(y+dy, 0, height-1)
					for dx:=-radius; dx<=radius; dx++ {
						x1:=clampInt(x+dx, 0, width-1)
						sum+=weights[(dy+radius)*size+dx+radius]*float64(src.Pix[(y1*width+x1)*raster.Channels+ch])
					}
				}
				res.Pix[d+ch]=uint8(kernel.Clamp8(sum)+0.5)
			}
		}
	})
	return res
}

// Separable blur with an arbitrary normalized 1D kernel: extracts each channel
// into a float32 plane, convolves horizontally then vertically, and converts
// back to 8 bit with clamping after the second pass
func blurWithKernel(src *raster.Image, k []float64, c *Context) *raster.Image {
	width:=int(src.Width)
	n:=src.Pixels()
	res:=raster.NewImageLike(src)
	if n==0 || width==0 { return res }

	kern:=make([]float32, len(k))
	for i,w:=range k { kern[i]=float32(w) }

	plane:=getFloat32Array(n)
	tmp  :=getFloat32Array(n)
	defer putFloat32Array(plane)
	defer putFloat32Array(tmp)

	for ch:=0; ch<raster.Channels; ch++ {
		for i:=0; i<n; i++ { plane[i]=float32(src.Pix[i*raster.Channels+ch]) }
		convolve1DX(tmp, plane, width, kern, c)
		convolve1DY(plane, tmp, width, kern, c)
		for i:=0; i<n; i++ {
			res.Pix[i*raster.Channels+ch]=uint8(kernel.Clamp8(float64(plane[i]))+0.5)
		}
	}
	return res
}

// Convolves the 2D plane given by data and width with the 1D kernel along the
// x axis, storing results in res. Out of bounds reads clamp to the border
// pixel. Rows are independent and processed in parallel.
func convolve1DX(res, data []float32, width int, kernel []float32, c *Context) {
	height:=len(data)/width
	k:=len(kernel)/2
	c.forEach(height, func(y int) {
		row:=y*width
		for x:=0; x<width; x++ {
			sum:=float32(0)
			for i:=-k; i<=k; i++ {
				x1:=clampInt(x+i, 0, width-1)
				sum+=data[row+x1]*kernel[i+k]
			}
			res[row+x]=sum
		}
	})
}

// Convolves the 2D plane given by data and width with the 1D kernel along the
// y axis, storing results in res. Out of bounds reads clamp to the border
// pixel. Output rows are independent and processed in parallel.
func convolve1DY(res, data []float32, width int, kernel []float32, c *Context) {
	height:=len(data)/width
	k:=len(kernel)/2
	c.forEach(height, func(y int) {
		for x:=0; x<width; x++ {
			sum:=float32(0)
			for i:=-k; i<=k; i++ {
				y1:=clampInt(y+i, 0, height-1)
				sum+=data[y1*width+x]*kernel[i+k]
			}
			res[y*width+x]=sum
		}
	})
}

func clampInt(v, lo, hi int) int {
	if v<lo { return lo }
	if v>hi { return hi }
	return v
}

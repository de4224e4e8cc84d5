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

// Contrast threshold for treating a 2x2 source block as an edge during
// downscaling. Unrelated to the denoiser edgeThreshold parameter, which
// controls range weighting strength; the two must not be unified.
const downscaleEdgeThreshold = 30

// Weights for edge blocks: the sample furthest from the block mean dominates
const (
	downscaleDominantWeight = 0.55
	downscaleMinorWeight    = 0.15
)

// Halves the dimensions of the raster (floor division, minimum 1).
// Smooth 2x2 blocks are reduced with a divided difference blend; high contrast
// blocks give dominant weight to the sample deviating most from the block
// mean, which keeps edges from smearing. Never faults; degenerate inputs
// degrade to the minimal valid output.
func Downscale(src *raster.Image, c *Context) *raster.Image {
	outW:=src.Width/2
	outH:=src.Height/2
	if src.Width<1 || src.Height<1 {
		return raster.NewImage(outW, outH)   // no source samples to draw from
	}
	if outW<1 { outW=1 }
	if outH<1 { outH=1 }
	res:=raster.NewImage(outW, outH)

	c.forEach(int(outH), func(j int) {
		d:=j*int(outW)*raster.Channels
		for i:=int32(0); i<outW; i++ {
			x, y:=2*i, 2*int32(j)
			x1, y1:=x+1, y+1
			if x  >src.Width-1  { x  =src.Width-1  }
			if x1 >src.Width-1  { x1 =src.Width-1  }
			if y  >src.Height-1 { y  =src.Height-1 }
			if y1 >src.Height-1 { y1 =src.Height-1 }
			p00:=(int(y )*int(src.Width)+int(x ))*raster.Channels
			p10:=(int(y )*int(src.Width)+int(x1))*raster.Channels
			p01:=(int(y1)*int(src.Width)+int(x ))*raster.Channels
			p11:=(int(y1)*int(src.Width)+int(x1))*raster.Channels

			for ch:=0; ch<raster.Channels; ch++ {
				f00:=float64(src.Pix[p00+ch])
				f10:=float64(src.Pix[p10+ch])
				f01:=float64(src.Pix[p01+ch])
				f11:=float64(src.Pix[p11+ch])
				res.Pix[d+ch]=uint8(downscaleBlock(f00, f10, f01, f11)+0.5)
			}
			d+=raster.Channels
		}
	})
	return res
}

// Reduces one 2x2 block of samples for a single channel to its output value
func downscaleBlock(f00, f10, f01, f11 float64) float64 {
	min, max:=f00, f00
	for _,f:=range [3]float64{f10, f01, f11} {
		if f<min { min=f }
		if f>max { max=f }
	}

	if max-min>downscaleEdgeThreshold {
		// edge block: dominant weight to the sample furthest from the mean
		mean:=(f00+f10+f01+f11)*0.25
		dominant, maxDev:=f00, abs64(f00-mean)
		for _,f:=range [3]float64{f10, f01, f11} {
			if dev:=abs64(f-mean); dev>maxDev { dominant, maxDev=f, dev }
		}
		sum:=downscaleDominantWeight*dominant
		for _,f:=range [4]float64{f00, f10, f01, f11} {
			if f!=dominant {
				sum+=downscaleMinorWeight*f
			} else {
				dominant=-1  // count the dominant sample once only
			}
		}
		return kernel.Clamp8(sum)
	}

	// smooth block: bilinear-like blend derived from divided differences
	return kernel.Clamp8(f00 + 0.5*((f10-f00)+(f01-f00)) + 0.25*((f11-f10)-(f01-f00)))
}

func abs64(v float64) float64 {
	if v<0 { return -v }
	return v
}

// Doubles the dimensions of the raster with two separable interpolation
// passes: pass 1 fills the columns between horizontally adjacent source
// pixels with the sharpened midpoint blend, pass 2 repeats the interpolation
// vertically on the intermediate result. Source pixels land on even output
// coordinates unchanged. Rows of pass 1 and columns of pass 2 are independent
// and processed in parallel.
func Upscale(src *raster.Image, c *Context) *raster.Image {
	outW:=2*src.Width
	outH:=2*src.Height

	// pass 1: horizontal, src.Height rows of outW pixels
	mid:=raster.NewImage(outW, src.Height)
	c.forEach(int(src.Height), func(j int) {
		s:=j*int(src.Width)*raster.Channels
		d:=j*int(outW)*raster.Channels
		for i:=int32(0); i<src.Width; i++ {
			sr:=s+int(i)*raster.Channels
			sn:=sr
			if i<src.Width-1 { sn=sr+raster.Channels }
			dl:=d+int(2*i)*raster.Channels
			for ch:=0; ch<raster.Channels; ch++ {
				left:=src.Pix[sr+ch]
				mid.Pix[dl+ch]=left
				mid.Pix[dl+raster.Channels+ch]=uint8(kernel.InterpolateMidpoint(float64(left), float64(src.Pix[sn+ch]))+0.5)
			}
		}
	})

	// pass 2: vertical, outW independent columns
	res:=raster.NewImage(outW, outH)
	c.forEach(int(outW), func(i int) {
		for j:=int32(0); j<src.Height; j++ {
			jn:=j
			if j<src.Height-1 { jn=j+1 }
			s :=(int(j )*int(outW)+i)*raster.Channels
			sn:=(int(jn)*int(outW)+i)*raster.Channels
			d :=(int(2*j)*int(outW)+i)*raster.Channels
			dn:=d+int(outW)*raster.Channels
			for ch:=0; ch<raster.Channels; ch++ {
				upper:=mid.Pix[s+ch]
				res.Pix[d+ch]=upper
				res.Pix[dn+ch]=uint8(kernel.InterpolateMidpoint(float64(upper), float64(mid.Pix[sn+ch]))+0.5)
			}
		}
	})
	return res
}

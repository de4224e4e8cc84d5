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
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
	"github.com/mlnoga/rasterfilt/internal/kernel"
	"github.com/mlnoga/rasterfilt/internal/raster"
)

const (
	denoiseLargeDimension = 1000       // above this edge length, shrink the filter window
	denoiseTileThreshold  = 1024       // above this edge length, filter tile by tile
	denoiseTileSize       = 512        // edge length of a denoising tile
	denoiseMaxPixels      = 12000000   // above this pixel count, pre-downsample by half
	denoiseSigmaEpsilon   = 1e-6       // stabilizes the range weight denominator
	denoiseWeightEpsilon  = 1e-8       // below this weight sum, keep the original pixel
)

// Applies edge preserving bilateral smoothing. edgeThreshold controls the
// range weighting strength, iterations the number of sequential passes.
// Runs the optimized tiled path first; any fault there is recovered
// internally by switching to the guaranteed safe blur plus median pipeline,
// so Denoise itself never fails.
func Denoise(src *raster.Image, edgeThreshold, iterations int, c *Context) *raster.Image {
	res, err:=denoiseOptimized(src, edgeThreshold, iterations, c)
	if err!=nil {
		fmt.Fprintf(c.Log, "Denoise: optimized path failed (%s), switching to safe fallback\n", err.Error())
		return denoiseFallback(src, edgeThreshold, c)
	}
	return res
}

// The optimized denoising strategy. Images above denoiseMaxPixels are
// downsampled by half with a high quality resampling filter before
// filtering and upsampled back afterwards, trading fidelity for a bounded
// working set. Panics from unexpected shapes or allocations are converted
// into an error so the caller can select the fallback strategy.
func denoiseOptimized(src *raster.Image, edgeThreshold, iterations int, c *Context) (res *raster.Image, err error) {
	defer func() {
		if r:=recover(); r!=nil {
			res, err=nil, fmt.Errorf("%v", r)
		}
	}()
	if src.Pixels()>denoiseMaxPixels {
		half:=resizeCatmullRom(src, src.Width/2, src.Height/2)
		filtered, err:=denoiseCore(half, edgeThreshold, iterations, c)
		if err!=nil { return nil, err }
		return resizeCatmullRom(filtered, src.Width, src.Height), nil
	}
	return denoiseCore(src, edgeThreshold, iterations, c)
}

// Indirection over the untiled pass, replaced in tests to inject faults into
// the optimized strategy
var bilateralPassFunc = bilateralPass

// Runs the requested number of bilateral passes, choosing window size from the
// image dimensions and the tiled pass for large images. The output of pass k
// is the input of pass k+1, without re-normalization in between.
func denoiseCore(src *raster.Image, edgeThreshold, iterations int, c *Context) (*raster.Image, error) {
	spatialSigma:=2.0
	if src.Width>denoiseLargeDimension || src.Height>denoiseLargeDimension {
		spatialSigma=1.5        // bounded window for throughput on large inputs
	}
	radius:=int(math.Round(spatialSigma*1.5))
	if radius<1 { radius=1 }

	grid:=buildSpatialWeights(radius, spatialSigma)
	colorSigma:=float64(edgeThreshold)

	cur:=src
	for i:=0; i<iterations; i++ {
		var err error
		if src.Width>denoiseTileThreshold || src.Height>denoiseTileThreshold {
			cur, err=bilateralTiled(cur, radius, colorSigma, grid, c)
		} else {
			cur, err=bilateralPassFunc(cur, radius, colorSigma, grid, c)
		}
		if err!=nil { return nil, err }
	}
	if cur==src { cur=src.Clone() }   // iterations<=0, still return a fresh buffer
	return cur, nil
}

// Precomputes the square grid of spatial weights of side 2*radius+1 from the
// Euclidean pixel distance to the window center
func buildSpatialWeights(radius int, sigma float64) []float32 {
	size:=2*radius+1
	res:=make([]float32, size*size)
	i:=0
	for dy:=-radius; dy<=radius; dy++ {
		for dx:=-radius; dx<=radius; dx++ {
			res[i]=float32(math.Exp(-0.5*float64(dx*dx+dy*dy)/(sigma*sigma)))
			i++
		}
	}
	return res
}

// Applies one whole-image bilateral pass. Border pixels within radius of any
// edge are copied unfiltered. Rows are independent and processed in parallel;
// a fault in any row worker is returned as an error.
func bilateralPass(src *raster.Image, radius int, colorSigma float64, grid []float32, c *Context) (*raster.Image, error) {
	res:=src.Clone()
	height:=int(src.Height)
	rows:=height-2*radius
	if rows<=0 { return res, nil }
	err:=c.forEachRecover(rows, func(i int) {
		bilateralRow(res, src, radius+i, radius, colorSigma, grid)
	})
	if err!=nil { return nil, err }
	return res, nil
}

// Filters one row of pixels [radius, width-radius) at the given y coordinate
func bilateralRow(res, src *raster.Image, y, radius int, colorSigma float64, grid []float32) {
	width:=int(src.Width)
	sigma2:=colorSigma*colorSigma+denoiseSigmaEpsilon
	for x:=radius; x<width-radius; x++ {
		d:=(y*width+x)*raster.Channels
		for ch:=0; ch<raster.Channels; ch++ {
			center:=float64(src.Pix[d+ch])
			sum, wsum:=0.0, 0.0
			gi:=0
			for dy:=-radius; dy<=radius; dy++ {
				row:=((y+dy)*width+x)*raster.Channels+ch
				for dx:=-radius; dx<=radius; dx++ {
					neighbor:=float64(src.Pix[row+dx*raster.Channels])
					delta:=center-neighbor
					w:=float64(grid[gi])*math.Exp(-0.5*delta*delta/sigma2)
					sum+=w*neighbor
					wsum+=w
					gi++
				}
			}
			if wsum<denoiseWeightEpsilon {
				res.Pix[d+ch]=src.Pix[d+ch]   // vanishing weights, keep the pixel
			} else {
				res.Pix[d+ch]=uint8(kernel.Clamp8(sum/wsum)+0.5)
			}
		}
	}
}

// Applies one bilateral pass tile by tile. Tiles are read with an overlap of
// 2*radius on each side so that every interior pixel sees the same
// neighborhood as in a whole-image pass, and only the non-overlapping tile
// interior is written back, which keeps the result seam free while bounding
// peak memory to one tile per worker. Tiles write disjoint regions and are
// processed concurrently; a fault in any tile worker is returned as an error.
func bilateralTiled(src *raster.Image, radius int, colorSigma float64, grid []float32, c *Context) (*raster.Image, error) {
	res:=src.Clone()
	width, height:=int(src.Width), int(src.Height)
	overlap:=2*radius

	tilesX:=(width +denoiseTileSize-1)/denoiseTileSize
	tilesY:=(height+denoiseTileSize-1)/denoiseTileSize

	// bound concurrent tile buffers by physical memory as well as threads
	maxTiles:=c.MaxThreads
	if c.MemoryMB>0 {
		tileBytes:=2*(denoiseTileSize+2*overlap)*(denoiseTileSize+2*overlap)*raster.Channels
		if memTiles:=c.MemoryMB*1024*1024/tileBytes; memTiles>0 && memTiles<maxTiles {
			maxTiles=memTiles
		}
	}
	tc:=&Context{Log: c.Log, MaxThreads: maxTiles, MemoryMB: c.MemoryMB}

	err:=tc.forEachRecover(tilesX*tilesY, func(t int) {
		tx:=(t%tilesX)*denoiseTileSize
		ty:=(t/tilesX)*denoiseTileSize
		x1:=minInt(tx+denoiseTileSize, width)
		y1:=minInt(ty+denoiseTileSize, height)

		// expanded tile bounds including overlap, clamped to the image
		ex0:=maxInt(tx-overlap, 0)
		ey0:=maxInt(ty-overlap, 0)
		ex1:=minInt(x1+overlap, width)
		ey1:=minInt(y1+overlap, height)

		tile:=cropRect(src, ex0, ey0, ex1, ey1)
		filtered:=tile.Clone()
		tileHeight:=int(tile.Height)
		for y:=radius; y<tileHeight-radius; y++ {
			bilateralRow(filtered, tile, y, radius, colorSigma, grid)
		}
		pasteRect(res, filtered, tx-ex0, ty-ey0, tx, ty, x1-tx, y1-ty)
	})
	if err!=nil { return nil, err }
	return res, nil
}

// Copies the rectangle [x0,x1)x[y0,y1) of src into a new raster
func cropRect(src *raster.Image, x0, y0, x1, y1 int) *raster.Image {
	w, h:=x1-x0, y1-y0
	res:=raster.NewImage(int32(w), int32(h))
	for y:=0; y<h; y++ {
		s:=((y0+y)*int(src.Width)+x0)*raster.Channels
		d:=y*w*raster.Channels
		copy(res.Pix[d:d+w*raster.Channels], src.Pix[s:s+w*raster.Channels])
	}
	return res
}

// Copies a w x h rectangle from src at (sx,sy) into dst at (dx,dy)
func pasteRect(dst, src *raster.Image, sx, sy, dx, dy, w, h int) {
	for y:=0; y<h; y++ {
		s:=((sy+y)*int(src.Width)+sx)*raster.Channels
		d:=((dy+y)*int(dst.Width)+dx)*raster.Channels
		copy(dst.Pix[d:d+w*raster.Channels], src.Pix[s:s+w*raster.Channels])
	}
}

// Resamples the raster to the given dimensions with the Catmull-Rom kernel,
// the high quality scaler used around the large-image denoising path
func resizeCatmullRom(src *raster.Image, width, height int32) *raster.Image {
	srcRGBA:=src.ToRGBA()
	dst:=image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), srcRGBA, srcRGBA.Bounds(), xdraw.Src, nil)
	return raster.FromImage(dst)
}

// The guaranteed safe denoising pipeline: a small Gaussian blur composed with
// a 3x3 median filter. For high edge thresholds the result is blended back
// toward the original, preserving the detail the caller asked to keep even
// though the accelerated path failed.
func denoiseFallback(src *raster.Image, edgeThreshold int, c *Context) *raster.Image {
	blurred:=blurWithKernel(src, kernel.Gaussian1D(2, 1.5), c)

	width:=int(src.Width)
	n:=src.Pixels()
	res:=raster.NewImageLike(src)
	if n==0 || width==0 { return res }

	plane:=getFloat32Array(n)
	tmp  :=getFloat32Array(n)
	defer putFloat32Array(plane)
	defer putFloat32Array(tmp)
	for ch:=0; ch<raster.Channels; ch++ {
		for i:=0; i<n; i++ { plane[i]=float32(blurred.Pix[i*raster.Channels+ch]) }
		medianFilter3x3(tmp, plane, width)
		for i:=0; i<n; i++ {
			res.Pix[i*raster.Channels+ch]=uint8(kernel.Clamp8(float64(tmp[i]))+0.5)
		}
	}

	if edgeThreshold>50 {
		blend:=math.Min(0.8, float64(edgeThreshold)/100)
		for i,p:=range res.Pix {
			res.Pix[i]=uint8(blend*float64(src.Pix[i])+(1-blend)*float64(p)+0.5)
		}
	}
	return res
}

func minInt(a, b int) int { if a<b { return a }; return b }
func maxInt(a, b int) int { if a>b { return a }; return b }

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


package raster

import (
	"fmt"
	"image"
	"image/color"
)

// Number of channels per pixel. Rasters are always dense 8-bit RGB
const Channels = 3

// A dense 8-bit RGB raster image. Pixels are stored row-major and channel-interleaved,
// i.e. Pix[(y*Width+x)*Channels+c] holds channel c of the pixel at (x,y).
type Image struct {
	Width  int32     // Image width in pixels
	Height int32     // Image height in pixels
	Pix    []uint8   // The pixel data, of length Width*Height*Channels
}

// Reported when a pixel buffer is inconsistent with its declared dimensions
type InvalidBufferError struct {
	Width, Height int32
	Len           int
}

func (e *InvalidBufferError) Error() string {
	return fmt.Sprintf("invalid pixel buffer: %dx%d needs %d bytes, have %d",
		e.Width, e.Height, int(e.Width)*int(e.Height)*Channels, e.Len)
}

// Creates a raster of the given dimensions with a freshly allocated pixel buffer
func NewImage(width, height int32) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, int(width)*int(height)*Channels),
	}
}

// Creates an empty raster with the same dimensions as the given one
func NewImageLike(f *Image) *Image {
	return NewImage(f.Width, f.Height)
}

// Returns the number of pixels in the raster
func (f *Image) Pixels() int { return int(f.Width)*int(f.Height) }

// Checks that the pixel buffer is consistent with the declared dimensions
func (f *Image) Check() error {
	if f==nil || f.Width<0 || f.Height<0 || len(f.Pix)!=int(f.Width)*int(f.Height)*Channels {
		if f==nil { return &InvalidBufferError{} }
		return &InvalidBufferError{Width: f.Width, Height: f.Height, Len: len(f.Pix)}
	}
	return nil
}

// Returns a deep copy of the raster
func (f *Image) Clone() *Image {
	res:=NewImageLike(f)
	copy(res.Pix, f.Pix)
	return res
}

// Converts an arbitrary decoded image into a dense RGB raster, dropping alpha
func FromImage(src image.Image) *Image {
	bounds:=src.Bounds()
	width, height:=int32(bounds.Dx()), int32(bounds.Dy())
	res:=NewImage(width, height)

	if rgba,ok:=src.(*image.RGBA); ok {      // fast path for the common decode result
		for y:=0; y<int(height); y++ {
			s:=rgba.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			d:=y*int(width)*Channels
			for x:=0; x<int(width); x++ {
				res.Pix[d  ]=rgba.Pix[s  ]
				res.Pix[d+1]=rgba.Pix[s+1]
				res.Pix[d+2]=rgba.Pix[s+2]
				s+=4
				d+=Channels
			}
		}
		return res
	}

	d:=0
	for y:=bounds.Min.Y; y<bounds.Max.Y; y++ {
		for x:=bounds.Min.X; x<bounds.Max.X; x++ {
			r,g,b,_:=src.At(x,y).RGBA()
			res.Pix[d  ]=uint8(r>>8)
			res.Pix[d+1]=uint8(g>>8)
			res.Pix[d+2]=uint8(b>>8)
			d+=Channels
		}
	}
	return res
}

// Converts the raster into a stdlib RGBA image with fully opaque alpha,
// for handing off to encoders and resampling drawers
func (f *Image) ToRGBA() *image.RGBA {
	res:=image.NewRGBA(image.Rect(0, 0, int(f.Width), int(f.Height)))
	s, d:=0, 0
	for y:=int32(0); y<f.Height; y++ {
		for x:=int32(0); x<f.Width; x++ {
			res.Pix[d  ]=f.Pix[s  ]
			res.Pix[d+1]=f.Pix[s+1]
			res.Pix[d+2]=f.Pix[s+2]
			res.Pix[d+3]=255
			s+=Channels
			d+=4
		}
	}
	return res
}

// Returns the pixel at (x,y) as a color, mainly for tests and debug output
func (f *Image) At(x, y int32) color.RGBA {
	i:=(int(y)*int(f.Width)+int(x))*Channels
	return color.RGBA{R: f.Pix[i], G: f.Pix[i+1], B: f.Pix[i+2], A: 255}
}

// Sets the pixel at (x,y)
func (f *Image) Set(x, y int32, r, g, b uint8) {
	i:=(int(y)*int(f.Width)+int(x))*Channels
	f.Pix[i], f.Pix[i+1], f.Pix[i+2]=r, g, b
}

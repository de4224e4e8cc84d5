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
	"bytes"
	"path/filepath"
	"testing"

	"github.com/valyala/fastrand"
)

func noiseImage(width, height int32) *Image {
	res:=NewImage(width, height)
	rng:=fastrand.RNG{}
	rng.Seed(7)
	for i:=range res.Pix {
		res.Pix[i]=uint8(rng.Uint32n(256))
	}
	return res
}

func TestNewImage(t *testing.T) {
	img:=NewImage(5, 3)
	if len(img.Pix)!=5*3*Channels { t.Errorf("len(Pix)=%d; want %d", len(img.Pix), 5*3*Channels) }
	if err:=img.Check(); err!=nil { t.Errorf("fresh image fails check: %s", err.Error()) }
}

func TestCheckRejectsInconsistentBuffer(t *testing.T) {
	img:=&Image{Width: 4, Height: 4, Pix: make([]uint8, 7)}
	if err:=img.Check(); err==nil { t.Errorf("inconsistent buffer passed check") }
	var nilImg *Image
	if err:=nilImg.Check(); err==nil { t.Errorf("nil image passed check") }
}

func TestCloneIsDeep(t *testing.T) {
	img:=noiseImage(6, 6)
	cl:=img.Clone()
	cl.Pix[0]^=0xff
	if img.Pix[0]==cl.Pix[0] { t.Errorf("clone shares pixel storage with original") }
}

func TestRGBARoundTrip(t *testing.T) {
	img:=noiseImage(10, 8)
	back:=FromImage(img.ToRGBA())
	if back.Width!=img.Width || back.Height!=img.Height { t.Errorf("roundtrip=%dx%d; want %dx%d", back.Width, back.Height, img.Width, img.Height) }
	for i,p:=range back.Pix {
		if p!=img.Pix[i] { t.Errorf("pix[%d]=%d; want %d", i, p, img.Pix[i]); break }
	}
}

func TestEncodeDecodePNG(t *testing.T) {
	img:=noiseImage(12, 9)
	buf:=bytes.Buffer{}
	if err:=Encode(&buf, img, "png"); err!=nil { t.Fatalf("encode: %s", err.Error()) }
	back, err:=Decode(&buf)
	if err!=nil { t.Fatalf("decode: %s", err.Error()) }
	if back.Width!=12 || back.Height!=9 { t.Errorf("decoded=%dx%d; want 12x9", back.Width, back.Height) }
	for i,p:=range back.Pix {   // PNG is lossless, payload must survive
		if p!=img.Pix[i] { t.Errorf("pix[%d]=%d; want %d", i, p, img.Pix[i]); break }
	}
}

func TestEncodeRejectsUnknownFormat(t *testing.T) {
	if err:=Encode(&bytes.Buffer{}, NewImage(2, 2), "exr"); err==nil { t.Errorf("unknown format accepted") }
}

func TestSaveLoad(t *testing.T) {
	img:=noiseImage(7, 5)
	for _,ext:=range []string{"png", "bmp", "tif"} {
		fileName:=filepath.Join(t.TempDir(), "test."+ext)
		if err:=Save(img, fileName); err!=nil { t.Fatalf("save %s: %s", ext, err.Error()) }
		back, err:=Load(fileName)
		if err!=nil { t.Fatalf("load %s: %s", ext, err.Error()) }
		if back.Width!=7 || back.Height!=5 { t.Errorf("%s roundtrip=%dx%d; want 7x5", ext, back.Width, back.Height) }
	}
}

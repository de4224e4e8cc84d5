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
	"errors"
	"testing"

	"github.com/mlnoga/rasterfilt/internal/raster"
)

func TestRunDispatch(t *testing.T) {
	c:=testContext()
	img:=noiseImage(16, 16)
	for _,tc:=range []struct{ op string; w, h int32 }{
		{Downscale2x,  8,  8},
		{Upscale2x,   32, 32},
		{DenoiseOp,   16, 16},
		{BlurOp,      16, 16},
	} {
		res, err:=Run(img, tc.op, DefaultParams(), c)
		if err!=nil { t.Errorf("%s: %s", tc.op, err.Error()); continue }
		if res.Width!=tc.w || res.Height!=tc.h { t.Errorf("%s: got %dx%d; want %dx%d", tc.op, res.Width, res.Height, tc.w, tc.h) }
	}
}

func TestRunRejectsUnknownOperation(t *testing.T) {
	_, err:=Run(noiseImage(4, 4), "sharpen", DefaultParams(), testContext())
	var unknownErr *UnknownOperationError
	if !errors.As(err, &unknownErr) { t.Errorf("got %v; want UnknownOperationError", err) }
}

// Out of range parameters are rejected, not clamped
func TestRunRejectsOutOfRangeParams(t *testing.T) {
	c:=testContext()
	img:=noiseImage(4, 4)
	for _,tc:=range []struct{ op string; params Params }{
		{DenoiseOp, Params{EdgeThreshold:   0, Iterations: 1, Radius: 5}},
		{DenoiseOp, Params{EdgeThreshold: 101, Iterations: 1, Radius: 5}},
		{DenoiseOp, Params{EdgeThreshold:  30, Iterations: 0, Radius: 5}},
		{DenoiseOp, Params{EdgeThreshold:  30, Iterations: 4, Radius: 5}},
		{BlurOp,    Params{EdgeThreshold:  30, Iterations: 1, Radius: -1}},
	} {
		_, err:=Run(img, tc.op, tc.params, c)
		var rangeErr *OutOfRangeError
		if !errors.As(err, &rangeErr) { t.Errorf("%s with %+v: got %v; want OutOfRangeError", tc.op, tc.params, err) }
	}
}

func TestRunRejectsInvalidBuffer(t *testing.T) {
	c:=testContext()
	img:=&raster.Image{Width: 8, Height: 8, Pix: make([]uint8, 10)}  // too short
	for _,op:=range []string{Downscale2x, Upscale2x, DenoiseOp, BlurOp} {
		_, err:=Run(img, op, DefaultParams(), c)
		var bufErr *raster.InvalidBufferError
		if !errors.As(err, &bufErr) { t.Errorf("%s: got %v; want InvalidBufferError", op, err) }
	}
}

func TestDefaultParams(t *testing.T) {
	p:=DefaultParams()
	if p.EdgeThreshold!=30 { t.Errorf("default edgeThreshold=%d; want 30", p.EdgeThreshold) }
	if p.Iterations!=1 { t.Errorf("default iterations=%d; want 1", p.Iterations) }
	if p.Radius!=5 { t.Errorf("default radius=%d; want 5", p.Radius) }
}

func TestNewOpBlurAcceptsZeroRadius(t *testing.T) {
	op, err:=NewOpBlur(0)
	if err!=nil || op.Radius!=0 { t.Errorf("NewOpBlur(0)=%v,%v; want valid operator", op, err) }
}

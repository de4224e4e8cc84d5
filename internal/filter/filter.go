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


// Package filter implements the numerical raster filters: an edge aware 2x
// resampler, an edge preserving tiled bilateral denoiser, and a separable
// Gaussian blur with a trapezoidally integrated kernel. Run is the single
// entry point dispatching by operation name.
package filter

import (
	"fmt"

	"github.com/mlnoga/rasterfilt/internal/raster"
)

// The supported filter operations
const (
	Downscale2x = "downscale"
	Upscale2x   = "upscale"
	DenoiseOp   = "denoise"
	BlurOp      = "blur"
)

// Default parameter values, applied when the caller does not override them
const (
	DefaultEdgeThreshold = 30
	DefaultIterations    = 1
	DefaultRadius        = 5
)

// Reported for operation names outside the supported set
type UnknownOperationError struct {
	Operation string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation '%s', expecting one of %s, %s, %s or %s",
		e.Operation, Downscale2x, Upscale2x, DenoiseOp, BlurOp)
}

// Reported when a filter parameter lies outside its documented range.
// Out of range values are rejected, never clamped.
type OutOfRangeError struct {
	Param         string
	Value         int
	Min, Max      int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("parameter %s=%d out of range [%d,%d]", e.Param, e.Value, e.Min, e.Max)
}

// Filter parameters. Each operation reads only its own fields:
// downscale and upscale none, denoise EdgeThreshold and Iterations,
// blur Radius.
type Params struct {
	EdgeThreshold int `json:"edgeThreshold"`  // denoise, range weighting strength in [1,100]
	Iterations    int `json:"iterations"`     // denoise, sequential passes in [1,3]
	Radius        int `json:"radius"`         // blur, kernel radius >= 0
}

// Returns the default parameter set
func DefaultParams() Params {
	return Params{
		EdgeThreshold: DefaultEdgeThreshold,
		Iterations:    DefaultIterations,
		Radius:        DefaultRadius,
	}
}

// A filter operator, ready to apply to a raster. The input raster is read
// only; every operator returns a freshly allocated output raster.
type Operator interface {
	Apply(f *raster.Image, c *Context) (*raster.Image, error)
}

// Halves raster dimensions with edge preserving weighting
type OpDownscale struct{}

func NewOpDownscale() *OpDownscale { return &OpDownscale{} }

func (op *OpDownscale) Apply(f *raster.Image, c *Context) (*raster.Image, error) {
	if err:=f.Check(); err!=nil { return nil, err }
	return Downscale(f, c), nil
}

// Doubles raster dimensions with sharpened midpoint interpolation
type OpUpscale struct{}

func NewOpUpscale() *OpUpscale { return &OpUpscale{} }

func (op *OpUpscale) Apply(f *raster.Image, c *Context) (*raster.Image, error) {
	if err:=f.Check(); err!=nil { return nil, err }
	return Upscale(f, c), nil
}

// Edge preserving bilateral denoising
type OpDenoise struct {
	EdgeThreshold int `json:"edgeThreshold"`
	Iterations    int `json:"iterations"`
}

func NewOpDenoise(edgeThreshold, iterations int) (*OpDenoise, error) {
	if edgeThreshold<1 || edgeThreshold>100 {
		return nil, &OutOfRangeError{Param: "edgeThreshold", Value: edgeThreshold, Min: 1, Max: 100}
	}
	if iterations<1 || iterations>3 {
		return nil, &OutOfRangeError{Param: "iterations", Value: iterations, Min: 1, Max: 3}
	}
	return &OpDenoise{EdgeThreshold: edgeThreshold, Iterations: iterations}, nil
}

func (op *OpDenoise) Apply(f *raster.Image, c *Context) (*raster.Image, error) {
	if err:=f.Check(); err!=nil { return nil, err }
	return Denoise(f, op.EdgeThreshold, op.Iterations, c), nil
}

// Separable Gaussian blur
type OpBlur struct {
	Radius int `json:"radius"`
}

func NewOpBlur(radius int) (*OpBlur, error) {
	if radius<0 {
		return nil, &OutOfRangeError{Param: "radius", Value: radius, Min: 0, Max: 1<<31-1}
	}
	return &OpBlur{Radius: radius}, nil
}

func (op *OpBlur) Apply(f *raster.Image, c *Context) (*raster.Image, error) {
	if err:=f.Check(); err!=nil { return nil, err }
	return Blur(f, op.Radius, c), nil
}

// Creates a validated operator for the given operation name and parameters
func New(operation string, params Params) (Operator, error) {
	switch operation {
	case Downscale2x:
		return NewOpDownscale(), nil
	case Upscale2x:
		return NewOpUpscale(), nil
	case DenoiseOp:
		return NewOpDenoise(params.EdgeThreshold, params.Iterations)
	case BlurOp:
		return NewOpBlur(params.Radius)
	}
	return nil, &UnknownOperationError{Operation: operation}
}

// Runs the named filter operation on the given raster and returns a new
// raster. Parameters are validated before dispatch.
func Run(f *raster.Image, operation string, params Params, c *Context) (*raster.Image, error) {
	op, err:=New(operation, params)
	if err!=nil { return nil, err }
	return op.Apply(f, c)
}

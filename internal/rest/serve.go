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


// Package rest exposes the raster filters over HTTP. It owns upload parsing,
// boundary parameter validation, on-disk result naming and static serving of
// processed files; the filter core never touches any of these.
package rest

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/valyala/fastrand"

	"github.com/mlnoga/rasterfilt/internal/filter"
	"github.com/mlnoga/rasterfilt/internal/raster"
)

// Builds the HTTP router with all endpoints
func NewRouter(publicDir string, c *filter.Context) *gin.Engine {
	r:=gin.Default()
	r.Static("/public", publicDir)
	api:=r.Group("/api")
	{
		v1:=api.Group("/v1")
		{
			v1.GET ("/ping", getPing)
			for _,op:=range []string{filter.Downscale2x, filter.Upscale2x, filter.DenoiseOp, filter.BlurOp} {
				v1.POST("/"+op, postFilter(op, publicDir, c))
			}
		}
	}
	return r
}

// Listens and serves on the given port until failure
func Serve(port int, publicDir string, c *filter.Context) error {
	if err:=os.MkdirAll(publicDir, 0755); err!=nil { return err }
	r:=NewRouter(publicDir, c)
	return r.Run(fmt.Sprintf(":%d", port))
}

func getPing(c *gin.Context) {
	c.JSON(200, gin.H{
		"message": "pong",
	})
}

// Creates the handler for one filter operation. The uploaded image is decoded
// into a raster, the filter runs synchronously, and the result is encoded to
// a uniquely named PNG below the public directory.
func postFilter(operation, publicDir string, c *filter.Context) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		fileHeader, err:=ctx.FormFile("image")
		if err!=nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided."})
			return
		}

		params, err:=parseParams(ctx)
		if err!=nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		f, err:=fileHeader.Open()
		if err!=nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Could not open or read image file.", "message": err.Error()})
			return
		}
		defer f.Close()

		img, err:=raster.Decode(f)
		if err!=nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Could not open or read image file.", "message": err.Error()})
			return
		}

		res, err:=filter.Run(img, operation, params, c)
		if err!=nil {
			var rangeErr *filter.OutOfRangeError
			var unknownErr *filter.UnknownOperationError
			if errors.As(err, &rangeErr) || errors.As(err, &unknownErr) {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Bad Request", "message": err.Error()})
			} else {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Processing failed", "message": err.Error()})
			}
			return
		}

		// unique name to avoid overwriting earlier results
		name:=fmt.Sprintf("processed_%s_%08x.png", operation, fastrand.Uint32())
		if err:=raster.Save(res, filepath.Join(publicDir, name)); err!=nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Processing failed", "message": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"output_url": "/public/"+name})
	}
}

// Reads optional filter parameters from the form data, falling back to the
// documented defaults. Range checks happen in the filter facade; this only
// rejects unparseable values.
func parseParams(ctx *gin.Context) (filter.Params, error) {
	params:=filter.DefaultParams()
	if v:=ctx.PostForm("radius"); v!="" {
		r, err:=strconv.Atoi(v)
		if err!=nil { return params, errors.New("Invalid radius value.") }
		params.Radius=r
	}
	if v:=ctx.PostForm("edgeThreshold"); v!="" {
		e, err:=strconv.Atoi(v)
		if err!=nil { return params, errors.New("Invalid edgeThreshold value.") }
		params.EdgeThreshold=e
	}
	if v:=ctx.PostForm("iterations"); v!="" {
		i, err:=strconv.Atoi(v)
		if err!=nil { return params, errors.New("Invalid iterations value.") }
		params.Iterations=i
	}
	return params, nil
}

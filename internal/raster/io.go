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
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "image/gif"             // decode-only formats registered for image.Decode
	_ "golang.org/x/image/webp"
)

// Decodes an image from the given reader (PNG, JPEG, GIF, BMP, TIFF or WebP)
// and converts it into a dense RGB raster
func Decode(r io.Reader) (*Image, error) {
	src, _, err:=image.Decode(r)
	if err!=nil { return nil, fmt.Errorf("decode image: %w", err) }
	return FromImage(src), nil
}

// Loads an image file and converts it into a dense RGB raster
func Load(fileName string) (*Image, error) {
	f, err:=os.Open(fileName)
	if err!=nil { return nil, err }
	defer f.Close()
	return Decode(f)
}

// Encodes the raster to the given writer in the named format,
// one of "png", "jpg", "jpeg", "bmp", "tif" or "tiff"
func Encode(w io.Writer, f *Image, format string) error {
	if err:=f.Check(); err!=nil { return err }
	switch strings.ToLower(format) {
	case "png":
		return png.Encode(w, f.ToRGBA())
	case "jpg", "jpeg":
		return jpeg.Encode(w, f.ToRGBA(), &jpeg.Options{Quality: 95})
	case "bmp":
		return bmp.Encode(w, f.ToRGBA())
	case "tif", "tiff":
		return tiff.Encode(w, f.ToRGBA(), &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	}
	return fmt.Errorf("unsupported output format '%s'", format)
}

// Saves the raster to a file, choosing the format from the file extension
func Save(f *Image, fileName string) error {
	format:=strings.TrimPrefix(filepath.Ext(fileName), ".")
	w, err:=os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err!=nil { return err }
	defer w.Close()
	return Encode(w, f, format)
}

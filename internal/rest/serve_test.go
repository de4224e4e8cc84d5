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


package rest

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mlnoga/rasterfilt/internal/filter"
	"github.com/mlnoga/rasterfilt/internal/raster"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(t *testing.T) (*gin.Engine, string) {
	dir:=t.TempDir()
	return NewRouter(dir, filter.NewContext(nil, 2)), dir
}

func testPNG(t *testing.T) []byte {
	img:=raster.NewImage(8, 8)
	for i:=0; i<len(img.Pix); i+=raster.Channels { img.Pix[i]=200 }
	buf:=bytes.Buffer{}
	if err:=raster.Encode(&buf, img, "png"); err!=nil { t.Fatalf("encode test image: %s", err.Error()) }
	return buf.Bytes()
}

func postImage(t *testing.T, r *gin.Engine, path string, image []byte, fields map[string]string) *httptest.ResponseRecorder {
	body:=&bytes.Buffer{}
	w:=multipart.NewWriter(body)
	if image!=nil {
		fw, err:=w.CreateFormFile("image", "test.png")
		if err!=nil { t.Fatalf("create form file: %s", err.Error()) }
		fw.Write(image)
	}
	for k,v:=range fields {
		w.WriteField(k, v)
	}
	w.Close()

	req:=httptest.NewRequest("POST", path, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec:=httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	r, _:=testRouter(t)
	rec:=httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/ping", nil))
	if rec.Code!=http.StatusOK { t.Errorf("ping status=%d; want 200", rec.Code) }
}

func TestPostBlur(t *testing.T) {
	r, dir:=testRouter(t)
	rec:=postImage(t, r, "/api/v1/blur", testPNG(t), map[string]string{"radius": "3"})
	if rec.Code!=http.StatusOK { t.Fatalf("blur status=%d body=%s; want 200", rec.Code, rec.Body.String()) }

	var reply struct{ OutputURL string `json:"output_url"` }
	if err:=json.Unmarshal(rec.Body.Bytes(), &reply); err!=nil { t.Fatalf("decode reply: %s", err.Error()) }
	if !strings.HasPrefix(reply.OutputURL, "/public/processed_blur_") { t.Errorf("output_url=%s; want /public/processed_blur_*", reply.OutputURL) }

	fileName:=filepath.Join(dir, strings.TrimPrefix(reply.OutputURL, "/public/"))
	if _,err:=os.Stat(fileName); err!=nil { t.Errorf("result file %s not written: %s", fileName, err.Error()) }
}

func TestPostDownscale(t *testing.T) {
	r, dir:=testRouter(t)
	rec:=postImage(t, r, "/api/v1/downscale", testPNG(t), nil)
	if rec.Code!=http.StatusOK { t.Fatalf("downscale status=%d; want 200", rec.Code) }

	var reply struct{ OutputURL string `json:"output_url"` }
	json.Unmarshal(rec.Body.Bytes(), &reply)
	img, err:=raster.Load(filepath.Join(dir, strings.TrimPrefix(reply.OutputURL, "/public/")))
	if err!=nil { t.Fatalf("load result: %s", err.Error()) }
	if img.Width!=4 || img.Height!=4 { t.Errorf("result=%dx%d; want 4x4", img.Width, img.Height) }
}

func TestPostWithoutImage(t *testing.T) {
	r, _:=testRouter(t)
	rec:=postImage(t, r, "/api/v1/denoise", nil, nil)
	if rec.Code!=http.StatusBadRequest { t.Errorf("status=%d; want 400", rec.Code) }
}

func TestPostInvalidRadius(t *testing.T) {
	r, _:=testRouter(t)
	rec:=postImage(t, r, "/api/v1/blur", testPNG(t), map[string]string{"radius": "five"})
	if rec.Code!=http.StatusBadRequest { t.Errorf("status=%d; want 400", rec.Code) }
}

func TestPostOutOfRangeParameter(t *testing.T) {
	r, _:=testRouter(t)
	rec:=postImage(t, r, "/api/v1/denoise", testPNG(t), map[string]string{"edgeThreshold": "500"})
	if rec.Code!=http.StatusBadRequest { t.Errorf("status=%d; want 400", rec.Code) }
	rec=postImage(t, r, "/api/v1/denoise", testPNG(t), map[string]string{"iterations": "7"})
	if rec.Code!=http.StatusBadRequest { t.Errorf("status=%d; want 400", rec.Code) }
}

func TestPostCorruptImage(t *testing.T) {
	r, _:=testRouter(t)
	rec:=postImage(t, r, "/api/v1/upscale", []byte("not an image"), nil)
	if rec.Code!=http.StatusBadRequest { t.Errorf("status=%d; want 400", rec.Code) }
}

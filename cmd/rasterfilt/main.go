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


package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/klauspost/cpuid"
	"github.com/pbnjay/memory"

	"github.com/mlnoga/rasterfilt/internal/filter"
	"github.com/mlnoga/rasterfilt/internal/raster"
	"github.com/mlnoga/rasterfilt/internal/rest"
	"github.com/mlnoga/rasterfilt/internal/rlog"
)

const version = "0.1.0"

var totalMiBs=memory.TotalMemory()/1024/1024

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
var memprofile = flag.String("memprofile", "", "write memory profile to `file`")

var out  = flag.String("out", "out.png", "save output to `file`, type chosen by extension (png/jpg/bmp/tif)")
var log  = flag.String("log", "", "save log output to `file` in addition to stdout")

var radius        = flag.Int("radius", filter.DefaultRadius, "blur: Gaussian kernel radius, >=0")
var edgeThreshold = flag.Int("edgeThreshold", filter.DefaultEdgeThreshold, "denoise: edge preservation threshold in [1,100]")
var iterations    = flag.Int("iterations", filter.DefaultIterations, "denoise: number of smoothing passes in [1,3]")

var maxThreads = flag.Int("maxThreads", 0, "concurrency limit for filtering, 0=number of logical CPUs")

var port   = flag.Int("port", 8080, "serve: TCP port to listen on")
var public = flag.String("public", "public", "serve: directory for processed output files")
var chroot = flag.String("chroot", "", "serve: change filesystem root to given `path` before serving (requires root)")
var setuid = flag.Int("setuid", -1, "serve: change to given numerical user id before serving (requires root)")

func main() {
	logWriter:=rlog.Writer{}   // reaches the -log file as well once enabled
	start:=time.Now()
	flag.Usage=func(){
		fmt.Fprintf(logWriter, `Rasterfilt Copyright (c) 2020 Markus L. Noga
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (downscale|upscale|denoise|blur|serve|legal|version) (image file)

Commands:
  downscale Halve image dimensions with edge-preserving resampling
  upscale   Double image dimensions with sharpened midpoint interpolation
  denoise   Apply edge-preserving bilateral smoothing
  blur      Apply a separable Gaussian blur
  serve     Start the HTTP filtering service
  legal     Show license and attribution information
  version   Show version information

Flags:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// Initialize logging to file in addition to stdout, if selected
	if *log!="" {
		if err:=rlog.AlsoToFile(*log); err!=nil { rlog.Fatalf("Unable to open logfile '%s'\n", *log) }
	}
	defer rlog.Sync()

	// Enable CPU profiling if flagged
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			rlog.Fatal("Could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			rlog.Fatal("Could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	args:=flag.Args()
	if len(args)<1 {
		flag.Usage()
		return
	}

	c:=filter.NewContext(logWriter, *maxThreads)
	var err error

	switch args[0] {
	case filter.Downscale2x, filter.Upscale2x, filter.DenoiseOp, filter.BlurOp:
		rlog.Printf("Rasterfilt v%s on %s with %d threads and %d MiB physical memory\n",
			version, cpuid.CPU.BrandName, c.MaxThreads, totalMiBs)
		err=cmdFilter(args[0], args[1:], c)

	case "serve":
		rlog.Printf("Rasterfilt v%s serving on port %d with %d threads\n", version, *port, c.MaxThreads)
		if err=os.MkdirAll(*public, 0755); err!=nil { break }
		rest.MakeSandbox(*chroot, *setuid)
		err=rest.Serve(*port, *public, c)

	case "legal":
		cmdLegal()

	case "version":
		fmt.Fprintf(logWriter, "Version %s\n", version)

	case "help", "?":
		flag.Usage()

	default:
		fmt.Fprintf(logWriter, "Unknown command '%s'\n\n", args[0])
		flag.Usage()
		return
	}

	if err!=nil {
		rlog.Fatalf("Error: %s\n", err.Error())
	}
	rlog.Printf("Done after %v\n", time.Now().Sub(start))

	// Store memory profile if flagged
	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			rlog.Fatal("Could not create memory profile: ", err)
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.Lookup("allocs").WriteTo(f,0); err != nil {
			rlog.Fatal("Could not write allocation profile: ", err)
		}
	}
}

// Loads the input image, applies the named filter operation and saves the result
func cmdFilter(operation string, args []string, c *filter.Context) error {
	if len(args)!=1 {
		return fmt.Errorf("command %s expects exactly one input image file", operation)
	}

	img, err:=raster.Load(args[0])
	if err!=nil { return err }
	rlog.Printf("%s: %dx%d pixels from %s\n", operation, img.Width, img.Height, args[0])

	params:=filter.Params{
		EdgeThreshold: *edgeThreshold,
		Iterations:    *iterations,
		Radius:        *radius,
	}
	res, err:=filter.Run(img, operation, params, c)
	if err!=nil { return err }

	target:=*out
	if target=="" {
		target=strings.TrimSuffix(args[0], filepath.Ext(args[0]))+"_"+operation+".png"
	}
	rlog.Printf("%s: writing %dx%d pixels to %s\n", operation, res.Width, res.Height, target)
	return raster.Save(res, target)
}

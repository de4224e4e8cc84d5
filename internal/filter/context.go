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
	"io"
	"runtime"
	"sync"

	"github.com/klauspost/cpuid"
	"github.com/pbnjay/memory"
)

// An execution context for filters. Thread count and memory budget are explicit
// parameters of every filter invocation, not process-wide globals.
type Context struct {
	Log        io.Writer  // Destination for progress and fallback notices
	MaxThreads int        // Concurrency limit for parallel row and tile loops
	MemoryMB   int        // Physical memory in MiB, caps concurrent tile buffers
}

// Creates a context with the given log sink and thread limit.
// maxThreads<=0 selects the number of logical CPU cores.
func NewContext(log io.Writer, maxThreads int) *Context {
	if maxThreads<=0 {
		maxThreads=cpuid.CPU.LogicalCores
		if maxThreads<=0 { maxThreads=runtime.NumCPU() }
	}
	if log==nil { log=io.Discard }
	return &Context{
		Log        : log,
		MaxThreads : maxThreads,
		MemoryMB   : int(memory.TotalMemory()/1024/1024),
	}
}

// Runs fn for every index in [0,n) on up to c.MaxThreads goroutines, and waits
// for completion. Callers must write to disjoint output regions only.
func (c *Context) forEach(n int, fn func(i int)) {
	threads:=c.MaxThreads
	if threads<1 { threads=1 }
	limiter:=make(chan bool, threads)
	for i:=0; i<n; i++ {
		limiter <- true
		go func(i int) {
			defer func() { <-limiter }()
			fn(i)
		}(i)
	}
	for i:=0; i<cap(limiter); i++ { limiter <- true }  // wait for goroutines to finish
}

// Like forEach, but recovers panics inside the worker goroutines. A panic in
// a worker would otherwise terminate the process, as it cannot be recovered
// from the calling goroutine. Always runs all n iterations to completion, and
// afterwards returns the first recorded fault as an error, or nil.
func (c *Context) forEachRecover(n int, fn func(i int)) error {
	var mu sync.Mutex
	var fault interface{}
	c.forEach(n, func(i int) {
		defer func() {
			if r:=recover(); r!=nil {
				mu.Lock()
				if fault==nil { fault=r }
				mu.Unlock()
			}
		}()
		fn(i)
	})
	if fault!=nil { return fmt.Errorf("%v", fault) }
	return nil
}

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


package rlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Messages written through the io.Writer view must reach the optional log
// file like every directly printed message
func TestWriterReachesLogFile(t *testing.T) {
	path:=filepath.Join(t.TempDir(), "run.log")
	if err:=AlsoToFile(path); err!=nil { t.Fatalf("AlsoToFile: %s", err.Error()) }

	fmt.Fprintf(Writer{}, "switching to safe fallback %d\n", 42)
	Sync()

	data, err:=os.ReadFile(path)
	if err!=nil { t.Fatalf("reading log file: %s", err.Error()) }
	if !strings.Contains(string(data), "switching to safe fallback 42") { t.Errorf("log file %q misses the message", string(data)) }
}

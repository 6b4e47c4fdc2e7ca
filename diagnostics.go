// Copyright 2025 cogc Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import "fmt"

// CompileError is the single error kind cogc ever produces: lexical,
// syntactic, name-resolution, type, arity, size, or constant-folding
// failures are all reported the same way, at the position of the token
// or expression that triggered them. There is no error recovery — the
// first one reported ends the compilation.
type CompileError struct {
	Pos     Position
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// fail reports a fatal diagnostic at pos and unwinds to Compile via panic.
// Recursive-descent call chains here run many frames deep with no recovery
// path of their own, so panic/recover to the top of Compile plays the same
// role it plays in go/parser and encoding/gob: every call site can fail
// without threading an error return through every intermediate frame.
func (c *Context) fail(pos Position, format string, args ...any) {
	panic(&CompileError{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

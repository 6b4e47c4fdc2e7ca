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

import (
	"bufio"
	"fmt"
	"io"
)

// Context bundles every piece of process-wide compiler state: the
// character cursor, the current token, the symbol table, the current
// function, the label counter, and the temp-stack top. Bundling them
// here rather than using package-level variables makes a compilation an
// ordinary value, safe to run concurrently across goroutines (each gets
// its own *Context) and trivial to unit test against an in-memory
// io.Reader/io.Writer.
type Context struct {
	// scanner
	src   *bufio.Reader
	ch    rune
	chPos Position

	// one token of lookahead
	tok    TokenKind
	tokPos Position
	lexeme string

	syms *SymbolTable

	out *bufio.Writer

	labelCount   int
	tempStackTop int
	strLitCount  int
}

// NewContext wires a compilation around the given source and assembly
// sink. Compile creates one per call; tests create their own to drive the
// scanner, parser and symbol table directly.
func NewContext(src io.Reader, out io.Writer) *Context {
	return &Context{
		src:  bufio.NewReader(src),
		out:  bufio.NewWriter(out),
		syms: NewSymbolTable(),
	}
}

// emit writes one line of assembly via a single Fprintf call per
// instruction.
func (c *Context) emit(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
	c.out.WriteByte('\n')
}

// emitRaw writes a directive or label with no trailing processing beyond
// the newline — used for lines that are already fully formed (e.g. label
// definitions ending in ':').
func (c *Context) emitRaw(line string) {
	c.out.WriteString(line)
	c.out.WriteByte('\n')
}

// Compile runs the full scan → parse → typecheck → codegen pipeline over
// src, writing AArch64 assembly to out. It is the only exported entry
// point; every internal failure (panic of *CompileError) is recovered
// here and returned as a normal error, so callers never observe a panic.
func Compile(src io.Reader, out io.Writer) (err error) {
	c := NewContext(src, out)

	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*CompileError); ok {
				err = ce
				return
			}
			panic(r)
		}
		if err == nil {
			err = c.out.Flush()
		}
	}()

	c.nextChar()
	c.nextToken()
	for c.tok != TokEOF {
		c.parseDecl()
	}
	return nil
}

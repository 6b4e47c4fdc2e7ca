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

import "github.com/samber/lo"

// MaxParams caps the number of parameters (and call arguments matched
// against them) a function signature may declare.
const MaxParams = 8

// MaxScopes caps lexical nesting depth.
const MaxScopes = 16

// FrameLocalsSize is the byte budget for a function's local variables,
// shared by every scope nested inside it.
const FrameLocalsSize = 128

// SymbolKind tags the variant held by a Symbol.
type SymbolKind int

const (
	SymLocal SymbolKind = iota
	SymGlobal
	SymConst
	SymFunc
	SymType
)

// Symbol is a name bound in some scope: a local or global variable, a
// named constant, a function, or a type alias introduced by `struct`.
type Symbol struct {
	Kind     SymbolKind
	Name     string
	IsExtern bool

	// Local/Global variable type, Func return type, or Type's aliased type.
	Type *Type

	// Local
	FrameOffset int

	// Const
	Value int

	// Func
	ParamNames []string
	ParamTypes []*Type
	IsVariadic bool
	LocalsSize int
	Defined    bool
}

// SymbolTable is a flat stack of symbols with a per-scope watermark:
// entering a scope records the current stack length, leaving it
// truncates back to that length, logically freeing every symbol
// declared inside.
type SymbolTable struct {
	syms        []*Symbol
	scopeStart  []int // scopeStart[d] = sym_table length when scope d was entered
	depth       int
	CurrentFunc *Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{scopeStart: make([]int, MaxScopes+1)}
}

func (st *SymbolTable) EnterScope(c *Context, pos Position) {
	if st.depth+1 == MaxScopes {
		c.fail(pos, "Maximum scope depth reached")
	}
	st.depth++
	st.scopeStart[st.depth] = len(st.syms)
}

func (st *SymbolTable) LeaveScope() {
	st.syms = st.syms[:st.scopeStart[st.depth]]
	st.depth--
}

// FindWithin scans from the top of the stack down to the start of scope
// depth, returning the innermost match.
func (st *SymbolTable) FindWithin(name string, depth int) *Symbol {
	start := st.scopeStart[depth]
	for i := len(st.syms) - 1; i >= start; i-- {
		if st.syms[i].Name == name {
			return st.syms[i]
		}
	}
	return nil
}

// Find scans every enclosing scope, innermost first.
func (st *SymbolTable) Find(name string) *Symbol {
	return st.FindWithin(name, 0)
}

// Add inserts sym into the current scope, rejecting a name already bound
// within that same scope (shadowing an outer scope is fine).
func (st *SymbolTable) Add(c *Context, sym *Symbol, pos Position) {
	if st.FindWithin(sym.Name, st.depth) != nil {
		c.fail(pos, "Symbol '%s' already defined", sym.Name)
	}
	st.syms = append(st.syms, sym)
}

func (st *SymbolTable) AddType(c *Context, name string, typ *Type, pos Position) {
	st.Add(c, &Symbol{Kind: SymType, Name: name, Type: typ}, pos)
}

// AddLocal reserves frame space for a local (or parameter) and binds it
// in the current scope. Offsets grow monotonically within a function and
// are never reused, even across sibling blocks.
func (st *SymbolTable) AddLocal(c *Context, name string, typ *Type, pos Position) *Symbol {
	offset := alignUp(st.CurrentFunc.LocalsSize+typ.Size(), typ.Align())
	if offset > FrameLocalsSize {
		c.fail(pos, "Ran out of local variable space")
	}
	st.CurrentFunc.LocalsSize = offset

	local := &Symbol{Kind: SymLocal, Name: name, Type: typ, FrameOffset: offset}
	st.Add(c, local, pos)
	return local
}

func (st *SymbolTable) AddGlobal(c *Context, isExtern bool, name string, typ *Type, pos Position) *Symbol {
	global := &Symbol{Kind: SymGlobal, Name: name, IsExtern: isExtern, Type: typ}
	st.Add(c, global, pos)
	return global
}

func (st *SymbolTable) AddConst(c *Context, name string, value int, pos Position) *Symbol {
	constant := &Symbol{Kind: SymConst, Name: name, Type: IntType(8), Value: value}
	st.Add(c, constant, pos)
	return constant
}

// funcSignatureEq compares everything about two Func symbols except their
// defined-ness and locals layout: parameter types, variadic flag, and
// return type.
func funcSignatureEq(a, b *Symbol) bool {
	if len(a.ParamTypes) != len(b.ParamTypes) || a.IsVariadic != b.IsVariadic || !a.Type.Eq(b.Type) {
		return false
	}
	return lo.EveryBy(lo.Zip2(a.ParamTypes, b.ParamTypes), func(pair lo.Tuple2[*Type, *Type]) bool {
		return pair.A.Eq(pair.B)
	})
}

// AddFunc merges a matching prior declaration in place (a forward
// declaration followed by its definition, or two identical forward
// declarations) rather than adding a second symbol; any mismatch, or a
// second body for an already-defined function, is a duplicate-name error.
func (st *SymbolTable) AddFunc(c *Context, fn *Symbol, pos Position) {
	existing := st.Find(fn.Name)
	if existing != nil && existing.Kind == SymFunc && funcSignatureEq(fn, existing) && !(existing.Defined && fn.Defined) {
		if fn.Defined {
			existing.Defined = true
		}
		return
	}
	st.Add(c, fn, pos)
}

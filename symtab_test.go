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

import "testing"

func TestSymbolTable_ScopeHygiene(t *testing.T) {
	c := NewContext(nil, nil)
	st := c.syms
	st.CurrentFunc = &Symbol{Kind: SymFunc, Name: "f"}

	st.AddGlobal(c, false, "g", IntType(8), Position{})

	st.EnterScope(c, Position{})
	inner := st.AddLocal(c, "x", IntType(8), Position{})
	if st.Find("x") != inner {
		t.Fatal("inner scope symbol not found while in scope")
	}
	st.LeaveScope()

	if st.Find("x") != nil {
		t.Error("symbol from a left scope was still found")
	}
	if st.Find("g") == nil {
		t.Error("global symbol from an outer scope was lost")
	}
}

func TestSymbolTable_AddLocal_FrameOffsets(t *testing.T) {
	c := NewContext(nil, nil)
	st := c.syms
	st.CurrentFunc = &Symbol{Kind: SymFunc, Name: "f"}
	st.EnterScope(c, Position{})

	a := st.AddLocal(c, "a", IntType(1), Position{})
	b := st.AddLocal(c, "b", IntType(8), Position{})

	if a.FrameOffset != 1 {
		t.Errorf("a.FrameOffset = %d, want 1", a.FrameOffset)
	}
	// b is 8-byte aligned, so it must round up past a's single byte.
	if b.FrameOffset != 16 {
		t.Errorf("b.FrameOffset = %d, want 16", b.FrameOffset)
	}
}

func TestSymbolTable_Add_DuplicateInSameScope(t *testing.T) {
	c := NewContext(nil, nil)
	st := c.syms
	st.CurrentFunc = &Symbol{Kind: SymFunc, Name: "f"}
	st.EnterScope(c, Position{})
	st.AddLocal(c, "x", IntType(8), Position{})

	defer func() {
		if recover() == nil {
			t.Error("expected fail on duplicate symbol in the same scope")
		}
	}()
	st.AddLocal(c, "x", IntType(8), Position{})
}

func TestSymbolTable_AddLocal_ShadowOuterScope(t *testing.T) {
	c := NewContext(nil, nil)
	st := c.syms
	st.CurrentFunc = &Symbol{Kind: SymFunc, Name: "f"}
	st.EnterScope(c, Position{})
	st.AddLocal(c, "x", IntType(8), Position{})
	st.EnterScope(c, Position{})

	defer func() {
		if recover() != nil {
			t.Error("shadowing a symbol from an outer scope should be allowed")
		}
	}()
	st.AddLocal(c, "x", IntType(1), Position{})
}

func TestSymbolTable_AddFunc_MergesForwardDeclaration(t *testing.T) {
	c := NewContext(nil, nil)
	st := c.syms

	decl := &Symbol{Kind: SymFunc, Name: "puts", Type: VoidType(), ParamTypes: []*Type{PtrType(IntType(1))}}
	st.AddFunc(c, decl, Position{})

	def := &Symbol{Kind: SymFunc, Name: "puts", Type: VoidType(), ParamTypes: []*Type{PtrType(IntType(1))}, Defined: true}
	st.AddFunc(c, def, Position{})

	found := st.Find("puts")
	if found != decl {
		t.Fatal("AddFunc did not merge into the existing declaration")
	}
	if !found.Defined {
		t.Error("merging a definition into a forward declaration did not mark it Defined")
	}
}

func TestSymbolTable_AddFunc_MismatchedSignatureIsDuplicate(t *testing.T) {
	c := NewContext(nil, nil)
	st := c.syms

	decl := &Symbol{Kind: SymFunc, Name: "f", Type: VoidType()}
	st.AddFunc(c, decl, Position{})

	mismatched := &Symbol{Kind: SymFunc, Name: "f", Type: IntType(8)}
	defer func() {
		if recover() == nil {
			t.Error("expected fail on mismatched redeclaration")
		}
	}()
	st.AddFunc(c, mismatched, Position{})
}

func TestSymbolTable_AddFunc_DuplicateDefinitionRejected(t *testing.T) {
	c := NewContext(nil, nil)
	st := c.syms

	a := &Symbol{Kind: SymFunc, Name: "f", Type: VoidType(), Defined: true}
	st.AddFunc(c, a, Position{})

	b := &Symbol{Kind: SymFunc, Name: "f", Type: VoidType(), Defined: true}
	defer func() {
		if recover() == nil {
			t.Error("expected fail redefining an already-defined function")
		}
	}()
	st.AddFunc(c, b, Position{})
}

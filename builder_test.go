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

func TestCoerce_WidensIntLiteral(t *testing.T) {
	lit := mkExpr(ExprInt, IntType(1), Position{})
	lit.IntValue = 5
	got := coerce(lit, IntType(8))
	if got.Kind != ExprCast || !got.Type.Eq(IntType(8)) {
		t.Fatalf("widening Int8 literal to Int64 should produce a cast, got %+v", got)
	}
}

func TestCoerce_NarrowsFittingLiteral(t *testing.T) {
	lit := mkExpr(ExprInt, IntType(8), Position{})
	lit.IntValue = 100
	got := coerce(lit, IntType(1))
	if got.Kind != ExprInt || !got.Type.Eq(IntType(1)) {
		t.Fatalf("a literal that fits should be re-tagged, not cast, got %+v", got)
	}
}

func TestCoerce_DoesNotNarrowOverflowingLiteral(t *testing.T) {
	lit := mkExpr(ExprInt, IntType(8), Position{})
	lit.IntValue = 1000
	got := coerce(lit, IntType(1))
	if !got.Type.Eq(IntType(8)) {
		t.Fatalf("a literal too large for the target should be left untouched, got %+v", got)
	}
}

// Only literal nodes are eligible for narrowing re-tagging; a non-literal
// Int64 expression with a zero IntValue must not be spuriously re-tagged
// to Int8 just because its zero-valued field happens to fit.
func TestCoerce_DoesNotRetagNonLiteral(t *testing.T) {
	notALiteral := mkExpr(ExprVar, IntType(8), Position{})
	got := coerce(notALiteral, IntType(1))
	if !got.Type.Eq(IntType(8)) {
		t.Fatalf("a non-literal expression must never be re-tagged, got %+v", got)
	}
}

func TestCheckType_PtrVoidAcceptsAnyPointer(t *testing.T) {
	c := NewContext(nil, nil)
	p := mkExpr(ExprVar, PtrType(IntType(1)), Position{})
	got := checkType(c, p, PtrType(VoidType()))
	if !got.Type.Eq(PtrType(IntType(1))) {
		t.Error("checkType against Ptr(Void) should not force a cast")
	}
}

func TestCheckType_MismatchFails(t *testing.T) {
	c := NewContext(nil, nil)
	e := mkExpr(ExprVar, BoolType(), Position{})
	defer func() {
		if recover() == nil {
			t.Error("expected fail on an irreconcilable type mismatch")
		}
	}()
	checkType(c, e, PtrType(IntType(1)))
}

func TestBuildUnaryExpr_Deref(t *testing.T) {
	c := NewContext(nil, nil)
	ptr := mkExpr(ExprVar, PtrType(IntType(8)), Position{})
	got := buildUnaryExpr(c, ExprDeref, ptr)
	if got.Kind != ExprDeref || !got.Type.Eq(IntType(8)) {
		t.Errorf("deref of *Int64 should yield Int64, got %+v", got.Type)
	}
}

func TestBuildUnaryExpr_AddrRequiresLvalue(t *testing.T) {
	c := NewContext(nil, nil)
	notLvalue := mkExpr(ExprInt, IntType(8), Position{})
	defer func() {
		if recover() == nil {
			t.Error("expected fail taking the address of a non-lvalue")
		}
	}()
	buildUnaryExpr(c, ExprAddr, notLvalue)
}

func TestBuildBinaryExpr_ShlRoutesThroughArithmetic(t *testing.T) {
	c := NewContext(nil, nil)
	lhs := mkExpr(ExprInt, IntType(8), Position{})
	rhs := mkExpr(ExprInt, IntType(8), Position{})
	got := buildBinaryExpr(c, lhs, ExprShl, rhs)
	if got.Kind != ExprShl {
		t.Fatalf("Shl expr kind = %v, want ExprShl", got.Kind)
	}
	if !got.Type.Eq(IntType(8)) {
		t.Errorf("_<<_ should produce Int64, not Bool, got %v", got.Type)
	}
}

func TestBuildBinaryExpr_ComparisonProducesBool(t *testing.T) {
	c := NewContext(nil, nil)
	lhs := mkExpr(ExprInt, IntType(8), Position{})
	rhs := mkExpr(ExprInt, IntType(8), Position{})
	got := buildBinaryExpr(c, lhs, ExprLt, rhs)
	if !got.Type.Eq(BoolType()) {
		t.Errorf("comparison result type = %v, want Bool", got.Type)
	}
}

func TestBuildBinaryExpr_LogicalOrDesugarsToCond(t *testing.T) {
	c := NewContext(nil, nil)
	lhs := mkExpr(ExprInt, BoolType(), Position{})
	rhs := mkExpr(ExprInt, BoolType(), Position{})
	got := buildBinaryExpr(c, lhs, ExprLOr, rhs)
	if got.Kind != ExprCond {
		t.Fatalf("_||_ should desugar to a _?_:_ node, got kind %v", got.Kind)
	}
	if got.Args[1].IntValue != 1 {
		t.Error("_||_ desugaring should use a true literal as the then-branch")
	}
}

func TestBuildBinaryExpr_LogicalAndDesugarsToCond(t *testing.T) {
	c := NewContext(nil, nil)
	lhs := mkExpr(ExprInt, BoolType(), Position{})
	rhs := mkExpr(ExprInt, BoolType(), Position{})
	got := buildBinaryExpr(c, lhs, ExprLAnd, rhs)
	if got.Kind != ExprCond {
		t.Fatalf("_&&_ should desugar to a _?_:_ node, got kind %v", got.Kind)
	}
	if got.Args[2].IntValue != 0 {
		t.Error("_&&_ desugaring should use a false literal as the else-branch")
	}
}

func TestBuildBinaryExpr_StructAssignLowersToMemcpy(t *testing.T) {
	c := NewContext(nil, nil)
	s := NewStructType("Point")
	s.AddField(c, Position{}, "x", IntType(8))

	lhsSym := &Symbol{Kind: SymLocal, Name: "a", Type: s}
	rhsSym := &Symbol{Kind: SymLocal, Name: "b", Type: s}
	lhs := mkExpr(ExprVar, s, Position{})
	lhs.Sym = lhsSym
	rhs := mkExpr(ExprVar, s, Position{})
	rhs.Sym = rhsSym

	got := buildBinaryExpr(c, lhs, ExprAssign, rhs)
	if got.Kind != ExprMemcpy {
		t.Fatalf("struct assignment should lower to ExprMemcpy, got %v", got.Kind)
	}
}

func TestBuildBinaryExpr_AssignRequiresLvalue(t *testing.T) {
	c := NewContext(nil, nil)
	notLvalue := mkExpr(ExprInt, IntType(8), Position{})
	rhs := mkExpr(ExprInt, IntType(8), Position{})
	defer func() {
		if recover() == nil {
			t.Error("expected fail assigning to a non-lvalue")
		}
	}()
	buildBinaryExpr(c, notLvalue, ExprAssign, rhs)
}

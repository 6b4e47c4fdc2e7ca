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

// coerce returns e, or e wrapped in a cast node, so that its type becomes
// target — or leaves e untouched if no coercion rule applies (the caller
// checks the result against target afterwards). Nothing is ever rewritten
// in place: the caller rebinds its own variable to the returned expression.
func coerce(e *Expr, target *Type) *Expr {
	if e.Type.Eq(target) {
		return e
	}
	if e.Type.Le(target) {
		return mkExpr1(ExprCast, e, target)
	}
	// A literal that fits within the narrower target's bit width is
	// re-tagged instead of cast. Only literals qualify — an arbitrary
	// non-literal Int expression is never re-tagged just because its
	// zero value happens to be small.
	if e.Kind == ExprInt && e.Type.Kind == TypeInt && target.Kind == TypeInt {
		if ilog2(e.IntValue)+1 < target.IntSize*8 {
			retagged := *e
			retagged.Type = target
			return &retagged
		}
	}
	return e
}

// checkType coerces e toward expected and fails if the result still
// doesn't match — except that Ptr(Void) accepts any pointer without a
// cast node.
func checkType(c *Context, e *Expr, expected *Type) *Expr {
	if expected.Kind == TypePtr && expected.Base.Kind == TypeVoid && e.Type.Kind == TypePtr {
		return e
	}

	e = coerce(e, expected)

	if !e.Type.Eq(expected) {
		c.fail(e.Pos, "Type mismatch: %s != %s", e.Type, expected)
	}
	return e
}

func checkTypeBool(c *Context, e *Expr) *Expr {
	return checkType(c, e, BoolType())
}

func checkTypeInt(c *Context, e *Expr) {
	if e.Type.Kind != TypeInt {
		c.fail(e.Pos, "Expected integer.")
	}
}

// unifyTypes coerces lhs and rhs toward each other, preferring whichever
// direction succeeds, then asserts the result types finally agree.
func unifyTypes(c *Context, lhs, rhs *Expr) (*Expr, *Expr) {
	rhs = coerce(rhs, lhs.Type)
	lhs = coerce(lhs, rhs.Type)
	rhs = checkType(c, rhs, lhs.Type)
	return lhs, rhs
}

// buildUnaryExpr validates and types a prefix-operator expression.
func buildUnaryExpr(c *Context, op ExprKind, rhs *Expr) *Expr {
	switch op {
	case ExprDeref:
		if rhs.Type.Kind != TypePtr {
			c.fail(rhs.Pos, "Pointer type expected.")
		}
		return mkExpr1(ExprDeref, rhs, rhs.Type.Base)
	case ExprAddr:
		if !rhs.IsLvalue() {
			c.fail(rhs.Pos, "Expression is not addressable.")
		}
		return mkExpr1(ExprAddr, rhs, PtrType(rhs.Type))
	case ExprNot:
		rhs = checkTypeBool(c, rhs)
		return mkExpr1(ExprNot, rhs, rhs.Type)
	default: // ExprNeg, ExprBNot
		checkTypeInt(c, rhs)
		return mkExpr1(op, rhs, rhs.Type)
	}
}

// buildBinaryExpr validates, coerces, and types an infix-operator
// expression, including the struct-assign-to-memcpy and short-circuit-to-
// conditional rewrites below.
func buildBinaryExpr(c *Context, lhs *Expr, op ExprKind, rhs *Expr) *Expr {
	switch op {
	case ExprAssign, ExprAddAssign, ExprSubAssign:
		if !lhs.IsLvalue() {
			c.fail(lhs.Pos, "Expression is not assignable.")
		}
		if op != ExprAssign {
			checkTypeInt(c, lhs)
		}
		rhs = checkType(c, rhs, lhs.Type)
		if !lhs.Type.IsScalar() {
			if !rhs.IsLvalue() {
				c.fail(rhs.Pos, "Expression is not addressable.")
			}
			lhsAddr := mkExpr1(ExprAddr, lhs, PtrType(lhs.Type))
			rhsAddr := mkExpr1(ExprAddr, rhs, PtrType(rhs.Type))
			return mkExpr2(ExprMemcpy, lhsAddr, rhsAddr, VoidType())
		}
		return mkExpr2(op, lhs, rhs, lhs.Type)

	case ExprLAnd, ExprLOr:
		// Short-circuit operators desugar into a conditional expression
		// here, so the code generator only ever needs one
		// branch-emitting construct (_?_:_).
		lhs = checkTypeBool(c, lhs)
		rhs = checkTypeBool(c, rhs)
		falseLit := mkExpr(ExprInt, BoolType(), rhs.Pos)
		trueLit := mkExpr(ExprInt, BoolType(), rhs.Pos)
		trueLit.IntValue = 1
		if op == ExprLAnd {
			return mkExpr3(ExprCond, lhs, rhs, falseLit, rhs.Type)
		}
		return mkExpr3(ExprCond, lhs, trueLit, rhs, rhs.Type)

	case ExprEq, ExprNe, ExprLt, ExprLe, ExprGt, ExprGe:
		lhs, rhs = unifyTypes(c, lhs, rhs)
		if !lhs.Type.IsScalar() {
			c.fail(rhs.Pos, "Type is not comparable.")
		}
		return mkExpr2(op, lhs, rhs, BoolType())

	default:
		// Arithmetic and bitwise binary operators, including shift:
		// _<<_/_>>_ are routed here rather than through the comparison
		// builder, so shifting produces an Int result rather than Bool.
		checkTypeInt(c, lhs)
		checkTypeInt(c, rhs)
		lhs, rhs = unifyTypes(c, lhs, rhs)
		return mkExpr2(op, lhs, rhs, lhs.Type)
	}
}

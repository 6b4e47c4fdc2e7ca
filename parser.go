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

import "strconv"

// Precedence levels, low to high. Assign and Cond are right-associative
// (their right operand is parsed at their own level — see parseExprTail);
// every other level is left-associative (right operand at level + 1).
const (
	precAssign = iota
	precCond
	precCondOr
	precCondAnd
	precBitOr
	precBitXor
	precBitAnd
	precCmp
	precShift
	precAdd
	precMul
	precCast
	precUnary
	precPostfix
)

// parseType parses a type expression: primitive keywords, '*T', '[T; n]',
// a parenthesized type, or a previously declared struct name.
func (c *Context) parseType() *Type {
	switch {
	case c.eat("("):
		t := c.parseType()
		c.expect(")")
		return t
	case c.eat("Void"):
		return VoidType()
	case c.eat("Bool"):
		return BoolType()
	case c.eat("Char"), c.eat("Int8"):
		return IntType(1)
	case c.eat("Int16"):
		return IntType(2)
	case c.eat("Int32"):
		return IntType(4)
	case c.eat("Int"), c.eat("Int64"):
		return IntType(8)
	case c.eat("*"):
		return PtrType(c.parseType())
	case c.eat("["):
		base := c.parseType()
		c.expect(";")
		length := c.parseConstExpr()
		c.expect("]")
		return ArrType(base, length)
	case c.tok == TokWord:
		sym := c.syms.Find(c.lexeme)
		if sym == nil {
			c.fail(c.tokPos, "Unknown type '%s'", c.lexeme)
		}
		if sym.Kind != SymType {
			c.fail(c.tokPos, "Type expected.")
		}
		c.nextToken()
		return sym.Type
	default:
		c.fail(c.tokPos, "Type expected.")
		panic("unreachable")
	}
}

// parseExpr parses one expression, stopping before any operator whose
// precedence is below maxPrec — the standard Pratt-loop shape, driven by
// a single fixed precedence ladder instead of a lookup table since the
// grammar is small and static.
func (c *Context) parseExpr(maxPrec int) *Expr {
	lhs := c.parsePrimary(maxPrec)
	return c.parseExprTail(lhs, maxPrec)
}

func (c *Context) parsePrimary(maxPrec int) *Expr {
	switch {
	case c.eat("("):
		e := c.parseExpr(0)
		c.expect(")")
		return e
	case c.eat("null"):
		return mkExpr(ExprInt, PtrType(VoidType()), c.tokPos)
	case c.at("true") || c.at("false"):
		pos := c.tokPos
		e := mkExpr(ExprInt, BoolType(), pos)
		isTrue := c.eat("true")
		if !isTrue {
			c.eat("false")
		}
		if isTrue {
			e.IntValue = 1
		}
		return e
	case c.tok == TokInt:
		pos := c.tokPos
		lex := c.lexeme
		c.nextToken()
		v, err := strconv.ParseInt(lex, 10, 64)
		if err != nil {
			c.fail(pos, "Integer literal out of range.")
		}
		e := mkExpr(ExprInt, IntType(8), pos)
		e.IntValue = int(v)
		return e
	case c.tok == TokChar:
		pos := c.tokPos
		lex := c.lexeme
		c.nextToken()
		e := mkExpr(ExprInt, IntType(1), pos)
		e.IntValue = int(lex[0])
		return e
	case c.tok == TokStr:
		pos := c.tokPos
		lex := c.lexeme
		c.nextToken()
		e := mkExpr(ExprStr, PtrType(IntType(1)), pos)
		e.StrValue = lex
		return e
	case c.eat("sizeof"):
		pos := c.tokPos
		e := mkExpr(ExprInt, IntType(8), pos)
		c.expect("(")
		t := c.parseType()
		e.IntValue = alignUp(t.Size(), t.Align())
		c.expect(")")
		return e
	case c.tok == TokWord:
		return c.parseIdentExpr()
	case maxPrec <= precUnary && c.eat("*"):
		return buildUnaryExpr(c, ExprDeref, c.parseExpr(precUnary))
	case maxPrec <= precUnary && c.eat("&"):
		return buildUnaryExpr(c, ExprAddr, c.parseExpr(precUnary))
	case maxPrec <= precUnary && c.eat("!"):
		return buildUnaryExpr(c, ExprNot, c.parseExpr(precUnary))
	case maxPrec <= precUnary && c.eat("~"):
		return buildUnaryExpr(c, ExprBNot, c.parseExpr(precUnary))
	case maxPrec <= precUnary && c.eat("-"):
		return buildUnaryExpr(c, ExprNeg, c.parseExpr(precUnary))
	default:
		c.fail(c.tokPos, "Expression expected.")
		panic("unreachable")
	}
}

// parseIdentExpr resolves a bare identifier as a call, a variable
// reference, or a named constant.
func (c *Context) parseIdentExpr() *Expr {
	namePos := c.tokPos
	name := c.parseIdent()
	sym := c.syms.Find(name)
	if sym == nil {
		c.fail(namePos, "Unknown symbol '%s'", name)
	}

	if c.eat("(") {
		if sym.Kind != SymFunc {
			c.fail(namePos, "Function expected.")
		}
		call := mkExpr(ExprCall, sym.Type, namePos)
		call.Sym = sym
		for !c.eat(")") {
			arg := c.parseExpr(0)
			c.parseComma(")")
			if len(call.Args) == MaxParams {
				c.fail(c.tokPos, "Too many arguments provided.")
			}
			call.Args = append(call.Args, arg)
		}
		argCount := len(call.Args)
		paramCount := len(sym.ParamTypes)
		if argCount < paramCount {
			c.fail(call.Pos, "Not enough arguments provided (%d < %d)", argCount, paramCount)
		} else if argCount > paramCount && !sym.IsVariadic {
			c.fail(call.Pos, "Too many arguments provided (%d > %d)", argCount, paramCount)
		}
		for i := 0; i < paramCount; i++ {
			call.Args[i] = checkType(c, call.Args[i], sym.ParamTypes[i])
		}
		for i := paramCount; i < argCount; i++ {
			if !call.Args[i].Type.IsScalar() {
				c.fail(call.Args[i].Pos, "Invalid type for variadic argument.")
			}
		}
		return call
	}

	switch sym.Kind {
	case SymLocal, SymGlobal:
		e := mkExpr(ExprVar, sym.Type, namePos)
		e.Sym = sym
		return e
	case SymConst:
		e := mkExpr(ExprInt, sym.Type, namePos)
		e.IntValue = sym.Value
		return e
	default:
		c.fail(namePos, "Variable expected.")
		panic("unreachable")
	}
}

// parseExprTail runs the infix/postfix loop: as long as the next token is
// an operator whose precedence is not below maxPrec, fold it into lhs and
// continue.
func (c *Context) parseExprTail(lhs *Expr, maxPrec int) *Expr {
	for {
		switch {
		case maxPrec <= precAssign && c.eat("="):
			lhs = buildBinaryExpr(c, lhs, ExprAssign, c.parseExpr(precAssign))
		case maxPrec <= precAssign && c.eat("+="):
			lhs = buildBinaryExpr(c, lhs, ExprAddAssign, c.parseExpr(precAssign))
		case maxPrec <= precAssign && c.eat("-="):
			lhs = buildBinaryExpr(c, lhs, ExprSubAssign, c.parseExpr(precAssign))
		case maxPrec <= precCond && c.eat("?"):
			ift := c.parseExpr(precCond)
			c.expect(":")
			iff := c.parseExpr(precCond)
			lhs = checkTypeBool(c, lhs)
			ift, iff = unifyTypes(c, ift, iff)
			lhs = mkExpr3(ExprCond, lhs, ift, iff, ift.Type)
		case maxPrec <= precCondOr && c.eat("||"):
			lhs = buildBinaryExpr(c, lhs, ExprLOr, c.parseExpr(precCondOr+1))
		case maxPrec <= precCondAnd && c.eat("&&"):
			lhs = buildBinaryExpr(c, lhs, ExprLAnd, c.parseExpr(precCondAnd+1))
		case maxPrec <= precBitOr && c.eat("|"):
			lhs = buildBinaryExpr(c, lhs, ExprOr, c.parseExpr(precBitOr+1))
		case maxPrec <= precBitXor && c.eat("^"):
			lhs = buildBinaryExpr(c, lhs, ExprXor, c.parseExpr(precBitXor+1))
		case maxPrec <= precBitAnd && c.eat("&"):
			lhs = buildBinaryExpr(c, lhs, ExprAnd, c.parseExpr(precBitAnd+1))
		case maxPrec <= precCmp && c.eat("=="):
			lhs = buildBinaryExpr(c, lhs, ExprEq, c.parseExpr(precCmp+1))
		case maxPrec <= precCmp && c.eat("!="):
			lhs = buildBinaryExpr(c, lhs, ExprNe, c.parseExpr(precCmp+1))
		case maxPrec <= precCmp && c.eat("<="):
			lhs = buildBinaryExpr(c, lhs, ExprLe, c.parseExpr(precCmp+1))
		case maxPrec <= precCmp && c.eat(">="):
			lhs = buildBinaryExpr(c, lhs, ExprGe, c.parseExpr(precCmp+1))
		case maxPrec <= precCmp && c.eat("<"):
			lhs = buildBinaryExpr(c, lhs, ExprLt, c.parseExpr(precCmp+1))
		case maxPrec <= precCmp && c.eat(">"):
			lhs = buildBinaryExpr(c, lhs, ExprGt, c.parseExpr(precCmp+1))
		case maxPrec <= precShift && c.eat("<<"):
			lhs = buildBinaryExpr(c, lhs, ExprShl, c.parseExpr(precShift+1))
		case maxPrec <= precShift && c.eat(">>"):
			lhs = buildBinaryExpr(c, lhs, ExprShr, c.parseExpr(precShift+1))
		case maxPrec <= precAdd && c.eat("+"):
			lhs = buildBinaryExpr(c, lhs, ExprAdd, c.parseExpr(precAdd+1))
		case maxPrec <= precAdd && c.eat("-"):
			lhs = buildBinaryExpr(c, lhs, ExprSub, c.parseExpr(precAdd+1))
		case maxPrec <= precMul && c.eat("*"):
			lhs = buildBinaryExpr(c, lhs, ExprMul, c.parseExpr(precMul+1))
		case maxPrec <= precMul && c.eat("/"):
			lhs = buildBinaryExpr(c, lhs, ExprDiv, c.parseExpr(precMul+1))
		case maxPrec <= precMul && c.eat("%"):
			lhs = buildBinaryExpr(c, lhs, ExprMod, c.parseExpr(precMul+1))
		case maxPrec <= precCast && c.eat("as"):
			target := c.parseType()
			if !(target.IsScalar() && lhs.Type.IsScalar()) {
				c.fail(c.tokPos, "Invalid cast type.")
			}
			lhs = mkExpr1(ExprCast, lhs, target)
		case maxPrec <= precPostfix && c.eat("["):
			rhs := c.parseExpr(0)
			c.expect("]")
			if lhs.Type.Kind != TypeArr && lhs.Type.Kind != TypePtr {
				c.fail(c.tokPos, "Expression is not indexable.")
			}
			checkTypeInt(c, rhs)
			lhs = mkExpr2(ExprIndex, lhs, rhs, lhs.Type.Base)
		case maxPrec <= precPostfix && c.eat("."):
			fieldName := c.parseIdent()
			if lhs.Type.Kind == TypePtr {
				lhs = mkExpr1(ExprDeref, lhs, lhs.Type.Base)
			}
			if lhs.Type.Kind != TypeStruct {
				c.fail(c.tokPos, "Expression is not a struct.")
			}
			idx := lhs.Type.FindField(fieldName)
			if idx == -1 {
				c.fail(c.tokPos, "Unknown field '%s'", fieldName)
			}
			field := mkExpr1(ExprField, lhs, lhs.Type.Fields[idx].Type)
			field.FieldIndex = idx
			lhs = field
		default:
			return lhs
		}
	}
}

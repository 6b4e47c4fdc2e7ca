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
	"strconv"

	"github.com/samber/lo"
)

// Frame layout constants. A function's activation record is always
// exactly FrameSize bytes: FrameLocalsSize for named locals (including
// parameters, copied in on entry), FrameTempSize for the in-frame
// temporary stack the expression evaluator spills operands to, and
// FrameArgsSize for staging variadic call arguments at [sp, #k], the
// bottom of the frame.
const (
	FrameTempSize = 512
	FrameArgsSize = 64
	FrameSize     = FrameLocalsSize + FrameTempSize + FrameArgsSize
)

func (c *Context) nextLabel() int {
	c.labelCount++
	return c.labelCount
}

func (c *Context) emitLabel(label int, suffix string) {
	c.emitRaw(".L" + strconv.Itoa(label) + "." + suffix + ":")
}

// strx returns the store mnemonic (with its register-width prefix already
// appended, sans register number) for a value of type t's size.
func strx(t *Type) string {
	switch t.Size() {
	case 1:
		return "strb w"
	case 2:
		return "strh w"
	case 4:
		return "str w"
	case 8:
		return "str x"
	default:
		panic("unreachable store width")
	}
}

// ldrx returns the load mnemonic for t, choosing a sign-extending load
// for sub-word Int types and a plain load otherwise.
func ldrx(t *Type) string {
	switch {
	case t.Kind == TypeBool:
		return "ldrb w"
	case t.Kind == TypeInt && t.IntSize == 1:
		return "ldrsb x"
	case t.Kind == TypeInt && t.IntSize == 2:
		return "ldrsh x"
	case t.Kind == TypeInt && t.IntSize == 4:
		return "ldrsw x"
	case t.Size() == 8:
		return "ldr x"
	default:
		panic("unreachable load width")
	}
}

func (c *Context) emitPush(reg int) {
	if c.tempStackTop+8 > FrameTempSize {
		c.fail(Position{}, "Ran out of temporary space")
	}
	c.tempStackTop += 8
	c.emit("  str x%d, [fp, #-%d] ; push", reg, FrameLocalsSize+c.tempStackTop)
}

func (c *Context) emitPop(reg int) {
	c.emit("  ldr x%d, [fp, #-%d] ; pop", reg, FrameLocalsSize+c.tempStackTop)
	c.tempStackTop -= 8
}

func (c *Context) emitArgPush(argOffset *int, reg int) {
	*argOffset += 8
	if *argOffset > FrameArgsSize {
		c.fail(Position{}, "Ran out of outgoing argument space")
	}
	c.emit("  str x%d, [sp, #%d]", reg, *argOffset-8)
}

// emitSignExtend widens a sub-word integer result into a full register,
// or copies it across registers unchanged when it's already word-sized.
func (c *Context) emitSignExtend(source *Type, t0, t1 int) {
	if source.Kind == TypeInt && source.IntSize < 8 {
		suffix := map[int]byte{1: 'b', 2: 'h', 4: 'w'}[source.IntSize]
		c.emit("  sxt%c x%d, w%d", suffix, t0, t1)
	} else if t0 != t1 {
		c.emit("  mov x%d, x%d", t0, t1)
	}
}

// emitOperands evaluates both operands of a binary expression, spilling
// the left side through the temp stack so the right side's own evaluation
// can freely use every scratch register.
func (c *Context) emitOperands(e *Expr, tLhs, tRhs int) {
	c.emitExpr(e.Args[0], tLhs)
	c.emitPush(tLhs)
	c.emitExpr(e.Args[1], tRhs)
	c.emitPop(tLhs)
}

func (c *Context) emitOperandsLvalue(e *Expr, tLhs, tRhs int) {
	c.emitLvalue(e.Args[0], tLhs)
	c.emitPush(tLhs)
	c.emitExpr(e.Args[1], tRhs)
	c.emitPop(tLhs)
}

func (c *Context) emitBinary(op string, e *Expr, t0 int) {
	c.emitOperands(e, 0, 1)
	c.emit("  %s x%d, x0, x1", op, t0)
}

func (c *Context) emitCmp(rel string, e *Expr, t0 int) {
	c.emitOperands(e, 0, 1)
	c.emit("  cmp x0, x1")
	c.emit("  cset x%d, %s", t0, rel)
}

// emitLvalue computes the address of an lvalue expression into register
// t0. Every other expression kind is a value, not a place.
func (c *Context) emitLvalue(e *Expr, t0 int) {
	switch {
	case e.Kind == ExprVar && e.Sym.Kind == SymLocal:
		c.emit("  add x%d, fp, #-%d ; &%s", t0, e.Sym.FrameOffset, e.Sym.Name)

	case e.Kind == ExprVar && e.Sym.Kind == SymGlobal:
		name := e.Sym.Name
		if e.Sym.IsExtern {
			c.emit("  adrp x%d, _%s@GOTPAGE", t0, name)
			c.emit("  ldr x%d, [x%d, _%s@GOTPAGEOFF] ; &%s", t0, t0, name, name)
		} else {
			c.emit("  adrp x%d, _%s@PAGE", t0, name)
			c.emit("  add x%d, x%d, _%s@PAGEOFF ; &%s", t0, t0, name, name)
		}

	case e.Kind == ExprField:
		lhsType := e.Args[0].Type
		field := lhsType.Fields[e.FieldIndex]
		c.emitLvalue(e.Args[0], t0)
		c.emit("  add x%d, x%d, #%d ; &%s", t0, t0, field.Offset, field.Name)

	case e.Kind == ExprDeref:
		c.emitExpr(e.Args[0], t0)

	case e.Kind == ExprIndex:
		t1 := 1
		if t0 == 1 {
			t1 = 0
		}
		if e.Args[0].Type.Kind == TypePtr {
			c.emitOperands(e, t0, t1)
		} else {
			c.emitOperandsLvalue(e, t0, t1)
		}
		c.emit("  lsl x%d, x%d, #%d", t1, t1, ilog2(e.Type.Size()))
		c.emit("  add x%d, x%d, x%d", t0, t0, t1)

	default:
		c.fail(e.Pos, "Not an lvalue.")
	}
}

// emitExpr evaluates e into register t0.
func (c *Context) emitExpr(e *Expr, t0 int) {
	if e.IsLvalue() {
		c.emitLvalue(e, t0)
		c.emit("  %s%d, [x%d]", ldrx(e.Type), t0, t0)
		return
	}

	switch e.Kind {
	case ExprInt:
		c.emit("  mov x%d, #%d", t0, e.IntValue)

	case ExprStr:
		c.emitStringLiteral(e, t0)

	case ExprCall:
		c.emitCall(e, t0)

	case ExprAddr:
		c.emitLvalue(e.Args[0], t0)

	case ExprNot:
		c.emitExpr(e.Args[0], t0)
		c.emit("  eor x%d, x%d, #1", t0, t0)

	case ExprBNot:
		c.emitExpr(e.Args[0], t0)
		c.emit("  mvn x%d, x%d", t0, t0)

	case ExprNeg:
		c.emitExpr(e.Args[0], t0)
		c.emit("  neg x%d, x%d", t0, t0)

	case ExprOr:
		c.emitBinary("orr", e, t0)
	case ExprXor:
		c.emitBinary("eor", e, t0)
	case ExprAnd:
		c.emitBinary("and", e, t0)

	case ExprEq:
		c.emitCmp("eq", e, t0)
	case ExprNe:
		c.emitCmp("ne", e, t0)
	case ExprLt:
		c.emitCmp("lt", e, t0)
	case ExprLe:
		c.emitCmp("le", e, t0)
	case ExprGt:
		c.emitCmp("gt", e, t0)
	case ExprGe:
		c.emitCmp("ge", e, t0)

	case ExprShl:
		c.emitBinary("lsl", e, t0)
	case ExprShr:
		c.emitBinary("lsr", e, t0)

	case ExprAdd:
		c.emitBinary("add", e, t0)
	case ExprSub:
		c.emitBinary("sub", e, t0)
	case ExprMul:
		c.emitBinary("mul", e, t0)
	case ExprDiv:
		c.emitBinary("sdiv", e, t0)

	case ExprMod:
		t1, t2 := scratchPair(t0)
		c.emitOperands(e, t1, t2)
		c.emit("  sdiv x%d, x%d, x%d", t0, t1, t2)
		c.emit("  msub x%d, x%d, x%d, x%d", t0, t0, t2, t1)

	case ExprCond:
		c.emitCond(e, t0)

	case ExprAssign, ExprAddAssign, ExprSubAssign:
		c.emitAssign(e, t0)

	case ExprMemcpy:
		c.emitMemcpy(e)

	case ExprCast:
		c.emitCast(e, t0)

	default:
		panic("unreachable expr kind in emitExpr")
	}
}

// scratchPair returns two scratch register numbers distinct from t0 and
// from each other, drawn from the {0, 1, 2} working set emitExpr uses.
func scratchPair(t0 int) (int, int) {
	var free []int
	for _, r := range [3]int{0, 1, 2} {
		if r != t0 {
			free = append(free, r)
		}
	}
	return free[0], free[1]
}

func (c *Context) emitStringLiteral(e *Expr, t0 int) {
	c.strLitCount++
	label := c.strLitCount
	c.emitRaw("  .data")
	c.emitRaw(".str." + strconv.Itoa(label) + ":")

	var b []byte
	b = append(b, "  .asciz \""...)
	for i := 0; i < len(e.StrValue); i++ {
		ch := e.StrValue[i]
		if !isPrint(rune(ch)) || ch == '"' {
			b = append(b, []byte(octalEscape(ch))...)
		} else {
			b = append(b, ch)
		}
	}
	b = append(b, '"')
	c.emitRaw(string(b))

	c.emitRaw("  .text")
	c.emit("  adrp x%d, .str.%d@PAGE", t0, label)
	c.emit("  add x%d, x%d, .str.%d@PAGEOFF", t0, t0, label)
}

func octalEscape(ch byte) string {
	digits := "01234567"
	return "\\" + string(digits[(ch>>6)&7]) + string(digits[(ch>>3)&7]) + string(digits[ch&7])
}

func (c *Context) emitCall(e *Expr, t0 int) {
	sym := e.Sym
	paramCount := len(sym.ParamTypes)
	argOffset := 0

	for i, arg := range e.Args {
		c.emitExpr(arg, 0)
		if i >= paramCount {
			c.emitArgPush(&argOffset, 0)
		} else {
			c.emitPush(0)
		}
	}

	// Positional arguments were pushed left to right; pop them in the
	// reverse order so they land in x0..x(paramCount-1).
	regs := make([]int, paramCount)
	for i := range regs {
		regs[i] = i
	}
	for _, reg := range lo.Reverse(regs) {
		c.emitPop(reg)
	}

	c.emit("  bl _%s", sym.Name)
	if e.Type.Kind != TypeVoid {
		c.emitSignExtend(e.Type, t0, 0)
	}
}

func (c *Context) emitCond(e *Expr, t0 int) {
	label := c.nextLabel()
	c.emitLabel(label, "if")
	c.emitExpr(e.Args[0], t0)
	c.emit("  cmp x%d, #0", t0)
	c.emit("  cbz x%d, .L%d.else", t0, label)
	c.emitLabel(label, "then")
	c.emitExpr(e.Args[1], t0)
	c.emit("  b .L%d.end", label)
	c.emitLabel(label, "else")
	c.emitExpr(e.Args[2], t0)
	c.emitLabel(label, "end")
}

func (c *Context) emitAssign(e *Expr, t0 int) {
	t1, t2 := scratchPair(t0)
	lhs := e.Args[0]
	c.emitOperandsLvalue(e, t0, t1)
	if e.Kind == ExprAddAssign || e.Kind == ExprSubAssign {
		c.emit("  %s%d, [x%d]", ldrx(lhs.Type), t2, t0)
		switch e.Kind {
		case ExprAddAssign:
			c.emit("  add x%d, x%d, x%d", t1, t2, t1)
		case ExprSubAssign:
			c.emit("  sub x%d, x%d, x%d", t1, t2, t1)
		}
	}
	c.emit("  %s%d, [x%d]", strx(lhs.Type), t1, t0)
}

func (c *Context) emitMemcpy(e *Expr) {
	c.emitOperands(e, 0, 1)
	c.emit("  mov x2, #%d", e.Args[0].Type.Base.Size())
	c.emit("  bl _memcpy")
}

func (c *Context) emitCast(e *Expr, t0 int) {
	target := e.Type
	source := e.Args[0].Type
	c.emitExpr(e.Args[0], t0)
	switch {
	case target.Kind == TypeBool:
		c.emit("  cmp x%d, #0", t0)
		c.emit("  cset w%d, ne", t0)
	case target.Size() < source.Size():
		c.emitSignExtend(target, t0, t0)
	}
}

// emitFuncPrologue writes the symbol label, saves the frame, and copies
// parameters from their argument registers into their stack slots.
func (c *Context) emitFuncPrologue(name string) {
	c.emit("  .global _%s", name)
	c.emitRaw("_" + name + ":")
	c.emit("  stp x29, x30, [sp, #-16]!")
	c.emit("  mov x29, sp")
	c.emit("  sub sp, sp, #%d", FrameSize)
	c.emitParamCopy()
}

func (c *Context) emitFuncEpilogue(name string) {
	c.emitRaw(".return." + name + ":")
	c.emit("  add sp, sp, #%d", FrameSize)
	c.emit("  ldp x29, x30, [sp], #16")
	c.emit("  ret")
}

func (c *Context) emitParamCopy() {
	fn := c.syms.CurrentFunc
	for i, name := range fn.ParamNames {
		sym := c.syms.Find(name)
		c.emit("  %s%d, [fp, #-%d] ; %s", strx(sym.Type), i, sym.FrameOffset, sym.Name)
	}
}

func (c *Context) emitGlobal(name string, typ *Type) {
	c.emit("  .globl _%s", name)
	c.emit(".zerofill __DATA,__common,_%s,%d,%d", name, typ.Size(), typ.Align())
}

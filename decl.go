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

// parseStmt parses and immediately emits one statement. Like the rest of
// cogc, there is no statement AST: each syntactic form is fully lowered
// to assembly before parseStmt returns.
func (c *Context) parseStmt() {
	switch {
	case c.eat("{"):
		c.syms.EnterScope(c, c.tokPos)
		for !c.eat("}") {
			c.parseStmt()
		}
		c.syms.LeaveScope()

	case c.eat("var"):
		c.parseVarStmt()

	case c.eat("if"):
		c.parseIfStmt()

	case c.eat("while"):
		c.parseWhileStmt()

	case c.eat("return"):
		c.parseReturnStmt()

	default:
		e := c.parseExpr(0)
		c.emitExpr(e, 0)
		c.expect(";")
	}
}

func (c *Context) parseVarStmt() {
	name := c.parseIdent()
	var declared *Type
	if c.eat(":") {
		declared = c.parseType()
	}
	var init *Expr
	if c.eat("=") {
		init = c.parseExpr(0)
	}
	c.expect(";")

	var typ *Type
	switch {
	case declared != nil && init != nil:
		init = checkType(c, init, declared)
		typ = declared
	case declared != nil:
		typ = declared
	case init != nil:
		typ = init.Type
	default:
		c.fail(c.tokPos, "Type or initializer expected.")
	}
	if typ.Size() == noSize {
		c.fail(c.tokPos, "Variable must have a size.")
	}

	sym := c.syms.AddLocal(c, name, typ, c.tokPos)
	if init != nil {
		lhs := mkExpr(ExprVar, sym.Type, c.tokPos)
		lhs.Sym = sym
		c.emitExpr(buildBinaryExpr(c, lhs, ExprAssign, init), 0)
	}
}

func (c *Context) parseIfStmt() {
	label := c.nextLabel()
	c.expect("(")
	cond := c.parseExpr(0)
	c.expect(")")
	cond = checkTypeBool(c, cond)

	c.emitLabel(label, "if")
	c.emitExpr(cond, 0)
	c.emit("  cbz x0, .L%d.else", label)
	c.emitLabel(label, "then")
	c.parseStmt()
	c.emit("  b .L%d.end", label)
	c.emitLabel(label, "else")
	if c.eat("else") {
		c.parseStmt()
	}
	c.emitLabel(label, "end")
}

func (c *Context) parseWhileStmt() {
	label := c.nextLabel()
	c.expect("(")
	cond := c.parseExpr(0)
	c.expect(")")
	cond = checkTypeBool(c, cond)

	c.emitLabel(label, "while")
	c.emitExpr(cond, 0)
	c.emit("  cbz x0, .L%d.end", label)
	c.emitLabel(label, "do")
	c.parseStmt()
	c.emit("  b .L%d.while", label)
	c.emitLabel(label, "end")
}

func (c *Context) parseReturnStmt() {
	if !c.at(";") {
		e := c.parseExpr(0)
		e = checkType(c, e, c.syms.CurrentFunc.Type)
		c.emitExpr(e, 0)
	}
	c.expect(";")
	c.emit("  b .return.%s", c.syms.CurrentFunc.Name)
}

// parseParam parses one `name: Type` parameter and binds it as a local in
// the function's (already-entered) scope.
func (c *Context) parseParam(fn *Symbol) {
	startPos := c.tokPos
	name := c.parseIdent()
	c.expect(":")
	typ := c.parseType()
	if len(fn.ParamTypes) == MaxParams {
		c.fail(startPos, "Too many parameters.")
	}
	if !typ.IsScalar() {
		c.fail(startPos, "Invalid parameter type.")
	}
	fn.ParamNames = append(fn.ParamNames, name)
	fn.ParamTypes = append(fn.ParamTypes, typ)
	c.syms.AddLocal(c, name, typ, startPos)
}

func (c *Context) parseReturnType() *Type {
	typ := VoidType()
	if c.eat(":") {
		typ = c.parseType()
	}
	if typ.Kind != TypeVoid && !typ.IsScalar() {
		c.fail(c.tokPos, "Illegal return type.")
	}
	return typ
}

// parseDecl parses and fully emits one top-level declaration: func, var,
// const, struct, or enum. Nothing is retained afterward beyond the symbol
// table entry it adds.
func (c *Context) parseDecl() {
	startPos := c.tokPos

	isExtern := false
	if c.eat("extern") {
		if !c.at("func") && !c.at("var") && !c.at("struct") {
			c.fail(c.tokPos, "External declaration expected.")
		}
		isExtern = true
	}

	switch {
	case c.eat("func"):
		c.parseFuncDecl(isExtern, startPos)
	case c.eat("var"):
		c.parseGlobalVarDecl(isExtern, startPos)
	case c.eat("const"):
		c.parseConstDecl(startPos)
	case c.eat("struct"):
		c.parseStructDecl(isExtern, startPos)
	case c.eat("enum"):
		c.parseEnumDecl()
	default:
		c.fail(c.tokPos, "Declaration expected.")
	}
}

func (c *Context) parseFuncDecl(isExtern bool, startPos Position) {
	name := c.parseIdent()

	fn := &Symbol{Kind: SymFunc, Name: name, IsExtern: isExtern}
	c.syms.CurrentFunc = fn
	c.syms.EnterScope(c, startPos)

	c.expect("(")
	for !c.at(")") && !c.at("...") {
		c.parseParam(fn)
		c.parseComma(")")
	}
	if c.eat("...") {
		fn.IsVariadic = true
	}
	c.expect(")")
	fn.Type = c.parseReturnType()

	if c.at("{") {
		fn.Defined = true
	}

	// A body is registered before it is parsed so recursive calls resolve.
	// That registration either merges into a matching prior declaration in
	// an outer scope, or adds fn inside the function scope, where
	// LeaveScope drops it again and it is re-added below.
	merged := false
	if !isExtern && c.at("{") {
		c.syms.AddFunc(c, fn, startPos)
		merged = c.syms.Find(name) != fn
		c.emitFuncPrologue(name)
		c.parseStmt()
		c.emitFuncEpilogue(name)
	} else {
		c.expect(";")
	}
	c.syms.LeaveScope()
	if !merged {
		c.syms.AddFunc(c, fn, startPos)
	}

	c.syms.CurrentFunc = nil
}

func (c *Context) parseGlobalVarDecl(isExtern bool, startPos Position) {
	name := c.parseIdent()
	c.expect(":")
	typ := c.parseType()
	c.expect(";")
	c.syms.AddGlobal(c, isExtern, name, typ, startPos)
	if !isExtern {
		c.emitGlobal(name, typ)
	}
}

func (c *Context) parseConstDecl(startPos Position) {
	name := c.parseIdent()
	c.expect("=")
	value := c.parseConstExpr()
	c.expect(";")
	c.syms.AddConst(c, name, value, startPos)
}

func (c *Context) parseStructDecl(isExtern bool, startPos Position) {
	name := c.parseIdent()
	typ := NewStructType(name)
	c.syms.AddType(c, name, typ, startPos)
	if !isExtern {
		c.expect("{")
		for !c.eat("}") {
			fieldPos := c.tokPos
			fieldName := c.parseIdent()
			c.expect(":")
			fieldType := c.parseType()
			typ.AddField(c, fieldPos, fieldName, fieldType)
			c.parseComma("}")
		}
	} else {
		c.expect(";")
	}
}

func (c *Context) parseEnumDecl() {
	c.expect("{")
	currVal := 0
	for !c.eat("}") {
		namePos := c.tokPos
		name := c.parseIdent()
		if c.eat("=") {
			currVal = c.parseConstExpr()
		}
		c.parseComma("}")

		c.syms.AddConst(c, name, currVal, namePos)
		currVal++
	}
}

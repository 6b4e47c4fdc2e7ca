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

// constEval recursively evaluates a tiny constant subset: integer
// literals, unary negation, and addition. Anything else — including the
// richer expressions parseExpr is otherwise happy to build — is
// rejected, since array lengths, const/enum values, and sizeof arguments
// must be resolvable at parse time with no runtime support.
func constEval(c *Context, e *Expr) int {
	switch e.Kind {
	case ExprInt:
		return e.IntValue
	case ExprNeg:
		return -constEval(c, e.Args[0])
	case ExprAdd:
		return constEval(c, e.Args[0]) + constEval(c, e.Args[1])
	default:
		c.fail(e.Pos, "Constant evaluation failed.")
		panic("unreachable")
	}
}

// parseConstExpr parses one expression and folds it immediately.
func (c *Context) parseConstExpr() int {
	return constEval(c, c.parseExpr(0))
}

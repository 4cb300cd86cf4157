package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/fixed"
	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/vm"
)

// maxParseDepth bounds expression/statement nesting so that pathological
// input fails with a clean error instead of exhausting the goroutine stack.
const maxParseDepth = 200

// Parser consumes the flat token slice produced by the Lexer and builds a Script.
//
// Grammar:
//
//	program        = (functionDecl | statement)* EOF
//	functionDecl   = type IDENTIFIER "(" params ")" block
//	statement      = varDecl | returnStmt | block | if | while | for | exprStmt
//	varDecl        = type IDENTIFIER ("=" expression)? ";"
//	returnStmt     = "return" expression? ";"
//	exprStmt       = expression ";"
//	expression     = assignment
//	assignment     = IDENTIFIER assignOp assignment | ternary
//	ternary        = logical_or ("?" expression ":" assignment)?
//	logical_or     = logical_and ("||" logical_and)*
//	logical_and    = bitwise_or ("&&" bitwise_or)*
//	bitwise_or     = bitwise_xor ("|" bitwise_xor)*
//	bitwise_xor    = bitwise_and ("^" bitwise_and)*
//	bitwise_and    = equality ("&" equality)*
//	equality       = relational (("=="|"!=") relational)*
//	relational     = shift (("<"|">"|"<="|">=") shift)*
//	shift          = additive (("<<"|">>") additive)*
//	additive       = multiplicative (("+"|"-") multiplicative)*
//	multiplicative = unary (("*"|"/"|"%") unary)*
//	unary          = ("-"|"!"|"~") unary | postfix
//	postfix        = primary ("." IDENTIFIER | "(" args ")" | "++" | "--")*
//	primary        = INT_LIT | FLOAT_LIT | "true" | "false" | IDENTIFIER
//	               | type "(" args ")" | "(" expression ")"
//
// Compound assignments (x += e) are desugared here into plain assignments
// (x = x + e) so the checker and code generator only see one assignment form.
type Parser struct {
	tokens      []Token
	pos         int
	depth       int
	sourceLines []string
}

func NewParser(tokens []Token, rawSource string) *Parser {
	return &Parser{tokens: tokens, sourceLines: strings.Split(rawSource, "\n")}
}

// Parse is the convenience entry point: lex, parse, return the Script.
func Parse(src string) (*Script, error) {
	return NewParser(Lex(src), src).ParseScript()
}

// fmtError wraps an error message with the source line where the token appears.
func (p *Parser) fmtError(tok Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	lineIdx := tok.Line - 1 // Lines are 1-based

	snippet := "<source unavailable>"
	if lineIdx >= 0 && lineIdx < len(p.sourceLines) {
		snippet = strings.TrimSpace(p.sourceLines[lineIdx])
	}

	return fmt.Errorf("line %d: %s\n  |> %s", tok.Line, msg, snippet)
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

// peekAt returns the token at the given offset from the current position.
func (p *Parser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos+offset]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.advance()
	if tok.Type != tt {
		return tok, p.fmtError(tok, "expected %s, got %s (%q)", tt, tok.Type, tok.Lexeme)
	}
	return tok, nil
}

// enter bumps the nesting depth and fails when the guard is exceeded.
func (p *Parser) enter() error {
	p.depth++
	if p.depth > maxParseDepth {
		return p.fmtError(p.peek(), "expression nesting too deep (limit %d)", maxParseDepth)
	}
	return nil
}

func (p *Parser) leave() { p.depth-- }

// tokenToValueType maps a type keyword token to the value type it names.
func tokenToValueType(tt TokenType) (vm.ValueType, bool) {
	switch tt {
	case FLOAT:
		return vm.TypeFixed, true
	case INT:
		return vm.TypeInt, true
	case BOOL:
		return vm.TypeBool, true
	case VEC2:
		return vm.TypeVec2, true
	case VEC3:
		return vm.TypeVec3, true
	case VEC4:
		return vm.TypeVec4, true
	case MAT3:
		return vm.TypeMat3, true
	case VOID:
		return vm.TypeVoid, true
	}
	return vm.TypeVoid, false
}

// ParseScript parses the whole token stream. Function definitions may appear
// anywhere at the top level; every other top-level statement becomes part of
// the implicit entry function, in source order.
func (p *Parser) ParseScript() (*Script, error) {
	script := &Script{}
	for p.peek().Type != EOF {
		if p.looksLikeFunctionDecl() {
			fn, err := p.parseFunctionDecl()
			if err != nil {
				return nil, err
			}
			script.Funcs = append(script.Funcs, fn)
			continue
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			script.Top = append(script.Top, stmt)
		}
	}
	return script, nil
}

// looksLikeFunctionDecl reports whether the upcoming tokens are
// "type IDENTIFIER (" which starts a function definition rather than a
// variable declaration.
func (p *Parser) looksLikeFunctionDecl() bool {
	return isTypeToken(p.peek().Type) &&
		p.peekAt(1).Type == IDENTIFIER &&
		p.peekAt(2).Type == LPAREN
}

//  Expressions

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	return p.parseAssignment()
}

// parseAssignment handles  IDENTIFIER = expr  and the compound forms.
// Assignment is right-associative: a = b = c assigns c to both.
func (p *Parser) parseAssignment() (Expr, error) {
	if p.peek().Type == IDENTIFIER && isAssignOp(p.peekAt(1).Type) {
		nameTok := p.advance()
		opTok := p.advance()

		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}

		target := &VarRef{exprBase: exprBase{Line: nameTok.Line}, Name: nameTok.Lexeme, Slot: -1, Input: -1}
		if binOp, ok := compoundOp(opTok.Type); ok {
			// x += e  becomes  x = (x + e)
			read := &VarRef{exprBase: exprBase{Line: nameTok.Line}, Name: nameTok.Lexeme, Slot: -1, Input: -1}
			value = &BinaryExpr{exprBase: exprBase{Line: opTok.Line}, Op: binOp, Left: read, Right: value}
		}
		return &AssignExpr{exprBase: exprBase{Line: opTok.Line}, Target: target, Value: value}, nil
	}
	return p.parseTernary()
}

// parseTernary handles cond ? then : else
func (p *Parser) parseTernary() (Expr, error) {
	cond, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != QUESTION {
		return cond, nil
	}
	qTok := p.advance()

	then, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(COLON); err != nil {
		return nil, err
	}
	els, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return &TernaryExpr{exprBase: exprBase{Line: qTok.Line}, Cond: cond, Then: then, Else: els}, nil
}

// parseLogicalOr handles ||
func (p *Parser) parseLogicalOr() (Expr, error) {
	expr, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == OR_LOGICAL {
		op := p.advance()
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		expr = &LogicalExpr{exprBase: exprBase{Line: op.Line}, Op: op.Type, Left: expr, Right: right}
	}
	return expr, nil
}

// parseLogicalAnd handles &&
func (p *Parser) parseLogicalAnd() (Expr, error) {
	expr, err := p.parseBitwiseOr()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == AND_LOGICAL {
		op := p.advance()
		right, err := p.parseBitwiseOr()
		if err != nil {
			return nil, err
		}
		expr = &LogicalExpr{exprBase: exprBase{Line: op.Line}, Op: op.Type, Left: expr, Right: right}
	}
	return expr, nil
}

// parseBitwiseOr handles | (lowest precedence among bitwise ops)
func (p *Parser) parseBitwiseOr() (Expr, error) {
	expr, err := p.parseBitwiseXor()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == PIPE {
		op := p.advance()
		right, err := p.parseBitwiseXor()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{exprBase: exprBase{Line: op.Line}, Op: op.Type, Left: expr, Right: right}
	}
	return expr, nil
}

// parseBitwiseXor handles ^
func (p *Parser) parseBitwiseXor() (Expr, error) {
	expr, err := p.parseBitwiseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == CARET {
		op := p.advance()
		right, err := p.parseBitwiseAnd()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{exprBase: exprBase{Line: op.Line}, Op: op.Type, Left: expr, Right: right}
	}
	return expr, nil
}

// parseBitwiseAnd handles &
func (p *Parser) parseBitwiseAnd() (Expr, error) {
	expr, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == AND {
		op := p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{exprBase: exprBase{Line: op.Line}, Op: op.Type, Left: expr, Right: right}
	}
	return expr, nil
}

// parseEquality handles == and !=
func (p *Parser) parseEquality() (Expr, error) {
	expr, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == EQUALS || p.peek().Type == NOT_EQ {
		op := p.advance()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{exprBase: exprBase{Line: op.Line}, Op: op.Type, Left: expr, Right: right}
	}
	return expr, nil
}

// parseRelational handles <, >, <=, >=
func (p *Parser) parseRelational() (Expr, error) {
	expr, err := p.parseShift()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == LESS || p.peek().Type == GREATER ||
		p.peek().Type == LESS_EQ || p.peek().Type == GREATER_EQ {
		op := p.advance()
		right, err := p.parseShift()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{exprBase: exprBase{Line: op.Line}, Op: op.Type, Left: expr, Right: right}
	}
	return expr, nil
}

// parseShift handles << and >>
func (p *Parser) parseShift() (Expr, error) {
	expr, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == SHL_OP || p.peek().Type == SHR_OP {
		op := p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{exprBase: exprBase{Line: op.Line}, Op: op.Type, Left: expr, Right: right}
	}
	return expr, nil
}

// parseAdditive handles + and -
func (p *Parser) parseAdditive() (Expr, error) {
	expr, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		tt := p.peek().Type
		if tt != PLUS && tt != MINUS {
			break
		}
		op := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{exprBase: exprBase{Line: op.Line}, Op: op.Type, Left: expr, Right: right}
	}
	return expr, nil
}

// parseMultiplicative handles *, / and %
func (p *Parser) parseMultiplicative() (Expr, error) {
	expr, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tt := p.peek().Type
		if tt != STAR && tt != SLASH && tt != PERCENT {
			break
		}
		op := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{exprBase: exprBase{Line: op.Line}, Op: op.Type, Left: expr, Right: right}
	}
	return expr, nil
}

// parseUnary handles prefix -, ! and ~
func (p *Parser) parseUnary() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if p.peek().Type == MINUS || p.peek().Type == NOT || p.peek().Type == TILDE {
		op := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{exprBase: exprBase{Line: op.Line}, Op: op.Type, Right: right}, nil
	}
	return p.parsePostfix()
}

// parsePostfix handles swizzle access, function calls, and ++/--
func (p *Parser) parsePostfix() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.peek().Type {
		case DOT:
			dotTok := p.advance()
			memberTok, err := p.expect(IDENTIFIER)
			if err != nil {
				return nil, err
			}
			expr = &SwizzleExpr{
				exprBase: exprBase{Line: dotTok.Line},
				Base:     expr,
				Letters:  memberTok.Lexeme,
			}

		case LPAREN:
			varRef, ok := expr.(*VarRef)
			if !ok {
				return nil, p.fmtError(p.peek(), "expected function name before '('")
			}
			lpTok := p.advance()
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			expr = &CallExpr{
				exprBase:  exprBase{Line: lpTok.Line},
				Name:      varRef.Name,
				Args:      args,
				Builtin:   -1,
				FuncIndex: -1,
			}

		case PLUS_PLUS, MINUS_MINUS:
			op := p.advance()
			varRef, ok := expr.(*VarRef)
			if !ok {
				return nil, p.fmtError(op, "%s requires a variable operand", op.Type)
			}
			expr = &PostfixExpr{exprBase: exprBase{Line: op.Line}, Op: op.Type, Left: varRef}

		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseCallArgs() ([]Expr, error) {
	var args []Expr
	if p.peek().Type != RPAREN {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.peek().Type != COMMA {
				break
			}
			p.advance()
		}
	}

	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

// parsePrimary handles literals, variables, constructors, and parentheses.
func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case INT_LIT:
		p.advance()
		val, err := strconv.ParseInt(tok.Lexeme, 10, 32)
		if err != nil {
			return nil, p.fmtError(tok, "integer %q out of 32-bit range", tok.Lexeme)
		}
		return &Literal{
			exprBase: exprBase{Line: tok.Line},
			Kind:     LitInt,
			Val:      vm.IntVal(int32(val)),
		}, nil

	case FLOAT_LIT:
		p.advance()
		val, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.fmtError(tok, "malformed number %q", tok.Lexeme)
		}
		return &Literal{
			exprBase: exprBase{Line: tok.Line},
			Kind:     LitFixed,
			Val:      vm.FixedVal(fixed.FromFloat(val)),
		}, nil

	case TRUE, FALSE:
		p.advance()
		return &Literal{
			exprBase: exprBase{Line: tok.Line},
			Kind:     LitBool,
			Val:      vm.BoolVal(tok.Type == TRUE),
		}, nil

	case IDENTIFIER:
		p.advance()
		return &VarRef{exprBase: exprBase{Line: tok.Line}, Name: tok.Lexeme, Slot: -1, Input: -1}, nil

	case VEC2, VEC3, VEC4, MAT3, FLOAT, INT:
		// Constructor call: vec3(1.0, 0.5, 0.0), float(i). The checker
		// resolves widths and argument shapes.
		p.advance()
		if _, err := p.expect(LPAREN); err != nil {
			return nil, err
		}
		args, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}
		return &CallExpr{
			exprBase:  exprBase{Line: tok.Line},
			Name:      tok.Lexeme,
			Args:      args,
			Builtin:   -1,
			FuncIndex: -1,
		}, nil

	case LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	case ILLEGAL:
		return nil, p.fmtError(tok, "unexpected character %q", tok.Lexeme)

	default:
		return nil, p.fmtError(tok, "expected expression, got %s (%q)", tok.Type, tok.Lexeme)
	}
}

//  Statements

func (p *Parser) parseStatement() (Stmt, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	tok := p.peek()
	switch tok.Type {
	case LBRACE:
		p.advance()
		return p.parseBlock()

	case IF:
		p.advance()
		return p.parseIf(tok)

	case WHILE:
		p.advance()
		return p.parseWhile(tok)

	case FOR:
		p.advance()
		return p.parseFor(tok)

	case RETURN:
		p.advance()
		return p.parseReturn(tok)

	case SEMICOLON:
		// Empty statement.
		p.advance()
		return nil, nil

	case ILLEGAL:
		return nil, p.fmtError(tok, "unexpected character %q", tok.Lexeme)

	default:
		if isTypeToken(tok.Type) && p.peekAt(1).Type == IDENTIFIER && p.peekAt(2).Type != LPAREN {
			return p.parseVarDecl()
		}
		return p.parseExprStmt()
	}
}

// parseVarDecl parses  type IDENTIFIER ("=" expr)? ";"
func (p *Parser) parseVarDecl() (Stmt, error) {
	typeTok := p.advance()
	declType, ok := tokenToValueType(typeTok.Type)
	if !ok {
		return nil, p.fmtError(typeTok, "expected type, got %s", typeTok.Type)
	}
	if declType == vm.TypeVoid {
		return nil, p.fmtError(typeTok, "cannot declare a void variable")
	}

	nameTok, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}

	var initExpr Expr
	if p.peek().Type == ASSIGN {
		p.advance()
		initExpr, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return &VarDeclStmt{
		Line:     typeTok.Line,
		DeclType: declType,
		Name:     nameTok.Lexeme,
		Init:     initExpr,
		Slot:     -1,
	}, nil
}

// parseReturn parses  return expr? ;
// The leading RETURN token has already been consumed.
func (p *Parser) parseReturn(retTok Token) (Stmt, error) {
	if p.peek().Type == SEMICOLON {
		p.advance()
		return &ReturnStmt{Line: retTok.Line}, nil
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return &ReturnStmt{Line: retTok.Line, Expr: expr}, nil
}

// parseBlock parses { stmt1; stmt2; ... }
// The leading LBRACE token has already been consumed.
func (p *Parser) parseBlock() (Stmt, error) {
	var stmts []Stmt
	for p.peek().Type != RBRACE && p.peek().Type != EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	if _, err := p.expect(RBRACE); err != nil {
		return nil, err
	}
	return &BlockStmt{Stmts: stmts}, nil
}

// parseIf parses if ( cond ) body [ else elseBody ]
// kw is the already-consumed IF token.
func (p *Parser) parseIf(kw Token) (Stmt, error) {
	ifLine := kw.Line
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	var elseBody Stmt
	if p.peek().Type == ELSE {
		p.advance()
		elseBody, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	return &IfStmt{Line: ifLine, Condition: cond, Body: body, ElseBody: elseBody}, nil
}

// parseWhile parses while ( cond ) body
// kw is the already-consumed WHILE token.
func (p *Parser) parseWhile(kw Token) (Stmt, error) {
	whileLine := kw.Line
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Line: whileLine, Condition: cond, Body: body}, nil
}

// parseFor parses for ( init ; cond ; post ) body
// kw is the already-consumed FOR token. All three header parts are optional.
func (p *Parser) parseFor(kw Token) (Stmt, error) {
	forLine := kw.Line
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}

	var initStmt Stmt
	var err error
	if p.peek().Type == SEMICOLON {
		p.advance()
	} else if isTypeToken(p.peek().Type) {
		initStmt, err = p.parseVarDecl()
		if err != nil {
			return nil, err
		}
	} else {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		initStmt = &ExprStmt{Expr: expr}
	}

	var cond Expr
	if p.peek().Type != SEMICOLON {
		cond, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}

	var post Stmt
	if p.peek().Type != RPAREN {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		post = &ExprStmt{Expr: expr}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ForStmt{Line: forLine, Init: initStmt, Cond: cond, Post: post, Body: body}, nil
}

// parseExprStmt parses an expression evaluated for its side effects.
func (p *Parser) parseExprStmt() (Stmt, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return &ExprStmt{Expr: expr}, nil
}

// parseFunctionDecl parses  type name(params) { ... }
func (p *Parser) parseFunctionDecl() (*FunctionDecl, error) {
	typeTok := p.advance()
	retType, ok := tokenToValueType(typeTok.Type)
	if !ok {
		return nil, p.fmtError(typeTok, "expected return type, got %s", typeTok.Type)
	}

	nameTok, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}

	var params []Param
	if p.peek().Type != RPAREN {
		for {
			paramTypeTok := p.advance()
			paramType, ok := tokenToValueType(paramTypeTok.Type)
			if !ok || paramType == vm.TypeVoid {
				return nil, p.fmtError(paramTypeTok, "expected parameter type, got %s (%q)",
					paramTypeTok.Type, paramTypeTok.Lexeme)
			}
			paramName, err := p.expect(IDENTIFIER)
			if err != nil {
				return nil, err
			}
			params = append(params, Param{Name: paramName.Lexeme, Type: paramType, Line: paramName.Line})

			if p.peek().Type != COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}

	if _, err := p.expect(LBRACE); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &FunctionDecl{
		Line:   typeTok.Line,
		Name:   nameTok.Lexeme,
		Params: params,
		Return: retType,
		Body:   body.(*BlockStmt),
		Index:  -1,
	}, nil
}

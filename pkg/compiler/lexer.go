package compiler

import "unicode"

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"float":  FLOAT,
	"int":    INT,
	"bool":   BOOL,
	"vec2":   VEC2,
	"vec3":   VEC3,
	"vec4":   VEC4,
	"mat3":   MAT3,
	"void":   VOID,
	"if":     IF,
	"else":   ELSE,
	"while":  WHILE,
	"for":    FOR,
	"return": RETURN,
	"true":   TRUE,
	"false":  FALSE,
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
	}
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// skipLineComment discards everything from the current position to end-of-line.
// The opening "//" must already have been consumed.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

// skipBlockComment discards everything up to and including the closing "*/".
// An unterminated comment simply runs to end of input; lexing never fails.
func (l *Lexer) skipBlockComment() {
	for l.pos < len(l.src) {
		if l.peek() == '*' && l.peek2() == '/' {
			l.advance() // *
			l.advance() // /
			return
		}
		l.advance()
	}
}

// scanIdent collects a full identifier or keyword token.
// The first character (letter or '_') must still be at l.peek().
func (l *Lexer) scanIdent() Token {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	tt := IDENTIFIER
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: lexeme, Line: line}
}

// scanNumber collects an integer or fractional literal. A '.' only joins the
// number when a digit follows it, so "v.x" style swizzles still lex as DOT.
// The first digit must still be at l.peek().
func (l *Lexer) scanNumber() Token {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && unicode.IsDigit(l.peek2()) {
		l.advance() // .
		for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
			l.advance()
		}
		return Token{Type: FLOAT_LIT, Lexeme: string(l.src[start:l.pos]), Line: line}
	}
	return Token{Type: INT_LIT, Lexeme: string(l.src[start:l.pos]), Line: line}
}

// nextToken skips whitespace/comments and returns the next Token.
func (l *Lexer) nextToken() Token {
	// Skip whitespace and both comment styles in a loop so that
	// a comment followed immediately by more whitespace is handled.
	for {
		l.skipWhitespace()
		if l.pos >= len(l.src) {
			return Token{Type: EOF, Lexeme: "", Line: l.line}
		}
		if l.peek() == '/' && l.peek2() == '/' {
			l.advance()
			l.advance()
			l.skipLineComment()
			continue
		}
		if l.peek() == '/' && l.peek2() == '*' {
			l.advance()
			l.advance()
			l.skipBlockComment()
			continue
		}
		break
	}

	ch := l.peek()
	line := l.line

	if unicode.IsLetter(ch) || ch == '_' {
		return l.scanIdent()
	}
	if unicode.IsDigit(ch) {
		return l.scanNumber()
	}

	l.advance() // consume the character before the switch
	switch ch {
	case '{':
		return Token{LBRACE, "{", line}
	case '}':
		return Token{RBRACE, "}", line}
	case '(':
		return Token{LPAREN, "(", line}
	case ')':
		return Token{RPAREN, ")", line}
	case '.':
		return Token{DOT, ".", line}
	case ';':
		return Token{SEMICOLON, ";", line}
	case ',':
		return Token{COMMA, ",", line}
	case ':':
		return Token{COLON, ":", line}
	case '?':
		return Token{QUESTION, "?", line}

	case '+':
		if l.peek() == '+' {
			l.advance()
			return Token{PLUS_PLUS, "++", line}
		}
		if l.peek() == '=' {
			l.advance()
			return Token{PLUS_ASSIGN, "+=", line}
		}
		return Token{PLUS, "+", line}
	case '-':
		if l.peek() == '-' {
			l.advance()
			return Token{MINUS_MINUS, "--", line}
		}
		if l.peek() == '=' {
			l.advance()
			return Token{MINUS_ASSIGN, "-=", line}
		}
		return Token{MINUS, "-", line}
	case '*':
		if l.peek() == '=' {
			l.advance()
			return Token{STAR_ASSIGN, "*=", line}
		}
		return Token{STAR, "*", line}
	case '/':
		if l.peek() == '=' {
			l.advance()
			return Token{SLASH_ASSIGN, "/=", line}
		}
		return Token{SLASH, "/", line}
	case '%':
		if l.peek() == '=' {
			l.advance()
			return Token{PERCENT_ASSIGN, "%=", line}
		}
		return Token{PERCENT, "%", line}
	case '&':
		if l.peek() == '&' {
			l.advance()
			return Token{AND_LOGICAL, "&&", line}
		}
		if l.peek() == '=' {
			l.advance()
			return Token{AND_ASSIGN, "&=", line}
		}
		return Token{AND, "&", line}
	case '|':
		if l.peek() == '|' {
			l.advance()
			return Token{OR_LOGICAL, "||", line}
		}
		if l.peek() == '=' {
			l.advance()
			return Token{PIPE_ASSIGN, "|=", line}
		}
		return Token{PIPE, "|", line}
	case '^':
		if l.peek() == '=' {
			l.advance()
			return Token{CARET_ASSIGN, "^=", line}
		}
		return Token{CARET, "^", line}
	case '~':
		return Token{TILDE, "~", line}
	case '!':
		if l.peek() == '=' {
			l.advance()
			return Token{NOT_EQ, "!=", line}
		}
		return Token{NOT, "!", line}
	case '<':
		if l.peek() == '<' {
			l.advance()
			if l.peek() == '=' {
				l.advance()
				return Token{SHL_ASSIGN, "<<=", line}
			}
			return Token{SHL_OP, "<<", line}
		}
		if l.peek() == '=' {
			l.advance()
			return Token{LESS_EQ, "<=", line}
		}
		return Token{LESS, "<", line}
	case '>':
		if l.peek() == '>' {
			l.advance()
			if l.peek() == '=' {
				l.advance()
				return Token{SHR_ASSIGN, ">>=", line}
			}
			return Token{SHR_OP, ">>", line}
		}
		if l.peek() == '=' {
			l.advance()
			return Token{GREATER_EQ, ">=", line}
		}
		return Token{GREATER, ">", line}
	case '=':
		if l.peek() == '=' { // lookahead: distinguish = vs ==
			l.advance()
			return Token{EQUALS, "==", line}
		}
		return Token{ASSIGN, "=", line}
	default:
		return Token{ILLEGAL, string(ch), line}
	}
}

// Lex tokenises src and returns all tokens including the final EOF token.
// Lexing never fails: unrecognized characters become ILLEGAL tokens which
// the parser reports as parse errors with their source location.
func Lex(src string) []Token {
	l := newLexer(src)
	var tokens []Token
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}

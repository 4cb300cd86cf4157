package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF     TokenType = iota // sentinel: end of input
	ILLEGAL                  // unrecognized character; reported by the parser

	// Literals
	IDENTIFIER // variable / function name
	INT_LIT    // decimal integer literal
	FLOAT_LIT  // fractional literal, e.g. 1.5

	// Type keywords
	FLOAT // "float" (Q16.16 fixed point at runtime)
	INT   // "int"
	BOOL  // "bool"
	VEC2  // "vec2"
	VEC3  // "vec3"
	VEC4  // "vec4"
	MAT3  // "mat3"
	VOID  // "void"

	// Keywords
	IF     // "if"
	ELSE   // "else"
	WHILE  // "while"
	FOR    // "for"
	RETURN // "return"
	TRUE   // "true"
	FALSE  // "false"

	// Paired delimiters
	LBRACE // {
	RBRACE // }
	LPAREN // (
	RPAREN // )

	// Punctuation
	DOT       // .
	SEMICOLON // ;
	COMMA     // ,
	COLON     // :
	QUESTION  // ?

	// Arithmetic / bitwise operators
	PLUS        // +
	MINUS       // -
	STAR        // *
	SLASH       // /
	PERCENT     // %
	AND         // &
	PIPE        // |
	CARET       // ^
	TILDE       // ~
	SHL_OP      // <<
	SHR_OP      // >>
	AND_LOGICAL // &&
	OR_LOGICAL  // ||
	NOT         // !

	PLUS_PLUS   // ++
	MINUS_MINUS // --

	// Assignment  (order matters: ASSIGN before EQUALS)
	ASSIGN         // =
	PLUS_ASSIGN    // +=
	MINUS_ASSIGN   // -=
	STAR_ASSIGN    // *=
	SLASH_ASSIGN   // /=
	PERCENT_ASSIGN // %=
	AND_ASSIGN     // &=
	PIPE_ASSIGN    // |=
	CARET_ASSIGN   // ^=
	SHL_ASSIGN     // <<=
	SHR_ASSIGN     // >>=

	// Comparison
	EQUALS     // ==
	NOT_EQ     // !=
	LESS       // <
	GREATER    // >
	LESS_EQ    // <=
	GREATER_EQ // >=
)

var tokenNames = [...]string{
	EOF:            "EOF",
	ILLEGAL:        "ILLEGAL",
	IDENTIFIER:     "IDENTIFIER",
	INT_LIT:        "INT_LIT",
	FLOAT_LIT:      "FLOAT_LIT",
	FLOAT:          "FLOAT",
	INT:            "INT",
	BOOL:           "BOOL",
	VEC2:           "VEC2",
	VEC3:           "VEC3",
	VEC4:           "VEC4",
	MAT3:           "MAT3",
	VOID:           "VOID",
	IF:             "IF",
	ELSE:           "ELSE",
	WHILE:          "WHILE",
	FOR:            "FOR",
	RETURN:         "RETURN",
	TRUE:           "TRUE",
	FALSE:          "FALSE",
	LBRACE:         "LBRACE",
	RBRACE:         "RBRACE",
	LPAREN:         "LPAREN",
	RPAREN:         "RPAREN",
	DOT:            "DOT",
	SEMICOLON:      "SEMICOLON",
	COMMA:          "COMMA",
	COLON:          "COLON",
	QUESTION:       "QUESTION",
	PLUS:           "PLUS",
	MINUS:          "MINUS",
	STAR:           "STAR",
	SLASH:          "SLASH",
	PERCENT:        "PERCENT",
	AND:            "AND",
	PIPE:           "PIPE",
	CARET:          "CARET",
	TILDE:          "TILDE",
	SHL_OP:         "SHL_OP",
	SHR_OP:         "SHR_OP",
	AND_LOGICAL:    "AND_LOGICAL",
	OR_LOGICAL:     "OR_LOGICAL",
	NOT:            "NOT",
	PLUS_PLUS:      "PLUS_PLUS",
	MINUS_MINUS:    "MINUS_MINUS",
	ASSIGN:         "ASSIGN",
	PLUS_ASSIGN:    "PLUS_ASSIGN",
	MINUS_ASSIGN:   "MINUS_ASSIGN",
	STAR_ASSIGN:    "STAR_ASSIGN",
	SLASH_ASSIGN:   "SLASH_ASSIGN",
	PERCENT_ASSIGN: "PERCENT_ASSIGN",
	AND_ASSIGN:     "AND_ASSIGN",
	PIPE_ASSIGN:    "PIPE_ASSIGN",
	CARET_ASSIGN:   "CARET_ASSIGN",
	SHL_ASSIGN:     "SHL_ASSIGN",
	SHR_ASSIGN:     "SHR_ASSIGN",
	EQUALS:         "EQUALS",
	NOT_EQ:         "NOT_EQ",
	LESS:           "LESS",
	GREATER:        "GREATER",
	LESS_EQ:        "LESS_EQ",
	GREATER_EQ:     "GREATER_EQ",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// isTypeToken reports whether tt names a declared type.
func isTypeToken(tt TokenType) bool {
	switch tt {
	case FLOAT, INT, BOOL, VEC2, VEC3, VEC4, MAT3, VOID:
		return true
	}
	return false
}

// compoundOp maps a compound-assignment token to the binary operator it
// desugars to (x += e  becomes  x = x + e).
func compoundOp(tt TokenType) (TokenType, bool) {
	switch tt {
	case PLUS_ASSIGN:
		return PLUS, true
	case MINUS_ASSIGN:
		return MINUS, true
	case STAR_ASSIGN:
		return STAR, true
	case SLASH_ASSIGN:
		return SLASH, true
	case PERCENT_ASSIGN:
		return PERCENT, true
	case AND_ASSIGN:
		return AND, true
	case PIPE_ASSIGN:
		return PIPE, true
	case CARET_ASSIGN:
		return CARET, true
	case SHL_ASSIGN:
		return SHL_OP, true
	case SHR_ASSIGN:
		return SHR_OP, true
	}
	return tt, false
}

// isAssignOp reports whether tt is = or a compound assignment.
func isAssignOp(tt TokenType) bool {
	if tt == ASSIGN {
		return true
	}
	_, ok := compoundOp(tt)
	return ok
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Line   int    // 1-based source line
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  line %d", t.Type, t.Lexeme, t.Line)
}

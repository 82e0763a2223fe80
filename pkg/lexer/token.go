package lexer

import (
	"fmt"
)

type TokenType int

type Token struct {
	Type   TokenType // Type of the token
	Lexeme string    // Actual string from source code
	Pos    Position  // Position in source code
}

// NewToken creates a new Token instance
func NewToken(tokenType TokenType, lexeme string, pos Position) Token {
	return Token{
		Type:   tokenType,
		Lexeme: lexeme,
		Pos:    pos,
	}
}

const (
	EOF   TokenType = iota // End of line
	DUCK                   // duck (A-token, counted as an operand or opcode value)
	GOOSE                  // goose (B-token, terminates a header or opcode line)
)

// Keyword spellings. Matching is exact and case-sensitive.
const (
	Duck    = "duck"
	Goose   = "goose"
	Comment = '#'
)

var Keywords = map[string]TokenType{
	Duck:  DUCK,
	Goose: GOOSE,
}

// String returns a string representation of the Token
func (t Token) String() string {
	return fmt.Sprintf("T_{%s, %q, %s}", t.Type, t.Lexeme, t.Pos.String())
}

// String returns a string representation of the TokenType
func (t TokenType) String() string {
	switch t {
	case EOF:
		return "$"
	case DUCK:
		return Duck
	case GOOSE:
		return Goose
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(t))
	}
}

// IsKeyword checks if the given word is a keyword and returns its TokenType if it is
func IsKeyword(word string) (TokenType, bool) {
	tokenType, ok := Keywords[word]
	return tokenType, ok
}

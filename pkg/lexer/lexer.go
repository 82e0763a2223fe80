package lexer

import "strings"

// Counts holds the keyword occurrence counts of one line
type Counts struct {
	Ducks int // A-token count
	Geese int // B-token count
}

// Line is one scanned source line
type Line struct {
	Number int     // 1-based line number
	Text   string  // source text with the comment stripped
	Tokens []Token // keyword tokens in text order
	Counts Counts
}

// Count strips the comment from line and counts its keywords
func Count(line string) Counts {
	code := StripComment(line)

	return Counts{
		Ducks: strings.Count(code, Duck),
		Geese: strings.Count(code, Goose),
	}
}

// ScanLine scans a single source line. number is the 1-based line number used for
// token positions; offset is the byte offset of the line within the file.
func ScanLine(text string, number, offset int) Line {
	code := strings.TrimRight(StripComment(text), "\r\n")

	l := Line{
		Number: number,
		Text:   code,
		Tokens: make([]Token, 0),
		Counts: Count(code),
	}

	for _, m := range MatchKeywords(code) {
		lexeme := code[m[0]:m[1]]
		typ, _ := IsKeyword(lexeme)

		l.Tokens = append(l.Tokens, NewToken(typ, lexeme, NewPosition(number, m[0]+1, offset+m[0])))
	}

	return l
}

// Goose returns the first goose token of the line
func (l Line) Goose() (Token, bool) {
	for _, tok := range l.Tokens {
		if tok.Type == GOOSE {
			return tok, true
		}
	}

	return Token{}, false
}

// Geese returns every goose token of the line
func (l Line) Geese() []Token {
	out := make([]Token, 0, l.Counts.Geese)
	for _, tok := range l.Tokens {
		if tok.Type == GOOSE {
			out = append(out, tok)
		}
	}

	return out
}

// LastDuck returns the last duck token of the line
func (l Line) LastDuck() (Token, bool) {
	for i := len(l.Tokens) - 1; i >= 0; i-- {
		if l.Tokens[i].Type == DUCK {
			return l.Tokens[i], true
		}
	}

	return Token{}, false
}

// IsBlank reports whether the line carries no keywords at all
func (l Line) IsBlank() bool {
	return l.Counts.Ducks == 0 && l.Counts.Geese == 0
}

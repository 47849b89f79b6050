package literal

import "errors"

// Sentinel errors
var (
	ErrUnexpectedCharacter = errors.New("unexpected character")
	ErrUnterminatedString  = errors.New("unterminated string literal")
	ErrUnterminatedQuoteOp = errors.New("unterminated quote operator")
	ErrUnsupportedQuoteOp  = errors.New("unsupported quote operator")
	ErrInvalidNumber       = errors.New("invalid number format")
	ErrUnexpectedToken     = errors.New("unexpected token")
	ErrUnexpectedEnd       = errors.New("unexpected end of expression")
	ErrTrailingContent     = errors.New("trailing content after expression")
	ErrCodeLiteral         = errors.New("code literals are not supported, pass data only")
	ErrInvalidPatternFlag  = errors.New("unsupported pattern modifier")
)

// TokenType represents the type of a token
type TokenType int

const (
	// Structural tokens
	EOF TokenType = iota
	LBRACKET
	RBRACKET
	LBRACE
	RBRACE
	COMMA
	COLON
	FATARROW

	// Value tokens
	STRING
	NUMBER
	WORD
	WORDLIST
)

var tokenTypeNames = map[TokenType]string{
	EOF:      "EOF",
	LBRACKET: "[",
	RBRACKET: "]",
	LBRACE:   "{",
	RBRACE:   "}",
	COMMA:    ",",
	COLON:    ":",
	FATARROW: "=>",
	STRING:   "string",
	NUMBER:   "number",
	WORD:     "word",
	WORDLIST: "word list",
}

func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Position is the location of a token within the input expression.
type Position struct {
	Column int
	Offset int
}

// Token is a lexed element of a literal expression.
type Token struct {
	Type     TokenType
	Value    string
	Position Position
}

package literal

import (
	"fmt"
	"strings"
	"unicode"
)

// quote-like operator delimiters that nest
var pairedDelimiters = map[rune]rune{
	'(': ')',
	'[': ']',
	'{': '}',
	'<': '>',
}

// lexer scans one literal expression into tokens.
type lexer struct {
	input    string
	position int
	column   int
	current  rune
}

func newLexer(input string) *lexer {
	l := &lexer{input: input, column: 0}
	l.readChar()
	return l
}

// allTokens scans the whole input, ending with an EOF token.
func (l *lexer) allTokens() ([]Token, error) {
	tokens := make([]Token, 0, 16)
	for {
		token, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
		if token.Type == EOF {
			return tokens, nil
		}
	}
}

func (l *lexer) nextToken() (Token, error) {
	for l.current != 0 && unicode.IsSpace(l.current) {
		l.readChar()
	}

	switch l.current {
	case 0:
		return l.newToken(EOF, ""), nil
	case '[':
		token := l.newToken(LBRACKET, string(l.current))
		l.readChar()
		return token, nil
	case ']':
		token := l.newToken(RBRACKET, string(l.current))
		l.readChar()
		return token, nil
	case '{':
		token := l.newToken(LBRACE, string(l.current))
		l.readChar()
		return token, nil
	case '}':
		token := l.newToken(RBRACE, string(l.current))
		l.readChar()
		return token, nil
	case ',':
		token := l.newToken(COMMA, string(l.current))
		l.readChar()
		return token, nil
	case ':':
		token := l.newToken(COLON, string(l.current))
		l.readChar()
		return token, nil
	case '=':
		if l.peekChar() == '>' {
			token := l.newToken(FATARROW, "=>")
			l.readChar()
			l.readChar()
			return token, nil
		}
		return Token{}, fmt.Errorf("%w: '=' at column %d", ErrUnexpectedCharacter, l.column)
	case '\'', '"':
		return l.readString(l.current)
	case '-', '+':
		if unicode.IsDigit(l.peekChar()) {
			return l.readNumber()
		}
		return Token{}, fmt.Errorf("%w: %q at column %d", ErrUnexpectedCharacter, l.current, l.column)
	default:
		if unicode.IsLetter(l.current) || l.current == '_' {
			return l.readWord()
		}
		if unicode.IsDigit(l.current) {
			return l.readNumber()
		}
		return Token{}, fmt.Errorf("%w: %q at column %d", ErrUnexpectedCharacter, l.current, l.column)
	}
}

// readChar advances to the next character.
func (l *lexer) readChar() {
	if l.position >= len(l.input) {
		l.current = 0
		l.position++
		return
	}
	l.current = rune(l.input[l.position])
	l.position++
	l.column++
}

// peekChar looks ahead at the next character.
func (l *lexer) peekChar() rune {
	if l.position >= len(l.input) {
		return 0
	}
	return rune(l.input[l.position])
}

func (l *lexer) newToken(tokenType TokenType, value string) Token {
	return Token{
		Type:  tokenType,
		Value: value,
		Position: Position{
			Column: l.column,
			Offset: l.position - 1,
		},
	}
}

// readString reads a quoted string and stores the decoded content.
// Double quotes process escape sequences, single quotes only \' and \\.
func (l *lexer) readString(delimiter rune) (Token, error) {
	startColumn := l.column
	startOffset := l.position - 1

	var builder strings.Builder
	l.readChar()

	for l.current != 0 && l.current != delimiter {
		if l.current == '\\' {
			next := l.peekChar()
			if next == 0 {
				break
			}
			l.readChar()
			if delimiter == '"' {
				builder.WriteRune(unescape(l.current))
			} else if l.current == '\'' || l.current == '\\' {
				builder.WriteRune(l.current)
			} else {
				builder.WriteRune('\\')
				builder.WriteRune(l.current)
			}
			l.readChar()
			continue
		}
		builder.WriteRune(l.current)
		l.readChar()
	}

	if l.current == 0 {
		return Token{}, fmt.Errorf("%w: missing closing %c (opened at column %d)", ErrUnterminatedString, delimiter, startColumn)
	}
	l.readChar()

	return Token{
		Type:     STRING,
		Value:    builder.String(),
		Position: Position{Column: startColumn, Offset: startOffset},
	}, nil
}

func unescape(c rune) rune {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return c
	}
}

// readNumber reads integer and float literals, sign included.
func (l *lexer) readNumber() (Token, error) {
	startColumn := l.column
	startOffset := l.position - 1

	var builder strings.Builder
	if l.current == '-' || l.current == '+' {
		builder.WriteRune(l.current)
		l.readChar()
	}
	for unicode.IsDigit(l.current) {
		builder.WriteRune(l.current)
		l.readChar()
	}
	if l.current == '.' && unicode.IsDigit(l.peekChar()) {
		builder.WriteRune(l.current)
		l.readChar()
		for unicode.IsDigit(l.current) {
			builder.WriteRune(l.current)
			l.readChar()
		}
	}
	if l.current == 'e' || l.current == 'E' {
		builder.WriteRune(l.current)
		l.readChar()
		if l.current == '-' || l.current == '+' {
			builder.WriteRune(l.current)
			l.readChar()
		}
		if !unicode.IsDigit(l.current) {
			return Token{}, fmt.Errorf("%w: missing exponent digits at column %d", ErrInvalidNumber, l.column)
		}
		for unicode.IsDigit(l.current) {
			builder.WriteRune(l.current)
			l.readChar()
		}
	}

	return Token{
		Type:     NUMBER,
		Value:    builder.String(),
		Position: Position{Column: startColumn, Offset: startOffset},
	}, nil
}

// readWord reads bare words. The words q, qq, qw and qr double as quote-like
// operators when a delimiter follows, unless a fat comma follows instead
// (a bare key before => stays a word).
func (l *lexer) readWord() (Token, error) {
	startColumn := l.column
	startOffset := l.position - 1

	var builder strings.Builder
	for unicode.IsLetter(l.current) || unicode.IsDigit(l.current) || l.current == '_' {
		builder.WriteRune(l.current)
		l.readChar()
	}
	word := builder.String()

	if len(word) <= 2 && word[0] == 'q' {
		if delim, ok := l.quoteOpDelimiter(); ok {
			switch word {
			case "q", "qq", "qw", "qr":
				return l.readQuoteOp(word, delim, startColumn, startOffset)
			default:
				return Token{}, fmt.Errorf("%w: %s at column %d", ErrUnsupportedQuoteOp, word, startColumn)
			}
		}
	}

	return Token{
		Type:     WORD,
		Value:    word,
		Position: Position{Column: startColumn, Offset: startOffset},
	}, nil
}

// quoteOpDelimiter looks past optional whitespace for a quote-op delimiter.
// A fat comma is not a delimiter: { q => 1 } keys stay bare words.
func (l *lexer) quoteOpDelimiter() (rune, bool) {
	pos := l.position - 1
	if l.current != 0 && unicode.IsSpace(l.current) {
		for pos < len(l.input) && unicode.IsSpace(rune(l.input[pos])) {
			pos++
		}
		if pos >= len(l.input) {
			return 0, false
		}
	} else {
		if l.current == 0 {
			return 0, false
		}
	}
	c := rune(l.input[pos])
	if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == ',' {
		return 0, false
	}
	if c == '=' && pos+1 < len(l.input) && l.input[pos+1] == '>' {
		return 0, false
	}
	return c, true
}

// readQuoteOp consumes a q/qq/qw/qr body. Paired delimiters nest.
func (l *lexer) readQuoteOp(op string, delim rune, startColumn, startOffset int) (Token, error) {
	for l.current != delim {
		l.readChar()
	}
	closing, paired := pairedDelimiters[delim]
	if !paired {
		closing = delim
	}
	l.readChar()

	var builder strings.Builder
	depth := 1
	for {
		if l.current == 0 {
			return Token{}, fmt.Errorf("%w: %s missing closing %c (opened at column %d)", ErrUnterminatedQuoteOp, op, closing, startColumn)
		}
		if l.current == '\\' && (l.peekChar() == closing || l.peekChar() == '\\' || (paired && l.peekChar() == delim)) {
			l.readChar()
			builder.WriteRune(l.current)
			l.readChar()
			continue
		}
		if paired && l.current == delim {
			depth++
		} else if l.current == closing {
			depth--
			if depth == 0 {
				l.readChar()
				break
			}
		}
		if op == "qq" && l.current == '\\' {
			l.readChar()
			if l.current == 0 {
				continue
			}
			builder.WriteRune(unescape(l.current))
			l.readChar()
			continue
		}
		builder.WriteRune(l.current)
		l.readChar()
	}

	value := builder.String()
	tokenType := STRING
	switch op {
	case "qw":
		tokenType = WORDLIST
	case "qr":
		pattern, err := l.readPatternFlags(value, startColumn)
		if err != nil {
			return Token{}, err
		}
		value = pattern
	}

	return Token{
		Type:     tokenType,
		Value:    value,
		Position: Position{Column: startColumn, Offset: startOffset},
	}, nil
}

// readPatternFlags consumes trailing qr// modifiers and folds the supported
// ones into the pattern itself.
func (l *lexer) readPatternFlags(pattern string, startColumn int) (string, error) {
	var flags strings.Builder
	for unicode.IsLetter(l.current) {
		switch l.current {
		case 'i', 'm', 's':
			flags.WriteRune(l.current)
		default:
			return "", fmt.Errorf("%w: %c (pattern at column %d)", ErrInvalidPatternFlag, l.current, startColumn)
		}
		l.readChar()
	}
	if flags.Len() > 0 {
		return "(?" + flags.String() + ")" + pattern, nil
	}
	return pattern, nil
}

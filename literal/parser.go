// Package literal parses the restricted literal expressions accepted on the
// dbicdump command line: lists, mappings, quote-like operators and scalar
// constants. Expressions evaluate to plain data. Anonymous functions are
// recognized and rejected, never executed.
package literal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// looksLikeExpr mirrors the detection heuristic: a value is treated as an
// expression when it starts with an anonymous function, a quote-like
// operator, or a list/mapping literal.
var looksLikeExpr = regexp.MustCompile(`^\s*(?:sub\s*\{|q\w?\s*[^\s\w]|[\[{])`)

var codeLiteral = regexp.MustCompile(`^\s*sub\s*\{`)

// LooksLikeExpression reports whether s should be parsed as a literal
// expression rather than passed through as a plain string.
func LooksLikeExpression(s string) bool {
	return looksLikeExpr.MatchString(s)
}

// MaybeParse applies the value-parsing step used for -o values and extra
// connect-info arguments: plain strings pass through unchanged, anything
// that looks like an expression is parsed fully.
func MaybeParse(s string) (any, error) {
	if !LooksLikeExpression(s) {
		return s, nil
	}
	return ParseValue(s)
}

// ParseValue parses s as a single literal expression. Content after a
// complete expression is an error.
func ParseValue(s string) (any, error) {
	if codeLiteral.MatchString(s) {
		return nil, ErrCodeLiteral
	}
	tokens, err := newLexer(s).allTokens()
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if p.current().Type != EOF {
		return nil, fmt.Errorf("%w: %q at column %d", ErrTrailingContent, p.current().Value, p.current().Position.Column)
	}
	return value, nil
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) advance() Token {
	token := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return token
}

func (p *parser) parseValue() (any, error) {
	token := p.advance()
	switch token.Type {
	case LBRACKET:
		return p.parseList()
	case LBRACE:
		return p.parseMap()
	case STRING:
		return token.Value, nil
	case NUMBER:
		return parseNumber(token)
	case WORDLIST:
		words := strings.Fields(token.Value)
		list := make([]any, len(words))
		for i, w := range words {
			list[i] = w
		}
		return list, nil
	case WORD:
		if token.Value == "sub" && p.current().Type == LBRACE {
			return nil, ErrCodeLiteral
		}
		switch token.Value {
		case "true":
			return true, nil
		case "false":
			return false, nil
		case "null", "undef":
			return nil, nil
		}
		return token.Value, nil
	case EOF:
		return nil, ErrUnexpectedEnd
	default:
		return nil, fmt.Errorf("%w: %q at column %d", ErrUnexpectedToken, token.Value, token.Position.Column)
	}
}

// parseList parses the elements after an opening bracket. A trailing comma
// before the closing bracket is allowed.
func (p *parser) parseList() (any, error) {
	list := []any{}
	for {
		if p.current().Type == RBRACKET {
			p.advance()
			return list, nil
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		list = append(list, value)

		switch p.current().Type {
		case COMMA:
			p.advance()
		case RBRACKET:
		case EOF:
			return nil, fmt.Errorf("%w: missing closing ]", ErrUnexpectedEnd)
		default:
			return nil, fmt.Errorf("%w: %q at column %d, expected , or ]", ErrUnexpectedToken, p.current().Value, p.current().Position.Column)
		}
	}
}

// parseMap parses key/value pairs after an opening brace. Pairs accept both
// => and : separators, keys may be bare words, strings or numbers.
func (p *parser) parseMap() (any, error) {
	m := map[string]any{}
	for {
		if p.current().Type == RBRACE {
			p.advance()
			return m, nil
		}

		keyToken := p.advance()
		var key string
		switch keyToken.Type {
		case WORD, STRING, NUMBER:
			key = keyToken.Value
		case EOF:
			return nil, fmt.Errorf("%w: missing closing }", ErrUnexpectedEnd)
		default:
			return nil, fmt.Errorf("%w: %q at column %d, expected a key", ErrUnexpectedToken, keyToken.Value, keyToken.Position.Column)
		}

		sep := p.advance()
		if sep.Type != FATARROW && sep.Type != COLON {
			return nil, fmt.Errorf("%w: %q at column %d, expected => or :", ErrUnexpectedToken, sep.Value, sep.Position.Column)
		}

		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		m[key] = value

		switch p.current().Type {
		case COMMA:
			p.advance()
		case RBRACE:
		case EOF:
			return nil, fmt.Errorf("%w: missing closing }", ErrUnexpectedEnd)
		default:
			return nil, fmt.Errorf("%w: %q at column %d, expected , or }", ErrUnexpectedToken, p.current().Value, p.current().Position.Column)
		}
	}
}

func parseNumber(token Token) (any, error) {
	if !strings.ContainsAny(token.Value, ".eE") {
		n, err := strconv.ParseInt(token.Value, 10, 64)
		if err == nil {
			return n, nil
		}
	}
	f, err := strconv.ParseFloat(token.Value, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q at column %d", ErrInvalidNumber, token.Value, token.Position.Column)
	}
	return f, nil
}

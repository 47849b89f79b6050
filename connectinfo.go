package schemaloader

import (
	"fmt"
	"strings"
)

// ConnectInfo is the ordered connection tuple handed to the loader:
// DSN, user, password, then any number of extra values. Map-shaped extras
// carry connection attributes; later maps win key by key.
type ConnectInfo struct {
	DSN      string
	User     string
	Password string
	Extra    []any
}

// IsSQLite reports whether the DSN names a SQLite database. SQLite DSNs
// take no credentials, so callers skip user/password handling for them.
func (ci ConnectInfo) IsSQLite() bool {
	return strings.Contains(strings.ToLower(ci.DSN), "sqlite")
}

// Attributes merges every map-shaped extra into one attribute set.
// Non-map extras are ignored here; they stay visible through Extra.
func (ci ConnectInfo) Attributes() map[string]any {
	attrs := map[string]any{}
	for _, extra := range ci.Extra {
		m, ok := extra.(map[string]any)
		if !ok {
			continue
		}
		for k, v := range m {
			attrs[k] = v
		}
	}
	return attrs
}

// QuoteChar returns the identifier quote character attribute, if set.
func (ci ConnectInfo) QuoteChar() string {
	if v, ok := ci.Attributes()["quote_char"]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// NameSep returns the identifier separator attribute, if set.
func (ci ConnectInfo) NameSep() string {
	if v, ok := ci.Attributes()["name_sep"]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// OnConnectDo returns the SQL statements to run after connecting, in order.
// The attribute accepts a single statement or a list.
func (ci ConnectInfo) OnConnectDo() ([]string, error) {
	v, ok := ci.Attributes()["on_connect_do"]
	if !ok {
		return nil, nil
	}
	switch stmts := v.(type) {
	case string:
		return []string{stmts}, nil
	case []string:
		return stmts, nil
	case []any:
		out := make([]string, 0, len(stmts))
		for _, s := range stmts {
			str, ok := s.(string)
			if !ok {
				return nil, fmt.Errorf("%w: on_connect_do element is %T, want string", ErrInvalidConnectExtra, s)
			}
			out = append(out, str)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: on_connect_do is %T, want string or list", ErrInvalidConnectExtra, v)
}

// Validate checks the tuple is usable before any connection attempt.
func (ci ConnectInfo) Validate() error {
	if strings.TrimSpace(ci.DSN) == "" {
		return ErrEmptyDSN
	}
	return nil
}

package cache

import (
	"net/url"
	"strconv"
	"strings"
)

// Key is a stable serialization of a query: "resource/scope=id?a=1&b=2".
// Parameters are sorted so equal parameter sets always produce the same key.
type Key string

type Param struct {
	Name  string
	Value string
}

func Int(name string, v int) Param {
	return Param{Name: name, Value: strconv.Itoa(v)}
}

func ID(name string, v int64) Param {
	return Param{Name: name, Value: strconv.FormatInt(v, 10)}
}

func String(name, v string) Param {
	return Param{Name: name, Value: v}
}

// NewKey builds a key. scope is the parent filter used for prefix invalidation and may be
// the zero Param. Params with an empty value are left out.
func NewKey(resource string, scope Param, params ...Param) Key {
	q := url.Values{}
	for _, p := range params {
		if p.Value == "" {
			continue
		}
		q.Set(p.Name, p.Value)
	}
	return Key(ScopePrefix(resource, scope) + q.Encode())
}

// ScopePrefix matches every key of resource under scope.
func ScopePrefix(resource string, scope Param) string {
	var b strings.Builder
	b.WriteString(resource)
	b.WriteByte('/')
	if scope.Name != "" {
		b.WriteString(scope.Name)
		b.WriteByte('=')
		b.WriteString(scope.Value)
	}
	b.WriteByte('?')
	return b.String()
}

// ResourcePrefix matches every key of resource regardless of scope.
func ResourcePrefix(resource string) string {
	return resource + "/"
}

func (k Key) Resource() string {
	s := string(k)
	if i := strings.IndexByte(s, '/'); i >= 0 {
		return s[:i]
	}
	return s
}

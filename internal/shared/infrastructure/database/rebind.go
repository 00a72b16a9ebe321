package database

import (
	"strconv"
	"strings"
)

// Rebind rewrites ? placeholders to PostgreSQL's $n form. Placeholders inside
// single-quoted literals are left alone. Repositories are written once with ?
// placeholders and the postgres connection rebinds on the way out.
func Rebind(query string) string {
	if !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

package metricquery

import (
	"regexp"
	"strings"
)

// Directive rewrites a query template before placeholder substitution.
// Templates without the directive's markers are returned unchanged.
type Directive interface {
	Construct(template string) (string, error)
}

var unionBlockRe = regexp.MustCompile(`(?s)<ALL_TABLES_UNION>(.*?)</ALL_TABLES_UNION>`)

// unionSeparator joins consecutive per-table renderings.
const unionSeparator = " UNION "

// AllTablesUnion expands every <ALL_TABLES_UNION>…</ALL_TABLES_UNION> block
// into one rendering of its inner template per table, joined by UNION.
type AllTablesUnion struct {
	Tables []string

	nested *Template
}

// NewAllTablesUnion creates the directive. nested renders each inner block
// and must not itself carry an AllTablesUnion directive.
func NewAllTablesUnion(nested *Template, tables ...string) *AllTablesUnion {
	return &AllTablesUnion{Tables: append([]string(nil), tables...), nested: nested}
}

// Construct implements Directive. Blocks are replaced by position, so two
// textually identical blocks each receive their own expansion.
func (d *AllTablesUnion) Construct(template string) (string, error) {
	matches := unionBlockRe.FindAllStringSubmatchIndex(template, -1)
	if len(matches) == 0 {
		return template, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(template[last:m[0]])

		inner := template[m[2]:m[3]]
		parts := make([]string, 0, len(d.Tables))
		for _, table := range d.Tables {
			rendered, err := d.nested.Render(table, inner)
			if err != nil {
				return "", err
			}
			parts = append(parts, rendered)
		}
		b.WriteString(strings.Join(parts, unionSeparator))
		last = m[1]
	}
	b.WriteString(template[last:])
	return b.String(), nil
}

// Package metricquery renders hand-written metric query templates into
// executable SQL scoped to one project, deployment, and table.
//
// A template references a fixed set of identifiers with ${name}
// placeholders:
//
//	database                  "{project}_{deployment}"
//	database_unquoted         {project}_{deployment}
//	table                     "{project}_{deployment}"."{project}_{deployment}_table_{name}"
//	table_unquoted            {project}_{deployment}_table_{name}
//	table_clientinitcomplete  fully qualified clientinitcomplete table
//	table_sessionstart        fully qualified sessionstart table
//	year, month               current UTC date
//	day, hour                 current local date and time
//
// Templates are trusted input. Nothing here escapes or validates the
// substituted values.
package metricquery

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gemportal/internal/domain"
)

var placeholderRe = regexp.MustCompile(`\$\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}`)

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Template renders query templates for one deployment. TableName is used
// when Render is called with an empty table.
type Template struct {
	TableName  string
	Directives []Directive

	deployment domain.DeploymentContext
	now        func() time.Time
	local      *time.Location
}

// Option configures a Template.
type Option func(*Template)

// WithClock overrides the wall clock used for year/month/day/hour.
func WithClock(now func() time.Time) Option {
	return func(t *Template) { t.now = now }
}

// WithLocation sets the zone day and hour are read in. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(t *Template) { t.local = loc }
}

// WithDirectives registers directives in the given order.
func WithDirectives(ds ...Directive) Option {
	return func(t *Template) { t.Directives = append(t.Directives, ds...) }
}

// New creates a Template bound to the given deployment.
func New(deployment domain.DeploymentContext, opts ...Option) *Template {
	t := &Template{
		deployment: deployment,
		now:        time.Now,
		local:      time.Local,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithAllTablesUnion registers an AllTablesUnion directive over tables. The
// nested template shares this template's deployment and clock but carries
// no directives.
func (t *Template) WithAllTablesUnion(tables ...string) *Template {
	nested := New(t.deployment, WithClock(t.now), WithLocation(t.local))
	t.Directives = append(t.Directives, NewAllTablesUnion(nested, tables...))
	return t
}

// Render runs every directive over raw, then substitutes placeholders and
// collapses line breaks into spaces.
func (t *Template) Render(table, raw string) (string, error) {
	if table == "" {
		table = t.TableName
	}

	rewritten := raw
	for _, d := range t.Directives {
		out, err := d.Construct(rewritten)
		if err != nil {
			var te *domain.TemplateError
			if errors.As(err, &te) {
				return "", err
			}
			return "", &domain.TemplateError{Message: "directive failed", Err: err}
		}
		rewritten = out
	}

	out, err := substitute(rewritten, t.bindings(table))
	if err != nil {
		return "", err
	}
	return newlineReplacer.Replace(out), nil
}

// bindings holds the identifier values for one render pass. Values that
// depend on an unset table are absent and reported as unbound.
type bindings struct {
	values  map[string]string
	unbound map[string]bool
}

func (t *Template) bindings(table string) bindings {
	project, deployment := t.deployment.ProjectName(), t.deployment.ActiveDeploymentName()
	db := databaseName(project, deployment)
	prefix := TablePrefix(project, deployment)
	now := t.now()
	utc := now.UTC()
	local := now.In(t.local)

	b := bindings{
		values: map[string]string{
			"database":                 quoteIdent(db),
			"database_unquoted":        db,
			"table_clientinitcomplete": quoteIdent(db) + "." + quoteIdent(prefix+"clientinitcomplete"),
			"table_sessionstart":       quoteIdent(db) + "." + quoteIdent(prefix+"sessionstart"),
			"year":                     strconv.Itoa(utc.Year()),
			"month":                    strconv.Itoa(int(utc.Month())),
			"day":                      strconv.Itoa(local.Day()),
			"hour":                     strconv.Itoa(local.Hour()),
		},
		unbound: map[string]bool{},
	}
	if table == "" {
		b.unbound["table"] = true
		b.unbound["table_unquoted"] = true
		return b
	}
	tableIdent := prefix + normalizeName(table)
	b.values["table_unquoted"] = tableIdent
	b.values["table"] = quoteIdent(db) + "." + quoteIdent(tableIdent)
	return b
}

func substitute(template string, b bindings) (string, error) {
	matches := placeholderRe.FindAllStringSubmatchIndex(template, -1)
	if len(matches) == 0 {
		return template, nil
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		name := template[m[2]:m[3]]
		if b.unbound[name] {
			return "", domain.ErrUnboundIdentifier(name)
		}
		value, ok := b.values[name]
		if !ok {
			return "", domain.ErrUnknownIdentifier(name)
		}
		sb.WriteString(template[last:m[0]])
		sb.WriteString(value)
		last = m[1]
	}
	sb.WriteString(template[last:])
	return sb.String(), nil
}

package metricquery

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemportal/internal/domain"
)

var testDeployment = domain.StaticDeployment{Project: "My-Game", Deployment: "Prod-East"}

func fixedClock() time.Time {
	return time.Date(2024, time.January, 31, 23, 30, 0, 0, time.UTC)
}

func newTestTemplate(opts ...Option) *Template {
	base := []Option{WithClock(fixedClock), WithLocation(time.UTC)}
	return New(testDeployment, append(base, opts...)...)
}

func TestTablePrefix_FirstDashOnly(t *testing.T) {
	assert.Equal(t, "my_game_prod_east_table_", TablePrefix("My-Game", "Prod-East"))
	assert.Equal(t, "a_b-c_x_y-z_table_", TablePrefix("A-B-C", "x-Y-z"))
}

func TestRender_PlainTemplateOnlyCollapsesNewlines(t *testing.T) {
	raw := "SELECT 1\nFROM dual\r\nWHERE x = 'a'\rLIMIT 1"
	out, err := newTestTemplate().Render("events", raw)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 FROM dual WHERE x = 'a' LIMIT 1", out)
}

func TestRender_Identifiers(t *testing.T) {
	tpl := newTestTemplate()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"database", "${database}", `"my_game_prod_east"`},
		{"database_unquoted", "${database_unquoted}", "my_game_prod_east"},
		{"table", "${table}", `"my_game_prod_east"."my_game_prod_east_table_events"`},
		{"table_unquoted", "${table_unquoted}", "my_game_prod_east_table_events"},
		{"clientinitcomplete", "${table_clientinitcomplete}", `"my_game_prod_east"."my_game_prod_east_table_clientinitcomplete"`},
		{"sessionstart", "${table_sessionstart}", `"my_game_prod_east"."my_game_prod_east_table_sessionstart"`},
		{"whitespace inside braces", "${ table }", `"my_game_prod_east"."my_game_prod_east_table_events"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tpl.Render("events", tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRender_DateParts(t *testing.T) {
	t.Run("utc", func(t *testing.T) {
		out, err := newTestTemplate().Render("events", "${year}-${month}-${day} ${hour}")
		require.NoError(t, err)
		assert.Equal(t, "2024-1-31 23", out)
	})

	t.Run("year and month stay utc while day and hour follow local zone", func(t *testing.T) {
		tpl := newTestTemplate(WithLocation(time.FixedZone("UTC+2", 2*60*60)))
		out, err := tpl.Render("events", "${year}-${month}-${day} ${hour}")
		require.NoError(t, err)
		assert.Equal(t, "2024-1-1 1", out)
	})
}

func TestRender_TableNameFallback(t *testing.T) {
	tpl := newTestTemplate()
	tpl.TableName = "Session-Start"

	out, err := tpl.Render("", "SELECT * FROM ${table_unquoted}")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM my_game_prod_east_table_session_start", out)
}

func TestRender_UnsetTable(t *testing.T) {
	tpl := newTestTemplate()

	t.Run("referenced", func(t *testing.T) {
		for _, raw := range []string{"SELECT * FROM ${table}", "SELECT * FROM ${table_unquoted}"} {
			_, err := tpl.Render("", raw)
			require.Error(t, err)
			var te *domain.TemplateError
			require.True(t, errors.As(err, &te))
			assert.Contains(t, []string{"table", "table_unquoted"}, te.Identifier)
		}
	})

	t.Run("not referenced", func(t *testing.T) {
		out, err := tpl.Render("", "SELECT count(*) FROM ${table_sessionstart}")
		require.NoError(t, err)
		assert.Equal(t, `SELECT count(*) FROM "my_game_prod_east"."my_game_prod_east_table_sessionstart"`, out)
	})
}

func TestRender_UnknownIdentifier(t *testing.T) {
	_, err := newTestTemplate().Render("events", "SELECT ${nope} FROM ${table}")
	require.Error(t, err)
	var te *domain.TemplateError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "nope", te.Identifier)
}

func TestRender_NonPlaceholderDollarTextIsLiteral(t *testing.T) {
	out, err := newTestTemplate().Render("events", "SELECT '$5', '${1abc}' FROM t")
	require.NoError(t, err)
	assert.Equal(t, "SELECT '$5', '${1abc}' FROM t", out)
}

type failingDirective struct{}

func (failingDirective) Construct(string) (string, error) {
	return "", errors.New("boom")
}

func TestRender_DirectiveFailureIsTemplateError(t *testing.T) {
	tpl := newTestTemplate(WithDirectives(failingDirective{}))
	_, err := tpl.Render("events", "SELECT 1")
	require.Error(t, err)
	var te *domain.TemplateError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "directive failed: boom", err.Error())
}

type upperDirective struct{ calls *[]string }

func (d upperDirective) Construct(s string) (string, error) {
	*d.calls = append(*d.calls, "upper")
	return strings.ToUpper(s), nil
}

type suffixDirective struct{ calls *[]string }

func (d suffixDirective) Construct(s string) (string, error) {
	*d.calls = append(*d.calls, "suffix")
	return s + " limit 5", nil
}

func TestRender_DirectivesRunInRegistrationOrder(t *testing.T) {
	var calls []string
	tpl := newTestTemplate(WithDirectives(upperDirective{&calls}, suffixDirective{&calls}))

	out, err := tpl.Render("events", "select 1")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 limit 5", out)
	assert.Equal(t, []string{"upper", "suffix"}, calls)
}

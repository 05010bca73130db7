package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusflow/compass-backend/internal/apperrors"
	"github.com/campusflow/compass-backend/internal/model"
)

func TestCompileSimpleSelect(t *testing.T) {
	t.Parallel()

	compiled, err := Compile(model.QueryRequest{
		Select: []string{"id", "title"},
		From:   "courses",
		Where: []model.QueryPredicate{
			{Left: "credits", Op: ">=", Right: 3},
		},
		Limit: 25,
	})
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, title FROM courses WHERE credits >= $1 LIMIT $2", compiled.SQL)
	assert.Equal(t, []interface{}{3, 25}, compiled.Args)
}

func TestCompileRejectsUnknownTable(t *testing.T) {
	t.Parallel()

	compiled, err := Compile(model.QueryRequest{
		Select: []string{"id"},
		From:   "users",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
	// Rejection yields no SQL at all, partial or otherwise.
	assert.Empty(t, compiled.SQL)
	assert.Empty(t, compiled.Args)
}

func TestCompileRejectsUnknownColumn(t *testing.T) {
	t.Parallel()

	_, err := Compile(model.QueryRequest{
		Select: []string{"id", "secret_gpa"},
		From:   "courses",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))

	_, err = Compile(model.QueryRequest{
		Select: []string{"id"},
		From:   "courses",
		Where:  []model.QueryPredicate{{Left: "password", Op: "=", Right: "x"}},
	})
	assert.True(t, apperrors.IsValidationError(err))

	// Each rejection names the clause the offending column came from.
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "where", ve.Field)

	_, err = Compile(model.QueryRequest{
		Select: []string{"secret_gpa"},
		From:   "courses",
	})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "select", ve.Field)
}

func TestCompileRejectsUnknownOperator(t *testing.T) {
	t.Parallel()

	for _, op := range []string{"||", ";", "UNION", "BETWEEN", "~"} {
		_, err := Compile(model.QueryRequest{
			Select: []string{"id"},
			From:   "courses",
			Where:  []model.QueryPredicate{{Left: "id", Op: op, Right: "CS18000"}},
		})
		assert.True(t, apperrors.IsValidationError(err), "operator %q must be rejected", op)
	}
}

func TestCompileLimitHandling(t *testing.T) {
	t.Parallel()

	// Omitted limit falls back to the default, still as a parameter.
	compiled, err := Compile(model.QueryRequest{Select: []string{"id"}, From: "courses"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM courses LIMIT $1", compiled.SQL)
	assert.Equal(t, []interface{}{DefaultLimit}, compiled.Args)

	// Ceiling is enforced, not clamped.
	_, err = Compile(model.QueryRequest{Select: []string{"id"}, From: "courses", Limit: LimitCeiling + 1})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))

	_, err = Compile(model.QueryRequest{Select: []string{"id"}, From: "courses", Limit: -5})
	assert.True(t, apperrors.IsValidationError(err))
}

// The SQL text is a function of the query's shape only. Hostile literals
// change the bound parameters, never the template.
func TestCompileTemplateIgnoresLiteralContent(t *testing.T) {
	t.Parallel()

	shape := func(right interface{}) model.QueryRequest {
		return model.QueryRequest{
			Select: []string{"id", "title"},
			From:   "courses",
			Where: []model.QueryPredicate{
				{Left: "title", Op: "LIKE", Right: right},
			},
			Limit: 10,
		}
	}

	benign, err := Compile(shape("Calculus%"))
	require.NoError(t, err)
	hostile, err := Compile(shape("'; DROP TABLE courses;--"))
	require.NoError(t, err)

	assert.Equal(t, benign.SQL, hostile.SQL)
	assert.Equal(t, "'; DROP TABLE courses;--", hostile.Args[0])
	assert.NotContains(t, hostile.SQL, "DROP")
}

func TestCompileInRendersAsAny(t *testing.T) {
	t.Parallel()

	short, err := Compile(model.QueryRequest{
		Select: []string{"id"},
		From:   "courses",
		Where: []model.QueryPredicate{
			{Left: "id", Op: "IN", Right: []interface{}{"CS18000"}},
		},
	})
	require.NoError(t, err)
	long, err := Compile(model.QueryRequest{
		Select: []string{"id"},
		From:   "courses",
		Where: []model.QueryPredicate{
			{Left: "id", Op: "IN", Right: []interface{}{"CS18000", "CS18200", "CS24000"}},
		},
	})
	require.NoError(t, err)

	// One placeholder regardless of list length: the template cannot leak
	// the list size.
	assert.Equal(t, "SELECT id FROM courses WHERE id = ANY($1) LIMIT $2", short.SQL)
	assert.Equal(t, short.SQL, long.SQL)
	assert.Equal(t, []interface{}{"CS18000", "CS18200", "CS24000"}, long.Args[0])
}

func TestCompileRejectsEmptyInList(t *testing.T) {
	t.Parallel()

	_, err := Compile(model.QueryRequest{
		Select: []string{"id"},
		From:   "courses",
		Where: []model.QueryPredicate{
			{Left: "id", Op: "IN", Right: []interface{}{}},
		},
	})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestCompileRejectsNonScalarLiterals(t *testing.T) {
	t.Parallel()

	_, err := Compile(model.QueryRequest{
		Select: []string{"id"},
		From:   "courses",
		Where: []model.QueryPredicate{
			{Left: "credits", Op: "=", Right: map[string]interface{}{"$gt": 1}},
		},
	})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = Compile(model.QueryRequest{
		Select: []string{"id"},
		From:   "courses",
		Where: []model.QueryPredicate{
			{Left: "title", Op: "LIKE", Right: 42},
		},
	})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestCompileMultiplePredicatesNumberInOrder(t *testing.T) {
	t.Parallel()

	compiled, err := Compile(model.QueryRequest{
		Select: []string{"id"},
		From:   "courses",
		Where: []model.QueryPredicate{
			{Left: "level", Op: "=", Right: 200},
			{Left: "credits", Op: "<", Right: 5},
		},
		Limit: 50,
	})
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM courses WHERE level = $1 AND credits < $2 LIMIT $3", compiled.SQL)
	assert.Equal(t, []interface{}{200, 5, 50}, compiled.Args)
}

func TestCompileResolvesTableAliases(t *testing.T) {
	t.Parallel()

	compiled, err := Compile(model.QueryRequest{
		Select: []string{"track_id", "key"},
		From:   "group",
	})
	require.NoError(t, err)
	assert.Contains(t, compiled.SQL, "FROM track_groups")
}

func TestCompileQualifiedColumns(t *testing.T) {
	t.Parallel()

	compiled, err := Compile(model.QueryRequest{
		Select: []string{"courses.id"},
		From:   "courses",
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM courses LIMIT $1", compiled.SQL)

	// A qualifier naming another table is cross-table smuggling.
	_, err = Compile(model.QueryRequest{
		Select: []string{"tracks.id"},
		From:   "courses",
	})
	assert.True(t, apperrors.IsValidationError(err))
}

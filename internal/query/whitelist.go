// Package query compiles structured query descriptions into parameterized
// SQL against a static whitelist, and executes the result. The compiler is
// structurally incapable of emitting anything but a whitelisted SELECT:
// the renderer has no representation for any other statement.
package query

// Op is a whitelisted comparison operator. The set is closed; rendering is
// an exhaustive switch with no default-allow path.
type Op string

const (
	OpEq   Op = "="
	OpNeq  Op = "!="
	OpLt   Op = "<"
	OpLte  Op = "<="
	OpGt   Op = ">"
	OpGte  Op = ">="
	OpIn   Op = "IN"
	OpLike Op = "LIKE"
)

const (
	// LimitCeiling is the hard cap on requested row counts.
	LimitCeiling = 500
	// DefaultLimit applies when the request omits a limit.
	DefaultLimit = 100
)

// tableAliases maps informal table names onto canonical whitelisted ones,
// the same resolve-before-lookup treatment course codes get.
var tableAliases = map[string]string{
	"course": "courses",
	"alias":  "course_aliases",
	"track":  "tracks",
	"group":  "track_groups",
	"groups": "track_groups",
	"plan":   "plan_audits",
	"plans":  "plan_audits",
}

// allowedColumns is the full query surface: table -> selectable columns.
// Anything absent here does not exist as far as the compiler is concerned.
var allowedColumns = map[string]map[string]bool{
	"courses": {
		"id":      true,
		"title":   true,
		"credits": true,
		"level":   true,
	},
	"course_aliases": {
		"alias":     true,
		"course_id": true,
	},
	"tracks": {
		"id":   true,
		"name": true,
	},
	"track_groups": {
		"track_id": true,
		"key":      true,
		"need":     true,
		"place":    true,
	},
	"plan_audits": {
		"id":               true,
		"student_id":       true,
		"snapshot_version": true,
		"term_count":       true,
		"total_credits":    true,
		"created_at":       true,
	},
}

// allowedOps is the closed operator set.
var allowedOps = map[Op]bool{
	OpEq:   true,
	OpNeq:  true,
	OpLt:   true,
	OpLte:  true,
	OpGt:   true,
	OpGte:  true,
	OpIn:   true,
	OpLike: true,
}

// resolveTable maps a requested table name to its canonical whitelisted
// form. The boolean is false for anything outside the whitelist.
func resolveTable(name string) (string, bool) {
	if _, ok := allowedColumns[name]; ok {
		return name, true
	}
	if canonical, ok := tableAliases[name]; ok {
		return canonical, true
	}
	return "", false
}

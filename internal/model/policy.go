package model

// Pace selects how aggressively the scheduler fills each term.
type Pace string

const (
	PaceSlow        Pace = "slow"
	PaceNormal      Pace = "normal"
	PaceAccelerated Pace = "accelerated"
)

// Valid reports whether p is a known pace. Empty means "use default".
func (p Pace) Valid() bool {
	return p == "" || p == PaceSlow || p == PaceNormal || p == PaceAccelerated
}

// Policy holds institution-level planning rules, loaded once per snapshot.
type Policy struct {
	MaxCreditsPerTerm        int          `json:"max_credits_per_term"`
	SummerAllowedDefault     bool         `json:"summer_allowed_default"`
	MinGradeDefault          Grade        `json:"min_grade_default"`
	OverloadRequiresApproval bool         `json:"overload_requires_approval"`
	PaceCreditTargets        map[Pace]int `json:"pace_credit_targets"`
}

// CreditTarget returns the per-term credit target for a pace, falling back
// to the hard per-term ceiling when no explicit target is configured.
func (p Policy) CreditTarget(pace Pace) int {
	if pace == "" {
		pace = PaceNormal
	}
	if t, ok := p.PaceCreditTargets[pace]; ok && t > 0 {
		if t > p.MaxCreditsPerTerm {
			return p.MaxCreditsPerTerm
		}
		return t
	}
	return p.MaxCreditsPerTerm
}

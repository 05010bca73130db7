package model

// ComputePlanRequest is the payload for computing a degree plan.
type ComputePlanRequest struct {
	Profile     StudentProfile `json:"profile" binding:"required"`
	Constraints Constraints    `json:"constraints"`
}

// ValidatePlanRequest asks the validator to check an externally proposed
// term assignment against the current snapshot.
type ValidatePlanRequest struct {
	Profile StudentProfile   `json:"profile" binding:"required"`
	Terms   []TermAssignment `json:"terms" binding:"required,min=1"`
}

// QueryPredicate is one where-clause entry of a structured query.
type QueryPredicate struct {
	Left  string      `json:"left" binding:"required"`
	Op    string      `json:"op" binding:"required"`
	Right interface{} `json:"right"`
}

// QueryRequest is the structured query description accepted by the query
// endpoint. It is compiled against a static whitelist; it is never
// interpolated into SQL text.
type QueryRequest struct {
	Select []string         `json:"select" binding:"required,min=1"`
	From   string           `json:"from" binding:"required"`
	Where  []QueryPredicate `json:"where"`
	Limit  int              `json:"limit" binding:"omitempty,min=1"`
}

// ServiceLoginRequest authenticates an automation/service account.
type ServiceLoginRequest struct {
	Name   string `json:"name" binding:"required,min=2,max=64"`
	Secret string `json:"secret" binding:"required,min=8,max=128"`
}

// ServiceLoginResponse is returned after successful service login.
type ServiceLoginResponse struct {
	Token string `json:"token"`
}

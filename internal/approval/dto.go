package approval

// DecisionDTO carries the optional reviewer comments for an approve or
// reject call.
type DecisionDTO struct {
	Comments string `json:"comments"`
}

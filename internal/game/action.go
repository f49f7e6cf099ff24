package game

import "strings"

type Action string

const (
	Cooperate Action = "cooperate"
	Defect    Action = "defect"
)

func (a Action) Valid() bool {
	return a == Cooperate || a == Defect
}

// ParseAction accepts "cooperate" or "defect" in any case.
func ParseAction(v string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(v))); a {
	case Cooperate, Defect:
		return a, nil
	default:
		return "", &FieldError{Field: "action", Value: v, Err: ErrInvalidAction}
	}
}

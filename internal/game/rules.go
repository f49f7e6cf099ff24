package game

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig     = errors.New("invalid_config")
	ErrUnknownStrategy   = errors.New("unknown_strategy")
	ErrInvalidMatrix     = errors.New("invalid_matrix")
	ErrInvalidAction     = errors.New("invalid_action")
	ErrSessionTerminated = errors.New("session_terminated")
)

// FieldError carries the offending field and value of a validation failure.
// It unwraps to one of the sentinel errors above.
type FieldError struct {
	Field  string
	Value  any
	Reason string
	Err    error
}

func (e *FieldError) Error() string {
	msg := fmt.Sprintf("%s: %s=%v", e.Err, e.Field, e.Value)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// PayoffMatrix holds the classic Prisoner's Dilemma payoffs:
// temptation, reward, punishment and sucker.
type PayoffMatrix struct {
	T int `json:"T"`
	R int `json:"R"`
	P int `json:"P"`
	S int `json:"S"`
}

func DefaultPayoffMatrix() PayoffMatrix {
	return PayoffMatrix{T: 5, R: 3, P: 1, S: 0}
}

func NewPayoffMatrix(t, r, p, s int) (PayoffMatrix, error) {
	m := PayoffMatrix{T: t, R: r, P: p, S: s}
	if err := m.Validate(); err != nil {
		return PayoffMatrix{}, err
	}
	return m, nil
}

// Validate enforces T > R > P > S and 2R > T + S.
func (m PayoffMatrix) Validate() error {
	if !(m.T > m.R && m.R > m.P && m.P > m.S) {
		return &FieldError{Field: "payoffs", Value: m.String(), Reason: "must satisfy T > R > P > S", Err: ErrInvalidMatrix}
	}
	if 2*m.R <= m.T+m.S {
		return &FieldError{Field: "payoffs", Value: m.String(), Reason: "must satisfy 2R > T + S", Err: ErrInvalidMatrix}
	}
	return nil
}

// Payoff returns the payoffs of players a and b for one round.
func (m PayoffMatrix) Payoff(a, b Action) (int, int) {
	switch {
	case a == Cooperate && b == Cooperate:
		return m.R, m.R
	case a == Defect && b == Defect:
		return m.P, m.P
	case a == Defect && b == Cooperate:
		return m.T, m.S
	default:
		return m.S, m.T
	}
}

func (m PayoffMatrix) String() string {
	return fmt.Sprintf("T=%d,R=%d,P=%d,S=%d", m.T, m.R, m.P, m.S)
}

func (m PayoffMatrix) isZero() bool {
	return m == PayoffMatrix{}
}

// Labels returns the matrix keyed by payoff name, as shown to players.
func (m PayoffMatrix) Labels() map[string]int {
	return map[string]int{"T": m.T, "R": m.R, "P": m.P, "S": m.S}
}

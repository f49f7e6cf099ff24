package game

import (
	"errors"
	"strings"
	"testing"
)

func TestPayoffOrientation(t *testing.T) {
	m := DefaultPayoffMatrix()
	cases := []struct {
		a, b   Action
		pa, pb int
	}{
		{Cooperate, Cooperate, 3, 3},
		{Defect, Defect, 1, 1},
		{Defect, Cooperate, 5, 0},
		{Cooperate, Defect, 0, 5},
	}
	for _, tc := range cases {
		pa, pb := m.Payoff(tc.a, tc.b)
		if pa != tc.pa || pb != tc.pb {
			t.Fatalf("payoff(%s,%s): expected (%d,%d), got (%d,%d)", tc.a, tc.b, tc.pa, tc.pb, pa, pb)
		}
	}
}

func TestPayoffSymmetry(t *testing.T) {
	m := PayoffMatrix{T: 7, R: 4, P: 2, S: 0}
	for _, a := range []Action{Cooperate, Defect} {
		for _, b := range []Action{Cooperate, Defect} {
			pa, pb := m.Payoff(a, b)
			qb, qa := m.Payoff(b, a)
			if pa != qa || pb != qb {
				t.Fatalf("payoff not symmetric for %s/%s", a, b)
			}
		}
	}
}

func TestNewPayoffMatrixValidation(t *testing.T) {
	cases := []struct {
		name       string
		t, r, p, s int
		clause     string
	}{
		{name: "ordering", t: 5, r: 6, p: 1, s: 0, clause: "T > R > P > S"},
		{name: "punishment above reward", t: 5, r: 3, p: 4, s: 0, clause: "T > R > P > S"},
		{name: "alternation beats cooperation", t: 10, r: 3, p: 1, s: 0, clause: "2R > T + S"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPayoffMatrix(tc.t, tc.r, tc.p, tc.s)
			if !errors.Is(err, ErrInvalidMatrix) {
				t.Fatalf("expected ErrInvalidMatrix, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.clause) {
				t.Fatalf("expected error to name %q, got %q", tc.clause, err.Error())
			}
		})
	}

	m, err := NewPayoffMatrix(5, 3, 1, 0)
	if err != nil {
		t.Fatalf("default matrix rejected: %v", err)
	}
	if m != DefaultPayoffMatrix() {
		t.Fatalf("unexpected matrix %v", m)
	}
}

func TestParseAction(t *testing.T) {
	for _, in := range []string{"cooperate", " Cooperate ", "COOPERATE"} {
		a, err := ParseAction(in)
		if err != nil || a != Cooperate {
			t.Fatalf("parse %q: got %q err=%v", in, a, err)
		}
	}
	if a, err := ParseAction("defect"); err != nil || a != Defect {
		t.Fatalf("parse defect: got %q err=%v", a, err)
	}
	_, err := ParseAction("betray")
	if !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Value != "betray" {
		t.Fatalf("expected field error carrying the value, got %#v", err)
	}
}

func TestLabels(t *testing.T) {
	l := DefaultPayoffMatrix().Labels()
	if l["T"] != 5 || l["R"] != 3 || l["P"] != 1 || l["S"] != 0 {
		t.Fatalf("unexpected labels %v", l)
	}
}

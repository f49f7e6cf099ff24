package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dilemma-lab/internal/game"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPlayAgainstAlwaysDefect(t *testing.T) {
	out, err := execute(t, "c\ncooperate\nC\n", "play", "--rounds", "3", "--strategy", "always_defect")
	require.NoError(t, err)

	assert.Contains(t, out, "3 rounds against always_defect")
	assert.Contains(t, out, "round 1/3, opponent plays defect")
	assert.Contains(t, out, "you cooperate, opponent defect: +0/+5, score 0-15")
	assert.Contains(t, out, "final score 0-15, winner: opponent")
}

func TestPlayRepromptsOnInvalidMove(t *testing.T) {
	out, err := execute(t, "x\nd\n", "play", "--rounds", "1", "--strategy", "always_cooperate")
	require.NoError(t, err)

	assert.Contains(t, out, "invalid_action")
	assert.Equal(t, 2, strings.Count(out, "round 1/1"))
	assert.Contains(t, out, "final score 5-0, winner: human")
}

func TestPlayInputClosedEarly(t *testing.T) {
	_, err := execute(t, "c\n", "play", "--rounds", "3")
	require.Error(t, err)
	assert.ErrorIs(t, err, errInputClosed)
	assert.Contains(t, err.Error(), "after 1 of 3 rounds")
}

func TestPlayRejectsBadConfig(t *testing.T) {
	_, err := execute(t, "", "play", "--rounds", "3", "--strategy", "grudger")
	assert.ErrorIs(t, err, game.ErrUnknownStrategy)

	_, err = execute(t, "", "play", "--rounds", "0")
	assert.ErrorIs(t, err, game.ErrInvalidConfig)
}

func TestPlaySeededRandomIsReproducible(t *testing.T) {
	moves := strings.Repeat("c\n", 8)
	first, err := execute(t, moves, "play", "--rounds", "8", "--strategy", "random", "--seed", "42")
	require.NoError(t, err)
	second, err := execute(t, moves, "play", "--rounds", "8", "--strategy", "random", "--seed", "42")
	require.NoError(t, err)

	// Session ids differ; everything after the header line must match.
	assert.Equal(t, first[strings.Index(first, "\n"):], second[strings.Index(second, "\n"):])
}

func TestPlayRandomUsesConfiguredProbability(t *testing.T) {
	moves := strings.Repeat("c\n", 6)

	t.Setenv("RANDOM_COOPERATE_PROB", "0")
	out, err := execute(t, moves, "play", "--rounds", "6", "--strategy", "random", "--seed", "7")
	require.NoError(t, err)
	assert.Equal(t, 6, strings.Count(out, "opponent plays defect"))
	assert.Contains(t, out, "final score 0-30, winner: opponent")

	t.Setenv("RANDOM_COOPERATE_PROB", "1")
	out, err = execute(t, moves, "play", "--rounds", "6", "--strategy", "random", "--seed", "7")
	require.NoError(t, err)
	assert.Equal(t, 6, strings.Count(out, "opponent plays cooperate"))
	assert.Contains(t, out, "final score 18-18")
}

func TestStrategiesCommand(t *testing.T) {
	out, err := execute(t, "", "strategies")
	require.NoError(t, err)
	for _, name := range game.StrategyNames() {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "Starts cooperating, then mirrors your last action")
}

func TestRecordsListAndShow(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions")

	out, err := execute(t, "", "records", "list", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "no records")

	out, err = execute(t, "d\nd\n", "play", "--rounds", "2", "--strategy", "tit_for_tat", "--export", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "exported to "+dir)
	id := strings.TrimPrefix(strings.SplitN(out, ":", 2)[0], "game ")

	out, err = execute(t, "", "records", "list", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "6-1")
	assert.Contains(t, out, "human")

	out, err = execute(t, "", "records", "show", id, "--dir", dir)
	require.NoError(t, err)
	var rec game.Record
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, id, rec.SessionID)
	require.Len(t, rec.Steps, 2)
	assert.True(t, rec.Steps[1].Done)

	_, err = execute(t, "", "records", "show", "missing", "--dir", dir)
	assert.Error(t, err)
}

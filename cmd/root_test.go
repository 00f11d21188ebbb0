package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanban-sim/kanban-sim/store"
)

// writeBoardFile drops a small board definition into a temp dir: three cards
// through one WIP-1 column needing two days of touch each.
func writeBoardFile(t *testing.T) string {
	t.Helper()
	doc := `
name: Tiny
seed: 42
backlog:
  name: Backlog
  cards:
    - name: c1
    - name: c2
    - name: c3
lanes:
  - name: Lane
    columns:
      - name: Dev
        wip_limit: 1
        touch:
          type: constant
          params: {value: 2}
`
	path := filepath.Join(t.TempDir(), "board.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

// captureStdout runs fn and returns everything it printed.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func TestIntSetting_ExplicitFlagWinsOverConfig(t *testing.T) {
	cmd := &cobra.Command{Use: "probe"}
	cmd.Flags().Int("trials", 100, "")
	viper.Set("trials", 7)
	defer viper.Set("trials", 100)

	// GIVEN the flag untouched, the config value applies
	assert.Equal(t, 7, intSetting(cmd, "trials", "trials", 100))

	// WHEN the flag is set explicitly, it wins
	require.NoError(t, cmd.Flags().Set("trials", "9"))
	assert.Equal(t, 9, intSetting(cmd, "trials", "trials", 9))
}

func TestInt64Setting_ExplicitFlagWinsOverConfig(t *testing.T) {
	cmd := &cobra.Command{Use: "probe"}
	cmd.Flags().Int64("seed", 42, "")
	viper.Set("seed", int64(1234))
	defer viper.Set("seed", int64(42))

	assert.Equal(t, int64(1234), int64Setting(cmd, "seed", "seed", 42))

	require.NoError(t, cmd.Flags().Set("seed", "99"))
	assert.Equal(t, int64(99), int64Setting(cmd, "seed", "seed", 99))
}

func TestRunCommand_PrintsOutcome(t *testing.T) {
	board := writeBoardFile(t)

	output := captureStdout(t, func() {
		rootCmd.SetArgs([]string{"run", "--board", board})
		require.NoError(t, rootCmd.Execute())
	})

	// Three WIP-1 cards at two days of touch each drain in six days.
	assert.Contains(t, output, "finished in 6 days")
	assert.Contains(t, output, "3 cards done")
	assert.Contains(t, output, "c1")
	assert.Contains(t, output, "c3")
}

func TestRunCommand_TraceFlagPrintsDayRecords(t *testing.T) {
	board := writeBoardFile(t)

	output := captureStdout(t, func() {
		rootCmd.SetArgs([]string{"run", "--board", board, "--trace"})
		require.NoError(t, rootCmd.Execute())
	})

	assert.Contains(t, output, "day    1:")
	assert.Contains(t, output, "day    6:")
	assert.Contains(t, output, "done=3")
}

func TestMontecarloCommand_SummarizesAndPersists(t *testing.T) {
	board := writeBoardFile(t)
	dbPath := filepath.Join(t.TempDir(), "results.db")

	output := captureStdout(t, func() {
		rootCmd.SetArgs([]string{"montecarlo", "--board", board, "--trials", "5", "--db", dbPath})
		require.NoError(t, rootCmd.Execute())
	})

	// Constant effort: every trial finishes on day 6.
	assert.Contains(t, output, "trials=5")
	assert.Contains(t, output, "mean=6.0")
	assert.Contains(t, output, "saved run")

	db, err := store.New(dbPath)
	require.NoError(t, err)
	defer db.Close()
	runs, err := db.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "Tiny", runs[0].Board)
	assert.Equal(t, 5, runs[0].Trials)

	trials, err := db.ListTrials(runs[0].ID)
	require.NoError(t, err)
	require.Len(t, trials, 5)
	for _, tr := range trials {
		assert.Equal(t, 6, tr.FinishDay)
		assert.Equal(t, 3, tr.CardsDone)
	}
}

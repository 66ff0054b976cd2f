// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/halvening/params"
	"github.com/vechain/halvening/schedule"
	"github.com/vechain/halvening/types"
)

const cycle = uint64(26 * 7 * 24 * 3600)

const testConfig = `
name: sim
schedule:
  start: 1000
  cycle-duration: 15724800
  initial-cycle-emission: "62_899_200"
escrow:
  funding: "125798400"
`

// alice holds one class 1 unit (weight 65) alone for a full period at rate 4.
const testScript = `
steps:
  - action: stake
    participant: alice
    amount: 1
    class: 1
  - action: claim
    participant: alice
    after: 1209600
  - action: claim
    participant: bob
    expect-revert: true
`

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run(append([]string{"halvening", "--verbosity", "0"}, args...))
	return out.String(), err
}

func TestPrintSchedule(t *testing.T) {
	sched, err := schedule.New(1000, cycle, uint256.NewInt(4*cycle))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printSchedule(&out, sched, 1000+cycle+1, 3))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "1\t1000\t4\t62899200", lines[1])
	assert.Equal(t, "3\t31450600\t1\t15724800", lines[3])
	assert.Equal(t, "at 15725801: cycle 2, rate 2", lines[5])

	out.Reset()
	require.NoError(t, printSchedule(&out, sched, 10, 1))
	assert.Contains(t, out.String(), "not started, begins at 1000")
}

func TestScheduleCommand(t *testing.T) {
	cfg := writeFile(t, "pool.yaml", testConfig)
	out, err := run(t, "schedule", "--config", cfg, "--now", "1001", "--cycles", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "2\t15725800\t2\t31449600")
	assert.Contains(t, out, "at 1001: cycle 1, rate 4")

	_, err = run(t, "schedule")
	assert.EqualError(t, err, "missing --config")
}

func TestSimulate(t *testing.T) {
	cfg := writeFile(t, "pool.yaml", testConfig)
	script := writeFile(t, "script.yaml", testScript)

	out, err := run(t, "simulate", "--config", cfg, "--script", script)
	require.NoError(t, err)
	assert.Contains(t, out, "1000\tstake\talice\t1\t\n")
	assert.Contains(t, out, "1210600\tclaim\talice\t\t4838399\n")
	assert.Contains(t, out, "1210600\tclaim\tbob\t\treverted: nothing to claim\n")
	assert.Contains(t, out, "alice\t"+participantAddress("alice").String()+"\tweight 65\tearned 0\n")
	assert.Contains(t, out, "bob\t"+participantAddress("bob").String()+"\tweight 0\tearned 0\n")
}

func TestSimulatePersists(t *testing.T) {
	cfg := writeFile(t, "pool.yaml", testConfig)
	dataDir := t.TempDir()

	_, err := run(t, "simulate", "--config", cfg, "--data-dir", dataDir, "--script", writeFile(t, "a.yaml", testScript))
	require.NoError(t, err)

	// alice already claimed at that time, and the escrow is not funded twice
	again := `
steps:
  - action: claim
    participant: alice
    at: 1210600
    expect-revert: true
`
	out, err := run(t, "simulate", "--config", cfg, "--data-dir", dataDir, "--script", writeFile(t, "b.yaml", again))
	require.NoError(t, err)
	assert.Contains(t, out, "reverted: nothing to claim")

	inst, err := openInstance(mustLoad(t, cfg, dataDir), 16)
	require.NoError(t, err)
	defer inst.close()
	lifetime, err := inst.pool.LifetimeRewards()
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(8*cycle), lifetime)
	assert.Equal(t, uint256.NewInt(8*cycle-4838399), inst.token.Reserve())
}

func TestSimulateUnexpected(t *testing.T) {
	cfg := writeFile(t, "pool.yaml", testConfig)

	_, err := run(t, "simulate", "--config", cfg, "--script", writeFile(t, "s.yaml", `
steps:
  - action: claim
    participant: alice
`))
	assert.ErrorContains(t, err, "step 0: claim: nothing to claim")

	_, err = run(t, "simulate", "--config", cfg, "--script", writeFile(t, "s.yaml", `
steps:
  - action: add-reward
    amount: 5
    expect-revert: true
`))
	assert.ErrorContains(t, err, "step 0: add-reward succeeded, expected a revert")
}

func TestLoadScriptErrors(t *testing.T) {
	for _, tt := range []struct {
		script string
		err    string
	}{
		{"steps:\n  - action: dance\n", `step 0: unknown action "dance"`},
		{"steps:\n  - action: stake\n    participant: a\n", "step 0: stake needs a participant and an amount"},
		{"steps:\n  - action: fund\n", "step 0: fund needs an amount"},
		{"steps:\n  - action: claim\n", "step 0: claim needs a participant"},
		{"steps:\n  - action: claim\n    who: a\n", "decode script"},
	} {
		_, err := loadScript(writeFile(t, "s.yaml", tt.script))
		assert.ErrorContains(t, err, tt.err, tt.script)
	}
}

func TestParticipantAddress(t *testing.T) {
	addr := types.BytesToAddress([]byte("alice"))
	assert.Equal(t, addr, participantAddress(addr.String()))
	assert.Equal(t, participantAddress("alice"), participantAddress("alice"))
	assert.NotEqual(t, participantAddress("alice"), participantAddress("bob"))
}

func mustLoad(t *testing.T, path, dataDir string) *params.Config {
	cfg, err := params.Load(path)
	require.NoError(t, err)
	cfg.DataDir = dataDir
	return cfg
}

func TestNormalizeCacheSize(t *testing.T) {
	assert.Equal(t, 16, normalizeCacheSize(1))
	assert.Greater(t, normalizeCacheSize(1<<30), 0)
	assert.Greater(t, suggestFDCache(), 0)
}

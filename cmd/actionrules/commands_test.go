package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRuleset  = "../../testdata/ruleset.yaml"
	testScenario = "../../testdata/scenario.yaml"
)

func TestRunValidate(t *testing.T) {
	isolateHome(t)
	var out bytes.Buffer

	code := runValidate([]string{"-log-level", "error", testRuleset}, &out)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), `ok (ruleset "classic", 14 enablers)`)
}

func TestRunValidate_Invalid(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"name: bad\nactions:\n  - action: Nuke City\n"), 0o600))
	var out bytes.Buffer

	code := runValidate([]string{"-log-level", "error", "-ruleset", path}, &out)
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "invalid")
	assert.Contains(t, out.String(), `unknown action "Nuke City"`)
}

func TestRunValidate_ReportsAllErrors(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`name: bad
enablers:
  - action: Nuke City
  - action: Establish Embassy
    actor_reqs:
      - expr: player.gold >
`), 0o600))
	var out bytes.Buffer

	code := runValidate([]string{"-log-level", "error", "-ruleset", path}, &out)
	assert.Equal(t, 1, code)
	text := out.String()
	assert.Contains(t, text, "invalid (2 errors)")
	assert.Contains(t, text, `enablers[0].action: unknown action "Nuke City"`)
	assert.Contains(t, text, "enablers[1].actor_reqs[0]")
}

func TestRunInspect_City(t *testing.T) {
	isolateHome(t)
	var out bytes.Buffer

	code := runInspect([]string{
		"-ruleset", testRuleset, "-scenario", testScenario, "-log-level", "error",
		"-actor", "100", "-city", "20",
	}, &out)
	require.Equal(t, 0, code)

	text := out.String()
	assert.Contains(t, text, "ACTION")
	assert.Contains(t, text, "Establish Embassy")
	assert.Contains(t, text, "Establish Embassy (and stay) (100%)")
	assert.NotContains(t, text, "Bribe Unit", "unit actions are not relevant against a city")
}

func TestRunInspect_UnitJSON(t *testing.T) {
	isolateHome(t)
	var out bytes.Buffer

	code := runInspect([]string{
		"-ruleset", testRuleset, "-scenario", testScenario, "-log-level", "error",
		"-actor", "101", "-unit", "200", "-json",
	}, &out)
	require.Equal(t, 0, code)

	var rows []struct {
		Action      string         `json:"action"`
		Enabled     bool           `json:"enabled"`
		Probability map[string]any `json:"probability"`
		UIName      string         `json:"ui_name"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Bribe Unit", rows[0].Action)
	assert.True(t, rows[0].Enabled)
	assert.Equal(t, "94%", rows[0].Probability["text"])
	assert.Equal(t, "Bribe Enemy Unit (94%)", rows[0].UIName)
	assert.Equal(t, "Sabotage Unit", rows[1].Action)
}

func TestRunInspect_BadTarget(t *testing.T) {
	isolateHome(t)
	var out bytes.Buffer

	assert.Equal(t, 2, runInspect([]string{"-actor", "100"}, &out))
	assert.Equal(t, 2, runInspect([]string{"-actor", "100", "-city", "20", "-unit", "200"}, &out))
	assert.Equal(t, 1, runInspect([]string{
		"-ruleset", testRuleset, "-scenario", testScenario, "-log-level", "error",
		"-actor", "999", "-city", "20",
	}, &out))
}

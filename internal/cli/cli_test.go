package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

const testScenario = `name: Safe play
seed: 3
rounds:
  - {airport_ops: private_gate, airline_control: buffer_10, maintenance: fix_now}
  - {airport_ops: private_gate, airline_control: buffer_10, maintenance: fix_now}
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	prevScenario, prevSeed, prevJSON := runScenario, runSeed, runJSON
	defer func() {
		runScenario, runSeed, runJSON = prevScenario, prevSeed, prevJSON
		runCmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	}()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return out.String(), err
}

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCmd_JSON(t *testing.T) {
	path := writeScenario(t, testScenario)
	out, err := execute(t, "run", "--scenario", path, "--json")
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	var got runJSONOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if got.Name != "Safe play" || got.Seed != 3 {
		t.Errorf("header %q/%d", got.Name, got.Seed)
	}
	if len(got.Rounds) != 2 || got.Team.CompletedRounds != 2 {
		t.Fatalf("rounds %d, completed %d", len(got.Rounds), got.Team.CompletedRounds)
	}
	if got.Team.TotalDirectCost.IntPart() != 1600 {
		t.Errorf("direct cost %s, want 1600", got.Team.TotalDirectCost)
	}
	if got.Rounds[0].Choices["maintenance"] != "fix_now" {
		t.Errorf("choices %v", got.Rounds[0].Choices)
	}
}

func TestRunCmd_Table(t *testing.T) {
	path := writeScenario(t, testScenario)
	out, err := execute(t, "run", "--scenario", path, "--seed", "11")
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	for _, want := range []string{"Safe play (seed 11)", "Airport Operations", "rounds completed 2/5"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunCmd_BadScenario(t *testing.T) {
	path := writeScenario(t, "rounds:\n  - {airport_ops: defer}\n")
	if _, err := execute(t, "run", "--scenario", path); err == nil {
		t.Error("expected error for invalid choice")
	}
}

func TestOptionsCmd(t *testing.T) {
	out, err := execute(t, "options")
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	for _, want := range []string{"Dedicated/Private Gate", "50% Gate clash +10 min", "40% Deferral penalty +$1,000", "none"} {
		if !strings.Contains(out, want) {
			t.Errorf("options missing %q:\n%s", want, out)
		}
	}
}

func TestRunCmd_ReportsEffectiveSeed(t *testing.T) {
	body := strings.Replace(testScenario, "seed: 3\n", "", 1)
	path := writeScenario(t, body)
	out, err := execute(t, "run", "--scenario", path, "--json")
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	var got runJSONOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Seed == 0 {
		t.Fatal("reported seed is 0, the run cannot be replayed")
	}

	replay := writeScenario(t, strings.Replace(testScenario, "seed: 3", "seed: "+strconv.FormatUint(got.Seed, 10), 1))
	again, err := execute(t, "run", "--scenario", replay, "--json")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	var second runJSONOutput
	if err := json.Unmarshal([]byte(again), &second); err != nil {
		t.Fatalf("decode replay: %v", err)
	}
	if second.Seed != got.Seed || second.Team.TotalGroundMinutes != got.Team.TotalGroundMinutes {
		t.Errorf("replay diverged: seed %d/%d, ground minutes %d/%d",
			got.Seed, second.Seed, got.Team.TotalGroundMinutes, second.Team.TotalGroundMinutes)
	}
	for i := range got.Rounds {
		if got.Rounds[i].Event != second.Rounds[i].Event {
			t.Errorf("round %d event %q, replay %q", i+1, got.Rounds[i].Event, second.Rounds[i].Event)
		}
	}
}

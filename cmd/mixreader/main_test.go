package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iafilius/EnergyMix/src/types"
)

func writeInput(t *testing.T, dir string) string {
	t.Helper()
	lines := []string{
		"Entity,Code,Year," + strings.Join(types.DefaultSchema().Columns(), ","),
		"World,OWID_WRL,2022,10300,6500,800,2700,4300,2100,1290,690,100",
		"China,CHN,2022,5400,290,10,420,1300,760,430,180,1",
		"Norway,NOR,2022,0.2,1.9,0,0,127,14,0.3,0.3,0",
		"Poland,POL,2022,100,15,1,0,2,25,12,8,0",
	}
	p := filepath.Join(dir, "mix.csv")
	if err := os.WriteFile(p, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRun_SnapshotView(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	code := run([]string{"-input", writeInput(t, dir), "-view", "snapshot", "-env-file", filepath.Join(dir, "none.env")}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "Top 4 by low-carbon share (2022)") || !strings.Contains(out, "Norway") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "World: ") {
		t.Fatalf("snapshot view must not print the world table:\n%s", out)
	}
}

// Settings come from the .env layer like in the pipeline.
func TestRun_EnvFileApplies(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, "reader.env")
	if err := os.WriteFile(env, []byte("ENERGYMIX_TOP_N=2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("ENERGYMIX_TOP_N") })
	var stdout, stderr bytes.Buffer
	code := run([]string{"-input", writeInput(t, dir), "-view", "snapshot", "-env-file", env}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Top 2 by low-carbon share") {
		t.Fatalf("top-n from env not applied:\n%s", stdout.String())
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	noEnv := filepath.Join(dir, "none.env")
	cases := map[string]struct {
		args []string
		code int
	}{
		"unknown view":  {[]string{"-input", writeInput(t, dir), "-view", "charts"}, 2},
		"bad log level": {[]string{"-input", writeInput(t, dir), "-log-level", "loud"}, 1},
		"missing input": {[]string{"-input", filepath.Join(dir, "nope.csv")}, 1},
	}
	for name, c := range cases {
		var stdout, stderr bytes.Buffer
		if got := run(append(c.args, "-env-file", noEnv), &stdout, &stderr); got != c.code {
			t.Fatalf("%s: exit %d want %d (%s)", name, got, c.code, stderr.String())
		}
	}
}

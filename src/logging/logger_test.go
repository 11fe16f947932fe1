package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestInfof_NoDoubleFormattingWithPercent(t *testing.T) {
	var buf bytes.Buffer
	defer SetOutput(&buf)()

	if err := SetLevel("info"); err != nil {
		t.Fatalf("set level: %v", err)
	}
	msg := "[snapshot 2023] Iceland low_carbon=100.0% of 19.9 TWh"
	Infof(msg)

	out := buf.String()
	if !strings.Contains(out, "100.0% of 19.9") {
		t.Fatalf("log output missing expected percent segment: %s", out)
	}
	if strings.Contains(out, "%!o(MISSING)") {
		t.Fatalf("log output still shows fmt artifact: %s", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	defer SetOutput(&buf)()
	defer SetLevel("info")

	if err := SetLevel("warn"); err != nil {
		t.Fatalf("set level: %v", err)
	}
	Debugf("debug %d", 1)
	Infof("info %d", 2)
	Warnf("warn %d", 3)
	Errorf("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Fatalf("messages below warn leaked: %s", out)
	}
	if !strings.Contains(out, "[WARN] warn 3") || !strings.Contains(out, "[ERROR] error 4") {
		t.Fatalf("expected warn and error lines, got: %s", out)
	}
}

func TestSetLevelUnknown(t *testing.T) {
	defer SetLevel("info")
	SetLevel("error")
	if err := SetLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if GetLevel() != LevelError {
		t.Fatalf("unknown level must not change current level, got %v", GetLevel())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": LevelDebug, " INFO ": LevelInfo, "Warn": LevelWarn, "error": LevelError}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("warning"); err == nil {
		t.Fatalf("only the four configured names are accepted")
	}
	if LevelWarn.String() != "WARN" || Level(9).String() != "LEVEL(9)" {
		t.Fatalf("level tags: %s %s", LevelWarn, Level(9))
	}
}

func TestTimeTrack_DebugOnly(t *testing.T) {
	var buf bytes.Buffer
	defer SetOutput(&buf)()
	defer SetLevel("info")

	TimeTrack(time.Now(), "load")
	if buf.Len() != 0 {
		t.Fatalf("phase timing must stay quiet at info: %s", buf.String())
	}
	SetLevel("debug")
	TimeTrack(time.Now(), "load")
	if !strings.HasPrefix(buf.String(), "[DEBUG] load took ") {
		t.Fatalf("got %q", buf.String())
	}
}

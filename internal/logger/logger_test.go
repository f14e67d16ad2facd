package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := New(false, &buf)

	l.Info("parsed %d scripts", 3)
	l.Debug("hidden")
	l.Warn("careful")
	l.Error("boom")

	out := buf.String()
	for _, want := range []string{"[INFO]  ", "parsed 3 scripts", "[WARN]  careful", "[ERROR] "} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug output shown without verbose:\n%s", out)
	}
}

func TestLogger_Verbose(t *testing.T) {
	var buf bytes.Buffer
	l := New(false, &buf)
	l.SetVerbose(true)
	if !l.IsVerbose() {
		t.Fatal("IsVerbose() = false after SetVerbose(true)")
	}
	l.Debug("shown")
	if !strings.Contains(buf.String(), "[DEBUG] shown") {
		t.Errorf("debug output missing:\n%s", buf.String())
	}
}

func TestLogger_Quiet(t *testing.T) {
	var buf bytes.Buffer
	l := New(false, &buf)
	l.SetQuiet(true)
	l.Info("no")
	l.Warn("no")
	l.Error("yes")
	out := buf.String()
	if strings.Contains(out, "no") || !strings.Contains(out, "yes") {
		t.Errorf("unexpected output in quiet mode:\n%s", out)
	}
}

func TestDefaultLogger(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	var buf bytes.Buffer
	SetDefault(New(false, &buf))
	SetVerbose(true)
	Debug("via package")
	if !IsVerbose() || !strings.Contains(buf.String(), "via package") {
		t.Errorf("package-level logging did not reach the default logger:\n%s", buf.String())
	}
}

package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/YuminosukeSato/margo/pkg/errors"
)

func TestSetupRejectsBadLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup(&buf, "loud"); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestWarningBridge(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup(&buf, "warn"); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	defer errors.SetZerologWarnFunc(nil)

	errors.Warn(errors.NewIllConditionedVarianceWarning("x1", -2.5e-13))

	out := buf.String()
	if !strings.Contains(out, "IllConditionedVarianceWarning") {
		t.Errorf("structured type field missing from log output: %s", out)
	}
	if !strings.Contains(out, "x1") {
		t.Errorf("term field missing from log output: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"debug", "info", "warn", "error"} {
		if _, err := ParseLevel(name); err != nil {
			t.Errorf("ParseLevel(%q) failed: %v", name, err)
		}
	}
}

package logx_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/Tiliavir/portfolio-api/internal/logx"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{" WARN ", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"", logrus.InfoLevel},
		{"verbose", logrus.InfoLevel},
	}
	for _, tt := range tests {
		if got := logx.ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestForJSON(t *testing.T) {
	var buf bytes.Buffer
	logx.Init("info", "json")
	logx.SetOutput(&buf)
	t.Cleanup(func() { logx.Init("info", "text") })

	logx.For("github").WithField("status", 502).Error("upstream failed")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["component"] != "github" {
		t.Errorf("component = %v, want github", line["component"])
	}
	if line["msg"] != "upstream failed" {
		t.Errorf("msg = %v, want %q", line["msg"], "upstream failed")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logx.Init("warn", "text")
	logx.SetOutput(&buf)
	t.Cleanup(func() { logx.Init("info", "text") })

	logx.For("storage").Info("should not print")
	logx.For("storage").Warn("warn on")

	out := buf.String()
	if strings.Contains(out, "should not print") {
		t.Errorf("info line printed at warn level: %q", out)
	}
	if !strings.Contains(out, "warn on") {
		t.Errorf("missing warn line: %q", out)
	}
}

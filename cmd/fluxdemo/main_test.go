package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestLoadScript_Default(t *testing.T) {
	cfg, err := loadScript("")
	if err != nil {
		t.Fatalf("loadScript: %v", err)
	}
	if len(cfg.Actions) != 7 {
		t.Fatalf("default script has %d actions, want 7", len(cfg.Actions))
	}
	if !cfg.Dispatch.NotifyOnFailure {
		t.Fatal("NotifyOnFailure should default to true")
	}
}

func TestLoadScript_File(t *testing.T) {
	path := writeScript(t, `
log_level = "debug"
max_wait_depth = 4
notify_on_failure = false

[[action]]
type = "set"
data = 41

[[action]]
type = "increment"
`)

	cfg, err := loadScript(path)
	if err != nil {
		t.Fatalf("loadScript: %v", err)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.Dispatch.MaxWaitDepth != 4 || cfg.Dispatch.NotifyOnFailure {
		t.Errorf("Dispatch = %+v", cfg.Dispatch)
	}
	if len(cfg.Actions) != 2 || cfg.Actions[0].Type != "set" || cfg.Actions[0].Data != int64(41) {
		t.Errorf("Actions = %+v", cfg.Actions)
	}
}

func TestLoadScript_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad level", `log_level = "loud"`},
		{"negative depth", `max_wait_depth = -1`},
		{"empty type", "[[action]]\ntype = \"\"\n"},
		{"not toml", `this is = = not toml`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadScript(writeScript(t, tt.body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	if _, err := loadScript(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestRun_DefaultScript(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), defaultScript(), &out); err != nil {
		t.Fatalf("run: %v\n%s", err, out.String())
	}

	got := out.String()
	for _, want := range []string{
		"CountStore: 1\n",
		"TodosStore: [{ID:0 Desc:Do important thing Done:true Trash:true} {ID:1 Desc:Do important thing #2 Done:false Trash:false}]\n",
		"dispatches: 7 completed, 0 failed\n",
		"state changed",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRun_FailedActionsReported(t *testing.T) {
	cfg := defaultScript()
	cfg.Actions = []scriptAction{
		{Type: "set", Data: "not a number"},
		{Type: "increment"},
	}

	var out bytes.Buffer
	err := run(context.Background(), cfg, &out)
	if err == nil || !strings.Contains(err.Error(), "1 of 2 actions failed") {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(out.String(), "CountStore: 1\n") {
		t.Errorf("output:\n%s", out.String())
	}
}

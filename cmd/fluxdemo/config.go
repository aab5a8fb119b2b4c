package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/fluxury/fluxury"
)

// scriptConfig is the demo configuration plus the actions to replay.
type scriptConfig struct {
	LogLevel slog.Level
	Dispatch fluxury.Config
	Actions  []scriptAction
}

type scriptAction struct {
	Type string `toml:"type"`
	Data any    `toml:"data"`
}

type fileConfig struct {
	LogLevel        string         `toml:"log_level"`
	MaxWaitDepth    int            `toml:"max_wait_depth"`
	NotifyOnFailure bool           `toml:"notify_on_failure"`
	Actions         []scriptAction `toml:"action"`
}

// defaultScript replays the counter and todos walkthrough.
func defaultScript() scriptConfig {
	return scriptConfig{
		LogLevel: slog.LevelInfo,
		Dispatch: fluxury.DefaultConfig(),
		Actions: []scriptAction{
			{Type: "increment"},
			{Type: "increment"},
			{Type: "decrement"},
			{Type: "setTodo", Data: map[string]any{"id": int64(0), "desc": "Do important thing"}},
			{Type: "setTodo", Data: map[string]any{"id": int64(1), "desc": "Do important thing #2"}},
			{Type: "markDone", Data: int64(0)},
			{Type: "trashTodo", Data: int64(0)},
		},
	}
}

func loadScript(path string) (scriptConfig, error) {
	cfg := defaultScript()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return scriptConfig{}, fmt.Errorf("load script: %w", err)
	}

	if meta.IsDefined("log_level") {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.TrimSpace(raw.LogLevel))); err != nil {
			return scriptConfig{}, fmt.Errorf("parse log_level: %w", err)
		}
	}

	if meta.IsDefined("max_wait_depth") {
		if raw.MaxWaitDepth < 0 {
			return scriptConfig{}, fmt.Errorf("max_wait_depth must not be negative, got %d", raw.MaxWaitDepth)
		}
		cfg.Dispatch.MaxWaitDepth = raw.MaxWaitDepth
	}

	if meta.IsDefined("notify_on_failure") {
		cfg.Dispatch.NotifyOnFailure = raw.NotifyOnFailure
	}

	if meta.IsDefined("action") {
		cfg.Actions = raw.Actions
		for i, a := range cfg.Actions {
			if strings.TrimSpace(a.Type) == "" {
				return scriptConfig{}, fmt.Errorf("action %d: empty type", i)
			}
		}
	}

	return cfg, nil
}

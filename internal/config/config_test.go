package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveDBPath(t *testing.T) {
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		flag   string
		env    string
		config string
		want   string
	}{
		{name: "default", want: filepath.Join(cwd, DefaultDBFile)},
		{name: "global config", config: "db_path: /cfg/db.json\n", want: "/cfg/db.json"},
		{name: "env beats config", env: "/env/db.json", config: "db_path: /cfg/db.json\n", want: "/env/db.json"},
		{name: "flag beats env", flag: "/flag/db.json", env: "/env/db.json", want: "/flag/db.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeGlobalConfig(t, tt.config)
			t.Setenv(EnvDBPath, tt.env)

			got, err := ResolveDBPath(tt.flag)
			if err != nil {
				t.Fatalf("ResolveDBPath: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveDBPath(%q) = %q, want %q", tt.flag, got, tt.want)
			}
		})
	}
}

func TestResolveMirrorPath(t *testing.T) {
	writeGlobalConfig(t, "")
	t.Setenv(EnvMirrorPath, "")

	got, err := ResolveMirrorPath("", "/data/db.json")
	if err != nil {
		t.Fatalf("ResolveMirrorPath: %v", err)
	}
	if got != "/data/db.sqlite" {
		t.Errorf("ResolveMirrorPath = %q, want /data/db.sqlite", got)
	}

	t.Setenv(EnvMirrorPath, "/env/m.sqlite")
	got, _ = ResolveMirrorPath("", "/data/db.json")
	if got != "/env/m.sqlite" {
		t.Errorf("ResolveMirrorPath = %q, want /env/m.sqlite", got)
	}

	got, _ = ResolveMirrorPath("/flag/m.sqlite", "/data/db.json")
	if got != "/flag/m.sqlite" {
		t.Errorf("ResolveMirrorPath = %q, want /flag/m.sqlite", got)
	}
}

func TestGlobalConfigSet(t *testing.T) {
	var cfg GlobalConfig

	if err := cfg.Set("db_path", "/x.json"); err != nil {
		t.Fatalf("Set db_path: %v", err)
	}
	if cfg.DBPath != "/x.json" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if err := cfg.Set("indent", "true"); err != nil || !cfg.Indent {
		t.Errorf("Set indent: err=%v indent=%v", err, cfg.Indent)
	}
	if err := cfg.Set("indent", "maybe"); err == nil {
		t.Error("Set indent=maybe should fail")
	}
	if err := cfg.Set("log_level", "loud"); err == nil {
		t.Error("Set log_level=loud should fail")
	}
	if err := cfg.Set("nope", "x"); err == nil {
		t.Error("Set unknown key should fail")
	}
}

func TestValidateLogLevel(t *testing.T) {
	for _, level := range append([]string{""}, ValidLogLevels...) {
		if err := ValidateLogLevel(level); err != nil {
			t.Errorf("ValidateLogLevel(%q) = %v", level, err)
		}
	}
	if err := ValidateLogLevel("trace"); err == nil {
		t.Error("ValidateLogLevel(trace) should fail")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := map[string]string{
		"":          "",
		"/abs/path": "/abs/path",
		"rel/path":  "rel/path",
		"~/db.json": filepath.Join(home, "db.json"),
		"~":         home,
	}
	for in, want := range tests {
		if got := ExpandPath(in); got != want {
			t.Errorf("ExpandPath(%q) = %q, want %q", in, got, want)
		}
	}
}

package plugin

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, root, dir string, m Manifest) string {
	t.Helper()

	pluginDir := filepath.Join(root, dir)
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pluginDir, manifestFile), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return pluginDir
}

func TestManager_Discover(t *testing.T) {
	root := t.TempDir()
	pluginDir := writeManifest(t, root, "command", Manifest{
		Name:        "command",
		Version:     "1.0.0",
		Description: "Runs a command",
		Executable:  "command",
		Actions:     []string{"run"},
	})
	writeManifest(t, root, "beta", Manifest{Name: "beta", Executable: "beta"})
	writeManifest(t, root, "nameless", Manifest{Executable: "x"})

	if err := os.MkdirAll(filepath.Join(root, "no-manifest"), 0755); err != nil {
		t.Fatal(err)
	}
	badDir := filepath.Join(root, "bad")
	if err := os.MkdirAll(badDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(badDir, manifestFile), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "stray.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	manager := NewManager(root)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(plugins))
	}
	if plugins[0].Manifest.Name != "beta" || plugins[1].Manifest.Name != "command" {
		t.Errorf("List() not sorted: %s, %s", plugins[0].Manifest.Name, plugins[1].Manifest.Name)
	}

	p, err := manager.Get("command")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.Path != pluginDir {
		t.Errorf("Path = %q, want %q", p.Path, pluginDir)
	}
	if p.Executable != filepath.Join(pluginDir, "command") {
		t.Errorf("Executable = %q", p.Executable)
	}
	if p.Manifest.Description != "Runs a command" {
		t.Errorf("Description = %q", p.Manifest.Description)
	}
}

func TestManager_Discover_Rescan(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "a", Manifest{Name: "a", Executable: "a"})

	manager := NewManager(root)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if len(manager.List()) != 1 {
		t.Fatalf("expected 1 plugin after first scan")
	}

	if err := os.RemoveAll(filepath.Join(root, "a")); err != nil {
		t.Fatal(err)
	}
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if len(manager.List()) != 0 {
		t.Errorf("removed plugin still listed after rescan")
	}
}

func TestManager_Discover_NonExistentDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	manager := NewManager(dir)
	if err := manager.Discover(); err != nil {
		t.Errorf("Discover() error = %v, want nil for missing dir", err)
	}
	if len(manager.List()) != 0 {
		t.Error("expected no plugins")
	}
	if manager.PluginDir() != dir {
		t.Errorf("PluginDir() = %q, want %q", manager.PluginDir(), dir)
	}
}

func TestManager_Get_NotFound(t *testing.T) {
	manager := NewManager(t.TempDir())
	if _, err := manager.Get("missing"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("Get() error = %v, want ErrPluginNotFound", err)
	}
}

func TestManager_Resolve(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "command", Manifest{Name: "command", Executable: "command", Actions: []string{"run"}})

	manager := NewManager(root)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	tests := []struct {
		plugin, action string
		wantErr        error
	}{
		{"command", "run", nil},
		{"command", "fly", ErrActionNotSupported},
		{"other", "run", ErrPluginNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.plugin+"/"+tt.action, func(t *testing.T) {
			p, err := manager.Resolve(tt.plugin, tt.action)
			if tt.wantErr == nil {
				if err != nil || p == nil {
					t.Fatalf("Resolve() = %v, %v", p, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Resolve() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestManifest_Supports(t *testing.T) {
	m := Manifest{Actions: []string{"run", "stop"}}
	if !m.Supports("stop") {
		t.Error("Supports(stop) = false")
	}
	if m.Supports("") {
		t.Error("Supports(\"\") = true")
	}
}

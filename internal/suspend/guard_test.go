package suspend

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestGuard_OverrideFile(t *testing.T) {
	overridePath := filepath.Join(t.TempDir(), "suspend_override")
	guard := NewGuard(testLogger(), overridePath, false)

	blocked, _ := guard.Blocked()
	if blocked {
		t.Error("Expected no block when override file is absent")
	}

	if err := os.WriteFile(overridePath, nil, 0o600); err != nil {
		t.Fatalf("Failed to create override file: %v", err)
	}

	blocked, reason := guard.Blocked()
	if !blocked {
		t.Error("Expected block when override file exists")
	}
	if reason != ReasonOverrideFile {
		t.Errorf("Expected reason %s, got %s", ReasonOverrideFile, reason)
	}
}

func TestGuard_Inhibitors(t *testing.T) {
	guard := NewGuard(testLogger(), "", true)
	guard.runner = func(name string, args ...string) ([]byte, error) {
		return []byte("gnome-session  1000  user  sleep  block  inhibited\n"), nil
	}

	blocked, reason := guard.Blocked()
	if !blocked {
		t.Error("Expected block with active sleep inhibitor")
	}
	if reason != ReasonInhibitors {
		t.Errorf("Expected reason %s, got %s", ReasonInhibitors, reason)
	}
}

func TestGuard_InhibitorCheckFailureDoesNotBlock(t *testing.T) {
	guard := NewGuard(testLogger(), "", true)
	guard.runner = func(name string, args ...string) ([]byte, error) {
		return nil, fmt.Errorf("command not found")
	}

	if blocked, _ := guard.Blocked(); blocked {
		t.Error("A failed inhibitor check must not block suspension")
	}
}

func TestGuard_InhibitorsDisabled(t *testing.T) {
	guard := NewGuard(testLogger(), "", false)
	guard.runner = func(name string, args ...string) ([]byte, error) {
		t.Fatal("Inhibitor check disabled, runner must not be called")
		return nil, nil
	}

	if blocked, _ := guard.Blocked(); blocked {
		t.Error("Expected no block with all checks disabled")
	}
}

func TestParseInhibitors(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []string
	}{
		{
			name:   "empty output",
			output: "",
			want:   []string{},
		},
		{
			name:   "sleep inhibitor",
			output: "NetworkManager  0  root  sleep  delay  holding\n",
			want:   []string{"NetworkManager"},
		},
		{
			name:   "shutdown inhibitor",
			output: "pkgmanager  0  root  shutdown  block  upgrading\n",
			want:   []string{"pkgmanager"},
		},
		{
			name:   "unrelated inhibitors ignored",
			output: "gnome  1000  user  handle-lid-switch  block  docked\n",
			want:   []string{},
		},
		{
			name: "mixed lines",
			output: "NetworkManager  0  root  sleep  delay  holding\n" +
				"gnome  1000  user  handle-lid-switch  block  docked\n" +
				"pkgmanager  0  root  shutdown  block  upgrading\n",
			want: []string{"NetworkManager", "pkgmanager"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseInhibitors(tt.output)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseInhibitors() = %v, want %v", got, tt.want)
			}
		})
	}
}

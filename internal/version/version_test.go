package version

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// TestHelperProcess isn't a real test. It stands in for git when
// execCommand is replaced.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	args := os.Args
	for len(args) > 0 {
		if args[0] == "--" {
			args = args[1:]
			break
		}
		args = args[1:]
	}
	if len(args) < 3 || args[0] != "git" || args[1] != "describe" {
		os.Exit(2)
	}

	switch args[2] {
	case "--always":
		if os.Getenv("MOCK_GIT_COMMIT_FAIL") == "1" {
			os.Exit(1)
		}
		os.Stdout.WriteString("abc1234\n")
	case "--tags":
		if os.Getenv("MOCK_GIT_VERSION_FAIL") == "1" {
			os.Exit(1)
		}
		if os.Getenv("MOCK_GIT_VERSION_EMPTY") != "1" {
			os.Stdout.WriteString("v1.2.0\n")
		}
	}
}

func fakeGit(env ...string) func(ctx context.Context, name string, args ...string) *exec.Cmd {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append([]string{"GO_WANT_HELPER_PROCESS=1"}, env...)
		return cmd
	}
}

func TestInfo(t *testing.T) {
	orig := execCommand
	t.Cleanup(func() {
		execCommand = orig
		Reset()
	})

	tests := []struct {
		name       string
		env        []string
		wantVer    string
		wantCommit string
	}{
		{name: "Success", wantVer: "1.2.0", wantCommit: "abc1234"},
		{name: "CommitFail", env: []string{"MOCK_GIT_COMMIT_FAIL=1"}, wantVer: "1.2.0", wantCommit: "unknown"},
		{name: "VersionFail", env: []string{"MOCK_GIT_VERSION_FAIL=1"}, wantVer: "dev", wantCommit: "abc1234"},
		{name: "VersionEmpty", env: []string{"MOCK_GIT_VERSION_EMPTY=1"}, wantVer: "dev", wantCommit: "abc1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Reset()
			execCommand = fakeGit(tt.env...)

			if got := GetVersion(); got != tt.wantVer {
				t.Errorf("GetVersion() = %q, want %q", got, tt.wantVer)
			}
			if got := GetCommit(); got != tt.wantCommit {
				t.Errorf("GetCommit() = %q, want %q", got, tt.wantCommit)
			}

			info := Info()
			for _, want := range []string{Name, tt.wantVer, tt.wantCommit} {
				if !strings.Contains(info, want) {
					t.Errorf("Info() = %q, missing %q", info, want)
				}
			}
		})
	}
}

func TestLdflagsWin(t *testing.T) {
	orig := execCommand
	t.Cleanup(func() {
		execCommand = orig
		Reset()
	})

	Reset()
	execCommand = fakeGit()
	Version, Commit, Date = "9.9.9", "deadbeef", "2025-01-01"

	if got := Info(); !strings.HasPrefix(got, Name+" 9.9.9 (commit: deadbeef, built: 2025-01-01,") {
		t.Errorf("Info() = %q", got)
	}
}

func TestGetDate(t *testing.T) {
	t.Cleanup(Reset)
	Reset()
	if GetDate() == "" {
		t.Error("GetDate() returned empty string")
	}
}

package version

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"testing"
)

// TestGitStub stands in for the git binary when re-executed by stubGit.
func TestGitStub(t *testing.T) {
	if os.Getenv("VERSION_GIT_STUB") != "1" {
		return
	}

	var out string
	switch args := strings.Join(os.Args[len(os.Args)-3:], " "); {
	case strings.HasSuffix(args, "--always --dirty"):
		out = os.Getenv("STUB_COMMIT")
	case strings.HasSuffix(args, "--tags --abbrev=0"):
		out = os.Getenv("STUB_TAG")
	}
	if out == "-" {
		os.Exit(1)
	}
	fmt.Fprint(os.Stdout, out)
	os.Exit(0)
}

// stubGit routes git calls to TestGitStub. A "-" value makes that
// invocation fail.
func stubGit(t *testing.T, tag, commit string) {
	t.Helper()

	orig := execCommand
	t.Cleanup(func() {
		execCommand = orig
		Reset()
	})

	execCommand = func(ctx context.Context, _ string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], append([]string{"-test.run=^TestGitStub$", "--"}, args...)...)
		cmd.Env = []string{"VERSION_GIT_STUB=1", "STUB_TAG=" + tag, "STUB_COMMIT=" + commit}
		return cmd
	}
	Reset()
}

func TestResolveFromGit(t *testing.T) {
	tests := []struct {
		name       string
		tag        string
		commit     string
		wantVer    string
		wantCommit string
	}{
		{"tagged checkout", "v2.3.1", "v2.3.1-4-gabc123", "2.3.1", "v2.3.1-4-gabc123"},
		{"tag without prefix", "0.9.0", "abc123", "0.9.0", "abc123"},
		{"no tags", "-", "abc123-dirty", "dev", "abc123-dirty"},
		{"empty tag", "", "abc123", "dev", "abc123"},
		{"not a repository", "-", "-", "dev", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubGit(t, tt.tag, tt.commit)

			if got := GetVersion(); got != tt.wantVer {
				t.Errorf("GetVersion() = %q, want %q", got, tt.wantVer)
			}
			if got := GetCommit(); got != tt.wantCommit {
				t.Errorf("GetCommit() = %q, want %q", got, tt.wantCommit)
			}
			if GetDate() == "" {
				t.Error("GetDate() should default to today")
			}
		})
	}
}

func TestLinkerValuesWin(t *testing.T) {
	stubGit(t, "v9.9.9", "ffffff")
	Version, Commit, Date = "1.4.0", "deadbeef", "2026-01-02"

	if GetVersion() != "1.4.0" || GetCommit() != "deadbeef" || GetDate() != "2026-01-02" {
		t.Errorf("got %s %s %s, want values set at link time", GetVersion(), GetCommit(), GetDate())
	}
}

func TestInfo(t *testing.T) {
	stubGit(t, "v1.0.0", "abc123")

	info := Info()
	for _, want := range []string{"typesteps 1.0.0", "commit: abc123", runtime.Version(), Platform()} {
		if !strings.Contains(info, want) {
			t.Errorf("Info() = %q, missing %q", info, want)
		}
	}
	if Platform() != runtime.GOOS+"/"+runtime.GOARCH {
		t.Errorf("Platform() = %q", Platform())
	}
}

package version

import (
	"strings"
	"testing"
)

func TestVersionString(t *testing.T) {
	v := Version{Major: "1", Minor: "2", Patch: "3", Metadata: "rc1", Build: "abcdef"}
	if got, want := v.String(), "Version: 1.2.3-rc1\nBuild: abcdef"; got != want {
		t.Fatalf("expected %q got %q", want, got)
	}
	if !strings.HasPrefix(RegxferVersion.String(), "Version: 0.3.0") {
		t.Fatalf("unexpected version %q", RegxferVersion.String())
	}
}

func TestBuildInfo(t *testing.T) {
	if !strings.HasPrefix(BuildInfo(), "go") && !strings.HasPrefix(BuildInfo(), "devel") {
		t.Fatalf("build info does not start with the go version: %q", BuildInfo())
	}
}

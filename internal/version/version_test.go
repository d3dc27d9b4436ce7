package version

import (
	"runtime/debug"
	"testing"
)

func TestInfoString(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"dev build", Info{Version: "dev", Commit: "none", Date: "unknown"}, "dev (development build)"},
		{"release", Info{Version: "v1.2.0", Commit: "abc1234", Date: "2025-06-01"}, "v1.2.0 (commit: abc1234, built: 2025-06-01)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFillFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2025-05-04T10:11:12Z"},
		},
	}

	got := fillFromBuildInfo(Info{Version: "dev", Commit: "none", Date: "unknown"}, bi)
	if got.Version != "v0.3.1" || got.Commit != "0123456" || got.Date != "2025-05-04" {
		t.Errorf("fillFromBuildInfo() = %+v", got)
	}

	// ldflags values win
	set := fillFromBuildInfo(Info{Version: "v9.9.9", Commit: "feed", Date: "2030-01-01"}, bi)
	if set.Version != "v9.9.9" || set.Commit != "feed" || set.Date != "2030-01-01" {
		t.Errorf("ldflags values were overwritten: %+v", set)
	}

	devel := fillFromBuildInfo(Info{Version: "dev"}, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if devel.Version != "dev" {
		t.Errorf("(devel) should keep dev, got %q", devel.Version)
	}
}

func TestGet(t *testing.T) {
	info := Get()
	if info.GoVersion == "" {
		t.Error("GoVersion should be set")
	}
	if info.Version == "" {
		t.Error("Version should never be empty")
	}
}

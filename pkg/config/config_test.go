package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func withConfigHome(t *testing.T) string {
	dir, err := ioutil.TempDir("", "regxfer-config")
	if err != nil {
		t.Fatal(err)
	}
	old, had := os.LookupEnv("XDG_CONFIG_HOME")
	os.Setenv("XDG_CONFIG_HOME", dir)
	t.Cleanup(func() {
		if had {
			os.Setenv("XDG_CONFIG_HOME", old)
		} else {
			os.Unsetenv("XDG_CONFIG_HOME")
		}
		os.RemoveAll(dir)
	})
	return dir
}

func TestLoadConfigCreatesDefault(t *testing.T) {
	dir := withConfigHome(t)

	conf := LoadConfig()
	if conf == nil {
		t.Fatal("nil config")
	}
	if conf.ShowFloatRegisters || conf.Backend != "" || conf.Arch != "" {
		t.Fatalf("default config should leave every option disabled: %#v", conf)
	}
	if _, err := os.Stat(filepath.Join(dir, "regxfer", configFile)); err != nil {
		t.Fatalf("default config file not written: %v", err)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	withConfigHome(t)
	if err := createConfigPath(); err != nil {
		t.Fatal(err)
	}

	in := &Config{
		Aliases:            map[string][]string{"regs": {"r", "registers"}},
		ShowFloatRegisters: true,
		Backend:            "sim",
		Arch:               "mips64",
	}
	if err := SaveConfig(in); err != nil {
		t.Fatal(err)
	}
	out := LoadConfig()
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("expected %#v, got %#v", in, out)
	}
}

func openFiles(t *testing.T) int {
	fds, err := ioutil.ReadDir("/proc/self/fd")
	if err != nil {
		t.Skipf("can not list open files: %v", err)
	}
	return len(fds)
}

func TestCreateDefaultConfigWriteFailure(t *testing.T) {
	// writes to /dev/full always fail with ENOSPC
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	before := openFiles(t)
	f, err := createDefaultConfig("/dev/full")
	if err == nil {
		f.Close()
		t.Fatal("expected error writing default config to /dev/full")
	}
	if after := openFiles(t); after != before {
		t.Fatalf("config file left open: %d open files before, %d after", before, after)
	}
}

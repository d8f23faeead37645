package regnum

import (
	"strings"
	"testing"
)

func TestMIPS64Names(t *testing.T) {
	tests := []struct {
		num  int
		name string
	}{
		{MIPS64_Zero, "zero"},
		{MIPS64_SP, "sp"},
		{MIPS64_RA, "ra"},
		{MIPS64_PC, "pc"},
		{MIPS64_F0, "f0"},
		{MIPS64_F0 + 31, "f31"},
		{MIPS64_FSR, "fsr"},
		{MIPS64_FIR, "fir"},
	}
	for _, tc := range tests {
		if got := MIPS64ToName(tc.num); got != tc.name {
			t.Errorf("MIPS64ToName(%d) = %q, expected %q", tc.num, got, tc.name)
		}
		if got := MIPS64NameToRegnum[tc.name]; got != tc.num {
			t.Errorf("MIPS64NameToRegnum[%q] = %d, expected %d", tc.name, got, tc.num)
		}
	}
	if n := MIPS64NameToRegnum["r29"]; n != MIPS64_SP {
		t.Errorf("r29 resolved to %d", n)
	}
}

func TestAMD64Names(t *testing.T) {
	for i := 0; i < AMD64_NumRegs; i++ {
		name := AMD64ToName(i)
		if n, ok := AMD64NameToRegnum[strings.ToLower(name)]; !ok || n != i {
			t.Errorf("register %d (%s) did not round trip: %d %v", i, name, n, ok)
		}
	}
	if AMD64NameToRegnum["eflags"] != AMD64_Rflags {
		t.Error("eflags alias missing")
	}
	if AMD64NameToRegnum["st3"] != AMD64_ST0+3 {
		t.Error("st3 alias missing")
	}
}

package regnum

import (
	"fmt"
	"strings"
)

// Register numbers for AMD64. The integer registers keep their DWARF
// numbering (System V ABI AMD64 Architecture Processor Supplement, figure
// 3.36); the remaining members of user_regs_struct are numbered after them
// so that RIP closes the general purpose bank. The floating point bank is
// the legacy FXSAVE area viewed as 16 byte slots.

const (
	AMD64_Rax      = 0
	AMD64_Rdx      = 1
	AMD64_Rcx      = 2
	AMD64_Rbx      = 3
	AMD64_Rsi      = 4
	AMD64_Rdi      = 5
	AMD64_Rbp      = 6
	AMD64_Rsp      = 7
	AMD64_R8       = 8
	AMD64_R9       = 9
	AMD64_R10      = 10
	AMD64_R11      = 11
	AMD64_R12      = 12
	AMD64_R13      = 13
	AMD64_R14      = 14
	AMD64_R15      = 15
	AMD64_Rflags   = 16
	AMD64_Cs       = 17
	AMD64_Ss       = 18
	AMD64_Ds       = 19
	AMD64_Es       = 20
	AMD64_Fs       = 21
	AMD64_Gs       = 22
	AMD64_Fs_base  = 23
	AMD64_Gs_base  = 24
	AMD64_Orig_rax = 25
	AMD64_Rip      = 26
	AMD64_FPCtl    = 27 // CW, SW, TW, FOP, FIP
	AMD64_SSECtl   = 28 // FDP, MXCSR, MXCSR_MASK
	AMD64_ST0      = 29 // ST(1) through ST(7) follow
	AMD64_XMM0     = 37 // XMM1 through XMM15 follow

	AMD64_NumRegs = 53
)

var amd64ToName = map[int]string{
	AMD64_Rax:      "Rax",
	AMD64_Rdx:      "Rdx",
	AMD64_Rcx:      "Rcx",
	AMD64_Rbx:      "Rbx",
	AMD64_Rsi:      "Rsi",
	AMD64_Rdi:      "Rdi",
	AMD64_Rbp:      "Rbp",
	AMD64_Rsp:      "Rsp",
	AMD64_R8:       "R8",
	AMD64_R9:       "R9",
	AMD64_R10:      "R10",
	AMD64_R11:      "R11",
	AMD64_R12:      "R12",
	AMD64_R13:      "R13",
	AMD64_R14:      "R14",
	AMD64_R15:      "R15",
	AMD64_Rflags:   "Rflags",
	AMD64_Cs:       "Cs",
	AMD64_Ss:       "Ss",
	AMD64_Ds:       "Ds",
	AMD64_Es:       "Es",
	AMD64_Fs:       "Fs",
	AMD64_Gs:       "Gs",
	AMD64_Fs_base:  "Fs_base",
	AMD64_Gs_base:  "Gs_base",
	AMD64_Orig_rax: "Orig_rax",
	AMD64_Rip:      "Rip",
	AMD64_FPCtl:    "FPCTL",
	AMD64_SSECtl:   "SSECTL",
}

// AMD64ToName returns the name of register num.
func AMD64ToName(num int) string {
	switch {
	case num >= AMD64_ST0 && num < AMD64_XMM0:
		return fmt.Sprintf("ST(%d)", num-AMD64_ST0)
	case num >= AMD64_XMM0 && num < AMD64_NumRegs:
		return fmt.Sprintf("XMM%d", num-AMD64_XMM0)
	}
	if name, ok := amd64ToName[num]; ok {
		return name
	}
	return fmt.Sprintf("unknown%d", num)
}

var AMD64NameToRegnum = func() map[string]int {
	r := make(map[string]int)
	for i := 0; i < AMD64_NumRegs; i++ {
		r[strings.ToLower(AMD64ToName(i))] = i
	}
	r["eflags"] = AMD64_Rflags
	for i := 0; i < 8; i++ {
		r[fmt.Sprintf("st%d", i)] = AMD64_ST0 + i
	}
	return r
}()

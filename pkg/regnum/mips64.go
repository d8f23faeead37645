package regnum

import (
	"fmt"
	"strings"
)

// Register numbers for MIPS64 follow the layout of the FreeBSD kernel's
// struct reg and struct fpreg (machine/reg.h): the 32 integer registers,
// the special registers up to and including PC, then the 32 floating point
// registers followed by the FP status and implementation registers.

const (
	MIPS64_Zero     = 0 // r1 through r31 follow
	MIPS64_SP       = 29
	MIPS64_FP       = 30
	MIPS64_RA       = 31
	MIPS64_SR       = 32
	MIPS64_Lo       = 33
	MIPS64_Hi       = 34
	MIPS64_BadVAddr = 35
	MIPS64_Cause    = 36
	MIPS64_PC       = 37
	MIPS64_F0       = 38 // f1 through f31 follow
	MIPS64_FSR      = 70
	MIPS64_FIR      = 71

	MIPS64_NumRegs = 72
)

var mips64IntNames = [...]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"a4", "a5", "a6", "a7", "t0", "t1", "t2", "t3",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "s8", "ra",
}

var mips64SpecialNames = map[int]string{
	MIPS64_SR:       "sr",
	MIPS64_Lo:       "lo",
	MIPS64_Hi:       "hi",
	MIPS64_BadVAddr: "badvaddr",
	MIPS64_Cause:    "cause",
	MIPS64_PC:       "pc",
	MIPS64_FSR:      "fsr",
	MIPS64_FIR:      "fir",
}

// MIPS64ToName returns the name of register num.
func MIPS64ToName(num int) string {
	switch {
	case num >= MIPS64_Zero && num < MIPS64_SR:
		return mips64IntNames[num]
	case num >= MIPS64_F0 && num < MIPS64_FSR:
		return fmt.Sprintf("f%d", num-MIPS64_F0)
	}
	if name, ok := mips64SpecialNames[num]; ok {
		return name
	}
	return fmt.Sprintf("unknown%d", num)
}

// MIPS64NameToRegnum maps lower case register names, including the numeric
// "rN" aliases of the integer registers, to register numbers.
var MIPS64NameToRegnum = func() map[string]int {
	r := make(map[string]int)
	for i := MIPS64_Zero; i < MIPS64_NumRegs; i++ {
		r[strings.ToLower(MIPS64ToName(i))] = i
	}
	for i := MIPS64_Zero; i < MIPS64_SR; i++ {
		r[fmt.Sprintf("r%d", i)] = i
	}
	r["fp"] = MIPS64_FP
	r["bad"] = MIPS64_BadVAddr
	return r
}()

package proc

import (
	"encoding/binary"
	"testing"
)

func TestFormatIntReg(t *testing.T) {
	tests := []struct {
		order binary.ByteOrder
		in    []byte
		out   string
	}{
		{binary.LittleEndian, []byte{0xef, 0xbe, 0xad, 0xde, 0, 0, 0, 0}, "0x00000000deadbeef"},
		{binary.BigEndian, []byte{0, 0, 0, 0, 0xde, 0xad, 0xbe, 0xef}, "0x00000000deadbeef"},
		{binary.LittleEndian, []byte{0x01, 0x02}, "0x0201"},
		{binary.LittleEndian, []byte{1, 2, 3}, "0x030201"},
	}
	for _, tc := range tests {
		if got := FormatIntReg(tc.order, tc.in); got != tc.out {
			t.Errorf("FormatIntReg(% x): expected %q got %q", tc.in, tc.out, got)
		}
	}
}

func TestFormatX87Reg(t *testing.T) {
	one := []byte{0, 0, 0, 0, 0, 0, 0, 0x80, 0xff, 0x3f}
	if got, want := FormatX87Reg(one), "0x3fff8000000000000000\t1"; got != want {
		t.Errorf("expected %q got %q", want, got)
	}
	minusInf := []byte{0, 0, 0, 0, 0, 0, 0, 0x80, 0xff, 0xff}
	if got, want := FormatX87Reg(minusInf), "0xffff8000000000000000\t-Inf"; got != want {
		t.Errorf("expected %q got %q", want, got)
	}
}

func TestFormatEflags(t *testing.T) {
	if got, want := FormatEflags(0x246), "0x0000000000000246\t[PF ZF IF IOPL=0]"; got != want {
		t.Errorf("expected %q got %q", want, got)
	}
}

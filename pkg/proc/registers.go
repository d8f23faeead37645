package proc

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Register is the printable form of one register of a RegisterCache.
type Register struct {
	Name  string
	Bytes []byte
	Value string
}

// Slice returns the valid registers of the cache as a list of
// (name, value) pairs, general purpose registers first. Floating point
// registers are included only if floatingPoint is true.
func (c *RegisterCache) Slice(floatingPoint bool) []Register {
	last := c.arch.PCRegNum
	if floatingPoint {
		last = c.arch.NumRegs - 1
	}
	out := make([]Register, 0, last-c.arch.ZeroRegNum+1)
	for i := c.arch.ZeroRegNum; i <= last; i++ {
		if !c.Valid(i) {
			continue
		}
		out = append(out, c.Register(i))
	}
	return out
}

// Register returns the printable form of register regnum.
func (c *RegisterCache) Register(regnum int) Register {
	b := c.Bytes(regnum)
	var value string
	switch {
	case b == nil:
		value = "<unavailable>"
	case c.arch.FormatRegister != nil:
		value = c.arch.FormatRegister(regnum, b)
	default:
		value = FormatIntReg(c.arch.ByteOrder, b)
	}
	return Register{Name: c.arch.RegisterName(regnum), Bytes: b, Value: value}
}

// SubRegisterUint64 returns the value of the partial view sub of a
// register from the cache.
func (c *RegisterCache) SubRegisterUint64(sub SubRegister) (uint64, bool) {
	v, ok := c.Uint64(sub.Regnum)
	if !ok {
		return 0, false
	}
	v >>= sub.Shift
	if sub.Size < 8 {
		v &= 1<<(8*uint(sub.Size)) - 1
	}
	return v, true
}

// SubRegister returns the printable form of the partial view sub.
func (c *RegisterCache) SubRegister(sub SubRegister) Register {
	v, ok := c.SubRegisterUint64(sub)
	if !ok {
		return Register{Name: sub.Name, Value: "<unavailable>"}
	}
	b := make([]byte, 8)
	c.arch.ByteOrder.PutUint64(b, v)
	if sub.Size < 8 {
		if c.arch.ByteOrder == binary.BigEndian {
			b = b[8-sub.Size:]
		} else {
			b = b[:sub.Size]
		}
	}
	return Register{Name: sub.Name, Bytes: b, Value: FormatIntReg(c.arch.ByteOrder, b)}
}

// FormatIntReg formats an integer register of 1, 2, 4 or 8 bytes as a
// zero padded hexadecimal number. Other sizes are printed as raw bytes,
// most significant first.
func FormatIntReg(order binary.ByteOrder, value []byte) string {
	switch len(value) {
	case 1:
		return fmt.Sprintf("%#02x", value[0])
	case 2:
		return fmt.Sprintf("%#04x", order.Uint16(value))
	case 4:
		return fmt.Sprintf("%#08x", order.Uint32(value))
	case 8:
		return fmt.Sprintf("%#016x", order.Uint64(value))
	}
	var out strings.Builder
	out.WriteString("0x")
	for i := range value {
		if order == binary.BigEndian {
			fmt.Fprintf(&out, "%02x", value[i])
		} else {
			fmt.Fprintf(&out, "%02x", value[len(value)-1-i])
		}
	}
	return out.String()
}

// FormatFloatReg formats a 64 bit floating point register as its raw bits
// followed by its value as a double.
func FormatFloatReg(order binary.ByteOrder, value []byte) string {
	if len(value) != 8 {
		return FormatIntReg(order, value)
	}
	bits := order.Uint64(value)
	return fmt.Sprintf("%#016x\t%g", bits, math.Float64frombits(bits))
}

// FormatX87Reg formats an 80 bit x87 register stored little endian as a 64
// bit mantissa followed by a 16 bit sign and exponent.
func FormatX87Reg(value []byte) string {
	if len(value) < 10 {
		return FormatIntReg(binary.LittleEndian, value)
	}
	mantissa := binary.LittleEndian.Uint64(value[0:8])
	exponent := binary.LittleEndian.Uint16(value[8:10])

	const (
		_SIGNBIT    = 1 << 15
		_EXP_BIAS   = (1 << 14) - 1 // 2^(n-1) - 1 = 16383
		_SPECIALEXP = (1 << 15) - 1 // all bits set
		_HIGHBIT    = 1 << 63
	)

	sign := 1.0
	if exponent&_SIGNBIT != 0 {
		sign = -1.0
	}
	exp := exponent &^ _SIGNBIT

	var f float64
	switch {
	case exp == 0 && mantissa == 0:
		f = sign * 0.0
	case exp == _SPECIALEXP:
		if mantissa<<1 == 0 {
			f = sign * math.Inf(+1)
		} else {
			f = math.NaN()
		}
	case exp != 0 && mantissa&_HIGHBIT == 0:
		f = math.NaN() // unnormal
	default:
		e := int(exp)
		if e == 0 {
			e = 1 // denormal
		}
		significand := float64(mantissa) / (1 << 63)
		f = sign * math.Ldexp(significand, e-_EXP_BIAS)
	}

	return fmt.Sprintf("%#04x%016x\t%g", exponent, mantissa, f)
}

// FormatSSEReg formats a 128 bit vector register stored little endian.
func FormatSSEReg(xmm []byte) string {
	if len(xmm) != 16 {
		return FormatIntReg(binary.LittleEndian, xmm)
	}
	var out strings.Builder
	out.WriteString(FormatIntReg(binary.LittleEndian, xmm))

	fmt.Fprintf(&out, "\tv2_int={ %016x %016x }", binary.LittleEndian.Uint64(xmm[0:]), binary.LittleEndian.Uint64(xmm[8:]))
	fmt.Fprintf(&out, "\tv4_int={ %08x %08x %08x %08x }", binary.LittleEndian.Uint32(xmm[0:]), binary.LittleEndian.Uint32(xmm[4:]), binary.LittleEndian.Uint32(xmm[8:]), binary.LittleEndian.Uint32(xmm[12:]))

	fmt.Fprintf(&out, "\tv2_float={ %g %g }",
		math.Float64frombits(binary.LittleEndian.Uint64(xmm[0:])),
		math.Float64frombits(binary.LittleEndian.Uint64(xmm[8:])))
	fmt.Fprintf(&out, "\tv4_float={ %g %g %g %g }",
		math.Float32frombits(binary.LittleEndian.Uint32(xmm[0:])),
		math.Float32frombits(binary.LittleEndian.Uint32(xmm[4:])),
		math.Float32frombits(binary.LittleEndian.Uint32(xmm[8:])),
		math.Float32frombits(binary.LittleEndian.Uint32(xmm[12:])))

	return out.String()
}

// FormatEflags formats the value of the x86 flags register.
func FormatEflags(value uint64) string {
	return eflagsDescription.Describe(value, 64)
}

// FormatMxcsr formats the value of the SSE control and status register.
func FormatMxcsr(value uint64) string {
	return mxcsrDescription.Describe(value, 32)
}

type flagRegisterDescr []flagDescr
type flagDescr struct {
	name string
	mask uint64
}

var mxcsrDescription flagRegisterDescr = []flagDescr{
	{"FZ", 1 << 15},
	{"RZ/RN", 1<<14 | 1<<13},
	{"PM", 1 << 12},
	{"UM", 1 << 11},
	{"OM", 1 << 10},
	{"ZM", 1 << 9},
	{"DM", 1 << 8},
	{"IM", 1 << 7},
	{"DAZ", 1 << 6},
	{"PE", 1 << 5},
	{"UE", 1 << 4},
	{"OE", 1 << 3},
	{"ZE", 1 << 2},
	{"DE", 1 << 1},
	{"IE", 1 << 0},
}

var eflagsDescription flagRegisterDescr = []flagDescr{
	{"CF", 1 << 0},
	{"", 1 << 1},
	{"PF", 1 << 2},
	{"AF", 1 << 4},
	{"ZF", 1 << 6},
	{"SF", 1 << 7},
	{"TF", 1 << 8},
	{"IF", 1 << 9},
	{"DF", 1 << 10},
	{"OF", 1 << 11},
	{"IOPL", 1<<12 | 1<<13},
	{"NT", 1 << 14},
	{"RF", 1 << 16},
	{"VM", 1 << 17},
	{"AC", 1 << 18},
	{"VIF", 1 << 19},
	{"VIP", 1 << 20},
	{"ID", 1 << 21},
}

func (descr flagRegisterDescr) mask() uint64 {
	var r uint64
	for _, f := range descr {
		r = r | f.mask
	}
	return r
}

// Describe returns the value of reg followed by the names of the flags
// set in it.
func (descr flagRegisterDescr) Describe(reg uint64, bitsize int) string {
	var r []string
	for _, f := range descr {
		if f.name == "" {
			continue
		}
		// rbm is f.mask with only the right-most bit set:
		// 0001 1100 -> 0000 0100
		rbm := f.mask & -f.mask
		if rbm == f.mask {
			if reg&f.mask != 0 {
				r = append(r, f.name)
			}
		} else {
			x := (reg & f.mask) >> uint64(math.Log2(float64(rbm)))
			r = append(r, fmt.Sprintf("%s=%x", f.name, x))
		}
	}
	if reg & ^descr.mask() != 0 {
		r = append(r, fmt.Sprintf("unknown_flags=%x", reg&^descr.mask()))
	}
	return fmt.Sprintf("%#0*x\t[%s]", bitsize/4, reg, strings.Join(r, " "))
}

package proc

// AllRegisters is the register number that selects every register of
// every bank.
const AllRegisters = -1

// GeneralRegsSupplies returns true if the general purpose register block
// contains regnum.
func GeneralRegsSupplies(arch *Arch, regnum int) bool {
	return regnum >= arch.ZeroRegNum && regnum <= arch.PCRegNum
}

// FloatRegsSupplies returns true if the floating point register block must
// be transferred to satisfy a request for regnum.
func FloatRegsSupplies(arch *Arch, regnum int) bool {
	return regnum == AllRegisters || regnum >= arch.FP0RegNum
}

package cdp1802

import "fmt"

// mnemonics maps each opcode byte to its 1802 mnemonic. Opcodes whose
// low nibble selects a register (LDN, INC, DEC, LDA, STR, GLO, GHI,
// PLO, PHI) are named generically; Disassemble fills in the register
// number.
var mnemonics = [256]string{}

func init() {
	set := func(lo, hi int, name string) {
		for op := lo; op <= hi; op++ {
			mnemonics[op] = name
		}
	}

	mnemonics[0x00] = "IDL"
	set(0x01, 0x0F, "LDN")
	set(0x10, 0x1F, "INC")
	set(0x20, 0x2F, "DEC")

	branchNames := [16]string{
		"BR", "BQ", "BZ", "BDF", "B1", "B2", "B3", "B4",
		"SKP", "BNQ", "BNZ", "BNF", "BN1", "BN2", "BN3", "BN4",
	}
	for n, name := range branchNames {
		mnemonics[0x30+n] = name
	}

	set(0x40, 0x4F, "LDA")
	set(0x50, 0x5F, "STR")

	mnemonics[0x60] = "IRX"
	set(0x61, 0x67, "OUT")
	mnemonics[0x68] = "ESC"
	set(0x69, 0x6F, "INP")

	controlNames := [16]string{
		"RET", "DIS", "LDXA", "STXD", "ADC", "SDB", "SHRC", "SMB",
		"SAV", "MARK", "REQ", "SEQ", "ADCI", "SDBI", "SHLC", "SMBI",
	}
	for n, name := range controlNames {
		mnemonics[0x70+n] = name
	}

	set(0x80, 0x8F, "GLO")
	set(0x90, 0x9F, "GHI")
	set(0xA0, 0xAF, "PLO")
	set(0xB0, 0xBF, "PHI")

	longNames := [16]string{
		"LBR", "LBQ", "LBZ", "LBDF", "NOP", "LSNQ", "LSNZ", "LSNF",
		"LSKP", "LBNQ", "LBNZ", "LBNF", "LSIE", "LSQ", "LSZ", "LSDF",
	}
	for n, name := range longNames {
		mnemonics[0xC0+n] = name
	}

	set(0xD0, 0xDF, "SEP")
	set(0xE0, 0xEF, "SEX")

	aluNames := [16]string{
		"LDX", "OR", "AND", "XOR", "ADD", "SD", "SHR", "SM",
		"LDI", "ORI", "ANI", "XRI", "ADI", "SDI", "SHL", "SMI",
	}
	for n, name := range aluNames {
		mnemonics[0xF0+n] = name
	}
}

// hasRegisterOperand reports whether opcode's low nibble selects a
// scratchpad register that should be rendered alongside the mnemonic.
func hasRegisterOperand(opcode byte) bool {
	switch opcode >> 4 {
	case 0x0:
		return opcode != 0x00
	case 0x1, 0x2, 0x4, 0x5, 0x8, 0x9, 0xA, 0xB:
		return true
	default:
		return false
	}
}

// isShortBranch reports whether opcode is one of the 2-byte I=3
// branch/skip instructions.
func isShortBranch(opcode byte) bool { return opcode>>4 == 0x3 }

// isLongOp reports whether opcode is one of the 3-byte I=C long
// branch/skip instructions (NOP included, even though it reads no
// operand bytes).
func isLongOp(opcode byte) bool { return opcode>>4 == 0xC }

// longOpHasOperandBytes reports whether opcode's two following bytes
// belong to the instruction stream. Every I=C opcode except NOP (0xC4)
// consumes them. LSKP (0xC8) never reads them as a branch target, but
// it still unconditionally steps over both, so they are never executed
// as their own instruction and must not be decoded as one.
func longOpHasOperandBytes(opcode byte) bool { return isLongOp(opcode) && opcode != 0xC4 }

// hasImmediateOperand reports whether opcode reads one immediate byte
// from R(P): LDI, ORI, ANI, XRI, ADI, SDI, SMI, and the ADCI/SDBI/SMBI
// trio.
func hasImmediateOperand(opcode byte) bool {
	switch opcode {
	case 0xF8, 0xF9, 0xFA, 0xFB, 0xFC, 0xFD, 0xFF, 0x7C, 0x7D, 0x7F:
		return true
	}
	return false
}

// disassembleOne renders the instruction at opcode (as just fetched at
// R(P)-1) without consuming any bytes from the host; it peeks operand
// bytes at R(P), R(P)+1 the same way the opcode itself is about to.
func disassembleOne(c *CPU, opcode byte) string {
	name := mnemonics[opcode]
	n := opcode & 0x0F

	switch {
	case hasRegisterOperand(opcode):
		return fmt.Sprintf("%s R%X", name, n)
	case opcode >= 0x61 && opcode <= 0x67:
		return fmt.Sprintf("%s %d", name, n)
	case opcode >= 0x69 && opcode <= 0x6F:
		return fmt.Sprintf("%s %d", name, n&0x7)
	case isShortBranch(opcode):
		target := c.host.MemRead(c.R[c.P])
		return fmt.Sprintf("%s $%02X", name, target)
	case opcode == 0xC8: // LSKP: always skips, never branches to an address
		return name
	case longOpHasOperandBytes(opcode):
		hi := c.host.MemRead(c.R[c.P])
		lo := c.host.MemRead(c.R[c.P] + 1)
		return fmt.Sprintf("%s $%04X", name, uint16(hi)<<8|uint16(lo))
	case hasImmediateOperand(opcode):
		return fmt.Sprintf("%s #$%02X", name, c.host.MemRead(c.R[c.P]))
	default:
		return name
	}
}

// Disassemble renders the byte range [startAddr, endAddr] into a map
// from instruction address to disassembly line. The 1802 has no
// addressing-mode axis to print, so each line is just
// "$ADDR: MNEMONIC operand".
func Disassemble(host Host, startAddr, endAddr uint16) map[uint16]string {
	lines := make(map[uint16]string)
	shadow := &CPU{host: host}

	addr := uint32(startAddr)
	for addr <= uint32(endAddr) {
		lineAddr := uint16(addr)
		opcode := host.MemRead(lineAddr)
		shadow.P = 0
		shadow.R[0] = lineAddr + 1

		body := disassembleOne(shadow, opcode)
		lines[lineAddr] = fmt.Sprintf("$%04X: %s", lineAddr, body)

		switch {
		case isShortBranch(opcode):
			addr += 2
		case longOpHasOperandBytes(opcode):
			addr += 3
		case isLongOp(opcode):
			addr++
		case hasImmediateOperand(opcode):
			addr += 2
		default:
			addr++
		}
	}

	return lines
}

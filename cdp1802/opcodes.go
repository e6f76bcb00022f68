package cdp1802

// execute dispatches the already-fetched opcode (c.I, c.N hold its
// nibbles) to its semantics. The 1802's opcode space does not factor
// into orthogonal (instruction x addressing-mode) axes the way some
// other 8-bit ISAs do, so a switch on the I nibble, with each group's
// handler switching on N, expresses it directly rather than forcing it
// through a lookup table shaped for a different ISA.
func (c *CPU) execute(opcode byte) {
	switch opcode {
	case 0x00: // IDL
		c.host.IdleWait()
		c.Cycles += 2
		return
	}

	switch c.I {
	case 0x0: // LDN (0x01-0x0F; 0x00 handled above as IDL)
		c.D = c.host.MemRead(c.R[c.N])
		c.Cycles += 2
	case 0x1: // INC
		c.R[c.N]++
		c.Cycles += 2
	case 0x2: // DEC
		c.R[c.N]--
		c.Cycles += 2
	case 0x3:
		c.execShortBranch(opcode)
	case 0x4: // LDA
		c.D = c.host.MemRead(c.R[c.N])
		c.R[c.N]++
		c.Cycles += 2
	case 0x5: // STR
		c.host.MemWrite(c.R[c.N], c.D)
		c.Cycles += 2
	case 0x6:
		c.execIO(opcode)
	case 0x7:
		c.execControl(opcode)
	case 0x8: // GLO
		c.D = c.rLow(c.N)
		c.Cycles += 2
	case 0x9: // GHI
		c.D = c.rHigh(c.N)
		c.Cycles += 2
	case 0xA: // PLO
		c.setRLow(c.N, c.D)
		c.Cycles += 2
	case 0xB: // PHI
		c.setRHigh(c.N, c.D)
		c.Cycles += 2
	case 0xC:
		c.execLongBranch(opcode)
	case 0xD: // SEP
		c.setP(c.N)
		c.Cycles += 2
	case 0xE: // SEX
		c.setX(c.N)
		c.Cycles += 2
	case 0xF:
		c.execALU(opcode)
	}
}

func (c *CPU) rLow(n byte) byte  { return byte(c.R[n]) }
func (c *CPU) rHigh(n byte) byte { return byte(c.R[n] >> 8) }

func (c *CPU) setRLow(n, v byte) {
	c.R[n] = (c.R[n] & 0xFF00) | uint16(v)
}

func (c *CPU) setRHigh(n, v byte) {
	c.R[n] = (c.R[n] & 0x00FF) | (uint16(v) << 8)
}

// takeShortBranch replaces R(P)'s low byte with the byte at R(P) (the
// branch target), leaving the high byte untouched.
func (c *CPU) takeShortBranch() {
	target := c.host.MemRead(c.R[c.P])
	c.setRLow(c.P, target)
}

// skipShortBranch advances R(P) past the target byte without taking it.
func (c *CPU) skipShortBranch() {
	c.R[c.P]++
}

// execShortBranch handles the 2-byte I=3 branch/skip family.
func (c *CPU) execShortBranch(opcode byte) {
	var taken bool

	switch c.N {
	case 0x0: // BR
		taken = true
	case 0x1: // BQ
		taken = c.Q
	case 0x2: // BZ
		taken = c.D == 0
	case 0x3: // BDF
		taken = c.DF
	case 0x4: // B1
		c.sampleFlags()
		taken = c.EF1
	case 0x5: // B2
		c.sampleFlags()
		taken = c.EF2
	case 0x6: // B3
		c.sampleFlags()
		taken = c.EF3
	case 0x7: // B4
		c.sampleFlags()
		taken = c.EF4
	case 0x8: // SKP / NBR: never taken, always skip
		taken = false
	case 0x9: // BNQ
		taken = !c.Q
	case 0xA: // BNZ
		taken = c.D != 0
	case 0xB: // BNF
		taken = !c.DF
	case 0xC: // BN1
		c.sampleFlags()
		taken = !c.EF1
	case 0xD: // BN2
		c.sampleFlags()
		taken = !c.EF2
	case 0xE: // BN3
		c.sampleFlags()
		taken = !c.EF3
	case 0xF: // BN4
		c.sampleFlags()
		taken = !c.EF4
	}

	if taken {
		c.takeShortBranch()
	} else {
		c.skipShortBranch()
	}
	c.Cycles += 2
}

// execIO handles the I=6 group: IRX, OUT 1-7, the 1805 extended prefix,
// and INP.
func (c *CPU) execIO(opcode byte) {
	switch {
	case c.N == 0x0: // IRX
		c.R[c.X]++
	case c.N >= 0x1 && c.N <= 0x7: // OUT n
		c.host.PortWrite(c.N, c.host.MemRead(c.R[c.X]))
		c.R[c.X]++
	case c.N == 0x8: // 1805 extended (68-prefixed) opcode: consumed as a no-op
	default: // 0x9-0xF: INP n, n = N&0x7
		val := c.host.PortRead(c.N & 0x7)
		c.host.MemWrite(c.R[c.X], val)
		c.D = val
	}
	c.Cycles += 2
}

// execControl handles the I=7 group: RET/DIS, the X-register ALU ops,
// SAV/MARK, REQ/SEQ, and the immediate ALU ops.
func (c *CPU) execControl(opcode byte) {
	c.Cycles += 2

	switch c.N {
	case 0x0: // RET
		packed := c.host.MemRead(c.R[c.X])
		c.setX(packed >> 4)
		c.setP(packed & 0x0F)
		c.R[c.X]++
		c.IE = true
	case 0x1: // DIS
		packed := c.host.MemRead(c.R[c.X])
		c.setX(packed >> 4)
		c.setP(packed & 0x0F)
		c.R[c.X]++
		c.IE = false
	case 0x2: // LDXA
		c.D = c.host.MemRead(c.R[c.X])
		c.R[c.X]++
	case 0x3: // STXD
		c.host.MemWrite(c.R[c.X], c.D)
		c.R[c.X]--
	case 0x4: // ADC
		c.D, c.DF = addWithCarry(c.host.MemRead(c.R[c.X]), c.D, c.DF)
	case 0x5: // SDB
		c.D, c.DF = subWithBorrow(c.host.MemRead(c.R[c.X]), c.D, !c.DF)
	case 0x6: // SHRC
		lsb := c.D & 0x01
		c.D >>= 1
		if c.DF {
			c.D |= 0x80
		}
		c.DF = lsb != 0
	case 0x7: // SMB
		c.D, c.DF = subWithBorrow(c.D, c.host.MemRead(c.R[c.X]), !c.DF)
	case 0x8: // SAV
		c.host.MemWrite(c.R[c.X], c.T)
	case 0x9: // MARK
		c.T = (c.X << 4) | c.P
		c.host.MemWrite(c.R[2], c.T)
		c.X = c.P
		c.R[2]--
	case 0xA: // REQ
		c.setQ(false)
	case 0xB: // SEQ
		c.setQ(true)
	case 0xC: // ADCI
		c.D, c.DF = addWithCarry(c.host.MemRead(c.R[c.P]), c.D, c.DF)
		c.R[c.P]++
	case 0xD: // SDBI
		c.D, c.DF = subWithBorrow(c.host.MemRead(c.R[c.P]), c.D, !c.DF)
		c.R[c.P]++
	case 0xE: // SHLC
		msb := c.D & 0x80
		c.D <<= 1
		if c.DF {
			c.D |= 0x01
		}
		c.DF = msb != 0
	case 0xF: // SMBI
		c.D, c.DF = subWithBorrow(c.D, c.host.MemRead(c.R[c.P]), !c.DF)
		c.R[c.P]++
	}
}

// execLongBranch handles the I=C group: the 3-cycle long branches,
// long skips, and NOP, each operating on the two bytes following the
// opcode.
func (c *CPU) execLongBranch(opcode byte) {
	c.Cycles += 3

	takeLongBranch := func() {
		hi := c.host.MemRead(c.R[c.P])
		lo := c.host.MemRead(c.R[c.P] + 1)
		c.R[c.P] = (uint16(hi) << 8) | uint16(lo)
	}
	skipLong := func() { c.R[c.P] += 2 }

	switch c.N {
	case 0x0: // LBR
		takeLongBranch()
	case 0x1: // LBQ
		if c.Q {
			takeLongBranch()
		} else {
			skipLong()
		}
	case 0x2: // LBZ
		if c.D == 0 {
			takeLongBranch()
		} else {
			skipLong()
		}
	case 0x3: // LBDF
		if c.DF {
			takeLongBranch()
		} else {
			skipLong()
		}
	case 0x4: // NOP
	case 0x5: // LSNQ: skip if Q=0
		if !c.Q {
			skipLong()
		}
	case 0x6: // LSNZ: skip if D != 0
		if c.D != 0 {
			skipLong()
		}
	case 0x7: // LSNF: skip if DF=0
		if !c.DF {
			skipLong()
		}
	case 0x8: // LSKP/NLBR: unconditional skip
		skipLong()
	case 0x9: // LBNQ
		if !c.Q {
			takeLongBranch()
		} else {
			skipLong()
		}
	case 0xA: // LBNZ
		if c.D != 0 {
			takeLongBranch()
		} else {
			skipLong()
		}
	case 0xB: // LBNF
		if !c.DF {
			takeLongBranch()
		} else {
			skipLong()
		}
	case 0xC: // LSIE: skip if IE=1
		if c.IE {
			skipLong()
		}
	case 0xD: // LSQ: skip if Q=1
		if c.Q {
			skipLong()
		}
	case 0xE: // LSZ: skip if D=0
		if c.D == 0 {
			skipLong()
		}
	case 0xF: // LSDF: skip if DF=1
		if c.DF {
			skipLong()
		}
	}
}

// execALU handles the I=F group: memory-referencing and immediate
// logic/arithmetic, plus the (DF-preserving) shifts.
func (c *CPU) execALU(opcode byte) {
	c.Cycles += 2

	switch c.N {
	case 0x0: // LDX
		c.D = c.host.MemRead(c.R[c.X])
	case 0x1: // OR
		c.D |= c.host.MemRead(c.R[c.X])
	case 0x2: // AND
		c.D &= c.host.MemRead(c.R[c.X])
	case 0x3: // XOR
		c.D ^= c.host.MemRead(c.R[c.X])
	case 0x4: // ADD
		c.D, c.DF = addWithCarry(c.host.MemRead(c.R[c.X]), c.D, false)
	case 0x5: // SD
		c.D, c.DF = subWithBorrow(c.host.MemRead(c.R[c.X]), c.D, false)
	case 0x6: // SHR: DF unaffected
		c.D >>= 1
	case 0x7: // SM
		c.D, c.DF = subWithBorrow(c.D, c.host.MemRead(c.R[c.X]), false)
	case 0x8: // LDI
		c.D = c.host.MemRead(c.R[c.P])
		c.R[c.P]++
	case 0x9: // ORI
		c.D |= c.host.MemRead(c.R[c.P])
		c.R[c.P]++
	case 0xA: // ANI
		c.D &= c.host.MemRead(c.R[c.P])
		c.R[c.P]++
	case 0xB: // XRI
		c.D ^= c.host.MemRead(c.R[c.P])
		c.R[c.P]++
	case 0xC: // ADI
		c.D, c.DF = addWithCarry(c.host.MemRead(c.R[c.P]), c.D, false)
		c.R[c.P]++
	case 0xD: // SDI
		c.D, c.DF = subWithBorrow(c.host.MemRead(c.R[c.P]), c.D, false)
		c.R[c.P]++
	case 0xE: // SHL: DF unaffected
		c.D <<= 1
	case 0xF: // SMI
		c.D, c.DF = subWithBorrow(c.D, c.host.MemRead(c.R[c.P]), false)
		c.R[c.P]++
	}
}

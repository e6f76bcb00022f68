package cdp1802

// addWithCarry computes a+b+carryIn in a widened intermediate and
// extracts DF from the overflow bit, then truncates to a byte.
func addWithCarry(a, b byte, carryIn bool) (sum byte, df bool) {
	wide := int(a) + int(b)
	if carryIn {
		wide++
	}
	return byte(wide), wide >= 0x100
}

// subWithBorrow computes minuend-subtrahend-borrowIn. DF is 1 iff no
// borrow occurred (the result did not go negative).
func subWithBorrow(minuend, subtrahend byte, borrowIn bool) (diff byte, df bool) {
	wide := int(minuend) - int(subtrahend)
	if borrowIn {
		wide--
	}
	return byte(wide), wide >= 0
}

package decoder

// funct3 values for the load opcode. 0x3, 0x6 and 0x7 are 64-bit-only or
// reserved widths and decode to Unsupported.
const (
	funct3Lb  = 0x0
	funct3Lh  = 0x1
	funct3Lw  = 0x2
	funct3Lbu = 0x4
	funct3Lhu = 0x5
)

// decodeLoad handles opcode 0x03. The immediate is a signed byte offset
// from rs1.
func decodeLoad(word uint32) Instruction {
	var kind Kind

	switch funct3Field(word) {
	case funct3Lb:
		kind = KindLb
	case funct3Lh:
		kind = KindLh
	case funct3Lw:
		kind = KindLw
	case funct3Lbu:
		kind = KindLbu
	case funct3Lhu:
		kind = KindLhu
	default:
		return unsupported(word)
	}

	return Instruction{
		Kind: kind,
		Rd:   rdField(word),
		Rs1:  rs1Field(word),
		Imm:  immIField(word),
	}
}

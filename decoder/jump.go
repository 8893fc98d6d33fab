package decoder

const funct3Jalr = 0x0

// decodeJump handles opcode 0x67. Only funct3 0 is defined for jalr.
func decodeJump(word uint32) Instruction {
	if funct3Field(word) != funct3Jalr {
		return unsupported(word)
	}

	return Instruction{
		Kind: KindJalr,
		Rd:   rdField(word),
		Rs1:  rs1Field(word),
		Imm:  immIField(word),
	}
}

package decoder

// Major opcodes of the supported subset.
const (
	opcodeMask = 0x7f

	opcodeRegister  = 0x33 // register-register ALU
	opcodeImmediate = 0x13 // register-immediate ALU and shifts
	opcodeLoad      = 0x03
	opcodeJalr      = 0x67
	opcodeSystem    = 0x73
)

// Field extraction. Register indices live in fixed 5-bit fields; the
// I-immediate is bits [31:20], sign-extended by the arithmetic shift.
func rdField(word uint32) uint8 {
	return uint8(word >> 7 & 0x1f)
}

func rs1Field(word uint32) uint8 {
	return uint8(word >> 15 & 0x1f)
}

func rs2Field(word uint32) uint8 {
	return uint8(word >> 20 & 0x1f)
}

func funct3Field(word uint32) uint32 {
	return word >> 12 & 0x7
}

func funct7Field(word uint32) uint32 {
	return word >> 25 & 0x7f
}

func immIField(word uint32) int16 {
	return int16(int32(word) >> 20)
}

// Decode decodes a 32-bit instruction word. It never fails: anything
// outside the supported subset decodes to an Unsupported instruction
// carrying the original word.
func Decode(word uint32) Instruction {
	switch word & opcodeMask {
	case opcodeRegister:
		return decodeRegister(word)
	case opcodeImmediate:
		return decodeImmediate(word)
	case opcodeLoad:
		return decodeLoad(word)
	case opcodeJalr:
		return decodeJump(word)
	case opcodeSystem:
		return decodeSystem(word)
	default:
		return unsupported(word)
	}
}

func unsupported(word uint32) Instruction {
	return Instruction{Kind: KindUnsupported, Word: word}
}

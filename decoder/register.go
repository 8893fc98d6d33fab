package decoder

// funct3/funct7 pairs for the register-register opcode.
const (
	funct3AddSub = 0x0
	funct3Xor    = 0x4
	funct3Or     = 0x6
	funct3And    = 0x7

	funct7Base = 0x00
	funct7Alt  = 0x20 // sub (and srai in the shift group)
)

// decodeRegister handles opcode 0x33. A funct7 outside the listed values
// is a reserved encoding and decodes to Unsupported.
func decodeRegister(word uint32) Instruction {
	var kind Kind

	switch funct3Field(word) {
	case funct3AddSub:
		switch funct7Field(word) {
		case funct7Base:
			kind = KindAdd
		case funct7Alt:
			kind = KindSub
		default:
			return unsupported(word)
		}
	case funct3Xor:
		if funct7Field(word) != funct7Base {
			return unsupported(word)
		}
		kind = KindXor
	case funct3Or:
		if funct7Field(word) != funct7Base {
			return unsupported(word)
		}
		kind = KindOr
	case funct3And:
		if funct7Field(word) != funct7Base {
			return unsupported(word)
		}
		kind = KindAnd
	default:
		return unsupported(word)
	}

	return Instruction{
		Kind: kind,
		Rd:   rdField(word),
		Rs1:  rs1Field(word),
		Rs2:  rs2Field(word),
	}
}

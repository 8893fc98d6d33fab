package decoder

// funct3 values for the register-immediate opcode.
const (
	funct3Addi  = 0x0
	funct3Slli  = 0x1
	funct3Slti  = 0x2
	funct3Sltiu = 0x3
	funct3Xori  = 0x4
	funct3Srl   = 0x5 // srli/srai, split by funct7
	funct3Ori   = 0x6
	funct3Andi  = 0x7
)

// shiftAmountMask keeps the low five bits of the immediate; the upper
// seven are the funct7 discriminator for shift encodings.
const shiftAmountMask = 0x1f

// decodeImmediate handles opcode 0x13: I-type ALU instructions and the
// shift-immediate group. Plain I-type immediates are sign-extended 12-bit
// values; shift amounts are the low five immediate bits, with funct7
// selecting between logical and arithmetic right shifts.
func decodeImmediate(word uint32) Instruction {
	imm := immIField(word)

	var kind Kind
	switch funct3Field(word) {
	case funct3Addi:
		kind = KindAddi
	case funct3Slti:
		kind = KindSlti
	case funct3Sltiu:
		kind = KindSltiu
	case funct3Xori:
		kind = KindXori
	case funct3Ori:
		kind = KindOri
	case funct3Andi:
		kind = KindAndi
	case funct3Slli:
		if funct7Field(word) != funct7Base {
			return unsupported(word)
		}
		kind = KindSlli
		imm &= shiftAmountMask
	case funct3Srl:
		switch funct7Field(word) {
		case funct7Base:
			kind = KindSrli
		case funct7Alt:
			kind = KindSrai
		default:
			return unsupported(word)
		}
		imm &= shiftAmountMask
	default:
		return unsupported(word)
	}

	return Instruction{
		Kind: kind,
		Rd:   rdField(word),
		Rs1:  rs1Field(word),
		Imm:  imm,
	}
}

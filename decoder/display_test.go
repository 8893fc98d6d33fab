package decoder_test

import (
	"testing"

	"github.com/lookbusy1344/riscv-vm/decoder"
)

func TestDisplay_RegisterInstructions(t *testing.T) {
	cases := []struct {
		in   decoder.Instruction
		want string
	}{
		{decoder.Instruction{Kind: decoder.KindAdd, Rd: 1, Rs1: 2, Rs2: 3}, "add x1, x2, x3"},
		{decoder.Instruction{Kind: decoder.KindSub, Rd: 31, Rs1: 31, Rs2: 31}, "sub x31, x31, x31"},
		{decoder.Instruction{Kind: decoder.KindXor, Rd: 0, Rs1: 0, Rs2: 0}, "xor x0, x0, x0"},
		{decoder.Instruction{Kind: decoder.KindOr, Rd: 5, Rs1: 10, Rs2: 15}, "or x5, x10, x15"},
		{decoder.Instruction{Kind: decoder.KindAnd, Rd: 1, Rs1: 2, Rs2: 3}, "and x1, x2, x3"},
	}

	for _, tc := range cases {
		if got := tc.in.String(); got != tc.want {
			t.Errorf("Expected %q, got %q", tc.want, got)
		}
	}
}

func TestDisplay_ImmediateInstructions(t *testing.T) {
	cases := []struct {
		in   decoder.Instruction
		want string
	}{
		{decoder.Instruction{Kind: decoder.KindAddi, Rd: 1, Rs1: 2, Imm: 100}, "addi x1, x2, 100"},
		{decoder.Instruction{Kind: decoder.KindAddi, Rd: 0, Rs1: 1, Imm: -4}, "addi x0, x1, -4"},
		{decoder.Instruction{Kind: decoder.KindAddi, Rd: 0, Rs1: 0, Imm: -2048}, "addi x0, x0, -2048"},
		{decoder.Instruction{Kind: decoder.KindAddi, Rd: 31, Rs1: 31, Imm: 2047}, "addi x31, x31, 2047"},
		{decoder.Instruction{Kind: decoder.KindSlti, Rd: 1, Rs1: 2, Imm: -1}, "slti x1, x2, -1"},
		{decoder.Instruction{Kind: decoder.KindSltiu, Rd: 1, Rs1: 2, Imm: 5}, "sltiu x1, x2, 5"},
		{decoder.Instruction{Kind: decoder.KindXori, Rd: 1, Rs1: 2, Imm: 255}, "xori x1, x2, 255"},
		{decoder.Instruction{Kind: decoder.KindOri, Rd: 1, Rs1: 2, Imm: 255}, "ori x1, x2, 255"},
		{decoder.Instruction{Kind: decoder.KindAndi, Rd: 1, Rs1: 2, Imm: 255}, "andi x1, x2, 255"},
		{decoder.Instruction{Kind: decoder.KindSlli, Rd: 1, Rs1: 2, Imm: 0}, "slli x1, x2, 0"},
		{decoder.Instruction{Kind: decoder.KindSrli, Rd: 1, Rs1: 2, Imm: 31}, "srli x1, x2, 31"},
		{decoder.Instruction{Kind: decoder.KindSrai, Rd: 1, Rs1: 2, Imm: 16}, "srai x1, x2, 16"},
	}

	for _, tc := range cases {
		if got := tc.in.String(); got != tc.want {
			t.Errorf("Expected %q, got %q", tc.want, got)
		}
	}
}

func TestDisplay_Loads(t *testing.T) {
	cases := []struct {
		in   decoder.Instruction
		want string
	}{
		{decoder.Instruction{Kind: decoder.KindLb, Rd: 1, Rs1: 2, Imm: 4}, "lb x1, 4(x2)"},
		{decoder.Instruction{Kind: decoder.KindLh, Rd: 1, Rs1: 2, Imm: -4}, "lh x1, -4(x2)"},
		{decoder.Instruction{Kind: decoder.KindLw, Rd: 31, Rs1: 0, Imm: 2047}, "lw x31, 2047(x0)"},
		{decoder.Instruction{Kind: decoder.KindLbu, Rd: 1, Rs1: 2, Imm: 0}, "lbu x1, 0(x2)"},
		{decoder.Instruction{Kind: decoder.KindLhu, Rd: 1, Rs1: 2, Imm: -2048}, "lhu x1, -2048(x2)"},
	}

	for _, tc := range cases {
		if got := tc.in.String(); got != tc.want {
			t.Errorf("Expected %q, got %q", tc.want, got)
		}
	}
}

func TestDisplay_JumpAndSystem(t *testing.T) {
	cases := []struct {
		in   decoder.Instruction
		want string
	}{
		{decoder.Instruction{Kind: decoder.KindJalr, Rd: 1, Rs1: 2, Imm: 8}, "jalr x1, x2, 8"},
		{decoder.Instruction{Kind: decoder.KindJalr, Rd: 0, Rs1: 1, Imm: -4}, "jalr x0, x1, -4"},
		{decoder.Instruction{Kind: decoder.KindEcall}, "ecall"},
		{decoder.Instruction{Kind: decoder.KindEbreak}, "ebreak"},
	}

	for _, tc := range cases {
		if got := tc.in.String(); got != tc.want {
			t.Errorf("Expected %q, got %q", tc.want, got)
		}
	}
}

func TestDisplay_Unsupported(t *testing.T) {
	cases := []struct {
		word uint32
		want string
	}{
		{0x00000000, "unsupported(0x00000000)"},
		{0xdeadbeef, "unsupported(0xdeadbeef)"},
		{0x001000f3, "unsupported(0x001000f3)"},
	}

	for _, tc := range cases {
		in := decoder.Decode(tc.word)
		if got := in.String(); got != tc.want {
			t.Errorf("Expected %q, got %q", tc.want, got)
		}
	}
}

// Round trip: decoding a canonical encoding and printing it yields the
// canonical text.
func TestDisplay_DecodeRoundTrip(t *testing.T) {
	cases := []struct {
		word uint32
		want string
	}{
		{0x003100b3, "add x1, x2, x3"},
		{0x403100b3, "sub x1, x2, x3"},
		{0x7ff00093, "addi x1, x0, 2047"},
		{0xffc08013, "addi x0, x1, -4"},
		{0x00411093, "slli x1, x2, 4"},
		{0x40415093, "srai x1, x2, 4"},
		{0x00412083, "lw x1, 4(x2)"},
		{0xffc10083, "lb x1, -4(x2)"},
		{0x004100e7, "jalr x1, x2, 4"},
		{0x00000073, "ecall"},
		{0x00100073, "ebreak"},
	}

	for _, tc := range cases {
		if got := decoder.Decode(tc.word).String(); got != tc.want {
			t.Errorf("word 0x%08x: Expected %q, got %q", tc.word, tc.want, got)
		}
	}
}

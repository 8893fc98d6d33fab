// Package loader reads guest RISC-V images from disk. Two formats are
// accepted: flat little-endian binaries (.bin, or anything else) and
// textual hex listings (.hex) with one 32-bit word per line.
package loader

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/lookbusy1344/riscv-vm/decoder"
)

// Image is a guest program read from disk.
type Image struct {
	Path  string
	Bytes []byte
}

// LoadImage reads the file at path and returns its image. Hex listings are
// parsed; everything else is taken as a raw little-endian binary. The
// image length must be a whole number of 32-bit words.
func LoadImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loading image: %w", err)
	}
	defer f.Close()

	var data []byte
	if strings.EqualFold(filepath.Ext(path), ".hex") {
		data, err = parseHex(f)
	} else {
		data, err = io.ReadAll(f)
	}
	if err != nil {
		return nil, fmt.Errorf("loading image %s: %w", path, err)
	}

	if len(data)%4 != 0 {
		return nil, fmt.Errorf("loading image %s: length %d is not a multiple of 4", path, len(data))
	}

	return &Image{Path: path, Bytes: data}, nil
}

// parseHex reads one 32-bit hex word per line. Blank lines and lines
// starting with # or // are ignored; an optional 0x prefix is accepted.
func parseHex(r io.Reader) ([]byte, error) {
	var data []byte

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		line = strings.TrimPrefix(strings.ToLower(line), "0x")
		word, err := strconv.ParseUint(line, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid hex word %q", lineNo, line)
		}
		data = binary.LittleEndian.AppendUint32(data, uint32(word))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return data, nil
}

// Words returns the image as 32-bit little-endian words.
func (img *Image) Words() []uint32 {
	words := make([]uint32, len(img.Bytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(img.Bytes[i*4:])
	}
	return words
}

// Validate checks that every word of the image decodes to a supported
// instruction, returning the offset and word of the first that does not.
func (img *Image) Validate() error {
	for i, word := range img.Words() {
		if decoder.Decode(word).Kind == decoder.KindUnsupported {
			return fmt.Errorf("unsupported instruction 0x%08x at offset 0x%x", word, i*4)
		}
	}
	return nil
}

// Disassemble writes an address/word/mnemonic listing of the image.
func (img *Image) Disassemble(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Address", "Word", "Instruction"})
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for i, word := range img.Words() {
		table.Append([]string{
			fmt.Sprintf("0x%08x", i*4),
			fmt.Sprintf("0x%08x", word),
			decoder.Decode(word).String(),
		})
	}

	table.Render()
}

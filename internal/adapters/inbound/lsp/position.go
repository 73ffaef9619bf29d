package lsp

import (
	"unicode/utf8"

	"fortio.org/safecast"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/nix-mox/moxlint/internal/domain"
)

const maxUint32 = ^uint32(0)

func safeUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return maxUint32
	}
	return v
}

// utf16Column converts a byte offset in line to UTF-16 code units, the unit
// LSP clients count columns in.
func utf16Column(line string, byteCol int) uint32 {
	if byteCol > len(line) {
		byteCol = len(line)
	}
	units := 0
	for i := 0; i < byteCol; {
		r, size := utf8.DecodeRuneInString(line[i:])
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		i += size
	}
	return safeUint32(units)
}

// byteColumn converts a UTF-16 column back to a byte offset in line. A
// column inside a surrogate pair or past the end snaps to the rune boundary.
func byteColumn(line string, char uint32) int {
	units := uint32(0)
	i := 0
	for i < len(line) {
		r, size := utf8.DecodeRuneInString(line[i:])
		need := uint32(1)
		if r > 0xFFFF {
			need = 2
		}
		if units+need > char {
			break
		}
		units += need
		i += size
	}
	return i
}

// toProtocolRange maps a single-line byte range onto LSP coordinates.
func toProtocolRange(doc domain.Document, r domain.Range) protocol.Range {
	line := doc.Line(r.Line)
	return protocol.Range{
		Start: protocol.Position{Line: safeUint32(r.Line), Character: utf16Column(line, r.Start)},
		End:   protocol.Position{Line: safeUint32(r.Line), Character: utf16Column(line, r.End)},
	}
}

// offsetAt returns the byte offset into text for an LSP position.
func offsetAt(text string, pos protocol.Position) int {
	line := uint32(0)
	i := 0
	for i < len(text) && line < pos.Line {
		if text[i] == '\n' {
			line++
		}
		i++
	}
	if line < pos.Line {
		return len(text)
	}
	end := i
	for end < len(text) && text[end] != '\n' {
		end++
	}
	return i + byteColumn(text[i:end], pos.Character)
}

package certificate

import (
	"bytes"
	"unicode/utf16"
	"unicode/utf8"
)

const (
	indentUnit   = "    "
	keySeparator = ": "
	hexDigits    = "0123456789abcdef"
)

// member is one key/value pair of a canonical JSON object.
// Exactly one of value and object is used.
type member struct {
	key    string
	value  string
	object []member
}

// Canonicalize returns the byte form that is signed and verified.
//
// The layout is fixed and independent of any JSON library defaults:
// members in declaration order, four-space indentation, "," at line ends,
// ": " between key and value, no trailing newline, and ASCII-only output
// with non-ASCII runes written as \uXXXX escapes. The signature is excluded.
func Canonicalize(r Record) []byte {
	var b bytes.Buffer
	writeObject(&b, recordMembers(r), 0)
	return b.Bytes()
}

// Marshal returns the persisted form of a record: the canonical layout
// with "signature" appended last when the record is signed.
func Marshal(r Record) []byte {
	members := recordMembers(r)
	if r.Signed() {
		members = append(members, member{key: "signature", value: r.Signature})
	}

	var b bytes.Buffer
	writeObject(&b, members, 0)
	return b.Bytes()
}

func recordMembers(r Record) []member {
	return []member{
		{key: "reportID", value: r.ReportID},
		{key: "timestamp", value: r.Timestamp},
		{key: "driveInfo", object: []member{
			{key: "model", value: r.DriveInfo.Model},
			{key: "serial", value: r.DriveInfo.Serial},
			{key: "size", value: r.DriveInfo.Size},
			{key: "path", value: r.DriveInfo.Path},
		}},
		{key: "wipeDetails", object: []member{
			{key: "method", value: r.WipeDetails.Method},
			{key: "standard", value: r.WipeDetails.Standard},
			{key: "status", value: r.WipeDetails.Status},
			{key: "details", value: r.WipeDetails.Details},
		}},
	}
}

func writeObject(b *bytes.Buffer, members []member, depth int) {
	b.WriteByte('{')
	for i, m := range members {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
		writeIndent(b, depth+1)
		writeString(b, m.key)
		b.WriteString(keySeparator)
		if m.object != nil {
			writeObject(b, m.object, depth+1)
		} else {
			writeString(b, m.value)
		}
	}
	if len(members) > 0 {
		b.WriteByte('\n')
		writeIndent(b, depth)
	}
	b.WriteByte('}')
}

func writeIndent(b *bytes.Buffer, depth int) {
	for range depth {
		b.WriteString(indentUnit)
	}
}

// writeString writes s as an ASCII-only JSON string. Printable ASCII other
// than '"' and '\\' is written as-is, so '<', '>', '&' and '/' are never
// escaped. Invalid UTF-8 bytes become \ufffd.
func writeString(b *bytes.Buffer, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			i++
			switch c {
			case '"':
				b.WriteString(`\"`)
			case '\\':
				b.WriteString(`\\`)
			case '\n':
				b.WriteString(`\n`)
			case '\r':
				b.WriteString(`\r`)
			case '\t':
				b.WriteString(`\t`)
			case '\b':
				b.WriteString(`\b`)
			case '\f':
				b.WriteString(`\f`)
			default:
				if c < 0x20 || c == 0x7f {
					writeUnicodeEscape(b, rune(c))
				} else {
					b.WriteByte(c)
				}
			}
			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		if r > 0xFFFF {
			hi, lo := utf16.EncodeRune(r)
			writeUnicodeEscape(b, hi)
			writeUnicodeEscape(b, lo)
			continue
		}
		writeUnicodeEscape(b, r)
	}
	b.WriteByte('"')
}

func writeUnicodeEscape(b *bytes.Buffer, r rune) {
	b.WriteString(`\u`)
	b.WriteByte(hexDigits[(r>>12)&0xF])
	b.WriteByte(hexDigits[(r>>8)&0xF])
	b.WriteByte(hexDigits[(r>>4)&0xF])
	b.WriteByte(hexDigits[r&0xF])
}

// Package tagpattern expands declarative tag patterns into concrete
// equipment tags. Expansion is deterministic and side-effect free: the same
// pattern, context and sequence number always yield the same string.
//
// Recognized placeholders:
//
//	{TYPE}       short code for the equipment type
//	{AREA}       the area string as-is ("00" when empty)
//	{SEQ}        the sequence number, no padding
//	{SEQ:<mask>} the sequence number zero-padded to len(mask) digits,
//	             where <mask> is a run of digits (conventionally zeros,
//	             e.g. {SEQ:001} and {SEQ:000} both pad to three)
//
// Unrecognized placeholders are left verbatim in the output rather than
// failing, so live previews stay inspectable for malformed patterns.
package tagpattern

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultTypeCodes maps common process-equipment types to their tag codes.
var DefaultTypeCodes = map[string]string{
	"Pump":       "P",
	"Tank":       "TK",
	"Vessel":     "V",
	"Compressor": "C",
	"Exchanger":  "E",
	"Valve":      "XV",
	"Filter":     "F",
	"Mixer":      "MX",
}

// ExpansionContext supplies the per-equipment values a pattern can reference.
type ExpansionContext struct {
	// TypeCodes maps equipment types to short codes. Nil falls back to
	// DefaultTypeCodes.
	TypeCodes     map[string]string
	EquipmentType string
	Area          string
}

// seqToken matches {SEQ} and {SEQ:<digits>} placeholders. Only the mask's
// length matters for padding; masks containing non-digit characters do not
// match and pass through verbatim.
var seqToken = regexp.MustCompile(`\{SEQ(?::([0-9]+))?\}`)

// TypeCode resolves the short code for the context's equipment type.
// Unknown types fall back to the first three characters uppercased (or the
// first two if the type is shorter); an empty type yields "EQ".
func (c ExpansionContext) TypeCode() string {
	codes := c.TypeCodes
	if codes == nil {
		codes = DefaultTypeCodes
	}
	if code, ok := codes[c.EquipmentType]; ok {
		return code
	}

	runes := []rune(strings.TrimSpace(c.EquipmentType))
	if len(runes) == 0 {
		return "EQ"
	}
	n := 3
	if len(runes) < 3 {
		n = 2
	}
	if len(runes) < n {
		n = len(runes)
	}
	return strings.ToUpper(string(runes[:n]))
}

// Expand replaces every recognized placeholder in pattern and returns the
// resulting tag. The only error condition is an empty pattern.
func Expand(pattern string, ctx ExpansionContext, sequenceNumber int) (string, error) {
	if strings.TrimSpace(pattern) == "" {
		return "", fmt.Errorf("pattern is empty")
	}

	area := ctx.Area
	if area == "" {
		area = "00"
	}

	out := strings.ReplaceAll(pattern, "{TYPE}", ctx.TypeCode())
	out = strings.ReplaceAll(out, "{AREA}", area)

	out = seqToken.ReplaceAllStringFunc(out, func(token string) string {
		m := seqToken.FindStringSubmatch(token)
		if m[1] == "" {
			return fmt.Sprintf("%d", sequenceNumber)
		}
		return padSequence(sequenceNumber, len(m[1]))
	})

	return out, nil
}

// padSequence zero-pads n to at least width digits. Numbers wider than the
// mask are emitted in full; digits are never silently dropped. The sign of
// a negative number does not consume mask width.
func padSequence(n, width int) string {
	if n < 0 {
		return "-" + fmt.Sprintf("%0*d", width, -n)
	}
	return fmt.Sprintf("%0*d", width, n)
}

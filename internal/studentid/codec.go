// Package studentid derives and parses structured student identifiers.
//
// An identifier is the stream code, the last three digits of the admission
// year, a dash, and the roll number zero-padded to three digits:
// BCA024-059 is roll 59 of the 2024 BCA intake.
package studentid

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/campushq/attendly/internal/models"
)

var idPattern = regexp.MustCompile(`^([A-Z]+)(\d{3})-(\d{3})$`)

// Encode builds a student id from stream, admission year and roll number.
// It returns the empty string when any input is missing; roll 0 is
// indistinguishable from a missing roll and therefore unencodable, so the
// round-trip with Decode holds for rolls 1-999 only. Range validation
// (roll 1-999, year bounds) is the caller's job.
func Encode(stream models.Stream, year, roll int) string {
	if stream == "" || year == 0 || roll == 0 {
		return ""
	}
	return fmt.Sprintf("%s%03d-%03d", stream, year%1000, roll)
}

// Decode reconstructs (stream, year, roll) from an identifier. The year is
// rebuilt by prefixing "20" to its three-digit suffix, so only 21st-century
// years are representable; this is a known limitation of the id format, not
// something to extend silently. ok is false when the id does not match the
// expected pattern.
func Decode(id string) (stream models.Stream, year int, roll int, ok bool) {
	m := idPattern.FindStringSubmatch(id)
	if m == nil {
		return "", 0, 0, false
	}
	suffix, _ := strconv.Atoi(m[2])
	roll, _ = strconv.Atoi(m[3])
	return models.Stream(m[1]), 2000 + suffix, roll, true
}

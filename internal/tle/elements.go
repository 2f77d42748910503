package tle

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// lineLen is the fixed width of both element-set lines.
const lineLen = 69

// ValidateElements checks that line1 and line2 form a complete element set:
// 69 columns each, correct line numbers, valid mod-10 checksums and a
// finite number in every field the SGP4 model reads. The column slices match
// go-satellite's ParseTLE, which exits the process on a field it cannot parse.
func ValidateElements(line1, line2 string) error {
	if len(line1) != lineLen {
		return fmt.Errorf("line 1 length %d, expected %d", len(line1), lineLen)
	}
	if len(line2) != lineLen {
		return fmt.Errorf("line 2 length %d, expected %d", len(line2), lineLen)
	}
	if line1[0] != '1' || line1[1] != ' ' {
		return fmt.Errorf("line 1 must start with \"1 \", got %q", line1[:2])
	}
	if line2[0] != '2' || line2[1] != ' ' {
		return fmt.Errorf("line 2 must start with \"2 \", got %q", line2[:2])
	}

	for i, line := range []string{line1, line2} {
		if err := verifyChecksum(line); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
	}

	if _, err := strconv.ParseInt(strings.TrimSpace(line1[2:7]), 10, 0); err != nil {
		return fmt.Errorf("invalid catalog number %q", line1[2:7])
	}
	if _, err := strconv.ParseInt(line1[18:20], 10, 0); err != nil {
		return fmt.Errorf("invalid epoch year %q", line1[18:20])
	}

	fields := []struct {
		name  string
		value string
	}{
		{"epoch day", line1[20:32]},
		{"mean motion derivative", strings.Replace(line1[33:43], " ", "", 2)},
		{"mean motion second derivative", strings.Replace(line1[44:45]+"."+line1[45:50]+"e"+line1[50:52], " ", "", 2)},
		{"drag term", strings.Replace(line1[53:54]+"."+line1[54:59]+"e"+line1[59:61], " ", "", 2)},
		{"inclination", strings.Replace(line2[8:16], " ", "", 2)},
		{"right ascension", strings.Replace(line2[17:25], " ", "", 2)},
		{"eccentricity", "." + line2[26:33]},
		{"argument of perigee", strings.Replace(line2[34:42], " ", "", 2)},
		{"mean anomaly", strings.Replace(line2[43:51], " ", "", 2)},
		{"mean motion", strings.Replace(line2[52:63], " ", "", 2)},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(f.value, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("invalid %s %q", f.name, f.value)
		}
	}

	return nil
}

// verifyChecksum compares column 69 with the sum of the digits in columns
// 1-68, where each minus sign counts as 1, modulo 10.
func verifyChecksum(line string) error {
	want := line[lineLen-1]
	if want < '0' || want > '9' {
		return fmt.Errorf("checksum %q is not a digit", want)
	}

	sum := 0
	for i := 0; i < lineLen-1; i++ {
		switch c := line[i]; {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	if got := byte('0' + sum%10); got != want {
		return fmt.Errorf("checksum mismatch: computed %c, column 69 has %c", got, want)
	}
	return nil
}

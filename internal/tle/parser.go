package tle

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Parse reads two-line or three-line element sets from r and returns records
// in feed order. A bare two-line block is named after its catalog number and a
// "0 " prefix on a name line is dropped.
//
// Any malformed block fails the whole parse: a feed that cannot be read in
// full is not a catalog.
func Parse(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading element sets: %w", err)
	}

	var records []Record
	for i := 0; i < len(lines); {
		var name, line1, line2 string

		switch {
		case isLine(lines[i], '1') && i+1 < len(lines) && isLine(lines[i+1], '2'):
			line1, line2 = lines[i], lines[i+1]
			i += 2
		case i+2 < len(lines) && isLine(lines[i+1], '1') && isLine(lines[i+2], '2'):
			name = strings.TrimSpace(strings.TrimPrefix(lines[i], "0 "))
			line1, line2 = lines[i+1], lines[i+2]
			i += 3
		default:
			return nil, fmt.Errorf("malformed element set at line %d: %q", i+1, lines[i])
		}

		rec, err := parseRecord(name, line1, line2)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

func isLine(s string, n byte) bool {
	return len(s) > 2 && s[0] == n && s[1] == ' '
}

func parseRecord(name, line1, line2 string) (Record, error) {
	if err := ValidateElements(line1, line2); err != nil {
		return Record{}, fmt.Errorf("element set %q: %w", name, err)
	}

	// Catalog number in cols 3-7.
	noradStr := strings.TrimSpace(line1[2:7])
	noradID, err := strconv.Atoi(noradStr)
	if err != nil {
		return Record{}, fmt.Errorf("element set %q: invalid catalog number %q", name, noradStr)
	}
	if strings.TrimSpace(line2[2:7]) != noradStr {
		return Record{}, fmt.Errorf("element set %q: line 2 catalog number does not match %s", name, noradStr)
	}

	// Epoch in cols 19-32.
	epochStr := strings.TrimSpace(line1[18:32])
	epoch, err := parseEpoch(epochStr)
	if err != nil {
		return Record{}, fmt.Errorf("element set %q: %w", name, err)
	}

	if name == "" {
		name = noradStr
	}

	return Record{
		NORADID: noradID,
		Name:    name,
		Epoch:   epoch,
		Line1:   line1,
		Line2:   line2,
	}, nil
}

// parseEpoch converts a TLE epoch string in YYDDD.DDDDDDDD format to time.Time.
// Year 00-56 → 2000s, 57-99 → 1900s.
func parseEpoch(s string) (time.Time, error) {
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("epoch string too short: %q", s)
	}

	yearStr := s[:2]
	dayStr := s[2:]

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch year %q: %w", yearStr, err)
	}

	if year >= 57 {
		year += 1900
	} else {
		year += 2000
	}

	dayOfYear, err := strconv.ParseFloat(dayStr, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch day %q: %w", dayStr, err)
	}
	if dayOfYear < 1 || dayOfYear >= 367 {
		return time.Time{}, fmt.Errorf("epoch day %q out of range", dayStr)
	}

	// dayOfYear is 1-based: day 1 = Jan 1.
	t := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	return t.Add(time.Duration((dayOfYear - 1) * float64(24*time.Hour))), nil
}

// Package assistant implements the appointment-booking conversation: an
// in-memory session store, a fixed five-step state machine and the
// natural-language extractors it uses to fill fields from free text.
package assistant

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	dateBRRe      = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
	dateISORe     = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	bareIndexRe   = regexp.MustCompile(`^(\d{1,3})$`)
	labeledNameRe = regexp.MustCompile(`(?i)nome[:\-]\s*([^;,\n]+)`)
	labeledCityRe = regexp.MustCompile(`(?i)cidade[:\-]\s*([^;,\n]+)`)
	labeledBirtRe = regexp.MustCompile(`(?i)(?:data\s*de\s*)?nascimento[:\-]\s*([^;,\n]+)`)
	multiSpaceRe  = regexp.MustCompile(`\s{2,}`)
)

// ParseDateBR converts DD/MM/YYYY to YYYY-MM-DD. Only the shape is
// validated; calendar correctness (e.g. 31/02) is not checked.
func ParseDateBR(s string) (string, bool) {
	m := dateBRRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}
	return fmt.Sprintf("%s-%s-%s", m[3], m[2], m[1]), true
}

// ParseBirth accepts DD/MM/YYYY (primary) or YYYY-MM-DD (secondary) and
// returns the ISO form.
func ParseBirth(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if iso, ok := ParseDateBR(s); ok {
		return iso, true
	}
	if dateISORe.MatchString(s) {
		return s, true
	}
	return "", false
}

// PatientInfo is the triple collected in the first phase.
type PatientInfo struct {
	Name     string
	BirthISO string
	City     string
}

// ParsePatientCSV parses "Nome completo, DD/MM/AAAA, Cidade". At least
// three non-empty comma-separated parts are required; the first three are
// taken as name, birth and city.
func ParsePatientCSV(input string) (PatientInfo, bool) {
	var parts []string
	for _, p := range strings.Split(input, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 3 {
		return PatientInfo{}, false
	}
	iso, ok := ParseDateBR(parts[1])
	if !ok {
		return PatientInfo{}, false
	}
	return PatientInfo{Name: parts[0], BirthISO: iso, City: parts[2]}, true
}

// ParsePatientLabeled parses the labeled legacy form, e.g.
// "Nome: X; Nascimento: 30/05/1990; Cidade: Y". Birth accepts DD/MM/YYYY
// or YYYY-MM-DD.
func ParsePatientLabeled(input string) (PatientInfo, bool) {
	name := firstGroup(labeledNameRe, input)
	birthRaw := firstGroup(labeledBirtRe, input)
	city := firstGroup(labeledCityRe, input)

	if name == "" || birthRaw == "" || city == "" {
		return PatientInfo{}, false
	}
	iso, ok := ParseBirth(birthRaw)
	if !ok {
		return PatientInfo{}, false
	}
	return PatientInfo{Name: name, BirthISO: iso, City: city}, true
}

// ExtractPatient runs the extraction cascade: CSV, labeled, then a
// whitespace-normalized CSV retry. The first success wins.
func ExtractPatient(input string) (PatientInfo, bool) {
	if info, ok := ParsePatientCSV(input); ok {
		return info, true
	}
	if info, ok := ParsePatientLabeled(input); ok {
		return info, true
	}
	normalized := strings.TrimSpace(multiSpaceRe.ReplaceAllString(input, " "))
	return ParsePatientCSV(normalized)
}

// ParseIndex parses a bare 1-based selection and returns the 0-based index.
// Anything that is not a bare integer in [1, max] fails.
func ParseIndex(msg string, max int) (int, bool) {
	m := bareIndexRe.FindStringSubmatch(strings.TrimSpace(msg))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > max {
		return 0, false
	}
	return n - 1, true
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

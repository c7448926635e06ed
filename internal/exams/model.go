// Package exams authorizes medical procedures extracted from referral
// documents. The document text comes in already extracted; an LLM pulls the
// patient and procedure list out of it, and each procedure is decided
// against the coverage catalog.
package exams

import (
	"errors"
	"regexp"
	"strings"
)

// Decision codes per procedure.
const (
	DecisionAuthorized     = "AUTHORIZED"
	DecisionDeniedNoCover  = "DENIED_NO_COVER"
	DecisionPendingAudit5  = "PENDING_AUDIT_5D"
	DecisionPendingAudit10 = "PENDING_AUDIT_10D"
)

// Persisted authorization statuses.
const (
	StatusApproved = "APPROVED"
	StatusDenied   = "DENIED"
	StatusPending  = "PENDING"
)

// ErrInvalidBirthDate flags a birth date in neither DD/MM/YYYY nor ISO form.
var ErrInvalidBirthDate = errors.New("EXAMS_INVALID_BIRTH_DATE")

// Exam is one row of the coverage catalog.
type Exam struct {
	ID    string
	Name  string
	Audit bool
	OPME  bool
}

// Patient is what the extractor found about the document's patient.
type Patient struct {
	Name      string `json:"name"`
	BirthDate string `json:"birthDate,omitempty"` // ISO YYYY-MM-DD when present
}

// Procedure is one extracted procedure request.
type Procedure struct {
	Name string `json:"name"`
	Qty  int    `json:"qty,omitempty"`
}

// ProcedureDecision is the authorization outcome for one procedure.
type ProcedureDecision struct {
	InputName     string `json:"inputName"`
	MatchedExamID string `json:"matchedExamId,omitempty"`
	MatchedName   string `json:"matchedName,omitempty"`
	Decision      string `json:"decision"`
	Reason        string `json:"reason"`
	SLADays       int    `json:"slaDays,omitempty"`
	Protocol      string `json:"protocol,omitempty"`
}

// AuthorizationStatus is the lookup projection: protocol and status only.
type AuthorizationStatus struct {
	Protocol string `json:"protocol"`
	Status   string `json:"status"`
}

var (
	dateBRRe  = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
	dateISORe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
)

// NormalizeDate converts DD/MM/YYYY or YYYY-MM-DD to ISO, with a basic
// month/day range check.
func NormalizeDate(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", false
	}

	var year, month, day string
	if m := dateBRRe.FindStringSubmatch(trimmed); m != nil {
		day, month, year = m[1], m[2], m[3]
	} else if m := dateISORe.FindStringSubmatch(trimmed); m != nil {
		year, month, day = m[1], m[2], m[3]
	} else {
		return "", false
	}

	if month < "01" || month > "12" || day < "01" || day > "31" {
		return "", false
	}
	return year + "-" + month + "-" + day, true
}

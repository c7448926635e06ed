package exams

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vivasaude/portal-api/pkg/logging"
)

// unknownPatientName stands in when the extractor found no name; the
// authorization still gets a protocol the clinic can chase manually.
const unknownPatientName = "DESCONHECIDO"

// unknownBirth stands in when the document carries no parseable birth date.
var unknownBirth = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// catalog is the persistence surface the service needs; the Repository
// satisfies it.
type catalog interface {
	FindExamByName(ctx context.Context, name string) (*Exam, error)
	GenerateUniqueProtocol(ctx context.Context) (string, error)
	InsertAuthorization(ctx context.Context, protocol, patientName string, birth time.Time, status string) error
	ListAuthorizationsByPatient(ctx context.Context, name string, birth time.Time) ([]AuthorizationStatus, error)
}

// AuthorizeResult is the full outcome of one document.
type AuthorizeResult struct {
	Patient       Patient             `json:"patient"`
	Procedures    []ProcedureDecision `json:"procedures"`
	ProtocolBatch string              `json:"protocolBatch"`
}

// Service runs the extraction + decision + persistence pipeline.
type Service struct {
	extractor Extractor
	repo      catalog
	logger    *logging.Logger
}

// NewService creates the exam authorization service.
func NewService(extractor Extractor, repo catalog, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{extractor: extractor, repo: repo, logger: logger.Component("exams")}
}

// Authorize extracts patient and procedures from the document text and
// decides each procedure against the coverage catalog, persisting one
// authorization per decided procedure.
func (s *Service) Authorize(ctx context.Context, documentText string) (*AuthorizeResult, error) {
	extraction, err := s.extractor.Extract(ctx, documentText)
	if err != nil {
		return nil, err
	}

	decisions := make([]ProcedureDecision, 0, len(extraction.Procedures))
	for _, proc := range extraction.Procedures {
		name := strings.TrimSpace(proc.Name)
		if name == "" {
			continue
		}
		d, err := s.decide(ctx, name)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}

	patientName := strings.TrimSpace(extraction.Patient.Name)
	if patientName == "" {
		patientName = unknownPatientName
	}

	birth := unknownBirth
	birthISO := ""
	if iso, ok := NormalizeDate(extraction.Patient.BirthDate); ok {
		birthISO = iso
		birth, _ = time.ParseInLocation("2006-01-02", iso, time.UTC)
	}

	batch, err := s.repo.GenerateUniqueProtocol(ctx)
	if err != nil {
		return nil, err
	}

	for i := range decisions {
		protocol, err := s.repo.GenerateUniqueProtocol(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.repo.InsertAuthorization(ctx, protocol, patientName, birth, statusFor(decisions[i].Decision)); err != nil {
			return nil, err
		}
		decisions[i].Protocol = protocol
	}

	s.logger.Info("document authorized",
		"procedures", len(decisions), "protocol_batch", batch)

	return &AuthorizeResult{
		Patient:       Patient{Name: patientName, BirthDate: birthISO},
		Procedures:    decisions,
		ProtocolBatch: batch,
	}, nil
}

func (s *Service) decide(ctx context.Context, inputName string) (ProcedureDecision, error) {
	exam, err := s.repo.FindExamByName(ctx, inputName)
	if err != nil {
		return ProcedureDecision{}, err
	}

	switch {
	case exam == nil:
		return ProcedureDecision{
			InputName: inputName,
			Decision:  DecisionDeniedNoCover,
			Reason:    "Não encontrado na base de procedimentos (sem cobertura cadastrada).",
		}, nil

	case !exam.Audit:
		return ProcedureDecision{
			InputName:     inputName,
			MatchedExamID: exam.ID,
			MatchedName:   exam.Name,
			Decision:      DecisionAuthorized,
			Reason:        "Coberto pelo plano e sem necessidade de auditoria. Autorizado automaticamente.",
		}, nil

	case !exam.OPME:
		return ProcedureDecision{
			InputName:     inputName,
			MatchedExamID: exam.ID,
			MatchedName:   exam.Name,
			Decision:      DecisionPendingAudit5,
			Reason:        "Necessita auditoria. Prazo estimado de retorno: 5 dias.",
			SLADays:       5,
		}, nil

	default:
		return ProcedureDecision{
			InputName:     inputName,
			MatchedExamID: exam.ID,
			MatchedName:   exam.Name,
			Decision:      DecisionPendingAudit10,
			Reason:        "Necessita auditoria com OPME. Prazo estimado de retorno: 10 dias.",
			SLADays:       10,
		}, nil
	}
}

// FindAuthorizations looks up issued authorizations by patient name and
// birth date (DD/MM/YYYY or ISO).
func (s *Service) FindAuthorizations(ctx context.Context, name, birthDate string) ([]AuthorizationStatus, error) {
	iso, ok := NormalizeDate(birthDate)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBirthDate, birthDate)
	}
	birth, err := time.ParseInLocation("2006-01-02", iso, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBirthDate, birthDate)
	}
	return s.repo.ListAuthorizationsByPatient(ctx, name, birth)
}

func statusFor(decision string) string {
	switch decision {
	case DecisionAuthorized:
		return StatusApproved
	case DecisionDeniedNoCover:
		return StatusDenied
	default:
		return StatusPending
	}
}

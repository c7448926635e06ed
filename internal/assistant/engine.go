package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vivasaude/portal-api/internal/appointments"
	"github.com/vivasaude/portal-api/internal/htmlmsg"
	"github.com/vivasaude/portal-api/internal/observability/metrics"
	"github.com/vivasaude/portal-api/pkg/logging"
)

// ExitKeyword cancels an in-progress conversation from any phase.
const ExitKeyword = "sair"

// Gateway is the persistence surface the state machine needs. The
// appointments repository satisfies it.
type Gateway interface {
	ListDoctorsBySpecialtyCity(ctx context.Context, specialtyID, city string) ([]appointments.Doctor, error)
	ListAvailabilityByDoctor(ctx context.Context, doctorID string, start, end *time.Time) ([]appointments.Slot, error)
	BookFromAvailability(ctx context.Context, p appointments.BookingParams) (*appointments.Appointment, error)
}

// Engine drives the five-step booking dialogue. It holds no per-session
// state itself; callers pass the session's State in and serialize access
// per session key.
type Engine struct {
	gw      Gateway
	logger  *logging.Logger
	metrics *metrics.PortalMetrics
	loc     *time.Location
}

// NewEngine creates the conversation engine. metrics may be nil.
func NewEngine(gw Gateway, m *metrics.PortalMetrics, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		// BRT without DST; Brazil abolished DST in 2019.
		loc = time.FixedZone("-03", -3*60*60)
	}
	return &Engine{gw: gw, logger: logger.Component("assistant"), metrics: m, loc: loc}
}

// Greeting is the opening prompt of a fresh session.
func (e *Engine) Greeting() string {
	return promptPatientFormat()
}

// Advance processes one user message against the session state and returns
// the reply. Gateway failures other than the booking consistency errors are
// returned to the caller; everything else is handled as conversation.
func (e *Engine) Advance(ctx context.Context, st *State, userMessage string) (string, error) {
	// The exit keyword wins over any phase logic, on every message.
	if normalizeText(userMessage) == ExitKeyword && st.Phase != PhaseDone {
		e.metrics.ObserveChatTurn(st.Phase.String(), "cancelled")
		st.Phase = PhaseDone
		return htmlmsg.Text("Atendimento cancelado. Se precisar, é só chamar."), nil
	}

	switch st.Phase {
	case PhaseCollectPatient:
		return e.collectPatient(st, userMessage)
	case PhaseCollectIntent:
		return e.collectIntent(ctx, st, userMessage)
	case PhaseChooseDoctor:
		return e.chooseDoctor(ctx, st, userMessage)
	case PhaseChooseSlot:
		return e.chooseSlot(ctx, st, userMessage)
	default:
		e.metrics.ObserveChatTurn(st.Phase.String(), "closed")
		return htmlmsg.Text("Atendimento encerrado. Se precisar de algo mais, é só chamar."), nil
	}
}

func (e *Engine) collectPatient(st *State, msg string) (string, error) {
	if st.PatientName == "" || st.PatientBirth == "" || st.City == "" {
		if info, ok := ExtractPatient(msg); ok {
			// Fields already collected in an earlier turn are kept.
			if st.PatientName == "" {
				st.PatientName = info.Name
			}
			if st.PatientBirth == "" {
				st.PatientBirth = info.BirthISO
			}
			if st.City == "" {
				st.City = info.City
			}
		}
	}

	if st.PatientName == "" || st.PatientBirth == "" || st.City == "" {
		e.metrics.ObserveChatTurn(st.Phase.String(), "reprompt")
		return promptPatientFormat(), nil
	}

	st.Phase = PhaseCollectIntent
	e.metrics.ObserveChatTurn(PhaseCollectPatient.String(), "advanced")
	return htmlmsg.Text(fmt.Sprintf("Obrigado, %s. Qual a especialidade desejada e o motivo da consulta?", st.PatientName)), nil
}

func (e *Engine) collectIntent(ctx context.Context, st *State, msg string) (string, error) {
	if st.SpecialtyID == "" {
		if id, matched, ok := MatchSpecialty(msg); ok {
			st.SpecialtyID = id
			if st.Reason == "" {
				st.Reason = ExtractReason(msg, matched)
			}
		}
	}

	if st.SpecialtyID == "" {
		e.metrics.ObserveChatTurn(st.Phase.String(), "reprompt")
		return htmlmsg.Text("Qual especialidade? Ex.: cardiologia, ortopedia, ginecologia."), nil
	}

	doctors, err := e.gw.ListDoctorsBySpecialtyCity(ctx, st.SpecialtyID, st.City)
	if err != nil {
		return "", fmt.Errorf("assistant: list doctors: %w", err)
	}
	if len(doctors) == 0 {
		st.Phase = PhaseDone
		e.metrics.ObserveChatTurn(PhaseCollectIntent.String(), "no_doctors")
		return htmlmsg.Text(fmt.Sprintf("Não encontrei médicos de %s em %s. Encerrando o atendimento.", st.SpecialtyID, st.City)), nil
	}

	st.Doctors = st.Doctors[:0]
	names := make([]string, 0, len(doctors))
	for _, d := range doctors {
		st.Doctors = append(st.Doctors, DoctorRef{ID: d.ID, Name: d.Name})
		names = append(names, d.Name)
	}
	st.Phase = PhaseChooseDoctor
	e.metrics.ObserveChatTurn(PhaseCollectIntent.String(), "advanced")
	return htmlmsg.NumberedList("Escolha o médico (digite o número):", names), nil
}

func (e *Engine) chooseDoctor(ctx context.Context, st *State, msg string) (string, error) {
	idx, ok := ParseIndex(msg, len(st.Doctors))
	if !ok {
		e.metrics.ObserveChatTurn(st.Phase.String(), "reprompt")
		return htmlmsg.Text(fmt.Sprintf("Por favor, digite um número de 1 a %d.", len(st.Doctors))), nil
	}

	chosen := st.Doctors[idx]
	st.SelectedDoctorID = chosen.ID
	st.SelectedDoctorName = chosen.Name

	reply, err := e.listSlots(ctx, st)
	if err != nil {
		return "", err
	}
	return reply, nil
}

// listSlots snapshots the doctor's next-30-days availability into the state
// and renders the selection list. With no slots the conversation stays able
// to accept another doctor index.
func (e *Engine) listSlots(ctx context.Context, st *State) (string, error) {
	slots, err := e.gw.ListAvailabilityByDoctor(ctx, st.SelectedDoctorID, nil, nil)
	if err != nil {
		return "", fmt.Errorf("assistant: list availability: %w", err)
	}
	if len(slots) == 0 {
		st.Phase = PhaseChooseDoctor
		e.metrics.ObserveChatTurn(PhaseChooseDoctor.String(), "no_slots")
		return htmlmsg.Text(fmt.Sprintf("Para %s, não há vagas nos próximos 30 dias. Escolha outro médico pelo número da lista.", st.SelectedDoctorName)), nil
	}

	st.Slots = st.Slots[:0]
	labels := make([]string, 0, len(slots))
	for _, s := range slots {
		st.Slots = append(st.Slots, SlotRef{ID: s.ID, Date: s.Date})
		labels = append(labels, e.formatDateTimeBR(s.Date))
	}
	st.Phase = PhaseChooseSlot
	e.metrics.ObserveChatTurn(PhaseChooseDoctor.String(), "advanced")
	return htmlmsg.NumberedList("Escolha o horário (digite o número):", labels), nil
}

func (e *Engine) chooseSlot(ctx context.Context, st *State, msg string) (string, error) {
	idx, ok := ParseIndex(msg, len(st.Slots))
	if !ok {
		e.metrics.ObserveChatTurn(st.Phase.String(), "reprompt")
		return htmlmsg.Text(fmt.Sprintf("Por favor, digite um número de 1 a %d.", len(st.Slots))), nil
	}

	chosen := st.Slots[idx]
	birth, err := time.ParseInLocation("2006-01-02", st.PatientBirth, time.UTC)
	if err != nil {
		// PatientBirth is always ISO by the time this phase is reached.
		return "", fmt.Errorf("assistant: stored birth date %q: %w", st.PatientBirth, err)
	}

	start := time.Now()
	appt, err := e.gw.BookFromAvailability(ctx, appointments.BookingParams{
		AvailabilityID: chosen.ID,
		DoctorID:       st.SelectedDoctorID,
		PatientName:    st.PatientName,
		PatientBirth:   birth,
	})
	elapsed := time.Since(start).Seconds()

	switch {
	case err == nil:
		st.Phase = PhaseDone
		e.metrics.ObserveBooking("confirmed", elapsed)
		e.metrics.ObserveChatTurn(PhaseChooseSlot.String(), "booked")
		return htmlmsg.Text(fmt.Sprintf("Agendamento confirmado! Protocolo: %s. Data: %s.", appt.Protocol, e.formatDateTimeBR(appt.Date))), nil

	case errors.Is(err, appointments.ErrAvailabilityNotFound), errors.Is(err, appointments.ErrDoctorMismatch):
		// The slot was consumed or moved between listing and booking:
		// refresh the list and let the user pick again.
		e.metrics.ObserveBooking("slot_gone", elapsed)
		e.logger.Warn("booking lost the slot", "error", err, "availability_id", chosen.ID)
		refreshed, lerr := e.listSlots(ctx, st)
		if lerr != nil {
			return "", lerr
		}
		return htmlmsg.Text("Esse horário não está mais disponível. ") + refreshed, nil

	default:
		e.metrics.ObserveBooking("error", elapsed)
		return "", fmt.Errorf("assistant: booking: %w", err)
	}
}

func (e *Engine) formatDateTimeBR(t time.Time) string {
	return t.In(e.loc).Format("02/01/2006 15:04")
}

func promptPatientFormat() string {
	return htmlmsg.Render(htmlmsg.Message{
		Intro: "Por favor, informe neste formato: Nome completo, DD/MM/AAAA, Cidade.",
		Notes: []string{"Ex.: Maria Silva, 10/05/1990, Franca"},
	})
}

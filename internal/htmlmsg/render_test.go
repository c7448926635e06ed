package htmlmsg

import (
	"strings"
	"testing"
)

func TestRenderSlots(t *testing.T) {
	got := Render(Message{
		Title: "Agendamento de Consultas",
		Intro: "Passo a passo:",
		Steps: []string{"Acesse o portal", "Escolha o médico"},
		Notes: []string{"Leve documento com foto"},
	})

	for _, want := range []string{
		"<strong>Agendamento de Consultas</strong>",
		"<ol><li>Acesse o portal</li><li>Escolha o médico</li></ol>",
		"<em>Observações:</em>",
		"<ul><li>Leve documento com foto</li></ul>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() missing %q in %q", want, got)
		}
	}
}

func TestRenderEscapesUserContent(t *testing.T) {
	got := Render(Message{Intro: "<script>alert(1)</script>"})
	if strings.Contains(got, "<script>") {
		t.Fatalf("Render() did not escape content: %q", got)
	}
}

func TestNumberedList(t *testing.T) {
	got := NumberedList("Escolha o médico (digite o número):", []string{"Dr. Ana Silva", "Dr. João Pereira"})
	want := "Escolha o médico (digite o número):<ol><li>Dr. Ana Silva</li><li>Dr. João Pereira</li></ol>"
	if got != want {
		t.Errorf("NumberedList() = %q, want %q", got, want)
	}
}

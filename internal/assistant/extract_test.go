package assistant

import "testing"

func TestParseDateBR(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"valid", "10/05/1990", "1990-05-10", true},
		{"valid with spaces", "  31/12/2001 ", "2001-12-31", true},
		{"shape only, no calendar check", "31/02/1999", "1999-02-31", true},
		{"wrong separator", "10-05-1990", "", false},
		{"short year", "10/05/90", "", false},
		{"single digit day", "1/05/1990", "", false},
		{"iso is not br", "1990-05-10", "", false},
		{"garbage", "amanhã", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDateBR(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseDateBR(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseBirthAcceptsBothFormats(t *testing.T) {
	if got, ok := ParseBirth("30/05/1990"); !ok || got != "1990-05-30" {
		t.Errorf("ParseBirth BR = (%q, %v)", got, ok)
	}
	if got, ok := ParseBirth("1990-05-30"); !ok || got != "1990-05-30" {
		t.Errorf("ParseBirth ISO = (%q, %v)", got, ok)
	}
	if _, ok := ParseBirth("05-30-1990"); ok {
		t.Error("ParseBirth accepted US format")
	}
}

func TestParsePatientCSV(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  PatientInfo
		ok    bool
	}{
		{
			name:  "canonical",
			input: "Maria Silva, 10/05/1990, Franca",
			want:  PatientInfo{Name: "Maria Silva", BirthISO: "1990-05-10", City: "Franca"},
			ok:    true,
		},
		{
			name:  "extra whitespace",
			input: "  João Souza ,10/05/1985,  São Paulo ",
			want:  PatientInfo{Name: "João Souza", BirthISO: "1985-05-10", City: "São Paulo"},
			ok:    true,
		},
		{
			name:  "two parts only",
			input: "Maria Silva, 10/05/1990",
			ok:    false,
		},
		{
			name:  "bad date",
			input: "Maria Silva, maio de 1990, Franca",
			ok:    false,
		},
		{
			name:  "empty parts ignored",
			input: "Maria Silva,, 10/05/1990, Franca",
			want:  PatientInfo{Name: "Maria Silva", BirthISO: "1990-05-10", City: "Franca"},
			ok:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePatientCSV(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParsePatientCSV(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ParsePatientCSV(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePatientLabeled(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  PatientInfo
		ok    bool
	}{
		{
			name:  "labeled with br date",
			input: "Nome: Maria Silva; Nascimento: 10/05/1990; Cidade: Franca",
			want:  PatientInfo{Name: "Maria Silva", BirthISO: "1990-05-10", City: "Franca"},
			ok:    true,
		},
		{
			name:  "labeled with iso date",
			input: "nome: Maria Silva, nascimento: 1990-05-10, cidade: Franca",
			want:  PatientInfo{Name: "Maria Silva", BirthISO: "1990-05-10", City: "Franca"},
			ok:    true,
		},
		{
			name:  "data de nascimento marker",
			input: "Nome: Ana; Data de Nascimento: 01/01/2000; Cidade: Recife",
			want:  PatientInfo{Name: "Ana", BirthISO: "2000-01-01", City: "Recife"},
			ok:    true,
		},
		{
			name:  "missing city",
			input: "Nome: Maria; Nascimento: 10/05/1990",
			ok:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePatientLabeled(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParsePatientLabeled(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ParsePatientLabeled(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractPatientNormalizedRetry(t *testing.T) {
	got, ok := ExtractPatient("Maria   Silva,  10/05/1990,   Franca")
	if !ok {
		t.Fatal("ExtractPatient failed on whitespace-heavy input")
	}
	if got.BirthISO != "1990-05-10" || got.City != "Franca" {
		t.Errorf("ExtractPatient = %+v", got)
	}
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		input string
		max   int
		want  int
		ok    bool
	}{
		{"1", 3, 0, true},
		{"3", 3, 2, true},
		{" 2 ", 3, 1, true},
		{"0", 3, 0, false},
		{"4", 3, 0, false},
		{"abc", 3, 0, false},
		{"1.5", 3, 0, false},
		{"-1", 3, 0, false},
		{"", 3, 0, false},
		{"2", 0, 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseIndex(tt.input, tt.max)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseIndex(%q, %d) = (%d, %v), want (%d, %v)", tt.input, tt.max, got, ok, tt.want, tt.ok)
		}
	}
}

// Command seed resets and repopulates the development database: twelve
// doctors, five availability slots each across the next 30 days, and the
// exam coverage catalog.
package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

type doctorSeed struct {
	name        string
	crm         string
	city        string
	specialtyID string
}

var doctors = []doctorSeed{
	{"Dr. Ana Silva", "12345-SP", "São Paulo", "cardiologia"},
	{"Dr. Carlos Oliveira", "23456-RJ", "Rio de Janeiro", "ortopedia"},
	{"Dra. Maria Santos", "34567-MG", "Belo Horizonte", "pediatria"},
	{"Dr. João Pereira", "45678-PR", "Curitiba", "neurologia"},
	{"Dra. Fernanda Costa", "56789-RS", "Porto Alegre", "ginecologia"},
	{"Dr. Rafael Lima", "67890-SC", "Florianópolis", "dermatologia"},
	{"Dra. Patricia Mendes", "78901-BA", "Salvador", "oftalmologia"},
	{"Dr. Eduardo Rocha", "89012-CE", "Fortaleza", "urologia"},
	{"Dra. Lucia Martins", "90123-PE", "Recife", "psiquiatria"},
	{"Dr. Roberto Alves", "01234-GO", "Goiânia", "gastroenterologia"},
	{"Dra. Camila Ferreira", "11111-DF", "Brasília", "endocrinologia"},
	{"Dr. Marcos Souza", "22222-ES", "Vitória", "pneumologia"},
}

type examSeed struct {
	name  string
	audit bool
	opme  bool
}

var examCatalog = []examSeed{
	{"Hemograma Completo", false, false},
	{"Glicemia de Jejum", false, false},
	{"Raio-X de Tórax", false, false},
	{"Eletrocardiograma", false, false},
	{"Ultrassonografia Abdominal", false, false},
	{"Ressonância Magnética de Crânio", true, false},
	{"Tomografia Computadorizada de Tórax", true, false},
	{"Endoscopia Digestiva Alta", true, false},
	{"Colonoscopia", true, false},
	{"Artroplastia de Quadril", true, true},
	{"Artrodese de Coluna", true, true},
	{"Implante de Marcapasso", true, true},
}

func main() {
	_ = godotenv.Load()
	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	log.Println("cleaning existing data...")
	for _, table := range []string{"appointments", "availabilities", "doctors", "exam_authorizations", "exams"} {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			log.Fatalf("clean %s: %v", table, err)
		}
	}

	log.Println("creating doctors and availabilities...")
	now := time.Now()
	for _, d := range doctors {
		doctorID := uuid.NewString()
		_, err := pool.Exec(ctx, `
			INSERT INTO doctors (id, name, crm, city, specialty_id)
			VALUES ($1, $2, $3, $4, $5)
		`, doctorID, d.name, d.crm, d.city, d.specialtyID)
		if err != nil {
			log.Fatalf("insert doctor %s: %v", d.name, err)
		}

		// Five slots spread across the next 30 days, every 6 days at
		// varying morning/afternoon hours.
		for i := 1; i <= 5; i++ {
			slot := now.AddDate(0, 0, i*6)
			slot = time.Date(slot.Year(), slot.Month(), slot.Day(), 8+(i%8), 0, 0, 0, slot.Location())
			_, err := pool.Exec(ctx, `
				INSERT INTO availabilities (id, doctor_id, date, is_active)
				VALUES ($1, $2, $3, TRUE)
			`, uuid.NewString(), doctorID, slot)
			if err != nil {
				log.Fatalf("insert availability for %s: %v", d.name, err)
			}
		}
	}

	log.Println("creating exam catalog...")
	for _, e := range examCatalog {
		_, err := pool.Exec(ctx, `
			INSERT INTO exams (id, name, audit, opme)
			VALUES ($1, $2, $3, $4)
		`, uuid.NewString(), e.name, e.audit, e.opme)
		if err != nil {
			log.Fatalf("insert exam %s: %v", e.name, err)
		}
	}

	log.Printf("seeded %d doctors, %d slots, %d exams", len(doctors), len(doctors)*5, len(examCatalog))
}

package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/caretrack/caretrack/internal/config"
	"github.com/caretrack/caretrack/internal/domain"
	"github.com/caretrack/caretrack/internal/persistence"
	"github.com/caretrack/caretrack/internal/service/logger"
)

// Seeds a demo clinic site, patient, exam and note for local development.
func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.Logging)
	store, err := persistence.Open(ctx, cfg.Database.Driver, cfg.DSN(), appLogger)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer store.Close()

	actor := "seed"

	site := domain.NewClinicSite("Downtown Imaging Center", "DIC-01")
	city := "Springfield"
	site.City = &city

	mrn := "MRN-000001"
	patient := domain.NewPatient("Jane", "Doe")
	patient.MRN = &mrn

	exam := domain.NewExam(patient.ID, "XRAY", "Chest PA", time.Now().UTC().Add(-24*time.Hour))
	note := domain.NewPatientNote(patient.ID, "Baseline chest radiograph, no acute findings.")

	uow := store.NewUnitOfWork()
	uow.ClinicSites.Add(site)
	uow.Patients.Add(patient)
	uow.Exams.Add(exam)
	uow.PatientNotes.Add(note)

	affected, err := uow.Commit(ctx, &actor)
	if err != nil {
		log.Fatalf("failed to seed demo data: %v", err)
	}

	fmt.Printf("Seeded %d rows\n", affected)
	fmt.Printf("Patient: %s (%s)\n", patient.FullName(), patient.ID)
	fmt.Printf("Exam:    %s %s (%s)\n", exam.Modality, exam.StudyType, exam.ID)
	fmt.Printf("Site:    %s (%s)\n", site.Name, site.Code)
}

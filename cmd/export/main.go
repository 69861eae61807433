package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"growbrain/internal/config"
	"growbrain/internal/docstore"
	"growbrain/internal/models"
	"growbrain/internal/repository"
	"growbrain/internal/security"
	"growbrain/internal/service"
)

func main() {
	// Define subcommands
	reportCmd := flag.NewFlagSet("report", flag.ExitOnError)
	csvCmd := flag.NewFlagSet("csv", flag.ExitOnError)
	seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)

	// Report flags
	reportTeacher := reportCmd.String("teacher", "", "Teacher ID (required)")
	reportStudent := reportCmd.String("student", "", "Student ID (required)")
	reportOutput := reportCmd.String("output", "", "Output file path (default: report_<student>.json)")

	// CSV flags
	csvTeacher := csvCmd.String("teacher", "", "Teacher ID (required)")
	csvStudent := csvCmd.String("student", "", "Student ID (required)")
	csvOutput := csvCmd.String("output", "", "Output file path (default: report_<student>.csv)")

	// Seed flags
	seedPIN := seedCmd.String("pin", "0000", "PIN for the demo teacher account")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Load configuration and open the document store
	cfg := config.Load()
	ctx := context.Background()

	store, err := docstore.InitializeWithConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open document store: %v", err)
	}
	defer store.Close()

	teacherRepo := repository.NewTeacherRepository(store)
	studentRepo := repository.NewStudentRepository(store)
	recordRepo := repository.NewRecordRepository(store)
	reportService := service.NewReportService(studentRepo, recordRepo, nil)

	switch os.Args[1] {
	case "report":
		reportCmd.Parse(os.Args[2:])
		requireFlags(reportCmd, *reportTeacher, *reportStudent)
		handleReport(ctx, reportService, *reportTeacher, *reportStudent, *reportOutput)

	case "csv":
		csvCmd.Parse(os.Args[2:])
		requireFlags(csvCmd, *csvTeacher, *csvStudent)
		handleCSV(ctx, reportService, *csvTeacher, *csvStudent, *csvOutput)

	case "seed":
		seedCmd.Parse(os.Args[2:])
		handleSeed(ctx, teacherRepo, studentRepo, recordRepo, *seedPIN)

	default:
		printUsage()
		os.Exit(1)
	}
}

func requireFlags(fs *flag.FlagSet, teacherID, studentID string) {
	if teacherID == "" || studentID == "" {
		fmt.Println("Error: -teacher and -student flags are required")
		fs.PrintDefaults()
		os.Exit(1)
	}
}

func handleReport(ctx context.Context, reports *service.ReportService, teacherID, studentID, outputPath string) {
	if outputPath == "" {
		outputPath = fmt.Sprintf("report_%s.json", studentID)
	}
	ensureDir(outputPath)

	report, err := reports.Assemble(ctx, teacherID, studentID)
	if err != nil {
		log.Fatalf("Report assembly failed: %v", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
	log.Printf("Report written to: %s", outputPath)
}

func handleCSV(ctx context.Context, reports *service.ReportService, teacherID, studentID, outputPath string) {
	if outputPath == "" {
		outputPath = fmt.Sprintf("report_%s.csv", studentID)
	}
	ensureDir(outputPath)

	report, err := reports.Assemble(ctx, teacherID, studentID)
	if err != nil {
		log.Fatalf("Report assembly failed: %v", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	if err := service.WriteCSV(f, service.CSVRows(report)); err != nil {
		log.Fatalf("Failed to write csv: %v", err)
	}
	log.Printf("CSV written to: %s", outputPath)
}

// handleSeed loads a demo teacher with students and a spread of session
// records into the configured backend.
func handleSeed(ctx context.Context, teacherRepo *repository.TeacherRepository, studentRepo *repository.StudentRepository, recordRepo *repository.RecordRepository, pin string) {
	pinHash, err := security.HashPIN(pin)
	if err != nil {
		log.Fatalf("Failed to hash pin: %v", err)
	}

	teacher := models.Teacher{
		ID:        "demo-teacher",
		Name:      "Demo Teacher",
		Email:     "teacher@example.com",
		PINHash:   pinHash,
		CreatedAt: time.Now(),
	}
	if err := teacherRepo.CreateTeacher(ctx, teacher); err != nil {
		log.Fatalf("Failed to seed teacher: %v", err)
	}

	students := []models.Student{
		{
			ID: uuid.New().String(), TeacherID: teacher.ID, FullName: "Ana Cruz", Age: 9, Sex: "F",
			GuardianName: "Maria Cruz", ContactNumber: "555-0101", CreatedAt: time.Now(),
			Needs: models.CognitiveNeeds{Memory: true},
		},
		{
			ID: uuid.New().String(), TeacherID: teacher.ID, FullName: "Ben Reyes", Age: 10, Sex: "M",
			GuardianName: "Jose Reyes", ContactNumber: "555-0102", CreatedAt: time.Now(),
			Needs: models.CognitiveNeeds{Attention: true, Logic: true},
		},
		{
			ID: uuid.New().String(), TeacherID: teacher.ID, FullName: "Cleo Tan", Age: 8, Sex: "F",
			GuardianName: "Lin Tan", ContactNumber: "555-0103", CreatedAt: time.Now(),
			Needs: models.CognitiveNeeds{Verbal: true},
		},
	}

	games := []string{"MemoryMatch", "WordHunt", "LogicLeap"}
	challenges := []string{"Memory", "Verbal", "Logic"}
	difficulties := []string{"Easy", "Medium", "Hard"}

	for si, student := range students {
		if err := studentRepo.CreateStudent(ctx, student); err != nil {
			log.Fatalf("Failed to seed student %s: %v", student.FullName, err)
		}

		for i := 0; i < 8; i++ {
			accuracy := float64(55 + (si*15+i*4)%45)
			completion := float64(30 + (i*7)%60)
			rec := models.SessionRecord{
				ID:             uuid.New().String(),
				StudentRef:     student.ID,
				TeacherRef:     teacher.ID,
				StudentName:    student.FullName,
				Date:           time.Now().AddDate(0, 0, -i*2),
				ChallengeFocus: challenges[(si+i)%len(challenges)],
				Game:           games[(si+i)%len(games)],
				Difficulty:     difficulties[i%len(difficulties)],
				Accuracy:       &accuracy,
				CompletionTime: &completion,
				Errors:         i % 4,
			}
			if err := recordRepo.AddRecord(ctx, rec); err != nil {
				log.Fatalf("Failed to seed record: %v", err)
			}
		}
	}

	log.Printf("Seeded teacher %q with %d students", teacher.ID, len(students))
}

func ensureDir(outputPath string) {
	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}
}

func printUsage() {
	fmt.Println("GrowBrain export tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  export report -teacher <id> -student <id> [-output <path>]")
	fmt.Println("  export csv -teacher <id> -student <id> [-output <path>]")
	fmt.Println("  export seed [-pin <pin>]")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  DOCSTORE_TYPE    memory, sqlite, postgres, mysql or mongo")
	fmt.Println("  DOCSTORE_PATH    SQLite file path")
	fmt.Println("  DOCSTORE_URL     PostgreSQL or MySQL connection URL")
	fmt.Println("  MONGO_URI        MongoDB connection URI")
}

// Llena la base con datos de prueba: un usuario admin/admin123, cursos con
// alumnos y dos meses de asistencia con valores aleatorios.
//
//	go run scripts/fill_db.go
package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"asistencia/internal/models"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	nombres = []string{"JOSE", "LUIS", "CARLOS", "JORGE", "PEDRO", "DIEGO", "MATIAS", "FELIPE",
		"MARIA", "CAMILA", "VALENTINA", "FRANCISCA", "CATALINA", "JAVIERA", "ANTONIA", "ISIDORA"}
	apellidos = []string{"GONZALEZ", "MUNOZ", "ROJAS", "DIAZ", "PEREZ", "SOTO", "CONTRERAS",
		"SILVA", "MARTINEZ", "SEPULVEDA", "MORALES", "RODRIGUEZ", "LOPEZ", "FUENTES", "HERNANDEZ"}
	cursos = []string{"5TO BASICO A", "5TO BASICO B", "6TO BASICO A", "7MO BASICO A", "8VO BASICO A"}
)

func main() {
	path := os.Getenv("SQLITE_PATH")
	if path == "" {
		path = "./asistencia.db"
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Student{},
		&models.MonthlyAttendance{},
		&models.MonthlyClassDays{},
	); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	admin := models.User{Username: "admin", PasswordHash: string(hash)}
	if err := db.Where("username = ?", admin.Username).FirstOrCreate(&admin).Error; err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	now := time.Now()
	meses := []time.Time{
		time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0),
		time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
	}

	for _, nombreCurso := range cursos {
		curso := models.Course{Name: nombreCurso}
		if err := db.Where("name = ?", nombreCurso).FirstOrCreate(&curso).Error; err != nil {
			log.Fatalf("Failed to create course %s: %v", nombreCurso, err)
		}

		for i := 0; i < 8+rand.Intn(8); i++ {
			nombreCompleto := fmt.Sprintf("%s %s %s",
				apellidos[rand.Intn(len(apellidos))],
				apellidos[rand.Intn(len(apellidos))],
				nombres[rand.Intn(len(nombres))])

			alumno := models.Student{FullName: nombreCompleto, CourseID: curso.ID}
			if err := db.Where("full_name = ? AND course_id = ?", nombreCompleto, curso.ID).
				FirstOrCreate(&alumno).Error; err != nil {
				log.Fatalf("Failed to create student: %v", err)
			}

			for _, mes := range meses {
				dias := 18 + rand.Intn(5)
				db.Where("course_id = ? AND month = ?", curso.ID, mes).
					FirstOrCreate(&models.MonthlyClassDays{CourseID: curso.ID, Month: mes, DiasClases: dias})

				presentes := rand.Intn(dias + 1)
				db.Where("student_id = ? AND month = ?", alumno.ID, mes).
					FirstOrCreate(&models.MonthlyAttendance{
						StudentID:    alumno.ID,
						CourseID:     curso.ID,
						Month:        mes,
						Presentes:    presentes,
						Inasistentes: dias - presentes,
					})
			}
		}
	}

	log.Println("Database filled with demo data (user: admin / admin123)")
}

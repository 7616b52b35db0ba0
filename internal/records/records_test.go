package records

import (
	"testing"
	"time"

	"asistencia/internal/database"
	"asistencia/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Course{},
		&models.Student{},
		&models.MonthlyAttendance{},
		&models.MonthlyClassDays{},
	))
	database.DB = db
}

func seedStudent(t *testing.T) (models.Course, models.Student) {
	t.Helper()
	curso := models.Course{Name: "5TO A"}
	require.NoError(t, database.DB.Create(&curso).Error)
	alumno := models.Student{FullName: "PEREZ PEREZ PEDRO", CourseID: curso.ID}
	require.NoError(t, database.DB.Create(&alumno).Error)
	return curso, alumno
}

func TestParseMonth(t *testing.T) {
	mes, err := ParseMonth("2024-03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), mes)

	for _, invalido := range []string{"", "2024-13", "2024", "marzo", "2024-03-15"} {
		_, err := ParseMonth(invalido)
		assert.ErrorIs(t, err, ErrInvalidMonth, "ParseMonth(%q)", invalido)
	}
}

func TestNormalize(t *testing.T) {
	fecha := time.Date(2024, 3, 17, 14, 30, 0, 0, time.Local)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Normalize(fecha))
}

func TestUpsertAttendance(t *testing.T) {
	setupDB(t)
	curso, alumno := seedStudent(t)
	mes := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	fila, created, err := UpsertAttendance(alumno.ID, curso.ID, mes, 18, 2)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 18, fila.Presentes)

	// Segundo upsert del mismo (alumno, mes): actualiza, no duplica
	fila, created, err = UpsertAttendance(alumno.ID, curso.ID, mes.AddDate(0, 0, 14), 15, 5)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 15, fila.Presentes)
	assert.Equal(t, mes, Normalize(fila.Month))

	var count int64
	database.DB.Model(&models.MonthlyAttendance{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestUpsertAttendanceBackfillsCourse(t *testing.T) {
	setupDB(t)
	curso, alumno := seedStudent(t)
	mes := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	// Fila antigua sin curso
	require.NoError(t, database.DB.Create(&models.MonthlyAttendance{
		StudentID: alumno.ID, Month: mes, Presentes: 5,
	}).Error)

	fila, created, err := UpsertAttendance(alumno.ID, curso.ID, mes, 10, 10)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, curso.ID, fila.CourseID)
}

func TestUpsertClassDays(t *testing.T) {
	setupDB(t)
	curso, _ := seedStudent(t)
	mes := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	_, created, err := UpsertClassDays(curso.ID, mes, 20)
	require.NoError(t, err)
	assert.True(t, created)

	// Cero es un estado guardado válido
	fila, created, err := UpsertClassDays(curso.ID, mes, 0)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 0, fila.DiasClases)

	dias, err := ClassDays(curso.ID, mes)
	require.NoError(t, err)
	assert.Equal(t, 0, dias)

	var count int64
	database.DB.Model(&models.MonthlyClassDays{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestClassDaysDefaultsToZero(t *testing.T) {
	setupDB(t)
	dias, err := ClassDays(42, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, dias)
}

func TestPresentTotalsByCourse(t *testing.T) {
	setupDB(t)
	curso, alumno := seedStudent(t)
	otro := models.Student{FullName: "SOTO SOTO SARA", CourseID: curso.ID}
	require.NoError(t, database.DB.Create(&otro).Error)
	mes := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	_, _, err := UpsertAttendance(alumno.ID, curso.ID, mes, 20, 0)
	require.NoError(t, err)
	_, _, err = UpsertAttendance(otro.ID, curso.ID, mes, 10, 10)
	require.NoError(t, err)

	totales, err := PresentTotalsByCourse(mes)
	require.NoError(t, err)
	assert.Equal(t, 30, totales[curso.ID])

	// Otro mes no arrastra los totales
	vacio, err := PresentTotalsByCourse(mes.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Empty(t, vacio)
}

func TestMonthsWithDataUnion(t *testing.T) {
	setupDB(t)
	curso, alumno := seedStudent(t)

	marzo := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	abril := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	mayo := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	// Marzo solo tiene asistencia, mayo solo días de clases, abril ambos
	_, _, err := UpsertAttendance(alumno.ID, curso.ID, marzo, 10, 5)
	require.NoError(t, err)
	_, _, err = UpsertAttendance(alumno.ID, curso.ID, abril, 12, 3)
	require.NoError(t, err)
	_, _, err = UpsertClassDays(curso.ID, abril, 18)
	require.NoError(t, err)
	_, _, err = UpsertClassDays(curso.ID, mayo, 20)
	require.NoError(t, err)

	meses, err := MonthsWithData()
	require.NoError(t, err)
	require.Len(t, meses, 3)
	assert.Equal(t, marzo, meses[0])
	assert.Equal(t, abril, meses[1])
	assert.Equal(t, mayo, meses[2])
}

func TestAttendanceByStudent(t *testing.T) {
	setupDB(t)
	curso, alumno := seedStudent(t)
	mes := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	_, _, err := UpsertAttendance(alumno.ID, curso.ID, mes, 18, 2)
	require.NoError(t, err)

	porAlumno, err := AttendanceByStudent(mes)
	require.NoError(t, err)
	require.Contains(t, porAlumno, alumno.ID)
	assert.Equal(t, 18, porAlumno[alumno.ID].Presentes)
}

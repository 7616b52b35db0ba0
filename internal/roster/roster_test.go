package roster

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
		&models.User{},
		&models.Course{},
		&models.Student{},
		&models.MonthlyAttendance{},
		&models.MonthlyClassDays{},
	))
	database.DB = db
}

func TestGetOrCreateCourseIdempotent(t *testing.T) {
	setupDB(t)

	curso, created, err := GetOrCreateCourse("5to Básico A")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "5TO BASICO A", curso.Name)

	// La segunda vez devuelve la misma fila, aunque cambie tildes y espacios
	otra, created, err := GetOrCreateCourse("  5TO BASICO  A ")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, curso.ID, otra.ID)

	var count int64
	database.DB.Model(&models.Course{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestGetOrCreateStudentIdempotent(t *testing.T) {
	setupDB(t)
	curso, _, err := GetOrCreateCourse("5TO BASICO A")
	require.NoError(t, err)

	alumno, created, err := GetOrCreateStudent("Pérez González José", curso.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "PEREZ GONZALEZ JOSE", alumno.FullName)

	_, created, err = GetOrCreateStudent("PEREZ GONZALEZ JOSE", curso.ID)
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	database.DB.Model(&models.Student{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestGetOrCreateEmptyName(t *testing.T) {
	setupDB(t)

	_, _, err := GetOrCreateCourse("   ")
	assert.ErrorIs(t, err, ErrEmptyName)

	_, _, err = GetOrCreateStudent("", 1)
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestListCoursesOrdered(t *testing.T) {
	setupDB(t)
	for _, name := range []string{"8VO BASICO A", "5TO BASICO A", "6TO BASICO A"} {
		_, _, err := GetOrCreateCourse(name)
		require.NoError(t, err)
	}

	cursos, err := ListCourses()
	require.NoError(t, err)
	require.Len(t, cursos, 3)
	assert.Equal(t, "5TO BASICO A", cursos[0].Name)
	assert.Equal(t, "6TO BASICO A", cursos[1].Name)
	assert.Equal(t, "8VO BASICO A", cursos[2].Name)
}

func TestFilterStudents(t *testing.T) {
	setupDB(t)
	cursoA, _, _ := GetOrCreateCourse("5TO A")
	cursoB, _, _ := GetOrCreateCourse("5TO B")

	_, _, err := GetOrCreateStudent("GONZALEZ SOTO MARIA", cursoA.ID)
	require.NoError(t, err)
	_, _, err = GetOrCreateStudent("PEREZ ROJAS PEDRO", cursoA.ID)
	require.NoError(t, err)
	_, _, err = GetOrCreateStudent("GONZALEZ DIAZ JUAN", cursoB.ID)
	require.NoError(t, err)

	// Filtro por curso
	alumnos, err := FilterStudents("5TO A", "")
	require.NoError(t, err)
	assert.Len(t, alumnos, 2)

	// Subcadena insensible a mayúsculas y tildes
	alumnos, err = FilterStudents("5TO A", "gonzález")
	require.NoError(t, err)
	require.Len(t, alumnos, 1)
	assert.Equal(t, "GONZALEZ SOTO MARIA", alumnos[0].FullName)
}

func TestUpdateStudentReassignsCourse(t *testing.T) {
	setupDB(t)
	cursoA, _, _ := GetOrCreateCourse("5TO A")
	cursoB, _, _ := GetOrCreateCourse("5TO B")
	alumno, _, err := GetOrCreateStudent("SOTO SOTO ANA", cursoA.ID)
	require.NoError(t, err)

	actualizado, err := UpdateStudent(alumno.ID, "Soto Soto Ana María", cursoB.ID)
	require.NoError(t, err)
	assert.Equal(t, "SOTO SOTO ANA MARIA", actualizado.FullName)
	assert.Equal(t, cursoB.ID, actualizado.CourseID)

	_, err = UpdateStudent(alumno.ID, "ANA", 999)
	assert.ErrorIs(t, err, ErrCourseNotFound)

	_, err = UpdateStudent(999, "ANA", cursoA.ID)
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestDeleteStudentRemovesAttendance(t *testing.T) {
	setupDB(t)
	curso, _, _ := GetOrCreateCourse("5TO A")
	alumno, _, err := GetOrCreateStudent("PEREZ PEREZ PEDRO", curso.ID)
	require.NoError(t, err)

	mes := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, database.DB.Create(&models.MonthlyAttendance{
		StudentID: alumno.ID, CourseID: curso.ID, Month: mes, Presentes: 10,
	}).Error)

	borrado, err := DeleteStudent(alumno.ID)
	require.NoError(t, err)
	assert.Equal(t, alumno.ID, borrado.ID)

	var count int64
	database.DB.Model(&models.MonthlyAttendance{}).Count(&count)
	assert.EqualValues(t, 0, count)

	_, err = DeleteStudent(alumno.ID)
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestDeleteCourseCascades(t *testing.T) {
	setupDB(t)
	curso, _, _ := GetOrCreateCourse("5TO A")
	otro, _, _ := GetOrCreateCourse("5TO B")
	alumno, _, err := GetOrCreateStudent("ROJAS ROJAS RITA", curso.ID)
	require.NoError(t, err)
	ajeno, _, err := GetOrCreateStudent("DIAZ DIAZ DARIO", otro.ID)
	require.NoError(t, err)

	mes := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, database.DB.Create(&models.MonthlyAttendance{
		StudentID: alumno.ID, CourseID: curso.ID, Month: mes,
	}).Error)
	require.NoError(t, database.DB.Create(&models.MonthlyClassDays{
		CourseID: curso.ID, Month: mes, DiasClases: 20,
	}).Error)

	require.NoError(t, DeleteCourse(curso.ID))

	var cursos, alumnos, asistencias, dias int64
	database.DB.Model(&models.Course{}).Count(&cursos)
	database.DB.Model(&models.Student{}).Count(&alumnos)
	database.DB.Model(&models.MonthlyAttendance{}).Count(&asistencias)
	database.DB.Model(&models.MonthlyClassDays{}).Count(&dias)

	assert.EqualValues(t, 1, cursos) // sobrevive el otro curso
	assert.EqualValues(t, 1, alumnos)
	assert.EqualValues(t, 0, asistencias)
	assert.EqualValues(t, 0, dias)

	sobreviviente, err := StudentByID(ajeno.ID)
	require.NoError(t, err)
	assert.Equal(t, otro.ID, sobreviviente.CourseID)
}

func TestWipeAll(t *testing.T) {
	setupDB(t)
	curso, _, _ := GetOrCreateCourse("5TO A")
	alumno, _, err := GetOrCreateStudent("SOTO SOTO SARA", curso.ID)
	require.NoError(t, err)

	mes := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, database.DB.Create(&models.MonthlyAttendance{
		StudentID: alumno.ID, CourseID: curso.ID, Month: mes,
	}).Error)
	require.NoError(t, database.DB.Create(&models.MonthlyClassDays{
		CourseID: curso.ID, Month: mes, DiasClases: 20,
	}).Error)

	require.NoError(t, WipeAll())

	for _, model := range []interface{}{
		&models.Course{}, &models.Student{},
		&models.MonthlyAttendance{}, &models.MonthlyClassDays{},
	} {
		var count int64
		database.DB.Model(model).Count(&count)
		assert.EqualValues(t, 0, count)
	}
}

func TestCountByCourse(t *testing.T) {
	setupDB(t)
	curso, _, _ := GetOrCreateCourse("5TO A")
	_, _, err := GetOrCreateStudent("UNO UNO UNO", curso.ID)
	require.NoError(t, err)
	_, _, err = GetOrCreateStudent("DOS DOS DOS", curso.ID)
	require.NoError(t, err)

	counts, err := CountByCourse()
	require.NoError(t, err)
	assert.Equal(t, 2, counts[curso.ID])
}

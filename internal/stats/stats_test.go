package stats

import (
	"testing"
	"time"

	"asistencia/internal/models"

	"github.com/stretchr/testify/assert"
)

var marzo2024 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestPercentage(t *testing.T) {
	tests := []struct {
		presentes, dias int
		want            float64
	}{
		{20, 20, 100},
		{10, 20, 50},
		{1, 3, 33.3},
		{17, 20, 85},
		{0, 20, 0},
		{0, 0, 0},   // cero días nunca divide
		{15, 0, 0},  // idem aunque haya presentes
		{25, 20, 100}, // sobre el máximo se acota
		{-5, 20, 0},   // bajo cero se acota
	}
	for _, tt := range tests {
		got := Percentage(tt.presentes, tt.dias)
		assert.Equal(t, tt.want, got, "Percentage(%d, %d)", tt.presentes, tt.dias)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 100.0)
	}
}

func TestTopNKeepsTieOrder(t *testing.T) {
	cursos := []CourseStat{
		{Curso: "1RO A", Porcentaje: 90.0},
		{Curso: "2DO A", Porcentaje: 95.5},
		{Curso: "3RO A", Porcentaje: 95.5},
		{Curso: "4TO A", Porcentaje: 40.0},
	}

	top := TopN(cursos, 3, func(s CourseStat) float64 { return s.Porcentaje })

	assert.Len(t, top, 3)
	// Los dos 95.5 van antes que el 90, conservando su orden relativo
	assert.Equal(t, "2DO A", top[0].Curso)
	assert.Equal(t, "3RO A", top[1].Curso)
	assert.Equal(t, "1RO A", top[2].Curso)
}

func TestTopNShorterInput(t *testing.T) {
	cursos := []CourseSummary{{Curso: "UNICO", Promedio: 50}}
	top := TopN(cursos, 3, func(s CourseSummary) float64 { return s.Promedio })
	assert.Len(t, top, 1)
}

func TestCourseStatisticsZeroDivision(t *testing.T) {
	cursos := []models.Course{{ID: 1, Name: "SIN DIAS"}, {ID: 2, Name: "SIN ALUMNOS"}}

	stats := CourseStatistics(cursos,
		map[uint]int{1: 10},       // alumnos: el curso 2 no tiene
		map[uint]int{1: 50, 2: 5}, // presentes
		map[uint]int{2: 20},       // días: el curso 1 no tiene
	)

	for _, s := range stats {
		assert.Equal(t, 0.0, s.Porcentaje, "curso %s", s.Curso)
		assert.False(t, s.Porcentaje != s.Porcentaje, "NaN en curso %s", s.Curso)
	}
}

func TestDashboardSummaryExcludesStudentsWithoutData(t *testing.T) {
	curso := models.Course{ID: 1, Name: "5TO A"}
	alumnos := map[uint][]models.Student{
		1: {{ID: 1, CourseID: 1}, {ID: 2, CourseID: 1}, {ID: 3, CourseID: 1}},
	}
	// El alumno 3 no tiene fila de asistencia: no entra al promedio
	asistencia := map[uint]models.MonthlyAttendance{
		1: {StudentID: 1, CourseID: 1, Month: marzo2024, Presentes: 20},
		2: {StudentID: 2, CourseID: 1, Month: marzo2024, Presentes: 10},
	}
	dias := map[uint]int{1: 20}

	resumen := DashboardSummary([]models.Course{curso}, alumnos, asistencia, dias)

	assert.Len(t, resumen, 1)
	assert.Equal(t, 75.0, resumen[0].Promedio) // (100 + 50) / 2
}

func TestDashboardSummaryNoClassDays(t *testing.T) {
	curso := models.Course{ID: 1, Name: "5TO A"}
	alumnos := map[uint][]models.Student{1: {{ID: 1, CourseID: 1}}}
	asistencia := map[uint]models.MonthlyAttendance{
		1: {StudentID: 1, CourseID: 1, Month: marzo2024, Presentes: 20},
	}

	resumen := DashboardSummary([]models.Course{curso}, alumnos, asistencia, map[uint]int{})

	assert.Equal(t, 0.0, resumen[0].Promedio)
}

func TestCriticalFiltersByThreshold(t *testing.T) {
	resumen := []CourseSummary{
		{Curso: "A", Promedio: 84.9},
		{Curso: "B", Promedio: 85.0},
		{Curso: "C", Promedio: 100},
	}

	criticos := Critical(resumen)

	assert.Len(t, criticos, 1)
	assert.Equal(t, "A", criticos[0].Curso)
}

func TestMonthReportPartition(t *testing.T) {
	curso := models.Course{ID: 1, Name: "5TO A"}
	alumnos := map[uint][]models.Student{
		1: {
			{ID: 1, FullName: "PERFECTO", CourseID: 1},
			{ID: 2, FullName: "CRITICO", CourseID: 1},
			{ID: 3, FullName: "NORMAL", CourseID: 1},
		},
	}
	asistencia := map[uint]models.MonthlyAttendance{
		1: {StudentID: 1, Presentes: 20, Inasistentes: 0},
		2: {StudentID: 2, Presentes: 16, Inasistentes: 4},  // 80% < 85
		3: {StudentID: 3, Presentes: 18, Inasistentes: 2},  // 90%, ni perfecto ni crítico
	}

	reportes := MonthReport([]models.Course{curso}, alumnos, asistencia, map[uint]int{1: 20})

	assert.Len(t, reportes, 1)
	r := reportes[0]
	assert.False(t, r.SinDias)
	assert.Len(t, r.Perfectos, 1)
	assert.Equal(t, "PERFECTO", r.Perfectos[0].NombreCompleto)
	assert.Len(t, r.Criticos, 1)
	assert.Equal(t, "CRITICO", r.Criticos[0].NombreCompleto)
	assert.Equal(t, 80.0, r.Criticos[0].Porcentaje)
}

func TestMonthReportClampsCounters(t *testing.T) {
	curso := models.Course{ID: 1, Name: "5TO A"}
	alumnos := map[uint][]models.Student{1: {{ID: 1, FullName: "X", CourseID: 1}}}
	asistencia := map[uint]models.MonthlyAttendance{
		1: {StudentID: 1, Presentes: 99, Inasistentes: -3},
	}

	reportes := MonthReport([]models.Course{curso}, alumnos, asistencia, map[uint]int{1: 20})

	// 99 presentes con 20 días se acota a 20: asistencia perfecta
	assert.Len(t, reportes[0].Perfectos, 1)
	assert.Equal(t, 20, reportes[0].Perfectos[0].Presentes)
	assert.Equal(t, 0, reportes[0].Perfectos[0].Inasistentes)
}

func TestMonthReportNoClassDays(t *testing.T) {
	curso := models.Course{ID: 1, Name: "SIN DIAS"}
	alumnos := map[uint][]models.Student{1: {{ID: 1, FullName: "X", CourseID: 1}}}

	reportes := MonthReport([]models.Course{curso}, alumnos, nil, map[uint]int{})

	r := reportes[0]
	assert.True(t, r.SinDias)
	assert.Empty(t, r.Perfectos)
	assert.Empty(t, r.Criticos)
}

// Escenario del curso 5A: dos alumnos, 20 días, X 20/0 y Y 10/10.
func TestCourse5AScenario(t *testing.T) {
	curso := models.Course{ID: 1, Name: "5A"}
	alumnos := map[uint][]models.Student{
		1: {{ID: 1, FullName: "X", CourseID: 1}, {ID: 2, FullName: "Y", CourseID: 1}},
	}
	asistencia := map[uint]models.MonthlyAttendance{
		1: {StudentID: 1, CourseID: 1, Presentes: 20, Inasistentes: 0},
		2: {StudentID: 2, CourseID: 1, Presentes: 10, Inasistentes: 10},
	}
	dias := map[uint]int{1: 20}

	// Porcentaje a nivel de curso: (20+10)/(20*2) = 75.0
	estadisticas := CourseStatistics([]models.Course{curso},
		map[uint]int{1: 2}, map[uint]int{1: 30}, dias)
	assert.Equal(t, 75.0, estadisticas[0].Porcentaje)

	// X es perfecto, Y con 50% es crítico
	reportes := MonthReport([]models.Course{curso}, alumnos, asistencia, dias)
	assert.Len(t, reportes[0].Perfectos, 1)
	assert.Equal(t, "X", reportes[0].Perfectos[0].NombreCompleto)
	assert.Len(t, reportes[0].Criticos, 1)
	assert.Equal(t, "Y", reportes[0].Criticos[0].NombreCompleto)
	assert.Equal(t, 50.0, reportes[0].Criticos[0].Porcentaje)
}

// Package stats calcula los agregados de asistencia de un mes: promedios
// por curso para el dashboard, estadísticas con totales, y el reporte de
// asistencia perfecta / crítica. Todo es cómputo puro sobre filas ya
// cargadas; el acceso a datos vive en roster y records.
package stats

import (
	"math"
	"sort"

	"asistencia/internal/models"
)

// UmbralCritico es el porcentaje mínimo deseado; bajo él un alumno o curso
// queda marcado como crítico.
const UmbralCritico = 85.0

// Percentage calcula presentes/dias*100 con un decimal, acotado a [0,100].
// Con cero días de clases el porcentaje es 0, no un error.
func Percentage(presentes, dias int) float64 {
	if dias <= 0 {
		return 0
	}
	return sanitize(float64(presentes) / float64(dias) * 100)
}

// sanitize deja cualquier porcentaje en [0,100] con un decimal; NaN e
// infinitos colapsan a 0.
func sanitize(pct float64) float64 {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0
	}
	pct = math.Max(0, math.Min(100, pct))
	return math.Round(pct*10) / 10
}

// TopN devuelve los n elementos con mayor puntaje. El orden es estable:
// a igual puntaje se conserva el orden de entrada (alfabético, porque los
// cursos llegan ordenados por nombre).
func TopN[T any](items []T, n int, score func(T) float64) []T {
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool { return score(out[i]) > score(out[j]) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// CourseSummary es una fila del dashboard: promedio de los porcentajes
// individuales de los alumnos del curso.
type CourseSummary struct {
	CursoID  uint    `json:"curso_id"`
	Curso    string  `json:"curso"`
	Promedio float64 `json:"promedio"`
}

// DashboardSummary promedia el porcentaje de cada alumno por curso.
// Un alumno solo entra al promedio si tiene fila de asistencia ese mes y
// el curso tiene días de clases registrados.
func DashboardSummary(
	courses []models.Course,
	studentsByCourse map[uint][]models.Student,
	attendance map[uint]models.MonthlyAttendance,
	classDays map[uint]int,
) []CourseSummary {
	resumen := make([]CourseSummary, 0, len(courses))

	for _, course := range courses {
		dias := classDays[course.ID]
		var total float64
		var validos int

		for _, student := range studentsByCourse[course.ID] {
			att, ok := attendance[student.ID]
			if !ok || dias <= 0 {
				continue
			}
			total += Percentage(att.Presentes, dias)
			validos++
		}

		promedio := 0.0
		if validos > 0 {
			promedio = math.Round(total/float64(validos)*10) / 10
		}
		resumen = append(resumen, CourseSummary{
			CursoID:  course.ID,
			Curso:    course.Name,
			Promedio: promedio,
		})
	}
	return resumen
}

// Critical filtra los cursos con promedio bajo el umbral.
func Critical(resumen []CourseSummary) []CourseSummary {
	criticos := []CourseSummary{}
	for _, r := range resumen {
		if r.Promedio < UmbralCritico {
			criticos = append(criticos, r)
		}
	}
	return criticos
}

// CourseStat es una fila del endpoint de estadísticas: porcentaje a nivel
// de curso calculado sobre el total de presentes.
type CourseStat struct {
	CursoID        uint    `json:"curso_id"`
	Curso          string  `json:"curso"`
	Porcentaje     float64 `json:"porcentaje"`
	Alumnos        int     `json:"alumnos"`
	PresentesTotal int     `json:"presentes_total"`
	DiasClases     int     `json:"dias_clases"`
}

// CourseStatistics calcula presentes_total / (dias * alumnos) por curso.
// Sin días o sin alumnos el porcentaje queda en 0.
func CourseStatistics(
	courses []models.Course,
	studentCounts map[uint]int,
	presentTotals map[uint]int,
	classDays map[uint]int,
) []CourseStat {
	cursos := make([]CourseStat, 0, len(courses))

	for _, course := range courses {
		alumnos := studentCounts[course.ID]
		dias := classDays[course.ID]
		presentes := presentTotals[course.ID]

		pct := 0.0
		if dias > 0 && alumnos > 0 {
			pct = float64(presentes) / float64(dias*alumnos) * 100
		}

		cursos = append(cursos, CourseStat{
			CursoID:        course.ID,
			Curso:          course.Name,
			Porcentaje:     sanitize(pct),
			Alumnos:        alumnos,
			PresentesTotal: presentes,
			DiasClases:     dias,
		})
	}
	return cursos
}

// StudentLine es un alumno dentro del reporte perfectos/críticos.
type StudentLine struct {
	AlumnoID       uint    `json:"alumno_id"`
	NombreCompleto string  `json:"nombre_completo"`
	Presentes      int     `json:"presentes"`
	Inasistentes   int     `json:"inasistentes"`
	Porcentaje     float64 `json:"porcentaje"`
}

// CourseReport particiona a los alumnos de un curso en asistencia perfecta
// y crítica para un mes.
type CourseReport struct {
	CursoID    uint          `json:"curso_id"`
	Curso      string        `json:"curso"`
	DiasClases int           `json:"dias_clases"`
	Alumnos    int           `json:"alumnos"`
	Perfectos  []StudentLine `json:"perfectos"`
	Criticos   []StudentLine `json:"criticos"`
	SinDias    bool          `json:"sin_dias"`
}

// MonthReport arma el reporte por curso. Solo cursos con días de clases
// registrados particionan alumnos; sin días el curso queda marcado SinDias
// con listas vacías. Presentes e inasistentes se acotan a [0, dias] antes
// de clasificar: perfecto es presentes == dias, crítico es porcentaje
// estrictamente bajo el umbral.
func MonthReport(
	courses []models.Course,
	studentsByCourse map[uint][]models.Student,
	attendance map[uint]models.MonthlyAttendance,
	classDays map[uint]int,
) []CourseReport {
	reportes := make([]CourseReport, 0, len(courses))

	for _, course := range courses {
		dias := classDays[course.ID]
		students := studentsByCourse[course.ID]

		report := CourseReport{
			CursoID:    course.ID,
			Curso:      course.Name,
			DiasClases: dias,
			Alumnos:    len(students),
			Perfectos:  []StudentLine{},
			Criticos:   []StudentLine{},
			SinDias:    dias == 0,
		}

		if dias > 0 {
			for _, student := range students {
				att := attendance[student.ID] // cero si no hay fila
				presentes := clampInt(att.Presentes, 0, dias)
				inasistentes := clampInt(att.Inasistentes, 0, dias)
				pct := Percentage(presentes, dias)

				line := StudentLine{
					AlumnoID:       student.ID,
					NombreCompleto: student.FullName,
					Presentes:      presentes,
					Inasistentes:   inasistentes,
					Porcentaje:     pct,
				}

				switch {
				case presentes == dias:
					report.Perfectos = append(report.Perfectos, line)
				case pct < UmbralCritico:
					report.Criticos = append(report.Criticos, line)
				}
			}
		}
		reportes = append(reportes, report)
	}
	return reportes
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

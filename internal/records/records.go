// Package records persiste los contadores mensuales: asistencia por alumno
// y días de clases por curso. El mes siempre se guarda como el día 1 en UTC
// y funciona como clave de partición de ambos registros.
package records

import (
	"errors"
	"sort"
	"time"

	"asistencia/internal/database"
	"asistencia/internal/models"

	"gorm.io/gorm"
)

// ErrInvalidMonth se devuelve cuando el parámetro mes no es YYYY-MM.
var ErrInvalidMonth = errors.New("parámetro mes inválido (YYYY-MM)")

// ParseMonth interpreta "YYYY-MM" y lo normaliza al día 1.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, ErrInvalidMonth
	}
	return Normalize(t), nil
}

// Normalize ancla cualquier fecha al día 1 de su mes, en UTC.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// CurrentMonth es el mes de hoy ya normalizado.
func CurrentMonth() time.Time {
	return Normalize(time.Now())
}

// UpsertAttendance crea o actualiza la fila (alumno, mes). Siempre deja
// CourseID apuntando al curso entregado, lo que además repara filas
// antiguas guardadas sin curso. El bool indica si la fila es nueva.
func UpsertAttendance(studentID, courseID uint, month time.Time, presentes, inasistentes int) (models.MonthlyAttendance, bool, error) {
	month = Normalize(month)

	var row models.MonthlyAttendance
	err := database.DB.Where("student_id = ? AND month = ?", studentID, month).First(&row).Error
	switch {
	case err == nil:
		row.CourseID = courseID
		row.Presentes = presentes
		row.Inasistentes = inasistentes
		if err := database.DB.Save(&row).Error; err != nil {
			return models.MonthlyAttendance{}, false, err
		}
		return row, false, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.MonthlyAttendance{
			StudentID:    studentID,
			CourseID:     courseID,
			Month:        month,
			Presentes:    presentes,
			Inasistentes: inasistentes,
		}
		if err := database.DB.Create(&row).Error; err != nil {
			// Escritor concurrente ganó la carrera del índice único:
			// releemos y actualizamos esa fila.
			var existing models.MonthlyAttendance
			if err2 := database.DB.Where("student_id = ? AND month = ?", studentID, month).First(&existing).Error; err2 == nil {
				existing.CourseID = courseID
				existing.Presentes = presentes
				existing.Inasistentes = inasistentes
				if err3 := database.DB.Save(&existing).Error; err3 != nil {
					return models.MonthlyAttendance{}, false, err3
				}
				return existing, false, nil
			}
			return models.MonthlyAttendance{}, false, err
		}
		return row, true, nil

	default:
		return models.MonthlyAttendance{}, false, err
	}
}

// UpsertClassDays crea o actualiza los días de clases del (curso, mes).
// Cero días es un estado guardado válido, no ausencia de datos.
func UpsertClassDays(courseID uint, month time.Time, dias int) (models.MonthlyClassDays, bool, error) {
	month = Normalize(month)

	var row models.MonthlyClassDays
	err := database.DB.Where("course_id = ? AND month = ?", courseID, month).First(&row).Error
	switch {
	case err == nil:
		row.DiasClases = dias
		if err := database.DB.Save(&row).Error; err != nil {
			return models.MonthlyClassDays{}, false, err
		}
		return row, false, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.MonthlyClassDays{CourseID: courseID, Month: month, DiasClases: dias}
		if err := database.DB.Create(&row).Error; err != nil {
			var existing models.MonthlyClassDays
			if err2 := database.DB.Where("course_id = ? AND month = ?", courseID, month).First(&existing).Error; err2 == nil {
				existing.DiasClases = dias
				if err3 := database.DB.Save(&existing).Error; err3 != nil {
					return models.MonthlyClassDays{}, false, err3
				}
				return existing, false, nil
			}
			return models.MonthlyClassDays{}, false, err
		}
		return row, true, nil

	default:
		return models.MonthlyClassDays{}, false, err
	}
}

// ClassDays devuelve los días de clases del (curso, mes), 0 si no hay fila.
func ClassDays(courseID uint, month time.Time) (int, error) {
	var row models.MonthlyClassDays
	err := database.DB.Where("course_id = ? AND month = ?", courseID, Normalize(month)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.DiasClases, nil
}

// ClassDaysForMonth mapea curso → días de clases en el mes.
func ClassDaysForMonth(month time.Time) (map[uint]int, error) {
	var rows []models.MonthlyClassDays
	if err := database.DB.Where("month = ?", Normalize(month)).Find(&rows).Error; err != nil {
		return nil, err
	}

	days := make(map[uint]int, len(rows))
	for _, r := range rows {
		days[r.CourseID] = r.DiasClases
	}
	return days, nil
}

// AttendanceByStudent mapea alumno → fila de asistencia del mes.
func AttendanceByStudent(month time.Time) (map[uint]models.MonthlyAttendance, error) {
	var rows []models.MonthlyAttendance
	if err := database.DB.Where("month = ?", Normalize(month)).Find(&rows).Error; err != nil {
		return nil, err
	}

	byStudent := make(map[uint]models.MonthlyAttendance, len(rows))
	for _, r := range rows {
		byStudent[r.StudentID] = r
	}
	return byStudent, nil
}

// PresentTotalsByCourse suma los presentes del mes agrupados por curso.
func PresentTotalsByCourse(month time.Time) (map[uint]int, error) {
	var rows []struct {
		CourseID uint
		Total    int
	}
	err := database.DB.Model(&models.MonthlyAttendance{}).
		Select("course_id, SUM(presentes) as total").
		Where("month = ?", Normalize(month)).
		Group("course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[uint]int, len(rows))
	for _, r := range rows {
		totals[r.CourseID] = r.Total
	}
	return totals, nil
}

// AllAttendance devuelve todas las filas de asistencia (exportación).
func AllAttendance() ([]models.MonthlyAttendance, error) {
	var rows []models.MonthlyAttendance
	if err := database.DB.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// AllClassDays devuelve todas las filas de días de clases (exportación).
func AllClassDays() ([]models.MonthlyClassDays, error) {
	var rows []models.MonthlyClassDays
	if err := database.DB.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// MonthsWithData devuelve, en orden cronológico, los meses que aparecen en
// cualquiera de los dos registros mensuales.
func MonthsWithData() ([]time.Time, error) {
	attendance, err := AllAttendance()
	if err != nil {
		return nil, err
	}
	classDays, err := AllClassDays()
	if err != nil {
		return nil, err
	}

	seen := make(map[time.Time]bool)
	for _, r := range attendance {
		seen[Normalize(r.Month)] = true
	}
	for _, r := range classDays {
		seen[Normalize(r.Month)] = true
	}

	months := make([]time.Time, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	return months, nil
}

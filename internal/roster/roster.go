// Package roster administra cursos y alumnos: altas idempotentes
// (get-or-create), filtros de listado y bajas con cascada a los
// registros mensuales.
package roster

import (
	"errors"
	"fmt"

	"asistencia/internal/database"
	"asistencia/internal/models"
	"asistencia/internal/textutil"

	"gorm.io/gorm"
)

var (
	ErrEmptyName       = errors.New("nombre vacío")
	ErrCourseNotFound  = errors.New("curso no encontrado")
	ErrStudentNotFound = errors.New("alumno no encontrado")
)

// GetOrCreateCourse devuelve el curso con ese nombre normalizado, creándolo
// si no existe. El bool indica si se creó una fila nueva.
func GetOrCreateCourse(name string) (models.Course, bool, error) {
	name = textutil.Normalize(name)
	if name == "" {
		return models.Course{}, false, ErrEmptyName
	}

	var course models.Course
	err := database.DB.Where("name = ?", name).First(&course).Error
	if err == nil {
		return course, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Course{}, false, err
	}

	course = models.Course{Name: name}
	if err := database.DB.Create(&course).Error; err != nil {
		// Otro request pudo crearla entre el SELECT y el INSERT;
		// el índice único la protege, releemos.
		var existing models.Course
		if err2 := database.DB.Where("name = ?", name).First(&existing).Error; err2 == nil {
			return existing, false, nil
		}
		return models.Course{}, false, err
	}
	return course, true, nil
}

// GetOrCreateStudent devuelve el alumno (nombre normalizado, curso),
// creándolo si no existe. El bool indica si se creó.
func GetOrCreateStudent(fullName string, courseID uint) (models.Student, bool, error) {
	fullName = textutil.Normalize(fullName)
	if fullName == "" {
		return models.Student{}, false, ErrEmptyName
	}

	var student models.Student
	err := database.DB.Where("full_name = ? AND course_id = ?", fullName, courseID).First(&student).Error
	if err == nil {
		return student, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Student{}, false, err
	}

	student = models.Student{FullName: fullName, CourseID: courseID}
	if err := database.DB.Create(&student).Error; err != nil {
		return models.Student{}, false, err
	}
	return student, true, nil
}

// CreateStudent crea siempre una fila nueva (alta manual desde el listado).
func CreateStudent(fullName string, courseID uint) (models.Student, error) {
	fullName = textutil.Normalize(fullName)
	if fullName == "" {
		return models.Student{}, ErrEmptyName
	}
	if _, err := CourseByID(courseID); err != nil {
		return models.Student{}, err
	}

	student := models.Student{FullName: fullName, CourseID: courseID}
	if err := database.DB.Create(&student).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

// UpdateStudent cambia nombre y/o curso de un alumno.
func UpdateStudent(id uint, fullName string, courseID uint) (models.Student, error) {
	fullName = textutil.Normalize(fullName)
	if fullName == "" {
		return models.Student{}, ErrEmptyName
	}

	student, err := StudentByID(id)
	if err != nil {
		return models.Student{}, err
	}
	if _, err := CourseByID(courseID); err != nil {
		return models.Student{}, err
	}

	student.FullName = fullName
	student.CourseID = courseID
	if err := database.DB.Save(&student).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

// DeleteStudent borra al alumno y sus registros mensuales de asistencia.
// Devuelve la fila borrada para los mensajes del caller.
func DeleteStudent(id uint) (models.Student, error) {
	student, err := StudentByID(id)
	if err != nil {
		return models.Student{}, err
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", id).Delete(&models.MonthlyAttendance{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Student{}, id).Error
	})
	if err != nil {
		return models.Student{}, fmt.Errorf("delete student: %w", err)
	}
	return student, nil
}

// DeleteCourse borra el curso en cascada: alumnos, asistencias y días de
// clases del curso.
func DeleteCourse(id uint) error {
	if _, err := CourseByID(id); err != nil {
		return err
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&models.MonthlyAttendance{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&models.MonthlyClassDays{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&models.Student{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Course{}, id).Error
	})
}

// WipeAll vacía toda la base de cursos/alumnos/registros mensuales
// (acción "eliminar base de datos" de la pantalla de carga).
func WipeAll() error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.MonthlyAttendance{},
			&models.MonthlyClassDays{},
			&models.Student{},
			&models.Course{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListCourses devuelve todos los cursos ordenados por nombre.
func ListCourses() ([]models.Course, error) {
	var courses []models.Course
	if err := database.DB.Order("name").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func CourseByID(id uint) (models.Course, error) {
	var course models.Course
	if err := database.DB.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}
	return course, nil
}

func CourseByName(name string) (models.Course, error) {
	var course models.Course
	err := database.DB.Where("name = ?", textutil.Normalize(name)).First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}
	return course, nil
}

func StudentByID(id uint) (models.Student, error) {
	var student models.Student
	if err := database.DB.Preload("Course").First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, err
	}
	return student, nil
}

// FilterStudents lista alumnos filtrando por nombre de curso y por
// subcadena del nombre completo (insensible a mayúsculas: los nombres se
// guardan normalizados y el filtro se normaliza igual).
func FilterStudents(courseName, nameSub string) ([]models.Student, error) {
	query := database.DB.Model(&models.Student{}).Preload("Course")

	if courseName = textutil.Normalize(courseName); courseName != "" {
		query = query.Joins("JOIN courses ON courses.id = students.course_id").
			Where("courses.name = ?", courseName)
	}
	if nameSub = textutil.Normalize(nameSub); nameSub != "" {
		query = query.Where("students.full_name LIKE ?", "%"+nameSub+"%")
	}

	var students []models.Student
	if err := query.Order("students.full_name").Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

// StudentsByCourse lista los alumnos de un curso ordenados por nombre.
func StudentsByCourse(courseID uint) ([]models.Student, error) {
	var students []models.Student
	err := database.DB.Where("course_id = ?", courseID).Order("full_name").Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}

// StudentsGroupedByCourse trae el plantel completo de una vez para los
// reportes y la exportación.
func StudentsGroupedByCourse() (map[uint][]models.Student, error) {
	var students []models.Student
	if err := database.DB.Order("full_name").Find(&students).Error; err != nil {
		return nil, err
	}

	grouped := make(map[uint][]models.Student)
	for _, s := range students {
		grouped[s.CourseID] = append(grouped[s.CourseID], s)
	}
	return grouped, nil
}

// CountByCourse devuelve la cantidad de alumnos por curso.
func CountByCourse() (map[uint]int, error) {
	var rows []struct {
		CourseID uint
		Total    int
	}
	err := database.DB.Model(&models.Student{}).
		Select("course_id, COUNT(*) as total").
		Group("course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int, len(rows))
	for _, r := range rows {
		counts[r.CourseID] = r.Total
	}
	return counts, nil
}

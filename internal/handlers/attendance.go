package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"asistencia/internal/models"
	"asistencia/internal/records"
	"asistencia/internal/roster"
	"asistencia/internal/stats"

	"github.com/gin-gonic/gin"
)

type AttendanceHandler struct{}

func NewAttendanceHandler() *AttendanceHandler {
	return &AttendanceHandler{}
}

type AttendanceRow struct {
	Alumno       models.Student `json:"alumno"`
	Presentes    int            `json:"presentes"`
	Inasistentes int            `json:"inasistentes"`
	Porcentaje   float64        `json:"porcentaje"`
}

type AttendanceViewResponse struct {
	Cursos       []models.Course `json:"cursos"`
	CursoID      uint            `json:"curso_id"`
	Mes          string          `json:"mes"`
	DiasClases   int             `json:"dias_clases"`
	Alumnos      []AttendanceRow `json:"alumnos_asistencia"`
	Promedio     float64         `json:"promedio_asistencia"`
	TotalAlumnos int             `json:"total_alumnos"`
}

type AutosaveResponse struct {
	OK         bool    `json:"ok"`
	Porcentaje float64 `json:"porcentaje"`
}

// MonthlyView entrega los datos de la pantalla de asistencia mensual:
// ?curso= (id, por defecto el primer curso) y ?mes=YYYY-MM (por defecto
// el mes actual).
func (h *AttendanceHandler) MonthlyView(c *gin.Context) {
	mes, mesStr, err := monthParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ajaxError(err.Error()))
		return
	}

	cursos, err := roster.ListCourses()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo listar cursos"})
		return
	}

	cursoID := queryID(c, "curso")
	if cursoID == 0 && len(cursos) > 0 {
		cursoID = cursos[0].ID
	}

	resp := AttendanceViewResponse{
		Cursos:  cursos,
		CursoID: cursoID,
		Mes:     mesStr,
		Alumnos: []AttendanceRow{},
	}

	if cursoID == 0 {
		c.JSON(http.StatusOK, resp)
		return
	}
	if _, err := roster.CourseByID(cursoID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El curso seleccionado no existe"})
		return
	}

	alumnos, err := roster.StudentsByCourse(cursoID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo listar alumnos"})
		return
	}
	asistencias, err := records.AttendanceByStudent(mes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo leer la asistencia"})
		return
	}
	dias, err := records.ClassDays(cursoID, mes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo leer los días de clases"})
		return
	}

	resp.DiasClases = dias
	var totalPorcentajes float64
	for _, alumno := range alumnos {
		att := asistencias[alumno.ID]
		pct := stats.Percentage(att.Presentes, dias)
		totalPorcentajes += pct
		resp.Alumnos = append(resp.Alumnos, AttendanceRow{
			Alumno:       alumno,
			Presentes:    att.Presentes,
			Inasistentes: att.Inasistentes,
			Porcentaje:   pct,
		})
	}

	resp.TotalAlumnos = len(resp.Alumnos)
	if resp.TotalAlumnos > 0 {
		resp.Promedio = math.Round(totalPorcentajes/float64(resp.TotalAlumnos)*10) / 10
	}

	c.JSON(http.StatusOK, resp)
}

// BulkSave guarda el formulario completo de un (curso, mes): un par de
// campos presentes_<id>/inasistentes_<id> por alumno (faltante o inválido
// vale 0) y los días de clases del curso. Guardar cero días es válido.
func (h *AttendanceHandler) BulkSave(c *gin.Context) {
	mes, err := records.ParseMonth(c.PostForm("mes"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ajaxError(err.Error()))
		return
	}

	cursoID := formID(c, "curso")
	curso, err := roster.CourseByID(cursoID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ajaxError("El curso seleccionado no existe"))
		return
	}

	alumnos, err := roster.StudentsByCourse(curso.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ajaxError("No se pudo listar alumnos"))
		return
	}

	for _, alumno := range alumnos {
		presentes := formInt(c, fmt.Sprintf("presentes_%d", alumno.ID))
		inasistentes := formInt(c, fmt.Sprintf("inasistentes_%d", alumno.ID))

		if _, _, err := records.UpsertAttendance(alumno.ID, curso.ID, mes, presentes, inasistentes); err != nil {
			c.JSON(http.StatusInternalServerError, ajaxError("No se pudo guardar la asistencia"))
			return
		}
	}

	if _, _, err := records.UpsertClassDays(curso.ID, mes, formInt(c, "dias_clases")); err != nil {
		c.JSON(http.StatusInternalServerError, ajaxError("No se pudo guardar los días de clases"))
		return
	}

	c.JSON(http.StatusOK, ActionResponse{OK: true, Mensaje: "Asistencia actualizada correctamente"})
}

// AutosaveAttendance guarda presentes/inasistentes de un solo alumno y
// devuelve el porcentaje resultante. Campos: alumno_id, curso_id,
// mes (YYYY-MM), presentes, inasistentes. Ningún error deja filas a medias:
// se valida todo antes de escribir.
func (h *AttendanceHandler) AutosaveAttendance(c *gin.Context) {
	mes, err := records.ParseMonth(c.PostForm("mes"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ajaxError(err.Error()))
		return
	}

	alumnoID := formID(c, "alumno_id")
	cursoID := formID(c, "curso_id")
	if alumnoID == 0 || cursoID == 0 {
		c.JSON(http.StatusBadRequest, ajaxError("alumno_id y curso_id son obligatorios"))
		return
	}

	alumno, err := roster.StudentByID(alumnoID)
	if err != nil {
		if errors.Is(err, roster.ErrStudentNotFound) {
			c.JSON(http.StatusBadRequest, ajaxError("Alumno no encontrado"))
			return
		}
		c.JSON(http.StatusBadRequest, ajaxError("No se pudo leer el alumno"))
		return
	}
	if alumno.CourseID != cursoID {
		c.JSON(http.StatusBadRequest, ajaxError("El alumno no pertenece al curso indicado"))
		return
	}

	presentes := formInt(c, "presentes")
	inasistentes := formInt(c, "inasistentes")

	if _, _, err := records.UpsertAttendance(alumnoID, cursoID, mes, presentes, inasistentes); err != nil {
		c.JSON(http.StatusBadRequest, ajaxError("No se pudo guardar la asistencia"))
		return
	}

	dias, err := records.ClassDays(cursoID, mes)
	if err != nil {
		c.JSON(http.StatusBadRequest, ajaxError("No se pudo leer los días de clases"))
		return
	}

	c.JSON(http.StatusOK, AutosaveResponse{OK: true, Porcentaje: stats.Percentage(presentes, dias)})
}

// AutosaveClassDays guarda los días de clases de un (curso, mes).
// Campos: curso_id, mes (YYYY-MM), dias_clases.
func (h *AttendanceHandler) AutosaveClassDays(c *gin.Context) {
	mes, err := records.ParseMonth(c.PostForm("mes"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ajaxError(err.Error()))
		return
	}

	cursoID := formID(c, "curso_id")
	if _, err := roster.CourseByID(cursoID); err != nil {
		c.JSON(http.StatusBadRequest, ajaxError("Curso no encontrado"))
		return
	}

	if _, _, err := records.UpsertClassDays(cursoID, mes, formInt(c, "dias_clases")); err != nil {
		c.JSON(http.StatusBadRequest, ajaxError("No se pudo guardar los días de clases"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

package handlers

import (
	"net/http"

	"asistencia/internal/records"
	"asistencia/internal/roster"
	"asistencia/internal/stats"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct{}

func NewReportHandler() *ReportHandler {
	return &ReportHandler{}
}

type MonthReportResponse struct {
	OK     bool                 `json:"ok"`
	Mes    string               `json:"mes"`
	Cursos []stats.CourseReport `json:"cursos"`
}

// GetMonth arma el reporte de asistencia perfecta / crítica por curso.
// Un ?mes= inválido cae al mes actual en vez de fallar: es una vista de
// página, no un endpoint de datos.
func (h *ReportHandler) GetMonth(c *gin.Context) {
	mes, err := records.ParseMonth(c.Query("mes"))
	if err != nil {
		mes = records.CurrentMonth()
	}
	mesStr := mes.Format("2006-01")

	cursos, err := roster.ListCourses()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo listar cursos"})
		return
	}
	alumnosPorCurso, err := roster.StudentsGroupedByCourse()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo listar alumnos"})
		return
	}
	asistencias, err := records.AttendanceByStudent(mes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo leer la asistencia"})
		return
	}
	dias, err := records.ClassDaysForMonth(mes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo leer los días de clases"})
		return
	}

	c.JSON(http.StatusOK, MonthReportResponse{
		OK:     true,
		Mes:    mesStr,
		Cursos: stats.MonthReport(cursos, alumnosPorCurso, asistencias, dias),
	})
}

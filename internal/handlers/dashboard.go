package handlers

import (
	"net/http"

	"asistencia/internal/records"
	"asistencia/internal/roster"
	"asistencia/internal/stats"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

type DashboardResponse struct {
	OK       bool                  `json:"ok"`
	Mes      string                `json:"mes"`
	Resumen  []stats.CourseSummary `json:"resumen"`
	Mejores  []stats.CourseSummary `json:"mejores_cursos"`
	Criticos []stats.CourseSummary `json:"cursos_criticos"`
	Umbral   float64               `json:"umbral_critico"`
}

// Get arma el resumen del dashboard para ?mes=YYYY-MM (por defecto el mes
// actual): promedio por curso, top 3 y cursos bajo el umbral crítico.
func (h *DashboardHandler) Get(c *gin.Context) {
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

	resumen := stats.DashboardSummary(cursos, alumnosPorCurso, asistencias, dias)

	c.JSON(http.StatusOK, DashboardResponse{
		OK:       true,
		Mes:      mesStr,
		Resumen:  resumen,
		Mejores:  stats.TopN(resumen, 3, func(r stats.CourseSummary) float64 { return r.Promedio }),
		Criticos: stats.Critical(resumen),
		Umbral:   stats.UmbralCritico,
	})
}

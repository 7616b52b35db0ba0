package handlers

import (
	"net/http"

	"asistencia/internal/records"
	"asistencia/internal/roster"
	"asistencia/internal/stats"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct{}

func NewStatsHandler() *StatsHandler {
	return &StatsHandler{}
}

type MonthStatsResponse struct {
	OK     bool               `json:"ok"`
	Cursos []stats.CourseStat `json:"cursos"`
	Top3   []stats.CourseStat `json:"top3"`
}

// GetMonth entrega el porcentaje de asistencia por curso para ?mes=YYYY-MM:
// {ok, cursos:[{curso_id, curso, porcentaje, alumnos, presentes_total,
// dias_clases}], top3}.
func (h *StatsHandler) GetMonth(c *gin.Context) {
	mes, _, err := monthParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ajaxError(err.Error()))
		return
	}

	cursos, err := roster.ListCourses()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ajaxError("No se pudo listar cursos"))
		return
	}
	alumnos, err := roster.CountByCourse()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ajaxError("No se pudo contar alumnos"))
		return
	}
	presentes, err := records.PresentTotalsByCourse(mes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ajaxError("No se pudo sumar presentes"))
		return
	}
	dias, err := records.ClassDaysForMonth(mes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ajaxError("No se pudo leer los días de clases"))
		return
	}

	data := stats.CourseStatistics(cursos, alumnos, presentes, dias)

	c.JSON(http.StatusOK, MonthStatsResponse{
		OK:     true,
		Cursos: data,
		Top3:   stats.TopN(data, 3, func(s stats.CourseStat) float64 { return s.Porcentaje }),
	})
}

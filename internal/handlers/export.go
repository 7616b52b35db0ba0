package handlers

import (
	"fmt"
	"net/http"
	"time"

	"asistencia/internal/export"
	"asistencia/internal/records"
	"asistencia/internal/roster"

	"github.com/gin-gonic/gin"
)

type ExportHandler struct{}

func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// Workbook genera y descarga el libro xlsx completo: una hoja por curso
// con todos los meses con datos, más la hoja de gráficos.
func (h *ExportHandler) Workbook(c *gin.Context) {
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
	asistencias, err := records.AllAttendance()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo leer la asistencia"})
		return
	}
	diasClases, err := records.AllClassDays()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo leer los días de clases"})
		return
	}

	workbook, err := export.BuildWorkbook(export.Data{
		Courses:          cursos,
		StudentsByCourse: alumnosPorCurso,
		Attendance:       asistencias,
		ClassDays:        diasClases,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo generar el archivo"})
		return
	}

	buf, err := workbook.WriteToBuffer()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo generar el archivo"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(time.Now())))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

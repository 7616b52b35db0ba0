package handlers

import (
	"net/http"

	"asistencia/internal/importer"
	"asistencia/internal/roster"

	"github.com/gin-gonic/gin"
)

type ImportHandler struct{}

func NewImportHandler() *ImportHandler {
	return &ImportHandler{}
}

type ImportResponse struct {
	OK        bool            `json:"ok"`
	Resultado importer.Result `json:"resultado"`
}

// Upload recibe la planilla (campo multipart "excel_file") e importa la
// nómina. Reimportar la misma planilla no duplica alumnos.
func (h *ImportHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("excel_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Archivo no recibido"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No se pudo abrir el archivo"})
		return
	}
	defer file.Close()

	result, err := importer.Load(file, fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ImportResponse{OK: true, Resultado: result})
}

// Wipe borra toda la base (acción "eliminar base de datos" de la pantalla
// de carga): cursos, alumnos y registros mensuales.
func (h *ImportHandler) Wipe(c *gin.Context) {
	if err := roster.WipeAll(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo vaciar la base de datos"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "mensaje": "Se eliminó toda la base de datos correctamente"})
}

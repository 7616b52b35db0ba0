package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"asistencia/internal/models"
	"asistencia/internal/roster"
	"asistencia/internal/textutil"

	"github.com/gin-gonic/gin"
)

type StudentHandler struct{}

func NewStudentHandler() *StudentHandler {
	return &StudentHandler{}
}

type StudentListResponse struct {
	Alumnos        []models.Student `json:"alumnos"`
	Cursos         []models.Course  `json:"cursos"`
	CursoFiltrado  string           `json:"curso_filtrado"`
	NombreFiltrado string           `json:"nombre_filtrado"`
}

type ActionResponse struct {
	OK      bool   `json:"ok"`
	Mensaje string `json:"mensaje"`
}

// List lista alumnos filtrando por ?curso= (nombre de curso; por defecto el
// primero en orden alfabético) y ?nombre= (subcadena, insensible a
// mayúsculas y tildes).
func (h *StudentHandler) List(c *gin.Context) {
	cursos, err := roster.ListCourses()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo listar cursos"})
		return
	}

	cursoFiltrado := textutil.Normalize(c.Query("curso"))
	if cursoFiltrado == "" && len(cursos) > 0 {
		cursoFiltrado = cursos[0].Name
	}
	nombreFiltrado := textutil.Normalize(c.Query("nombre"))

	alumnos, err := roster.FilterStudents(cursoFiltrado, nombreFiltrado)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo listar alumnos"})
		return
	}

	c.JSON(http.StatusOK, StudentListResponse{
		Alumnos:        alumnos,
		Cursos:         cursos,
		CursoFiltrado:  cursoFiltrado,
		NombreFiltrado: nombreFiltrado,
	})
}

// ListCourses entrega los cursos para los selectores de las vistas.
func (h *StudentHandler) ListCourses(c *gin.Context) {
	cursos, err := roster.ListCourses()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo listar cursos"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cursos": cursos})
}

// Action ejecuta las acciones del listado (formulario POST): add, edit,
// delete. Los campos son los del formulario original: curso_id,
// ap_paterno, ap_materno, nombres, alumno_id.
func (h *StudentHandler) Action(c *gin.Context) {
	switch c.PostForm("action") {
	case "add":
		h.add(c)
	case "edit":
		h.edit(c)
	case "delete":
		h.delete(c)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Acción no válida"})
	}
}

func (h *StudentHandler) add(c *gin.Context) {
	cursoID := formID(c, "curso_id")
	nombreCompleto := textutil.FullName(c.PostForm("ap_paterno"), c.PostForm("ap_materno"), c.PostForm("nombres"))

	if cursoID == 0 || nombreCompleto == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Completa todos los campos para agregar el estudiante"})
		return
	}

	alumno, err := roster.CreateStudent(nombreCompleto, cursoID)
	if err != nil {
		if errors.Is(err, roster.ErrCourseNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "El curso seleccionado no existe"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo agregar el alumno"})
		return
	}

	c.JSON(http.StatusOK, ActionResponse{OK: true, Mensaje: fmt.Sprintf("Alumno agregado: %s", alumno.FullName)})
}

func (h *StudentHandler) edit(c *gin.Context) {
	alumnoID := formID(c, "alumno_id")
	cursoID := formID(c, "curso_id")
	nombreCompleto := textutil.FullName(c.PostForm("ap_paterno"), c.PostForm("ap_materno"), c.PostForm("nombres"))

	if alumnoID == 0 || cursoID == 0 || nombreCompleto == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Completa todos los campos para editar el estudiante"})
		return
	}

	alumno, err := roster.UpdateStudent(alumnoID, nombreCompleto, cursoID)
	if err != nil {
		if errors.Is(err, roster.ErrStudentNotFound) || errors.Is(err, roster.ErrCourseNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Alumno o curso no encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo actualizar el alumno"})
		return
	}

	c.JSON(http.StatusOK, ActionResponse{OK: true, Mensaje: fmt.Sprintf("Alumno actualizado: %s", alumno.FullName)})
}

func (h *StudentHandler) delete(c *gin.Context) {
	alumnoID := formID(c, "alumno_id")
	if alumnoID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Alumno no encontrado"})
		return
	}

	alumno, err := roster.DeleteStudent(alumnoID)
	if err != nil {
		if errors.Is(err, roster.ErrStudentNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Alumno no encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo eliminar el alumno"})
		return
	}

	c.JSON(http.StatusOK, ActionResponse{OK: true, Mensaje: fmt.Sprintf("Alumno eliminado: %s", alumno.FullName)})
}

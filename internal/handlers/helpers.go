package handlers

import (
	"strconv"
	"time"

	"asistencia/internal/records"

	"github.com/gin-gonic/gin"
)

// AjaxError es la respuesta de error de los endpoints AJAX: {ok:false, error}.
type AjaxError struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func ajaxError(msg string) AjaxError {
	return AjaxError{OK: false, Error: msg}
}

// monthParam lee ?mes=YYYY-MM; vacío cae al mes actual.
func monthParam(c *gin.Context) (time.Time, string, error) {
	mesStr := c.Query("mes")
	if mesStr == "" {
		mes := records.CurrentMonth()
		return mes, mes.Format("2006-01"), nil
	}
	mes, err := records.ParseMonth(mesStr)
	if err != nil {
		return time.Time{}, "", err
	}
	return mes, mesStr, nil
}

// formInt lee un campo numérico del formulario; vacío o inválido vale 0.
func formInt(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.PostForm(name))
	if err != nil {
		return 0
	}
	return v
}

// formID parsea un id de formulario; 0 si falta o no es numérico.
func formID(c *gin.Context, name string) uint {
	v, err := strconv.ParseUint(c.PostForm(name), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}

// queryID parsea un id del query string.
func queryID(c *gin.Context, name string) uint {
	v, err := strconv.ParseUint(c.Query(name), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}

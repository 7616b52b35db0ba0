// Package importer carga la nómina de alumnos desde una planilla (xls o
// xlsx). Solo importa filas no retiradas, normaliza los textos y da de
// alta curso y alumno con semántica get-or-create, por lo que reimportar
// la misma planilla es idempotente.
package importer

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"asistencia/internal/roster"
	"asistencia/internal/textutil"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Columnas obligatorias de la planilla oficial (se comparan normalizadas).
const (
	colFechaRetiro     = "FECHA RETIRO"
	colNombres         = "NOMBRES"
	colApellidoPaterno = "APELLIDO PATERNO"
	colApellidoMaterno = "APELLIDO MATERNO"
	colDescGrado       = "DESC GRADO"
	colLetraCurso      = "LETRA CURSO"
)

var requiredColumns = []string{
	colFechaRetiro,
	colNombres,
	colApellidoPaterno,
	colApellidoMaterno,
	colDescGrado,
	colLetraCurso,
}

// Fecha centinela que el sistema escolar usa como "no retirado".
var notRetiredDate = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// Result resume una importación.
type Result struct {
	FilasLeidas   int `json:"filas_leidas"`
	AlumnosNuevos int `json:"alumnos_nuevos"`
	CursosNuevos  int `json:"cursos_nuevos"`
}

// Load lee la planilla completa y da de alta cursos y alumnos. Si falta
// alguna columna obligatoria aborta sin escribir nada.
func Load(r io.Reader, filename string) (Result, error) {
	rows, err := readRows(r, filename)
	if err != nil {
		return Result{}, fmt.Errorf("leer planilla: %w", err)
	}
	if len(rows) < 1 {
		return Result{}, fmt.Errorf("la planilla está vacía")
	}

	cols, err := mapColumns(rows[0])
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, row := range rows[1:] {
		if !isNotRetired(cell(row, cols[colFechaRetiro])) {
			continue
		}

		courseName := textutil.CourseName(cell(row, cols[colDescGrado]), cell(row, cols[colLetraCurso]))
		fullName := textutil.FullName(
			cell(row, cols[colApellidoPaterno]),
			cell(row, cols[colApellidoMaterno]),
			cell(row, cols[colNombres]),
		)
		if courseName == "" || fullName == "" {
			continue
		}

		course, createdCourse, err := roster.GetOrCreateCourse(courseName)
		if err != nil {
			return result, fmt.Errorf("curso %q: %w", courseName, err)
		}
		_, createdStudent, err := roster.GetOrCreateStudent(fullName, course.ID)
		if err != nil {
			return result, fmt.Errorf("alumno %q: %w", fullName, err)
		}

		result.FilasLeidas++
		if createdCourse {
			result.CursosNuevos++
		}
		if createdStudent {
			result.AlumnosNuevos++
		}
	}
	return result, nil
}

// mapColumns ubica cada columna obligatoria en el encabezado; el orden de
// las columnas en la planilla no importa.
func mapColumns(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[textutil.Normalize(h)] = i
	}

	cols := make(map[string]int, len(requiredColumns))
	var missing []string
	for _, name := range requiredColumns {
		i, ok := index[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols[name] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("faltan columnas en la planilla: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

// readRows materializa la planilla como matriz de celdas. Los .xls viejos
// del sistema escolar pasan por extrame/xls; todo lo demás por excelize.
func readRows(r io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if strings.ToLower(filepath.Ext(filename)) == ".xls" {
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, err
		}
		if workbook.NumSheets() == 0 {
			return nil, fmt.Errorf("sin hojas en el archivo")
		}
		return workbook.ReadAllCells(100000), nil
	}

	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	sheet := file.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("sin hojas en el archivo")
	}
	return file.GetRows(sheet)
}

// isNotRetired reconoce la fecha centinela 1900-01-01 venga como texto
// o como número de serie de Excel.
func isNotRetired(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		return err == nil && sameDay(t, notRetiredDate)
	}

	for _, layout := range []string{
		"2006-01-02",
		"02-01-2006",
		"2006-01-02 15:04:05",
		"01-02-06",
		"1/2/2006",
	} {
		if t, err := time.Parse(layout, value); err == nil {
			return sameDay(t, notRetiredDate)
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

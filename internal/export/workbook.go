// Package export arma el libro xlsx de asistencia: una hoja por curso con
// los contadores de cada mes y el porcentaje como fórmula viva (el archivo
// se recalcula solo si alguien edita los datos en Excel), más una hoja de
// gráficos con el último mes con datos.
package export

import (
	"fmt"
	"sort"
	"time"

	"asistencia/internal/models"
	"asistencia/internal/records"

	"github.com/xuri/excelize/v2"
)

// ContentType es el MIME del formato xlsx.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	chartSheet     = "Gráficos"
	sheetNameLimit = 31 // máximo de Excel para nombres de hoja
	firstDataRow   = 4
	colsPerMonth   = 4 // días clase, presentes, inasistentes, % asistencia
)

var mesesES = [...]string{
	"ENERO", "FEBRERO", "MARZO", "ABRIL", "MAYO", "JUNIO",
	"JULIO", "AGOSTO", "SEPTIEMBRE", "OCTUBRE", "NOVIEMBRE", "DICIEMBRE",
}

// MonthLabel devuelve la etiqueta del mes en español, p.ej. "MARZO 2024".
func MonthLabel(t time.Time) string {
	return fmt.Sprintf("%s %d", mesesES[t.Month()-1], t.Year())
}

// FileName genera el nombre de descarga con marca de tiempo.
func FileName(now time.Time) string {
	return fmt.Sprintf("asistencia_export_%s.xlsx", now.Format("20060102_1504"))
}

// Data es todo lo que el libro necesita, ya cargado desde la base.
type Data struct {
	Courses          []models.Course
	StudentsByCourse map[uint][]models.Student
	Attendance       []models.MonthlyAttendance
	ClassDays        []models.MonthlyClassDays
}

type styleSet struct {
	title   int
	header  int
	name    int
	cell    int
	percent int
	empty   int
	label   int
}

// BuildWorkbook construye el libro completo en memoria.
func BuildWorkbook(data Data) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", chartSheet); err != nil {
		return nil, err
	}

	styles, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	months := monthsWithData(data)
	attendance := attendanceIndex(data.Attendance)
	classDays := classDaysIndex(data.ClassDays)

	for _, course := range data.Courses {
		if err := buildCourseSheet(f, styles, course, data.StudentsByCourse[course.ID], months, attendance, classDays); err != nil {
			return nil, fmt.Errorf("hoja del curso %q: %w", course.Name, err)
		}
	}

	if err := buildChartSheet(f, styles, data, months, classDays); err != nil {
		return nil, fmt.Errorf("hoja de gráficos: %w", err)
	}

	idx, err := f.GetSheetIndex(chartSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	return f, nil
}

func newStyles(f *excelize.File) (styleSet, error) {
	var s styleSet
	var err error

	borders := []excelize.Border{
		{Type: "left", Color: "CCCCCC", Style: 1},
		{Type: "right", Color: "CCCCCC", Style: 1},
		{Type: "top", Color: "CCCCCC", Style: 1},
		{Type: "bottom", Color: "CCCCCC", Style: 1},
	}
	headerFill := excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E9ECEF"}}

	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return s, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      headerFill,
		Border:    borders,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	}); err != nil {
		return s, err
	}
	if s.name, err = f.NewStyle(&excelize.Style{
		Border:    borders,
		Alignment: &excelize.Alignment{Vertical: "center"},
	}); err != nil {
		return s, err
	}
	if s.cell, err = f.NewStyle(&excelize.Style{
		Border:    borders,
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return s, err
	}
	// NumFmt 10 es el formato incorporado "0.00%"
	if s.percent, err = f.NewStyle(&excelize.Style{
		NumFmt:    10,
		Border:    borders,
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return s, err
	}
	if s.empty, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Italic: true, Color: "888888"},
	}); err != nil {
		return s, err
	}
	if s.label, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	}); err != nil {
		return s, err
	}
	return s, nil
}

func buildCourseSheet(
	f *excelize.File,
	styles styleSet,
	course models.Course,
	students []models.Student,
	months []time.Time,
	attendance map[uint]map[time.Time]models.MonthlyAttendance,
	classDays map[uint]map[time.Time]int,
) error {
	sheet := sheetName(course.Name)
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	endCol := 1 + len(months)*colsPerMonth
	if endCol < 1 {
		endCol = 1
	}

	// Título
	endCell, _ := excelize.CoordinatesToCellName(endCol, 1)
	if err := f.MergeCell(sheet, "A1", endCell); err != nil {
		return err
	}
	f.SetCellValue(sheet, "A1", fmt.Sprintf("LISTA Y ASISTENCIA - %s", course.Name))
	f.SetCellStyle(sheet, "A1", "A1", styles.title)

	// Encabezados: ALUMNO + un bloque de cuatro columnas por mes
	f.SetCellValue(sheet, "A2", "ALUMNO")
	f.SetCellStyle(sheet, "A2", "A3", styles.header)

	col := 2
	for _, m := range months {
		start, _ := excelize.CoordinatesToCellName(col, 2)
		end, _ := excelize.CoordinatesToCellName(col+colsPerMonth-1, 2)
		if err := f.MergeCell(sheet, start, end); err != nil {
			return err
		}
		f.SetCellValue(sheet, start, MonthLabel(m))

		for j, txt := range []string{"DÍAS CLASE", "PRESENTES", "INASISTENTES", "% ASISTENCIA"} {
			cellName, _ := excelize.CoordinatesToCellName(col+j, 3)
			f.SetCellValue(sheet, cellName, txt)
		}
		subEnd, _ := excelize.CoordinatesToCellName(col+colsPerMonth-1, 3)
		f.SetCellStyle(sheet, start, subEnd, styles.header)
		col += colsPerMonth
	}

	if len(students) == 0 {
		f.SetCellValue(sheet, "A4", "(Sin alumnos en este curso)")
		f.SetCellStyle(sheet, "A4", "A4", styles.empty)
		return nil
	}

	// Filas de alumnos
	row := firstDataRow
	for _, student := range students {
		nameCell, _ := excelize.CoordinatesToCellName(1, row)
		f.SetCellValue(sheet, nameCell, student.FullName)
		f.SetCellStyle(sheet, nameCell, nameCell, styles.name)

		col = 2
		for _, m := range months {
			dias := classDays[course.ID][m]
			var pres, inas int
			if att, ok := attendance[student.ID][m]; ok {
				pres, inas = att.Presentes, att.Inasistentes
			}

			diasCell, _ := excelize.CoordinatesToCellName(col, row)
			presCell, _ := excelize.CoordinatesToCellName(col+1, row)
			inasCell, _ := excelize.CoordinatesToCellName(col+2, row)
			pctCell, _ := excelize.CoordinatesToCellName(col+3, row)

			f.SetCellValue(sheet, diasCell, dias)
			f.SetCellValue(sheet, presCell, pres)
			f.SetCellValue(sheet, inasCell, inas)

			// Fórmula viva: si cambian los datos en Excel, el % se recalcula
			if err := f.SetCellFormula(sheet, pctCell, fmt.Sprintf("IF(%s>0,%s/%s,0)", diasCell, presCell, diasCell)); err != nil {
				return err
			}

			f.SetCellStyle(sheet, diasCell, inasCell, styles.cell)
			f.SetCellStyle(sheet, pctCell, pctCell, styles.percent)
			col += colsPerMonth
		}
		row++
	}
	lastDataRow := row - 1

	// Resumen: total de alumnos y % del curso por mes, también con fórmulas
	totalRow := lastDataRow + 2
	labelCell, _ := excelize.CoordinatesToCellName(1, totalRow)
	f.SetCellValue(sheet, labelCell, "Total alumnos")
	f.SetCellStyle(sheet, labelCell, labelCell, styles.label)
	countCell, _ := excelize.CoordinatesToCellName(2, totalRow)
	f.SetCellValue(sheet, countCell, len(students))

	summaryRow := totalRow + 1
	labelCell, _ = excelize.CoordinatesToCellName(1, summaryRow)
	f.SetCellValue(sheet, labelCell, "Resumen por mes")
	f.SetCellStyle(sheet, labelCell, labelCell, styles.label)

	col = 2
	for _, m := range months {
		dias := classDays[course.ID][m]

		diasCell, _ := excelize.CoordinatesToCellName(col, summaryRow)
		f.SetCellValue(sheet, diasCell, dias)
		f.SetCellStyle(sheet, diasCell, diasCell, styles.cell)

		presCol, _ := excelize.ColumnNumberToName(col + 1)
		pctCell, _ := excelize.CoordinatesToCellName(col+3, summaryRow)
		if dias > 0 {
			sumPres := fmt.Sprintf("SUM(%s%d:%s%d)", presCol, firstDataRow, presCol, lastDataRow)
			formula := fmt.Sprintf("IF(%s>0,(%s)/(%s*%d),0)", diasCell, sumPres, diasCell, len(students))
			if err := f.SetCellFormula(sheet, pctCell, formula); err != nil {
				return err
			}
		} else {
			f.SetCellValue(sheet, pctCell, 0)
		}
		f.SetCellStyle(sheet, pctCell, pctCell, styles.percent)
		col += colsPerMonth
	}

	// Anchos y panel congelado bajo los encabezados
	f.SetColWidth(sheet, "A", "A", 40)
	if len(months) > 0 {
		lastCol, _ := excelize.ColumnNumberToName(1 + len(months)*colsPerMonth)
		f.SetColWidth(sheet, "B", lastCol, 14)
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      firstDataRow - 1,
		TopLeftCell: "A4",
		ActivePane:  "bottomLeft",
	})
}

// buildChartSheet arma la tabla curso/% del último mes con datos y su
// gráfico de barras.
func buildChartSheet(
	f *excelize.File,
	styles styleSet,
	data Data,
	months []time.Time,
	classDays map[uint]map[time.Time]int,
) error {
	label := "SIN DATOS"
	var latest time.Time
	if len(months) > 0 {
		latest = months[len(months)-1]
		label = MonthLabel(latest)
	}

	f.SetCellValue(chartSheet, "A1", "Curso")
	f.SetCellValue(chartSheet, "B1", fmt.Sprintf("%% Asistencia %s", label))
	f.SetCellStyle(chartSheet, "A1", "B1", styles.label)

	presentes := presentTotals(data.Attendance, latest)

	row := 2
	for _, course := range data.Courses {
		pct := 0.0
		if !latest.IsZero() {
			dias := classDays[course.ID][latest]
			alumnos := len(data.StudentsByCourse[course.ID])
			if dias > 0 && alumnos > 0 {
				pct = float64(presentes[course.ID]) / float64(dias*alumnos)
			}
		}

		nameCell, _ := excelize.CoordinatesToCellName(1, row)
		pctCell, _ := excelize.CoordinatesToCellName(2, row)
		f.SetCellValue(chartSheet, nameCell, course.Name)
		f.SetCellValue(chartSheet, pctCell, pct)
		f.SetCellStyle(chartSheet, pctCell, pctCell, styles.percent)
		row++
	}

	f.SetColWidth(chartSheet, "A", "A", 30)
	f.SetColWidth(chartSheet, "B", "B", 22)

	if len(data.Courses) == 0 {
		return nil
	}

	lastRow := len(data.Courses) + 1
	return f.AddChart(chartSheet, "D2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$B$1", chartSheet),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", chartSheet, lastRow),
			Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", chartSheet, lastRow),
		}},
		Title: []excelize.RichTextRun{{Text: fmt.Sprintf("Asistencia por Curso - %s", label)}},
	})
}

// sheetName acota el nombre del curso al límite de Excel.
func sheetName(name string) string {
	if len(name) > sheetNameLimit {
		return name[:sheetNameLimit]
	}
	return name
}

func monthsWithData(data Data) []time.Time {
	seen := make(map[time.Time]bool)
	for _, r := range data.Attendance {
		seen[records.Normalize(r.Month)] = true
	}
	for _, r := range data.ClassDays {
		seen[records.Normalize(r.Month)] = true
	}

	months := make([]time.Time, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	return months
}

func attendanceIndex(rows []models.MonthlyAttendance) map[uint]map[time.Time]models.MonthlyAttendance {
	index := make(map[uint]map[time.Time]models.MonthlyAttendance)
	for _, r := range rows {
		m := records.Normalize(r.Month)
		if index[r.StudentID] == nil {
			index[r.StudentID] = make(map[time.Time]models.MonthlyAttendance)
		}
		index[r.StudentID][m] = r
	}
	return index
}

func classDaysIndex(rows []models.MonthlyClassDays) map[uint]map[time.Time]int {
	index := make(map[uint]map[time.Time]int)
	for _, r := range rows {
		m := records.Normalize(r.Month)
		if index[r.CourseID] == nil {
			index[r.CourseID] = make(map[time.Time]int)
		}
		index[r.CourseID][m] = r.DiasClases
	}
	return index
}

func presentTotals(rows []models.MonthlyAttendance, month time.Time) map[uint]int {
	totals := make(map[uint]int)
	if month.IsZero() {
		return totals
	}
	for _, r := range rows {
		if records.Normalize(r.Month).Equal(month) {
			totals[r.CourseID] += r.Presentes
		}
	}
	return totals
}

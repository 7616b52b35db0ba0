package models

import "time"

// Course es un curso del colegio, p.ej. "5TO BASICO A".
// El nombre se guarda normalizado (mayúsculas, sin tildes) y es único.
type Course struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"unique;not null;size:150" json:"nombre"`
	CreatedAt time.Time `json:"created_at"`

	Students   []Student           `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Attendance []MonthlyAttendance `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	ClassDays  []MonthlyClassDays  `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// Student pertenece a exactamente un curso.
type Student struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FullName  string    `gorm:"not null;size:200;index" json:"nombre_completo"`
	CourseID  uint      `gorm:"not null;index" json:"curso_id"`
	CreatedAt time.Time `json:"created_at"`

	Course     Course              `gorm:"foreignKey:CourseID" json:"curso,omitempty"`
	Attendance []MonthlyAttendance `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
}

// MonthlyAttendance acumula presentes/inasistentes de un alumno en un mes.
// Month siempre es el día 1 del mes. Única por (alumno, mes). CourseID es
// una copia del curso del alumno al momento de guardar.
type MonthlyAttendance struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	StudentID    uint      `gorm:"not null;uniqueIndex:idx_alumno_mes" json:"alumno_id"`
	CourseID     uint      `gorm:"not null;index" json:"curso_id"`
	Month        time.Time `gorm:"not null;type:date;uniqueIndex:idx_alumno_mes" json:"mes"`
	Presentes    int       `gorm:"not null;default:0" json:"presentes"`
	Inasistentes int       `gorm:"not null;default:0" json:"inasistentes"`

	Student Student `gorm:"foreignKey:StudentID" json:"-"`
	Course  Course  `gorm:"foreignKey:CourseID" json:"-"`
}

// MonthlyClassDays registra los días de clases de un curso en un mes.
// Única por (curso, mes). Cero es un valor guardado válido.
type MonthlyClassDays struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CourseID   uint      `gorm:"not null;uniqueIndex:idx_curso_mes" json:"curso_id"`
	Month      time.Time `gorm:"not null;type:date;uniqueIndex:idx_curso_mes" json:"mes"`
	DiasClases int       `gorm:"not null;default:0" json:"dias_clases"`

	Course Course `gorm:"foreignKey:CourseID" json:"-"`
}

// User es una cuenta para entrar al sistema. No hay roles: se está
// autenticado o no.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null;size:50" json:"username"`
	PasswordHash string    `gorm:"not null;size:255" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

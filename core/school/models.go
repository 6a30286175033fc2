package school

import (
	"time"

	"github.com/devbenja/colegio/core"
	"github.com/devbenja/colegio/core/user"
)

// Grade is a school year level ("1°", "2°", ...). Grades are never hard
// deleted, only deactivated.
type Grade struct {
	ID          string    `json:"id"`
	Name        string    `json:"nombre"`
	Description string    `json:"descripcion"`
	IsActive    bool      `json:"activo"`
	CreatedAt   time.Time `json:"createdAt"` // UTC
	UpdatedAt   time.Time `json:"updatedAt"` // UTC
}

// Subject is a taught discipline ("Matemáticas", ...). Same lifecycle
// rules as Grade.
type Subject struct {
	ID          string    `json:"id"`
	Name        string    `json:"nombre"`
	Description string    `json:"descripcion"`
	IsActive    bool      `json:"activo"`
	CreatedAt   time.Time `json:"createdAt"` // UTC
	UpdatedAt   time.Time `json:"updatedAt"` // UTC
}

// GradeSubject links a Subject to the Grade's curriculum. The
// (GradeID, SubjectID) pair is unique.
type GradeSubject struct {
	ID        string    `json:"id"`
	GradeID   string    `json:"gradeId"`
	SubjectID string    `json:"subjectId"`
	IsActive  bool      `json:"activo"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TeacherSubject records that a teacher account teaches a Subject. The
// (TeacherID, SubjectID) pair is unique.
type TeacherSubject struct {
	ID        string    `json:"id"`
	TeacherID string    `json:"teacherId"`
	SubjectID string    `json:"subjectId"`
	IsActive  bool      `json:"activo"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StudentGrade is a student's enrollment in a Grade. The
// (StudentID, GradeID) pair is unique; EnrolledAt is set once at creation.
type StudentGrade struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"studentId"`
	GradeID    string    `json:"gradeId"`
	EnrolledAt time.Time `json:"fechaInscripcion"`
	IsActive   bool      `json:"activo"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewGrade contains information needed to create a new Grade.
type NewGrade struct {
	Name        string `json:"nombre" validate:"required,max=50,gradename"`
	Description string `json:"descripcion" validate:"max=500"`
}

func (ng *NewGrade) Validate(svc *Service) error {
	ng.Name = core.CleanString(ng.Name)
	ng.Description = core.CleanString(ng.Description)
	return svc.validate.Struct(ng)
}

// UpdateGrade defines what may be modified on an existing Grade. Activation
// state changes go through Service.SetGradeActive instead.
type UpdateGrade struct {
	Name        string `json:"nombre" validate:"omitempty,max=50,gradename"`
	Description string `json:"descripcion" validate:"max=500"`
}

func (ug *UpdateGrade) Validate(origGrd Grade, svc *Service) error {
	if name := core.CleanString(ug.Name); name != "" {
		ug.Name = name
	} else {
		ug.Name = origGrd.Name
	}
	if desc := core.CleanString(ug.Description); desc != "" {
		ug.Description = desc
	} else {
		ug.Description = origGrd.Description
	}
	return svc.validate.Struct(ug)
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	Name        string `json:"nombre" validate:"required,max=50"`
	Description string `json:"descripcion" validate:"max=500"`
}

func (ns *NewSubject) Validate(svc *Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Description = core.CleanString(ns.Description)
	return svc.validate.Struct(ns)
}

// UpdateSubject defines what may be modified on an existing Subject.
type UpdateSubject struct {
	Name        string `json:"nombre" validate:"omitempty,max=50"`
	Description string `json:"descripcion" validate:"max=500"`
}

func (us *UpdateSubject) Validate(origSub Subject, svc *Service) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = origSub.Name
	}
	if desc := core.CleanString(us.Description); desc != "" {
		us.Description = desc
	} else {
		us.Description = origSub.Description
	}
	return svc.validate.Struct(us)
}

// SetActive is the body of the status toggle endpoints.
type SetActive struct {
	IsActive *bool `json:"activo" validate:"required"`
}

func (sa *SetActive) Validate(svc *Service) error {
	return svc.validate.Struct(sa)
}

// AssignSubjectGrade is the body of the grade<->subject assignment endpoint.
type AssignSubjectGrade struct {
	GradeID   string `json:"gradeId" validate:"required,uuid4"`
	SubjectID string `json:"subjectId" validate:"required,uuid4"`
}

func (a *AssignSubjectGrade) Validate(svc *Service) error {
	return svc.validate.Struct(a)
}

// AssignSubjectTeacher is the body of the teacher<->subject assignment endpoint.
type AssignSubjectTeacher struct {
	TeacherID string `json:"teacherId" validate:"required,uuid4"`
	SubjectID string `json:"subjectId" validate:"required,uuid4"`
}

func (a *AssignSubjectTeacher) Validate(svc *Service) error {
	return svc.validate.Struct(a)
}

// EnrollStudent is the body of the student enrollment endpoint.
type EnrollStudent struct {
	StudentID string `json:"studentId" validate:"required,uuid4"`
	GradeID   string `json:"gradeId" validate:"required,uuid4"`
}

func (e *EnrollStudent) Validate(svc *Service) error {
	return svc.validate.Struct(e)
}

// QueryFilter narrows catalog listings.
type QueryFilter struct {
	Search   string `query:"search"`
	IsActive *bool  `query:"activo"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

type GetFilter struct {
	ID   string
	Name string
}

// Person is the public projection of a User carried inside composed views.
type Person struct {
	ID        string `json:"id"`
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
	Email     string `json:"email"`
}

func NewPerson(usr user.User) Person {
	return Person{
		ID:        usr.ID,
		FirstName: usr.FirstName,
		LastName:  usr.LastName,
		Email:     usr.Email,
	}
}

// GradeSummary is the trimmed Grade shape used in composed views.
type GradeSummary struct {
	ID          string `json:"id"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
}

func NewGradeSummary(grd Grade) GradeSummary {
	return GradeSummary{ID: grd.ID, Name: grd.Name, Description: grd.Description}
}

// SubjectSummary is the trimmed Subject shape used in composed views.
type SubjectSummary struct {
	ID          string `json:"id"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
}

func NewSubjectSummary(sub Subject) SubjectSummary {
	return SubjectSummary{ID: sub.ID, Name: sub.Name, Description: sub.Description}
}

// GradeDetail is a Grade with its curriculum and roster.
type GradeDetail struct {
	Grade
	Subjects []SubjectSummary `json:"subjects"`
	Students []Person         `json:"students"`
}

// SubjectDetail is a Subject with the grades it belongs to and the teachers
// who teach it.
type SubjectDetail struct {
	Subject
	Grades   []GradeSummary `json:"grades"`
	Teachers []Person       `json:"teachers"`
}

// EnrolledGrade is a grade a student is enrolled in, with the enrollment
// date and, in the admin view, the curriculum behind it.
type EnrolledGrade struct {
	GradeSummary
	EnrolledAt time.Time       `json:"fechaInscripcion"`
	Subjects   []TaughtSubject `json:"subjects,omitempty"`
}

// TaughtSubject is a subject together with the teachers who teach it.
type TaughtSubject struct {
	SubjectSummary
	Teachers []Person `json:"teachers"`
}

// StudentAcademicInfo is the student-facing view: profile plus enrolled
// grades.
type StudentAcademicInfo struct {
	Student Person         `json:"estudiante"`
	Grades  []GradeSummary `json:"grados"`
}

// StudentDetail is the admin view of a student: profile plus enrollments
// with each grade's curriculum and teaching staff.
type StudentDetail struct {
	Student Person          `json:"estudiante"`
	Grades  []EnrolledGrade `json:"grados"`
}

// TeacherSubjects is the teacher-facing view: profile plus taught subjects.
type TeacherSubjects struct {
	Teacher  Person           `json:"profesor"`
	Subjects []SubjectSummary `json:"materias"`
}

// SubjectStudents lists the students reachable through a subject: everyone
// enrolled in a grade whose curriculum contains it.
type SubjectStudents struct {
	Subject  SubjectSummary `json:"materia"`
	Students []Person       `json:"estudiantes"`
}

// ClassSummaryStats reports the subject total; grade and student totals
// are not computed yet and are reported as such.
type ClassSummaryStats struct {
	TotalSubjects int    `json:"totalMaterias"`
	TotalGrades   string `json:"totalGrados"`
	TotalStudents string `json:"totalEstudiantes"`
}

// ClassSummary is the teacher dashboard aggregate.
type ClassSummary struct {
	Teacher  string            `json:"profesor"`
	Stats    ClassSummaryStats `json:"estadisticas"`
	Subjects []SubjectSummary  `json:"materias"`
}

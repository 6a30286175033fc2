package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/devbenja/colegio/core"
	"github.com/devbenja/colegio/core/school"
	"github.com/devbenja/colegio/core/user"
)

type catalogRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"nombre"`
	Description sql.NullString `db:"descripcion"`
	IsActive    bool           `db:"activo"`
	CreatedAt   sql.NullTime   `db:"created_at"`
	UpdatedAt   sql.NullTime   `db:"updated_at"`
}

type gradeSubjectRow struct {
	ID        string       `db:"id"`
	GradeID   string       `db:"grade_id"`
	SubjectID string       `db:"subject_id"`
	IsActive  bool         `db:"activo"`
	CreatedAt sql.NullTime `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
}

type teacherSubjectRow struct {
	ID        string       `db:"id"`
	TeacherID string       `db:"teacher_id"`
	SubjectID string       `db:"subject_id"`
	IsActive  bool         `db:"activo"`
	CreatedAt sql.NullTime `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
}

type studentGradeRow struct {
	ID         string       `db:"id"`
	StudentID  string       `db:"student_id"`
	GradeID    string       `db:"grade_id"`
	EnrolledAt sql.NullTime `db:"fecha_inscripcion"`
	IsActive   bool         `db:"activo"`
	CreatedAt  sql.NullTime `db:"created_at"`
	UpdatedAt  sql.NullTime `db:"updated_at"`
}

type schoolRepository struct {
	db    *sqlx.DB
	users *userRepository
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sqlx.DB) *schoolRepository {
	return &schoolRepository{db: db, users: NewUserRepository(db)}
}

func (repo schoolRepository) getExec(svcExec []core.DBExecutor) sqlx.ExtContext {
	if len(svcExec) > 0 {
		if ext, ok := svcExec[0].(sqlx.ExtContext); ok {
			return ext
		}
	}
	return repo.db
}

func (repo schoolRepository) gradeRow(grd school.Grade) catalogRow {
	return catalogRow{
		ID:          grd.ID,
		Name:        grd.Name,
		Description: sql.NullString{String: grd.Description, Valid: grd.Description != ""},
		IsActive:    grd.IsActive,
		CreatedAt:   sql.NullTime{Time: grd.CreatedAt.UTC(), Valid: !grd.CreatedAt.IsZero()},
		UpdatedAt:   sql.NullTime{Time: grd.UpdatedAt.UTC(), Valid: !grd.UpdatedAt.IsZero()},
	}
}

func (repo schoolRepository) unrowGrade(r catalogRow) school.Grade {
	return school.Grade{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description.String,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

func (repo schoolRepository) subjectRow(sub school.Subject) catalogRow {
	return catalogRow{
		ID:          sub.ID,
		Name:        sub.Name,
		Description: sql.NullString{String: sub.Description, Valid: sub.Description != ""},
		IsActive:    sub.IsActive,
		CreatedAt:   sql.NullTime{Time: sub.CreatedAt.UTC(), Valid: !sub.CreatedAt.IsZero()},
		UpdatedAt:   sql.NullTime{Time: sub.UpdatedAt.UTC(), Valid: !sub.UpdatedAt.IsZero()},
	}
}

func (repo schoolRepository) unrowSubject(r catalogRow) school.Subject {
	return school.Subject{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description.String,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

var (
	gradeConstraints = map[string]error{
		"uq_grades_nombre": school.ErrGradeExists,
	}
	subjectConstraints = map[string]error{
		"uq_subjects_nombre": school.ErrSubjectExists,
	}
	gradeSubjectConstraints = map[string]error{
		"uq_grade_subjects_pair":    school.ErrGradeSubjectExists,
		"fk_grade_subjects_grade":   school.ErrGradeNotFound,
		"fk_grade_subjects_subject": school.ErrSubjectNotFound,
	}
	teacherSubjectConstraints = map[string]error{
		"uq_teacher_subjects_pair":    school.ErrTeacherSubjectExists,
		"fk_teacher_subjects_teacher": school.ErrTeacherNotFound,
		"fk_teacher_subjects_subject": school.ErrSubjectNotFound,
	}
	studentGradeConstraints = map[string]error{
		"uq_student_grades_pair":    school.ErrStudentGradeExists,
		"fk_student_grades_student": school.ErrStudentNotFound,
		"fk_student_grades_grade":   school.ErrGradeNotFound,
	}
)

// ----- Grade catalog -----

func (repo schoolRepository) CheckGradeNameUniqueness(ctx context.Context, name string, excluded []school.Grade, exec ...core.DBExecutor) error {
	ids := make([]string, 0, len(excluded))
	for _, grd := range excluded {
		ids = append(ids, grd.ID)
	}
	exists, err := repo.nameExists(ctx, "grades", name, ids, exec)
	if err != nil {
		return errors.Wrap(err, "checking grade name uniqueness")
	}
	if exists {
		return school.ErrGradeExists
	}
	return nil
}

func (repo schoolRepository) CreateGrade(ctx context.Context, grd school.Grade, exec ...core.DBExecutor) (school.Grade, error) {
	ex := repo.getExec(exec)

	grd.ID = uuid.New().String()
	r := repo.gradeRow(grd)
	const query = `
		INSERT INTO grades (id, nombre, descripcion, activo, created_at, updated_at)
		VALUES (:id, :nombre, :descripcion, :activo, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, ex, query, r); err != nil {
		if mapped, ok := pgConstraintErr(err, gradeConstraints); ok {
			return school.Grade{}, mapped
		}
		return school.Grade{}, errors.Wrap(err, "inserting grade")
	}
	return repo.unrowGrade(r), nil
}

func (repo schoolRepository) GetGrade(ctx context.Context, filter school.GetFilter, exec ...core.DBExecutor) (school.Grade, error) {
	r, err := repo.getCatalogRow(ctx, "grades", filter, exec)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return school.Grade{}, school.ErrGradeNotFound
		}
		return school.Grade{}, errors.Wrap(err, "getting grade")
	}
	return repo.unrowGrade(r), nil
}

func (repo schoolRepository) QueryGrades(ctx context.Context, filter *school.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]school.Grade, error) {
	rows, err := repo.queryCatalogRows(ctx, "grades", filter, ordering, exec)
	if err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	grades := make([]school.Grade, 0, len(rows))
	for _, r := range rows {
		grades = append(grades, repo.unrowGrade(r))
	}
	return grades, nil
}

func (repo schoolRepository) UpdateGrade(ctx context.Context, grd school.Grade, exec ...core.DBExecutor) (school.Grade, error) {
	ex := repo.getExec(exec)

	r := repo.gradeRow(grd)
	const query = `
		UPDATE grades
		SET nombre = :nombre, descripcion = :descripcion, activo = :activo, updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, ex, query, r)
	if err != nil {
		if mapped, ok := pgConstraintErr(err, gradeConstraints); ok {
			return school.Grade{}, mapped
		}
		return school.Grade{}, errors.Wrap(err, "updating grade")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return school.Grade{}, school.ErrGradeNotFound
	}
	return repo.unrowGrade(r), nil
}

// ----- Subject catalog -----

func (repo schoolRepository) CheckSubjectNameUniqueness(ctx context.Context, name string, excluded []school.Subject, exec ...core.DBExecutor) error {
	ids := make([]string, 0, len(excluded))
	for _, sub := range excluded {
		ids = append(ids, sub.ID)
	}
	exists, err := repo.nameExists(ctx, "subjects", name, ids, exec)
	if err != nil {
		return errors.Wrap(err, "checking subject name uniqueness")
	}
	if exists {
		return school.ErrSubjectExists
	}
	return nil
}

func (repo schoolRepository) CreateSubject(ctx context.Context, sub school.Subject, exec ...core.DBExecutor) (school.Subject, error) {
	ex := repo.getExec(exec)

	sub.ID = uuid.New().String()
	r := repo.subjectRow(sub)
	const query = `
		INSERT INTO subjects (id, nombre, descripcion, activo, created_at, updated_at)
		VALUES (:id, :nombre, :descripcion, :activo, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, ex, query, r); err != nil {
		if mapped, ok := pgConstraintErr(err, subjectConstraints); ok {
			return school.Subject{}, mapped
		}
		return school.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return repo.unrowSubject(r), nil
}

func (repo schoolRepository) GetSubject(ctx context.Context, filter school.GetFilter, exec ...core.DBExecutor) (school.Subject, error) {
	r, err := repo.getCatalogRow(ctx, "subjects", filter, exec)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return school.Subject{}, school.ErrSubjectNotFound
		}
		return school.Subject{}, errors.Wrap(err, "getting subject")
	}
	return repo.unrowSubject(r), nil
}

func (repo schoolRepository) QuerySubjects(ctx context.Context, filter *school.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]school.Subject, error) {
	rows, err := repo.queryCatalogRows(ctx, "subjects", filter, ordering, exec)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subjects := make([]school.Subject, 0, len(rows))
	for _, r := range rows {
		subjects = append(subjects, repo.unrowSubject(r))
	}
	return subjects, nil
}

func (repo schoolRepository) UpdateSubject(ctx context.Context, sub school.Subject, exec ...core.DBExecutor) (school.Subject, error) {
	ex := repo.getExec(exec)

	r := repo.subjectRow(sub)
	const query = `
		UPDATE subjects
		SET nombre = :nombre, descripcion = :descripcion, activo = :activo, updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, ex, query, r)
	if err != nil {
		if mapped, ok := pgConstraintErr(err, subjectConstraints); ok {
			return school.Subject{}, mapped
		}
		return school.Subject{}, errors.Wrap(err, "updating subject")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return school.Subject{}, school.ErrSubjectNotFound
	}
	return repo.unrowSubject(r), nil
}

// ----- Associations -----

func (repo schoolRepository) CreateGradeSubject(ctx context.Context, gs school.GradeSubject, exec ...core.DBExecutor) (school.GradeSubject, error) {
	ex := repo.getExec(exec)

	gs.ID = uuid.New().String()
	r := gradeSubjectRow{
		ID:        gs.ID,
		GradeID:   gs.GradeID,
		SubjectID: gs.SubjectID,
		IsActive:  gs.IsActive,
		CreatedAt: sql.NullTime{Time: gs.CreatedAt.UTC(), Valid: !gs.CreatedAt.IsZero()},
		UpdatedAt: sql.NullTime{Time: gs.UpdatedAt.UTC(), Valid: !gs.UpdatedAt.IsZero()},
	}
	const query = `
		INSERT INTO grade_subjects (id, grade_id, subject_id, activo, created_at, updated_at)
		VALUES (:id, :grade_id, :subject_id, :activo, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, ex, query, r); err != nil {
		if mapped, ok := pgConstraintErr(err, gradeSubjectConstraints); ok {
			return school.GradeSubject{}, mapped
		}
		return school.GradeSubject{}, errors.Wrap(err, "inserting grade subject")
	}
	return gs, nil
}

func (repo schoolRepository) GetGradeSubject(ctx context.Context, gradeID, subjectID string, exec ...core.DBExecutor) (school.GradeSubject, error) {
	ex := repo.getExec(exec)

	const query = `SELECT * FROM grade_subjects WHERE grade_id = ? AND subject_id = ?`
	var r gradeSubjectRow
	if err := sqlx.GetContext(ctx, ex, &r, ex.Rebind(query), gradeID, subjectID); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return school.GradeSubject{}, school.ErrAssignmentNotFound
		}
		return school.GradeSubject{}, errors.Wrap(err, "getting grade subject")
	}
	return school.GradeSubject{
		ID:        r.ID,
		GradeID:   r.GradeID,
		SubjectID: r.SubjectID,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}, nil
}

func (repo schoolRepository) DeleteGradeSubject(ctx context.Context, gradeID, subjectID string, exec ...core.DBExecutor) error {
	return repo.deletePair(ctx, "grade_subjects", "grade_id", gradeID, "subject_id", subjectID, school.ErrAssignmentNotFound, exec)
}

func (repo schoolRepository) CreateTeacherSubject(ctx context.Context, ts school.TeacherSubject, exec ...core.DBExecutor) (school.TeacherSubject, error) {
	ex := repo.getExec(exec)

	ts.ID = uuid.New().String()
	r := teacherSubjectRow{
		ID:        ts.ID,
		TeacherID: ts.TeacherID,
		SubjectID: ts.SubjectID,
		IsActive:  ts.IsActive,
		CreatedAt: sql.NullTime{Time: ts.CreatedAt.UTC(), Valid: !ts.CreatedAt.IsZero()},
		UpdatedAt: sql.NullTime{Time: ts.UpdatedAt.UTC(), Valid: !ts.UpdatedAt.IsZero()},
	}
	const query = `
		INSERT INTO teacher_subjects (id, teacher_id, subject_id, activo, created_at, updated_at)
		VALUES (:id, :teacher_id, :subject_id, :activo, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, ex, query, r); err != nil {
		if mapped, ok := pgConstraintErr(err, teacherSubjectConstraints); ok {
			return school.TeacherSubject{}, mapped
		}
		return school.TeacherSubject{}, errors.Wrap(err, "inserting teacher subject")
	}
	return ts, nil
}

func (repo schoolRepository) GetTeacherSubject(ctx context.Context, teacherID, subjectID string, exec ...core.DBExecutor) (school.TeacherSubject, error) {
	ex := repo.getExec(exec)

	const query = `SELECT * FROM teacher_subjects WHERE teacher_id = ? AND subject_id = ?`
	var r teacherSubjectRow
	if err := sqlx.GetContext(ctx, ex, &r, ex.Rebind(query), teacherID, subjectID); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return school.TeacherSubject{}, school.ErrAssignmentNotFound
		}
		return school.TeacherSubject{}, errors.Wrap(err, "getting teacher subject")
	}
	return school.TeacherSubject{
		ID:        r.ID,
		TeacherID: r.TeacherID,
		SubjectID: r.SubjectID,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}, nil
}

func (repo schoolRepository) DeleteTeacherSubject(ctx context.Context, teacherID, subjectID string, exec ...core.DBExecutor) error {
	return repo.deletePair(ctx, "teacher_subjects", "teacher_id", teacherID, "subject_id", subjectID, school.ErrAssignmentNotFound, exec)
}

func (repo schoolRepository) CreateStudentGrade(ctx context.Context, sg school.StudentGrade, exec ...core.DBExecutor) (school.StudentGrade, error) {
	ex := repo.getExec(exec)

	sg.ID = uuid.New().String()
	r := studentGradeRow{
		ID:         sg.ID,
		StudentID:  sg.StudentID,
		GradeID:    sg.GradeID,
		EnrolledAt: sql.NullTime{Time: sg.EnrolledAt.UTC(), Valid: !sg.EnrolledAt.IsZero()},
		IsActive:   sg.IsActive,
		CreatedAt:  sql.NullTime{Time: sg.CreatedAt.UTC(), Valid: !sg.CreatedAt.IsZero()},
		UpdatedAt:  sql.NullTime{Time: sg.UpdatedAt.UTC(), Valid: !sg.UpdatedAt.IsZero()},
	}
	const query = `
		INSERT INTO student_grades (id, student_id, grade_id, fecha_inscripcion, activo, created_at, updated_at)
		VALUES (:id, :student_id, :grade_id, :fecha_inscripcion, :activo, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, ex, query, r); err != nil {
		if mapped, ok := pgConstraintErr(err, studentGradeConstraints); ok {
			return school.StudentGrade{}, mapped
		}
		return school.StudentGrade{}, errors.Wrap(err, "inserting student grade")
	}
	return sg, nil
}

func (repo schoolRepository) GetStudentGrade(ctx context.Context, studentID, gradeID string, exec ...core.DBExecutor) (school.StudentGrade, error) {
	ex := repo.getExec(exec)

	const query = `SELECT * FROM student_grades WHERE student_id = ? AND grade_id = ?`
	var r studentGradeRow
	if err := sqlx.GetContext(ctx, ex, &r, ex.Rebind(query), studentID, gradeID); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return school.StudentGrade{}, school.ErrEnrollmentNotFound
		}
		return school.StudentGrade{}, errors.Wrap(err, "getting student grade")
	}
	return school.StudentGrade{
		ID:         r.ID,
		StudentID:  r.StudentID,
		GradeID:    r.GradeID,
		EnrolledAt: r.EnrolledAt.Time,
		IsActive:   r.IsActive,
		CreatedAt:  r.CreatedAt.Time,
		UpdatedAt:  r.UpdatedAt.Time,
	}, nil
}

func (repo schoolRepository) DeleteStudentGrade(ctx context.Context, studentID, gradeID string, exec ...core.DBExecutor) error {
	return repo.deletePair(ctx, "student_grades", "student_id", studentID, "grade_id", gradeID, school.ErrEnrollmentNotFound, exec)
}

// ----- Traversals -----

func (repo schoolRepository) GradeSubjects(ctx context.Context, gradeID string, exec ...core.DBExecutor) ([]school.Subject, error) {
	const query = `
		SELECT s.* FROM subjects s
		JOIN grade_subjects gs ON gs.subject_id = s.id
		WHERE gs.grade_id = ?
		ORDER BY s.nombre`
	return repo.selectSubjects(ctx, query, exec, gradeID)
}

func (repo schoolRepository) GradeStudents(ctx context.Context, gradeID string, exec ...core.DBExecutor) ([]user.User, error) {
	const query = `
		SELECT u.* FROM users u
		JOIN student_grades sg ON sg.student_id = u.id
		WHERE sg.grade_id = ?
		ORDER BY u.apellido, u.nombre`
	return repo.selectUsers(ctx, query, exec, gradeID)
}

func (repo schoolRepository) SubjectGrades(ctx context.Context, subjectID string, exec ...core.DBExecutor) ([]school.Grade, error) {
	ex := repo.getExec(exec)

	const query = `
		SELECT g.* FROM grades g
		JOIN grade_subjects gs ON gs.grade_id = g.id
		WHERE gs.subject_id = ?
		ORDER BY g.nombre`
	var rows []catalogRow
	if err := sqlx.SelectContext(ctx, ex, &rows, ex.Rebind(query), subjectID); err != nil {
		return nil, errors.Wrap(err, "querying subject grades")
	}
	grades := make([]school.Grade, 0, len(rows))
	for _, r := range rows {
		grades = append(grades, repo.unrowGrade(r))
	}
	return grades, nil
}

func (repo schoolRepository) SubjectTeachers(ctx context.Context, subjectID string, exec ...core.DBExecutor) ([]user.User, error) {
	const query = `
		SELECT u.* FROM users u
		JOIN teacher_subjects ts ON ts.teacher_id = u.id
		WHERE ts.subject_id = ?
		ORDER BY u.apellido, u.nombre`
	return repo.selectUsers(ctx, query, exec, subjectID)
}

func (repo schoolRepository) SubjectStudents(ctx context.Context, subjectID string, exec ...core.DBExecutor) ([]user.User, error) {
	const query = `
		SELECT DISTINCT u.* FROM users u
		JOIN student_grades sg ON sg.student_id = u.id
		JOIN grade_subjects gs ON gs.grade_id = sg.grade_id
		WHERE gs.subject_id = ?
		ORDER BY u.apellido, u.nombre`
	return repo.selectUsers(ctx, query, exec, subjectID)
}

func (repo schoolRepository) StudentGrades(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]school.Grade, error) {
	ex := repo.getExec(exec)

	const query = `
		SELECT g.* FROM grades g
		JOIN student_grades sg ON sg.grade_id = g.id
		WHERE sg.student_id = ?
		ORDER BY g.nombre`
	var rows []catalogRow
	if err := sqlx.SelectContext(ctx, ex, &rows, ex.Rebind(query), studentID); err != nil {
		return nil, errors.Wrap(err, "querying student grades")
	}
	grades := make([]school.Grade, 0, len(rows))
	for _, r := range rows {
		grades = append(grades, repo.unrowGrade(r))
	}
	return grades, nil
}

func (repo schoolRepository) StudentEnrollments(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]school.StudentGrade, error) {
	ex := repo.getExec(exec)

	const query = `SELECT * FROM student_grades WHERE student_id = ? ORDER BY fecha_inscripcion`
	var rows []studentGradeRow
	if err := sqlx.SelectContext(ctx, ex, &rows, ex.Rebind(query), studentID); err != nil {
		return nil, errors.Wrap(err, "querying student enrollments")
	}
	enrollments := make([]school.StudentGrade, 0, len(rows))
	for _, r := range rows {
		enrollments = append(enrollments, school.StudentGrade{
			ID:         r.ID,
			StudentID:  r.StudentID,
			GradeID:    r.GradeID,
			EnrolledAt: r.EnrolledAt.Time,
			IsActive:   r.IsActive,
			CreatedAt:  r.CreatedAt.Time,
			UpdatedAt:  r.UpdatedAt.Time,
		})
	}
	return enrollments, nil
}

func (repo schoolRepository) TeacherSubjects(ctx context.Context, teacherID string, exec ...core.DBExecutor) ([]school.Subject, error) {
	const query = `
		SELECT s.* FROM subjects s
		JOIN teacher_subjects ts ON ts.subject_id = s.id
		WHERE ts.teacher_id = ?
		ORDER BY s.nombre`
	return repo.selectSubjects(ctx, query, exec, teacherID)
}

// ----- shared plumbing -----

func (repo schoolRepository) nameExists(ctx context.Context, table, name string, excludedIDs []string, exec []core.DBExecutor) (bool, error) {
	ex := repo.getExec(exec)

	query := "SELECT EXISTS (SELECT 1 FROM " + table + " WHERE nombre = ?"
	args := []interface{}{name}
	if len(excludedIDs) > 0 {
		query += " AND id NOT IN (?" + strings.Repeat(",?", len(excludedIDs)-1) + ")"
		for _, id := range excludedIDs {
			args = append(args, id)
		}
	}
	query += ")"

	var exists bool
	err := sqlx.GetContext(ctx, ex, &exists, ex.Rebind(query), args...)
	return exists, err
}

func (repo schoolRepository) getCatalogRow(ctx context.Context, table string, filter school.GetFilter, exec []core.DBExecutor) (catalogRow, error) {
	ex := repo.getExec(exec)

	var conds []string
	var args []interface{}
	if filter.ID != "" {
		conds = append(conds, "id = ?")
		args = append(args, filter.ID)
	}
	if filter.Name != "" {
		conds = append(conds, "nombre = ?")
		args = append(args, filter.Name)
	}
	if len(conds) == 0 {
		return catalogRow{}, sql.ErrNoRows
	}

	query := "SELECT * FROM " + table + " WHERE " + strings.Join(conds, " AND ")
	var r catalogRow
	err := sqlx.GetContext(ctx, ex, &r, ex.Rebind(query), args...)
	return r, err
}

func (repo schoolRepository) queryCatalogRows(ctx context.Context, table string, filter *school.QueryFilter, ordering []core.DBOrdering, exec []core.DBExecutor) ([]catalogRow, error) {
	ex := repo.getExec(exec)

	query := "SELECT * FROM " + table
	var conds []string
	var args []interface{}
	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			conds = append(conds, "(nombre ILIKE ? OR descripcion ILIKE ?)")
			args = append(args, val, val)
		}
		if filter.IsActive != nil {
			conds = append(conds, "activo = ?")
			args = append(args, *filter.IsActive)
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += core.OrderingClause(ordering, "nombre ASC")

	var rows []catalogRow
	err := sqlx.SelectContext(ctx, ex, &rows, ex.Rebind(query), args...)
	return rows, err
}

func (repo schoolRepository) deletePair(ctx context.Context, table, colA, valA, colB, valB string, notFound error, exec []core.DBExecutor) error {
	ex := repo.getExec(exec)

	query := "DELETE FROM " + table + " WHERE " + colA + " = ? AND " + colB + " = ?"
	res, err := ex.ExecContext(ctx, ex.Rebind(query), valA, valB)
	if err != nil {
		return errors.Wrap(err, "deleting from "+table)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound
	}
	return nil
}

func (repo schoolRepository) selectUsers(ctx context.Context, query string, exec []core.DBExecutor, args ...interface{}) ([]user.User, error) {
	ex := repo.getExec(exec)

	var rows []userRow
	if err := sqlx.SelectContext(ctx, ex, &rows, ex.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return repo.users.unrowSlice(rows), nil
}

func (repo schoolRepository) selectSubjects(ctx context.Context, query string, exec []core.DBExecutor, args ...interface{}) ([]school.Subject, error) {
	ex := repo.getExec(exec)

	var rows []catalogRow
	if err := sqlx.SelectContext(ctx, ex, &rows, ex.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subjects := make([]school.Subject, 0, len(rows))
	for _, r := range rows {
		subjects = append(subjects, repo.unrowSubject(r))
	}
	return subjects, nil
}

package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/devbenja/colegio/core"
	"github.com/devbenja/colegio/core/school"
	"github.com/devbenja/colegio/core/user"
)

type schoolRepository struct {
	db *DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) *schoolRepository {
	return &schoolRepository{db: db}
}

// ----- Grade catalog -----

func (repo *schoolRepository) CheckGradeNameUniqueness(ctx context.Context, name string, excluded []school.Grade, exec ...core.DBExecutor) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, grd := range repo.db.grades {
		if grd.Name == name && !gradeExcluded(grd.ID, excluded) {
			return school.ErrGradeExists
		}
	}
	return nil
}

func (repo *schoolRepository) CreateGrade(ctx context.Context, grd school.Grade, exec ...core.DBExecutor) (school.Grade, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, g := range repo.db.grades {
		if g.Name == grd.Name {
			return school.Grade{}, school.ErrGradeExists
		}
	}

	grd.ID = uuid.New().String()
	repo.db.grades[grd.ID] = &grd
	return grd, nil
}

func (repo *schoolRepository) GetGrade(ctx context.Context, filter school.GetFilter, exec ...core.DBExecutor) (school.Grade, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if filter.ID != "" {
		if grd, ok := repo.db.grades[filter.ID]; ok {
			return *grd, nil
		}
		return school.Grade{}, school.ErrGradeNotFound
	}
	if filter.Name != "" {
		for _, grd := range repo.db.grades {
			if grd.Name == filter.Name {
				return *grd, nil
			}
		}
	}
	return school.Grade{}, school.ErrGradeNotFound
}

func (repo *schoolRepository) QueryGrades(ctx context.Context, filter *school.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]school.Grade, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	grades := make([]school.Grade, 0, len(repo.db.grades))
	for _, grd := range repo.db.grades {
		if !matchCatalogFilter(filter, grd.Name, grd.Description, grd.IsActive) {
			continue
		}
		grades = append(grades, *grd)
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i].Name < grades[j].Name })
	return grades, nil
}

func (repo *schoolRepository) UpdateGrade(ctx context.Context, grd school.Grade, exec ...core.DBExecutor) (school.Grade, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.grades[grd.ID]; !ok {
		return school.Grade{}, school.ErrGradeNotFound
	}
	repo.db.grades[grd.ID] = &grd
	return grd, nil
}

// ----- Subject catalog -----

func (repo *schoolRepository) CheckSubjectNameUniqueness(ctx context.Context, name string, excluded []school.Subject, exec ...core.DBExecutor) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, sub := range repo.db.subjects {
		if sub.Name == name && !subjectExcluded(sub.ID, excluded) {
			return school.ErrSubjectExists
		}
	}
	return nil
}

func (repo *schoolRepository) CreateSubject(ctx context.Context, sub school.Subject, exec ...core.DBExecutor) (school.Subject, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, s := range repo.db.subjects {
		if s.Name == sub.Name {
			return school.Subject{}, school.ErrSubjectExists
		}
	}

	sub.ID = uuid.New().String()
	repo.db.subjects[sub.ID] = &sub
	return sub, nil
}

func (repo *schoolRepository) GetSubject(ctx context.Context, filter school.GetFilter, exec ...core.DBExecutor) (school.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if filter.ID != "" {
		if sub, ok := repo.db.subjects[filter.ID]; ok {
			return *sub, nil
		}
		return school.Subject{}, school.ErrSubjectNotFound
	}
	if filter.Name != "" {
		for _, sub := range repo.db.subjects {
			if sub.Name == filter.Name {
				return *sub, nil
			}
		}
	}
	return school.Subject{}, school.ErrSubjectNotFound
}

func (repo *schoolRepository) QuerySubjects(ctx context.Context, filter *school.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]school.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	subjects := make([]school.Subject, 0, len(repo.db.subjects))
	for _, sub := range repo.db.subjects {
		if !matchCatalogFilter(filter, sub.Name, sub.Description, sub.IsActive) {
			continue
		}
		subjects = append(subjects, *sub)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

func (repo *schoolRepository) UpdateSubject(ctx context.Context, sub school.Subject, exec ...core.DBExecutor) (school.Subject, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.subjects[sub.ID]; !ok {
		return school.Subject{}, school.ErrSubjectNotFound
	}
	repo.db.subjects[sub.ID] = &sub
	return sub, nil
}

// ----- Associations -----

func (repo *schoolRepository) CreateGradeSubject(ctx context.Context, gs school.GradeSubject, exec ...core.DBExecutor) (school.GradeSubject, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, row := range repo.db.gradeSubjects {
		if row.GradeID == gs.GradeID && row.SubjectID == gs.SubjectID {
			return school.GradeSubject{}, school.ErrGradeSubjectExists
		}
	}

	gs.ID = uuid.New().String()
	repo.db.gradeSubjects[gs.ID] = &gs
	return gs, nil
}

func (repo *schoolRepository) GetGradeSubject(ctx context.Context, gradeID, subjectID string, exec ...core.DBExecutor) (school.GradeSubject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, row := range repo.db.gradeSubjects {
		if row.GradeID == gradeID && row.SubjectID == subjectID {
			return *row, nil
		}
	}
	return school.GradeSubject{}, school.ErrAssignmentNotFound
}

func (repo *schoolRepository) DeleteGradeSubject(ctx context.Context, gradeID, subjectID string, exec ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for id, row := range repo.db.gradeSubjects {
		if row.GradeID == gradeID && row.SubjectID == subjectID {
			delete(repo.db.gradeSubjects, id)
			return nil
		}
	}
	return school.ErrAssignmentNotFound
}

func (repo *schoolRepository) CreateTeacherSubject(ctx context.Context, ts school.TeacherSubject, exec ...core.DBExecutor) (school.TeacherSubject, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, row := range repo.db.teacherSubjects {
		if row.TeacherID == ts.TeacherID && row.SubjectID == ts.SubjectID {
			return school.TeacherSubject{}, school.ErrTeacherSubjectExists
		}
	}

	ts.ID = uuid.New().String()
	repo.db.teacherSubjects[ts.ID] = &ts
	return ts, nil
}

func (repo *schoolRepository) GetTeacherSubject(ctx context.Context, teacherID, subjectID string, exec ...core.DBExecutor) (school.TeacherSubject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, row := range repo.db.teacherSubjects {
		if row.TeacherID == teacherID && row.SubjectID == subjectID {
			return *row, nil
		}
	}
	return school.TeacherSubject{}, school.ErrAssignmentNotFound
}

func (repo *schoolRepository) DeleteTeacherSubject(ctx context.Context, teacherID, subjectID string, exec ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for id, row := range repo.db.teacherSubjects {
		if row.TeacherID == teacherID && row.SubjectID == subjectID {
			delete(repo.db.teacherSubjects, id)
			return nil
		}
	}
	return school.ErrAssignmentNotFound
}

func (repo *schoolRepository) CreateStudentGrade(ctx context.Context, sg school.StudentGrade, exec ...core.DBExecutor) (school.StudentGrade, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, row := range repo.db.studentGrades {
		if row.StudentID == sg.StudentID && row.GradeID == sg.GradeID {
			return school.StudentGrade{}, school.ErrStudentGradeExists
		}
	}

	sg.ID = uuid.New().String()
	repo.db.studentGrades[sg.ID] = &sg
	return sg, nil
}

func (repo *schoolRepository) GetStudentGrade(ctx context.Context, studentID, gradeID string, exec ...core.DBExecutor) (school.StudentGrade, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, row := range repo.db.studentGrades {
		if row.StudentID == studentID && row.GradeID == gradeID {
			return *row, nil
		}
	}
	return school.StudentGrade{}, school.ErrEnrollmentNotFound
}

func (repo *schoolRepository) DeleteStudentGrade(ctx context.Context, studentID, gradeID string, exec ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for id, row := range repo.db.studentGrades {
		if row.StudentID == studentID && row.GradeID == gradeID {
			delete(repo.db.studentGrades, id)
			return nil
		}
	}
	return school.ErrEnrollmentNotFound
}

// ----- Traversals -----

func (repo *schoolRepository) GradeSubjects(ctx context.Context, gradeID string, exec ...core.DBExecutor) ([]school.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	subjects := make([]school.Subject, 0)
	for _, row := range repo.db.gradeSubjects {
		if row.GradeID != gradeID {
			continue
		}
		if sub, ok := repo.db.subjects[row.SubjectID]; ok {
			subjects = append(subjects, *sub)
		}
	}
	sortSubjects(subjects)
	return subjects, nil
}

func (repo *schoolRepository) GradeStudents(ctx context.Context, gradeID string, exec ...core.DBExecutor) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	students := make([]user.User, 0)
	for _, row := range repo.db.studentGrades {
		if row.GradeID != gradeID {
			continue
		}
		if usr, ok := repo.db.users[row.StudentID]; ok {
			students = append(students, *usr)
		}
	}
	sortUsers(students)
	return students, nil
}

func (repo *schoolRepository) SubjectGrades(ctx context.Context, subjectID string, exec ...core.DBExecutor) ([]school.Grade, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	grades := make([]school.Grade, 0)
	for _, row := range repo.db.gradeSubjects {
		if row.SubjectID != subjectID {
			continue
		}
		if grd, ok := repo.db.grades[row.GradeID]; ok {
			grades = append(grades, *grd)
		}
	}
	sortGrades(grades)
	return grades, nil
}

func (repo *schoolRepository) SubjectTeachers(ctx context.Context, subjectID string, exec ...core.DBExecutor) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	teachers := make([]user.User, 0)
	for _, row := range repo.db.teacherSubjects {
		if row.SubjectID != subjectID {
			continue
		}
		if usr, ok := repo.db.users[row.TeacherID]; ok {
			teachers = append(teachers, *usr)
		}
	}
	sortUsers(teachers)
	return teachers, nil
}

func (repo *schoolRepository) SubjectStudents(ctx context.Context, subjectID string, exec ...core.DBExecutor) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	gradeIDs := make(map[string]bool)
	for _, row := range repo.db.gradeSubjects {
		if row.SubjectID == subjectID {
			gradeIDs[row.GradeID] = true
		}
	}

	seen := make(map[string]bool)
	students := make([]user.User, 0)
	for _, row := range repo.db.studentGrades {
		if !gradeIDs[row.GradeID] || seen[row.StudentID] {
			continue
		}
		seen[row.StudentID] = true
		if usr, ok := repo.db.users[row.StudentID]; ok {
			students = append(students, *usr)
		}
	}
	sortUsers(students)
	return students, nil
}

func (repo *schoolRepository) StudentGrades(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]school.Grade, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	grades := make([]school.Grade, 0)
	for _, row := range repo.db.studentGrades {
		if row.StudentID != studentID {
			continue
		}
		if grd, ok := repo.db.grades[row.GradeID]; ok {
			grades = append(grades, *grd)
		}
	}
	sortGrades(grades)
	return grades, nil
}

func (repo *schoolRepository) StudentEnrollments(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]school.StudentGrade, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	enrollments := make([]school.StudentGrade, 0)
	for _, row := range repo.db.studentGrades {
		if row.StudentID == studentID {
			enrollments = append(enrollments, *row)
		}
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].EnrolledAt.Before(enrollments[j].EnrolledAt) })
	return enrollments, nil
}

func (repo *schoolRepository) TeacherSubjects(ctx context.Context, teacherID string, exec ...core.DBExecutor) ([]school.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	subjects := make([]school.Subject, 0)
	for _, row := range repo.db.teacherSubjects {
		if row.TeacherID != teacherID {
			continue
		}
		if sub, ok := repo.db.subjects[row.SubjectID]; ok {
			subjects = append(subjects, *sub)
		}
	}
	sortSubjects(subjects)
	return subjects, nil
}

// ----- helpers -----

func matchCatalogFilter(filter *school.QueryFilter, name, description string, isActive bool) bool {
	if filter == nil {
		return true
	}
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(name), search) &&
			!strings.Contains(strings.ToLower(description), search) {
			return false
		}
	}
	if filter.IsActive != nil && isActive != *filter.IsActive {
		return false
	}
	return true
}

func gradeExcluded(id string, excluded []school.Grade) bool {
	for _, grd := range excluded {
		if grd.ID == id {
			return true
		}
	}
	return false
}

func subjectExcluded(id string, excluded []school.Subject) bool {
	for _, sub := range excluded {
		if sub.ID == id {
			return true
		}
	}
	return false
}

func sortGrades(grades []school.Grade) {
	sort.Slice(grades, func(i, j int) bool { return grades[i].Name < grades[j].Name })
}

func sortSubjects(subjects []school.Subject) {
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
}

func sortUsers(users []user.User) {
	sort.Slice(users, func(i, j int) bool {
		if users[i].LastName != users[j].LastName {
			return users[i].LastName < users[j].LastName
		}
		return users[i].FirstName < users[j].FirstName
	})
}

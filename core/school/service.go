package school

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/devbenja/colegio/core"
	"github.com/devbenja/colegio/core/user"
)

var (
	ErrGradeNotFound   = errors.New("grade not found")
	ErrSubjectNotFound = errors.New("subject not found")
	ErrGradeExists     = errors.New("a grade with this name already exists")
	ErrSubjectExists   = errors.New("a subject with this name already exists")

	ErrTeacherNotFound = errors.New("teacher not found")
	ErrStudentNotFound = errors.New("student not found")

	ErrGradeSubjectExists   = errors.New("subject already assigned to this grade")
	ErrTeacherSubjectExists = errors.New("subject already assigned to this teacher")
	ErrStudentGradeExists   = errors.New("student already enrolled in this grade")

	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")

	ErrGradeSubjectInactive = errors.New("grade and subject must be active")
	ErrSubjectInactive      = errors.New("subject must be active")
	ErrGradeInactive        = errors.New("grade must be active")

	ErrNotSubjectTeacher = errors.New("teacher does not teach this subject")
)

type (
	Repository interface {
		CheckGradeNameUniqueness(ctx context.Context, name string, excluded []Grade, exec ...core.DBExecutor) error
		CreateGrade(ctx context.Context, grd Grade, exec ...core.DBExecutor) (Grade, error)
		GetGrade(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Grade, error)
		// QueryGrades applies AND operation on available QueryFilter fields.
		QueryGrades(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Grade, error)
		UpdateGrade(ctx context.Context, grd Grade, exec ...core.DBExecutor) (Grade, error)

		CheckSubjectNameUniqueness(ctx context.Context, name string, excluded []Subject, exec ...core.DBExecutor) error
		CreateSubject(ctx context.Context, sub Subject, exec ...core.DBExecutor) (Subject, error)
		GetSubject(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Subject, error)
		QuerySubjects(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Subject, error)
		UpdateSubject(ctx context.Context, sub Subject, exec ...core.DBExecutor) (Subject, error)

		// Association rows. Creates surface the pair-unique constraint as
		// the matching *Exists error; deletes by natural key report
		// ErrAssignmentNotFound / ErrEnrollmentNotFound when absent.
		CreateGradeSubject(ctx context.Context, gs GradeSubject, exec ...core.DBExecutor) (GradeSubject, error)
		GetGradeSubject(ctx context.Context, gradeID, subjectID string, exec ...core.DBExecutor) (GradeSubject, error)
		DeleteGradeSubject(ctx context.Context, gradeID, subjectID string, exec ...core.DBExecutor) error

		CreateTeacherSubject(ctx context.Context, ts TeacherSubject, exec ...core.DBExecutor) (TeacherSubject, error)
		GetTeacherSubject(ctx context.Context, teacherID, subjectID string, exec ...core.DBExecutor) (TeacherSubject, error)
		DeleteTeacherSubject(ctx context.Context, teacherID, subjectID string, exec ...core.DBExecutor) error

		CreateStudentGrade(ctx context.Context, sg StudentGrade, exec ...core.DBExecutor) (StudentGrade, error)
		GetStudentGrade(ctx context.Context, studentID, gradeID string, exec ...core.DBExecutor) (StudentGrade, error)
		DeleteStudentGrade(ctx context.Context, studentID, gradeID string, exec ...core.DBExecutor) error

		// Traversals behind the composed views.
		GradeSubjects(ctx context.Context, gradeID string, exec ...core.DBExecutor) ([]Subject, error)
		GradeStudents(ctx context.Context, gradeID string, exec ...core.DBExecutor) ([]user.User, error)
		SubjectGrades(ctx context.Context, subjectID string, exec ...core.DBExecutor) ([]Grade, error)
		SubjectTeachers(ctx context.Context, subjectID string, exec ...core.DBExecutor) ([]user.User, error)
		// SubjectStudents are the distinct students enrolled in any grade
		// whose curriculum contains the subject.
		SubjectStudents(ctx context.Context, subjectID string, exec ...core.DBExecutor) ([]user.User, error)
		StudentGrades(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]Grade, error)
		StudentEnrollments(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]StudentGrade, error)
		TeacherSubjects(ctx context.Context, teacherID string, exec ...core.DBExecutor) ([]Subject, error)
	}

	Service struct {
		db       core.DB
		repo     Repository
		users    user.Repository
		conf     *core.Config
		validate *validator.Validate
	}
)

func NewService(db core.DB, repo Repository, users user.Repository, conf *core.Config, validate *validator.Validate) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		users:    users,
		conf:     conf,
		validate: validate,
	}
}

// ----- Grade catalog -----

func (svc *Service) CreateGrade(ctx context.Context, ng NewGrade) (Grade, error) {
	if err := svc.repo.CheckGradeNameUniqueness(ctx, ng.Name, nil); err != nil {
		return Grade{}, err
	}

	now := time.Now().UTC()
	grd := Grade{
		Name:        ng.Name,
		Description: ng.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateGrade(ctx, grd)
}

func (svc *Service) GetGrade(ctx context.Context, id string) (Grade, error) {
	return svc.repo.GetGrade(ctx, GetFilter{ID: id})
}

func (svc *Service) QueryGrades(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Grade, error) {
	return svc.repo.QueryGrades(ctx, filter, ordering)
}

func (svc *Service) UpdateGrade(ctx context.Context, id string, ug UpdateGrade) (Grade, error) {
	grd, err := svc.GetGrade(ctx, id)
	if err != nil {
		return Grade{}, err
	}
	if ug.Name != grd.Name {
		if err = svc.repo.CheckGradeNameUniqueness(ctx, ug.Name, []Grade{grd}); err != nil {
			return Grade{}, err
		}
	}

	grd.Name = ug.Name
	grd.Description = ug.Description
	grd.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGrade(ctx, grd)
}

// SetGradeActive toggles a grade without touching its existing association
// rows: a deactivated grade only stops accepting new assignments.
func (svc *Service) SetGradeActive(ctx context.Context, id string, active bool) (Grade, error) {
	grd, err := svc.GetGrade(ctx, id)
	if err != nil {
		return Grade{}, err
	}
	grd.IsActive = active
	grd.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGrade(ctx, grd)
}

// ----- Subject catalog -----

func (svc *Service) CreateSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	if err := svc.repo.CheckSubjectNameUniqueness(ctx, ns.Name, nil); err != nil {
		return Subject{}, err
	}

	now := time.Now().UTC()
	sub := Subject{
		Name:        ns.Name,
		Description: ns.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateSubject(ctx, sub)
}

func (svc *Service) GetSubject(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubject(ctx, GetFilter{ID: id})
}

func (svc *Service) QuerySubjects(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx, filter, ordering)
}

func (svc *Service) UpdateSubject(ctx context.Context, id string, us UpdateSubject) (Subject, error) {
	sub, err := svc.GetSubject(ctx, id)
	if err != nil {
		return Subject{}, err
	}
	if us.Name != sub.Name {
		if err = svc.repo.CheckSubjectNameUniqueness(ctx, us.Name, []Subject{sub}); err != nil {
			return Subject{}, err
		}
	}

	sub.Name = us.Name
	sub.Description = us.Description
	sub.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSubject(ctx, sub)
}

func (svc *Service) SetSubjectActive(ctx context.Context, id string, active bool) (Subject, error) {
	sub, err := svc.GetSubject(ctx, id)
	if err != nil {
		return Subject{}, err
	}
	sub.IsActive = active
	sub.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSubject(ctx, sub)
}

// ----- Associations -----

// AssignSubjectToGrade adds a subject to a grade's curriculum. Both
// endpoints must exist; when RequireActiveOnAssign is set, both must also
// be active. A duplicate pair is reported as ErrGradeSubjectExists and
// never inserts a second row.
func (svc *Service) AssignSubjectToGrade(ctx context.Context, gradeID, subjectID string) (GradeSubject, error) {
	grd, err := svc.GetGrade(ctx, gradeID)
	if err != nil {
		return GradeSubject{}, err
	}
	sub, err := svc.GetSubject(ctx, subjectID)
	if err != nil {
		return GradeSubject{}, err
	}
	if svc.conf.School.RequireActiveOnAssign && (!grd.IsActive || !sub.IsActive) {
		return GradeSubject{}, ErrGradeSubjectInactive
	}

	now := time.Now().UTC()
	gs := GradeSubject{
		GradeID:   grd.ID,
		SubjectID: sub.ID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateGradeSubject(ctx, gs)
}

func (svc *Service) RemoveSubjectFromGrade(ctx context.Context, gradeID, subjectID string) error {
	return svc.repo.DeleteGradeSubject(ctx, gradeID, subjectID)
}

// AssignSubjectToTeacher links an active teacher account to a subject.
func (svc *Service) AssignSubjectToTeacher(ctx context.Context, teacherID, subjectID string) (TeacherSubject, error) {
	if _, err := svc.getActiveUser(ctx, teacherID, user.RoleTeacher); err != nil {
		return TeacherSubject{}, err
	}
	sub, err := svc.GetSubject(ctx, subjectID)
	if err != nil {
		return TeacherSubject{}, err
	}
	if svc.conf.School.RequireActiveOnAssign && !sub.IsActive {
		return TeacherSubject{}, ErrSubjectInactive
	}

	now := time.Now().UTC()
	ts := TeacherSubject{
		TeacherID: teacherID,
		SubjectID: sub.ID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateTeacherSubject(ctx, ts)
}

func (svc *Service) RemoveSubjectFromTeacher(ctx context.Context, teacherID, subjectID string) error {
	return svc.repo.DeleteTeacherSubject(ctx, teacherID, subjectID)
}

// EnrollStudentInGrade enrolls an active student account in a grade,
// stamping the enrollment date.
func (svc *Service) EnrollStudentInGrade(ctx context.Context, studentID, gradeID string) (StudentGrade, error) {
	if _, err := svc.getActiveUser(ctx, studentID, user.RoleStudent); err != nil {
		return StudentGrade{}, err
	}
	grd, err := svc.GetGrade(ctx, gradeID)
	if err != nil {
		return StudentGrade{}, err
	}
	if svc.conf.School.RequireActiveOnAssign && !grd.IsActive {
		return StudentGrade{}, ErrGradeInactive
	}

	now := time.Now().UTC()
	sg := StudentGrade{
		StudentID:  studentID,
		GradeID:    grd.ID,
		EnrolledAt: now,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateStudentGrade(ctx, sg)
}

func (svc *Service) RemoveStudentFromGrade(ctx context.Context, studentID, gradeID string) error {
	return svc.repo.DeleteStudentGrade(ctx, studentID, gradeID)
}

// ----- Composed views -----

// GradeDetail returns a grade with its curriculum and roster.
func (svc *Service) GradeDetail(ctx context.Context, id string) (GradeDetail, error) {
	grd, err := svc.GetGrade(ctx, id)
	if err != nil {
		return GradeDetail{}, err
	}
	subs, err := svc.repo.GradeSubjects(ctx, id)
	if err != nil {
		return GradeDetail{}, errors.Wrap(err, "loading grade subjects")
	}
	studs, err := svc.repo.GradeStudents(ctx, id)
	if err != nil {
		return GradeDetail{}, errors.Wrap(err, "loading grade students")
	}

	detail := GradeDetail{
		Grade:    grd,
		Subjects: make([]SubjectSummary, 0, len(subs)),
		Students: make([]Person, 0, len(studs)),
	}
	for _, sub := range subs {
		detail.Subjects = append(detail.Subjects, NewSubjectSummary(sub))
	}
	for _, usr := range studs {
		detail.Students = append(detail.Students, NewPerson(usr))
	}
	return detail, nil
}

// QueryGradeDetails is the list form of GradeDetail.
func (svc *Service) QueryGradeDetails(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]GradeDetail, error) {
	grades, err := svc.QueryGrades(ctx, filter, ordering)
	if err != nil {
		return nil, err
	}
	details := make([]GradeDetail, 0, len(grades))
	for _, grd := range grades {
		detail, err := svc.GradeDetail(ctx, grd.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

// SubjectDetail returns a subject with the grades carrying it and the
// teachers who teach it.
func (svc *Service) SubjectDetail(ctx context.Context, id string) (SubjectDetail, error) {
	sub, err := svc.GetSubject(ctx, id)
	if err != nil {
		return SubjectDetail{}, err
	}
	grades, err := svc.repo.SubjectGrades(ctx, id)
	if err != nil {
		return SubjectDetail{}, errors.Wrap(err, "loading subject grades")
	}
	teachers, err := svc.repo.SubjectTeachers(ctx, id)
	if err != nil {
		return SubjectDetail{}, errors.Wrap(err, "loading subject teachers")
	}

	detail := SubjectDetail{
		Subject:  sub,
		Grades:   make([]GradeSummary, 0, len(grades)),
		Teachers: make([]Person, 0, len(teachers)),
	}
	for _, grd := range grades {
		detail.Grades = append(detail.Grades, NewGradeSummary(grd))
	}
	for _, usr := range teachers {
		detail.Teachers = append(detail.Teachers, NewPerson(usr))
	}
	return detail, nil
}

// QuerySubjectDetails is the list form of SubjectDetail.
func (svc *Service) QuerySubjectDetails(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]SubjectDetail, error) {
	subjects, err := svc.QuerySubjects(ctx, filter, ordering)
	if err != nil {
		return nil, err
	}
	details := make([]SubjectDetail, 0, len(subjects))
	for _, sub := range subjects {
		detail, err := svc.SubjectDetail(ctx, sub.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

// StudentAcademicInfo is the student-facing profile: who they are and the
// grades they are enrolled in. Only active student accounts resolve.
func (svc *Service) StudentAcademicInfo(ctx context.Context, studentID string) (StudentAcademicInfo, error) {
	stud, err := svc.getActiveUser(ctx, studentID, user.RoleStudent)
	if err != nil {
		return StudentAcademicInfo{}, err
	}
	grades, err := svc.repo.StudentGrades(ctx, studentID)
	if err != nil {
		return StudentAcademicInfo{}, errors.Wrap(err, "loading student grades")
	}

	info := StudentAcademicInfo{
		Student: NewPerson(stud),
		Grades:  make([]GradeSummary, 0, len(grades)),
	}
	for _, grd := range grades {
		info.Grades = append(info.Grades, NewGradeSummary(grd))
	}
	return info, nil
}

// StudentDetail is the admin view: the student's enrollments with each
// grade's curriculum and the teachers behind each subject.
func (svc *Service) StudentDetail(ctx context.Context, studentID string) (StudentDetail, error) {
	stud, err := svc.getActiveUser(ctx, studentID, user.RoleStudent)
	if err != nil {
		return StudentDetail{}, err
	}
	enrollments, err := svc.repo.StudentEnrollments(ctx, studentID)
	if err != nil {
		return StudentDetail{}, errors.Wrap(err, "loading student enrollments")
	}

	detail := StudentDetail{
		Student: NewPerson(stud),
		Grades:  make([]EnrolledGrade, 0, len(enrollments)),
	}
	for _, enr := range enrollments {
		grd, err := svc.GetGrade(ctx, enr.GradeID)
		if err != nil {
			return StudentDetail{}, err
		}
		subs, err := svc.repo.GradeSubjects(ctx, enr.GradeID)
		if err != nil {
			return StudentDetail{}, errors.Wrap(err, "loading grade subjects")
		}

		eg := EnrolledGrade{
			GradeSummary: NewGradeSummary(grd),
			EnrolledAt:   enr.EnrolledAt,
			Subjects:     make([]TaughtSubject, 0, len(subs)),
		}
		for _, sub := range subs {
			teachers, err := svc.repo.SubjectTeachers(ctx, sub.ID)
			if err != nil {
				return StudentDetail{}, errors.Wrap(err, "loading subject teachers")
			}
			taught := TaughtSubject{
				SubjectSummary: NewSubjectSummary(sub),
				Teachers:       make([]Person, 0, len(teachers)),
			}
			for _, usr := range teachers {
				taught.Teachers = append(taught.Teachers, NewPerson(usr))
			}
			eg.Subjects = append(eg.Subjects, taught)
		}
		detail.Grades = append(detail.Grades, eg)
	}
	return detail, nil
}

// TeacherSubjects is the teacher-facing profile: who they are and what they
// teach. Only active teacher accounts resolve.
func (svc *Service) TeacherSubjects(ctx context.Context, teacherID string) (TeacherSubjects, error) {
	teacher, err := svc.getActiveUser(ctx, teacherID, user.RoleTeacher)
	if err != nil {
		return TeacherSubjects{}, err
	}
	subs, err := svc.repo.TeacherSubjects(ctx, teacherID)
	if err != nil {
		return TeacherSubjects{}, errors.Wrap(err, "loading teacher subjects")
	}

	info := TeacherSubjects{
		Teacher:  NewPerson(teacher),
		Subjects: make([]SubjectSummary, 0, len(subs)),
	}
	for _, sub := range subs {
		info.Subjects = append(info.Subjects, NewSubjectSummary(sub))
	}
	return info, nil
}

// SubjectStudents lists the students a teacher can reach through a subject.
// The caller must actually teach the subject.
func (svc *Service) SubjectStudents(ctx context.Context, teacherID, subjectID string) (SubjectStudents, error) {
	if _, err := svc.repo.GetTeacherSubject(ctx, teacherID, subjectID); err != nil {
		if errors.Cause(err) == ErrAssignmentNotFound {
			return SubjectStudents{}, ErrNotSubjectTeacher
		}
		return SubjectStudents{}, errors.Wrap(err, "checking teacher assignment")
	}
	sub, err := svc.GetSubject(ctx, subjectID)
	if err != nil {
		return SubjectStudents{}, err
	}
	if !sub.IsActive {
		return SubjectStudents{}, ErrSubjectNotFound
	}
	studs, err := svc.repo.SubjectStudents(ctx, subjectID)
	if err != nil {
		return SubjectStudents{}, errors.Wrap(err, "loading subject students")
	}

	info := SubjectStudents{
		Subject:  NewSubjectSummary(sub),
		Students: make([]Person, 0, len(studs)),
	}
	for _, usr := range studs {
		info.Students = append(info.Students, NewPerson(usr))
	}
	return info, nil
}

// TeacherClassSummary aggregates a teacher's teaching load. Grade and
// student totals are not computed yet and are reported as such.
func (svc *Service) TeacherClassSummary(ctx context.Context, teacherID string) (ClassSummary, error) {
	teacher, err := svc.getActiveUser(ctx, teacherID, user.RoleTeacher)
	if err != nil {
		return ClassSummary{}, err
	}
	subs, err := svc.repo.TeacherSubjects(ctx, teacherID)
	if err != nil {
		return ClassSummary{}, errors.Wrap(err, "loading teacher subjects")
	}

	summary := ClassSummary{
		Teacher: teacher.FullName(),
		Stats: ClassSummaryStats{
			TotalSubjects: len(subs),
			TotalGrades:   "En desarrollo",
			TotalStudents: "En desarrollo",
		},
		Subjects: make([]SubjectSummary, 0, len(subs)),
	}
	for _, sub := range subs {
		summary.Subjects = append(summary.Subjects, NewSubjectSummary(sub))
	}
	return summary, nil
}

// getActiveUser resolves an ID to an active account of the wanted role.
// Anything else reports the role-specific not-found error: callers cannot
// enumerate accounts of other roles.
func (svc *Service) getActiveUser(ctx context.Context, id string, role user.Role) (user.User, error) {
	notFound := ErrStudentNotFound
	if role == user.RoleTeacher {
		notFound = ErrTeacherNotFound
	}

	usr, err := svc.users.GetUser(ctx, user.GetFilter{ID: id})
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, notFound
		}
		return user.User{}, errors.Wrap(err, "finding user by id")
	}
	if usr.Role != role || !usr.IsActive {
		return user.User{}, notFound
	}
	return usr, nil
}

package school_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/devbenja/colegio/core"
	"github.com/devbenja/colegio/core/school"
	"github.com/devbenja/colegio/core/user"
	dummydb "github.com/devbenja/colegio/storage/database/dummy"
)

type testDeps struct {
	svc        *school.Service
	schoolRepo school.Repository
	usrRepo    user.Repository
	conf       *core.Config
}

func setup(t *testing.T, mods ...func(*core.Config)) *testDeps {
	t.Helper()

	conf := core.NewConfig()
	conf.TestMode = true
	for _, mod := range mods {
		mod(conf)
	}

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup(): %v", err)
	}
	schoolRepo := dummydb.NewSchoolRepository(db)
	usrRepo := dummydb.NewUserRepository(db)

	validate := validator.New()
	_es := es.New()
	uni := ut.New(_es, _es)
	translator, _ := uni.GetTranslator("es")
	core.InitValidators(validate, translator)
	school.InitValidators(validate, translator, conf)

	return &testDeps{
		svc:        school.NewServiceMock(schoolRepo, usrRepo, conf, validate),
		schoolRepo: schoolRepo,
		usrRepo:    usrRepo,
		conf:       conf,
	}
}

func createStudent(t *testing.T, repo user.Repository, email string, isActive bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr, err := repo.CreateUser(context.Background(), user.User{
		FirstName: "Est",
		LastName:  "Udiante",
		Email:     email,
		Role:      user.RoleStudent,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("createStudent(): %v", err)
	}
	return usr
}

func Test_Service_CreateGrade_nameChoices(t *testing.T) {
	ctx := context.Background()

	t.Run("restricted to configured names", func(t *testing.T) {
		deps := setup(t) // default choices 1°..6°

		ng := school.NewGrade{Name: "Séptimo"}
		if err := ng.Validate(deps.svc); err == nil {
			t.Error("Validate() accepted a name outside the configured choices")
		}

		ng = school.NewGrade{Name: "1°"}
		if err := ng.Validate(deps.svc); err != nil {
			t.Fatalf("Validate(): %v", err)
		}
		grd, err := deps.svc.CreateGrade(ctx, ng)
		if err != nil {
			t.Fatalf("CreateGrade(): %v", err)
		}
		if !grd.IsActive {
			t.Error("new grade must start active")
		}
	})

	t.Run("freeform when no choices configured", func(t *testing.T) {
		deps := setup(t, func(conf *core.Config) { conf.School.GradeNameChoices = nil })

		ng := school.NewGrade{Name: "Séptimo"}
		if err := ng.Validate(deps.svc); err != nil {
			t.Errorf("Validate(): %v", err)
		}
	})
}

func Test_Service_UpdateGrade_keepsOwnName(t *testing.T) {
	ctx := context.Background()
	deps := setup(t)

	grd, err := deps.svc.CreateGrade(ctx, school.NewGrade{Name: "1°", Description: "orig"})
	if err != nil {
		t.Fatalf("CreateGrade(): %v", err)
	}
	if _, err = deps.svc.CreateGrade(ctx, school.NewGrade{Name: "2°"}); err != nil {
		t.Fatalf("CreateGrade(): %v", err)
	}

	// re-submitting its own name is not a conflict
	updated, err := deps.svc.UpdateGrade(ctx, grd.ID, school.UpdateGrade{Name: "1°", Description: "nueva"})
	if err != nil {
		t.Fatalf("UpdateGrade(): %v", err)
	}
	if updated.Description != "nueva" {
		t.Errorf("Description = %q", updated.Description)
	}

	// but a sibling's name is
	if _, err = deps.svc.UpdateGrade(ctx, grd.ID, school.UpdateGrade{Name: "2°"}); err != school.ErrGradeExists {
		t.Errorf("UpdateGrade() error = %v; want ErrGradeExists", err)
	}
}

func Test_Service_AssignSubjectToGrade_activeGate(t *testing.T) {
	ctx := context.Background()

	newPair := func(t *testing.T, deps *testDeps) (school.Grade, school.Subject) {
		grd, err := deps.svc.CreateGrade(ctx, school.NewGrade{Name: "1°"})
		if err != nil {
			t.Fatalf("CreateGrade(): %v", err)
		}
		sub, err := deps.svc.CreateSubject(ctx, school.NewSubject{Name: "Matemáticas"})
		if err != nil {
			t.Fatalf("CreateSubject(): %v", err)
		}
		if _, err = deps.svc.SetSubjectActive(ctx, sub.ID, false); err != nil {
			t.Fatalf("SetSubjectActive(): %v", err)
		}
		sub.IsActive = false
		return grd, sub
	}

	t.Run("inactive pair rejected by default", func(t *testing.T) {
		deps := setup(t)
		grd, sub := newPair(t, deps)

		if _, err := deps.svc.AssignSubjectToGrade(ctx, grd.ID, sub.ID); err != school.ErrGradeSubjectInactive {
			t.Errorf("AssignSubjectToGrade() error = %v; want ErrGradeSubjectInactive", err)
		}
	})

	t.Run("inactive pair allowed when gate disabled", func(t *testing.T) {
		deps := setup(t, func(conf *core.Config) { conf.School.RequireActiveOnAssign = false })
		grd, sub := newPair(t, deps)

		if _, err := deps.svc.AssignSubjectToGrade(ctx, grd.ID, sub.ID); err != nil {
			t.Errorf("AssignSubjectToGrade(): %v", err)
		}
	})
}

func Test_Service_SetGradeActive_keepsAssociations(t *testing.T) {
	ctx := context.Background()
	deps := setup(t)

	grd, err := deps.svc.CreateGrade(ctx, school.NewGrade{Name: "1°"})
	if err != nil {
		t.Fatalf("CreateGrade(): %v", err)
	}
	stud := createStudent(t, deps.usrRepo, "est@colegio.com", true)
	if _, err = deps.svc.EnrollStudentInGrade(ctx, stud.ID, grd.ID); err != nil {
		t.Fatalf("EnrollStudentInGrade(): %v", err)
	}

	if _, err = deps.svc.SetGradeActive(ctx, grd.ID, false); err != nil {
		t.Fatalf("SetGradeActive(): %v", err)
	}

	grades, err := deps.schoolRepo.StudentGrades(ctx, stud.ID)
	if err != nil {
		t.Fatalf("StudentGrades(): %v", err)
	}
	if len(grades) != 1 {
		t.Errorf("enrollments after deactivation = %d; want 1", len(grades))
	}

	// enrollment into the deactivated grade is refused
	other := createStudent(t, deps.usrRepo, "otro@colegio.com", true)
	if _, err = deps.svc.EnrollStudentInGrade(ctx, other.ID, grd.ID); err != school.ErrGradeInactive {
		t.Errorf("EnrollStudentInGrade() error = %v; want ErrGradeInactive", err)
	}
}

func Test_Service_EnrollStudentInGrade_inactiveStudent(t *testing.T) {
	ctx := context.Background()
	deps := setup(t)

	grd, err := deps.svc.CreateGrade(ctx, school.NewGrade{Name: "1°"})
	if err != nil {
		t.Fatalf("CreateGrade(): %v", err)
	}
	gone := createStudent(t, deps.usrRepo, "gone@colegio.com", false)

	if _, err = deps.svc.EnrollStudentInGrade(ctx, gone.ID, grd.ID); err != school.ErrStudentNotFound {
		t.Errorf("EnrollStudentInGrade() error = %v; want ErrStudentNotFound", err)
	}
}

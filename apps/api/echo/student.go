package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devbenja/colegio/core/school"
	"github.com/devbenja/colegio/core/user"
)

type studentApi struct {
	svc *school.Service
}

func registerStudentAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *school.Service) {
	api := studentApi{svc: svc}

	sg := g.Group("/student", auth, roleMiddleware(user.RoleStudent))
	sg.GET("/academic-info", api.academicInfo)
	sg.GET("/schedule", api.schedule)
}

func (api *studentApi) academicInfo(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	info, err := api.svc.StudentAcademicInfo(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, response{Success: true, Data: info})
}

type (
	schedulePeriod struct {
		Hour    string `json:"hora"`
		Subject string `json:"materia"`
		Teacher string `json:"profesor"`
	}

	scheduleDay struct {
		Day      string           `json:"dia"`
		Subjects []schedulePeriod `json:"materias"`
	}

	schedule struct {
		Student struct {
			ID string `json:"id"`
		} `json:"estudiante"`
		Days []scheduleDay `json:"horario"`
	}
)

// schedule returns a canned timetable until per-grade scheduling lands.
// TODO: build the timetable from grade_subjects once periods are modeled.
func (api *studentApi) schedule(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	sched := schedule{
		Days: []scheduleDay{
			{
				Day: "Lunes",
				Subjects: []schedulePeriod{
					{Hour: "8:00 - 9:00", Subject: "Matemáticas", Teacher: "Juan Pérez"},
					{Hour: "9:00 - 10:00", Subject: "Ciencias", Teacher: "Juan Pérez"},
					{Hour: "10:00 - 11:00", Subject: "Historia", Teacher: "María García"},
				},
			},
			{
				Day: "Martes",
				Subjects: []schedulePeriod{
					{Hour: "8:00 - 9:00", Subject: "Español", Teacher: "Ana López"},
					{Hour: "9:00 - 10:00", Subject: "Inglés", Teacher: "Carlos Ruiz"},
					{Hour: "10:00 - 11:00", Subject: "Educación Física", Teacher: "Pedro Sánchez"},
				},
			},
		},
	}
	sched.Student.ID = claims.Subject

	return ctx.JSON(http.StatusOK, response{Success: true, Data: sched})
}

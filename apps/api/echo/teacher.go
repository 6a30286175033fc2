package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devbenja/colegio/core/school"
	"github.com/devbenja/colegio/core/user"
)

type teacherApi struct {
	svc *school.Service
}

func registerTeacherAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *school.Service) {
	api := teacherApi{svc: svc}

	tg := g.Group("/teacher", auth, roleMiddleware(user.RoleTeacher))
	tg.GET("/subjects", api.subjects)
	tg.GET("/subjects/:id/students", api.subjectStudents)
	tg.GET("/summary", api.summary)
}

func (api *teacherApi) subjects(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	view, err := api.svc.TeacherSubjects(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, response{Success: true, Data: view})
}

func (api *teacherApi) subjectStudents(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	view, err := api.svc.SubjectStudents(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, response{Success: true, Data: view})
}

func (api *teacherApi) summary(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	summary, err := api.svc.TeacherClassSummary(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, response{Success: true, Data: summary})
}

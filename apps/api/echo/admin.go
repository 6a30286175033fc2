package echoapi

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/devbenja/colegio/core"
	"github.com/devbenja/colegio/core/school"
	"github.com/devbenja/colegio/core/user"
)

type adminApi struct {
	svc *school.Service
}

func registerAdminAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *school.Service) {
	api := adminApi{svc: svc}

	ag := g.Group("/admin", auth, roleMiddleware(user.RoleAdmin))

	// grades
	ag.GET("/grades", api.queryGrades)
	ag.POST("/grades", api.createGrade)
	ag.POST("/grades/assign-subject", api.assignSubjectToGrade)
	ag.GET("/grades/:id", api.retrieveGrade)
	ag.PUT("/grades/:id", api.updateGrade)
	ag.PATCH("/grades/:id/status", api.setGradeStatus)
	ag.GET("/grades/:id/export", api.exportGradeRoster)
	ag.DELETE("/grades/:id/subjects/:subjectId", api.removeSubjectFromGrade)

	// subjects
	ag.GET("/subjects", api.querySubjects)
	ag.POST("/subjects", api.createSubject)
	ag.GET("/subjects/:id", api.retrieveSubject)
	ag.PUT("/subjects/:id", api.updateSubject)
	ag.PATCH("/subjects/:id/status", api.setSubjectStatus)

	// teachers & students
	ag.POST("/teachers/assign-subject", api.assignSubjectToTeacher)
	ag.DELETE("/teachers/:id/subjects/:subjectId", api.removeSubjectFromTeacher)
	ag.POST("/students/enroll", api.enrollStudent)
	ag.GET("/students/:id", api.studentInfo)
	ag.DELETE("/students/:id/grades/:gradeId", api.removeStudentFromGrade)
}

// pathUUID reads a path parameter that must hold a UUID.
func pathUUID(ctx echo.Context, name string) (string, error) {
	val := ctx.Param(name)
	if _, err := uuid.Parse(val); err != nil {
		return "", core.NewValidationError(nil, core.FieldError{Field: name, Error: "debe ser un UUID válido"})
	}
	return val, nil
}

// Grade handlers

func (api *adminApi) queryGrades(ctx echo.Context) error {
	filter := new(school.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	grades, err := api.svc.QueryGradeDetails(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, response{Success: true, Data: grades})
}

func (api *adminApi) createGrade(ctx echo.Context) error {
	var data school.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	grd, err := api.svc.CreateGrade(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, response{Success: true, Message: "Grado creado exitosamente", Data: grd})
}

func (api *adminApi) retrieveGrade(ctx echo.Context) error {
	id, err := pathUUID(ctx, "id")
	if err != nil {
		return err
	}
	grd, err := api.svc.GradeDetail(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, response{Success: true, Data: grd})
}

func (api *adminApi) updateGrade(ctx echo.Context) error {
	id, err := pathUUID(ctx, "id")
	if err != nil {
		return err
	}
	grd, err := api.svc.GetGrade(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	var data school.UpdateGrade
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGrade")
	}
	if err = data.Validate(grd, api.svc); err != nil {
		return err
	}

	grd, err = api.svc.UpdateGrade(ctx.Request().Context(), grd.ID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, response{Success: true, Message: "Grado actualizado exitosamente", Data: grd})
}

func (api *adminApi) setGradeStatus(ctx echo.Context) error {
	id, err := pathUUID(ctx, "id")
	if err != nil {
		return err
	}
	var data school.SetActive
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetActive")
	}
	if err = data.Validate(api.svc); err != nil {
		return err
	}

	grd, err := api.svc.SetGradeActive(ctx.Request().Context(), id, *data.IsActive)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, response{
		Success: true,
		Message: fmt.Sprintf("Grado %s exitosamente", pastParticiple(*data.IsActive, "activado", "desactivado")),
		Data:    grd,
	})
}

// Subject handlers

func (api *adminApi) querySubjects(ctx echo.Context) error {
	filter := new(school.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	subjects, err := api.svc.QuerySubjectDetails(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, response{Success: true, Data: subjects})
}

func (api *adminApi) createSubject(ctx echo.Context) error {
	var data school.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	sub, err := api.svc.CreateSubject(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, response{Success: true, Message: "Materia creada exitosamente", Data: sub})
}

func (api *adminApi) retrieveSubject(ctx echo.Context) error {
	id, err := pathUUID(ctx, "id")
	if err != nil {
		return err
	}
	sub, err := api.svc.SubjectDetail(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, response{Success: true, Data: sub})
}

func (api *adminApi) updateSubject(ctx echo.Context) error {
	id, err := pathUUID(ctx, "id")
	if err != nil {
		return err
	}
	sub, err := api.svc.GetSubject(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	var data school.UpdateSubject
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubject")
	}
	if err = data.Validate(sub, api.svc); err != nil {
		return err
	}

	sub, err = api.svc.UpdateSubject(ctx.Request().Context(), sub.ID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, response{Success: true, Message: "Materia actualizada exitosamente", Data: sub})
}

func (api *adminApi) setSubjectStatus(ctx echo.Context) error {
	id, err := pathUUID(ctx, "id")
	if err != nil {
		return err
	}
	var data school.SetActive
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetActive")
	}
	if err = data.Validate(api.svc); err != nil {
		return err
	}

	sub, err := api.svc.SetSubjectActive(ctx.Request().Context(), id, *data.IsActive)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, response{
		Success: true,
		Message: fmt.Sprintf("Materia %s exitosamente", pastParticiple(*data.IsActive, "activada", "desactivada")),
		Data:    sub,
	})
}

// Association handlers

func (api *adminApi) assignSubjectToGrade(ctx echo.Context) error {
	var data school.AssignSubjectGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignSubjectGrade")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	gs, err := api.svc.AssignSubjectToGrade(ctx.Request().Context(), data.GradeID, data.SubjectID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, response{Success: true, Message: "Materia asignada al grado exitosamente", Data: gs})
}

func (api *adminApi) removeSubjectFromGrade(ctx echo.Context) error {
	gradeID, err := pathUUID(ctx, "id")
	if err != nil {
		return err
	}
	subjectID, err := pathUUID(ctx, "subjectId")
	if err != nil {
		return err
	}
	if err = api.svc.RemoveSubjectFromGrade(ctx.Request().Context(), gradeID, subjectID); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, response{Success: true, Message: "Materia removida del grado exitosamente"})
}

func (api *adminApi) assignSubjectToTeacher(ctx echo.Context) error {
	var data school.AssignSubjectTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignSubjectTeacher")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	ts, err := api.svc.AssignSubjectToTeacher(ctx.Request().Context(), data.TeacherID, data.SubjectID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, response{Success: true, Message: "Materia asignada al profesor exitosamente", Data: ts})
}

func (api *adminApi) removeSubjectFromTeacher(ctx echo.Context) error {
	teacherID, err := pathUUID(ctx, "id")
	if err != nil {
		return err
	}
	subjectID, err := pathUUID(ctx, "subjectId")
	if err != nil {
		return err
	}
	if err = api.svc.RemoveSubjectFromTeacher(ctx.Request().Context(), teacherID, subjectID); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, response{Success: true, Message: "Materia removida del profesor exitosamente"})
}

func (api *adminApi) enrollStudent(ctx echo.Context) error {
	var data school.EnrollStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollStudent")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	sg, err := api.svc.EnrollStudentInGrade(ctx.Request().Context(), data.StudentID, data.GradeID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, response{Success: true, Message: "Estudiante inscrito en el grado exitosamente", Data: sg})
}

func (api *adminApi) removeStudentFromGrade(ctx echo.Context) error {
	studentID, err := pathUUID(ctx, "id")
	if err != nil {
		return err
	}
	gradeID, err := pathUUID(ctx, "gradeId")
	if err != nil {
		return err
	}
	if err = api.svc.RemoveStudentFromGrade(ctx.Request().Context(), studentID, gradeID); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, response{Success: true, Message: "Estudiante removido del grado exitosamente"})
}

func (api *adminApi) studentInfo(ctx echo.Context) error {
	id, err := pathUUID(ctx, "id")
	if err != nil {
		return err
	}
	detail, err := api.svc.StudentDetail(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, response{Success: true, Data: detail})
}

// exportGradeRoster writes the grade's enrolled students to an xlsx sheet.
func (api *adminApi) exportGradeRoster(ctx echo.Context) error {
	id, err := pathUUID(ctx, "id")
	if err != nil {
		return err
	}
	detail, err := api.svc.GradeDetail(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	headers := []string{"Nombre", "Apellido", "Email"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err = f.SetCellValue(sheet, cell, h); err != nil {
			return errors.Wrap(err, "writing header cell")
		}
	}
	for i, std := range detail.Students {
		for j, val := range []string{std.FirstName, std.LastName, std.Email} {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err = f.SetCellValue(sheet, cell, val); err != nil {
				return errors.Wrap(err, "writing student cell")
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return errors.Wrap(err, "writing workbook")
	}

	filename := fmt.Sprintf("grado-%s.xlsx", detail.Name)
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return ctx.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func pastParticiple(active bool, activated, deactivated string) string {
	if active {
		return activated
	}
	return deactivated
}

package echoapi

import (
	"net/http"
	"reflect"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/devbenja/colegio/core"
	"github.com/devbenja/colegio/core/school"
	"github.com/devbenja/colegio/core/user"
)

// response is the wire envelope every endpoint answers with.
type response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

var (
	errTokenRequired   = echo.NewHTTPError(http.StatusUnauthorized, "Token de autenticación requerido")
	errInvalidToken    = echo.NewHTTPError(http.StatusUnauthorized, "Token inválido")
	errUserUnavailable = echo.NewHTTPError(http.StatusUnauthorized, "Usuario no encontrado o inactivo")
	errUnauthenticated = echo.NewHTTPError(http.StatusUnauthorized, "Usuario no autenticado")
	errHttpForbidden   = echo.NewHTTPError(http.StatusForbidden, "No tienes permisos para acceder a este recurso")
)

type errorMapping struct {
	code    int
	message string
}

// domainErrors maps domain sentinel errors to their status and wire message.
var domainErrors = map[error]errorMapping{
	user.ErrEmailExists:        {http.StatusConflict, "El email ya está registrado"},
	user.ErrInvalidCredentials: {http.StatusUnauthorized, "Credenciales inválidas"},
	user.ErrUserDisabled:       {http.StatusUnauthorized, "Usuario inactivo"},
	user.ErrNotFound:           {http.StatusNotFound, "Usuario no encontrado"},
	user.ErrInvalidResetToken:  {http.StatusBadRequest, "Token inválido"},
	user.ErrResetTokenExpired:  {http.StatusBadRequest, "El token ha expirado"},

	school.ErrGradeNotFound:   {http.StatusNotFound, "Grado no encontrado"},
	school.ErrSubjectNotFound: {http.StatusNotFound, "Materia no encontrada"},
	school.ErrTeacherNotFound: {http.StatusNotFound, "Profesor no encontrado"},
	school.ErrStudentNotFound: {http.StatusNotFound, "Estudiante no encontrado"},

	school.ErrGradeExists:   {http.StatusConflict, "Ya existe un grado con ese nombre"},
	school.ErrSubjectExists: {http.StatusConflict, "Ya existe una materia con ese nombre"},

	school.ErrGradeSubjectExists:   {http.StatusConflict, "Esta materia ya está asignada a este grado"},
	school.ErrTeacherSubjectExists: {http.StatusConflict, "Esta materia ya está asignada a este profesor"},
	school.ErrStudentGradeExists:   {http.StatusConflict, "Este estudiante ya está inscrito en este grado"},

	school.ErrAssignmentNotFound: {http.StatusNotFound, "Asignación no encontrada"},
	school.ErrEnrollmentNotFound: {http.StatusNotFound, "Inscripción no encontrada"},

	school.ErrGradeSubjectInactive: {http.StatusBadRequest, "El grado y la materia deben estar activos"},
	school.ErrSubjectInactive:      {http.StatusBadRequest, "La materia debe estar activa"},
	school.ErrGradeInactive:        {http.StatusBadRequest, "El grado debe estar activo"},

	school.ErrNotSubjectTeacher: {http.StatusForbidden, "No tienes permisos para acceder a esta materia"},
}

// lookupDomainError resolves err against the sentinel map. Unhashable error
// types cannot index the map and are never sentinels.
func lookupDomainError(err error) (errorMapping, bool) {
	if err == nil || !reflect.TypeOf(err).Comparable() {
		return errorMapping{}, false
	}
	mapped, ok := domainErrors[err]
	return mapped, ok
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler speaking the
// response envelope. signalShutdown is called whenever a core.shutdown error
// is caught so the server can stop gracefully.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		resp := response{Success: false}

		// The type switch must run before the sentinel lookup: indexing
		// domainErrors with an unhashable error (validator.ValidationErrors
		// is a slice) panics.
		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			resp.Message = messageText(origErr.Message, code)
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			resp.Message = "Datos de entrada inválidos"
			resp.Errors = fldErrs
		case *core.ValidationError:
			code = http.StatusBadRequest
			resp.Message = "Datos de entrada inválidos"
			if flds := origErr.FieldMap(); flds != nil {
				resp.Errors = flds
			} else {
				resp.Message = origErr.Error()
			}
		default:
			if mapped, ok := lookupDomainError(cause); ok {
				code = mapped.code
				resp.Message = mapped.message
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			resp.Message = "Error interno del servidor"

			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID = claims.Subject
				usr.Email = claims.Email
			}
			logger.Error(resp.Message, errors.Wrap(err, "internal server error"), usr)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			resp.Message = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, resp)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func messageText(msg interface{}, code int) string {
	if s, ok := msg.(string); ok {
		return s
	}
	return http.StatusText(code)
}

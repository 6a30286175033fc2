package echoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/devbenja/colegio/core/user"
)

func Test_adminApi_roleGate(t *testing.T) {
	env := setup(t)
	teacher := createUser(t, env.usrRepo, "Juan", "Pérez", "juan@colegio.com", "password123", user.RoleTeacher, true)
	student := createUser(t, env.usrRepo, "Ana", "Martínez", "ana@colegio.com", "password123", user.RoleStudent, true)

	forbidden := marchallObj(t, response{Message: "No tienes permisos para acceder a este recurso"})

	tests := []httpTest{
		{
			name: "no token", method: http.MethodGet, path: "/api/admin/grades",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, response{Message: "Token de autenticación requerido"}),
		},
		{
			name: "teacher token", method: http.MethodGet, path: "/api/admin/grades",
			token: getToken(t, env.conf, teacher), wantCode: http.StatusForbidden, wantData: forbidden,
		},
		{
			name: "student token", method: http.MethodGet, path: "/api/admin/grades",
			token: getToken(t, env.conf, student), wantCode: http.StatusForbidden, wantData: forbidden,
		},
		{
			name: "teacher token on enroll", method: http.MethodPost, path: "/api/admin/students/enroll",
			token: getToken(t, env.conf, teacher), body: []byte(`{}`),
			wantCode: http.StatusForbidden, wantData: forbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_adminApi_gradeCRUD(t *testing.T) {
	env := setup(t)
	admin := createUser(t, env.usrRepo, "Root", "Admin", "admin@colegio.com", "password123", user.RoleAdmin, true)
	token := getToken(t, env.conf, admin)

	// create
	req, rec := newAuthRequest(http.MethodPost, "/api/admin/grades", token,
		[]byte(`{"nombre":"1°","descripcion":"Primer año de secundaria"}`))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: code = %v; body %s", rec.Code, rec.Body.String())
	}
	_, message, data := decodeEnvelope(t, rec)
	if message != "Grado creado exitosamente" {
		t.Errorf("create: message = %q", message)
	}
	gradeID, _ := data["id"].(string)
	if gradeID == "" {
		t.Fatal("create: id missing from payload")
	}
	if active, _ := data["activo"].(bool); !active {
		t.Error("create: new grade must start active")
	}

	// duplicate name
	req, rec = newAuthRequest(http.MethodPost, "/api/admin/grades", token,
		[]byte(`{"nombre":"1°","descripcion":"otro"}`))
	env.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusConflict,
		wantData: marchallObj(t, response{Message: "Ya existe un grado con ese nombre"}),
	}, rec)

	// name outside the configured choices
	req, rec = newAuthRequest(http.MethodPost, "/api/admin/grades", token,
		[]byte(`{"nombre":"Séptimo"}`))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("choices: code = %v; body %s", rec.Code, rec.Body.String())
	}

	// retrieve detail
	req, rec = newAuthRequest(http.MethodGet, "/api/admin/grades/"+gradeID, token)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("retrieve: code = %v; body %s", rec.Code, rec.Body.String())
	}
	_, _, data = decodeEnvelope(t, rec)
	if subjects, ok := data["subjects"].([]interface{}); !ok || len(subjects) != 0 {
		t.Errorf("retrieve: subjects = %v; want []", data["subjects"])
	}
	if students, ok := data["students"].([]interface{}); !ok || len(students) != 0 {
		t.Errorf("retrieve: students = %v; want []", data["students"])
	}

	// malformed id
	req, rec = newAuthRequest(http.MethodGet, "/api/admin/grades/nope", token)
	env.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, response{
			Message: "Datos de entrada inválidos",
			Errors:  map[string]string{"id": "debe ser un UUID válido"},
		}),
	}, rec)

	// unknown id
	req, rec = newAuthRequest(http.MethodGet, "/api/admin/grades/"+uuid.New().String(), token)
	env.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, response{Message: "Grado no encontrado"}),
	}, rec)

	// update
	req, rec = newAuthRequest(http.MethodPut, "/api/admin/grades/"+gradeID, token,
		[]byte(`{"descripcion":"Primer año"}`))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: code = %v; body %s", rec.Code, rec.Body.String())
	}
	_, message, data = decodeEnvelope(t, rec)
	if message != "Grado actualizado exitosamente" {
		t.Errorf("update: message = %q", message)
	}
	if data["descripcion"] != "Primer año" {
		t.Errorf("update: descripcion = %v", data["descripcion"])
	}
	if data["nombre"] != "1°" {
		t.Errorf("update: nombre = %v; must keep original", data["nombre"])
	}

	// list
	req, rec = newAuthRequest(http.MethodGet, "/api/admin/grades", token)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: code = %v", rec.Code)
	}
	var listBody struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listBody); err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listBody.Data) != 1 {
		t.Errorf("list: len = %d; want 1", len(listBody.Data))
	}
}

func Test_adminApi_subjectCRUD(t *testing.T) {
	env := setup(t)
	admin := createUser(t, env.usrRepo, "Root", "Admin", "admin@colegio.com", "password123", user.RoleAdmin, true)
	token := getToken(t, env.conf, admin)

	req, rec := newAuthRequest(http.MethodPost, "/api/admin/subjects", token,
		[]byte(`{"nombre":"Matemáticas","descripcion":"Álgebra y Geometría"}`))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: code = %v; body %s", rec.Code, rec.Body.String())
	}
	_, message, data := decodeEnvelope(t, rec)
	if message != "Materia creada exitosamente" {
		t.Errorf("create: message = %q", message)
	}
	subjectID, _ := data["id"].(string)

	// duplicate name
	req, rec = newAuthRequest(http.MethodPost, "/api/admin/subjects", token,
		[]byte(`{"nombre":"Matemáticas"}`))
	env.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusConflict,
		wantData: marchallObj(t, response{Message: "Ya existe una materia con ese nombre"}),
	}, rec)

	// deactivate then reactivate
	for _, tc := range []struct {
		active bool
		want   string
	}{
		{false, "Materia desactivada exitosamente"},
		{true, "Materia activada exitosamente"},
	} {
		req, rec = newAuthRequest(http.MethodPatch, "/api/admin/subjects/"+subjectID+"/status", token,
			[]byte(fmt.Sprintf(`{"activo":%t}`, tc.active)))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status: code = %v; body %s", rec.Code, rec.Body.String())
		}
		if _, message, _ = decodeEnvelope(t, rec); message != tc.want {
			t.Errorf("status: message = %q; want %q", message, tc.want)
		}
	}

	// missing activo field
	req, rec = newAuthRequest(http.MethodPatch, "/api/admin/subjects/"+subjectID+"/status", token, []byte(`{}`))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: code = %v; want 400", rec.Code)
	}
}

func Test_adminApi_assignSubjectToGrade(t *testing.T) {
	env := setup(t)
	admin := createUser(t, env.usrRepo, "Root", "Admin", "admin@colegio.com", "password123", user.RoleAdmin, true)
	token := getToken(t, env.conf, admin)

	grd := createGrade(t, env.schoolRepo, "1°", "", true)
	sub := createSubject(t, env.schoolRepo, "Matemáticas", "", true)
	inactive := createSubject(t, env.schoolRepo, "Latín", "", false)

	body := func(gradeID, subjectID string) []byte {
		return []byte(fmt.Sprintf(`{"gradeId":%q,"subjectId":%q}`, gradeID, subjectID))
	}

	// first assignment sticks
	req, rec := newAuthRequest(http.MethodPost, "/api/admin/grades/assign-subject", token, body(grd.ID, sub.ID))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("assign: code = %v; body %s", rec.Code, rec.Body.String())
	}
	if _, message, _ := decodeEnvelope(t, rec); message != "Materia asignada al grado exitosamente" {
		t.Errorf("assign: message = %q", message)
	}

	// assigning the same pair again conflicts
	req, rec = newAuthRequest(http.MethodPost, "/api/admin/grades/assign-subject", token, body(grd.ID, sub.ID))
	env.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusConflict,
		wantData: marchallObj(t, response{Message: "Esta materia ya está asignada a este grado"}),
	}, rec)

	subjects, err := env.schoolRepo.GradeSubjects(context.Background(), grd.ID)
	if err != nil {
		t.Fatalf("GradeSubjects(): %v", err)
	}
	if len(subjects) != 1 {
		t.Errorf("grade curriculum rows = %d; want exactly 1", len(subjects))
	}

	tests := []httpTest{
		{
			name: "unknown grade", body: body("00000000-0000-4000-8000-000000000000", sub.ID),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, response{Message: "Grado no encontrado"}),
		},
		{
			name: "unknown subject", body: body(grd.ID, "00000000-0000-4000-8000-000000000000"),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, response{Message: "Materia no encontrada"}),
		},
		{
			name: "inactive subject", body: body(grd.ID, inactive.ID),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, response{Message: "El grado y la materia deben estar activos"}),
		},
		{
			name: "malformed ids", body: body("lol", "lmao"),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/admin/grades/assign-subject", token, tt.body)
			env.app.ServeHTTP(rec, req)
			if tt.wantData == nil {
				if rec.Code != tt.wantCode {
					t.Errorf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

	// removal, then the pair is gone
	path := fmt.Sprintf("/api/admin/grades/%s/subjects/%s", grd.ID, sub.ID)
	req, rec = newAuthRequest(http.MethodDelete, path, token)
	env.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, response{Success: true, Message: "Materia removida del grado exitosamente"}),
	}, rec)

	req, rec = newAuthRequest(http.MethodDelete, path, token)
	env.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, response{Message: "Asignación no encontrada"}),
	}, rec)
}

func Test_adminApi_assignSubjectToTeacher(t *testing.T) {
	env := setup(t)
	admin := createUser(t, env.usrRepo, "Root", "Admin", "admin@colegio.com", "password123", user.RoleAdmin, true)
	teacher := createUser(t, env.usrRepo, "Juan", "Pérez", "juan@colegio.com", "password123", user.RoleTeacher, true)
	student := createUser(t, env.usrRepo, "Ana", "Martínez", "ana@colegio.com", "password123", user.RoleStudent, true)
	token := getToken(t, env.conf, admin)

	sub := createSubject(t, env.schoolRepo, "Historia", "", true)
	inactive := createSubject(t, env.schoolRepo, "Latín", "", false)

	body := func(teacherID, subjectID string) []byte {
		return []byte(fmt.Sprintf(`{"teacherId":%q,"subjectId":%q}`, teacherID, subjectID))
	}

	req, rec := newAuthRequest(http.MethodPost, "/api/admin/teachers/assign-subject", token, body(teacher.ID, sub.ID))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("assign: code = %v; body %s", rec.Code, rec.Body.String())
	}
	if _, message, _ := decodeEnvelope(t, rec); message != "Materia asignada al profesor exitosamente" {
		t.Errorf("assign: message = %q", message)
	}

	tests := []httpTest{
		{
			name: "duplicate pair", body: body(teacher.ID, sub.ID),
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, response{Message: "Esta materia ya está asignada a este profesor"}),
		},
		{
			name: "student as teacher", body: body(student.ID, sub.ID),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, response{Message: "Profesor no encontrado"}),
		},
		{
			name: "inactive subject", body: body(teacher.ID, inactive.ID),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, response{Message: "La materia debe estar activa"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/admin/teachers/assign-subject", token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// the duplicate attempt left a single row behind
	taught, err := env.schoolRepo.TeacherSubjects(context.Background(), teacher.ID)
	if err != nil {
		t.Fatalf("TeacherSubjects(): %v", err)
	}
	if len(taught) != 1 {
		t.Errorf("teacher subject rows = %d; want exactly 1", len(taught))
	}
}

func Test_adminApi_enrollStudent(t *testing.T) {
	env := setup(t)
	admin := createUser(t, env.usrRepo, "Root", "Admin", "admin@colegio.com", "password123", user.RoleAdmin, true)
	teacher := createUser(t, env.usrRepo, "Juan", "Pérez", "juan@colegio.com", "password123", user.RoleTeacher, true)
	student := createUser(t, env.usrRepo, "Ana", "Martínez", "ana@colegio.com", "password123", user.RoleStudent, true)
	token := getToken(t, env.conf, admin)

	grd := createGrade(t, env.schoolRepo, "1°", "", true)

	body := func(studentID, gradeID string) []byte {
		return []byte(fmt.Sprintf(`{"studentId":%q,"gradeId":%q}`, studentID, gradeID))
	}

	req, rec := newAuthRequest(http.MethodPost, "/api/admin/students/enroll", token, body(student.ID, grd.ID))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("enroll: code = %v; body %s", rec.Code, rec.Body.String())
	}
	if _, message, _ := decodeEnvelope(t, rec); message != "Estudiante inscrito en el grado exitosamente" {
		t.Errorf("enroll: message = %q", message)
	}

	tests := []httpTest{
		{
			name: "duplicate enrollment", body: body(student.ID, grd.ID),
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, response{Message: "Este estudiante ya está inscrito en este grado"}),
		},
		{
			name: "teacher as student", body: body(teacher.ID, grd.ID),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, response{Message: "Estudiante no encontrado"}),
		},
		{
			name: "admin as student", body: body(admin.ID, grd.ID),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, response{Message: "Estudiante no encontrado"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/admin/students/enroll", token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_adminApi_gradeDeactivation(t *testing.T) {
	env := setup(t)
	admin := createUser(t, env.usrRepo, "Root", "Admin", "admin@colegio.com", "password123", user.RoleAdmin, true)
	enrolled := createUser(t, env.usrRepo, "Ana", "Martínez", "ana@colegio.com", "password123", user.RoleStudent, true)
	latecomer := createUser(t, env.usrRepo, "Luis", "Rodríguez", "luis@colegio.com", "password123", user.RoleStudent, true)
	token := getToken(t, env.conf, admin)

	grd := createGrade(t, env.schoolRepo, "1°", "", true)

	body := func(studentID string) []byte {
		return []byte(fmt.Sprintf(`{"studentId":%q,"gradeId":%q}`, studentID, grd.ID))
	}

	req, rec := newAuthRequest(http.MethodPost, "/api/admin/students/enroll", token, body(enrolled.ID))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("enroll: code = %v; body %s", rec.Code, rec.Body.String())
	}

	// deactivate
	req, rec = newAuthRequest(http.MethodPatch, "/api/admin/grades/"+grd.ID+"/status", token, []byte(`{"activo":false}`))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: code = %v; body %s", rec.Code, rec.Body.String())
	}
	if _, message, _ := decodeEnvelope(t, rec); message != "Grado desactivado exitosamente" {
		t.Errorf("status: message = %q", message)
	}

	// existing enrollment survives
	students, err := env.schoolRepo.GradeStudents(context.Background(), grd.ID)
	if err != nil {
		t.Fatalf("GradeStudents(): %v", err)
	}
	if len(students) != 1 {
		t.Errorf("enrollment rows after deactivation = %d; want 1", len(students))
	}

	// new enrollments are rejected
	req, rec = newAuthRequest(http.MethodPost, "/api/admin/students/enroll", token, body(latecomer.ID))
	env.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, response{Message: "El grado debe estar activo"}),
	}, rec)
}

func Test_adminApi_studentInfo(t *testing.T) {
	env := setup(t)
	admin := createUser(t, env.usrRepo, "Root", "Admin", "admin@colegio.com", "password123", user.RoleAdmin, true)
	teacher := createUser(t, env.usrRepo, "Juan", "Pérez", "juan@colegio.com", "password123", user.RoleTeacher, true)
	student := createUser(t, env.usrRepo, "Ana", "Martínez", "ana@colegio.com", "password123", user.RoleStudent, true)
	token := getToken(t, env.conf, admin)

	grd := createGrade(t, env.schoolRepo, "1°", "", true)
	sub := createSubject(t, env.schoolRepo, "Matemáticas", "", true)

	assign := func(path string, body []byte) {
		req, rec := newAuthRequest(http.MethodPost, path, token, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("%s: code = %v; body %s", path, rec.Code, rec.Body.String())
		}
	}
	assign("/api/admin/grades/assign-subject", []byte(fmt.Sprintf(`{"gradeId":%q,"subjectId":%q}`, grd.ID, sub.ID)))
	assign("/api/admin/teachers/assign-subject", []byte(fmt.Sprintf(`{"teacherId":%q,"subjectId":%q}`, teacher.ID, sub.ID)))
	assign("/api/admin/students/enroll", []byte(fmt.Sprintf(`{"studentId":%q,"gradeId":%q}`, student.ID, grd.ID)))

	req, rec := newAuthRequest(http.MethodGet, "/api/admin/students/"+student.ID, token)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data struct {
			Student struct {
				Email string `json:"email"`
			} `json:"estudiante"`
			Grades []struct {
				Name     string `json:"nombre"`
				Subjects []struct {
					Name     string `json:"nombre"`
					Teachers []struct {
						Email string `json:"email"`
					} `json:"teachers"`
				} `json:"subjects"`
			} `json:"grados"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Data.Student.Email != "ana@colegio.com" {
		t.Errorf("estudiante.email = %q", body.Data.Student.Email)
	}
	if len(body.Data.Grades) != 1 || body.Data.Grades[0].Name != "1°" {
		t.Fatalf("grados = %+v; want single 1°", body.Data.Grades)
	}
	if len(body.Data.Grades[0].Subjects) != 1 || body.Data.Grades[0].Subjects[0].Name != "Matemáticas" {
		t.Fatalf("subjects = %+v; want single Matemáticas", body.Data.Grades[0].Subjects)
	}
	if len(body.Data.Grades[0].Subjects[0].Teachers) != 1 {
		t.Errorf("teachers = %+v; want single entry", body.Data.Grades[0].Subjects[0].Teachers)
	}

	// non-student id
	req, rec = newAuthRequest(http.MethodGet, "/api/admin/students/"+teacher.ID, token)
	env.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, response{Message: "Estudiante no encontrado"}),
	}, rec)
}

func Test_adminApi_exportGradeRoster(t *testing.T) {
	env := setup(t)
	admin := createUser(t, env.usrRepo, "Root", "Admin", "admin@colegio.com", "password123", user.RoleAdmin, true)
	student := createUser(t, env.usrRepo, "Ana", "Martínez", "ana@colegio.com", "password123", user.RoleStudent, true)
	token := getToken(t, env.conf, admin)

	grd := createGrade(t, env.schoolRepo, "1°", "", true)
	req, rec := newAuthRequest(http.MethodPost, "/api/admin/students/enroll", token,
		[]byte(fmt.Sprintf(`{"studentId":%q,"gradeId":%q}`, student.ID, grd.ID)))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("enroll: code = %v", rec.Code)
	}

	req, rec = newAuthRequest(http.MethodGet, "/api/admin/grades/"+grd.ID+"/export", token)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: code = %v; body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd == "" {
		t.Error("Content-Disposition header missing")
	}
	if rec.Body.Len() == 0 {
		t.Error("empty workbook body")
	}
}

package echoapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devbenja/colegio/core/user"
)

func Test_authApi_register(t *testing.T) {
	env := setup(t)
	createUser(t, env.usrRepo, "Carlos", "López", "taken@colegio.com", "password123", user.RoleStudent, true)

	tests := []httpTest{
		{
			name: "empty body", body: []byte(`{}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "invalid email", body: []byte(`{"nombre":"Ana","apellido":"Martínez","email":"nope","password":"password123"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "duplicate email", body: []byte(`{"nombre":"Ana","apellido":"Martínez","email":"taken@colegio.com","password":"password123"}`),
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, response{Message: "El email ya está registrado"}),
		},
		{
			name: "unknown role", body: []byte(`{"nombre":"Ana","apellido":"Martínez","email":"ana@colegio.com","password":"password123","role":"director"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "short password keys on json name", body: []byte(`{"nombre":"Ana","apellido":"Martínez","email":"ana@colegio.com","password":"corta1"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, response{
				Message: "Datos de entrada inválidos",
				Errors:  map[string]string{"password": "la contraseña debe tener al menos 8 caracteres"},
			}),
		},
		{
			name: "ok defaults to student", body: []byte(`{"nombre":"Ana","apellido":"Martínez","email":"ana@colegio.com","password":"password123"}`),
			wantCode: http.StatusCreated,
		},
		{
			name: "ok teacher", body: []byte(`{"nombre":"Juan","apellido":"Pérez","email":"juan@colegio.com","password":"password123","role":"profesor"}`),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/auth/register", tt.body)
			env.app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			if tt.wantCode != http.StatusCreated {
				return
			}

			success, message, data := decodeEnvelope(t, rec)
			if !success {
				t.Error("success = false; want true")
			}
			if message != "Usuario registrado exitosamente" {
				t.Errorf("message = %q", message)
			}
			if tok, _ := data["token"].(string); tok == "" {
				t.Error("token missing from payload")
			}
			if !hasSessionCookie(rec, env) {
				t.Error("session cookie not set")
			}
		})
	}
}

func Test_authApi_login(t *testing.T) {
	env := setup(t)
	createUser(t, env.usrRepo, "Ana", "Martínez", "ana@colegio.com", "password123", user.RoleStudent, true)
	createUser(t, env.usrRepo, "Beto", "Suárez", "beto@colegio.com", "password123", user.RoleStudent, false)

	tests := []httpTest{
		{
			name: "missing fields", body: []byte(`{}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown email", body: []byte(`{"email":"nadie@colegio.com","password":"password123"}`),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, response{Message: "Credenciales inválidas"}),
		},
		{
			name: "wrong password", body: []byte(`{"email":"ana@colegio.com","password":"nope"}`),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, response{Message: "Credenciales inválidas"}),
		},
		{
			name: "deactivated account", body: []byte(`{"email":"beto@colegio.com","password":"password123"}`),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, response{Message: "Usuario inactivo"}),
		},
		{
			name: "ok", body: []byte(`{"email":"ana@colegio.com","password":"password123"}`),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/auth/login", tt.body)
			env.app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			_, message, data := decodeEnvelope(t, rec)
			if message != "Login exitoso" {
				t.Errorf("message = %q", message)
			}
			usr, _ := data["user"].(map[string]interface{})
			if usr["email"] != "ana@colegio.com" {
				t.Errorf("user.email = %v", usr["email"])
			}
			if _, hasPwd := usr["password"]; hasPwd {
				t.Error("password leaked in payload")
			}
			if !hasSessionCookie(rec, env) {
				t.Error("session cookie not set")
			}
		})
	}
}

func Test_authApi_profile(t *testing.T) {
	env := setup(t)
	ana := createUser(t, env.usrRepo, "Ana", "Martínez", "ana@colegio.com", "password123", user.RoleStudent, true)
	gone := createUser(t, env.usrRepo, "Beto", "Suárez", "beto@colegio.com", "password123", user.RoleStudent, false)

	tests := []httpTest{
		{
			name: "no token", wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, response{Message: "Token de autenticación requerido"}),
		},
		{
			name: "garbage token", token: "lol.lol.lol", wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, response{Message: "Token inválido"}),
		},
		{
			name: "deactivated user", token: getToken(t, env.conf, gone), wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, response{Message: "Usuario no encontrado o inactivo"}),
		},
		{
			name: "ok", token: getToken(t, env.conf, ana), wantCode: http.StatusOK,
			wantData: marchallObj(t, response{Success: true, Data: ana}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/auth/profile", tt.token)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_authApi_profile_cookieToken(t *testing.T) {
	env := setup(t)
	ana := createUser(t, env.usrRepo, "Ana", "Martínez", "ana@colegio.com", "password123", user.RoleStudent, true)

	req, rec := newRequest(http.MethodGet, "/api/auth/profile")
	req.AddCookie(&http.Cookie{Name: env.conf.Server.CookieName, Value: getToken(t, env.conf, ana)})
	env.app.ServeHTTP(rec, req)

	tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, response{Success: true, Data: ana})}
	checkCodeAndData(t, tt, rec)
}

func Test_authApi_logout(t *testing.T) {
	env := setup(t)
	ana := createUser(t, env.usrRepo, "Ana", "Martínez", "ana@colegio.com", "password123", user.RoleStudent, true)

	req, rec := newAuthRequest(http.MethodPost, "/api/auth/logout", getToken(t, env.conf, ana))
	env.app.ServeHTTP(rec, req)

	tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, response{Success: true, Message: "Logout exitoso"})}
	checkCodeAndData(t, tt, rec)

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == env.conf.Server.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("session cookie not cleared")
	}
}

func Test_authApi_resetPassword(t *testing.T) {
	env := setup(t)
	createUser(t, env.usrRepo, "Ana", "Martínez", "ana@colegio.com", "password123", user.RoleStudent, true)

	wantData := marchallObj(t, response{
		Success: true,
		Message: "Si el email está asociado a una cuenta activa, recibirás instrucciones para restablecer tu contraseña",
	})
	tests := []httpTest{
		{name: "missing email", body: []byte(`{}`), wantCode: http.StatusBadRequest},
		{name: "unknown email", body: []byte(`{"email":"nadie@colegio.com"}`), wantCode: http.StatusOK, wantData: wantData},
		{name: "known email", body: []byte(`{"email":"ana@colegio.com"}`), wantCode: http.StatusOK, wantData: wantData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/auth/password-reset", tt.body)
			env.app.ServeHTTP(rec, req)
			if tt.wantData == nil {
				if rec.Code != tt.wantCode {
					t.Errorf("code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func hasSessionCookie(rec *httptest.ResponseRecorder, env *testEnv) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == env.conf.Server.CookieName && c.Value != "" && c.HttpOnly && c.Path == "/" {
			return true
		}
	}
	return false
}

package http

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaitanyaghughuskar/cdac-project/adapters/store"
	"github.com/chaitanyaghughuskar/cdac-project/adapters/tokenizer"
	"github.com/chaitanyaghughuskar/cdac-project/bridge"
	"github.com/chaitanyaghughuskar/cdac-project/core"
	"github.com/chaitanyaghughuskar/cdac-project/ports"
	"github.com/chaitanyaghughuskar/cdac-project/service"
	"github.com/chaitanyaghughuskar/cdac-project/webauthn"
)

const (
	testRPID   = "localhost"
	testOrigin = "http://localhost:5173"
)

type apiHarness struct {
	router    *gin.Engine
	tokenizer *tokenizer.JWTTokenizer
	device    *bridge.SoftAuthenticator
	geofence  *store.MemoryGeofenceStore
}

func newAPIHarness(t *testing.T) *apiHarness {
	gin.SetMode(gin.TestMode)

	challenges := store.NewMemoryChallengeStore()
	credentials := store.NewMemoryCredentialStore()
	tokens := store.NewMemoryTokenStore()
	attendance := store.NewMemoryAttendanceStore()
	geofence := store.NewMemoryGeofenceStore()
	subjects := store.StaticSubjectDirectory{"7": "Distributed Systems"}

	webauthnSvc, err := service.NewWebAuthnService(challenges, credentials, nil, testRPID, testOrigin, 2*time.Minute)
	require.NoError(t, err)
	qrSvc := service.NewQRService(tokens, attendance, subjects)
	attendanceSvc := service.NewAttendanceService(webauthnSvc, qrSvc, challenges, credentials, attendance, geofence, nil, 2*time.Minute)

	require.NoError(t, geofence.Set(context.Background(), core.GeofenceConfig{
		Latitude:       18.5204,
		Longitude:      73.8567,
		RadiusInMeters: 100,
	}))

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tk := tokenizer.NewJWTTokenizer(key, 15*time.Minute)

	handlers := NewHandlers(webauthnSvc, attendanceSvc, qrSvc, geofence)
	return &apiHarness{
		router:    SetupRouter(handlers, tk),
		tokenizer: tk,
		device:    bridge.NewSoftAuthenticator(),
		geofence:  geofence,
	}
}

func (h *apiHarness) token(t *testing.T, userID string, role core.Role) string {
	token, err := h.tokenizer.IdentityToToken(ports.Identity{UserID: userID, Role: role})
	require.NoError(t, err)
	return token
}

func (h *apiHarness) do(t *testing.T, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

// enroll drives the registration endpoints end to end.
func (h *apiHarness) enroll(t *testing.T, bearer, userID string) {
	w := h.do(t, http.MethodPost, "/webauthn/register/start", bearer, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var start struct {
		Challenge string `json:"challenge"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &start))
	challenge, err := webauthn.Decode(start.Challenge)
	require.NoError(t, err)

	creation, err := h.device.CreateCredential(context.Background(), ports.CeremonyOptions{
		RPID:      testRPID,
		Origin:    testOrigin,
		UserID:    userID,
		Challenge: challenge,
	})
	require.NoError(t, err)

	w = h.do(t, http.MethodPost, "/webauthn/register/finish", bearer, gin.H{
		"credentialId":      webauthn.Encode(creation.CredentialID),
		"clientDataJSON":    webauthn.Encode(creation.ClientDataJSON),
		"attestationObject": webauthn.Encode(creation.AttestationObject),
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequired(t *testing.T) {
	h := newAPIHarness(t)

	for _, path := range []string{"/webauthn/register/start", "/webauthn/auth/start"} {
		w := h.do(t, http.MethodPost, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)

		w = h.do(t, http.MethodPost, path, "garbage-token", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRoleGuards(t *testing.T) {
	h := newAPIHarness(t)
	student := h.token(t, "student-1", core.RoleStudent)
	faculty := h.token(t, "faculty-1", core.RoleFaculty)

	// students cannot reach faculty or admin surfaces
	w := h.do(t, http.MethodPost, "/faculty/qr/generate", student, gin.H{"subjectId": "7", "durationMinutes": 5})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodGet, "/admin/location", student, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// faculty cannot reach admin surfaces either
	w = h.do(t, http.MethodGet, "/admin/location", faculty, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRegisterAndMarkAttendance(t *testing.T) {
	h := newAPIHarness(t)
	student := h.token(t, "student-1", core.RoleStudent)
	faculty := h.token(t, "faculty-1", core.RoleFaculty)

	h.enroll(t, student, "student-1")

	w := h.do(t, http.MethodPost, "/faculty/qr/generate", faculty, gin.H{"subjectId": "7", "durationMinutes": 5})
	require.Equal(t, http.StatusOK, w.Code)
	var session struct {
		ID    string `json:"id"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))

	w = h.do(t, http.MethodPost, "/webauthn/auth/start", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var start struct {
		Challenge string `json:"challenge"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &start))
	challenge, err := webauthn.Decode(start.Challenge)
	require.NoError(t, err)

	assertion, err := h.device.GetAssertion(context.Background(), ports.CeremonyOptions{
		RPID:      testRPID,
		Origin:    testOrigin,
		UserID:    "student-1",
		Challenge: challenge,
	})
	require.NoError(t, err)

	w = h.do(t, http.MethodPost, "/webauthn/auth/finish", student, gin.H{
		"credentialId":      webauthn.Encode(assertion.CredentialID),
		"clientDataJSON":    webauthn.Encode(assertion.ClientDataJSON),
		"authenticatorData": webauthn.Encode(assertion.AuthenticatorData),
		"signature":         webauthn.Encode(assertion.Signature),
		"token":             session.Token,
		"latitude":          18.5204,
		"longitude":         73.8567,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var rec struct {
		SessionID string `json:"sessionId"`
		Status    string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, session.ID, rec.SessionID)
	assert.Equal(t, core.StatusPresent, rec.Status)

	// the session listing now shows one attendee
	w = h.do(t, http.MethodGet, "/faculty/sessions", faculty, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sessions []struct {
		AttendanceCount int `json:"attendanceCount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, 1, sessions[0].AttendanceCount)
}

func TestMarkAttendanceAtZeroLongitude(t *testing.T) {
	h := newAPIHarness(t)
	student := h.token(t, "student-1", core.RoleStudent)
	faculty := h.token(t, "faculty-1", core.RoleFaculty)

	// a campus on the prime meridian: longitude 0 is a legal coordinate
	// and must survive request binding
	require.NoError(t, h.geofence.Set(context.Background(), core.GeofenceConfig{
		Latitude:       51.4779,
		Longitude:      0.0,
		RadiusInMeters: 100,
	}))

	h.enroll(t, student, "student-1")

	w := h.do(t, http.MethodPost, "/faculty/qr/generate", faculty, gin.H{"subjectId": "7", "durationMinutes": 5})
	require.Equal(t, http.StatusOK, w.Code)
	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))

	w = h.do(t, http.MethodPost, "/webauthn/auth/start", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var start struct {
		Challenge string `json:"challenge"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &start))
	challenge, err := webauthn.Decode(start.Challenge)
	require.NoError(t, err)

	assertion, err := h.device.GetAssertion(context.Background(), ports.CeremonyOptions{
		RPID:      testRPID,
		Origin:    testOrigin,
		UserID:    "student-1",
		Challenge: challenge,
	})
	require.NoError(t, err)

	w = h.do(t, http.MethodPost, "/webauthn/auth/finish", student, gin.H{
		"credentialId":      webauthn.Encode(assertion.CredentialID),
		"clientDataJSON":    webauthn.Encode(assertion.ClientDataJSON),
		"authenticatorData": webauthn.Encode(assertion.AuthenticatorData),
		"signature":         webauthn.Encode(assertion.Signature),
		"token":             session.Token,
		"latitude":          51.4779,
		"longitude":         0.0,
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDuplicateRegistrationConflict(t *testing.T) {
	h := newAPIHarness(t)
	student := h.token(t, "student-1", core.RoleStudent)

	h.enroll(t, student, "student-1")

	// a second full ceremony for the same user hits the write-once gate
	w := h.do(t, http.MethodPost, "/webauthn/register/start", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var start struct {
		Challenge string `json:"challenge"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &start))
	challenge, err := webauthn.Decode(start.Challenge)
	require.NoError(t, err)

	creation, err := h.device.CreateCredential(context.Background(), ports.CeremonyOptions{
		RPID:      testRPID,
		Origin:    testOrigin,
		UserID:    "student-1",
		Challenge: challenge,
	})
	require.NoError(t, err)

	w = h.do(t, http.MethodPost, "/webauthn/register/finish", student, gin.H{
		"credentialId":      webauthn.Encode(creation.CredentialID),
		"clientDataJSON":    webauthn.Encode(creation.ClientDataJSON),
		"attestationObject": webauthn.Encode(creation.AttestationObject),
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already registered")

	// after an explicit reset, enrollment works again
	w = h.do(t, http.MethodDelete, "/webauthn/reset", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	h.enroll(t, student, "student-1")
}

func TestAuthStartWithoutCredential(t *testing.T) {
	h := newAPIHarness(t)
	student := h.token(t, "student-1", core.RoleStudent)

	w := h.do(t, http.MethodPost, "/webauthn/auth/start", student, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No fingerprint registered")
}

func TestAuthFinishFailuresAreOpaque(t *testing.T) {
	h := newAPIHarness(t)
	student := h.token(t, "student-1", core.RoleStudent)
	h.enroll(t, student, "student-1")

	w := h.do(t, http.MethodPost, "/webauthn/auth/start", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var start struct {
		Challenge string `json:"challenge"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &start))
	challenge, err := webauthn.Decode(start.Challenge)
	require.NoError(t, err)

	assertion, err := h.device.GetAssertion(context.Background(), ports.CeremonyOptions{
		RPID:      testRPID,
		Origin:    testOrigin,
		UserID:    "student-1",
		Challenge: challenge,
	})
	require.NoError(t, err)

	// valid assertion, nonexistent token: the response must not reveal
	// which check failed
	w = h.do(t, http.MethodPost, "/webauthn/auth/finish", student, gin.H{
		"credentialId":      webauthn.Encode(assertion.CredentialID),
		"clientDataJSON":    webauthn.Encode(assertion.ClientDataJSON),
		"authenticatorData": webauthn.Encode(assertion.AuthenticatorData),
		"signature":         webauthn.Encode(assertion.Signature),
		"token":             "no-such-token",
		"latitude":          18.5204,
		"longitude":         73.8567,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Attendance marking failed")
	assert.NotContains(t, w.Body.String(), "token")
}

func TestAdminLocationRoundTrip(t *testing.T) {
	h := newAPIHarness(t)
	admin := h.token(t, "admin-1", core.RoleAdmin)

	w := h.do(t, http.MethodPost, "/admin/location", admin, gin.H{
		"latitude":       18.5204,
		"longitude":      73.8567,
		"radiusInMeters": 250,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodGet, "/admin/location", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cfg core.GeofenceConfig
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cfg))
	assert.Equal(t, 250.0, cfg.RadiusInMeters)
}

func TestAdminLocationRejectsInvalid(t *testing.T) {
	h := newAPIHarness(t)
	admin := h.token(t, "admin-1", core.RoleAdmin)

	w := h.do(t, http.MethodPost, "/admin/location", admin, gin.H{
		"latitude":       95.0,
		"longitude":      73.8567,
		"radiusInMeters": 250,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPost, "/admin/location", admin, gin.H{
		"latitude":  18.5204,
		"longitude": 73.8567,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

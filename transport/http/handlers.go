package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chaitanyaghughuskar/cdac-project/core"
	"github.com/chaitanyaghughuskar/cdac-project/logging"
	"github.com/chaitanyaghughuskar/cdac-project/ports"
	"github.com/chaitanyaghughuskar/cdac-project/service"
	"github.com/chaitanyaghughuskar/cdac-project/webauthn"
)

// Handlers contains the HTTP handlers for the attendance protocol
// endpoints.
type Handlers struct {
	webauthnService   *service.WebAuthnService
	attendanceService *service.AttendanceService
	qrService         *service.QRService
	geofence          ports.GeofenceStore
}

// NewHandlers creates the handler set.
func NewHandlers(
	webauthnService *service.WebAuthnService,
	attendanceService *service.AttendanceService,
	qrService *service.QRService,
	geofence ports.GeofenceStore,
) *Handlers {
	return &Handlers{
		webauthnService:   webauthnService,
		attendanceService: attendanceService,
		qrService:         qrService,
		geofence:          geofence,
	}
}

// RegisterStart issues a registration challenge for the caller.
func (h *Handlers) RegisterStart(c *gin.Context) {
	identity, _ := currentIdentity(c)

	challenge, err := h.webauthnService.StartRegistration(c.Request.Context(), identity.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create challenge"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"challenge": webauthn.Encode(challenge.Value)})
}

type registerFinishRequest struct {
	CredentialID      string `json:"credentialId" binding:"required"`
	ClientDataJSON    string `json:"clientDataJSON" binding:"required"`
	AttestationObject string `json:"attestationObject" binding:"required"`
}

// RegisterFinish completes the enrollment ceremony.
func (h *Handlers) RegisterFinish(c *gin.Context) {
	identity, _ := currentIdentity(c)

	var req registerFinishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	credentialID, err1 := webauthn.Decode(req.CredentialID)
	clientDataJSON, err2 := webauthn.Decode(req.ClientDataJSON)
	attestationObject, err3 := webauthn.Decode(req.AttestationObject)
	if err1 != nil || err2 != nil || err3 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid encoding"})
		return
	}

	err := h.webauthnService.FinishRegistration(c.Request.Context(), service.RegisterRequest{
		UserID:            identity.UserID,
		CredentialID:      credentialID,
		ClientDataJSON:    clientDataJSON,
		AttestationObject: attestationObject,
	})
	if err != nil {
		status := http.StatusBadRequest
		msg := "Registration failed"
		if errors.Is(err, core.ErrAlreadyEnrolled) {
			status = http.StatusConflict
			msg = "Fingerprint already registered. Clear registration first."
		}
		logging.Logger.WithError(err).WithField("user", identity.UserID).Info("registration rejected")
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Fingerprint registered"})
}

// Reset clears the caller's credential binding.
func (h *Handlers) Reset(c *gin.Context) {
	identity, _ := currentIdentity(c)

	if err := h.webauthnService.Reset(c.Request.Context(), identity.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear registration"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Registration cleared"})
}

// AuthStart issues an assertion challenge for the caller.
func (h *Handlers) AuthStart(c *gin.Context) {
	identity, _ := currentIdentity(c)

	challenge, err := h.attendanceService.StartAssertion(c.Request.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNoCredential) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No fingerprint registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create challenge"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"challenge": webauthn.Encode(challenge.Value)})
}

type authFinishRequest struct {
	CredentialID      string  `json:"credentialId" binding:"required"`
	ClientDataJSON    string  `json:"clientDataJSON" binding:"required"`
	AuthenticatorData string  `json:"authenticatorData" binding:"required"`
	Signature         string  `json:"signature" binding:"required"`
	Token             string  `json:"token" binding:"required"`

	// No required binding on the coordinates: gin treats a zero float as
	// absent, and latitude or longitude 0 is a legal position. The
	// geofence check is the arbiter.
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type attendanceResponse struct {
	ID        string  `json:"id"`
	SessionID string  `json:"sessionId"`
	Status    string  `json:"status"`
	MarkedAt  string  `json:"markedAt"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AuthFinish verifies the assertion and marks attendance. Verification
// failures come back as one generic message; the specific kind is logged
// server-side so the endpoint doesn't confirm token existence or
// geofence boundaries to a probing client.
func (h *Handlers) AuthFinish(c *gin.Context) {
	identity, _ := currentIdentity(c)

	var req authFinishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	credentialID, err1 := webauthn.Decode(req.CredentialID)
	clientDataJSON, err2 := webauthn.Decode(req.ClientDataJSON)
	authenticatorData, err3 := webauthn.Decode(req.AuthenticatorData)
	signature, err4 := webauthn.Decode(req.Signature)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid encoding"})
		return
	}

	rec, err := h.attendanceService.FinishAssertionAndMark(c.Request.Context(), service.FinishRequest{
		UserID:            identity.UserID,
		CredentialID:      credentialID,
		ClientDataJSON:    clientDataJSON,
		AuthenticatorData: authenticatorData,
		Signature:         signature,
		Token:             req.Token,
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
	})
	if err != nil {
		switch {
		case errors.Is(err, core.ErrGeofenceNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Attendance marking unavailable"})
		case errors.Is(err, core.ErrOutOfRange):
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not within the campus area"})
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Attendance marking failed"})
		}
		return
	}

	c.JSON(http.StatusOK, attendanceResponse{
		ID:        rec.ID,
		SessionID: rec.SessionID,
		Status:    rec.Status,
		MarkedAt:  rec.MarkedAt.Format("2006-01-02T15:04:05Z07:00"),
		Latitude:  rec.Latitude,
		Longitude: rec.Longitude,
	})
}

type qrGenerateRequest struct {
	SubjectID       string `json:"subjectId" binding:"required"`
	DurationMinutes int    `json:"durationMinutes" binding:"required,gt=0"`
}

// QRGenerate creates a new attendance window token.
func (h *Handlers) QRGenerate(c *gin.Context) {
	identity, _ := currentIdentity(c)

	var req qrGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	session, err := h.qrService.Generate(c.Request.Context(), identity.UserID, req.SubjectID, req.DurationMinutes)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to generate session"})
		return
	}

	c.JSON(http.StatusOK, session)
}

// FacultySessions lists the caller's QR sessions.
func (h *Handlers) FacultySessions(c *gin.Context) {
	identity, _ := currentIdentity(c)

	sessions, err := h.qrService.SessionsForFaculty(c.Request.Context(), identity.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sessions"})
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// SessionAttendance lists the records for one of the caller's sessions.
func (h *Handlers) SessionAttendance(c *gin.Context) {
	identity, _ := currentIdentity(c)

	records, err := h.qrService.SessionAttendance(c.Request.Context(), identity.UserID, c.Param("id"))
	if err != nil {
		if errors.Is(err, core.ErrTokenNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this session"})
		return
	}

	c.JSON(http.StatusOK, records)
}

// GetLocation returns the campus geofence config.
func (h *Handlers) GetLocation(c *gin.Context) {
	cfg, ok, err := h.geofence.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load location"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campus location not configured"})
		return
	}

	c.JSON(http.StatusOK, cfg)
}

// SetLocation replaces the campus geofence config.
func (h *Handlers) SetLocation(c *gin.Context) {
	var cfg core.GeofenceConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if !cfg.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid campus location"})
		return
	}

	if err := h.geofence.Set(c.Request.Context(), cfg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save location"})
		return
	}

	c.JSON(http.StatusOK, cfg)
}

// DeleteAttendance removes a record, the admin correction path.
func (h *Handlers) DeleteAttendance(c *gin.Context) {
	if err := h.attendanceService.DeleteRecord(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Record deleted"})
}

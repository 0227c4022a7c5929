package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/chaitanyaghughuskar/cdac-project/core"
	"github.com/chaitanyaghughuskar/cdac-project/logging"
	"github.com/chaitanyaghughuskar/cdac-project/ports"
)

// AttendanceService is the protocol core: it binds possession of a
// registered authenticator, a live faculty token and physical proximity
// to campus into one atomic attendance decision.
type AttendanceService struct {
	webauthn    *WebAuthnService
	qr          *QRService
	challenges  ports.ChallengeStore
	credentials ports.CredentialRegistry
	attendance  ports.AttendanceStore
	geofence    ports.GeofenceStore
	events      ports.EventPublisher

	challengeTTL time.Duration
	now          func() time.Time
}

// NewAttendanceService creates the attendance protocol orchestrator.
func NewAttendanceService(
	webauthnService *WebAuthnService,
	qrService *QRService,
	challenges ports.ChallengeStore,
	credentials ports.CredentialRegistry,
	attendance ports.AttendanceStore,
	geofence ports.GeofenceStore,
	events ports.EventPublisher,
	challengeTTL time.Duration,
) *AttendanceService {
	return &AttendanceService{
		webauthn:     webauthnService,
		qr:           qrService,
		challenges:   challenges,
		credentials:  credentials,
		attendance:   attendance,
		geofence:     geofence,
		events:       events,
		challengeTTL: challengeTTL,
		now:          time.Now,
	}
}

// FinishRequest is one complete mark-attendance submission.
type FinishRequest struct {
	UserID            string
	CredentialID      []byte
	ClientDataJSON    []byte
	AuthenticatorData []byte
	Signature         []byte
	Token             string
	Latitude          float64
	Longitude         float64
}

// StartAssertion issues an assertion challenge for a student who has a
// registered credential.
func (s *AttendanceService) StartAssertion(ctx context.Context, userID string) (core.Challenge, error) {
	if _, err := s.credentials.LookupByUser(ctx, userID); err != nil {
		return core.Challenge{}, err
	}
	return s.challenges.Issue(ctx, userID, core.PurposeAssertion, s.challengeTTL)
}

// FinishAssertionAndMark walks the attempt state machine to a terminal
// state. Check order is part of the contract: the single-use challenge
// and signature are verified before the token, and the token before the
// geofence, so a failed attempt leaks nothing about the later checks.
func (s *AttendanceService) FinishAssertionAndMark(ctx context.Context, req FinishRequest) (core.AttendanceRecord, error) {
	state := core.StateAssertionReceived

	fail := func(err error) (core.AttendanceRecord, error) {
		logging.Logger.WithError(err).
			WithField("state", state).
			WithField("student", req.UserID).
			Info("attendance attempt failed")
		return core.AttendanceRecord{}, err
	}

	cred, newCount, err := s.webauthn.VerifyAssertion(ctx, AssertionRequest{
		UserID:            req.UserID,
		CredentialID:      req.CredentialID,
		ClientDataJSON:    req.ClientDataJSON,
		AuthenticatorData: req.AuthenticatorData,
		Signature:         req.Signature,
	})
	if err != nil {
		return fail(err)
	}

	token, err := s.qr.Validate(ctx, req.Token)
	if err != nil {
		return fail(err)
	}
	state = core.StateTokenValidated

	cfg, ok, err := s.geofence.Get(ctx)
	if err != nil {
		return fail(err)
	}
	if !ok || !cfg.Valid() {
		// An unset or half-set campus location rejects everything
		// rather than silently letting attempts through.
		return fail(core.ErrGeofenceNotConfigured)
	}
	if !cfg.IsWithin(req.Latitude, req.Longitude) {
		return fail(core.ErrOutOfRange)
	}
	state = core.StateLocationValidated

	rec := core.AttendanceRecord{
		ID:        uuid.New().String(),
		SessionID: token.ID,
		StudentID: req.UserID,
		Status:    core.StatusPresent,
		MarkedAt:  s.now(),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}

	stored, created, err := s.attendance.Create(ctx, rec)
	if err != nil {
		return fail(err)
	}
	state = core.StateRecorded

	// The counter advances on every valid assertion, duplicates
	// included, or a legitimate retry would look like a clone later.
	if err := s.credentials.UpdateSignCount(ctx, cred.CredentialID, newCount); err != nil {
		logging.Logger.WithError(err).Warn("failed to persist sign count")
	}

	if !created {
		// Duplicate submission: the earlier record is the answer. Client
		// retries and double-taps land here, never in an error.
		return stored, nil
	}

	if s.events != nil {
		if err := s.events.PublishAttendanceMarked(ctx, stored); err != nil {
			logging.Logger.WithError(err).Warn("failed to publish attendance.marked")
		}
	}

	return stored, nil
}

// DeleteRecord removes an attendance record. Admin correction only;
// students can never delete their own marks.
func (s *AttendanceService) DeleteRecord(ctx context.Context, recordID string) error {
	return s.attendance.Delete(ctx, recordID)
}

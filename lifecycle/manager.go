package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/linesmerrill/fir-api/databases"
	"github.com/linesmerrill/fir-api/models"
)

// suggestionCount is how many sections are requested from the classifier
const suggestionCount = 5

var validate = validator.New()

// Translator turns text into English. Errors mean no translation is available.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Classifier suggests penal-code sections for an incident description
type Classifier interface {
	Suggest(ctx context.Context, text string, k int) ([]models.Suggestion, error)
}

// Notifier stores a notification for the owner of a FIR
type Notifier interface {
	Append(ctx context.Context, notice models.Notice) (*models.Notification, error)
}

// Manager owns the FIR lifecycle: creation, reads, status transitions and
// archival, with access control and owner notifications
type Manager struct {
	Store      databases.FIRStore
	Profiles   databases.ProfileDatabase
	Translator Translator
	Classifier Classifier
	Notifier   Notifier

	now   func() time.Time
	newID func() string
}

// NewManager wires a Manager. translator and classifier may be nil, in which
// case submissions are stored degraded.
func NewManager(store databases.FIRStore, profiles databases.ProfileDatabase, translator Translator, classifier Classifier, notifier Notifier) *Manager {
	return &Manager{
		Store:      store,
		Profiles:   profiles,
		Translator: translator,
		Classifier: classifier,
		Notifier:   notifier,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      func() string { return uuid.New().String() },
	}
}

// Submit validates and stores a new FIR on behalf of the identity
func (m *Manager) Submit(ctx context.Context, id models.Identity, req models.FIRRequest) (Receipt, error) {
	if strings.TrimSpace(req.Text) == "" {
		return Receipt{}, fmt.Errorf("%w: FIR description is required", ErrValidation)
	}
	if err := validate.Struct(req); err != nil {
		return Receipt{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	language := strings.ToLower(strings.TrimSpace(req.Language))
	if language == "" {
		language = "en"
	}

	var receipt Receipt
	translated := m.translate(ctx, req.Text, language)
	if translated.Degraded() {
		receipt.Degraded = append(receipt.Degraded, Degradation{Reason: translated.Reason, Err: translated.Err})
	}
	suggestions := m.suggest(ctx, translated.Value)
	if suggestions.Degraded() {
		receipt.Degraded = append(receipt.Degraded, Degradation{Reason: suggestions.Reason, Err: suggestions.Err})
	}

	now := m.now()
	fir := models.FIR{
		ID:                 m.newID(),
		UserID:             id.UserID,
		OriginalText:       req.Text,
		TranslatedText:     translated.Value,
		Language:           language,
		IncidentDate:       req.IncidentDate,
		IncidentTime:       req.IncidentTime,
		Location:           req.Location,
		StationID:          req.StationID,
		Status:             models.StatusPending,
		ApplicableSections: []string{},
		AISuggestions:      suggestions.Value,
		SubmissionDate:     now,
		LastUpdated:        now,
	}

	if id.IsPolice() {
		fir.ComplainantName = orPlaceholder(req.ComplainantName, models.UnknownName)
		fir.ComplainantPhone = orPlaceholder(req.ComplainantPhone, models.NotAvailable)
		fir.ComplainantAadhar = orPlaceholder(req.ComplainantAadhar, models.NotAvailable)
		fir.ComplainantEmail = orPlaceholder(req.ComplainantEmail, models.NotAvailable)
		fir.Source = models.SourcePoliceManual
		if fir.StationID == "" {
			fir.StationID = id.StationID
		}
	} else {
		var profile models.UserProfile
		if p, err := m.Profiles.GetProfile(ctx, id.UserID); err == nil {
			profile = *p
		} else if !errors.Is(err, mongo.ErrNoDocuments) {
			zap.S().Warnw("failed to load complainant profile", "userId", id.UserID, "error", err)
		}
		fir.ComplainantName = orPlaceholder(profile.FullName, models.UnknownName)
		fir.ComplainantPhone = orPlaceholder(profile.Phone, models.NotAvailable)
		fir.ComplainantAadhar = orPlaceholder(profile.Aadhar, models.NotAvailable)
		fir.ComplainantEmail = orPlaceholder(profile.Email, models.NotAvailable)
		fir.Source = models.SourceCitizenPortal
	}

	if err := m.Store.Insert(ctx, fir); err != nil {
		return Receipt{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	submissionsTotal.WithLabelValues(fir.Source).Inc()
	for _, d := range receipt.Degraded {
		degradedTotal.WithLabelValues(string(d.Reason)).Inc()
	}
	zap.S().Infow("fir submitted",
		"firId", fir.ID,
		"source", fir.Source,
		"language", language,
		"degraded", receipt.Reasons(),
	)

	receipt.ID = fir.ID
	return receipt, nil
}

func (m *Manager) translate(ctx context.Context, text, language string) Outcome[string] {
	if language == "en" {
		return Outcome[string]{Value: text}
	}
	if m.Translator == nil {
		return Outcome[string]{Value: text, Reason: DegradedTranslation, Err: errors.New("no translator configured")}
	}
	translated, err := m.Translator.Translate(ctx, text, "auto", "en")
	if err == nil && strings.TrimSpace(translated) == "" {
		err = errors.New("empty translation")
	}
	if err != nil {
		zap.S().Warnw("translation failed, keeping original text", "language", language, "error", err)
		return Outcome[string]{Value: text, Reason: DegradedTranslation, Err: err}
	}
	return Outcome[string]{Value: translated}
}

func (m *Manager) suggest(ctx context.Context, text string) Outcome[[]models.Suggestion] {
	empty := []models.Suggestion{}
	if m.Classifier == nil {
		return Outcome[[]models.Suggestion]{Value: empty, Reason: DegradedClassification, Err: errors.New("no classifier configured")}
	}
	suggestions, err := m.Classifier.Suggest(ctx, text, suggestionCount)
	if err != nil {
		zap.S().Warnw("section suggestion failed", "error", err)
		return Outcome[[]models.Suggestion]{Value: empty, Reason: DegradedClassification, Err: err}
	}
	if suggestions == nil {
		suggestions = empty
	}
	return Outcome[[]models.Suggestion]{Value: suggestions}
}

// ListOwn returns the caller's active and archived FIRs, newest first
func (m *Manager) ListOwn(ctx context.Context, id models.Identity) ([]models.FIR, error) {
	filter := bson.M{"user_id": id.UserID}
	active, err := m.Store.FindActive(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	archived, err := m.Store.FindArchived(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	firs := append(active, archived...)
	sortNewestFirst(firs)
	if firs == nil {
		firs = []models.FIR{}
	}
	return firs, nil
}

// ListPending returns the pending and in-progress FIRs of the officer's station
func (m *Manager) ListPending(ctx context.Context, id models.Identity) ([]models.FIR, error) {
	if !Allowed(id, ActionListPending, nil) {
		return nil, fmt.Errorf("%w: only police can list pending FIRs", ErrForbidden)
	}
	filter := bson.M{"status": bson.M{"$in": []models.Status{models.StatusPending, models.StatusInProgress}}}
	if id.StationID != "" {
		filter["station_id"] = id.StationID
	}
	firs, err := m.Store.FindActive(ctx, filter, newestFirst())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	sortNewestFirst(firs)
	if firs == nil {
		firs = []models.FIR{}
	}
	return firs, nil
}

// ListArchived returns archived FIRs: every archive for police, the caller's
// own for citizens. Police see all stations here, unlike ListPending.
func (m *Manager) ListArchived(ctx context.Context, id models.Identity) ([]models.FIR, error) {
	filter := bson.M{}
	if !Allowed(id, ActionListAllArchives, nil) {
		filter["user_id"] = id.UserID
	}
	firs, err := m.Store.FindArchived(ctx, filter, newestFirst())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	sortNewestFirst(firs)
	if firs == nil {
		firs = []models.FIR{}
	}
	return firs, nil
}

// Get returns a single FIR from either collection if the identity may read it
func (m *Manager) Get(ctx context.Context, id models.Identity, firID string) (*models.FIR, error) {
	fir, _, err := m.Store.Get(ctx, firID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: FIR %s", ErrNotFound, firID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !Allowed(id, ActionRead, fir) {
		return nil, fmt.Errorf("%w: FIR %s belongs to another user", ErrForbidden, firID)
	}

	m.backfillComplainant(ctx, fir)
	return fir, nil
}

// backfillComplainant fills missing complainant contact fields of citizen
// submissions from the current profile. The stored record is left untouched.
func (m *Manager) backfillComplainant(ctx context.Context, fir *models.FIR) {
	if fir.Source != models.SourceCitizenPortal || !missingComplainant(fir) {
		return
	}
	profile, err := m.Profiles.GetProfile(ctx, fir.UserID)
	if err != nil {
		zap.S().Debugw("complainant backfill skipped", "firId", fir.ID, "error", err)
		return
	}
	if isMissing(fir.ComplainantName, models.UnknownName) {
		fir.ComplainantName = orPlaceholder(profile.FullName, models.UnknownName)
	}
	if isMissing(fir.ComplainantPhone, models.NotAvailable) {
		fir.ComplainantPhone = orPlaceholder(profile.Phone, models.NotAvailable)
	}
	if isMissing(fir.ComplainantAadhar, models.NotAvailable) {
		fir.ComplainantAadhar = orPlaceholder(profile.Aadhar, models.NotAvailable)
	}
	if isMissing(fir.ComplainantEmail, models.NotAvailable) {
		fir.ComplainantEmail = orPlaceholder(profile.Email, models.NotAvailable)
	}
}

// Transition applies a police status update to an active FIR
func (m *Manager) Transition(ctx context.Context, id models.Identity, firID string, req models.FIRUpdateRequest) error {
	next, err := ParseStatus(string(req.Status))
	if err != nil {
		return err
	}
	if !Allowed(id, ActionTransition, nil) {
		return fmt.Errorf("%w: only police can update FIRs", ErrForbidden)
	}

	old, loc, err := m.Store.Get(ctx, firID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: FIR %s", ErrNotFound, firID)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if loc == databases.LocationArchive {
		return fmt.Errorf("%w: FIR %s can no longer be updated", ErrArchived, firID)
	}
	if !CanTransition(old.Status, next) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, old.Status, next)
	}

	now := m.now()
	changed := old.Status != next

	if next == models.StatusResolved {
		merged := *old
		merged.Status = next
		merged.PoliceNotes = req.PoliceNotes
		merged.LastUpdated = now
		if len(req.ApplicableSections) > 0 {
			merged.ApplicableSections = req.ApplicableSections
		}
		if err := m.Store.Archive(ctx, merged, old.Status); err != nil {
			if errors.Is(err, databases.ErrFIRChanged) {
				return fmt.Errorf("%w: FIR %s was updated by someone else", ErrConflict, firID)
			}
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		m.recordTransition(old, next)
		if changed {
			m.notify(ctx, old, resolvedMessage(old.ID))
		}
		return nil
	}

	set := bson.M{
		"status":       next,
		"police_notes": req.PoliceNotes,
		"last_updated": now,
	}
	if len(req.ApplicableSections) > 0 {
		set["applicable_sections"] = req.ApplicableSections
	}
	matched, err := m.Store.UpdateActive(ctx, firID, old.Status, set)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !matched {
		return fmt.Errorf("%w: FIR %s was updated by someone else", ErrConflict, firID)
	}
	m.recordTransition(old, next)
	if changed {
		m.notify(ctx, old, statusMessage(old.ID, next))
	}
	return nil
}

func (m *Manager) recordTransition(old *models.FIR, next models.Status) {
	transitionsTotal.WithLabelValues(string(old.Status), string(next)).Inc()
	zap.S().Infow("fir updated", "firId", old.ID, "from", old.Status, "to", next)
}

// notify runs after the status change is committed. A failure here leaves the
// FIR updated without a notification; it is logged and counted, not retried.
func (m *Manager) notify(ctx context.Context, fir *models.FIR, message string) {
	if m.Notifier == nil {
		return
	}
	notice := models.Notice{
		RecipientID: fir.UserID,
		Name:        fir.ComplainantName,
		Message:     message,
	}
	if !isMissing(fir.ComplainantEmail, models.NotAvailable) {
		notice.Email = fir.ComplainantEmail
	}
	if _, err := m.Notifier.Append(ctx, notice); err != nil {
		notificationFailuresTotal.Inc()
		zap.S().Errorw("failed to store fir notification", "firId", fir.ID, "userId", fir.UserID, "error", err)
	}
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "submission_date", Value: -1}, {Key: "_id", Value: 1}})
}

// sortNewestFirst orders by submission date descending, then id ascending
func sortNewestFirst(firs []models.FIR) {
	sort.SliceStable(firs, func(i, j int) bool {
		if !firs[i].SubmissionDate.Equal(firs[j].SubmissionDate) {
			return firs[i].SubmissionDate.After(firs[j].SubmissionDate)
		}
		return firs[i].ID < firs[j].ID
	})
}

func orPlaceholder(v, placeholder string) string {
	if strings.TrimSpace(v) == "" {
		return placeholder
	}
	return v
}

func isMissing(v, placeholder string) bool {
	return strings.TrimSpace(v) == "" || v == placeholder
}

func missingComplainant(fir *models.FIR) bool {
	return isMissing(fir.ComplainantName, models.UnknownName) ||
		isMissing(fir.ComplainantPhone, models.NotAvailable) ||
		isMissing(fir.ComplainantAadhar, models.NotAvailable) ||
		isMissing(fir.ComplainantEmail, models.NotAvailable)
}

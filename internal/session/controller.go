// Package session owns the per-session clinical inputs and sequences the
// extraction and plan generation operations over them.
//
// A Controller runs at most one asynchronous operation at a time. Actions
// dispatch synchronously and resolve on a channel. ClearAll is allowed while
// an operation is in flight; the late result is discarded because it belongs
// to an older generation of the session.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/jackzampolin/careplan/internal/clinical"
	"github.com/jackzampolin/careplan/internal/plan"
	"github.com/jackzampolin/careplan/internal/vocab"
)

// ErrBusy is returned when an action would start a second operation.
var ErrBusy = errors.New("another operation is in progress")

// Extractor turns an image into text.
type Extractor interface {
	Extract(ctx context.Context, img *clinical.UploadedImage) (string, error)
}

// Planner generates a plan from a clinical context.
type Planner interface {
	Generate(ctx context.Context, c clinical.Context) (*plan.Result, error)
}

// Config configures a Controller.
type Config struct {
	ID         string
	Vocabulary *vocab.Set
	Extractor  Extractor // nil: extraction fails with an ExtractionError
	Planner    Planner   // nil: plans come from the local suggestion table
	Logger     *slog.Logger

	// Context is the parent of every dispatched operation. Operations are
	// not cancelled by session actions.
	Context context.Context
}

// Controller is the state machine for one session.
type Controller struct {
	id        string
	vocab     *vocab.Set
	extractor Extractor
	planner   Planner
	logger    *slog.Logger
	baseCtx   context.Context

	mu         sync.Mutex
	generation uint64
	inFlight   bool

	state     State
	operation Operation

	patientName    string
	symptoms       string
	medicalHistory string
	symptomSugg    []string
	historySugg    []string

	image         *clinical.UploadedImage
	extractedText string
	plan          *plan.Result

	err    *clinical.OperationError
	notice string
}

// New creates a controller in the Idle state.
func New(cfg Config) *Controller {
	if cfg.Vocabulary == nil {
		cfg.Vocabulary = vocab.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	return &Controller{
		id:        cfg.ID,
		vocab:     cfg.Vocabulary,
		extractor: cfg.Extractor,
		planner:   cfg.Planner,
		logger:    cfg.Logger.With("session_id", cfg.ID),
		baseCtx:   cfg.Context,
		state:     StateIdle,
	}
}

// ID returns the session identifier.
func (c *Controller) ID() string {
	return c.id
}

// Mode reports whether plans come from inference or the local table.
func (c *Controller) Mode() plan.Source {
	if c.planner == nil {
		return plan.SourceLocal
	}
	return plan.SourceInference
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// EditField replaces a field's text and recomputes its suggestions.
func (c *Controller) EditField(field vocab.Field, text string) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.setFieldLocked(field, text); err != nil {
		return c.snapshotLocked(), err
	}
	c.suggestLocked(field, vocab.Match(text, c.vocab.For(field)))
	return c.snapshotLocked(), nil
}

// SelectSuggestion replaces a field with term verbatim and collapses its
// suggestions.
func (c *Controller) SelectSuggestion(field vocab.Field, term string) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if field == vocab.FieldPatientName {
		return c.snapshotLocked(), clinical.NewValidationError("Patient name has no suggestions.")
	}
	if term == "" {
		return c.snapshotLocked(), clinical.NewValidationError("No suggestion selected.")
	}
	if err := c.setFieldLocked(field, term); err != nil {
		return c.snapshotLocked(), err
	}
	c.suggestLocked(field, nil)
	return c.snapshotLocked(), nil
}

// SelectImage makes img the current lab report. Any previously extracted
// text belonged to the old image and is dropped.
func (c *Controller) SelectImage(img *clinical.UploadedImage) (Snapshot, error) {
	if img == nil {
		return c.Snapshot(), clinical.NewValidationError("No image selected.")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.image = img
	c.extractedText = ""
	c.notice = ""
	c.logger.Info("image selected", "image_id", img.ID, "mime_type", img.MIMEType, "size", img.Size)
	return c.snapshotLocked(), nil
}

// SelectUpload validates the declared type before selecting the content.
// An unsupported type is rejected and the session is left untouched.
func (c *Controller) SelectUpload(name, mimeType string, size int64, open func() (io.ReadCloser, error)) (Snapshot, error) {
	img, err := clinical.NewImage(name, mimeType, size, open)
	if err != nil {
		c.logger.Info("image rejected", "name", name, "mime_type", mimeType)
		return c.Snapshot(), err
	}
	return c.SelectImage(img)
}

// ExtractText runs the selected image through the extractor. Without an
// image it only sets an advisory notice.
func (c *Controller) ExtractText() (<-chan Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight {
		return nil, ErrBusy
	}
	if c.image == nil {
		c.state = StateIdle
		c.operation = OpNone
		c.err = nil
		c.notice = NoImageNotice
		return resolved(c.snapshotLocked()), nil
	}
	if c.extractor == nil {
		c.failLocked(OpExtract, clinical.NewExtractionError("Text extraction is not configured.", nil))
		return resolved(c.snapshotLocked()), nil
	}

	img := c.image
	gen := c.startLocked(OpExtract)
	c.extractedText = ""

	done := make(chan Snapshot, 1)
	go func() {
		text, err := c.extractor.Extract(c.baseCtx, img)
		done <- c.finishExtract(gen, img.ID, text, err)
		close(done)
	}()
	return done, nil
}

// GeneratePlan builds the clinical context and requests a plan. A context
// without clinical input is rejected immediately without entering Loading.
func (c *Controller) GeneratePlan() (<-chan Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight {
		return nil, ErrBusy
	}

	cctx := clinical.Build(c.patientName, c.symptoms, c.medicalHistory, c.extractedText)
	if err := cctx.Validate(); err != nil {
		c.failLocked(OpPlan, err)
		return nil, err
	}

	gen := c.startLocked(OpPlan)
	c.plan = nil

	table := c.vocab.Suggestions
	done := make(chan Snapshot, 1)
	go func() {
		var (
			res *plan.Result
			err error
		)
		if c.planner != nil {
			res, err = c.planner.Generate(c.baseCtx, cctx)
		} else {
			res, err = plan.Local(cctx, table)
		}
		done <- c.finishPlan(gen, res, err)
		close(done)
	}()
	return done, nil
}

// ClearAll resets every field and returns to Idle. An operation still in
// flight keeps the session busy until it lands, and its result is dropped.
func (c *Controller) ClearAll() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.state = StateIdle
	c.operation = OpNone
	c.patientName = ""
	c.symptoms = ""
	c.medicalHistory = ""
	c.symptomSugg = nil
	c.historySugg = nil
	c.image = nil
	c.extractedText = ""
	c.plan = nil
	c.err = nil
	c.notice = ""

	c.logger.Info("session cleared", "generation", c.generation, "in_flight", c.inFlight)
	return c.snapshotLocked()
}

func (c *Controller) startLocked(op Operation) uint64 {
	c.inFlight = true
	c.state = StateLoading
	c.operation = op
	c.err = nil
	c.notice = ""
	c.logger.Debug("operation started", "operation", op, "generation", c.generation)
	return c.generation
}

func (c *Controller) failLocked(op Operation, err error) {
	c.state = StateFailed
	c.operation = op
	c.err = asOperationError(err, op)
}

func (c *Controller) finishExtract(gen uint64, imageID, text string, err error) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	if gen != c.generation {
		c.logger.Info("discarding extraction result from cleared session", "generation", gen)
		return c.snapshotLocked()
	}
	if c.image == nil || c.image.ID != imageID {
		c.logger.Info("discarding extraction result for replaced image", "image_id", imageID)
		c.state = StateIdle
		return c.snapshotLocked()
	}
	if err != nil {
		c.extractedText = ""
		c.failLocked(OpExtract, err)
		c.logger.Warn("extraction failed", "error", err)
		return c.snapshotLocked()
	}

	c.extractedText = text
	c.state = StateSuccess
	c.logger.Info("extraction succeeded", "chars", len(text))
	return c.snapshotLocked()
}

func (c *Controller) finishPlan(gen uint64, res *plan.Result, err error) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	if gen != c.generation {
		c.logger.Info("discarding plan result from cleared session", "generation", gen)
		return c.snapshotLocked()
	}
	if err != nil {
		c.plan = nil
		c.failLocked(OpPlan, err)
		c.logger.Warn("plan generation failed", "error", err)
		return c.snapshotLocked()
	}

	c.plan = res
	c.state = StateSuccess
	c.logger.Info("plan generated", "source", res.Source)
	return c.snapshotLocked()
}

func (c *Controller) setFieldLocked(field vocab.Field, text string) error {
	switch field {
	case vocab.FieldPatientName:
		c.patientName = text
	case vocab.FieldSymptoms:
		c.symptoms = text
	case vocab.FieldMedicalHistory:
		c.medicalHistory = text
	default:
		return clinical.NewValidationError(fmt.Sprintf("Unknown field %q.", field))
	}
	return nil
}

func (c *Controller) suggestLocked(field vocab.Field, terms []string) {
	switch field {
	case vocab.FieldSymptoms:
		c.symptomSugg = terms
	case vocab.FieldMedicalHistory:
		c.historySugg = terms
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:                 c.id,
		State:              c.state,
		Busy:               c.inFlight,
		Operation:          c.operation,
		Mode:               c.Mode(),
		PatientName:        c.patientName,
		Symptoms:           c.symptoms,
		MedicalHistory:     c.medicalHistory,
		SymptomSuggestions: append([]string(nil), c.symptomSugg...),
		HistorySuggestions: append([]string(nil), c.historySugg...),
		Image:              c.image,
		ExtractedText:      c.extractedText,
		Notice:             c.notice,
	}
	if c.plan != nil {
		p := *c.plan
		snap.Plan = &p
	}
	if c.err != nil {
		snap.Error = &ErrorView{Kind: c.err.Kind, Message: c.err.Message}
	}
	return snap
}

// LastError returns the full error of the last failed operation, or nil.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		return nil
	}
	return c.err
}

// asOperationError keeps classified errors and wraps anything else with
// the kind the operation fails with.
func asOperationError(err error, op Operation) *clinical.OperationError {
	var opErr *clinical.OperationError
	if errors.As(err, &opErr) {
		return opErr
	}
	if op == OpExtract {
		return clinical.NewExtractionError("Text could not be extracted from the lab report.", err)
	}
	return clinical.NewTransportError(err)
}

func resolved(s Snapshot) <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	ch <- s
	close(ch)
	return ch
}

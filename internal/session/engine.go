package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-sentry/internal/config"
	"github.com/kozaktomas/face-sentry/internal/detect"
	"github.com/kozaktomas/face-sentry/internal/emotion"
	"github.com/kozaktomas/face-sentry/internal/gallery"
	"github.com/kozaktomas/face-sentry/internal/history"
	"github.com/kozaktomas/face-sentry/internal/match"
	"github.com/kozaktomas/face-sentry/internal/motion"
	"github.com/kozaktomas/face-sentry/internal/report"
)

// Archiver mirrors detection events into durable storage. Archiving is
// best effort; failures are logged and never abort frame processing.
type Archiver interface {
	ArchiveEvent(ctx context.Context, event history.Event) error
}

// Mirror keeps an external copy of the identity gallery in sync with
// registrations and deletions. Best effort like event archiving;
// failures are logged and never fail the operation.
type Mirror interface {
	Save(ctx context.Context, name string, vector []float32) error
	Delete(ctx context.Context, name string) error
}

// Engine owns the whole presence pipeline: the identity gallery, the
// match scorer, the motion tracker, the per-identity sessions, the
// bounded history and the report sink. All shared mutable state lives
// behind one mutex so concurrent frame processing and queries stay
// consistent.
type Engine struct {
	log      *logrus.Logger
	dataRoot string
	window   time.Duration

	gallery    *gallery.Gallery
	scorer     *match.Scorer
	index      *match.Index
	tracker    *motion.Tracker
	ledger     *history.Ledger
	detector   detect.Detector
	classifier emotion.Classifier
	sink       report.Sink
	archive    Archiver
	mirror     Mirror

	mu            sync.Mutex
	sessions      map[string]*Session
	unknownMotion float64

	now func() time.Time
}

// NewEngine assembles the pipeline around an already populated
// gallery.
func NewEngine(
	cfg *config.Config,
	g *gallery.Gallery,
	detector detect.Detector,
	classifier emotion.Classifier,
	sink report.Sink,
	log *logrus.Logger,
) *Engine {
	scorer := match.NewScorer(g, cfg.Match)
	index := match.NewIndex()
	index.Rebuild(g.List())
	scorer.EnableIndex(index)

	return &Engine{
		log:        log,
		dataRoot:   cfg.Data.Path,
		window:     cfg.Session.ActivationWindow(),
		gallery:    g,
		scorer:     scorer,
		index:      index,
		tracker:    motion.NewTracker(),
		ledger:     history.NewLedger(cfg.History.Capacity),
		detector:   detector,
		classifier: classifier,
		sink:       sink,
		sessions:   make(map[string]*Session),
		now:        time.Now,
	}
}

// SetArchiver attaches an optional event archive.
func (e *Engine) SetArchiver(a Archiver) {
	e.archive = a
}

// SetMirror attaches an optional identity mirror. Registrations and
// deletions are propagated to it from then on.
func (e *Engine) SetMirror(m Mirror) {
	e.mirror = m
}

// faceObservation pairs a detected face with its classified emotion.
// Classification happens before the engine lock is taken so a slow
// emotion provider never stalls concurrent queries.
type faceObservation struct {
	face    detect.Face
	emotion emotion.Label
}

// ProcessImage decodes nothing itself: it runs the detector over the
// frame and feeds every detected face through the session machinery.
func (e *Engine) ProcessImage(ctx context.Context, frame []byte) ([]history.Event, error) {
	faces, err := e.detector.Detect(ctx, frame)
	if err != nil {
		return nil, fmt.Errorf("detecting faces: %w", err)
	}
	return e.ProcessFrame(ctx, faces), nil
}

// ProcessFrame resolves each detected face against the gallery,
// updates motion and session state and returns the detection events
// produced, one per face.
func (e *Engine) ProcessFrame(ctx context.Context, faces []detect.Face) []history.Event {
	if len(faces) == 0 {
		return nil
	}

	observations := make([]faceObservation, 0, len(faces))
	for _, face := range faces {
		observations = append(observations, faceObservation{
			face:    face,
			emotion: e.classifyFace(ctx, face),
		})
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	events := make([]history.Event, 0, len(observations))
	for _, obs := range observations {
		event := e.processFace(ctx, obs)
		events = append(events, event)
	}
	return events
}

func (e *Engine) classifyFace(ctx context.Context, face detect.Face) emotion.Label {
	if len(face.Crop) == 0 {
		return emotion.Neutral
	}
	label, err := e.classifier.Classify(ctx, face.Crop)
	if err != nil {
		e.log.WithError(err).Warn("emotion classification failed, falling back to neutral")
		return emotion.Neutral
	}
	return label
}

// processFace runs the per-face pipeline under the engine lock:
// match, motion update, session transition, emission.
func (e *Engine) processFace(ctx context.Context, obs faceObservation) history.Event {
	now := e.now()
	result := e.scorer.Match(obs.face.Vector)
	outcome := e.scorer.Classify(result)

	event := history.Event{
		ID:         history.NewEventID(),
		Identity:   history.UnknownLabel,
		Similarity: result.Similarity,
		Emotion:    obs.emotion,
		IsKnown:    outcome == match.OutcomeKnown,
		Timestamp:  now,
	}

	if outcome == match.OutcomeKnown {
		event.Identity = result.Name
		event.Motion = e.tracker.Update(result.Name, obs.face.Box.Center())

		sess := e.session(result.Name)
		sess.AddMotion(event.Motion)
		if sess.ObserveKnown(now, e.window) {
			e.log.WithFields(logrus.Fields{
				"identity": result.Name,
			}).Info("presence confirmed")
		}
		sess.CountEmotion(obs.emotion)
		event.CumulativeMotion = sess.CumulativeMotion()

		if sess.State() == Confirmed {
			e.sink.WriteVerified(result.Name, result.Similarity, obs.emotion, event.CumulativeMotion)
		}
	} else {
		// A miss breaks the continuity every pending activation
		// depends on. Confirmed sessions stay put.
		for _, sess := range e.sessions {
			sess.ObserveMiss()
		}

		event.Motion = e.tracker.Update(history.UnknownLabel, obs.face.Box.Center())
		e.unknownMotion += event.Motion
		event.CumulativeMotion = e.unknownMotion

		if outcome == match.OutcomeUnknown {
			e.sink.WriteUnknown(result.Similarity, obs.emotion, obs.face.Crop, event.CumulativeMotion)
		}
	}

	e.ledger.Append(event)
	if e.archive != nil {
		if err := e.archive.ArchiveEvent(ctx, event); err != nil {
			e.log.WithError(err).Warn("could not archive detection event")
		}
	}
	return event
}

// session returns the state machine for an identity, creating it
// lazily. Caller must hold e.mu.
func (e *Engine) session(name string) *Session {
	sess, ok := e.sessions[name]
	if !ok {
		sess = New()
		e.sessions[name] = sess
	}
	return sess
}

// Register extracts the single face from the frame, stores the
// reference image on disk and adds the identity to the gallery and the
// match index. Re-registering replaces the stored vector and image.
func (e *Engine) Register(ctx context.Context, name string, frame []byte) error {
	vector, err := detect.ExtractSingle(ctx, e.detector, frame)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	prev, existed := e.gallery.Get(name)
	if err := e.gallery.Register(name, vector); err != nil {
		return err
	}

	// Sessions, motion state and storage are keyed by the stored
	// display name, which gallery.Key may resolve differently from
	// the caller's spelling.
	id, _ := e.gallery.Get(name)
	if err := gallery.SaveImage(e.dataRoot, id.Name, frame); err != nil {
		return fmt.Errorf("storing reference image: %w", err)
	}

	e.index.Add(id)
	if existed && prev.Name != id.Name {
		delete(e.sessions, prev.Name)
		e.tracker.Reset(prev.Name)
	}
	delete(e.sessions, id.Name)
	e.tracker.Reset(id.Name)

	if e.mirror != nil {
		if err := e.mirror.Save(ctx, id.Name, id.Vector); err != nil {
			e.log.WithError(err).Warn("could not mirror identity registration")
		}
	}
	return nil
}

// Delete removes an identity everywhere: gallery, match index, motion
// tracker, session state, its on-disk folder and the mirror.
func (e *Engine) Delete(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	// The cascade must use the stored display name: sessions and the
	// motion tracker were keyed by it, not by the caller's spelling.
	id, ok := e.gallery.Get(name)
	if !ok {
		return gallery.ErrNotFound
	}
	if err := e.gallery.Remove(name); err != nil {
		return err
	}
	e.index.Forget(id.Name)
	e.tracker.Reset(id.Name)
	delete(e.sessions, id.Name)

	if err := gallery.RemoveStorage(e.dataRoot, id.Name); err != nil {
		return fmt.Errorf("removing identity storage: %w", err)
	}
	if e.mirror != nil {
		if err := e.mirror.Delete(ctx, id.Name); err != nil {
			e.log.WithError(err).Warn("could not mirror identity deletion")
		}
	}
	return nil
}

// Identities lists registered identities in registration order.
func (e *Engine) Identities() []gallery.Identity {
	return e.gallery.List()
}

// History returns at most limit most-recent events, optionally
// filtered by identity label.
func (e *Engine) History(limit int, identity string) []history.Event {
	return e.ledger.Query(limit, identity)
}

// Stats aggregates over the retained history window.
func (e *Engine) Stats() history.Stats {
	return e.ledger.Stats()
}

// WarmStart seeds the history ledger, typically from persisted report
// files after a restart. Events should arrive in chronological order.
func (e *Engine) WarmStart(events []history.Event) {
	for _, event := range events {
		e.ledger.Append(event)
	}
}

// Presence reports the session phase for an identity. Idle when the
// identity was never sighted.
func (e *Engine) Presence(name string) State {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.sessions[name]
	if !ok {
		return Idle
	}
	return sess.State()
}

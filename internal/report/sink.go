// Package report persists detection outcomes as append-only text
// reports: verified-visit blocks per identity and one-line unknown
// incidents in a shared archive. The report files are a compatibility
// surface; field order and formatting must stay stable.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-sentry/internal/emotion"
	"github.com/kozaktomas/face-sentry/internal/gallery"
)

const (
	verifiedFileName = "verified_report.txt"
	unknownFileName  = "unknown_report.txt"

	blockTimeLayout = "2006-01-02_15:04:05"
	stampTimeLayout = "20060102_150405"
)

// Sink records verified visits and unknown incidents. Implementations
// must never fail the detection pipeline: storage errors are logged
// and swallowed.
type Sink interface {
	WriteVerified(name string, similarity float64, emo emotion.Label, cumulativeMotion float64)
	WriteUnknown(similarity float64, emo emotion.Label, faceJPEG []byte, cumulativeMotion float64)
}

// FileSink writes reports under the data root:
// verified blocks to <root>/users/<name>/verified_report.txt and
// unknown incidents (log line + face JPEG) to <root>/unknown/.
type FileSink struct {
	root string
	log  *logrus.Logger
	now  func() time.Time
}

// NewFileSink creates a file-based report sink.
func NewFileSink(root string, log *logrus.Logger) *FileSink {
	return &FileSink{root: root, log: log, now: time.Now}
}

// appendFile appends data to a file, creating it if needed.
func appendFile(path string, data string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(data)
	return err
}

// WriteVerified appends a verified-visit block to the identity's
// report file. A missing identity folder means the destination is
// gone (e.g. deleted concurrently); the write is skipped.
func (s *FileSink) WriteVerified(name string, similarity float64, emo emotion.Label, cumulativeMotion float64) {
	dir := gallery.IdentityPath(s.root, name)
	if _, err := os.Stat(dir); err != nil {
		s.log.WithFields(logrus.Fields{"identity": name, "error": err}).
			Warn("verified report destination missing, skipping write")
		return
	}

	block := fmt.Sprintf(
		"%s at %s\npresence: 1.0s\ndominant emotion: %s\nmotion: %.1f\nbest similarity: %.1f%%\n\n",
		name, s.now().Format(blockTimeLayout), emo, cumulativeMotion, similarity,
	)
	if err := appendFile(filepath.Join(dir, verifiedFileName), block); err != nil {
		s.log.WithFields(logrus.Fields{"identity": name, "error": err}).
			Error("failed to write verified report")
	}
}

// WriteUnknown archives the cropped face under the shared unknown
// directory and appends one incident line to the unknown report.
func (s *FileSink) WriteUnknown(similarity float64, emo emotion.Label, faceJPEG []byte, cumulativeMotion float64) {
	dir := gallery.UnknownPath(s.root)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.log.WithField("error", err).Error("failed to create unknown-face archive")
		return
	}

	stamp := s.now().Format(stampTimeLayout)
	if len(faceJPEG) > 0 {
		imagePath := filepath.Join(dir, fmt.Sprintf("unknown_%s.jpg", stamp))
		if err := os.WriteFile(imagePath, faceJPEG, 0o644); err != nil {
			s.log.WithField("error", err).Error("failed to archive unknown face image")
		}
	}

	line := fmt.Sprintf("unknown %s similarity:%.1f%% emotion:%s motion:%.1f\n",
		stamp, similarity, emo, cumulativeMotion)
	if err := appendFile(filepath.Join(dir, unknownFileName), line); err != nil {
		s.log.WithField("error", err).Error("failed to write unknown report")
	}
}

package report

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kozaktomas/face-sentry/internal/emotion"
	"github.com/kozaktomas/face-sentry/internal/gallery"
	"github.com/kozaktomas/face-sentry/internal/history"
)

// LoadHistory re-reads persisted report files into detection events so
// the in-memory history survives restarts. Malformed blocks and lines
// are skipped.
func LoadHistory(root string) ([]history.Event, error) {
	var events []history.Event

	stored, err := os.ReadDir(gallery.UsersPath(root))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading users directory: %w", err)
	}
	for _, entry := range stored {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		path := filepath.Join(gallery.IdentityPath(root, name), verifiedFileName)
		events = append(events, loadVerified(path, name)...)
	}

	events = append(events, loadUnknown(filepath.Join(gallery.UnknownPath(root), unknownFileName))...)
	return events, nil
}

// loadVerified parses blank-line-separated verified blocks.
func loadVerified(path, name string) []history.Event {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var events []history.Event
	for _, block := range strings.Split(string(data), "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 5 {
			continue
		}

		e := history.Event{
			ID:       history.NewEventID(),
			Identity: name,
			IsKnown:  true,
			Emotion:  emotion.Neutral,
		}

		// "<name> at <timestamp>"
		if _, stamp, ok := strings.Cut(lines[0], " at "); ok {
			if ts, err := time.Parse(blockTimeLayout, stamp); err == nil {
				e.Timestamp = ts
			}
		}
		if label, ok := emotion.Parse(fieldValue(lines[2])); ok {
			e.Emotion = label
		}
		if motion, err := strconv.ParseFloat(fieldValue(lines[3]), 64); err == nil {
			e.Motion = motion
			e.CumulativeMotion = motion
		}
		if sim, err := strconv.ParseFloat(strings.TrimSuffix(fieldValue(lines[4]), "%"), 64); err == nil {
			e.Similarity = sim
		}
		events = append(events, e)
	}
	return events
}

// loadUnknown parses one-line incident records.
func loadUnknown(path string) []history.Event {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var events []history.Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 || fields[0] != history.UnknownLabel {
			continue
		}

		e := history.Event{
			ID:       history.NewEventID(),
			Identity: history.UnknownLabel,
			Emotion:  emotion.Neutral,
		}
		if ts, err := time.Parse(stampTimeLayout, fields[1]); err == nil {
			e.Timestamp = ts
		}
		for _, field := range fields[2:] {
			key, value, ok := strings.Cut(field, ":")
			if !ok {
				continue
			}
			switch key {
			case "similarity":
				if sim, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64); err == nil {
					e.Similarity = sim
				}
			case "emotion":
				if label, ok := emotion.Parse(value); ok {
					e.Emotion = label
				}
			case "motion":
				if motion, err := strconv.ParseFloat(value, 64); err == nil {
					e.Motion = motion
					e.CumulativeMotion = motion
				}
			}
		}
		events = append(events, e)
	}
	return events
}

// fieldValue returns the part after "key: " in a report line.
func fieldValue(line string) string {
	_, value, _ := strings.Cut(line, ": ")
	return strings.TrimSpace(value)
}

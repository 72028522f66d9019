package cmd

import (
	"context"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-sentry/internal/config"
	"github.com/kozaktomas/face-sentry/internal/database/postgres"
	"github.com/kozaktomas/face-sentry/internal/detect"
	"github.com/kozaktomas/face-sentry/internal/gallery"
)

// loadGallery rebuilds the in-memory gallery from the stored reference
// images. When an identity mirror is available its archived vector is
// used directly; feature extraction only runs for identities the
// mirror does not know. Identities whose extraction fails are skipped
// with a warning so one bad image never blocks startup.
func loadGallery(ctx context.Context, cfg *config.Config, detector detect.Detector, mirror *postgres.IdentityRepository, log *logrus.Logger) (*gallery.Gallery, error) {
	g := gallery.New()

	stored, err := gallery.ListStored(cfg.Data.Path)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return g, nil
	}

	bar := progressbar.NewOptions(len(stored),
		progressbar.OptionSetDescription("Loading identities"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("identities"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	extract := func(ctx context.Context, imageData []byte) ([]float32, error) {
		return detect.ExtractSingle(ctx, detector, imageData)
	}

	for _, s := range stored {
		if mirror != nil {
			cached, err := mirror.Get(ctx, s.Name)
			if err != nil {
				log.WithError(err).WithField("name", s.Name).Warn("identity mirror lookup failed")
			}
			if cached != nil && len(cached.Embedding) > 0 {
				if err := g.Register(s.Name, cached.Embedding); err == nil {
					bar.Add(1)
					continue
				}
			}
		}
		if err := g.LoadStored(ctx, s, extract); err != nil {
			log.WithError(err).WithField("name", s.Name).Warn("skipping stored identity")
		}
		bar.Add(1)
	}
	return g, nil
}

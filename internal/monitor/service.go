// Package monitor drives the poll loop: it waits for frame ticks,
// samples the live framebuffer, and turns each tick into a status
// record with change detection and a dominant color.
package monitor

import (
	"context"
	"fmt"
	"log"
	"time"

	"scalermon/internal/config"
	"scalermon/internal/sampler"
	"scalermon/internal/scaler"
	"scalermon/pkg/pixel"
)

// Recorder persists change events and errors. Implemented by
// database.Repository; nil disables persistence.
type Recorder interface {
	RecordChange(rec *StatusRecord) error
	RecordError(t time.Time, err error) error
}

// Service owns the single-threaded poll loop. The only suspension
// point is the poll-interval sleep; cancellation is checked every
// iteration and the caller releases the memory window afterwards.
type Service struct {
	config *config.Config
	mem    scaler.Reader
	layout scaler.Layout
	rec    Recorder
	emit   func(*StatusRecord)

	hist        *Histogram
	fingerprint Fingerprint
	lastHeader  *scaler.Header
	lastCounter byte
	haveCounter bool
	frameIndex  uint64

	stopChan chan struct{}
	running  bool
}

// NewService wires the poll loop to a mapped scaler window.
func NewService(cfg *config.Config, mem scaler.Reader, layout scaler.Layout, rec Recorder) *Service {
	return &Service{
		config:   cfg,
		mem:      mem,
		layout:   layout,
		rec:      rec,
		hist:     NewHistogram(cfg.Monitor.FineHistogram),
		stopChan: make(chan struct{}),
	}
}

// SetEmit registers a sink that receives every status record, used by
// the foreground watch mode.
func (s *Service) SetEmit(fn func(*StatusRecord)) { s.emit = fn }

// Start runs the poll loop until the context is cancelled or Stop is
// called. The very first pass runs immediately; a header that fails to
// validate there is fatal and returned to the caller.
func (s *Service) Start(ctx context.Context) error {
	if s.running {
		return fmt.Errorf("monitor is already running")
	}
	s.running = true
	log.Printf("Starting monitor with %v poll interval, step %d", s.config.Monitor.PollInterval, s.config.Monitor.SampleStep)

	counter, err := s.layout.Counter(s.mem)
	if err != nil {
		s.running = false
		return err
	}
	if err := s.tick(counter, time.Now()); err != nil {
		s.running = false
		return err
	}

	ticker := time.NewTicker(s.config.Monitor.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Monitor stopped by context")
			s.running = false
			return ctx.Err()

		case <-s.stopChan:
			log.Println("Monitor stopped")
			s.running = false
			return nil

		case <-ticker.C:
			counter, err := s.layout.Counter(s.mem)
			if err != nil {
				s.storeError(err)
				continue
			}
			if s.haveCounter && counter == s.lastCounter {
				// No frame tick since the last pass; multiple ticks
				// coalescing into one pass is fine, missing none is not
				// promised.
				continue
			}
			if err := s.tick(counter, time.Now()); err != nil {
				s.storeError(err)
			}
		}
	}
}

// Stop terminates the loop.
func (s *Service) Stop() {
	if s.running {
		close(s.stopChan)
	}
}

// IsRunning reports whether the loop is active.
func (s *Service) IsRunning() bool { return s.running }

// tick runs one full acquisition and analysis pass for a new counter
// value and dispatches the resulting record.
func (s *Service) tick(counter byte, now time.Time) error {
	rec, err := s.pollOnce(counter, now)
	if err != nil {
		return err
	}
	s.lastCounter = counter
	s.haveCounter = true

	if s.emit != nil {
		s.emit(rec)
	}
	if rec.Changed || rec.Discontinuity {
		log.Println(rec.Line())
		if s.rec != nil {
			if err := s.rec.RecordChange(rec); err != nil {
				log.Printf("Failed to record change event: %v", err)
			}
		}
	}
	return nil
}

// pollOnce re-parses the header and walks the frame twice: a
// fixed-phase grid feeds the fingerprint, so identical content hashes
// identically from one pass to the next, and a phase-jittered grid
// feeds the histogram, so the dominant color sees fresh sub-grid
// offsets over successive frames. The hardware keeps writing
// underneath it; a torn frame at worst produces one spurious change
// that self-corrects next poll.
func (s *Service) pollOnce(counter byte, now time.Time) (*StatusRecord, error) {
	hdr, err := scaler.Parse(s.mem, s.layout)
	if err != nil {
		return nil, err
	}

	// A reconfigured header is a discontinuity, not a content change.
	discontinuity := s.lastHeader != nil && !hdr.SameMode(s.lastHeader)
	if discontinuity {
		s.fingerprint.Reset(now)
	}
	s.lastHeader = hdr
	s.frameIndex++

	bpp := hdr.Format.BytesPerPixel()
	frame, err := s.mem.Bytes(hdr.BufferFor(counter), hdr.Stride*hdr.Height)
	if err != nil {
		return nil, err
	}

	fixed := sampler.New(hdr.Width, hdr.Height, s.config.Monitor.SampleStep,
		0, s.config.Monitor.JitterX, s.config.Monitor.JitterY)
	digest := NewDigest()
	samples := 0
	for {
		x, y, ok := fixed.Next()
		if !ok {
			break
		}
		o := y*hdr.Stride + x*bpp
		r, g, b := pixel.Decode(hdr.Format, hdr.Order, frame[o:o+bpp])
		digest.Fold(r, g, b)
		samples++
	}

	jittered := sampler.New(hdr.Width, hdr.Height, s.config.Monitor.SampleStep,
		s.frameIndex, s.config.Monitor.JitterX, s.config.Monitor.JitterY)
	s.hist.BeginPass()
	for {
		x, y, ok := jittered.Next()
		if !ok {
			break
		}
		o := y*hdr.Stride + x*bpp
		r, g, b := pixel.Decode(hdr.Format, hdr.Order, frame[o:o+bpp])
		s.hist.Add(r, g, b)
	}

	changed, unchanged := s.fingerprint.Observe(digest.Sum64(), now)
	if discontinuity {
		changed = false
		unchanged = 0
	}

	dr, dg, db := s.hist.Dominant()
	return &StatusRecord{
		Timestamp:     now,
		Width:         hdr.Width,
		Height:        hdr.Height,
		BitDepth:      hdr.Format.BitDepth(),
		Format:        hdr.Format.String(),
		Endian:        hdr.Order.String(),
		Dominant:      uint32(dr)<<16 | uint32(dg)<<8 | uint32(db),
		Unchanged:     unchanged,
		Changed:       changed,
		Discontinuity: discontinuity,
		Samples:       samples,
	}, nil
}

func (s *Service) storeError(err error) {
	if s.rec == nil {
		log.Printf("Monitor error: %v", err)
		return
	}
	if dbErr := s.rec.RecordError(time.Now(), err); dbErr != nil {
		log.Printf("Failed to store error in database: %v (original error: %v)", dbErr, err)
	} else {
		log.Printf("Error logged to database: %v", err)
	}
}

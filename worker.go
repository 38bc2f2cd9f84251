package lazypix

import (
	"context"
	"image"

	"github.com/davrux/lazypix/internal/decode"
	"github.com/davrux/lazypix/internal/logging"
)

// run is the worker loop: drain the queue one request at a time, resolve
// each through disk, network and decoder, populate the memory cache, and
// hand the result to delivery. Every dequeued request is delivered exactly
// once, with or without an image; failures never escape the loop.
func (l *Loader) run(ctx context.Context) {
	startLog := l.logger()
	startLog.Debug().Msg("worker started")

	for {
		req, ok := l.pending.Dequeue()
		if !ok {
			stopLog := l.logger()
			stopLog.Debug().Msg("worker stopped")
			return
		}

		// Logger re-read per item so live level changes take effect; the
		// identifier rides on the context for everything this load logs.
		reqCtx := logging.WithIdentifier(logging.WithContext(ctx, l.logger()), req.id)

		img := l.resolve(reqCtx, req)
		if img != nil && req.opts.CacheInMemory {
			l.mem.Put(req.id, img)
		}
		l.deliver(req, img)
	}
}

// resolve produces a decoded image for the request, or nil when the load
// failed. Resolution order: disk cache, then network (through the disk cache
// when the request allows it, through a transient buffer when it doesn't).
func (l *Loader) resolve(ctx context.Context, req *loadRequest) image.Image {
	log := logging.FromContext(ctx)
	size := l.sizeFor(req.target)

	if l.disk.Has(req.id) {
		img, err := decode.File(l.disk.Path(req.id), size.Width, size.Height)
		if err == nil {
			log.Debug().Msg("resolved from disk cache")
			return img
		}
		// Corrupted cache entry: purge it and fall through to a re-fetch.
		log.Warn().Err(err).Msg("corrupt disk cache entry")
		l.disk.Remove(req.id)
	}

	if req.opts.CacheOnDisk && l.disk.Enabled() {
		rc, err := l.fetcher.Open(ctx, req.id)
		if err != nil {
			log.Warn().Err(err).Msg("fetch failed")
			return nil
		}
		err = l.disk.Write(req.id, rc)
		_ = rc.Close()
		if err != nil {
			log.Warn().Err(err).Msg("disk cache write failed")
			l.disk.Remove(req.id)
			return nil
		}

		img, err := decode.File(l.disk.Path(req.id), size.Width, size.Height)
		if err != nil {
			log.Warn().Err(err).Msg("decode failed")
			l.disk.Remove(req.id)
			return nil
		}
		return img
	}

	data, err := l.fetcher.Fetch(ctx, req.id)
	if err != nil {
		log.Warn().Err(err).Msg("fetch failed")
		return nil
	}
	img, err := decode.Bytes(data, size.Width, size.Height)
	if err != nil {
		log.Warn().Err(err).Msg("decode failed")
		return nil
	}
	return img
}

// sizeFor resolves the decode bound for a target, falling back to the
// configured defaults when the sizing strategy has nothing useful.
func (l *Loader) sizeFor(t Target) Size {
	if l.sizing != nil {
		s := l.sizing.SizeFor(t)
		if s.Width > 0 && s.Height > 0 {
			return s
		}
	}
	return Size{Width: l.cfg.DefaultMaxWidth, Height: l.cfg.DefaultMaxHeight}
}

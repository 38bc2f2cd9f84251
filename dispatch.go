package lazypix

import "image"

// deliver posts the completed (or failed) result onto the target's delivery
// context. The binding is re-read there, on the context that owns the
// surface: the image is applied only if the target is still bound to this
// request's identifier. A mismatch means the surface was reassigned while
// the load was in flight; the result is silently discarded.
func (l *Loader) deliver(req *loadRequest, img image.Image) {
	req.target.Context().Post(func() {
		if l.bind.currentFor(req.target) != req.id {
			return
		}
		if img == nil {
			// Failed load: the target keeps whatever placeholder it has.
			return
		}
		req.target.SetImage(img)
		if req.listener != nil {
			req.listener.OnCompleted(req.id)
		}
	})
}

package lazypix

import "image"

// Size is a width/height bound in pixels.
type Size struct {
	Width  int
	Height int
}

// DeliveryContext is the single-threaded execution context that owns a
// target. Post schedules fn to run later on that context; ordering among
// posted callbacks follows the context's own queue discipline.
type DeliveryContext interface {
	Post(fn func())
}

// Target is a display surface that shows one decoded image at a time.
//
// Implementations must be usable as map keys (pointer types are the usual
// choice). SetImage and Clear are only ever invoked on the target's delivery
// context or on the goroutine that called Request.
type Target interface {
	// Context returns the delivery context that owns this target.
	Context() DeliveryContext
	// SetImage applies a decoded image to the surface.
	SetImage(img image.Image)
	// Clear blanks the surface.
	Clear()
}

// SizingStrategy supplies the decode bound for a target. The embedding UI
// layer decides the policy (explicit max-size attributes, layout bounds, a
// display default); the loader only consumes the result.
//
// SizeFor is called on the worker goroutine.
type SizingStrategy interface {
	SizeFor(t Target) Size
}

// SizingStrategyFunc adapts a function to the SizingStrategy interface.
type SizingStrategyFunc func(t Target) Size

// SizeFor calls f(t).
func (f SizingStrategyFunc) SizeFor(t Target) Size { return f(t) }

// Listener observes the lifecycle of a single load.
//
// OnStarted fires synchronously inside Request, and only for loads that
// actually go through the queue; a memory-cache hit fires nothing.
// OnCompleted fires on the target's delivery context after a result has been
// applied; it never fires for a superseded (stale) or failed load.
type Listener interface {
	OnStarted(id string)
	OnCompleted(id string)
}

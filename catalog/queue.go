package catalog

import "context"

// RequestReload asks the Run loop for a forced reload. At most one request is kept
// pending; it returns false when the request was folded into an already pending one.
func (c *Catalog) RequestReload() bool {
	select {
	case c.requests <- struct{}{}:
		return true
	default:
		return false
	}
}

// Run serves reload requests until ctx is done. Reload errors are logged and reported
// to subscribers; they do not stop the loop.
func (c *Catalog) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.requests:
			if c.closed.Load() {
				return ErrClosed
			}
			// errors already went through fail()
			_, _ = c.ForceReload(ctx)
		}
	}
}

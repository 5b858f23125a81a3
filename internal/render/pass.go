package render

import (
	"errors"
	"fmt"
)

// ErrPassOrder is returned when a 2D pass call arrives out of order.
var ErrPassOrder = errors.New("render: pass order violated")

// Pass2D enforces Begin, Draw, End ordering for a 2D render pass. The zero
// value is at rest. It is not safe for concurrent use.
type Pass2D struct {
	begun int
}

// Begin opens the pass. It fails if a pass is already open.
func (p *Pass2D) Begin() error {
	if p.begun != 0 {
		return fmt.Errorf("%w: begin while a pass is active", ErrPassOrder)
	}
	p.begun++
	return nil
}

// Draw fails unless a pass is open.
func (p *Pass2D) Draw() error {
	if p.begun != 1 {
		return fmt.Errorf("%w: draw outside a pass", ErrPassOrder)
	}
	return nil
}

// End closes the pass. It always succeeds, even without a matching Begin.
func (p *Pass2D) End() {
	p.begun = 0
}

// Active reports whether a pass is open.
func (p *Pass2D) Active() bool {
	return p.begun != 0
}

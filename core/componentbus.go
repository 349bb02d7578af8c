package core

import (
	"fmt"

	"github.com/hlrs-vis/openpass-sub007/model"
	"github.com/hlrs-vis/openpass-sub007/schederr"
)

// Bus wires channels (model.Channel) between components and mediates the
// two operations AgentParser schedules as separate task items: a
// producer's UpdateOutput and each consumer's UpdateInput. It holds the
// last signal produced on each channel so that a
// consumer reading before its producer has re-published this tick sees the
// previous tick's value rather than nothing — channels never buffer
// across ticks, but they also never go empty once primed.
type Bus struct {
	lastSignal map[string]*model.Signal
}

// NewBus constructs an empty component bus.
func NewBus() *Bus {
	return &Bus{lastSignal: make(map[string]*model.Signal)}
}

// PublishOutput invokes the producer's UpdateOutput for channel's source
// port and caches the result under the channel's ID. A nil signal or a
// non-nil error from the component is surfaced as ErrAllocationFailed,
// leaving the previously cached value (if any) untouched.
func (b *Bus) PublishOutput(producer model.HasOutputs, ch model.Channel, t int) error {
	sig, err := producer.UpdateOutput(ch.SourcePort, t)
	if err != nil {
		return fmt.Errorf("%w: channel %s: %v", schederr.ErrAllocationFailed, ch.ID, err)
	}
	if sig == nil {
		return fmt.Errorf("%w: channel %s produced nil signal", schederr.ErrAllocationFailed, ch.ID)
	}
	b.lastSignal[ch.ID] = sig
	return nil
}

// DeliverInput invokes target's UpdateInput with the signal currently
// cached for ch. It returns ErrInvalidLink if nothing has ever been
// published on the channel (there is no "old value" to fall back to yet).
func (b *Bus) DeliverInput(consumer model.HasInputs, ch model.Channel, target model.ChannelTarget, t int) error {
	sig, ok := b.lastSignal[ch.ID]
	if !ok {
		return fmt.Errorf("%w: channel %s has not produced a signal yet", schederr.ErrInvalidLink, ch.ID)
	}
	if err := consumer.UpdateInput(target.Port, sig, t); err != nil {
		return fmt.Errorf("channel %s -> port %d: %w", ch.ID, target.Port, err)
	}
	return nil
}

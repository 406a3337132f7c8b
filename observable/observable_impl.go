package observable

import (
	"context"
	"errors"
	"sync"

	"github.com/turbot/songplay-etl/events"
)

// ObservableImpl provides a base implementation of the Observable interface
// it is embedded in the row source and the pipeline
type ObservableImpl struct {
	observerLock sync.RWMutex
	Observers    []Observer
}

func (p *ObservableImpl) AddObserver(o Observer) error {
	if o == nil {
		return errors.New("observer must not be nil")
	}
	p.observerLock.Lock()
	p.Observers = append(p.Observers, o)
	p.observerLock.Unlock()

	return nil
}

// NotifyObservers sends the event to every observer, returning the joined errors of any which fail
// the event is sent to all observers regardless of failures
func (p *ObservableImpl) NotifyObservers(ctx context.Context, e events.Event) error {
	p.observerLock.RLock()
	defer p.observerLock.RUnlock()
	var notifyErrors []error
	for _, observer := range p.Observers {
		err := observer.Notify(ctx, e)
		if err != nil {
			notifyErrors = append(notifyErrors, err)
		}
	}

	return errors.Join(notifyErrors...)
}

// ObserverFunc adapts a function to an [Observer]
type ObserverFunc func(context.Context, events.Event) error

func (f ObserverFunc) Notify(ctx context.Context, e events.Event) error {
	return f(ctx, e)
}

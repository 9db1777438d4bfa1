package events

import (
	"context"
	"errors"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// Multi fans one event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, subject string, data interface{}) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, subject, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

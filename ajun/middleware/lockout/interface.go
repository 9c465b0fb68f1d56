package lockout

import "context"

type Backend interface {
	Get(ctx context.Context, identifier string) (*AttemptRecord, error)
	Set(ctx context.Context, identifier string, record *AttemptRecord) error
	Delete(ctx context.Context, identifier string) error
	List(ctx context.Context) (map[string]*AttemptRecord, error)
	Clear(ctx context.Context) error
}

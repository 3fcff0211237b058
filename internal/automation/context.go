package automation

import "context"

type requestIDKey struct{}

// WithRequestID кладет идентификатор HTTP-запроса в ctx, раннер добавляет его в логи.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

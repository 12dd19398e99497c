package logger

import "context"

type ctxKey struct{}

var logCtxKey = ctxKey{}

// LogCtx holds request scoped values added to every record.
type LogCtx struct {
	RequestID string
	SessionID string
	Action    string
}

func WithRequestID(ctx context.Context, id string) context.Context {
	c := fromContext(ctx)
	c.RequestID = id
	return context.WithValue(ctx, logCtxKey, c)
}

func WithSessionID(ctx context.Context, id string) context.Context {
	c := fromContext(ctx)
	c.SessionID = id
	return context.WithValue(ctx, logCtxKey, c)
}

func WithAction(ctx context.Context, action string) context.Context {
	c := fromContext(ctx)
	c.Action = action
	return context.WithValue(ctx, logCtxKey, c)
}

func fromContext(ctx context.Context) LogCtx {
	if c, ok := ctx.Value(logCtxKey).(LogCtx); ok {
		return c
	}
	return LogCtx{}
}

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestFromContext_NoLogger(t *testing.T) {
	if FromContext(context.Background()) != Default() {
		t.Error("FromContext() should return the default logger when none is stored")
	}
}

func TestFromContext_WithLogger(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	ctx := WithContext(context.Background(), custom)

	if FromContext(ctx) != custom {
		t.Error("FromContext() should return the logger from context")
	}
}

func TestWithContext_DoesNotModifyParent(t *testing.T) {
	parent := context.Background()
	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	_ = WithContext(parent, custom)

	if _, ok := parent.Value(contextKey{}).(*slog.Logger); ok {
		t.Error("parent context should not carry the logger")
	}
}

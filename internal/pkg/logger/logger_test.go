package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestFromContextFallsBackToGlobal(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected global logger")
	}
}

func TestLogErrorUsesContextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf).With().Str("request_id", "req-1").Logger()
	ctx := WithContext(context.Background(), &l)

	LogError(ctx, errors.New("boom"), "failed", "booking_id", 42, 7, "ignored")

	out := buf.String()
	for _, want := range []string{`"request_id":"req-1"`, `"error":"boom"`, `"booking_id":42`, `"message":"failed"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
}

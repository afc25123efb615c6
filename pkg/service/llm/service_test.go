package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/mock"
	"github.com/m-mizutani/gt"

	"github.com/deckmuse/deckmuse/pkg/domain/types"
	"github.com/deckmuse/deckmuse/pkg/service/llm"
)

func TestNew(t *testing.T) {
	t.Run("nil cheap client fails", func(t *testing.T) {
		_, err := llm.New(nil, nil)
		gt.Error(t, err)
	})
}

// sessionWith returns a client whose sessions delegate to handler. The
// handler receives the session index (0-based) and the generation input.
func sessionWith(handler func(session int, input string) (string, error)) *mock.LLMClientMock {
	var sessions int
	return &mock.LLMClientMock{
		NewSessionFunc: func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
			idx := sessions
			sessions++
			return &mock.SessionMock{
				GenerateFunc: func(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
					text, ok := input[0].(gollem.Text)
					if !ok {
						return nil, errors.New("unexpected input type")
					}
					out, err := handler(idx, string(text))
					if err != nil {
						return nil, err
					}
					return &gollem.Response{Texts: []string{out}}, nil
				},
			}, nil
		},
	}
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("transient failure is not retried", func(t *testing.T) {
		var calls int
		client := sessionWith(func(session int, input string) (string, error) {
			calls++
			return "", errors.New("503 service overloaded")
		})

		svc, err := llm.New(client, client)
		gt.NoError(t, err).Required()

		_, err = svc.Generate(ctx, types.TierCheap, "SYSTEM", "USER")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, types.ErrGeneration)).True()
		gt.Number(t, calls).Equal(1)
	})

	t.Run("role rejection retries with the prompt folded into user content", func(t *testing.T) {
		var folded string
		client := sessionWith(func(session int, input string) (string, error) {
			if session == 0 {
				return "", errors.New("400: unsupported_value on messages[0].role")
			}
			folded = input
			return "ok", nil
		})

		svc, err := llm.New(client, client)
		gt.NoError(t, err).Required()

		text, err := svc.Generate(ctx, types.TierCheap, "SYSTEM", "USER")
		gt.NoError(t, err).Required()
		gt.Value(t, text).Equal("ok")
		gt.Value(t, folded).Equal("SYSTEM\n\nUSER")
	})

	t.Run("failed retry surfaces the generation error", func(t *testing.T) {
		var calls int
		client := sessionWith(func(session int, input string) (string, error) {
			calls++
			return "", errors.New("unsupported_value on messages[0].role")
		})

		svc, err := llm.New(client, client)
		gt.NoError(t, err).Required()

		_, err = svc.Generate(ctx, types.TierCheap, "SYSTEM", "USER")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, types.ErrGeneration)).True()
		gt.Number(t, calls).Equal(2)
	})

	t.Run("no system prompt means no fallback", func(t *testing.T) {
		var calls int
		client := sessionWith(func(session int, input string) (string, error) {
			calls++
			return "", errors.New("unsupported_value on messages[0].role")
		})

		svc, err := llm.New(client, client)
		gt.NoError(t, err).Required()

		_, err = svc.Generate(ctx, types.TierCheap, "", "USER")
		gt.Error(t, err)
		gt.Number(t, calls).Equal(1)
	})

	t.Run("strong tier uses the strong client", func(t *testing.T) {
		cheap := sessionWith(func(session int, input string) (string, error) {
			return "cheap", nil
		})
		strong := sessionWith(func(session int, input string) (string, error) {
			return "strong", nil
		})

		svc, err := llm.New(cheap, strong)
		gt.NoError(t, err).Required()

		text, err := svc.Generate(ctx, types.TierStrong, "SYSTEM", "USER")
		gt.NoError(t, err).Required()
		gt.Value(t, text).Equal("strong")
	})
}

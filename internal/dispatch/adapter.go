package dispatch

import (
	"context"
	"fmt"
	"strings"
)

// Adapter invokes a single backend. Implementations never return an error:
// every failure mode is folded into the returned Outcome.
type Adapter interface {
	Invoke(ctx context.Context, prompt string) Outcome
}

// AdapterFunc lets a plain function act as an Adapter.
type AdapterFunc func(ctx context.Context, prompt string) Outcome

func (f AdapterFunc) Invoke(ctx context.Context, prompt string) Outcome {
	return f(ctx, prompt)
}

// Asker is the shape of the transport clients in internal/providers.
type Asker interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// Wrap adapts a transport client, converting its errors into failures.
func Wrap(client Asker) Adapter {
	return askerAdapter{client: client}
}

// Unavailable returns an adapter that always fails with err. It stands in for
// backends whose client could not be constructed.
func Unavailable(err error) Adapter {
	return AdapterFunc(func(context.Context, string) Outcome {
		return unavailable(err)
	})
}

type askerAdapter struct {
	client Asker
}

func (a askerAdapter) Invoke(ctx context.Context, prompt string) Outcome {
	text, err := a.client.Ask(ctx, prompt)
	if err != nil {
		return unavailable(err)
	}
	return Success(text)
}

func unavailable(err error) Outcome {
	reason := "unknown error"
	if err != nil && strings.TrimSpace(err.Error()) != "" {
		reason = err.Error()
	}
	return Failure(fmt.Sprintf("backend unavailable: %s", reason))
}

package fetcher

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// DecodeJSONArray streams the elements of a top-level JSON array without
// buffering the whole document; the Voteview vote files run to millions of
// records. Elements arrive on the first channel, at most one error on the
// second, and both close when the stream ends. Empty input yields an empty
// stream rather than an error.
func DecodeJSONArray[T any](ctx context.Context, r io.Reader) (<-chan T, <-chan error) {
	elems := make(chan T, 64)
	errs := make(chan error, 1)

	go func() {
		defer close(elems)
		defer close(errs)

		dec := json.NewDecoder(r)

		tok, err := dec.Token()
		if err == io.EOF {
			return
		}
		if err != nil {
			errs <- eris.Wrap(err, "json: read opening token")
			return
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '[' {
			errs <- eris.Errorf("json: expected '[', got %v", tok)
			return
		}

		for dec.More() {
			var elem T
			if err := dec.Decode(&elem); err != nil {
				errs <- eris.Wrap(err, "json: decode array element")
				return
			}
			select {
			case elems <- elem:
			case <-ctx.Done():
				errs <- eris.Wrap(ctx.Err(), "json: stream cancelled")
				return
			}
		}

		if _, err := dec.Token(); err != nil && err != io.EOF {
			errs <- eris.Wrap(err, "json: read closing token")
		}
	}()

	return elems, errs
}

// DecodeJSONObject decodes one JSON document into T.
func DecodeJSONObject[T any](r io.Reader) (*T, error) {
	var obj T
	if err := json.NewDecoder(r).Decode(&obj); err != nil {
		return nil, eris.Wrap(err, "json: decode object")
	}
	return &obj, nil
}

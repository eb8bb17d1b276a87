package offline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DataIslandID is the id of the script element holding the bundle JSON.
const DataIslandID = "rcdrill-bundle"

// Load extracts and validates the bundle embedded in an offline file.
func Load(r io.Reader) (Bundle, error) {
	raw, err := dataIsland(r)
	if err != nil {
		return Bundle{}, err
	}

	var b Bundle
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&b); err != nil {
		return Bundle{}, fmt.Errorf("%w: decode data: %v", ErrInvalidBundle, err)
	}
	if err := b.Validate(); err != nil {
		return Bundle{}, err
	}
	return b, nil
}

// dataIsland returns the text content of the bundle script element.
func dataIsland(r io.Reader) ([]byte, error) {
	z := html.NewTokenizer(r)
	inIsland := false
	var buf bytes.Buffer

	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, fmt.Errorf("read offline file: %w", err)
			}
			if inIsland {
				return buf.Bytes(), nil
			}
			return nil, fmt.Errorf("%w: no %q element", ErrInvalidBundle, DataIslandID)

		case html.StartTagToken:
			tok := z.Token()
			if tok.DataAtom == atom.Script && attr(tok, "id") == DataIslandID {
				inIsland = true
			}

		case html.TextToken:
			if inIsland {
				buf.Write(z.Raw())
			}

		case html.EndTagToken:
			if inIsland {
				return buf.Bytes(), nil
			}
		}
	}
}

func attr(t html.Token, key string) string {
	for _, a := range t.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

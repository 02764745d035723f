// File: internal/common/image.go
package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ImageInput accepts either a single URL or a list of URLs in a JSON body.
// Set records whether the field was present at all, so updates can tell
// "not sent" apart from "cleared".
type ImageInput struct {
	URLs []string
	Set  bool
}

func (in *ImageInput) UnmarshalJSON(data []byte) error {
	in.Set = true
	in.URLs = nil

	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '"' {
		var single string
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return err
		}
		in.URLs = compactURLs([]string{single})
		return nil
	}

	var many []string
	if err := json.Unmarshal(trimmed, &many); err != nil {
		return fmt.Errorf("image must be a string or an array of strings: %w", err)
	}
	in.URLs = compactURLs(many)
	return nil
}

// First returns the first URL or "".
func (in ImageInput) First() string {
	if len(in.URLs) == 0 {
		return ""
	}
	return in.URLs[0]
}

func compactURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

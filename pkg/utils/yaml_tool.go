package utils

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"

	"gopkg.in/yaml.v2"
)

// DecodeYAMLDocuments strictly decodes each document of a multi-document stream into a
// new T and passes it to fn. Empty documents are skipped.
func DecodeYAMLDocuments[T any](content string, fn func(doc *T) error) error {
	dec := yaml.NewDecoder(bytes.NewBufferString(content))
	dec.SetStrict(true)
	for i := 1; ; i++ {
		doc := new(T)
		err := dec.Decode(doc)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}
		if reflect.ValueOf(doc).Elem().IsZero() {
			continue
		}
		if err := fn(doc); err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}
	}
}

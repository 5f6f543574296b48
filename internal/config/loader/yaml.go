package loader

import (
	"errors"
	"io"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// YAMLDecoder decodes YAML configuration.
type YAMLDecoder struct{}

var yamlLine = regexp.MustCompile(`line (\d+)`)

// Decode parses YAML from r into v. An empty document leaves v unchanged.
func (YAMLDecoder) Decode(source string, r io.Reader, v any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	err := dec.Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	perr := &ParseError{Path: source, Message: err.Error(), Err: err}
	// yaml.v3 reports positions only inside its messages.
	if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
		perr.Line, _ = strconv.Atoi(m[1])
	}
	return perr
}

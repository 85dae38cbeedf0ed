// Package cmdutil provides shared utilities for frtctl commands: target
// resolution, output formatting, and the command-line argument codec used
// by "frtctl call".
package cmdutil

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/marmos91/frtrpc/internal/frt/value"
)

// ParseArg parses a single "tag:literal" command-line argument (e.g.
// "i:42", "s:hello", "d:3.14") and appends the decoded value to vs. Scalar
// kinds are supported, plus DATA given as a hex literal ("x:cafe"); arrays
// have no compact single-token literal form and are rejected.
func ParseArg(vs *value.Values, arg string) error {
	tag, literal, ok := strings.Cut(arg, ":")
	if !ok || len(tag) != 1 {
		return fmt.Errorf("argument %q must be of the form tag:value (e.g. i:42)", arg)
	}

	switch value.Kind(tag[0]) {
	case value.KindInt8:
		n, err := strconv.ParseUint(literal, 10, 8)
		if err != nil {
			return fmt.Errorf("argument %q: %w", arg, err)
		}
		vs.AddInt8(uint8(n))
	case value.KindInt16:
		n, err := strconv.ParseUint(literal, 10, 16)
		if err != nil {
			return fmt.Errorf("argument %q: %w", arg, err)
		}
		vs.AddInt16(uint16(n))
	case value.KindInt32:
		n, err := strconv.ParseUint(literal, 10, 32)
		if err != nil {
			return fmt.Errorf("argument %q: %w", arg, err)
		}
		vs.AddInt32(uint32(n))
	case value.KindInt64:
		n, err := strconv.ParseUint(literal, 10, 64)
		if err != nil {
			return fmt.Errorf("argument %q: %w", arg, err)
		}
		vs.AddInt64(n)
	case value.KindFloat:
		f, err := strconv.ParseFloat(literal, 32)
		if err != nil {
			return fmt.Errorf("argument %q: %w", arg, err)
		}
		vs.AddFloat(float32(f))
	case value.KindDouble:
		f, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return fmt.Errorf("argument %q: %w", arg, err)
		}
		vs.AddDouble(f)
	case value.KindString:
		vs.AddString(literal)
	case value.KindData:
		b, err := hex.DecodeString(literal)
		if err != nil {
			return fmt.Errorf("argument %q: data payloads are hex-encoded: %w", arg, err)
		}
		vs.AddData(b)
	default:
		return fmt.Errorf("argument %q: unsupported or non-scalar type tag %q", arg, tag)
	}
	return nil
}

// ParseArgs parses each element of args as a "tag:literal" pair and appends
// the values to vs in order, stopping at the first argument that fails.
func ParseArgs(vs *value.Values, args []string) error {
	for _, arg := range args {
		if err := ParseArg(vs, arg); err != nil {
			return err
		}
	}
	return nil
}

package logger

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// maxErrorDepth guards against cyclic error chains.
const maxErrorDepth = 100

// messager describes an error that can report its own message without the chain.
// zerr errors and stage errors implement it.
type messager interface {
	Message() string
}

// metadataer describes an error carrying structured key/value context.
type metadataer interface {
	Metadata() map[string]any
}

// ErrorEntry is one rendered layer of an error chain.
type ErrorEntry struct {
	Message  string
	Metadata map[string]any
}

// collectErrorEntries walks the error chain and returns one entry per message.
// Metadata of layers without a message is carried to the next layer.
// Joined errors without a message of their own contribute every branch.
func collectErrorEntries(err error) []ErrorEntry {
	var (
		entries []ErrorEntry
		pending map[string]any
	)

	for depth := 0; err != nil && depth < maxErrorDepth; depth++ {
		m, ok := err.(messager)
		if !ok {
			if multi, ok := err.(interface{ Unwrap() []error }); ok {
				for i, child := range multi.Unwrap() {
					childEntries := collectErrorEntries(child)
					if i == 0 && len(childEntries) > 0 && pending != nil {
						childEntries[0].Metadata = mergeMetadata(pending, childEntries[0].Metadata)
					}
					entries = append(entries, childEntries...)
				}
				return entries
			}
			return append(entries, ErrorEntry{Message: err.Error(), Metadata: pending})
		}

		var md map[string]any
		if withMD, ok := err.(metadataer); ok {
			md = withMD.Metadata()
		}
		md = mergeMetadata(pending, md)

		if m.Message() == "" {
			pending = md
		} else {
			entries = append(entries, ErrorEntry{Message: m.Message(), Metadata: md})
			pending = nil
		}

		err = next(err)
	}

	return entries
}

// next returns the cause of err. For errors wrapping several causes the last one is followed.
func next(err error) error {
	if cause := errors.Unwrap(err); cause != nil {
		return cause
	}
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := multi.Unwrap(); len(errs) > 0 {
			return errs[len(errs)-1]
		}
	}
	return nil
}

func mergeMetadata(outer, inner map[string]any) map[string]any {
	if outer == nil {
		return inner
	}
	if inner == nil {
		return outer
	}
	merged := maps.Clone(inner)
	maps.Copy(merged, outer)
	return merged
}

// formatErrorEntries renders entries as a main error followed by its causes.
func formatErrorEntries(entries []ErrorEntry) string {
	var lines []string

	for i, entry := range entries {
		msgLines := strings.Split(entry.Message, "\n")

		if i == 0 {
			lines = append(lines, "Error: "+msgLines[0])
			for _, line := range msgLines[1:] {
				lines = append(lines, "       "+line)
			}
			lines = append(lines, formatMetadata(entry.Metadata, "       ")...)
			continue
		}

		if i == 1 {
			lines = append(lines, "", "  Caused by:")
		}
		lines = append(lines, "    → "+msgLines[0])
		for _, line := range msgLines[1:] {
			lines = append(lines, "      "+line)
		}
		lines = append(lines, formatMetadata(entry.Metadata, "      ")...)
	}

	return strings.Join(lines, "\n")
}

func formatMetadata(md map[string]any, indent string) []string {
	keys := slices.Sorted(maps.Keys(md))
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s%s: %v", indent, k, md[k]))
	}
	return lines
}

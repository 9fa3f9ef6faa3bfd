package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// TagInputKind tells how tags were supplied by the client.
type TagInputKind int

const (
	// TagsAbsent covers a missing field, null, and any JSON type other than string or array.
	TagsAbsent TagInputKind = iota
	// TagsSequence is a JSON array; non-string elements are skipped.
	TagsSequence
	// TagsDelimited is a comma-separated JSON string.
	TagsDelimited
)

// TagInput is the tagged variant of the tags field on create.
type TagInput struct {
	Kind      TagInputKind
	Items     []string
	Delimited string
}

// TagSequence returns a TagInput holding items.
func TagSequence(items ...string) TagInput {
	return TagInput{Kind: TagsSequence, Items: items}
}

// TagString returns a TagInput holding a comma-separated string.
func TagString(s string) TagInput {
	return TagInput{Kind: TagsDelimited, Delimited: s}
}

// UnmarshalJSON implements json.Unmarshaler. It never fails on a well-formed JSON value:
// unsupported shapes decode as TagsAbsent.
func (t *TagInput) UnmarshalJSON(data []byte) error {
	*t = TagInput{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = TagString(s)
	case '[':
		var raw []any
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		items := make([]string, 0, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok {
				items = append(items, s)
			}
		}
		*t = TagSequence(items...)
	}
	return nil
}

// NormalizeTags resolves a TagInput to the stored tag list: each entry trimmed, empty entries
// dropped, order preserved. The result is never nil.
func NormalizeTags(in TagInput) []string {
	var raw []string
	switch in.Kind {
	case TagsSequence:
		raw = in.Items
	case TagsDelimited:
		raw = strings.Split(in.Delimited, ",")
	}
	tags := make([]string, 0, len(raw))
	for _, tag := range raw {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

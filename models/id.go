package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

type IDKind uint8

const (
	IDKindString IDKind = iota
	IDKindInt
)

// PolymorphicID is an identifier that a host may send either as a JSON number or as a string.
// Numeric text is always stored as the Int variant, so two ids built through ParseID, IntID
// or JSON decoding compare equal with == exactly when Equal reports true, and the type can be
// used directly as a map key.
type PolymorphicID struct {
	kind IDKind
	num  int64
	text string
}

func IntID(v int64) PolymorphicID {
	return PolymorphicID{kind: IDKindInt, num: v}
}

// ParseID stores s as Int when it fully parses as a signed 64-bit integer, as String otherwise.
func ParseID(s string) PolymorphicID {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntID(v)
	}
	return PolymorphicID{kind: IDKindString, text: s}
}

func (id PolymorphicID) Kind() IDKind { return id.kind }

func (id PolymorphicID) IsInt() bool { return id.kind == IDKindInt }

// Int returns the numeric value and whether the id is the Int variant.
func (id PolymorphicID) Int() (int64, bool) {
	return id.num, id.kind == IDKindInt
}

// HasValue is false only for the zero String variant.
func (id PolymorphicID) HasValue() bool {
	return id.kind == IDKindInt || id.text != ""
}

// String returns the canonical text of the id: decimal digits for Int, the raw text for String.
func (id PolymorphicID) String() string {
	if id.kind == IDKindInt {
		return strconv.FormatInt(id.num, 10)
	}
	return id.text
}

// Compare orders two Ints numerically, two Strings lexically, and a mixed pair by the Int's
// decimal text against the String.
func (id PolymorphicID) Compare(other PolymorphicID) int {
	if id.kind == IDKindInt && other.kind == IDKindInt {
		switch {
		case id.num < other.num:
			return -1
		case id.num > other.num:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(id.String(), other.String())
}

func (id PolymorphicID) Equal(other PolymorphicID) bool {
	return id.Compare(other) == 0
}

// Hash is computed over the canonical text so that equal ids always hash equal,
// regardless of which variant each side carries.
func (id PolymorphicID) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id.String()))
	return h.Sum64()
}

func (id PolymorphicID) MarshalJSON() ([]byte, error) {
	if id.kind == IDKindInt {
		return []byte(strconv.FormatInt(id.num, 10)), nil
	}
	if id.text == "" {
		return []byte("null"), nil
	}
	return json.Marshal(id.text)
}

func (id *PolymorphicID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = PolymorphicID{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("polymorphic id: %w", err)
		}
		*id = ParseID(s)
		return nil
	}

	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("polymorphic id: %s is not a 64-bit integer or string", data)
	}
	*id = IntID(v)
	return nil
}

// MarshalText lets ids serve as JSON object keys.
func (id PolymorphicID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *PolymorphicID) UnmarshalText(data []byte) error {
	*id = ParseID(string(data))
	return nil
}

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDNumericTextIsInt(t *testing.T) {
	for _, s := range []string{"0", "42", "-7", "9223372036854775807", "-9223372036854775808"} {
		id := ParseID(s)
		assert.True(t, id.IsInt(), "%q should parse as Int", s)
		assert.Equal(t, s, id.String())
	}
}

func TestParseIDNonNumericTextIsString(t *testing.T) {
	for _, s := range []string{"abc", "12a", "preview_123_4", "9223372036854775808", "1.5", " 1"} {
		id := ParseID(s)
		assert.False(t, id.IsInt(), "%q should stay a String", s)
		assert.Equal(t, s, id.String())
	}
}

func TestHasValue(t *testing.T) {
	assert.False(t, PolymorphicID{}.HasValue())
	assert.True(t, IntID(0).HasValue())
	assert.True(t, ParseID("x").HasValue())
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, IntID(9).Compare(IntID(10)))
	assert.Equal(t, 1, ParseID("b").Compare(ParseID("a")))
	// mixed variants compare on decimal text, so 10 sorts before "9z"
	assert.Equal(t, -1, IntID(10).Compare(ParseID("9z")))
	assert.True(t, IntID(5).Equal(ParseID("5")))
}

func TestEqualIDsHashEqualAcrossVariants(t *testing.T) {
	asInt := IntID(42)
	asString := PolymorphicID{kind: IDKindString, text: "42"}

	require.True(t, asInt.Equal(asString))
	assert.Equal(t, asInt.Hash(), asString.Hash())
	assert.NotEqual(t, IntID(43).Hash(), asInt.Hash())
}

func TestJSONKeepsVariant(t *testing.T) {
	type wrapper struct {
		A PolymorphicID `json:"a"`
		B PolymorphicID `json:"b"`
		C PolymorphicID `json:"c"`
	}

	in := wrapper{A: IntID(17), B: ParseID("preview_9"), C: PolymorphicID{}}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":17,"b":"preview_9","c":null}`, string(data))

	var out wrapper
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestJSONQuotedNumberBecomesInt(t *testing.T) {
	var id PolymorphicID
	require.NoError(t, json.Unmarshal([]byte(`"123"`), &id))
	assert.True(t, id.IsInt())
	assert.Equal(t, IntID(123), id)

	require.Error(t, json.Unmarshal([]byte(`1.25`), &id))
}

func TestIDAsMapKey(t *testing.T) {
	m := map[PolymorphicID]string{IntID(1): "one", ParseID("x"): "ex"}
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var back map[PolymorphicID]string
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "one", back[ParseID("1")])
	assert.Equal(t, "ex", back[ParseID("x")])
}

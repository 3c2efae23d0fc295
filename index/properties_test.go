package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProperties_Parser(t *testing.T) {
	assert.Equal(t, ParserNone, Properties(nil).Parser())
	assert.Equal(t, ParserNone, Properties{}.Parser())
	assert.Equal(t, ParserEnglish, Properties{PropParser: ParserEnglish}.Parser())
	assert.Equal(t, ParserNone, Properties{PropParser: ""}.Parser())
}

func TestProperties_SupportPhrase(t *testing.T) {
	tests := []struct {
		name  string
		props Properties
		want  bool
	}{
		{"ExplicitTrue", Properties{PropParser: ParserEnglish, PropSupportPhrase: "true"}, true},
		{"ExplicitFalse", Properties{PropParser: ParserNone, PropSupportPhrase: "false"}, false},
		{"DefaultUntokenized", Properties{PropParser: ParserNone}, true},
		{"DefaultTokenized", Properties{PropParser: ParserEnglish}, false},
		{"Empty", Properties{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.props.SupportPhrase())
		})
	}
}

func TestKind_Width(t *testing.T) {
	assert.Equal(t, 0, KindString.Width())
	assert.Equal(t, 1, KindInt8.Width())
	assert.Equal(t, 2, KindUint16.Width())
	assert.Equal(t, 4, KindInt32.Width())
	assert.Equal(t, 4, KindFloat32.Width())
	assert.Equal(t, 8, KindInt64.Width())
	assert.Equal(t, 8, KindFloat64.Width())
}

func TestQueryType_String(t *testing.T) {
	assert.Equal(t, "PHRASE_EDGE", QueryPhraseEdge.String())
	assert.Equal(t, "UNKNOWN(0)", QueryUnknown.String())
}

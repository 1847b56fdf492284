package entry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vuedoc/internal/doctag"
	"vuedoc/internal/value"
)

func kw(names ...string) []doctag.Keyword {
	out := make([]doctag.Keyword, 0, len(names))
	for _, n := range names {
		out = append(out, doctag.Keyword{Name: n})
	}
	return out
}

func TestResolve(t *testing.T) {
	exposed := Policy{Default: Public, Exposed: map[string]bool{"open": true, "secret": true}}

	cases := []struct {
		name     string
		policy   Policy
		member   string
		keywords []doctag.Keyword
		want     Visibility
	}{
		{"default", Policy{Default: Protected}, "m", nil, Protected},
		{"empty default is public", Policy{}, "m", nil, Public},
		{"keyword overrides default", Policy{Default: Public}, "m", kw("private"), Private},
		{"allow-list demotes explicit public", exposed, "close", kw("public"), Private},
		{"allow-list promotes over default", Policy{Default: Private, Exposed: map[string]bool{"open": true}}, "open", nil, Public},
		{"allow-list keeps explicit private", exposed, "secret", kw("private"), Private},
		{"allow-list keeps explicit protected", exposed, "secret", kw("protected"), Protected},
		{"empty allow-list hides everything", Policy{Default: Public, Exposed: map[string]bool{}}, "m", nil, Private},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.policy.Resolve(tc.member, tc.keywords))
		})
	}
}

func TestApplyAndKeep(t *testing.T) {
	p := Policy{Default: Public, Ignored: []Visibility{Private}, Exposed: map[string]bool{"open": true}}

	method := &Method{Common: Common{Kind: KindMethod, Name: "close"}}
	p.Apply(method)
	assert.Equal(t, Private, method.Visibility)
	assert.False(t, p.Keep(method))

	prop := &Prop{Common: Common{Kind: KindProp, Name: "label"}}
	p.Apply(prop)
	assert.Equal(t, Public, prop.Visibility)
	assert.True(t, p.Keep(prop))

	ignored := &Prop{Common: Common{Kind: KindProp, Name: "x", Keywords: kw("ignore")}}
	p.Apply(ignored)
	assert.False(t, p.Keep(ignored))

	name := &Name{Common: Common{Kind: KindName, Name: "Button"}}
	p.Apply(name)
	assert.Empty(t, name.Visibility)
	assert.True(t, p.Keep(name))
}

func TestListJSON(t *testing.T) {
	in := List{
		&Name{Common: Common{Kind: KindName, Name: "Counter"}},
		&Prop{Common: Common{Kind: KindProp, Name: "step", Visibility: Public}, Type: value.T("number"), Default: "1"},
		&Computed{Common: Common{Kind: KindComputed, Name: "double"}, Type: value.T("number"), Dependencies: []string{"count"}},
		&Method{Common: Common{Kind: KindMethod, Name: "inc"}, Returns: Returns{Type: value.T("void")}},
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out List
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 4)

	prop, ok := out.Find(KindProp, "step")
	require.True(t, ok)
	assert.Equal(t, "1", prop.(*Prop).Default)
	assert.Equal(t, value.Type{"number"}, prop.(*Prop).Type)
	assert.Len(t, out.Filter(KindComputed), 1)

	_, err = Decode([]byte(`{"kind":"bogus"}`))
	assert.Error(t, err)
}

func TestGoverned(t *testing.T) {
	p := Policy{Default: Public, Exposed: map[string]bool{}}

	for _, kind := range []Kind{KindData, KindComputed, KindMethod} {
		assert.True(t, Governed(kind), kind)
	}
	for _, kind := range []Kind{KindProp, KindEvent, KindSlot, KindModel} {
		assert.False(t, Governed(kind), kind)
	}

	event := &Event{Common: Common{Kind: KindEvent, Name: "change"}}
	p.Apply(event)
	assert.Equal(t, Public, event.Visibility)

	computed := &Computed{Common: Common{Kind: KindComputed, Name: "total"}}
	p.Apply(computed)
	assert.Equal(t, Private, computed.Visibility)
}

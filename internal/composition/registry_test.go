package composition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryPrecedence(t *testing.T) {
	reg := NewRegistry(
		Rule{Name: "useThing", Feature: Methods},
		Rule{Name: "useThing", Feature: Events},
		Rule{Name: "useThing", Feature: Data},
	)

	rule, ok := reg.Lookup("useThing")
	require.True(t, ok)
	assert.Equal(t, Data, rule.Feature)

	reg.Add(Rule{Name: "useThing", Feature: Props})
	rule, _ = reg.Lookup("useThing")
	assert.Equal(t, Props, rule.Feature)
}

func TestRegistryLaterRuleWinsInBucket(t *testing.T) {
	reg := NewRegistry(Rule{Name: "useA", Feature: Data, ValueIndex: Arg(0)})
	reg.Add(Rule{Name: "useA", Feature: Data, ValueIndex: Arg(1)})

	rule, ok := reg.Lookup("useA")
	require.True(t, ok)
	require.NotNil(t, rule.ValueIndex)
	assert.Equal(t, 1, *rule.ValueIndex)
}

func TestRegistryInstancesAreIndependent(t *testing.T) {
	base := DefaultRegistry()
	plugin := base.Clone()
	plugin.Add(Rule{Name: "useStore", Feature: Data})

	_, ok := plugin.Lookup("useStore")
	assert.True(t, ok)
	_, ok = base.Lookup("useStore")
	assert.False(t, ok)
	_, ok = DefaultRegistry().Lookup("useStore")
	assert.False(t, ok)
}

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	cases := map[string]Feature{
		"defineProps":  Props,
		"withDefaults": Props,
		"ref":          Data,
		"reactive":     Data,
		"computed":     Computed,
		"defineEmits":  Events,
	}
	for name, feature := range cases {
		rule, ok := reg.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, feature, rule.Feature, name)
	}

	ref, _ := reg.Lookup("ref")
	assert.True(t, ref.HasSuffix("value"))
	assert.Contains(t, reg.Names(), "shallowRef")

	_, ok := reg.Lookup("watch")
	assert.False(t, ok)
}

func TestParseFeature(t *testing.T) {
	f, err := ParseFeature("computed")
	require.NoError(t, err)
	assert.Equal(t, Computed, f)

	_, err = ParseFeature("slots")
	assert.Error(t, err)
}

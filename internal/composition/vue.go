package composition

import (
	sitter "github.com/smacker/go-tree-sitter"

	"vuedoc/internal/syntax"
	"vuedoc/internal/value"
)

// FrameworkModules are imported for their composition functions only; the
// engine never loads them.
var FrameworkModules = []string{"vue", "@vue/composition-api", "vue-demi", "@vue/runtime-core", "@vue/reactivity"}

// DefaultRegistry returns the rules of the Vue composition API.
func DefaultRegistry() *Registry {
	refRule := func(name string) Rule {
		return Rule{
			Name:               name,
			Feature:            Data,
			ValueIndex:         Arg(0),
			TypeParameterIndex: Arg(0),
			IdentifierSuffixes: []string{"value"},
		}
	}
	reactiveRule := func(name string) Rule {
		return Rule{Name: name, Feature: Data, ValueIndex: Arg(0), TypeParameterIndex: Arg(0)}
	}

	return NewRegistry(
		Rule{
			Name:               "defineProps",
			Feature:            Props,
			TypeParameterIndex: Arg(0),
			ParseEntryNode:     firstArgument,
		},
		Rule{Name: "withDefaults", Feature: Props, ValueIndex: Arg(0)},
		Rule{
			Name:               "defineModel",
			Feature:            Props,
			TypeParameterIndex: Arg(0),
			IdentifierSuffixes: []string{"value"},
			ParseEntryValue:    modelDefault,
		},

		refRule("ref"),
		refRule("shallowRef"),
		refRule("customRef"),
		reactiveRule("reactive"),
		reactiveRule("shallowReactive"),
		reactiveRule("readonly"),
		reactiveRule("shallowReadonly"),
		Rule{Name: "toRef", Feature: Data, IdentifierSuffixes: []string{"value"}},
		Rule{Name: "toRefs", Feature: Data, ValueIndex: Arg(0)},
		Rule{Name: "useTemplateRef", Feature: Data, TypeParameterIndex: Arg(0), IdentifierSuffixes: []string{"value"}},

		Rule{
			Name:               "computed",
			Feature:            Computed,
			TypeParameterIndex: Arg(0),
			IdentifierSuffixes: []string{"value"},
			ParseEntryValue:    computedGetter,
		},

		Rule{
			Name:               "defineEmits",
			Feature:            Events,
			TypeParameterIndex: Arg(0),
			ParseEntryNode:     firstArgument,
		},
	)
}

func firstArgument(call *sitter.Node, _ Evaluator) *sitter.Node {
	args := syntax.Arguments(call)
	if len(args) == 0 {
		return nil
	}
	return syntax.Unwrap(args[0])
}

// modelDefault reads `default` from defineModel([name,] options).
func modelDefault(call *sitter.Node, ev Evaluator) *value.Value {
	for _, arg := range syntax.Arguments(call) {
		arg = syntax.Unwrap(arg)
		if arg.Type() != syntax.KindObject {
			continue
		}
		if member := ev.File().ObjectMember(arg, "default"); member != nil {
			return ev.Value(syntax.MemberValue(member))
		}
		if member := ev.File().ObjectMember(arg, "type"); member != nil {
			return &value.Value{Type: ev.TypeOf(syntax.MemberValue(member)), Value: value.Undefined, Raw: "undefined"}
		}
	}
	return value.UndefinedValue().WithType(value.T(value.TypeUnknown))
}

// computedGetter types computed(() => expr) and computed({ get, set }) by
// the getter's return type.
func computedGetter(call *sitter.Node, ev Evaluator) *value.Value {
	args := syntax.Arguments(call)
	if len(args) == 0 {
		return value.Unknown(ev.File().Text(call))
	}
	getter := syntax.Unwrap(args[0])
	if getter.Type() == syntax.KindObject {
		if member := ev.File().ObjectMember(getter, "get"); member != nil {
			getter = syntax.MemberValue(member)
		}
	}
	raw := ev.File().Text(call)
	if !syntax.IsFunction(getter.Type()) {
		return value.Unknown(raw)
	}
	return &value.Value{Type: ev.ReturnType(getter), Value: raw, Raw: raw, Kind: "computed"}
}

package resolver

import (
	"context"
	"errors"
	"testing"
)

func TestChain_Resolve(t *testing.T) {
	files := map[string]string{
		"/app/src/components/Button.vue":     "<script>export default {}</script>",
		"/app/src/utils/index.ts":            "export const a = 1",
		"/app/src/store.js":                  "export default {}",
		"/app/node_modules/lib/dist/x.js":    "export const x = 1",
		"/app/node_modules/lib/package.json": `{"module": "dist/x.js"}`,
	}
	chain := NewMemoryChain(files,
		RelativeStage{},
		AliasStage{Root: "/app", Aliases: map[string]string{"@/": "src/"}},
		NodeModulesStage{Root: "/app", ReadFile: func(name string) ([]byte, error) {
			if c, ok := files[name]; ok {
				return []byte(c), nil
			}
			return nil, ErrNotFound
		}},
	)

	cases := []struct {
		spec string
		from string
		want string
	}{
		{"./Button.vue", "/app/src/components/Other.vue", "/app/src/components/Button.vue"},
		{"./Button", "/app/src/components/Other.vue", "/app/src/components/Button.vue"},
		{"../utils", "/app/src/components/Other.vue", "/app/src/utils/index.ts"},
		{"@/store", "/app/src/components/Other.vue", "/app/src/store.js"},
		{"lib", "/app/src/components/Other.vue", "/app/node_modules/lib/dist/x.js"},
	}
	for _, tc := range cases {
		mod, err := chain.Resolve(context.Background(), tc.spec, tc.from)
		if err != nil {
			t.Fatalf("resolve %q: %v", tc.spec, err)
		}
		if mod.Path != tc.want {
			t.Fatalf("resolve %q: got %s, want %s", tc.spec, mod.Path, tc.want)
		}
	}

	_, err := chain.Resolve(context.Background(), "./missing", "/app/src/a.js")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestChain_Stats(t *testing.T) {
	chain := NewMemoryChain(map[string]string{"/a/b.js": ""})
	if _, err := chain.Resolve(context.Background(), "./b", "/a/main.js"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	_, _ = chain.Resolve(context.Background(), "./c", "/a/main.js")

	stats := chain.Stats()
	if len(stats) != 1 || stats[0].Resolver != "relative" {
		t.Fatalf("unexpected stages: %+v", stats)
	}
	if stats[0].Stats.Attempted != 2 || stats[0].Stats.Resolved != 1 {
		t.Fatalf("unexpected stats: %+v", stats[0].Stats)
	}
}

func TestAliasStage_LongestPrefix(t *testing.T) {
	s := AliasStage{Root: "/r", Aliases: map[string]string{"@": "src", "@/lib/": "/vendor/lib/"}}
	got := s.Candidates("@/lib/x", "/r")
	if len(got) != 1 || got[0] != "/vendor/lib/x" {
		t.Fatalf("unexpected candidates: %v", got)
	}
}

package compose

import (
	"reflect"
	"testing"
)

func TestMergeTree_MapsRecurseScalarsReplace(t *testing.T) {
	dst := map[string]any{
		"a": map[string]any{"x": 1, "y": 2},
		"b": "keep",
		"c": "old",
	}
	src := map[string]any{
		"a": map[string]any{"y": 20, "z": 30},
		"c": "new",
		"d": true,
	}

	mergeTree(dst, src, "")

	want := map[string]any{
		"a": map[string]any{"x": 1, "y": 20, "z": 30},
		"b": "keep",
		"c": "new",
		"d": true,
	}
	if !reflect.DeepEqual(dst, want) {
		t.Errorf("merged = %#v, want %#v", dst, want)
	}
}

func TestMergeTree_SlicesReplace(t *testing.T) {
	dst := map[string]any{"list": []any{"a", "b"}}
	src := map[string]any{"list": []any{"c"}}

	mergeTree(dst, src, "")

	if !reflect.DeepEqual(dst["list"], []any{"c"}) {
		t.Errorf("list = %v, want [c]", dst["list"])
	}
}

func TestMergeTree_AdditiveInjectList(t *testing.T) {
	dst := map[string]any{
		"runtime": map[string]any{"inject": []any{"a.js"}},
	}
	src := map[string]any{
		"runtime": map[string]any{"inject": []any{"b.js", "a.js"}},
	}

	mergeTree(dst, src, "")

	got := dst["runtime"].(map[string]any)["inject"]
	if !reflect.DeepEqual(got, []any{"a.js", "b.js"}) {
		t.Errorf("inject = %v, want [a.js b.js]", got)
	}
}

func TestMergeTree_InjectOutsideRuntimeReplaces(t *testing.T) {
	// Only runtime.inject is additive; an inject key elsewhere follows the
	// normal replace rule.
	dst := map[string]any{"other": map[string]any{"inject": []any{"a.js"}}}
	src := map[string]any{"other": map[string]any{"inject": []any{"b.js"}}}

	mergeTree(dst, src, "")

	got := dst["other"].(map[string]any)["inject"]
	if !reflect.DeepEqual(got, []any{"b.js"}) {
		t.Errorf("other.inject = %v, want [b.js]", got)
	}
}

func TestMergeAdditiveList_NilSides(t *testing.T) {
	if got := mergeAdditiveList(nil, []any{"a"}); !reflect.DeepEqual(got, []any{"a"}) {
		t.Errorf("nil dst: %v", got)
	}
	if got := mergeAdditiveList([]any{"a"}, nil); !reflect.DeepEqual(got, []any{"a"}) {
		t.Errorf("nil src: %v", got)
	}
}

func TestAsList(t *testing.T) {
	if got := asList([]string{"a", "b"}); len(got) != 2 || got[0] != "a" {
		t.Errorf("[]string: %v", got)
	}
	if got := asList(nil); got != nil {
		t.Errorf("nil: %v", got)
	}
	if got := asList("single"); len(got) != 1 || got[0] != "single" {
		t.Errorf("scalar: %v", got)
	}
}

package merge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lerrors "github.com/saturnines/ledger-core/pkg/errors"
)

func mustMerge(t *testing.T, source, destination Record, m Map, opts *Options) Record {
	t.Helper()
	res, err := MergeInto(source, destination, m, nil, opts)
	require.NoError(t, err)
	return res
}

func TestDeepUpdateValue(t *testing.T) {
	obj := Record{"a": Record{"b": Record{"foo": 0}}}

	assert.True(t, DeepUpdateValue(obj, "a.b.foo", 100, false))
	assert.Equal(t, 100, obj["a"].(Record)["b"].(Record)["foo"])

	assert.False(t, DeepUpdateValue(obj, "a.b.bar", 100, false))
	assert.NotContains(t, obj["a"].(Record)["b"], "bar")

	assert.True(t, DeepUpdateValue(obj, "a.b.bar", 100, true))
	assert.Equal(t, 100, obj["a"].(Record)["b"].(Record)["bar"])
}

func TestMergeInto_Paths(t *testing.T) {
	tests := []struct {
		name        string
		source      Record
		destination Record
		m           Map
		want        Record
	}{
		{
			name:        "flat",
			source:      Record{"a": 1, "b": 2},
			destination: Record{"foo": 5, "bar": 10, "test": "value"},
			m:           Map{{"a", Path("foo")}, {"b", Path("bar")}},
			want:        Record{"foo": 1, "bar": 2, "test": "value"},
		},
		{
			name:        "nested",
			source:      Record{"a": 1, "b": 2},
			destination: Record{"foo": Record{"test": 25}, "bar": 10},
			m:           Map{{"a", Path("foo.test")}},
			want:        Record{"foo": Record{"test": 1}, "bar": 10},
		},
		{
			name:        "missing destination path is not created",
			source:      Record{"a": 1},
			destination: Record{"foo": "bar"},
			m:           Map{{"a", Path("newKey")}},
			want:        Record{"foo": "bar"},
		},
		{
			name:        "first of",
			source:      Record{"a": 1},
			destination: Record{"foo": Record{"test": 25}, "bar": 10},
			m:           Map{{"a", FirstOf{Path("wrong"), Path("foo.test"), Path("bar")}}},
			want:        Record{"foo": Record{"test": 1}, "bar": 10},
		},
		{
			name:        "first of with no match",
			source:      Record{"a": 1},
			destination: Record{"foo": Record{"test": 25}},
			m:           Map{{"a", FirstOf{Path("wrong"), Path("also wrong")}}},
			want:        Record{"foo": Record{"test": 25}},
		},
		{
			name:        "key not present in source",
			source:      Record{"a": 1},
			destination: Record{"foo": "bar"},
			m:           Map{{"b", Path("foo")}},
			want:        Record{"foo": "bar"},
		},
		{
			name:        "null source value is skipped",
			source:      Record{"a": 1, "b": nil},
			destination: Record{"foo": "bar", "test": "value"},
			m:           Map{{"a", Path("foo")}, {"b", Path("test")}},
			want:        Record{"foo": 1, "test": "value"},
		},
		{
			name:        "nullable writes null",
			source:      Record{"a": 1, "b": nil},
			destination: Record{"foo": "bar", "test": "value"},
			m:           Map{{"a", Path("foo")}, {"b", Field{Path: "test", Nullable: true}}},
			want:        Record{"foo": 1, "test": nil},
		},
		{
			name:        "nullable nested",
			source:      Record{"b": nil},
			destination: Record{"nested": Record{"structure": "foo", "test": "bar"}},
			m:           Map{{"b", Field{Path: "nested.structure", Nullable: true}}},
			want:        Record{"nested": Record{"structure": nil, "test": "bar"}},
		},
		{
			name:        "nullable is not applied when key is absent",
			source:      Record{"a": 1},
			destination: Record{"foo": "bar", "nested": Record{"structure": "foo"}},
			m:           Map{{"a", Path("foo")}, {"b", Field{Path: "nested.structure", ShouldSet: true, Nullable: true}}},
			want:        Record{"foo": 1, "nested": Record{"structure": "foo"}},
		},
		{
			name:        "field should set",
			source:      Record{"a": 1, "b": 2},
			destination: Record{"foo": "bar", "test": "value"},
			m:           Map{{"a", Path("foo")}, {"b", Field{Path: "newKey", ShouldSet: true}}},
			want:        Record{"foo": 1, "test": "value", "newKey": 2},
		},
		{
			name:        "delete destination paths",
			source:      Record{"a": 1, "b": 2},
			destination: Record{"foo": "bar", "test": "value", "nested": Record{"structure": "foo", "test": "bar"}},
			m: Map{
				{"a", Path("foo")},
				{"b", Field{Path: "test", DeleteDestinationPaths: []string{"foo", "nested.structure"}}},
			},
			want: Record{"test": 2, "nested": Record{"test": "bar"}},
		},
		{
			name:        "no delete when source value is null",
			source:      Record{"a": 1, "b": nil},
			destination: Record{"foo": "bar", "test": "value", "nested": Record{"structure": "foo"}},
			m: Map{
				{"a", Path("foo")},
				{"b", Field{Path: "test", DeleteDestinationPaths: []string{"foo", "nested.structure"}}},
			},
			want: Record{"foo": 1, "test": "value", "nested": Record{"structure": "foo"}},
		},
		{
			name:        "delete happens even when the write finds nothing",
			source:      Record{"b": 2},
			destination: Record{"foo": "bar"},
			m:           Map{{"b", Field{Path: "missing", DeleteDestinationPaths: []string{"foo"}}}},
			want:        Record{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustMerge(t, tt.source, tt.destination, tt.m, nil))
		})
	}
}

func TestMergeInto_DoesNotMutateDestination(t *testing.T) {
	source := Record{"a": 1, "lines": []interface{}{Record{"id": "1", "foo": "bar"}}}
	destination := Record{
		"foo":  Record{"test": 25},
		"Line": []interface{}{Record{"lineId": "1", "b": 2}, Record{"lineId": "2", "b": 3}},
	}
	m := Map{
		{"a", FirstOf{Path("wrong"), Path("foo.test")}},
		{"lines", Array{
			Accessor: "Line",
			Matcher:  []string{"id", "lineId"},
			Map:      Map{{"foo", Path("b")}},
		}},
	}

	res := mustMerge(t, source, destination, m, nil)

	assert.Equal(t, 1, res["foo"].(Record)["test"])
	assert.Equal(t, 25, destination["foo"].(Record)["test"])
	assert.Equal(t, Record{
		"foo":  Record{"test": 25},
		"Line": []interface{}{Record{"lineId": "1", "b": 2}, Record{"lineId": "2", "b": 3}},
	}, destination)
}

func TestMergeInto_Idempotent(t *testing.T) {
	source := Record{"a": 1, "b": "x", "c": nil}
	destination := Record{"foo": 0, "nested": Record{"bar": "y", "gone": true}}
	m := Map{
		{"a", Path("foo")},
		{"b", Field{Path: "nested.bar", DeleteDestinationPaths: []string{"nested.gone"}}},
		{"c", Field{Path: "created", ShouldSet: true, Nullable: true}},
	}

	once := mustMerge(t, source, destination, m, nil)
	twice := mustMerge(t, source, once, m, nil)
	assert.Equal(t, once, twice)
}

func TestMergeInto_Func(t *testing.T) {
	destination := Record{"DocNumber": "1", "PaymentRefNum": "2"}
	m := Map{
		{"num", Func(func(source, _ Record) (Accessor, error) {
			if source["type"] == "payment" {
				return Field{Path: "PaymentRefNum", ShouldSet: true}, nil
			}
			return Path("DocNumber"), nil
		})},
		{"nilAccessor", Func(func(_, _ Record) (Accessor, error) { return nil, nil })},
		{"errors", Func(func(_, _ Record) (Accessor, error) { return nil, errors.New("boom") })},
		{"panics", Func(func(source, _ Record) (Accessor, error) {
			return Path(source["missing"].(string)), nil
		})},
	}

	source := Record{"type": "payment", "num": "99", "nilAccessor": 1, "errors": 1, "panics": 1}
	res := mustMerge(t, source, destination, m, nil)
	assert.Equal(t, Record{"DocNumber": "1", "PaymentRefNum": "99"}, res)

	source["type"] = "invoice"
	res = mustMerge(t, source, destination, m, nil)
	assert.Equal(t, Record{"DocNumber": "99", "PaymentRefNum": "2"}, res)
}

func TestMergeInto_FuncSeesParent(t *testing.T) {
	source := Record{
		"transactionType": "journalEntry",
		"lines":           []interface{}{Record{"lineId": "1", "entity": "Acme"}},
	}
	destination := Record{"Line": []interface{}{Record{"Id": "1"}}}
	lineMap := Map{
		{"entity", Func(func(_, parent Record) (Accessor, error) {
			if parent["transactionType"] == "journalEntry" {
				return Field{Path: "Entity.Name", ShouldSet: true}, nil
			}
			return nil, nil
		})},
	}
	m := Map{{"lines", Array{Accessor: "Line", Matcher: []string{"lineId", "Id"}, Map: lineMap}}}

	res := mustMerge(t, source, destination, m, nil)
	assert.Equal(t, Record{"Line": []interface{}{Record{"Id": "1", "Entity": Record{"Name": "Acme"}}}}, res)
}

func TestMergeInto_NoDestination(t *testing.T) {
	source := Record{"a": 1, "b": 2, "c": 3}
	m := Map{
		{"a", Path("foo.bar")},
		{"b", FirstOf{Path("x"), Field{Path: "y", ShouldSet: true}}},
		{"c", Field{Path: "baz"}},
	}

	res := mustMerge(t, source, nil, m, &Options{ShouldSet: true})
	assert.Equal(t, Record{"foo": Record{"bar": 1}, "baz": 3}, res, "path lists never write without a destination")

	res = mustMerge(t, source, nil, m, nil)
	assert.Equal(t, Record{}, res)
}

func TestValidate(t *testing.T) {
	good := Map{
		{"a", Path("foo")},
		{"lines", Array{
			Accessor: "Line",
			Matcher:  []string{"id", "Id"},
			Map:      Map{{"x", FirstOf{Path("a"), Path("b")}}},
		}},
		{"add", Array{Accessor: "Line", Map: Map{{"x", Path("a")}}, ShouldSet: true}},
		{"delete", Array{Accessor: "Line", Matcher: []string{"id", "Id"}, ShouldDelete: true}},
	}
	assert.NoError(t, Validate(good, nil))

	err := Validate(Map{{"a", FirstOf{Path("x")}}}, &Options{ShouldSet: true})
	require.Error(t, err)
	assert.True(t, lerrors.Is(err, lerrors.ErrConfiguration))

	err = Validate(Map{
		{"add", Array{Accessor: "Line", Map: Map{{"x", FirstOf{Path("a")}}}, ShouldSet: true}},
	}, nil)
	assert.Error(t, err)

	err = Validate(Map{{"lines", Array{Accessor: "Line", Map: Map{{"x", Path("a")}}}}}, nil)
	assert.Error(t, err, "updating requires a matcher")

	err = Validate(Map{{"lines", Array{Matcher: []string{"a", "b"}, ShouldDelete: true}}}, nil)
	assert.Error(t, err, "accessor is required")

	err = Validate(Map{{"a", Path("x")}, {"a", Path("y")}}, nil)
	assert.ErrorContains(t, err, "duplicate key")
}

func TestMergeInto_DeclarationOrder(t *testing.T) {
	source := Record{"first": "a", "second": "b"}
	destination := Record{"x": "old", "y": "keep"}
	m := Map{
		{"first", Field{Path: "x", ShouldSet: true}},
		{"second", Field{Path: "y", DeleteDestinationPaths: []string{"x"}}},
	}
	assert.Equal(t, Record{"y": "b"}, mustMerge(t, source, destination, m, nil))

	m[0], m[1] = m[1], m[0]
	assert.Equal(t, Record{"x": "a", "y": "b"}, mustMerge(t, source, destination, m, nil))
}

func TestMap_GetAndKeys(t *testing.T) {
	m := Map{{"b", Path("y")}, {"a", Path("x")}}
	assert.Equal(t, []string{"b", "a"}, m.Keys())

	a, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, Path("x"), a)

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

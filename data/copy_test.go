// Copyright (c) 2020, AT&T Intellectual Property.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package data

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"
)

// composites returns every composite handle reachable from val.
func composites(val *Value) map[interface{}]struct{} {
	out := make(map[interface{}]struct{})
	var walk func(*Value)
	walk = func(v *Value) {
		h := v.handle()
		if h == nil {
			return
		}
		if _, seen := out[h]; seen {
			return
		}
		out[h] = struct{}{}
		switch d := h.(type) {
		case *Sequence:
			d.Range(walk)
		case *Mapping:
			d.Range(walk)
		}
	}
	walk(val)
	return out
}

func requireDisjoint(t *testing.T, a, b *Value) {
	t.Helper()
	ha := composites(a)
	for h := range composites(b) {
		_, shared := ha[h]
		require.Falsef(t, shared, "composite %v is shared", h)
	}
}

func TestCopyScenario(t *testing.T) {
	original := MustParse(`[[1, 2, 3], [4, 5, 5]]`)
	shallow := ShallowCopy(original)
	deep, err := DeepCopy(original)
	require.NoError(t, err)

	shallow.AsSequence().Append("test")
	require.True(t, shallow.Equal(MustParse(`[[1,2,3],[4,5,5],"test"]`)),
		"shallow: %s", shallow)
	require.True(t, original.Equal(MustParse(`[[1,2,3],[4,5,5]]`)),
		"original: %s", original)
	require.True(t, deep.Equal(MustParse(`[[1,2,3],[4,5,5]]`)),
		"deep: %s", deep)

	shallow.AsSequence().At(0).AsSequence().Assoc(0, "X")
	require.Equal(t, `["X",2,3]`, shallow.AsSequence().At(0).String())
	require.Equal(t, `["X",2,3]`, original.AsSequence().At(0).String())
	require.Equal(t, `[[1,2,3],[4,5,5]]`, deep.String())

	deep.AsSequence().At(0).AsSequence().Assoc(0, "Y")
	require.Equal(t, `[["Y",2,3],[4,5,5]]`, deep.String())
	require.Equal(t, `[["X",2,3],[4,5,5],"test"]`, shallow.String())
	require.Equal(t, `[["X",2,3],[4,5,5]]`, original.String())
}

func TestShallowCopy(t *testing.T) {
	cases := []struct {
		name string
		lit  string
	}{
		{"sequence", `[[1,2,3],[4,5,5]]`},
		{"mapping", `{"a":[1],"b":{"c":2},"d":"e"}`},
		{"mixed", `[{"a":[1,2]},[[]],"x",null]`},
		{"empty", `[]`},
	}
	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			src := MustParse(test.lit)
			cpy := ShallowCopy(src)

			require.True(t, cpy.Equal(src))
			require.False(t, cpy.Is(src))
			require.Equal(t, src.Kind(), cpy.Kind())

			switch src.Kind() {
			case SequenceKind:
				src.AsSequence().Range(func(i int, v *Value) {
					require.Truef(t, v.Is(cpy.AsSequence().At(i)),
						"element %d should be the same handle", i)
				})
			case MappingKind:
				src.AsMapping().Range(func(k string, v *Value) {
					require.Truef(t, v.Is(cpy.AsMapping().At(k)),
						"member %s should be the same handle", k)
				})
			}
		})
	}
}

func TestShallowCopyTopLevelIndependence(t *testing.T) {
	t.Run("sequence", func(t *testing.T) {
		src := MustParse(`[1,[2]]`)
		cpy := ShallowCopy(src)
		cpy.AsSequence().Delete(0)
		src.AsSequence().Append(3)
		require.Equal(t, `[1,[2],3]`, src.String())
		require.Equal(t, `[[2]]`, cpy.String())
	})
	t.Run("mapping", func(t *testing.T) {
		src := MustParse(`{"a":1,"b":[2]}`)
		cpy := ShallowCopy(src)
		cpy.AsMapping().Delete("a").Assoc("c", 3)
		require.Equal(t, `{"a":1,"b":[2]}`, src.String())
		require.Equal(t, `{"b":[2],"c":3}`, cpy.String())
	})
}

func TestShallowCopySharesNested(t *testing.T) {
	t.Run("sequence", func(t *testing.T) {
		src := MustParse(`[[1],{"k":"v"}]`)
		cpy := ShallowCopy(src)
		cpy.AsSequence().At(0).AsSequence().Append(2)
		cpy.AsSequence().At(1).AsMapping().Assoc("k", "w")
		require.Equal(t, `[[1,2],{"k":"w"}]`, src.String())
	})
	t.Run("mapping", func(t *testing.T) {
		src := MustParse(`{"a":[1]}`)
		cpy := ShallowCopy(src)
		src.AsMapping().At("a").AsSequence().Append(2)
		require.Equal(t, `{"a":[1,2]}`, cpy.String())
	})
}

func TestShallowCopyAtom(t *testing.T) {
	atom := ValueNew("foo")
	require.True(t, ShallowCopy(atom).Is(atom))
	require.Nil(t, ShallowCopy(nil))
}

func TestDeepCopy(t *testing.T) {
	cases := []struct {
		name string
		lit  string
	}{
		{"sequence", `[[1,2,3],[4,5,5]]`},
		{"mapping", `{"a":[1,{"b":[2,[3]]}],"c":{}}`},
		{"atom", `"foo"`},
		{"deep", `[[[[[[[[["bottom"]]]]]]]]]`},
		{"empty", `{}`},
	}
	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			src := MustParse(test.lit)
			for _, policy := range []CyclePolicy{CyclePreserve, CycleReject} {
				t.Run(policy.String(), func(t *testing.T) {
					cpy, err := DeepCopy(src, Cycles(policy))
					require.NoError(t, err)
					require.True(t, cpy.Equal(src), "copy: %s", cpy)
					require.Equal(t, src.Kind(), cpy.Kind())
					if src.IsComposite() {
						require.False(t, cpy.Is(src))
					}
					requireDisjoint(t, src, cpy)
				})
			}
		})
	}
}

func TestDeepCopyIndependence(t *testing.T) {
	src := MustParse(`{"a":[1,{"b":[2]}],"c":{"d":[]}}`)
	cpy := MustDeepCopy(src)
	before := src.String()

	cpy.AsMapping().At("a").AsSequence().At(1).AsMapping().
		At("b").AsSequence().Append(3)
	cpy.AsMapping().At("c").AsMapping().At("d").AsSequence().Append("x")
	cpy.AsMapping().Delete("a")
	require.Equal(t, before, src.String())

	src.AsMapping().At("c").AsMapping().Assoc("e", 1)
	require.Equal(t, `{"c":{"d":["x"]}}`, cpy.String())
}

func TestDeepCopyAtomsAreShared(t *testing.T) {
	atom := ValueNew("shared")
	src := ValueNew(SequenceWith(atom, atom))
	cpy := MustDeepCopy(src)
	require.True(t, cpy.AsSequence().At(0).Is(atom))
	require.Nil(t, MustDeepCopy(nil))
}

func TestDeepCopyTyped(t *testing.T) {
	seq := SequenceWith(SequenceWith(1))
	seqCopy := seq.DeepCopy()
	require.True(t, seqCopy.Equal(seq))
	require.False(t, seqCopy.At(0).Is(seq.At(0)))

	m := MappingWith(PairNew("a", MappingNew()))
	mCopy := m.DeepCopy()
	require.True(t, mCopy.Equal(m))
	require.False(t, mCopy.At("a").Is(m.At("a")))

	var copiers []interface{}
	copiers = append(copiers, DeepCopier[*Sequence](seq),
		DeepCopier[*Mapping](m))
	require.Len(t, copiers, 2)
}

func TestDeepCopySharedSubstructure(t *testing.T) {
	inner := SequenceWith(1, 2)
	src := ValueNew(SequenceWith(inner, inner))

	t.Run("preserve keeps sharing", func(t *testing.T) {
		cpy := MustDeepCopy(src)
		first, second := cpy.AsSequence().At(0), cpy.AsSequence().At(1)
		require.True(t, first.Is(second))
		require.False(t, first.Is(ValueNew(inner)))
		requireDisjoint(t, src, cpy)
	})
	t.Run("reject copies each occurrence", func(t *testing.T) {
		cpy, err := DeepCopy(src, Cycles(CycleReject))
		require.NoError(t, err)
		first, second := cpy.AsSequence().At(0), cpy.AsSequence().At(1)
		require.False(t, first.Is(second))
		require.True(t, first.Equal(second))
		requireDisjoint(t, src, cpy)
	})
}

func TestDeepCopyCycles(t *testing.T) {
	t.Run("preserve", func(t *testing.T) {
		seq := SequenceWith(1)
		seq.Append(seq)
		cpy := MustDeepCopy(ValueNew(seq))
		require.True(t, cpy.AsSequence().At(1).Is(cpy))
		require.False(t, cpy.Is(ValueNew(seq)))
		require.Equal(t, `[1,[...]]`, cpy.String())
	})
	t.Run("preserve mapping", func(t *testing.T) {
		m := MappingNew()
		m.Assoc("self", SequenceWith(m))
		cpy := MustDeepCopy(ValueNew(m)).AsMapping()
		back := cpy.At("self").AsSequence().At(0)
		require.True(t, back.Is(ValueNew(cpy)))
		require.Equal(t, `{"self":[{...}]}`, cpy.String())
	})
	t.Run("reject", func(t *testing.T) {
		m := MappingNew()
		inner := SequenceWith("a")
		m.Assoc("list", inner)
		inner.Append(m)

		cpy, err := DeepCopy(ValueNew(m), Cycles(CycleReject))
		require.Nil(t, cpy)
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrCycleDetected))

		var cycleErr *CycleError
		require.True(t, errors.As(err, &cycleErr))
		require.Equal(t, []interface{}{"list", 1}, cycleErr.Path)
		require.Contains(t, err.Error(), "cycle detected at /list/1")
	})
	t.Run("must panics", func(t *testing.T) {
		seq := SequenceNew()
		seq.Append(seq)
		require.Panics(t, func() {
			MustDeepCopy(ValueNew(seq), Cycles(CycleReject))
		})
	})
}

func TestDeepCopyNilElements(t *testing.T) {
	t.Run("sequence", func(t *testing.T) {
		seq := SequenceWith((*Value)(nil), 1)
		require.True(t, seq.At(0).IsNull())

		out, err := DeepCopy(ValueNew(seq))
		require.NoError(t, err)
		require.True(t, out.Equal(ValueNew(SequenceWith(nil, 1))))
	})
	t.Run("mapping", func(t *testing.T) {
		m := MappingWith(Pair{}, PairNew("a", (*Value)(nil)))
		require.True(t, m.At("").IsNull())
		require.True(t, m.At("a").IsNull())

		out, err := DeepCopy(ValueNew(m))
		require.NoError(t, err)
		require.Equal(t, `{"":null,"a":null}`, out.String())
	})
	t.Run("broken value panics", func(t *testing.T) {
		seq := SequenceNew()
		seq.store = seq.store.Append((*Value)(nil))
		require.Panics(t, func() {
			DeepCopy(ValueNew(seq))
		})
	})
}

func TestDeepCopyLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	inner := SequenceNew()
	src := ValueNew(SequenceWith(inner, inner))
	_, err := DeepCopy(src, WithLogger(log))
	require.NoError(t, err)
	reused := logs.FilterMessage("reusing copied composite").All()
	require.Len(t, reused, 1)
	require.Equal(t, "/1", reused[0].ContextMap()["path"])

	seq := SequenceNew()
	seq.Append(seq)
	_, err = DeepCopy(ValueNew(seq), WithLogger(log), Cycles(CycleReject))
	require.Error(t, err)
	require.Equal(t, 1, logs.FilterMessage("rejecting cycle").Len())
}

func TestDeepCopyConcurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		i := i
		g.Go(func() error {
			src := MustParse(fmt.Sprintf(`{"id":%d,"items":[[1,2],[3]]}`, i))
			shallow := ShallowCopy(src)
			deep, err := DeepCopy(src)
			if err != nil {
				return err
			}
			deep.AsMapping().At("items").AsSequence().At(0).
				AsSequence().Append(i)
			shallow.AsMapping().Assoc("id", -1)
			if !src.Equal(MustParse(fmt.Sprintf(
				`{"id":%d,"items":[[1,2],[3]]}`, i))) {
				return fmt.Errorf("source %d changed: %s", i, src)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

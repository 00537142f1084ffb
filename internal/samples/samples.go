// Package samples provides candidate classes for the command line and for
// end-to-end tests. They cover each adaptation strategy: exact matches,
// String based codecs reached through conversion, in-place and copying
// array operations, trailing default parameters and singletons.
package samples

import (
	"encoding/base64"
	"slices"
	"strings"

	"arena/internal/member"
	"arena/internal/typesys"
)

var (
	bytesT = typesys.ArrayOf(typesys.Byte)
	charsT = typesys.ArrayOf(typesys.Char)
	intsT  = typesys.ArrayOf(typesys.Int)
)

// Registry returns a registry holding every sample class.
func Registry() *member.Registry {
	reg := member.NewRegistry()
	reg.Register(
		StringCodec(),
		BytesCodec(),
		CharsCodec(),
		ArrayReverser(),
		InPlaceReverser(),
		Sorter(),
		Padder(),
		Clock(),
		Math(),
	)
	return reg
}

type stringCodec struct{ encoded int }

// StringCodec encodes base64 through String encode(String).
func StringCodec() *member.Class {
	t := typesys.Named("StringCodec")
	return member.NewClass(t).Add(
		member.NewConstructor(t, member.Public, nil, member.Wrap(func() *stringCodec { return &stringCodec{} })),
		member.NewMethod(t, "encode", member.Public, []typesys.Type{typesys.String}, typesys.String,
			member.WrapMethod(func(c *stringCodec, s string) string {
				c.encoded++
				return base64.StdEncoding.EncodeToString([]byte(s))
			})),
		member.NewMethod(t, "count", member.Public, nil, typesys.Int,
			member.WrapMethod(func(c *stringCodec) int32 { return int32(c.encoded) })),
	)
}

// BytesCodec encodes base64 on byte arrays with a static method.
func BytesCodec() *member.Class {
	t := typesys.Named("BytesCodec")
	return member.NewClass(t).Add(
		member.NewStaticMethod(t, "encode", member.Public|member.Static, []typesys.Type{bytesT}, bytesT,
			member.Wrap(func(b []byte) []byte {
				out := make([]byte, base64.StdEncoding.EncodedLen(len(b)))
				base64.StdEncoding.Encode(out, b)
				return out
			})),
	)
}

type charsCodec struct{}

// CharsCodec matches encode(char[]):char[] exactly.
func CharsCodec() *member.Class {
	t := typesys.Named("CharsCodec")
	return member.NewClass(t).Add(
		member.NewConstructor(t, member.Public, nil, member.Wrap(func() *charsCodec { return &charsCodec{} })),
		member.NewMethod(t, "encode", member.Public, []typesys.Type{charsT}, charsT,
			member.WrapMethod(func(_ *charsCodec, c []rune) []rune {
				return []rune(base64.StdEncoding.EncodeToString([]byte(string(c))))
			})),
	)
}

// ArrayReverser returns a reversed copy.
func ArrayReverser() *member.Class {
	t := typesys.Named("ArrayReverser")
	return member.NewClass(t).Add(
		member.NewStaticMethod(t, "reverse", member.Public, []typesys.Type{intsT}, intsT,
			member.Wrap(func(a []int32) []int32 {
				out := slices.Clone(a)
				slices.Reverse(out)
				return out
			})),
	)
}

// InPlaceReverser reverses its argument.
func InPlaceReverser() *member.Class {
	t := typesys.Named("InPlaceReverser")
	return member.NewClass(t).Add(
		member.NewStaticMethod(t, "reverse", member.Public, []typesys.Type{intsT}, typesys.Void,
			member.Wrap(func(a []int32) { slices.Reverse(a) })),
	)
}

func Sorter() *member.Class {
	t := typesys.Named("Sorter")
	return member.NewClass(t).Add(
		member.NewStaticMethod(t, "sort", member.Public, []typesys.Type{intsT}, typesys.Void,
			member.Wrap(func(a []int32) { slices.Sort(a) })),
	)
}

// Padder pads with a width that callers may leave to the WIDTH default.
func Padder() *member.Class {
	t := typesys.Named("Padder")
	return member.NewClass(t).Add(
		member.NewStaticMethod(t, "pad", member.Public, []typesys.Type{typesys.String, typesys.Int}, typesys.String,
			member.Wrap(func(s string, width int32) string {
				if n := int(width) - len(s); n > 0 {
					return s + strings.Repeat(".", n)
				}
				return s
			})),
		member.NewField(t, "WIDTH", member.Public|member.Final, typesys.Int, int32(8)),
	)
}

type clock struct{ ticks int64 }

var defaultClock = &clock{}

// Clock has no public constructor; instances come from now() or INSTANCE.
func Clock() *member.Class {
	t := typesys.Named("Clock")
	return member.NewClass(t).Add(
		member.NewConstructor(t, 0, nil, member.Wrap(func() *clock { return &clock{} })),
		member.NewStaticMethod(t, "now", member.Public, nil, t,
			member.Wrap(func() *clock { return &clock{} })),
		member.NewField(t, "INSTANCE", member.Public|member.Final, t, defaultClock),
		member.NewMethod(t, "tick", member.Public, []typesys.Type{typesys.Long}, typesys.Long,
			member.WrapMethod(func(c *clock, by int64) int64 {
				c.ticks += by
				return c.ticks
			})),
	)
}

// Math holds helpers used by sheets outside the class under test.
func Math() *member.Class {
	t := typesys.Named("Math")
	return member.NewClass(t).Add(
		member.NewStaticMethod(t, "abs", member.Public, []typesys.Type{typesys.Int}, typesys.Int,
			member.Wrap(func(n int32) int32 {
				if n < 0 {
					return -n
				}
				return n
			})),
		member.NewStaticMethod(t, "max", member.Public, []typesys.Type{typesys.Int, typesys.Int}, typesys.Int,
			member.Wrap(func(a, b int32) int32 { return max(a, b) })),
	)
}

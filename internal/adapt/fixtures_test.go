package adapt

import (
	"encoding/base64"
	"sort"

	"arena/internal/member"
	"arena/internal/typesys"
)

var (
	charsT = typesys.ArrayOf(typesys.Char)
	intsT  = typesys.ArrayOf(typesys.Int)
)

type codec struct{}

// stringCodec exposes String encode(String).
func stringCodec() *member.Class {
	t := typesys.Named("StringCodec")
	return member.NewClass(t).Add(
		member.NewConstructor(t, member.Public, nil, member.Wrap(func() *codec { return &codec{} })),
		member.NewMethod(t, "encode", member.Public, []typesys.Type{typesys.String}, typesys.String,
			member.WrapMethod(func(_ *codec, s string) string {
				return base64.StdEncoding.EncodeToString([]byte(s))
			})),
	)
}

// reverser exposes int[] reverse(int[]) returning a new array.
func reverser() *member.Class {
	t := typesys.Named("Reverser")
	return member.NewClass(t).Add(
		member.NewStaticMethod(t, "reverse", member.Public, []typesys.Type{intsT}, intsT,
			member.Wrap(func(a []int32) []int32 {
				out := make([]int32, len(a))
				for i, v := range a {
					out[len(a)-1-i] = v
				}
				return out
			})),
	)
}

// sorter exposes void sort(int[]) sorting in place.
func sorter() *member.Class {
	t := typesys.Named("Sorter")
	return member.NewClass(t).Add(
		member.NewStaticMethod(t, "sort", member.Public, []typesys.Type{intsT}, typesys.Void,
			member.Wrap(func(a []int32) {
				sort.Slice(a, func(i, j int) bool { return a[i] < a[j] })
			})),
	)
}

// padder exposes String pad(String, int) and two int defaults.
func padder() *member.Class {
	t := typesys.Named("Padder")
	return member.NewClass(t).Add(
		member.NewStaticMethod(t, "pad", member.Public, []typesys.Type{typesys.String, typesys.Int}, typesys.String,
			member.Wrap(func(s string, w int32) string {
				for int32(len(s)) < w {
					s += "."
				}
				return s
			})),
		member.NewField(t, "WIDTH", member.Public|member.Final, typesys.Int, int32(4)),
		member.NewField(t, "NARROW", member.Public|member.Final, typesys.Int, int32(2)),
		member.NewField(t, "hidden", member.Final, typesys.Int, int32(9)),
	)
}

package audio

import "testing"

func TestEvaluateRange(t *testing.T) {
	cases := []struct {
		name   string
		header string
		size   int64
		want   RangeResult
	}{
		{
			name: "no header serves whole body",
			size: 1000,
			want: RangeResult{Status: 200, Start: 0, End: 999},
		},
		{
			name:   "garbage header serves whole body",
			header: "chunks=1-2",
			size:   1000,
			want:   RangeResult{Status: 200, Start: 0, End: 999},
		},
		{
			name:   "open-ended range runs to last byte",
			header: "bytes=200-",
			size:   1000,
			want:   RangeResult{Status: 206, Start: 200, End: 999, ContentRange: "bytes 200-999/1000"},
		},
		{
			name:   "end past body is clamped",
			header: "bytes=500-1499",
			size:   1000,
			want:   RangeResult{Status: 206, Start: 500, End: 999, ContentRange: "bytes 500-999/1000"},
		},
		{
			name:   "interior range",
			header: "bytes=0-0",
			size:   1000,
			want:   RangeResult{Status: 206, Start: 0, End: 0, ContentRange: "bytes 0-0/1000"},
		},
		{
			name:   "start past body is unsatisfiable",
			header: "bytes=2000-2100",
			size:   1000,
			want:   RangeResult{Status: 416, ContentRange: "bytes */1000"},
		},
		{
			name:   "start at exact size is unsatisfiable",
			header: "bytes=1000-",
			size:   1000,
			want:   RangeResult{Status: 416, ContentRange: "bytes */1000"},
		},
		{
			name:   "reversed range is unsatisfiable",
			header: "bytes=500-400",
			size:   1000,
			want:   RangeResult{Status: 416, ContentRange: "bytes */1000"},
		},
		{
			name:   "any range against an empty body is unsatisfiable",
			header: "bytes=0-",
			size:   0,
			want:   RangeResult{Status: 416, ContentRange: "bytes */0"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EvaluateRange(tc.header, tc.size)
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

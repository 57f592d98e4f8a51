package verify

import (
	"github.com/go-faster/jx"
)

// EncodeReport renders the verification report as a JSON document.
func EncodeReport(provider string, results []Result) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("provider", func(e *jx.Encoder) { e.Str(provider) })
		e.Field("probes", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, r := range results {
					e.Obj(func(e *jx.Encoder) {
						e.Field("probe", func(e *jx.Encoder) { e.Str(r.Probe) })
						e.Field("status", func(e *jx.Encoder) { e.Str(string(r.Status)) })
						if r.Detail != "" {
							e.Field("detail", func(e *jx.Encoder) { e.Str(r.Detail) })
						}
					})
				}
			})
		})
	})
	return e.Bytes()
}

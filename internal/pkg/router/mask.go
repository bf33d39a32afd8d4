package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shandysiswandi/shopauth/internal/pkg/instrument"
)

// masker hides configured keys in logged headers and JSON bodies.
// Authorization and Cookie headers are always hidden.
type masker struct {
	instrument.Masker
}

func newMasker(fields []string) masker {
	return masker{instrument.NewMasker(append([]string{"authorization", "cookie"}, fields...)...)}
}

func (m masker) headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		if m.Hides(k) {
			out[k] = instrument.Masked
			continue
		}
		out[k] = strings.Join(vs, ", ")
	}
	return out
}

// json decodes raw and masks it. Bodies that do not decode are summarized by size.
func (m masker) json(raw []byte) any {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Sprintf("<invalid json, %d bytes>", len(raw))
	}
	return m.Value(v)
}

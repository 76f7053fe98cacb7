package relay

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStaticHandlerServesIndex(t *testing.T) {
	t.Parallel()

	handler := StaticHandler()

	for _, path := range []string{"/", "/index.html", "/some/unknown/route"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, w.Code)
			continue
		}
		if !strings.Contains(w.Body.String(), "BC Printer Monitor") {
			t.Errorf("%s: response does not look like the dashboard page", path)
		}
	}
}

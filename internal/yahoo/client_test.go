package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const aalResponse = `{
  "quoteSummary": {
    "result": [{
      "price": {
        "symbol": "AAL",
        "shortName": "American Airlines Group, Inc.",
        "currency": "USD",
        "regularMarketPrice": {"raw": 10.7, "fmt": "10.70"},
        "marketCap": {"raw": 7036063232, "fmt": "7.04B", "longFmt": "7,036,063,232"}
      },
      "summaryDetail": {
        "trailingPE": {"raw": 8.629032, "fmt": "8.63"},
        "dividendYield": {}
      }
    }],
    "error": null
  }
}`

// newTestServer serves the session handshake and forwards API requests to handler.
func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "A3", Value: "session", Path: "/"})
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc(crumbPath, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("test-crumb"))
	})
	mux.HandleFunc("/", handler)
	return newClientFor(t, mux)
}

func newClientFor(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(
		WithBaseURL(server.URL),
		WithSessionURL(server.URL+"/session"),
		WithRateLimit(time.Millisecond),
	)
}

// crumbServer mimics the live API: the crumb endpoint requires the session
// cookie and the quote endpoint requires both the cookie and the current crumb.
type crumbServer struct {
	crumbCalls atomic.Int32
	quoteCalls atomic.Int32
	validCrumb func(issued int32) bool
}

func (s *crumbServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "A3", Value: "session", Path: "/"})
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc(crumbPath, func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("A3"); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		n := s.crumbCalls.Add(1)
		fmt.Fprintf(w, "crumb-%d", n)
	})
	mux.HandleFunc("/v10/finance/quoteSummary/", func(w http.ResponseWriter, r *http.Request) {
		s.quoteCalls.Add(1)
		_, cookieErr := r.Cookie("A3")
		want := fmt.Sprintf("crumb-%d", s.crumbCalls.Load())
		if cookieErr != nil || r.URL.Query().Get("crumb") != want || !s.validCrumb(s.crumbCalls.Load()) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"finance":{"result":null,"error":{"code":"Unauthorized","description":"Invalid Crumb"}}}`))
			return
		}
		w.Write([]byte(aalResponse))
	})
	return mux
}

func TestQuoteSummary_Success(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v10/finance/quoteSummary/AAL", r.URL.Path)
		assert.Equal(t, "price,summaryDetail", r.URL.Query().Get("modules"))
		assert.Equal(t, "test-crumb", r.URL.Query().Get("crumb"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(aalResponse))
	})

	result, err := client.QuoteSummary(context.Background(), "AAL")
	require.NoError(t, err)
	require.NotNil(t, result.Price)
	require.NotNil(t, result.SummaryDetail)

	assert.Equal(t, "AAL", result.Price.Symbol)
	assert.Equal(t, "USD", result.Price.Currency)
	require.NotNil(t, result.Price.RegularMarketPrice.Raw)
	assert.Equal(t, 10.7, *result.Price.RegularMarketPrice.Raw)
	require.NotNil(t, result.Price.MarketCap.Raw)
	assert.Equal(t, 7036063232.0, *result.Price.MarketCap.Raw)
	require.NotNil(t, result.SummaryDetail.TrailingPE.Raw)
	assert.Nil(t, result.SummaryDetail.DividendYield.Raw)
}

func TestQuoteSummary_SessionCookieAndCrumb(t *testing.T) {
	srv := &crumbServer{validCrumb: func(int32) bool { return true }}
	client := newClientFor(t, srv.handler())

	for i := 0; i < 2; i++ {
		result, err := client.QuoteSummary(context.Background(), "AAL")
		require.NoError(t, err)
		assert.Equal(t, "AAL", result.Price.Symbol)
	}

	assert.Equal(t, int32(1), srv.crumbCalls.Load(), "crumb is cached between requests")
	assert.Equal(t, int32(2), srv.quoteCalls.Load())
}

func TestQuoteSummary_RefreshesCrumbOnUnauthorized(t *testing.T) {
	srv := &crumbServer{validCrumb: func(issued int32) bool { return issued >= 2 }}
	client := newClientFor(t, srv.handler())

	result, err := client.QuoteSummary(context.Background(), "AAL")
	require.NoError(t, err)
	assert.Equal(t, "AAL", result.Price.Symbol)

	assert.Equal(t, int32(2), srv.crumbCalls.Load())
	assert.Equal(t, int32(2), srv.quoteCalls.Load())
}

func TestQuoteSummary_UnauthorizedAfterRefresh(t *testing.T) {
	srv := &crumbServer{validCrumb: func(int32) bool { return false }}
	client := newClientFor(t, srv.handler())

	_, err := client.QuoteSummary(context.Background(), "AAL")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, int32(2), srv.quoteCalls.Load(), "refreshed once, not looped")
}

func TestQuoteSummary_CrumbUnavailable(t *testing.T) {
	var quoteCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc(crumbPath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		quoteCalls.Add(1)
		w.Write([]byte(aalResponse))
	})
	client := newClientFor(t, mux)

	_, err := client.QuoteSummary(context.Background(), "AAL")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, int32(0), quoteCalls.Load())
}

func TestQuoteSummary_NotFound(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"404 status", http.StatusNotFound, `{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found for ticker symbol: ZZZZ"}}}`},
		{"error envelope", http.StatusOK, `{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found for ticker symbol: ZZZZ"}}}`},
		{"empty result", http.StatusOK, `{"quoteSummary":{"result":[],"error":null}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.QuoteSummary(context.Background(), "ZZZZ")
			assert.True(t, errors.Is(err, ErrSymbolNotFound), "got %v", err)
		})
	}
}

func TestQuoteSummary_ServerError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream failure"))
	})

	_, err := client.QuoteSummary(context.Background(), "AAL")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "upstream failure", apiErr.Message)
	assert.False(t, errors.Is(err, ErrSymbolNotFound))
}

func TestQuoteSummary_MalformedBody(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	_, err := client.QuoteSummary(context.Background(), "AAL")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrSymbolNotFound))
}

func TestQuoteSummary_EmptySymbol(t *testing.T) {
	client := NewClient()

	_, err := client.QuoteSummary(context.Background(), "")
	assert.ErrorIs(t, err, ErrSymbolNotFound)
}

func TestValue_UnmarshalBareNumber(t *testing.T) {
	var v Value
	require.NoError(t, v.UnmarshalJSON([]byte("12.5")))
	require.NotNil(t, v.Raw)
	assert.Equal(t, 12.5, *v.Raw)

	var empty Value
	require.NoError(t, empty.UnmarshalJSON([]byte("null")))
	assert.Nil(t, empty.Raw)
}

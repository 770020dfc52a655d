package cijene

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedSleeps struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordedSleeps) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *recordedSleeps) all() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate func(*Options)) (*Client, *atomic.Int32, *recordedSleeps) {
	t.Helper()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	opts := Options{
		BaseURL:       server.URL,
		Token:         "static-token",
		RetryAttempts: DefaultRetryAttempts,
		RetryDelay:    DefaultRetryDelay,
		Logger:        zerolog.Nop(),
	}
	if mutate != nil {
		mutate(&opts)
	}
	client, err := NewClient(opts)
	require.NoError(t, err)

	sleeps := &recordedSleeps{}
	client.sleep = sleeps.sleep
	return client, &hits, sleeps
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, u.String())

	u, err = parseBaseURL("prices.example.com:8443/api?x=1#frag")
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "prices.example.com:8443", u.Host)
	assert.Empty(t, u.Path)
	assert.Empty(t, u.RawQuery)
	assert.Empty(t, u.Fragment)
}

func TestClient_SendsStaticBearerAndEncodesProductSearch(t *testing.T) {
	t.Parallel()

	var gotAuth, gotUA string
	var gotQuery map[string][]string
	client, hits, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		gotQuery = r.URL.Query()
		assert.Equal(t, productsPath, r.URL.Path)
		writeJSON(w, http.StatusOK, ProductSearchResult{
			Products:   []Product{{ID: "1", Name: "Mlijeko", EAN: "3850104047060"}},
			TotalCount: 1, Page: 2, PerPage: 100,
		})
	}, nil)

	result, err := client.SearchProducts(context.Background(), ProductSearch{
		Query:     "  mlijeko ",
		Chains:    []string{"konzum", ""},
		ChainCode: "spar",
		Date:      "2025-06-01",
		Page:      2,
		PerPage:   100,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, hits.Load())
	assert.Equal(t, "Bearer static-token", gotAuth)
	assert.Equal(t, defaultUserAgent, gotUA)
	assert.Equal(t, []string{"mlijeko"}, gotQuery["q"])
	assert.Equal(t, []string{"konzum", "spar"}, gotQuery["chains"])
	assert.Equal(t, []string{"2025-06-01"}, gotQuery["date"])
	assert.Equal(t, []string{"2"}, gotQuery["page"])
	assert.Equal(t, []string{"100"}, gotQuery["per_page"])
	require.Len(t, result.Products, 1)
	assert.Equal(t, "3850104047060", result.Products[0].Key())
}

func TestClient_RejectsInvalidInputBeforeRequest(t *testing.T) {
	t.Parallel()

	client, hits, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	}, nil)
	ctx := context.Background()
	lat, lon := 95.0, 15.0

	cases := map[string]func() error{
		"ean": func() error {
			_, err := client.SearchProducts(ctx, ProductSearch{EAN: "12ab"})
			return err
		},
		"date": func() error {
			_, err := client.SearchProducts(ctx, ProductSearch{Query: "x", Date: "2025-13-40"})
			return err
		},
		"per_page": func() error {
			_, err := client.SearchProducts(ctx, ProductSearch{Query: "x", PerPage: 101})
			return err
		},
		"latitude": func() error {
			_, err := client.SearchStores(ctx, StoreSearch{Latitude: &lat, Longitude: &lon})
			return err
		},
		"radius": func() error {
			ok := 45.0
			_, err := client.SearchStores(ctx, StoreSearch{Latitude: &ok, Longitude: &lon, Radius: 100})
			return err
		},
		"eans": func() error {
			_, err := client.GetPrices(ctx, PriceQuery{EANs: []string{" "}})
			return err
		},
		"id": func() error {
			_, err := client.GetProduct(ctx, "  ")
			return err
		},
	}
	for name, call := range cases {
		err := call()
		apiErr, ok := AsError(err)
		require.True(t, ok, "%s: error %v is not *Error", name, err)
		assert.Equal(t, KindValidation, apiErr.Kind, name)
		assert.Equal(t, CodeValidation, apiErr.Code, name)
		assert.False(t, apiErr.Retryable(), name)
	}
	assert.EqualValues(t, 0, hits.Load())
}

func TestClient_ServerErrorsRetryUpToCapThenSurfaceServerError(t *testing.T) {
	t.Parallel()

	client, hits, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "upstream timed out"})
	}, nil)

	_, err := client.ListArchives(context.Background())
	apiErr, ok := AsError(err)
	require.True(t, ok, "error %v is not *Error", err)
	assert.Equal(t, KindServer, apiErr.Kind)
	assert.True(t, apiErr.Retryable())
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Equal(t, "upstream timed out", apiErr.Message)
	assert.False(t, apiErr.Timestamp.IsZero())

	assert.EqualValues(t, DefaultRetryAttempts+1, hits.Load())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, sleeps.all())
}

func TestClient_ServerErrorRecoversOnRetry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, hits, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, versionResponse{Version: "1.2.3"})
	}, nil)

	version, err := client.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", version)
	assert.EqualValues(t, 2, hits.Load())
	assert.Equal(t, []time.Duration{time.Second}, sleeps.all())
}

func TestClient_RetryBudgetIsPerRequest(t *testing.T) {
	t.Parallel()

	client, hits, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, func(o *Options) { o.RetryAttempts = 1 })

	for i := 0; i < 3; i++ {
		_, err := client.Health(context.Background())
		require.Error(t, err)
	}
	assert.EqualValues(t, 6, hits.Load())
}

func TestClient_AuthErrorsAreNotRetried(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status  int
		body    any
		kind    Kind
		code    string
		message string
	}{
		{http.StatusUnauthorized, nil, KindAuthentication, CodeUnauthorized, messages[CodeUnauthorized]},
		{http.StatusForbidden, map[string]string{"message": "plan expired"}, KindAuthorization, CodeForbidden, "plan expired"},
	}
	for _, tc := range cases {
		tc := tc
		client, hits, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if tc.body == nil {
				w.WriteHeader(tc.status)
				return
			}
			writeJSON(w, tc.status, tc.body)
		}, nil)

		_, err := client.ListArchives(context.Background())
		apiErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, tc.kind, apiErr.Kind)
		assert.Equal(t, tc.code, apiErr.Code)
		assert.Equal(t, tc.message, apiErr.Message)
		assert.Equal(t, tc.status, apiErr.Status)
		assert.False(t, apiErr.Retryable())
		assert.EqualValues(t, 1, hits.Load())
		assert.Empty(t, sleeps.all())
	}
}

func TestClient_OtherStatusesUseServerMessageOrGeneric(t *testing.T) {
	t.Parallel()

	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case productsPath + "missing/":
			writeJSON(w, http.StatusNotFound, map[string]any{
				"message": "Product not found",
				"code":    "PRODUCT_NOT_FOUND",
				"details": map[string]string{"id": "missing"},
			})
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	}, nil)

	_, err := client.GetProduct(context.Background(), "missing")
	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, apiErr.Kind)
	assert.Equal(t, "PRODUCT_NOT_FOUND", apiErr.Code)
	assert.Equal(t, "Product not found", apiErr.Message)
	assert.JSONEq(t, `{"id":"missing"}`, string(apiErr.Details))

	_, err = client.GetStore(context.Background(), "42")
	apiErr, ok = AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindUnknown, apiErr.Kind)
	assert.Equal(t, "418", apiErr.Code)
	assert.Equal(t, messages[CodeAPI], apiErr.Message)
}

func TestClient_ConnectionRefusedIsRetryableNetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	client, err := NewClient(Options{BaseURL: addr, RetryAttempts: 3, Logger: zerolog.Nop()})
	require.NoError(t, err)
	sleeps := &recordedSleeps{}
	client.sleep = sleeps.sleep

	_, err = client.Health(context.Background())
	apiErr, ok := AsError(err)
	require.True(t, ok, "error %v is not *Error", err)
	assert.Equal(t, KindNetwork, apiErr.Kind)
	assert.Equal(t, CodeConnectionRefused, apiErr.Code)
	assert.Equal(t, messages[CodeConnectionRefused], apiErr.Message)
	assert.Zero(t, apiErr.Status)
	assert.True(t, apiErr.Retryable())
	assert.Empty(t, sleeps.all(), "transport errors are not retried automatically")
}

func TestClient_TimeoutIsClassified(t *testing.T) {
	t.Parallel()

	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, func(o *Options) { o.Timeout = 20 * time.Millisecond })

	_, err := client.Health(context.Background())
	apiErr, ok := AsError(err)
	require.True(t, ok, "error %v is not *Error", err)
	assert.Equal(t, KindNetwork, apiErr.Kind)
	assert.Equal(t, CodeTimeout, apiErr.Code)
	assert.True(t, apiErr.Retryable())
}

func TestClient_CancelledContextIsNotClassified(t *testing.T) {
	t.Parallel()

	client, hits, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthStatus{Status: "ok"})
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Health(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	_, ok := AsError(err)
	assert.False(t, ok)
	assert.EqualValues(t, 0, hits.Load())
}

func TestClient_ListChainsJoinsStats(t *testing.T) {
	t.Parallel()

	client, hits, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case chainsPath:
			writeJSON(w, http.StatusOK, chainListResponse{Chains: []string{"KONZUM", "spar"}})
		case chainStatsPath:
			writeJSON(w, http.StatusOK, chainStatsResponse{ChainStats: []ChainStats{
				{ChainCode: "KONZUM", PriceCount: 12000, StoreCount: 150, CreatedAt: "2025-06-01T06:00:00Z"},
			}})
		default:
			http.NotFound(w, r)
		}
	}, nil)
	fixed := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return fixed }

	chains, err := client.ListChains(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, hits.Load())
	require.Len(t, chains, 2)
	assert.Equal(t, Chain{Code: "KONZUM", Name: "Konzum", StoresCount: 150, ProductsCount: 12000, LastUpdated: "2025-06-01T06:00:00Z"}, chains[0])
	assert.Equal(t, Chain{Code: "spar", Name: "Spar", LastUpdated: "2025-06-02T08:00:00Z"}, chains[1])

	chain, err := client.GetChain(context.Background(), "konzum")
	require.NoError(t, err)
	assert.Equal(t, "KONZUM", chain.Code)

	_, err = client.GetChain(context.Background(), "lidl")
	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, apiErr.Kind)
}

func TestClient_StoreSearchSendsKilometers(t *testing.T) {
	t.Parallel()

	var got map[string][]string
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		writeJSON(w, http.StatusOK, StoreSearchResult{Stores: []Store{{ChainCode: "konzum", Address: "Ilica 1"}}})
	}, nil)

	lat, lon := 45.815, 15.9819
	result, err := client.SearchStores(context.Background(), StoreSearch{
		Query: "Ilica", City: "Zagreb", Chains: []string{"konzum", "spar"},
		Latitude: &lat, Longitude: &lon, Radius: 5000,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ilica"}, got["address"])
	assert.Equal(t, []string{"Zagreb"}, got["city"])
	assert.Equal(t, []string{"konzum,spar"}, got["chains"])
	assert.Equal(t, []string{"45.815"}, got["lat"])
	assert.Equal(t, []string{"15.9819"}, got["lon"])
	assert.Equal(t, []string{"5"}, got["d"])
	assert.Equal(t, []string{"1"}, got["page"])
	assert.Equal(t, []string{"20"}, got["per_page"])
	require.Len(t, result.Stores, 1)
	assert.Equal(t, "konzum-Ilica 1", result.Stores[0].Key())
}

func TestClient_ComparePricesAggregatesEffectivePrices(t *testing.T) {
	t.Parallel()

	var got map[string][]string
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"store_prices":[
			{"chain":"konzum","ean":"3850104047060","price_date":"2025-06-01","regular_price":"1.50","special_price":"1.20","store":{"chain_id":1,"code":"K1","address":"Ilica 1","city":"Zagreb"}},
			{"chain":"spar","ean":"3850104047060","price_date":"2025-06-01","regular_price":"1.80","special_price":null,"unit_price":"3.60","store":{"chain_id":2,"code":"S1"}},
			{"chain":"konzum","ean":"3850104047060","price_date":"2025-06-01","regular_price":"0","store":{"chain_id":1,"code":"K2"}}
		]}`))
	}, nil)

	product := Product{ID: "p1", Name: "Mlijeko", EAN: "3850104047060"}
	cmp, err := client.ComparePrices(context.Background(), product, PriceQuery{Chains: []string{"konzum", "spar"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"3850104047060"}, got["eans"])
	assert.Equal(t, []string{"konzum,spar"}, got["chains"])
	require.Len(t, cmp.Prices, 3)
	assert.Equal(t, "K1", cmp.Prices[0].StoreID)
	require.NotNil(t, cmp.Prices[0].SpecialPrice)
	assert.InDelta(t, 1.20, *cmp.Prices[0].SpecialPrice, 1e-9)
	assert.Nil(t, cmp.Prices[1].SpecialPrice)
	assert.Equal(t, "unit", cmp.Prices[1].Unit)
	assert.InDelta(t, 1.20, cmp.MinPrice, 1e-9)
	assert.InDelta(t, 1.80, cmp.MaxPrice, 1e-9)
	assert.InDelta(t, 1.50, cmp.AvgPrice, 1e-9)
	assert.Equal(t, []string{"konzum", "spar"}, cmp.Chains)
}

func TestClient_SuggestProductsSkipsShortQueries(t *testing.T) {
	t.Parallel()

	var perPage []string
	client, hits, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		perPage = r.URL.Query()["per_page"]
		writeJSON(w, http.StatusOK, ProductSearchResult{Products: []Product{{ID: "1"}}})
	}, nil)

	got, err := client.SuggestProducts(context.Background(), " m ", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.EqualValues(t, 0, hits.Load())

	got, err = client.SuggestProducts(context.Background(), "mlijeko", 50)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, []string{"20"}, perPage)
}

func TestClient_ListArchivesFillsMissingURLs(t *testing.T) {
	t.Parallel()

	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/list/", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"archives": []map[string]any{
			{"date": "2025-06-01", "url": "https://cdn.example/2025-06-01.zip", "size": 1024},
			{"date": "2025-05-31", "size": 2048},
		}})
	}, nil)

	archives, err := client.ListArchives(context.Background())
	require.NoError(t, err)
	require.Len(t, archives, 2)
	assert.Equal(t, "https://cdn.example/2025-06-01.zip", archives[0].URL)
	assert.Equal(t, client.BaseURL()+"/v0/archive/2025-05-31.zip", archives[1].URL)
	assert.EqualValues(t, 2048, archives[1].Size)
}

func TestClient_DownloadArchive(t *testing.T) {
	t.Parallel()

	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/archive/2025-06-01.zip", r.URL.Path)
		_, _ = w.Write([]byte("PK\x03\x04zip"))
	}, nil)

	var buf bytes.Buffer
	n, err := client.DownloadArchive(context.Background(), "2025-06-01", &buf)
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)
	assert.Equal(t, "PK\x03\x04zip", buf.String())
	assert.Equal(t, client.BaseURL()+"/v0/archive/2025-06-01.zip", client.ArchiveURL("2025-06-01"))

	_, err = client.DownloadArchive(context.Background(), "yesterday", &buf)
	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, apiErr.Kind)
}

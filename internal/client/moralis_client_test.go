package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"holdings_checker/internal/domain/entity"
)

const moralisTestAddress = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"

func newMoralisTestClient(baseURL string) *moralisClientImpl {
	return NewMoralisClient(baseURL, "test-key", "eth", time.Second, 100, 100, zap.NewNop()).(*moralisClientImpl)
}

func TestMoralisGetNativeBalance(t *testing.T) {
	var gotPath, gotQuery, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("X-API-Key")
		w.Write([]byte(`{"balance":"1234560000000000000"}`))
	}))
	defer srv.Close()

	c := newMoralisTestClient(srv.URL)
	balance, err := c.GetNativeBalance(context.Background(), moralisTestAddress)
	require.NoError(t, err)

	assert.Equal(t, "/"+moralisTestAddress+"/balance", gotPath)
	assert.Equal(t, "chain=eth", gotQuery)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "1234560000000000000", balance.String())
}

func TestMoralisGetNativeBalanceRejectsNonDecimal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"balance":"0xdeadbeef"}`))
	}))
	defer srv.Close()

	c := newMoralisTestClient(srv.URL)
	_, err := c.GetNativeBalance(context.Background(), moralisTestAddress)

	var reqErr *entity.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "moralis", reqErr.Provider)
	assert.Contains(t, reqErr.Message, "invalid native balance")
}

func TestMoralisGetERC20Balances(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[
			{"token_address":"0xusdc","symbol":"USDC","name":"USD Coin","thumbnail":"https://img/usdc-thumb.png","decimals":6,"balance":"50000000","possible_spam":false},
			{"token_address":"0xshib","symbol":"SHIB","name":"Shiba Inu","logo":"https://img/shib-logo.png","decimals":18,"balance":"1000","possible_spam":false},
			{"token_address":"0xscam","symbol":"FREE","name":"Free Money","decimals":18,"balance":"999999","possible_spam":true}
		]`))
	}))
	defer srv.Close()

	c := newMoralisTestClient(srv.URL)
	balances, err := c.GetERC20Balances(context.Background(), moralisTestAddress)
	require.NoError(t, err)

	assert.Equal(t, "/"+moralisTestAddress+"/erc20", gotPath)
	assert.Equal(t, "chain=eth", gotQuery)

	// The spam-flagged row never leaves the client.
	require.Len(t, balances, 2)
	assert.Equal(t, entity.RawTokenBalance{
		TokenAddress: "0xusdc",
		Symbol:       "USDC",
		Name:         "USD Coin",
		Thumbnail:    "https://img/usdc-thumb.png",
		Decimals:     6,
		RawBalance:   "50000000",
	}, balances[0])

	// Logo fills in when the provider has no thumbnail.
	assert.Equal(t, "https://img/shib-logo.png", balances[1].Thumbnail)
}

func TestMoralisMapsTooManyRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message":"rate limit exceeded"}`))
	}))
	defer srv.Close()

	c := newMoralisTestClient(srv.URL)

	_, err := c.GetNativeBalance(context.Background(), moralisTestAddress)
	assert.ErrorIs(t, err, entity.ErrRateLimited)

	_, err = c.GetERC20Balances(context.Background(), moralisTestAddress)
	assert.ErrorIs(t, err, entity.ErrRateLimited)
}

func TestMoralisExtractsProviderErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"address is not a valid hex address"}`))
	}))
	defer srv.Close()

	c := newMoralisTestClient(srv.URL)
	_, err := c.GetERC20Balances(context.Background(), moralisTestAddress)

	var reqErr *entity.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "moralis", reqErr.Provider)
	assert.Equal(t, http.StatusBadRequest, reqErr.StatusCode)
	assert.Equal(t, "address is not a valid hex address", reqErr.Message)
}

func TestMoralisRejectsMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := newMoralisTestClient(srv.URL)
	_, err := c.GetNativeBalance(context.Background(), moralisTestAddress)

	var reqErr *entity.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Contains(t, reqErr.Message, "unexpected response body")
}

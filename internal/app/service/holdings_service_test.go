package service

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"holdings_checker/internal/app/port"
	"holdings_checker/internal/config"
	"holdings_checker/internal/domain/entity"
)

const testAddress = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"

// fakeMoralisClient serves canned balances and counts calls. The counters are
// mutex-guarded because the service fetches native and token balances
// concurrently.
type fakeMoralisClient struct {
	mu          sync.Mutex
	nativeCalls int
	erc20Calls  int
	native      *big.Int
	nativeErr   error
	tokens      []entity.RawTokenBalance
	tokensErr   error
}

func (f *fakeMoralisClient) GetNativeBalance(_ context.Context, _ string) (*big.Int, error) {
	f.mu.Lock()
	f.nativeCalls++
	f.mu.Unlock()
	if f.nativeErr != nil {
		return nil, f.nativeErr
	}
	return f.native, nil
}

func (f *fakeMoralisClient) GetERC20Balances(_ context.Context, _ string) ([]entity.RawTokenBalance, error) {
	f.mu.Lock()
	f.erc20Calls++
	f.mu.Unlock()
	if f.tokensErr != nil {
		return nil, f.tokensErr
	}
	return f.tokens, nil
}

func (f *fakeMoralisClient) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nativeCalls, f.erc20Calls
}

// recentsSpy records addresses handed to Record.
type recentsSpy struct {
	recorded []string
	err      error
}

func (r *recentsSpy) Record(address string) error {
	r.recorded = append(r.recorded, address)
	return r.err
}

func (r *recentsSpy) List() []string { return r.recorded }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Moralis.APIKey = "test-key"
	cfg.Moralis.NativeSymbol = "ETH"
	return cfg
}

func pricedTable(t *testing.T) port.PriceTable {
	t.Helper()
	table := NewPriceTable(0, zap.NewNop())
	table.UpsertPage([]entity.MarketTokenEntry{
		{ID: "ethereum", Symbol: "ETH", Name: "Ethereum", ImageURL: "https://img/eth.png", CurrentPriceUSD: 2000},
		{ID: "usd-coin", Symbol: "USDC", Name: "USDC", ImageURL: "https://img/usdc.png", CurrentPriceUSD: 1},
		{ID: "pepe", Symbol: "PEPE", Name: "Pepe", CurrentPriceUSD: 0.000001},
	})
	table.MarkReady()
	return table
}

func weiFromEther(ether int64) *big.Int {
	wei := big.NewInt(ether)
	return wei.Mul(wei, new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func TestGetHoldingsJoinsSortsAndFilters(t *testing.T) {
	moralis := &fakeMoralisClient{
		native: weiFromEther(2), // 2 ETH * $2000 = $4000
		tokens: []entity.RawTokenBalance{
			{TokenAddress: "0xusdc", Symbol: "usdc", Name: "USD Coin", Decimals: 6, RawBalance: "50000000"}, // 50 USDC = $50
			{TokenAddress: "0xpepe", Symbol: "PEPE", Name: "Pepe", Decimals: 18, RawBalance: "1000000000000000000"}, // 1 PEPE, dust
		},
	}
	recents := &recentsSpy{}
	svc := NewHoldingsService(moralis, pricedTable(t), recents, testConfig(), zap.NewNop())

	holdings, err := svc.GetHoldings(context.Background(), testAddress)
	require.NoError(t, err)

	// All three holdings exist, sorted by value descending.
	require.Len(t, holdings.AllBalances, 3)
	assert.Equal(t, "ETH", holdings.AllBalances[0].Symbol)
	assert.Equal(t, "usdc", holdings.AllBalances[1].Symbol)
	assert.Equal(t, "PEPE", holdings.AllBalances[2].Symbol)

	// The dust position is filtered from the display list but still counted
	// in the total.
	require.Len(t, holdings.Balances, 2)
	assert.InDelta(t, 4050.000001, holdings.TotalValueUSD, 1e-6)
	assert.Equal(t, "$4,050.00", holdings.TotalValueUSDDisplay)

	native := holdings.AllBalances[0]
	assert.Equal(t, entity.ZeroAddress, native.TokenAddress)
	assert.Equal(t, uint8(entity.NativeDecimals), native.Decimals)
	assert.InDelta(t, 2.0, native.BalanceDecimal, 1e-9)
	assert.InDelta(t, 4000.0, native.ValueUSD, 1e-6)
	assert.Equal(t, "https://img/eth.png", native.Thumbnail)

	usdc := holdings.AllBalances[1]
	assert.InDelta(t, 50.0, usdc.BalanceDecimal, 1e-9)
	assert.InDelta(t, 50.0, usdc.ValueUSD, 1e-9)
	assert.Equal(t, "50.0000", usdc.FormattedBalance)

	// The response carries the checksummed form of the input address.
	assert.Equal(t, testAddress, holdings.Address)
	assert.Equal(t, []string{testAddress}, recents.recorded)
}

func TestGetHoldingsRejectsInvalidAddressBeforeFetching(t *testing.T) {
	moralis := &fakeMoralisClient{native: big.NewInt(0)}
	recents := &recentsSpy{}
	svc := NewHoldingsService(moralis, pricedTable(t), recents, testConfig(), zap.NewNop())

	_, err := svc.GetHoldings(context.Background(), "not-an-address")
	require.Error(t, err)
	assert.True(t, entity.IsValidation(err))

	nativeCalls, erc20Calls := moralis.calls()
	assert.Zero(t, nativeCalls)
	assert.Zero(t, erc20Calls)
	assert.Empty(t, recents.recorded)
}

func TestGetHoldingsRejectsMissingAPIKey(t *testing.T) {
	moralis := &fakeMoralisClient{native: big.NewInt(0)}
	cfg := testConfig()
	cfg.Moralis.APIKey = ""
	svc := NewHoldingsService(moralis, pricedTable(t), &recentsSpy{}, cfg, zap.NewNop())

	_, err := svc.GetHoldings(context.Background(), testAddress)
	require.Error(t, err)
	assert.True(t, entity.IsValidation(err))
	assert.Contains(t, err.Error(), config.MoralisAPIKeyEnv)

	nativeCalls, erc20Calls := moralis.calls()
	assert.Zero(t, nativeCalls)
	assert.Zero(t, erc20Calls)
}

func TestGetHoldingsFailsWhenEitherFetchFails(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeMoralisClient
	}{
		{
			name:   "native fetch fails",
			client: &fakeMoralisClient{nativeErr: fmt.Errorf("upstream down")},
		},
		{
			name:   "token fetch fails",
			client: &fakeMoralisClient{native: weiFromEther(1), tokensErr: fmt.Errorf("upstream down")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recents := &recentsSpy{}
			svc := NewHoldingsService(tt.client, pricedTable(t), recents, testConfig(), zap.NewNop())

			holdings, err := svc.GetHoldings(context.Background(), testAddress)
			require.Error(t, err)
			assert.Nil(t, holdings)

			// The address still lands in the recent list: it validated fine.
			assert.Equal(t, []string{testAddress}, recents.recorded)
		})
	}
}

func TestGetHoldingsPropagatesRateLimit(t *testing.T) {
	moralis := &fakeMoralisClient{nativeErr: entity.ErrRateLimited, tokensErr: entity.ErrRateLimited}
	svc := NewHoldingsService(moralis, pricedTable(t), &recentsSpy{}, testConfig(), zap.NewNop())

	_, err := svc.GetHoldings(context.Background(), testAddress)
	require.ErrorIs(t, err, entity.ErrRateLimited)
}

func TestGetHoldingsDropsUnmatchedAndUnparseableTokens(t *testing.T) {
	moralis := &fakeMoralisClient{
		native: big.NewInt(0),
		tokens: []entity.RawTokenBalance{
			{TokenAddress: "0xobscure", Symbol: "OBSCURE", Decimals: 18, RawBalance: "1000"},
			{TokenAddress: "0xnameless", Symbol: "", Decimals: 18, RawBalance: "1000"},
			{TokenAddress: "0xbroken", Symbol: "USDC", Decimals: 6, RawBalance: "not-a-number"},
			{TokenAddress: "0xusdc", Symbol: "USDC", Decimals: 6, RawBalance: "1000000"},
		},
	}
	svc := NewHoldingsService(moralis, pricedTable(t), &recentsSpy{}, testConfig(), zap.NewNop())

	holdings, err := svc.GetHoldings(context.Background(), testAddress)
	require.NoError(t, err)

	// Native (zero balance, still priced) plus the one matched parseable token.
	require.Len(t, holdings.AllBalances, 2)
	assert.Equal(t, "ETH", holdings.AllBalances[0].Symbol)
	assert.Equal(t, "0xusdc", holdings.AllBalances[1].TokenAddress)
	assert.InDelta(t, 1.0, holdings.AllBalances[1].BalanceDecimal, 1e-9)
}

func TestGetHoldingsDropsNativeWithoutMarketEntry(t *testing.T) {
	table := NewPriceTable(0, zap.NewNop())
	table.UpsertPage([]entity.MarketTokenEntry{
		{ID: "usd-coin", Symbol: "USDC", Name: "USDC", CurrentPriceUSD: 1},
	})

	moralis := &fakeMoralisClient{
		native: weiFromEther(100),
		tokens: []entity.RawTokenBalance{
			{TokenAddress: "0xusdc", Symbol: "USDC", Decimals: 6, RawBalance: "25000000"},
		},
	}
	svc := NewHoldingsService(moralis, table, &recentsSpy{}, testConfig(), zap.NewNop())

	holdings, err := svc.GetHoldings(context.Background(), testAddress)
	require.NoError(t, err)

	// 100 ETH vanish from the view because the table has no ETH row yet.
	require.Len(t, holdings.AllBalances, 1)
	assert.Equal(t, "USDC", holdings.AllBalances[0].Symbol)
	assert.InDelta(t, 25.0, holdings.TotalValueUSD, 1e-9)
}

func TestGetHoldingsFetchesBalancesInParallel(t *testing.T) {
	moralis := &fakeMoralisClient{native: weiFromEther(1)}
	svc := NewHoldingsService(moralis, pricedTable(t), &recentsSpy{}, testConfig(), zap.NewNop())

	_, err := svc.GetHoldings(context.Background(), testAddress)
	require.NoError(t, err)

	nativeCalls, erc20Calls := moralis.calls()
	assert.Equal(t, 1, nativeCalls)
	assert.Equal(t, 1, erc20Calls)
}

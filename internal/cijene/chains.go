package cijene

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// ListChains fetches the chain codes and their statistics concurrently and
// joins them. Chains without statistics report zero counts.
func (c *Client) ListChains(ctx context.Context) ([]Chain, error) {
	var (
		codes chainListResponse
		stats chainStatsResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := c.getJSON(gctx, &url.URL{Path: chainsPath}, &codes); err != nil {
			return fmt.Errorf("list chains: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := c.getJSON(gctx, &url.URL{Path: chainStatsPath}, &stats); err != nil {
			return fmt.Errorf("list chain stats: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return joinChains(codes.Chains, stats.ChainStats, c.now()), nil
}

func joinChains(codes []string, stats []ChainStats, now time.Time) []Chain {
	byCode := make(map[string]ChainStats, len(stats))
	for _, s := range stats {
		byCode[s.ChainCode] = s
	}

	chains := make([]Chain, 0, len(codes))
	for _, code := range codes {
		s, ok := byCode[code]
		chain := Chain{
			Code:          code,
			Name:          chainName(code),
			StoresCount:   s.StoreCount,
			ProductsCount: s.PriceCount,
			LastUpdated:   s.CreatedAt,
		}
		if !ok || strings.TrimSpace(chain.LastUpdated) == "" {
			chain.LastUpdated = now.UTC().Format(time.RFC3339)
		}
		chains = append(chains, chain)
	}
	return chains
}

// chainName turns a code like "KONZUM" into "Konzum".
func chainName(code string) string {
	runes := []rune(strings.ToLower(code))
	if len(runes) == 0 {
		return ""
	}
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}

// GetChain finds a chain by code, ignoring case.
func (c *Client) GetChain(ctx context.Context, code string) (Chain, error) {
	code = strings.TrimSpace(code)
	if err := validateRequired(code, "code"); err != nil {
		return Chain{}, err
	}
	if n := len([]rune(code)); n < 2 || n > 10 {
		return Chain{}, ValidationError("Chain code must be between 2 and 10 characters")
	}
	chains, err := c.ListChains(ctx)
	if err != nil {
		return Chain{}, err
	}
	for _, chain := range chains {
		if strings.EqualFold(chain.Code, code) {
			return chain, nil
		}
	}
	return Chain{}, &Error{
		Kind:      KindNotFound,
		Code:      "NOT_FOUND",
		Message:   fmt.Sprintf("Chain not found: %s", code),
		Status:    http.StatusNotFound,
		Timestamp: c.now(),
	}
}

package fetch

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"coin_dash/internal/domain"
)

// dispatch routes d to the client method for its kind.
func dispatch(ctx context.Context, client domain.MarketDataClient, d Descriptor) (any, error) {
	switch d.Kind {
	case KindMarkets:
		params, empty, err := marketsParams(d.Params)
		if err != nil {
			return nil, err
		}
		if empty {
			return []domain.MarketCoin{}, nil
		}
		return client.GetMarkets(ctx, params)

	case KindCoinDetail:
		id, err := required(d.Params, "id")
		if err != nil {
			return nil, err
		}
		return client.GetCoinDetail(ctx, id)

	case KindHistory:
		id, err := required(d.Params, "id")
		if err != nil {
			return nil, err
		}
		days, err := required(d.Params, "days")
		if err != nil {
			return nil, err
		}
		r, err := domain.ParseTimeRange(days)
		if err != nil {
			return nil, err
		}
		return client.GetHistory(ctx, id, r, d.Params["vs_currency"])

	case KindSearch:
		return client.Search(ctx, d.Params["query"])

	default:
		return nil, &domain.ConfigError{Field: "kind", Err: fmt.Errorf("%w: %s", domain.ErrUnknownEndpoint, d.Kind)}
	}
}

// marketsParams decodes descriptor params. empty is true when an ids filter
// is present but lists nothing.
func marketsParams(m map[string]string) (p domain.MarketsParams, empty bool, err error) {
	p.Currency = m["vs_currency"]
	p.Order = domain.SortOrder(m["order"])

	if v, ok := m["per_page"]; ok && v != "" {
		if p.PerPage, err = strconv.Atoi(v); err != nil {
			return p, false, &domain.ConfigError{Field: "per_page", Err: err}
		}
	}
	if v, ok := m["page"]; ok && v != "" {
		if p.Page, err = strconv.Atoi(v); err != nil {
			return p, false, &domain.ConfigError{Field: "page", Err: err}
		}
	}
	if v, ok := m["sparkline"]; ok && v != "" {
		if p.Sparkline, err = strconv.ParseBool(v); err != nil {
			return p, false, &domain.ConfigError{Field: "sparkline", Err: err}
		}
	}
	if v := m["price_change_percentage"]; v != "" {
		p.ChangeWindows = splitList(v)
	}
	if v, ok := m["ids"]; ok {
		p.IDs = splitList(v)
		if len(p.IDs) == 0 {
			return p, true, nil
		}
	}
	return p, false, nil
}

func required(m map[string]string, key string) (string, error) {
	v := strings.TrimSpace(m[key])
	if v == "" {
		return "", &domain.ConfigError{Field: key, Err: domain.ErrMissingParam}
	}
	return v, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

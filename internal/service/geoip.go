package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Really-Great-Tech/chareli-backend/internal/config"
)

// GeoIPResolver maps an IP address to a country name.
type GeoIPResolver interface {
	Country(ctx context.Context, ip string) (string, error)
}

type ipAPIResolver struct {
	endpoint   string
	httpClient *http.Client
}

func NewGeoIPResolver(cfg config.GeoIPConfig) GeoIPResolver {
	return &ipAPIResolver{
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (r *ipAPIResolver) Country(ctx context.Context, ip string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/%s?fields=status,country", r.endpoint, ip), nil)
	if err != nil {
		return "", fmt.Errorf("geoip: create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("geoip: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geoip: provider returned status %d", resp.StatusCode)
	}

	var body struct {
		Status  string `json:"status"`
		Country string `json:"country"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("geoip: decode response: %w", err)
	}
	if body.Status != "success" {
		return "", fmt.Errorf("geoip: lookup failed for %s", ip)
	}
	return body.Country, nil
}

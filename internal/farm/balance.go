package farm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/butecodosdevs/buteco-core/internal/farm/entity"
)

// ErrBalanceNotFound is returned when the balance service has no wallet for the user.
var ErrBalanceNotFound = errors.New("balance not found")

// BalanceClient reads wallets from the balance service.
type BalanceClient struct {
	baseURL string
	http    *http.Client
}

func NewBalanceClient(baseURL string, timeout time.Duration) *BalanceClient {
	return &BalanceClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Get fetches GET {baseURL}/balance/{clientID}.
func (c *BalanceClient) Get(ctx context.Context, clientID string) (*entity.Balance, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/balance/"+url.PathEscape(clientID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("balance request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrBalanceNotFound
	case resp.StatusCode != http.StatusOK:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("balance service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var b entity.Balance
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode balance: %w", err)
	}
	return &b, nil
}

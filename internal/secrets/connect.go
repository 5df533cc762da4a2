package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ConnectSource resolves references through a 1Password Connect server.
type ConnectSource struct {
	url    string
	token  string
	client *http.Client
}

func NewConnectSource(serverURL, token string) *ConnectSource {
	return &ConnectSource{
		url:    strings.TrimRight(serverURL, "/"),
		token:  token,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *ConnectSource) Name() string { return "connect" }

func (s *ConnectSource) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: HTTP %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (s *ConnectSource) Resolve(ctx context.Context, ref *Ref) (string, error) {
	var vaults []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := s.getJSON(ctx, "/v1/vaults", &vaults); err != nil {
		return "", fmt.Errorf("list vaults: %w", err)
	}
	vaultID := ""
	for _, v := range vaults {
		if v.Name == ref.Vault {
			vaultID = v.ID
		}
	}
	if vaultID == "" {
		return "", fmt.Errorf("vault %q not found", ref.Vault)
	}

	var items []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	if err := s.getJSON(ctx, "/v1/vaults/"+url.PathEscape(vaultID)+"/items", &items); err != nil {
		return "", fmt.Errorf("list items in vault %q: %w", ref.Vault, err)
	}
	itemID := ""
	for _, i := range items {
		if i.Title == ref.Item {
			itemID = i.ID
		}
	}
	if itemID == "" {
		return "", fmt.Errorf("item %q not found in vault %q", ref.Item, ref.Vault)
	}

	var item struct {
		Fields []struct {
			Label string `json:"label"`
			Value string `json:"value"`
		} `json:"fields"`
	}
	if err := s.getJSON(ctx, "/v1/vaults/"+url.PathEscape(vaultID)+"/items/"+url.PathEscape(itemID), &item); err != nil {
		return "", fmt.Errorf("get item %q: %w", ref.Item, err)
	}
	for _, f := range item.Fields {
		if f.Label == ref.Field {
			return f.Value, nil
		}
	}
	return "", fmt.Errorf("field %q not found in item %q", ref.Field, ref.Item)
}

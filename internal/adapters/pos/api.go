package pos

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nurtas/bloomcast/internal/domain/validate"
)

// apiSale matches the canonical column names the Inspiro export API uses.
type apiSale struct {
	Date     string      `json:"Дата"`
	Store    string      `json:"Магазин"`
	SKU      string      `json:"SKU"`
	Name     string      `json:"Название"`
	Quantity json.Number `json:"Количество"`
	Price    json.Number `json:"Цена"`
	Total    json.Number `json:"Сумма"`
}

type salesExportResponse struct {
	Sales []apiSale `json:"sales"`
}

// fetchSalesAPI calls GET {base}/sales/export with bearer auth.
func (c *Client) fetchSalesAPI(ctx context.Context, from, to time.Time, stores []string) ([]validate.RawSale, error) {
	endpoint := strings.TrimRight(c.baseURL, "/") + "/sales/export"

	params := url.Values{}
	params.Set("start_date", from.Format("2006-01-02"))
	params.Set("end_date", to.Format("2006-01-02"))
	params.Set("format", "json")
	if len(stores) > 0 {
		params.Set("stores", strings.Join(stores, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrAPIRequest, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAPIRequest, err)
	}
	defer resp.Body.Close() //nolint:errcheck // nothing useful to do on close failure

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrAPIRequest, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload salesExportResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrAPIRequest, err)
	}

	rows := make([]validate.RawSale, 0, len(payload.Sales))
	for _, s := range payload.Sales {
		rows = append(rows, validate.RawSale{
			Date:     s.Date,
			Store:    s.Store,
			SKU:      s.SKU,
			Name:     s.Name,
			Quantity: s.Quantity.String(),
			Price:    s.Price.String(),
			Total:    s.Total.String(),
		})
	}
	return rows, nil
}

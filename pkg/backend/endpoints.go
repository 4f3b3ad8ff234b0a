package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cast"

	"github.com/smartgwiza/reports-cli/internal/model"
)

type loginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	Fullname    string `json:"fullname"`
}

// Login exchanges credentials for a session. phone must already be in
// backend format (+2507XXXXXXXX).
func (c *httpClient) Login(ctx context.Context, phone, password string) (*model.Session, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, loginRequest{PhoneNumber: phone, Password: password}, false)
	if err != nil {
		return nil, err
	}
	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "backend: unmarshal login response")
	}
	if resp.AccessToken == "" {
		return nil, eris.New("backend: login response has no access token")
	}
	return &model.Session{Token: resp.AccessToken, Role: resp.Role, Fullname: resp.Fullname, Phone: phone}, nil
}

// Farmers returns one page of the admin farmer listing.
func (c *httpClient) Farmers(ctx context.Context, page, limit int) (*model.FarmerPage, error) {
	q := limitQuery("limit", limit)
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	body, err := c.do(ctx, http.MethodGet, "/api/admin/farmers", q, nil, true)
	if err != nil {
		return nil, err
	}
	payload, err := decode(body)
	if err != nil {
		return nil, err
	}
	farmers, err := unwrapList(payload, "farmers", "data")
	if err != nil {
		return nil, eris.Wrap(err, "backend: farmers")
	}

	fp := &model.FarmerPage{Farmers: farmers, Total: len(farmers), Page: max(page, 1), TotalPages: 1}
	if env, ok := payload.(map[string]any); ok {
		for _, k := range []string{"total", "count"} {
			if n, err := cast.ToIntE(env[k]); err == nil && n > 0 {
				fp.Total = n
				break
			}
		}
		if n, err := cast.ToIntE(env["total_pages"]); err == nil && n > 0 {
			fp.TotalPages = n
		} else if limit > 0 {
			fp.TotalPages = max((fp.Total+limit-1)/limit, 1)
		}
	}
	return fp, nil
}

// RecentSubmissions returns the latest submissions, newest first.
func (c *httpClient) RecentSubmissions(ctx context.Context, limit int) ([]model.RawRecord, error) {
	return c.list(ctx, "/api/admin/submissions/recent", limitQuery("limit", limit), "submissions", "data")
}

// YieldTrends returns daily yield averages for the last days.
func (c *httpClient) YieldTrends(ctx context.Context, days int) ([]model.RawRecord, error) {
	return c.list(ctx, "/api/admin/yield-trends", limitQuery("days", days), "trends")
}

// PredictionHistory returns the signed-in user's predictions.
func (c *httpClient) PredictionHistory(ctx context.Context, limit int) ([]model.RawRecord, error) {
	return c.list(ctx, "/api/predictions/history", limitQuery("limit", limit), "predictions", "data")
}

// Stats returns the admin summary. Values the backend omits stay zero.
func (c *httpClient) Stats(ctx context.Context) (*model.AdminStats, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/admin/stats", nil, nil, true)
	if err != nil {
		return nil, err
	}
	payload, err := decode(body)
	if err != nil {
		return nil, err
	}
	m, ok := payload.(map[string]any)
	if !ok {
		return nil, eris.New("backend: stats payload is not an object")
	}
	return &model.AdminStats{
		TotalFarmers:     cast.ToInt(m["total_farmers"]),
		ActiveFarmers:    cast.ToInt(m["active_farmers"]),
		TotalPredictions: cast.ToInt(m["total_predictions"]),
		AverageYield:     cast.ToFloat64(m["average_yield"]),
		ActiveRate:       cast.ToFloat64(m["active_rate"]),
		TotalSubmissions: cast.ToInt(m["total_submissions"]),
	}, nil
}

func (c *httpClient) list(ctx context.Context, path string, q url.Values, keys ...string) ([]model.RawRecord, error) {
	body, err := c.do(ctx, http.MethodGet, path, q, nil, true)
	if err != nil {
		return nil, err
	}
	payload, err := decode(body)
	if err != nil {
		return nil, err
	}
	out, err := unwrapList(payload, keys...)
	if err != nil {
		return nil, eris.Wrapf(err, "backend: %s", path)
	}
	return out, nil
}

// decode keeps numbers as json.Number so display values keep their
// original text.
func decode(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, eris.Wrap(err, "backend: unmarshal response")
	}
	return v, nil
}

// unwrapList accepts a bare array or an object holding the array under the
// first matching key. Non-object elements are skipped.
func unwrapList(payload any, keys ...string) ([]model.RawRecord, error) {
	var items []any
	switch v := payload.(type) {
	case []any:
		items = v
	case map[string]any:
		found := false
		for _, k := range keys {
			if arr, ok := v[k].([]any); ok {
				items, found = arr, true
				break
			}
		}
		if !found {
			return nil, eris.Errorf("unexpected envelope, want one of %v", keys)
		}
	case nil:
		return nil, nil
	default:
		return nil, eris.Errorf("unexpected payload type %T", payload)
	}

	out := make([]model.RawRecord, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, model.RawRecord(m))
		}
	}
	return out, nil
}

package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	sdkerrors "github.com/autolot/autolot-client/internal/errors"
)

// HTTPStore talks to the marketplace backend at {base}/v0/{entity}/{id}.
// It does no retrying of its own; the scheduler owns the retry policy.
type HTTPStore struct {
	rc *resty.Client
}

// NewHTTPStore builds a store on an existing http.Client (so the SDK's
// auth and debug transports apply) and base URL.
func NewHTTPStore(hc *http.Client, baseURL string) *HTTPStore {
	rc := resty.NewWithClient(hc).
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetDisableWarn(true)
	return &HTTPStore{rc: rc}
}

func entityPath(entity, id string) string {
	return fmt.Sprintf("/v0/%s/%s", entity, id)
}

func (s *HTTPStore) Create(ctx context.Context, entity, id string, payload any) error {
	resp, err := s.rc.R().SetContext(ctx).SetBody(payload).Post(entityPath(entity, id))
	if err != nil {
		return sdkerrors.NewNetworkError("create "+entity, err)
	}
	if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK {
		return sdkerrors.NewHTTPError(resp.StatusCode(), resp.String(), "create "+entity)
	}
	return nil
}

func (s *HTTPStore) Read(ctx context.Context, entity, id string) (json.RawMessage, error) {
	resp, err := s.rc.R().SetContext(ctx).Get(entityPath(entity, id))
	if err != nil {
		return nil, sdkerrors.NewNetworkError("read "+entity, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, sdkerrors.NewHTTPError(resp.StatusCode(), resp.String(), "read "+entity)
	}
	return json.RawMessage(resp.Body()), nil
}

// Update sends a partial field set. The backend merges server-side; PUT here
// is an upsert keyed by id, safe under replay.
func (s *HTTPStore) Update(ctx context.Context, entity, id string, fields map[string]any) error {
	resp, err := s.rc.R().SetContext(ctx).SetBody(fields).Put(entityPath(entity, id))
	if err != nil {
		return sdkerrors.NewNetworkError("update "+entity, err)
	}
	switch resp.StatusCode() {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	}
	return sdkerrors.NewHTTPError(resp.StatusCode(), resp.String(), "update "+entity)
}

func (s *HTTPStore) Delete(ctx context.Context, entity, id string) error {
	resp, err := s.rc.R().SetContext(ctx).Delete(entityPath(entity, id))
	if err != nil {
		return sdkerrors.NewNetworkError("delete "+entity, err)
	}
	if resp.StatusCode() != http.StatusNoContent && resp.StatusCode() != http.StatusOK {
		return sdkerrors.NewHTTPError(resp.StatusCode(), resp.String(), "delete "+entity)
	}
	return nil
}

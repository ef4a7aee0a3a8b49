// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataverse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/darus-fetch/pkg/types"
)

// GetDataset fetches the latest version of the dataset with the given
// persistent identifier (e.g. "doi:10.18419/darus-1234").
//
// A response whose JSON status is not "OK" (unknown identifier, deaccessioned
// dataset) is returned as-is for the caller to inspect. HTTP 401 and 403 are
// returned as *AuthorizationError.
func (a *NativeAPI) GetDataset(ctx context.Context, identifier string) (*types.DatasetResponse, error) {
	req, err := a.newRequest(ctx, url.Values{"persistentId": {identifier}}, "api", "datasets", ":persistentId/")
	if err != nil {
		return nil, err
	}
	resp, err := a.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading dataset response for %s: %w", identifier, err)
	}

	if isAuthStatus(resp.StatusCode) {
		return nil, &AuthorizationError{
			Resource:   identifier,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}

	var ds types.DatasetResponse
	if err := json.Unmarshal(body, &ds); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("dataset %s: HTTP %d", identifier, resp.StatusCode)
		}
		return nil, fmt.Errorf("parsing dataset response for %s: %w", identifier, err)
	}
	return &ds, nil
}

// GetDatafile streams the content of the file with the given database id to
// w and returns the number of bytes written.
func (a *DataAccessAPI) GetDatafile(ctx context.Context, fileID int64, w io.Writer) (int64, error) {
	id := strconv.FormatInt(fileID, 10)
	req, err := a.newRequest(ctx, nil, "api", "access", "datafile", id)
	if err != nil {
		return 0, err
	}
	resp, err := a.do(ctx, req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if isAuthStatus(resp.StatusCode) {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, &AuthorizationError{
			Resource:   "file " + id,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("file %s: HTTP %d", id, resp.StatusCode)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("downloading file %s: %w", id, err)
	}
	return n, nil
}

// errorMessage extracts the "message" of a Dataverse error document.
func errorMessage(body []byte) string {
	var doc struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &doc) != nil {
		return ""
	}
	return doc.Message
}

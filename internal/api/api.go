package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vaultview/vaultview/internal/api/contract"
)

// TeamsApiClient talks to the vendor's Teams API on behalf of one tenant.
// Authentication travels in the http.Client's transport, not here.
type TeamsApiClient interface {
	GetTeamStatus(ctx context.Context) (contract.TeamStatus, error)
	GetPasswordHealth(ctx context.Context) (contract.PasswordHealth, error)
	ListMembers(ctx context.Context, request MembersRequest) (contract.Members, error)
	GetMemberDevices(ctx context.Context, emails []string) ([]contract.Device, error)
}

// MembersRequest is the paging request of the Members operation. The
// orchestrator only ever asks for page 0; the vendor caps a page at 100
// entries and no follow-up page is requested (known scale limit).
type MembersRequest struct {
	Page    int    `json:"page"`
	Order   string `json:"order"`
	OrderBy string `json:"orderBy"`
	Limit   int    `json:"limit"`
}

// DefaultMembersRequest returns the first page ordered ascending by email.
func DefaultMembersRequest(limit int) MembersRequest {
	return MembersRequest{
		Page:    0,
		Order:   "ASC",
		OrderBy: "email",
		Limit:   limit,
	}
}

type teamsApiClient struct {
	url    string
	client *http.Client
}

func NewTeamsApi(url string, client *http.Client) TeamsApiClient {
	return &teamsApiClient{
		url:    url,
		client: client,
	}
}

func (a *teamsApiClient) GetTeamStatus(ctx context.Context) (contract.TeamStatus, error) {
	var response contract.TeamStatusResponse
	if err := a.post(ctx, "/Status", nil, &response); err != nil {
		return contract.TeamStatus{}, err
	}
	return response.Data, nil
}

func (a *teamsApiClient) GetPasswordHealth(ctx context.Context) (contract.PasswordHealth, error) {
	var response contract.PasswordHealthResponse
	if err := a.post(ctx, "/PasswordHealth", nil, &response); err != nil {
		return contract.PasswordHealth{}, err
	}
	return response.Data, nil
}

func (a *teamsApiClient) ListMembers(ctx context.Context, request MembersRequest) (contract.Members, error) {
	var response contract.MembersResponse
	if err := a.post(ctx, "/Members", request, &response); err != nil {
		return contract.Members{}, err
	}
	return response.Data, nil
}

func (a *teamsApiClient) GetMemberDevices(ctx context.Context, emails []string) ([]contract.Device, error) {
	body := struct {
		Emails []string `json:"emails"`
	}{Emails: emails}

	var response contract.DevicesResponse
	if err := a.post(ctx, "/MembersDeviceInformation", body, &response); err != nil {
		return nil, err
	}
	return response.Data.Devices, nil
}

func (a *teamsApiClient) post(ctx context.Context, endpoint string, requestBody interface{}, out interface{}) error {
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("unable to encode %s request: %w", endpoint, err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url+endpoint, bodyReader)
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")

	res, err := a.client.Do(request)
	if err != nil {
		return err
	}

	//goland:noinspection GoUnhandledErrorResult
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("%s request failed with status %d", endpoint, res.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unable to decode %s response: %w", endpoint, err)
	}
	return nil
}

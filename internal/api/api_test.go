package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vaultview/vaultview/internal/api"
	"github.com/vaultview/vaultview/internal/api/contract"
)

func setupSingleResponseServer(t *testing.T, expectedPath string, response interface{}) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, expectedPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(response))
	}))
	t.Cleanup(server.Close)
	return server
}

func Test_GetTeamStatus_returnsSeats(t *testing.T) {
	// Arrange
	t.Parallel()
	statusResponse := contract.TeamStatusResponse{
		Data: contract.TeamStatus{
			Seats: contract.Seats{Active: 10, Remaining: 5, Pending: 2},
		},
	}
	server := setupSingleResponseServer(t, "/Status", statusResponse)
	client := api.NewTeamsApi(server.URL, http.DefaultClient)

	// Act
	status, err := client.GetTeamStatus(context.Background())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, statusResponse.Data, status)
}

func Test_GetPasswordHealth_returnsHistoryAndCurrent(t *testing.T) {
	// Arrange
	t.Parallel()
	healthResponse := contract.PasswordHealthResponse{
		Data: contract.PasswordHealth{
			History: []contract.ScoreSnapshot{{Score: 70, Name: "Jan"}, {Score: 75, Name: "Feb"}},
			Current: contract.ScoreSnapshot{Score: 80, Weak: 3, Reused: 2, Compromised: 1, Safe: 40, PasswordsTotal: 46},
		},
	}
	server := setupSingleResponseServer(t, "/PasswordHealth", healthResponse)
	client := api.NewTeamsApi(server.URL, http.DefaultClient)

	// Act
	health, err := client.GetPasswordHealth(context.Background())

	// Assert
	assert.NoError(t, err)
	assert.Len(t, health.History, 2)
	assert.Equal(t, float64(80), health.Current.Score)
}

func Test_ListMembers_sendsPageRequest(t *testing.T) {
	// Arrange
	t.Parallel()
	membersResponse := contract.MembersResponse{
		Data: contract.Members{
			Members: []contract.Member{{Email: "a@acme.io", Status: "accepted"}},
		},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, readErr := io.ReadAll(r.Body)
		assert.NoError(t, readErr)

		var request api.MembersRequest
		assert.NoError(t, json.Unmarshal(body, &request))
		assert.Equal(t, 0, request.Page)
		assert.Equal(t, "ASC", request.Order)
		assert.Equal(t, "email", request.OrderBy)
		assert.Equal(t, 100, request.Limit)

		assert.NoError(t, json.NewEncoder(w).Encode(membersResponse))
	}))
	t.Cleanup(server.Close)
	client := api.NewTeamsApi(server.URL, http.DefaultClient)

	// Act
	members, err := client.ListMembers(context.Background(), api.DefaultMembersRequest(100))

	// Assert
	assert.NoError(t, err)
	assert.Len(t, members.Members, 1)
	assert.Equal(t, "a@acme.io", members.Members[0].Email)
}

func Test_GetMemberDevices_sendsEmails(t *testing.T) {
	// Arrange
	t.Parallel()
	devicesResponse := contract.DevicesResponse{
		Data: contract.Devices{
			Devices: []contract.Device{{Name: "iPhone", Platform: "ios", AppVersion: "6.2"}},
		},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request struct {
			Emails []string `json:"emails"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, []string{"a@acme.io"}, request.Emails)
		assert.NoError(t, json.NewEncoder(w).Encode(devicesResponse))
	}))
	t.Cleanup(server.Close)
	client := api.NewTeamsApi(server.URL, http.DefaultClient)

	// Act
	devices, err := client.GetMemberDevices(context.Background(), []string{"a@acme.io"})

	// Assert
	assert.NoError(t, err)
	assert.Len(t, devices, 1)
	assert.Equal(t, "iPhone", devices[0].Name)
}

func Test_ApiClient_non2xxIsAnError(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)
	client := api.NewTeamsApi(server.URL, http.DefaultClient)

	_, err := client.GetTeamStatus(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func Test_ApiClient_malformedJsonIsAnError(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	t.Cleanup(server.Close)
	client := api.NewTeamsApi(server.URL, http.DefaultClient)

	_, err := client.GetPasswordHealth(context.Background())
	assert.Error(t, err)
}

package divemeets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"divescore-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func TestFetchDiveHistoryHeightQuirk(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:divemeets")
	defer cleanup()

	var gotHeights []string
	mux := http.NewServeMux()
	mux.HandleFunc("/diversdives.php", func(w http.ResponseWriter, r *http.Request) {
		gotHeights = append(gotHeights, r.URL.Query().Get("height"))
		w.Write([]byte("<html></html>"))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client, err := NewClient(ClientOptions{BaseUrl: ts.URL})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = client.FetchDiveHistory(ctx, "12345", "107B", "7.5")
	require.NoError(t, err)
	_, err = client.FetchDiveHistory(ctx, "12345", "103B", "1")
	require.NoError(t, err)

	require.Equal(t, []string{"7", "1"}, gotHeights)
}

func TestSearchMembers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/memberlist.php", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "Jane", r.PostForm.Get("first"))
		require.Equal(t, "Doe", r.PostForm.Get("last"))

		w.Write([]byte(`
			<html><body><table>
			<tr><td><a href="profile.php?number=32577">Doe, Jane</a></td></tr>
			<tr><td><a href="profile.php?number=10001">Doel, Janet</a></td></tr>
			<tr><td><a href="memberlist.php?page=2">Next</a></td></tr>
			</table></body></html>
		`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client, err := NewClient(ClientOptions{BaseUrl: ts.URL})
	require.NoError(t, err)

	members, err := client.SearchMembers(context.Background(), "Jane", "Doe")
	require.NoError(t, err)
	require.Equal(t, []Member{
		{Number: "32577", Name: "Doe, Jane"},
		{Number: "10001", Name: "Doel, Janet"},
	}, members)

	best, err := BestMatch(members, "Jane", "Doe")
	require.NoError(t, err)
	require.Equal(t, "32577", best.Number)
}

func TestBestMatchEmpty(t *testing.T) {
	_, err := BestMatch(nil, "Jane", "Doe")
	require.Error(t, err)
}

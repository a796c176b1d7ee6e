package discovery

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"divescore-backend/lib/scrapers/divemeets"
	"divescore-backend/lib/telemetry"
	"divescore-backend/services/divers"
	"divescore-backend/services/divers/db"

	"github.com/stretchr/testify/require"
)

const diverProfilePage = `
<html><body>
<td>
<strong>Name: </strong>Jane Doe<br><strong>Gender: </strong>F<br><strong>Age: </strong>17<br><strong>FINA Age: </strong>18<br>
</td>
<strong>Dive Statistics</strong>
<table>
<tr bgcolor="#DBDBDB"><td>103B</td><td>1M</td></tr>
</table>
</body></html>
`

const memberProfilePage = `
<html><body>
<td><strong>Name: </strong>John Judge<br><strong>Gender: </strong>M<br><strong>Age: </strong>44<br><strong>FINA Age: </strong>44<br></td>
<p>judge, no recorded dives</p>
</body></html>
`

const historyPage = `
<html><body>
<table width="100%">
<tr><td>Dive Statistics</td></tr>
<tr><td>dive description</td></tr>
<tr><td>Meet</td><td>Score</td></tr>
<tr><td>Spring Invitational -  Women 1M - Aug 5, 2023</td><td>6.50</td></tr>
</table>
</body></html>
`

func newTestProber(t *testing.T, workers int) Prober {
	cleanup := telemetry.SetupForTesting(t, "test:discovery")
	t.Cleanup(cleanup)

	mux := http.NewServeMux()
	mux.HandleFunc("/profile.php", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("number") {
		case "100", "103":
			w.Write([]byte(diverProfilePage))
		default:
			w.Write([]byte(memberProfilePage))
		}
	})
	mux.HandleFunc("/diversdives.php", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(historyPage))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	scraper, err := divemeets.NewClient(divemeets.ClientOptions{BaseUrl: ts.URL})
	require.NoError(t, err)

	database, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	database.SetMaxOpenConns(1)
	_, err = database.Exec(db.Schema)
	require.NoError(t, err)

	service, err := divers.NewService(database, scraper, divers.ServiceOptions{})
	require.NoError(t, err)

	return NewProber(scraper, service, ProberOptions{Workers: workers})
}

func TestProbeRange(t *testing.T) {
	prober := newTestProber(t, 3)
	ctx := context.Background()

	stats, err := prober.Probe(ctx, 100, 104)
	require.NoError(t, err)
	require.Equal(t, ProbeStats{
		Probed:  5,
		Created: 2,
		Skipped: 3,
	}, stats)

	record, err := prober.service.Store().Load(ctx, "103")
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", record.Profile.Name)
	require.NotEmpty(t, record.Events)

	_, err = prober.service.Store().Load(ctx, "101")
	require.ErrorIs(t, err, divers.ErrRecordNotFound)
}

func TestProbeSkipsPersistedRecords(t *testing.T) {
	prober := newTestProber(t, 2)
	ctx := context.Background()

	first, err := prober.Probe(ctx, 100, 104)
	require.NoError(t, err)
	require.Equal(t, 2, first.Created)

	second, err := prober.Probe(ctx, 100, 104)
	require.NoError(t, err)
	require.Equal(t, 0, second.Created)
	require.Equal(t, 5, second.Skipped)
}

func TestProbeRejectsInvertedRange(t *testing.T) {
	prober := newTestProber(t, 1)
	_, err := prober.Probe(context.Background(), 10, 5)
	require.Error(t, err)
}

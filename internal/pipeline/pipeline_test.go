package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mattsblocklist/advisorymap/internal/advisory"
	"github.com/mattsblocklist/advisorymap/internal/config"
	"github.com/mattsblocklist/advisorymap/internal/countries"
	"github.com/mattsblocklist/advisorymap/internal/scrapers"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

// fakeSource implements Source for testing
type fakeSource struct {
	countries []scrapers.Country
	listErr   error
	pages     map[string]string // slug -> banner text; absent means no banner
	errs      map[string]error
	hang      map[string]bool // wait for the context to expire
	delay     time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeSource) Countries(ctx context.Context, skip map[string]bool) ([]scrapers.Country, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []scrapers.Country
	for _, c := range f.countries {
		if !skip[c.Name] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeSource) RiskText(ctx context.Context, slug string) (string, bool, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.maxInFlight.Load()
		if n <= peak || f.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}

	if f.hang[slug] {
		<-ctx.Done()
		return "", false, ctx.Err()
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err := f.errs[slug]; err != nil {
		return "", false, err
	}
	text, ok := f.pages[slug]
	return text, ok, nil
}

func testLookup(t *testing.T) *countries.Lookup {
	t.Helper()
	l, err := countries.Load(strings.NewReader(strings.Join([]string{
		"France,FR",
		"Peru,PE",
		"Mali,ML",
		"Chad,TD",
		"Iran,IR",
		"Congo,CG",
		"Congo-Brazzaville,CG",
	}, "\n")))
	require.NoError(t, err)
	return l
}

func testOptions() Options {
	opts := OptionsFromConfig(config.Defaults())
	opts.Now = func() time.Time { return fixedNow }
	return opts
}

func TestRun_BuildsResultSet(t *testing.T) {
	src := &fakeSource{
		countries: []scrapers.Country{
			{Name: "France", Slug: "france"},
			{Name: "Atlantis", Slug: "atlantis"},
			{Name: "Peru", Slug: "peru"},
			{Name: "Mali", Slug: "mali"},
			{Name: "Chad", Slug: "chad"},
			{Name: "Iran", Slug: "iran"},
			{Name: "Azores", Slug: "azores"},
		},
		pages: map[string]string{
			"france": "Take normal security precautions",
			"peru":   "Exercise a high degree of caution – regional risks exist",
			"iran":   "Under review",
			"azores": "Take normal security precautions",
		},
		errs: map[string]error{
			"mali": errors.New("unexpected status code: 503"),
		},
	}

	rs, report, err := New(src, testLookup(t), testOptions()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"CA", "EH", "FR", "PE", "SJ"}, rs.Codes())

	fr, _ := rs.Get("FR")
	assert.Equal(t, advisory.Entry{
		DisplayName: "France",
		Directory:   "france",
		IsoCode:     "FR",
		Level:       advisory.Normal,
		LastUpdated: fixedNow,
	}, fr)

	pe, _ := rs.Get("PE")
	assert.Equal(t, advisory.Caution, pe.Level)

	sj, _ := rs.Get("SJ")
	assert.Equal(t, "Svalbard and Jan Mayen", sj.DisplayName)
	eh, _ := rs.Get("EH")
	assert.Equal(t, "Western Sahara", eh.DisplayName)
	assert.Equal(t, advisory.AvoidNonEssentialTravel, eh.Level)

	assert.Equal(t, 6, report.Listed, "skip regions are filtered by the listing")
	assert.Equal(t, 2, report.Added)
	assert.Equal(t, 3, report.Synthetic)
	assert.Empty(t, report.Duplicates)

	require.Len(t, report.Skipped, 4)
	reasons := make(map[string]SkipReason)
	for _, s := range report.Skipped {
		reasons[s.Country.Name] = s.Reason
	}
	assert.Equal(t, map[string]SkipReason{
		"Atlantis": SkipNoISOCode,
		"Mali":     SkipFetchFailed,
		"Chad":     SkipNoLevel,
		"Iran":     SkipNoLevel,
	}, reasons)
	assert.Equal(t, "Atlantis", report.Skipped[0].Country.Name, "skips are reported in listing order")
}

func TestRun_ListingFailureIsFatal(t *testing.T) {
	src := &fakeSource{listErr: scrapers.ErrListingNotFound}

	rs, report, err := New(src, testLookup(t), testOptions()).Run(context.Background())
	assert.ErrorIs(t, err, scrapers.ErrListingNotFound)
	assert.Nil(t, rs)
	assert.Nil(t, report)
}

func TestRun_DuplicateCodesLastWriterWins(t *testing.T) {
	src := &fakeSource{
		countries: []scrapers.Country{
			{Name: "Congo", Slug: "congo-first"},
			{Name: "Congo-Brazzaville", Slug: "congo-second"},
		},
		pages: map[string]string{
			"congo-first":  "Avoid all travel",
			"congo-second": "Avoid non-essential travel",
		},
		delay: 5 * time.Millisecond,
	}

	opts := testOptions()
	opts.Workers = 2
	opts.Synthetic = nil

	rs, report, err := New(src, testLookup(t), opts).Run(context.Background())
	require.NoError(t, err)

	cg, ok := rs.Get("CG")
	require.True(t, ok)
	assert.Equal(t, "congo-second", cg.Directory)
	assert.Equal(t, []Duplicate{{Code: "CG", Previous: "Congo", Replacement: "Congo-Brazzaville"}}, report.Duplicates)
}

func TestRun_SyntheticCollisionIsReported(t *testing.T) {
	opts := testOptions()
	opts.Synthetic = []advisory.Entry{
		{DisplayName: "Svalbard and Jan Mayen", Directory: "norway", IsoCode: "SJ", Level: advisory.Normal},
		{DisplayName: "Western Sahara", Directory: "morocco", IsoCode: "SJ", Level: advisory.AvoidNonEssentialTravel},
	}

	rs, report, err := New(&fakeSource{}, testLookup(t), opts).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, rs.Len())
	require.Len(t, report.Duplicates, 1)
	assert.Equal(t, "SJ", report.Duplicates[0].Code)
}

func TestRun_DefaultSyntheticCodesAreDistinct(t *testing.T) {
	seen := make(map[string]bool)
	for _, e := range testOptions().Synthetic {
		assert.False(t, seen[e.IsoCode], "duplicate synthetic code %s", e.IsoCode)
		seen[e.IsoCode] = true
	}
}

func TestRun_BoundedConcurrency(t *testing.T) {
	var lines []string
	src := &fakeSource{pages: map[string]string{}, delay: 10 * time.Millisecond}
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("Country %02d", i)
		slug := fmt.Sprintf("country-%02d", i)
		src.countries = append(src.countries, scrapers.Country{Name: name, Slug: slug})
		src.pages[slug] = "Take normal security precautions"
		lines = append(lines, fmt.Sprintf("%s,%c%c", name, 'A'+i/26, 'A'+i%26))
	}
	lookup, err := countries.Load(strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)

	opts := testOptions()
	opts.Workers = 3
	opts.Synthetic = nil

	rs, report, err := New(src, lookup, opts).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 20, rs.Len())
	assert.Equal(t, 20, report.Added)
	assert.LessOrEqual(t, src.maxInFlight.Load(), int32(3))
	assert.Greater(t, src.maxInFlight.Load(), int32(1))
}

func TestRun_PerCountryTimeout(t *testing.T) {
	src := &fakeSource{
		countries: []scrapers.Country{
			{Name: "France", Slug: "france"},
			{Name: "Peru", Slug: "peru"},
		},
		pages: map[string]string{"france": "Take normal security precautions"},
		hang:  map[string]bool{"peru": true},
	}

	opts := testOptions()
	opts.Timeout = 50 * time.Millisecond
	opts.Synthetic = nil

	rs, report, err := New(src, testLookup(t), opts).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"FR"}, rs.Codes())
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, SkipFetchFailed, report.Skipped[0].Reason)
	assert.ErrorIs(t, report.Skipped[0].Err, context.DeadlineExceeded)
}

func TestRun_CancelledRun(t *testing.T) {
	src := &fakeSource{
		countries: []scrapers.Country{{Name: "Peru", Slug: "peru"}},
		hang:      map[string]bool{"peru": true},
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, _, err := New(src, testLookup(t), testOptions()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_AgainstSite(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`<select id="CountryDropDown1_ddlCountries">
<option value="">--select--</option>
<option value="france">France</option>
<option value="bahamas">Bahamas, The</option>
<option value="mali">Mali</option>
</select>`))
	})
	banner := func(text string) string {
		return `<div id="riskLevelBanner"><div><div><a href="#"><div>` + text + `</div></a></div></div></div>`
	}
	mux.HandleFunc("/destinations/france", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(banner("Take normal security precautions")))
	})
	mux.HandleFunc("/destinations/mali", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(banner("Avoid all travel")))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	opts := testOptions()
	opts.Skip = map[string]bool{"Bahamas": true}

	source := scrapers.NewTravelScraper(srv.URL, srv.Client(), "")
	rs, report, err := New(source, testLookup(t), opts).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"CA", "EH", "FR", "ML", "SJ"}, rs.Codes())
	ml, _ := rs.Get("ML")
	assert.Equal(t, advisory.AvoidAllTravel, ml.Level)
	assert.Equal(t, 2, report.Listed)
	assert.Empty(t, report.Skipped)
}

func TestRun_MissingListingElement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>maintenance</body></html>`))
	}))
	defer srv.Close()

	source := scrapers.NewTravelScraper(srv.URL, srv.Client(), "")
	_, _, err := New(source, testLookup(t), testOptions()).Run(context.Background())
	assert.ErrorIs(t, err, scrapers.ErrListingNotFound)
}

func TestReport_Render(t *testing.T) {
	report := &Report{
		Listed:    3,
		Added:     1,
		Synthetic: 3,
		Skipped: []Skipped{
			{Country: scrapers.Country{Name: "Atlantis", Slug: "atlantis"}, Reason: SkipNoISOCode},
			{Country: scrapers.Country{Name: "Mali", Slug: "mali"}, Code: "ML", Reason: SkipFetchFailed, Err: errors.New("boom")},
		},
		Duplicates: []Duplicate{{Code: "SJ", Previous: "Svalbard and Jan Mayen", Replacement: "Western Sahara"}},
		Duration:   1500 * time.Millisecond,
	}

	var buf bytes.Buffer
	report.Render(&buf)
	out := buf.String()

	assert.Contains(t, out, "Atlantis")
	assert.Contains(t, out, "no ISO code")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "Western Sahara")
	assert.Contains(t, out, "1.5s")
}

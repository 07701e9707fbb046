package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/smokyabdulrahman/noor/internal/api"
	"github.com/smokyabdulrahman/noor/internal/hifdh"
	"github.com/smokyabdulrahman/noor/internal/hijri"
	"github.com/smokyabdulrahman/noor/internal/momentum"
	"github.com/smokyabdulrahman/noor/internal/qiyam"
)

// 14:00 in Mecca: Dhuhr is active and Asr is next.
var afternoon = time.Date(2026, 2, 28, 11, 0, 0, 0, time.UTC)

func dayData(date time.Time) api.Data {
	return api.Data{
		Timings: api.Timings{
			Fajr:    "05:17",
			Sunrise: "06:48",
			Dhuhr:   "12:13",
			Asr:     "15:02",
			Sunset:  "17:39",
			Maghrib: "17:39",
			Isha:    "19:10",
		},
		Date: api.DateInfo{
			Readable: date.Format("02 Jan 2006"),
			Hijri: api.HijriDate{
				Day:   fmt.Sprintf("%02d", date.Day()%30+1),
				Month: api.HijriMonth{Number: 9, En: "Ramaḍān"},
				Year:  "1447",
			},
			Gregorian: api.GregorianDate{
				Date:  date.Format("02-01-2006"),
				Day:   date.Format("02"),
				Month: api.GregorianMonth{Number: int(date.Month()), En: date.Month().String()},
				Year:  date.Format("2006"),
			},
		},
		Meta: api.Meta{
			Latitude:  21.4225,
			Longitude: 39.8262,
			Timezone:  "Asia/Riyadh",
		},
	}
}

// provider serves /timings/DD-MM-YYYY and /calendar/YYYY/M and records the
// query strings it receives.
type provider struct {
	mu      sync.Mutex
	queries []string
	down    bool
}

func (p *provider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.queries = append(p.queries, r.URL.RawQuery)
	down := p.down
	p.mu.Unlock()

	if down {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 2 && strings.HasPrefix(parts[0], "timings"):
		date, err := time.Parse("02-01-2006", parts[1])
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(api.Response{Code: 200, Status: "OK", Data: dayData(date)})
	case len(parts) == 3 && strings.HasPrefix(parts[0], "calendar"):
		year, _ := strconv.Atoi(parts[1])
		month, _ := strconv.Atoi(parts[2])
		first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		var days []api.Data
		for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
			days = append(days, dayData(d))
		}
		json.NewEncoder(w).Encode(api.CalendarResponse{Code: 200, Status: "OK", Data: days})
	default:
		http.NotFound(w, r)
	}
}

func (p *provider) setDown(down bool) {
	p.mu.Lock()
	p.down = down
	p.mu.Unlock()
}

func (p *provider) lastQuery() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queries) == 0 {
		return ""
	}
	return p.queries[len(p.queries)-1]
}

// setup isolates config, cache and store under a temp dir, points the API
// client at a fake provider and freezes the clock at now.
func setup(t *testing.T, now time.Time) *provider {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("NOOR_CACHE_DIR", filepath.Join(dir, "cache"))
	t.Setenv("NOOR_STORE", "memory")
	t.Setenv("NOOR_LATITUDE", "21.4225")
	t.Setenv("NOOR_LONGITUDE", "39.8262")

	p := &provider{}
	srv := httptest.NewServer(p)
	t.Cleanup(srv.Close)

	origClient, origClock := newClient, clock
	newClient = func() *api.Client {
		c := api.NewClient()
		c.BaseURL = srv.URL
		return c
	}
	clock = func() time.Time { return now }
	t.Cleanup(func() { newClient, clock = origClient, origClock })
	return p
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runContext(t, context.Background(), args...)
}

func runContext(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--no-color", "--env-file", filepath.Join(t.TempDir(), "none.env")))
	err := cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

func TestVersion(t *testing.T) {
	setup(t, afternoon)
	out, _, err := run(t, "--version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "noor version test\n" {
		t.Errorf("--version = %q", out)
	}
}

func TestNext(t *testing.T) {
	setup(t, afternoon)
	tests := []struct {
		format string
		want   string
	}{
		{"full", "Asr 15:02 (1h 2m)"},
		{"name-and-countdown", "Asr in 1h 2m 0s"},
		{"short-name-and-time", "A 15:02"},
		{"{{.Active}} -> {{.Name}}", "Dhuhr -> Asr"},
	}
	for _, tt := range tests {
		out, _, err := run(t, "next", "--format", tt.format)
		if err != nil {
			t.Fatalf("next --format %q: %v", tt.format, err)
		}
		if out != tt.want {
			t.Errorf("next --format %q = %q, want %q", tt.format, out, tt.want)
		}
	}
}

func TestNext_ProviderDownShowsPlaceholder(t *testing.T) {
	p := setup(t, afternoon)
	p.setDown(true)

	out, errOut, err := run(t, "next")
	if err != nil {
		t.Fatalf("next should not fail when the provider is down: %v", err)
	}
	if out != "-- --:--" {
		t.Errorf("next = %q, want placeholder", out)
	}
	if !strings.Contains(errOut, "no prayer times available") {
		t.Errorf("expected a warning on stderr, got %q", errOut)
	}
}

func TestToday_JSON(t *testing.T) {
	setup(t, afternoon)
	out, _, err := run(t, "today", "--json")
	if err != nil {
		t.Fatal(err)
	}

	var got todayJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.Next == nil {
		t.Fatalf("no next prayer in %s", out)
	}
	if got.Active != "dhuhr" || got.Next.Prayer != "asr" {
		t.Errorf("active/next = %q/%+v", got.Active, got.Next)
	}
	if got.Next.Remaining != "1h 2m" {
		t.Errorf("remaining = %q", got.Next.Remaining)
	}
	if got.Timings["fajr"] != "05:17" || got.Timings["isha"] != "19:10" {
		t.Errorf("timings = %v", got.Timings)
	}
	if got.Location.Timezone != "Asia/Riyadh" || got.Location.Source != "config" {
		t.Errorf("location = %+v", got.Location)
	}
	if !got.Ramadan.IsRamadan || got.Ramadan.Date.Day != 29 {
		t.Errorf("ramadan = %+v", got.Ramadan)
	}
	if got.Progress <= 0 || got.Progress >= 100 {
		t.Errorf("progress = %v", got.Progress)
	}
}

func TestToday_ProviderDownPrintsPlaceholders(t *testing.T) {
	p := setup(t, afternoon)
	p.setDown(true)

	out, _, err := run(t)
	if err != nil {
		t.Fatalf("root command should recover from a provider outage: %v", err)
	}
	if strings.Count(out, placeholder) != 6 {
		t.Errorf("expected a placeholder per prayer:\n%s", out)
	}
	if !strings.Contains(out, "unavailable") {
		t.Errorf("expected an unavailable notice:\n%s", out)
	}
}

func TestToday_UsesCache(t *testing.T) {
	p := setup(t, afternoon)
	if _, _, err := run(t, "today"); err != nil {
		t.Fatal(err)
	}
	p.setDown(true)
	out, _, err := run(t, "today", "--json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"fajr": "05:17"`) {
		t.Errorf("second run should be served from the cache:\n%s", out)
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	p := setup(t, afternoon)
	if _, _, err := run(t, "next", "--latitude", "24.4672", "--method", "4"); err != nil {
		t.Fatal(err)
	}
	q := p.lastQuery()
	if !strings.Contains(q, "latitude=24.467200") || !strings.Contains(q, "longitude=39.826200") {
		t.Errorf("query = %q, want flag latitude and env longitude", q)
	}
	if !strings.Contains(q, "method=4") {
		t.Errorf("query = %q, want method=4", q)
	}
}

func TestInvalidTimeFormatFlag(t *testing.T) {
	setup(t, afternoon)
	_, _, err := run(t, "next", "--time-format", "13h")
	if err == nil || !strings.Contains(err.Error(), "--time-format") {
		t.Errorf("err = %v, want a --time-format error", err)
	}
}

func TestTwelveHourFormat(t *testing.T) {
	setup(t, afternoon)
	out, _, err := run(t, "next", "--format", "next-prayer-time", "--time-format", "12h")
	if err != nil {
		t.Fatal(err)
	}
	if out != "3:02 PM" {
		t.Errorf("next = %q, want 3:02 PM", out)
	}
}

func TestQuery(t *testing.T) {
	setup(t, afternoon)

	out, _, err := run(t, "query", "MAGHRIB")
	if err != nil {
		t.Fatal(err)
	}
	if out != "Maghrib 17:39\n" {
		t.Errorf("query = %q", out)
	}

	out, _, err = run(t, "query", "asr", "--days", "3", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		Prayer string `json:"prayer"`
		Days   []struct {
			Date string `json:"date"`
			Time string `json:"time"`
		} `json:"days"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if got.Prayer != "asr" || len(got.Days) != 3 {
		t.Fatalf("query = %+v", got)
	}
	// The range crosses into March, so both months are fetched.
	if got.Days[0].Date != "2026-02-28" || got.Days[2].Date != "2026-03-02" {
		t.Errorf("dates = %+v", got.Days)
	}

	if _, _, err := run(t, "query", "brunch"); err == nil {
		t.Error("expected an error for an unknown prayer")
	}
}

func TestList(t *testing.T) {
	setup(t, afternoon)
	out, _, err := run(t, "week")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Prayer Times, 7 Days") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "Sat 28 Feb") || !strings.Contains(out, "Fri 06 Mar") {
		t.Errorf("expected 28 Feb through 6 Mar:\n%s", out)
	}

	if _, _, err := run(t, "list", "0"); err == nil {
		t.Error("expected an error for zero days")
	}
}

func TestParseDays(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"", 1, false},
		{"week", 7, false},
		{"month", 30, false},
		{"12", 12, false},
		{"366", 366, false},
		{"0", 0, true},
		{"367", 0, true},
		{"fortnight", 0, true},
	}
	for _, tt := range tests {
		got, err := parseDays(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseDays(%q) = %d, %v", tt.in, got, err)
		}
	}
}

func TestFormatGregorianDate(t *testing.T) {
	now := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	if got := formatGregorianDate(now, api.DateInfo{}); got != "05 Mar 2026" {
		t.Errorf("fallback = %q", got)
	}
	d := dayData(now).Date
	if got := formatGregorianDate(now, d); got != "05 March 2026" {
		t.Errorf("provider date = %q", got)
	}
}

func TestRamadanLine(t *testing.T) {
	tests := []struct {
		status hijri.Status
		want   string
	}{
		{hijri.Classify(hijri.Date{Day: 3, Month: 9}, hijri.TestingOverrides{}), "Ramadan day 3 · Mercy (days 1-10)"},
		{hijri.Classify(hijri.Date{Day: 22, Month: 9}, hijri.TestingOverrides{}), "Ramadan day 22 · Refuge from the Fire (days 21-30) · last ten nights"},
		{hijri.Classify(hijri.Date{Day: 2, Month: 3}, hijri.TestingOverrides{ForceRamadan: true}), "Ramadan day 27 · Refuge from the Fire (days 21-30) · odd night of the last ten (forced)"},
	}
	for _, tt := range tests {
		if got := ramadanLine(tt.status); got != tt.want {
			t.Errorf("ramadanLine = %q, want %q", got, tt.want)
		}
	}
}

func TestRamadan_Forced(t *testing.T) {
	setup(t, afternoon)
	t.Setenv("NOOR_FORCE_RAMADAN", "true")
	t.Setenv("NOOR_PINNED_HIJRI_DAY", "23")

	out, _, err := run(t, "ramadan", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var got ramadanJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if !got.Status.IsOddNight || !got.Status.Forced || got.Status.Phase != hijri.Refuge {
		t.Errorf("status = %+v", got.Status)
	}
	if fmt.Sprint(got.RemainingOddNights) != "[23 25 27 29]" {
		t.Errorf("odd nights = %v", got.RemainingOddNights)
	}
	if got.Daily == nil || got.Momentum == nil {
		t.Errorf("expected today's record and momentum: %s", out)
	}
}

func TestRamadan_LocationAheadOfDevice(t *testing.T) {
	// 22:30 UTC on 28 Feb is already 01:30 on 1 Mar in Mecca.
	setup(t, time.Date(2026, 2, 28, 22, 30, 0, 0, time.UTC))

	out, _, err := run(t, "ramadan", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var got ramadanJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if got.Status.Date.Day != 2 {
		t.Errorf("hijri day = %d (%s), want 2 from the 1 Mar provider day", got.Status.Date.Day, got.Hijri)
	}
	if got.Status.IsOddNight {
		t.Errorf("day 2 is not an odd night: %+v", got.Status)
	}

	out, _, err = run(t, "week")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Sun 01 Mar") || strings.Contains(out, "Sat 28 Feb") {
		t.Errorf("listing should start on the location's date:\n%s", out)
	}
}

func TestQiyam(t *testing.T) {
	// 03:30 in Mecca, 107 minutes before Fajr.
	setup(t, time.Date(2026, 2, 28, 0, 30, 0, 0, time.UTC))

	out, _, err := run(t, "qiyam", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var got qiyamJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if got.Phase != qiyam.LastThird {
		t.Errorf("phase = %q, want %q", got.Phase, qiyam.LastThird)
	}
	if got.Fajr != "05:17" || got.Remaining != "1h 47m 0s" {
		t.Errorf("fajr/remaining = %q/%q", got.Fajr, got.Remaining)
	}
	if len(got.Acts) == 0 {
		t.Error("expected suggested acts")
	}
}

func TestQiyam_ProviderDown(t *testing.T) {
	p := setup(t, afternoon)
	p.setDown(true)
	_, _, err := run(t, "qiyam")
	if err == nil || !strings.Contains(err.Error(), "not available") {
		t.Errorf("err = %v, want missing timings", err)
	}
}

func TestWatch(t *testing.T) {
	setup(t, afternoon)
	orig := watchPeriod
	watchPeriod = 10 * time.Millisecond
	t.Cleanup(func() { watchPeriod = orig })

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	out, _, err := runContext(t, ctx, "watch")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(out, "\r\x1b[K") < 2 {
		t.Errorf("expected several redraws, got %q", out)
	}
	if !strings.Contains(out, "Asr in 1h 2m 0s") {
		t.Errorf("watch output = %q", out)
	}
}

func useSQLite(t *testing.T) {
	t.Helper()
	t.Setenv("NOOR_STORE", "sqlite")
	t.Setenv("NOOR_STORE_PATH", filepath.Join(t.TempDir(), "noor.db"))
}

func TestHifdh(t *testing.T) {
	setup(t, afternoon)
	useSQLite(t)

	out, _, err := run(t, "hifdh", "review", "2:255", "needs-revision", "--accuracy", "70", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var p hifdh.AyahProgress
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatal(err)
	}
	if p.Interval != 1 || p.Accuracy == nil || *p.Accuracy != 70 {
		t.Errorf("review = %+v", p)
	}

	if _, _, err := run(t, "hifdh", "review", "1:1", "mastered"); err != nil {
		t.Fatal(err)
	}

	out, _, err = run(t, "hifdh", "stats", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var sum hifdh.Summary
	if err := json.Unmarshal([]byte(out), &sum); err != nil {
		t.Fatal(err)
	}
	if sum.Total != 2 || sum.ByKind[hifdh.Mastered] != 1 || sum.Due != 0 {
		t.Errorf("stats = %+v", sum)
	}

	// A day later the ayah that needs revision is due, the mastered one is not.
	clock = func() time.Time { return afternoon.AddDate(0, 0, 1) }
	out, _, err = run(t, "hifdh", "due")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "2:255") || strings.Contains(out, "1:1 ") {
		t.Errorf("due:\n%s", out)
	}

	if _, _, err := run(t, "hifdh", "review", "2:255", "learning"); err == nil {
		t.Error("expected an error reviewing as learning")
	}
	if _, _, err := run(t, "hifdh", "review", "200:1", "mastered"); err == nil {
		t.Error("expected an error for an invalid surah")
	}
}

func TestDailyAndMomentum(t *testing.T) {
	setup(t, afternoon)
	useSQLite(t)

	out, _, err := run(t, "daily", "set", "fasting", "true", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var got dailyJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if !got.Daily.Fasting || got.Momentum.Level != momentum.FastingPoints {
		t.Errorf("daily set = %+v", got)
	}

	// Setting the same flag again earns nothing.
	if _, _, err := run(t, "daily", "set", "fasting", "true"); err != nil {
		t.Fatal(err)
	}

	out, _, err = run(t, "momentum", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var m momentum.Momentum
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatal(err)
	}
	if m.Level != momentum.FastingPoints {
		t.Errorf("momentum level = %v, want %v", m.Level, momentum.FastingPoints)
	}

	for _, bad := range []string{"many", "NaN", "Inf"} {
		if _, _, err := run(t, "momentum", "award", bad); err == nil {
			t.Errorf("expected an error for points %q", bad)
		}
	}
	if _, _, err := run(t, "daily", "set", "sleep", "8"); err == nil {
		t.Error("expected an error for an unknown field")
	}
}

func TestConfigCommands(t *testing.T) {
	setup(t, afternoon)

	if _, _, err := run(t, "config", "set", "city", "Riyadh"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := run(t, "config", "set", "method", "4"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := run(t, "config", "set", "method", "99"); err == nil {
		t.Error("expected an error for method 99")
	}

	out, _, err := run(t, "config")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Riyadh") || !strings.Contains(out, "4 (Umm Al-Qura University, Makkah)") {
		t.Errorf("config show:\n%s", out)
	}

	out, _, err = run(t, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), filepath.Join("noor", "config.json")) {
		t.Errorf("config path = %q", out)
	}

	if _, _, err := run(t, "config", "reset"); err != nil {
		t.Fatal(err)
	}
	out, _, _ = run(t, "config")
	if strings.Contains(out, "Riyadh") {
		t.Errorf("config not reset:\n%s", out)
	}
}

func TestMethods(t *testing.T) {
	setup(t, afternoon)
	out, _, err := run(t, "methods")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"ISNA", "Umm Al-Qura", "Jafari", "Ministry of Awqaf, Jordan"} {
		if !strings.Contains(out, want) {
			t.Errorf("methods output missing %q", want)
		}
	}
}

func TestCacheCommands(t *testing.T) {
	setup(t, afternoon)
	out, _, err := run(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := strings.TrimSpace(out), os.Getenv("NOOR_CACHE_DIR"); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}

	out, _, err = run(t, "cache", "prune")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "Removed 0 ") {
		t.Errorf("prune = %q", out)
	}
}

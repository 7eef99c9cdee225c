package schedule

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timertable/internal/ics"
	"timertable/internal/model"
)

var kst = time.FixedZone("KST", 9*3600)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const listJSON = `[
  [{"begin": "08:00", "end": "08:50", "subject": "Math"}, {"begin": "09:00", "end": "09:50", "subject": "English"}],
  [{"begin": "08:00", "end": "08:50", "subject": "Music"}],
  [{"begin": "08:00", "end": "08:50", "subject": "Math"}],
  [{"begin": "08:00", "end": "08:50", "subject": "Art"}],
  [{"begin": "08:00:00", "end": "08:50:00", "subject": "English"}]
]`

const namedYAML = `
monday:
  - {begin: "08:00", end: "08:50", subject: Math}
  - {begin: "09:00", end: "09:50", subject: English}
Tuesday:
  - {begin: "08:00", end: "08:50", subject: Music}
wednesday:
  - {begin: "08:00", end: "08:50", subject: Math}
thursday:
  - {begin: "08:00", end: "08:50", subject: Art}
friday:
  - {begin: "08:00:00", end: "08:50:00", subject: English}
`

func expectedWeek() model.WeekTimetable {
	first := func(subject string) model.Lecture {
		return model.Lecture{Begin: model.Clock(8, 0, 0), End: model.Clock(8, 50, 0), Subject: subject}
	}
	return model.WeekTimetable{
		{first("Math"), {Begin: model.Clock(9, 0, 0), End: model.Clock(9, 50, 0), Subject: "English"}},
		{first("Music")},
		{first("Math")},
		{first("Art")},
		{first("English")},
	}
}

func TestLoadTimetableForms(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name, file, body string
	}{
		{"json list", "week.json", listJSON},
		{"yaml named", "week.yaml", namedYAML},
		{"yml extension", "week.yml", namedYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			week, err := LoadTimetable(ctx, writeFile(t, tt.file, tt.body), kst, nil)
			require.NoError(t, err)
			assert.Equal(t, expectedWeek(), week)
		})
	}
}

func TestDecodeTimetableNamedJSON(t *testing.T) {
	week, err := DecodeTimetable([]byte(`{"monday": [{"begin": "08:00", "end": "08:50", "subject": "Math"}]}`), false)
	require.NoError(t, err)
	assert.Len(t, week[0], 1)
	assert.Empty(t, week[4], "missing days decode empty and fail validation later")
}

func TestLoadTimetableErrors(t *testing.T) {
	ctx := context.Background()
	tests := map[string]struct {
		file, body string
	}{
		"wrong day count": {"week.json", `[[], [], []]`},
		"unknown weekday": {"week.yaml", "saturday: []\n"},
		"scalar document": {"week.json", `"monday"`},
		"empty document":  {"week.yaml", ""},
		"bad time":        {"week.json", `[[{"begin": "8am", "end": "09:00", "subject": "x"}], [], [], [], []]`},
		"bad extension":   {"week.txt", listJSON},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadTimetable(ctx, writeFile(t, tt.file, tt.body), kst, nil)
			assert.Error(t, err)
		})
	}

	_, err := LoadTimetable(ctx, filepath.Join(t.TempDir(), "missing.json"), kst, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadTimetableValidates(t *testing.T) {
	body := `[
  [{"begin": "09:00", "end": "08:00", "subject": "Math"}],
  [{"begin": "08:00", "end": "08:50", "subject": "Music"}],
  [],
  [{"begin": "08:00", "end": "08:50", "subject": "Art"}],
  [{"begin": "08:00", "end": "08:50", "subject": "English"}]
]`
	_, err := LoadTimetable(context.Background(), writeFile(t, "week.json", body), kst, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInverted)
	assert.ErrorIs(t, err, model.ErrEmptyDay)

	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 0, verr.Day)
}

func TestLoadTimetableICS(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	week := expectedWeek()
	cal := ics.Export(week, ics.ExportOptions{From: time.Date(2024, 3, 4, 0, 0, 0, 0, loc), Location: loc})
	body := cal.Serialize()

	got, err := LoadTimetable(context.Background(), writeFile(t, "week.ics", body), loc, nil)
	require.NoError(t, err)
	assert.Equal(t, week, got)
}

func TestLoadTimetableFeed(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	week := expectedWeek()
	body := ics.Export(week, ics.ExportOptions{From: time.Date(2024, 3, 4, 0, 0, 0, 0, loc), Location: loc}).Serialize()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	fetcher := ics.NewFetcher(t.TempDir())
	got, err := LoadTimetable(context.Background(), srv.URL+"/feed?token=x", loc, fetcher)
	require.NoError(t, err)
	assert.Equal(t, week, got)

	assert.Equal(t, "feed", label(srv.URL))
	assert.Equal(t, "week.json", label("week.json"))
}

func TestLoadTheme(t *testing.T) {
	jsonTheme := `{
  "Math": {"background": "#ff000080", "foreground": "#ffffff"},
  "Art": {"background": {"red": 0, "green": 0.5, "blue": 1}, "foreground": "#000000"}
}`
	yamlTheme := `
Math:
  background: "#ff000080"
  foreground: "#ffffff"
Art:
  background: {red: 0, green: 0.5, blue: 1}
  foreground: "#000000"
`
	for _, f := range []struct{ name, body string }{{"theme.json", jsonTheme}, {"theme.yaml", yamlTheme}} {
		t.Run(f.name, func(t *testing.T) {
			theme, err := LoadTheme(writeFile(t, f.name, f.body))
			require.NoError(t, err)
			require.Len(t, theme, 2)
			assert.Equal(t, "#ff000080", theme["Math"].Background.Hex())
			assert.Equal(t, model.Color{Red: 0, Green: 0.5, Blue: 1, Alpha: 1}, theme["Art"].Background)
		})
	}

	_, err := LoadTheme(writeFile(t, "theme.ics", "BEGIN:VCALENDAR"))
	assert.Error(t, err)
	_, err = LoadTheme(writeFile(t, "theme.json", `{"Math": {"background": "red"}}`))
	assert.Error(t, err)
}

func TestUnthemedSubjects(t *testing.T) {
	theme := model.Theme{"Math": model.DefaultCellColor, "Music": model.DefaultCellColor}
	assert.Equal(t, []string{"English", "Art"}, UnthemedSubjects(expectedWeek(), theme))
	assert.Empty(t, UnthemedSubjects(model.WeekTimetable{}, theme))
}

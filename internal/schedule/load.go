// Package schedule loads the week timetable and the subject theme. Both are
// read once at startup; any failure is fatal for the caller.
package schedule

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"timertable/internal/ics"
	appLog "timertable/internal/log"
	"timertable/internal/model"
)

// weekdayKeys are the accepted keys of the named timetable form.
var weekdayKeys = [model.SchoolDays]string{"monday", "tuesday", "wednesday", "thursday", "friday"}

// format is the document encoding, chosen by file extension.
type format int

const (
	formatJSON format = iota
	formatYAML
	formatICS
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".ics":
		return formatICS, nil
	default:
		return 0, fmt.Errorf("unsupported file extension %q", filepath.Ext(path))
	}
}

// LoadTimetable reads and validates a week timetable from a local file or,
// when src is an http(s) URL, from an ICS feed fetched through fetcher.
//
// JSON and YAML documents are either an array of exactly five day arrays
// (Monday first) or an object keyed by lower-case weekday name. ICS
// documents are imported with weekly events mapped onto their weekday in
// loc. A nil fetcher uses the default cache directory.
func LoadTimetable(ctx context.Context, src string, loc *time.Location, fetcher *ics.Fetcher) (model.WeekTimetable, error) {
	var (
		week model.WeekTimetable
		data []byte
		f    format
		err  error
	)

	if ics.IsRemote(src) {
		if fetcher == nil {
			fetcher = ics.NewFetcher("")
		}
		var res ics.FetchResult
		res, err = fetcher.Fetch(ctx, src)
		if err != nil {
			return week, fmt.Errorf("schedule: fetch timetable: %w", err)
		}
		data, f = res.Body, formatICS
	} else {
		if f, err = formatOf(src); err != nil {
			return week, fmt.Errorf("schedule: timetable %s: %w", src, err)
		}
		if data, err = os.ReadFile(src); err != nil {
			return week, fmt.Errorf("schedule: read timetable: %w", err)
		}
	}

	switch f {
	case formatICS:
		week, err = ics.ParseWeek(data, loc)
	default:
		week, err = DecodeTimetable(data, f == formatYAML)
	}
	if err != nil {
		return week, fmt.Errorf("schedule: timetable %s: %w", label(src), err)
	}
	if err := week.Validate(); err != nil {
		return week, fmt.Errorf("schedule: timetable %s: %w", label(src), err)
	}

	n := 0
	for _, day := range week {
		n += len(day)
	}
	appLog.Info("timetable loaded", "source", label(src), "lectures", n)
	return week, nil
}

// label hides the path of feed URLs, which often carry access tokens.
func label(src string) string {
	if ics.IsRemote(src) {
		return "feed"
	}
	return src
}

// DecodeTimetable decodes a timetable document without validating it.
func DecodeTimetable(data []byte, isYAML bool) (model.WeekTimetable, error) {
	var (
		days  []model.DayTimetable
		named map[string]model.DayTimetable
		err   error
	)

	if isYAML {
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return model.WeekTimetable{}, err
		}
		if len(doc.Content) == 0 {
			return model.WeekTimetable{}, errors.New("empty document")
		}
		root := doc.Content[0]
		switch root.Kind {
		case yaml.SequenceNode:
			err = root.Decode(&days)
		case yaml.MappingNode:
			err = root.Decode(&named)
		default:
			err = errors.New("expected a list of days or a mapping of weekdays")
		}
	} else {
		trimmed := bytes.TrimSpace(data)
		switch {
		case len(trimmed) == 0:
			err = errors.New("empty document")
		case trimmed[0] == '[':
			err = json.Unmarshal(trimmed, &days)
		case trimmed[0] == '{':
			err = json.Unmarshal(trimmed, &named)
		default:
			err = errors.New("expected a list of days or a mapping of weekdays")
		}
	}
	if err != nil {
		return model.WeekTimetable{}, err
	}

	if named != nil {
		return fromNamed(named)
	}
	return fromList(days)
}

func fromList(days []model.DayTimetable) (model.WeekTimetable, error) {
	var week model.WeekTimetable
	if len(days) != model.SchoolDays {
		return week, fmt.Errorf("expected %d days, got %d", model.SchoolDays, len(days))
	}
	copy(week[:], days)
	return week, nil
}

func fromNamed(named map[string]model.DayTimetable) (model.WeekTimetable, error) {
	var week model.WeekTimetable
	for key, day := range named {
		i := slices.Index(weekdayKeys[:], strings.ToLower(key))
		if i < 0 {
			return week, fmt.Errorf("unknown weekday %q", key)
		}
		week[i] = day
	}
	return week, nil
}

// LoadTheme reads a subject theme (JSON or YAML).
func LoadTheme(path string) (model.Theme, error) {
	f, err := formatOf(path)
	if err == nil && f == formatICS {
		err = errors.New("theme must be JSON or YAML")
	}
	if err != nil {
		return nil, fmt.Errorf("schedule: theme %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schedule: read theme: %w", err)
	}

	theme := model.Theme{}
	if f == formatYAML {
		err = yaml.Unmarshal(data, &theme)
	} else {
		err = json.Unmarshal(data, &theme)
	}
	if err != nil {
		return nil, fmt.Errorf("schedule: theme %s: %w", path, err)
	}

	appLog.Info("theme loaded", "path", path, "subjects", len(theme))
	return theme, nil
}

// UnthemedSubjects lists subjects of week that have no theme entry. They
// render with default colors; callers usually just log them.
func UnthemedSubjects(week model.WeekTimetable, theme model.Theme) []string {
	seen := map[string]bool{}
	var out []string
	for _, day := range week {
		for _, l := range day {
			if seen[l.Subject] {
				continue
			}
			seen[l.Subject] = true
			if _, ok := theme.Get(l.Subject); !ok {
				out = append(out, l.Subject)
			}
		}
	}
	return out
}

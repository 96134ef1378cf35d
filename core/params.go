package core

import (
	"strings"
	"time"
	_ "time/tzdata"

	"focus-hub/pkg/rest"
)

// Mode selects the time window of a listing.
type Mode int

const (
	ModeNext Mode = iota // items ending now or later
	ModePrev             // items that already ended
)

func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(value) {
	case "", "next":
		return ModeNext, nil
	case "prev":
		return ModePrev, nil
	default:
		return ModeNext, rest.Validation("invalid mode %q: must be next or prev", value)
	}
}

func (m Mode) String() string {
	if m == ModePrev {
		return "prev"
	}

	return "next"
}

func (m Mode) ascending() bool {
	return m != ModePrev
}

// View selects how a listing is rendered.
type View int

const (
	ViewFlat View = iota
	ViewGroup
)

func ParseView(value string) (View, error) {
	switch strings.ToLower(value) {
	case "", "flat":
		return ViewFlat, nil
	case "group":
		return ViewGroup, nil
	default:
		return ViewFlat, rest.Validation("invalid view %q: must be flat or group", value)
	}
}

func (v View) String() string {
	if v == ViewGroup {
		return "group"
	}

	return "flat"
}

// LoadTimezone resolves an IANA zone name. The process-local zone is not a
// valid answer for a caller. The store checks the name again against its own
// zone database when grouping by day.
func LoadTimezone(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return nil, rest.Validation("invalid timezone %q", name)
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, rest.Validation("invalid timezone %q", name)
	}

	return loc, nil
}

// ListRequest carries the raw listing parameters as received.
type ListRequest struct {
	Mode     string
	View     string
	Timezone string
	Page     string
	Limit    string
}

// ListParams is a validated ListRequest.
type ListParams struct {
	Mode     Mode
	View     View
	Location *time.Location
	Page     Page
}

func parseListParams(req ListRequest, defaultTimezone string, maxLimit int) (ListParams, error) {
	mode, err := ParseMode(req.Mode)
	if err != nil {
		return ListParams{}, err
	}

	view, err := ParseView(req.View)
	if err != nil {
		return ListParams{}, err
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = defaultTimezone
	}

	loc, err := LoadTimezone(timezone)
	if err != nil {
		return ListParams{}, err
	}

	return ListParams{
		Mode:     mode,
		View:     view,
		Location: loc,
		Page:     NewPage(req.Page, req.Limit, maxLimit),
	}, nil
}

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focus-hub/pkg/rest"
)

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   string
		want    Mode
		wantErr bool
	}{
		{value: "", want: ModeNext},
		{value: "next", want: ModeNext},
		{value: "NEXT", want: ModeNext},
		{value: "Prev", want: ModePrev},
		{value: "later", wantErr: true},
	}

	for _, tt := range tests {
		mode, err := ParseMode(tt.value)
		if tt.wantErr {
			assert.ErrorIs(t, err, rest.ErrValidation, tt.value)
			continue
		}

		require.NoError(t, err, tt.value)
		assert.Equal(t, tt.want, mode, tt.value)
	}

	assert.Equal(t, "next", ModeNext.String())
	assert.Equal(t, "prev", ModePrev.String())
}

func TestParseView(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   string
		want    View
		wantErr bool
	}{
		{value: "", want: ViewFlat},
		{value: "Flat", want: ViewFlat},
		{value: "GROUP", want: ViewGroup},
		{value: "calendar", wantErr: true},
	}

	for _, tt := range tests {
		view, err := ParseView(tt.value)
		if tt.wantErr {
			assert.ErrorIs(t, err, rest.ErrValidation, tt.value)
			continue
		}

		require.NoError(t, err, tt.value)
		assert.Equal(t, tt.want, view, tt.value)
	}
}

func TestLoadTimezone(t *testing.T) {
	t.Parallel()

	loc, err := LoadTimezone("Asia/Dhaka")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Dhaka", loc.String())

	for _, name := range []string{"", "Local", "Not/AZone"} {
		_, err := LoadTimezone(name)
		assert.ErrorIs(t, err, rest.ErrValidation, name)
	}
}

func TestParseListParams(t *testing.T) {
	t.Parallel()

	params, err := parseListParams(ListRequest{Mode: "prev", View: "group", Page: "2", Limit: "3"}, "Asia/Dhaka", 100)
	require.NoError(t, err)
	assert.Equal(t, ModePrev, params.Mode)
	assert.Equal(t, ViewGroup, params.View)
	assert.Equal(t, "Asia/Dhaka", params.Location.String())
	assert.Equal(t, Page{Number: 2, Limit: 3}, params.Page)

	_, err = parseListParams(ListRequest{Timezone: "Europe/Nowhere"}, "Asia/Dhaka", 100)
	assert.ErrorContains(t, err, "invalid timezone")

	_, err = parseListParams(ListRequest{View: "tree"}, "Asia/Dhaka", 100)
	assert.ErrorContains(t, err, "invalid view")
}

package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	d := NewDate(2026, time.March, 9)

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-09"`, string(out))

	var back Date
	require.NoError(t, json.Unmarshal(out, &back))
	assert.True(t, back.Equal(d.Time))

	var empty Date
	require.NoError(t, json.Unmarshal([]byte(`null`), &empty))
	assert.True(t, empty.IsZero())

	out, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	assert.Error(t, json.Unmarshal([]byte(`"09/03/2026"`), &back))
}

func TestDateScan(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"time", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), "2026-01-02"},
		{"text", "2026-01-02", "2026-01-02"},
		{"bytes", []byte("2026-01-02"), "2026-01-02"},
		{"timestamp text", "2026-01-02T00:00:00Z", "2026-01-02"},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.in))
			assert.Equal(t, tt.want, d.String())
		})
	}

	var d Date
	assert.Error(t, d.Scan(42))
}

func TestDateValue(t *testing.T) {
	v, err := NewDate(2026, time.December, 31).Value()
	require.NoError(t, err)
	assert.Equal(t, "2026-12-31", v)

	v, err = Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDateOfUsesLocalCalendarDay(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	// 20:00 UTC on the 1st is already the 2nd in India.
	at := time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC).In(kolkata)
	assert.Equal(t, "2026-05-02", DateOf(at).String())
}

func TestUpdateInputApply(t *testing.T) {
	f := &FollowUp{PatientName: "A", Phone: "9999999999", Status: StatusPending}
	name := " B "
	done := StatusDone
	in := UpdateFollowUpInput{PatientName: &name, Status: &done}
	in.Normalize()
	in.Apply(f)

	assert.Equal(t, "B", f.PatientName)
	assert.Equal(t, "9999999999", f.Phone)
	assert.True(t, f.IsDone())
}

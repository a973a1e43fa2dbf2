package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckColumnCapacity(t *testing.T) {
	t.Parallel()

	limit3 := 3

	tests := []struct {
		name            string
		limit           *int
		occupancy       int
		alreadyResident bool
		wantErr         error
	}{
		{
			name:      "nil limit never blocks",
			limit:     nil,
			occupancy: 1000,
		},
		{
			name:      "under limit admits",
			limit:     &limit3,
			occupancy: 2,
		},
		{
			name:      "at limit blocks entry",
			limit:     &limit3,
			occupancy: 3,
			wantErr:   ErrColumnFull,
		},
		{
			name:      "over limit blocks entry",
			limit:     &limit3,
			occupancy: 5,
			wantErr:   ErrColumnFull,
		},
		{
			name:            "resident issue reorders freely at limit",
			limit:           &limit3,
			occupancy:       3,
			alreadyResident: true,
		},
		{
			name:            "resident issue reorders freely over limit",
			limit:           &limit3,
			occupancy:       7,
			alreadyResident: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := checkColumnCapacity(tc.limit, tc.occupancy, tc.alreadyResident)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMask(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Иванов", "И*****"},
		{"Ivanov", "I*****"},
		{"Я", "Я"},
		{"", ""},
		{"Анна-Мария", "А*********"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, mask(tc.in))
		})
	}
}

func TestAddMonths(t *testing.T) {
	at := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 14, 5, 6, 7, time.UTC)
	}
	tests := []struct {
		name   string
		from   time.Time
		months int
		want   time.Time
	}{
		{"plain backwards", at(2026, time.May, 15), -2, at(2026, time.March, 15)},
		{"clamps to february", at(2026, time.April, 30), -2, at(2026, time.February, 28)},
		{"clamps to leap day", at(2028, time.April, 30), -2, at(2028, time.February, 29)},
		{"crosses year backwards", at(2026, time.January, 31), -2, at(2025, time.November, 30)},
		{"crosses year forwards", at(2025, time.September, 30), 6, at(2026, time.March, 30)},
		{"clamps forwards", at(2025, time.August, 31), 6, at(2026, time.February, 28)},
		{"zero is identity", at(2026, time.June, 1), 0, at(2026, time.June, 1)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, addMonths(tc.from, tc.months))
		})
	}
}

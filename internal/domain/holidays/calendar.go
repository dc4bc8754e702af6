// Package holidays provides the Kazakhstan holiday calendar and the demand
// multipliers flower sales follow around each date.
package holidays

import (
	"time"
)

// neutralMultiplier applies on dates with no holiday.
const neutralMultiplier = 1.0

// Holiday describes one recurring date and its effect on demand. Month and
// Day recur every year; the calendar ignores the year a source file carries.
type Holiday struct {
	Code                string
	Name                string
	Month               time.Month
	Day                 int
	Multiplier          float64
	PeakStartDaysBefore int
	PeakDurationDays    int
	PrimaryFlowers      string
	Description         string
}

// date returns the holiday occurrence in the given year.
func (h Holiday) date(year int) time.Time {
	return time.Date(year, h.Month, h.Day, 0, 0, 0, 0, time.UTC)
}

// Option applies a configuration option to the Calendar.
type Option func(*Calendar)

// WithHolidays replaces the built-in holiday set.
func WithHolidays(hs []Holiday) Option {
	return func(c *Calendar) {
		if len(hs) > 0 {
			c.list = append([]Holiday(nil), hs...)
		}
	}
}

// Calendar answers date lookups against a fixed holiday set.
type Calendar struct {
	list  []Holiday
	byDay map[string]int // "MM-DD" -> index into list
}

// NewCalendar creates a calendar, defaulting to the built-in Kazakhstan set.
func NewCalendar(opts ...Option) *Calendar {
	c := &Calendar{
		list: Defaults(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.byDay = make(map[string]int, len(c.list))
	for i, h := range c.list {
		c.byDay[dayKey(h.Month, h.Day)] = i
	}

	return c
}

// All returns the holidays in calendar order.
func (c *Calendar) All() []Holiday {
	out := make([]Holiday, len(c.list))
	copy(out, c.list)
	return out
}

// On reports the holiday falling on the given date, if any.
func (c *Calendar) On(t time.Time) (Holiday, bool) {
	i, ok := c.byDay[dayKey(t.Month(), t.Day())]
	if !ok {
		return Holiday{}, false
	}
	return c.list[i], true
}

// MultiplierOn returns the demand multiplier for the given date. Dates
// without a holiday yield 1.0.
func (c *Calendar) MultiplierOn(t time.Time) float64 {
	if h, ok := c.On(t); ok {
		return h.Multiplier
	}
	return neutralMultiplier
}

// InPeakWindow reports whether the date falls inside a holiday's purchasing
// peak. The window opens PeakStartDaysBefore days ahead of the holiday and
// runs PeakDurationDays days; the holiday date itself always counts.
func (c *Calendar) InPeakWindow(t time.Time) (Holiday, bool) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	for _, h := range c.list {
		// Windows may cross a year boundary, so test the occurrence in
		// this year and the next.
		for _, year := range [2]int{day.Year(), day.Year() + 1} {
			occ := h.date(year)
			if day.Equal(occ) {
				return h, true
			}
			start := occ.AddDate(0, 0, -h.PeakStartDaysBefore)
			end := start.AddDate(0, 0, h.PeakDurationDays-1)
			if !day.Before(start) && !day.After(end) {
				return h, true
			}
		}
	}
	return Holiday{}, false
}

func dayKey(m time.Month, d int) string {
	return time.Date(2000, m, d, 0, 0, 0, 0, time.UTC).Format("01-02")
}

// Defaults returns the 2025 Kazakhstan holiday set.
func Defaults() []Holiday {
	return []Holiday{
		{
			Code:                "NEW_YEAR",
			Name:                "Новый год",
			Month:               time.January,
			Day:                 1,
			Multiplier:          1.4,
			PeakStartDaysBefore: 2,
			PeakDurationDays:    3,
			PrimaryFlowers:      "Хризантемы, ели",
			Description:         "Зимние праздники",
		},
		{
			Code:                "VALENTINES",
			Name:                "День святого Валентина",
			Month:               time.February,
			Day:                 14,
			Multiplier:          1.8,
			PeakStartDaysBefore: 3,
			PeakDurationDays:    2,
			PrimaryFlowers:      "Розы красные",
			Description:         "Второй по важности",
		},
		{
			Code:                "WOMENS_DAY",
			Name:                "Международный женский день",
			Month:               time.March,
			Day:                 8,
			Multiplier:          4.2,
			PeakStartDaysBefore: 5,
			PeakDurationDays:    3,
			PrimaryFlowers:      "Розы, тюльпаны, мимоза",
			Description:         "Пик года, рост до 420%",
		},
		{
			Code:                "NAURYZ",
			Name:                "Наурыз мейрамы",
			Month:               time.March,
			Day:                 21,
			Multiplier:          2.1,
			PeakStartDaysBefore: 2,
			PeakDurationDays:    3,
			PrimaryFlowers:      "Тюльпаны, нарциссы",
			Description:         "Национальный праздник",
		},
		{
			Code:                "DEFENDERS_DAY",
			Name:                "День защитника Отечества",
			Month:               time.May,
			Day:                 7,
			Multiplier:          1.2,
			PeakStartDaysBefore: 1,
			PeakDurationDays:    1,
			PrimaryFlowers:      "Гвоздики",
			Description:         "Мужской праздник",
		},
		{
			Code:                "VICTORY_DAY",
			Name:                "День Победы",
			Month:               time.May,
			Day:                 9,
			Multiplier:          1.3,
			PeakStartDaysBefore: 1,
			PeakDurationDays:    1,
			PrimaryFlowers:      "Гвоздики",
			Description:         "Памятная дата",
		},
		{
			Code:                "MOTHERS_DAY",
			Name:                "День матери",
			Month:               time.May,
			Day:                 11,
			Multiplier:          1.9,
			PeakStartDaysBefore: 2,
			PeakDurationDays:    2,
			PrimaryFlowers:      "Розы, пионы",
			Description:         "Семейный праздник",
		},
		{
			Code:                "CONSTITUTION_DAY",
			Name:                "День Конституции",
			Month:               time.August,
			Day:                 30,
			Multiplier:          1.1,
			PeakStartDaysBefore: 0,
			PeakDurationDays:    1,
			PrimaryFlowers:      "Смешанные букеты",
			Description:         "Государственный праздник",
		},
		{
			Code:                "INDEPENDENCE_DAY",
			Name:                "День независимости",
			Month:               time.December,
			Day:                 16,
			Multiplier:          1.2,
			PeakStartDaysBefore: 1,
			PeakDurationDays:    1,
			PrimaryFlowers:      "Национальные цветы",
			Description:         "Национальный день",
		},
	}
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"worktime/internal/domain"
)

// WorkCalendar defines which calendar dates count as working days for
// the whole organisation. Per-employee adjustments (hire/termination,
// leave) are layered on top by the directory service.
type WorkCalendar struct {
	// Weekend lists non-working weekdays. Defaults to Sat/Sun.
	Weekend []string `yaml:"weekend"`
	// Holidays are non-working dates regardless of weekday.
	Holidays []domain.Date `yaml:"holidays"`
	// Workdays are working dates that override the weekend (moved
	// working days around public holidays).
	Workdays []domain.Date `yaml:"workdays"`

	weekend  map[time.Weekday]bool
	holidays map[domain.Date]bool
	workdays map[domain.Date]bool
}

// DefaultCalendar returns a calendar with a Sat/Sun weekend and no
// holidays.
func DefaultCalendar() *WorkCalendar {
	c := &WorkCalendar{Weekend: []string{"Saturday", "Sunday"}}
	if err := c.index(); err != nil {
		panic(err) // static defaults cannot fail
	}
	return c
}

// LoadCalendar reads a YAML work calendar from path.
func LoadCalendar(path string) (*WorkCalendar, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calendar %s: %w", path, err)
	}
	var c WorkCalendar
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse calendar %s: %w", path, err)
	}
	if len(c.Weekend) == 0 {
		c.Weekend = []string{"Saturday", "Sunday"}
	}
	if err := c.index(); err != nil {
		return nil, fmt.Errorf("calendar %s: %w", path, err)
	}
	return &c, nil
}

func (c *WorkCalendar) index() error {
	c.weekend = make(map[time.Weekday]bool, len(c.Weekend))
	for _, name := range c.Weekend {
		wd, err := parseWeekday(name)
		if err != nil {
			return err
		}
		c.weekend[wd] = true
	}
	c.holidays = make(map[domain.Date]bool, len(c.Holidays))
	for _, d := range c.Holidays {
		c.holidays[d] = true
	}
	c.workdays = make(map[domain.Date]bool, len(c.Workdays))
	for _, d := range c.Workdays {
		c.workdays[d] = true
	}
	return nil
}

// IsWorkDay reports whether d is an organisational working day.
func (c *WorkCalendar) IsWorkDay(d domain.Date) bool {
	if c.holidays[d] {
		return false
	}
	if c.workdays[d] {
		return true
	}
	return !c.weekend[d.Weekday()]
}

func parseWeekday(name string) (time.Weekday, error) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.EqualFold(wd.String(), name) {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

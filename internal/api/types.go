package api

import (
	"fmt"
	"strconv"
	"strings"
)

// Response is the envelope of a single-day timings request.
type Response struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   Data   `json:"data"`
}

// CalendarResponse is the envelope of a month request: one Data per day.
type CalendarResponse struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   []Data `json:"data"`
}

// Data is one day of provider output.
type Data struct {
	Timings Timings  `json:"timings"`
	Date    DateInfo `json:"date"`
	Meta    Meta     `json:"meta"`
}

// Timings holds wall-clock "HH:MM" strings in the location's timezone.
// Values may carry a suffix such as " (BST)".
type Timings struct {
	Fajr       string `json:"Fajr"`
	Sunrise    string `json:"Sunrise"`
	Dhuhr      string `json:"Dhuhr"`
	Asr        string `json:"Asr"`
	Sunset     string `json:"Sunset"`
	Maghrib    string `json:"Maghrib"`
	Isha       string `json:"Isha"`
	Imsak      string `json:"Imsak"`
	Midnight   string `json:"Midnight"`
	Firstthird string `json:"Firstthird"`
	Lastthird  string `json:"Lastthird"`
}

// Lookup returns the raw clock string for an event name.
func (t Timings) Lookup(name string) (string, bool) {
	switch name {
	case "Fajr":
		return t.Fajr, true
	case "Sunrise":
		return t.Sunrise, true
	case "Dhuhr":
		return t.Dhuhr, true
	case "Asr":
		return t.Asr, true
	case "Sunset":
		return t.Sunset, true
	case "Maghrib":
		return t.Maghrib, true
	case "Isha":
		return t.Isha, true
	case "Imsak":
		return t.Imsak, true
	case "Midnight":
		return t.Midnight, true
	case "Firstthird":
		return t.Firstthird, true
	case "Lastthird":
		return t.Lastthird, true
	}
	return "", false
}

type DateInfo struct {
	Readable  string        `json:"readable"`
	Timestamp string        `json:"timestamp"`
	Hijri     HijriDate     `json:"hijri"`
	Gregorian GregorianDate `json:"gregorian"`
}

// HijriDate is the provider's rendering of the islamic calendar date.
type HijriDate struct {
	Date        string           `json:"date"` // "DD-MM-YYYY"
	Day         string           `json:"day"`
	Month       HijriMonth       `json:"month"`
	Year        string           `json:"year"`
	Designation HijriDesignation `json:"designation"`
}

type HijriMonth struct {
	Number int    `json:"number"`
	En     string `json:"en"`
	Ar     string `json:"ar"`
}

type HijriDesignation struct {
	Abbreviated string `json:"abbreviated"`
	Expanded    string `json:"expanded"`
}

// DayNumber parses the day-of-month. The provider sends it as a string,
// sometimes zero-padded.
func (h HijriDate) DayNumber() (int, error) {
	s := strings.TrimLeft(strings.TrimSpace(h.Day), "0")
	if s == "" {
		return 0, fmt.Errorf("empty hijri day")
	}
	d, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid hijri day %q: %w", h.Day, err)
	}
	return d, nil
}

// Format returns "DD MonthName YYYY AH", or "" when fields are missing.
func (h HijriDate) Format() string {
	if h.Day == "" || h.Month.En == "" || h.Year == "" {
		return ""
	}
	abbr := h.Designation.Abbreviated
	if abbr == "" {
		abbr = "AH"
	}
	return h.Day + " " + h.Month.En + " " + h.Year + " " + abbr
}

type GregorianDate struct {
	Date    string         `json:"date"` // "DD-MM-YYYY"
	Day     string         `json:"day"`
	Weekday GregorianDay   `json:"weekday"`
	Month   GregorianMonth `json:"month"`
	Year    string         `json:"year"`
}

type GregorianDay struct {
	En string `json:"en"`
}

type GregorianMonth struct {
	Number int    `json:"number"`
	En     string `json:"en"`
}

// Meta echoes the resolved location and method.
type Meta struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Timezone  string     `json:"timezone"`
	Method    MethodInfo `json:"method"`
	School    string     `json:"school"`
}

type MethodInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Methods lists the calculation methods the provider accepts.
var Methods = []MethodInfo{
	{0, "Shia Ithna-Ashari (Jafari)"},
	{1, "University of Islamic Sciences, Karachi"},
	{2, "Islamic Society of North America (ISNA)"},
	{3, "Muslim World League (MWL)"},
	{4, "Umm Al-Qura University, Makkah"},
	{5, "Egyptian General Authority of Survey"},
	{7, "Institute of Geophysics, University of Tehran"},
	{8, "Gulf Region"},
	{9, "Kuwait"},
	{10, "Qatar"},
	{11, "Majlis Ugama Islam Singapura (Singapore)"},
	{12, "Union Organization Islamic de France"},
	{13, "Diyanet Isleri Baskanligi, Turkey (experimental)"},
	{14, "Spiritual Administration of Muslims of Russia"},
	{15, "Moonsighting Committee Worldwide"},
	{16, "Dubai (experimental)"},
	{17, "JAKIM (Malaysia)"},
	{18, "Tunisia"},
	{19, "Algeria"},
	{20, "KEMENAG (Indonesia)"},
	{21, "Morocco"},
	{22, "Comunidade Islamica de Lisboa (Portugal)"},
	{23, "Ministry of Awqaf, Jordan"},
}

// MethodName returns the display name for a method id.
func MethodName(id int) (string, bool) {
	for _, m := range Methods {
		if m.ID == id {
			return m.Name, true
		}
	}
	return "", false
}

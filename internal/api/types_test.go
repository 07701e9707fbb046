package api

import "testing"

func TestHijriDate_Format(t *testing.T) {
	tests := []struct {
		name string
		h    HijriDate
		want string
	}{
		{
			name: "full date",
			h: HijriDate{
				Day:         "27",
				Month:       HijriMonth{Number: 9, En: "Ramadan"},
				Year:        "1447",
				Designation: HijriDesignation{Abbreviated: "AH"},
			},
			want: "27 Ramadan 1447 AH",
		},
		{
			name: "missing designation defaults to AH",
			h:    HijriDate{Day: "1", Month: HijriMonth{Number: 1, En: "Muharram"}, Year: "1448"},
			want: "1 Muharram 1448 AH",
		},
		{
			name: "missing day",
			h:    HijriDate{Month: HijriMonth{En: "Ramadan"}, Year: "1447"},
			want: "",
		},
		{
			name: "empty",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.h.Format(); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHijriDate_DayNumber(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"27", 27, false},
		{"05", 5, false},
		{" 9 ", 9, false},
		{"", 0, true},
		{"00", 0, true},
		{"x1", 0, true},
	}

	for _, tt := range tests {
		got, err := HijriDate{Day: tt.raw}.DayNumber()
		if tt.wantErr {
			if err == nil {
				t.Errorf("DayNumber(%q) expected error", tt.raw)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("DayNumber(%q) = %d, %v; want %d", tt.raw, got, err, tt.want)
		}
	}
}

func TestTimings_Lookup(t *testing.T) {
	tm := Timings{Fajr: "05:00", Isha: "19:30"}
	if v, ok := tm.Lookup("Isha"); !ok || v != "19:30" {
		t.Errorf("Lookup(Isha) = %q, %v", v, ok)
	}
	if _, ok := tm.Lookup("Tahajjud"); ok {
		t.Error("Lookup of unknown name should fail")
	}
}

func TestMethodName(t *testing.T) {
	if name, ok := MethodName(4); !ok || name != "Umm Al-Qura University, Makkah" {
		t.Errorf("MethodName(4) = %q, %v", name, ok)
	}
	if _, ok := MethodName(6); ok {
		t.Error("method 6 does not exist")
	}
}

package model

import "testing"

func TestStyleTags(t *testing.T) {
	tests := []struct {
		style  string
		gender VocalGender
		want   string
	}{
		{"Pop", VocalGenderMale, "Pop with male vocals"},
		{"Pop", VocalGenderFemale, "Pop with female vocals"},
		{"Pop", VocalGenderAny, "Pop"},
		{"Synthwave, 80s", "", "Synthwave, 80s"},
		{"", VocalGenderFemale, "female vocals"},
	}

	for _, tt := range tests {
		if got := StyleTags(tt.style, tt.gender); got != tt.want {
			t.Errorf("StyleTags(%q, %q) = %q, want %q", tt.style, tt.gender, got, tt.want)
		}
	}
}

func TestParseVocalGender(t *testing.T) {
	if got := ParseVocalGender("female"); got != VocalGenderFemale {
		t.Errorf("ParseVocalGender(female) = %q", got)
	}
	if got := ParseVocalGender("robot"); got != VocalGenderAny {
		t.Errorf("ParseVocalGender(robot) = %q, want any", got)
	}
}

func TestMusicJobAudioOnlyOnSuccess(t *testing.T) {
	job := &MusicJob{TaskID: "t1", Status: MusicJobPolling}
	job.Succeed("https://cdn.example.com/a.mp3")
	if job.Status != MusicJobSuccess || job.AudioURL == "" {
		t.Fatalf("unexpected job after Succeed: %+v", job)
	}
	job.Fail()
	if job.AudioURL != "" {
		t.Errorf("AudioURL = %q after Fail, want empty", job.AudioURL)
	}
}

func TestSongQuerySearchText(t *testing.T) {
	q := NewSongQuery("  Yesterday ", " The Beatles  ")
	if got := q.SearchText(); got != "Yesterday The Beatles" {
		t.Errorf("SearchText() = %q", got)
	}
	if got := NewSongQuery("Yesterday", "   ").SearchText(); got != "Yesterday" {
		t.Errorf("SearchText() without artist = %q", got)
	}
}

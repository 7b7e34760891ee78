package service

import "testing"

func TestNormalizeLyrics(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "strips preamble and pads markers",
			raw:  "12 ContributorsSong Lyrics[Verse 1]\r\nLine one  <br/>Line two<BR>\n\n\n\n[Chorus]\nHook",
			want: "[Verse 1]\n\nLine one\nLine two\n\n[Chorus]\n\nHook",
		},
		{
			name: "no markers keeps text",
			raw:  "hello\n\n\n\nworld",
			want: "hello\n\nworld",
		},
		{
			name: "two blank lines are kept",
			raw:  "a\n\n\nb",
			want: "a\n\n\nb",
		},
		{
			name: "three blank lines collapse",
			raw:  "a\n\n\n\nb",
			want: "a\n\nb",
		},
		{
			name: "inline marker moves to its own line",
			raw:  "[Intro] la la\n[Outro]",
			want: "[Intro]\n\nla la\n\n[Outro]",
		},
		{
			name: "empty",
			raw:  "   \n ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeLyrics(tt.raw); got != tt.want {
				t.Errorf("NormalizeLyrics() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeLyricsIdempotent(t *testing.T) {
	inputs := []string{
		"Song Lyrics[Verse]\nA  \nB\n\n\n\n[Chorus]C<br>D",
		"  leading [Bridge]\t \n\n x \n",
		"plain text only",
		"[A][B]\n[C]",
	}
	for _, in := range inputs {
		once := NormalizeLyrics(in)
		twice := NormalizeLyrics(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
